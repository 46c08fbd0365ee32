package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}

	user, err := s.accounts.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("failed to sign session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session", "internal")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}

	user, err := s.accounts.Signup(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("failed to sign session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create session", "internal")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"role":  user.Role,
		"items": domain.NavItems(user.Role),
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current"`
		Next    string `json:"next"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", "bad_request")
		return
	}
	if err := s.accounts.ChangeOwnPassword(r.Context(), currentUser(r), req.Current, req.Next); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
