package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vitos/trade_journal/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeDomainError maps sentinel errors onto HTTP statuses. Anything
// unrecognized is a transient failure the client may retry.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials", "invalid_credentials")
	case errors.Is(err, domain.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, "account disabled", "account_disabled")
	case errors.Is(err, domain.ErrSelfDelete):
		writeError(w, http.StatusForbidden, err.Error(), "self_delete")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error(), "username_taken")
	case errors.Is(err, domain.ErrBadBackup):
		writeError(w, http.StatusBadRequest, err.Error(), "bad_backup")
	case errors.Is(err, domain.ErrAIKeyMissing):
		// Distinct from a transient failure: the client should show
		// credential-setup guidance, not a retry button.
		writeError(w, http.StatusFailedDependency, err.Error(), "ai_key_missing")
	case errors.Is(err, domain.ErrGistAuth):
		writeError(w, http.StatusUnauthorized, err.Error(), "gist_auth")
	case errors.Is(err, domain.ErrGistNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "gist_not_found")
	default:
		writeError(w, http.StatusBadGateway, "operation failed, please retry", "transient")
	}
}
