package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// issueToken signs a session token for the user.
func (s *Server) issueToken(user *domain.User) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.authSecret)
}

// withUser authenticates the request and loads the account into the
// request context. The account is reloaded on every request, so role
// changes and deactivations take effect immediately.
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			// Websocket clients cannot set headers from the browser.
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing session token", "unauthorized")
			return
		}

		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.authSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid session token", "unauthorized")
			return
		}
		claims := token.Claims.(*jwt.RegisteredClaims)

		user, err := s.users.GetUser(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unknown account", "unauthorized")
			return
		}
		if !user.IsActive {
			writeError(w, http.StatusForbidden, "account disabled", "forbidden")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	}
}

// adminOnly gates a handler behind the ADMIN role.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return s.withUser(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			s.logger.Warn("admin endpoint refused", zap.String("user", currentUser(r).ID), zap.String("path", r.URL.Path))
			writeError(w, http.StatusForbidden, "admin role required", "forbidden")
			return
		}
		next(w, r)
	})
}

func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}
