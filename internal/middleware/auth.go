package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/auth"
	"github.com/Dan9191/cleancare-api/internal/models"
	"github.com/Dan9191/cleancare-api/internal/service"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid access token and stores the
// authenticated user in the request context.
func AuthMiddleware(authn Authenticator, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, "Authorization header must contain two space-delimited values: Bearer <token>.")
				return
			}

			user, err := authn.AuthenticateToken(r.Context(), strings.TrimSpace(token))
			if errors.Is(err, service.ErrUserInactive) {
				unauthorized(w, "User is inactive.")
				return
			}
			if errors.Is(err, service.ErrInvalidToken) {
				unauthorized(w, "Given token not valid for any token type")
				return
			}
			if err != nil {
				log.WithFields(logrus.Fields{
					"request_id": RequestIDFromContext(r.Context()),
					"error":      err,
				}).Error("Failed to authenticate request")
				writeDetail(w, http.StatusInternalServerError, "Internal server error.")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
