package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/taskdeck/taskdeck/internal/domain"
)

// AuthorizationHeader is the header carrying the bearer token.
const AuthorizationHeader = "Authorization"

// bearerPrefix is the expected scheme prefix of the Authorization header.
const bearerPrefix = "Bearer "

// UserLoader loads a user by ID for per-request identity checks.
// The role and active flag are read from storage on every request so
// that deactivation and demotion take effect before the token expires.
// Implementations return domain.ErrUserNotFound when no such user exists;
// any other error is treated as a storage failure.
type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware creates a bearer-token authentication middleware.
// Requests without a valid token for an active user are rejected with 401.
func Middleware(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractBearerToken(r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "could not validate credentials")
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "could not validate credentials")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					log.Debug().Int64("user_id", claims.UserID).Msg("token user no longer exists")
					writeAuthError(w, http.StatusUnauthorized, "unauthorized", "could not validate credentials")
					return
				}
				log.Error().Err(err).Int64("user_id", claims.UserID).Msg("token user lookup failed")
				writeAuthError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				return
			}

			if !user.IsActive {
				writeAuthError(w, http.StatusForbidden, "forbidden", "inactive user")
				return
			}

			identity := &Identity{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin creates a middleware that rejects non-admin callers with 403.
// It must run after Middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "could not validate credentials")
				return
			}
			if !identity.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "forbidden", "admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken parses the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(AuthorizationHeader)
	if header == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errors.New("authorization header is not a bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// writeAuthError writes a JSON error response matching the API error envelope.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
