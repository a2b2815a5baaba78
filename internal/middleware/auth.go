package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hookstash/hookstash/internal/auth"
	"github.com/hookstash/hookstash/internal/model"
)

// TokenValidator verifies an access token and returns its auth context.
type TokenValidator interface {
	ValidateAccessToken(token string) (*model.AuthContext, error)
}

// Auth returns a middleware that authenticates requests with a Bearer
// access token. On success the auth context is injected into the request
// context; otherwise the request is rejected with 401.
//
// All failures share one message so callers cannot distinguish a missing
// token from an invalid one.
func Auth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			authCtx, err := validator.ValidateAccessToken(token)
			if err != nil {
				logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
