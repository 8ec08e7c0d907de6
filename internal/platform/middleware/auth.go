package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the claims we rely on.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims carries the identity fields extracted from a verified token.
// Values are still strings here; RequireAuth parses them into typed domain
// values before anything downstream can trust them.
type TokenClaims struct {
	UserID string
	Role   string
}

// RequireAuth rejects requests without a valid bearer token and injects the
// resulting principal into the request context. Role claims are re-validated
// against the closed role set; a token minted with an unknown role is treated
// as unauthorized, never passed through.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := domain.ParseUserID(claims.UserID)
			if err != nil {
				writeUnauthorized(w, "Invalid token claims")
				return
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				writeUnauthorized(w, "Invalid token claims")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, domain.Principal{ID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
