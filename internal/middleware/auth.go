package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"dataroom/internal/auth"
	"dataroom/internal/httputil"
)

// Auth verifies the bearer token and stores the user id in the request context.
// Requests without a valid token get 401.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			userID, err := claims.GetUserID()
			if err != nil {
				logger.Warn("verified token without a user id", "subject", claims.Subject)
				httputil.RespondError(w, http.StatusUnauthorized, "unauthorized", "invalid token subject")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}
