package middleware

import (
	"net/http"
	"strings"

	"chauffeur-booking/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AdminJWT middleware untuk validasi bearer token admin
func AdminJWT(tokens *utils.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Missing or malformed authorization token. Use: Bearer <token>")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logger.Warn("Rejected admin token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetAdminContext(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers on a websocket
// handshake, so only upgrade requests may pass the token as ?token=.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if !websocket.IsWebSocketUpgrade(r) {
			return "", false
		}
		if q := r.URL.Query().Get("token"); q != "" {
			return q, true
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
