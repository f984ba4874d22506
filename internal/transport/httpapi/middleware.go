package httpapi

import (
	"net/http"
	"strings"

	"github.com/betinha/rental-core/internal/service"
)

// requireAuth validates the bearer token and stores the user id in the
// request context for audit entries.
func requireAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
				return
			}
			userID, err := auth.ParseToken(strings.TrimSpace(header[len("Bearer "):]))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(service.WithUserID(r.Context(), userID)))
		})
	}
}
