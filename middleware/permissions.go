package middleware

import (
	"errors"
	"log"
	"net/http"

	"studybuddy/backend/models"
	"studybuddy/backend/services"
)

// RequireRole is a middleware that ensures the user has at least the specified role
func RequireRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserIDFromContext(r)
			if userID == "" {
				http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
				return
			}

			userRole, err := services.GetUserRole(r.Context(), userID)
			if errors.Is(err, services.ErrNotFound) {
				http.Error(w, "Forbidden: No profile for user", http.StatusForbidden)
				return
			}
			if err != nil {
				log.Printf("Error getting role for user %s: %v", userID, err)
				http.Error(w, "Failed to get user role", http.StatusInternalServerError)
				return
			}

			if !services.IsRoleAtLeast(userRole, requiredRole) {
				http.Error(w, "Forbidden: Insufficient role privileges", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMentor is a middleware that ensures the user is a mentor or admin
func RequireMentor() func(http.Handler) http.Handler {
	return RequireRole(models.RoleMentor)
}

// RequireAdmin is a middleware that ensures the user is an admin
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)
}
