package middleware

import (
	"log"
	"net/http"

	"p9e.in/saf/config"
	"p9e.in/saf/models"
	"p9e.in/saf/utils"
)

// RequirePermission lets the request through when the user's role grants
// permission, wildcards included
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission checks that the user holds one of permissions
func RequireAnyPermission(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				utils.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			var user models.User
			if err := config.DB.Preload("RoleModel.Permissions").First(&user, "id = ?", claims.UserID).Error; err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "user not found")
				return
			}
			if !user.IsActive {
				utils.WriteError(w, http.StatusForbidden, "user is inactive")
				return
			}

			for _, p := range permissions {
				if user.HasPermission(p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Printf("[AUTH] denied %s %s for user=%s role=%s", r.Method, r.URL.Path, user.ID, user.RoleName())
			utils.WriteError(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
