package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
)

// RequireAdmin requires an organization admin or a super admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.ClaimsFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !claims.Role.CanManageOrganization() {
			response.HandleError(w, user.ErrAdminAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireSuperAdmin requires the platform operator role.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := jwt.ClaimsFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !claims.Role.IsSuperAdmin() {
			response.HandleError(w, user.ErrSuperAdminRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
