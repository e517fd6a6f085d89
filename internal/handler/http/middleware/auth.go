package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified, unrevoked access token.
// It runs after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			if _, _, err := jwtauth.FromContext(r.Context()); err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if !claims.IsAccess() {
				response.Unauthorized(w, "access token required")
				return
			}
			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.Unauthorized(w, "token has been revoked")
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
