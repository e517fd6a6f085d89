package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthHandler covers the token operations this service owns. Tokens are
// issued by the identity service.
type AuthHandler interface {
	Logout(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService jwt.Service
}

func NewAuthHandler(jwtService jwt.Service) AuthHandler {
	return &AuthHandlerImpl{jwtService: jwtService}
}

// Logout revokes the bearer token
// POST /api/v1/auth/logout
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		response.Unauthorized(w, "missing bearer token")
		return
	}

	a.jwtService.RevokeToken(token)
	response.SuccessWithMessage(w, "Logged out", nil)
}

type meResponse struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id,omitempty"`
	EmployeeID     string `json:"employee_id,omitempty"`
	Role           string `json:"role"`
}

// Me echoes the caller's identity
// GET /api/v1/auth/me
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, meResponse{
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		EmployeeID:     claims.EmployeeID,
		Role:           string(claims.Role),
	})
}
