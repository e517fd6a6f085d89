package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-rules-go/internal/domain/subscription"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
)

type infoCtxKey struct{}

// InfoFromContext returns the subscription info evaluated by EnforceAccess.
func InfoFromContext(ctx context.Context) (subscription.Info, bool) {
	info, ok := ctx.Value(infoCtxKey{}).(subscription.Info)
	return info, ok
}

// SubscriptionMiddleware gates requests on the organization's subscription.
type SubscriptionMiddleware struct {
	evaluator subscription.AccessEvaluator
}

func NewSubscriptionMiddleware(evaluator subscription.AccessEvaluator) *SubscriptionMiddleware {
	return &SubscriptionMiddleware{evaluator: evaluator}
}

// EnforceAccess rejects every request of a suspended organization except
// logout. The evaluated info is stored in the request context.
func (m *SubscriptionMiddleware) EnforceAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isLogout(r) {
			next.ServeHTTP(w, r)
			return
		}

		info, ok := m.evaluate(w, r)
		if !ok {
			return
		}
		if err := subscription.AuthorizeAccess(info); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), infoCtxKey{}, info)))
	})
}

// EnforceWritable rejects mutating requests of read-only organizations.
// Reads pass through.
func (m *SubscriptionMiddleware) EnforceWritable(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isMutating(r.Method) || isLogout(r) {
			next.ServeHTTP(w, r)
			return
		}

		info, ok := InfoFromContext(r.Context())
		if !ok {
			if info, ok = m.evaluate(w, r); !ok {
				return
			}
		}
		if err := subscription.Authorize(info); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// evaluate writes the error response itself and reports false on failure.
func (m *SubscriptionMiddleware) evaluate(w http.ResponseWriter, r *http.Request) (subscription.Info, bool) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return subscription.Info{}, false
	}

	if claims.OrganizationID == "" {
		if claims.Role.IsSuperAdmin() {
			return subscription.Info{Status: subscription.StatusActive, IsSuperAdmin: true}, true
		}
		response.HandleError(w, user.ErrOrganizationIDRequired)
		return subscription.Info{}, false
	}

	info, err := m.evaluator.Evaluate(r.Context(), claims.OrganizationID)
	if err != nil {
		response.HandleError(w, err)
		return subscription.Info{}, false
	}
	return info, true
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func isLogout(r *http.Request) bool {
	return strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/auth/logout")
}
