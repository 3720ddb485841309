package middleware

import (
	"net/http"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

// RequirePermission rejects requests whose token lacks permission. Protected
// staff pass every check.
func RequirePermission(rbac service.RBACAuthorizer, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				observability.RecordRBACAuthorizationEvent(r.Context(), permission, "unauthenticated")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
				return
			}
			if !rbac.Allow(claims.Protected, claims.Permissions, permission) {
				observability.RecordRBACAuthorizationEvent(r.Context(), permission, "denied")
				resource, action, _ := strings.Cut(permission, ":")
				observability.Audit(r, observability.AuditInput{
					EventName:    "rbac.denied",
					ActorStaffID: claims.Subject,
					TargetType:   resource,
					TargetID:     r.URL.Path,
					Action:       action,
					Outcome:      "denied",
					Reason:       "missing " + permission,
				})
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permission", map[string]string{"required": permission})
				return
			}
			observability.RecordRBACAuthorizationEvent(r.Context(), permission, "allowed")
			next.ServeHTTP(w, r)
		})
	}
}
