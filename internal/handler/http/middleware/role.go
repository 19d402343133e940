package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http/response"
)

// RolesFromClaims reads the roles claim of an access token.
func RolesFromClaims(claims map[string]interface{}) user.RoleSet {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return user.RoleSet{}
	}
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	return user.RoleSetFromStrings(values)
}

// requireRole answers with denied unless allow accepts the caller's roles.
func requireRole(allow func(user.RoleSet) bool, denied error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !allow(actor.Roles) {
				response.HandleError(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	RequireSupervisor = requireRole(user.RoleSet.IsSupervisor, user.ErrSupervisorAccessRequired)
	RequireHRManager  = requireRole(user.RoleSet.IsHRManager, user.ErrHRManagerAccessRequired)
)

// RequirePermission checks the caller's roles against the permission table.
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}
			if !user.HasPermission(actor.Roles, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user roles are %v", permission, actor.Roles.Strings()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
