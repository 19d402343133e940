package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func protected(svc jwt.Service, extra ...func(http.Handler) http.Handler) http.Handler {
	var h http.Handler = okHandler
	for i := len(extra) - 1; i >= 0; i-- {
		h = extra[i](h)
	}
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(svc)(h))
}

func call(t *testing.T, h http.Handler, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	h := protected(svc)

	access, exp, err := svc.GenerateAccessToken("u-1", "u@example.com", []string{"employee"})
	require.NoError(t, err)
	refresh, _, err := svc.GenerateRefreshToken("u-1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, call(t, h, access))
	assert.Equal(t, http.StatusUnauthorized, call(t, h, ""))
	assert.Equal(t, http.StatusUnauthorized, call(t, h, refresh))

	svc.RevokeToken(access, exp)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, access))
}

func TestAuthRequired_ResolvesActor(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	access, _, err := svc.GenerateAccessToken("u-7", "u7@example.com", []string{"employee", "supervisor"})
	require.NoError(t, err)

	var got user.Actor
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		require.True(t, ok)
		got = actor
	})
	h := jwtauth.Verifier(svc.JWTAuth())(AuthRequired(svc)(capture))

	assert.Equal(t, http.StatusOK, call(t, h, access))
	assert.Equal(t, "u-7", got.ID)
	assert.Equal(t, "u7@example.com", got.Email)
	assert.True(t, got.Roles.IsSupervisor())
	assert.False(t, got.Roles.IsHRManager())
}

func TestRoleMiddleware_WithoutActor(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, call(t, RequireHRManager(okHandler), ""))
	assert.Equal(t, http.StatusForbidden, call(t, RequirePermission(user.PermissionReportsView)(okHandler), ""))
}

func TestRoleMiddleware(t *testing.T) {
	svc := jwt.NewJWTService("middleware-secret", "1h", "24h", false)
	token := func(roles ...user.Role) string {
		tok, _, err := svc.GenerateAccessToken("u-1", "u@example.com", user.NewRoleSet(roles...).Strings())
		require.NoError(t, err)
		return tok
	}

	employee := token(user.RoleEmployee)
	supervisor := token(user.RoleEmployee, user.RoleSupervisor)
	hr := token(user.RoleEmployee, user.RoleSupervisor, user.RoleHRManager)

	tests := []struct {
		name  string
		mw    func(http.Handler) http.Handler
		token string
		want  int
	}{
		{"supervisor route as employee", RequireSupervisor, employee, http.StatusForbidden},
		{"supervisor route as supervisor", RequireSupervisor, supervisor, http.StatusOK},
		{"hr route as supervisor", RequireHRManager, supervisor, http.StatusForbidden},
		{"hr route as hr", RequireHRManager, hr, http.StatusOK},
		{"reports permission as employee", RequirePermission(user.PermissionReportsView), employee, http.StatusForbidden},
		{"reports permission as hr", RequirePermission(user.PermissionReportsView), hr, http.StatusOK},
		{"rate permission as supervisor", RequirePermission(user.PermissionReviewRate), supervisor, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, protected(svc, tt.mw), tt.token))
		})
	}
}

func TestRolesFromClaims(t *testing.T) {
	roles := RolesFromClaims(map[string]interface{}{"roles": []interface{}{"supervisor", 7, "employee"}})
	assert.True(t, roles.IsSupervisor())
	assert.True(t, roles.IsEmployee())
	assert.False(t, roles.IsHRManager())

	assert.Empty(t, RolesFromClaims(map[string]interface{}{}).Strings())
}

func TestRateLimitByIP(t *testing.T) {
	h := RateLimitByIP(1, 2)(okHandler)
	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:3333"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1111"))

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:4444"))
}
