package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bolsas/internal/model"
	"bolsas/internal/service"
)

func TestRequireAuth(t *testing.T) {
	authSvc := service.NewAuthService(nil, "mw-secret", time.Hour)
	token, err := authSvc.IssueToken(&model.User{ID: "u1", Role: model.RoleStaff})
	require.NoError(t, err)

	var seen model.Actor
	h := NewAuthMiddleware(authSvc).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetActor(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, want: http.StatusOK},
		{name: "case_insensitive_scheme", header: "bearer " + token, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Equal(t, model.Actor{UserID: "u1", Role: model.RoleStaff}, seen)
}

func TestRequireRole(t *testing.T) {
	authSvc := service.NewAuthService(nil, "mw-secret", time.Hour)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := NewAuthMiddleware(authSvc).RequireAuth(RequireRole(model.RoleStaff, model.RoleAdmin)(ok))

	for role, want := range map[model.Role]int{
		model.RoleStudent: http.StatusForbidden,
		model.RoleStaff:   http.StatusNoContent,
		model.RoleAdmin:   http.StatusNoContent,
	} {
		token, err := authSvc.IssueToken(&model.User{ID: "u-" + string(role), Role: role})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestLoggingSetsRequestID(t *testing.T) {
	var inner string
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, inner)
	assert.Equal(t, inner, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}
