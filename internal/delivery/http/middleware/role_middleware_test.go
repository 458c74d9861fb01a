package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dental-clinic-api/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func doRequest(t *testing.T, mw func(http.Handler) http.Handler, roleID interface{}) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if roleID != nil {
		req = req.WithContext(context.WithValue(req.Context(), RoleIDKey, roleID))
	}

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, req)
	return rec
}

func TestRequireAdmin(t *testing.T) {
	assert.Equal(t, http.StatusOK, doRequest(t, RequireAdmin, entity.RoleIDAdmin).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, RequireAdmin, entity.RoleIDDoctor).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, RequireAdmin, entity.RoleIDPatient).Code)
}

func TestRequireAdminOrDoctor(t *testing.T) {
	assert.Equal(t, http.StatusOK, doRequest(t, RequireAdminOrDoctor, entity.RoleIDAdmin).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, RequireAdminOrDoctor, entity.RoleIDDoctor).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, RequireAdminOrDoctor, entity.RoleIDPatient).Code)
}

func TestRequirePatient(t *testing.T) {
	assert.Equal(t, http.StatusOK, doRequest(t, RequirePatient, entity.RoleIDPatient).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, RequirePatient, entity.RoleIDAdmin).Code)
}

func TestRequireAdminOrPatient(t *testing.T) {
	assert.Equal(t, http.StatusOK, doRequest(t, RequireAdminOrPatient, entity.RoleIDAdmin).Code)
	assert.Equal(t, http.StatusOK, doRequest(t, RequireAdminOrPatient, entity.RoleIDPatient).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(t, RequireAdminOrPatient, entity.RoleIDDoctor).Code)
}

func TestRequireRoleWithoutContext(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, RequireAdmin, nil).Code)
}
