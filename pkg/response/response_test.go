package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "Created", map[string]string{"id": "1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Created", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(http.ResponseWriter, string)
		wantCode int
	}{
		{name: "unauthorized", fn: Unauthorized, wantCode: http.StatusUnauthorized},
		{name: "forbidden", fn: Forbidden, wantCode: http.StatusForbidden},
		{name: "not found", fn: NotFound, wantCode: http.StatusNotFound},
		{name: "conflict", fn: Conflict, wantCode: http.StatusConflict},
		{name: "internal", fn: InternalServerError, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.fn(rec, "boom")

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, "boom", resp.Message)
		})
	}
}

func TestErrorHelperDefaultsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "")

	resp := decode(t, rec)
	assert.Equal(t, "Resource not found", resp.Message)
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"Email": "Email is required"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.NotNil(t, resp.Error)
}
