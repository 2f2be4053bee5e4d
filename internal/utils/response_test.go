// internal/utils/response_test.go
package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfab/portal-backend/internal/apperrors"
)

func performWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		AppErrorResponse(c, err)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestAppErrorResponseStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest},
		{"authorization", apperrors.Authorization("not yours"), http.StatusForbidden},
		{"invalid state", apperrors.InvalidState("published", "cannot resubmit"), http.StatusConflict},
		{"conflict", apperrors.Conflict("stale revision"), http.StatusConflict},
		{"not found", apperrors.NotFound("product"), http.StatusNotFound},
		{"untyped", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performWithError(t, tc.err)
			assert.Equal(t, tc.code, w.Code)

			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
		})
	}
}

func TestAppErrorResponseCarriesCurrentStatus(t *testing.T) {
	w := performWithError(t, apperrors.InvalidState("awaiting_review", "cannot edit"))

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "awaiting_review", body.Error.CurrentStatus)
	assert.Equal(t, string(apperrors.KindInvalidState), body.Error.Code)
}

func TestAppErrorResponseHidesInternalDetails(t *testing.T) {
	w := performWithError(t, errors.New("pq: connection refused"))

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.NotContains(t, body.Error.Message, "pq:")
}
