// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

func gatedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	factory := r.Group("/factory", AuthRequired(), RoleRequired(models.RoleFactory))
	factory.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"pong": true}) })

	admin := r.Group("/admin", AuthRequired(), AdminRequired())
	admin.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"pong": true}) })

	return r
}

func requestWithToken(t *testing.T, r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := gatedRouter()

	w := requestWithToken(t, r, "/factory/ping", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = requestWithToken(t, r, "/factory/ping", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateJWT(uuid.New(), "factory", "factory", 1)
	require.NoError(t, err)
	w = requestWithToken(t, r, "/factory/ping", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleGate(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := gatedRouter()

	factoryToken, err := utils.GenerateJWT(uuid.New(), "factory", "factory", 1)
	require.NoError(t, err)
	adminToken, err := utils.GenerateJWT(uuid.New(), "admin", "admin", 1)
	require.NoError(t, err)

	// The role comes from the verified token, so a factory token can
	// never reach an admin route and vice versa.
	w := requestWithToken(t, r, "/admin/ping", factoryToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = requestWithToken(t, r, "/factory/ping", adminToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = requestWithToken(t, r, "/admin/ping", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := gatedRouter()

	token, err := utils.GenerateJWT(uuid.New(), "factory", "factory", -1)
	require.NoError(t, err)

	w := requestWithToken(t, r, "/factory/ping", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
