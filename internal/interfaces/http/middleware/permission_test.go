package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/chedfms/liqtrack/internal/domain/identity"
)

func requestWithRole(t *testing.T, router *gin.Engine, role string) *httptest.ResponseRecorder {
	t.Helper()
	jwtService := newTestJWTService()
	pair, _ := newTestTokenPair(t, jwtService, role)

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newCapabilityRouter(cap identity.Capability) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddleware(newTestJWTService()))
	router.POST("/import", RequireCapability(cap), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireCapabilityAllowed(t *testing.T) {
	router := newCapabilityRouter(identity.CapBulkImport)
	w := requestWithRole(t, router, "regional_coordinator")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapabilityDenied(t *testing.T) {
	router := newCapabilityRouter(identity.CapBulkImport)

	w := requestWithRole(t, router, "hei")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PERMISSION_DENIED")

	w = requestWithRole(t, router, "accountant")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapabilitySuperAdminHoldsAll(t *testing.T) {
	router := newCapabilityRouter(identity.CapManageUsers)
	w := requestWithRole(t, router, "super_admin")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapabilityUnauthenticated(t *testing.T) {
	router := gin.New()
	router.POST("/import", RequireCapability(identity.CapBulkImport), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
