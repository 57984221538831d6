package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chedfms/liqtrack/internal/domain/identity"
	"github.com/chedfms/liqtrack/internal/domain/shared"
	"github.com/chedfms/liqtrack/internal/interfaces/http/dto"
)

// RequireCapability rejects requests whose authenticated role does not hold
// the given capability. Must run after the JWT middleware.
func RequireCapability(cap identity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(shared.ErrCodeUnauthorized, "Authentication required", c.GetString("request_id")))
			return
		}

		role, err := identity.ParseRole(claims.Role)
		if err != nil || !role.Can(cap) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(shared.ErrCodePermissionDenied,
					fmt.Sprintf("Your role does not allow this operation (requires %s)", cap),
					c.GetString("request_id")))
			return
		}

		c.Next()
	}
}
