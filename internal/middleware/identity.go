package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vidya-press/field-crm-api/internal/models"
	"github.com/vidya-press/field-crm-api/internal/service"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
	"github.com/vidya-press/field-crm-api/pkg/response"
)

// ContextIdentityKey is the gin context key storing the salesman claims.
const ContextIdentityKey = "currentIdentity"

// Identity protects routes by requiring a valid salesman bearer token.
func Identity(identityService *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := identityService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, claims)
		c.Next()
	}
}

// AdminOnly blocks requests whose identity lacks the admin flag. Must run
// after Identity.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentIdentity(c)
		if !ok || !claims.Admin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity extracts the validated claims from the gin context.
func CurrentIdentity(c *gin.Context) (*models.IdentityClaims, bool) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.IdentityClaims)
	return claims, ok
}
