package middleware

import (
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity keys and development headers
const (
	TenantIDKey    = "tenant_id"
	UserIDKey      = "user_id"
	RequestIDKey   = logger.GinRequestIDKey
	TenantIDHeader = "X-Tenant-ID"
	UserIDHeader   = "X-User-ID"
)

func setIdentity(c *gin.Context, tenantID, userID uuid.UUID) {
	c.Set(TenantIDKey, tenantID)
	c.Set(UserIDKey, userID)

	ctx := logger.WithTenantID(c.Request.Context(), tenantID)
	ctx = logger.WithUserID(ctx, userID)
	c.Request = c.Request.WithContext(ctx)
}

// GetTenantID returns the authenticated tenant, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetUserID returns the authenticated user, or uuid.Nil
func GetUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
