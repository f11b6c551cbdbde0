// Package tenant provides tenant scoping helpers for GORM queries.
//
// Every repository query against a tenant-owned table goes through Scope, so
// a missing tenant ID fails the statement instead of reading across tenants:
//
//	db.WithContext(ctx).Scopes(tenant.Scope(tenantID)).Find(&docs)
package tenant

import (
	"context"
	"errors"

	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a query is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope restricts a query to one tenant. The nil UUID aborts the statement.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// FromContext scopes to the tenant stored in ctx by the auth middleware
func FromContext(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return Scope(logger.GetTenantID(ctx))
}

// ForTenant returns a session bound to ctx and scoped to tenantID
func ForTenant(ctx context.Context, db *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Scopes(Scope(tenantID))
}
