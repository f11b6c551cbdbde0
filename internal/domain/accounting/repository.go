package accounting

import (
	"context"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// ExportRepository defines the interface for accounting export persistence
type ExportRepository interface {
	// FindByIDForTenant loads an export including its snapshot rows
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Export, error)

	// FindAllForTenant lists exports without rows and the total match count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Export, int64, error)

	// Save creates or updates an export
	Save(ctx context.Context, export *Export) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, export *Export) error

	// DeleteForTenant deletes an export
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
