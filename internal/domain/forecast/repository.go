package forecast

import (
	"context"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// RecurringCostRepository defines the interface for recurring cost persistence
type RecurringCostRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*RecurringCost, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]RecurringCost, int64, error)
	// FindActive returns all active costs of a tenant, unpaginated
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]RecurringCost, error)
	Save(ctx context.Context, cost *RecurringCost) error
	SaveWithLock(ctx context.Context, cost *RecurringCost) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
