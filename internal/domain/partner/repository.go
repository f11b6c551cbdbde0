package partner

import (
	"context"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerFilter defines filtering options for customer queries
type CustomerFilter struct {
	shared.Filter
	IsActive *bool
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByIDForTenant finds a customer by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindAllForTenant lists customers and the total match count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter CustomerFilter) ([]Customer, int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SaveWithLock saves a customer with optimistic locking (version check)
	SaveWithLock(ctx context.Context, customer *Customer) error

	// DeleteForTenant deletes a customer within a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// CompanyProfileRepository stores the single company profile of a tenant
type CompanyProfileRepository interface {
	// FindForTenant returns shared.ErrNotFound when the tenant has no profile yet
	FindForTenant(ctx context.Context, tenantID uuid.UUID) (*CompanyProfile, error)

	// Save creates or updates the profile
	Save(ctx context.Context, profile *CompanyProfile) error
}
