package recurring

import (
	"context"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// TemplateFilter defines filtering options for template queries
type TemplateFilter struct {
	shared.Filter
	IsActive   *bool
	CustomerID *uuid.UUID
}

// TemplateRepository defines the interface for recurring template persistence
type TemplateRepository interface {
	// FindByIDForTenant loads a template with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Template, error)

	// FindAllForTenant lists templates (with lines) and the total match count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TemplateFilter) ([]Template, int64, error)

	// FindDue returns active templates of a tenant with next_issue_date <= day
	FindDue(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]Template, error)

	// FindDueTenants returns the tenants owning at least one due template
	FindDueTenants(ctx context.Context, day time.Time) ([]uuid.UUID, error)

	// Save creates or updates a template. Lines are deleted and recreated.
	Save(ctx context.Context, template *Template) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, template *Template) error

	// DeleteForTenant deletes a template and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
