package models

import (
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantAggregateModel carries the columns every tenant-owned table shares:
// identity, audit timestamps, the optimistic lock version and the owning
// tenant. Repositories always filter on tenant_id, so it is indexed.
type TenantAggregateModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Version   int        `gorm:"not null;default:1"`
}

// FromDomainTenantAggregateRoot copies the shared root columns from a domain aggregate
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(root shared.TenantAggregateRoot) {
	m.ID = root.ID
	m.TenantID = root.TenantID
	m.CreatedBy = root.CreatedBy
	m.CreatedAt = root.CreatedAt
	m.UpdatedAt = root.UpdatedAt
	m.Version = root.Version
}

// PopulateTenantAggregateRoot writes the shared root columns back onto a domain aggregate
func (m *TenantAggregateModel) PopulateTenantAggregateRoot(root *shared.TenantAggregateRoot) {
	root.ID = m.ID
	root.TenantID = m.TenantID
	root.CreatedBy = m.CreatedBy
	root.CreatedAt = m.CreatedAt
	root.UpdatedAt = m.UpdatedAt
	root.Version = m.Version
}
