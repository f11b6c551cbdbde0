package persistence

import (
	"context"
	"errors"

	"github.com/botforce/unity/internal/domain/forecast"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/botforce/unity/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRecurringCostRepository implements forecast.RecurringCostRepository using GORM
type GormRecurringCostRepository struct {
	db *gorm.DB
}

// NewGormRecurringCostRepository creates a new GormRecurringCostRepository
func NewGormRecurringCostRepository(db *gorm.DB) *GormRecurringCostRepository {
	return &GormRecurringCostRepository{db: db}
}

// FindByIDForTenant finds a recurring cost by ID within a tenant
func (r *GormRecurringCostRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*forecast.RecurringCost, error) {
	var model models.RecurringCostModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists recurring costs and the total match count
func (r *GormRecurringCostRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]forecast.RecurringCost, int64, error) {
	filtered := func() *gorm.DB {
		query := tenant.ForTenant(ctx, r.db, tenantID).Model(&models.RecurringCostModel{})
		if filter.Search != "" {
			query = query.Where("LOWER(name) LIKE ?", containsPattern(filter.Search))
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var costModels []models.RecurringCostModel
	if err := applyPaging(filtered(), filter, RecurringCostSortFields, "name").Find(&costModels).Error; err != nil {
		return nil, 0, err
	}
	return costsToDomain(costModels), total, nil
}

// FindActive returns all active costs of a tenant
func (r *GormRecurringCostRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]forecast.RecurringCost, error) {
	var costModels []models.RecurringCostModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&costModels).Error; err != nil {
		return nil, err
	}
	return costsToDomain(costModels), nil
}

// Save creates or updates a recurring cost
func (r *GormRecurringCostRepository) Save(ctx context.Context, cost *forecast.RecurringCost) error {
	return r.db.WithContext(ctx).Save(models.RecurringCostModelFromDomain(cost)).Error
}

// SaveWithLock saves a recurring cost with optimistic locking (version check)
func (r *GormRecurringCostRepository) SaveWithLock(ctx context.Context, cost *forecast.RecurringCost) error {
	result := r.db.WithContext(ctx).
		Model(&models.RecurringCostModel{}).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Where("id = ? AND tenant_id = ? AND version = ?", cost.ID, cost.TenantID, cost.Version-1).
		Updates(models.RecurringCostModelFromDomain(cost))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant deletes a recurring cost within a tenant
func (r *GormRecurringCostRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := tenant.ForTenant(ctx, r.db, tenantID).Delete(&models.RecurringCostModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func costsToDomain(costModels []models.RecurringCostModel) []forecast.RecurringCost {
	costs := make([]forecast.RecurringCost, len(costModels))
	for i := range costModels {
		costs[i] = *costModels[i].ToDomain()
	}
	return costs
}

// Ensure GormRecurringCostRepository implements forecast.RecurringCostRepository
var _ forecast.RecurringCostRepository = (*GormRecurringCostRepository)(nil)
