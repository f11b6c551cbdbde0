package persistence

import (
	"context"
	"errors"

	"github.com/botforce/unity/internal/domain/accounting"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/botforce/unity/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountingExportRepository implements accounting.ExportRepository using GORM
type GormAccountingExportRepository struct {
	db *gorm.DB
}

// NewGormAccountingExportRepository creates a new GormAccountingExportRepository
func NewGormAccountingExportRepository(db *gorm.DB) *GormAccountingExportRepository {
	return &GormAccountingExportRepository{db: db}
}

// FindByIDForTenant loads an export including its snapshot rows
func (r *GormAccountingExportRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*accounting.Export, error) {
	var model models.AccountingExportModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindAllForTenant lists exports without their rows
func (r *GormAccountingExportRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]accounting.Export, int64, error) {
	var total int64
	if err := tenant.ForTenant(ctx, r.db, tenantID).Model(&models.AccountingExportModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exportModels []models.AccountingExportModel
	query := applyPaging(tenant.ForTenant(ctx, r.db, tenantID).Omit("snapshot_rows"), filter, ExportSortFields, "period_start")
	if err := query.Find(&exportModels).Error; err != nil {
		return nil, 0, err
	}

	exports := make([]accounting.Export, 0, len(exportModels))
	for i := range exportModels {
		e, err := exportModels[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		exports = append(exports, *e)
	}
	return exports, total, nil
}

// Save creates or updates an export
func (r *GormAccountingExportRepository) Save(ctx context.Context, export *accounting.Export) error {
	model, err := models.AccountingExportModelFromDomain(export)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves an export with optimistic locking (version check)
func (r *GormAccountingExportRepository) SaveWithLock(ctx context.Context, export *accounting.Export) error {
	model, err := models.AccountingExportModelFromDomain(export)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&models.AccountingExportModel{}).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Where("id = ? AND tenant_id = ? AND version = ?", export.ID, export.TenantID, export.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant deletes an export within a tenant
func (r *GormAccountingExportRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := tenant.ForTenant(ctx, r.db, tenantID).Delete(&models.AccountingExportModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAccountingExportRepository implements accounting.ExportRepository
var _ accounting.ExportRepository = (*GormAccountingExportRepository)(nil)
