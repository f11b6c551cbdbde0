package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/botforce/unity/internal/domain/recurring"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/botforce/unity/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRecurringTemplateRepository implements recurring.TemplateRepository using GORM
type GormRecurringTemplateRepository struct {
	db *gorm.DB
}

// NewGormRecurringTemplateRepository creates a new GormRecurringTemplateRepository
func NewGormRecurringTemplateRepository(db *gorm.DB) *GormRecurringTemplateRepository {
	return &GormRecurringTemplateRepository{db: db}
}

func preloadTemplateLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") })
}

// FindByIDForTenant loads a template with its lines
func (r *GormRecurringTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*recurring.Template, error) {
	var model models.RecurringTemplateModel
	if err := preloadTemplateLines(tenant.ForTenant(ctx, r.db, tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists templates with their lines
func (r *GormRecurringTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter recurring.TemplateFilter) ([]recurring.Template, int64, error) {
	var total int64
	if err := r.filtered(ctx, tenantID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templateModels []models.RecurringTemplateModel
	query := applyPaging(preloadTemplateLines(r.filtered(ctx, tenantID, filter)), filter.Filter, TemplateSortFields, "next_issue_date")
	if err := query.Find(&templateModels).Error; err != nil {
		return nil, 0, err
	}
	return templatesToDomain(templateModels), total, nil
}

// FindDue returns active templates of a tenant with next_issue_date <= day
func (r *GormRecurringTemplateRepository) FindDue(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]recurring.Template, error) {
	var templateModels []models.RecurringTemplateModel
	if err := preloadTemplateLines(tenant.ForTenant(ctx, r.db, tenantID)).
		Where("is_active = ? AND next_issue_date <= ?", true, shared.TruncateToDay(day)).
		Order("next_issue_date ASC, id ASC").
		Find(&templateModels).Error; err != nil {
		return nil, err
	}
	return templatesToDomain(templateModels), nil
}

// FindDueTenants returns the tenants owning at least one due template
func (r *GormRecurringTemplateRepository) FindDueTenants(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.RecurringTemplateModel{}).
		Where("is_active = ? AND next_issue_date <= ?", true, shared.TruncateToDay(day)).
		Distinct().
		Order("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

// Save creates or updates a template, replacing its lines
func (r *GormRecurringTemplateRepository) Save(ctx context.Context, template *recurring.Template) error {
	model := models.RecurringTemplateModelFromDomain(template)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := model.Lines
		model.Lines = nil
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		return replaceTemplateLines(tx, model.ID, lines)
	})
}

// SaveWithLock saves a template with optimistic locking (version check)
func (r *GormRecurringTemplateRepository) SaveWithLock(ctx context.Context, template *recurring.Template) error {
	model := models.RecurringTemplateModelFromDomain(template)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := model.Lines
		model.Lines = nil
		result := tx.Model(&models.RecurringTemplateModel{}).
			Select("*").
			Omit(clause.Associations, "id", "tenant_id", "created_at", "created_by").
			Where("id = ? AND tenant_id = ? AND version = ?", template.ID, template.TenantID, template.Version-1).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return replaceTemplateLines(tx, model.ID, lines)
	})
}

// DeleteForTenant deletes a template and its lines
func (r *GormRecurringTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Scopes(tenant.Scope(tenantID)).Delete(&models.RecurringTemplateModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.RecurringTemplateLineModel{}, "template_id = ?", id).Error
	})
}

func (r *GormRecurringTemplateRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter recurring.TemplateFilter) *gorm.DB {
	query := tenant.ForTenant(ctx, r.db, tenantID).Model(&models.RecurringTemplateModel{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", containsPattern(filter.Search))
	}
	return query
}

func replaceTemplateLines(tx *gorm.DB, templateID uuid.UUID, lines []models.RecurringTemplateLineModel) error {
	if err := tx.Where("template_id = ?", templateID).Delete(&models.RecurringTemplateLineModel{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return tx.Create(&lines).Error
}

func templatesToDomain(templateModels []models.RecurringTemplateModel) []recurring.Template {
	templates := make([]recurring.Template, len(templateModels))
	for i := range templateModels {
		templates[i] = *templateModels[i].ToDomain()
	}
	return templates
}

// Ensure GormRecurringTemplateRepository implements recurring.TemplateRepository
var _ recurring.TemplateRepository = (*GormRecurringTemplateRepository)(nil)
