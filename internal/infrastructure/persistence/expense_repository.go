package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/botforce/unity/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense.Repository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForTenant finds an expense by ID for a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.Expense, error) {
	var model models.ExpenseModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists expenses and the total match count
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.Filter) ([]expense.Expense, int64, error) {
	var total int64
	if err := r.filtered(ctx, tenantID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenseModels []models.ExpenseModel
	query := applyPaging(r.filtered(ctx, tenantID, filter), filter.Filter, ExpenseSortFields, "expense_date")
	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, 0, err
	}
	return expensesToDomain(expenseModels), total, nil
}

// FindBillableByIDs returns those of ids that are approved and not yet exported
func (r *GormExpenseRepository) FindBillableByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]expense.Expense, error) {
	if len(ids) == 0 {
		return []expense.Expense{}, nil
	}
	var expenseModels []models.ExpenseModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).
		Where("id IN ? AND status = ? AND exported_at IS NULL", ids, expense.StatusApproved).
		Order("expense_date ASC, created_at ASC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(expenseModels), nil
}

// FindForPeriod returns approved and exported expenses dated in [from, to]
func (r *GormExpenseRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]expense.Expense, error) {
	var expenseModels []models.ExpenseModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).
		Where("status IN ? AND expense_date >= ? AND expense_date <= ?",
			[]expense.Status{expense.StatusApproved, expense.StatusExported}, from, to).
		Order("expense_date ASC, created_at ASC").
		Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(expenseModels), nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	model := models.ExpenseModelFromDomain(e)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves an expense with optimistic locking (version check)
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, e *expense.Expense) error {
	model := models.ExpenseModelFromDomain(e)
	result := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Where("id = ? AND tenant_id = ? AND version = ?", e.ID, e.TenantID, e.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// MarkExported flags still-billable expenses as billed on documentID in one
// statement. Rows exported concurrently by someone else are left untouched,
// which the caller sees as a lower count.
func (r *GormExpenseRepository) MarkExported(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, documentID uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := tenant.ForTenant(ctx, r.db, tenantID).
		Model(&models.ExpenseModel{}).
		Where("id IN ? AND status = ? AND exported_at IS NULL", ids, expense.StatusApproved).
		Updates(map[string]interface{}{
			"status":      expense.StatusExported,
			"exported_at": at,
			"document_id": documentID,
			"updated_at":  at,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReleaseFromDocument clears the billing link of the expenses on documentID
// that are not listed in keep
func (r *GormExpenseRepository) ReleaseFromDocument(ctx context.Context, tenantID, documentID uuid.UUID, keep []uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	query := tenant.ForTenant(ctx, r.db, tenantID).
		Model(&models.ExpenseModel{}).
		Where("document_id = ? AND status = ?", documentID, expense.StatusExported)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	result := query.Updates(map[string]interface{}{
		"status":      expense.StatusApproved,
		"exported_at": nil,
		"document_id": nil,
		"updated_at":  now,
		"version":     gorm.Expr("version + 1"),
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteForTenant deletes an expense within a tenant
func (r *GormExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := tenant.ForTenant(ctx, r.db, tenantID).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormExpenseRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter expense.Filter) *gorm.DB {
	query := tenant.ForTenant(ctx, r.db, tenantID).Model(&models.ExpenseModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Billable != nil {
		if *filter.Billable {
			query = query.Where("status = ? AND exported_at IS NULL", expense.StatusApproved)
		} else {
			query = query.Where("NOT (status = ? AND exported_at IS NULL)", expense.StatusApproved)
		}
	}
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(merchant) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	return query
}

func expensesToDomain(expenseModels []models.ExpenseModel) []expense.Expense {
	expenses := make([]expense.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses
}

// Ensure GormExpenseRepository implements expense.Repository
var _ expense.Repository = (*GormExpenseRepository)(nil)
