package persistence

import (
	"context"
	"errors"

	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/botforce/unity/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists customers and the total match count
func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) ([]partner.Customer, int64, error) {
	var total int64
	if err := r.filtered(ctx, tenantID, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderDefault := filter.Filter
	if orderDefault.OrderBy == "" {
		orderDefault.OrderDir = "asc"
	}
	var customerModels []models.CustomerModel
	query := applyPaging(r.filtered(ctx, tenantID, filter), orderDefault, CustomerSortFields, "name")
	if err := query.Find(&customerModels).Error; err != nil {
		return nil, 0, err
	}

	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, total, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a customer with optimistic locking (version check)
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	result := r.db.WithContext(ctx).
		Model(&models.CustomerModel{}).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Where("id = ? AND tenant_id = ? AND version = ?", customer.ID, customer.TenantID, customer.Version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant deletes a customer within a tenant
func (r *GormCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := tenant.ForTenant(ctx, r.db, tenantID).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) filtered(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) *gorm.DB {
	query := tenant.ForTenant(ctx, r.db, tenantID).Model(&models.CustomerModel{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(vat_id) LIKE ?)", pattern, pattern, pattern)
	}
	return query
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

// GormCompanyProfileRepository implements CompanyProfileRepository using GORM
type GormCompanyProfileRepository struct {
	db *gorm.DB
}

// NewGormCompanyProfileRepository creates a new GormCompanyProfileRepository
func NewGormCompanyProfileRepository(db *gorm.DB) *GormCompanyProfileRepository {
	return &GormCompanyProfileRepository{db: db}
}

// FindForTenant returns the tenant's profile or shared.ErrNotFound
func (r *GormCompanyProfileRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*partner.CompanyProfile, error) {
	var model models.CompanyProfileModel
	if err := tenant.ForTenant(ctx, r.db, tenantID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates the profile. A second profile for the same tenant
// violates the unique index and is reported as ErrAlreadyExists.
func (r *GormCompanyProfileRepository) Save(ctx context.Context, profile *partner.CompanyProfile) error {
	model := models.CompanyProfileModelFromDomain(profile)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if IsDuplicateKey(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Ensure GormCompanyProfileRepository implements CompanyProfileRepository
var _ partner.CompanyProfileRepository = (*GormCompanyProfileRepository)(nil)
