package partner

import (
	"context"

	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCustomerInUse blocks deleting a customer that documents still reference
var ErrCustomerInUse = shared.NewDomainError("CUSTOMER_IN_USE", "Customer is referenced by documents; deactivate it instead")

// DocumentCounter counts the documents that reference a customer
type DocumentCounter interface {
	CountForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	documents      DocumentCounter
	eventPublisher shared.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, documents DocumentCounter) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		documents:    documents,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(tenantID, userID, req.details())
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers and the total match count
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := partner.CustomerFilter{
		Filter:   shared.NewFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search),
		IsActive: filter.IsActive,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}

	customers, total, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCustomerResponses(customers), total, nil
}

// Update replaces a customer's editable fields
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.details()); err != nil {
		return nil, err
	}

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Activate makes a customer selectable for new documents again
func (s *CustomerService) Activate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, tenantID, customerID, (*partner.Customer).Activate)
}

// Deactivate hides a customer from new documents
func (s *CustomerService) Deactivate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.changeStatus(ctx, tenantID, customerID, (*partner.Customer).Deactivate)
}

func (s *CustomerService) changeStatus(ctx context.Context, tenantID, customerID uuid.UUID, change func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if err := change(customer); err != nil {
		return nil, err
	}

	if err := s.customerRepo.SaveWithLock(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer that no document references
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}

	if s.documents != nil {
		count, err := s.documents.CountForCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrCustomerInUse
		}
	}

	return s.customerRepo.DeleteForTenant(ctx, tenantID, customerID)
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, customer); err != nil {
		logger.L(ctx).Warn("Failed to publish customer events",
			zap.String("customer_id", customer.ID.String()),
			zap.Error(err),
		)
	}
}
