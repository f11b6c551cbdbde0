package partner

import (
	"time"

	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// =============================================================================
// Shared DTOs
// =============================================================================

// AddressRequest is a postal address in create and update requests
type AddressRequest struct {
	Street     string `json:"street" binding:"max=200"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	City       string `json:"city" binding:"max=100"`
	Country    string `json:"country" binding:"omitempty,len=2"`
}

// ToAddress converts the request into the value object
func (a AddressRequest) ToAddress() valueobject.Address {
	return valueobject.Address{
		Street:     a.Street,
		PostalCode: a.PostalCode,
		City:       a.City,
		Country:    a.Country,
	}
}

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name             string         `json:"name" binding:"required,min=1,max=200"`
	Email            string         `json:"email" binding:"omitempty,email,max=200"`
	Address          AddressRequest `json:"address"`
	VATID            string         `json:"vat_id" binding:"max=20"`
	PaymentTermsDays *int           `json:"payment_terms_days" binding:"omitempty,min=0,max=365"`
}

func (r CreateCustomerRequest) details() partner.CustomerDetails {
	return partner.CustomerDetails{
		Name:             r.Name,
		Email:            r.Email,
		Address:          r.Address.ToAddress(),
		VATID:            r.VATID,
		PaymentTermsDays: r.PaymentTermsDays,
	}
}

// UpdateCustomerRequest replaces all editable fields of a customer
type UpdateCustomerRequest = CreateCustomerRequest

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID           `json:"id"`
	TenantID         uuid.UUID           `json:"tenant_id"`
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Address          valueobject.Address `json:"address"`
	VATID            string              `json:"vat_id"`
	PaymentTermsDays *int                `json:"payment_terms_days"`
	IsActive         bool                `json:"is_active"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Version          int                 `json:"version"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		Name:             c.Name,
		Email:            c.Email,
		Address:          c.Address,
		VATID:            c.VATID,
		PaymentTermsDays: c.PaymentTermsDays,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// =============================================================================
// Company profile DTOs
// =============================================================================

// CompanyProfileRequest creates or replaces the tenant's company profile
type CompanyProfileRequest struct {
	Name                    string         `json:"name" binding:"required,min=1,max=200"`
	Email                   string         `json:"email" binding:"omitempty,email,max=200"`
	Address                 AddressRequest `json:"address"`
	VATID                   string         `json:"vat_id" binding:"max=20"`
	IBAN                    string         `json:"iban" binding:"max=40"`
	BIC                     string         `json:"bic" binding:"max=11"`
	InvoicePrefix           string         `json:"invoice_prefix" binding:"max=10"`
	CreditNotePrefix        string         `json:"credit_note_prefix" binding:"max=10"`
	DefaultPaymentTermsDays *int           `json:"default_payment_terms_days" binding:"omitempty,min=0,max=365"`
}

func (r CompanyProfileRequest) details() partner.CompanyDetails {
	return partner.CompanyDetails{
		Name:                    r.Name,
		Email:                   r.Email,
		Address:                 r.Address.ToAddress(),
		VATID:                   r.VATID,
		IBAN:                    r.IBAN,
		BIC:                     r.BIC,
		InvoicePrefix:           r.InvoicePrefix,
		CreditNotePrefix:        r.CreditNotePrefix,
		DefaultPaymentTermsDays: r.DefaultPaymentTermsDays,
	}
}

// CompanyProfileResponse represents the company profile in API responses
type CompanyProfileResponse struct {
	ID                      uuid.UUID           `json:"id"`
	Name                    string              `json:"name"`
	Email                   string              `json:"email"`
	Address                 valueobject.Address `json:"address"`
	VATID                   string              `json:"vat_id"`
	IBAN                    string              `json:"iban"`
	BIC                     string              `json:"bic"`
	InvoicePrefix           string              `json:"invoice_prefix"`
	CreditNotePrefix        string              `json:"credit_note_prefix"`
	DefaultPaymentTermsDays int                 `json:"default_payment_terms_days"`
	UpdatedAt               time.Time           `json:"updated_at"`
	Version                 int                 `json:"version"`
}

// ToCompanyProfileResponse converts the domain profile
func ToCompanyProfileResponse(p *partner.CompanyProfile) CompanyProfileResponse {
	return CompanyProfileResponse{
		ID:                      p.ID,
		Name:                    p.Name,
		Email:                   p.Email,
		Address:                 p.Address,
		VATID:                   p.VATID,
		IBAN:                    p.IBAN,
		BIC:                     p.BIC,
		InvoicePrefix:           p.InvoicePrefix,
		CreditNotePrefix:        p.CreditNotePrefix,
		DefaultPaymentTermsDays: p.DefaultPaymentTermsDays,
		UpdatedAt:               p.UpdatedAt,
		Version:                 p.Version,
	}
}
