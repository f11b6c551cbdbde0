package partner

import (
	"regexp"
	"strings"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MaxPaymentTermsDays bounds payment terms on customers and company profiles
const MaxPaymentTermsDays = 365

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	vatIDRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{2,13}$`)
)

// Customer is a billed business partner
type Customer struct {
	shared.TenantAggregateRoot
	Name             string              `json:"name"`
	Email            string              `json:"email"`
	Address          valueobject.Address `json:"address"`
	VATID            string              `json:"vat_id"`
	PaymentTermsDays *int                `json:"payment_terms_days"` // nil falls back to the company default
	IsActive         bool                `json:"is_active"`
}

// CustomerDetails are the editable fields of a customer
type CustomerDetails struct {
	Name             string
	Email            string
	Address          valueobject.Address
	VATID            string
	PaymentTermsDays *int
}

func (d *CustomerDetails) normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.VATID = NormalizeVATID(d.VATID)

	if err := validateName(d.Name); err != nil {
		return err
	}
	if err := validateEmail(d.Email); err != nil {
		return err
	}
	if err := validateVATID(d.VATID); err != nil {
		return err
	}
	if err := d.Address.Validate(); err != nil {
		return shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}
	if d.PaymentTermsDays != nil {
		if err := validatePaymentTerms(*d.PaymentTermsDays); err != nil {
			return err
		}
	}
	return nil
}

// NewCustomer creates an active customer
func NewCustomer(tenantID, createdBy uuid.UUID, details CustomerDetails) (*Customer, error) {
	if err := details.normalize(); err != nil {
		return nil, err
	}

	customer := &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		IsActive:            true,
	}
	customer.apply(details)

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

func (c *Customer) apply(d CustomerDetails) {
	c.Name = d.Name
	c.Email = d.Email
	c.Address = d.Address
	c.VATID = d.VATID
	c.PaymentTermsDays = d.PaymentTermsDays
}

// Update replaces the customer's editable fields. Issued documents keep
// their snapshot of the previous values.
func (c *Customer) Update(details CustomerDetails) error {
	if err := details.normalize(); err != nil {
		return err
	}
	c.apply(details)
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))

	return nil
}

// Activate activates the customer
func (c *Customer) Activate() error {
	if c.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Customer is already active")
	}
	c.IsActive = true
	c.Touch()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c))

	return nil
}

// Deactivate hides the customer from new documents
func (c *Customer) Deactivate() error {
	if !c.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Customer is already inactive")
	}
	c.IsActive = false
	c.Touch()

	c.AddDomainEvent(NewCustomerStatusChangedEvent(c))

	return nil
}

// EffectivePaymentTerms returns the customer's terms or companyDefault
func (c *Customer) EffectivePaymentTerms(companyDefault int) int {
	if c.PaymentTermsDays != nil {
		return *c.PaymentTermsDays
	}
	return companyDefault
}

// Snapshot freezes the customer for an issued document
func (c *Customer) Snapshot(companyDefaultTerms int) invoicing.CustomerSnapshot {
	return invoicing.CustomerSnapshot{
		CustomerID:       c.ID,
		Name:             c.Name,
		Email:            c.Email,
		VATID:            c.VATID,
		Address:          c.Address,
		PaymentTermsDays: c.EffectivePaymentTerms(companyDefaultTerms),
	}
}

// NormalizeVATID upper-cases a VAT ID and strips spaces and dots
func NormalizeVATID(vatID string) string {
	r := strings.NewReplacer(" ", "", ".", "", "-", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(vatID)))
}

// Validation functions

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateVATID(vatID string) error {
	if vatID == "" {
		return nil
	}
	if !vatIDRegex.MatchString(vatID) {
		return shared.NewDomainErrorf("INVALID_VAT_ID", "Invalid VAT ID: %s", vatID)
	}
	return nil
}

func validatePaymentTerms(days int) error {
	if days < 0 || days > MaxPaymentTermsDays {
		return shared.NewDomainErrorf("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and %d days", MaxPaymentTermsDays)
	}
	return nil
}
