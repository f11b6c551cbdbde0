package partner

import (
	"regexp"
	"strings"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DefaultPaymentTermsDays applies when neither customer nor company set terms
const DefaultPaymentTermsDays = 14

var (
	prefixRegex = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
	ibanRegex   = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}$`)
	bicRegex    = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// CompanyProfile is the issuing company of a tenant. There is at most one per tenant.
type CompanyProfile struct {
	shared.TenantAggregateRoot
	Name                    string              `json:"name"`
	Email                   string              `json:"email"`
	Address                 valueobject.Address `json:"address"`
	VATID                   string              `json:"vat_id"`
	IBAN                    string              `json:"iban"`
	BIC                     string              `json:"bic"`
	InvoicePrefix           string              `json:"invoice_prefix"`
	CreditNotePrefix        string              `json:"credit_note_prefix"`
	DefaultPaymentTermsDays int                 `json:"default_payment_terms_days"`
}

// CompanyDetails are the editable fields of the company profile
type CompanyDetails struct {
	Name                    string
	Email                   string
	Address                 valueobject.Address
	VATID                   string
	IBAN                    string
	BIC                     string
	InvoicePrefix           string
	CreditNotePrefix        string
	DefaultPaymentTermsDays *int
}

func (d *CompanyDetails) normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.VATID = NormalizeVATID(d.VATID)
	d.IBAN = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(d.IBAN), " ", ""))
	d.BIC = strings.ToUpper(strings.TrimSpace(d.BIC))
	d.InvoicePrefix = strings.ToUpper(strings.TrimSpace(d.InvoicePrefix))
	d.CreditNotePrefix = strings.ToUpper(strings.TrimSpace(d.CreditNotePrefix))

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
	if d.IBAN != "" && !ibanRegex.MatchString(d.IBAN) {
		return shared.NewDomainError("INVALID_IBAN", "Invalid IBAN format")
	}
	if d.BIC != "" && !bicRegex.MatchString(d.BIC) {
		return shared.NewDomainError("INVALID_BIC", "Invalid BIC format")
	}
	for _, p := range []string{d.InvoicePrefix, d.CreditNotePrefix} {
		if p != "" && !prefixRegex.MatchString(p) {
			return shared.NewDomainErrorf("INVALID_PREFIX", "Number prefix must be 1-10 letters or digits, got %q", p)
		}
	}
	if d.InvoicePrefix != "" && d.InvoicePrefix == d.CreditNotePrefix {
		return shared.NewDomainError("INVALID_PREFIX", "Invoice and credit note prefixes must differ")
	}
	if d.DefaultPaymentTermsDays != nil {
		if err := validatePaymentTerms(*d.DefaultPaymentTermsDays); err != nil {
			return err
		}
	}
	return nil
}

// NewCompanyProfile creates the tenant's company profile
func NewCompanyProfile(tenantID, createdBy uuid.UUID, details CompanyDetails) (*CompanyProfile, error) {
	if err := details.normalize(); err != nil {
		return nil, err
	}
	p := &CompanyProfile{
		TenantAggregateRoot:     shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		DefaultPaymentTermsDays: DefaultPaymentTermsDays,
	}
	p.apply(details)
	return p, nil
}

func (p *CompanyProfile) apply(d CompanyDetails) {
	p.Name = d.Name
	p.Email = d.Email
	p.Address = d.Address
	p.VATID = d.VATID
	p.IBAN = d.IBAN
	p.BIC = d.BIC
	p.InvoicePrefix = d.InvoicePrefix
	p.CreditNotePrefix = d.CreditNotePrefix
	if d.DefaultPaymentTermsDays != nil {
		p.DefaultPaymentTermsDays = *d.DefaultPaymentTermsDays
	}
}

// Update replaces the profile's editable fields
func (p *CompanyProfile) Update(details CompanyDetails) error {
	if err := details.normalize(); err != nil {
		return err
	}
	p.apply(details)
	p.Touch()
	return nil
}

// Prefixes returns the configured number prefixes, with fallbacks for unset ones
func (p *CompanyProfile) Prefixes(fallback invoicing.NumberPrefixes) invoicing.NumberPrefixes {
	out := fallback
	if p == nil {
		return out
	}
	if p.InvoicePrefix != "" {
		out.Invoice = p.InvoicePrefix
	}
	if p.CreditNotePrefix != "" {
		out.CreditNote = p.CreditNotePrefix
	}
	return out
}

// Snapshot freezes the company for an issued document
func (p *CompanyProfile) Snapshot() invoicing.CompanySnapshot {
	return invoicing.CompanySnapshot{
		Name:    p.Name,
		Email:   p.Email,
		VATID:   p.VATID,
		IBAN:    p.IBAN,
		BIC:     p.BIC,
		Address: p.Address,
	}
}
