package recurring

import (
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TemplateLine is a line copied verbatim into every generated document
type TemplateLine struct {
	ID          uuid.UUID         `json:"id"`
	TemplateID  uuid.UUID         `json:"template_id"`
	LineNumber  int               `json:"line_number"`
	Description string            `json:"description"`
	Quantity    decimal.Decimal   `json:"quantity"`
	Unit        string            `json:"unit"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	TaxRate     invoicing.TaxRate `json:"tax_rate"`
}

// ToInput converts the line back into a document line input
func (l TemplateLine) ToInput() invoicing.LineInput {
	return invoicing.LineInput{
		Description: l.Description,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		UnitPrice:   l.UnitPrice,
		TaxRate:     l.TaxRate,
	}
}

// Template generates an invoice for a customer on a fixed schedule
type Template struct {
	shared.TenantAggregateRoot
	Name          string               `json:"name"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	Frequency     Frequency            `json:"frequency"`
	DayOfMonth    *int                 `json:"day_of_month"`
	DayOfWeek     *time.Weekday        `json:"day_of_week"`
	NextIssueDate time.Time            `json:"next_issue_date"`
	LastIssuedAt  *time.Time           `json:"last_issued_at"`
	IsActive      bool                 `json:"is_active"`
	AutoIssue     bool                 `json:"auto_issue"`
	Currency      valueobject.Currency `json:"currency"`
	Notes         string               `json:"notes"`
	Lines         []TemplateLine       `json:"lines"`
}

// TemplateDetails are the user-editable fields of a template
type TemplateDetails struct {
	Name       string
	CustomerID uuid.UUID
	Schedule   Schedule
	StartDate  time.Time
	AutoIssue  bool
	Currency   valueobject.Currency
	Notes      string
	Lines      []invoicing.LineInput
}

func (d *TemplateDetails) normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	d.Notes = strings.TrimSpace(d.Notes)
	if d.Currency == "" {
		d.Currency = valueobject.DefaultCurrency
	}
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 200 characters")
	}
	if d.CustomerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !d.Currency.IsValid() {
		return shared.NewDomainErrorf("INVALID_CURRENCY", "Invalid currency: %s", d.Currency)
	}
	if d.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError("EMPTY_TEMPLATE", "Template needs at least one line")
	}
	if err := d.Schedule.Validate(); err != nil {
		return err
	}
	if !d.Schedule.Frequency.IsWeekBased() && d.Schedule.DayOfMonth == nil {
		// store the anchor so clamping in short months does not drift it
		anchor := d.StartDate.Day()
		d.Schedule.DayOfMonth = &anchor
	}
	// validated through the same rules as document lines
	_, err := invoicing.BuildLines(uuid.Nil, d.Lines)
	return err
}

// NewTemplate creates an active template whose first issue date is the
// first scheduled day on or after the start date
func NewTemplate(tenantID, createdBy uuid.UUID, details TemplateDetails) (*Template, error) {
	if err := details.normalize(); err != nil {
		return nil, err
	}
	t := &Template{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		IsActive:            true,
	}
	t.apply(details)
	return t, nil
}

func (t *Template) apply(d TemplateDetails) {
	t.Name = d.Name
	t.CustomerID = d.CustomerID
	t.Frequency = d.Schedule.Frequency
	t.DayOfMonth = d.Schedule.DayOfMonth
	t.DayOfWeek = d.Schedule.DayOfWeek
	t.NextIssueDate = d.Schedule.FirstOccurrence(d.StartDate)
	t.AutoIssue = d.AutoIssue
	t.Currency = d.Currency
	t.Notes = d.Notes

	t.Lines = make([]TemplateLine, len(d.Lines))
	for i, in := range d.Lines {
		t.Lines[i] = TemplateLine{
			ID:          uuid.New(),
			TemplateID:  t.ID,
			LineNumber:  i + 1,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Unit:        strings.TrimSpace(in.Unit),
			UnitPrice:   in.UnitPrice,
			TaxRate:     in.TaxRate,
		}
	}
}

// Update replaces the template's fields and lines. The start date becomes
// the new next issue date anchor.
func (t *Template) Update(details TemplateDetails) error {
	if err := details.normalize(); err != nil {
		return err
	}
	t.apply(details)
	t.Touch()
	return nil
}

// Schedule returns the template's schedule
func (t *Template) Schedule() Schedule {
	return Schedule{Frequency: t.Frequency, DayOfMonth: t.DayOfMonth, DayOfWeek: t.DayOfWeek}
}

// IsDue reports whether a document should be generated on today
func (t *Template) IsDue(today time.Time) bool {
	return t.IsActive && !t.NextIssueDate.After(shared.TruncateToDay(today))
}

// Activate resumes generation
func (t *Template) Activate() {
	if !t.IsActive {
		t.IsActive = true
		t.Touch()
	}
}

// Deactivate pauses generation
func (t *Template) Deactivate() {
	if t.IsActive {
		t.IsActive = false
		t.Touch()
	}
}

// Generate builds the draft invoice for the current period. It does not
// advance the schedule; call Advance after the document has been stored.
func (t *Template) Generate(createdBy uuid.UUID, today time.Time) (*invoicing.Document, error) {
	if !t.IsDue(today) {
		return nil, ErrTemplateNotDue
	}
	inputs := make([]invoicing.LineInput, len(t.Lines))
	for i, l := range t.Lines {
		inputs[i] = l.ToInput()
	}
	doc, err := invoicing.NewDocument(t.TenantID, createdBy, invoicing.DocumentTypeInvoice, t.CustomerID, t.Currency, inputs)
	if err != nil {
		return nil, err
	}
	origin := t.ID
	doc.RecurringTemplateID = &origin
	doc.Notes = t.Notes
	return doc, nil
}

// Advance moves the schedule exactly one period forward. Missed periods are
// not caught up; the next tick generates one document for the next date.
func (t *Template) Advance(issuedAt time.Time) {
	t.NextIssueDate = t.Schedule().Next(t.NextIssueDate)
	at := issuedAt.UTC()
	t.LastIssuedAt = &at
	t.Touch()
}

// PeriodKey identifies the period the template is about to generate
func (t *Template) PeriodKey() string {
	return t.ID.String() + ":" + t.NextIssueDate.Format("2006-01-02")
}
