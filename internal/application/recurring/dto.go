package recurring

import (
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/recurring"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Request DTOs
// =============================================================================

// TemplateLineRequest is one line copied into every generated invoice
type TemplateLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit" binding:"max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     string          `json:"tax_rate" binding:"required,tax_rate"`
}

// TemplateRequest creates or replaces a recurring invoice template
type TemplateRequest struct {
	Name       string                `json:"name" binding:"required,max=200"`
	CustomerID uuid.UUID             `json:"customer_id" binding:"required"`
	Frequency  string                `json:"frequency" binding:"required,oneof=weekly biweekly monthly quarterly yearly"`
	DayOfMonth *int                  `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	DayOfWeek  *int                  `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartDate  time.Time             `json:"start_date" binding:"required"`
	AutoIssue  bool                  `json:"auto_issue"`
	Currency   string                `json:"currency" binding:"omitempty,len=3"`
	Notes      string                `json:"notes" binding:"max=2000"`
	Lines      []TemplateLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r TemplateRequest) details() (recurring.TemplateDetails, error) {
	currency, err := valueobject.NormalizeCurrency(r.Currency)
	if err != nil {
		return recurring.TemplateDetails{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	schedule := recurring.Schedule{
		Frequency:  recurring.Frequency(r.Frequency),
		DayOfMonth: r.DayOfMonth,
	}
	if r.DayOfWeek != nil {
		weekday := time.Weekday(*r.DayOfWeek)
		schedule.DayOfWeek = &weekday
	}
	lines := make([]invoicing.LineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = invoicing.LineInput{
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TaxRate:     invoicing.TaxRate(l.TaxRate),
		}
	}
	return recurring.TemplateDetails{
		Name:       r.Name,
		CustomerID: r.CustomerID,
		Schedule:   schedule,
		StartDate:  r.StartDate,
		AutoIssue:  r.AutoIssue,
		Currency:   currency,
		Notes:      r.Notes,
		Lines:      lines,
	}, nil
}

// TemplateListFilter represents filter options for the template list
type TemplateListFilter struct {
	Search     string `form:"search"`
	IsActive   *bool  `form:"is_active"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// TemplateLineResponse represents a template line
type TemplateLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     string          `json:"tax_rate"`
}

// TemplateResponse represents a recurring invoice template
type TemplateResponse struct {
	ID            uuid.UUID              `json:"id"`
	TenantID      uuid.UUID              `json:"tenant_id"`
	Name          string                 `json:"name"`
	CustomerID    uuid.UUID              `json:"customer_id"`
	Frequency     string                 `json:"frequency"`
	DayOfMonth    *int                   `json:"day_of_month,omitempty"`
	DayOfWeek     *int                   `json:"day_of_week,omitempty"`
	NextIssueDate time.Time              `json:"next_issue_date"`
	LastIssuedAt  *time.Time             `json:"last_issued_at,omitempty"`
	IsActive      bool                   `json:"is_active"`
	AutoIssue     bool                   `json:"auto_issue"`
	Currency      string                 `json:"currency"`
	Notes         string                 `json:"notes"`
	Lines         []TemplateLineResponse `json:"lines"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Version       int                    `json:"version"`
}

// TickResponse reports the document generated by a manual tick
type TickResponse struct {
	TemplateID    uuid.UUID `json:"template_id"`
	DocumentID    uuid.UUID `json:"document_id"`
	Issued        bool      `json:"issued"`
	NextIssueDate time.Time `json:"next_issue_date"`
}

// ToTemplateResponse converts a domain Template to TemplateResponse
func ToTemplateResponse(t *recurring.Template) TemplateResponse {
	lines := make([]TemplateLineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = TemplateLineResponse{
			ID:          l.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TaxRate:     string(l.TaxRate),
		}
	}
	var dayOfWeek *int
	if t.DayOfWeek != nil {
		d := int(*t.DayOfWeek)
		dayOfWeek = &d
	}
	return TemplateResponse{
		ID:            t.ID,
		TenantID:      t.TenantID,
		Name:          t.Name,
		CustomerID:    t.CustomerID,
		Frequency:     string(t.Frequency),
		DayOfMonth:    t.DayOfMonth,
		DayOfWeek:     dayOfWeek,
		NextIssueDate: t.NextIssueDate,
		LastIssuedAt:  t.LastIssuedAt,
		IsActive:      t.IsActive,
		AutoIssue:     t.AutoIssue,
		Currency:      string(t.Currency),
		Notes:         t.Notes,
		Lines:         lines,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Version:       t.Version,
	}
}

// ToTemplateResponses converts a slice of domain templates
func ToTemplateResponses(templates []recurring.Template) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToTemplateResponse(&templates[i])
	}
	return responses
}
