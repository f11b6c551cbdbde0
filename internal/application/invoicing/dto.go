package invoicing

import (
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Request DTOs
// =============================================================================

// LineRequest is one document line as sent by the client
type LineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit" binding:"max=20"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     string          `json:"tax_rate" binding:"required,tax_rate"`
	// ExpenseID is only kept when the expense is already billed on the document
	ExpenseID *uuid.UUID `json:"expense_id"`
}

func (r LineRequest) toInput() invoicing.LineInput {
	return invoicing.LineInput{
		Description: r.Description,
		Quantity:    r.Quantity,
		Unit:        r.Unit,
		UnitPrice:   r.UnitPrice,
		TaxRate:     invoicing.TaxRate(r.TaxRate),
	}
}

// CreateDocumentRequest creates a draft invoice or credit note
type CreateDocumentRequest struct {
	Type       string        `json:"type" binding:"required,document_type"`
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	Notes      string        `json:"notes" binding:"max=2000"`
	IssueDate  *time.Time    `json:"issue_date"`
	Lines      []LineRequest `json:"lines" binding:"dive"`
}

// UpdateDocumentRequest replaces header and lines of a draft
type UpdateDocumentRequest struct {
	CustomerID uuid.UUID     `json:"customer_id" binding:"required"`
	Currency   string        `json:"currency" binding:"omitempty,len=3"`
	Notes      string        `json:"notes" binding:"max=2000"`
	IssueDate  *time.Time    `json:"issue_date"`
	Lines      []LineRequest `json:"lines" binding:"dive"`
}

// IssueDocumentRequest issues a draft. Without an issue date the draft's
// preset date or today is used.
type IssueDocumentRequest struct {
	IssueDate *time.Time `json:"issue_date"`
}

// MarkPaidRequest records the payment of an issued document
type MarkPaidRequest struct {
	PaidDate *time.Time `json:"paid_date"`
}

// CancelDocumentRequest cancels a draft or issued document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CreateFromExpensesRequest bills approved expenses on a new invoice draft
type CreateFromExpensesRequest struct {
	CustomerID uuid.UUID   `json:"customer_id" binding:"required"`
	Currency   string      `json:"currency" binding:"omitempty,len=3"`
	ExpenseIDs []uuid.UUID `json:"expense_ids" binding:"required,min=1,max=200"`
}

// AddExpensesRequest bills approved expenses on an existing draft
type AddExpensesRequest struct {
	ExpenseIDs []uuid.UUID `json:"expense_ids" binding:"required,min=1,max=200"`
}

// DocumentListFilter represents filter options for the document list
type DocumentListFilter struct {
	Search     string     `form:"search"`
	Type       string     `form:"type" binding:"omitempty,document_type"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft issued paid cancelled"`
	CustomerID string     `form:"customer_id" binding:"omitempty,uuid"`
	FromDate   *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate     *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Response DTOs
// =============================================================================

// LineResponse represents a document line
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     string          `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ExpenseID   *uuid.UUID      `json:"expense_id,omitempty"`
}

// DocumentResponse represents a document with its lines
type DocumentResponse struct {
	ID                  uuid.UUID                   `json:"id"`
	TenantID            uuid.UUID                   `json:"tenant_id"`
	CustomerID          uuid.UUID                   `json:"customer_id"`
	Type                string                      `json:"type"`
	Status              string                      `json:"status"`
	DocumentNumber      *string                     `json:"document_number"`
	IssueDate           *time.Time                  `json:"issue_date"`
	DueDate             *time.Time                  `json:"due_date"`
	PaidDate            *time.Time                  `json:"paid_date"`
	Currency            string                      `json:"currency"`
	Notes               string                      `json:"notes"`
	Subtotal            decimal.Decimal             `json:"subtotal"`
	TaxAmount           decimal.Decimal             `json:"tax_amount"`
	Total               decimal.Decimal             `json:"total"`
	TaxBreakdown        map[string]decimal.Decimal  `json:"tax_breakdown"`
	IsLocked            bool                        `json:"is_locked"`
	CustomerSnapshot    *invoicing.CustomerSnapshot `json:"customer_snapshot,omitempty"`
	CompanySnapshot     *invoicing.CompanySnapshot  `json:"company_snapshot,omitempty"`
	ReferenceDocumentID *uuid.UUID                  `json:"reference_document_id,omitempty"`
	RecurringTemplateID *uuid.UUID                  `json:"recurring_template_id,omitempty"`
	CancelledAt         *time.Time                  `json:"cancelled_at,omitempty"`
	CancelReason        string                      `json:"cancel_reason,omitempty"`
	Lines               []LineResponse              `json:"lines"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
	Version             int                         `json:"version"`
}

// DocumentListResponse represents a document in list views, without lines
type DocumentListResponse struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name,omitempty"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	DocumentNumber *string         `json:"document_number"`
	IssueDate      *time.Time      `json:"issue_date"`
	DueDate        *time.Time      `json:"due_date"`
	Currency       string          `json:"currency"`
	Total          decimal.Decimal `json:"total"`
	IsOverdue      bool            `json:"is_overdue"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToDocumentResponse converts a domain Document to DocumentResponse
func ToDocumentResponse(d *invoicing.Document) DocumentResponse {
	breakdown := make(map[string]decimal.Decimal, len(d.TaxBreakdown))
	for rate, amount := range d.TaxBreakdown {
		breakdown[string(rate)] = amount
	}
	lines := make([]LineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = LineResponse{
			ID:          l.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TaxRate:     string(l.TaxRate),
			Subtotal:    l.Subtotal,
			TaxAmount:   l.TaxAmount,
			Total:       l.Total,
			ExpenseID:   l.ExpenseID,
		}
	}
	return DocumentResponse{
		ID:                  d.ID,
		TenantID:            d.TenantID,
		CustomerID:          d.CustomerID,
		Type:                string(d.Type),
		Status:              string(d.Status),
		DocumentNumber:      d.DocumentNumber,
		IssueDate:           d.IssueDate,
		DueDate:             d.DueDate,
		PaidDate:            d.PaidDate,
		Currency:            string(d.Currency),
		Notes:               d.Notes,
		Subtotal:            d.Subtotal,
		TaxAmount:           d.TaxAmount,
		Total:               d.Total,
		TaxBreakdown:        breakdown,
		IsLocked:            d.IsLocked,
		CustomerSnapshot:    d.CustomerSnapshot,
		CompanySnapshot:     d.CompanySnapshot,
		ReferenceDocumentID: d.ReferenceDocumentID,
		RecurringTemplateID: d.RecurringTemplateID,
		CancelledAt:         d.CancelledAt,
		CancelReason:        d.CancelReason,
		Lines:               lines,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
		Version:             d.Version,
	}
}

// ToDocumentListResponses converts documents for list views as of today
func ToDocumentListResponses(docs []invoicing.Document, today time.Time) []DocumentListResponse {
	responses := make([]DocumentListResponse, len(docs))
	for i := range docs {
		d := &docs[i]
		item := DocumentListResponse{
			ID:             d.ID,
			CustomerID:     d.CustomerID,
			Type:           string(d.Type),
			Status:         string(d.Status),
			DocumentNumber: d.DocumentNumber,
			IssueDate:      d.IssueDate,
			DueDate:        d.DueDate,
			Currency:       string(d.Currency),
			Total:          d.Total,
			IsOverdue:      d.IsOverdue(today),
			CreatedAt:      d.CreatedAt,
		}
		if d.CustomerSnapshot != nil {
			item.CustomerName = d.CustomerSnapshot.Name
		}
		responses[i] = item
	}
	return responses
}

func parseCurrency(code string) (valueobject.Currency, error) {
	currency, err := valueobject.NormalizeCurrency(code)
	if err != nil {
		return "", shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	return currency, nil
}
