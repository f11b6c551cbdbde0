package expense

import (
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Request DTOs
// =============================================================================

// CreateExpenseRequest records a receipt-based expense
type CreateExpenseRequest struct {
	CustomerID  *uuid.UUID      `json:"customer_id"`
	ExpenseDate time.Time       `json:"expense_date" binding:"required"`
	Merchant    string          `json:"merchant" binding:"required,max=200"`
	Category    string          `json:"category" binding:"required,oneof=travel meals office software hardware other"`
	Description string          `json:"description" binding:"max=1000"`
	Amount      decimal.Decimal `json:"amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TaxRate     string          `json:"tax_rate" binding:"omitempty,tax_rate"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
}

// UpdateExpenseRequest replaces a draft or rejected expense
type UpdateExpenseRequest = CreateExpenseRequest

func (r CreateExpenseRequest) details() (expense.Details, error) {
	currency, err := valueobject.NormalizeCurrency(r.Currency)
	if err != nil {
		return expense.Details{}, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}
	return expense.Details{
		CustomerID:  r.CustomerID,
		ExpenseDate: r.ExpenseDate,
		Merchant:    r.Merchant,
		Category:    expense.Category(r.Category),
		Description: r.Description,
		Amount:      r.Amount,
		TaxAmount:   r.TaxAmount,
		TaxRate:     invoicing.TaxRate(r.TaxRate),
		Currency:    currency,
	}, nil
}

// MileageRequest records a Kilometergeld claim. Without a rate the
// configured mileage rate applies.
type MileageRequest struct {
	CustomerID *uuid.UUID       `json:"customer_id"`
	Date       time.Time        `json:"date" binding:"required"`
	Route      string           `json:"route" binding:"required,max=1000"`
	DistanceKm decimal.Decimal  `json:"distance_km"`
	RatePerKm  *decimal.Decimal `json:"rate_per_km"`
}

// RejectExpenseRequest carries the mandatory rejection reason
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReceiptUploadRequest asks for a presigned receipt upload URL
type ReceiptUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
}

// ConfirmReceiptRequest attaches an uploaded receipt to the expense
type ConfirmReceiptRequest struct {
	Key string `json:"key" binding:"required,max=512"`
}

// ExpenseListFilter represents filter options for the expense list
type ExpenseListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft submitted approved rejected exported"`
	Category   string     `form:"category"`
	CustomerID string     `form:"customer_id" binding:"omitempty,uuid"`
	Billable   *bool      `form:"billable"`
	Mine       bool       `form:"mine"`
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

// ExpenseResponse represents an expense
type ExpenseResponse struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        uuid.UUID        `json:"tenant_id"`
	CustomerID      *uuid.UUID       `json:"customer_id,omitempty"`
	ExpenseDate     time.Time        `json:"expense_date"`
	Merchant        string           `json:"merchant"`
	Category        string           `json:"category"`
	Description     string           `json:"description"`
	Amount          decimal.Decimal  `json:"amount"`
	TaxAmount       decimal.Decimal  `json:"tax_amount"`
	TaxRate         string           `json:"tax_rate"`
	Currency        string           `json:"currency"`
	Status          string           `json:"status"`
	DistanceKm      *decimal.Decimal `json:"distance_km,omitempty"`
	MileageRate     *decimal.Decimal `json:"mileage_rate,omitempty"`
	ReceiptKey      string           `json:"receipt_key,omitempty"`
	ReceiptURL      string           `json:"receipt_url,omitempty"`
	SubmittedAt     *time.Time       `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID       `json:"approved_by,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	ExportedAt      *time.Time       `json:"exported_at,omitempty"`
	DocumentID      *uuid.UUID       `json:"document_id,omitempty"`
	CreatedBy       *uuid.UUID       `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// ReceiptUploadResponse carries the presigned upload URL
type ReceiptUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ScannedReceiptResponse is the OCR result used to prefill an expense form
type ScannedReceiptResponse struct {
	Merchant   string             `json:"merchant"`
	Date       *time.Time         `json:"date,omitempty"`
	Amount     *decimal.Decimal   `json:"amount,omitempty"`
	TaxAmount  *decimal.Decimal   `json:"tax_amount,omitempty"`
	Currency   string             `json:"currency,omitempty"`
	Confidence map[string]float32 `json:"confidence,omitempty"`
}

// ToExpenseResponse converts a domain Expense to ExpenseResponse
func ToExpenseResponse(e *expense.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		TenantID:        e.TenantID,
		CustomerID:      e.CustomerID,
		ExpenseDate:     e.ExpenseDate,
		Merchant:        e.Merchant,
		Category:        string(e.Category),
		Description:     e.Description,
		Amount:          e.Amount,
		TaxAmount:       e.TaxAmount,
		TaxRate:         string(e.TaxRate),
		Currency:        string(e.Currency),
		Status:          string(e.Status),
		DistanceKm:      e.DistanceKm,
		MileageRate:     e.MileageRate,
		ReceiptKey:      e.ReceiptKey,
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		ApprovedBy:      e.ApprovedBy,
		RejectedAt:      e.RejectedAt,
		RejectionReason: e.RejectionReason,
		ExportedAt:      e.ExportedAt,
		DocumentID:      e.DocumentID,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
}

// ToExpenseResponses converts a slice of domain expenses
func ToExpenseResponses(expenses []expense.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}

// ToScannedReceiptResponse converts an OCR result
func ToScannedReceiptResponse(r *expense.ScannedReceipt) ScannedReceiptResponse {
	return ScannedReceiptResponse{
		Merchant:   r.Merchant,
		Date:       r.Date,
		Amount:     r.Total,
		TaxAmount:  r.Tax,
		Currency:   r.Currency,
		Confidence: r.Confidence,
	}
}
