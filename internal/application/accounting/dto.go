package accounting

import (
	"time"

	"github.com/botforce/unity/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateExportRequest snapshots a period for the accountant
type CreateExportRequest struct {
	Name        string    `json:"name" binding:"max=200"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
}

// ExportListFilter represents filter options for the export list
type ExportListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExportRowResponse is one snapshotted record
type ExportRowResponse struct {
	Type     string          `json:"type"`
	SourceID uuid.UUID       `json:"source_id"`
	Date     time.Time       `json:"date"`
	Number   string          `json:"number,omitempty"`
	Party    string          `json:"party"`
	Category string          `json:"category,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Status   string          `json:"status"`
}

// ExportResponse represents an accounting export. Rows are only filled
// when a single export is requested.
type ExportResponse struct {
	ID              uuid.UUID           `json:"id"`
	TenantID        uuid.UUID           `json:"tenant_id"`
	Name            string              `json:"name"`
	PeriodStart     time.Time           `json:"period_start"`
	PeriodEnd       time.Time           `json:"period_end"`
	InvoiceCount    int                 `json:"invoice_count"`
	CreditNoteCount int                 `json:"credit_note_count"`
	ExpenseCount    int                 `json:"expense_count"`
	InvoiceTotal    decimal.Decimal     `json:"invoice_total"`
	InvoiceTax      decimal.Decimal     `json:"invoice_tax"`
	CreditNoteTotal decimal.Decimal     `json:"credit_note_total"`
	CreditNoteTax   decimal.Decimal     `json:"credit_note_tax"`
	ExpenseTotal    decimal.Decimal     `json:"expense_total"`
	ExpenseTax      decimal.Decimal     `json:"expense_tax"`
	NetRevenue      decimal.Decimal     `json:"net_revenue"`
	HasFile         bool                `json:"has_file"`
	IsLocked        bool                `json:"is_locked"`
	LockedAt        *time.Time          `json:"locked_at,omitempty"`
	LockedBy        *uuid.UUID          `json:"locked_by,omitempty"`
	Rows            []ExportRowResponse `json:"rows,omitempty"`
	CreatedBy       *uuid.UUID          `json:"created_by,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	Version         int                 `json:"version"`
}

// DownloadResponse carries either a presigned URL or the rendered file
type DownloadResponse struct {
	URL       string     `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	FileName  string     `json:"file_name"`
	Content   []byte     `json:"-"`
}

// ToExportResponse converts a domain Export to ExportResponse
func ToExportResponse(e *accounting.Export) ExportResponse {
	resp := ExportResponse{
		ID:              e.ID,
		TenantID:        e.TenantID,
		Name:            e.Name,
		PeriodStart:     e.PeriodStart,
		PeriodEnd:       e.PeriodEnd,
		InvoiceCount:    e.InvoiceCount,
		CreditNoteCount: e.CreditNoteCount,
		ExpenseCount:    e.ExpenseCount,
		InvoiceTotal:    e.InvoiceTotal,
		InvoiceTax:      e.InvoiceTax,
		CreditNoteTotal: e.CreditNoteTotal,
		CreditNoteTax:   e.CreditNoteTax,
		ExpenseTotal:    e.ExpenseTotal,
		ExpenseTax:      e.ExpenseTax,
		NetRevenue:      e.NetRevenue(),
		HasFile:         e.FileKey != "",
		IsLocked:        e.IsLocked,
		LockedAt:        e.LockedAt,
		LockedBy:        e.LockedBy,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
	if len(e.Rows) > 0 {
		resp.Rows = make([]ExportRowResponse, len(e.Rows))
		for i, r := range e.Rows {
			resp.Rows[i] = ExportRowResponse{
				Type:     string(r.Type),
				SourceID: r.SourceID,
				Date:     r.Date,
				Number:   r.Number,
				Party:    r.Party,
				Category: r.Category,
				Subtotal: r.Subtotal,
				Tax:      r.Tax,
				Total:    r.Total,
				Status:   r.Status,
			}
		}
	}
	return resp
}

// ToExportResponses converts a slice of domain exports
func ToExportResponses(exports []accounting.Export) []ExportResponse {
	responses := make([]ExportResponse, len(exports))
	for i := range exports {
		responses[i] = ToExportResponse(&exports[i])
	}
	return responses
}
