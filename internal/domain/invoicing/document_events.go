package invoicing

import (
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeDocument is the aggregate type of invoices and credit notes
const AggregateTypeDocument = "Document"

// Event type constants for Document
const (
	EventTypeDocumentCreated   = "DocumentCreated"
	EventTypeDocumentIssued    = "DocumentIssued"
	EventTypeDocumentPaid      = "DocumentPaid"
	EventTypeDocumentCancelled = "DocumentCancelled"
)

// DocumentCreatedEvent is raised when a draft is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType    `json:"document_type"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	LineCount    int             `json:"line_count"`
	Total        decimal.Decimal `json:"total"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(d *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentType:    d.Type,
		CustomerID:      d.CustomerID,
		LineCount:       len(d.Lines),
		Total:           d.Total,
	}
}

// DocumentIssuedEvent is raised when a draft receives its number
type DocumentIssuedEvent struct {
	shared.BaseDomainEvent
	DocumentType   DocumentType    `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	IssueDate      time.Time       `json:"issue_date"`
	DueDate        time.Time       `json:"due_date"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
}

// NewDocumentIssuedEvent creates a new DocumentIssuedEvent
func NewDocumentIssuedEvent(d *Document) *DocumentIssuedEvent {
	return &DocumentIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentIssued, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentType:    d.Type,
		DocumentNumber:  d.NumberOrEmpty(),
		CustomerID:      d.CustomerID,
		IssueDate:       *d.IssueDate,
		DueDate:         *d.DueDate,
		Total:           d.Total,
		Currency:        d.Currency.String(),
	}
}

// DocumentPaidEvent is raised when an issued document is paid
type DocumentPaidEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string          `json:"document_number"`
	PaidDate       time.Time       `json:"paid_date"`
	Total          decimal.Decimal `json:"total"`
}

// NewDocumentPaidEvent creates a new DocumentPaidEvent
func NewDocumentPaidEvent(d *Document) *DocumentPaidEvent {
	return &DocumentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaid, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentNumber:  d.NumberOrEmpty(),
		PaidDate:        *d.PaidDate,
		Total:           d.Total,
	}
}

// DocumentCancelledEvent is raised when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentNumber string      `json:"document_number,omitempty"`
	Reason         string      `json:"reason"`
	ExpenseIDs     []uuid.UUID `json:"expense_ids,omitempty"`
}

// NewDocumentCancelledEvent creates a new DocumentCancelledEvent
func NewDocumentCancelledEvent(d *Document) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCancelled, AggregateTypeDocument, d.ID, d.TenantID),
		DocumentNumber:  d.NumberOrEmpty(),
		Reason:          d.CancelReason,
		ExpenseIDs:      d.ExpenseIDs(),
	}
}
