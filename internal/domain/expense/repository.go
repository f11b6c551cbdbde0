package expense

import (
	"context"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter defines filtering options for expense queries
type Filter struct {
	shared.Filter
	Status     *Status
	Category   *Category
	CustomerID *uuid.UUID
	CreatedBy  *uuid.UUID
	Billable   *bool // approved and not yet exported
	FromDate   *time.Time
	ToDate     *time.Time
}

// Repository defines the interface for expense persistence
type Repository interface {
	// FindByIDForTenant finds an expense by ID for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)

	// FindAllForTenant lists expenses and the total match count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter Filter) ([]Expense, int64, error)

	// FindBillableByIDs returns those of ids that are approved with no exported_at
	FindBillableByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Expense, error)

	// FindForPeriod returns approved and exported expenses dated in [from, to]
	FindForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Expense, error)

	// Save creates or updates an expense
	Save(ctx context.Context, e *Expense) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, e *Expense) error

	// MarkExported flags still-billable expenses as billed on documentID and
	// returns how many rows changed
	MarkExported(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, documentID uuid.UUID, at time.Time) (int64, error)

	// ReleaseFromDocument returns the expenses billed on documentID, except
	// those in keep, to approved so they can be billed again
	ReleaseFromDocument(ctx context.Context, tenantID, documentID uuid.UUID, keep []uuid.UUID) (int64, error)

	// DeleteForTenant deletes an expense
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ScannedReceipt is what OCR could read from a receipt image or PDF
type ScannedReceipt struct {
	Merchant   string             `json:"merchant"`
	Date       *time.Time         `json:"date"`
	Total      *decimal.Decimal   `json:"total"`
	Tax        *decimal.Decimal   `json:"tax"`
	Currency   string             `json:"currency"`
	Confidence map[string]float32 `json:"confidence"`
}

// ReceiptScanner extracts expense data from a receipt
type ReceiptScanner interface {
	Scan(ctx context.Context, content []byte, mimeType string) (*ScannedReceipt, error)
}
