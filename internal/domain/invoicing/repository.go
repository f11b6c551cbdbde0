package invoicing

import (
	"context"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter defines filtering options for document queries
type DocumentFilter struct {
	shared.Filter
	Type       *DocumentType   // Filter by invoice / credit note
	Status     *DocumentStatus // Filter by status
	CustomerID *uuid.UUID      // Filter by customer
	FromDate   *time.Time      // Issue date range start
	ToDate     *time.Time      // Issue date range end
}

// IssueFunc receives the next sequence value inside the issuance transaction
// and must apply it to the document.
type IssueFunc func(sequence int64) error

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	// FindByIDForTenant loads a document with its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)

	// FindAllForTenant lists documents (without lines) and the total match count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]Document, int64, error)

	// FindOutstandingInvoices returns issued, unpaid invoices
	FindOutstandingInvoices(ctx context.Context, tenantID uuid.UUID) ([]Document, error)

	// FindNumberedInPeriod returns non-draft documents whose issue date lies in [from, to]
	FindNumberedInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Document, error)

	// Save creates or updates a document. Lines are deleted and recreated.
	Save(ctx context.Context, doc *Document) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, doc *Document) error

	// IssueWithNextNumber allocates the next number for the document's type
	// and year in one transaction with the save. A concurrent duplicate
	// surfaces as ErrDuplicateDocumentNumber.
	IssueWithNextNumber(ctx context.Context, doc *Document, prefix string, year int, issue IssueFunc) error

	// CountForCustomer counts documents of any status that reference a customer
	CountForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)

	// DeleteForTenant hard deletes a draft and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
