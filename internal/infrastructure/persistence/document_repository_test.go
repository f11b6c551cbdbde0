package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument(t *testing.T, tenantID, customerID uuid.UUID) *invoicing.Document {
	t.Helper()
	doc, err := invoicing.NewDocument(tenantID, uuid.New(), invoicing.DocumentTypeInvoice, customerID, "EUR", []invoicing.LineInput{
		{Description: "Consulting", Quantity: decimal.NewFromInt(3), Unit: "h", UnitPrice: decimal.RequireFromString("33.33"), TaxRate: invoicing.TaxRateStandard},
		{Description: "Travel", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: invoicing.TaxRateZero},
	})
	require.NoError(t, err)
	return doc
}

func issueWith(doc *invoicing.Document, prefix string, year int, at time.Time) invoicing.IssueFunc {
	return func(seq int64) error {
		return doc.Issue(invoicing.IssueParams{
			Number:           invoicing.FormatDocumentNumber(prefix, year, seq),
			IssueDate:        at,
			PaymentTermsDays: 14,
			Customer:         invoicing.CustomerSnapshot{CustomerID: doc.CustomerID, Name: "ACME GmbH"},
			Company:          invoicing.CompanySnapshot{Name: "BOTFORCE GmbH"},
		})
	}
}

func TestGormDocumentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	doc := newTestDocument(t, tenantID, uuid.New())
	require.NoError(t, repo.Save(ctx, doc))

	t.Run("loads lines in order with totals", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 2)
		assert.Equal(t, "Consulting", found.Lines[0].Description)
		assert.Equal(t, 1, found.Lines[0].LineNumber)
		assert.True(t, found.Lines[0].Subtotal.Equal(decimal.RequireFromString("99.99")))
		assert.True(t, found.Lines[0].TaxAmount.Equal(decimal.RequireFromString("20.00")))
		assert.True(t, found.Total.Equal(doc.Total))
		assert.Equal(t, invoicing.DocumentStatusDraft, found.Status)
		assert.Nil(t, found.DocumentNumber)
		assert.Nil(t, found.CustomerSnapshot)
	})

	t.Run("other tenants cannot see the document", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("saving again replaces the lines", func(t *testing.T) {
		require.NoError(t, doc.ReplaceLines([]invoicing.LineInput{
			{Description: "Workshop", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500), TaxRate: invoicing.TaxRateStandard},
		}))
		require.NoError(t, repo.SaveWithLock(ctx, doc))

		found, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		require.Len(t, found.Lines, 1)
		assert.Equal(t, "Workshop", found.Lines[0].Description)
		assert.True(t, found.Total.Equal(decimal.NewFromInt(600)))

		var lineCount int64
		require.NoError(t, db.Table("document_lines").Where("document_id = ?", doc.ID).Count(&lineCount).Error)
		assert.Equal(t, int64(1), lineCount)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		require.NoError(t, doc.UpdateHeader(doc.CustomerID, "EUR", "first writer", nil))
		require.NoError(t, repo.SaveWithLock(ctx, doc))

		require.NoError(t, stale.UpdateHeader(stale.CustomerID, "EUR", "second writer", nil))
		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormDocumentRepository_IssueWithNextNumber(t *testing.T) {
	ctx := context.Background()
	issueDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("numbers start at one and increase per tenant", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormDocumentRepository(db)
		tenantID := uuid.New()

		for want := 1; want <= 3; want++ {
			doc := newTestDocument(t, tenantID, uuid.New())
			require.NoError(t, repo.Save(ctx, doc))
			require.NoError(t, repo.IssueWithNextNumber(ctx, doc, "INV", 2024, issueWith(doc, "INV", 2024, issueDate)))
			assert.Equal(t, invoicing.FormatDocumentNumber("INV", 2024, int64(want)), *doc.DocumentNumber)
		}

		other := newTestDocument(t, uuid.New(), uuid.New())
		require.NoError(t, repo.Save(ctx, other))
		require.NoError(t, repo.IssueWithNextNumber(ctx, other, "INV", 2024, issueWith(other, "INV", 2024, issueDate)))
		assert.Equal(t, "INV-2024-0001", *other.DocumentNumber)
	})

	t.Run("persists snapshots, due date and lock", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormDocumentRepository(db)
		tenantID := uuid.New()

		doc := newTestDocument(t, tenantID, uuid.New())
		require.NoError(t, repo.Save(ctx, doc))
		require.NoError(t, repo.IssueWithNextNumber(ctx, doc, "INV", 2024, issueWith(doc, "INV", 2024, issueDate)))

		found, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, invoicing.DocumentStatusIssued, found.Status)
		assert.True(t, found.IsLocked)
		require.NotNil(t, found.DueDate)
		assert.Equal(t, "2024-03-29", found.DueDate.Format("2006-01-02"))
		require.NotNil(t, found.CustomerSnapshot)
		assert.Equal(t, "ACME GmbH", found.CustomerSnapshot.Name)
		require.NotNil(t, found.CompanySnapshot)
		assert.Equal(t, "BOTFORCE GmbH", found.CompanySnapshot.Name)
		assert.Len(t, found.Lines, 2)
	})

	t.Run("counter is seeded from existing numbers", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormDocumentRepository(db)
		tenantID := uuid.New()

		for i := 1; i <= 2; i++ {
			legacy := newTestDocument(t, tenantID, uuid.New())
			require.NoError(t, legacy.Issue(invoicing.IssueParams{
				Number:    invoicing.FormatDocumentNumber("INV", 2024, int64(i)),
				IssueDate: issueDate,
			}))
			require.NoError(t, repo.Save(ctx, legacy))
		}

		doc := newTestDocument(t, tenantID, uuid.New())
		require.NoError(t, repo.Save(ctx, doc))
		require.NoError(t, repo.IssueWithNextNumber(ctx, doc, "INV", 2024, issueWith(doc, "INV", 2024, issueDate)))
		assert.Equal(t, "INV-2024-0003", *doc.DocumentNumber)
	})

	t.Run("failing issue rolls back the counter", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormDocumentRepository(db)
		tenantID := uuid.New()

		doc := newTestDocument(t, tenantID, uuid.New())
		require.NoError(t, repo.Save(ctx, doc))

		err := repo.IssueWithNextNumber(ctx, doc, "INV", 2024, func(int64) error { return invoicing.ErrEmptyDocument })
		assert.ErrorIs(t, err, invoicing.ErrEmptyDocument)

		require.NoError(t, repo.IssueWithNextNumber(ctx, doc, "INV", 2024, issueWith(doc, "INV", 2024, issueDate)))
		assert.Equal(t, "INV-2024-0001", *doc.DocumentNumber)
	})

	t.Run("duplicate number surfaces as business error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormDocumentRepository(db)
		tenantID := uuid.New()

		taken := newTestDocument(t, tenantID, uuid.New())
		require.NoError(t, taken.Issue(invoicing.IssueParams{Number: "INV-2024-0001", IssueDate: issueDate}))
		require.NoError(t, repo.Save(ctx, taken))
		// Counter row already exists with a stale value, as after a manual import
		require.NoError(t, db.Exec(`INSERT INTO document_sequences (tenant_id, document_type, year, last_value, updated_at) VALUES (?, ?, ?, 0, ?)`,
			tenantID, invoicing.DocumentTypeInvoice, 2024, time.Now()).Error)

		doc := newTestDocument(t, tenantID, uuid.New())
		require.NoError(t, repo.Save(ctx, doc))
		err := repo.IssueWithNextNumber(ctx, doc, "INV", 2024, issueWith(doc, "INV", 2024, issueDate))
		assert.ErrorIs(t, err, invoicing.ErrDuplicateDocumentNumber)

		found, err := repo.FindByIDForTenant(ctx, tenantID, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, invoicing.DocumentStatusDraft, found.Status)
	})
}

func TestGormDocumentRepository_Queries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDocumentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	customerID := uuid.New()
	march := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	may := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	draft := newTestDocument(t, tenantID, customerID)
	require.NoError(t, repo.Save(ctx, draft))

	issuedMarch := newTestDocument(t, tenantID, customerID)
	require.NoError(t, repo.Save(ctx, issuedMarch))
	require.NoError(t, repo.IssueWithNextNumber(ctx, issuedMarch, "INV", 2024, issueWith(issuedMarch, "INV", 2024, march)))

	paidMay := newTestDocument(t, tenantID, uuid.New())
	require.NoError(t, repo.Save(ctx, paidMay))
	require.NoError(t, repo.IssueWithNextNumber(ctx, paidMay, "INV", 2024, issueWith(paidMay, "INV", 2024, may)))
	require.NoError(t, paidMay.MarkPaid(may.AddDate(0, 0, 3)))
	require.NoError(t, repo.SaveWithLock(ctx, paidMay))

	t.Run("outstanding invoices are issued only", func(t *testing.T) {
		docs, err := repo.FindOutstandingInvoices(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, issuedMarch.ID, docs[0].ID)
	})

	t.Run("numbered in period excludes drafts and other months", func(t *testing.T) {
		docs, err := repo.FindNumberedInPeriod(ctx, tenantID,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, issuedMarch.ID, docs[0].ID)
	})

	t.Run("list filters by status and counts", func(t *testing.T) {
		status := invoicing.DocumentStatusDraft
		docs, total, err := repo.FindAllForTenant(ctx, tenantID, invoicing.DocumentFilter{
			Filter: shared.Filter{Page: 1, PageSize: 10},
			Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, docs, 1)
		assert.Equal(t, draft.ID, docs[0].ID)
	})

	t.Run("list searches by number and paginates", func(t *testing.T) {
		docs, total, err := repo.FindAllForTenant(ctx, tenantID, invoicing.DocumentFilter{
			Filter: shared.Filter{Page: 1, PageSize: 1, Search: "inv-2024", OrderBy: "document_number", OrderDir: "asc"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, docs, 1)
		assert.Equal(t, "INV-2024-0001", *docs[0].DocumentNumber)
	})

	t.Run("count for customer", func(t *testing.T) {
		count, err := repo.CountForCustomer(ctx, tenantID, customerID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("delete removes document and lines", func(t *testing.T) {
		require.NoError(t, repo.DeleteForTenant(ctx, tenantID, draft.ID))
		_, err := repo.FindByIDForTenant(ctx, tenantID, draft.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var lineCount int64
		require.NoError(t, db.Table("document_lines").Where("document_id = ?", draft.ID).Count(&lineCount).Error)
		assert.Zero(t, lineCount)

		assert.ErrorIs(t, repo.DeleteForTenant(ctx, tenantID, draft.ID), shared.ErrNotFound)
	})
}
