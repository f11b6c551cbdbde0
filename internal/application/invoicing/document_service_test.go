package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func consultingLine() LineRequest {
	return LineRequest{
		Description: "Consulting",
		Quantity:    decimal.NewFromInt(3),
		UnitPrice:   decimal.RequireFromString("33.33"),
		TaxRate:     string(invoicing.TaxRateStandard),
	}
}

func TestDocumentService_Create_Success(t *testing.T) {
	f := newFixture()
	publisher := new(MockEventPublisher)
	f.service.SetEventPublisher(publisher)

	ctx := context.Background()
	customer := newTestCustomer(t, f.tenantID)
	f.customers.On("FindByIDForTenant", ctx, f.tenantID, customer.ID).Return(customer, nil)
	f.docs.On("Save", ctx, mock.AnythingOfType("*invoicing.Document")).Return(nil)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	result, err := f.service.Create(ctx, f.tenantID, f.userID, CreateDocumentRequest{
		Type:       string(invoicing.DocumentTypeInvoice),
		CustomerID: customer.ID,
		Notes:      "  March retainer ",
		Lines:      []LineRequest{consultingLine()},
	})

	require.NoError(t, err)
	assert.Equal(t, string(invoicing.DocumentStatusDraft), result.Status)
	assert.Equal(t, "EUR", result.Currency)
	assert.Equal(t, "March retainer", result.Notes)
	assert.Nil(t, result.DocumentNumber)
	assert.True(t, decimal.RequireFromString("99.99").Equal(result.Subtotal))
	assert.True(t, decimal.RequireFromString("20.00").Equal(result.TaxAmount))
	assert.True(t, decimal.RequireFromString("119.99").Equal(result.Total))
	assert.Equal(t, 1, result.Version)
	publisher.AssertExpectations(t)
}

func TestDocumentService_Create_InactiveCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := newTestCustomer(t, f.tenantID)
	require.NoError(t, customer.Deactivate())
	f.customers.On("FindByIDForTenant", ctx, f.tenantID, customer.ID).Return(customer, nil)

	_, err := f.service.Create(ctx, f.tenantID, f.userID, CreateDocumentRequest{
		Type:       string(invoicing.DocumentTypeInvoice),
		CustomerID: customer.ID,
		Lines:      []LineRequest{consultingLine()},
	})

	assert.ErrorIs(t, err, ErrCustomerInactive)
	f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDocumentService_Create_InvalidCurrency(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customer := newTestCustomer(t, f.tenantID)
	f.customers.On("FindByIDForTenant", ctx, f.tenantID, customer.ID).Return(customer, nil)

	_, err := f.service.Create(ctx, f.tenantID, f.userID, CreateDocumentRequest{
		Type:       string(invoicing.DocumentTypeInvoice),
		CustomerID: customer.ID,
		Currency:   "E1R",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CURRENCY", domainErr.Code)
}

func TestDocumentService_List_AppliesDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customerID := uuid.New()
	draft := newTestDraft(t, f.tenantID, customerID)

	expected := invoicing.DocumentFilter{
		Filter: shared.Filter{Page: 1, PageSize: 20},
	}
	status := invoicing.DocumentStatusDraft
	expected.Status = &status
	expected.CustomerID = &customerID
	f.docs.On("FindAllForTenant", ctx, f.tenantID, expected).Return([]invoicing.Document{*draft}, int64(1), nil)

	items, total, err := f.service.List(ctx, f.tenantID, DocumentListFilter{
		Status:     "draft",
		CustomerID: customerID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsOverdue)
}

func TestDocumentService_Update_KeepsBilledExpensesAndReleasesDropped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	customerID := uuid.New()
	kept, dropped := uuid.New(), uuid.New()

	doc, err := invoicing.NewDocument(f.tenantID, f.userID, invoicing.DocumentTypeInvoice, customerID, "EUR", []invoicing.LineInput{
		{Description: "Train", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: invoicing.TaxRateZero, ExpenseID: &kept},
		{Description: "Hotel", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(120), TaxRate: invoicing.TaxRateZero, ExpenseID: &dropped},
	})
	require.NoError(t, err)
	version := doc.Version

	f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
	f.docs.On("SaveWithLock", ctx, doc).Return(nil)
	f.expenses.On("ReleaseFromDocument", ctx, f.tenantID, doc.ID, []uuid.UUID{kept}).Return(int64(1), nil)

	forged := uuid.New()
	result, err := f.service.Update(ctx, f.tenantID, doc.ID, UpdateDocumentRequest{
		CustomerID: customerID,
		Lines: []LineRequest{
			{Description: "Train", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: "zero", ExpenseID: &kept},
			{Description: "Taxi", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(20), TaxRate: "zero", ExpenseID: &forged},
		},
	})

	require.NoError(t, err)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, &kept, result.Lines[0].ExpenseID)
	assert.Nil(t, result.Lines[1].ExpenseID)
	assert.Equal(t, version+1, result.Version)
	f.expenses.AssertExpectations(t)
}

func TestDocumentService_Update_LockedDocument(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc := newTestDraft(t, f.tenantID, uuid.New())
	require.NoError(t, doc.Cancel(""))

	f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)

	_, err := f.service.Update(ctx, f.tenantID, doc.ID, UpdateDocumentRequest{CustomerID: doc.CustomerID})

	assert.ErrorIs(t, err, invoicing.ErrDocumentLocked)
	f.docs.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestDocumentService_Update_VersionConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc := newTestDraft(t, f.tenantID, uuid.New())

	f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
	f.docs.On("SaveWithLock", ctx, doc).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.Update(ctx, f.tenantID, doc.ID, UpdateDocumentRequest{
		CustomerID: doc.CustomerID,
		Lines:      []LineRequest{consultingLine()},
	})

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("draft with expenses releases them", func(t *testing.T) {
		f := newFixture()
		expenseID := uuid.New()
		doc, err := invoicing.NewDocument(f.tenantID, f.userID, invoicing.DocumentTypeInvoice, uuid.New(), "EUR", []invoicing.LineInput{
			{Description: "Train", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: invoicing.TaxRateZero, ExpenseID: &expenseID},
		})
		require.NoError(t, err)

		f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
		f.docs.On("DeleteForTenant", ctx, f.tenantID, doc.ID).Return(nil)
		f.expenses.On("ReleaseFromDocument", ctx, f.tenantID, doc.ID, []uuid.UUID(nil)).Return(int64(1), nil)

		require.NoError(t, f.service.Delete(ctx, f.tenantID, doc.ID))
		f.expenses.AssertExpectations(t)
	})

	t.Run("issued document cannot be deleted", func(t *testing.T) {
		f := newFixture()
		doc := newTestDraft(t, f.tenantID, uuid.New())
		require.NoError(t, doc.Issue(invoicing.IssueParams{Number: "RE-2026-0001", IssueDate: f.now}))

		f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)

		err := f.service.Delete(ctx, f.tenantID, doc.ID)
		assert.Error(t, err)
		f.docs.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("release failure does not fail the delete", func(t *testing.T) {
		f := newFixture()
		expenseID := uuid.New()
		doc, err := invoicing.NewDocument(f.tenantID, f.userID, invoicing.DocumentTypeInvoice, uuid.New(), "EUR", []invoicing.LineInput{
			{Description: "Train", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: invoicing.TaxRateZero, ExpenseID: &expenseID},
		})
		require.NoError(t, err)

		f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
		f.docs.On("DeleteForTenant", ctx, f.tenantID, doc.ID).Return(nil)
		f.expenses.On("ReleaseFromDocument", ctx, f.tenantID, doc.ID, []uuid.UUID(nil)).Return(int64(0), assert.AnError)

		assert.NoError(t, f.service.Delete(ctx, f.tenantID, doc.ID))
	})
}

func TestDocumentService_MarkPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc := newTestDraft(t, f.tenantID, uuid.New())
	require.NoError(t, doc.Issue(invoicing.IssueParams{Number: "RE-2026-0001", IssueDate: f.now.AddDate(0, 0, -5), PaymentTermsDays: 14}))

	f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
	f.docs.On("SaveWithLock", ctx, doc).Return(nil)

	result, err := f.service.MarkPaid(ctx, f.tenantID, doc.ID, MarkPaidRequest{})

	require.NoError(t, err)
	assert.Equal(t, string(invoicing.DocumentStatusPaid), result.Status)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *result.PaidDate)
}

func TestDocumentService_MarkPaid_DraftRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	doc := newTestDraft(t, f.tenantID, uuid.New())
	f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)

	_, err := f.service.MarkPaid(ctx, f.tenantID, doc.ID, MarkPaidRequest{})

	assert.Error(t, err)
	f.docs.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestDocumentService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("issued document needs a reason", func(t *testing.T) {
		f := newFixture()
		doc := newTestDraft(t, f.tenantID, uuid.New())
		require.NoError(t, doc.Issue(invoicing.IssueParams{Number: "RE-2026-0001", IssueDate: f.now}))
		f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)

		_, err := f.service.Cancel(ctx, f.tenantID, doc.ID, CancelDocumentRequest{})
		assert.Error(t, err)
	})

	t.Run("issued document keeps billed expenses", func(t *testing.T) {
		f := newFixture()
		expenseID := uuid.New()
		doc, err := invoicing.NewDocument(f.tenantID, f.userID, invoicing.DocumentTypeInvoice, uuid.New(), "EUR", []invoicing.LineInput{
			{Description: "Train", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: invoicing.TaxRateZero, ExpenseID: &expenseID},
		})
		require.NoError(t, err)
		require.NoError(t, doc.Issue(invoicing.IssueParams{Number: "RE-2026-0001", IssueDate: f.now}))

		f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
		f.docs.On("SaveWithLock", ctx, doc).Return(nil)

		result, err := f.service.Cancel(ctx, f.tenantID, doc.ID, CancelDocumentRequest{Reason: "Wrong customer"})
		require.NoError(t, err)
		assert.Equal(t, string(invoicing.DocumentStatusCancelled), result.Status)
		assert.Equal(t, "Wrong customer", result.CancelReason)
		f.expenses.AssertNotCalled(t, "ReleaseFromDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("draft releases its expenses", func(t *testing.T) {
		f := newFixture()
		expenseID := uuid.New()
		doc, err := invoicing.NewDocument(f.tenantID, f.userID, invoicing.DocumentTypeInvoice, uuid.New(), "EUR", []invoicing.LineInput{
			{Description: "Train", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50), TaxRate: invoicing.TaxRateZero, ExpenseID: &expenseID},
		})
		require.NoError(t, err)

		f.docs.On("FindByIDForTenant", ctx, f.tenantID, doc.ID).Return(doc, nil)
		f.docs.On("SaveWithLock", ctx, doc).Return(nil)
		f.expenses.On("ReleaseFromDocument", ctx, f.tenantID, doc.ID, []uuid.UUID(nil)).Return(int64(1), nil)

		_, err = f.service.Cancel(ctx, f.tenantID, doc.ID, CancelDocumentRequest{})
		require.NoError(t, err)
		f.expenses.AssertExpectations(t)
	})
}

func TestDocumentService_CreateCreditNote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoice := newTestDraft(t, f.tenantID, uuid.New())
	require.NoError(t, invoice.Issue(invoicing.IssueParams{Number: "RE-2026-0003", IssueDate: f.now}))

	f.docs.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).Return(invoice, nil)
	f.docs.On("Save", ctx, mock.AnythingOfType("*invoicing.Document")).Return(nil)

	result, err := f.service.CreateCreditNote(ctx, f.tenantID, f.userID, invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, string(invoicing.DocumentTypeCreditNote), result.Type)
	assert.Equal(t, string(invoicing.DocumentStatusDraft), result.Status)
	assert.Equal(t, &invoice.ID, result.ReferenceDocumentID)
	assert.Equal(t, "Credit for RE-2026-0003", result.Notes)
	assert.Len(t, result.Lines, 1)
}

func TestDocumentService_CreateCreditNote_FromDraftRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	invoice := newTestDraft(t, f.tenantID, uuid.New())
	f.docs.On("FindByIDForTenant", ctx, f.tenantID, invoice.ID).Return(invoice, nil)

	_, err := f.service.CreateCreditNote(ctx, f.tenantID, f.userID, invoice.ID)

	assert.Error(t, err)
	f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
