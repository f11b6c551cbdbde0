package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/partner"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockDocumentRepository is a mock implementation of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.DocumentFilter) ([]invoicing.Document, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]invoicing.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) FindOutstandingInvoices(ctx context.Context, tenantID uuid.UUID) ([]invoicing.Document, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]invoicing.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindNumberedInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]invoicing.Document, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]invoicing.Document), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *invoicing.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveWithLock(ctx context.Context, doc *invoicing.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// IssueWithNextNumber hands the configured sequence to issue unless an error is configured
func (m *MockDocumentRepository) IssueWithNextNumber(ctx context.Context, doc *invoicing.Document, prefix string, year int, issue invoicing.IssueFunc) error {
	args := m.Called(ctx, doc, prefix, year)
	if err := args.Error(1); err != nil {
		return err
	}
	return issue(args.Get(0).(int64))
}

func (m *MockDocumentRepository) CountForCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) ([]partner.Customer, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockCompanyProfileRepository is a mock implementation of CompanyProfileRepository
type MockCompanyProfileRepository struct {
	mock.Mock
}

func (m *MockCompanyProfileRepository) FindForTenant(ctx context.Context, tenantID uuid.UUID) (*partner.CompanyProfile, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CompanyProfile), args.Error(1)
}

func (m *MockCompanyProfileRepository) Save(ctx context.Context, profile *partner.CompanyProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockExpenseRepository is a mock implementation of expense.Repository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.Filter) ([]expense.Expense, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]expense.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseRepository) FindBillableByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]expense.Expense, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]expense.Expense, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) SaveWithLock(ctx context.Context, e *expense.Expense) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) MarkExported(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, documentID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, ids, documentID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) ReleaseFromDocument(ctx context.Context, tenantID, documentID uuid.UUID, keep []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, documentID, keep)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	docs      *MockDocumentRepository
	customers *MockCustomerRepository
	profiles  *MockCompanyProfileRepository
	expenses  *MockExpenseRepository
	service   *DocumentService
	tenantID  uuid.UUID
	userID    uuid.UUID
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		docs:      new(MockDocumentRepository),
		customers: new(MockCustomerRepository),
		profiles:  new(MockCompanyProfileRepository),
		expenses:  new(MockExpenseRepository),
		tenantID:  uuid.New(),
		userID:    uuid.New(),
		now:       time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
	}
	f.service = NewDocumentService(f.docs, f.customers, f.profiles, f.expenses, Settings{
		Prefixes: invoicing.NumberPrefixes{Invoice: "INV", CreditNote: "CN"},
	})
	f.service.now = func() time.Time { return f.now }
	return f
}

func newTestCustomer(t *testing.T, tenantID uuid.UUID) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(tenantID, uuid.New(), partner.CustomerDetails{
		Name:  "Acme GmbH",
		Email: "billing@acme.at",
		VATID: "ATU12345678",
	})
	require.NoError(t, err)
	customer.ClearDomainEvents()
	return customer
}

func newTestProfile(t *testing.T, tenantID uuid.UUID) *partner.CompanyProfile {
	t.Helper()
	profile, err := partner.NewCompanyProfile(tenantID, uuid.New(), partner.CompanyDetails{
		Name:          "BOTFORCE GmbH",
		InvoicePrefix: "RE",
	})
	require.NoError(t, err)
	return profile
}

func newTestDraft(t *testing.T, tenantID, customerID uuid.UUID) *invoicing.Document {
	t.Helper()
	doc, err := invoicing.NewDocument(tenantID, uuid.New(), invoicing.DocumentTypeInvoice, customerID, "EUR", []invoicing.LineInput{
		{
			Description: "Consulting",
			Quantity:    decimal.NewFromInt(3),
			UnitPrice:   decimal.RequireFromString("33.33"),
			TaxRate:     invoicing.TaxRateStandard,
		},
	})
	require.NoError(t, err)
	doc.ClearDomainEvents()
	return doc
}

func newApprovedExpense(t *testing.T, tenantID uuid.UUID, amount string) expense.Expense {
	t.Helper()
	e, err := expense.NewExpense(tenantID, uuid.New(), expense.Details{
		ExpenseDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Merchant:    "ÖBB",
		Category:    expense.CategoryTravel,
		Description: "Wien - Linz",
		Amount:      decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	require.NoError(t, e.Submit())
	require.NoError(t, e.Approve(uuid.New()))
	e.ClearDomainEvents()
	return *e
}
