package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/forecast"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecurringCostRepository struct {
	mock.Mock
}

func (m *MockRecurringCostRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*forecast.RecurringCost, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*forecast.RecurringCost), args.Error(1)
}

func (m *MockRecurringCostRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]forecast.RecurringCost, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]forecast.RecurringCost), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecurringCostRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]forecast.RecurringCost, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]forecast.RecurringCost), args.Error(1)
}

func (m *MockRecurringCostRepository) Save(ctx context.Context, cost *forecast.RecurringCost) error {
	return m.Called(ctx, cost).Error(0)
}

func (m *MockRecurringCostRepository) SaveWithLock(ctx context.Context, cost *forecast.RecurringCost) error {
	return m.Called(ctx, cost).Error(0)
}

func (m *MockRecurringCostRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// MockDocumentRepository serves outstanding invoices only
type MockDocumentRepository struct {
	mock.Mock
	invoicing.DocumentRepository
}

func (m *MockDocumentRepository) FindOutstandingInvoices(ctx context.Context, tenantID uuid.UUID) ([]invoicing.Document, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]invoicing.Document), args.Error(1)
}

func outstandingInvoice(t *testing.T, tenantID uuid.UUID, total string, due time.Time) invoicing.Document {
	t.Helper()
	doc, err := invoicing.NewDocument(tenantID, uuid.New(), invoicing.DocumentTypeInvoice, uuid.New(), "EUR", []invoicing.LineInput{{
		Description: "Consulting",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString(total),
		TaxRate:     invoicing.TaxRateZero,
	}})
	require.NoError(t, err)
	doc.Status = invoicing.DocumentStatusIssued
	doc.DueDate = &due
	return *doc
}

func TestForecastService_Project(t *testing.T) {
	tenantID := uuid.New()
	costs := new(MockRecurringCostRepository)
	docs := new(MockDocumentRepository)
	service := NewForecastService(costs, docs)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	dom := 15
	rent, err := forecast.NewRecurringCost(tenantID, uuid.New(), forecast.CostDetails{
		Name: "Office rent", Amount: decimal.RequireFromString("800.00"),
		Frequency: forecast.CostFrequencyMonthly, DayOfMonth: &dom,
	})
	require.NoError(t, err)

	docs.On("FindOutstandingInvoices", mock.Anything, tenantID).Return([]invoicing.Document{
		outstandingInvoice(t, tenantID, "1200.00", time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)),
		outstandingInvoice(t, tenantID, "450.00", time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)),
	}, nil)
	costs.On("FindActive", mock.Anything, tenantID).Return([]forecast.RecurringCost{*rent}, nil)

	projection, err := service.Project(context.Background(), tenantID, ProjectionRequest{
		Start:           &start,
		Weeks:           4,
		StartingBalance: decimal.RequireFromString("500.00"),
	})

	require.NoError(t, err)
	require.Len(t, projection.Weeks, 4)
	assert.Equal(t, "1200", projection.OverdueAmount.String())
	assert.Equal(t, "1200", projection.Weeks[0].Inflow.String())
	assert.Equal(t, "450", projection.Weeks[1].Inflow.String())
	assert.Equal(t, "800", projection.Weeks[1].Outflow.String())
	assert.Equal(t, "1350", projection.EndingBalance.String())
}

func TestForecastService_Project_UsesConfiguredHorizon(t *testing.T) {
	tenantID := uuid.New()
	costs := new(MockRecurringCostRepository)
	docs := new(MockDocumentRepository)
	service := NewForecastService(costs, docs)
	service.SetDefaultWeeks(8)
	service.SetDefaultWeeks(99) // ignored, beyond the maximum
	service.now = func() time.Time { return time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC) }

	docs.On("FindOutstandingInvoices", mock.Anything, tenantID).Return([]invoicing.Document{}, nil)
	costs.On("FindActive", mock.Anything, tenantID).Return([]forecast.RecurringCost{}, nil)

	projection, err := service.Project(context.Background(), tenantID, ProjectionRequest{})

	require.NoError(t, err)
	assert.Len(t, projection.Weeks, 8)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), projection.Start)
}

func TestForecastService_Project_RejectsHorizon(t *testing.T) {
	tenantID := uuid.New()
	costs := new(MockRecurringCostRepository)
	docs := new(MockDocumentRepository)
	service := NewForecastService(costs, docs)
	docs.On("FindOutstandingInvoices", mock.Anything, tenantID).Return([]invoicing.Document{}, nil)
	costs.On("FindActive", mock.Anything, tenantID).Return([]forecast.RecurringCost{}, nil)

	_, err := service.Project(context.Background(), tenantID, ProjectionRequest{Weeks: forecast.MaxWeeks + 1})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_HORIZON", domainErr.Code)
}

func TestForecastService_Costs(t *testing.T) {
	tenantID, userID := uuid.New(), uuid.New()

	t.Run("create weekly cost", func(t *testing.T) {
		costs := new(MockRecurringCostRepository)
		service := NewForecastService(costs, new(MockDocumentRepository))
		costs.On("Save", mock.Anything, mock.AnythingOfType("*forecast.RecurringCost")).Return(nil)
		friday := int(time.Friday)

		result, err := service.CreateCost(context.Background(), tenantID, userID, RecurringCostRequest{
			Name: "Cleaning", Amount: decimal.RequireFromString("49.999"), Frequency: "weekly", DayOfWeek: &friday,
		})

		require.NoError(t, err)
		assert.Equal(t, "50", result.Amount.String())
		require.NotNil(t, result.DayOfWeek)
		assert.Equal(t, friday, *result.DayOfWeek)
		assert.True(t, result.IsActive)
	})

	t.Run("monthly cost needs a day of month", func(t *testing.T) {
		costs := new(MockRecurringCostRepository)
		service := NewForecastService(costs, new(MockDocumentRepository))

		_, err := service.CreateCost(context.Background(), tenantID, userID, RecurringCostRequest{
			Name: "Rent", Amount: decimal.RequireFromString("800"), Frequency: "monthly",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DAY_OF_MONTH", domainErr.Code)
		costs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("deactivate saves once", func(t *testing.T) {
		costs := new(MockRecurringCostRepository)
		service := NewForecastService(costs, new(MockDocumentRepository))
		dom := 1
		cost, err := forecast.NewRecurringCost(tenantID, userID, forecast.CostDetails{
			Name: "Rent", Amount: decimal.RequireFromString("800"), Frequency: forecast.CostFrequencyMonthly, DayOfMonth: &dom,
		})
		require.NoError(t, err)
		costs.On("FindByIDForTenant", mock.Anything, tenantID, cost.ID).Return(cost, nil)
		costs.On("SaveWithLock", mock.Anything, cost).Return(nil).Once()

		result, err := service.SetCostActive(context.Background(), tenantID, cost.ID, false)
		require.NoError(t, err)
		assert.False(t, result.IsActive)

		_, err = service.SetCostActive(context.Background(), tenantID, cost.ID, false)
		require.NoError(t, err)
		costs.AssertNumberOfCalls(t, "SaveWithLock", 1)
	})

	t.Run("delete unknown cost", func(t *testing.T) {
		costs := new(MockRecurringCostRepository)
		service := NewForecastService(costs, new(MockDocumentRepository))
		id := uuid.New()
		costs.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

		err := service.DeleteCost(context.Background(), tenantID, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		costs.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	})
}
