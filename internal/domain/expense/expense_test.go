package expense

import (
	"errors"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() Details {
	return Details{
		ExpenseDate: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC),
		Merchant:    " ÖBB ",
		Category:    CategoryTravel,
		Description: "Vienna - Graz",
		Amount:      decimal.RequireFromString("49.90"),
		TaxAmount:   decimal.RequireFromString("4.54"),
		TaxRate:     invoicing.TaxRateReduced,
	}
}

func newApproved(t *testing.T) *Expense {
	t.Helper()
	e, err := NewExpense(uuid.New(), uuid.New(), validDetails())
	require.NoError(t, err)
	require.NoError(t, e.Submit())
	require.NoError(t, e.Approve(uuid.New()))
	return e
}

func TestNewExpense(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), uuid.New(), validDetails())
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, e.Status)
		assert.Equal(t, "ÖBB", e.Merchant)
		assert.Equal(t, "EUR", e.Currency.String())
		assert.Equal(t, "45.36", e.NetAmount().StringFixed(2))
		assert.Nil(t, e.ExportedAt)
	})

	t.Run("validation", func(t *testing.T) {
		cases := map[string]func(d *Details){
			"zero amount":      func(d *Details) { d.Amount = decimal.Zero },
			"tax above amount": func(d *Details) { d.TaxAmount = decimal.NewFromInt(100) },
			"negative tax":     func(d *Details) { d.TaxAmount = decimal.NewFromInt(-1) },
			"no merchant":      func(d *Details) { d.Merchant = "  " },
			"bad category":     func(d *Details) { d.Category = "fun" },
			"no date":          func(d *Details) { d.ExpenseDate = time.Time{} },
			"bad rate":         func(d *Details) { d.TaxRate = "standard_19" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				d := validDetails()
				mutate(&d)
				_, err := NewExpense(uuid.New(), uuid.New(), d)
				assert.Error(t, err)
			})
		}
	})
}

func TestExpenseLifecycle(t *testing.T) {
	t.Run("submit approve export", func(t *testing.T) {
		e := newApproved(t)
		assert.True(t, e.IsBillable())
		assert.Len(t, e.GetDomainEvents(), 2)

		docID := uuid.New()
		require.NoError(t, e.MarkExported(docID, time.Now()))
		assert.Equal(t, StatusExported, e.Status)
		assert.Equal(t, docID, *e.DocumentID)
		assert.NotNil(t, e.ExportedAt)
		assert.False(t, e.IsBillable())
		assert.ErrorIs(t, e.MarkExported(uuid.New(), time.Now()), ErrExpenseNotBillable)
	})

	t.Run("reject and re-edit", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), uuid.New(), validDetails())
		require.NoError(t, err)
		require.NoError(t, e.Submit())
		assert.Error(t, e.Reject(uuid.New(), " "))
		require.NoError(t, e.Reject(uuid.New(), "receipt missing"))
		assert.Equal(t, StatusRejected, e.Status)

		d := validDetails()
		d.Amount = decimal.RequireFromString("59.90")
		require.NoError(t, e.Update(d))
		assert.Equal(t, StatusDraft, e.Status)
		assert.Empty(t, e.RejectionReason)
		require.NoError(t, e.Submit())
	})

	t.Run("explicit reopen", func(t *testing.T) {
		e, _ := NewExpense(uuid.New(), uuid.New(), validDetails())
		assert.Error(t, e.Reopen())
		require.NoError(t, e.Submit())
		require.NoError(t, e.Reject(uuid.New(), "wrong project"))
		require.NoError(t, e.Reopen())
		assert.Equal(t, StatusDraft, e.Status)
	})

	t.Run("no backwards transitions", func(t *testing.T) {
		e := newApproved(t)
		err := e.Submit()
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Error(t, e.Update(validDetails()))
		assert.Error(t, e.Reject(uuid.New(), "late"))
		assert.Error(t, e.EnsureDeletable())
	})

	t.Run("draft cannot be approved", func(t *testing.T) {
		e, _ := NewExpense(uuid.New(), uuid.New(), validDetails())
		assert.Error(t, e.Approve(uuid.New()))
		assert.NoError(t, e.EnsureDeletable())
	})

	t.Run("receipt", func(t *testing.T) {
		e, _ := NewExpense(uuid.New(), uuid.New(), validDetails())
		require.NoError(t, e.AttachReceipt("receipts/a.pdf"))
		assert.Equal(t, "receipts/a.pdf", e.ReceiptKey)
		assert.Error(t, e.AttachReceipt(""))
		approved := newApproved(t)
		assert.Error(t, approved.AttachReceipt("receipts/b.pdf"))
	})
}

func TestMileage(t *testing.T) {
	t.Run("default Kilometergeld", func(t *testing.T) {
		e, err := NewMileageExpense(uuid.New(), uuid.New(), Trip{
			Date:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			Route:      "Wien - Linz - Wien",
			DistanceKm: decimal.RequireFromString("372.4"),
		})
		require.NoError(t, err)
		assert.Equal(t, CategoryMileage, e.Category)
		assert.Equal(t, MileageMerchant, e.Merchant)
		assert.Equal(t, "186.20", e.Amount.StringFixed(2))
		assert.True(t, e.TaxAmount.IsZero())
		assert.Equal(t, invoicing.TaxRateZero, e.TaxRate)
		assert.Equal(t, "0.5", e.MileageRate.String())
	})

	t.Run("custom rate", func(t *testing.T) {
		e, err := NewMileageExpense(uuid.New(), uuid.New(), Trip{
			Date: time.Now(), DistanceKm: decimal.NewFromInt(100), RatePerKm: decimal.RequireFromString("0.25"),
		})
		require.NoError(t, err)
		assert.Equal(t, "25.00", e.Amount.StringFixed(2))
	})

	t.Run("rejects silly distances", func(t *testing.T) {
		_, err := NewMileageExpense(uuid.New(), uuid.New(), Trip{Date: time.Now(), DistanceKm: decimal.Zero})
		assert.Error(t, err)
		_, err = NewMileageExpense(uuid.New(), uuid.New(), Trip{Date: time.Now(), DistanceKm: decimal.NewFromInt(10000)})
		assert.Error(t, err)
	})

	t.Run("update trip", func(t *testing.T) {
		e, err := NewMileageExpense(uuid.New(), uuid.New(), Trip{Date: time.Now(), DistanceKm: decimal.NewFromInt(10)})
		require.NoError(t, err)
		require.NoError(t, e.UpdateTrip(Trip{Date: time.Now(), DistanceKm: decimal.NewFromInt(20)}))
		assert.Equal(t, "10.00", e.Amount.StringFixed(2))
		assert.Error(t, e.Update(Details{Category: CategoryMileage}))
	})

	assert.Equal(t, "0.01", CalculateMileage(decimal.RequireFromString("0.01"), decimal.RequireFromString("0.5")).StringFixed(2))
}
