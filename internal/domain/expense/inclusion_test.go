package expense

import (
	"strings"
	"testing"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, UniqueIDs([]uuid.UUID{a, uuid.Nil, b, a}))
}

func TestSelectForInclusion(t *testing.T) {
	t.Run("accepts complete approved set in requested order", func(t *testing.T) {
		e1, e2 := newApproved(t), newApproved(t)
		selected, err := SelectForInclusion([]uuid.UUID{e2.ID, e1.ID, e2.ID}, []Expense{*e1, *e2})
		require.NoError(t, err)
		require.Len(t, selected, 2)
		assert.Equal(t, e2.ID, selected[0].ID)
		assert.Equal(t, e1.ID, selected[1].ID)
	})

	t.Run("fails when one is missing", func(t *testing.T) {
		e1 := newApproved(t)
		_, err := SelectForInclusion([]uuid.UUID{e1.ID, uuid.New()}, []Expense{*e1})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExpensesUnavailable)
		assert.Contains(t, err.Error(), "1 of 2")
	})

	t.Run("exported expense is never selected again", func(t *testing.T) {
		e1 := newApproved(t)
		require.NoError(t, e1.MarkExported(uuid.New(), time.Now()))
		_, err := SelectForInclusion([]uuid.UUID{e1.ID}, []Expense{*e1})
		assert.ErrorIs(t, err, ErrExpensesUnavailable)
	})

	t.Run("approved but exported_at set is rejected", func(t *testing.T) {
		e1 := newApproved(t)
		now := time.Now()
		e1.ExportedAt = &now
		_, err := SelectForInclusion([]uuid.UUID{e1.ID}, []Expense{*e1})
		assert.Error(t, err)
	})

	t.Run("empty selection", func(t *testing.T) {
		_, err := SelectForInclusion(nil, nil)
		assert.ErrorIs(t, err, ErrNoExpensesSelected)
	})
}

func TestToLineInputs(t *testing.T) {
	e := newApproved(t)
	inputs := ToLineInputs([]Expense{*e})
	require.Len(t, inputs, 1)
	in := inputs[0]
	assert.Equal(t, "1", in.Quantity.String())
	assert.Equal(t, invoicing.TaxRateZero, in.TaxRate)
	assert.True(t, in.UnitPrice.Equal(e.Amount))
	assert.Equal(t, e.ID, *in.ExpenseID)
	assert.Equal(t, "ÖBB: Vienna - Graz (2026-02-03)", in.Description)
	require.NoError(t, in.Validate())

	long := *e
	long.Description = strings.Repeat("ü", 400)
	in = ToLineInputs([]Expense{long})[0]
	assert.LessOrEqual(t, len(in.Description), invoicing.MaxLineDescriptionLength)
	require.NoError(t, in.Validate())
}
