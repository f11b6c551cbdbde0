package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateLine(t *testing.T) {
	t.Run("rounds subtotal before tax", func(t *testing.T) {
		got := CalculateLine(dec("3"), dec("33.33"), TaxRateStandard)
		assert.Equal(t, "99.99", got.Subtotal.StringFixed(2))
		assert.Equal(t, "20.00", got.TaxAmount.StringFixed(2))
		assert.Equal(t, "119.99", got.Total.StringFixed(2))
	})

	t.Run("fractional quantity", func(t *testing.T) {
		got := CalculateLine(dec("1.333"), dec("90"), TaxRateReduced)
		assert.Equal(t, "119.97", got.Subtotal.StringFixed(2))
		assert.Equal(t, "12.00", got.TaxAmount.StringFixed(2))
	})

	t.Run("reverse charge has no tax", func(t *testing.T) {
		got := CalculateLine(dec("10"), dec("150"), TaxRateReverseCharge)
		assert.Equal(t, "1500.00", got.Subtotal.StringFixed(2))
		assert.True(t, got.TaxAmount.IsZero())
	})
}

func TestBuildLines(t *testing.T) {
	docID := uuid.New()

	t.Run("numbers lines from one", func(t *testing.T) {
		lines, err := BuildLines(docID, []LineInput{
			{Description: "Consulting", Quantity: dec("2"), UnitPrice: dec("100"), TaxRate: TaxRateStandard},
			{Description: "Books", Quantity: dec("1"), UnitPrice: dec("30"), TaxRate: TaxRateReduced},
		})
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, 1, lines[0].LineNumber)
		assert.Equal(t, 2, lines[1].LineNumber)
		assert.Equal(t, docID, lines[1].DocumentID)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := BuildLines(docID, []LineInput{{Description: "x", Quantity: decimal.Zero, UnitPrice: dec("1"), TaxRate: TaxRateZero}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := BuildLines(docID, []LineInput{{Description: "x", Quantity: dec("1"), UnitPrice: dec("-1"), TaxRate: TaxRateZero}})
		assert.Error(t, err)
	})

	t.Run("rejects unknown rate", func(t *testing.T) {
		_, err := BuildLines(docID, []LineInput{{Description: "x", Quantity: dec("1"), UnitPrice: dec("1"), TaxRate: "vat_19"}})
		assert.Error(t, err)
	})

	t.Run("allows free lines", func(t *testing.T) {
		lines, err := BuildLines(docID, []LineInput{{Description: "Goodwill", Quantity: dec("1"), UnitPrice: decimal.Zero, TaxRate: TaxRateStandard}})
		require.NoError(t, err)
		assert.True(t, lines[0].Total.IsZero())
	})
}

func TestAggregateLines(t *testing.T) {
	lines, err := BuildLines(uuid.New(), []LineInput{
		{Description: "A", Quantity: dec("3"), UnitPrice: dec("33.33"), TaxRate: TaxRateStandard},
		{Description: "B", Quantity: dec("1"), UnitPrice: dec("50"), TaxRate: TaxRateStandard},
		{Description: "C", Quantity: dec("2"), UnitPrice: dec("10.05"), TaxRate: TaxRateReduced},
		{Description: "D", Quantity: dec("1"), UnitPrice: dec("400"), TaxRate: TaxRateReverseCharge},
	})
	require.NoError(t, err)

	totals := AggregateLines(lines)
	assert.Equal(t, "570.09", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "32.01", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "602.10", totals.Total.StringFixed(2))
	assert.Equal(t, "30.00", totals.TaxBreakdown[TaxRateStandard].StringFixed(2))
	assert.Equal(t, "2.01", totals.TaxBreakdown[TaxRateReduced].StringFixed(2))
	assert.True(t, totals.TaxBreakdown[TaxRateReverseCharge].IsZero())
	_, hasZero := totals.TaxBreakdown[TaxRateZero]
	assert.False(t, hasZero)
}

func TestAggregateLinesEmpty(t *testing.T) {
	totals := AggregateLines(nil)
	assert.True(t, totals.Total.IsZero())
	assert.Empty(t, totals.TaxBreakdown)
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-0001", FormatDocumentNumber("inv", 2026, 1))
	assert.Equal(t, "CN-2026-12345", FormatDocumentNumber("CN", 2026, 12345))
	assert.Equal(t, "RE-2025-%", NumberPattern("re", 2025))

	prefixes := NumberPrefixes{Invoice: "RE"}
	assert.Equal(t, "RE", prefixes.For(DocumentTypeInvoice))
	assert.Equal(t, DefaultCreditNotePrefix, prefixes.For(DocumentTypeCreditNote))
}
