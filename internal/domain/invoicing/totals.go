package invoicing

import (
	"github.com/shopspring/decimal"
)

// TaxBreakdown maps each tax rate used on a document to its tax amount
type TaxBreakdown map[TaxRate]decimal.Decimal

// Totals is the rollup of a set of lines
type Totals struct {
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
	TaxBreakdown TaxBreakdown
}

// AggregateLines sums already-rounded line amounts and groups tax by rate.
// Every rate that appears on a line gets a breakdown entry, including
// zero-tax rates.
func AggregateLines(lines []DocumentLine) Totals {
	totals := Totals{
		Subtotal:     decimal.Zero,
		TaxAmount:    decimal.Zero,
		Total:        decimal.Zero,
		TaxBreakdown: make(TaxBreakdown),
	}
	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.TaxAmount = totals.TaxAmount.Add(line.TaxAmount)
		current, ok := totals.TaxBreakdown[line.TaxRate]
		if !ok {
			current = decimal.Zero
		}
		totals.TaxBreakdown[line.TaxRate] = current.Add(line.TaxAmount)
	}
	totals.Total = totals.Subtotal.Add(totals.TaxAmount)
	return totals
}

// Clone returns an independent copy of the breakdown
func (b TaxBreakdown) Clone() TaxBreakdown {
	out := make(TaxBreakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
