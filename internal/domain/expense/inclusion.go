package expense

import (
	"fmt"
	"unicode/utf8"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UniqueIDs drops duplicate and nil IDs while keeping the caller's order
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SelectForInclusion checks a fetched set of expenses against the requested
// IDs. The set is accepted only as a whole: if any requested expense is
// missing, not approved, or already billed, nothing is selected.
// The result follows the requested order.
func SelectForInclusion(requested []uuid.UUID, fetched []Expense) ([]Expense, error) {
	ids := UniqueIDs(requested)
	if len(ids) == 0 {
		return nil, ErrNoExpensesSelected
	}

	byID := make(map[uuid.UUID]Expense, len(fetched))
	for _, e := range fetched {
		if e.IsBillable() {
			byID[e.ID] = e
		}
	}
	if len(byID) != len(ids) {
		return nil, shared.NewDomainError(ErrExpensesUnavailable.Code,
			fmt.Sprintf("%d of %d selected expenses are not approved or have already been billed", len(ids)-countPresent(ids, byID), len(ids)))
	}

	selected := make([]Expense, 0, len(ids))
	for _, id := range ids {
		e, ok := byID[id]
		if !ok {
			return nil, ErrExpensesUnavailable
		}
		selected = append(selected, e)
	}
	return selected, nil
}

func countPresent(ids []uuid.UUID, byID map[uuid.UUID]Expense) int {
	n := 0
	for _, id := range ids {
		if _, ok := byID[id]; ok {
			n++
		}
	}
	return n
}

// LineDescription renders the invoice line text for an expense
func (e *Expense) LineDescription() string {
	text := e.Merchant
	if e.Description != "" {
		text = fmt.Sprintf("%s: %s", e.Merchant, e.Description)
	}
	if e.IsMileage() && e.DistanceKm != nil {
		text = fmt.Sprintf("%s (%s km)", text, e.DistanceKm.String())
	}
	return fmt.Sprintf("%s (%s)", text, e.ExpenseDate.Format("2006-01-02"))
}

// ToLineInputs turns expenses into single-quantity, tax-free document lines
func ToLineInputs(expenses []Expense) []invoicing.LineInput {
	inputs := make([]invoicing.LineInput, 0, len(expenses))
	for i := range expenses {
		e := expenses[i]
		id := e.ID
		inputs = append(inputs, invoicing.LineInput{
			Description: truncate(e.LineDescription(), invoicing.MaxLineDescriptionLength),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   e.Amount,
			TaxRate:     invoicing.TaxRateZero,
			ExpenseID:   &id,
		})
	}
	return inputs
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
