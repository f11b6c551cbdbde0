package invoicing

import (
	"errors"
	"strings"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineDescriptionLength bounds line descriptions
const MaxLineDescriptionLength = 500

// DocumentLine is a single billed position. Lines are owned by their document
// and are replaced as a whole whenever the document is edited.
type DocumentLine struct {
	ID          uuid.UUID       `json:"id"`
	DocumentID  uuid.UUID       `json:"document_id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     TaxRate         `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	ExpenseID   *uuid.UUID      `json:"expense_id,omitempty"`
}

// LineInput is the caller-supplied part of a line
type LineInput struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	TaxRate     TaxRate
	ExpenseID   *uuid.UUID
}

// Validate rejects inputs the aggregator does not accept
func (in LineInput) Validate() error {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return shared.NewDomainError("INVALID_LINE_DESCRIPTION", "Line description cannot be empty")
	}
	if len(desc) > MaxLineDescriptionLength {
		return shared.NewDomainErrorf("INVALID_LINE_DESCRIPTION", "Line description cannot exceed %d characters", MaxLineDescriptionLength)
	}
	if !in.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price cannot be negative")
	}
	if !in.TaxRate.IsValid() {
		return shared.NewDomainErrorf("INVALID_TAX_RATE", "Unsupported tax rate: %s", in.TaxRate)
	}
	return nil
}

// LineAmounts holds the calculated money fields of one line
type LineAmounts struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalculateLine rounds quantity × unit price to cents and derives the tax
// from that rounded subtotal.
func CalculateLine(quantity, unitPrice decimal.Decimal, rate TaxRate) LineAmounts {
	subtotal := valueobject.RoundCents(quantity.Mul(unitPrice))
	tax := CalculateTax(subtotal, rate)
	return LineAmounts{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}

// BuildLines validates inputs and numbers them from 1 for documentID
func BuildLines(documentID uuid.UUID, inputs []LineInput) ([]DocumentLine, error) {
	lines := make([]DocumentLine, 0, len(inputs))
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, shared.NewDomainErrorf(errCode(err), "line %d: %s", i+1, err.Error())
		}
		amounts := CalculateLine(in.Quantity, in.UnitPrice, in.TaxRate)
		lines = append(lines, DocumentLine{
			ID:          uuid.New(),
			DocumentID:  documentID,
			LineNumber:  i + 1,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Unit:        strings.TrimSpace(in.Unit),
			UnitPrice:   in.UnitPrice,
			TaxRate:     in.TaxRate,
			Subtotal:    amounts.Subtotal,
			TaxAmount:   amounts.TaxAmount,
			Total:       amounts.Total,
			ExpenseID:   in.ExpenseID,
		})
	}
	return lines, nil
}

// ToInput converts a stored line back into an input, e.g. to copy it
func (l DocumentLine) ToInput() LineInput {
	return LineInput{
		Description: l.Description,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		UnitPrice:   l.UnitPrice,
		TaxRate:     l.TaxRate,
	}
}

func errCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return shared.ErrInvalidInput.Code
}
