package invoicing

import (
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TaxRate identifies a VAT category rather than a raw percentage, so the
// percentage can be looked up in one place.
type TaxRate string

const (
	TaxRateStandard      TaxRate = "standard_20"
	TaxRateReduced       TaxRate = "reduced_10"
	TaxRateZero          TaxRate = "zero"
	TaxRateReverseCharge TaxRate = "reverse_charge"
)

var taxRateTable = map[TaxRate]decimal.Decimal{
	TaxRateStandard:      decimal.RequireFromString("0.20"),
	TaxRateReduced:       decimal.RequireFromString("0.10"),
	TaxRateZero:          decimal.Zero,
	TaxRateReverseCharge: decimal.Zero,
}

// AllTaxRates lists the supported rates in display order
func AllTaxRates() []TaxRate {
	return []TaxRate{TaxRateStandard, TaxRateReduced, TaxRateZero, TaxRateReverseCharge}
}

// IsValid checks if the rate is one of the supported categories
func (r TaxRate) IsValid() bool {
	_, ok := taxRateTable[r]
	return ok
}

// String returns the string representation of TaxRate
func (r TaxRate) String() string {
	return string(r)
}

// Percentage returns the rate as a fraction, e.g. 0.20. Unknown rates yield zero.
func (r TaxRate) Percentage() decimal.Decimal {
	return taxRateTable[r]
}

// IsReverseCharge reports whether tax liability moves to the customer
func (r TaxRate) IsReverseCharge() bool {
	return r == TaxRateReverseCharge
}

// CalculateTax returns the tax on a net amount, rounded to cents
func CalculateTax(net decimal.Decimal, rate TaxRate) decimal.Decimal {
	return valueobject.RoundCents(net.Mul(rate.Percentage()))
}

// CalculateGross returns net plus tax, rounded to cents
func CalculateGross(net decimal.Decimal, rate TaxRate) decimal.Decimal {
	return valueobject.RoundCents(net.Mul(decimal.NewFromInt(1).Add(rate.Percentage())))
}

// CalculateNet extracts the net amount from a gross amount, rounded to cents
func CalculateNet(gross decimal.Decimal, rate TaxRate) decimal.Decimal {
	return valueobject.RoundCents(gross.Div(decimal.NewFromInt(1).Add(rate.Percentage())))
}
