package valueobject

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code
type Currency string

// DefaultCurrency is used when a document or expense does not name one
const DefaultCurrency Currency = "EUR"

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValid reports whether c looks like an ISO 4217 code
func (c Currency) IsValid() bool {
	return currencyPattern.MatchString(string(c))
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// NormalizeCurrency upper-cases a code and falls back to DefaultCurrency when empty
func NormalizeCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	c := Currency(code)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency code: %q", code)
	}
	return c, nil
}

// CentPlaces is the number of decimal places every stored amount is rounded to
const CentPlaces int32 = 2

// RoundCents rounds an amount to cents, half away from zero
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// SumCents adds amounts and rounds the result to cents
func SumCents(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return RoundCents(total)
}

var amountNoise = strings.NewReplacer(" ", "", "\u00a0", "", "€", "", "$", "", "EUR", "", "USD", "")

// ParseAmount parses a human-written amount in either German ("1.234,56")
// or English ("1,234.56") notation.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountNoise.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 && len(cleaned)-lastComma-1 <= 2 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount %q: %w", raw, err)
	}
	return d, nil
}
