package expense

import (
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMileageRate is the Austrian Kilometergeld for passenger cars in EUR per km
var DefaultMileageRate = decimal.RequireFromString("0.50")

// MileageMerchant is the merchant recorded on mileage claims
const MileageMerchant = "Kilometergeld"

// MaxTripDistanceKm guards against typos such as metres entered as kilometres
var MaxTripDistanceKm = decimal.NewFromInt(5000)

// Trip describes a business trip driven with a private vehicle
type Trip struct {
	CustomerID *uuid.UUID
	Date       time.Time
	Route      string
	DistanceKm decimal.Decimal
	RatePerKm  decimal.Decimal
}

func (t Trip) rate() decimal.Decimal {
	if t.RatePerKm.IsPositive() {
		return t.RatePerKm
	}
	return DefaultMileageRate
}

// CalculateMileage returns distance × rate rounded to cents
func CalculateMileage(distanceKm, ratePerKm decimal.Decimal) decimal.Decimal {
	return valueobject.RoundCents(distanceKm.Mul(ratePerKm))
}

func (t Trip) details() (Details, error) {
	if !t.DistanceKm.IsPositive() {
		return Details{}, shared.NewDomainError("INVALID_DISTANCE", "Distance must be positive")
	}
	if t.DistanceKm.GreaterThan(MaxTripDistanceKm) {
		return Details{}, shared.NewDomainErrorf("INVALID_DISTANCE", "Distance cannot exceed %s km", MaxTripDistanceKm)
	}
	if t.RatePerKm.IsNegative() {
		return Details{}, shared.NewDomainError("INVALID_RATE", "Mileage rate cannot be negative")
	}
	d := Details{
		CustomerID:  t.CustomerID,
		ExpenseDate: t.Date,
		Merchant:    MileageMerchant,
		Category:    CategoryMileage,
		Description: strings.TrimSpace(t.Route),
		Amount:      CalculateMileage(t.DistanceKm, t.rate()),
		TaxAmount:   decimal.Zero,
		TaxRate:     invoicing.TaxRateZero,
		Currency:    valueobject.DefaultCurrency,
	}
	if err := d.normalize(); err != nil {
		return Details{}, err
	}
	return d, nil
}
