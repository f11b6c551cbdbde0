package forecast

import (
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostFrequency is how often a recurring cost is paid
type CostFrequency string

const (
	CostFrequencyWeekly  CostFrequency = "weekly"
	CostFrequencyMonthly CostFrequency = "monthly"
)

// IsValid checks if the frequency is supported
func (f CostFrequency) IsValid() bool {
	return f == CostFrequencyWeekly || f == CostFrequencyMonthly
}

// RecurringCost is a fixed outflow such as rent, salaries or subscriptions
type RecurringCost struct {
	shared.TenantAggregateRoot
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Frequency  CostFrequency   `json:"frequency"`
	DayOfMonth *int            `json:"day_of_month"`
	DayOfWeek  *time.Weekday   `json:"day_of_week"`
	IsActive   bool            `json:"is_active"`
}

// CostDetails are the editable fields of a recurring cost
type CostDetails struct {
	Name       string
	Amount     decimal.Decimal
	Frequency  CostFrequency
	DayOfMonth *int
	DayOfWeek  *time.Weekday
}

func (d *CostDetails) normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	if !d.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	switch d.Frequency {
	case CostFrequencyMonthly:
		if d.DayOfMonth == nil || *d.DayOfMonth < 1 || *d.DayOfMonth > 31 {
			return shared.NewDomainError("INVALID_DAY_OF_MONTH", "Monthly costs need a day of month between 1 and 31")
		}
		d.DayOfWeek = nil
	case CostFrequencyWeekly:
		if d.DayOfWeek == nil || *d.DayOfWeek < time.Sunday || *d.DayOfWeek > time.Saturday {
			return shared.NewDomainError("INVALID_DAY_OF_WEEK", "Weekly costs need a day of week between 0 (Sunday) and 6 (Saturday)")
		}
		d.DayOfMonth = nil
	default:
		return shared.NewDomainErrorf("INVALID_FREQUENCY", "Unsupported cost frequency: %s", d.Frequency)
	}
	d.Amount = valueobject.RoundCents(d.Amount)
	return nil
}

// NewRecurringCost creates an active recurring cost
func NewRecurringCost(tenantID, createdBy uuid.UUID, details CostDetails) (*RecurringCost, error) {
	if err := details.normalize(); err != nil {
		return nil, err
	}
	c := &RecurringCost{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		IsActive:            true,
	}
	c.apply(details)
	return c, nil
}

func (c *RecurringCost) apply(d CostDetails) {
	c.Name = d.Name
	c.Amount = d.Amount
	c.Frequency = d.Frequency
	c.DayOfMonth = d.DayOfMonth
	c.DayOfWeek = d.DayOfWeek
}

// Update replaces the editable fields
func (c *RecurringCost) Update(details CostDetails) error {
	if err := details.normalize(); err != nil {
		return err
	}
	c.apply(details)
	c.Touch()
	return nil
}

// SetActive toggles whether the cost is projected
func (c *RecurringCost) SetActive(active bool) {
	if c.IsActive != active {
		c.IsActive = active
		c.Touch()
	}
}

// OccursOn reports whether the cost is paid on day. Monthly costs anchored
// past a month's end are paid on its last day.
func (c *RecurringCost) OccursOn(day time.Time) bool {
	switch c.Frequency {
	case CostFrequencyWeekly:
		return c.DayOfWeek != nil && day.Weekday() == *c.DayOfWeek
	case CostFrequencyMonthly:
		if c.DayOfMonth == nil {
			return false
		}
		return shared.DateInMonth(day.Year(), day.Month(), *c.DayOfMonth).Day() == day.Day()
	}
	return false
}
