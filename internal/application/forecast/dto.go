package forecast

import (
	"time"

	"github.com/botforce/unity/internal/domain/forecast"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectionRequest selects the forecast horizon. Without a start the
// projection begins today.
type ProjectionRequest struct {
	Start           *time.Time      `form:"start" time_format:"2006-01-02"`
	Weeks           int             `form:"weeks" binding:"omitempty,min=1,max=52"`
	StartingBalance decimal.Decimal `form:"starting_balance"`
}

// RecurringCostRequest creates or replaces a recurring cost
type RecurringCostRequest struct {
	Name       string          `json:"name" binding:"required,max=200"`
	Amount     decimal.Decimal `json:"amount"`
	Frequency  string          `json:"frequency" binding:"required,oneof=weekly monthly"`
	DayOfMonth *int            `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	DayOfWeek  *int            `json:"day_of_week" binding:"omitempty,min=0,max=6"`
}

func (r RecurringCostRequest) details() forecast.CostDetails {
	d := forecast.CostDetails{
		Name:       r.Name,
		Amount:     r.Amount,
		Frequency:  forecast.CostFrequency(r.Frequency),
		DayOfMonth: r.DayOfMonth,
	}
	if r.DayOfWeek != nil {
		weekday := time.Weekday(*r.DayOfWeek)
		d.DayOfWeek = &weekday
	}
	return d
}

// SetActiveRequest toggles whether a cost is projected
type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// RecurringCostListFilter represents filter options for the cost list
type RecurringCostListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RecurringCostResponse represents a recurring cost
type RecurringCostResponse struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Frequency  string          `json:"frequency"`
	DayOfMonth *int            `json:"day_of_month,omitempty"`
	DayOfWeek  *int            `json:"day_of_week,omitempty"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToRecurringCostResponse converts a domain RecurringCost
func ToRecurringCostResponse(c *forecast.RecurringCost) RecurringCostResponse {
	var dayOfWeek *int
	if c.DayOfWeek != nil {
		d := int(*c.DayOfWeek)
		dayOfWeek = &d
	}
	return RecurringCostResponse{
		ID:         c.ID,
		TenantID:   c.TenantID,
		Name:       c.Name,
		Amount:     c.Amount,
		Frequency:  string(c.Frequency),
		DayOfMonth: c.DayOfMonth,
		DayOfWeek:  dayOfWeek,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Version:    c.Version,
	}
}

// ToRecurringCostResponses converts a slice of domain costs
func ToRecurringCostResponses(costs []forecast.RecurringCost) []RecurringCostResponse {
	responses := make([]RecurringCostResponse, len(costs))
	for i := range costs {
		responses[i] = ToRecurringCostResponse(&costs[i])
	}
	return responses
}
