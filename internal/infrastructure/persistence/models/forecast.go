package models

import (
	"github.com/botforce/unity/internal/domain/forecast"
	"github.com/shopspring/decimal"
)

// RecurringCostModel is the persistence model for a recurring cost
type RecurringCostModel struct {
	TenantAggregateModel
	Name       string                 `gorm:"type:varchar(200);not null"`
	Amount     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Frequency  forecast.CostFrequency `gorm:"type:varchar(20);not null"`
	DayOfMonth *int
	DayOfWeek  *int
	IsActive   bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (RecurringCostModel) TableName() string {
	return "recurring_costs"
}

// ToDomain converts the persistence model to a domain RecurringCost
func (m *RecurringCostModel) ToDomain() *forecast.RecurringCost {
	c := &forecast.RecurringCost{
		Name:       m.Name,
		Amount:     m.Amount,
		Frequency:  m.Frequency,
		DayOfMonth: m.DayOfMonth,
		DayOfWeek:  weekdayFromColumn(m.DayOfWeek),
		IsActive:   m.IsActive,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain RecurringCost
func (m *RecurringCostModel) FromDomain(c *forecast.RecurringCost) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Amount = c.Amount
	m.Frequency = c.Frequency
	m.DayOfMonth = c.DayOfMonth
	m.DayOfWeek = weekdayToColumn(c.DayOfWeek)
	m.IsActive = c.IsActive
}

// RecurringCostModelFromDomain creates a new persistence model from a domain RecurringCost
func RecurringCostModelFromDomain(c *forecast.RecurringCost) *RecurringCostModel {
	m := &RecurringCostModel{}
	m.FromDomain(c)
	return m
}
