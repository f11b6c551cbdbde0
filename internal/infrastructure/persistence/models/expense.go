package models

import (
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate root.
type ExpenseModel struct {
	TenantAggregateModel
	CustomerID      *uuid.UUID        `gorm:"type:uuid;index"`
	ExpenseDate     time.Time         `gorm:"type:date;not null;index"`
	Merchant        string            `gorm:"type:varchar(200);not null"`
	Category        expense.Category  `gorm:"type:varchar(20);not null"`
	Description     string            `gorm:"type:varchar(1000)"`
	Amount          decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TaxAmount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate         invoicing.TaxRate `gorm:"type:varchar(20);not null;default:'zero'"`
	Currency        string            `gorm:"type:char(3);not null;default:'EUR'"`
	Status          expense.Status    `gorm:"type:varchar(20);not null;default:'draft';index"`
	DistanceKm      *decimal.Decimal  `gorm:"type:decimal(10,2)"`
	MileageRate     *decimal.Decimal  `gorm:"type:decimal(10,4)"`
	ReceiptKey      string            `gorm:"type:varchar(500)"`
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectedAt      *time.Time
	RejectedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason string     `gorm:"type:varchar(500)"`
	ExportedAt      *time.Time `gorm:"index"`
	DocumentID      *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *expense.Expense {
	e := &expense.Expense{
		CustomerID:      m.CustomerID,
		ExpenseDate:     m.ExpenseDate,
		Merchant:        m.Merchant,
		Category:        m.Category,
		Description:     m.Description,
		Amount:          m.Amount,
		TaxAmount:       m.TaxAmount,
		TaxRate:         m.TaxRate,
		Currency:        valueobject.Currency(m.Currency),
		Status:          m.Status,
		DistanceKm:      m.DistanceKm,
		MileageRate:     m.MileageRate,
		ReceiptKey:      m.ReceiptKey,
		SubmittedAt:     m.SubmittedAt,
		ApprovedAt:      m.ApprovedAt,
		ApprovedBy:      m.ApprovedBy,
		RejectedAt:      m.RejectedAt,
		RejectedBy:      m.RejectedBy,
		RejectionReason: m.RejectionReason,
		ExportedAt:      m.ExportedAt,
		DocumentID:      m.DocumentID,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *expense.Expense) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.CustomerID = e.CustomerID
	m.ExpenseDate = e.ExpenseDate
	m.Merchant = e.Merchant
	m.Category = e.Category
	m.Description = e.Description
	m.Amount = e.Amount
	m.TaxAmount = e.TaxAmount
	m.TaxRate = e.TaxRate
	m.Currency = e.Currency.String()
	m.Status = e.Status
	m.DistanceKm = e.DistanceKm
	m.MileageRate = e.MileageRate
	m.ReceiptKey = e.ReceiptKey
	m.SubmittedAt = e.SubmittedAt
	m.ApprovedAt = e.ApprovedAt
	m.ApprovedBy = e.ApprovedBy
	m.RejectedAt = e.RejectedAt
	m.RejectedBy = e.RejectedBy
	m.RejectionReason = e.RejectionReason
	m.ExportedAt = e.ExportedAt
	m.DocumentID = e.DocumentID
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense
func ExpenseModelFromDomain(e *expense.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
