package models

import (
	"time"

	"github.com/botforce/unity/internal/domain/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AccountingExportModel is the persistence model for the accounting Export aggregate root.
// Rows are stored as a JSON snapshot so a locked export never changes when
// the underlying documents do.
type AccountingExportModel struct {
	TenantAggregateModel
	Name            string         `gorm:"type:varchar(200);not null"`
	PeriodStart     time.Time      `gorm:"type:date;not null;index"`
	PeriodEnd       time.Time      `gorm:"type:date;not null"`
	Rows            datatypes.JSON `gorm:"column:snapshot_rows;type:jsonb"`
	FileKey         string         `gorm:"type:varchar(500)"`
	IsLocked        bool           `gorm:"not null;default:false"`
	LockedAt        *time.Time
	LockedBy        *uuid.UUID      `gorm:"type:uuid"`
	InvoiceCount    int             `gorm:"not null;default:0"`
	CreditNoteCount int             `gorm:"not null;default:0"`
	ExpenseCount    int             `gorm:"not null;default:0"`
	InvoiceTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InvoiceTax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditNoteTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditNoteTax   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpenseTotal    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpenseTax      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (AccountingExportModel) TableName() string {
	return "accounting_exports"
}

// ToDomain converts the persistence model to a domain Export
func (m *AccountingExportModel) ToDomain() (*accounting.Export, error) {
	rows, err := unmarshalJSON[[]accounting.Row](m.Rows)
	if err != nil {
		return nil, err
	}
	e := &accounting.Export{
		Summary: accounting.Summary{
			InvoiceCount:    m.InvoiceCount,
			CreditNoteCount: m.CreditNoteCount,
			ExpenseCount:    m.ExpenseCount,
			InvoiceTotal:    m.InvoiceTotal,
			InvoiceTax:      m.InvoiceTax,
			CreditNoteTotal: m.CreditNoteTotal,
			CreditNoteTax:   m.CreditNoteTax,
			ExpenseTotal:    m.ExpenseTotal,
			ExpenseTax:      m.ExpenseTax,
		},
		Name:        m.Name,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		FileKey:     m.FileKey,
		IsLocked:    m.IsLocked,
		LockedAt:    m.LockedAt,
		LockedBy:    m.LockedBy,
	}
	if rows != nil {
		e.Rows = *rows
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e, nil
}

// FromDomain populates the persistence model from a domain Export
func (m *AccountingExportModel) FromDomain(e *accounting.Export) error {
	rows := e.Rows
	if rows == nil {
		rows = []accounting.Row{}
	}
	raw, err := marshalJSON(&rows)
	if err != nil {
		return err
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Name = e.Name
	m.PeriodStart = e.PeriodStart
	m.PeriodEnd = e.PeriodEnd
	m.Rows = raw
	m.FileKey = e.FileKey
	m.IsLocked = e.IsLocked
	m.LockedAt = e.LockedAt
	m.LockedBy = e.LockedBy
	m.InvoiceCount = e.InvoiceCount
	m.CreditNoteCount = e.CreditNoteCount
	m.ExpenseCount = e.ExpenseCount
	m.InvoiceTotal = e.InvoiceTotal
	m.InvoiceTax = e.InvoiceTax
	m.CreditNoteTotal = e.CreditNoteTotal
	m.CreditNoteTax = e.CreditNoteTax
	m.ExpenseTotal = e.ExpenseTotal
	m.ExpenseTax = e.ExpenseTax
	return nil
}

// AccountingExportModelFromDomain creates a new persistence model from a domain Export
func AccountingExportModelFromDomain(e *accounting.Export) (*AccountingExportModel, error) {
	m := &AccountingExportModel{}
	if err := m.FromDomain(e); err != nil {
		return nil, err
	}
	return m, nil
}
