package models

import (
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/recurring"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringTemplateModel is the persistence model for the recurring Template aggregate root.
type RecurringTemplateModel struct {
	TenantAggregateModel
	Name          string              `gorm:"type:varchar(200);not null"`
	CustomerID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Frequency     recurring.Frequency `gorm:"type:varchar(20);not null"`
	DayOfMonth    *int
	DayOfWeek     *int
	NextIssueDate time.Time `gorm:"type:date;not null;index"`
	LastIssuedAt  *time.Time
	IsActive      bool                         `gorm:"not null;default:true;index"`
	AutoIssue     bool                         `gorm:"not null;default:false"`
	Currency      string                       `gorm:"type:char(3);not null;default:'EUR'"`
	Notes         string                       `gorm:"type:text"`
	Lines         []RecurringTemplateLineModel `gorm:"foreignKey:TemplateID;references:ID"`
}

// TableName returns the table name for GORM
func (RecurringTemplateModel) TableName() string {
	return "recurring_invoice_templates"
}

// ToDomain converts the persistence model to a domain Template
func (m *RecurringTemplateModel) ToDomain() *recurring.Template {
	t := &recurring.Template{
		Name:          m.Name,
		CustomerID:    m.CustomerID,
		Frequency:     m.Frequency,
		DayOfMonth:    m.DayOfMonth,
		DayOfWeek:     weekdayFromColumn(m.DayOfWeek),
		NextIssueDate: m.NextIssueDate,
		LastIssuedAt:  m.LastIssuedAt,
		IsActive:      m.IsActive,
		AutoIssue:     m.AutoIssue,
		Currency:      valueobject.Currency(m.Currency),
		Notes:         m.Notes,
		Lines:         make([]recurring.TemplateLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)
	for i := range m.Lines {
		t.Lines[i] = m.Lines[i].ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain Template
func (m *RecurringTemplateModel) FromDomain(t *recurring.Template) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Name = t.Name
	m.CustomerID = t.CustomerID
	m.Frequency = t.Frequency
	m.DayOfMonth = t.DayOfMonth
	m.DayOfWeek = weekdayToColumn(t.DayOfWeek)
	m.NextIssueDate = t.NextIssueDate
	m.LastIssuedAt = t.LastIssuedAt
	m.IsActive = t.IsActive
	m.AutoIssue = t.AutoIssue
	m.Currency = t.Currency.String()
	m.Notes = t.Notes
	m.Lines = make([]RecurringTemplateLineModel, len(t.Lines))
	for i, l := range t.Lines {
		id := l.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		m.Lines[i] = RecurringTemplateLineModel{
			ID:          id,
			TemplateID:  t.ID,
			LineNumber:  l.LineNumber,
			Description: l.Description,
			Quantity:    l.Quantity,
			Unit:        l.Unit,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		}
	}
}

// RecurringTemplateModelFromDomain creates a new persistence model from a domain Template
func RecurringTemplateModelFromDomain(t *recurring.Template) *RecurringTemplateModel {
	m := &RecurringTemplateModel{}
	m.FromDomain(t)
	return m
}

// RecurringTemplateLineModel is the persistence model for a template line
type RecurringTemplateLineModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	TemplateID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	LineNumber  int               `gorm:"not null"`
	Description string            `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Unit        string            `gorm:"type:varchar(20)"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TaxRate     invoicing.TaxRate `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (RecurringTemplateLineModel) TableName() string {
	return "recurring_invoice_lines"
}

// ToDomain converts the persistence model to a domain TemplateLine
func (m *RecurringTemplateLineModel) ToDomain() recurring.TemplateLine {
	return recurring.TemplateLine{
		ID:          m.ID,
		TemplateID:  m.TemplateID,
		LineNumber:  m.LineNumber,
		Description: m.Description,
		Quantity:    m.Quantity,
		Unit:        m.Unit,
		UnitPrice:   m.UnitPrice,
		TaxRate:     m.TaxRate,
	}
}
