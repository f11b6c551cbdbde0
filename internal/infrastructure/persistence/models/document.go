package models

import (
	"time"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentModel is the persistence model for the Document aggregate root.
type DocumentModel struct {
	TenantAggregateModel
	CustomerID          uuid.UUID                `gorm:"type:uuid;not null;index"`
	Type                invoicing.DocumentType   `gorm:"type:varchar(20);not null;index"`
	Status              invoicing.DocumentStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	DocumentNumber      *string                  `gorm:"type:varchar(50)"`
	IssueDate           *time.Time               `gorm:"type:date;index"`
	DueDate             *time.Time               `gorm:"type:date;index"`
	PaidDate            *time.Time               `gorm:"type:date"`
	Currency            string                   `gorm:"type:char(3);not null;default:'EUR'"`
	Notes               string                   `gorm:"type:text"`
	Subtotal            decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount           decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Total               decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TaxBreakdown        datatypes.JSON           `gorm:"type:jsonb"`
	IsLocked            bool                     `gorm:"not null;default:false"`
	CustomerSnapshot    datatypes.JSON           `gorm:"type:jsonb"`
	CompanySnapshot     datatypes.JSON           `gorm:"type:jsonb"`
	ReferenceDocumentID *uuid.UUID               `gorm:"type:uuid;index"`
	RecurringTemplateID *uuid.UUID               `gorm:"type:uuid;index"`
	CancelledAt         *time.Time
	CancelReason        string              `gorm:"type:varchar(500)"`
	Lines               []DocumentLineModel `gorm:"foreignKey:DocumentID;references:ID"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() (*invoicing.Document, error) {
	breakdown, err := unmarshalJSON[invoicing.TaxBreakdown](m.TaxBreakdown)
	if err != nil {
		return nil, err
	}
	customer, err := unmarshalJSON[invoicing.CustomerSnapshot](m.CustomerSnapshot)
	if err != nil {
		return nil, err
	}
	company, err := unmarshalJSON[invoicing.CompanySnapshot](m.CompanySnapshot)
	if err != nil {
		return nil, err
	}

	doc := &invoicing.Document{
		CustomerID:          m.CustomerID,
		Type:                m.Type,
		Status:              m.Status,
		DocumentNumber:      m.DocumentNumber,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		PaidDate:            m.PaidDate,
		Currency:            valueobject.Currency(m.Currency),
		Notes:               m.Notes,
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		Total:               m.Total,
		TaxBreakdown:        make(invoicing.TaxBreakdown),
		IsLocked:            m.IsLocked,
		CustomerSnapshot:    customer,
		CompanySnapshot:     company,
		ReferenceDocumentID: m.ReferenceDocumentID,
		RecurringTemplateID: m.RecurringTemplateID,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Lines:               make([]invoicing.DocumentLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&doc.TenantAggregateRoot)
	if breakdown != nil {
		doc.TaxBreakdown = *breakdown
	}
	for i := range m.Lines {
		doc.Lines[i] = m.Lines[i].ToDomain()
	}
	return doc, nil
}

// FromDomain populates the persistence model from a domain Document
func (m *DocumentModel) FromDomain(d *invoicing.Document) error {
	breakdown := d.TaxBreakdown
	taxJSON, err := marshalJSON(&breakdown)
	if err != nil {
		return err
	}
	customerJSON, err := marshalJSON(d.CustomerSnapshot)
	if err != nil {
		return err
	}
	companyJSON, err := marshalJSON(d.CompanySnapshot)
	if err != nil {
		return err
	}

	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.CustomerID = d.CustomerID
	m.Type = d.Type
	m.Status = d.Status
	m.DocumentNumber = d.DocumentNumber
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.PaidDate = d.PaidDate
	m.Currency = d.Currency.String()
	m.Notes = d.Notes
	m.Subtotal = d.Subtotal
	m.TaxAmount = d.TaxAmount
	m.Total = d.Total
	m.TaxBreakdown = taxJSON
	m.IsLocked = d.IsLocked
	m.CustomerSnapshot = customerJSON
	m.CompanySnapshot = companyJSON
	m.ReferenceDocumentID = d.ReferenceDocumentID
	m.RecurringTemplateID = d.RecurringTemplateID
	m.CancelledAt = d.CancelledAt
	m.CancelReason = d.CancelReason
	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i := range d.Lines {
		m.Lines[i] = DocumentLineModelFromDomain(d.Lines[i], d.ID, d.UpdatedAt)
	}
	return nil
}

// DocumentModelFromDomain creates a new persistence model from a domain Document
func DocumentModelFromDomain(d *invoicing.Document) (*DocumentModel, error) {
	m := &DocumentModel{}
	if err := m.FromDomain(d); err != nil {
		return nil, err
	}
	return m, nil
}

// DocumentLineModel is the persistence model for a document line
type DocumentLineModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	LineNumber  int               `gorm:"not null"`
	Description string            `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Unit        string            `gorm:"type:varchar(20)"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TaxRate     invoicing.TaxRate `gorm:"type:varchar(20);not null"`
	Subtotal    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TaxAmount   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	ExpenseID   *uuid.UUID        `gorm:"type:uuid;index"`
	CreatedAt   time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine
func (m *DocumentLineModel) ToDomain() invoicing.DocumentLine {
	return invoicing.DocumentLine{
		ID:          m.ID,
		DocumentID:  m.DocumentID,
		LineNumber:  m.LineNumber,
		Description: m.Description,
		Quantity:    m.Quantity,
		Unit:        m.Unit,
		UnitPrice:   m.UnitPrice,
		TaxRate:     m.TaxRate,
		Subtotal:    m.Subtotal,
		TaxAmount:   m.TaxAmount,
		Total:       m.Total,
		ExpenseID:   m.ExpenseID,
	}
}

// DocumentLineModelFromDomain maps a line; documentID wins over the line's own
// field because lines of a new document are built before its ID is final.
func DocumentLineModelFromDomain(l invoicing.DocumentLine, documentID uuid.UUID, at time.Time) DocumentLineModel {
	id := l.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return DocumentLineModel{
		ID:          id,
		DocumentID:  documentID,
		LineNumber:  l.LineNumber,
		Description: l.Description,
		Quantity:    l.Quantity,
		Unit:        l.Unit,
		UnitPrice:   l.UnitPrice,
		TaxRate:     l.TaxRate,
		Subtotal:    l.Subtotal,
		TaxAmount:   l.TaxAmount,
		Total:       l.Total,
		ExpenseID:   l.ExpenseID,
		CreatedAt:   at,
	}
}

// DocumentSequenceModel is the per tenant, type and year numbering counter
type DocumentSequenceModel struct {
	TenantID     uuid.UUID              `gorm:"type:uuid;primaryKey"`
	DocumentType invoicing.DocumentType `gorm:"type:varchar(20);primaryKey"`
	Year         int                    `gorm:"primaryKey"`
	LastValue    int64                  `gorm:"not null;default:0"`
	UpdatedAt    time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
