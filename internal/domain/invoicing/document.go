package invoicing

import (
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType distinguishes invoices from credit notes
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "invoice"
	DocumentTypeCreditNote DocumentType = "credit_note"
)

// IsValid checks if the type is known
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeCreditNote
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// DisplayName is the human label used in exports
func (t DocumentType) DisplayName() string {
	if t == DocumentTypeCreditNote {
		return "Credit Note"
	}
	return "Invoice"
}

// DocumentStatus represents the lifecycle state of a document
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusIssued    DocumentStatus = "issued"
	DocumentStatusPaid      DocumentStatus = "paid"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusDraft:  {DocumentStatusIssued, DocumentStatusCancelled},
	DocumentStatusIssued: {DocumentStatusPaid, DocumentStatusCancelled},
}

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusIssued, DocumentStatusPaid, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for paid and cancelled documents
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusPaid || s == DocumentStatusCancelled
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Document is the invoice / credit note aggregate root.
//
// A draft is freely editable. Issuing assigns the permanent number, freezes
// customer and company data into snapshots and locks the document; after that
// only the status transitions issued→paid and issued→cancelled are allowed.
type Document struct {
	shared.TenantAggregateRoot
	CustomerID          uuid.UUID            `json:"customer_id"`
	Type                DocumentType         `json:"type"`
	Status              DocumentStatus       `json:"status"`
	DocumentNumber      *string              `json:"document_number"`
	IssueDate           *time.Time           `json:"issue_date"`
	DueDate             *time.Time           `json:"due_date"`
	PaidDate            *time.Time           `json:"paid_date"`
	Currency            valueobject.Currency `json:"currency"`
	Notes               string               `json:"notes"`
	Lines               []DocumentLine       `json:"lines"`
	Subtotal            decimal.Decimal      `json:"subtotal"`
	TaxAmount           decimal.Decimal      `json:"tax_amount"`
	Total               decimal.Decimal      `json:"total"`
	TaxBreakdown        TaxBreakdown         `json:"tax_breakdown"`
	IsLocked            bool                 `json:"is_locked"`
	CustomerSnapshot    *CustomerSnapshot    `json:"customer_snapshot"`
	CompanySnapshot     *CompanySnapshot     `json:"company_snapshot"`
	ReferenceDocumentID *uuid.UUID           `json:"reference_document_id"`
	RecurringTemplateID *uuid.UUID           `json:"recurring_template_id"`
	CancelledAt         *time.Time           `json:"cancelled_at"`
	CancelReason        string               `json:"cancel_reason"`
}

// NewDocument creates a draft document with the given lines
func NewDocument(
	tenantID, createdBy uuid.UUID,
	docType DocumentType,
	customerID uuid.UUID,
	currency valueobject.Currency,
	inputs []LineInput,
) (*Document, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_DOCUMENT_TYPE", "Unsupported document type: %s", docType)
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_CURRENCY", "Invalid currency: %s", currency)
	}

	doc := &Document{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		CustomerID:          customerID,
		Type:                docType,
		Status:              DocumentStatusDraft,
		Currency:            currency,
		TaxBreakdown:        make(TaxBreakdown),
	}
	if err := doc.setLines(inputs); err != nil {
		return nil, err
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

// NewCreditNoteFor creates a draft credit note correcting an issued or paid invoice.
// The invoice's lines are copied so the credit note starts as a full reversal.
func NewCreditNoteFor(invoice *Document, createdBy uuid.UUID) (*Document, error) {
	if invoice.Type != DocumentTypeInvoice {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Credit notes can only reference invoices")
	}
	if invoice.Status != DocumentStatusIssued && invoice.Status != DocumentStatusPaid {
		return nil, shared.NewDomainErrorf("INVALID_STATE", "Cannot credit an invoice in %s status", invoice.Status)
	}

	inputs := make([]LineInput, len(invoice.Lines))
	for i, line := range invoice.Lines {
		inputs[i] = line.ToInput()
	}

	cn, err := NewDocument(invoice.TenantID, createdBy, DocumentTypeCreditNote, invoice.CustomerID, invoice.Currency, inputs)
	if err != nil {
		return nil, err
	}
	ref := invoice.ID
	cn.ReferenceDocumentID = &ref
	if invoice.DocumentNumber != nil {
		cn.Notes = "Credit for " + *invoice.DocumentNumber
	}
	return cn, nil
}

// CanEdit reports whether header and lines may still be changed
func (d *Document) CanEdit() bool {
	return d.Status == DocumentStatusDraft && !d.IsLocked
}

func (d *Document) ensureEditable() error {
	if d.IsLocked {
		return ErrDocumentLocked
	}
	if d.Status != DocumentStatusDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot edit a document in %s status", d.Status)
	}
	return nil
}

// setLines rebuilds lines and totals without the editability check
func (d *Document) setLines(inputs []LineInput) error {
	lines, err := BuildLines(d.ID, inputs)
	if err != nil {
		return err
	}
	d.Lines = lines
	d.recalculate()
	return nil
}

func (d *Document) recalculate() {
	totals := AggregateLines(d.Lines)
	d.Subtotal = totals.Subtotal
	d.TaxAmount = totals.TaxAmount
	d.Total = totals.Total
	d.TaxBreakdown = totals.TaxBreakdown
}

// ReplaceLines discards all lines and recreates them from inputs
func (d *Document) ReplaceLines(inputs []LineInput) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	if err := d.setLines(inputs); err != nil {
		return err
	}
	d.Touch()
	return nil
}

// AppendLines adds lines after the existing ones, keeping numbering contiguous
func (d *Document) AppendLines(inputs []LineInput) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	all := make([]LineInput, 0, len(d.Lines)+len(inputs))
	for _, line := range d.Lines {
		in := line.ToInput()
		in.ExpenseID = line.ExpenseID
		all = append(all, in)
	}
	all = append(all, inputs...)
	if err := d.setLines(all); err != nil {
		return err
	}
	d.Touch()
	return nil
}

// UpdateHeader changes the editable header fields of a draft
func (d *Document) UpdateHeader(customerID uuid.UUID, currency valueobject.Currency, notes string, issueDate *time.Time) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	if err := d.applyHeader(customerID, currency, notes, issueDate); err != nil {
		return err
	}
	d.Touch()
	return nil
}

// Revise replaces header and lines of a draft in one step
func (d *Document) Revise(customerID uuid.UUID, currency valueobject.Currency, notes string, issueDate *time.Time, inputs []LineInput) error {
	if err := d.ensureEditable(); err != nil {
		return err
	}
	lines, err := BuildLines(d.ID, inputs)
	if err != nil {
		return err
	}
	if err := d.applyHeader(customerID, currency, notes, issueDate); err != nil {
		return err
	}
	d.Lines = lines
	d.recalculate()
	d.Touch()
	return nil
}

func (d *Document) applyHeader(customerID uuid.UUID, currency valueobject.Currency, notes string, issueDate *time.Time) error {
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return shared.NewDomainErrorf("INVALID_CURRENCY", "Invalid currency: %s", currency)
	}
	if len(notes) > 2000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 2000 characters")
	}

	d.CustomerID = customerID
	d.Currency = currency
	d.Notes = strings.TrimSpace(notes)
	d.IssueDate = issueDate
	return nil
}

// IssueParams carries everything issuance freezes into the document
type IssueParams struct {
	Number           string
	IssueDate        time.Time
	PaymentTermsDays int
	Customer         CustomerSnapshot
	Company          CompanySnapshot
}

// Issue moves a draft to issued: it assigns the number, snapshots customer and
// company, computes the due date and locks the document. Issuing anything but
// a draft fails, so a second issue of the same document is rejected.
func (d *Document) Issue(p IssueParams) error {
	if d.Status != DocumentStatusDraft {
		return ErrDocumentNotDraft
	}
	if d.IsLocked {
		return ErrDocumentLocked
	}
	if len(d.Lines) == 0 {
		return ErrEmptyDocument
	}
	if strings.TrimSpace(p.Number) == "" {
		return shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if p.PaymentTermsDays < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}
	if p.IssueDate.IsZero() {
		return shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date is required")
	}

	number := p.Number
	issueDate := truncateToDay(p.IssueDate)
	dueDate := issueDate.AddDate(0, 0, p.PaymentTermsDays)
	customer := p.Customer
	company := p.Company

	d.DocumentNumber = &number
	d.IssueDate = &issueDate
	d.DueDate = &dueDate
	d.CustomerSnapshot = &customer
	d.CompanySnapshot = &company
	d.Status = DocumentStatusIssued
	d.IsLocked = true
	d.Touch()

	d.AddDomainEvent(NewDocumentIssuedEvent(d))
	return nil
}

// MarkPaid records payment of an issued document
func (d *Document) MarkPaid(paidDate time.Time) error {
	if !d.Status.CanTransitionTo(DocumentStatusPaid) {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot mark a document in %s status as paid", d.Status)
	}
	if paidDate.IsZero() {
		return shared.NewDomainError("INVALID_PAID_DATE", "Paid date is required")
	}
	paid := truncateToDay(paidDate)
	if d.IssueDate != nil && paid.Before(*d.IssueDate) {
		return shared.NewDomainError("INVALID_PAID_DATE", "Paid date cannot be before the issue date")
	}

	d.PaidDate = &paid
	d.Status = DocumentStatusPaid
	d.Touch()

	d.AddDomainEvent(NewDocumentPaidEvent(d))
	return nil
}

// Cancel cancels a draft or issued document. The document stays locked
// afterwards; an issued number is never reused.
func (d *Document) Cancel(reason string) error {
	if !d.Status.CanTransitionTo(DocumentStatusCancelled) {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot cancel a document in %s status", d.Status)
	}
	reason = strings.TrimSpace(reason)
	if d.Status == DocumentStatusIssued && reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required for issued documents")
	}

	now := time.Now().UTC()
	d.Status = DocumentStatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.IsLocked = true
	d.Touch()

	d.AddDomainEvent(NewDocumentCancelledEvent(d))
	return nil
}

// EnsureDeletable allows hard deletion of unlocked drafts only
func (d *Document) EnsureDeletable() error {
	if d.Status != DocumentStatusDraft || d.IsLocked {
		return shared.NewDomainError("INVALID_STATE", "Only unlocked drafts can be deleted")
	}
	return nil
}

// IsOverdue reports whether an issued document is past its due date on day
func (d *Document) IsOverdue(day time.Time) bool {
	return d.Status == DocumentStatusIssued && d.DueDate != nil && truncateToDay(day).After(*d.DueDate)
}

// NumberOrEmpty returns the document number or an empty string for drafts
func (d *Document) NumberOrEmpty() string {
	if d.DocumentNumber == nil {
		return ""
	}
	return *d.DocumentNumber
}

// ExpenseIDs returns the expenses billed on this document
func (d *Document) ExpenseIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, line := range d.Lines {
		if line.ExpenseID != nil {
			ids = append(ids, *line.ExpenseID)
		}
	}
	return ids
}

// LineCount returns the number of lines
func (d *Document) LineCount() int {
	return len(d.Lines)
}

func truncateToDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
