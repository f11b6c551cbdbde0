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

// Category represents the category of an expense
type Category string

const (
	CategoryTravel   Category = "travel"
	CategoryMileage  Category = "mileage"
	CategoryMeals    Category = "meals"
	CategoryOffice   Category = "office"
	CategorySoftware Category = "software"
	CategoryHardware Category = "hardware"
	CategoryOther    Category = "other"
)

// IsValid checks if the category is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryTravel, CategoryMileage, CategoryMeals, CategoryOffice,
		CategorySoftware, CategoryHardware, CategoryOther:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Status represents the approval state of an expense
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusExported  Status = "exported"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusExported:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanEdit returns true while the submitter may still change the expense
func (s Status) CanEdit() bool {
	return s == StatusDraft || s == StatusRejected
}

// CanSubmit returns true if the expense can be submitted for approval
func (s Status) CanSubmit() bool {
	return s == StatusDraft
}

// CanReview returns true if the expense can be approved or rejected
func (s Status) CanReview() bool {
	return s == StatusSubmitted
}

// Expense is a cost paid by an employee that is reimbursed and may be
// re-billed to a customer.
type Expense struct {
	shared.TenantAggregateRoot
	CustomerID      *uuid.UUID           `json:"customer_id"`
	ExpenseDate     time.Time            `json:"expense_date"`
	Merchant        string               `json:"merchant"`
	Category        Category             `json:"category"`
	Description     string               `json:"description"`
	Amount          decimal.Decimal      `json:"amount"`
	TaxAmount       decimal.Decimal      `json:"tax_amount"`
	TaxRate         invoicing.TaxRate    `json:"tax_rate"`
	Currency        valueobject.Currency `json:"currency"`
	Status          Status               `json:"status"`
	DistanceKm      *decimal.Decimal     `json:"distance_km"`
	MileageRate     *decimal.Decimal     `json:"mileage_rate"`
	ReceiptKey      string               `json:"receipt_key"`
	SubmittedAt     *time.Time           `json:"submitted_at"`
	ApprovedAt      *time.Time           `json:"approved_at"`
	ApprovedBy      *uuid.UUID           `json:"approved_by"`
	RejectedAt      *time.Time           `json:"rejected_at"`
	RejectedBy      *uuid.UUID           `json:"rejected_by"`
	RejectionReason string               `json:"rejection_reason"`
	ExportedAt      *time.Time           `json:"exported_at"`
	DocumentID      *uuid.UUID           `json:"document_id"`
}

// Details are the user-editable fields of a receipt-based expense
type Details struct {
	CustomerID  *uuid.UUID
	ExpenseDate time.Time
	Merchant    string
	Category    Category
	Description string
	Amount      decimal.Decimal
	TaxAmount   decimal.Decimal
	TaxRate     invoicing.TaxRate
	Currency    valueobject.Currency
}

func (d *Details) normalize() error {
	d.Merchant = strings.TrimSpace(d.Merchant)
	d.Description = strings.TrimSpace(d.Description)
	if d.Currency == "" {
		d.Currency = valueobject.DefaultCurrency
	}
	if d.TaxRate == "" {
		d.TaxRate = invoicing.TaxRateZero
	}

	if d.ExpenseDate.IsZero() {
		return shared.NewDomainError("INVALID_EXPENSE_DATE", "Expense date is required")
	}
	if !d.Category.IsValid() {
		return shared.NewDomainErrorf("INVALID_CATEGORY", "Unsupported category: %s", d.Category)
	}
	if d.Merchant == "" {
		return shared.NewDomainError("INVALID_MERCHANT", "Merchant cannot be empty")
	}
	if len(d.Merchant) > 200 {
		return shared.NewDomainError("INVALID_MERCHANT", "Merchant cannot exceed 200 characters")
	}
	if len(d.Description) > 1000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}
	if !d.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if d.TaxAmount.IsNegative() || d.TaxAmount.GreaterThan(d.Amount) {
		return shared.NewDomainError("INVALID_TAX_AMOUNT", "Tax amount must be between zero and the amount")
	}
	if !d.TaxRate.IsValid() {
		return shared.NewDomainErrorf("INVALID_TAX_RATE", "Unsupported tax rate: %s", d.TaxRate)
	}
	if !d.Currency.IsValid() {
		return shared.NewDomainErrorf("INVALID_CURRENCY", "Invalid currency: %s", d.Currency)
	}
	d.Amount = valueobject.RoundCents(d.Amount)
	d.TaxAmount = valueobject.RoundCents(d.TaxAmount)
	return nil
}

// NewExpense creates a draft expense from a receipt
func NewExpense(tenantID, createdBy uuid.UUID, details Details) (*Expense, error) {
	if err := details.normalize(); err != nil {
		return nil, err
	}
	e := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Status:              StatusDraft,
	}
	e.apply(details)
	return e, nil
}

// NewMileageExpense creates a draft Kilometergeld claim: distance × rate, tax free
func NewMileageExpense(tenantID, createdBy uuid.UUID, trip Trip) (*Expense, error) {
	details, err := trip.details()
	if err != nil {
		return nil, err
	}
	e := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Status:              StatusDraft,
	}
	e.apply(details)
	e.setTrip(trip)
	return e, nil
}

func (e *Expense) apply(d Details) {
	e.CustomerID = d.CustomerID
	e.ExpenseDate = truncateToDay(d.ExpenseDate)
	e.Merchant = d.Merchant
	e.Category = d.Category
	e.Description = d.Description
	e.Amount = d.Amount
	e.TaxAmount = d.TaxAmount
	e.TaxRate = d.TaxRate
	e.Currency = d.Currency
}

func (e *Expense) setTrip(trip Trip) {
	km := trip.DistanceKm
	rate := trip.rate()
	e.DistanceKm = &km
	e.MileageRate = &rate
}

// reopenIfRejected moves a rejected expense back to draft on edit
func (e *Expense) reopenIfRejected() {
	if e.Status == StatusRejected {
		e.Status = StatusDraft
		e.RejectedAt = nil
		e.RejectedBy = nil
		e.RejectionReason = ""
	}
}

// Update replaces the editable fields. Editing a rejected expense returns it to draft.
func (e *Expense) Update(details Details) error {
	if !e.Status.CanEdit() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot edit expense in %s status", e.Status)
	}
	if details.Category == CategoryMileage {
		return shared.NewDomainError("INVALID_CATEGORY", "Use a trip to record mileage")
	}
	if err := details.normalize(); err != nil {
		return err
	}
	e.apply(details)
	e.DistanceKm = nil
	e.MileageRate = nil
	e.reopenIfRejected()
	e.Touch()
	return nil
}

// UpdateTrip replaces a mileage claim
func (e *Expense) UpdateTrip(trip Trip) error {
	if !e.Status.CanEdit() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot edit expense in %s status", e.Status)
	}
	details, err := trip.details()
	if err != nil {
		return err
	}
	e.apply(details)
	e.setTrip(trip)
	e.reopenIfRejected()
	e.Touch()
	return nil
}

// Reopen explicitly returns a rejected expense to draft
func (e *Expense) Reopen() error {
	if e.Status != StatusRejected {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot reopen expense in %s status", e.Status)
	}
	e.reopenIfRejected()
	e.Touch()
	return nil
}

// AttachReceipt stores the object key of the uploaded receipt
func (e *Expense) AttachReceipt(key string) error {
	if e.Status == StatusExported || e.Status == StatusApproved {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot change receipt of expense in %s status", e.Status)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt key cannot be empty")
	}
	e.ReceiptKey = key
	e.Touch()
	return nil
}

// Submit submits the expense for approval
func (e *Expense) Submit() error {
	if !e.Status.CanSubmit() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot submit expense in %s status", e.Status)
	}
	now := time.Now().UTC()
	e.Status = StatusSubmitted
	e.SubmittedAt = &now
	e.Touch()

	e.AddDomainEvent(NewExpenseSubmittedEvent(e))
	return nil
}

// Approve approves a submitted expense
func (e *Expense) Approve(approvedBy uuid.UUID) error {
	if !e.Status.CanReview() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot approve expense in %s status", e.Status)
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approver user ID cannot be empty")
	}
	now := time.Now().UTC()
	e.Status = StatusApproved
	e.ApprovedAt = &now
	e.ApprovedBy = &approvedBy
	e.Touch()

	e.AddDomainEvent(NewExpenseApprovedEvent(e))
	return nil
}

// Reject rejects a submitted expense
func (e *Expense) Reject(rejectedBy uuid.UUID, reason string) error {
	if !e.Status.CanReview() {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot reject expense in %s status", e.Status)
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejector user ID cannot be empty")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	now := time.Now().UTC()
	e.Status = StatusRejected
	e.RejectedAt = &now
	e.RejectedBy = &rejectedBy
	e.RejectionReason = reason
	e.Touch()

	e.AddDomainEvent(NewExpenseRejectedEvent(e))
	return nil
}

// IsBillable reports whether the expense may be put on a document
func (e *Expense) IsBillable() bool {
	return e.Status == StatusApproved && e.ExportedAt == nil
}

// MarkExported records that the expense was billed on documentID
func (e *Expense) MarkExported(documentID uuid.UUID, at time.Time) error {
	if !e.IsBillable() {
		return ErrExpenseNotBillable
	}
	exported := at.UTC()
	e.Status = StatusExported
	e.ExportedAt = &exported
	e.DocumentID = &documentID
	e.Touch()
	return nil
}

// EnsureDeletable allows deleting drafts only
func (e *Expense) EnsureDeletable() error {
	if e.Status != StatusDraft {
		return shared.NewDomainErrorf("INVALID_STATE", "Cannot delete expense in %s status", e.Status)
	}
	return nil
}

// NetAmount returns the amount without the contained tax
func (e *Expense) NetAmount() decimal.Decimal {
	return e.Amount.Sub(e.TaxAmount)
}

// IsMileage reports whether this is a Kilometergeld claim
func (e *Expense) IsMileage() bool {
	return e.Category == CategoryMileage
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
