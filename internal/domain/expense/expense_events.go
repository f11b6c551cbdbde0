package expense

import (
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeExpense is the aggregate type for expenses
const AggregateTypeExpense = "Expense"

// Event type constants for Expense
const (
	EventTypeExpenseSubmitted = "ExpenseSubmitted"
	EventTypeExpenseApproved  = "ExpenseApproved"
	EventTypeExpenseRejected  = "ExpenseRejected"
)

// ExpenseSubmittedEvent is raised when an expense is sent for approval
type ExpenseSubmittedEvent struct {
	shared.BaseDomainEvent
	SubmittedBy *uuid.UUID      `json:"submitted_by"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
}

// NewExpenseSubmittedEvent creates a new ExpenseSubmittedEvent
func NewExpenseSubmittedEvent(e *Expense) *ExpenseSubmittedEvent {
	return &ExpenseSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseSubmitted, AggregateTypeExpense, e.ID, e.TenantID),
		SubmittedBy:     e.CreatedBy,
		Amount:          e.Amount,
		Category:        e.Category,
	}
}

// ExpenseApprovedEvent is raised when an expense is approved
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ApprovedBy uuid.UUID       `json:"approved_by"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(e *Expense) *ExpenseApprovedEvent {
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseApproved, AggregateTypeExpense, e.ID, e.TenantID),
		ApprovedBy:      *e.ApprovedBy,
		Amount:          e.Amount,
	}
}

// ExpenseRejectedEvent is raised when an expense is rejected
type ExpenseRejectedEvent struct {
	shared.BaseDomainEvent
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason"`
}

// NewExpenseRejectedEvent creates a new ExpenseRejectedEvent
func NewExpenseRejectedEvent(e *Expense) *ExpenseRejectedEvent {
	return &ExpenseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRejected, AggregateTypeExpense, e.ID, e.TenantID),
		RejectedBy:      *e.RejectedBy,
		Reason:          e.RejectionReason,
	}
}
