package accounting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxPeriodDays bounds the length of an export period
const MaxPeriodDays = 366

// RowType is the kind of record in an export
type RowType string

const (
	RowTypeInvoice    RowType = "Invoice"
	RowTypeCreditNote RowType = "Credit Note"
	RowTypeExpense    RowType = "Expense"
)

// Row is one snapshotted record of an export
type Row struct {
	Type     RowType         `json:"type"`
	SourceID uuid.UUID       `json:"source_id"`
	Date     time.Time       `json:"date"`
	Number   string          `json:"number"`
	Party    string          `json:"party"`
	Category string          `json:"category"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Status   string          `json:"status"`
}

// Summary holds the counts and totals of an export. Cancelled documents are
// listed as rows but do not count towards the totals.
type Summary struct {
	InvoiceCount    int             `json:"invoice_count"`
	CreditNoteCount int             `json:"credit_note_count"`
	ExpenseCount    int             `json:"expense_count"`
	InvoiceTotal    decimal.Decimal `json:"invoice_total"`
	InvoiceTax      decimal.Decimal `json:"invoice_tax"`
	CreditNoteTotal decimal.Decimal `json:"credit_note_total"`
	CreditNoteTax   decimal.Decimal `json:"credit_note_tax"`
	ExpenseTotal    decimal.Decimal `json:"expense_total"`
	ExpenseTax      decimal.Decimal `json:"expense_tax"`
}

// Export is a frozen snapshot of a period's documents and expenses handed
// to the accountant. Once locked it can neither be changed nor deleted.
type Export struct {
	shared.TenantAggregateRoot
	Summary
	Name        string     `json:"name"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	Rows        []Row      `json:"rows"`
	FileKey     string     `json:"file_key"`
	IsLocked    bool       `json:"is_locked"`
	LockedAt    *time.Time `json:"locked_at"`
	LockedBy    *uuid.UUID `json:"locked_by"`
}

// Period is an inclusive date range
type Period struct {
	Start time.Time
	End   time.Time
}

// Validate checks ordering and length
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return shared.NewDomainError("INVALID_PERIOD", "Period start and end are required")
	}
	start, end := shared.TruncateToDay(p.Start), shared.TruncateToDay(p.End)
	if end.Before(start) {
		return shared.NewDomainError("INVALID_PERIOD", "Period end must not be before its start")
	}
	if end.Sub(start) > MaxPeriodDays*24*time.Hour {
		return shared.NewDomainErrorf("INVALID_PERIOD", "Period cannot exceed %d days", MaxPeriodDays)
	}
	return nil
}

// Contains reports whether day falls within the period
func (p Period) Contains(day time.Time) bool {
	d := shared.TruncateToDay(day)
	return !d.Before(shared.TruncateToDay(p.Start)) && !d.After(shared.TruncateToDay(p.End))
}

// NewExport snapshots the given documents and expenses. Records outside the
// period, drafts, and expenses that are not approved or exported are left out.
func NewExport(tenantID, createdBy uuid.UUID, name string, period Period, docs []invoicing.Document, expenses []expense.Expense) (*Export, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(period)
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Export name cannot exceed 200 characters")
	}

	e := &Export{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Name:                name,
		PeriodStart:         shared.TruncateToDay(period.Start),
		PeriodEnd:           shared.TruncateToDay(period.End),
		Summary:             emptySummary(),
	}

	for i := range docs {
		if row, ok := documentRow(&docs[i], period); ok {
			e.addRow(row)
		}
	}
	for i := range expenses {
		if row, ok := expenseRow(&expenses[i], period); ok {
			e.addRow(row)
		}
	}
	sortRows(e.Rows)

	e.AddDomainEvent(NewExportCreatedEvent(e))
	return e, nil
}

// DefaultName names an export after its period
func DefaultName(p Period) string {
	return fmt.Sprintf("Export %s to %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

func emptySummary() Summary {
	return Summary{
		InvoiceTotal:    decimal.Zero,
		InvoiceTax:      decimal.Zero,
		CreditNoteTotal: decimal.Zero,
		CreditNoteTax:   decimal.Zero,
		ExpenseTotal:    decimal.Zero,
		ExpenseTax:      decimal.Zero,
	}
}

func documentRow(d *invoicing.Document, period Period) (Row, bool) {
	switch d.Status {
	case invoicing.DocumentStatusIssued, invoicing.DocumentStatusPaid, invoicing.DocumentStatusCancelled:
	default:
		return Row{}, false
	}
	if d.IssueDate == nil || !period.Contains(*d.IssueDate) {
		return Row{}, false
	}

	rowType := RowTypeInvoice
	if d.Type == invoicing.DocumentTypeCreditNote {
		rowType = RowTypeCreditNote
	}
	party := ""
	if d.CustomerSnapshot != nil {
		party = d.CustomerSnapshot.Name
	}
	return Row{
		Type:     rowType,
		SourceID: d.ID,
		Date:     shared.TruncateToDay(*d.IssueDate),
		Number:   d.NumberOrEmpty(),
		Party:    party,
		Subtotal: d.Subtotal,
		Tax:      d.TaxAmount,
		Total:    d.Total,
		Status:   d.Status.String(),
	}, true
}

func expenseRow(x *expense.Expense, period Period) (Row, bool) {
	if x.Status != expense.StatusApproved && x.Status != expense.StatusExported {
		return Row{}, false
	}
	if !period.Contains(x.ExpenseDate) {
		return Row{}, false
	}
	return Row{
		Type:     RowTypeExpense,
		SourceID: x.ID,
		Date:     x.ExpenseDate,
		Party:    x.Merchant,
		Category: x.Category.String(),
		Subtotal: x.NetAmount(),
		Tax:      x.TaxAmount,
		Total:    x.Amount,
		Status:   x.Status.String(),
	}, true
}

func (e *Export) addRow(r Row) {
	e.Rows = append(e.Rows, r)
	if r.Status == invoicing.DocumentStatusCancelled.String() {
		return
	}
	switch r.Type {
	case RowTypeInvoice:
		e.InvoiceCount++
		e.InvoiceTotal = e.InvoiceTotal.Add(r.Total)
		e.InvoiceTax = e.InvoiceTax.Add(r.Tax)
	case RowTypeCreditNote:
		e.CreditNoteCount++
		e.CreditNoteTotal = e.CreditNoteTotal.Add(r.Total)
		e.CreditNoteTax = e.CreditNoteTax.Add(r.Tax)
	case RowTypeExpense:
		e.ExpenseCount++
		e.ExpenseTotal = e.ExpenseTotal.Add(r.Total)
		e.ExpenseTax = e.ExpenseTax.Add(r.Tax)
	}
}

var rowTypeOrder = map[RowType]int{RowTypeInvoice: 0, RowTypeCreditNote: 1, RowTypeExpense: 2}

// sortRows orders documents before expenses, then by date and number
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Type == RowTypeExpense) != (b.Type == RowTypeExpense) {
			return a.Type != RowTypeExpense
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return rowTypeOrder[a.Type] < rowTypeOrder[b.Type]
	})
}

// Period returns the export's period
func (e *Export) Period() Period {
	return Period{Start: e.PeriodStart, End: e.PeriodEnd}
}

// NetRevenue is invoiced minus credited gross amounts
func (e *Export) NetRevenue() decimal.Decimal {
	return e.InvoiceTotal.Sub(e.CreditNoteTotal)
}

// AttachFile records the object storage key of the rendered CSV
func (e *Export) AttachFile(key string) error {
	if e.IsLocked {
		return ErrExportLocked
	}
	e.FileKey = key
	e.Touch()
	return nil
}

// Lock freezes the export
func (e *Export) Lock(lockedBy uuid.UUID) error {
	if e.IsLocked {
		return ErrExportLocked
	}
	if lockedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Locking user ID cannot be empty")
	}
	now := time.Now().UTC()
	e.IsLocked = true
	e.LockedAt = &now
	e.LockedBy = &lockedBy
	e.Touch()

	e.AddDomainEvent(NewExportLockedEvent(e))
	return nil
}

// EnsureDeletable rejects deleting a locked export
func (e *Export) EnsureDeletable() error {
	if e.IsLocked {
		return ErrExportLocked
	}
	return nil
}
