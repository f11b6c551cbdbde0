package telemetry

import (
	"context"
	"errors"

	"github.com/botforce/unity/internal/domain/accounting"
	"github.com/botforce/unity/internal/domain/expense"
	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics counts invoicing activity. It subscribes to the event bus
// for document, expense and export events; numbering retries and recurring
// generation are recorded directly by the services.
type BusinessMetrics struct {
	documentsCreated   *Counter
	documentsIssued    *Counter
	issuedAmount       *FloatCounter
	documentsPaid      *Counter
	documentsCancelled *Counter
	expenseTransitions *Counter
	exportsCreated     *Counter
	exportRows         *Counter
	numberingRetries   *Counter
	recurringGenerated *Counter
}

// NewBusinessMetrics creates all instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		dst         **Counter
		name, descr string
		unit        string
	}{
		{&bm.documentsCreated, "unity_documents_created_total", "Draft invoices and credit notes created", "{documents}"},
		{&bm.documentsIssued, "unity_documents_issued_total", "Documents issued with a number", "{documents}"},
		{&bm.documentsPaid, "unity_documents_paid_total", "Documents marked as paid", "{documents}"},
		{&bm.documentsCancelled, "unity_documents_cancelled_total", "Documents cancelled", "{documents}"},
		{&bm.expenseTransitions, "unity_expense_transitions_total", "Expense workflow transitions", "{expenses}"},
		{&bm.exportsCreated, "unity_accounting_exports_total", "Accounting exports created", "{exports}"},
		{&bm.exportRows, "unity_accounting_export_rows_total", "Rows written to accounting exports", "{rows}"},
		{&bm.numberingRetries, "unity_numbering_retries_total", "Issue attempts retried after a number collision", "{retries}"},
		{&bm.recurringGenerated, "unity_recurring_documents_generated_total", "Draft invoices generated from recurring templates", "{documents}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.descr, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	bm.issuedAmount, err = NewFloatCounter(meter,
		"unity_documents_issued_amount_total",
		"Gross total of issued documents in document currency",
		"{currency}",
	)
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// EventTypes implements shared.EventHandler.
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		invoicing.EventTypeDocumentCreated,
		invoicing.EventTypeDocumentIssued,
		invoicing.EventTypeDocumentPaid,
		invoicing.EventTypeDocumentCancelled,
		expense.EventTypeExpenseSubmitted,
		expense.EventTypeExpenseApproved,
		expense.EventTypeExpenseRejected,
		accounting.EventTypeExportCreated,
	}
}

// Handle implements shared.EventHandler.
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := AttrTenantID.String(event.TenantID().String())

	switch e := event.(type) {
	case *invoicing.DocumentCreatedEvent:
		bm.documentsCreated.Inc(ctx, tenant, AttrDocumentType.String(string(e.DocumentType)))
	case *invoicing.DocumentIssuedEvent:
		attrs := []attribute.KeyValue{
			tenant,
			AttrDocumentType.String(string(e.DocumentType)),
			AttrCurrency.String(e.Currency),
		}
		bm.documentsIssued.Inc(ctx, attrs...)
		// Credit notes carry negative totals; the counter tracks magnitude.
		amount, _ := e.Total.Abs().Float64()
		bm.issuedAmount.Add(ctx, amount, attrs...)
	case *invoicing.DocumentPaidEvent:
		bm.documentsPaid.Inc(ctx, tenant)
	case *invoicing.DocumentCancelledEvent:
		bm.documentsCancelled.Inc(ctx, tenant)
	case *expense.ExpenseSubmittedEvent:
		bm.expenseTransitions.Inc(ctx, tenant, AttrOutcome.String("submitted"), AttrCategory.String(string(e.Category)))
	case *expense.ExpenseApprovedEvent:
		bm.expenseTransitions.Inc(ctx, tenant, AttrOutcome.String("approved"))
	case *expense.ExpenseRejectedEvent:
		bm.expenseTransitions.Inc(ctx, tenant, AttrOutcome.String("rejected"))
	case *accounting.ExportCreatedEvent:
		bm.exportsCreated.Inc(ctx, tenant)
		bm.exportRows.Add(ctx, int64(e.RowCount), tenant)
	}
	return nil
}

// RecordNumberingRetry counts an issue attempt that lost a numbering race.
func (bm *BusinessMetrics) RecordNumberingRetry(ctx context.Context, tenantID uuid.UUID, docType invoicing.DocumentType) {
	bm.numberingRetries.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDocumentType.String(string(docType)),
	)
}

// RecordRecurringGenerated counts drafts produced by one recurring run.
func (bm *BusinessMetrics) RecordRecurringGenerated(ctx context.Context, tenantID uuid.UUID, count int) {
	if count <= 0 {
		return
	}
	bm.recurringGenerated.Add(ctx, int64(count), AttrTenantID.String(tenantID.String()))
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
