package accounting

import (
	"time"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeExport is the aggregate type of accounting exports
const AggregateTypeExport = "AccountingExport"

// Event type constants
const (
	EventTypeExportCreated = "AccountingExportCreated"
	EventTypeExportLocked  = "AccountingExportLocked"
)

// ExportCreatedEvent is published when an export is created
type ExportCreatedEvent struct {
	shared.BaseDomainEvent
	ExportID    uuid.UUID `json:"export_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	RowCount    int       `json:"row_count"`
}

// NewExportCreatedEvent creates a new ExportCreatedEvent
func NewExportCreatedEvent(e *Export) *ExportCreatedEvent {
	return &ExportCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportCreated, AggregateTypeExport, e.ID, e.TenantID),
		ExportID:        e.ID,
		PeriodStart:     e.PeriodStart,
		PeriodEnd:       e.PeriodEnd,
		RowCount:        len(e.Rows),
	}
}

// ExportLockedEvent is published when an export is locked
type ExportLockedEvent struct {
	shared.BaseDomainEvent
	ExportID uuid.UUID `json:"export_id"`
	LockedBy uuid.UUID `json:"locked_by"`
}

// NewExportLockedEvent creates a new ExportLockedEvent
func NewExportLockedEvent(e *Export) *ExportLockedEvent {
	ev := &ExportLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExportLocked, AggregateTypeExport, e.ID, e.TenantID),
		ExportID:        e.ID,
	}
	if e.LockedBy != nil {
		ev.LockedBy = *e.LockedBy
	}
	return ev
}
