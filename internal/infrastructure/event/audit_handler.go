package event

import (
	"context"
	"encoding/json"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the structured log, payload
// included, so that state changes can be traced per tenant.
type AuditLogHandler struct {
	logger *zap.Logger
}

func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

func (h *AuditLogHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	logger.Enrich(ctx, h.logger).Info("domain event",
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

// EventTypes is empty: the audit log receives everything
func (h *AuditLogHandler) EventTypes() []string { return nil }
