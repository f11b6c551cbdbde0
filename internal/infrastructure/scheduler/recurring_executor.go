package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecurringTicker generates the due recurring invoices of a tenant
type RecurringTicker interface {
	TickDue(ctx context.Context, tenantID uuid.UUID, today time.Time) (generated int, err error)
}

// RecurringTickExecutor runs JobKindRecurringTick jobs
type RecurringTickExecutor struct {
	ticker RecurringTicker
	logger *zap.Logger
}

func NewRecurringTickExecutor(ticker RecurringTicker, logger *zap.Logger) *RecurringTickExecutor {
	return &RecurringTickExecutor{ticker: ticker, logger: logger}
}

func (e *RecurringTickExecutor) Execute(ctx context.Context, job *Job) error {
	if job.Kind != JobKindRecurringTick {
		return fmt.Errorf("%w: %s", ErrUnknownJobKind, job.Kind)
	}

	generated, err := e.ticker.TickDue(ctx, job.TenantID, job.RunDate)
	if err != nil {
		return fmt.Errorf("recurring tick for tenant %s: %w", job.TenantID, err)
	}

	e.logger.Info("Recurring invoices generated",
		zap.String("tenant_id", job.TenantID.String()),
		zap.Time("run_date", job.RunDate),
		zap.Int("generated", generated),
	)
	return nil
}
