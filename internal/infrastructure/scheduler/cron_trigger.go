package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants that have recurring work due on day
type TenantProvider interface {
	FindDueTenants(ctx context.Context, day time.Time) ([]uuid.UUID, error)
}

// CronTriggerConfig holds when the daily recurring tick fires
type CronTriggerConfig struct {
	Hour          int // UTC
	Minute        int
	CheckInterval time.Duration
	RetryAttempts int
}

// NewCronTriggerConfig derives the trigger settings from scheduler config
func NewCronTriggerConfig(cfg config.SchedulerConfig) (CronTriggerConfig, error) {
	hour, minute, err := cfg.RunAt()
	if err != nil {
		return CronTriggerConfig{}, err
	}
	return CronTriggerConfig{
		Hour:          hour,
		Minute:        minute,
		CheckInterval: time.Minute,
		RetryAttempts: cfg.RetryAttempts,
	}, nil
}

// CronTrigger enqueues one recurring-tick job per tenant with due templates
// once a day at the configured time.
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	tenants   TenantProvider
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

func NewCronTrigger(cfg CronTriggerConfig, scheduler *Scheduler, tenants TenantProvider, logger *zap.Logger) *CronTrigger {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	return &CronTrigger{
		config:    cfg,
		scheduler: scheduler,
		tenants:   tenants,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isRunning {
		return nil
	}
	c.isRunning = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Recurring invoice trigger started",
		zap.Int("hour_utc", c.config.Hour),
		zap.Int("minute", c.config.Minute),
	)
	return nil
}

func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger fires at most once per day, on the first check at or after
// the configured time. A process started after that time still runs that day.
func (c *CronTrigger) checkAndTrigger(ctx context.Context) {
	now := c.now()
	today := now.Format("2006-01-02")

	c.mu.Lock()
	if c.lastRunDate == today {
		c.mu.Unlock()
		return
	}
	if now.Hour()*60+now.Minute() < c.config.Hour*60+c.config.Minute {
		c.mu.Unlock()
		return
	}
	c.lastRunDate = today
	c.mu.Unlock()

	if _, err := c.TriggerNow(ctx); err != nil {
		c.logger.Error("Recurring invoice trigger failed", zap.Error(err))
	}
}

// TriggerNow enqueues the tick for every tenant with due templates today and
// returns the number of jobs submitted.
func (c *CronTrigger) TriggerNow(ctx context.Context) (int, error) {
	now := c.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	tenantIDs, err := c.tenants.FindDueTenants(ctx, day)
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, tenantID := range tenantIDs {
		job := NewJob(JobKindRecurringTick, tenantID, day, c.config.RetryAttempts)
		if err := c.scheduler.Submit(job); err != nil {
			c.logger.Error("Failed to enqueue recurring tick",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}

	c.logger.Info("Recurring invoice tick enqueued",
		zap.Int("tenants_due", len(tenantIDs)),
		zap.Int("submitted", submitted),
	)
	return submitted, nil
}
