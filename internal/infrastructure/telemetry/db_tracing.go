package telemetry

import (
	"fmt"
	"time"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThresh = 200 * time.Millisecond

// queryStartKey is kept in statement settings rather than the context
// because otelgorm swaps Statement.Context back to the parent after a query.
const queryStartKey = "telemetry:query_start"

// DBTracingPlugin registers otelgorm plus a hook that flags slow queries on
// the query span.
type DBTracingPlugin struct {
	enabled    bool
	logFullSQL bool
	slowThresh time.Duration
	logger     *zap.Logger
}

// NewDBTracingPlugin creates the plugin from the telemetry settings.
func NewDBTracingPlugin(cfg config.TelemetryConfig, logger *zap.Logger) *DBTracingPlugin {
	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThresh
	}
	return &DBTracingPlugin{
		enabled:    cfg.Enabled && cfg.DBTraceEnabled,
		logFullSQL: cfg.DBLogFullSQL,
		slowThresh: thresh,
		logger:     logger,
	}
}

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !p.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// The after hook must run before otelgorm ends the span.
	cb := db.Callback()
	hooks := []gormHook{
		{"otel_timing:before_create", cb.Create().Before("gorm:create"), markQueryStart},
		{"otel_timing:after_create", cb.Create().After("gorm:create").Before("otel:after:create"), p.afterQuery},
		{"otel_timing:before_query", cb.Query().Before("gorm:query"), markQueryStart},
		{"otel_timing:after_query", cb.Query().After("gorm:query").Before("otel:after:select"), p.afterQuery},
		{"otel_timing:before_update", cb.Update().Before("gorm:update"), markQueryStart},
		{"otel_timing:after_update", cb.Update().After("gorm:update").Before("otel:after:update"), p.afterQuery},
		{"otel_timing:before_delete", cb.Delete().Before("gorm:delete"), markQueryStart},
		{"otel_timing:after_delete", cb.Delete().After("gorm:delete").Before("otel:after:delete"), p.afterQuery},
		{"otel_timing:before_row", cb.Row().Before("gorm:row"), markQueryStart},
		{"otel_timing:after_row", cb.Row().After("gorm:row").Before("otel:after:row"), p.afterQuery},
		{"otel_timing:before_raw", cb.Raw().Before("gorm:raw"), markQueryStart},
		{"otel_timing:after_raw", cb.Raw().After("gorm:raw").Before("otel:after:raw"), p.afterQuery},
	}
	if err := registerHooks(hooks); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.logFullSQL),
		zap.Duration("slow_query_threshold", p.slowThresh),
	)
	return nil
}

func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	if elapsed, ok := queryElapsed(db); ok && elapsed > p.slowThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.slowThresh.Milliseconds()),
		))
	}
}

type gormRegister interface {
	Register(name string, fn func(*gorm.DB)) error
}

type gormHook struct {
	name     string
	callback gormRegister
	fn       func(*gorm.DB)
}

func registerHooks(hooks []gormHook) error {
	for _, h := range hooks {
		if err := h.callback.Register(h.name, h.fn); err != nil {
			return fmt.Errorf("register gorm callback %s: %w", h.name, err)
		}
	}
	return nil
}

func markQueryStart(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	v, ok := db.InstanceGet(queryStartKey)
	if !ok {
		return 0, false
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
