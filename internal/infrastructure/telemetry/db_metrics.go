package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPoolStatsInterval = 15 * time.Second

// DBMetrics records connection pool gauges and per-query counters.
type DBMetrics struct {
	logger *zap.Logger

	poolConnections *Gauge
	poolMax         *Gauge
	queryTotal      *Counter
	queryErrors     *Counter
	queryDuration   *Histogram

	sqlDB    *sql.DB
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDBMetrics creates the instruments on meter.
func NewDBMetrics(meter metric.Meter, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DBMetrics{
		logger:   logger,
		interval: defaultPoolStatsInterval,
		stopCh:   make(chan struct{}),
	}

	var err error
	if m.poolConnections, err = NewGauge(meter, "db_pool_connections", "Database connections by state", "{connections}"); err != nil {
		return nil, err
	}
	if m.poolMax, err = NewGauge(meter, "db_pool_connections_max", "Maximum open database connections", "{connections}"); err != nil {
		return nil, err
	}
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries executed", "{queries}"); err != nil {
		return nil, err
	}
	if m.queryErrors, err = NewCounter(meter, "db_query_errors_total", "Database queries that failed", "{queries}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// Register installs query callbacks on db and remembers its pool for stats.
func (m *DBMetrics) Register(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	m.sqlDB = sqlDB

	cb := db.Callback()
	return registerHooks([]gormHook{
		{"db_metrics:before_create", cb.Create().Before("gorm:create"), markQueryStart},
		{"db_metrics:after_create", cb.Create().After("gorm:create"), m.afterQuery},
		{"db_metrics:before_query", cb.Query().Before("gorm:query"), markQueryStart},
		{"db_metrics:after_query", cb.Query().After("gorm:query"), m.afterQuery},
		{"db_metrics:before_update", cb.Update().Before("gorm:update"), markQueryStart},
		{"db_metrics:after_update", cb.Update().After("gorm:update"), m.afterQuery},
		{"db_metrics:before_delete", cb.Delete().Before("gorm:delete"), markQueryStart},
		{"db_metrics:after_delete", cb.Delete().After("gorm:delete"), m.afterQuery},
		{"db_metrics:before_row", cb.Row().Before("gorm:row"), markQueryStart},
		{"db_metrics:after_row", cb.Row().After("gorm:row"), m.afterQuery},
		{"db_metrics:before_raw", cb.Raw().Before("gorm:raw"), markQueryStart},
		{"db_metrics:after_raw", cb.Raw().After("gorm:raw"), m.afterQuery},
	})
}

func (m *DBMetrics) afterQuery(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	op := operationOf(db.Statement.SQL.String())
	attrs := []attribute.KeyValue{AttrDBOperation.String(op), AttrDBTable.String(db.Statement.Table)}

	m.queryTotal.Inc(ctx, attrs...)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		m.queryErrors.Inc(ctx, attrs...)
	}
	if elapsed, ok := queryElapsed(db); ok {
		m.queryDuration.RecordDuration(ctx, elapsed, attrs...)
	}
}

// Start polls pool statistics until Stop is called.
func (m *DBMetrics) Start(ctx context.Context) {
	if m.sqlDB == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.collectPoolStats(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.collectPoolStats(ctx)
			}
		}
	}()
}

// Stop ends pool stats collection.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
}

func (m *DBMetrics) collectPoolStats(ctx context.Context) {
	stats := m.sqlDB.Stats()
	m.poolConnections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	m.poolConnections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	m.poolMax.Record(ctx, int64(stats.MaxOpenConnections))
}

func operationOf(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexAny(stmt, " \n\t"); i > 0 {
		stmt = stmt[:i]
	}
	switch op := strings.ToUpper(stmt); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return op
	case "":
		return "UNKNOWN"
	default:
		return "OTHER"
	}
}
