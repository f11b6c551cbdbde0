package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type funcExecutor func(ctx context.Context, job *Job) error

func (f funcExecutor) Execute(ctx context.Context, job *Job) error { return f(ctx, job) }

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     2,
		RetryDelay:        10 * time.Millisecond,
	}
}

func TestScheduler_RunsSubmittedJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[uuid.UUID]bool{}
	done := make(chan struct{}, 3)

	s := NewScheduler(testSchedulerConfig(), funcExecutor(func(ctx context.Context, job *Job) error {
		mu.Lock()
		seen[job.TenantID] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	}), zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	tenants := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range tenants {
		require.NoError(t, s.Submit(NewJob(JobKindRecurringTick, id, time.Now(), 0)))
	}

	for range tenants {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, id := range tenants {
		assert.True(t, seen[id])
	}
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	var attempts atomic.Int32
	succeeded := make(chan *Job, 1)

	s := NewScheduler(testSchedulerConfig(), funcExecutor(func(ctx context.Context, job *Job) error {
		if attempts.Add(1) < 3 {
			return errors.New("database unavailable")
		}
		succeeded <- job
		return nil
	}), zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.NoError(t, s.Submit(NewJob(JobKindRecurringTick, uuid.New(), time.Now(), 2)))

	select {
	case job := <-succeeded:
		assert.Equal(t, 2, job.RetryCount)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to success")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32
	s := NewScheduler(testSchedulerConfig(), funcExecutor(func(ctx context.Context, job *Job) error {
		attempts.Add(1)
		return errors.New("always fails")
	}), zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Submit(NewJob(JobKindRecurringTick, uuid.New(), time.Now(), 1)))

	assert.Eventually(t, func() bool { return attempts.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())

	require.NoError(t, s.Stop(context.Background()))
}

func TestScheduler_JobTimeout(t *testing.T) {
	cfg := testSchedulerConfig()
	cfg.JobTimeout = 20 * time.Millisecond
	errCh := make(chan error, 1)

	s := NewScheduler(cfg, funcExecutor(func(ctx context.Context, job *Job) error {
		<-ctx.Done()
		errCh <- ctx.Err()
		return ctx.Err()
	}), zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())
	require.NoError(t, s.Submit(NewJob(JobKindRecurringTick, uuid.New(), time.Now(), 0)))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}
}

func TestScheduler_SubmitWhenStopped(t *testing.T) {
	s := NewScheduler(testSchedulerConfig(), funcExecutor(func(context.Context, *Job) error { return nil }), zap.NewNop())
	err := s.Submit(NewJob(JobKindRecurringTick, uuid.New(), time.Now(), 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	err = s.Submit(NewJob(JobKindRecurringTick, uuid.New(), time.Now(), 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

type mockTenantProvider struct {
	mock.Mock
}

func (m *mockTenantProvider) FindDueTenants(ctx context.Context, day time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, day)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type mockTicker struct {
	mock.Mock
}

func (m *mockTicker) TickDue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error) {
	args := m.Called(ctx, tenantID, today)
	return args.Int(0), args.Error(1)
}

func TestCronTrigger_FiresOncePerDayAfterRunTime(t *testing.T) {
	tenantA, tenantB := uuid.New(), uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	provider := new(mockTenantProvider)
	provider.On("FindDueTenants", mock.Anything, day).Return([]uuid.UUID{tenantA, tenantB}, nil).Once()

	var mu sync.Mutex
	ran := map[uuid.UUID]time.Time{}
	s := NewScheduler(testSchedulerConfig(), funcExecutor(func(ctx context.Context, job *Job) error {
		mu.Lock()
		ran[job.TenantID] = job.RunDate
		mu.Unlock()
		return nil
	}), zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	trigger := NewCronTrigger(CronTriggerConfig{Hour: 6, Minute: 0}, s, provider, zap.NewNop())

	now := time.Date(2026, 3, 2, 5, 59, 0, 0, time.UTC)
	trigger.now = func() time.Time { return now }

	trigger.checkAndTrigger(context.Background())
	provider.AssertNotCalled(t, "FindDueTenants", mock.Anything, mock.Anything)

	now = time.Date(2026, 3, 2, 6, 1, 0, 0, time.UTC)
	trigger.checkAndTrigger(context.Background())
	trigger.checkAndTrigger(context.Background())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, day, ran[tenantA])
	assert.Equal(t, day, ran[tenantB])
	mu.Unlock()
	provider.AssertExpectations(t)
}

func TestCronTrigger_TriggerNowPropagatesProviderError(t *testing.T) {
	provider := new(mockTenantProvider)
	provider.On("FindDueTenants", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	s := NewScheduler(testSchedulerConfig(), funcExecutor(func(context.Context, *Job) error { return nil }), zap.NewNop())
	trigger := NewCronTrigger(CronTriggerConfig{}, s, provider, zap.NewNop())

	n, err := trigger.TriggerNow(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestNewCronTriggerConfig(t *testing.T) {
	cfg, err := NewCronTriggerConfig(config.SchedulerConfig{RecurringRunAt: "06:30", RetryAttempts: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Hour)
	assert.Equal(t, 30, cfg.Minute)
	assert.Equal(t, 3, cfg.RetryAttempts)

	_, err = NewCronTriggerConfig(config.SchedulerConfig{RecurringRunAt: "later"})
	assert.Error(t, err)
}

func TestRecurringTickExecutor(t *testing.T) {
	tenantID := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("delegates to ticker", func(t *testing.T) {
		ticker := new(mockTicker)
		ticker.On("TickDue", mock.Anything, tenantID, day).Return(2, nil)

		exec := NewRecurringTickExecutor(ticker, zap.NewNop())
		require.NoError(t, exec.Execute(context.Background(), NewJob(JobKindRecurringTick, tenantID, day, 0)))
		ticker.AssertExpectations(t)
	})

	t.Run("wraps ticker errors", func(t *testing.T) {
		boom := errors.New("boom")
		ticker := new(mockTicker)
		ticker.On("TickDue", mock.Anything, tenantID, day).Return(0, boom)

		exec := NewRecurringTickExecutor(ticker, zap.NewNop())
		err := exec.Execute(context.Background(), NewJob(JobKindRecurringTick, tenantID, day, 0))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects other kinds", func(t *testing.T) {
		exec := NewRecurringTickExecutor(new(mockTicker), zap.NewNop())
		err := exec.Execute(context.Background(), NewJob(JobKind("OTHER"), tenantID, day, 0))
		assert.ErrorIs(t, err, ErrUnknownJobKind)
	})
}
