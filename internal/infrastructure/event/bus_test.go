package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/botforce/unity/internal/domain/invoicing"
	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New(), uuid.New()),
		Data:            "payload",
	}
}

type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
}

func (h *recordingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, evt)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	issued := &recordingHandler{eventTypes: []string{invoicing.EventTypeDocumentIssued}}
	paid := &recordingHandler{}
	all := &recordingHandler{}
	bus.Subscribe(issued)
	bus.Subscribe(paid, invoicing.EventTypeDocumentPaid)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newTestEvent(invoicing.EventTypeDocumentIssued),
		newTestEvent(invoicing.EventTypeDocumentIssued),
		newTestEvent(invoicing.EventTypeDocumentPaid),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, issued.count())
	assert.Equal(t, 1, paid.count())
	assert.Equal(t, 3, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{err: errors.New("boom")}
	panicking := &recordingHandler{panicWith: "kaputt"}
	healthy := &recordingHandler{}
	bus.Subscribe(failing, "X")
	bus.Subscribe(panicking, "X")
	bus.Subscribe(healthy, "X")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))

	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, panicking.count())
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{}
	bus.Subscribe(h, "A", "B")

	_ = bus.Publish(context.Background(), newTestEvent("A"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B"))

	assert.Equal(t, 1, h.count())
	assert.Empty(t, bus.registry.HandlersFor("B"))
}

func TestInMemoryEventBus_StoppedBusDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h, "A")

	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
	assert.Equal(t, 0, h.count())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
	assert.Equal(t, 1, h.count())
}

func TestAuditLogHandler_LogsPayload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))

	tenantID := uuid.New()
	ctx := logger.WithTenantID(context.Background(), tenantID)
	evt := newTestEvent(invoicing.EventTypeDocumentIssued)

	require.NoError(t, h.Handle(ctx, evt))
	assert.Nil(t, h.EventTypes())

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, invoicing.EventTypeDocumentIssued, fields["event_type"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
	assert.Contains(t, fields["payload"], `"data":"payload"`)
}
