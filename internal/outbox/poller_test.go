package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velstore/storefront/internal/orders"
)

type mockSource struct {
	events       []*orders.OutboxEvent
	fetchErr     error
	markErr      error
	processedIDs []int64
}

func (m *mockSource) GetUnprocessedEvents(_ context.Context, _ int) ([]*orders.OutboxEvent, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	ev := m.events
	m.events = nil
	return ev, nil
}

func (m *mockSource) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.processedIDs = append(m.processedIDs, id)
	return nil
}

type mockWriter struct {
	messages []kafka.Message
	writeErr error
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func newEvent(id int64) *orders.OutboxEvent {
	return &orders.OutboxEvent{
		ID:          id,
		AggregateID: "order-123",
		EventType:   "order.placed",
		Payload:     json.RawMessage(`{"order_id":"order-123"}`),
		CreatedAt:   time.Now(),
	}
}

func TestProcessUnpublishedEvents(t *testing.T) {
	source := &mockSource{events: []*orders.OutboxEvent{newEvent(1), newEvent(2)}}
	writer := &mockWriter{}
	poller := &Poller{tick: time.Second, source: source, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	require.Len(t, writer.messages, 2)
	assert.Equal(t, "order-123", string(writer.messages[0].Key))
	require.Len(t, writer.messages[0].Headers, 1)
	assert.Equal(t, "event_type", writer.messages[0].Headers[0].Key)
	assert.Equal(t, "order.placed", string(writer.messages[0].Headers[0].Value))
	assert.Equal(t, []int64{1, 2}, source.processedIDs)
}

func TestProcessUnpublishedEvents_PublishFailureLeavesEventPending(t *testing.T) {
	source := &mockSource{events: []*orders.OutboxEvent{newEvent(1)}}
	writer := &mockWriter{writeErr: errors.New("broker unavailable")}
	poller := &Poller{tick: time.Second, source: source, writer: writer}

	poller.processUnpublishedEvents(context.Background())

	assert.Empty(t, source.processedIDs, "unpublished event must stay unprocessed")
}

func TestProcessUnpublishedEvents_FetchError(t *testing.T) {
	source := &mockSource{fetchErr: errors.New("database connection error")}
	poller := &Poller{tick: time.Second, source: source, writer: &mockWriter{}}

	// should not panic, just log and return
	poller.processUnpublishedEvents(context.Background())
	assert.Empty(t, source.processedIDs)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	source := &mockSource{events: []*orders.OutboxEvent{newEvent(1)}}
	writer := &mockWriter{}
	poller := &Poller{tick: 10 * time.Millisecond, source: source, writer: writer}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}

	assert.Equal(t, []int64{1}, source.processedIDs)
}
