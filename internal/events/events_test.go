package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

// fakeProducer records produced records and completes them with err.
type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
	flushed bool
	closed  bool
}

func (f *fakeProducer) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	promise(r, f.err)
}

func (f *fakeProducer) Flush(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeProducer) Close() {
	f.closed = true
}

func testOrder() *model.Order {
	return &model.Order{
		ID:          uuid.MustParse("8d3c3f2e-9c59-4a39-9b3f-6c1b2b0f6a11"),
		OrderNumber: "BGV260601000007",
		UserID:      "user-1",
		OrderStatus: model.StatusPlaced,
		TotalPrice:  decimal.RequireFromString("1180.50"),
	}
}

func TestNewOrderEvent(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 30, 0, 0, time.UTC)
	order := testOrder()

	event := NewOrderEvent(OrderPlaced, order, order.TotalPrice, now)

	assert.Equal(t, OrderPlaced, event.Type)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, "BGV260601000007", event.OrderNumber)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, model.StatusPlaced, event.Status)
	assert.True(t, event.Amount.Equal(order.TotalPrice))
	assert.Equal(t, now, event.OccurredAt)
}

func TestBuildRecord(t *testing.T) {
	now := time.Date(2026, time.June, 1, 9, 30, 0, 0, time.UTC)
	event := NewOrderEvent(OrderRefunded, testOrder(), decimal.NewFromInt(200), now)

	record, err := buildRecord("bagvo.orders", event)
	require.NoError(t, err)

	assert.Equal(t, "bagvo.orders", record.Topic)
	assert.Equal(t, []byte("8d3c3f2e-9c59-4a39-9b3f-6c1b2b0f6a11"), record.Key)
	assert.Equal(t, now, record.Timestamp)
	assert.Equal(t, []kgo.RecordHeader{
		{Key: "event_type", Value: []byte("order.refunded")},
		{Key: "version", Value: []byte("1.0")},
	}, record.Headers)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(record.Value, &payload))
	assert.Equal(t, "order.refunded", payload["type"])
	assert.Equal(t, "BGV260601000007", payload["orderNumber"])
	assert.Equal(t, float64(200), payload["amount"])
}

func TestKafkaPublisher_Publish(t *testing.T) {
	tests := []struct {
		name       string
		produceErr error
		expectLog  string
	}{
		{name: "delivered", expectLog: "order event published"},
		{name: "broker failure is logged not returned", produceErr: errors.New("NOT_LEADER_FOR_PARTITION"), expectLog: "failed to publish order event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
			client := &fakeProducer{err: tt.produceErr}
			publisher := newKafkaPublisher(client, "bagvo.orders", logger)

			err := publisher.Publish(context.Background(), NewOrderEvent(OrderPlaced, testOrder(), decimal.Zero, time.Now()))

			require.NoError(t, err)
			require.Len(t, client.records, 1)
			assert.Contains(t, buf.String(), tt.expectLog)
		})
	}
}

func TestKafkaPublisher_Close(t *testing.T) {
	client := &fakeProducer{}
	newKafkaPublisher(client, "bagvo.orders", zerolog.Nop()).Close()

	assert.True(t, client.flushed)
	assert.True(t, client.closed)
}

func TestKgoLogger(t *testing.T) {
	var buf bytes.Buffer
	l := kgoLogger{logger: zerolog.New(&buf).Level(zerolog.WarnLevel)}

	assert.Equal(t, kgo.LogLevelWarn, l.Level())

	l.Log(kgo.LogLevelError, "metadata fetch failed", "broker", "b-1", "attempt", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "metadata fetch failed", entry["message"])
	assert.Equal(t, "b-1", entry["broker"])
	assert.Equal(t, float64(3), entry["attempt"])
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	p.Close()
}
