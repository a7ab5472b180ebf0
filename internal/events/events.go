// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names an order lifecycle event.
type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	OrderCancelled     Type = "order.cancelled"
	OrderRefunded      Type = "order.refunded"
)

// SchemaVersion is sent with every event so consumers can detect payload changes.
const SchemaVersion = "1.0"

// Event is the payload published after an order transaction commits.
type Event struct {
	Type        Type              `json:"type"`
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	UserID      string            `json:"userId"`
	Status      model.OrderStatus `json:"status"`
	Amount      decimal.Decimal   `json:"amount"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// NewOrderEvent builds an event describing order. amount is the order total for
// placements and the refunded amount for refunds.
func NewOrderEvent(eventType Type, order *model.Order, amount decimal.Decimal, now time.Time) Event {
	return Event{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.OrderStatus,
		Amount:      amount,
		OccurredAt:  now,
	}
}

// Publisher delivers events. Delivery is best effort; callers never roll back on failure.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (NopPublisher) Close() {}
