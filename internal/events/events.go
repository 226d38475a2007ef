// Package events publishes order lifecycle notifications after commit.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderEdited        = "order.edited"
)

type OrderEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	OrderID        int       `json:"order_id"`
	StoreID        int       `json:"store_id"`
	InventoryID    int       `json:"inventory_id"`
	Quantity       int       `json:"order_quantity"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Status         string    `json:"status"`
	ActorID        int       `json:"actor_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewOrderEvent stamps a fresh event id and time.
func NewOrderEvent(eventType string) OrderEvent {
	return OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                              { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []OrderEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderEvent(nil), r.events...)
}
