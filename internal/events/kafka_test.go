package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessage(_ context.Context, msg kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msg)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	event := NewOrderEvent(TypeOrderStatusChanged)
	event.OrderID = 12
	event.PreviousStatus = "pending"
	event.Status = "confirmed"

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeOrderStatusChanged, string(msg.Headers[0].Value))

	var decoded OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "confirmed", decoded.Status)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), NewOrderEvent(TypeOrderCreated))
	assert.ErrorContains(t, err, "broker down")
}

func TestNewOrderEvent_UniqueIDs(t *testing.T) {
	a := NewOrderEvent(TypeOrderCreated)
	b := NewOrderEvent(TypeOrderCreated)
	assert.NotEqual(t, a.EventID, b.EventID)
	assert.False(t, a.OccurredAt.IsZero())
}
