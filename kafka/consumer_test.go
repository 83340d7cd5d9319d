package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockMessage(t *testing.T, eventType string, event StockChangedEvent) *sarama.ConsumerMessage {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	msg := &sarama.ConsumerMessage{Topic: TopicStockChanged, Value: payload}
	if eventType != "" {
		msg.Headers = append(msg.Headers,
			&sarama.RecordHeader{Key: []byte(headerEventType), Value: []byte(eventType)},
			&sarama.RecordHeader{Key: []byte(headerEventID), Value: []byte("evt_1")},
		)
	}
	return msg
}

func TestHandleMessageDispatchesByEventType(t *testing.T) {
	c := newConsumer(nil, "catalog", []string{TopicStockChanged})

	var got StockChangedEvent
	c.RegisterHandler(EventTypeStockChanged, func(ctx context.Context, event StockChangedEvent) error {
		got = event
		return nil
	})

	err := c.handleMessage(context.Background(), stockMessage(t, EventTypeStockChanged, StockChangedEvent{ProductID: 9}))
	require.NoError(t, err)
	assert.Equal(t, uint(9), got.ProductID)
	assert.Equal(t, "evt_1", got.EventID, "event id falls back to the header")
}

func TestHandleMessageRejectsUnroutable(t *testing.T) {
	c := newConsumer(nil, "catalog", []string{TopicStockChanged})

	err := c.handleMessage(context.Background(), stockMessage(t, "", StockChangedEvent{ProductID: 1}))
	assert.ErrorIs(t, err, errMissingEventType)

	err = c.handleMessage(context.Background(), stockMessage(t, "inventory.unknown", StockChangedEvent{ProductID: 1}))
	assert.ErrorIs(t, err, errNoHandler)
}

func TestHandleMessagePropagatesHandlerError(t *testing.T) {
	c := newConsumer(nil, "catalog", []string{TopicStockChanged})
	boom := errors.New("boom")
	c.RegisterHandler(EventTypeStockChanged, func(context.Context, StockChangedEvent) error { return boom })

	err := c.handleMessage(context.Background(), stockMessage(t, EventTypeStockChanged, StockChangedEvent{ProductID: 1}))
	assert.ErrorIs(t, err, boom)
}

func TestHandleMessageBadPayload(t *testing.T) {
	c := newConsumer(nil, "catalog", []string{TopicStockChanged})
	c.RegisterHandler(EventTypeStockChanged, func(context.Context, StockChangedEvent) error { return nil })

	msg := stockMessage(t, EventTypeStockChanged, StockChangedEvent{})
	msg.Value = []byte("{not json")
	assert.Error(t, c.handleMessage(context.Background(), msg))
}
