package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

func TestPublishCatalogEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var msg CatalogEventMessage
		if err := json.Unmarshal(val, &msg); err != nil {
			return err
		}
		if msg.EventType != string(domain.EventProductConverted) {
			return errors.New("unexpected event type " + msg.EventType)
		}
		if msg.ProductID != 42 || msg.EventID == "" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	pub := NewPublisherWithProducer(producer, TopicCatalogEvents)
	err := pub.PublishCatalogEvent(context.Background(), domain.CatalogEvent{
		Type:       domain.EventProductConverted,
		ProductID:  42,
		Attributes: map[string]interface{}{"from": "SIMPLE", "to": "BUNDLED"},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestPublishCatalogEventSendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewPublisherWithProducer(producer, TopicCatalogEvents)
	err := pub.PublishCatalogEvent(context.Background(), domain.CatalogEvent{
		Type:      domain.EventBundleCreated,
		ProductID: 1,
	})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}
