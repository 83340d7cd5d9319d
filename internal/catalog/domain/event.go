package domain

import (
	"context"
	"time"
)

// EventType names a catalog event
type EventType string

const (
	EventProductConverted       EventType = "product.type_converted"
	EventBundleCreated          EventType = "bundle.created"
	EventBundleChanged          EventType = "bundle.components_changed"
	EventProductsMerged         EventType = "product.merged"
	EventChannelUnmerged        EventType = "product.channel_unmerged"
	EventAvailabilityRecomputed EventType = "product.availability_recomputed"
)

// CatalogEvent is emitted after a catalog change has been committed
type CatalogEvent struct {
	Type       EventType              `json:"event_type"`
	ProductID  uint                   `json:"product_id"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventPublisher delivers catalog events to downstream systems
type EventPublisher interface {
	PublishCatalogEvent(ctx context.Context, event CatalogEvent) error
}

// NopPublisher discards every event
type NopPublisher struct{}

// PublishCatalogEvent implements EventPublisher
func (NopPublisher) PublishCatalogEvent(context.Context, CatalogEvent) error {
	return nil
}
