package kafka

import "time"

// CatalogEventMessage is the wire form of a catalog change
type CatalogEventMessage struct {
	EventID    string                 `json:"event_id"`
	EventType  string                 `json:"event_type"`
	ProductID  uint                   `json:"product_id"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// StockChangedEvent is published by stock-keeping services when the
// stock of a product changed outside this service
type StockChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID uint      `json:"product_id"`
	Available *int      `json:"available,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockChanged = "inventory.stock_changed"
)

// Kafka topics
const (
	TopicCatalogEvents = "catalog-events"
	TopicStockChanged  = "inventory-stock-changed"
)

// Header keys
const (
	headerEventType = "event_type"
	headerEventID   = "event_id"
)
