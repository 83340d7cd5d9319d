// Package events feeds stock changes coming from other services into the
// catalog's derived stock.
package events

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
	"github.com/tair/omnichannel-catalog/kafka"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// Recomputer refreshes stock that depends on a product
type Recomputer interface {
	Handle(ctx context.Context, cmd command.RecomputeCommand) (*command.RecomputeResult, error)
}

// StockListener recomputes bundles and merged products when the stock of a
// product they depend on changes
type StockListener struct {
	recompute Recomputer
}

// NewStockListener creates a new stock listener
func NewStockListener(recompute Recomputer) *StockListener {
	return &StockListener{recompute: recompute}
}

// Register attaches the listener to a consumer
func (l *StockListener) Register(c *kafka.Consumer) {
	c.RegisterHandler(kafka.EventTypeStockChanged, l.HandleStockChanged)
}

// HandleStockChanged processes one stock change. Unknown products and
// products without derived dependents are skipped.
func (l *StockListener) HandleStockChanged(ctx context.Context, event kafka.StockChangedEvent) error {
	res, err := l.recompute.Handle(ctx, command.RecomputeCommand{ProductID: event.ProductID})
	if err != nil {
		if domain.IsRuleViolation(err) {
			logger.Info(ctx).
				Uint("product_id", event.ProductID).
				Str("reason", err.Error()).
				Msg("Stock change ignored")
			return nil
		}
		return err
	}

	logger.Info(ctx).
		Str("event_id", event.EventID).
		Uint("product_id", event.ProductID).
		Int("recomputed", len(res.Recomputed)).
		Msg("Derived stock refreshed after stock change")
	return nil
}
