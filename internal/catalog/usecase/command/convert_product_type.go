package command

import (
	"context"
	"fmt"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/internal/catalog/rules"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// ConvertProductTypeCommand represents the command to change a product's category
type ConvertProductTypeCommand struct {
	ProductID      uint
	TargetCategory string
}

// ConversionResult describes a committed category change
type ConversionResult struct {
	ProductID uint            `json:"product_id"`
	From      domain.Category `json:"from"`
	To        domain.Category `json:"to"`
	// Available is the recomputed stock when the new category derives it
	Available *int `json:"available,omitempty"`
}

// ConvertProductTypeHandler checks a category change against the conversion
// rules and applies it together with the stock side effects in one
// transaction.
type ConvertProductTypeHandler struct {
	deps    Deps
	bundles *bundle.Manager
	merger  *merge.Coordinator
}

// NewConvertProductTypeHandler creates a new convert product type handler
func NewConvertProductTypeHandler(deps Deps, bundles *bundle.Manager, merger *merge.Coordinator) *ConvertProductTypeHandler {
	return &ConvertProductTypeHandler{deps: deps.withDefaults(), bundles: bundles, merger: merger}
}

// Handle executes the convert product type command
func (h *ConvertProductTypeHandler) Handle(ctx context.Context, cmd ConvertProductTypeCommand) (*ConversionResult, error) {
	const op = "convert product type"

	if cmd.ProductID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid product id.")
	}
	target, err := domain.ParseCategory(cmd.TargetCategory)
	if err != nil {
		conversionsTotal.WithLabelValues("unknown", "unknown", OutcomeRejected).Inc()
		return nil, domain.NewRuleViolation(op, fmt.Sprintf("Unknown product category %q.", cmd.TargetCategory))
	}

	var result ConversionResult
	from := "unknown"
	err = h.deps.withLocks(ctx, []uint{cmd.ProductID}, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			if err := tx.LockProducts(ctx, cmd.ProductID); err != nil {
				return err
			}
			p, err := tx.FindProductWithRelations(ctx, cmd.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewProductNotFoundError(cmd.ProductID)
			}
			from = p.Category.String()

			decision := rules.Evaluate(p.Snapshot(), target)
			if !decision.Allowed {
				return domain.NewRuleViolation(op, decision.Reason)
			}

			if err := tx.UpdateProductCategory(ctx, p.ID, target, h.deps.Now()); err != nil {
				return err
			}

			result = ConversionResult{ProductID: p.ID, From: p.Category, To: target}
			switch target {
			case domain.CategorySimple:
				return tx.UpsertWarehouseStock(ctx, p.ID, domain.StockUpdate{})
			case domain.CategoryBundled:
				n, err := h.bundles.RecomputeAvailability(ctx, tx, p.ID)
				if err != nil {
					return err
				}
				result.Available = &n
			case domain.CategoryMerged:
				n, err := h.merger.RecomputeMergedInventory(ctx, tx, p.ID)
				if err != nil {
					return err
				}
				result.Available = &n
			}
			return nil
		})
	})
	if err != nil {
		outcome := OutcomeFailed
		if domain.IsRuleViolation(err) {
			outcome = OutcomeRejected
			logger.Info(ctx).
				Uint("product_id", cmd.ProductID).
				Str("from", from).
				Str("to", target.String()).
				Str("reason", err.Error()).
				Msg("Conversion rejected")
		}
		conversionsTotal.WithLabelValues(from, target.String(), outcome).Inc()
		return nil, translate(ctx, op, err)
	}

	conversionsTotal.WithLabelValues(from, target.String(), OutcomeConverted).Inc()
	logger.Info(ctx).
		Uint("product_id", result.ProductID).
		Str("from", result.From.String()).
		Str("to", result.To.String()).
		Msg("Product type converted")

	attrs := map[string]interface{}{"from": result.From, "to": result.To}
	if result.Available != nil {
		attrs["available"] = *result.Available
	}
	h.deps.publish(ctx, domain.EventProductConverted, result.ProductID, attrs)
	return &result, nil
}
