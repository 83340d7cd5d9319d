package command

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
)

// MergeProductsCommand represents the command to merge channel listings
type MergeProductsCommand struct {
	ProductIDs []uint
	Name       string
}

// MergeResult is the new merged product and its summed stock
type MergeResult struct {
	Product   domain.Product `json:"product"`
	Available int            `json:"available"`
}

// MergeProductsHandler handles merge command
type MergeProductsHandler struct {
	deps   Deps
	merger *merge.Coordinator
}

// NewMergeProductsHandler creates a new merge products handler
func NewMergeProductsHandler(deps Deps, merger *merge.Coordinator) *MergeProductsHandler {
	return &MergeProductsHandler{deps: deps.withDefaults(), merger: merger}
}

// Handle executes the merge products command
func (h *MergeProductsHandler) Handle(ctx context.Context, cmd MergeProductsCommand) (*MergeResult, error) {
	const op = "merge products"

	var result MergeResult
	err := h.deps.withLocks(ctx, cmd.ProductIDs, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			p, err := h.merger.MergeProducts(ctx, tx, cmd.ProductIDs, cmd.Name)
			if err != nil {
				return err
			}
			merged, err := tx.FindProductWithRelations(ctx, p.ID)
			if err != nil {
				return err
			}
			result = MergeResult{Product: *p}
			if merged != nil && merged.Stock != nil {
				result.Available = merged.Stock.Available
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	h.deps.publish(ctx, domain.EventProductsMerged, result.Product.ID, map[string]interface{}{
		"sources":   cmd.ProductIDs,
		"sku":       result.Product.SKU,
		"available": result.Available,
	})
	return &result, nil
}
