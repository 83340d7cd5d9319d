package command

import (
	"context"
	"fmt"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
)

// UpdateStockCommand represents the command to edit a SIMPLE product's stock.
// Nil fields are left unchanged.
type UpdateStockCommand struct {
	ProductID uint
	Total     *int
	Available *int
	InOrder   *int
	Awaiting  *int
}

// UpdateStockResult is the stored stock row plus the derived stock it moved
type UpdateStockResult struct {
	Stock      domain.WarehouseStock `json:"stock"`
	Recomputed map[uint]int          `json:"recomputed"`
}

// UpdateStockHandler handles stock update command
type UpdateStockHandler struct {
	deps    Deps
	bundles *bundle.Manager
	merger  *merge.Coordinator
}

// NewUpdateStockHandler creates a new update stock handler
func NewUpdateStockHandler(deps Deps, bundles *bundle.Manager, merger *merge.Coordinator) *UpdateStockHandler {
	return &UpdateStockHandler{deps: deps.withDefaults(), bundles: bundles, merger: merger}
}

// Handle executes the update stock command and refreshes every bundle and
// merged product depending on the product in the same transaction
func (h *UpdateStockHandler) Handle(ctx context.Context, cmd UpdateStockCommand) (*UpdateStockResult, error) {
	const op = "update stock"

	if cmd.ProductID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid product id.")
	}
	update := domain.StockUpdate{
		Total:     cmd.Total,
		Available: cmd.Available,
		InOrder:   cmd.InOrder,
		Awaiting:  cmd.Awaiting,
	}
	if update.IsEmpty() {
		return nil, domain.NewRuleViolation(op, "Provide at least one stock figure.")
	}
	for _, v := range []*int{cmd.Total, cmd.Available, cmd.InOrder, cmd.Awaiting} {
		if v != nil && *v < 0 {
			return nil, domain.NewRuleViolation(op, "Stock cannot be negative.")
		}
	}

	var result UpdateStockResult
	err := h.deps.withLocks(ctx, []uint{cmd.ProductID}, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			result = UpdateStockResult{Recomputed: map[uint]int{}}

			if err := lockWithDependents(ctx, tx, cmd.ProductID); err != nil {
				return err
			}
			p, err := tx.FindProductWithRelations(ctx, cmd.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewProductNotFoundError(cmd.ProductID)
			}
			switch p.Category {
			case domain.CategorySimple:
			case domain.CategoryBundled, domain.CategoryMerged:
				return domain.NewRuleViolation(op, fmt.Sprintf(
					"Stock of %s products is derived and cannot be edited directly.", p.Category))
			default:
				return domain.NewRuleViolation(op, fmt.Sprintf("%s products do not hold stock.", p.Category))
			}

			if err := tx.UpsertWarehouseStock(ctx, p.ID, update); err != nil {
				return err
			}
			if err := recomputeDependents(ctx, tx, h.bundles, h.merger, p.ID, result.Recomputed); err != nil {
				return err
			}

			stored, err := tx.FindProductWithRelations(ctx, p.ID)
			if err != nil {
				return err
			}
			if stored != nil && stored.Stock != nil {
				result.Stock = *stored.Stock
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	publishRecomputed(ctx, h.deps, result.Recomputed)
	return &result, nil
}
