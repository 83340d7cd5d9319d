package command

import (
	"context"
	"fmt"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	ProductID uint
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	deps Deps
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(deps Deps) *DeleteProductHandler {
	return &DeleteProductHandler{deps: deps.withDefaults()}
}

// Handle executes the delete product command. A product still used as a
// component, or whose listings sit under a merged product, cannot be
// deleted. Deleting a bundle removes its component rows; deleting a merged
// product hands its listings back to the products they came from.
func (h *DeleteProductHandler) Handle(ctx context.Context, cmd DeleteProductCommand) error {
	const op = "delete product"

	if cmd.ProductID == 0 {
		return domain.NewRuleViolation(op, "Invalid product id.")
	}

	returned := 0
	err := h.deps.withLocks(ctx, []uint{cmd.ProductID}, func() error {
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
			if p.IsUsedAsComponent() {
				return domain.NewRuleViolation(op, fmt.Sprintf(
					"Product is used as a component in %d bundle(s). Remove it from all bundles first.",
					p.ComponentUsageCount))
			}

			owners, err := tx.FindMergedOwnersOf(ctx, p.ID)
			if err != nil {
				return err
			}
			if len(owners) > 0 {
				return domain.NewRuleViolation(op, "Product is part of a merged product. Unmerge its listings or delete the merged product first.")
			}

			if p.Category == domain.CategoryMerged {
				links, err := tx.ListPlatformProducts(ctx, p.ID)
				if err != nil {
					return err
				}
				for _, l := range links {
					if l.OriginProductID == p.ID {
						continue
					}
					if err := tx.MovePlatformLink(ctx, l.ID, l.OriginProductID); err != nil {
						return err
					}
					returned++
				}
			}

			return tx.DeleteProduct(ctx, p.ID)
		})
	})
	if err != nil {
		return translate(ctx, op, err)
	}

	logger.Info(ctx).
		Uint("product_id", cmd.ProductID).
		Int("links_returned", returned).
		Msg("Product deleted")
	return nil
}
