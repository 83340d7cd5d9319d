package command

import (
	"context"
	"fmt"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// RecomputeCommand asks for the stock that depends on one product to be
// derived again
type RecomputeCommand struct {
	ProductID uint
}

// RecomputeResult maps every product whose derived stock was rewritten to
// its new availability
type RecomputeResult struct {
	Recomputed map[uint]int `json:"recomputed"`
}

// RecomputeHandler refreshes derived stock. For a bundle or merged product
// it recomputes that product; for a SIMPLE product it recomputes the
// bundles and merged products that depend on it.
type RecomputeHandler struct {
	deps    Deps
	bundles *bundle.Manager
	merger  *merge.Coordinator
}

// NewRecomputeHandler creates a new recompute handler
func NewRecomputeHandler(deps Deps, bundles *bundle.Manager, merger *merge.Coordinator) *RecomputeHandler {
	return &RecomputeHandler{deps: deps.withDefaults(), bundles: bundles, merger: merger}
}

// Handle executes the recompute command
func (h *RecomputeHandler) Handle(ctx context.Context, cmd RecomputeCommand) (*RecomputeResult, error) {
	const op = "recompute availability"

	if cmd.ProductID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid product id.")
	}

	result := RecomputeResult{Recomputed: map[uint]int{}}
	err := h.deps.withLocks(ctx, []uint{cmd.ProductID}, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			result.Recomputed = map[uint]int{}

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
			case domain.CategoryBundled:
				n, err := h.bundles.RecomputeAvailability(ctx, tx, p.ID)
				if err != nil {
					return err
				}
				result.Recomputed[p.ID] = n
			case domain.CategoryMerged:
				n, err := h.merger.RecomputeMergedInventory(ctx, tx, p.ID)
				if err != nil {
					return err
				}
				result.Recomputed[p.ID] = n
			case domain.CategorySimple:
				return recomputeDependents(ctx, tx, h.bundles, h.merger, p.ID, result.Recomputed)
			default:
				return domain.NewRuleViolation(op, fmt.Sprintf("%s has no derived stock.", p.DisplayName()))
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	logger.Debug(ctx).
		Uint("product_id", cmd.ProductID).
		Int("recomputed", len(result.Recomputed)).
		Msg("Availability recomputed")
	publishRecomputed(ctx, h.deps, result.Recomputed)
	return &result, nil
}

// lockWithDependents row-locks a product together with every bundle and
// merged product fed by it, in one ascending pass. Later recomputes lock
// the same rows again, which is a no-op inside the transaction.
func lockWithDependents(ctx context.Context, tx domain.CatalogTx, productID uint) error {
	bundles, err := tx.FindBundlesUsingComponent(ctx, productID)
	if err != nil {
		return err
	}
	owners, err := tx.FindMergedOwnersOf(ctx, productID)
	if err != nil {
		return err
	}
	ids := make([]uint, 0, 1+len(bundles)+len(owners))
	ids = append(ids, productID)
	ids = append(ids, bundles...)
	ids = append(ids, owners...)
	return tx.LockProducts(ctx, ids...)
}

// recomputeDependents rewrites the stock of every bundle and merged product
// fed by the given SIMPLE product
func recomputeDependents(ctx context.Context, tx domain.CatalogTx, bundles *bundle.Manager, merger *merge.Coordinator, productID uint, into map[uint]int) error {
	byBundle, err := bundles.RecomputeBundlesUsing(ctx, tx, productID)
	if err != nil {
		return err
	}
	for id, n := range byBundle {
		into[id] = n
	}
	byMerged, err := merger.RecomputeMergedOwnersOf(ctx, tx, productID)
	if err != nil {
		return err
	}
	for id, n := range byMerged {
		into[id] = n
	}
	return nil
}
