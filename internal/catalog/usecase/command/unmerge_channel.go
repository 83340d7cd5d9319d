package command

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
)

// UnmergeChannelCommand represents the command to return one listing from a
// merged product to its origin product
type UnmergeChannelCommand struct {
	MergedID          uint
	PlatformProductID uint
}

// UnmergeChannelHandler handles unmerge command
type UnmergeChannelHandler struct {
	deps   Deps
	merger *merge.Coordinator
}

// NewUnmergeChannelHandler creates a new unmerge channel handler
func NewUnmergeChannelHandler(deps Deps, merger *merge.Coordinator) *UnmergeChannelHandler {
	return &UnmergeChannelHandler{deps: deps.withDefaults(), merger: merger}
}

// Handle executes the unmerge channel command
func (h *UnmergeChannelHandler) Handle(ctx context.Context, cmd UnmergeChannelCommand) (*AvailabilityResult, error) {
	const op = "unmerge channel"

	if cmd.MergedID == 0 || cmd.PlatformProductID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid merged product or listing id.")
	}

	var n int
	err := h.deps.withLocks(ctx, []uint{cmd.MergedID}, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			var err error
			n, err = h.merger.UnmergeChannel(ctx, tx, cmd.MergedID, cmd.PlatformProductID)
			return err
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	h.deps.publish(ctx, domain.EventChannelUnmerged, cmd.MergedID, map[string]interface{}{
		"platform_product_id": cmd.PlatformProductID,
		"available":           n,
	})
	return &AvailabilityResult{ProductID: cmd.MergedID, Available: n}, nil
}
