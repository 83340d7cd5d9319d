package command

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

// AddBundleComponentsCommand represents the command to attach components to a bundle
type AddBundleComponentsCommand struct {
	BundleID   uint
	Components []domain.ComponentInput
}

// RemoveBundleComponentCommand represents the command to detach a component
type RemoveBundleComponentCommand struct {
	BundleID    uint
	ComponentID uint
}

// AvailabilityResult is the derived stock of a product after a change
type AvailabilityResult struct {
	ProductID uint `json:"product_id"`
	Available int  `json:"available"`
}

// AddBundleComponentsHandler handles adding components to a bundle
type AddBundleComponentsHandler struct {
	deps    Deps
	bundles *bundle.Manager
}

// NewAddBundleComponentsHandler creates a new add bundle components handler
func NewAddBundleComponentsHandler(deps Deps, bundles *bundle.Manager) *AddBundleComponentsHandler {
	return &AddBundleComponentsHandler{deps: deps.withDefaults(), bundles: bundles}
}

// Handle executes the add bundle components command
func (h *AddBundleComponentsHandler) Handle(ctx context.Context, cmd AddBundleComponentsCommand) (*AvailabilityResult, error) {
	const op = "add bundle components"

	if cmd.BundleID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid bundle id.")
	}

	ids := []uint{cmd.BundleID}
	for _, c := range cmd.Components {
		ids = append(ids, c.ProductID)
	}

	var n int
	err := h.deps.withLocks(ctx, ids, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			var err error
			n, err = h.bundles.AddComponents(ctx, tx, cmd.BundleID, cmd.Components)
			return err
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	h.deps.publish(ctx, domain.EventBundleChanged, cmd.BundleID, map[string]interface{}{
		"added":     len(cmd.Components),
		"available": n,
	})
	return &AvailabilityResult{ProductID: cmd.BundleID, Available: n}, nil
}

// RemoveBundleComponentHandler handles removing a component from a bundle
type RemoveBundleComponentHandler struct {
	deps    Deps
	bundles *bundle.Manager
}

// NewRemoveBundleComponentHandler creates a new remove bundle component handler
func NewRemoveBundleComponentHandler(deps Deps, bundles *bundle.Manager) *RemoveBundleComponentHandler {
	return &RemoveBundleComponentHandler{deps: deps.withDefaults(), bundles: bundles}
}

// Handle executes the remove bundle component command
func (h *RemoveBundleComponentHandler) Handle(ctx context.Context, cmd RemoveBundleComponentCommand) (*AvailabilityResult, error) {
	const op = "remove bundle component"

	if cmd.BundleID == 0 || cmd.ComponentID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid bundle or component id.")
	}

	var n int
	err := h.deps.withLocks(ctx, []uint{cmd.BundleID, cmd.ComponentID}, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			var err error
			n, err = h.bundles.RemoveComponent(ctx, tx, cmd.BundleID, cmd.ComponentID)
			return err
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	h.deps.publish(ctx, domain.EventBundleChanged, cmd.BundleID, map[string]interface{}{
		"removed":   cmd.ComponentID,
		"available": n,
	})
	return &AvailabilityResult{ProductID: cmd.BundleID, Available: n}, nil
}
