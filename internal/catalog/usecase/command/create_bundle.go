package command

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// CreateBundleCommand represents the command to create a bundle product
type CreateBundleCommand struct {
	Name       string
	SKU        string
	Components []domain.ComponentInput
}

// BundleResult is a bundle with its derived availability
type BundleResult struct {
	Product    domain.Product          `json:"product"`
	Available  int                     `json:"available"`
	Components []domain.ComponentStock `json:"components,omitempty"`
}

// CreateBundleHandler handles bundle creation command
type CreateBundleHandler struct {
	deps    Deps
	bundles *bundle.Manager
}

// NewCreateBundleHandler creates a new create bundle handler
func NewCreateBundleHandler(deps Deps, bundles *bundle.Manager) *CreateBundleHandler {
	return &CreateBundleHandler{deps: deps.withDefaults(), bundles: bundles}
}

// Handle executes the create bundle command
func (h *CreateBundleHandler) Handle(ctx context.Context, cmd CreateBundleCommand) (*BundleResult, error) {
	const op = "create bundle"

	var result BundleResult
	ids := make([]uint, 0, len(cmd.Components))
	for _, c := range cmd.Components {
		ids = append(ids, c.ProductID)
	}

	err := h.deps.withLocks(ctx, ids, func() error {
		return h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
			p, err := h.bundles.CreateBundle(ctx, tx, bundle.CreateInput{
				Name:       cmd.Name,
				SKU:        cmd.SKU,
				Components: cmd.Components,
			})
			if err != nil {
				return err
			}
			components, err := tx.ListComponentStock(ctx, p.ID)
			if err != nil {
				return err
			}
			result = BundleResult{
				Product:    *p,
				Available:  bundle.DeriveAvailability(components),
				Components: components,
			}
			return nil
		})
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}

	logger.Info(ctx).
		Uint("bundle_id", result.Product.ID).
		Str("sku", result.Product.SKU).
		Int("components", len(result.Components)).
		Int("available", result.Available).
		Msg("Bundle created")
	h.deps.publish(ctx, domain.EventBundleCreated, result.Product.ID, map[string]interface{}{
		"sku":       result.Product.SKU,
		"available": result.Available,
	})
	return &result, nil
}
