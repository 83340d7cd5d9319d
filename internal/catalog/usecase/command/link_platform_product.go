package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

// LinkPlatformProductCommand represents the command to list a product on a channel
type LinkPlatformProductCommand struct {
	ProductID   uint
	Platform    string
	PlatformSKU string
	Inactive    bool
}

// LinkPlatformProductHandler handles channel listing creation
type LinkPlatformProductHandler struct {
	deps Deps
}

// NewLinkPlatformProductHandler creates a new link platform product handler
func NewLinkPlatformProductHandler(deps Deps) *LinkPlatformProductHandler {
	return &LinkPlatformProductHandler{deps: deps.withDefaults()}
}

// Handle executes the link platform product command
func (h *LinkPlatformProductHandler) Handle(ctx context.Context, cmd LinkPlatformProductCommand) (*domain.PlatformProduct, error) {
	const op = "link platform product"

	platform := strings.TrimSpace(cmd.Platform)
	sku := strings.TrimSpace(cmd.PlatformSKU)
	if cmd.ProductID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid product id.")
	}
	if platform == "" || sku == "" {
		return nil, domain.NewRuleViolation(op, "Platform and platform SKU are required.")
	}

	link := &domain.PlatformProduct{
		ProductID:       cmd.ProductID,
		OriginProductID: cmd.ProductID,
		Platform:        platform,
		PlatformSKU:     sku,
		IsActive:        !cmd.Inactive,
	}
	err := h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
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
		exists, err := tx.PlatformSKUExists(ctx, sku)
		if err != nil {
			return err
		}
		if exists {
			return domain.NewRuleViolation(op, fmt.Sprintf("Platform SKU %s is already linked.", sku))
		}
		return tx.CreatePlatformProduct(ctx, link)
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return link, nil
}
