package query

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// GetProductQuery represents the query to get a product by ID
type GetProductQuery struct {
	ID uint
}

// ProductDetails is a product with its stock, components and channel listings
type ProductDetails struct {
	domain.ProductWithRelations
	Components []domain.ComponentStock  `json:"components,omitempty"`
	Listings   []domain.PlatformProduct `json:"listings,omitempty"`
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	store domain.CatalogStore
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(store domain.CatalogStore) *GetProductHandler {
	return &GetProductHandler{store: store}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(ctx context.Context, q GetProductQuery) (*ProductDetails, error) {
	const op = "get product"

	if q.ID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid product id.")
	}

	var out ProductDetails
	err := h.store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
		p, err := tx.FindProductWithRelations(ctx, q.ID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewProductNotFoundError(q.ID)
		}
		out = ProductDetails{ProductWithRelations: *p}

		if p.Category == domain.CategoryBundled {
			if out.Components, err = tx.ListComponentStock(ctx, p.ID); err != nil {
				return err
			}
		}
		out.Listings, err = tx.ListPlatformProducts(ctx, p.ID)
		return err
	})
	if err != nil {
		if domain.IsRuleViolation(err) {
			return nil, err
		}
		logger.Error(ctx).Err(err).Uint("product_id", q.ID).Msg("Failed to load product")
		return nil, domain.NewSystemFailure(op, err)
	}
	return &out, nil
}
