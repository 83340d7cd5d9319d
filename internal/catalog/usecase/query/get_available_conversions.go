package query

import (
	"context"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/rules"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// GetAvailableConversionsQuery represents the query for a product's legal target categories
type GetAvailableConversionsQuery struct {
	ProductID uint
}

// AvailableConversions lists the categories a product may move to
type AvailableConversions struct {
	ProductID   uint              `json:"product_id"`
	Category    domain.Category   `json:"category"`
	Conversions []domain.Category `json:"conversions"`
}

// GetAvailableConversionsHandler handles available conversions query
type GetAvailableConversionsHandler struct {
	store domain.CatalogStore
}

// NewGetAvailableConversionsHandler creates a new available conversions handler
func NewGetAvailableConversionsHandler(store domain.CatalogStore) *GetAvailableConversionsHandler {
	return &GetAvailableConversionsHandler{store: store}
}

// Handle executes the available conversions query
func (h *GetAvailableConversionsHandler) Handle(ctx context.Context, q GetAvailableConversionsQuery) (*AvailableConversions, error) {
	const op = "list available conversions"

	if q.ProductID == 0 {
		return nil, domain.NewRuleViolation(op, "Invalid product id.")
	}

	var out AvailableConversions
	err := h.store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
		p, err := tx.FindProductWithRelations(ctx, q.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NewProductNotFoundError(q.ProductID)
		}
		out = AvailableConversions{
			ProductID:   p.ID,
			Category:    p.Category,
			Conversions: rules.AvailableConversions(p.Snapshot()),
		}
		return nil
	})
	if err != nil {
		if domain.IsRuleViolation(err) {
			return nil, err
		}
		logger.Error(ctx).Err(err).Uint("product_id", q.ProductID).Msg("Failed to list available conversions")
		return nil, domain.NewSystemFailure(op, err)
	}
	return &out, nil
}
