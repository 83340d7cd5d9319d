package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	Name         string
	SKU          string
	Category     string
	ReorderPoint int
	SupplierID   *uint
	// InitialStock seeds the stock row of a SIMPLE product
	InitialStock int
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	deps Deps
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(deps Deps) *CreateProductHandler {
	return &CreateProductHandler{deps: deps.withDefaults()}
}

// Handle executes the create product command. Bundles and merged products
// have their own commands because their stock is derived.
func (h *CreateProductHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	const op = "create product"

	name := strings.TrimSpace(cmd.Name)
	sku := strings.TrimSpace(cmd.SKU)
	if name == "" {
		return nil, domain.NewRuleViolation(op, "Product name is required.")
	}
	if sku == "" {
		return nil, domain.NewRuleViolation(op, "SKU is required.")
	}
	if cmd.InitialStock < 0 || cmd.ReorderPoint < 0 {
		return nil, domain.NewRuleViolation(op, "Stock figures cannot be negative.")
	}

	category := domain.CategoryConfigurable
	if cmd.Category != "" {
		c, err := domain.ParseCategory(cmd.Category)
		if err != nil {
			return nil, domain.NewRuleViolation(op, fmt.Sprintf("Unknown product category %q.", cmd.Category))
		}
		category = c
	}
	switch category {
	case domain.CategoryBundled:
		return nil, domain.NewRuleViolation(op, "Use bundle creation to create BUNDLED products.")
	case domain.CategoryMerged:
		return nil, domain.NewRuleViolation(op, "Use product merge to create MERGED products.")
	}
	if category == domain.CategoryConfigurable && cmd.InitialStock > 0 {
		return nil, domain.NewRuleViolation(op, "CONFIGURABLE products do not hold stock.")
	}

	product := &domain.Product{
		Name:         name,
		SKU:          sku,
		Category:     category,
		Status:       "ACTIVE",
		ReorderPoint: cmd.ReorderPoint,
		SupplierID:   cmd.SupplierID,
	}
	err := h.deps.Store.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
		exists, err := tx.SKUExists(ctx, sku)
		if err != nil {
			return err
		}
		if exists {
			return domain.NewRuleViolation(op, "SKU already exists.")
		}
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		if category == domain.CategorySimple {
			n := cmd.InitialStock
			return tx.UpsertWarehouseStock(ctx, product.ID, domain.StockUpdate{Total: &n, Available: &n})
		}
		return nil
	})
	if err != nil {
		return nil, translate(ctx, op, err)
	}
	return product, nil
}
