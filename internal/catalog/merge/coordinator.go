// Package merge combines channel listings of several products under one
// MERGED product whose stock follows the products behind those listings.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

const (
	ReasonBundledCandidate   = "cannot merge bundled products"
	ReasonComponentCandidate = "used as a component"

	skuPrefix      = "MERGED-"
	skuGenAttempts = 3
)

// Coordinator performs merges inside the caller's transaction
type Coordinator struct {
	newSKU func() string
}

// NewCoordinator creates a merge coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{newSKU: generateSKU}
}

func generateSKU() string {
	return skuPrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// MergeProducts creates a MERGED product, moves every channel listing of
// the given products onto it and records them as its members. Merged
// products given as candidates hand over their members too and have their
// own stock recomputed. The source products are otherwise left untouched.
func (c *Coordinator) MergeProducts(ctx context.Context, tx domain.CatalogTx, productIDs []uint, name string) (*domain.Product, error) {
	const op = "merge products"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewRuleViolation(op, "Merged product name is required.")
	}
	ids := dedupe(productIDs)
	if len(ids) == 0 {
		return nil, domain.NewRuleViolation(op, "Select at least one product to merge.")
	}

	// merged products whose stock the move will change
	previous, err := c.previousOwners(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if err := tx.LockProducts(ctx, append(append([]uint(nil), ids...), previous...)...); err != nil {
		return nil, err
	}
	candidates, err := tx.FindProductsWithRelations(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(candidates) != len(ids) {
		found := make(map[uint]bool, len(candidates))
		for _, p := range candidates {
			found[p.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, domain.NewProductNotFoundError(id)
			}
		}
	}

	var reasons []string
	for _, p := range candidates {
		switch {
		case p.Category == domain.CategoryBundled:
			reasons = append(reasons, fmt.Sprintf("%s: %s", p.DisplayName(), ReasonBundledCandidate))
		case p.Category == domain.CategorySimple && p.IsUsedAsComponent():
			reasons = append(reasons, fmt.Sprintf("%s: %s", p.DisplayName(), ReasonComponentCandidate))
		}
	}
	if len(reasons) > 0 {
		return nil, domain.NewRuleViolation(op, reasons...)
	}

	var members []uint
	for _, p := range candidates {
		if p.Category != domain.CategoryMerged {
			members = append(members, p.ID)
			continue
		}
		inherited, err := tx.ListMergeMembers(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		members = append(members, inherited...)
	}

	sku, err := c.uniqueSKU(ctx, tx)
	if err != nil {
		return nil, err
	}

	merged := &domain.Product{
		Name:     name,
		SKU:      sku,
		Category: domain.CategoryMerged,
		Status:   "ACTIVE",
	}
	if err := tx.CreateProduct(ctx, merged); err != nil {
		return nil, err
	}
	if err := tx.UpsertWarehouseStock(ctx, merged.ID, domain.DerivedStock(0)); err != nil {
		return nil, err
	}
	moved, err := tx.ReparentPlatformLinks(ctx, ids, merged.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.AddMergeMembers(ctx, merged.ID, dedupe(members)); err != nil {
		return nil, err
	}
	if _, err := c.recomputeMerged(ctx, tx, previous); err != nil {
		return nil, err
	}
	if _, err := c.RecomputeMergedInventory(ctx, tx, merged.ID); err != nil {
		return nil, err
	}

	logger.Info(ctx).
		Uint("merged_id", merged.ID).
		Str("sku", merged.SKU).
		Int("sources", len(ids)).
		Int("members", len(members)).
		Int64("links_moved", moved).
		Msg("Products merged")
	return merged, nil
}

// previousOwners returns the products whose derived stock currently
// depends on any of ids, plus the merged products among ids themselves
func (c *Coordinator) previousOwners(ctx context.Context, tx domain.CatalogTx, ids []uint) ([]uint, error) {
	var out []uint
	for _, id := range ids {
		owners, err := tx.FindMergedOwnersOf(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, owners...)
	}
	current, err := tx.FindProductsWithRelations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range current {
		if p.Category == domain.CategoryMerged {
			out = append(out, p.ID)
		}
	}
	return dedupe(out), nil
}

// recomputeMerged recomputes the given products that are still MERGED
func (c *Coordinator) recomputeMerged(ctx context.Context, tx domain.CatalogTx, ids []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := tx.FindProductsWithRelations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		// a merged product converted back to SIMPLE keeps its listings but
		// its stock is edited directly from then on
		if p.Category != domain.CategoryMerged {
			continue
		}
		n, err := c.RecomputeMergedInventory(ctx, tx, p.ID)
		if err != nil {
			return nil, err
		}
		out[p.ID] = n
	}
	return out, nil
}

func (c *Coordinator) uniqueSKU(ctx context.Context, tx domain.CatalogTx) (string, error) {
	for i := 0; i < skuGenAttempts; i++ {
		sku := c.newSKU()
		exists, err := tx.SKUExists(ctx, sku)
		if err != nil {
			return "", err
		}
		if !exists {
			return sku, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique merged sku after %d attempts", skuGenAttempts)
}

// RecomputeMergedInventory sets the merged product's stock to the sum of the
// available stock of every product still reachable through its listings,
// counting members that have no listing of their own as well.
func (c *Coordinator) RecomputeMergedInventory(ctx context.Context, tx domain.CatalogTx, mergedID uint) (int, error) {
	if err := tx.LockProducts(ctx, mergedID); err != nil {
		return 0, err
	}
	stocks, err := tx.ListMergedSourceStock(ctx, mergedID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, s := range stocks {
		if s.Available < 0 {
			logger.Warn(ctx).
				Uint("merged_id", mergedID).
				Uint("product_id", s.ProductID).
				Int("available", s.Available).
				Msg("Linked product has negative availability, treating it as zero")
			continue
		}
		total += s.Available
	}

	if err := tx.UpsertWarehouseStock(ctx, mergedID, domain.DerivedStock(total)); err != nil {
		return 0, err
	}
	return total, nil
}

// UnmergeChannel hands one listing back to the product it was created for
// and recomputes the merged product's stock.
func (c *Coordinator) UnmergeChannel(ctx context.Context, tx domain.CatalogTx, mergedID, linkID uint) (int, error) {
	const op = "unmerge channel"

	if err := tx.LockProducts(ctx, mergedID); err != nil {
		return 0, err
	}
	merged, err := tx.FindProductWithRelations(ctx, mergedID)
	if err != nil {
		return 0, err
	}
	if merged == nil {
		return 0, domain.NewProductNotFoundError(mergedID)
	}
	if merged.Category != domain.CategoryMerged {
		return 0, domain.NewRuleViolation(op, fmt.Sprintf("%s is not a merged product.", merged.DisplayName()))
	}

	link, err := tx.FindPlatformProduct(ctx, linkID)
	if err != nil {
		return 0, err
	}
	if link == nil || link.ProductID != mergedID {
		return 0, domain.NewRuleViolation(op, "Channel listing does not belong to this merged product.")
	}
	if link.OriginProductID == mergedID {
		return 0, domain.NewRuleViolation(op, "Channel listing was created for this product and has nowhere to return to.")
	}

	if err := tx.MovePlatformLink(ctx, linkID, link.OriginProductID); err != nil {
		return 0, err
	}
	return c.RecomputeMergedInventory(ctx, tx, mergedID)
}

// RecomputeMergedOwnersOf recomputes every MERGED product whose stock
// depends on productID.
func (c *Coordinator) RecomputeMergedOwnersOf(ctx context.Context, tx domain.CatalogTx, productID uint) (map[uint]int, error) {
	ownerIDs, err := tx.FindMergedOwnersOf(ctx, productID)
	if err != nil {
		return nil, err
	}
	return c.recomputeMerged(ctx, tx, ownerIDs)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
