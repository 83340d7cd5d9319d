// Package bundle keeps bundle products consistent with their components.
// Every method runs inside the caller's transaction.
package bundle

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// Validation is the outcome of checking candidate components
type Validation struct {
	Errors []string
}

// Valid reports whether no candidate was rejected
func (v Validation) Valid() bool {
	return len(v.Errors) == 0
}

// CreateInput describes a new bundle
type CreateInput struct {
	Name       string
	SKU        string
	Components []domain.ComponentInput
}

// Manager owns bundle creation and availability
type Manager struct{}

// NewManager creates a bundle manager
func NewManager() *Manager {
	return &Manager{}
}

// ValidateComponents checks that every candidate exists and is SIMPLE.
// Storage failures are returned as err; rejections are collected in the
// Validation, each naming the offending product.
func (m *Manager) ValidateComponents(ctx context.Context, tx domain.CatalogTx, ids []uint) (Validation, error) {
	var v Validation
	if len(ids) == 0 {
		return v, nil
	}

	found, err := tx.FindProductsWithRelations(ctx, ids)
	if err != nil {
		return v, fmt.Errorf("failed to load components: %w", err)
	}
	byID := make(map[uint]domain.ProductWithRelations, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			v.Errors = append(v.Errors, fmt.Sprintf("Product %d is listed more than once.", id))
			continue
		}
		seen[id] = true

		p, ok := byID[id]
		if !ok {
			v.Errors = append(v.Errors, fmt.Sprintf("Product %d not found.", id))
			continue
		}
		if p.Category != domain.CategorySimple {
			v.Errors = append(v.Errors, fmt.Sprintf(
				"%s is %s. Only SIMPLE products can be bundle components.",
				p.DisplayName(), p.Category))
		}
	}
	return v, nil
}

func checkQuantities(components []domain.ComponentInput) []string {
	var errs []string
	for _, c := range components {
		if c.QuantityNeeded < 0 {
			errs = append(errs, fmt.Sprintf("Quantity for product %d cannot be negative.", c.ProductID))
		}
	}
	return errs
}

func componentIDs(components []domain.ComponentInput) []uint {
	ids := make([]uint, len(components))
	for i, c := range components {
		ids[i] = c.ProductID
	}
	return ids
}

// CreateBundle creates a BUNDLED product with its component rows and
// derived stock. Nothing is written unless every component is valid.
func (m *Manager) CreateBundle(ctx context.Context, tx domain.CatalogTx, in CreateInput) (*domain.Product, error) {
	const op = "create bundle"

	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	if in.Name == "" {
		return nil, domain.NewRuleViolation(op, "Bundle name is required.")
	}
	if in.SKU == "" {
		return nil, domain.NewRuleViolation(op, "Bundle SKU is required.")
	}
	if errs := checkQuantities(in.Components); len(errs) > 0 {
		return nil, domain.NewRuleViolation(op, errs...)
	}

	ids := componentIDs(in.Components)
	if err := tx.LockProducts(ctx, ids...); err != nil {
		return nil, err
	}
	v, err := m.ValidateComponents(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if !v.Valid() {
		return nil, domain.NewRuleViolation(op, v.Errors...)
	}

	exists, err := tx.SKUExists(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewRuleViolation(op, fmt.Sprintf("SKU %s already exists.", in.SKU))
	}

	bundle := &domain.Product{
		Name:     in.Name,
		SKU:      in.SKU,
		Category: domain.CategoryBundled,
		Status:   "ACTIVE",
	}
	if err := tx.CreateProduct(ctx, bundle); err != nil {
		return nil, err
	}
	if err := tx.UpsertWarehouseStock(ctx, bundle.ID, domain.DerivedStock(0)); err != nil {
		return nil, err
	}
	if err := tx.CreateBundleComponents(ctx, bundle.ID, in.Components); err != nil {
		return nil, err
	}
	if _, err := m.RecomputeAvailability(ctx, tx, bundle.ID); err != nil {
		return nil, err
	}
	return bundle, nil
}

// loadBundle locks the bundle, together with any extra rows the caller
// needs, in a single pass and returns the bundle
func (m *Manager) loadBundle(ctx context.Context, tx domain.CatalogTx, op string, bundleID uint, alsoLock ...uint) (*domain.ProductWithRelations, error) {
	if err := tx.LockProducts(ctx, append([]uint{bundleID}, alsoLock...)...); err != nil {
		return nil, err
	}
	b, err := tx.FindProductWithRelations(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NewProductNotFoundError(bundleID)
	}
	if b.Category != domain.CategoryBundled {
		return nil, domain.NewRuleViolation(op, fmt.Sprintf("%s is not a bundle.", b.DisplayName()))
	}
	return b, nil
}

// AddComponents attaches more components to an existing bundle
func (m *Manager) AddComponents(ctx context.Context, tx domain.CatalogTx, bundleID uint, components []domain.ComponentInput) (int, error) {
	const op = "add bundle components"

	if len(components) == 0 {
		return 0, domain.NewRuleViolation(op, "Provide at least one component to add.")
	}
	ids := componentIDs(components)
	if _, err := m.loadBundle(ctx, tx, op, bundleID, ids...); err != nil {
		return 0, err
	}
	if errs := checkQuantities(components); len(errs) > 0 {
		return 0, domain.NewRuleViolation(op, errs...)
	}

	v, err := m.ValidateComponents(ctx, tx, ids)
	if err != nil {
		return 0, err
	}

	existing, err := tx.ListComponentStock(ctx, bundleID)
	if err != nil {
		return 0, err
	}
	attached := make(map[uint]bool, len(existing))
	for _, c := range existing {
		attached[c.ComponentID] = true
	}
	for _, id := range ids {
		if attached[id] {
			v.Errors = append(v.Errors, fmt.Sprintf("Product %d is already a component of this bundle.", id))
		}
	}
	if !v.Valid() {
		return 0, domain.NewRuleViolation(op, v.Errors...)
	}

	if err := tx.CreateBundleComponents(ctx, bundleID, components); err != nil {
		return 0, err
	}
	return m.RecomputeAvailability(ctx, tx, bundleID)
}

// RemoveComponent detaches one component from a bundle
func (m *Manager) RemoveComponent(ctx context.Context, tx domain.CatalogTx, bundleID, componentID uint) (int, error) {
	const op = "remove bundle component"

	if _, err := m.loadBundle(ctx, tx, op, bundleID); err != nil {
		return 0, err
	}
	removed, err := tx.DeleteBundleComponent(ctx, bundleID, componentID)
	if err != nil {
		return 0, err
	}
	if !removed {
		return 0, domain.NewRuleViolation(op, fmt.Sprintf("Product %d is not a component of this bundle.", componentID))
	}
	return m.RecomputeAvailability(ctx, tx, bundleID)
}

// RecomputeAvailability derives the bundle's stock from its components and
// writes it as both available and total.
func (m *Manager) RecomputeAvailability(ctx context.Context, tx domain.CatalogTx, bundleID uint) (int, error) {
	if err := tx.LockProducts(ctx, bundleID); err != nil {
		return 0, err
	}
	components, err := tx.ListComponentStock(ctx, bundleID)
	if err != nil {
		return 0, err
	}

	for _, c := range components {
		if c.Available < 0 {
			logger.Warn(ctx).
				Uint("bundle_id", bundleID).
				Uint("component_id", c.ComponentID).
				Int("available", c.Available).
				Msg("Component has negative availability, treating it as zero")
		}
	}

	n := DeriveAvailability(components)
	if err := tx.UpsertWarehouseStock(ctx, bundleID, domain.DerivedStock(n)); err != nil {
		return 0, err
	}

	logger.Debug(ctx).
		Uint("bundle_id", bundleID).
		Int("components", len(components)).
		Int("available", n).
		Msg("Bundle availability recomputed")
	return n, nil
}

// RecomputeBundlesUsing recomputes every bundle that lists componentID.
// The result maps bundle id to its new availability.
func (m *Manager) RecomputeBundlesUsing(ctx context.Context, tx domain.CatalogTx, componentID uint) (map[uint]int, error) {
	bundles, err := tx.FindBundlesUsingComponent(ctx, componentID)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(bundles))
	for _, id := range bundles {
		n, err := m.RecomputeAvailability(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, nil
}

// DeriveAvailability returns how many complete bundles the components can
// make: the minimum over components with a positive quantity of
// floor(available / quantity). Components with quantity zero do not gate
// the result; with no gating component the bundle has nothing to sell.
// Negative availability counts as zero.
func DeriveAvailability(components []domain.ComponentStock) int {
	result := -1
	for _, c := range components {
		if c.QuantityNeeded <= 0 {
			continue
		}
		available := c.Available
		if available < 0 {
			available = 0
		}
		n := available / c.QuantityNeeded
		if result < 0 || n < result {
			result = n
		}
	}
	if result < 0 {
		return 0
	}
	return result
}
