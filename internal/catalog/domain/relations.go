package domain

// ProductWithRelations is a product together with the relation counts the
// conversion rules look at.
type ProductWithRelations struct {
	Product
	Stock *WarehouseStock `json:"stock,omitempty"`

	// ComponentUsageCount is the number of bundles that list this product
	// as a component.
	ComponentUsageCount int64 `json:"component_usage_count"`
	// ComponentCount is the number of components this product has as a bundle.
	ComponentCount int64 `json:"component_count"`
	// ActivePlatformLinks is the number of active channel listings the
	// product currently owns.
	ActivePlatformLinks int64 `json:"active_platform_links"`
}

// ConversionSnapshot is the read-only view evaluated by the rule engine
type ConversionSnapshot struct {
	Category            Category
	ComponentUsageCount int64
	ComponentCount      int64
	ActivePlatformLinks int64
}

// Snapshot captures the fields relevant to a category change
func (p *ProductWithRelations) Snapshot() ConversionSnapshot {
	return ConversionSnapshot{
		Category:            p.Category,
		ComponentUsageCount: p.ComponentUsageCount,
		ComponentCount:      p.ComponentCount,
		ActivePlatformLinks: p.ActivePlatformLinks,
	}
}

// IsUsedAsComponent reports whether any bundle references the product
func (p *ProductWithRelations) IsUsedAsComponent() bool {
	return p.ComponentUsageCount > 0
}

// ComponentStock is a bundle component joined with the component's stock
type ComponentStock struct {
	ComponentID    uint   `json:"component_id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	QuantityNeeded int    `json:"quantity_needed"`
	Available      int    `json:"available"`
	HasStock       bool   `json:"has_stock"`
}

// ComponentInput is one requested component of a bundle
type ComponentInput struct {
	ProductID      uint `json:"product_id"`
	QuantityNeeded int  `json:"quantity_needed"`
}

// StockUpdate describes a partial write to a warehouse stock row. Nil fields
// keep the stored value, or zero when the row is inserted. An empty
// StockUpdate only makes sure the row exists.
type StockUpdate struct {
	Total     *int
	Available *int
	InOrder   *int
	Awaiting  *int
}

// IsEmpty reports whether the update carries no values
func (u StockUpdate) IsEmpty() bool {
	return u.Total == nil && u.Available == nil && u.InOrder == nil && u.Awaiting == nil
}

// DerivedStock sets available and total to the same computed value
func DerivedStock(n int) StockUpdate {
	return StockUpdate{Total: &n, Available: &n}
}

// Apply writes the non-nil fields onto s
func (u StockUpdate) Apply(s *WarehouseStock) {
	if u.Total != nil {
		s.Total = *u.Total
	}
	if u.Available != nil {
		s.Available = *u.Available
	}
	if u.InOrder != nil {
		s.InOrder = *u.InOrder
	}
	if u.Awaiting != nil {
		s.Awaiting = *u.Awaiting
	}
}
