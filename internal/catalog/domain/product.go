package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the structural type of a product. It decides where the
// product's stock comes from.
type Category string

const (
	CategoryConfigurable Category = "CONFIGURABLE"
	CategorySimple       Category = "SIMPLE"
	CategoryBundled      Category = "BUNDLED"
	CategoryMerged       Category = "MERGED"
)

var allCategories = []Category{
	CategoryConfigurable,
	CategorySimple,
	CategoryBundled,
	CategoryMerged,
}

// AllCategories returns every category in declaration order
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory converts user input into a Category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown product category %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// HasDerivedStock reports whether stock for this category is computed
// rather than edited directly.
func (c Category) HasDerivedStock() bool {
	return c == CategoryBundled || c == CategoryMerged
}

// Product represents a catalog item
type Product struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	SKU          string    `json:"sku" gorm:"uniqueIndex;not null"`
	Category     Category  `json:"category" gorm:"type:varchar(20);not null;default:CONFIGURABLE;index"`
	Status       string    `json:"status" gorm:"type:varchar(20);not null;default:ACTIVE"`
	ReorderPoint int       `json:"reorder_point" gorm:"not null;default:0"`
	SupplierID   *uint     `json:"supplier_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// DisplayName is used in validation messages so users can find the item
func (p *Product) DisplayName() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}

// WarehouseStock holds the stock figures of one product
type WarehouseStock struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"uniqueIndex;not null"`
	Product   *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Total     int       `json:"total" gorm:"not null;default:0"`
	Available int       `json:"available" gorm:"not null;default:0"`
	InOrder   int       `json:"in_order" gorm:"not null;default:0"`
	Awaiting  int       `json:"awaiting" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (WarehouseStock) TableName() string {
	return "warehouse_stocks"
}

// BundleComponent links a bundle to one of the products it is built from
type BundleComponent struct {
	ID             uint     `json:"id" gorm:"primaryKey"`
	BundleID       uint     `json:"bundle_id" gorm:"not null;uniqueIndex:idx_bundle_component"`
	Bundle         *Product `json:"-" gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
	ComponentID    uint     `json:"component_id" gorm:"not null;uniqueIndex:idx_bundle_component;index"`
	Component      *Product `json:"-" gorm:"foreignKey:ComponentID;constraint:OnDelete:RESTRICT"`
	QuantityNeeded int      `json:"quantity_needed" gorm:"not null;check:quantity_needed >= 0"`
}

// TableName specifies the table name
func (BundleComponent) TableName() string {
	return "bundle_components"
}

// PlatformProduct is a listing of a product on an external sales channel
type PlatformProduct struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ProductID       uint      `json:"product_id" gorm:"not null;index"`
	Product         *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	OriginProductID uint      `json:"origin_product_id" gorm:"not null;index"`
	Platform        string    `json:"platform" gorm:"type:varchar(50);not null"`
	PlatformSKU     string    `json:"platform_sku" gorm:"uniqueIndex;not null"`
	IsActive        bool      `json:"is_active" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (PlatformProduct) TableName() string {
	return "platform_products"
}

// MergeMember records that a product was folded into a merged product. A
// product belongs to at most one merged product at a time.
type MergeMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MergedID  uint      `json:"merged_id" gorm:"not null;index"`
	Merged    *Product  `json:"-" gorm:"foreignKey:MergedID;constraint:OnDelete:CASCADE"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex"`
	Product   *Product  `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (MergeMember) TableName() string {
	return "merge_members"
}

// Models lists the entities that must be migrated
func Models() []interface{} {
	return []interface{}{
		&Product{},
		&WarehouseStock{},
		&BundleComponent{},
		&PlatformProduct{},
		&MergeMember{},
	}
}
