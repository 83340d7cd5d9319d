package domain

import (
	"context"
	"time"
)

// CatalogTx is the set of catalog operations available inside a
// transaction. Reads see the transaction's own writes.
type CatalogTx interface {
	// LockProducts takes row locks on the given products in ascending id
	// order. Unknown ids are ignored.
	LockProducts(ctx context.Context, ids ...uint) error
	// FindProductWithRelations returns nil, nil when the product does not exist.
	FindProductWithRelations(ctx context.Context, id uint) (*ProductWithRelations, error)
	// FindProductsWithRelations reads several products in one query. Missing
	// ids are absent from the result.
	FindProductsWithRelations(ctx context.Context, ids []uint) ([]ProductWithRelations, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProductCategory(ctx context.Context, id uint, category Category, at time.Time) error
	DeleteProduct(ctx context.Context, id uint) error

	UpsertWarehouseStock(ctx context.Context, productID uint, update StockUpdate) error

	CreateBundleComponents(ctx context.Context, bundleID uint, components []ComponentInput) error
	DeleteBundleComponent(ctx context.Context, bundleID, componentID uint) (bool, error)
	// ListComponentStock returns the bundle's components with their stock in one read.
	ListComponentStock(ctx context.Context, bundleID uint) ([]ComponentStock, error)
	FindBundlesUsingComponent(ctx context.Context, componentID uint) ([]uint, error)

	CreatePlatformProduct(ctx context.Context, link *PlatformProduct) error
	FindPlatformProduct(ctx context.Context, id uint) (*PlatformProduct, error)
	PlatformSKUExists(ctx context.Context, platformSKU string) (bool, error)
	// ListPlatformProducts returns the listings currently owned by ownerID.
	ListPlatformProducts(ctx context.Context, ownerID uint) ([]PlatformProduct, error)
	// ReparentPlatformLinks moves every link owned by productIDs to newOwner.
	ReparentPlatformLinks(ctx context.Context, productIDs []uint, newOwner uint) (int64, error)
	MovePlatformLink(ctx context.Context, linkID, newOwner uint) error
	// AddMergeMembers records productIDs as members of mergedID, moving
	// any of them that belonged to another merged product.
	AddMergeMembers(ctx context.Context, mergedID uint, productIDs []uint) error
	ListMergeMembers(ctx context.Context, mergedID uint) ([]uint, error)
	// ListMergedSourceStock returns the stock rows of the products whose
	// availability feeds mergedID: the distinct origins of the links it owns
	// (excluding mergedID itself) plus its non-merged members that have no
	// listing of their own anywhere.
	ListMergedSourceStock(ctx context.Context, mergedID uint) ([]WarehouseStock, error)
	// FindMergedOwnersOf returns the products other than productID whose
	// derived stock depends on productID: owners of links originating from
	// it and, when it has no listing, the merged product it is a member of.
	FindMergedOwnersOf(ctx context.Context, productID uint) ([]uint, error)
}

// CatalogStore runs catalog work atomically
type CatalogStore interface {
	// WithinTx runs fn in a single transaction. Any error returned by fn
	// rolls the transaction back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx CatalogTx) error) error
}
