package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

// runStoreContract exercises behaviour every domain.CatalogStore must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) domain.CatalogStore) {
	t.Run("products", func(t *testing.T) { testProducts(t, newStore(t)) })
	t.Run("stock upsert", func(t *testing.T) { testStockUpsert(t, newStore(t)) })
	t.Run("bundle components", func(t *testing.T) { testBundleComponents(t, newStore(t)) })
	t.Run("platform links", func(t *testing.T) { testPlatformLinks(t, newStore(t)) })
	t.Run("merge members", func(t *testing.T) { testMergeMembers(t, newStore(t)) })
	t.Run("rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

func tx(t *testing.T, store domain.CatalogStore, fn func(ctx context.Context, tx domain.CatalogTx)) {
	t.Helper()
	require.NoError(t, store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		fn(ctx, tx)
		return nil
	}))
}

func create(t *testing.T, ctx context.Context, tx domain.CatalogTx, name, sku string, c domain.Category) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, SKU: sku, Category: c, Status: "ACTIVE"}
	require.NoError(t, tx.CreateProduct(ctx, &p))
	require.NotZero(t, p.ID)
	return p
}

func testProducts(t *testing.T, store domain.CatalogStore) {
	tx(t, store, func(ctx context.Context, tx domain.CatalogTx) {
		a := create(t, ctx, tx, "Apple", "APPLE", domain.CategorySimple)
		b := create(t, ctx, tx, "Pear", "PEAR", domain.CategoryConfigurable)

		exists, err := tx.SKUExists(ctx, "APPLE")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = tx.SKUExists(ctx, "PLUM")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, tx.LockProducts(ctx, b.ID, a.ID, 999999))

		got, err := tx.FindProductWithRelations(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Apple", got.Name)
		assert.Nil(t, got.Stock)

		missing, err := tx.FindProductWithRelations(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, missing)

		many, err := tx.FindProductsWithRelations(ctx, []uint{b.ID, 999999, a.ID, a.ID})
		require.NoError(t, err)
		require.Len(t, many, 2)
		assert.Equal(t, a.ID, many[0].ID)
		assert.Equal(t, b.ID, many[1].ID)

		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, tx.UpdateProductCategory(ctx, b.ID, domain.CategoryBundled, at))
		got, err = tx.FindProductWithRelations(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryBundled, got.Category)

		require.NoError(t, tx.DeleteProduct(ctx, a.ID))
		got, err = tx.FindProductWithRelations(ctx, a.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func testStockUpsert(t *testing.T, store domain.CatalogStore) {
	tx(t, store, func(ctx context.Context, tx domain.CatalogTx) {
		p := create(t, ctx, tx, "Bread", "BREAD", domain.CategorySimple)

		// an empty update creates a zero row
		require.NoError(t, tx.UpsertWarehouseStock(ctx, p.ID, domain.StockUpdate{}))
		got, err := tx.FindProductWithRelations(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Stock)
		assert.Equal(t, 0, got.Stock.Available)

		total, available := 10, 8
		require.NoError(t, tx.UpsertWarehouseStock(ctx, p.ID, domain.StockUpdate{Total: &total, Available: &available}))
		inOrder := 2
		require.NoError(t, tx.UpsertWarehouseStock(ctx, p.ID, domain.StockUpdate{InOrder: &inOrder}))
		// and leaves an existing row alone
		require.NoError(t, tx.UpsertWarehouseStock(ctx, p.ID, domain.StockUpdate{}))

		got, err = tx.FindProductWithRelations(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Stock.Total)
		assert.Equal(t, 8, got.Stock.Available)
		assert.Equal(t, 2, got.Stock.InOrder)

		require.NoError(t, tx.UpsertWarehouseStock(ctx, p.ID, domain.DerivedStock(3)))
		got, err = tx.FindProductWithRelations(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Stock.Total)
		assert.Equal(t, 3, got.Stock.Available)
		assert.Equal(t, 2, got.Stock.InOrder)
	})
}

func testBundleComponents(t *testing.T, store domain.CatalogStore) {
	tx(t, store, func(ctx context.Context, tx domain.CatalogTx) {
		a := create(t, ctx, tx, "Flour", "FLOUR", domain.CategorySimple)
		b := create(t, ctx, tx, "Yeast", "YEAST", domain.CategorySimple)
		kit := create(t, ctx, tx, "Baking Kit", "BAKE", domain.CategoryBundled)
		other := create(t, ctx, tx, "Pizza Kit", "PIZZA", domain.CategoryBundled)
		avail := 7
		require.NoError(t, tx.UpsertWarehouseStock(ctx, a.ID, domain.StockUpdate{Available: &avail}))

		require.NoError(t, tx.CreateBundleComponents(ctx, kit.ID, []domain.ComponentInput{
			{ProductID: b.ID, QuantityNeeded: 1},
			{ProductID: a.ID, QuantityNeeded: 2},
		}))
		require.NoError(t, tx.CreateBundleComponents(ctx, other.ID, []domain.ComponentInput{
			{ProductID: a.ID, QuantityNeeded: 0},
		}))

		cs, err := tx.ListComponentStock(ctx, kit.ID)
		require.NoError(t, err)
		require.Len(t, cs, 2)
		assert.Equal(t, domain.ComponentStock{ComponentID: a.ID, Name: "Flour", SKU: "FLOUR", QuantityNeeded: 2, Available: 7, HasStock: true}, cs[0])
		assert.Equal(t, domain.ComponentStock{ComponentID: b.ID, Name: "Yeast", SKU: "YEAST", QuantityNeeded: 1}, cs[1])

		using, err := tx.FindBundlesUsingComponent(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{kit.ID, other.ID}, using)

		rel, err := tx.FindProductWithRelations(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, rel.ComponentUsageCount)
		rel, err = tx.FindProductWithRelations(ctx, kit.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, rel.ComponentCount)

		removed, err := tx.DeleteBundleComponent(ctx, kit.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, removed)
		removed, err = tx.DeleteBundleComponent(ctx, kit.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		// deleting a bundle drops its component rows
		require.NoError(t, tx.DeleteProduct(ctx, other.ID))
		using, err = tx.FindBundlesUsingComponent(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{kit.ID}, using)
	})
}

func testPlatformLinks(t *testing.T, store domain.CatalogStore) {
	tx(t, store, func(ctx context.Context, tx domain.CatalogTx) {
		a := create(t, ctx, tx, "Milk", "MILK", domain.CategorySimple)
		b := create(t, ctx, tx, "Cream", "CREAM", domain.CategorySimple)
		m := create(t, ctx, tx, "Dairy", "MERGED-DAIRY", domain.CategoryMerged)
		a5, b3 := 5, 3
		require.NoError(t, tx.UpsertWarehouseStock(ctx, a.ID, domain.StockUpdate{Available: &a5}))
		require.NoError(t, tx.UpsertWarehouseStock(ctx, b.ID, domain.StockUpdate{Available: &b3}))
		require.NoError(t, tx.UpsertWarehouseStock(ctx, m.ID, domain.DerivedStock(100)))

		links := []*domain.PlatformProduct{
			{ProductID: a.ID, Platform: "shopee", PlatformSKU: "SH-MILK", IsActive: true},
			{ProductID: a.ID, Platform: "lazada", PlatformSKU: "LZ-MILK", IsActive: false},
			{ProductID: b.ID, Platform: "tiktok", PlatformSKU: "TT-CREAM", IsActive: true},
			{ProductID: m.ID, Platform: "tokopedia", PlatformSKU: "TP-DAIRY", IsActive: true},
		}
		for _, l := range links {
			require.NoError(t, tx.CreatePlatformProduct(ctx, l))
			assert.Equal(t, l.ProductID, l.OriginProductID)
		}

		exists, err := tx.PlatformSKUExists(ctx, "SH-MILK")
		require.NoError(t, err)
		assert.True(t, exists)

		rel, err := tx.FindProductWithRelations(ctx, a.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, rel.ActivePlatformLinks)

		moved, err := tx.ReparentPlatformLinks(ctx, []uint{a.ID, b.ID}, m.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, moved)

		owned, err := tx.ListPlatformProducts(ctx, m.ID)
		require.NoError(t, err)
		assert.Len(t, owned, 4)

		// the merged product's own listing does not count its own stock
		stocks, err := tx.ListMergedSourceStock(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, stocks, 2)
		assert.Equal(t, a.ID, stocks[0].ProductID)
		assert.Equal(t, 5, stocks[0].Available)
		assert.Equal(t, b.ID, stocks[1].ProductID)

		owners, err := tx.FindMergedOwnersOf(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{m.ID}, owners)
		owners, err = tx.FindMergedOwnersOf(ctx, m.ID)
		require.NoError(t, err)
		assert.Empty(t, owners)

		require.NoError(t, tx.MovePlatformLink(ctx, links[2].ID, b.ID))
		got, err := tx.FindPlatformProduct(ctx, links[2].ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, b.ID, got.ProductID)

		none, err := tx.FindPlatformProduct(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, none)

		stocks, err = tx.ListMergedSourceStock(ctx, m.ID)
		require.NoError(t, err)
		assert.Len(t, stocks, 1)
	})
}

func testMergeMembers(t *testing.T, store domain.CatalogStore) {
	tx(t, store, func(ctx context.Context, tx domain.CatalogTx) {
		listed := create(t, ctx, tx, "Nail", "NAIL", domain.CategorySimple)
		bare := create(t, ctx, tx, "Screw", "SCREW", domain.CategorySimple)
		other := create(t, ctx, tx, "Rivet", "RIVET", domain.CategorySimple)
		m1 := create(t, ctx, tx, "Fasteners", "MERGED-F1", domain.CategoryMerged)
		m2 := create(t, ctx, tx, "Fixings", "MERGED-F2", domain.CategoryMerged)
		n4, n6, n2 := 4, 6, 2
		require.NoError(t, tx.UpsertWarehouseStock(ctx, listed.ID, domain.StockUpdate{Available: &n4}))
		require.NoError(t, tx.UpsertWarehouseStock(ctx, bare.ID, domain.StockUpdate{Available: &n6}))
		require.NoError(t, tx.UpsertWarehouseStock(ctx, other.ID, domain.StockUpdate{Available: &n2}))
		require.NoError(t, tx.CreatePlatformProduct(ctx, &domain.PlatformProduct{
			ProductID: listed.ID, Platform: "shopee", PlatformSKU: "SH-NAIL", IsActive: true,
		}))

		require.NoError(t, tx.AddMergeMembers(ctx, m1.ID, []uint{listed.ID, bare.ID, other.ID}))
		members, err := tx.ListMergeMembers(ctx, m1.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{listed.ID, bare.ID, other.ID}, members)

		// a member with its own listing counts only through that listing
		stocks, err := tx.ListMergedSourceStock(ctx, m1.ID)
		require.NoError(t, err)
		require.Len(t, stocks, 2)
		assert.Equal(t, bare.ID, stocks[0].ProductID)
		assert.Equal(t, other.ID, stocks[1].ProductID)

		_, err = tx.ReparentPlatformLinks(ctx, []uint{listed.ID}, m1.ID)
		require.NoError(t, err)
		stocks, err = tx.ListMergedSourceStock(ctx, m1.ID)
		require.NoError(t, err)
		assert.Len(t, stocks, 3)

		owners, err := tx.FindMergedOwnersOf(ctx, bare.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{m1.ID}, owners)
		owners, err = tx.FindMergedOwnersOf(ctx, listed.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{m1.ID}, owners)

		// membership moves, it is never shared
		require.NoError(t, tx.AddMergeMembers(ctx, m2.ID, []uint{other.ID}))
		members, err = tx.ListMergeMembers(ctx, m1.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{listed.ID, bare.ID}, members)
		owners, err = tx.FindMergedOwnersOf(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{m2.ID}, owners)

		// deleting the merged product drops its memberships
		require.NoError(t, tx.DeleteProduct(ctx, m2.ID))
		owners, err = tx.FindMergedOwnersOf(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, owners)
		require.NoError(t, tx.DeleteProduct(ctx, other.ID))
	})
}

func testRollback(t *testing.T, store domain.CatalogStore) {
	boom := errors.New("boom")
	var id uint
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		p := create(t, ctx, tx, "Ghost", "GHOST", domain.CategorySimple)
		id = p.ID
		return boom
	})
	require.ErrorIs(t, err, boom)

	tx(t, store, func(ctx context.Context, tx domain.CatalogTx) {
		got, err := tx.FindProductWithRelations(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)
		exists, err := tx.SKUExists(ctx, "GHOST")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
