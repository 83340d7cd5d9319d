package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/repository"
)

type fixture struct {
	store *repository.InMemoryCatalogStore
	c     *Coordinator
}

func newFixture() *fixture {
	return &fixture{store: repository.NewInMemoryCatalogStore(), c: NewCoordinator()}
}

func (f *fixture) simple(name, sku string, available int, channels ...string) domain.Product {
	p := f.store.SeedProduct(domain.Product{Name: name, SKU: sku, Category: domain.CategorySimple})
	f.store.SeedStock(p.ID, available, available)
	for _, ch := range channels {
		f.store.SeedLink(p.ID, ch, ch+"-"+sku, true)
	}
	return p
}

func (f *fixture) merge(t *testing.T, name string, ids ...uint) (*domain.Product, error) {
	t.Helper()
	var merged *domain.Product
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		var err error
		merged, err = f.c.MergeProducts(ctx, tx, ids, name)
		return err
	})
	return merged, err
}

func (f *fixture) links(t *testing.T, owner uint) []domain.PlatformProduct {
	t.Helper()
	var out []domain.PlatformProduct
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		var err error
		out, err = tx.ListPlatformProducts(ctx, owner)
		return err
	}))
	return out
}

func TestMergeProducts(t *testing.T) {
	f := newFixture()
	a := f.simple("Red Mug", "MUG-R", 4, "shopee", "lazada")
	b := f.simple("Blue Mug", "MUG-B", 6, "tiktok")

	merged, err := f.merge(t, " Mug ", a.ID, b.ID, a.ID)
	require.NoError(t, err)

	assert.Equal(t, "Mug", merged.Name)
	assert.Equal(t, domain.CategoryMerged, merged.Category)
	assert.Regexp(t, `^MERGED-[0-9A-F]{12}$`, merged.SKU)

	st, ok := f.store.Stock(merged.ID)
	require.True(t, ok)
	assert.Equal(t, 10, st.Available)
	assert.Equal(t, 10, st.Total)

	moved := f.links(t, merged.ID)
	assert.Len(t, moved, 3)
	for _, l := range moved {
		assert.NotEqual(t, merged.ID, l.OriginProductID)
	}
	assert.Empty(t, f.links(t, a.ID))

	// sources are not modified
	src, _ := f.store.Product(a.ID)
	assert.Equal(t, domain.CategorySimple, src.Category)
	srcStock, _ := f.store.Stock(a.ID)
	assert.Equal(t, 4, srcStock.Available)
}

func (f *fixture) available(t *testing.T, id uint) int {
	t.Helper()
	st, ok := f.store.Stock(id)
	require.True(t, ok)
	return st.Available
}

func TestMergeProductsWithoutListings(t *testing.T) {
	f := newFixture()
	a := f.simple("Plate", "PLATE", 5)
	b := f.simple("Saucer", "SAUCER", 3)
	c := f.simple("Dish", "DISH", 7)

	merged, err := f.merge(t, "Crockery", a.ID, b.ID, c.ID)
	require.NoError(t, err)

	st, _ := f.store.Stock(merged.ID)
	assert.Equal(t, 15, st.Available)
	assert.Equal(t, 15, st.Total)

	// members without listings keep feeding the merged stock
	f.store.SeedStock(b.ID, 10, 10)
	var got map[uint]int
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		var err error
		got, err = f.c.RecomputeMergedOwnersOf(ctx, tx, b.ID)
		return err
	}))
	assert.Equal(t, map[uint]int{merged.ID: 22}, got)
}

func TestMergeProductsMixedListings(t *testing.T) {
	f := newFixture()
	a := f.simple("Pan", "PAN", 5, "shopee")
	b := f.simple("Pot", "POT", 3)

	merged, err := f.merge(t, "Cookware", a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, f.available(t, merged.ID))
}

func TestMergeAMergedProduct(t *testing.T) {
	f := newFixture()
	a := f.simple("Cap", "CAP", 4, "shopee")
	b := f.simple("Hat", "HAT", 6, "lazada")
	c := f.simple("Beanie", "BEANIE", 5, "tiktok")
	d := f.simple("Visor", "VISOR", 2)

	m1, err := f.merge(t, "Headwear", a.ID, b.ID, d.ID)
	require.NoError(t, err)
	require.Equal(t, 12, f.available(t, m1.ID))

	m2, err := f.merge(t, "All Headwear", m1.ID, c.ID)
	require.NoError(t, err)

	assert.Empty(t, f.links(t, m1.ID))
	assert.Equal(t, 0, f.available(t, m1.ID))
	assert.Len(t, f.links(t, m2.ID), 3)
	assert.Equal(t, 17, f.available(t, m2.ID))
}

func TestMergeMovesMembershipAway(t *testing.T) {
	f := newFixture()
	a := f.simple("Rope", "ROPE", 4)
	b := f.simple("Twine", "TWINE", 1)

	m1, err := f.merge(t, "Cord", a.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, 5, f.available(t, m1.ID))

	m2, err := f.merge(t, "Rope Only", a.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.available(t, m1.ID))
	assert.Equal(t, 4, f.available(t, m2.ID))
}

func TestMergeProductsRejections(t *testing.T) {
	f := newFixture()
	a := f.simple("Bowl", "BOWL", 3, "shopee")
	comp := f.simple("Spoon", "SPOON", 9)
	kit := f.store.SeedProduct(domain.Product{Name: "Dinner Kit", SKU: "KIT", Category: domain.CategoryBundled})
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		return tx.CreateBundleComponents(ctx, kit.ID, []domain.ComponentInput{{ProductID: comp.ID, QuantityNeeded: 1}})
	}))

	_, err := f.merge(t, "", a.ID)
	assert.Equal(t, []string{"Merged product name is required."}, domain.Reasons(err))

	_, err = f.merge(t, "Empty")
	assert.Equal(t, []string{"Select at least one product to merge."}, domain.Reasons(err))

	_, err = f.merge(t, "Mixed", a.ID, kit.ID, comp.ID)
	require.Error(t, err)
	assert.True(t, domain.IsRuleViolation(err))
	assert.ElementsMatch(t, []string{
		"Spoon (SPOON): used as a component",
		"Dinner Kit (KIT): cannot merge bundled products",
	}, domain.Reasons(err))

	_, err = f.merge(t, "Ghost", a.ID, 404)
	assert.True(t, domain.IsProductNotFound(err))

	// nothing moved
	assert.Len(t, f.links(t, a.ID), 1)
}

func TestMergeProductsRetriesSKUCollisions(t *testing.T) {
	f := newFixture()
	a := f.simple("Fork", "FORK", 1)
	f.store.SeedProduct(domain.Product{Name: "Taken", SKU: "MERGED-TAKEN", Category: domain.CategorySimple})

	calls := 0
	f.c.newSKU = func() string {
		calls++
		if calls == 1 {
			return "MERGED-TAKEN"
		}
		return "MERGED-FREE"
	}
	merged, err := f.merge(t, "Forks", a.ID)
	require.NoError(t, err)
	assert.Equal(t, "MERGED-FREE", merged.SKU)

	f.c.newSKU = func() string { return "MERGED-TAKEN" }
	_, err = f.merge(t, "Forks again", a.ID)
	require.Error(t, err)
	assert.False(t, domain.IsRuleViolation(err))
}

func TestRecomputeMergedInventoryIgnoresNegativeStock(t *testing.T) {
	f := newFixture()
	a := f.simple("Lamp", "LAMP", 5, "shopee")
	b := f.simple("Shade", "SHADE", 2, "lazada")

	merged, err := f.merge(t, "Lighting", a.ID, b.ID)
	require.NoError(t, err)

	f.store.SeedStock(b.ID, 0, -3)

	var n int
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		var err error
		n, err = f.c.RecomputeMergedInventory(ctx, tx, merged.ID)
		return err
	}))
	assert.Equal(t, 5, n)
}

func TestUnmergeChannel(t *testing.T) {
	f := newFixture()
	a := f.simple("Towel", "TOWEL", 8, "shopee")
	b := f.simple("Robe", "ROBE", 3, "lazada")

	merged, err := f.merge(t, "Bath", a.ID, b.ID)
	require.NoError(t, err)

	var robeLink domain.PlatformProduct
	for _, l := range f.links(t, merged.ID) {
		if l.OriginProductID == b.ID {
			robeLink = l
		}
	}
	require.NotZero(t, robeLink.ID)

	unmerge := func(mergedID, linkID uint) (int, error) {
		var n int
		err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
			var err error
			n, err = f.c.UnmergeChannel(ctx, tx, mergedID, linkID)
			return err
		})
		return n, err
	}

	n, err := unmerge(merged.ID, robeLink.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	back, _ := f.store.Link(robeLink.ID)
	assert.Equal(t, b.ID, back.ProductID)

	_, err = unmerge(merged.ID, robeLink.ID)
	assert.Equal(t, []string{"Channel listing does not belong to this merged product."}, domain.Reasons(err))

	_, err = unmerge(a.ID, robeLink.ID)
	assert.Equal(t, []string{"Towel (TOWEL) is not a merged product."}, domain.Reasons(err))

	_, err = unmerge(999, robeLink.ID)
	assert.True(t, domain.IsProductNotFound(err))

	own := f.store.SeedLink(merged.ID, "tiktok", "TT-BATH", true)
	_, err = unmerge(merged.ID, own.ID)
	assert.Equal(t, []string{"Channel listing was created for this product and has nowhere to return to."}, domain.Reasons(err))
}

func TestRecomputeMergedOwnersOf(t *testing.T) {
	f := newFixture()
	a := f.simple("Sock", "SOCK", 10, "shopee", "lazada")
	b := f.simple("Shoe", "SHOE", 1, "tiktok")

	m1, err := f.merge(t, "Feet", a.ID)
	require.NoError(t, err)
	m2, err := f.merge(t, "Footwear", b.ID)
	require.NoError(t, err)

	f.store.SeedStock(a.ID, 4, 4)

	var got map[uint]int
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		var err error
		got, err = f.c.RecomputeMergedOwnersOf(ctx, tx, a.ID)
		return err
	}))
	assert.Equal(t, map[uint]int{m1.ID: 4}, got)

	// an owner that is no longer MERGED keeps its manual stock
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		return tx.UpdateProductCategory(ctx, m2.ID, domain.CategorySimple, m2.UpdatedAt)
	}))
	require.NoError(t, f.store.WithinTx(context.Background(), func(ctx context.Context, tx domain.CatalogTx) error {
		var err error
		got, err = f.c.RecomputeMergedOwnersOf(ctx, tx, b.ID)
		return err
	}))
	assert.Empty(t, got)
}
