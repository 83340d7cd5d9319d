package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "SIMPLE", want: CategorySimple},
		{in: " bundled ", want: CategoryBundled},
		{in: "Merged", want: CategoryMerged},
		{in: "configurable", want: CategoryConfigurable},
		{in: "KIT", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllCategoriesOrder(t *testing.T) {
	assert.Equal(t, []Category{CategoryConfigurable, CategorySimple, CategoryBundled, CategoryMerged}, AllCategories())

	// callers must not be able to mutate the package list
	cats := AllCategories()
	cats[0] = "X"
	assert.Equal(t, CategoryConfigurable, AllCategories()[0])
}

func TestStockUpdate(t *testing.T) {
	assert.True(t, StockUpdate{}.IsEmpty())

	s := WarehouseStock{Total: 10, Available: 8, InOrder: 2, Awaiting: 5}
	DerivedStock(3).Apply(&s)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 3, s.Available)
	assert.Equal(t, 2, s.InOrder)
	assert.Equal(t, 5, s.Awaiting)
}
