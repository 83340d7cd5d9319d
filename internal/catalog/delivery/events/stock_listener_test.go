package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/internal/catalog/repository"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
	"github.com/tair/omnichannel-catalog/kafka"
)

type recomputeFunc func(ctx context.Context, cmd command.RecomputeCommand) (*command.RecomputeResult, error)

func (f recomputeFunc) Handle(ctx context.Context, cmd command.RecomputeCommand) (*command.RecomputeResult, error) {
	return f(ctx, cmd)
}

func TestHandleStockChangedRefreshesBundles(t *testing.T) {
	store := repository.NewInMemoryCatalogStore()
	deps := command.Deps{Store: store}
	bundles := bundle.NewManager()

	a := store.SeedProduct(domain.Product{Name: "Sheet", SKU: "SHEET", Category: domain.CategorySimple})
	store.SeedStock(a.ID, 6, 6)
	res, err := command.NewCreateBundleHandler(deps, bundles).Handle(context.Background(), command.CreateBundleCommand{
		Name:       "Bed Set",
		SKU:        "BED",
		Components: []domain.ComponentInput{{ProductID: a.ID, QuantityNeeded: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Available)

	listener := NewStockListener(command.NewRecomputeHandler(deps, bundles, merge.NewCoordinator()))

	// the stock service wrote the new figure before announcing it
	store.SeedStock(a.ID, 10, 10)
	require.NoError(t, listener.HandleStockChanged(context.Background(), kafka.StockChangedEvent{
		EventID:   "evt-1",
		EventType: kafka.EventTypeStockChanged,
		ProductID: a.ID,
	}))

	st, ok := store.Stock(res.Product.ID)
	require.True(t, ok)
	assert.Equal(t, 5, st.Available)
}

func TestHandleStockChangedSkipsRejectedProducts(t *testing.T) {
	store := repository.NewInMemoryCatalogStore()
	cfg := store.SeedProduct(domain.Product{Name: "Shirt", SKU: "SHIRT", Category: domain.CategoryConfigurable})
	listener := NewStockListener(command.NewRecomputeHandler(command.Deps{Store: store}, bundle.NewManager(), merge.NewCoordinator()))

	assert.NoError(t, listener.HandleStockChanged(context.Background(), kafka.StockChangedEvent{ProductID: cfg.ID}))
	assert.NoError(t, listener.HandleStockChanged(context.Background(), kafka.StockChangedEvent{ProductID: 404}))
}

func TestHandleStockChangedReturnsSystemFailures(t *testing.T) {
	failure := domain.NewSystemFailure("recompute availability", errors.New("db gone"))
	listener := NewStockListener(recomputeFunc(func(context.Context, command.RecomputeCommand) (*command.RecomputeResult, error) {
		return nil, failure
	}))

	err := listener.HandleStockChanged(context.Background(), kafka.StockChangedEvent{ProductID: 1})
	assert.ErrorIs(t, err, failure)
}
