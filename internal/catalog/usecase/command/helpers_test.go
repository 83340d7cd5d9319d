package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/lock"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/internal/catalog/repository"
)

var errDisk = errors.New("disk on fire")

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CatalogEvent
	err    error
}

func (p *recordingPublisher) PublishCatalogEvent(_ context.Context, e domain.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) ofType(t domain.EventType) []domain.CatalogEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.CatalogEvent
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// busyLocker never grants a lock
type busyLocker struct{}

func (busyLocker) Acquire(context.Context, ...string) (lock.ReleaseFunc, error) {
	return nil, lock.ErrNotAcquired
}

// exclusiveLocker grants each key to one holder at a time, including a key
// repeated within a single Acquire, the way SET NX does
type exclusiveLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newExclusiveLocker() *exclusiveLocker {
	return &exclusiveLocker{held: make(map[string]bool)}
}

func (l *exclusiveLocker) Acquire(_ context.Context, keys ...string) (lock.ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	taken := make([]string, 0, len(keys))
	for _, k := range keys {
		if l.held[k] {
			for _, t := range taken {
				delete(l.held, t)
			}
			return nil, lock.ErrNotAcquired
		}
		l.held[k] = true
		taken = append(taken, k)
	}
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		for _, k := range taken {
			delete(l.held, k)
		}
	}, nil
}

func (l *exclusiveLocker) heldCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

// failingStore runs the wrapped store but fails the named tx method after it
// has written, so rollback can be observed
type failingStore struct {
	inner  domain.CatalogStore
	method string
}

func (s failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.CatalogTx) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
		return fn(ctx, failingTx{CatalogTx: tx, method: s.method})
	})
}

type failingTx struct {
	domain.CatalogTx
	method string
}

func (t failingTx) UpdateProductCategory(ctx context.Context, id uint, c domain.Category, at time.Time) error {
	if t.method == "UpdateProductCategory" {
		return errDisk
	}
	return t.CatalogTx.UpdateProductCategory(ctx, id, c, at)
}

func (t failingTx) UpsertWarehouseStock(ctx context.Context, productID uint, u domain.StockUpdate) error {
	if err := t.CatalogTx.UpsertWarehouseStock(ctx, productID, u); err != nil {
		return err
	}
	if t.method == "UpsertWarehouseStock" {
		return errDisk
	}
	return nil
}

// lockRecordingStore records the ids of every LockProducts call
type lockRecordingStore struct {
	inner domain.CatalogStore
	calls *[][]uint
}

func (s lockRecordingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.CatalogTx) error) error {
	return s.inner.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
		return fn(ctx, lockRecordingTx{CatalogTx: tx, calls: s.calls})
	})
}

type lockRecordingTx struct {
	domain.CatalogTx
	calls *[][]uint
}

func (t lockRecordingTx) LockProducts(ctx context.Context, ids ...uint) error {
	*t.calls = append(*t.calls, append([]uint(nil), ids...))
	return t.CatalogTx.LockProducts(ctx, ids...)
}

type env struct {
	store     *repository.InMemoryCatalogStore
	publisher *recordingPublisher
	deps      Deps
	bundles   *bundle.Manager
	merger    *merge.Coordinator
}

func newEnv() *env {
	store := repository.NewInMemoryCatalogStore()
	pub := &recordingPublisher{}
	return &env{
		store:     store,
		publisher: pub,
		deps: Deps{
			Store:     store,
			Publisher: pub,
			Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		},
		bundles: bundle.NewManager(),
		merger:  merge.NewCoordinator(),
	}
}

func (e *env) product(name, sku string, c domain.Category) domain.Product {
	return e.store.SeedProduct(domain.Product{Name: name, SKU: sku, Category: c})
}

func (e *env) simple(name, sku string, available int) domain.Product {
	p := e.product(name, sku, domain.CategorySimple)
	e.store.SeedStock(p.ID, available, available)
	return p
}

func (e *env) bundle(t *testing.T, name, sku string, components ...domain.ComponentInput) domain.Product {
	t.Helper()
	res, err := NewCreateBundleHandler(e.deps, e.bundles).Handle(context.Background(), CreateBundleCommand{
		Name: name, SKU: sku, Components: components,
	})
	require.NoError(t, err)
	return res.Product
}

func (e *env) merged(t *testing.T, name string, ids ...uint) domain.Product {
	t.Helper()
	res, err := NewMergeProductsHandler(e.deps, e.merger).Handle(context.Background(), MergeProductsCommand{
		ProductIDs: ids, Name: name,
	})
	require.NoError(t, err)
	return res.Product
}

func (e *env) category(t *testing.T, id uint) domain.Category {
	t.Helper()
	p, ok := e.store.Product(id)
	require.True(t, ok)
	return p.Category
}

func (e *env) available(t *testing.T, id uint) int {
	t.Helper()
	st, ok := e.store.Stock(id)
	require.True(t, ok)
	return st.Available
}

func intPtr(n int) *int { return &n }
