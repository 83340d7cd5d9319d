package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

// InMemoryCatalogStore is a thread-safe in-memory domain.CatalogStore.
// Transactions are serialized; a failed transaction restores the state it
// started from.
type InMemoryCatalogStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	products   map[uint]domain.Product
	stocks     map[uint]domain.WarehouseStock // keyed by product id
	components map[uint]domain.BundleComponent
	links      map[uint]domain.PlatformProduct
	members    map[uint]domain.MergeMember // keyed by member product id
	nextID     uint
}

// NewInMemoryCatalogStore constructs an empty store
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		state: memoryState{
			products:   make(map[uint]domain.Product),
			stocks:     make(map[uint]domain.WarehouseStock),
			components: make(map[uint]domain.BundleComponent),
			links:      make(map[uint]domain.PlatformProduct),
			members:    make(map[uint]domain.MergeMember),
		},
	}
}

// compile-time assertion that InMemoryCatalogStore implements domain.CatalogStore
var _ domain.CatalogStore = (*InMemoryCatalogStore)(nil)

func (s memoryState) clone() memoryState {
	c := memoryState{
		products:   make(map[uint]domain.Product, len(s.products)),
		stocks:     make(map[uint]domain.WarehouseStock, len(s.stocks)),
		components: make(map[uint]domain.BundleComponent, len(s.components)),
		links:      make(map[uint]domain.PlatformProduct, len(s.links)),
		members:    make(map[uint]domain.MergeMember, len(s.members)),
		nextID:     s.nextID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	for k, v := range s.components {
		c.components[k] = v
	}
	for k, v := range s.links {
		c.links[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	return c
}

// WithinTx runs fn while holding the store lock. The state is restored when
// fn returns an error or panics; the panic is re-raised afterwards.
func (s *InMemoryCatalogStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.CatalogTx) error) (err error) {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	defer func() {
		if r := recover(); r != nil {
			s.state = backup
			panic(r)
		}
	}()
	if err = fn(ctx, &memoryTx{state: &s.state}); err != nil {
		s.state = backup
		return err
	}
	return nil
}

// Seed helpers write directly, outside any transaction. They are meant for
// tests and local fixtures.

// SeedProduct inserts a product and returns it with its assigned id
func (s *InMemoryCatalogStore) SeedProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{state: &s.state}
	_ = tx.CreateProduct(context.Background(), &p)
	return p
}

// SeedStock sets the stock row of a product
func (s *InMemoryCatalogStore) SeedStock(productID uint, total, available int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state.stocks[productID]
	if !ok {
		s.state.nextID++
		st.ID = s.state.nextID
	}
	s.state.stocks[productID] = domain.WarehouseStock{
		ID:        st.ID,
		ProductID: productID,
		Total:     total,
		Available: available,
		UpdatedAt: time.Now(),
	}
}

// SeedLink creates a platform listing owned by and originating from productID
func (s *InMemoryCatalogStore) SeedLink(productID uint, platform, platformSKU string, active bool) domain.PlatformProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	link := domain.PlatformProduct{
		ProductID:       productID,
		OriginProductID: productID,
		Platform:        platform,
		PlatformSKU:     platformSKU,
		IsActive:        active,
	}
	tx := &memoryTx{state: &s.state}
	_ = tx.CreatePlatformProduct(context.Background(), &link)
	return link
}

// Stock returns a copy of the stock row of a product
func (s *InMemoryCatalogStore) Stock(productID uint) (domain.WarehouseStock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.state.stocks[productID]
	return st, ok
}

// Product returns a copy of a stored product
func (s *InMemoryCatalogStore) Product(id uint) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	return p, ok
}

// Link returns a copy of a stored platform listing
func (s *InMemoryCatalogStore) Link(id uint) (domain.PlatformProduct, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.state.links[id]
	return l, ok
}

// Components returns the component rows of a bundle ordered by component id
func (s *InMemoryCatalogStore) Components(bundleID uint) []domain.BundleComponent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.BundleComponent
	for _, bc := range s.state.components {
		if bc.BundleID == bundleID {
			out = append(out, bc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ComponentID < out[j].ComponentID })
	return out
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) newID() uint {
	t.state.nextID++
	return t.state.nextID
}

func (t *memoryTx) LockProducts(ctx context.Context, ids ...uint) error {
	return ctx.Err()
}

func (t *memoryTx) withRelations(p domain.Product) domain.ProductWithRelations {
	out := domain.ProductWithRelations{Product: p}
	if st, ok := t.state.stocks[p.ID]; ok {
		out.Stock = &st
	}
	for _, bc := range t.state.components {
		if bc.ComponentID == p.ID {
			out.ComponentUsageCount++
		}
		if bc.BundleID == p.ID {
			out.ComponentCount++
		}
	}
	for _, l := range t.state.links {
		if l.ProductID == p.ID && l.IsActive {
			out.ActivePlatformLinks++
		}
	}
	return out
}

func (t *memoryTx) FindProductWithRelations(ctx context.Context, id uint) (*domain.ProductWithRelations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := t.state.products[id]
	if !ok {
		return nil, nil
	}
	out := t.withRelations(p)
	return &out, nil
}

func (t *memoryTx) FindProductsWithRelations(ctx context.Context, ids []uint) ([]domain.ProductWithRelations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]domain.ProductWithRelations, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := t.state.products[id]; ok {
			out = append(out, t.withRelations(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) SKUExists(ctx context.Context, sku string) (bool, error) {
	for _, p := range t.state.products {
		if p.SKU == sku {
			return true, nil
		}
	}
	return false, ctx.Err()
}

func (t *memoryTx) CreateProduct(ctx context.Context, product *domain.Product) error {
	if exists, _ := t.SKUExists(ctx, product.SKU); exists {
		return fmt.Errorf("duplicate sku %q", product.SKU)
	}
	now := time.Now()
	product.ID = t.newID()
	if product.Category == "" {
		product.Category = domain.CategoryConfigurable
	}
	if product.Status == "" {
		product.Status = "ACTIVE"
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	t.state.products[product.ID] = *product
	return nil
}

func (t *memoryTx) UpdateProductCategory(ctx context.Context, id uint, category domain.Category, at time.Time) error {
	p, ok := t.state.products[id]
	if !ok {
		return fmt.Errorf("product %d does not exist", id)
	}
	p.Category = category
	p.UpdatedAt = at
	t.state.products[id] = p
	return nil
}

func (t *memoryTx) DeleteProduct(ctx context.Context, id uint) error {
	for _, bc := range t.state.components {
		if bc.ComponentID == id {
			return fmt.Errorf("product %d is referenced by bundle %d", id, bc.BundleID)
		}
	}
	delete(t.state.products, id)
	delete(t.state.stocks, id)
	for cid, bc := range t.state.components {
		if bc.BundleID == id {
			delete(t.state.components, cid)
		}
	}
	for lid, l := range t.state.links {
		if l.ProductID == id {
			delete(t.state.links, lid)
		}
	}
	for pid, m := range t.state.members {
		if pid == id || m.MergedID == id {
			delete(t.state.members, pid)
		}
	}
	return nil
}

func (t *memoryTx) UpsertWarehouseStock(ctx context.Context, productID uint, update domain.StockUpdate) error {
	if _, ok := t.state.products[productID]; !ok {
		return fmt.Errorf("product %d does not exist", productID)
	}
	st, ok := t.state.stocks[productID]
	if ok && update.IsEmpty() {
		return nil
	}
	if !ok {
		st = domain.WarehouseStock{ID: t.newID(), ProductID: productID}
	}
	update.Apply(&st)
	st.UpdatedAt = time.Now()
	t.state.stocks[productID] = st
	return nil
}

func (t *memoryTx) CreateBundleComponents(ctx context.Context, bundleID uint, components []domain.ComponentInput) error {
	for _, c := range components {
		for _, bc := range t.state.components {
			if bc.BundleID == bundleID && bc.ComponentID == c.ProductID {
				return fmt.Errorf("component %d already belongs to bundle %d", c.ProductID, bundleID)
			}
		}
		if c.QuantityNeeded < 0 {
			return fmt.Errorf("quantity_needed must be non-negative")
		}
		id := t.newID()
		t.state.components[id] = domain.BundleComponent{
			ID:             id,
			BundleID:       bundleID,
			ComponentID:    c.ProductID,
			QuantityNeeded: c.QuantityNeeded,
		}
	}
	return nil
}

func (t *memoryTx) DeleteBundleComponent(ctx context.Context, bundleID, componentID uint) (bool, error) {
	for id, bc := range t.state.components {
		if bc.BundleID == bundleID && bc.ComponentID == componentID {
			delete(t.state.components, id)
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) ListComponentStock(ctx context.Context, bundleID uint) ([]domain.ComponentStock, error) {
	var out []domain.ComponentStock
	for _, bc := range t.state.components {
		if bc.BundleID != bundleID {
			continue
		}
		p := t.state.products[bc.ComponentID]
		cs := domain.ComponentStock{
			ComponentID:    bc.ComponentID,
			Name:           p.Name,
			SKU:            p.SKU,
			QuantityNeeded: bc.QuantityNeeded,
		}
		if st, ok := t.state.stocks[bc.ComponentID]; ok {
			cs.Available = st.Available
			cs.HasStock = true
		}
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ComponentID < out[j].ComponentID })
	return out, ctx.Err()
}

func (t *memoryTx) FindBundlesUsingComponent(ctx context.Context, componentID uint) ([]uint, error) {
	var out []uint
	for _, bc := range t.state.components {
		if bc.ComponentID == componentID {
			out = append(out, bc.BundleID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, ctx.Err()
}

func (t *memoryTx) CreatePlatformProduct(ctx context.Context, link *domain.PlatformProduct) error {
	for _, l := range t.state.links {
		if l.PlatformSKU == link.PlatformSKU {
			return fmt.Errorf("duplicate platform sku %q", link.PlatformSKU)
		}
	}
	now := time.Now()
	link.ID = t.newID()
	if link.OriginProductID == 0 {
		link.OriginProductID = link.ProductID
	}
	link.CreatedAt = now
	link.UpdatedAt = now
	t.state.links[link.ID] = *link
	return nil
}

func (t *memoryTx) FindPlatformProduct(ctx context.Context, id uint) (*domain.PlatformProduct, error) {
	l, ok := t.state.links[id]
	if !ok {
		return nil, ctx.Err()
	}
	return &l, nil
}

func (t *memoryTx) PlatformSKUExists(ctx context.Context, platformSKU string) (bool, error) {
	for _, l := range t.state.links {
		if l.PlatformSKU == platformSKU {
			return true, nil
		}
	}
	return false, ctx.Err()
}

func (t *memoryTx) ListPlatformProducts(ctx context.Context, ownerID uint) ([]domain.PlatformProduct, error) {
	var out []domain.PlatformProduct
	for _, l := range t.state.links {
		if l.ProductID == ownerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, ctx.Err()
}

func (t *memoryTx) ReparentPlatformLinks(ctx context.Context, productIDs []uint, newOwner uint) (int64, error) {
	from := make(map[uint]bool, len(productIDs))
	for _, id := range productIDs {
		from[id] = true
	}
	var n int64
	for id, l := range t.state.links {
		if from[l.ProductID] {
			l.ProductID = newOwner
			l.UpdatedAt = time.Now()
			t.state.links[id] = l
			n++
		}
	}
	return n, ctx.Err()
}

func (t *memoryTx) MovePlatformLink(ctx context.Context, linkID, newOwner uint) error {
	l, ok := t.state.links[linkID]
	if !ok {
		return fmt.Errorf("platform product %d does not exist", linkID)
	}
	l.ProductID = newOwner
	l.UpdatedAt = time.Now()
	t.state.links[linkID] = l
	return nil
}

func (t *memoryTx) AddMergeMembers(ctx context.Context, mergedID uint, productIDs []uint) error {
	if _, ok := t.state.products[mergedID]; !ok {
		return fmt.Errorf("product %d does not exist", mergedID)
	}
	for _, id := range productIDs {
		if _, ok := t.state.products[id]; !ok {
			return fmt.Errorf("product %d does not exist", id)
		}
		m, ok := t.state.members[id]
		if !ok {
			m = domain.MergeMember{ID: t.newID(), ProductID: id, CreatedAt: time.Now()}
		}
		m.MergedID = mergedID
		t.state.members[id] = m
	}
	return ctx.Err()
}

func (t *memoryTx) ListMergeMembers(ctx context.Context, mergedID uint) ([]uint, error) {
	var out []uint
	for pid, m := range t.state.members {
		if m.MergedID == mergedID {
			out = append(out, pid)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, ctx.Err()
}

func (t *memoryTx) hasOwnListing(productID uint) bool {
	for _, l := range t.state.links {
		if l.OriginProductID == productID {
			return true
		}
	}
	return false
}

func (t *memoryTx) ListMergedSourceStock(ctx context.Context, mergedID uint) ([]domain.WarehouseStock, error) {
	sources := make(map[uint]bool)
	for _, l := range t.state.links {
		if l.ProductID == mergedID && l.OriginProductID != mergedID {
			sources[l.OriginProductID] = true
		}
	}
	for pid, m := range t.state.members {
		if m.MergedID != mergedID || pid == mergedID {
			continue
		}
		if p, ok := t.state.products[pid]; !ok || p.Category == domain.CategoryMerged {
			continue
		}
		if !t.hasOwnListing(pid) {
			sources[pid] = true
		}
	}
	out := make([]domain.WarehouseStock, 0, len(sources))
	for id := range sources {
		if st, ok := t.state.stocks[id]; ok {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, ctx.Err()
}

func (t *memoryTx) FindMergedOwnersOf(ctx context.Context, productID uint) ([]uint, error) {
	owners := make(map[uint]bool)
	for _, l := range t.state.links {
		if l.OriginProductID == productID && l.ProductID != productID {
			owners[l.ProductID] = true
		}
	}
	if m, ok := t.state.members[productID]; ok && m.MergedID != productID && !t.hasOwnListing(productID) {
		owners[m.MergedID] = true
	}
	out := make([]uint, 0, len(owners))
	for id := range owners {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, ctx.Err()
}
