package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

// Postgres error codes that make a transaction worth retrying
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// GormCatalogStore is the PostgreSQL-backed domain.CatalogStore
type GormCatalogStore struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration
}

// NewGormCatalogStore creates a store. maxAttempts bounds how often a
// transaction is replayed after a serialization failure or deadlock.
func NewGormCatalogStore(db *gorm.DB, maxAttempts int) *GormCatalogStore {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &GormCatalogStore{db: db, maxAttempts: maxAttempts, backoff: 20 * time.Millisecond}
}

var _ domain.CatalogStore = (*GormCatalogStore)(nil)

// AutoMigrate creates or updates the catalog tables
func (s *GormCatalogStore) AutoMigrate() error {
	return s.db.AutoMigrate(domain.Models()...)
}

// PingContext checks the database connection
func (s *GormCatalogStore) PingContext(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithinTx runs fn in a database transaction, replaying it when Postgres
// reports a serialization failure or deadlock.
func (s *GormCatalogStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.CatalogTx) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, &gormTx{db: tx})
		})
		if err == nil || !isRetryable(err) || attempt >= s.maxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) LockProducts(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var locked []uint
	err := t.db.WithContext(ctx).
		Model(&domain.Product{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id").
		Pluck("id", &locked).Error
	if err != nil {
		return fmt.Errorf("failed to lock products: %w", err)
	}
	return nil
}

// productRow is one products row with its stock columns and relation counts
type productRow struct {
	domain.Product
	ComponentUsageCount int64
	ComponentCount      int64
	ActivePlatformLinks int64
	StockID             *uint
	StockTotal          *int
	StockAvailable      *int
	StockInOrder        *int
	StockAwaiting       *int
	StockUpdatedAt      *time.Time
}

const productWithRelationsQuery = `
SELECT p.*,
	(SELECT COUNT(*) FROM bundle_components bc WHERE bc.component_id = p.id) AS component_usage_count,
	(SELECT COUNT(*) FROM bundle_components bc WHERE bc.bundle_id = p.id) AS component_count,
	(SELECT COUNT(*) FROM platform_products pp WHERE pp.product_id = p.id AND pp.is_active) AS active_platform_links,
	ws.id AS stock_id,
	ws.total AS stock_total,
	ws.available AS stock_available,
	ws.in_order AS stock_in_order,
	ws.awaiting AS stock_awaiting,
	ws.updated_at AS stock_updated_at
FROM products p
LEFT JOIN warehouse_stocks ws ON ws.product_id = p.id
WHERE p.id IN ?
ORDER BY p.id`

func (r productRow) toDomain() domain.ProductWithRelations {
	out := domain.ProductWithRelations{
		Product:             r.Product,
		ComponentUsageCount: r.ComponentUsageCount,
		ComponentCount:      r.ComponentCount,
		ActivePlatformLinks: r.ActivePlatformLinks,
	}
	if r.StockID != nil {
		st := domain.WarehouseStock{ID: *r.StockID, ProductID: r.ID}
		if r.StockTotal != nil {
			st.Total = *r.StockTotal
		}
		if r.StockAvailable != nil {
			st.Available = *r.StockAvailable
		}
		if r.StockInOrder != nil {
			st.InOrder = *r.StockInOrder
		}
		if r.StockAwaiting != nil {
			st.Awaiting = *r.StockAwaiting
		}
		if r.StockUpdatedAt != nil {
			st.UpdatedAt = *r.StockUpdatedAt
		}
		out.Stock = &st
	}
	return out
}

func (t *gormTx) FindProductWithRelations(ctx context.Context, id uint) (*domain.ProductWithRelations, error) {
	rows, err := t.FindProductsWithRelations(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (t *gormTx) FindProductsWithRelations(ctx context.Context, ids []uint) ([]domain.ProductWithRelations, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []productRow
	if err := t.db.WithContext(ctx).Raw(productWithRelationsQuery, ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	out := make([]domain.ProductWithRelations, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (t *gormTx) SKUExists(ctx context.Context, sku string) (bool, error) {
	var n int64
	if err := t.db.WithContext(ctx).Model(&domain.Product{}).Where("sku = ?", sku).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check sku: %w", err)
	}
	return n > 0, nil
}

func (t *gormTx) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.Category == "" {
		product.Category = domain.CategoryConfigurable
	}
	if product.Status == "" {
		product.Status = "ACTIVE"
	}
	if err := t.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (t *gormTx) UpdateProductCategory(ctx context.Context, id uint, category domain.Category, at time.Time) error {
	res := t.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"category": category, "updated_at": at})
	if res.Error != nil {
		return fmt.Errorf("failed to update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d does not exist", id)
	}
	return nil
}

func (t *gormTx) DeleteProduct(ctx context.Context, id uint) error {
	db := t.db.WithContext(ctx)
	if err := db.Where("bundle_id = ?", id).Delete(&domain.BundleComponent{}).Error; err != nil {
		return fmt.Errorf("failed to delete bundle components: %w", err)
	}
	if err := db.Where("product_id = ?", id).Delete(&domain.PlatformProduct{}).Error; err != nil {
		return fmt.Errorf("failed to delete platform products: %w", err)
	}
	if err := db.Where("product_id = ? OR merged_id = ?", id, id).Delete(&domain.MergeMember{}).Error; err != nil {
		return fmt.Errorf("failed to delete merge members: %w", err)
	}
	if err := db.Where("product_id = ?", id).Delete(&domain.WarehouseStock{}).Error; err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	if err := db.Delete(&domain.Product{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (t *gormTx) UpsertWarehouseStock(ctx context.Context, productID uint, update domain.StockUpdate) error {
	row := domain.WarehouseStock{ProductID: productID, UpdatedAt: time.Now()}
	update.Apply(&row)

	conflict := clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}}
	if update.IsEmpty() {
		conflict.DoNothing = true
	} else {
		cols := []string{"updated_at"}
		if update.Total != nil {
			cols = append(cols, "total")
		}
		if update.Available != nil {
			cols = append(cols, "available")
		}
		if update.InOrder != nil {
			cols = append(cols, "in_order")
		}
		if update.Awaiting != nil {
			cols = append(cols, "awaiting")
		}
		conflict.DoUpdates = clause.AssignmentColumns(cols)
	}

	if err := t.db.WithContext(ctx).Clauses(conflict).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert stock: %w", err)
	}
	return nil
}

func (t *gormTx) CreateBundleComponents(ctx context.Context, bundleID uint, components []domain.ComponentInput) error {
	if len(components) == 0 {
		return nil
	}
	rows := make([]domain.BundleComponent, 0, len(components))
	for _, c := range components {
		rows = append(rows, domain.BundleComponent{
			BundleID:       bundleID,
			ComponentID:    c.ProductID,
			QuantityNeeded: c.QuantityNeeded,
		})
	}
	if err := t.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create bundle components: %w", err)
	}
	return nil
}

func (t *gormTx) DeleteBundleComponent(ctx context.Context, bundleID, componentID uint) (bool, error) {
	res := t.db.WithContext(ctx).
		Where("bundle_id = ? AND component_id = ?", bundleID, componentID).
		Delete(&domain.BundleComponent{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete bundle component: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

const componentStockQuery = `
SELECT bc.component_id,
	p.name,
	p.sku,
	bc.quantity_needed,
	COALESCE(ws.available, 0) AS available,
	ws.id IS NOT NULL AS has_stock
FROM bundle_components bc
JOIN products p ON p.id = bc.component_id
LEFT JOIN warehouse_stocks ws ON ws.product_id = bc.component_id
WHERE bc.bundle_id = ?
ORDER BY bc.component_id`

func (t *gormTx) ListComponentStock(ctx context.Context, bundleID uint) ([]domain.ComponentStock, error) {
	var out []domain.ComponentStock
	if err := t.db.WithContext(ctx).Raw(componentStockQuery, bundleID).Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load component stock: %w", err)
	}
	return out, nil
}

func (t *gormTx) FindBundlesUsingComponent(ctx context.Context, componentID uint) ([]uint, error) {
	var ids []uint
	err := t.db.WithContext(ctx).
		Model(&domain.BundleComponent{}).
		Where("component_id = ?", componentID).
		Order("bundle_id").
		Pluck("bundle_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find bundles: %w", err)
	}
	return ids, nil
}

func (t *gormTx) CreatePlatformProduct(ctx context.Context, link *domain.PlatformProduct) error {
	if link.OriginProductID == 0 {
		link.OriginProductID = link.ProductID
	}
	if err := t.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to create platform product: %w", err)
	}
	return nil
}

func (t *gormTx) FindPlatformProduct(ctx context.Context, id uint) (*domain.PlatformProduct, error) {
	var link domain.PlatformProduct
	err := t.db.WithContext(ctx).First(&link, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load platform product: %w", err)
	}
	return &link, nil
}

func (t *gormTx) PlatformSKUExists(ctx context.Context, platformSKU string) (bool, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Model(&domain.PlatformProduct{}).
		Where("platform_sku = ?", platformSKU).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check platform sku: %w", err)
	}
	return n > 0, nil
}

func (t *gormTx) ListPlatformProducts(ctx context.Context, ownerID uint) ([]domain.PlatformProduct, error) {
	var out []domain.PlatformProduct
	err := t.db.WithContext(ctx).
		Where("product_id = ?", ownerID).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list platform products: %w", err)
	}
	return out, nil
}

func (t *gormTx) ReparentPlatformLinks(ctx context.Context, productIDs []uint, newOwner uint) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := t.db.WithContext(ctx).
		Model(&domain.PlatformProduct{}).
		Where("product_id IN ?", productIDs).
		Updates(map[string]interface{}{"product_id": newOwner, "updated_at": time.Now()})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reparent platform products: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (t *gormTx) MovePlatformLink(ctx context.Context, linkID, newOwner uint) error {
	res := t.db.WithContext(ctx).
		Model(&domain.PlatformProduct{}).
		Where("id = ?", linkID).
		Updates(map[string]interface{}{"product_id": newOwner, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to move platform product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("platform product %d does not exist", linkID)
	}
	return nil
}

func (t *gormTx) AddMergeMembers(ctx context.Context, mergedID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	rows := make([]domain.MergeMember, 0, len(productIDs))
	for _, id := range productIDs {
		rows = append(rows, domain.MergeMember{MergedID: mergedID, ProductID: id})
	}
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"merged_id"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to add merge members: %w", err)
	}
	return nil
}

func (t *gormTx) ListMergeMembers(ctx context.Context, mergedID uint) ([]uint, error) {
	var ids []uint
	err := t.db.WithContext(ctx).
		Model(&domain.MergeMember{}).
		Where("merged_id = ?", mergedID).
		Order("product_id").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list merge members: %w", err)
	}
	return ids, nil
}

const mergedSourceStockQuery = `
SELECT ws.*
FROM warehouse_stocks ws
WHERE ws.product_id IN (
	SELECT pp.origin_product_id
	FROM platform_products pp
	WHERE pp.product_id = @merged AND pp.origin_product_id <> @merged
	UNION
	SELECT mm.product_id
	FROM merge_members mm
	JOIN products p ON p.id = mm.product_id
	WHERE mm.merged_id = @merged
		AND mm.product_id <> @merged
		AND p.category <> 'MERGED'
		AND NOT EXISTS (SELECT 1 FROM platform_products o WHERE o.origin_product_id = mm.product_id)
)
ORDER BY ws.product_id`

func (t *gormTx) ListMergedSourceStock(ctx context.Context, mergedID uint) ([]domain.WarehouseStock, error) {
	var out []domain.WarehouseStock
	err := t.db.WithContext(ctx).
		Raw(mergedSourceStockQuery, sql.Named("merged", mergedID)).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load merged source stock: %w", err)
	}
	return out, nil
}

const mergedOwnersQuery = `
SELECT pp.product_id AS id
FROM platform_products pp
WHERE pp.origin_product_id = @product AND pp.product_id <> @product
UNION
SELECT mm.merged_id
FROM merge_members mm
WHERE mm.product_id = @product
	AND mm.merged_id <> @product
	AND NOT EXISTS (SELECT 1 FROM platform_products o WHERE o.origin_product_id = @product)
ORDER BY id`

func (t *gormTx) FindMergedOwnersOf(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := t.db.WithContext(ctx).
		Raw(mergedOwnersQuery, sql.Named("product", productID)).
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find merged owners: %w", err)
	}
	return ids, nil
}
