package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// TracingCatalogStore wraps a domain.CatalogStore with a span per transaction
// and per store operation
type TracingCatalogStore struct {
	next domain.CatalogStore
}

// NewTracingCatalogStore creates a new store with tracing
func NewTracingCatalogStore(next domain.CatalogStore) *TracingCatalogStore {
	return &TracingCatalogStore{next: next}
}

var _ domain.CatalogStore = (*TracingCatalogStore)(nil)

// WithinTx with tracing
func (s *TracingCatalogStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.CatalogTx) error) error {
	ctx, span := tracer.Start(ctx, "repository.WithinTx")
	defer span.End()

	attempts := 0
	err := s.next.WithinTx(ctx, func(ctx context.Context, tx domain.CatalogTx) error {
		attempts++
		return fn(ctx, &tracingTx{next: tx})
	})
	span.SetAttributes(attribute.Int("tx.attempts", attempts))
	if err != nil {
		// rule violations are expected outcomes and leave the span unset
		if !domain.IsRuleViolation(err) {
			recordError(span, err)
		}
		return err
	}
	return nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func idsAttribute(key string, ids []uint) attribute.KeyValue {
	vals := make([]int64, len(ids))
	for i, id := range ids {
		vals[i] = int64(id)
	}
	return attribute.Int64Slice(key, vals)
}

type tracingTx struct {
	next domain.CatalogTx
}

func (t *tracingTx) LockProducts(ctx context.Context, ids ...uint) error {
	ctx, span := tracer.Start(ctx, "repository.LockProducts",
		trace.WithAttributes(idsAttribute("product.ids", ids)),
	)
	defer span.End()

	err := t.next.LockProducts(ctx, ids...)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) FindProductWithRelations(ctx context.Context, id uint) (*domain.ProductWithRelations, error) {
	ctx, span := tracer.Start(ctx, "repository.FindProductWithRelations",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	p, err := t.next.FindProductWithRelations(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("product.found", p != nil))
	if p != nil {
		span.SetAttributes(
			attribute.String("product.category", p.Category.String()),
			attribute.Int64("product.component_usage_count", p.ComponentUsageCount),
			attribute.Int64("product.component_count", p.ComponentCount),
			attribute.Int64("product.active_platform_links", p.ActivePlatformLinks),
		)
	}
	return p, nil
}

func (t *tracingTx) FindProductsWithRelations(ctx context.Context, ids []uint) ([]domain.ProductWithRelations, error) {
	ctx, span := tracer.Start(ctx, "repository.FindProductsWithRelations",
		trace.WithAttributes(idsAttribute("product.ids", ids)),
	)
	defer span.End()

	out, err := t.next.FindProductsWithRelations(ctx, ids)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

func (t *tracingTx) SKUExists(ctx context.Context, sku string) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.SKUExists",
		trace.WithAttributes(attribute.String("product.sku", sku)),
	)
	defer span.End()

	ok, err := t.next.SKUExists(ctx, sku)
	if err != nil {
		recordError(span, err)
	}
	return ok, err
}

func (t *tracingTx) CreateProduct(ctx context.Context, product *domain.Product) error {
	ctx, span := tracer.Start(ctx, "repository.CreateProduct",
		trace.WithAttributes(
			attribute.String("product.name", product.Name),
			attribute.String("product.sku", product.SKU),
			attribute.String("product.category", product.Category.String()),
		),
	)
	defer span.End()

	if err := t.next.CreateProduct(ctx, product); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	return nil
}

func (t *tracingTx) UpdateProductCategory(ctx context.Context, id uint, category domain.Category, at time.Time) error {
	ctx, span := tracer.Start(ctx, "repository.UpdateProductCategory",
		trace.WithAttributes(
			attribute.Int("product.id", int(id)),
			attribute.String("product.category", category.String()),
		),
	)
	defer span.End()

	err := t.next.UpdateProductCategory(ctx, id, category, at)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) DeleteProduct(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.DeleteProduct",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	defer span.End()

	err := t.next.DeleteProduct(ctx, id)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) UpsertWarehouseStock(ctx context.Context, productID uint, update domain.StockUpdate) error {
	ctx, span := tracer.Start(ctx, "repository.UpsertWarehouseStock",
		trace.WithAttributes(
			attribute.Int("product.id", int(productID)),
			attribute.Bool("stock.ensure_only", update.IsEmpty()),
		),
	)
	defer span.End()

	if update.Available != nil {
		span.SetAttributes(attribute.Int("stock.available", *update.Available))
	}
	err := t.next.UpsertWarehouseStock(ctx, productID, update)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) CreateBundleComponents(ctx context.Context, bundleID uint, components []domain.ComponentInput) error {
	ctx, span := tracer.Start(ctx, "repository.CreateBundleComponents",
		trace.WithAttributes(
			attribute.Int("bundle.id", int(bundleID)),
			attribute.Int("bundle.component_count", len(components)),
		),
	)
	defer span.End()

	err := t.next.CreateBundleComponents(ctx, bundleID, components)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) DeleteBundleComponent(ctx context.Context, bundleID, componentID uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.DeleteBundleComponent",
		trace.WithAttributes(
			attribute.Int("bundle.id", int(bundleID)),
			attribute.Int("component.id", int(componentID)),
		),
	)
	defer span.End()

	ok, err := t.next.DeleteBundleComponent(ctx, bundleID, componentID)
	if err != nil {
		recordError(span, err)
	}
	return ok, err
}

func (t *tracingTx) ListComponentStock(ctx context.Context, bundleID uint) ([]domain.ComponentStock, error) {
	ctx, span := tracer.Start(ctx, "repository.ListComponentStock",
		trace.WithAttributes(attribute.Int("bundle.id", int(bundleID))),
	)
	defer span.End()

	out, err := t.next.ListComponentStock(ctx, bundleID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

func (t *tracingTx) FindBundlesUsingComponent(ctx context.Context, componentID uint) ([]uint, error) {
	ctx, span := tracer.Start(ctx, "repository.FindBundlesUsingComponent",
		trace.WithAttributes(attribute.Int("component.id", int(componentID))),
	)
	defer span.End()

	out, err := t.next.FindBundlesUsingComponent(ctx, componentID)
	if err != nil {
		recordError(span, err)
	}
	return out, err
}

func (t *tracingTx) CreatePlatformProduct(ctx context.Context, link *domain.PlatformProduct) error {
	ctx, span := tracer.Start(ctx, "repository.CreatePlatformProduct",
		trace.WithAttributes(
			attribute.Int("product.id", int(link.ProductID)),
			attribute.String("platform", link.Platform),
			attribute.String("platform.sku", link.PlatformSKU),
		),
	)
	defer span.End()

	err := t.next.CreatePlatformProduct(ctx, link)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) FindPlatformProduct(ctx context.Context, id uint) (*domain.PlatformProduct, error) {
	ctx, span := tracer.Start(ctx, "repository.FindPlatformProduct",
		trace.WithAttributes(attribute.Int("platform_product.id", int(id))),
	)
	defer span.End()

	link, err := t.next.FindPlatformProduct(ctx, id)
	if err != nil {
		recordError(span, err)
	}
	return link, err
}

func (t *tracingTx) PlatformSKUExists(ctx context.Context, platformSKU string) (bool, error) {
	ctx, span := tracer.Start(ctx, "repository.PlatformSKUExists",
		trace.WithAttributes(attribute.String("platform.sku", platformSKU)),
	)
	defer span.End()

	ok, err := t.next.PlatformSKUExists(ctx, platformSKU)
	if err != nil {
		recordError(span, err)
	}
	return ok, err
}

func (t *tracingTx) ListPlatformProducts(ctx context.Context, ownerID uint) ([]domain.PlatformProduct, error) {
	ctx, span := tracer.Start(ctx, "repository.ListPlatformProducts",
		trace.WithAttributes(attribute.Int("product.id", int(ownerID))),
	)
	defer span.End()

	out, err := t.next.ListPlatformProducts(ctx, ownerID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

func (t *tracingTx) ReparentPlatformLinks(ctx context.Context, productIDs []uint, newOwner uint) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.ReparentPlatformLinks",
		trace.WithAttributes(
			idsAttribute("product.ids", productIDs),
			attribute.Int("merged.id", int(newOwner)),
		),
	)
	defer span.End()

	n, err := t.next.ReparentPlatformLinks(ctx, productIDs, newOwner)
	if err != nil {
		recordError(span, err)
		return 0, err
	}
	span.SetAttributes(attribute.Int64("links.moved", n))
	return n, nil
}

func (t *tracingTx) MovePlatformLink(ctx context.Context, linkID, newOwner uint) error {
	ctx, span := tracer.Start(ctx, "repository.MovePlatformLink",
		trace.WithAttributes(
			attribute.Int("platform_product.id", int(linkID)),
			attribute.Int("product.id", int(newOwner)),
		),
	)
	defer span.End()

	err := t.next.MovePlatformLink(ctx, linkID, newOwner)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) AddMergeMembers(ctx context.Context, mergedID uint, productIDs []uint) error {
	ctx, span := tracer.Start(ctx, "repository.AddMergeMembers",
		trace.WithAttributes(
			attribute.Int("merged.id", int(mergedID)),
			attribute.Int("members.count", len(productIDs)),
		),
	)
	defer span.End()

	err := t.next.AddMergeMembers(ctx, mergedID, productIDs)
	if err != nil {
		recordError(span, err)
	}
	return err
}

func (t *tracingTx) ListMergeMembers(ctx context.Context, mergedID uint) ([]uint, error) {
	ctx, span := tracer.Start(ctx, "repository.ListMergeMembers",
		trace.WithAttributes(attribute.Int("merged.id", int(mergedID))),
	)
	defer span.End()

	out, err := t.next.ListMergeMembers(ctx, mergedID)
	if err != nil {
		recordError(span, err)
	}
	return out, err
}

func (t *tracingTx) ListMergedSourceStock(ctx context.Context, mergedID uint) ([]domain.WarehouseStock, error) {
	ctx, span := tracer.Start(ctx, "repository.ListMergedSourceStock",
		trace.WithAttributes(attribute.Int("merged.id", int(mergedID))),
	)
	defer span.End()

	out, err := t.next.ListMergedSourceStock(ctx, mergedID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(out)))
	return out, nil
}

func (t *tracingTx) FindMergedOwnersOf(ctx context.Context, productID uint) ([]uint, error) {
	ctx, span := tracer.Start(ctx, "repository.FindMergedOwnersOf",
		trace.WithAttributes(attribute.Int("product.id", int(productID))),
	)
	defer span.End()

	out, err := t.next.FindMergedOwnersOf(ctx, productID)
	if err != nil {
		recordError(span, err)
	}
	return out, err
}
