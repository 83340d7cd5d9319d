package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/internal/catalog/repository"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/query"
)

func startServer(t *testing.T, store domain.CatalogStore) *grpc.ClientConn {
	t.Helper()

	deps := command.Deps{Store: store}
	bundles := bundle.NewManager()
	merger := merge.NewCoordinator()
	catalog := NewCatalogServer(
		command.NewConvertProductTypeHandler(deps, bundles, merger),
		command.NewCreateBundleHandler(deps, bundles),
		command.NewMergeProductsHandler(deps, merger),
		query.NewGetAvailableConversionsHandler(store),
	)

	lis := bufconn.Listen(1024 * 1024)
	srv, _ := NewServer(catalog)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestGetAvailableConversions(t *testing.T) {
	store := repository.NewInMemoryCatalogStore()
	p := store.SeedProduct(domain.Product{Name: "Lamp", SKU: "LAMP", Category: domain.CategorySimple})
	client := NewCatalogServiceClient(startServer(t, store))

	out, err := client.GetAvailableConversions(context.Background(), mustStruct(t, map[string]interface{}{
		"product_id": float64(p.ID),
	}))
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, "SIMPLE", got["category"])
	assert.Equal(t, []interface{}{"BUNDLED", "MERGED"}, got["conversions"])
}

func TestConvertProductType(t *testing.T) {
	store := repository.NewInMemoryCatalogStore()
	p := store.SeedProduct(domain.Product{Name: "Lamp", SKU: "LAMP", Category: domain.CategorySimple})
	client := NewCatalogServiceClient(startServer(t, store))
	ctx := context.Background()

	out, err := client.ConvertProductType(ctx, mustStruct(t, map[string]interface{}{
		"product_id": float64(p.ID),
		"category":   "MERGED",
	}))
	require.NoError(t, err)
	assert.Equal(t, "MERGED", out.AsMap()["to"])

	_, err = client.ConvertProductType(ctx, mustStruct(t, map[string]interface{}{
		"product_id": float64(p.ID),
		"category":   "BUNDLED",
	}))
	require.Error(t, err)
	st := status.Convert(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "MERGED cannot become a bundle.", st.Message())

	_, err = client.ConvertProductType(ctx, mustStruct(t, map[string]interface{}{
		"product_id": float64(999),
		"category":   "SIMPLE",
	}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestCreateBundleAndMerge(t *testing.T) {
	store := repository.NewInMemoryCatalogStore()
	a := store.SeedProduct(domain.Product{Name: "Pen", SKU: "PEN", Category: domain.CategorySimple})
	b := store.SeedProduct(domain.Product{Name: "Ink", SKU: "INK", Category: domain.CategorySimple})
	c := store.SeedProduct(domain.Product{Name: "Pad", SKU: "PAD", Category: domain.CategorySimple})
	store.SeedStock(a.ID, 9, 9)
	store.SeedStock(b.ID, 4, 4)
	store.SeedStock(c.ID, 2, 2)
	store.SeedLink(c.ID, "lazada", "LZ-PAD", true)
	client := NewCatalogServiceClient(startServer(t, store))
	ctx := context.Background()

	out, err := client.CreateBundle(ctx, mustStruct(t, map[string]interface{}{
		"name": "Writing Kit",
		"sku":  "KIT-W",
		"components": []interface{}{
			map[string]interface{}{"product_id": float64(a.ID), "quantity_needed": float64(3)},
			map[string]interface{}{"product_id": float64(b.ID), "quantity_needed": float64(1)},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(3), out.AsMap()["available"])

	// a is now a component and cannot be merged
	_, err = client.MergeProducts(ctx, mustStruct(t, map[string]interface{}{
		"product_ids": []interface{}{float64(a.ID), float64(c.ID)},
		"name":        "Pen Listing",
	}))
	st := status.Convert(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Contains(t, st.Message(), "Pen (PEN): used as a component")

	out, err = client.MergeProducts(ctx, mustStruct(t, map[string]interface{}{
		"product_ids": []interface{}{float64(c.ID)},
		"name":        "Pad Listing",
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(2), out.AsMap()["available"])
}

func TestInvalidRequest(t *testing.T) {
	client := NewCatalogServiceClient(startServer(t, repository.NewInMemoryCatalogStore()))

	_, err := client.ConvertProductType(context.Background(), mustStruct(t, map[string]interface{}{
		"product_id": "seven",
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthService(t *testing.T) {
	conn := startServer(t, repository.NewInMemoryCatalogStore())

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
