package grpc

import (
	"context"
	"encoding/json"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/query"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// CatalogServer implements CatalogServiceServer on top of the catalog
// command and query handlers
type CatalogServer struct {
	convertHandler      *command.ConvertProductTypeHandler
	createBundleHandler *command.CreateBundleHandler
	mergeHandler        *command.MergeProductsHandler
	conversionsHandler  *query.GetAvailableConversionsHandler
}

var _ CatalogServiceServer = (*CatalogServer)(nil)

// NewCatalogServer creates a new gRPC catalog server
func NewCatalogServer(
	convertHandler *command.ConvertProductTypeHandler,
	createBundleHandler *command.CreateBundleHandler,
	mergeHandler *command.MergeProductsHandler,
	conversionsHandler *query.GetAvailableConversionsHandler,
) *CatalogServer {
	return &CatalogServer{
		convertHandler:      convertHandler,
		createBundleHandler: createBundleHandler,
		mergeHandler:        mergeHandler,
		conversionsHandler:  conversionsHandler,
	}
}

// NewServer builds a grpc.Server carrying the catalog service, the standard
// health service and reflection
func NewServer(catalog CatalogServiceServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			MetricsInterceptor,
		),
	}, opts...)
	srv := grpc.NewServer(opts...)

	RegisterCatalogServiceServer(srv, catalog)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	reflection.Register(srv)
	return srv, healthSrv
}

type productRequest struct {
	ProductID uint `json:"product_id"`
}

type convertRequest struct {
	ProductID uint   `json:"product_id"`
	Category  string `json:"category"`
}

type createBundleRequest struct {
	Name       string                  `json:"name"`
	SKU        string                  `json:"sku"`
	Components []domain.ComponentInput `json:"components"`
}

type mergeRequest struct {
	ProductIDs []uint `json:"product_ids"`
	Name       string `json:"name"`
}

// GetAvailableConversions lists the categories a product may move to
func (s *CatalogServer) GetAvailableConversions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req productRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	out, err := s.conversionsHandler.Handle(ctx, query.GetAvailableConversionsQuery{ProductID: req.ProductID})
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(out)
}

// ConvertProductType changes a product's category
func (s *CatalogServer) ConvertProductType(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req convertRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	out, err := s.convertHandler.Handle(ctx, command.ConvertProductTypeCommand{
		ProductID:      req.ProductID,
		TargetCategory: req.Category,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(out)
}

// CreateBundle creates a BUNDLED product from SIMPLE components
func (s *CatalogServer) CreateBundle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req createBundleRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	out, err := s.createBundleHandler.Handle(ctx, command.CreateBundleCommand{
		Name:       req.Name,
		SKU:        req.SKU,
		Components: req.Components,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(out)
}

// MergeProducts merges the channel listings of several products
func (s *CatalogServer) MergeProducts(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req mergeRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, err
	}

	out, err := s.mergeHandler.Handle(ctx, command.MergeProductsCommand{
		ProductIDs: req.ProductIDs,
		Name:       req.Name,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeStruct(out)
}

func decodeStruct(in *structpb.Struct, v interface{}) error {
	raw, err := json.Marshal(in.AsMap())
	if err == nil {
		err = json.Unmarshal(raw, v)
	}
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

func encodeStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// toStatus maps the catalog error taxonomy onto gRPC codes
func toStatus(err error) error {
	switch {
	case domain.IsProductNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	case domain.IsRuleViolation(err):
		return status.Error(codes.FailedPrecondition, strings.Join(domain.Reasons(err), "; "))
	default:
		logger.Logger.Error().Err(err).Msg("gRPC call failed")
		return status.Error(codes.Internal, err.Error())
	}
}
