package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the catalog gRPC service
const ServiceName = "catalog.v1.CatalogService"

// Full method names
const (
	MethodGetAvailableConversions = "/" + ServiceName + "/GetAvailableConversions"
	MethodConvertProductType      = "/" + ServiceName + "/ConvertProductType"
	MethodCreateBundle            = "/" + ServiceName + "/CreateBundle"
	MethodMergeProducts           = "/" + ServiceName + "/MergeProducts"
)

// CatalogServiceServer is the server API for the catalog service. Requests
// and responses are google.protobuf.Struct documents carrying the same JSON
// shapes as the HTTP API.
type CatalogServiceServer interface {
	GetAvailableConversions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConvertProductType(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateBundle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MergeProducts(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv CatalogServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CatalogServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogServiceDesc describes the catalog service for grpc.Server.RegisterService
var CatalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAvailableConversions",
			Handler:    unaryHandler(MethodGetAvailableConversions, CatalogServiceServer.GetAvailableConversions),
		},
		{
			MethodName: "ConvertProductType",
			Handler:    unaryHandler(MethodConvertProductType, CatalogServiceServer.ConvertProductType),
		},
		{
			MethodName: "CreateBundle",
			Handler:    unaryHandler(MethodCreateBundle, CatalogServiceServer.CreateBundle),
		},
		{
			MethodName: "MergeProducts",
			Handler:    unaryHandler(MethodMergeProducts, CatalogServiceServer.MergeProducts),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

// RegisterCatalogServiceServer registers srv on s
func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&CatalogServiceDesc, srv)
}

// CatalogServiceClient calls the catalog service over a client connection
type CatalogServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogServiceClient creates a client on an established connection
func NewCatalogServiceClient(cc grpc.ClientConnInterface) *CatalogServiceClient {
	return &CatalogServiceClient{cc: cc}
}

func (c *CatalogServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogServiceClient) GetAvailableConversions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetAvailableConversions, in, opts...)
}

func (c *CatalogServiceClient) ConvertProductType(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodConvertProductType, in, opts...)
}

func (c *CatalogServiceClient) CreateBundle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateBundle, in, opts...)
}

func (c *CatalogServiceClient) MergeProducts(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodMergeProducts, in, opts...)
}
