// Package catalog assembles the catalog engine and its delivery adapters.
package catalog

import (
	"github.com/google/wire"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/delivery/events"
	grpcDelivery "github.com/tair/omnichannel-catalog/internal/catalog/delivery/grpc"
	httpDelivery "github.com/tair/omnichannel-catalog/internal/catalog/delivery/http"
	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/lock"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/query"
)

// Service is everything the entrypoint serves
type Service struct {
	HTTP          *httpDelivery.CatalogHandler
	GRPC          *grpcDelivery.CatalogServer
	StockListener *events.StockListener
	Recompute     *command.RecomputeHandler
}

// ProvideDeps provides the collaborators shared by the command handlers
func ProvideDeps(store domain.CatalogStore, locker lock.Locker, publisher domain.EventPublisher) command.Deps {
	return command.Deps{Store: store, Locker: locker, Publisher: publisher}
}

// Wire sets
var EngineSet = wire.NewSet(
	bundle.NewManager,
	merge.NewCoordinator,
)

var CommandSet = wire.NewSet(
	ProvideDeps,
	command.NewConvertProductTypeHandler,
	command.NewCreateProductHandler,
	command.NewDeleteProductHandler,
	command.NewUpdateStockHandler,
	command.NewLinkPlatformProductHandler,
	command.NewCreateBundleHandler,
	command.NewAddBundleComponentsHandler,
	command.NewRemoveBundleComponentHandler,
	command.NewRecomputeHandler,
	command.NewMergeProductsHandler,
	command.NewUnmergeChannelHandler,
)

var QuerySet = wire.NewSet(
	query.NewGetProductHandler,
	query.NewGetAvailableConversionsHandler,
)

var DeliverySet = wire.NewSet(
	wire.Struct(new(httpDelivery.Handlers), "*"),
	httpDelivery.NewCatalogHandler,
	grpcDelivery.NewCatalogServer,
	wire.Bind(new(events.Recomputer), new(*command.RecomputeHandler)),
	events.NewStockListener,
)
