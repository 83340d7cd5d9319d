//go:build wireinject
// +build wireinject

package catalog

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/lock"
)

// InitializeService builds the catalog service with all dependencies
func InitializeService(
	store domain.CatalogStore,
	locker lock.Locker,
	publisher domain.EventPublisher,
	reg prometheus.Registerer,
) (*Service, error) {
	wire.Build(
		EngineSet,
		CommandSet,
		QuerySet,
		DeliverySet,
		wire.Struct(new(Service), "*"),
	)
	return nil, nil
}
