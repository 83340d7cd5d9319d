package command

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tair/omnichannel-catalog/internal/catalog/domain"
	"github.com/tair/omnichannel-catalog/internal/catalog/lock"
	"github.com/tair/omnichannel-catalog/pkg/logger"
)

var conversionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_conversions_total",
		Help: "Product type conversion attempts by source, target and outcome",
	},
	[]string{"from", "to", "outcome"},
)

// Conversion outcomes recorded in catalog_conversions_total
const (
	OutcomeConverted = "converted"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Deps are the collaborators shared by the catalog command handlers
type Deps struct {
	Store     domain.CatalogStore
	Locker    lock.Locker
	Publisher domain.EventPublisher
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Locker == nil {
		d.Locker = lock.NopLocker{}
	}
	if d.Publisher == nil {
		d.Publisher = domain.NopPublisher{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// translate passes rule violations through unchanged and turns anything
// else into an opaque system failure after logging the cause.
func translate(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsRuleViolation(err) || domain.IsSystemFailure(err) {
		return err
	}
	if errors.Is(err, lock.ErrNotAcquired) {
		logger.Warn(ctx).Err(err).Str("operation", op).Msg("Catalog operation contended")
	} else {
		logger.Error(ctx).Err(err).Str("operation", op).Msg("Catalog operation failed")
	}
	return domain.NewSystemFailure(op, err)
}

// withLocks runs fn while holding the advisory locks of the given products
func (d Deps) withLocks(ctx context.Context, ids []uint, fn func() error) error {
	release, err := d.Locker.Acquire(ctx, lock.ProductKeys(ids...)...)
	if err != nil {
		return err
	}
	defer release(context.WithoutCancel(ctx))
	return fn()
}

// publish emits an event after commit. Delivery failures are logged only;
// the committed change stands.
func (d Deps) publish(ctx context.Context, eventType domain.EventType, productID uint, attrs map[string]interface{}) {
	event := domain.CatalogEvent{
		Type:       eventType,
		ProductID:  productID,
		Attributes: attrs,
		OccurredAt: d.Now(),
	}
	if err := d.Publisher.PublishCatalogEvent(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event_type", string(eventType)).
			Uint("product_id", productID).
			Msg("Failed to publish catalog event")
	}
}

func publishRecomputed(ctx context.Context, d Deps, recomputed map[uint]int) {
	for id, n := range recomputed {
		d.publish(ctx, domain.EventAvailabilityRecomputed, id, map[string]interface{}{"available": n})
	}
}
