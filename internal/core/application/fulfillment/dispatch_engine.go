package fulfillment

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

const (
	DefaultMaxDistanceMeters = 10_000.0
	DefaultCandidateLimit    = 10
)

// DispatchConfig bounds the driver search.
type DispatchConfig struct {
	MaxDistanceMeters float64
	CandidateLimit    int
}

func (c DispatchConfig) withDefaults() DispatchConfig {
	if c.MaxDistanceMeters <= 0 {
		c.MaxDistanceMeters = DefaultMaxDistanceMeters
	}
	if c.CandidateLimit == 0 {
		c.CandidateLimit = DefaultCandidateLimit
	}
	return c
}

// DispatchEngine binds drivers to deliveries. Every reservation is an atomic
// compare-and-set on the driver's availability; a claim lost to a concurrent
// request moves on to the next candidate.
type DispatchEngine struct {
	geo    *GeoIndex
	config DispatchConfig
	logger *slog.Logger
}

func NewDispatchEngine(geo *GeoIndex, config DispatchConfig, logger *slog.Logger) *DispatchEngine {
	return &DispatchEngine{
		geo:    geo,
		config: config.withDefaults(),
		logger: logger.With("component", "dispatch_engine"),
	}
}

// Config returns the effective search bounds.
func (e *DispatchEngine) Config() DispatchConfig {
	return e.config
}

// ReserveDriver claims the best available candidate around origin.
//
// Candidates are tried in ranking order. A candidate that was taken between
// the search and the claim is skipped. When the list is exhausted the result
// is an *errs.NoCapacityError.
func (e *DispatchEngine) ReserveDriver(
	ctx context.Context,
	drivers ports.DriverRepository,
	origin kernel.GeoPoint,
	areaTag string,
	exclude ...kernel.UUID,
) (*driver.Driver, error) {
	candidates, err := e.geo.FindCandidates(ctx, drivers, services.CandidateQuery{
		Origin:            origin,
		AreaTag:           areaTag,
		MaxDistanceMeters: e.config.MaxDistanceMeters,
		Limit:             e.config.CandidateLimit,
		Exclude:           exclude,
	})
	if err != nil {
		metrics.DispatchAttemptsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	for _, candidate := range candidates {
		claimed, claimErr := e.ClaimDriver(ctx, drivers, candidate.Driver.ID())
		if claimErr == nil {
			metrics.DispatchAttemptsTotal.WithLabelValues("reserved").Inc()
			return claimed, nil
		}
		if !isLostClaim(claimErr) {
			metrics.DispatchAttemptsTotal.WithLabelValues("error").Inc()
			return nil, claimErr
		}

		metrics.DriverClaimConflictsTotal.Inc()
		e.logger.DebugContext(ctx, "Driver claim lost, trying next candidate",
			"driver_id", candidate.Driver.ID().String(), "area", areaTag)
	}

	metrics.DispatchAttemptsTotal.WithLabelValues("no_capacity").Inc()
	return nil, errs.NewNoCapacityError(areaTag, e.config.MaxDistanceMeters)
}

// ClaimDriver reserves one specific driver and returns its updated state.
func (e *DispatchEngine) ClaimDriver(ctx context.Context, drivers ports.DriverRepository, id kernel.UUID) (*driver.Driver, error) {
	if err := drivers.Claim(ctx, id); err != nil {
		return nil, err
	}
	return drivers.Get(ctx, id)
}

// ReleaseDriver makes a driver available again. It is idempotent.
func (e *DispatchEngine) ReleaseDriver(ctx context.Context, drivers ports.DriverRepository, id kernel.UUID) error {
	return drivers.Release(ctx, id)
}

// Reassign finds a new driver for d, either the explicit one or the best
// candidate around the pickup point other than the current driver. The
// previous driver is released only when the delivery still held it; the
// driver of a failed delivery was already released and may be busy elsewhere.
func (e *DispatchEngine) Reassign(
	ctx context.Context,
	drivers ports.DriverRepository,
	d *delivery.Delivery,
	areaTag string,
	explicitDriverID *kernel.UUID,
) (*driver.Driver, error) {
	previous := d.DriverID()
	holdsPrevious := d.IsActive()

	var (
		next *driver.Driver
		err  error
	)
	if explicitDriverID != nil {
		if holdsPrevious && explicitDriverID.IsEqual(previous) {
			return drivers.Get(ctx, previous)
		}
		next, err = e.ClaimDriver(ctx, drivers, *explicitDriverID)
	} else {
		next, err = e.ReserveDriver(ctx, drivers, d.PickupLocation(), areaTag, previous)
	}
	if err != nil {
		return nil, err
	}

	if holdsPrevious && !next.ID().IsEqual(previous) {
		if err = e.ReleaseDriver(ctx, drivers, previous); err != nil {
			return nil, err
		}
	}

	return next, nil
}

func isLostClaim(err error) bool {
	return errors.Is(err, errs.ErrNoCapacity) || errors.Is(err, errs.ErrConflict)
}
