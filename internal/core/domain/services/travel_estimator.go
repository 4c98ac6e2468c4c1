package services

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// DefaultCourierSpeedKmh is used when no positive speed is configured.
const DefaultCourierSpeedKmh = 25.0

// TravelEstimator turns straight-line distances into travel durations at a
// constant courier speed.
type TravelEstimator struct {
	speedKmh float64
}

func NewTravelEstimator(speedKmh float64) TravelEstimator {
	if speedKmh <= 0 {
		speedKmh = DefaultCourierSpeedKmh
	}
	return TravelEstimator{speedKmh: speedKmh}
}

// SpeedKmh returns the configured courier speed.
func (e TravelEstimator) SpeedKmh() float64 {
	return e.speedKmh
}

// Estimate returns the time to ride driver -> pickup -> dropoff.
func (e TravelEstimator) Estimate(driverLocation, pickup, dropoff kernel.GeoPoint) (time.Duration, error) {
	toPickup, errPickup := driverLocation.DistanceMeters(pickup)
	toDropoff, errDropoff := pickup.DistanceMeters(dropoff)
	if err := errors.Join(errPickup, errDropoff); err != nil {
		return 0, err
	}
	if e.speedKmh <= 0 {
		return 0, errs.NewValueIsOutOfRangeError("speedKmh", e.speedKmh, "0+", "+Inf")
	}

	hours := (toPickup + toDropoff) / 1000 / e.speedKmh
	return time.Duration(hours * float64(time.Hour)).Round(time.Second), nil
}
