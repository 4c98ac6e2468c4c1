package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTravelEstimator_Estimate(t *testing.T) {
	a, _ := kernel.NewGeoPoint(0, 0)
	b, _ := kernel.NewGeoPoint(0.1, 0)
	c, _ := kernel.NewGeoPoint(0.2, 0)

	t.Run("sums both legs at the configured speed", func(t *testing.T) {
		estimator := services.NewTravelEstimator(20)
		legs, _ := a.DistanceMeters(c)

		d, err := estimator.Estimate(a, b, c)

		require.NoError(t, err)
		expected := time.Duration(legs / 1000 / 20 * float64(time.Hour))
		assert.InDelta(t, expected.Seconds(), d.Seconds(), 1)
	})

	t.Run("defaults non-positive speeds", func(t *testing.T) {
		assert.InDelta(t, services.DefaultCourierSpeedKmh, services.NewTravelEstimator(0).SpeedKmh(), 0)
	})

	t.Run("zero distance is zero duration", func(t *testing.T) {
		d, err := services.NewTravelEstimator(25).Estimate(a, a, a)

		require.NoError(t, err)
		assert.Zero(t, d)
	})

	t.Run("rejects unconstructed points", func(t *testing.T) {
		_, err := services.NewTravelEstimator(25).Estimate(kernel.GeoPoint{}, a, b)

		assert.Error(t, err)
	})
}
