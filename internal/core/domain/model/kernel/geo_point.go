package kernel

import (
	"errors"
	"fmt"
	"math"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	// EarthRadiusMeters is the mean radius of the spherical Earth used by the
	// Haversine formula.
	EarthRadiusMeters = 6_371_000.0

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrGeoPointIsNotConstructed is returned when a zero value GeoPoint is used.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint constructor")

// GeoPoint is a validated WGS84 coordinate pair. Driver positions, vendor
// pickup points and delivery addresses are all expressed as GeoPoints.
//
// Example:
//
//	maputo, _ := kernel.NewGeoPoint(-25.9692, 32.5732)
//	matola, _ := kernel.NewGeoPoint(-25.9622, 32.4589)
//	meters, _ := maputo.DistanceMeters(matola) // ~11.4 km
type GeoPoint struct { //nolint:recvcheck // setters use pointer receivers during construction
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
// NaN and infinite values are rejected.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate fails for zero value GeoPoints.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String implements fmt.Stringer.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

// IsEqual compares coordinates exactly. Both points must be constructed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}
	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceMeters returns the great-circle distance to other using the
// Haversine formula on a sphere of radius EarthRadiusMeters.
func (p GeoPoint) DistanceMeters(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}
	return HaversineMeters(p.lat, p.lng, other.lat, other.lng), nil
}

// BoundingBox returns the lat/lng window that contains every point within
// radiusMeters of p. The window is conservative: points inside it may still be
// farther than radiusMeters, so callers filter with DistanceMeters afterwards.
func (p GeoPoint) BoundingBox(radiusMeters float64) BoundingBox {
	if radiusMeters < 0 {
		radiusMeters = 0
	}

	deltaLat := radiansToDegrees(radiusMeters / EarthRadiusMeters)
	box := BoundingBox{
		MinLat: math.Max(MinLatitude, p.lat-deltaLat),
		MaxLat: math.Min(MaxLatitude, p.lat+deltaLat),
		MinLng: MinLongitude,
		MaxLng: MaxLongitude,
	}

	// Near the poles or across the antimeridian the longitude window degenerates
	// and the full range is kept.
	cosLat := math.Cos(degreesToRadians(p.lat))
	if box.MinLat == MinLatitude || box.MaxLat == MaxLatitude || cosLat < 1e-9 {
		return box
	}

	deltaLng := deltaLat / cosLat
	if p.lng-deltaLng < MinLongitude || p.lng+deltaLng > MaxLongitude {
		return box
	}

	box.MinLng = p.lng - deltaLng
	box.MaxLng = p.lng + deltaLng
	return box
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}
	p.lng = lng
	return nil
}

// BoundingBox is an inclusive latitude/longitude window.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether the coordinate lies inside the window.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// HaversineMeters is the great-circle distance between two coordinates given
// in degrees.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}

func radiansToDegrees(r float64) float64 {
	return r * 180 / math.Pi
}
