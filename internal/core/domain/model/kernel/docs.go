// Package kernel holds the value objects shared by every aggregate of the
// fulfillment domain.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint: a validated latitude/longitude pair with great-circle distance
//   - BoundingBox: a coarse lat/lng window used to pre-filter proximity queries
//
// All values are immutable. Zero values are invalid and fail Validate, so
// values built without their constructors are caught before they reach an
// aggregate.
package kernel
