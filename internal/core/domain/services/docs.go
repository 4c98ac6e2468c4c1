// Package services provides domain services whose rules span more than one
// aggregate of the fulfillment domain.
//
// The package includes:
//   - ConsistencyRules: the canonical order/delivery status pairing table and
//     the derivations in both directions
//   - DriverRanker: filters and orders driver candidates for a dispatch origin
//   - TravelEstimator: straight-line travel time for delivery estimates
//
// Services are stateless values and never touch persistence.
package services
