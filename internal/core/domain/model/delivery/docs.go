// Package delivery implements the Delivery aggregate: the physical leg that
// brings an order from the vendor to the customer with exactly one driver.
//
// Delivery status machine:
//
//	PickedUp ──> InTransit ──> Delivered
//	    │            │
//	    └────────────┴──> Failed ──(Reassign, once)──> PickedUp
//
// Delivered and Failed are terminal for status requests. A failed delivery can
// only come back through Reassign, at most MaxRedispatches times, and never
// when the failure came from a cancellation.
//
// A delivery follows its order to Delivered only once it is InTransit.
package delivery
