// Package order implements the Order aggregate of the fulfillment domain:
// checkout data (items, address, totals), the order status machine and the
// payment status side effects tied to it.
//
// The package includes:
//   - Order: aggregate root with optimistic versioning
//   - Status: the order state machine, split into directly requested
//     transitions (CanTransitionTo) and transitions derived from the paired
//     delivery (CanFollowDelivery)
//   - PaymentStatus: payment state mirrored from the payment provider
//   - Item, Address, Totals: value objects validated on construction
//
// Key business rules:
//   - pending -> confirmed -> preparing -> ready -> out_for_delivery -> delivered
//   - cancelled is reachable from every non-terminal status and always refunds
//   - delivered and cancelled are terminal for direct requests
package order
