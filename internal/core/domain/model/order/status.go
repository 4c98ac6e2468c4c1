package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions requested directly on the order (customer or vendor):
//
//	Pending ──> Confirmed ──> Preparing ──> Ready ──> OutForDelivery ──> Delivered
//	   │            │             │           │              │
//	   └────────────┴─────────────┴───────────┴──────────────┴──> Cancelled
//
// Transitions derived from the paired delivery are listed in CanFollowDelivery.
// Statuses are persisted through String and read back with ParseStatus.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status right after customer checkout.
	Pending

	// Confirmed means the vendor accepted the order.
	Confirmed

	// Preparing means the vendor is preparing the items.
	Preparing

	// Ready means the order waits for pickup by a driver.
	Ready

	// OutForDelivery means a driver picked the order up.
	OutForDelivery

	// Delivered is a final state: the customer received the order.
	Delivered

	// Cancelled is a final state: the order will not be delivered and its
	// payment is refunded.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Pending:        "pending",
		Confirmed:      "confirmed",
		Preparing:      "preparing",
		Ready:          "ready",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// directTransitions lists the transitions a caller may request on the order.
func directTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing transitions
	return map[Status][]Status{
		Pending:        {Confirmed, Cancelled},
		Confirmed:      {Preparing, Cancelled},
		Preparing:      {Ready, Cancelled},
		Ready:          {OutForDelivery, Cancelled},
		OutForDelivery: {Delivered, Cancelled},
	}
}

// derivedTransitions lists the transitions applied to the order when its
// delivery changes. Self transitions are no-ops.
func derivedTransitions() map[Status][]Status {
	return map[Status][]Status{
		OutForDelivery: {Confirmed, Ready, OutForDelivery, Cancelled},
		Delivered:      {OutForDelivery, Delivered},
		Cancelled:      {Pending, Confirmed, Preparing, Ready, OutForDelivery, Cancelled},
	}
}

// ParseStatus converts the persisted name of a status back to a Status.
//
// Example:
//
//	s, err := order.ParseStatus("out_for_delivery") // OutForDelivery, nil
func ParseStatus(value string) (Status, error) {
	for s, str := range getStatusStrings() {
		if s != Unknown && str == value {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid order status", value))
}

// Validate checks that the status is one of the known order statuses.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid order status", s))
	}
	return nil
}

// String returns the snake_case name of the status, which is also its
// persisted and wire representation.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further direct transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransitionTo reports whether a caller may move an order from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range directTransitions()[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanFollowDelivery reports whether the order may move from s to next as a
// consequence of a delivery status change.
//
// Derived transitions:
//   - Confirmed, Ready -> OutForDelivery (delivery picked up)
//   - Cancelled -> OutForDelivery (failed delivery dispatched again)
//   - OutForDelivery -> Delivered
//   - any non-terminal status -> Cancelled (delivery failed)
//   - OutForDelivery, Delivered and Cancelled to themselves (no-op)
func (s Status) CanFollowDelivery(next Status) bool {
	for _, from := range derivedTransitions()[next] {
		if from == s {
			return true
		}
	}
	return false
}
