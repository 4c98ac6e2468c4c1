package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery. Statuses are persisted by
// their String form.
type Status int

const (
	Unknown Status = iota

	// PickedUp is the initial status: the driver collected the order.
	PickedUp

	// InTransit means the driver is on the way to the customer.
	InTransit

	// Delivered is terminal: the customer received the order.
	Delivered

	// Failed is terminal unless the delivery is dispatched again.
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		PickedUp:  "picked_up",
		InTransit: "in_transit",
		Delivered: "delivered",
		Failed:    "failed",
	}
}

func requestedTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal statuses have no requested transitions
	return map[Status][]Status{
		PickedUp:  {InTransit, Failed},
		InTransit: {Delivered, Failed},
	}
}

// derivedSources lists, per target status, the statuses from which the
// delivery follows its order. Self transitions are no-ops.
func derivedSources() map[Status][]Status {
	return map[Status][]Status{
		PickedUp:  {PickedUp},
		InTransit: {PickedUp, InTransit},
		Delivered: {InTransit, Delivered},
		Failed:    {PickedUp, InTransit, Failed},
	}
}

// ParseStatus converts a persisted or wire status name back to a Status.
func ParseStatus(value string) (Status, error) {
	for s, str := range getStatusStrings() {
		if s != Unknown && str == value {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid delivery status", value))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Failed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid delivery status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status is Delivered or Failed.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Failed
}

// CanTransitionTo reports whether a caller may request the move from s to next.
// Failed -> PickedUp is absent: only a redispatch reopens a failed delivery.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range requestedTransitions()[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanFollowOrder reports whether the delivery may move from s to next because
// its order changed.
func (s Status) CanFollowOrder(next Status) bool {
	for _, from := range derivedSources()[next] {
		if from == s {
			return true
		}
	}
	return false
}
