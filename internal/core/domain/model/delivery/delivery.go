package delivery

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// MaxRedispatches bounds how many times a failed delivery can be dispatched again.
const MaxRedispatches = 1

// ErrDeliveryIsNotConstructed is returned when a Delivery was not created
// through NewDelivery or RestoreDelivery.
var ErrDeliveryIsNotConstructed = errors.New("delivery must be created via NewDelivery or RestoreDelivery constructor")

// Delivery binds one order to one driver for the trip from pickup to dropoff.
//
// Invariants:
//   - orderID is unique across deliveries
//   - a Failed delivery always carries a failure reason
//   - cancelled implies Failed
//   - redispatchCount never exceeds MaxRedispatches
type Delivery struct {
	id       kernel.UUID
	orderID  kernel.UUID
	driverID kernel.UUID
	status   Status

	currentLocation kernel.GeoPoint
	pickupLocation  kernel.GeoPoint
	dropoffLocation kernel.GeoPoint

	estimatedTime   time.Time
	failureReason   string
	cancelled       bool
	redispatchCount int

	createdAt   time.Time
	deliveredAt *time.Time

	version int64
	guard   guard.ConstructorGuard
}

// Route groups the coordinates of a delivery.
type Route struct {
	Pickup  kernel.GeoPoint
	Dropoff kernel.GeoPoint
	Current kernel.GeoPoint
}

// Outcome groups the failure bookkeeping of a persisted delivery.
type Outcome struct {
	FailureReason   string
	Cancelled       bool
	RedispatchCount int
}

// Timeline groups the timestamps of a persisted delivery.
type Timeline struct {
	CreatedAt     time.Time
	EstimatedTime time.Time
	DeliveredAt   *time.Time
}

// NewDelivery creates a delivery in PickedUp status. The current location
// starts at the driver's position.
//
// Example:
//
//	d, err := delivery.NewDelivery(kernel.NewUUID(), order.ID(), driver.ID(),
//	    delivery.Route{Pickup: vendorPoint, Dropoff: customerPoint, Current: driver.Location()},
//	    now.Add(eta), now)
func NewDelivery(id, orderID, driverID kernel.UUID, route Route, estimatedTime, now time.Time) (*Delivery, error) {
	return RestoreDelivery(
		id, orderID, driverID, route, PickedUp, Outcome{},
		Timeline{CreatedAt: now.UTC(), EstimatedTime: estimatedTime.UTC()},
		0,
	)
}

// RestoreDelivery reconstructs a Delivery from persistent storage.
func RestoreDelivery(
	id, orderID, driverID kernel.UUID,
	route Route,
	status Status,
	outcome Outcome,
	timeline Timeline,
	version int64,
) (*Delivery, error) {
	d := &Delivery{
		id:              id,
		orderID:         orderID,
		driverID:        driverID,
		status:          status,
		currentLocation: route.Current,
		pickupLocation:  route.Pickup,
		dropoffLocation: route.Dropoff,
		estimatedTime:   timeline.EstimatedTime,
		failureReason:   outcome.FailureReason,
		cancelled:       outcome.Cancelled,
		redispatchCount: outcome.RedispatchCount,
		createdAt:       timeline.CreatedAt,
		deliveredAt:     timeline.DeliveredAt,
		version:         version,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		driverID.Validate(),
		route.Pickup.Validate(),
		route.Dropoff.Validate(),
		route.Current.Validate(),
		status.Validate(),
		d.validateOutcome(),
	); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Delivery) ID() kernel.UUID                  { return d.id }
func (d *Delivery) OrderID() kernel.UUID             { return d.orderID }
func (d *Delivery) DriverID() kernel.UUID            { return d.driverID }
func (d *Delivery) Status() Status                   { return d.status }
func (d *Delivery) CurrentLocation() kernel.GeoPoint { return d.currentLocation }
func (d *Delivery) PickupLocation() kernel.GeoPoint  { return d.pickupLocation }
func (d *Delivery) DropoffLocation() kernel.GeoPoint { return d.dropoffLocation }
func (d *Delivery) EstimatedTime() time.Time         { return d.estimatedTime }
func (d *Delivery) FailureReason() string            { return d.failureReason }
func (d *Delivery) Cancelled() bool                  { return d.cancelled }
func (d *Delivery) RedispatchCount() int             { return d.redispatchCount }
func (d *Delivery) CreatedAt() time.Time             { return d.createdAt }
func (d *Delivery) DeliveredAt() *time.Time          { return d.deliveredAt }
func (d *Delivery) Version() int64                   { return d.version }

// MarkPersisted advances the version after a successful conditional update.
func (d *Delivery) MarkPersisted() {
	d.version++
}

// IsActive reports whether the delivery still holds its driver.
func (d *Delivery) IsActive() bool {
	return !d.status.IsTerminal()
}

// TransitionTo applies a status change requested by a caller.
//
// Business rules:
//   - Failed requires a non-blank reason; a missing reason is a validation
//     error reported before the transition itself is checked
//   - next must be allowed by Status.CanTransitionTo, otherwise an
//     *errs.InvalidTransitionError is returned and nothing changes
//   - Delivered records the delivery time
func (d *Delivery) TransitionTo(next Status, reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if next == Failed && reason == "" {
		return errs.NewValueIsRequiredError("failureReason")
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if !d.status.CanTransitionTo(next) {
		return errs.NewInvalidTransitionError("delivery", d.status.String(), next.String())
	}

	d.apply(next, reason, false, now)
	return nil
}

// Cancel forces a non-terminal delivery to Failed and flags it as cancelled,
// which rules out any later redispatch.
func (d *Delivery) Cancel(reason string, now time.Time) error {
	if d.status.IsTerminal() {
		return errs.NewAlreadyTerminalError("delivery", d.id, d.status.String(), "cancel")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}

	d.apply(Failed, reason, true, now)
	return nil
}

// FollowOrder applies a status derived from the paired order. cancelled marks
// a failure caused by an order cancellation. It reports false when nothing
// changed.
func (d *Delivery) FollowOrder(next Status, reason string, cancelled bool, now time.Time) (bool, error) {
	if err := next.Validate(); err != nil {
		return false, err
	}
	if !d.status.CanFollowOrder(next) {
		return false, errs.NewInvalidTransitionError("delivery", d.status.String(), next.String())
	}
	if d.status == next {
		return false, nil
	}

	reason = strings.TrimSpace(reason)
	if next == Failed && reason == "" {
		reason = "order cancelled"
	}

	d.apply(next, reason, cancelled, now)
	return true, nil
}

// CheckReassign reports whether the delivery may be handed to another driver.
//
// Rules:
//   - Delivered deliveries are terminal (AlreadyTerminal)
//   - cancelled deliveries can never be dispatched again
//   - a failed delivery can be dispatched again at most MaxRedispatches times
func (d *Delivery) CheckReassign() error {
	switch {
	case d.status == Delivered:
		return errs.NewAlreadyTerminalError("delivery", d.id, d.status.String(), "reassign")
	case d.status == Failed && d.cancelled:
		return errs.NewIllegalStateError("delivery", d.id, "cancelled", "reassign")
	case d.status == Failed && d.redispatchCount >= MaxRedispatches:
		return errs.NewIllegalStateError("delivery", d.id, d.status.String(), "redispatch again")
	}
	return nil
}

// Reassign hands the delivery to driverID and resets it to PickedUp with a
// new estimate. Reassigning a failed delivery counts as a redispatch and
// clears the failure reason.
func (d *Delivery) Reassign(driverID kernel.UUID, driverLocation kernel.GeoPoint, estimatedTime time.Time) error {
	if err := d.CheckReassign(); err != nil {
		return err
	}
	if err := errors.Join(driverID.Validate(), driverLocation.Validate()); err != nil {
		return err
	}

	if d.status == Failed {
		d.redispatchCount++
		d.failureReason = ""
	}

	d.status = PickedUp
	d.driverID = driverID
	d.currentLocation = driverLocation
	d.estimatedTime = estimatedTime.UTC()
	return nil
}

// TrackLocation moves the current position of an active delivery.
func (d *Delivery) TrackLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	if !d.IsActive() {
		return errs.NewAlreadyTerminalError("delivery", d.id, d.status.String(), "track")
	}
	d.currentLocation = point
	return nil
}

// MinutesSinceCreation is the wall-clock duration of the delivery used for
// the driver's average delivery time.
func (d *Delivery) MinutesSinceCreation(now time.Time) float64 {
	minutes := now.Sub(d.createdAt).Minutes()
	if minutes < 0 {
		return 0
	}
	return minutes
}

func (d *Delivery) apply(next Status, reason string, cancelled bool, now time.Time) {
	d.status = next

	switch next { //nolint:exhaustive // only terminal statuses carry side effects
	case Delivered:
		at := now.UTC()
		d.deliveredAt = &at
		d.currentLocation = d.dropoffLocation
	case Failed:
		d.failureReason = reason
		d.cancelled = cancelled
	}
}

func (d *Delivery) validateOutcome() error {
	var err error
	switch {
	case d.status == Failed && strings.TrimSpace(d.failureReason) == "":
		err = errs.NewValueIsRequiredError("failureReason")
	case d.cancelled && d.status != Failed:
		err = errs.NewValueIsInvalidError("cancelled delivery must be failed")
	case d.redispatchCount < 0 || d.redispatchCount > MaxRedispatches:
		err = errs.NewValueIsOutOfRangeError("redispatchCount", d.redispatchCount, 0, MaxRedispatches)
	}
	return err
}
