package order

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder.
var ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder constructor")

// Order is the aggregate root of a customer checkout. It owns the order
// status machine and the payment status side effects of cancellation.
//
// Order follows these invariants:
//   - Items are never empty and every quantity is positive
//   - Totals satisfy total = subtotal + fee + tax
//   - Status changes only through TransitionTo or FollowDelivery
//   - A cancelled order is always refunded
//
// version is the optimistic concurrency counter checked by repositories on
// every conditional update.
type Order struct {
	id              kernel.UUID
	customerID      kernel.UUID
	vendorID        kernel.UUID
	items           []Item
	deliveryAddress Address

	// pickupLocation is a snapshot of the vendor coordinates at checkout and
	// is the dispatch origin.
	pickupLocation kernel.GeoPoint

	status        Status
	paymentStatus PaymentStatus
	refundedFrom  PaymentStatus
	totals        Totals

	estimatedDeliveryTime *time.Time
	actualDeliveryTime    *time.Time
	createdAt             time.Time

	version int64
	guard   guard.ConstructorGuard
}

// Timeline groups the timestamps of a persisted order.
type Timeline struct {
	CreatedAt             time.Time
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time
}

// NewOrder creates an order at checkout. The order starts Pending with a
// Pending payment, and totals are computed from the items.
//
// Parameters:
//   - id, customerID, vendorID: valid identifiers
//   - items: at least one product line
//   - address: delivery destination
//   - pickup: vendor coordinates
//   - totals: built with NewTotals from the same items
//   - now: creation time
//
// Example:
//
//	totals, _ := order.NewTotals(items, fee, tax)
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, vendorID, items, address, vendorPoint, totals, time.Now())
func NewOrder(
	id, customerID, vendorID kernel.UUID,
	items []Item,
	address Address,
	pickup kernel.GeoPoint,
	totals Totals,
	now time.Time,
) (*Order, error) {
	return RestoreOrder(
		id, customerID, vendorID,
		items, address, pickup, totals,
		Pending, Payment{Status: PaymentPending},
		Timeline{CreatedAt: now.UTC()},
		0,
	)
}

// RestoreOrder reconstructs an Order from persistent storage, re-checking every
// invariant. Subtotal must match the items.
func RestoreOrder(
	id, customerID, vendorID kernel.UUID,
	items []Item,
	address Address,
	pickup kernel.GeoPoint,
	totals Totals,
	status Status,
	payment Payment,
	timeline Timeline,
	version int64,
) (*Order, error) {
	o := &Order{
		status:                status,
		paymentStatus:         payment.Status,
		refundedFrom:          payment.RefundedFrom,
		estimatedDeliveryTime: timeline.EstimatedDeliveryTime,
		actualDeliveryTime:    timeline.ActualDeliveryTime,
		createdAt:             timeline.CreatedAt,
		version:               version,
		guard:                 guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		setID(&o.id, id),
		setID(&o.customerID, customerID),
		setID(&o.vendorID, vendorID),
		o.setItems(items),
		o.setAddress(address),
		o.setPickup(pickup),
		o.setTotals(totals),
		status.Validate(),
		payment.Validate(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was created through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) VendorID() kernel.UUID {
	return o.vendorID
}

// Items returns a copy of the product lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

func (o *Order) DeliveryAddress() Address {
	return o.deliveryAddress
}

func (o *Order) PickupLocation() kernel.GeoPoint {
	return o.pickupLocation
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// Payment returns the payment status together with the status a
// cancellation refunded.
func (o *Order) Payment() Payment {
	return Payment{Status: o.paymentStatus, RefundedFrom: o.refundedFrom}
}

func (o *Order) Totals() Totals {
	return o.totals
}

func (o *Order) EstimatedDeliveryTime() *time.Time {
	return o.estimatedDeliveryTime
}

func (o *Order) ActualDeliveryTime() *time.Time {
	return o.actualDeliveryTime
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Version returns the optimistic concurrency counter of the last persisted state.
func (o *Order) Version() int64 {
	return o.version
}

// MarkPersisted advances the version after a successful conditional update.
func (o *Order) MarkPersisted() {
	o.version++
}

// Dispatchable reports whether a delivery may be created for the order.
func (o *Order) Dispatchable() bool {
	return o.status == Ready || o.status == Confirmed
}

// TransitionTo applies a transition requested directly on the order.
//
// Business rules:
//   - next must be allowed by Status.CanTransitionTo
//   - Cancelled also sets the payment status to Refunded
//   - Delivered records the actual delivery time
//
// Returns an *errs.InvalidTransitionError when the transition is not allowed.
//
// Example:
//
//	if err := o.TransitionTo(order.Confirmed, time.Now()); err != nil {
//	    return err
//	}
func (o *Order) TransitionTo(next Status, now time.Time) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if !o.status.CanTransitionTo(next) {
		return errs.NewInvalidTransitionError("order", o.status.String(), next.String())
	}

	o.apply(next, now)
	return nil
}

// FollowDelivery applies a transition derived from the paired delivery. It
// reports false when the order already is in next and nothing changed.
//
// A Cancelled order moving back to OutForDelivery means its failed delivery
// was dispatched again: the order is reopened and its payment returns to the
// status it had before the cancellation refunded it.
func (o *Order) FollowDelivery(next Status, now time.Time) (bool, error) {
	if err := next.Validate(); err != nil {
		return false, err
	}
	if !o.status.CanFollowDelivery(next) {
		return false, errs.NewInvalidTransitionError("order", o.status.String(), next.String())
	}
	if o.status == next {
		return false, nil
	}

	if o.status == Cancelled && next == OutForDelivery {
		o.reopenPayment()
	}

	o.apply(next, now)
	return true, nil
}

// ScheduleDelivery stores the estimated delivery time.
func (o *Order) ScheduleDelivery(eta time.Time) {
	eta = eta.UTC()
	o.estimatedDeliveryTime = &eta
}

func (o *Order) apply(next Status, now time.Time) {
	o.status = next

	switch next { //nolint:exhaustive // only terminal statuses carry side effects
	case Cancelled:
		if o.paymentStatus != PaymentRefunded {
			o.refundedFrom = o.paymentStatus
		}
		o.paymentStatus = PaymentRefunded
	case Delivered:
		at := now.UTC()
		o.actualDeliveryTime = &at
	}
}

func setID(dst *kernel.UUID, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	*dst = id
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setAddress(address Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	o.pickupLocation = pickup
	return nil
}

func (o *Order) setTotals(totals Totals) error {
	if err := totals.Validate(); err != nil {
		return err
	}
	expected, err := NewTotals(o.items, totals.Fee(), totals.Tax())
	if err != nil {
		return err
	}
	if !expected.Subtotal().Equal(totals.Subtotal()) {
		return errs.NewValueIsInvalidError("subtotal does not match items")
	}
	o.totals = totals
	return nil
}

func (o *Order) reopenPayment() {
	o.paymentStatus = o.refundedFrom
	if o.paymentStatus == PaymentUnknown {
		o.paymentStatus = PaymentPending
	}
	o.refundedFrom = PaymentUnknown
}
