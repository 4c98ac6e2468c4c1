package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// PaymentStatus mirrors the payment state reported by the payment provider.
// The fulfillment engine only ever changes it on cancellation (Refunded) and
// on redispatch of a cancelled order (back to the status before the refund).
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	PaymentPaid
	PaymentFailed
	PaymentRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:  "unknown",
		PaymentPending:  "pending",
		PaymentPaid:     "paid",
		PaymentFailed:   "failed",
		PaymentRefunded: "refunded",
	}
}

// ParsePaymentStatus converts the persisted name back to a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for s, str := range getPaymentStatusStrings() {
		if s != PaymentUnknown && str == value {
			return s, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause(
		"paymentStatus",
		fmt.Errorf("%q is not a valid payment status", value),
	)
}

func (s PaymentStatus) Validate() error {
	if s <= PaymentUnknown || s > PaymentRefunded {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// Payment is the persisted payment state of an order. RefundedFrom is the
// status a cancellation replaced with Refunded; it is PaymentUnknown while the
// order is not cancelled.
type Payment struct {
	Status       PaymentStatus
	RefundedFrom PaymentStatus
}

func (p Payment) Validate() error {
	if err := p.Status.Validate(); err != nil {
		return err
	}
	if p.RefundedFrom == PaymentUnknown {
		return nil
	}
	if p.RefundedFrom == PaymentRefunded {
		return errs.NewValueIsInvalidErrorWithCause("refundedFrom", fmt.Errorf("%s cannot be refunded again", p.RefundedFrom))
	}
	if err := p.RefundedFrom.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("refundedFrom", err)
	}
	return nil
}
