package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation groups every malformed-input error. ValueIsRequiredError,
	// ValueIsInvalidError and ValueIsOutOfRangeError all match it with errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")

	// ErrIllegalState is returned when an entity is not in a state that permits
	// the requested operation.
	ErrIllegalState = errors.New("illegal state")

	// ErrAlreadyTerminal narrows ErrIllegalState: the entity already reached a
	// final status.
	ErrAlreadyTerminal = errors.New("already terminal")

	// ErrOrderNotReady narrows ErrIllegalState: the order cannot be dispatched yet.
	ErrOrderNotReady = errors.New("order not ready")

	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoCapacity        = errors.New("no capacity")
	ErrConflict          = errors.New("concurrent modification conflict")
)

// ObjectNotFoundError reports an unknown identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, sanitize(e.ID), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

func (e *ValueIsInvalidError) Is(target error) bool {
	return target == ErrValidation
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

func (e *ValueIsOutOfRangeError) Is(target error) bool {
	return target == ErrValidation
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

func (e *ValueIsRequiredError) Is(target error) bool {
	return target == ErrValidation
}

// IllegalStateError reports an operation that the entity's current state does
// not permit. Reason, when set, is one of ErrAlreadyTerminal or ErrOrderNotReady.
type IllegalStateError struct {
	Entity    string
	ID        any
	State     string
	Operation string
	Reason    error
}

func NewIllegalStateError(entity string, id any, state, operation string) *IllegalStateError {
	return &IllegalStateError{Entity: entity, ID: id, State: state, Operation: operation}
}

func NewAlreadyTerminalError(entity string, id any, state, operation string) *IllegalStateError {
	return &IllegalStateError{Entity: entity, ID: id, State: state, Operation: operation, Reason: ErrAlreadyTerminal}
}

func NewOrderNotReadyError(id any, state string) *IllegalStateError {
	return &IllegalStateError{Entity: "order", ID: id, State: state, Operation: "dispatch", Reason: ErrOrderNotReady}
}

func (e *IllegalStateError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s %s %v in status %s", ErrIllegalState, e.Operation, e.Entity, e.ID, e.State)
	if e.Reason != nil {
		msg += fmt.Sprintf(" (%v)", e.Reason)
	}
	return msg
}

func (e *IllegalStateError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrIllegalState, e.Reason}
	}
	return []error{ErrIllegalState}
}

// InvalidTransitionError reports a from→to pair rejected by a state machine.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func NewInvalidTransitionError(entity, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s %s -> %s", ErrInvalidTransition, e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NoCapacityError reports that no eligible driver could be reserved. DriverID
// is set when a specific driver was requested.
type NoCapacityError struct {
	AreaTag           string
	MaxDistanceMeters float64
	DriverID          string
}

func NewNoCapacityError(areaTag string, maxDistanceMeters float64) *NoCapacityError {
	return &NoCapacityError{AreaTag: areaTag, MaxDistanceMeters: maxDistanceMeters}
}

func NewDriverUnavailableError(driverID string) *NoCapacityError {
	return &NoCapacityError{DriverID: driverID}
}

func (e *NoCapacityError) Error() string {
	if e.DriverID != "" {
		return fmt.Sprintf("%s: driver %s is not available", ErrNoCapacity, e.DriverID)
	}
	return fmt.Sprintf("%s: no available driver in area %q within %.0fm", ErrNoCapacity, e.AreaTag, e.MaxDistanceMeters)
}

func (e *NoCapacityError) Unwrap() error {
	return ErrNoCapacity
}

// ConflictError reports a lost compare-and-set against a concurrent writer.
type ConflictError struct {
	Entity string
	ID     any
}

func NewConflictError(entity string, id any) *ConflictError {
	return &ConflictError{Entity: entity, ID: id}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %v was modified concurrently", ErrConflict, e.Entity, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func sanitize(v any) string {
	s := fmt.Sprint(v)
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
