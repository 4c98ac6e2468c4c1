// Package errs holds the error types shared by the fulfillment engine.
//
// Value errors (ValueIsRequired, ValueIsInvalid, ValueIsOutOfRange) also match
// ErrValidation, so callers can classify any bad input with one errors.Is.
// The remaining types describe why an operation was refused:
//   - ObjectNotFoundError: an id that does not exist
//   - IllegalStateError: the entity cannot take the operation now; its
//     AlreadyTerminal and OrderNotReady variants match their own sentinels
//   - InvalidTransitionError: a status change outside the state machine
//   - NoCapacityError: no eligible driver, or the requested driver is busy
//   - ConflictError: a concurrent writer won the conditional update
//
// Every type unwraps to its sentinel and, when present, to its cause.
package errs
