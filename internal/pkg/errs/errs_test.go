package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("message names the id", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("delivery", "3f1c")

		assert.Equal(t, "delivery", err.ParamName)
		assert.Equal(t, "object not found: 3f1c", err.Error())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("cause is reported", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := errs.NewObjectNotFoundErrorWithCause("driver", "77", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "object not found: param is: driver, ID is: 77 (cause: connection reset)", err.Error())
	})

	t.Run("survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("load order: %w", errs.NewObjectNotFoundError("order", "1"))

		var target *errs.ObjectNotFoundError
		require.ErrorAs(t, wrapped, &target)
		assert.Equal(t, "order", target.ParamName)
	})
}

func TestValueErrors(t *testing.T) {
	cause := errors.New("bad format")

	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "required",
			err:      errs.NewValueIsRequiredError("reason"),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: reason",
		},
		{
			name:     "required with cause",
			err:      errs.NewValueIsRequiredErrorWithCause("reason", cause),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: reason (cause: bad format)",
		},
		{
			name:     "invalid",
			err:      errs.NewValueIsInvalidError("status"),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: status",
		},
		{
			name:     "invalid with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("status", cause),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: status (cause: bad format)",
		},
		{
			name:     "out of range",
			err:      errs.NewValueIsOutOfRangeError("quantity", 0, 1, "+Inf"),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 0 is quantity, min value is 1, max value is +Inf",
		},
		{
			name:     "out of range with cause",
			err:      errs.NewValueIsOutOfRangeErrorWithCause("lat", 91, -90, 90, cause),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 91 is lat, min value is -90, max value is 90 (cause: bad format)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.ErrorIs(t, tt.err, errs.ErrValidation)
		})
	}
}

func TestValueIsOutOfRangeError_FlattensNewlines(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("street", "Av. 24\nde Julho", 1, 200)

	assert.Contains(t, err.Error(), "Av. 24 de Julho")
	assert.NotContains(t, err.Error(), "\n")
}

func TestValueErrorsMatchValidation(t *testing.T) {
	require.ErrorIs(t, errs.NewValueIsRequiredError("failureReason"), errs.ErrValidation)
	require.ErrorIs(t, errs.NewValueIsInvalidError("status"), errs.ErrValidation)
	require.ErrorIs(t, errs.NewValueIsOutOfRangeError("lat", 91, -90, 90), errs.ErrValidation)
	assert.NotErrorIs(t, errs.NewObjectNotFoundError("order", "1"), errs.ErrValidation)
}

func TestIllegalStateError(t *testing.T) {
	t.Run("plain illegal state", func(t *testing.T) {
		err := errs.NewIllegalStateError("order", "42", "pending", "deliver")

		require.ErrorIs(t, err, errs.ErrIllegalState)
		assert.NotErrorIs(t, err, errs.ErrAlreadyTerminal)
		assert.Equal(t, "illegal state: cannot deliver order 42 in status pending", err.Error())
	})

	t.Run("already terminal", func(t *testing.T) {
		err := errs.NewAlreadyTerminalError("delivery", "7", "delivered", "cancel")

		require.ErrorIs(t, err, errs.ErrIllegalState)
		require.ErrorIs(t, err, errs.ErrAlreadyTerminal)
		assert.Contains(t, err.Error(), "already terminal")
	})

	t.Run("order not ready", func(t *testing.T) {
		err := errs.NewOrderNotReadyError("9", "pending")

		require.ErrorIs(t, err, errs.ErrOrderNotReady)
		assert.Equal(t, "order", err.Entity)
	})
}

func TestInvalidTransitionError(t *testing.T) {
	err := errs.NewInvalidTransitionError("delivery", "delivered", "delivered")

	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assert.Equal(t, "invalid status transition: delivery delivered -> delivered", err.Error())

	var target *errs.InvalidTransitionError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "delivered", target.From)
}

func TestNoCapacityError(t *testing.T) {
	t.Run("area search", func(t *testing.T) {
		err := errs.NewNoCapacityError("Baixa", 5000)

		require.ErrorIs(t, err, errs.ErrNoCapacity)
		assert.Equal(t, `no capacity: no available driver in area "Baixa" within 5000m`, err.Error())
	})

	t.Run("explicit driver", func(t *testing.T) {
		err := errs.NewDriverUnavailableError("d-1")

		require.ErrorIs(t, err, errs.ErrNoCapacity)
		assert.Equal(t, "no capacity: driver d-1 is not available", err.Error())
	})
}

func TestConflictError(t *testing.T) {
	err := errs.NewConflictError("order", "3")

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, "concurrent modification conflict: order 3 was modified concurrently", err.Error())
}
