package workflow

import (
	"errors"
	"fmt"

	"github.com/nurpe/staffing-contracts/internal/registry"
)

var (
	ErrUnknownContractType = registry.ErrUnknownContractType
	ErrValidationFailed    = registry.ErrValidationFailed
	ErrInvalidBookingState = errors.New("invalid booking state")
	ErrContractLocked      = errors.New("contract locked")
	ErrApplicationNotOpen  = errors.New("application not open")
	ErrAlreadyTerminal     = errors.New("already terminal")
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrNotFound is validation-class: a missing id is never an implicit no-op.
	ErrNotFound = fmt.Errorf("%w: not found", ErrValidationFailed)
)

// Retryable reports whether the caller may re-run the operation against
// fresh state. Every other kind is terminal for the request.
func Retryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// Kind returns the stable name of the error kind, or "Internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownContractType):
		return "UnknownContractType"
	case errors.Is(err, ErrInvalidBookingState):
		return "InvalidBookingState"
	case errors.Is(err, ErrContractLocked):
		return "ContractLocked"
	case errors.Is(err, ErrApplicationNotOpen):
		return "ApplicationNotOpen"
	case errors.Is(err, ErrAlreadyTerminal):
		return "AlreadyTerminal"
	case errors.Is(err, ErrConcurrencyConflict):
		return "ConcurrencyConflict"
	case errors.Is(err, ErrValidationFailed):
		return "ValidationFailed"
	default:
		return "Internal"
	}
}

func notFound(entity string, id fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}
