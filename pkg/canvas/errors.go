package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when a purchase targets a cell that is already owned.
	ErrAlreadyExists = errors.New("pixel data already exists")

	// ErrNotFound is returned when a pixel query targets a cell that was never purchased.
	ErrNotFound = errors.New("pixel not found")

	// ErrIndexOutOfRange is returned for coordinates or slots outside the grid.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotInitialized is returned by a Redis-backed canvas before genesis has run.
	ErrNotInitialized = errors.New("canvas not initialized")

	// ErrAlreadyInitialized is returned when genesis runs a second time.
	ErrAlreadyInitialized = errors.New("canvas already initialized")

	// ErrInvalidColor is returned for colors outside the 24-bit RGB range.
	ErrInvalidColor = errors.New("invalid color")

	// ErrEmptyIdentity is returned when a purchase has no buyer identity.
	ErrEmptyIdentity = errors.New("buyer identity cannot be empty")

	// ErrEventNotPublished is returned by a Redis-backed Buy when the purchase
	// committed but its PurchaseEvent could not be published.
	ErrEventNotPublished = errors.New("purchase event not published")
)

// InvariantViolationError reports that the ledger and the color overlay
// diverged: a ledger insert succeeded but the matching overlay write did not.
// It is not recoverable; the canvas refuses further purchases.
type InvariantViolationError struct {
	Slot uint32
	Err  error
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation at slot %d: ledger and color overlay diverged: %v", e.Slot, e.Err)
}

func (e *InvariantViolationError) Unwrap() error {
	return e.Err
}

// IsAlreadyExists returns true if the purchase failed because the cell is owned.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsNotFound returns true if the cell has never been purchased.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvariantViolation returns true if err reports diverged stores.
func IsInvariantViolation(err error) bool {
	var ive *InvariantViolationError
	return errors.As(err, &ive)
}
