package sales

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports malformed quantities, prices or item names.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound reports a missing sale, inventory row or member.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientInventory reports a quantity above what the item can still supply.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrBelowCommitted reports an inventory amount smaller than the quantity already sold.
	ErrBelowCommitted = errors.New("inventory amount below committed sales")
)

// InsufficientInventoryError carries the quantity still available for display.
type InsufficientInventoryError struct {
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %d, available %d", e.ItemName, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

// BelowCommittedError is returned when an inventory amount would drop below
// the sum of existing purchase quantities.
type BelowCommittedError struct {
	ItemName  string
	Amount    int
	Committed int
}

func (e *BelowCommittedError) Error() string {
	return fmt.Sprintf("inventory amount %d for %s is below the %d units already sold", e.Amount, e.ItemName, e.Committed)
}

func (e *BelowCommittedError) Is(target error) bool {
	return target == ErrBelowCommitted
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
