package floorplan

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by FloorPlan matches exactly one of these
// with errors.Is.
var (
	ErrLoad              = errors.New("floor plan load failed")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSave              = errors.New("floor plan save failed")
)

// ===== Load =====
var (
	ErrNotLoaded      = fmt.Errorf("%w: floor plan not loaded", ErrLoad)
	ErrAlreadyLoaded  = fmt.Errorf("%w: floor plan already loaded", ErrLoad)
	ErrLoadInProgress = fmt.Errorf("%w: load already in progress", ErrLoad)
)

// ===== Reference / validation =====
var (
	ErrUnknownTable      = fmt.Errorf("%w: unknown table", ErrInvalidReference)
	ErrInvalidDimensions = fmt.Errorf("%w: width and height must be positive", ErrInvalidReference)
	ErrInvalidPartySize  = fmt.Errorf("%w: party size must be positive", ErrInvalidReference)
	ErrPlacementRejected = fmt.Errorf("%w: placement rejected", ErrInvalidReference)
)

// ===== Transitions =====
var (
	ErrIllegalStatus   = fmt.Errorf("%w: status change not allowed", ErrInvalidTransition)
	ErrAlreadyAssigned = fmt.Errorf("%w: table already occupied", ErrInvalidTransition)
	ErrNotOccupied     = fmt.Errorf("%w: table is not occupied", ErrInvalidTransition)
	ErrDragInProgress  = fmt.Errorf("%w: another table is being dragged", ErrInvalidTransition)
	ErrNotDragging     = fmt.Errorf("%w: no drag in progress", ErrInvalidTransition)
)

// SaveError is returned when the gateway rejects a save. The in-memory plan
// stays dirty and the caller may retry.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSave, e.Err)
}

func (e *SaveError) Unwrap() []error { return []error{ErrSave, e.Err} }

func (e *SaveError) Retryable() bool { return true }

func unknownTable(id string) error {
	return fmt.Errorf("%w %q", ErrUnknownTable, id)
}
