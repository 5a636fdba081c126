package stroke

import "errors"

var (
	// ErrEmptyCanvas is returned when a canvas has a zero or negative
	// dimension; nothing is encoded or drawn.
	ErrEmptyCanvas = errors.New("canvas has no area")

	ErrUnknownKind       = errors.New("unknown stroke kind")
	ErrInvalidCoordinate = errors.New("coordinate is not finite")
	ErrMissingField      = errors.New("missing stroke field")

	// ErrForeignBoard marks an inbound event addressed to another board.
	ErrForeignBoard = errors.New("event belongs to another board")
)
