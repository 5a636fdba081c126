// Package stroke encodes pointer gestures as resolution-independent stroke
// records and replays records onto a drawing surface.
//
// Coordinates travel normalized: x values are fractions of the emitting
// canvas width and y values fractions of its height. A receiver multiplies
// them by its own current canvas size. Geometry therefore survives a change
// of resolution but not a change of aspect ratio: a circle drawn on a 4:3
// canvas and replayed on a 16:9 canvas is stretched horizontally. Stroke
// width is sent in raw pixels and is not rescaled on receipt.
package stroke

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the geometry carried by a Record.
type Kind string

const (
	KindLine   Kind = "line"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
)

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindLine, KindRect, KindCircle:
		return true
	default:
		return false
	}
}

// Shape reports whether k is previewed during a drag and emitted once at
// gesture end.
func (k Kind) Shape() bool {
	return k == KindRect || k == KindCircle
}

// Point is a position in pixel space.
type Point struct {
	X float64
	Y float64
}

// Size holds canvas dimensions in pixels.
type Size struct {
	W float64
	H float64
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool {
	return !(s.W > 0 && s.H > 0)
}

// Record is the unit of transmission and replay: one freehand segment or one
// finished shape. Records are values; copy freely.
type Record struct {
	Kind    Kind    `json:"kind"`
	X0      float64 `json:"x0"`
	Y0      float64 `json:"y0"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	Color   string  `json:"color"`
	Size    float64 `json:"size"`
	BoardID string  `json:"boardId,omitempty"`
}

// Encode normalizes a pixel-space segment against the emitter's canvas.
// Points outside the canvas are kept as-is and produce values outside [0,1].
func Encode(kind Kind, from, to Point, color string, size float64, canvas Size) (Record, error) {
	if canvas.Empty() {
		return Record{}, fmt.Errorf("encode %s: %w (%gx%g)", kind, ErrEmptyCanvas, canvas.W, canvas.H)
	}
	if !kind.Valid() {
		return Record{}, fmt.Errorf("encode: %w %q", ErrUnknownKind, kind)
	}
	return Record{
		Kind:  kind,
		X0:    from.X / canvas.W,
		Y0:    from.Y / canvas.H,
		X1:    to.X / canvas.W,
		Y1:    to.Y / canvas.H,
		Color: color,
		Size:  size,
	}, nil
}

// Points denormalizes the record against the receiver's canvas.
func (r Record) Points(canvas Size) (from, to Point) {
	from = Point{X: r.X0 * canvas.W, Y: r.Y0 * canvas.H}
	to = Point{X: r.X1 * canvas.W, Y: r.Y1 * canvas.H}
	return from, to
}

// Validate checks the fields a renderer depends on. Color and size are not
// inspected; a bad color or a non-positive width renders however the
// surface renders it.
func Validate(r Record) error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownKind, r.Kind)
	}
	for _, v := range [...]float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidCoordinate, v)
		}
	}
	return nil
}

// wireRecord accepts the canonical shape and the superseded draft shape
// ("type" instead of "kind", "board_id" instead of "boardId", size as the
// raw value of an input field).
type wireRecord struct {
	Kind       *Kind    `json:"kind"`
	Type       *Kind    `json:"type"`
	X0         *float64 `json:"x0"`
	Y0         *float64 `json:"y0"`
	X1         *float64 `json:"x1"`
	Y1         *float64 `json:"y1"`
	Color      *string  `json:"color"`
	Size       *number  `json:"size"`
	BoardID    string   `json:"boardId"`
	OldBoardID string   `json:"board_id"`
}

// UnmarshalJSON decodes a record and rejects payloads missing any
// geometry, color or size field.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.X0 == nil:
		return fmt.Errorf("%w: x0", ErrMissingField)
	case w.Y0 == nil:
		return fmt.Errorf("%w: y0", ErrMissingField)
	case w.X1 == nil:
		return fmt.Errorf("%w: x1", ErrMissingField)
	case w.Y1 == nil:
		return fmt.Errorf("%w: y1", ErrMissingField)
	case w.Color == nil:
		return fmt.Errorf("%w: color", ErrMissingField)
	case w.Size == nil:
		return fmt.Errorf("%w: size", ErrMissingField)
	}

	kind := KindLine
	if w.Kind != nil {
		kind = *w.Kind
	} else if w.Type != nil {
		kind = *w.Type
	}

	board := w.BoardID
	if board == "" {
		board = w.OldBoardID
	}

	*r = Record{
		Kind:    kind,
		X0:      *w.X0,
		Y0:      *w.Y0,
		X1:      *w.X1,
		Y1:      *w.Y1,
		Color:   *w.Color,
		Size:    float64(*w.Size),
		BoardID: board,
	}
	return nil
}

// number decodes a JSON number or a string holding one.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("size: %w", err)
	}
	*n = number(v)
	return nil
}
