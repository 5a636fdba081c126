package stroke

import (
	"context"
	"fmt"
)

// State is the phase of the current gesture.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Emitter receives every record produced by local input, in order.
type Emitter interface {
	EmitStroke(ctx context.Context, r Record) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, r Record) error

func (f EmitterFunc) EmitStroke(ctx context.Context, r Record) error { return f(ctx, r) }

// gesture holds what a pointer-down latched for the rest of the drag.
type gesture struct {
	kind  Kind
	color string
	size  float64
	start Point
	last  Point

	snapshot Snapshot
	preview  bool
}

// Session owns the gesture state of one local participant on one surface.
// A Session is not safe for concurrent use; callers serialize pointer
// input and inbound events.
type Session struct {
	surface Surface
	emitter Emitter
	board   string

	tool  Kind
	color string
	size  float64

	state State
	g     gesture
}

// Option configures a Session.
type Option func(*Session)

// WithBoard sets the board identity stamped on outbound records and used
// to filter inbound ones.
func WithBoard(id string) Option { return func(s *Session) { s.board = id } }

// WithTool sets the initial tool. The default is KindLine.
func WithTool(k Kind) Option { return func(s *Session) { s.tool = k } }

// WithColor sets the initial stroke color. The default is black.
func WithColor(c string) Option { return func(s *Session) { s.color = c } }

// WithSize sets the initial stroke width in pixels. The default is 3.
func WithSize(px float64) Option { return func(s *Session) { s.size = px } }

// NewSession returns an idle session drawing on surface. A nil emitter
// keeps every stroke local.
func NewSession(surface Surface, emitter Emitter, opts ...Option) *Session {
	s := &Session{
		surface: surface,
		emitter: emitter,
		tool:    KindLine,
		color:   "#000000",
		size:    3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board returns the session's board identity.
func (s *Session) Board() string { return s.board }

// State returns the current gesture phase.
func (s *Session) State() State { return s.state }

// Tool returns the tool used by the next gesture.
func (s *Session) Tool() Kind { return s.tool }

// SetTool selects the tool for the next gesture. Unknown kinds are rejected.
func (s *Session) SetTool(k Kind) error {
	if !k.Valid() {
		return fmt.Errorf("set tool: %w %q", ErrUnknownKind, k)
	}
	s.tool = k
	return nil
}

// SetColor sets the color of the next gesture.
func (s *Session) SetColor(c string) { s.color = c }

// SetSize sets the stroke width of the next gesture. Sizes are pixels on
// every canvas and are not scaled.
func (s *Session) SetSize(px float64) { s.size = px }

// Accepts reports whether an event tagged with board applies to this
// session. An empty id on either side matches everything.
func (s *Session) Accepts(board string) bool {
	return s.board == "" || board == "" || board == s.board
}

// PointerDown starts a gesture at p. A gesture already in progress is
// abandoned first.
func (s *Session) PointerDown(p Point) {
	if s.state == Dragging {
		s.PointerLeave()
	}

	s.g = gesture{
		kind:  s.tool,
		color: s.color,
		size:  s.size,
		start: p,
		last:  p,
	}
	if s.g.kind.Shape() {
		if snap, ok := s.surface.(Snapshotter); ok {
			s.g.snapshot = snap.Snapshot()
			s.g.preview = true
		}
	}
	s.state = Dragging
}

// PointerMove advances the gesture. Freehand gestures encode, render and
// emit one segment per call; shapes only redraw the local preview.
func (s *Session) PointerMove(ctx context.Context, p Point) error {
	if s.state != Dragging {
		return nil
	}
	s.g.last = p

	if s.g.kind.Shape() {
		s.drawPreview()
		return nil
	}

	r, err := s.encode(s.g.start, p)
	if err != nil {
		return err
	}
	s.g.start = p
	return s.paintAndEmit(ctx, r)
}

// PointerUp ends the gesture. A shape is encoded, rendered and emitted
// exactly once; a freehand gesture emits nothing further.
func (s *Session) PointerUp(ctx context.Context, p Point) error {
	if s.state != Dragging {
		return nil
	}
	g := s.g
	s.reset()

	if !g.kind.Shape() {
		return nil
	}
	if g.preview {
		s.surface.(Snapshotter).Restore(g.snapshot)
	}
	r, err := Encode(g.kind, g.start, p, g.color, g.size, s.surface.Size())
	if err != nil {
		return err
	}
	r.BoardID = s.board
	return s.paintAndEmit(ctx, r)
}

// PointerLeave abandons the gesture without emitting anything. A shape
// preview is erased; segments already emitted for a freehand gesture stay.
func (s *Session) PointerLeave() {
	if s.state != Dragging {
		return
	}
	if s.g.preview {
		s.surface.(Snapshotter).Restore(s.g.snapshot)
	}
	s.reset()
}

// Apply replays an inbound record. Records for another board are refused
// with ErrForeignBoard. While a shape preview is on screen the record is
// painted beneath it, so the next preview frame does not erase it.
func (s *Session) Apply(r Record) error {
	if err := Validate(r); err != nil {
		return err
	}
	if !s.Accepts(r.BoardID) {
		return fmt.Errorf("%w: %q", ErrForeignBoard, r.BoardID)
	}
	if !s.previewing() {
		return Render(s.surface, r)
	}

	snap := s.surface.(Snapshotter)
	snap.Restore(s.g.snapshot)
	err := Render(s.surface, r)
	s.g.snapshot = snap.Snapshot()
	s.drawPreview()
	return err
}

// Clear wipes the surface for a clear event addressed to board.
func (s *Session) Clear(board string) error {
	if !s.Accepts(board) {
		return fmt.Errorf("%w: %q", ErrForeignBoard, board)
	}
	s.surface.Clear()
	if s.previewing() {
		s.g.snapshot = s.surface.(Snapshotter).Snapshot()
		s.drawPreview()
	}
	return nil
}

func (s *Session) encode(from, to Point) (Record, error) {
	r, err := Encode(s.g.kind, from, to, s.g.color, s.g.size, s.surface.Size())
	if err != nil {
		return Record{}, err
	}
	r.BoardID = s.board
	return r, nil
}

func (s *Session) paintAndEmit(ctx context.Context, r Record) error {
	if err := Render(s.surface, r); err != nil {
		return err
	}
	if s.emitter == nil {
		return nil
	}
	if err := s.emitter.EmitStroke(ctx, r); err != nil {
		return fmt.Errorf("emit %s: %w", r.Kind, err)
	}
	return nil
}

// previewing reports whether a shape preview may currently be on screen.
func (s *Session) previewing() bool {
	return s.state == Dragging && s.g.preview
}

// drawPreview is a no-op on surfaces that cannot snapshot; those only ever
// show the final shape.
func (s *Session) drawPreview() {
	if !s.g.preview {
		return
	}
	s.surface.(Snapshotter).Restore(s.g.snapshot)
	if s.g.last == s.g.start {
		return
	}
	draw(s.surface, s.g.kind, s.g.start, s.g.last, s.g.color, s.g.size)
}

func (s *Session) reset() {
	s.state = Idle
	s.g = gesture{}
}
