package stroke

// LineCap selects how open path ends are drawn.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// Style is applied to the next stroked path.
type Style struct {
	Color string
	Width float64
	Cap   LineCap
}

// Surface is the set of drawing primitives the replay engine depends on.
// Paths are built with BeginPath, MoveTo, LineTo, Rect and Arc, and painted
// with Stroke.
type Surface interface {
	// Size returns the current canvas dimensions in pixels.
	Size() Size
	SetStyle(Style)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Rect adds a closed axis-aligned rectangle with its origin at (x, y).
	Rect(x, y, w, h float64)
	// Arc adds a circular arc around (cx, cy); angles are in radians.
	Arc(cx, cy, r, start, end float64)
	Stroke()
	// Clear removes every pixel drawn so far.
	Clear()
}

// Snapshot is an opaque capture of a surface's pixels.
type Snapshot any

// Snapshotter is implemented by surfaces that can capture and restore their
// pixels. Shape previews are only drawn on such surfaces.
type Snapshotter interface {
	Snapshot() Snapshot
	Restore(Snapshot)
}
