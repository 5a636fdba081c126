package stroke

import (
	"fmt"
	"math"
)

// Render paints r on s, denormalizing against the surface's current size.
// Rendering the same record twice on a surface of the same size produces
// the same output.
func Render(s Surface, r Record) error {
	if err := Validate(r); err != nil {
		return err
	}
	canvas := s.Size()
	if canvas.Empty() {
		return fmt.Errorf("render %s: %w (%gx%g)", r.Kind, ErrEmptyCanvas, canvas.W, canvas.H)
	}
	from, to := r.Points(canvas)
	draw(s, r.Kind, from, to, r.Color, r.Size)
	return nil
}

// draw paints one kind of geometry in pixel space. It is shared by replay
// and by the local shape preview.
func draw(s Surface, kind Kind, from, to Point, color string, size float64) {
	s.SetStyle(Style{Color: color, Width: size, Cap: CapRound})
	s.BeginPath()

	switch kind {
	case KindLine:
		s.MoveTo(from.X, from.Y)
		s.LineTo(to.X, to.Y)
	case KindRect:
		x, y, w, h := cornerRect(from, to)
		s.Rect(x, y, w, h)
	case KindCircle:
		s.Arc(from.X, from.Y, radius(from, to), 0, 2*math.Pi)
	}
	s.Stroke()
}

// cornerRect returns the rectangle spanned by two opposite corners as an
// origin and a non-negative extent.
func cornerRect(a, b Point) (x, y, w, h float64) {
	return math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Abs(b.X - a.X), math.Abs(b.Y - a.Y)
}

// radius treats the second point as a handle on the circle's edge.
func radius(center, handle Point) float64 {
	return math.Hypot(handle.X-center.X, handle.Y-center.Y)
}
