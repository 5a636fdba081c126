package surface

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

type svgPath struct {
	d     string
	style string
}

// SVG records stroked paths and writes them out as an SVG document.
type SVG struct {
	w, h  int
	style stroke.Style

	path  strings.Builder
	paths []svgPath
}

var (
	_ stroke.Surface     = (*SVG)(nil)
	_ stroke.Snapshotter = (*SVG)(nil)
)

// NewSVG returns an empty w×h document.
func NewSVG(w, h int) *SVG {
	return &SVG{w: w, h: h}
}

// Size returns the document size in user units.
func (s *SVG) Size() stroke.Size { return stroke.Size{W: float64(s.w), H: float64(s.h)} }

// SetStyle sets the style recorded with the next stroked path.
func (s *SVG) SetStyle(st stroke.Style) { s.style = st }

// BeginPath discards any pending path data.
func (s *SVG) BeginPath() { s.path.Reset() }

// MoveTo starts a subpath.
func (s *SVG) MoveTo(x, y float64) { s.cmd("M", x, y) }

// LineTo adds a straight segment.
func (s *SVG) LineTo(x, y float64) {
	if s.path.Len() == 0 {
		s.MoveTo(x, y)
		return
	}
	s.cmd("L", x, y)
}

// Rect adds a closed rectangle subpath.
func (s *SVG) Rect(x, y, w, h float64) {
	s.cmd("M", x, y)
	s.cmd("h", w)
	s.cmd("v", h)
	s.cmd("h", -w)
	s.path.WriteString(" Z")
}

// Arc follows canvas semantics: angles grow clockwise on screen and a line
// joins the current point to the start of the arc.
func (s *SVG) Arc(cx, cy, r, start, end float64) {
	at := func(a float64) (float64, float64) {
		return cx + r*math.Cos(a), cy + r*math.Sin(a)
	}
	x0, y0 := at(start)
	if s.path.Len() == 0 {
		s.cmd("M", x0, y0)
	} else {
		s.cmd("L", x0, y0)
	}

	span := end - start
	if span >= 2*math.Pi {
		// A single SVG arc cannot close on itself.
		mx, my := at(start + math.Pi)
		s.cmd("A", r, r, 0, 1, 1, mx, my)
		s.cmd("A", r, r, 0, 1, 1, x0, y0)
		return
	}
	large := 0.0
	if span > math.Pi {
		large = 1
	}
	x1, y1 := at(end)
	s.cmd("A", r, r, 0, large, 1, x1, y1)
}

// Stroke records the current path with the current style.
func (s *SVG) Stroke() {
	if s.path.Len() == 0 {
		return
	}
	s.paths = append(s.paths, svgPath{d: s.path.String(), style: svgStyle(s.style)})
	s.path.Reset()
}

// Clear drops every recorded path.
func (s *SVG) Clear() {
	s.paths = nil
	s.path.Reset()
}

// Snapshot returns the number of paths recorded so far.
func (s *SVG) Snapshot() stroke.Snapshot { return len(s.paths) }

// Restore truncates the document back to a snapshot.
func (s *SVG) Restore(snap stroke.Snapshot) {
	n, ok := snap.(int)
	if !ok || n > len(s.paths) {
		return
	}
	s.paths = s.paths[:n]
}

// Len returns the number of stroked paths in the document.
func (s *SVG) Len() int { return len(s.paths) }

// WriteTo writes the document to w.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	canvas := svg.New(cw)
	canvas.Start(s.w, s.h)
	for _, p := range s.paths {
		canvas.Path(p.d, p.style)
	}
	canvas.End()
	return cw.n, cw.err
}

func (s *SVG) cmd(op string, args ...float64) {
	if s.path.Len() > 0 {
		s.path.WriteByte(' ')
	}
	s.path.WriteString(op)
	for i, a := range args {
		if i > 0 {
			s.path.WriteByte(' ')
		}
		s.path.WriteString(strconv.FormatFloat(a, 'f', -1, 64))
	}
}

func svgStyle(st stroke.Style) string {
	c := ParseColor(st.Color)
	linecap := "butt"
	switch st.Cap {
	case stroke.CapRound:
		linecap = "round"
	case stroke.CapSquare:
		linecap = "square"
	}
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-linecap:%s",
		hexColor(c), strconv.FormatFloat(st.Width, 'f', -1, 64), linecap)
	if c.A != 0xff {
		style += ";stroke-opacity:" + strconv.FormatFloat(opacity(c), 'f', 3, 64)
	}
	return style
}

// countWriter keeps the first write error; svgo does not report them.
type countWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
