package surface

import (
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

type pdfSeg struct {
	kind       byte // 'M', 'L', 'R' or 'A'
	x, y, w, h float64
	a0, a1     float64
}

// PDF draws onto a document whose page size equals the canvas size in
// points. Each Clear starts a new page. Drawing is final, so PDF does not
// implement stroke.Snapshotter and gets no shape previews.
type PDF struct {
	doc   *gofpdf.Fpdf
	w, h  float64
	style stroke.Style
	segs  []pdfSeg
}

var _ stroke.Surface = (*PDF)(nil)

// NewPDF returns a one-page document of w×h points.
func NewPDF(w, h float64) *PDF {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	return &PDF{doc: doc, w: w, h: h}
}

// Size returns the page size in points.
func (p *PDF) Size() stroke.Size { return stroke.Size{W: p.w, H: p.h} }

// SetStyle sets the style applied when the path is stroked.
func (p *PDF) SetStyle(s stroke.Style) { p.style = s }

// BeginPath discards pending segments.
func (p *PDF) BeginPath() { p.segs = p.segs[:0] }

// MoveTo starts a subpath.
func (p *PDF) MoveTo(x, y float64) { p.segs = append(p.segs, pdfSeg{kind: 'M', x: x, y: y}) }

// LineTo adds a straight segment.
func (p *PDF) LineTo(x, y float64) { p.segs = append(p.segs, pdfSeg{kind: 'L', x: x, y: y}) }

// Rect adds a rectangle, drawn as its own subpath.
func (p *PDF) Rect(x, y, w, h float64) {
	p.segs = append(p.segs, pdfSeg{kind: 'R', x: x, y: y, w: w, h: h})
}

// Arc adds a circular arc; angles are radians, clockwise on screen.
func (p *PDF) Arc(cx, cy, r, start, end float64) {
	p.segs = append(p.segs, pdfSeg{kind: 'A', x: cx, y: cy, w: r, a0: start, a1: end})
}

// Stroke paints the pending path with the current style.
func (p *PDF) Stroke() {
	if len(p.segs) == 0 {
		return
	}
	p.applyStyle()

	open := false
	flush := func() {
		if open {
			p.doc.DrawPath("D")
			open = false
		}
	}
	for _, s := range p.segs {
		switch s.kind {
		case 'M':
			flush()
			p.doc.MoveTo(s.x, s.y)
			open = true
		case 'L':
			if !open {
				p.doc.MoveTo(s.x, s.y)
				open = true
				continue
			}
			p.doc.LineTo(s.x, s.y)
		case 'R':
			flush()
			p.doc.Rect(s.x, s.y, s.w, s.h, "D")
		case 'A':
			flush()
			// gofpdf measures angles counter-clockwise in degrees.
			p.doc.Arc(s.x, s.y, s.w, s.w, 0, -s.a1*180/math.Pi, -s.a0*180/math.Pi, "D")
		}
	}
	flush()
	p.segs = p.segs[:0]
}

// Clear starts a fresh page.
func (p *PDF) Clear() {
	p.segs = p.segs[:0]
	p.doc.AddPage()
}

// Pages returns the number of pages in the document.
func (p *PDF) Pages() int { return p.doc.PageCount() }

// Output writes the document to w.
func (p *PDF) Output(w io.Writer) error {
	return p.doc.Output(w)
}

func (p *PDF) applyStyle() {
	c := ParseColor(p.style.Color)
	n := nrgba(c)
	p.doc.SetDrawColor(int(n.R), int(n.G), int(n.B))
	p.doc.SetAlpha(opacity(c), "Normal")
	p.doc.SetLineWidth(p.style.Width)
	switch p.style.Cap {
	case stroke.CapRound:
		p.doc.SetLineCapStyle("round")
	case stroke.CapSquare:
		p.doc.SetLineCapStyle("square")
	default:
		p.doc.SetLineCapStyle("butt")
	}
}
