package surface

import (
	"image"
	"io"
	"slices"

	"github.com/fogleman/gg"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

// Raster is an in-memory RGBA canvas. The zero value is not usable; create
// one with NewRaster.
type Raster struct {
	img *image.RGBA
	dc  *gg.Context
}

var (
	_ stroke.Surface     = (*Raster)(nil)
	_ stroke.Snapshotter = (*Raster)(nil)
)

// NewRaster returns a transparent w×h canvas.
func NewRaster(w, h int) *Raster {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Raster{img: img, dc: gg.NewContextForRGBA(img)}
}

// Size returns the canvas size in pixels.
func (r *Raster) Size() stroke.Size {
	b := r.img.Bounds()
	return stroke.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// SetStyle applies color, width and line cap to later strokes.
func (r *Raster) SetStyle(s stroke.Style) {
	r.dc.SetColor(ParseColor(s.Color))
	r.dc.SetLineWidth(s.Width)
	switch s.Cap {
	case stroke.CapRound:
		r.dc.SetLineCap(gg.LineCapRound)
	case stroke.CapSquare:
		r.dc.SetLineCap(gg.LineCapSquare)
	default:
		r.dc.SetLineCap(gg.LineCapButt)
	}
}

// BeginPath discards any pending path.
func (r *Raster) BeginPath() { r.dc.ClearPath() }

// MoveTo starts a new subpath at (x, y).
func (r *Raster) MoveTo(x, y float64) { r.dc.MoveTo(x, y) }

// LineTo adds a segment to (x, y).
func (r *Raster) LineTo(x, y float64) { r.dc.LineTo(x, y) }

// Rect adds an axis-aligned rectangle with its top-left corner at (x, y).
func (r *Raster) Rect(x, y, w, h float64) { r.dc.DrawRectangle(x, y, w, h) }

// Arc adds a clockwise arc from angle a0 to a1, in radians.
func (r *Raster) Arc(cx, cy, rad, a0, a1 float64) { r.dc.DrawArc(cx, cy, rad, a0, a1) }

// Stroke paints the pending path and clears it.
func (r *Raster) Stroke() { r.dc.Stroke() }

// Clear resets every pixel to transparent.
func (r *Raster) Clear() {
	clear(r.img.Pix)
	r.dc.ClearPath()
}

// Snapshot copies the pixel buffer.
func (r *Raster) Snapshot() stroke.Snapshot {
	return slices.Clone(r.img.Pix)
}

// Restore writes back a buffer taken by Snapshot. Buffers from a canvas of
// another size are ignored.
func (r *Raster) Restore(s stroke.Snapshot) {
	pix, ok := s.([]byte)
	if !ok || len(pix) != len(r.img.Pix) {
		return
	}
	copy(r.img.Pix, pix)
}

// Image returns the backing image. It is updated in place by later drawing.
func (r *Raster) Image() *image.RGBA { return r.img }

// EncodePNG writes the canvas as a PNG image.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}
