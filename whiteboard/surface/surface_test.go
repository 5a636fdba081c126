package surface

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
)

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#ff0000":   {R: 0xff, A: 0xff},
		"#0f0":      {G: 0xff, A: 0xff},
		"#0000FF":   {B: 0xff, A: 0xff},
		"#ffffff00": {},
		"red":       {R: 0xff, A: 0xff},
		" Blue ":    {B: 0xff, A: 0xff},
		"nonsense":  {A: 0xff},
		"#12345":    {A: 0xff},
		"":          {A: 0xff},
	}
	for in, want := range cases {
		if got := ParseColor(in); got != want {
			t.Fatalf("ParseColor(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRasterLine(t *testing.T) {
	r := NewRaster(500, 500)
	rec := stroke.Record{Kind: stroke.KindLine, X0: 0.1, Y0: 0.1, X1: 0.2, Y1: 0.2, Color: "#ff0000", Size: 3}
	if err := stroke.Render(r, rec); err != nil {
		t.Fatalf("render: %v", err)
	}
	c := r.Image().RGBAAt(75, 75)
	if c.R < 200 || c.G > 50 || c.B > 50 || c.A < 200 {
		t.Fatalf("pixel on the line is %v", c)
	}
	if c := r.Image().RGBAAt(75, 120); c.A != 0 {
		t.Fatalf("pixel away from the line is %v", c)
	}
}

func TestRasterCircle(t *testing.T) {
	r := NewRaster(400, 400)
	rec := stroke.Record{Kind: stroke.KindCircle, X0: 0.5, Y0: 0.5, X1: 0.6, Y1: 0.5, Color: "#0000ff", Size: 3}
	if err := stroke.Render(r, rec); err != nil {
		t.Fatalf("render: %v", err)
	}
	if c := r.Image().RGBAAt(240, 200); c.B < 100 || c.A < 100 {
		t.Fatalf("pixel on the circle is %v", c)
	}
	if c := r.Image().RGBAAt(200, 200); c.A != 0 {
		t.Fatalf("center should stay empty, got %v", c)
	}
}

func TestRasterClearLeavesNoResidue(t *testing.T) {
	r := NewRaster(64, 48)
	for _, rec := range []stroke.Record{
		{Kind: stroke.KindLine, X0: 0, Y0: 0, X1: 1, Y1: 1, Color: "#123456", Size: 6},
		{Kind: stroke.KindRect, X0: 0.2, Y0: 0.2, X1: 0.8, Y1: 0.9, Color: "orange", Size: 4},
		{Kind: stroke.KindCircle, X0: 0.5, Y0: 0.5, X1: 0.9, Y1: 0.5, Color: "#0f08", Size: 2},
	} {
		if err := stroke.Render(r, rec); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	r.Clear()
	for i, b := range r.Image().Pix {
		if b != 0 {
			t.Fatalf("byte %d is %d after clear", i, b)
		}
	}
}

func TestRasterSnapshotRestore(t *testing.T) {
	r := NewRaster(100, 100)
	first := stroke.Record{Kind: stroke.KindLine, X0: 0.1, Y0: 0.5, X1: 0.9, Y1: 0.5, Color: "#000", Size: 3}
	if err := stroke.Render(r, first); err != nil {
		t.Fatalf("render: %v", err)
	}
	snap := r.Snapshot()

	second := stroke.Record{Kind: stroke.KindLine, X0: 0.5, Y0: 0.1, X1: 0.5, Y1: 0.3, Color: "#000", Size: 3}
	if err := stroke.Render(r, second); err != nil {
		t.Fatalf("render: %v", err)
	}
	if r.Image().RGBAAt(50, 20).A == 0 {
		t.Fatalf("second line not drawn")
	}

	r.Restore(snap)
	if r.Image().RGBAAt(50, 20).A != 0 {
		t.Fatalf("restore kept the second line")
	}
	if r.Image().RGBAAt(30, 50).A == 0 {
		t.Fatalf("restore lost the first line")
	}

	r.Restore([]byte{1, 2, 3})
	if r.Image().RGBAAt(30, 50).A == 0 {
		t.Fatalf("mismatched snapshot should be ignored")
	}
}

func TestRasterShapeGesture(t *testing.T) {
	r := NewRaster(200, 200)
	var out []stroke.Record
	s := stroke.NewSession(r, stroke.EmitterFunc(func(_ context.Context, rec stroke.Record) error {
		out = append(out, rec)
		return nil
	}), stroke.WithTool(stroke.KindRect), stroke.WithColor("#ff0000"))

	ctx := context.Background()
	s.PointerDown(stroke.Point{X: 20, Y: 20})
	if err := s.PointerMove(ctx, stroke.Point{X: 180, Y: 180}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if r.Image().RGBAAt(180, 100).A == 0 {
		t.Fatalf("preview not visible")
	}
	if err := s.PointerUp(ctx, stroke.Point{X: 100, Y: 100}); err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one record, got %d", len(out))
	}
	if c := r.Image().RGBAAt(180, 100); c.A != 0 {
		t.Fatalf("preview residue at the old edge: %v", c)
	}
	if c := r.Image().RGBAAt(100, 60); c.R < 200 {
		t.Fatalf("final rect edge missing: %v", c)
	}
}

func TestRasterEncodePNG(t *testing.T) {
	r := NewRaster(32, 16)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestSVGDocument(t *testing.T) {
	s := NewSVG(500, 500)
	recs := []stroke.Record{
		{Kind: stroke.KindLine, X0: 0.1, Y0: 0.1, X1: 0.2, Y1: 0.2, Color: "#ff0000", Size: 3},
		{Kind: stroke.KindRect, X0: 0.5, Y0: 0.5, X1: 0.4, Y1: 0.6, Color: "blue", Size: 1.5},
		{Kind: stroke.KindCircle, X0: 0.5, Y0: 0.5, X1: 0.5, Y1: 0.6, Color: "#00ff0080", Size: 2},
	}
	for _, r := range recs {
		if err := stroke.Render(s, r); err != nil {
			t.Fatalf("render: %v", err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc := buf.String()
	for _, want := range []string{
		`width="500" height="500"`,
		`d="M50 50 L100 100"`,
		`stroke:#ff0000;stroke-width:3;stroke-linecap:round`,
		`d="M200 250 h50 v50 h-50 Z"`,
		`stroke:#0000ff;stroke-width:1.5`,
		`A50 50 0 1 1`,
		`stroke-opacity:0.502`,
		`</svg>`,
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestSVGSnapshotAndClear(t *testing.T) {
	s := NewSVG(100, 100)
	line := stroke.Record{Kind: stroke.KindLine, X1: 1, Y1: 1, Color: "#000", Size: 1}
	if err := stroke.Render(s, line); err != nil {
		t.Fatalf("render: %v", err)
	}
	snap := s.Snapshot()
	if err := stroke.Render(s, line); err != nil {
		t.Fatalf("render: %v", err)
	}
	s.Restore(snap)
	if s.Len() != 1 {
		t.Fatalf("expected 1 path after restore, got %d", s.Len())
	}
	s.Clear()
	s.Restore(snap)
	if s.Len() != 0 {
		t.Fatalf("restore after clear should not resurrect paths")
	}
}

func TestPDFDocument(t *testing.T) {
	p := NewPDF(400, 300)
	recs := []stroke.Record{
		{Kind: stroke.KindLine, X0: 0.1, Y0: 0.1, X1: 0.9, Y1: 0.9, Color: "#ff0000", Size: 3},
		{Kind: stroke.KindRect, X0: 0.2, Y0: 0.2, X1: 0.4, Y1: 0.4, Color: "green", Size: 2},
		{Kind: stroke.KindCircle, X0: 0.5, Y0: 0.5, X1: 0.6, Y1: 0.5, Color: "#00f", Size: 1},
	}
	for _, r := range recs {
		if err := stroke.Render(p, r); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	p.Clear()
	if p.Pages() != 2 {
		t.Fatalf("expected a new page per clear, got %d", p.Pages())
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		t.Fatalf("output: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestPDFHasNoPreview(t *testing.T) {
	var surface stroke.Surface = NewPDF(10, 10)
	if _, ok := surface.(stroke.Snapshotter); ok {
		t.Fatalf("PDF must not advertise snapshots")
	}
}
