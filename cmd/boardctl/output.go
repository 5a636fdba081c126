package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/stroke"
	"github.com/vovakirdan/whiteboard-sdk-go/whiteboard/surface"
)

type format int

const (
	formatPNG format = iota
	formatSVG
	formatPDF
)

func formatOf(path string) (format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return formatPNG, nil
	case ".svg":
		return formatSVG, nil
	case ".pdf":
		return formatPDF, nil
	default:
		return 0, fmt.Errorf("unsupported output format %q (use .png, .svg or .pdf)", ext)
	}
}

// output is a drawing surface plus the encoder that writes it out.
type output struct {
	surface stroke.Surface
	encode  func(io.Writer) error
}

// newOutput returns a surface for path. An empty path gets an in-memory
// SVG surface that is never written.
func newOutput(path string, w, h int) (*output, error) {
	if path == "" {
		return &output{surface: surface.NewSVG(w, h)}, nil
	}
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	switch f {
	case formatPNG:
		r := surface.NewRaster(w, h)
		return &output{surface: r, encode: r.EncodePNG}, nil
	case formatSVG:
		s := surface.NewSVG(w, h)
		return &output{surface: s, encode: func(w io.Writer) error {
			_, err := s.WriteTo(w)
			return err
		}}, nil
	default:
		p := surface.NewPDF(float64(w), float64(h))
		return &output{surface: p, encode: p.Output}, nil
	}
}

func (o *output) save(path string) error {
	if o.encode == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := o.encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
