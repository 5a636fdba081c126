// Package surface provides drawing backends for stroke replay: an in-memory
// raster canvas, an SVG document and a PDF document.
package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor turns a stroke color into an RGBA value. It understands
// #rgb, #rgba, #rrggbb and #rrggbbaa hex forms and CSS color names.
// Anything else is black.
func ParseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		if c, ok := parseHex(s[1:]); ok {
			return c
		}
		return color.RGBA{A: 0xff}
	}
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	return color.RGBA{A: 0xff}
}

func parseHex(h string) (color.RGBA, bool) {
	switch len(h) {
	case 3, 4:
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	case 6, 8:
	default:
		return color.RGBA{}, false
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return color.RGBAModel.Convert(c).(color.RGBA), true
}

// hexColor formats c as #rrggbb, dropping alpha.
func hexColor(c color.RGBA) string {
	n := nrgba(c)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// opacity returns the alpha of c in [0,1].
func opacity(c color.RGBA) float64 {
	return float64(c.A) / 0xff
}
