package stroke

import (
	"context"
	"math"
	"slices"
)

// op is one recorded drawing call.
type op struct {
	name  string
	args  []float64
	style Style
}

// recorder is a Surface that keeps the calls it receives as its "pixels".
type recorder struct {
	size Size
	ops  []op
}

func newRecorder(w, h float64) *recorder { return &recorder{size: Size{W: w, H: h}} }

func (r *recorder) Size() Size                      { return r.size }
func (r *recorder) SetStyle(s Style)                { r.ops = append(r.ops, op{name: "style", style: s}) }
func (r *recorder) BeginPath()                      { r.add("begin") }
func (r *recorder) MoveTo(x, y float64)             { r.add("move", x, y) }
func (r *recorder) LineTo(x, y float64)             { r.add("line", x, y) }
func (r *recorder) Rect(x, y, w, h float64)         { r.add("rect", x, y, w, h) }
func (r *recorder) Arc(cx, cy, rad, a0, a1 float64) { r.add("arc", cx, cy, rad, a0, a1) }
func (r *recorder) Stroke()                         { r.add("stroke") }
func (r *recorder) Clear()                          { r.ops = nil }

func (r *recorder) add(name string, args ...float64) {
	r.ops = append(r.ops, op{name: name, args: args})
}

// count returns how many recorded calls have the given name.
func (r *recorder) count(name string) int {
	n := 0
	for _, o := range r.ops {
		if o.name == name {
			n++
		}
	}
	return n
}

// find returns the recorded calls with the given name, in order.
func (r *recorder) find(name string) []op {
	var out []op
	for _, o := range r.ops {
		if o.name == name {
			out = append(out, o)
		}
	}
	return out
}

// snapRecorder adds snapshot support on top of recorder.
type snapRecorder struct{ *recorder }

func newSnapRecorder(w, h float64) snapRecorder { return snapRecorder{newRecorder(w, h)} }

func (r snapRecorder) Snapshot() Snapshot { return slices.Clone(r.ops) }
func (r snapRecorder) Restore(s Snapshot) { r.ops = slices.Clone(s.([]op)) }

type collector struct {
	records []Record
	err     error
}

func (c *collector) EmitStroke(_ context.Context, r Record) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, r)
	return nil
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func sameArgs(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !near(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameOps(a, b []op) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].name != b[i].name || a[i].style != b[i].style || !sameArgs(a[i].args, b[i].args) {
			return false
		}
	}
	return true
}
