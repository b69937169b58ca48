// Forward exporter: diagram graph to pict markup. The importer inverts
// this output, so the conventions here are a contract: coordinates are
// multiplied by the scale factor with the y axis negated, arcs are written
// with their end angle normalized so the angular average of the two
// written angles lands on the arc's true midpoint, and arrowhead fill
// triangles always lead with the tip point.

package pict

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
)

// defaultScale is the exporter's scale factor: canvas units times scale
// gives markup units, so the default maps canvas 300 to markup 30.
const defaultScale = 0.1

// Arrowhead triangle dimensions in canvas units: length behind the tip
// and half-width across it.
const (
	arrowBack = 8.0
	arrowHalf = 5.0
)

// ExportOptions controls markup generation.
type ExportOptions struct {
	Scale      float64
	NodeRadius float64
	Style      string // bracket style written after stroke/fill verbs
}

// DefaultExportOptions returns the contract defaults.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Scale:      defaultScale,
		NodeRadius: diagram.DefaultNodeRadius,
		Style:      "black",
	}
}

// Export renders a graph as pict markup with default options.
func Export(g *diagram.Graph) string {
	return ExportWith(g, DefaultExportOptions())
}

// ExportWith renders a graph as pict markup.
func ExportWith(g *diagram.Graph, opts ExportOptions) string {
	if opts.Scale == 0 {
		opts.Scale = defaultScale
	}
	if opts.NodeRadius == 0 {
		opts.NodeRadius = diagram.DefaultNodeRadius
	}

	w := &markupWriter{opts: opts}
	w.sb.WriteString(fmt.Sprintf("\\begin{pict}[scale=%s]\n", fmtNum(opts.Scale)))

	for _, n := range g.Nodes {
		w.circle(n.Pos, opts.NodeRadius)
		if n.IsAccept {
			w.circle(n.Pos, diagram.AcceptRingRatio*opts.NodeRadius)
		}
		if n.Text != "" {
			w.label(n.Pos, "", n.Text)
		}
	}

	for _, e := range g.Edges {
		switch e := e.(type) {
		case *diagram.Transition:
			w.transition(e)
		case *diagram.SelfLoop:
			spec := e.Arc(opts.NodeRadius)
			w.arc(spec)
			w.arrow(spec.EndPoint(), spec.EndDirection())
		case *diagram.StartArrow:
			origin, tip := e.Origin(), e.Tip(opts.NodeRadius)
			w.line(origin, tip)
			w.arrow(tip, math.Atan2(tip.Y-origin.Y, tip.X-origin.X))
		}
		if e.Label() != "" {
			anchor := diagram.LabelAnchor(e, opts.NodeRadius)
			w.label(anchor, hintFor(e, opts.NodeRadius), e.Label())
		}
	}

	w.sb.WriteString("\\end{pict}\n")
	return w.sb.String()
}

type markupWriter struct {
	opts ExportOptions
	sb   strings.Builder
}

// raw converts a canvas coordinate to markup space.
func (w *markupWriter) raw(p diagram.Point) (x, y string) {
	return fmtNum(p.X * w.opts.Scale), fmtNum(-p.Y * w.opts.Scale)
}

func (w *markupWriter) circle(center diagram.Point, radius float64) {
	x, y := w.raw(center)
	fmt.Fprintf(&w.sb, "stroke [%s] (%s,%s) circle (%s);\n",
		w.opts.Style, x, y, fmtNum(radius*w.opts.Scale))
}

func (w *markupWriter) label(pos diagram.Point, hint, text string) {
	x, y := w.raw(pos)
	if hint == "" {
		fmt.Fprintf(&w.sb, "stroke (%s,%s) label {%s};\n", x, y, text)
		return
	}
	fmt.Fprintf(&w.sb, "stroke (%s,%s) label [%s] {%s};\n", x, y, hint, text)
}

func (w *markupWriter) line(a, b diagram.Point) {
	ax, ay := w.raw(a)
	bx, by := w.raw(b)
	fmt.Fprintf(&w.sb, "stroke [%s] (%s,%s) -- (%s,%s);\n", w.opts.Style, ax, ay, bx, by)
}

// arc writes an ArcSpec as an arc statement. Canvas angles negate when
// the y axis flips, and the end angle is pinned to the sweep's side of
// the start angle so the written pair averages to the arc midpoint.
func (w *markupWriter) arc(spec diagram.ArcSpec) {
	start := spec.StartPoint()
	sx, sy := w.raw(start)
	a1 := -spec.StartAngle * 180 / math.Pi
	a2 := -spec.SweepEnd() * 180 / math.Pi
	fmt.Fprintf(&w.sb, "stroke [%s] (%s,%s) arc (%s:%s:%s);\n",
		w.opts.Style, sx, sy, fmtNum(a1), fmtNum(a2),
		fmtNum(spec.Circle.Radius*w.opts.Scale))
}

func (w *markupWriter) transition(t *diagram.Transition) {
	if spec, ok := t.Arc(w.opts.NodeRadius); ok {
		w.arc(spec)
		w.arrow(spec.EndPoint(), spec.EndDirection())
		return
	}

	// Straight shaft trimmed to the node rims.
	dx := t.To.Pos.X - t.From.Pos.X
	dy := t.To.Pos.Y - t.From.Pos.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	r := w.opts.NodeRadius
	start := diagram.Point{X: t.From.Pos.X + r*ux, Y: t.From.Pos.Y + r*uy}
	end := diagram.Point{X: t.To.Pos.X - r*ux, Y: t.To.Pos.Y - r*uy}
	w.line(start, end)
	w.arrow(end, math.Atan2(dy, dx))
}

// arrow writes an arrowhead fill triangle with the tip first.
func (w *markupWriter) arrow(tip diagram.Point, angle float64) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	left := diagram.Point{
		X: tip.X - arrowBack*dx + arrowHalf*dy,
		Y: tip.Y - arrowBack*dy - arrowHalf*dx,
	}
	right := diagram.Point{
		X: tip.X - arrowBack*dx - arrowHalf*dy,
		Y: tip.Y - arrowBack*dy + arrowHalf*dx,
	}
	tx, ty := w.raw(tip)
	lx, ly := w.raw(left)
	rx, ry := w.raw(right)
	fmt.Fprintf(&w.sb, "fill [%s] (%s,%s) -- (%s,%s) -- (%s,%s);\n",
		w.opts.Style, tx, ty, lx, ly, rx, ry)
}

// hintFor picks the placement hint written with an edge caption. The hint
// tells a renderer which side of the anchor the text sits on; the
// importer only cares that edge captions carry one.
func hintFor(e diagram.Edge, nodeRadius float64) string {
	switch e := e.(type) {
	case *diagram.Transition:
		dx := e.To.Pos.X - e.From.Pos.X
		dy := e.To.Pos.Y - e.From.Pos.Y
		// Perpendicular, pointing to the label side.
		return axisHint(dy, -dx)
	case *diagram.SelfLoop:
		return axisHint(math.Cos(e.AnchorAngle), math.Sin(e.AnchorAngle))
	case *diagram.StartArrow:
		return axisHint(e.DeltaX, e.DeltaY)
	}
	return "above"
}

func axisHint(dx, dy float64) string {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return "right"
		}
		return "left"
	}
	if dy > 0 {
		return "below"
	}
	return "above"
}

// fmtNum formats a coordinate with enough precision to round-trip under
// the importer's tightest tolerance, without trailing zero noise.
func fmtNum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
