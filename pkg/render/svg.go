// Package render draws diagram graphs as static SVG or PNG images. Unlike
// layout-based renderers, everything here comes from the diagram's own
// geometry: node positions, curvature parameters and anchor angles are
// honored exactly, so a reconstructed diagram renders the way its source
// markup drew it.
package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
)

// SVGOptions controls SVG rendering.
type SVGOptions struct {
	NodeRadius  float64
	FontSize    int
	Padding     float64
	StrokeWidth float64
	Title       string
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		NodeRadius:  diagram.DefaultNodeRadius,
		FontSize:    14,
		Padding:     50,
		StrokeWidth: 1.5,
	}
}

// SVG renders the graph as an SVG document.
func SVG(g *diagram.Graph, opts SVGOptions) string {
	if opts.NodeRadius == 0 {
		opts.NodeRadius = diagram.DefaultNodeRadius
	}
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	if opts.Padding == 0 {
		opts.Padding = 50
	}
	if opts.StrokeWidth == 0 {
		opts.StrokeWidth = 1.5
	}

	minX, minY, maxX, maxY := bounds(g, opts.NodeRadius)
	width := maxX - minX + 2*opts.Padding
	height := maxY - minY + 2*opts.Padding
	offX := opts.Padding - minX
	offY := opts.Padding - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`+"\n",
		width, height, width, height)
	sb.WriteString("<rect width=\"100%\" height=\"100%\" fill=\"white\"/>\n")
	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-family="Helvetica" font-size="%d" text-anchor="middle">%s</text>`+"\n",
			width/2, float64(opts.FontSize)+6, opts.FontSize+4, html.EscapeString(opts.Title))
	}

	sw := opts.StrokeWidth

	for _, e := range g.Edges {
		switch e := e.(type) {
		case *diagram.Transition:
			if spec, ok := e.Arc(opts.NodeRadius); ok {
				writeArcPath(&sb, spec, offX, offY, sw)
				writeArrow(&sb, shift(spec.EndPoint(), offX, offY), spec.EndDirection())
			} else {
				drawStraight(&sb, e, opts.NodeRadius, offX, offY, sw)
			}
		case *diagram.SelfLoop:
			spec := e.Arc(opts.NodeRadius)
			writeArcPath(&sb, spec, offX, offY, sw)
			writeArrow(&sb, shift(spec.EndPoint(), offX, offY), spec.EndDirection())
		case *diagram.StartArrow:
			origin := shift(e.Origin(), offX, offY)
			tip := shift(e.Tip(opts.NodeRadius), offX, offY)
			fmt.Fprintf(&sb, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="black" stroke-width="%.1f"/>`+"\n",
				origin.X, origin.Y, tip.X, tip.Y, sw)
			writeArrow(&sb, tip, math.Atan2(tip.Y-origin.Y, tip.X-origin.X))
		}
		if e.Label() != "" {
			anchor := shift(diagram.LabelAnchor(e, opts.NodeRadius), offX, offY)
			writeLabel(&sb, anchor, labelShift(e), e.Label(), opts.FontSize)
		}
	}

	for _, n := range g.Nodes {
		p := shift(n.Pos, offX, offY)
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="white" stroke="black" stroke-width="%.1f"/>`+"\n",
			p.X, p.Y, opts.NodeRadius, sw)
		if n.IsAccept {
			fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="black" stroke-width="%.1f"/>`+"\n",
				p.X, p.Y, diagram.AcceptRingRatio*opts.NodeRadius, sw)
		}
		if n.Text != "" {
			fmt.Fprintf(&sb, `<text x="%.2f" y="%.2f" font-family="Helvetica" font-size="%d" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				p.X, p.Y, opts.FontSize, html.EscapeString(n.Text))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func shift(p diagram.Point, offX, offY float64) diagram.Point {
	return diagram.Point{X: p.X + offX, Y: p.Y + offY}
}

// writeArcPath emits an SVG elliptical-arc path for a circular arc spec.
func writeArcPath(sb *strings.Builder, spec diagram.ArcSpec, offX, offY, sw float64) {
	start := shift(spec.StartPoint(), offX, offY)
	end := shift(spec.EndPoint(), offX, offY)
	span := math.Abs(spec.SweepEnd() - spec.StartAngle)
	largeArc := 0
	if span > math.Pi {
		largeArc = 1
	}
	// SVG sweep=1 runs in increasing angle on a y-down canvas.
	sweep := 1
	if spec.Reversed {
		sweep = 0
	}
	fmt.Fprintf(sb, `<path d="M %.2f %.2f A %.2f %.2f 0 %d %d %.2f %.2f" fill="none" stroke="black" stroke-width="%.1f"/>`+"\n",
		start.X, start.Y, spec.Circle.Radius, spec.Circle.Radius, largeArc, sweep, end.X, end.Y, sw)
}

func drawStraight(sb *strings.Builder, t *diagram.Transition, nodeRadius, offX, offY, sw float64) {
	dx := t.To.Pos.X - t.From.Pos.X
	dy := t.To.Pos.Y - t.From.Pos.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	start := shift(diagram.Point{X: t.From.Pos.X + nodeRadius*ux, Y: t.From.Pos.Y + nodeRadius*uy}, offX, offY)
	end := shift(diagram.Point{X: t.To.Pos.X - nodeRadius*ux, Y: t.To.Pos.Y - nodeRadius*uy}, offX, offY)
	fmt.Fprintf(sb, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="black" stroke-width="%.1f"/>`+"\n",
		start.X, start.Y, end.X, end.Y, sw)
	writeArrow(sb, end, math.Atan2(dy, dx))
}

// writeArrow emits a filled arrowhead triangle pointing along angle.
func writeArrow(sb *strings.Builder, tip diagram.Point, angle float64) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	fmt.Fprintf(sb, `<polygon points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="black"/>`+"\n",
		tip.X, tip.Y,
		tip.X-8*dx+5*dy, tip.Y-8*dy-5*dx,
		tip.X-8*dx-5*dy, tip.Y-8*dy+5*dx)
}

// labelShift nudges an edge caption off its anchor so it clears the
// stroke, mirroring the hint the exporter would write.
func labelShift(e diagram.Edge) diagram.Point {
	const gap = 12
	switch e := e.(type) {
	case *diagram.Transition:
		dx := e.To.Pos.X - e.From.Pos.X
		dy := e.To.Pos.Y - e.From.Pos.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			return diagram.Point{Y: -gap}
		}
		return diagram.Point{X: gap * dy / length, Y: -gap * dx / length}
	case *diagram.SelfLoop:
		return diagram.Point{X: gap * math.Cos(e.AnchorAngle), Y: gap * math.Sin(e.AnchorAngle)}
	case *diagram.StartArrow:
		return diagram.Point{Y: -gap}
	}
	return diagram.Point{}
}

func writeLabel(sb *strings.Builder, anchor, off diagram.Point, text string, fontSize int) {
	fmt.Fprintf(sb, `<text x="%.2f" y="%.2f" font-family="Helvetica" font-size="%d" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		anchor.X+off.X, anchor.Y+off.Y, fontSize, html.EscapeString(text))
}

// bounds returns the bounding box of everything the renderer will draw.
func bounds(g *diagram.Graph, nodeRadius float64) (minX, minY, maxX, maxY float64) {
	if len(g.Nodes) == 0 {
		return 0, 0, 200, 100
	}
	first := true
	grow := func(p diagram.Point, margin float64) {
		if first {
			minX, maxX = p.X-margin, p.X+margin
			minY, maxY = p.Y-margin, p.Y+margin
			first = false
			return
		}
		minX = math.Min(minX, p.X-margin)
		maxX = math.Max(maxX, p.X+margin)
		minY = math.Min(minY, p.Y-margin)
		maxY = math.Max(maxY, p.Y+margin)
	}

	for _, n := range g.Nodes {
		grow(n.Pos, nodeRadius)
	}
	for _, e := range g.Edges {
		grow(diagram.LabelAnchor(e, nodeRadius), 20)
		switch e := e.(type) {
		case *diagram.SelfLoop:
			sat := e.SatelliteCircle(nodeRadius)
			grow(sat.Center, sat.Radius)
		case *diagram.StartArrow:
			grow(e.Origin(), 10)
		case *diagram.Transition:
			if spec, ok := e.Arc(nodeRadius); ok {
				grow(spec.Midpoint(), 10)
			}
		}
	}
	return minX, minY, maxX, maxY
}
