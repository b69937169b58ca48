// Native PNG rendering for diagram graphs. Mirrors the SVG renderer's
// output using Go's image packages, rasterizing at 4x and downsampling
// for smooth strokes.

package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	NodeRadius float64
	FontSize   int
	Padding    float64
}

// DefaultPNGOptions returns sensible defaults.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		NodeRadius: diagram.DefaultNodeRadius,
		FontSize:   14,
		Padding:    50,
	}
}

var (
	pngWhite = color.RGBA{255, 255, 255, 255}
	pngBlack = color.RGBA{51, 51, 51, 255}
)

// canvas holds rasterization state at supersampled resolution.
type canvas struct {
	img       *image.RGBA
	scale     float64 // supersampling factor
	offX      float64 // canvas-space translation, applied before scaling
	offY      float64
	lineWidth float64
	face      font.Face
}

// PNG renders the graph as a PNG image written to w.
func PNG(g *diagram.Graph, w io.Writer, opts PNGOptions) error {
	if opts.NodeRadius == 0 {
		opts.NodeRadius = diagram.DefaultNodeRadius
	}
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	if opts.Padding == 0 {
		opts.Padding = 50
	}

	const scale = 4

	minX, minY, maxX, maxY := bounds(g, opts.NodeRadius)
	width := int(maxX - minX + 2*opts.Padding)
	height := int(maxY - minY + 2*opts.Padding)

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(opts.FontSize * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return err
	}

	large := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	c := &canvas{
		img:       large,
		scale:     scale,
		offX:      opts.Padding - minX,
		offY:      opts.Padding - minY,
		lineWidth: 1.5 * scale,
		face:      face,
	}
	c.fill(pngWhite)
	c.drawGraph(g, opts.NodeRadius)

	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

func (c *canvas) fill(col color.Color) {
	b := c.img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c.img.Set(x, y, col)
		}
	}
}

// device maps a canvas-space point to supersampled pixel coordinates.
func (c *canvas) device(p diagram.Point) (float64, float64) {
	return (p.X + c.offX) * c.scale, (p.Y + c.offY) * c.scale
}

func (c *canvas) drawGraph(g *diagram.Graph, nodeRadius float64) {
	for _, e := range g.Edges {
		switch e := e.(type) {
		case *diagram.Transition:
			if spec, ok := e.Arc(nodeRadius); ok {
				c.drawArc(spec)
				c.drawArrow(spec.EndPoint(), spec.EndDirection())
			} else {
				dx := e.To.Pos.X - e.From.Pos.X
				dy := e.To.Pos.Y - e.From.Pos.Y
				length := math.Hypot(dx, dy)
				if length == 0 {
					continue
				}
				ux, uy := dx/length, dy/length
				start := diagram.Point{X: e.From.Pos.X + nodeRadius*ux, Y: e.From.Pos.Y + nodeRadius*uy}
				end := diagram.Point{X: e.To.Pos.X - nodeRadius*ux, Y: e.To.Pos.Y - nodeRadius*uy}
				c.drawLine(start, end)
				c.drawArrow(end, math.Atan2(dy, dx))
			}
		case *diagram.SelfLoop:
			spec := e.Arc(nodeRadius)
			c.drawArc(spec)
			c.drawArrow(spec.EndPoint(), spec.EndDirection())
		case *diagram.StartArrow:
			origin, tip := e.Origin(), e.Tip(nodeRadius)
			c.drawLine(origin, tip)
			c.drawArrow(tip, math.Atan2(tip.Y-origin.Y, tip.X-origin.X))
		}
		if e.Label() != "" {
			anchor := diagram.LabelAnchor(e, nodeRadius)
			off := labelShift(e)
			c.drawText(diagram.Point{X: anchor.X + off.X, Y: anchor.Y + off.Y}, e.Label())
		}
	}

	for _, n := range g.Nodes {
		c.drawCircle(n.Pos, nodeRadius, true)
		if n.IsAccept {
			c.drawCircle(n.Pos, diagram.AcceptRingRatio*nodeRadius, false)
		}
		if n.Text != "" {
			c.drawText(n.Pos, n.Text)
		}
	}
}

// drawCircle strokes a circle outline, optionally clearing its interior
// so edges do not show through the node.
func (c *canvas) drawCircle(center diagram.Point, radius float64, fillInterior bool) {
	cx, cy := c.device(center)
	r := radius * c.scale

	if fillInterior {
		for dy := -r; dy <= r; dy++ {
			span := r*r - dy*dy
			if span < 0 {
				continue
			}
			extent := math.Sqrt(span)
			for dx := -extent; dx <= extent; dx++ {
				c.img.Set(int(cx+dx), int(cy+dy), pngWhite)
			}
		}
	}

	half := c.lineWidth / 2
	for angle := 0.0; angle < 2*math.Pi; angle += 0.002 {
		nx, ny := math.Cos(angle), math.Sin(angle)
		for t := -half; t <= half; t += 0.5 {
			c.img.Set(int(cx+nx*(r+t)), int(cy+ny*(r+t)), pngBlack)
		}
	}
}

func (c *canvas) drawLine(a, b diagram.Point) {
	x1, y1 := c.device(a)
	x2, y2 := c.device(b)
	c.rawLine(x1, y1, x2, y2)
}

func (c *canvas) rawLine(x1, y1, x2, y2 float64) {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		c.img.Set(int(x1), int(y1), pngBlack)
		return
	}
	perpX, perpY := -dy/dist, dx/dist
	half := c.lineWidth / 2
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		px := x1 + dx*t
		py := y1 + dy*t
		for off := -half; off <= half; off += 0.5 {
			c.img.Set(int(px+perpX*off), int(py+perpY*off), pngBlack)
		}
	}
}

// drawArc strokes a circular arc by sampling the sweep.
func (c *canvas) drawArc(spec diagram.ArcSpec) {
	start := spec.StartAngle
	end := spec.SweepEnd()
	steps := int(math.Abs(end-start)*spec.Circle.Radius*c.scale/3) + 8
	var prev diagram.Point
	for i := 0; i <= steps; i++ {
		angle := start + (end-start)*float64(i)/float64(steps)
		p := spec.Circle.PointAt(angle)
		if i > 0 {
			c.drawLine(prev, p)
		}
		prev = p
	}
}

// drawArrow fills an arrowhead triangle pointing along angle.
func (c *canvas) drawArrow(tip diagram.Point, angle float64) {
	dx, dy := math.Cos(angle), math.Sin(angle)
	left := diagram.Point{X: tip.X - 8*dx + 5*dy, Y: tip.Y - 8*dy - 5*dx}
	right := diagram.Point{X: tip.X - 8*dx - 5*dy, Y: tip.Y - 8*dy + 5*dx}

	// Fill by sweeping lines from the tip across the base.
	for t := 0.0; t <= 1.0; t += 0.02 {
		base := diagram.Point{
			X: left.X + (right.X-left.X)*t,
			Y: left.Y + (right.Y-left.Y)*t,
		}
		c.drawLine(tip, base)
	}
}

func (c *canvas) drawText(center diagram.Point, text string) {
	x, y := c.device(center)
	width := font.MeasureString(c.face, text).Ceil()
	ascent := c.face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(pngBlack),
		Face: c.face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(x) - width/2),
			Y: fixed.I(int(y) + int(float64(ascent)*0.35)),
		},
	}
	d.DrawString(text)
}
