// Geometric constructions shared by the markup exporter, the import
// reconstruction engine and the renderers. The curved-edge math must be a
// single implementation: the importer back-derives curvature parameters
// that only round-trip if export and import agree on every formula here.

package diagram

import "math"

// Point represents a 2D canvas coordinate.
type Point struct {
	X, Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// PolarOffset returns p displaced by dist in the direction angle.
func PolarOffset(p Point, angle, dist float64) Point {
	return Point{p.X + dist*math.Cos(angle), p.Y + dist*math.Sin(angle)}
}

// Circle is a center plus radius.
type Circle struct {
	Center Point
	Radius float64
}

// PointAt returns the point on the circle at the given angle.
func (c Circle) PointAt(angle float64) Point {
	return PolarOffset(c.Center, angle, c.Radius)
}

func det3(a, b, c, d, e, f, g, h, i float64) float64 {
	return a*e*i + b*f*g + c*d*h - a*f*h - b*d*i - c*e*g
}

// CircleFromThreePoints returns the circle passing through a, b and c.
// Near-collinear inputs have no finite circumcircle; ok reports whether
// the determinant was large enough to trust the result. Callers must treat
// !ok as "straight line", never divide through regardless.
func CircleFromThreePoints(a, b, c Point) (Circle, bool) {
	d := det3(a.X, a.Y, 1, b.X, b.Y, 1, c.X, c.Y, 1)
	if math.Abs(d) < 1e-9 {
		return Circle{}, false
	}
	sa := a.X*a.X + a.Y*a.Y
	sb := b.X*b.X + b.Y*b.Y
	sc := c.X*c.X + c.Y*c.Y
	bx := -det3(sa, a.Y, 1, sb, b.Y, 1, sc, c.Y, 1)
	by := det3(sa, a.X, 1, sb, b.X, 1, sc, c.X, 1)
	center := Point{-bx / (2 * d), -by / (2 * d)}
	return Circle{Center: center, Radius: center.Dist(a)}, true
}

// AnchorPoint returns the point the transition's curvature is constrained
// through, derived from ParallelPart and PerpendicularPart.
func (t *Transition) AnchorPoint() Point {
	dx := t.To.Pos.X - t.From.Pos.X
	dy := t.To.Pos.Y - t.From.Pos.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return t.From.Pos
	}
	return Point{
		X: t.From.Pos.X + dx*t.ParallelPart - dy*t.PerpendicularPart/length,
		Y: t.From.Pos.Y + dy*t.ParallelPart + dx*t.PerpendicularPart/length,
	}
}

// SetAnchor derives ParallelPart and PerpendicularPart so that AnchorPoint
// reproduces p. Inverse of AnchorPoint.
func (t *Transition) SetAnchor(p Point) {
	dx := t.To.Pos.X - t.From.Pos.X
	dy := t.To.Pos.Y - t.From.Pos.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	t.ParallelPart = (dx*(p.X-t.From.Pos.X) + dy*(p.Y-t.From.Pos.Y)) / (length * length)
	t.PerpendicularPart = (dx*(p.Y-t.From.Pos.Y) - dy*(p.X-t.From.Pos.X)) / length
}

// ArcSpec describes the drawn geometry of a curved edge: a circle, the
// angles where the visible arc starts and ends, and the sweep direction.
// When Reversed is false the arc sweeps in increasing angle from
// StartAngle to EndAngle; when true, decreasing.
type ArcSpec struct {
	Circle     Circle
	StartAngle float64
	EndAngle   float64
	Reversed   bool
}

// SweepEnd returns EndAngle normalized onto the correct side of
// StartAngle for the arc's sweep direction.
func (a ArcSpec) SweepEnd() float64 {
	end := a.EndAngle
	if a.Reversed {
		for end > a.StartAngle {
			end -= 2 * math.Pi
		}
	} else {
		for end < a.StartAngle {
			end += 2 * math.Pi
		}
	}
	return end
}

// StartPoint returns the visible start of the arc.
func (a ArcSpec) StartPoint() Point { return a.Circle.PointAt(a.StartAngle) }

// EndPoint returns the visible end of the arc.
func (a ArcSpec) EndPoint() Point { return a.Circle.PointAt(a.EndAngle) }

// Midpoint returns the point on the arc at the angular middle of the
// sweep. This is the point label placement and curvature recovery key on;
// it is not the circle's center.
func (a ArcSpec) Midpoint() Point {
	return a.Circle.PointAt((a.StartAngle + a.SweepEnd()) / 2)
}

// EndDirection returns the direction of travel at the end of the arc,
// used to orient the arrowhead.
func (a ArcSpec) EndDirection() float64 {
	if a.Reversed {
		return a.EndAngle - math.Pi/2
	}
	return a.EndAngle + math.Pi/2
}

// Arc returns the circular geometry of a curved transition, trimmed to the
// rims of its end nodes. ok is false for straight transitions and for
// degenerate (near-collinear) anchor geometry; both render as a line.
func (t *Transition) Arc(nodeRadius float64) (ArcSpec, bool) {
	if t.PerpendicularPart == 0 {
		return ArcSpec{}, false
	}
	circle, ok := CircleFromThreePoints(t.From.Pos, t.AnchorPoint(), t.To.Pos)
	if !ok {
		return ArcSpec{}, false
	}
	reversed := t.PerpendicularPart > 0
	rev := -1.0
	if reversed {
		rev = 1.0
	}
	trim := nodeRadius / circle.Radius
	from := math.Atan2(t.From.Pos.Y-circle.Center.Y, t.From.Pos.X-circle.Center.X)
	to := math.Atan2(t.To.Pos.Y-circle.Center.Y, t.To.Pos.X-circle.Center.X)
	return ArcSpec{
		Circle:     circle,
		StartAngle: from - rev*trim,
		EndAngle:   to + rev*trim,
		Reversed:   reversed,
	}, true
}

// SatelliteRatio and SatelliteDistRatio fix the self-loop construction:
// the loop is an arc on a circle of radius SatelliteRatio*R whose center
// sits SatelliteDistRatio*R away from the node, in the anchor direction.
const (
	SatelliteRatio     = 0.75
	SatelliteDistRatio = 1.5
)

// loopHalfSpan is the half angular extent of a self-loop's visible arc.
const loopHalfSpan = 0.8 * math.Pi

// SatelliteCircle returns the small circle the loop is drawn on.
func (l *SelfLoop) SatelliteCircle(nodeRadius float64) Circle {
	return Circle{
		Center: PolarOffset(l.On.Pos, l.AnchorAngle, SatelliteDistRatio*nodeRadius),
		Radius: SatelliteRatio * nodeRadius,
	}
}

// Arc returns the visible arc of the self-loop.
func (l *SelfLoop) Arc(nodeRadius float64) ArcSpec {
	return ArcSpec{
		Circle:     l.SatelliteCircle(nodeRadius),
		StartAngle: l.AnchorAngle - loopHalfSpan,
		EndAngle:   l.AnchorAngle + loopHalfSpan,
	}
}

// Origin returns the visual origin of the start arrow (its free end).
func (a *StartArrow) Origin() Point {
	return Point{a.Into.Pos.X + a.DeltaX, a.Into.Pos.Y + a.DeltaY}
}

// Tip returns the point on the target node's rim where the arrow lands.
func (a *StartArrow) Tip(nodeRadius float64) Point {
	length := math.Hypot(a.DeltaX, a.DeltaY)
	if length == 0 {
		return a.Into.Pos
	}
	return Point{
		X: a.Into.Pos.X + nodeRadius*a.DeltaX/length,
		Y: a.Into.Pos.Y + nodeRadius*a.DeltaY/length,
	}
}

// LabelAnchor returns the canvas point an edge's caption hangs off: the
// arc midpoint for curved transitions and self-loops, the straight
// midpoint otherwise, and the free end for the start arrow.
func LabelAnchor(e Edge, nodeRadius float64) Point {
	switch e := e.(type) {
	case *Transition:
		if spec, ok := e.Arc(nodeRadius); ok {
			return spec.Midpoint()
		}
		return Midpoint(e.From.Pos, e.To.Pos)
	case *SelfLoop:
		sat := e.SatelliteCircle(nodeRadius)
		return sat.PointAt(e.AnchorAngle)
	case *StartArrow:
		return e.Origin()
	}
	panic("diagram: unknown edge kind")
}
