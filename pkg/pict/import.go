// Package pict implements the pict vector-graphics dialect: a forward
// exporter for state-machine diagrams and an importer that reconstructs
// the diagram from exported text.
//
// The dialect encodes only geometric primitives. Nothing in the text says
// "this circle is a state" or "this arc is a self-loop", so the importer
// recovers structure by staged geometric matching against the exporter's
// conventions: outer-ring circles become states, a second ring marks an
// accept state, small satellite arcs become self-loops, two-point strokes
// become transitions or the start arrow, remaining arcs become curved
// transitions (arrowhead triangles disambiguate their direction), and
// label points attach to whatever qualifying entity is nearest. Primitives
// that match no stage are dropped silently; the only fatal failure is a
// missing drawing-environment block.
package pict

import (
	"math"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
)

// StructuralError reports that no drawing-environment block could be
// located. It aborts the whole import; no partial graph accompanies it.
type StructuralError struct {
	Msg string
}

func (e *StructuralError) Error() string { return "pict: " + e.Msg }

// ImportOptions parameterizes the reconstruction heuristics. Every
// geometric threshold derives from NodeRadius, so diagrams authored at a
// non-default state size still reconstruct.
type ImportOptions struct {
	// NodeRadius is the state-circle radius in canvas units.
	NodeRadius float64
	// Scale is the exporter's scale factor (canvas units are divided by
	// it on export). A scale option inside the block overrides it.
	Scale float64
}

// DefaultImportOptions returns the options matching the paired exporter's
// defaults.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{NodeRadius: diagram.DefaultNodeRadius, Scale: defaultScale}
}

// Importer reconstructs diagrams from pict text. An Importer is reusable:
// every Parse call starts from fresh transient state. It is not safe for
// concurrent use; give each goroutine its own Importer.
type Importer struct {
	opts  ImportOptions
	scale float64 // effective scale for the current parse

	// Remaining-candidates worklists. Stages remove what they consume so
	// later stages never see an already-claimed primitive.
	circles []circlePrim
	labels  []labelPrim
	arcs    []arcPrim
	strokes []polyPrim
	fills   []polyPrim

	nodes []*diagram.Node
	edges []diagram.Edge
}

// NewImporter creates an importer with the given options, back-filling
// zero fields with defaults.
func NewImporter(opts ImportOptions) *Importer {
	if opts.NodeRadius == 0 {
		opts.NodeRadius = diagram.DefaultNodeRadius
	}
	if opts.Scale == 0 {
		opts.Scale = defaultScale
	}
	return &Importer{opts: opts}
}

// Parse reconstructs a graph from markup using default options.
func Parse(text string) (*diagram.Graph, error) {
	return NewImporter(DefaultImportOptions()).Parse(text)
}

// Parse runs the full reconstruction pipeline. The stages are strictly
// ordered: nodes must exist before any edge matching, and self-loops must
// be claimed before generic curved-edge matching so a satellite arc is
// never mistaken for a curve between two nodes. An empty graph is a valid
// result; only a missing block is an error.
func (im *Importer) Parse(text string) (*diagram.Graph, error) {
	im.reset()

	body, scale, err := extractBlock(text)
	if err != nil {
		return nil, err
	}
	im.scale = im.opts.Scale
	if scale > 0 {
		im.scale = scale
	}

	im.collect(body)
	im.resolveNodes()
	im.assignNodeLabels()
	im.resolveSelfLoops()
	im.resolveStraightEdges()
	im.resolveCurvedEdges()
	im.assignEdgeLabels()

	return &diagram.Graph{Nodes: im.nodes, Edges: im.edges}, nil
}

func (im *Importer) reset() {
	im.circles = nil
	im.labels = nil
	im.arcs = nil
	im.strokes = nil
	im.fills = nil
	im.nodes = nil
	im.edges = nil
}

// mapPoint converts a markup-space point to canvas space: inverse scale,
// y axis un-negated. Applied exactly once per coordinate, before any
// distance comparison.
func (im *Importer) mapPoint(p rawPoint) diagram.Point {
	return diagram.Point{X: p.x / im.scale, Y: -p.y / im.scale}
}

// mapLength converts a markup-space length to canvas units.
func (im *Importer) mapLength(v float64) float64 { return v / im.scale }

// Derived tolerances. At the default node radius these reproduce the
// exporter contract's historical constants (5, 40, 45, 20, 80, ...).
func (im *Importer) radiusTol() float64     { return im.opts.NodeRadius / 6 }
func (im *Importer) clusterTol() float64    { return im.opts.NodeRadius / 30 }
func (im *Importer) straightSlack() float64 { return im.opts.NodeRadius + im.opts.NodeRadius/3 }
func (im *Importer) curvedSlack() float64   { return im.opts.NodeRadius + im.opts.NodeRadius/2 }
func (im *Importer) arrowTol() float64      { return 2 * im.opts.NodeRadius / 3 }
func (im *Importer) loopCenterTol() float64 { return 2 * im.opts.NodeRadius / 3 }
func (im *Importer) nodeLabelTol() float64  { return 1.5 * im.opts.NodeRadius }
func (im *Importer) edgeLabelTol() float64  { return 8 * im.opts.NodeRadius / 3 }

// nodeNear returns the closest node within maxDist of p, or nil.
func (im *Importer) nodeNear(p diagram.Point, maxDist float64) *diagram.Node {
	var best *diagram.Node
	bestDist := maxDist
	for _, n := range im.nodes {
		if d := n.Pos.Dist(p); d <= bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// resolveNodes turns outer-ring circles into states and inner-ring
// circles into accept markers on an existing state. Circles are processed
// in statement order, so an inner ring can only attach to a node already
// created; the paired exporter always writes the outer ring first.
func (im *Importer) resolveNodes() {
	outer := im.opts.NodeRadius
	inner := diagram.AcceptRingRatio * im.opts.NodeRadius
	tol := im.radiusTol()

	for _, c := range im.circles {
		r := im.mapLength(c.radius)
		pos := im.mapPoint(c.center)
		switch {
		case math.Abs(r-outer) <= tol:
			if im.nodeNear(pos, im.clusterTol()) == nil {
				im.nodes = append(im.nodes, &diagram.Node{Pos: pos})
			}
		case math.Abs(r-inner) <= tol:
			if n := im.nodeNear(pos, im.clusterTol()); n != nil {
				n.IsAccept = true
			}
			// An inner ring with no outer ring under it is a
			// reconstruction gap; it never creates a node.
		}
	}
	im.circles = nil
}

// assignNodeLabels is label pass 1: hintless text primitives near a node
// become that node's display text. Hinted primitives are edge captions and
// wait for pass 2, as does anything that matched no node.
func (im *Importer) assignNodeLabels() {
	var remaining []labelPrim
	for _, l := range im.labels {
		if l.hint == "" {
			if n := im.nodeNear(im.mapPoint(l.pos), im.nodeLabelTol()); n != nil {
				n.Text = l.text
				continue
			}
		}
		remaining = append(remaining, l)
	}
	im.labels = remaining
}

// resolveSelfLoops claims arcs in the satellite radius class whose center
// sits at the self-loop construction's fixed distance from exactly the
// node that owns them.
func (im *Importer) resolveSelfLoops() {
	loopRadius := diagram.SatelliteRatio * im.opts.NodeRadius
	satDist := diagram.SatelliteDistRatio * im.opts.NodeRadius

	var remaining []arcPrim
	for _, a := range im.arcs {
		if math.Abs(im.mapLength(a.radius)-loopRadius) > im.radiusTol() {
			remaining = append(remaining, a)
			continue
		}

		center := im.mapPoint(a.center())
		var owner *diagram.Node
		bestErr := im.loopCenterTol()
		for _, n := range im.nodes {
			if e := math.Abs(n.Pos.Dist(center) - satDist); e <= bestErr {
				owner, bestErr = n, e
			}
		}
		if owner == nil {
			// Not a self-loop after all; leave it for the curved-edge
			// resolver.
			remaining = append(remaining, a)
			continue
		}

		im.edges = append(im.edges, &diagram.SelfLoop{
			On:          owner,
			AnchorAngle: math.Atan2(center.Y-owner.Pos.Y, center.X-owner.Pos.X),
		})
	}
	im.arcs = remaining
}

// resolveStraightEdges matches two-point stroked polylines to node pairs
// (a transition) or to one node plus a free endpoint (the start arrow).
func (im *Importer) resolveStraightEdges() {
	slack := im.straightSlack()

	for _, s := range im.strokes {
		if len(s.points) != 2 {
			// Multi-segment shafts are not produced by the paired
			// exporter; reconstruction gap.
			continue
		}
		p0 := im.mapPoint(s.points[0])
		p1 := im.mapPoint(s.points[1])
		a := im.nodeNear(p0, slack)
		b := im.nodeNear(p1, slack)

		switch {
		case a != nil && b != nil && a != b:
			im.edges = append(im.edges, &diagram.Transition{
				From: a, To: b, ParallelPart: 0.5,
			})
		case a != nil && b == nil:
			im.edges = append(im.edges, &diagram.StartArrow{
				Into: a, DeltaX: p1.X - a.Pos.X, DeltaY: p1.Y - a.Pos.Y,
			})
		case a == nil && b != nil:
			im.edges = append(im.edges, &diagram.StartArrow{
				Into: b, DeltaX: p0.X - b.Pos.X, DeltaY: p0.Y - b.Pos.Y,
			})
		}
		// Neither endpoint matched, or both hit the same node:
		// reconstruction gap.
	}
	im.strokes = nil
}

// resolveCurvedEdges matches the remaining arcs to node pairs. The arc
// alone is undirected, so an unconsumed arrowhead near one of its ends
// settles the direction; with no arrowhead in reach the drawn point order
// stands. The arc's angular midpoint is then fed back through the anchor
// parametrization so the recovered transition re-renders as the same arc.
func (im *Importer) resolveCurvedEdges() {
	slack := im.curvedSlack()

	for _, a := range im.arcs {
		start := im.mapPoint(a.start)
		end := im.mapPoint(a.pointAt(a.endDeg))
		from := im.nodeNear(start, slack)
		to := im.nodeNear(end, slack)
		if from == nil || to == nil || from == to {
			continue
		}

		if im.claimArrowheadNear(start) {
			from, to = to, from
		} else {
			im.claimArrowheadNear(end)
		}

		mid := im.mapPoint(a.pointAt((a.startDeg + a.endDeg) / 2))
		t := &diagram.Transition{From: from, To: to}
		t.SetAnchor(mid)
		t.ParallelPart = 0.5
		im.edges = append(im.edges, t)
	}
	im.arcs = nil
}

// claimArrowheadNear consumes the first arrowhead triangle whose tip lies
// within the arrowhead tolerance of p, reporting whether one was found.
func (im *Importer) claimArrowheadNear(p diagram.Point) bool {
	for i, f := range im.fills {
		tip := im.mapPoint(f.points[0])
		if tip.Dist(p) <= im.arrowTol() {
			im.fills = append(im.fills[:i], im.fills[i+1:]...)
			return true
		}
	}
	return false
}

// assignEdgeLabels is label pass 2: leftover text primitives attach to
// the nearest still-unlabeled edge, each edge kind contributing its own
// label-anchor point. First match wins; a label that reaches no edge is a
// reconstruction gap.
func (im *Importer) assignEdgeLabels() {
	candidates := make([]diagram.Edge, 0, len(im.edges))
	for _, e := range im.edges {
		if e.Label() == "" {
			candidates = append(candidates, e)
		}
	}

	for _, l := range im.labels {
		pos := im.mapPoint(l.pos)
		bestIdx := -1
		bestDist := im.edgeLabelTol()
		for i, e := range candidates {
			anchor := diagram.LabelAnchor(e, im.opts.NodeRadius)
			if d := anchor.Dist(pos); d <= bestDist {
				bestIdx, bestDist = i, d
			}
		}
		if bestIdx < 0 {
			continue
		}
		candidates[bestIdx].SetLabel(l.text)
		candidates = append(candidates[:bestIdx], candidates[bestIdx+1:]...)
	}
	im.labels = nil
}
