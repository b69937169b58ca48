// Package diagram defines the canvas-space entities of a state-machine
// diagram: nodes, the three edge kinds, and the geometry that ties them
// together. Coordinates use a y-down canvas, matching the editor the
// diagrams originate from.
package diagram

import "fmt"

// DefaultNodeRadius is the radius of a state circle in canvas units.
// Every geometric convention in this package (accept rings, self-loop
// satellites, label anchors) is expressed relative to the node radius so
// diagrams authored at other scales keep working.
const DefaultNodeRadius = 30.0

// AcceptRingRatio is the inner ring's radius as a fraction of the node
// radius. An accept state is drawn as two concentric circles.
const AcceptRingRatio = 0.8

// Node is a state in the diagram.
type Node struct {
	Pos      Point
	Text     string
	IsAccept bool
}

// Edge is one of *Transition, *SelfLoop or *StartArrow. The unexported
// marker method keeps the union closed, so consumers can type-switch over
// exactly three cases.
type Edge interface {
	isEdge()

	// Label returns the edge's caption.
	Label() string
	// SetLabel replaces the edge's caption.
	SetLabel(string)
}

// Transition is a directed edge between two distinct nodes. Its curvature
// is parameterized by an anchor point expressed relative to the straight
// line From→To: ParallelPart positions the anchor along the line,
// PerpendicularPart offsets it sideways. A PerpendicularPart of zero means
// a straight edge.
type Transition struct {
	From, To          *Node
	Text              string
	ParallelPart      float64 // in [0,1] along From→To
	PerpendicularPart float64 // signed sideways offset of the anchor
}

// SelfLoop is a transition from a node back to itself, drawn as an arc on
// a small satellite circle offset from the node.
type SelfLoop struct {
	On          *Node
	AnchorAngle float64 // direction from the node to the satellite center
	Text        string
}

// StartArrow marks the initial state: an arrow with no source node.
type StartArrow struct {
	Into           *Node
	DeltaX, DeltaY float64 // from the node toward the arrow's visual origin
	Text           string
}

func (*Transition) isEdge() {}
func (*SelfLoop) isEdge()   {}
func (*StartArrow) isEdge() {}

func (t *Transition) Label() string     { return t.Text }
func (t *Transition) SetLabel(s string) { t.Text = s }
func (l *SelfLoop) Label() string       { return l.Text }
func (l *SelfLoop) SetLabel(s string)   { l.Text = s }
func (a *StartArrow) Label() string     { return a.Text }
func (a *StartArrow) SetLabel(s string) { a.Text = s }

// Graph is a complete diagram. Edges hold pointers into Nodes; a
// well-formed graph never contains an edge referencing a node outside its
// own node list.
type Graph struct {
	Nodes []*Node
	Edges []Edge
}

// NodeIndex returns the position of n in the node list, or -1.
func (g *Graph) NodeIndex(n *Node) int {
	for i, other := range g.Nodes {
		if other == n {
			return i
		}
	}
	return -1
}

// StartNode returns the node the start arrow points into, or nil when the
// diagram has no start arrow.
func (g *Graph) StartNode() *Node {
	for _, e := range g.Edges {
		if sa, ok := e.(*StartArrow); ok {
			return sa.Into
		}
	}
	return nil
}

// Validate checks that every edge references nodes present in the graph.
func (g *Graph) Validate() error {
	for i, e := range g.Edges {
		switch e := e.(type) {
		case *Transition:
			if g.NodeIndex(e.From) < 0 || g.NodeIndex(e.To) < 0 {
				return &DanglingEdgeError{Index: i}
			}
		case *SelfLoop:
			if g.NodeIndex(e.On) < 0 {
				return &DanglingEdgeError{Index: i}
			}
		case *StartArrow:
			if g.NodeIndex(e.Into) < 0 {
				return &DanglingEdgeError{Index: i}
			}
		}
	}
	return nil
}

// DanglingEdgeError reports an edge whose node reference is not part of
// the same graph.
type DanglingEdgeError struct {
	Index int
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("diagram: edge %d references a node outside the graph", e.Index)
}
