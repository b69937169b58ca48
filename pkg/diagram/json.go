package diagram

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Document is the on-disk form of a diagram: the graph plus identity
// metadata. Documents replace the host editor's local-storage persistence
// with plain JSON files.
type Document struct {
	ID    string
	Name  string
	Graph *Graph
}

// NewDocument wraps a graph in a document with a fresh identity.
func NewDocument(name string, g *Graph) *Document {
	return &Document{ID: uuid.NewString(), Name: name, Graph: g}
}

// jsonDocument is the JSON representation of a Document. Edges reference
// nodes by index into the node list.
type jsonDocument struct {
	ID    string     `json:"id"`
	Name  string     `json:"name,omitempty"`
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Text   string  `json:"text,omitempty"`
	Accept bool    `json:"accept,omitempty"`
}

type jsonEdge struct {
	Kind  string  `json:"kind"` // "transition", "selfLoop" or "startArrow"
	From  int     `json:"from,omitempty"`
	To    int     `json:"to,omitempty"`
	On    int     `json:"on,omitempty"`
	Into  int     `json:"into,omitempty"`
	Text  string  `json:"text,omitempty"`
	Par   float64 `json:"parallelPart,omitempty"`
	Perp  float64 `json:"perpendicularPart,omitempty"`
	Angle float64 `json:"anchorAngle,omitempty"`
	DX    float64 `json:"deltaX,omitempty"`
	DY    float64 `json:"deltaY,omitempty"`
}

// ToJSON serializes a document.
func ToJSON(d *Document, pretty bool) ([]byte, error) {
	g := d.Graph
	if g == nil {
		g = &Graph{}
	}
	j := jsonDocument{ID: d.ID, Name: d.Name}

	index := make(map[*Node]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n] = i
		j.Nodes = append(j.Nodes, jsonNode{
			X: n.Pos.X, Y: n.Pos.Y, Text: n.Text, Accept: n.IsAccept,
		})
	}

	for i, e := range g.Edges {
		var je jsonEdge
		switch e := e.(type) {
		case *Transition:
			from, okF := index[e.From]
			to, okT := index[e.To]
			if !okF || !okT {
				return nil, &DanglingEdgeError{Index: i}
			}
			je = jsonEdge{Kind: "transition", From: from, To: to,
				Text: e.Text, Par: e.ParallelPart, Perp: e.PerpendicularPart}
		case *SelfLoop:
			on, ok := index[e.On]
			if !ok {
				return nil, &DanglingEdgeError{Index: i}
			}
			je = jsonEdge{Kind: "selfLoop", On: on, Text: e.Text, Angle: e.AnchorAngle}
		case *StartArrow:
			into, ok := index[e.Into]
			if !ok {
				return nil, &DanglingEdgeError{Index: i}
			}
			je = jsonEdge{Kind: "startArrow", Into: into, Text: e.Text,
				DX: e.DeltaX, DY: e.DeltaY}
		}
		j.Edges = append(j.Edges, je)
	}

	if pretty {
		return json.MarshalIndent(j, "", "  ")
	}
	return json.Marshal(j)
}

// ParseJSON deserializes a document, validating every edge's node indexes.
func ParseJSON(data []byte) (*Document, error) {
	var j jsonDocument
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}

	g := &Graph{}
	for _, jn := range j.Nodes {
		g.Nodes = append(g.Nodes, &Node{
			Pos:      Point{jn.X, jn.Y},
			Text:     jn.Text,
			IsAccept: jn.Accept,
		})
	}

	node := func(i int) (*Node, error) {
		if i < 0 || i >= len(g.Nodes) {
			return nil, fmt.Errorf("diagram: node index %d out of range", i)
		}
		return g.Nodes[i], nil
	}

	for _, je := range j.Edges {
		switch je.Kind {
		case "transition":
			from, err := node(je.From)
			if err != nil {
				return nil, err
			}
			to, err := node(je.To)
			if err != nil {
				return nil, err
			}
			g.Edges = append(g.Edges, &Transition{From: from, To: to,
				Text: je.Text, ParallelPart: je.Par, PerpendicularPart: je.Perp})
		case "selfLoop":
			on, err := node(je.On)
			if err != nil {
				return nil, err
			}
			g.Edges = append(g.Edges, &SelfLoop{On: on, AnchorAngle: je.Angle, Text: je.Text})
		case "startArrow":
			into, err := node(je.Into)
			if err != nil {
				return nil, err
			}
			g.Edges = append(g.Edges, &StartArrow{Into: into,
				DeltaX: je.DX, DeltaY: je.DY, Text: je.Text})
		default:
			return nil, fmt.Errorf("diagram: unknown edge kind %q", je.Kind)
		}
	}

	id := j.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Document{ID: id, Name: j.Name, Graph: g}, nil
}
