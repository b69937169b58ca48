package pict

import (
	"errors"
	"math"
	"testing"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
)

func mustParse(t *testing.T, text string) *diagram.Graph {
	t.Helper()
	g, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return g
}

func wrap(statements string) string {
	return "\\begin{pict}[scale=0.1]\n" + statements + "\\end{pict}\n"
}

func TestParseSingleNode(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke (30,-30) label {A};\n"))

	if len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	n := g.Nodes[0]
	if n.Pos.Dist(diagram.Point{X: 300, Y: 300}) > 1e-6 {
		t.Errorf("position expected (300,300), got (%.2f,%.2f)", n.Pos.X, n.Pos.Y)
	}
	if n.Text != "A" {
		t.Errorf("label expected A, got %q", n.Text)
	}
	if n.IsAccept {
		t.Error("node should not be accepting")
	}
}

func TestParseAcceptState(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (30,-30) circle (2.4);\n"+
			"stroke (30,-30) label {A};\n"))

	if len(g.Nodes) != 1 {
		t.Fatalf("inner ring must not create a node; got %d nodes", len(g.Nodes))
	}
	if !g.Nodes[0].IsAccept {
		t.Error("inner ring should mark the node accepting")
	}
}

func TestParseDuplicateCircleDedup(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (30.05,-30) circle (3);\n"))

	if len(g.Nodes) != 1 {
		t.Errorf("coincident outer rings should dedupe to one node, got %d", len(g.Nodes))
	}
}

func TestParseInnerRingWithoutNodeDropped(t *testing.T) {
	g := mustParse(t, wrap("stroke [black] (30,-30) circle (2.4);\n"))
	if len(g.Nodes) != 0 {
		t.Errorf("a lone inner ring is a reconstruction gap, got %d nodes", len(g.Nodes))
	}
}

func TestParseStraightTransition(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (50,-30) circle (3);\n"+
			"stroke [black] (33,-30) -- (47,-30);\n"+
			"stroke (40,-30) label [above] {a};\n"))

	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	tr, ok := g.Edges[0].(*diagram.Transition)
	if !ok {
		t.Fatalf("expected transition, got %T", g.Edges[0])
	}
	// Point order fixes direction for straight shafts.
	if tr.From != g.Nodes[0] || tr.To != g.Nodes[1] {
		t.Error("transition endpoints should follow point order")
	}
	if tr.PerpendicularPart != 0 {
		t.Errorf("straight transition should have no offset, got %v", tr.PerpendicularPart)
	}
	if tr.Text != "a" {
		t.Errorf("edge label expected a, got %q", tr.Text)
	}
}

func TestParseStartArrow(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (22,-30) -- (27,-30);\n"))

	if len(g.Edges) != 1 {
		t.Fatalf("got %d edges", len(g.Edges))
	}
	sa, ok := g.Edges[0].(*diagram.StartArrow)
	if !ok {
		t.Fatalf("expected start arrow, got %T", g.Edges[0])
	}
	if sa.Into != g.Nodes[0] {
		t.Error("start arrow should point into the node")
	}
	// The delta runs from the node toward the free endpoint, whichever
	// point order the statement used.
	if math.Abs(sa.DeltaX+80) > 1e-6 || math.Abs(sa.DeltaY) > 1e-6 {
		t.Errorf("delta expected (-80,0), got (%.2f,%.2f)", sa.DeltaX, sa.DeltaY)
	}
}

func TestParseStartArrowReversedPointOrder(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (27,-30) -- (22,-30);\n"))

	sa, ok := g.Edges[0].(*diagram.StartArrow)
	if !ok {
		t.Fatalf("expected start arrow, got %T", g.Edges[0])
	}
	if math.Abs(sa.DeltaX+80) > 1e-6 {
		t.Errorf("delta expected (-80,0) regardless of point order, got (%.2f,%.2f)",
			sa.DeltaX, sa.DeltaY)
	}
}

func TestParseShaftBetweenNothingDropped(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (90,-90) -- (95,-95);\n"))

	if len(g.Edges) != 0 {
		t.Errorf("shaft touching no node is a reconstruction gap, got %d edges", len(g.Edges))
	}
}

func TestParseSelfLoop(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (32.25,-25.5) arc (0:288:2.25);\n"))

	if len(g.Edges) != 1 {
		t.Fatalf("got %d edges", len(g.Edges))
	}
	loop, ok := g.Edges[0].(*diagram.SelfLoop)
	if !ok {
		t.Fatalf("expected self-loop, got %T", g.Edges[0])
	}
	if loop.On != g.Nodes[0] {
		t.Error("loop should attach to its node")
	}
	// Satellite center (300,255) sits straight above the node.
	if math.Abs(loop.AnchorAngle+math.Pi/2) > 0.01 {
		t.Errorf("anchor angle expected -pi/2, got %.4f", loop.AnchorAngle)
	}
}

func TestParseCurvedTransition(t *testing.T) {
	// Arc from (300,300) to (500,300) bulging up through (400,250);
	// the arrowhead tip at the arc's end makes it run left to right.
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (50,-30) circle (3);\n"+
			"stroke [black] (30,-30) arc (143.13:36.87:12.5);\n"+
			"fill [black] (50,-30) -- (49.5,-29) -- (49.5,-31);\n"+
			"stroke (40,-26) label [above] {x};\n"))

	if len(g.Edges) != 1 {
		t.Fatalf("got %d edges", len(g.Edges))
	}
	tr, ok := g.Edges[0].(*diagram.Transition)
	if !ok {
		t.Fatalf("expected transition, got %T", g.Edges[0])
	}
	if tr.From != g.Nodes[0] || tr.To != g.Nodes[1] {
		t.Error("arrowhead at arc end should keep point order")
	}
	if math.Abs(tr.ParallelPart-0.5) > 1e-9 {
		t.Errorf("parallel part expected 0.5, got %v", tr.ParallelPart)
	}
	if math.Abs(tr.PerpendicularPart+50) > 0.2 {
		t.Errorf("perpendicular part expected -50, got %.4f", tr.PerpendicularPart)
	}
	if tr.Text != "x" {
		t.Errorf("label expected x, got %q", tr.Text)
	}
}

func TestParseCurvedTransitionArrowheadAtStart(t *testing.T) {
	// Same arc, arrowhead near the drawn start: direction flips.
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (50,-30) circle (3);\n"+
			"stroke [black] (30,-30) arc (143.13:36.87:12.5);\n"+
			"fill [black] (30,-30) -- (30.5,-29) -- (30.5,-31);\n"))

	tr, ok := g.Edges[0].(*diagram.Transition)
	if !ok {
		t.Fatalf("expected transition, got %T", g.Edges[0])
	}
	if tr.From != g.Nodes[1] || tr.To != g.Nodes[0] {
		t.Error("arrowhead at arc start should reverse the edge")
	}
	if math.Abs(tr.PerpendicularPart-50) > 0.2 {
		t.Errorf("perpendicular part expected +50 after reversal, got %.4f",
			tr.PerpendicularPart)
	}
}

func TestParseArcBetweenSameNodeDropped(t *testing.T) {
	// An arc whose both ends resolve to one node and whose radius is
	// outside the satellite class is unrecoverable.
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (33,-30) arc (0:180:1);\n"))

	if len(g.Edges) != 0 {
		t.Errorf("expected the arc to be dropped, got %d edges", len(g.Edges))
	}
}

func TestParseMissingBlock(t *testing.T) {
	_, err := Parse("stroke [black] (30,-30) circle (3);")
	if err == nil {
		t.Fatal("input without a pict block must fail")
	}
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Errorf("expected StructuralError, got %T", err)
	}
}

func TestParseUnclosedBlock(t *testing.T) {
	_, err := Parse("\\begin{pict}\nstroke [black] (30,-30) circle (3);")
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Errorf("expected StructuralError for unclosed block, got %v", err)
	}
}

func TestParseEmptyBlock(t *testing.T) {
	// A block with no recoverable primitives is a valid empty graph,
	// not an error; the caller decides whether that is acceptable.
	g := mustParse(t, wrap(""))
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Error("empty block should produce an empty graph")
	}
}

func TestParseIgnoresUnknownStatements(t *testing.T) {
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"shade [gray] rectangle (0,0) (10,10);\n"+
			"stroke dashpattern on 2 off 2;\n"))

	if len(g.Nodes) != 1 {
		t.Errorf("decorative statements must not block the import, got %d nodes",
			len(g.Nodes))
	}
}

func TestParseScaleOption(t *testing.T) {
	g := mustParse(t, "\\begin{pict}[scale=0.2]\n"+
		"stroke [black] (60,-60) circle (6);\n"+
		"\\end{pict}\n")

	if len(g.Nodes) != 1 {
		t.Fatalf("got %d nodes", len(g.Nodes))
	}
	if g.Nodes[0].Pos.Dist(diagram.Point{X: 300, Y: 300}) > 1e-6 {
		t.Errorf("scale option should drive the mapping, got (%.2f,%.2f)",
			g.Nodes[0].Pos.X, g.Nodes[0].Pos.Y)
	}
}

func TestParseLabelFirstMatchWins(t *testing.T) {
	// Two captions, one edge: the first caption claims the edge, the
	// second finds no unlabeled edge and is dropped.
	g := mustParse(t, wrap(
		"stroke [black] (30,-30) circle (3);\n"+
			"stroke [black] (50,-30) circle (3);\n"+
			"stroke [black] (33,-30) -- (47,-30);\n"+
			"stroke (40,-30) label [above] {first};\n"+
			"stroke (40,-31) label [below] {second};\n"))

	tr := g.Edges[0].(*diagram.Transition)
	if tr.Text != "first" {
		t.Errorf("first caption should win, got %q", tr.Text)
	}
}

func TestImporterReuse(t *testing.T) {
	im := NewImporter(DefaultImportOptions())

	g1, err := im.Parse(wrap("stroke [black] (30,-30) circle (3);\n"))
	if err != nil {
		t.Fatalf("first parse: %v", err)
	}
	g2, err := im.Parse(wrap("stroke [black] (70,-30) circle (3);\n"))
	if err != nil {
		t.Fatalf("second parse: %v", err)
	}

	if len(g1.Nodes) != 1 || len(g2.Nodes) != 1 {
		t.Fatal("each parse should see only its own primitives")
	}
	if g2.Nodes[0].Pos.Dist(diagram.Point{X: 700, Y: 300}) > 1e-6 {
		t.Error("state leaked between parses")
	}
}
