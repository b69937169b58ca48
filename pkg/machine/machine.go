// Package machine derives executable automata from diagram graphs. A
// reconstructed diagram and an interactively authored one flatten the
// same way: node captions name the states, edge captions carry the input
// symbols, the start arrow picks the initial state.
package machine

import (
	"fmt"
	"strings"

	"github.com/CarterSheard/fsm-mcos/pkg/diagram"
)

// Transition is a single-target transition. Input "" is epsilon.
type Transition struct {
	From  string
	Input string
	To    string
}

// Machine is a flattened automaton. Nondeterminism is represented by
// multiple Transition entries for the same (From, Input) pair.
type Machine struct {
	Name        string
	States      []string
	Alphabet    []string
	Initial     string
	Accepting   []string
	Transitions []Transition
}

// FromGraph flattens a diagram into an automaton. States take their
// node's display text, falling back to s0, s1, ... for unlabeled nodes;
// duplicate names get a numeric suffix. Edge captions are split on commas
// into individual symbols; an empty caption is an epsilon transition. The
// graph must contain a start arrow to fix the initial state.
func FromGraph(g *diagram.Graph) (*Machine, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{}
	names := make(map[*diagram.Node]string, len(g.Nodes))
	used := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		base := n.Text
		if base == "" {
			base = fmt.Sprintf("s%d", i)
		}
		name := base
		for suffix := 2; used[name]; suffix++ {
			name = fmt.Sprintf("%s_%d", base, suffix)
		}
		used[name] = true
		names[n] = name
		m.States = append(m.States, name)
		if n.IsAccept {
			m.Accepting = append(m.Accepting, name)
		}
	}

	addEdge := func(from, to *diagram.Node, caption string) {
		for _, sym := range splitSymbols(caption) {
			m.addSymbol(sym)
			m.Transitions = append(m.Transitions, Transition{
				From: names[from], Input: sym, To: names[to],
			})
		}
	}

	var start *diagram.Node
	for _, e := range g.Edges {
		switch e := e.(type) {
		case *diagram.Transition:
			addEdge(e.From, e.To, e.Text)
		case *diagram.SelfLoop:
			addEdge(e.On, e.On, e.Text)
		case *diagram.StartArrow:
			if start != nil && start != e.Into {
				return nil, fmt.Errorf("machine: diagram has more than one start arrow")
			}
			start = e.Into
		}
	}
	if start == nil {
		return nil, fmt.Errorf("machine: diagram has no start arrow")
	}
	m.Initial = names[start]

	return m, nil
}

// splitSymbols splits an edge caption into input symbols. An empty
// caption is a single epsilon symbol.
func splitSymbols(caption string) []string {
	if strings.TrimSpace(caption) == "" {
		return []string{""}
	}
	var out []string
	for _, part := range strings.Split(caption, ",") {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func (m *Machine) addSymbol(sym string) {
	if sym == "" {
		return
	}
	for _, s := range m.Alphabet {
		if s == sym {
			return
		}
	}
	m.Alphabet = append(m.Alphabet, sym)
}

// IsAccepting reports whether state is an accepting state.
func (m *Machine) IsAccepting(state string) bool {
	for _, s := range m.Accepting {
		if s == state {
			return true
		}
	}
	return false
}

// StateIndex returns the position of state in the state list, or -1.
func (m *Machine) StateIndex(state string) int {
	for i, s := range m.States {
		if s == state {
			return i
		}
	}
	return -1
}

// transitionsFrom returns all transitions out of a state on the given
// input ("" for epsilon).
func (m *Machine) transitionsFrom(state, input string) []Transition {
	var out []Transition
	for _, t := range m.Transitions {
		if t.From == state && t.Input == input {
			out = append(out, t)
		}
	}
	return out
}

// IsDeterministic reports whether the machine has no epsilon transitions
// and at most one successor per (state, input).
func (m *Machine) IsDeterministic() bool {
	seen := make(map[[2]string]bool)
	for _, t := range m.Transitions {
		if t.Input == "" {
			return false
		}
		key := [2]string{t.From, t.Input}
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

// Validate checks the machine is well-formed.
func (m *Machine) Validate() error {
	if len(m.States) == 0 {
		return fmt.Errorf("machine has no states")
	}
	if m.Initial == "" {
		return fmt.Errorf("machine has no initial state")
	}
	if m.StateIndex(m.Initial) < 0 {
		return fmt.Errorf("initial state %q not in states", m.Initial)
	}
	for _, a := range m.Accepting {
		if m.StateIndex(a) < 0 {
			return fmt.Errorf("accepting state %q not in states", a)
		}
	}
	for i, t := range m.Transitions {
		if m.StateIndex(t.From) < 0 {
			return fmt.Errorf("transition %d: from state %q not in states", i, t.From)
		}
		if m.StateIndex(t.To) < 0 {
			return fmt.Errorf("transition %d: to state %q not in states", i, t.To)
		}
	}
	return nil
}

// String returns a short textual summary.
func (m *Machine) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Machine: %s\n", m.Name)
	fmt.Fprintf(&sb, "  States: %v\n", m.States)
	fmt.Fprintf(&sb, "  Alphabet: %v\n", m.Alphabet)
	fmt.Fprintf(&sb, "  Initial: %s\n", m.Initial)
	fmt.Fprintf(&sb, "  Accepting: %v\n", m.Accepting)
	fmt.Fprintf(&sb, "  Transitions: %d\n", len(m.Transitions))
	return sb.String()
}
