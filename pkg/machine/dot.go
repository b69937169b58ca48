package machine

import (
	"fmt"
	"strings"
)

// DOT converts the machine to Graphviz DOT format. Accepting states get a
// double circle; the initial state is pointed at by an invisible node.
func (m *Machine) DOT(title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FSM {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		fmt.Fprintf(&sb, "    label=\"%s\";\n\n", escapeDOT(title))
	}

	if m.Initial != "" {
		sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
		fmt.Fprintf(&sb, "    __start -> \"%s\";\n\n", escapeDOT(m.Initial))
	}

	for _, s := range m.States {
		shape := "circle"
		if m.IsAccepting(s) {
			shape = "doublecircle"
		}
		fmt.Fprintf(&sb, "    \"%s\" [shape=%s];\n", escapeDOT(s), shape)
	}
	sb.WriteString("\n")

	// Group parallel transitions into one labeled edge.
	labels := make(map[[2]string][]string)
	var order [][2]string
	for _, t := range m.Transitions {
		key := [2]string{t.From, t.To}
		if _, ok := labels[key]; !ok {
			order = append(order, key)
		}
		sym := t.Input
		if sym == "" {
			sym = "ε"
		}
		labels[key] = append(labels[key], sym)
	}
	for _, key := range order {
		fmt.Fprintf(&sb, "    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(key[0]), escapeDOT(key[1]),
			escapeDOT(strings.Join(labels[key], ", ")))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
