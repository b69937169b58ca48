// Text exporters for the machine's transition structure: an adjacency
// matrix and an adjacency list. Both address states in list order.

package machine

import (
	"fmt"
	"strings"
)

// AdjacencyMatrix returns a text table with one row and column per state.
// Each cell lists the input symbols that move row-state to column-state,
// "." when there is no transition. Epsilon shows as "eps".
func (m *Machine) AdjacencyMatrix() string {
	cells := make(map[[2]string][]string)
	for _, t := range m.Transitions {
		key := [2]string{t.From, t.To}
		cells[key] = append(cells[key], symbolOrEps(t.Input))
	}

	width := 1
	for _, s := range m.States {
		if len(s) > width {
			width = len(s)
		}
	}
	for _, syms := range cells {
		if l := len(strings.Join(syms, ",")); l > width {
			width = l
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s", width+2, "")
	for _, col := range m.States {
		fmt.Fprintf(&sb, "%-*s", width+2, col)
	}
	sb.WriteString("\n")

	for _, row := range m.States {
		fmt.Fprintf(&sb, "%-*s", width+2, row)
		for _, col := range m.States {
			cell := "."
			if syms, ok := cells[[2]string{row, col}]; ok {
				cell = strings.Join(syms, ",")
			}
			fmt.Fprintf(&sb, "%-*s", width+2, cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// AdjacencyList returns one line per state listing its outgoing
// transitions as "input -> target" pairs.
func (m *Machine) AdjacencyList() string {
	var sb strings.Builder
	for _, s := range m.States {
		fmt.Fprintf(&sb, "%s:", s)
		first := true
		for _, t := range m.Transitions {
			if t.From != s {
				continue
			}
			if !first {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " %s -> %s", symbolOrEps(t.Input), t.To)
			first = false
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func symbolOrEps(input string) string {
	if input == "" {
		return "eps"
	}
	return input
}
