package machine

import (
	"sort"
	"strings"
)

// Determinize converts the machine to an equivalent deterministic one via
// the powerset construction. State names in the result are comma-joined
// sets of original states. An already-deterministic machine comes back as
// a copy.
func (m *Machine) Determinize() *Machine {
	if m.IsDeterministic() {
		out := *m
		out.States = append([]string(nil), m.States...)
		out.Alphabet = append([]string(nil), m.Alphabet...)
		out.Accepting = append([]string(nil), m.Accepting...)
		out.Transitions = append([]Transition(nil), m.Transitions...)
		return &out
	}

	dfa := &Machine{
		Name:     m.Name,
		Alphabet: append([]string(nil), m.Alphabet...),
	}

	closure := func(states map[string]bool) map[string]bool {
		out := make(map[string]bool, len(states))
		for s := range states {
			out[s] = true
		}
		changed := true
		for changed {
			changed = false
			for s := range out {
				for _, t := range m.transitionsFrom(s, "") {
					if !out[t.To] {
						out[t.To] = true
						changed = true
					}
				}
			}
		}
		return out
	}

	setName := func(states map[string]bool) string {
		list := make([]string, 0, len(states))
		for s := range states {
			list = append(list, s)
		}
		sort.Strings(list)
		return strings.Join(list, ",")
	}

	anyAccepting := func(states map[string]bool) bool {
		for s := range states {
			if m.IsAccepting(s) {
				return true
			}
		}
		return false
	}

	initial := closure(map[string]bool{m.Initial: true})
	dfa.Initial = setName(initial)

	queue := []map[string]bool{initial}
	seen := map[string]bool{dfa.Initial: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		name := setName(current)

		dfa.States = append(dfa.States, name)
		if anyAccepting(current) {
			dfa.Accepting = append(dfa.Accepting, name)
		}

		for _, input := range m.Alphabet {
			next := make(map[string]bool)
			for s := range current {
				for _, t := range m.transitionsFrom(s, input) {
					next[t.To] = true
				}
			}
			if len(next) == 0 {
				continue
			}
			next = closure(next)
			nextName := setName(next)
			dfa.Transitions = append(dfa.Transitions, Transition{
				From: name, Input: input, To: nextName,
			})
			if !seen[nextName] {
				seen[nextName] = true
				queue = append(queue, next)
			}
		}
	}

	return dfa
}
