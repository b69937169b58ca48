package machine

import (
	"fmt"
	"sort"
)

// Runner steps a machine through an input sequence. Nondeterministic
// machines track every possible current state simultaneously.
type Runner struct {
	m       *Machine
	current map[string]bool
	history []Step
}

// Step records one executed input.
type Step struct {
	Input      string
	FromStates []string
	ToStates   []string
}

// NewRunner creates a runner positioned on the initial state's epsilon
// closure.
func NewRunner(m *Machine) (*Runner, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine: %w", err)
	}
	r := &Runner{m: m}
	r.Reset()
	return r, nil
}

// Reset returns the runner to the initial state, clearing history.
func (r *Runner) Reset() {
	r.current = r.epsilonClosure(map[string]bool{r.m.Initial: true})
	r.history = nil
}

func (r *Runner) epsilonClosure(states map[string]bool) map[string]bool {
	closure := make(map[string]bool, len(states))
	for s := range states {
		closure[s] = true
	}
	changed := true
	for changed {
		changed = false
		for s := range closure {
			for _, t := range r.m.transitionsFrom(s, "") {
				if !closure[t.To] {
					closure[t.To] = true
					changed = true
				}
			}
		}
	}
	return closure
}

// Step consumes one input symbol. The machine is allowed to die: an input
// with no outgoing transition leaves the runner with zero current states,
// and every later step keeps it there.
func (r *Runner) Step(input string) Step {
	from := r.CurrentStates()

	next := make(map[string]bool)
	for s := range r.current {
		for _, t := range r.m.transitionsFrom(s, input) {
			next[t.To] = true
		}
	}
	r.current = r.epsilonClosure(next)

	step := Step{Input: input, FromStates: from, ToStates: r.CurrentStates()}
	r.history = append(r.history, step)
	return step
}

// CurrentStates returns the sorted set of possible current states.
func (r *Runner) CurrentStates() []string {
	out := make([]string, 0, len(r.current))
	for s := range r.current {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// InAccepting reports whether any current state accepts.
func (r *Runner) InAccepting() bool {
	for s := range r.current {
		if r.m.IsAccepting(s) {
			return true
		}
	}
	return false
}

// History returns the executed steps in order.
func (r *Runner) History() []Step { return r.history }

// Accepts runs the machine over an input sequence from a fresh start and
// reports whether it ends in an accepting state.
func (m *Machine) Accepts(inputs []string) (bool, error) {
	r, err := NewRunner(m)
	if err != nil {
		return false, err
	}
	for _, in := range inputs {
		r.Step(in)
	}
	return r.InAccepting(), nil
}
