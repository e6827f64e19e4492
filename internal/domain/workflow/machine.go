package workflow

import (
	"context"
	"fmt"
	"sort"
)

// Machine tracks one bill's status and validates transitions against its table.
// A Machine is not safe for concurrent use.
type Machine struct {
	current State
	table   map[State]map[Trigger][]transition
}

// State returns the current status
func (m *Machine) State() State {
	return m.current
}

// CanFire reports whether trigger has any transition from the current status.
// Guards are not evaluated.
func (m *Machine) CanFire(trigger Trigger) bool {
	return len(m.table[m.current][trigger]) > 0
}

// Fire applies trigger, moving to the first candidate whose guard passes
func (m *Machine) Fire(ctx context.Context, trigger Trigger) error {
	candidates := m.table[m.current][trigger]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range candidates {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}

	return fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}

// PermittedTriggers lists the triggers configured for the current status, sorted
func (m *Machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.table[m.current]))
	for trigger := range m.table[m.current] {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
