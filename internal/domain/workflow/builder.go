package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides at fire time whether a transition may proceed
type GuardFunc func(ctx context.Context) bool

// Builder collects the permitted transitions of a lifecycle
type Builder struct {
	states map[State]*StateConfiguration
}

// StateConfiguration holds the outgoing transitions of one state
type StateConfiguration struct {
	from        State
	transitions map[Trigger][]transition
}

type transition struct {
	to    State
	guard GuardFunc
}

// NewBuilder creates an empty lifecycle builder
func NewBuilder() *Builder {
	return &Builder{states: make(map[State]*StateConfiguration)}
}

// Configure returns the configuration of a state, creating it on first use.
// Unknown states are a programming error and panic.
func (b *Builder) Configure(state State) *StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: configure unknown state %q", state))
	}
	cfg, ok := b.states[state]
	if !ok {
		cfg = &StateConfiguration{from: state, transitions: make(map[Trigger][]transition)}
		b.states[state] = cfg
	}
	return cfg
}

// Permit allows trigger to move the bill to the target state
func (c *StateConfiguration) Permit(trigger Trigger, to State) *StateConfiguration {
	return c.PermitIf(trigger, to, nil)
}

// PermitIf allows trigger to move the bill to the target state when guard passes.
// Candidates are tried in registration order.
func (c *StateConfiguration) PermitIf(trigger Trigger, to State, guard GuardFunc) *StateConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("workflow: permit to unknown state %q", to))
	}
	c.transitions[trigger] = append(c.transitions[trigger], transition{to: to, guard: guard})
	return c
}

// Build snapshots the configuration into a machine starting at initial
func (b *Builder) Build(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initial)
	}

	table := make(map[State]map[Trigger][]transition, len(b.states))
	for state, cfg := range b.states {
		triggers := make(map[Trigger][]transition, len(cfg.transitions))
		for trigger, ts := range cfg.transitions {
			triggers[trigger] = append([]transition(nil), ts...)
		}
		table[state] = triggers
	}

	return &Machine{current: initial, table: table}, nil
}
