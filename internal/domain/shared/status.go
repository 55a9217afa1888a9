package shared

import (
	"fmt"
)

// Status is implemented by every closed lifecycle enum
type Status interface {
	~string
}

// Transitions is an explicit transition table: state -> allowed next states.
// A state with no entry (or an empty list) is terminal.
type Transitions[S Status] struct {
	name  string
	table map[S][]S
}

// NewTransitions builds a transition table. Every state named as a target
// must itself be a key so the enum stays closed.
func NewTransitions[S Status](name string, table map[S][]S) Transitions[S] {
	for from, targets := range table {
		for _, to := range targets {
			if _, ok := table[to]; !ok {
				panic(fmt.Sprintf("%s: transition %s -> %s targets an undeclared state", name, from, to))
			}
		}
	}
	return Transitions[S]{name: name, table: table}
}

// IsValid reports whether s is a declared state
func (t Transitions[S]) IsValid(s S) bool {
	_, ok := t.table[s]
	return ok
}

// CanTransition reports whether from -> to is allowed
func (t Transitions[S]) CanTransition(from, to S) bool {
	for _, next := range t.table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions
func (t Transitions[S]) IsTerminal(s S) bool {
	return t.IsValid(s) && len(t.table[s]) == 0
}

// Validate returns INVALID_INPUT when s is not a declared state
func (t Transitions[S]) Validate(s S) error {
	if !t.IsValid(s) {
		return NewInvalidInputError(fmt.Sprintf("invalid %s: %q", t.name, string(s)))
	}
	return nil
}

// Check returns INVALID_STATE when from -> to is not allowed
func (t Transitions[S]) Check(from, to S) error {
	if err := t.Validate(to); err != nil {
		return err
	}
	if !t.CanTransition(from, to) {
		return NewInvalidStateError(fmt.Sprintf("cannot change %s from %s to %s", t.name, from, to))
	}
	return nil
}

// States returns every declared state
func (t Transitions[S]) States() []S {
	out := make([]S, 0, len(t.table))
	for s := range t.table {
		out = append(out, s)
	}
	return out
}
