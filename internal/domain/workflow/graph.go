package workflow

import "fmt"

// transitions is the fixed directed graph of legal status changes. Every
// status mutation must pass ValidateTransition before persistence.
var transitions = map[State][]State{
	StateToAssign:           {StateTodo, StateInProgress, StateCancelled},
	StateTodo:               {StateInProgress, StateToAssign, StateCancelled},
	StateInProgress:         {StateDone, StateTodo, StatePendingValidation1, StateReview, StateCancelled},
	StatePendingValidation1: {StatePendingValidation2, StateValidated, StateRefused, StateReview, StateCancelled},
	StatePendingValidation2: {StateValidated, StateRefused, StateReview, StateCancelled},
	StateValidated:          {StateDone, StateCancelled},
	StateRefused:            {StateTodo, StateReview, StateCancelled},
	StateReview:             {StateTodo, StateInProgress, StateCancelled},
	StateDone:               {},
	StateCancelled:          {},
}

// Transitions returns the legal target states from the given state.
func Transitions(from State) []State {
	targets := transitions[from]
	out := make([]State, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether from → to is a legal status change.
func CanTransition(from, to State) bool {
	for _, target := range transitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition unless from → to is legal.
func ValidateTransition(from, to State) error {
	if !from.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidState, from)
	}
	if !to.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidState, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
