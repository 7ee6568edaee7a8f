package workflow

import (
	"context"
	"fmt"
)

// Trigger represents an intent that can cause a state transition
type Trigger string

const (
	TriggerAssign            Trigger = "ASSIGN"
	TriggerStart             Trigger = "START"
	TriggerSendBack          Trigger = "SEND_BACK"
	TriggerRequestValidation Trigger = "REQUEST_VALIDATION"
	TriggerAdvanceValidation Trigger = "ADVANCE_VALIDATION"
	TriggerValidate          Trigger = "VALIDATE"
	TriggerRefuse            Trigger = "REFUSE"
	TriggerReview            Trigger = "REVIEW"
	TriggerComplete          Trigger = "COMPLETE"
	TriggerCancel            Trigger = "CANCEL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// NewTaskMachine builds a state machine over the task status graph starting
// from the given state. The trigger wiring mirrors the transition table in
// graph.go.
func NewTaskMachine(initial State) StateMachine {
	b := NewBuilder()

	b.Configure(StateToAssign).
		Permit(TriggerAssign, StateTodo).
		Permit(TriggerStart, StateInProgress).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateTodo).
		Permit(TriggerStart, StateInProgress).
		Permit(TriggerSendBack, StateToAssign).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateInProgress).
		Permit(TriggerComplete, StateDone).
		Permit(TriggerSendBack, StateTodo).
		Permit(TriggerRequestValidation, StatePendingValidation1).
		Permit(TriggerReview, StateReview).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StatePendingValidation1).
		Permit(TriggerAdvanceValidation, StatePendingValidation2).
		Permit(TriggerValidate, StateValidated).
		Permit(TriggerRefuse, StateRefused).
		Permit(TriggerReview, StateReview).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StatePendingValidation2).
		Permit(TriggerValidate, StateValidated).
		Permit(TriggerRefuse, StateRefused).
		Permit(TriggerReview, StateReview).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateValidated).
		Permit(TriggerComplete, StateDone).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateRefused).
		Permit(TriggerSendBack, StateTodo).
		Permit(TriggerReview, StateReview).
		Permit(TriggerCancel, StateCancelled)

	b.Configure(StateReview).
		Permit(TriggerSendBack, StateTodo).
		Permit(TriggerStart, StateInProgress).
		Permit(TriggerCancel, StateCancelled)

	return b.Build(initial)
}

// TriggerFor resolves the trigger that moves the canonical task machine from
// one state to another. Callers acting on a target status rather than an
// intent use it to express the change as a trigger before firing.
func TriggerFor(from, to State) (Trigger, error) {
	if err := ValidateTransition(from, to); err != nil {
		return "", err
	}

	machine := NewTaskMachine(from)
	for _, trigger := range machine.PermittedTriggers() {
		candidate := NewTaskMachine(from)
		if candidate.Fire(context.Background(), trigger) != nil {
			continue
		}
		if candidate.State() == to {
			return trigger, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
