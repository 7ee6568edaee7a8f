package workflow

// State represents a task status in the workflow lifecycle
type State string

const (
	StateToAssign           State = "to_assign"
	StateTodo               State = "todo"
	StateInProgress         State = "in-progress"
	StatePendingValidation1 State = "pending_validation_1"
	StatePendingValidation2 State = "pending_validation_2"
	StateValidated          State = "validated"
	StateRefused            State = "refused"
	StateReview             State = "review"
	StateDone               State = "done"
	StateCancelled          State = "cancelled"
)

var validStates = map[State]bool{
	StateToAssign:           true,
	StateTodo:               true,
	StateInProgress:         true,
	StatePendingValidation1: true,
	StatePendingValidation2: true,
	StateValidated:          true,
	StateRefused:            true,
	StateReview:             true,
	StateDone:               true,
	StateCancelled:          true,
}

var terminalStates = map[State]bool{
	StateDone:      true,
	StateCancelled: true,
}

// IsTerminal returns true if the state admits no outgoing transitions
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid task status
func (s State) IsValid() bool {
	return validStates[s]
}
