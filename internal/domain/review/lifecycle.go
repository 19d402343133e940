package review

import "strings"

// Action is what the employee form asks for when it is saved.
type Action string

const (
	ActionSave   Action = "save"
	ActionSubmit Action = "submit"
)

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionSave, "":
		return ActionSave, nil
	case ActionSubmit:
		return ActionSubmit, nil
	}
	return "", ErrInvalidAction
}

// Transition returns the status a review moves to when the employee form is
// saved with action. Submitted reviews have no way back.
//
// Rating and supervisor comment writes never go through Transition.
func Transition(from Status, action Action) (Status, error) {
	if !from.IsValid() {
		return "", ErrInvalidStatus
	}
	if from == StatusSubmitted {
		return "", ErrReviewAlreadySubmitted
	}

	switch action {
	case ActionSave:
		return StatusDraft, nil
	case ActionSubmit:
		return StatusSubmitted, nil
	}
	return "", ErrInvalidAction
}
