package workflow

import (
	"errors"

	"github.com/goliatone/go-formreader/pkg/model"
)

// State is the workflow position.
type State string

const (
	StateEntryPending State = "entry_pending"
	StateFormLoaded   State = "form_loaded"
)

// Action is a trigger the presentation layer may offer.
type Action string

const (
	ActionApply  Action = "apply"
	ActionSubmit Action = "submit"
	ActionReset  Action = "reset"
)

var (
	// ErrInvalidTransition is returned when an action is not accepted in the
	// current state.
	ErrInvalidTransition = errors.New("workflow: action not allowed in current state")
	// ErrUnknownQuestion is returned by SetAnswer for ids outside the form.
	ErrUnknownQuestion = errors.New("workflow: unknown question")
)

// View is what a front end needs to draw the current state.
type View struct {
	State     State
	EventID   string
	Questions []model.Question
	Answers   map[int]model.AnswerValue
	Errors    map[int]error
	Actions   []Action
}

// Actions lists the triggers accepted in s.
func (s State) Actions() []Action {
	switch s {
	case StateFormLoaded:
		return []Action{ActionSubmit, ActionReset}
	default:
		return []Action{ActionApply}
	}
}
