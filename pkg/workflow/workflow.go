// Package workflow drives one operator session through the two-state form
// machine: an event identifier is applied to load a form, answers are
// collected, then the form is submitted or reset. The workflow owns its
// state and answers; callers hold the instance for the session.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/engine"
	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/submission"
)

// FormSource resolves an event identifier to its current form.
type FormSource interface {
	Form(ctx context.Context, eventID string) (model.Form, error)
}

// Renderer collects one answer.
type Renderer interface {
	Render(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error)
}

// Builder turns answers into a submission.
type Builder interface {
	Build(answers map[int]model.AnswerValue) (submission.Submission, error)
}

// Submitter persists a submission.
type Submitter interface {
	Submit(ctx context.Context, sub submission.Submission) (int, error)
}

// Workflow is not safe for concurrent use; one session owns one instance.
type Workflow struct {
	forms     FormSource
	renderer  Renderer
	builder   Builder
	submitter Submitter

	state     State
	eventID   string
	questions []model.Question
	answers   map[int]model.AnswerValue
	errors    map[int]error
}

// New returns a workflow in StateEntryPending.
func New(forms FormSource, renderer Renderer, builder Builder, submitter Submitter) (*Workflow, error) {
	switch {
	case forms == nil:
		return nil, errors.New("workflow: form source is required")
	case renderer == nil:
		return nil, errors.New("workflow: renderer is required")
	case builder == nil:
		return nil, errors.New("workflow: builder is required")
	case submitter == nil:
		return nil, errors.New("workflow: submitter is required")
	}
	w := &Workflow{
		forms:     forms,
		renderer:  renderer,
		builder:   builder,
		submitter: submitter,
	}
	w.clear()
	return w, nil
}

// State reports the current state.
func (w *Workflow) State() State {
	return w.state
}

// EventID reports the loaded form, empty while entry is pending.
func (w *Workflow) EventID() string {
	return w.eventID
}

// Apply loads the form for eventID. Unknown or empty forms leave the
// workflow in StateEntryPending with model.ErrFormNotFound; store failures
// leave it there too.
func (w *Workflow) Apply(ctx context.Context, eventID string) error {
	if w.state != StateEntryPending {
		return fmt.Errorf("%w: apply in %s", ErrInvalidTransition, w.state)
	}
	form, err := w.forms.Form(ctx, eventID)
	if err != nil {
		log.WithFields(log.Fields{"event_id": eventID}).Warnf("workflow: apply: %v", err)
		return err
	}
	if form.Empty() {
		return fmt.Errorf("workflow: event %q: %w", eventID, model.ErrFormNotFound)
	}

	w.clear()
	w.state = StateFormLoaded
	w.eventID = eventID
	w.questions = form.Questions
	log.WithFields(log.Fields{"event_id": eventID, "questions": len(form.Questions)}).Infof("workflow: form loaded")
	return nil
}

// Reload fetches the loaded form again. Answers to questions that vanished or
// changed variant are dropped. On failure the previous questions stay.
func (w *Workflow) Reload(ctx context.Context) error {
	if w.state != StateFormLoaded {
		return fmt.Errorf("%w: reload in %s", ErrInvalidTransition, w.state)
	}
	form, err := w.forms.Form(ctx, w.eventID)
	if err != nil {
		return err
	}
	w.questions = form.Questions

	kept := make(map[int]model.AnswerValue, len(w.answers))
	for _, q := range w.questions {
		if v, ok := w.answers[q.ID]; ok && v.Type() == q.Type {
			kept[q.ID] = v
		}
	}
	w.answers = kept
	w.errors = make(map[int]error)
	return nil
}

// Collect reloads the form and renders every question, seeding each prompt
// with the answer collected so far. Inline problems are recorded per
// question and rendering moves on; any other error stops collection with the
// answers gathered until then kept.
func (w *Workflow) Collect(ctx context.Context) error {
	if err := w.Reload(ctx); err != nil {
		return err
	}
	for _, q := range w.questions {
		value, err := w.renderer.Render(ctx, q, w.answers[q.ID])
		if err != nil {
			if engine.IsInline(err) {
				delete(w.answers, q.ID)
				w.errors[q.ID] = err
				continue
			}
			return err
		}
		w.store(q, value)
	}
	return nil
}

// SetAnswer records value for question id. A nil value clears the answer.
func (w *Workflow) SetAnswer(id int, value model.AnswerValue) error {
	if w.state != StateFormLoaded {
		return fmt.Errorf("%w: set answer in %s", ErrInvalidTransition, w.state)
	}
	q, ok := w.question(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
	}
	if value != nil && value.Type() != q.Type {
		return fmt.Errorf("question %d: %w: got %s", id, model.ErrAnswerTypeMismatch, value.Type())
	}
	w.store(q, value)
	return nil
}

// Missing lists the required questions without a satisfying answer.
func (w *Workflow) Missing() []int {
	var ids []int
	for _, q := range w.questions {
		if q.Required && !model.Satisfies(q.Type, w.answers[q.ID]) {
			ids = append(ids, q.ID)
		}
	}
	sort.Ints(ids)
	return ids
}

// Submit checks every required question, then builds and writes the
// submission. A failed gate returns *model.MissingFieldsError and writes
// nothing. A failed write keeps the answers and the state so the operator can
// retry; success clears them and returns to StateEntryPending.
func (w *Workflow) Submit(ctx context.Context) (submission.Submission, error) {
	if w.state != StateFormLoaded {
		return submission.Submission{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, w.state)
	}
	if missing := w.Missing(); len(missing) > 0 {
		for _, id := range missing {
			w.errors[id] = fmt.Errorf("question %d: %w", id, model.ErrRequiredFieldMissing)
		}
		return submission.Submission{}, &model.MissingFieldsError{QuestionIDs: missing}
	}

	answers := make(map[int]model.AnswerValue, len(w.questions))
	for _, q := range w.questions {
		if v, ok := w.answers[q.ID]; ok {
			answers[q.ID] = v
		}
	}
	sub, err := w.builder.Build(answers)
	if err != nil {
		return submission.Submission{}, err
	}
	if _, err := w.submitter.Submit(ctx, sub); err != nil {
		return sub, err
	}

	log.WithFields(log.Fields{"event_id": w.eventID, "submission": sub.ID}).Infof("workflow: submitted %d answers", len(sub.Records))
	w.clear()
	return sub, nil
}

// Reset drops the answers and returns to StateEntryPending.
func (w *Workflow) Reset() {
	w.clear()
}

// View snapshots the current state for rendering.
func (w *Workflow) View() View {
	v := View{
		State:     w.state,
		EventID:   w.eventID,
		Questions: append([]model.Question(nil), w.questions...),
		Answers:   make(map[int]model.AnswerValue, len(w.answers)),
		Errors:    make(map[int]error, len(w.errors)),
		Actions:   w.state.Actions(),
	}
	for id, a := range w.answers {
		v.Answers[id] = a
	}
	for id, err := range w.errors {
		v.Errors[id] = err
	}
	return v
}

func (w *Workflow) store(q model.Question, value model.AnswerValue) {
	if value == nil {
		delete(w.answers, q.ID)
	} else {
		w.answers[q.ID] = value
	}
	if err := engine.Validate(q, value); err != nil {
		w.errors[q.ID] = err
	} else {
		delete(w.errors, q.ID)
	}
}

func (w *Workflow) question(id int) (model.Question, bool) {
	for _, q := range w.questions {
		if q.ID == id {
			return q, true
		}
	}
	return model.Question{}, false
}

func (w *Workflow) clear() {
	w.state = StateEntryPending
	w.eventID = ""
	w.questions = nil
	w.answers = make(map[int]model.AnswerValue)
	w.errors = make(map[int]error)
}
