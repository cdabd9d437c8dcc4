package model

import (
	"fmt"
	"strings"
)

// QuestionType is the closed set of variant tags a question can declare.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeNumber         QuestionType = "number"
	QuestionTypeFloat          QuestionType = "float"
	QuestionTypeDate           QuestionType = "date"
	QuestionTypeDateTime       QuestionType = "datetime"
	QuestionTypeBoolean        QuestionType = "boolean"
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// QuestionTypes lists every supported variant in declaration order.
func QuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionTypeText,
		QuestionTypeNumber,
		QuestionTypeFloat,
		QuestionTypeDate,
		QuestionTypeDateTime,
		QuestionTypeBoolean,
		QuestionTypeSingleChoice,
		QuestionTypeMultipleChoice,
	}
}

// ParseQuestionType resolves a raw tag. An empty tag defaults to text.
func ParseQuestionType(raw string) (QuestionType, error) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if tag == "" {
		return QuestionTypeText, nil
	}
	for _, t := range QuestionTypes() {
		if QuestionType(tag) == t {
			return t, nil
		}
	}
	return QuestionType(tag), fmt.Errorf("%w: %q", ErrUnsupportedQuestionType, raw)
}

// Valid reports whether t is one of the eight known variants.
func (t QuestionType) Valid() bool {
	_, err := ParseQuestionType(string(t))
	return err == nil && t != ""
}

// IsChoice reports whether answers are picked from PossibleAnswers.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultipleChoice
}

// Question models one field of a form as stored in the schema table.
type Question struct {
	ID              int          `json:"id" yaml:"id"`
	EventID         string       `json:"event_id" yaml:"event_id"`
	Name            string       `json:"name" yaml:"name"`
	Type            QuestionType `json:"type" yaml:"type"`
	Required        bool         `json:"is_required" yaml:"is_required"`
	Rank            int          `json:"rank" yaml:"rank"`
	PossibleAnswers string       `json:"possible_answers" yaml:"possible_answers"`
}

// Options decodes PossibleAnswers. It fails with ErrOptionsDecode for
// malformed payloads and ErrNoOptions for an empty list.
func (q Question) Options() ([]string, error) {
	options, err := DecodeOptions(q.PossibleAnswers)
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", q.ID, err)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("question %d: %w", q.ID, ErrNoOptions)
	}
	return options, nil
}

// Form is the ordered question list published under one event identifier.
type Form struct {
	EventID   string     `json:"event_id"`
	Questions []Question `json:"questions"`
}

// Empty reports whether the form has no questions; empty forms are treated
// as absent.
func (f Form) Empty() bool {
	return len(f.Questions) == 0
}

// Question looks up a question by id.
func (f Form) Question(id int) (Question, bool) {
	for _, q := range f.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
