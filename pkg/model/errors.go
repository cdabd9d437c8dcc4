package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrStoreUnavailable marks a failed read or write against the tabular store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrFormNotFound is returned when an event identifier has no questions.
	ErrFormNotFound = errors.New("form not found")
	// ErrOptionsDecode is returned when possible_answers is not a string list.
	ErrOptionsDecode = errors.New("options decode error")
	// ErrNoOptions is returned when possible_answers decodes to an empty list.
	ErrNoOptions = errors.New("no options available")
	// ErrRequiredFieldMissing flags a single required question left unanswered.
	ErrRequiredFieldMissing = errors.New("required field missing")
	// ErrRequiredFieldsMissing blocks a submission with unanswered required questions.
	ErrRequiredFieldsMissing = errors.New("required fields missing")
	// ErrUnsupportedQuestionType is returned for tags outside the known variants.
	ErrUnsupportedQuestionType = errors.New("unsupported question type")
	// ErrAnswerTypeMismatch is returned when an answer variant does not match its question.
	ErrAnswerTypeMismatch = errors.New("answer type mismatch")
)

// MissingFieldsError lists the required questions that blocked a submission.
type MissingFieldsError struct {
	QuestionIDs []int
}

func (e *MissingFieldsError) Error() string {
	ids := append([]int(nil), e.QuestionIDs...)
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s: questions %s", ErrRequiredFieldsMissing, strings.Join(parts, ", "))
}

// Is lets errors.Is match ErrRequiredFieldsMissing.
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrRequiredFieldsMissing
}
