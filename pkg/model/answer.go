package model

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// AnswerValue is the typed outcome of answering one question. The set of
// implementations is closed; a nil AnswerValue means the answer is absent.
type AnswerValue interface {
	// Type reports the question variant this answer belongs to.
	Type() QuestionType
	// Empty reports whether the value counts as unanswered.
	Empty() bool
	// Encode returns the string persisted in the answer table.
	Encode() (string, error)

	isAnswer()
}

// TextAnswer is a free-form string.
type TextAnswer string

func (TextAnswer) Type() QuestionType        { return QuestionTypeText }
func (a TextAnswer) Empty() bool             { return string(a) == "" }
func (a TextAnswer) Encode() (string, error) { return string(a), nil }
func (TextAnswer) isAnswer()                 {}

// NumberAnswer is an integer. Zero is a real answer.
type NumberAnswer int64

func (NumberAnswer) Type() QuestionType { return QuestionTypeNumber }
func (NumberAnswer) Empty() bool        { return false }
func (a NumberAnswer) Encode() (string, error) {
	return strconv.FormatInt(int64(a), 10), nil
}
func (NumberAnswer) isAnswer() {}

// FloatAnswer is a decimal value on a 0.1 step.
type FloatAnswer float64

// NewFloatAnswer snaps v to the nearest 0.1 step.
func NewFloatAnswer(v float64) FloatAnswer {
	return FloatAnswer(math.Round(v*10) / 10)
}

func (FloatAnswer) Type() QuestionType { return QuestionTypeFloat }
func (FloatAnswer) Empty() bool        { return false }
func (a FloatAnswer) Encode() (string, error) {
	s := strconv.FormatFloat(float64(a), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s, nil
}
func (FloatAnswer) isAnswer() {}

// DateAnswer is a calendar date; the clock part is ignored.
type DateAnswer struct {
	Date time.Time
}

func (DateAnswer) Type() QuestionType { return QuestionTypeDate }
func (a DateAnswer) Empty() bool      { return a.Date.IsZero() }
func (a DateAnswer) Encode() (string, error) {
	return a.Date.Format(DateLayout), nil
}
func (DateAnswer) isAnswer() {}

// DateTimeAnswer joins a calendar date and a time of day.
type DateTimeAnswer struct {
	Date  time.Time
	Clock time.Time
}

// NewDateTimeAnswer combines both parts. It returns nil when either part is
// missing so the composite stays absent.
func NewDateTimeAnswer(date, clock *time.Time) AnswerValue {
	if date == nil || clock == nil {
		return nil
	}
	return DateTimeAnswer{Date: *date, Clock: *clock}
}

func (DateTimeAnswer) Type() QuestionType { return QuestionTypeDateTime }
func (a DateTimeAnswer) Empty() bool      { return a.Date.IsZero() }
func (a DateTimeAnswer) Encode() (string, error) {
	return a.Date.Format(DateLayout) + " " + a.Clock.Format(TimeLayout), nil
}

// Time merges the two parts into a single instant in the date's location.
func (a DateTimeAnswer) Time() time.Time {
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, a.Clock.Hour(), a.Clock.Minute(), a.Clock.Second(), 0, a.Date.Location())
}
func (DateTimeAnswer) isAnswer() {}

// BooleanAnswer records which of the two fixed labels was picked. Label is
// the persisted form.
type BooleanAnswer struct {
	Value bool
	Label string
}

func (BooleanAnswer) Type() QuestionType        { return QuestionTypeBoolean }
func (a BooleanAnswer) Empty() bool             { return a.Label == "" }
func (a BooleanAnswer) Encode() (string, error) { return a.Label, nil }
func (BooleanAnswer) isAnswer()                 {}

// ChoiceAnswer is one option picked from possible_answers.
type ChoiceAnswer string

func (ChoiceAnswer) Type() QuestionType        { return QuestionTypeSingleChoice }
func (a ChoiceAnswer) Empty() bool             { return string(a) == "" }
func (a ChoiceAnswer) Encode() (string, error) { return string(a), nil }
func (ChoiceAnswer) isAnswer()                 {}

// MultiChoiceAnswer is the ordered set of options picked from
// possible_answers. It serializes with EncodeOptions.
type MultiChoiceAnswer []string

func (MultiChoiceAnswer) Type() QuestionType { return QuestionTypeMultipleChoice }
func (a MultiChoiceAnswer) Empty() bool      { return len(a) == 0 }
func (a MultiChoiceAnswer) Encode() (string, error) {
	return EncodeOptions([]string(a))
}
func (MultiChoiceAnswer) isAnswer() {}

// IsAbsent reports whether v is nil or an empty string-like value. Such
// answers are never persisted.
func IsAbsent(v AnswerValue) bool {
	return v == nil || v.Empty()
}

// Satisfies reports whether v answers a required question of type t.
func Satisfies(t QuestionType, v AnswerValue) bool {
	if v == nil || v.Type() != t {
		return false
	}
	return !v.Empty()
}
