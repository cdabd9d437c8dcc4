package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formreader/pkg/model"
)

func TestAnswerEncode(t *testing.T) {
	date := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	clock := time.Date(0, 1, 1, 9, 5, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value model.AnswerValue
		want  string
	}{
		{"text", model.TextAnswer("Ada"), "Ada"},
		{"number", model.NumberAnswer(42), "42"},
		{"zero", model.NumberAnswer(0), "0"},
		{"float", model.NewFloatAnswer(3.14), "3.1"},
		{"float integral", model.FloatAnswer(3), "3.0"},
		{"date", model.DateAnswer{Date: date}, "2025-03-04"},
		{"datetime", model.DateTimeAnswer{Date: date, Clock: clock}, "2025-03-04 09:05:00"},
		{"boolean", model.BooleanAnswer{Value: true, Label: "Evet"}, "Evet"},
		{"single", model.ChoiceAnswer("B"), "B"},
		{"multi", model.MultiChoiceAnswer{"A", "C"}, `["A","C"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.value.Encode()
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("encode = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMultiChoiceAnswer_RoundTrip(t *testing.T) {
	raw, err := model.MultiChoiceAnswer{"A", "C"}.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := model.DecodeOptions(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "C"}, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDateTimeAnswer_RequiresBothParts(t *testing.T) {
	now := time.Now()
	if v := model.NewDateTimeAnswer(&now, nil); v != nil {
		t.Fatalf("expected absent composite without clock, got %#v", v)
	}
	if v := model.NewDateTimeAnswer(nil, &now); v != nil {
		t.Fatalf("expected absent composite without date, got %#v", v)
	}
	if v := model.NewDateTimeAnswer(&now, &now); v == nil {
		t.Fatalf("expected composite when both parts are present")
	}
}

func TestSatisfiesAndAbsent(t *testing.T) {
	if model.Satisfies(model.QuestionTypeText, model.TextAnswer("")) {
		t.Fatalf("empty text must not satisfy a required question")
	}
	if !model.Satisfies(model.QuestionTypeNumber, model.NumberAnswer(0)) {
		t.Fatalf("zero must satisfy a required number question")
	}
	if !model.Satisfies(model.QuestionTypeFloat, model.FloatAnswer(0)) {
		t.Fatalf("zero must satisfy a required float question")
	}
	if model.Satisfies(model.QuestionTypeMultipleChoice, model.MultiChoiceAnswer{}) {
		t.Fatalf("empty selection must not satisfy a required multiple_choice question")
	}
	if model.Satisfies(model.QuestionTypeNumber, model.TextAnswer("5")) {
		t.Fatalf("mismatched variant must not satisfy")
	}
	if model.Satisfies(model.QuestionTypeText, nil) {
		t.Fatalf("nil must not satisfy")
	}

	if !model.IsAbsent(nil) || !model.IsAbsent(model.TextAnswer("")) {
		t.Fatalf("nil and empty text must be absent")
	}
	if model.IsAbsent(model.NumberAnswer(0)) {
		t.Fatalf("zero number must not be absent")
	}
}

func TestParseQuestionType(t *testing.T) {
	for _, qt := range model.QuestionTypes() {
		got, err := model.ParseQuestionType(" " + string(qt) + " ")
		if err != nil || got != qt {
			t.Fatalf("parse %q = %q, %v", qt, got, err)
		}
		if !qt.Valid() {
			t.Fatalf("%q should be valid", qt)
		}
	}

	if got, err := model.ParseQuestionType(""); err != nil || got != model.QuestionTypeText {
		t.Fatalf("empty tag should default to text, got %q, %v", got, err)
	}

	if _, err := model.ParseQuestionType("slider"); !errors.Is(err, model.ErrUnsupportedQuestionType) {
		t.Fatalf("expected ErrUnsupportedQuestionType, got %v", err)
	}
}

func TestMissingFieldsError(t *testing.T) {
	err := error(&model.MissingFieldsError{QuestionIDs: []int{3, 1}})
	if !errors.Is(err, model.ErrRequiredFieldsMissing) {
		t.Fatalf("expected errors.Is to match ErrRequiredFieldsMissing")
	}
	if got := err.Error(); got != "required fields missing: questions 1, 3" {
		t.Fatalf("unexpected message %q", got)
	}
}
