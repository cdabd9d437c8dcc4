package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formreader/pkg/catalog"
	"github.com/goliatone/go-formreader/pkg/engine"
	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/testsupport"
)

var fixedNow = time.Date(2025, time.June, 1, 14, 30, 0, 0, time.UTC)

func newEngine(t *testing.T, driver engine.PromptDriver) *engine.Engine {
	t.Helper()
	e, err := engine.New(
		engine.WithPromptDriver(driver),
		engine.WithTranslator(locale.MustDefault(), "en"),
		engine.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestRender_EveryVariant(t *testing.T) {
	date := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)
	clock := time.Date(0, 1, 1, 9, 15, 0, 0, time.UTC)

	cases := []struct {
		name     string
		question model.Question
		driver   *testsupport.ScriptedDriver
		want     model.AnswerValue
	}{
		{
			name:     "text",
			question: model.Question{ID: 1, Type: model.QuestionTypeText},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"Ada"}},
			want:     model.TextAnswer("Ada"),
		},
		{
			name:     "number retries invalid input",
			question: model.Question{ID: 2, Type: model.QuestionTypeNumber},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"abc", "0"}},
			want:     model.NumberAnswer(0),
		},
		{
			name:     "number blank is absent",
			question: model.Question{ID: 2, Type: model.QuestionTypeNumber},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"  "}},
			want:     nil,
		},
		{
			name:     "float snaps to step",
			question: model.Question{ID: 3, Type: model.QuestionTypeFloat},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"2,46"}},
			want:     model.FloatAnswer(2.5),
		},
		{
			name:     "float retries invalid input",
			question: model.Question{ID: 3, Type: model.QuestionTypeFloat},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"NaN", "inf", "-Infinity", "1e400", "1.25"}},
			want:     model.FloatAnswer(1.3),
		},
		{
			name:     "date",
			question: model.Question{ID: 4, Type: model.QuestionTypeDate},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"2025-03-04"}},
			want:     model.DateAnswer{Date: date},
		},
		{
			name:     "datetime",
			question: model.Question{ID: 5, Type: model.QuestionTypeDateTime},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"2025-03-04", "09:15"}},
			want:     model.DateTimeAnswer{Date: date, Clock: clock},
		},
		{
			name:     "datetime missing time is absent",
			question: model.Question{ID: 5, Type: model.QuestionTypeDateTime},
			driver:   &testsupport.ScriptedDriver{Inputs: []string{"2025-03-04", ""}},
			want:     nil,
		},
		{
			name:     "boolean",
			question: model.Question{ID: 6, Type: model.QuestionTypeBoolean},
			driver:   &testsupport.ScriptedDriver{Selects: []int{1}},
			want:     model.BooleanAnswer{Value: false, Label: "No"},
		},
		{
			name:     "single choice",
			question: model.Question{ID: 7, Type: model.QuestionTypeSingleChoice, PossibleAnswers: `["A","B","C"]`},
			driver:   &testsupport.ScriptedDriver{Selects: []int{2}},
			want:     model.ChoiceAnswer("C"),
		},
		{
			name:     "multiple choice keeps option order",
			question: model.Question{ID: 8, Type: model.QuestionTypeMultipleChoice, PossibleAnswers: `["A","B","C"]`},
			driver:   &testsupport.ScriptedDriver{Multis: [][]int{{2, 0, 2}}},
			want:     model.MultiChoiceAnswer{"A", "C"},
		},
		{
			name:     "multiple choice nothing picked is absent",
			question: model.Question{ID: 8, Type: model.QuestionTypeMultipleChoice, PossibleAnswers: `["A","B","C"]`},
			driver:   &testsupport.ScriptedDriver{Multis: [][]int{{}}},
			want:     nil,
		},
	}

	covered := make(map[model.QuestionType]bool)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.driver)
			got, err := e.Render(context.Background(), tc.question, nil)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("answer mismatch (-want +got):\n%s", diff)
			}
			if !tc.driver.Consumed() {
				t.Fatalf("scripted answers were not all consumed")
			}
		})
		covered[tc.question.Type] = true
	}
	for _, qt := range model.QuestionTypes() {
		if !covered[qt] {
			t.Fatalf("variant %q has no render case", qt)
		}
	}
}

func TestRender_MultipleChoiceRoundTrip(t *testing.T) {
	driver := &testsupport.ScriptedDriver{Multis: [][]int{{0, 2}}}
	e := newEngine(t, driver)

	q := model.Question{ID: 9, Type: model.QuestionTypeMultipleChoice, PossibleAnswers: `["A","B","C"]`}
	got, err := e.Render(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	raw, err := got.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := model.DecodeOptions(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"A", "C"}, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ChoiceStoresOptionAsWritten(t *testing.T) {
	raw := `["x<y","a<b or c>d","<b>Yes</b>"]`
	cases := []struct {
		name     string
		question model.Question
		driver   *recordingDriver
		want     model.AnswerValue
	}{
		{
			name:     "single",
			question: model.Question{ID: 1, Type: model.QuestionTypeSingleChoice, PossibleAnswers: raw},
			driver:   &recordingDriver{ScriptedDriver: testsupport.ScriptedDriver{Selects: []int{0}}},
			want:     model.ChoiceAnswer("x<y"),
		},
		{
			name:     "multiple",
			question: model.Question{ID: 2, Type: model.QuestionTypeMultipleChoice, PossibleAnswers: raw},
			driver:   &recordingDriver{ScriptedDriver: testsupport.ScriptedDriver{Multis: [][]int{{1, 2}}}},
			want:     model.MultiChoiceAnswer{"a<b or c>d", "<b>Yes</b>"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := engine.New(
				engine.WithPromptDriver(tc.driver),
				engine.WithTranslator(locale.MustDefault(), "en"),
				engine.WithOptionLabel(catalog.SanitizeLabel),
			)
			if err != nil {
				t.Fatalf("new engine: %v", err)
			}
			got, err := e.Render(context.Background(), tc.question, nil)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("answer mismatch (-want +got):\n%s", diff)
			}
			stored, _ := tc.question.Options()
			for _, v := range answerStrings(got) {
				if indexIn(stored, v) < 0 {
					t.Fatalf("answer %q is not one of the stored options %v", v, stored)
				}
			}
			if len(tc.driver.options) != 1 {
				t.Fatalf("expected one choice prompt, got %d", len(tc.driver.options))
			}
			for i, label := range tc.driver.options[0] {
				if label != catalog.SanitizeLabel(stored[i]) && label != stored[i] {
					t.Fatalf("label %d = %q, stored %q", i, label, stored[i])
				}
			}
			if tc.driver.options[0][2] != "Yes" {
				t.Fatalf("expected markup stripped from display, got %q", tc.driver.options[0][2])
			}
		})
	}
}

func answerStrings(v model.AnswerValue) []string {
	switch a := v.(type) {
	case model.ChoiceAnswer:
		return []string{string(a)}
	case model.MultiChoiceAnswer:
		return a
	}
	return nil
}

func indexIn(options []string, value string) int {
	for i, opt := range options {
		if opt == value {
			return i
		}
	}
	return -1
}

func TestRender_FloatWarnsOnNonFinite(t *testing.T) {
	driver := &testsupport.ScriptedDriver{Inputs: []string{"NaN", "+Inf", "2"}}
	e := newEngine(t, driver)

	got, err := e.Render(context.Background(), model.Question{ID: 3, Type: model.QuestionTypeFloat}, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != model.FloatAnswer(2) {
		t.Fatalf("expected 2, got %#v", got)
	}
	want := []string{"Please enter a number.", "Please enter a number."}
	if diff := cmp.Diff(want, driver.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ChoiceOptionFailuresAreInline(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want error
	}{
		"undecodable": {raw: "not valid json", want: model.ErrOptionsDecode},
		"empty":       {raw: "[]", want: model.ErrNoOptions},
	}
	for name, tc := range cases {
		for _, qt := range []model.QuestionType{model.QuestionTypeSingleChoice, model.QuestionTypeMultipleChoice} {
			t.Run(name+"/"+string(qt), func(t *testing.T) {
				driver := &testsupport.ScriptedDriver{}
				e := newEngine(t, driver)

				got, err := e.Render(context.Background(), model.Question{ID: 4, Type: qt, PossibleAnswers: tc.raw}, nil)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
				if !engine.IsInline(err) {
					t.Fatalf("expected inline error, got %v", err)
				}
				if got != nil {
					t.Fatalf("expected absent value, got %#v", got)
				}
				if len(driver.Warnings) != 1 {
					t.Fatalf("expected one inline warning, got %v", driver.Warnings)
				}
			})
		}
	}
}

func TestRender_UnsupportedTypeIsInline(t *testing.T) {
	driver := &testsupport.ScriptedDriver{}
	e := newEngine(t, driver)

	_, err := e.Render(context.Background(), model.Question{ID: 1, Type: "slider"}, nil)
	if !errors.Is(err, model.ErrUnsupportedQuestionType) || !engine.IsInline(err) {
		t.Fatalf("expected inline unsupported type error, got %v", err)
	}
}

func TestRender_RequiredWarningDoesNotAbort(t *testing.T) {
	driver := &testsupport.ScriptedDriver{Inputs: []string{""}}
	e := newEngine(t, driver)

	q := model.Question{ID: 1, Name: "Name", Type: model.QuestionTypeText, Required: true}
	got, err := e.Render(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != model.TextAnswer("") {
		t.Fatalf("expected empty text answer, got %#v", got)
	}
	if diff := cmp.Diff([]string{"This field is required!"}, driver.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Name *"}, driver.Messages); diff != "" {
		t.Fatalf("label mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_DriverErrorsPropagate(t *testing.T) {
	driver := &testsupport.ScriptedDriver{}
	e := newEngine(t, driver)

	_, err := e.Render(context.Background(), model.Question{ID: 1, Type: model.QuestionTypeText}, nil)
	if !errors.Is(err, testsupport.ErrScriptExhausted) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if engine.IsInline(err) {
		t.Fatalf("driver errors must not be inline")
	}
}

func TestRender_SeedsDefaultsFromCurrent(t *testing.T) {
	driver := &recordingDriver{ScriptedDriver: testsupport.ScriptedDriver{Inputs: []string{"Grace"}}}
	e := newEngine(t, driver)

	_, err := e.Render(context.Background(), model.Question{ID: 1, Type: model.QuestionTypeText}, model.TextAnswer("Ada"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Ada"}, driver.defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_DateDefaultsToToday(t *testing.T) {
	driver := &recordingDriver{ScriptedDriver: testsupport.ScriptedDriver{Inputs: []string{"2025-06-01"}}}
	e := newEngine(t, driver)

	if _, err := e.Render(context.Background(), model.Question{ID: 1, Type: model.QuestionTypeDate}, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"2025-06-01"}, driver.defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	required := func(qt model.QuestionType) model.Question {
		return model.Question{ID: 1, Type: qt, Required: true}
	}
	cases := []struct {
		name     string
		question model.Question
		value    model.AnswerValue
		want     error
	}{
		{"optional absent", model.Question{ID: 1, Type: model.QuestionTypeText}, nil, nil},
		{"text empty", required(model.QuestionTypeText), model.TextAnswer(""), model.ErrRequiredFieldMissing},
		{"text set", required(model.QuestionTypeText), model.TextAnswer("x"), nil},
		{"number zero", required(model.QuestionTypeNumber), model.NumberAnswer(0), nil},
		{"number absent", required(model.QuestionTypeNumber), nil, model.ErrRequiredFieldMissing},
		{"float zero", required(model.QuestionTypeFloat), model.FloatAnswer(0), nil},
		{"date", required(model.QuestionTypeDate), model.DateAnswer{Date: fixedNow}, nil},
		{"datetime absent", required(model.QuestionTypeDateTime), nil, model.ErrRequiredFieldMissing},
		{"boolean", required(model.QuestionTypeBoolean), model.BooleanAnswer{Value: false, Label: "No"}, nil},
		{"single empty", required(model.QuestionTypeSingleChoice), model.ChoiceAnswer(""), model.ErrRequiredFieldMissing},
		{"multi empty", required(model.QuestionTypeMultipleChoice), model.MultiChoiceAnswer{}, model.ErrRequiredFieldMissing},
		{"multi set", required(model.QuestionTypeMultipleChoice), model.MultiChoiceAnswer{"A"}, nil},
		{"mismatch", required(model.QuestionTypeNumber), model.TextAnswer("1"), model.ErrAnswerTypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.Validate(tc.question, tc.value)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

type recordingDriver struct {
	testsupport.ScriptedDriver
	defaults []string
	options  [][]string
}

func (r *recordingDriver) Select(ctx context.Context, cfg engine.SelectConfig) (int, error) {
	r.options = append(r.options, cfg.Options)
	return r.ScriptedDriver.Select(ctx, cfg)
}

func (r *recordingDriver) MultiSelect(ctx context.Context, cfg engine.SelectConfig) ([]int, error) {
	r.options = append(r.options, cfg.Options)
	return r.ScriptedDriver.MultiSelect(ctx, cfg)
}

func (r *recordingDriver) Input(ctx context.Context, cfg engine.InputConfig) (string, error) {
	r.defaults = append(r.defaults, cfg.Default)
	return r.ScriptedDriver.Input(ctx, cfg)
}
