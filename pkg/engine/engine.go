// Package engine renders and validates questions. Rendering dispatches on the
// question's variant tag to a prompt routine that collects the matching
// model.AnswerValue through a PromptDriver; validation checks the required
// rule of that variant. Problems confined to one question (undecodable or
// empty options, unknown tags) are returned as inline errors, see IsInline,
// so the caller can keep rendering the rest of the form.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/model"
)

// Option configures the engine.
type Option func(*Engine)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Engine) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithTranslator sets the message translator and locale.
func WithTranslator(t locale.Translator, loc string) Option {
	return func(e *Engine) {
		e.translator = t
		if strings.TrimSpace(loc) != "" {
			e.locale = loc
		}
	}
}

// WithClock overrides the time source used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithOptionLabel sets how choice options are displayed. The chosen option
// is always stored as written in the schema.
func WithOptionLabel(fn func(string) string) Option {
	return func(e *Engine) {
		e.optionLabel = fn
	}
}

// WithOutput sets where the default survey driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(e *Engine) {
		e.out = out
	}
}

// Engine implements per-variant rendering and validation.
type Engine struct {
	driver     PromptDriver
	translator locale.Translator
	locale     string
	now        func() time.Time
	out        io.Writer

	optionLabel func(string) string
}

// New constructs an engine. Without WithPromptDriver the survey terminal
// driver is used.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		locale: locale.DefaultLocale,
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.translator == nil {
		catalog, err := locale.Default()
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
		e.translator = catalog
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(e.out, DefaultTheme)
	}
	return e, nil
}

// Driver exposes the prompt driver so callers can reuse it for their own
// prompts and messages.
func (e *Engine) Driver() PromptDriver {
	return e.driver
}

// Render prompts for one question, seeding the prompt with current when it
// holds an answer of the right variant. A nil value means the answer is
// absent. Inline errors are also printed as a warning for that question.
func (e *Engine) Render(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	if ctx == nil {
		return nil, errors.New("engine: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if current != nil && current.Type() != q.Type {
		current = nil
	}

	label := e.label(q)
	if err := e.driver.Info(ctx, label); err != nil {
		return nil, err
	}

	var (
		value model.AnswerValue
		err   error
	)
	switch q.Type {
	case model.QuestionTypeText:
		value, err = e.promptText(ctx, q, current)
	case model.QuestionTypeNumber:
		value, err = e.promptNumber(ctx, q, current)
	case model.QuestionTypeFloat:
		value, err = e.promptFloat(ctx, q, current)
	case model.QuestionTypeDate:
		value, err = e.promptDate(ctx, q, current)
	case model.QuestionTypeDateTime:
		value, err = e.promptDateTime(ctx, q, current)
	case model.QuestionTypeBoolean:
		value, err = e.promptBoolean(ctx, q, current)
	case model.QuestionTypeSingleChoice:
		value, err = e.promptSingleChoice(ctx, q, current)
	case model.QuestionTypeMultipleChoice:
		value, err = e.promptMultipleChoice(ctx, q, current)
	default:
		err = fmt.Errorf("engine: question %d: %w: %q", q.ID, model.ErrUnsupportedQuestionType, q.Type)
	}

	if err != nil {
		if IsInline(err) {
			_ = e.driver.Warn(ctx, e.describe(err))
		}
		return nil, err
	}

	if verr := e.Validate(q, value); verr != nil {
		_ = e.driver.Warn(ctx, e.describe(verr))
	}
	return value, nil
}

// Validate checks value against q. Required questions need a present,
// non-empty answer of their own variant; number and float accept zero.
func (e *Engine) Validate(q model.Question, value model.AnswerValue) error {
	return Validate(q, value)
}

// Validate is the engine-independent form of Engine.Validate.
func Validate(q model.Question, value model.AnswerValue) error {
	if value != nil && value.Type() != q.Type {
		return fmt.Errorf("question %d: %w: got %s", q.ID, model.ErrAnswerTypeMismatch, value.Type())
	}
	if !q.Required {
		return nil
	}
	if !model.Satisfies(q.Type, value) {
		return fmt.Errorf("question %d: %w", q.ID, model.ErrRequiredFieldMissing)
	}
	return nil
}

func (e *Engine) promptText(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	def, _ := current.(model.TextAnswer)
	resp, err := e.driver.Input(ctx, InputConfig{
		Message: e.t("question.answer", "Answer:"),
		Default: string(def),
		Help:    e.typeHelp(q),
	})
	if err != nil {
		return nil, err
	}
	return model.TextAnswer(resp), nil
}

func (e *Engine) promptNumber(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	def := ""
	if n, ok := current.(model.NumberAnswer); ok {
		def = strconv.FormatInt(int64(n), 10)
	}
	invalid := errors.New(e.t("error.invalid_number", "invalid number"))
	parse := func(s string) (int64, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, invalid
		}
		return n, nil
	}

	for {
		resp, err := e.driver.Input(ctx, InputConfig{
			Message:   e.t("question.answer", "Answer:"),
			Default:   def,
			Help:      e.typeHelp(q),
			Validator: optional(parse),
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(resp) == "" {
			return nil, nil
		}
		n, err := parse(resp)
		if err != nil {
			_ = e.driver.Warn(ctx, err.Error())
			continue
		}
		return model.NumberAnswer(n), nil
	}
}

func (e *Engine) promptFloat(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	def := ""
	if f, ok := current.(model.FloatAnswer); ok {
		def, _ = f.Encode()
	}
	invalid := errors.New(e.t("error.invalid_float", "invalid number"))
	parse := func(s string) (float64, error) {
		// accept a decimal comma as typed in tr locales
		normalized := strings.Replace(strings.TrimSpace(s), ",", ".", 1)
		f, err := strconv.ParseFloat(normalized, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, invalid
		}
		return f, nil
	}

	for {
		resp, err := e.driver.Input(ctx, InputConfig{
			Message:   e.t("question.answer", "Answer:"),
			Default:   def,
			Help:      e.typeHelp(q) + " (" + e.t("question.float_help", "0.1") + ")",
			Validator: optional(parse),
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(resp) == "" {
			return nil, nil
		}
		f, err := parse(resp)
		if err != nil {
			_ = e.driver.Warn(ctx, err.Error())
			continue
		}
		return model.NewFloatAnswer(f), nil
	}
}

func (e *Engine) promptDate(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	def := e.now().Format(model.DateLayout)
	if d, ok := current.(model.DateAnswer); ok {
		def = d.Date.Format(model.DateLayout)
	}
	date, err := e.askDate(ctx, e.t("question.answer", "Answer:"), def, e.typeHelp(q))
	if err != nil || date == nil {
		return nil, err
	}
	return model.DateAnswer{Date: *date}, nil
}

func (e *Engine) promptDateTime(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	now := e.now()
	defDate := now.Format(model.DateLayout)
	defClock := now.Format("15:04")
	if dt, ok := current.(model.DateTimeAnswer); ok {
		defDate = dt.Date.Format(model.DateLayout)
		defClock = dt.Clock.Format(model.TimeLayout)
	}

	date, err := e.askDate(ctx, e.t("question.date", "Date:"), defDate, e.typeHelp(q))
	if err != nil {
		return nil, err
	}
	clock, err := e.askClock(ctx, e.t("question.time", "Time:"), defClock)
	if err != nil {
		return nil, err
	}
	return model.NewDateTimeAnswer(date, clock), nil
}

func (e *Engine) promptBoolean(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	labels := []string{e.t("boolean.yes", "Yes"), e.t("boolean.no", "No")}
	defIdx := 0
	if b, ok := current.(model.BooleanAnswer); ok && !b.Value {
		defIdx = 1
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      e.t("question.answer", "Answer:"),
		Options:      labels,
		DefaultIndex: defIdx,
		Help:         e.typeHelp(q),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(labels) {
		return nil, nil
	}
	return model.BooleanAnswer{Value: idx == 0, Label: labels[idx]}, nil
}

func (e *Engine) promptSingleChoice(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	options, err := q.Options()
	if err != nil {
		return nil, err
	}
	defIdx := 0
	if c, ok := current.(model.ChoiceAnswer); ok {
		if i := indexOf(options, string(c)); i >= 0 {
			defIdx = i
		}
	}
	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      e.t("question.answer", "Answer:"),
		Options:      e.displayOptions(options),
		DefaultIndex: defIdx,
		Help:         e.typeHelp(q),
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(options) {
		return nil, nil
	}
	return model.ChoiceAnswer(options[idx]), nil
}

func (e *Engine) promptMultipleChoice(ctx context.Context, q model.Question, current model.AnswerValue) (model.AnswerValue, error) {
	options, err := q.Options()
	if err != nil {
		return nil, err
	}
	var defaults []int
	if m, ok := current.(model.MultiChoiceAnswer); ok {
		defaults = indicesOf(options, m)
	}
	indices, err := e.driver.MultiSelect(ctx, SelectConfig{
		Message:  e.t("question.answer", "Answer:"),
		Options:  e.displayOptions(options),
		Defaults: defaults,
		Help:     e.typeHelp(q) + " (" + e.t("question.multi_help", "") + ")",
	})
	if err != nil {
		return nil, err
	}
	selected := orderedSelection(options, indices)
	if len(selected) == 0 {
		return nil, nil
	}
	return model.MultiChoiceAnswer(selected), nil
}

func (e *Engine) askDate(ctx context.Context, message, def, help string) (*time.Time, error) {
	invalid := errors.New(e.t("error.invalid_date", "invalid date"))
	parse := func(s string) (time.Time, error) {
		d, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, invalid
		}
		return d, nil
	}
	for {
		resp, err := e.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   def,
			Help:      help + " (" + e.t("question.date_help", model.DateLayout) + ")",
			Validator: optional(parse),
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(resp) == "" {
			return nil, nil
		}
		d, err := parse(resp)
		if err != nil {
			_ = e.driver.Warn(ctx, err.Error())
			continue
		}
		return &d, nil
	}
}

func (e *Engine) askClock(ctx context.Context, message, def string) (*time.Time, error) {
	invalid := errors.New(e.t("error.invalid_time", "invalid time"))
	parse := func(s string) (time.Time, error) {
		s = strings.TrimSpace(s)
		for _, layout := range []string{model.TimeLayout, "15:04"} {
			if c, err := time.Parse(layout, s); err == nil {
				return c, nil
			}
		}
		return time.Time{}, invalid
	}
	for {
		resp, err := e.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   def,
			Help:      e.t("question.time_help", "HH:MM"),
			Validator: optional(parse),
		})
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(resp) == "" {
			return nil, nil
		}
		c, err := parse(resp)
		if err != nil {
			_ = e.driver.Warn(ctx, err.Error())
			continue
		}
		return &c, nil
	}
}

func (e *Engine) label(q model.Question) string {
	label := strings.TrimSpace(q.Name)
	if label == "" {
		label = fmt.Sprintf("#%d", q.ID)
	}
	if q.Required {
		label += e.t("question.required_suffix", " *")
	}
	return label
}

// displayOptions maps options to their labels. Selections come back as
// indices, so they resolve to the stored option text.
func (e *Engine) displayOptions(options []string) []string {
	if e.optionLabel == nil {
		return options
	}
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = e.optionLabel(opt)
		if strings.TrimSpace(labels[i]) == "" {
			labels[i] = opt
		}
	}
	return labels
}

func (e *Engine) typeHelp(q model.Question) string {
	return locale.TypeName(e.translator, e.locale, q.Type)
}

func (e *Engine) t(key, fallback string) string {
	return locale.T(e.translator, e.locale, key, fallback)
}

func (e *Engine) describe(err error) string {
	return locale.Describe(e.translator, e.locale, err)
}

// optional adapts a parser into a prompt validator that accepts blank input.
func optional[T any](parse func(string) (T, error)) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		_, err := parse(s)
		return err
	}
}

// orderedSelection maps indices back to options in declaration order,
// dropping duplicates and out-of-range entries.
func orderedSelection(options []string, indices []int) []string {
	picked := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			picked[idx] = struct{}{}
		}
	}
	ordered := make([]int, 0, len(picked))
	for idx := range picked {
		ordered = append(ordered, idx)
	}
	sort.Ints(ordered)
	return valuesFromIndices(options, ordered)
}
