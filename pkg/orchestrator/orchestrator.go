package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-formreader/pkg/catalog"
	"github.com/goliatone/go-formreader/pkg/engine"
	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/receipt"
	"github.com/goliatone/go-formreader/pkg/store"
	"github.com/goliatone/go-formreader/pkg/submission"
	"github.com/goliatone/go-formreader/pkg/workflow"
)

// Option customises the orchestrator.
type Option func(*Orchestrator)

// WithPromptDriver injects the prompt driver used for every question and menu.
func WithPromptDriver(driver engine.PromptDriver) Option {
	return func(o *Orchestrator) {
		o.driver = driver
	}
}

// WithTranslator sets the message catalog and active locale.
func WithTranslator(t locale.Translator, loc string) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.translator = t
		}
		if loc != "" {
			o.locale = loc
		}
	}
}

// WithTables overrides the schema and answer table names.
func WithTables(questions, answers string) Option {
	return func(o *Orchestrator) {
		o.questionsTable = questions
		o.answersTable = answers
	}
}

// WithIDGenerator overrides the submission id source.
func WithIDGenerator(next func() string) Option {
	return func(o *Orchestrator) {
		o.nextID = next
	}
}

// WithClock overrides the time source used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithOutput sets where the default terminal driver writes.
func WithOutput(out io.Writer) Option {
	return func(o *Orchestrator) {
		o.out = out
	}
}

// WithReceiptRenderer replaces the receipt renderer shown after a submit.
func WithReceiptRenderer(r *receipt.Renderer) Option {
	return func(o *Orchestrator) {
		o.receipt = r
	}
}

// Orchestrator owns one operator session over a store.
type Orchestrator struct {
	store          store.Store
	driver         engine.PromptDriver
	translator     locale.Translator
	locale         string
	questionsTable string
	answersTable   string
	nextID         func() string
	now            func() time.Time
	out            io.Writer

	catalog  *catalog.Catalog
	engine   *engine.Engine
	workflow *workflow.Workflow
	receipt  *receipt.Renderer
}

// New wires every component over s. Missing options fall back to the
// embedded message catalogs, the default locale and the survey terminal
// driver.
func New(s store.Store, options ...Option) (*Orchestrator, error) {
	if s == nil {
		return nil, errors.New("orchestrator: store is required")
	}
	o := &Orchestrator{store: s, locale: locale.DefaultLocale}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.translator == nil {
		catalogs, err := locale.Default()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
		o.translator = catalogs
	}

	cat, err := catalog.New(s,
		catalog.WithTable(o.questionsTable),
		catalog.WithTranslator(o.translator, o.locale),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	eng, err := engine.New(
		engine.WithPromptDriver(o.driver),
		engine.WithTranslator(o.translator, o.locale),
		engine.WithClock(o.now),
		engine.WithOutput(o.out),
		engine.WithOptionLabel(catalog.SanitizeLabel),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	svc, err := submission.NewService(s, submission.WithAnswersTable(o.answersTable))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	builder := submission.NewBuilder(submission.WithIDGenerator(o.nextID))
	wf, err := workflow.New(cat, eng, builder, svc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	if o.receipt == nil {
		if o.receipt, err = receipt.New(); err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
	}

	o.catalog = cat
	o.engine = eng
	o.driver = eng.Driver()
	o.workflow = wf
	return o, nil
}

// Workflow exposes the session state machine.
func (o *Orchestrator) Workflow() *workflow.Workflow {
	return o.workflow
}

// Catalog exposes the form catalog.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}
