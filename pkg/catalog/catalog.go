// Package catalog groups the raw question records of the schema table into
// forms keyed by event identifier. Nothing is cached: every call reads the
// table again so callers always see the current remote schema.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/store"
)

// Option configures the catalog.
type Option func(*Catalog)

// WithTable overrides the schema table name.
func WithTable(table string) Option {
	return func(c *Catalog) {
		if trimmed := strings.TrimSpace(table); trimmed != "" {
			c.table = trimmed
		}
	}
}

// WithSanitizer replaces the question name sanitizer. Pass nil to keep names
// as stored. Options are never rewritten; answers must match them exactly.
func WithSanitizer(fn func(string) string) Option {
	return func(c *Catalog) {
		c.sanitize = fn
	}
}

// WithTranslator localizes the fallback title of forms whose first question
// has no name.
func WithTranslator(t locale.Translator, loc string) Option {
	return func(c *Catalog) {
		c.translator = t
		c.locale = loc
	}
}

// Catalog loads forms from a store.SchemaReader.
type Catalog struct {
	reader     store.SchemaReader
	table      string
	sanitize   func(string) string
	translator locale.Translator
	locale     string
}

// Summary describes one listed form.
type Summary struct {
	EventID   string
	Title     string
	Questions int
}

// New returns a catalog reading from reader.
func New(reader store.SchemaReader, options ...Option) (*Catalog, error) {
	if reader == nil {
		return nil, errors.New("catalog: schema reader is required")
	}
	c := &Catalog{
		reader:   reader,
		table:    store.DefaultQuestionsTable,
		sanitize: SanitizeLabel,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// LoadAll reads every question record and returns the questions grouped by
// event identifier, each group stable-sorted by rank.
func (c *Catalog) LoadAll(ctx context.Context) (map[string][]model.Question, error) {
	forms, _, err := c.load(ctx)
	return forms, err
}

// Form resolves one event identifier by exact match. An unknown identifier or
// an empty group fails with model.ErrFormNotFound.
func (c *Catalog) Form(ctx context.Context, eventID string) (model.Form, error) {
	forms, _, err := c.load(ctx)
	if err != nil {
		return model.Form{}, err
	}
	questions := forms[eventID]
	if len(questions) == 0 {
		return model.Form{}, fmt.Errorf("catalog: event %q: %w", eventID, model.ErrFormNotFound)
	}
	return model.Form{EventID: eventID, Questions: questions}, nil
}

// Forms lists the non-empty forms in the order their event identifiers first
// appear in the table. The title is the first question's name, or
// "Form <first 8 characters of the identifier>" when that name is blank.
func (c *Catalog) Forms(ctx context.Context) ([]Summary, error) {
	forms, order, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(order))
	for _, id := range order {
		questions := forms[id]
		if len(questions) == 0 {
			continue
		}
		title := strings.TrimSpace(questions[0].Name)
		if title == "" {
			title = c.untitled(id)
		}
		out = append(out, Summary{EventID: id, Title: title, Questions: len(questions)})
	}
	return out, nil
}

func (c *Catalog) load(ctx context.Context) (map[string][]model.Question, []string, error) {
	records, err := c.reader.ReadAll(ctx, c.table)
	if err != nil {
		if !errors.Is(err, model.ErrStoreUnavailable) {
			err = store.Unavailable("catalog: read "+c.table, err)
		}
		return nil, nil, err
	}

	forms := make(map[string][]model.Question)
	var order []string
	for i, rec := range records {
		q, err := c.decode(rec)
		if err != nil {
			log.WithFields(log.Fields{"table": c.table, "record": i}).Warnf("catalog: skip record: %v", err)
			continue
		}
		if _, seen := forms[q.EventID]; !seen {
			order = append(order, q.EventID)
		}
		forms[q.EventID] = append(forms[q.EventID], q)
	}

	for id := range forms {
		group := forms[id]
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].Rank < group[b].Rank
		})
	}

	log.Debugf("catalog: loaded %d records into %d forms", len(records), len(forms))
	return forms, order, nil
}

func (c *Catalog) decode(rec store.Record) (model.Question, error) {
	id, err := coerceID(rec[store.FieldID])
	if err != nil {
		return model.Question{}, err
	}

	rawType := coerceString(rec[store.FieldType])
	qt, err := model.ParseQuestionType(rawType)
	if err != nil {
		// kept so the engine can surface the problem inline for this question
		log.Warnf("catalog: question %d: %v", id, err)
	}

	q := model.Question{
		ID:              id,
		EventID:         coerceString(rec[store.FieldEventID]),
		Name:            coerceString(rec[store.FieldName]),
		Type:            qt,
		Required:        coerceBool(rec[store.FieldIsRequired]),
		Rank:            coerceInt(rec[store.FieldRank]),
		PossibleAnswers: coerceOptions(rec[store.FieldPossibleAnswers]),
	}
	if c.sanitize != nil {
		q.Name = c.sanitize(q.Name)
	}
	return q, nil
}

func (c *Catalog) untitled(eventID string) string {
	short := truncate(eventID, 8)
	if c.translator != nil {
		if title, err := c.translator.Translate(c.locale, "form.untitled", short); err == nil && strings.TrimSpace(title) != "" {
			return title
		}
	}
	return "Form " + short
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
