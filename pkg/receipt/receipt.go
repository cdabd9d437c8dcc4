// Package receipt renders a plain-text summary of a stored submission using
// pongo2 templates. The default template is embedded; WithFS swaps in a
// different template tree.
package receipt

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formreader/pkg/locale"
	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/submission"
)

//go:embed templates/*.tpl
var embedded embed.FS

const defaultTemplate = "receipt"

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	name      string
	extension string
}

// WithFS loads templates from fsys instead of the embedded set.
func WithFS(fsys fs.FS) Option {
	return func(cfg *config) {
		if fsys != nil {
			cfg.templates = fsys
		}
	}
}

// WithTemplate selects the template name, without extension.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// Renderer executes the receipt template.
type Renderer struct {
	mu   sync.Mutex
	set  *pongo2.TemplateSet
	path string
	tmpl *pongo2.Template
}

// New returns a renderer. Templates are parsed lazily on first use.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{name: defaultTemplate, extension: ".tpl"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, fmt.Errorf("receipt: open embedded templates: %w", err)
		}
		cfg.templates = sub
	}
	return &Renderer{
		set:  pongo2.NewSet("receipt", pongo2.NewFSLoader(cfg.templates)),
		path: cfg.name + cfg.extension,
	}, nil
}

// Row is one answered question in the receipt.
type Row struct {
	Label  string
	Answer string
}

// Rows pairs each record with its question label, following the question
// order. Records for unknown questions are listed last under "#id".
func Rows(sub submission.Submission, questions []model.Question) []Row {
	byID := make(map[int]string, len(sub.Records))
	for _, rec := range sub.Records {
		byID[rec.QuestionID] = rec.Answer
	}
	rows := make([]Row, 0, len(sub.Records))
	for _, q := range questions {
		answer, ok := byID[q.ID]
		if !ok {
			continue
		}
		label := strings.TrimSpace(q.Name)
		if label == "" {
			label = fmt.Sprintf("#%d", q.ID)
		}
		rows = append(rows, Row{Label: label, Answer: answer})
		delete(byID, q.ID)
	}
	for _, rec := range sub.Records {
		if _, ok := byID[rec.QuestionID]; ok {
			rows = append(rows, Row{Label: fmt.Sprintf("#%d", rec.QuestionID), Answer: rec.Answer})
		}
	}
	return rows
}

// Render produces the receipt text with labels in loc.
func (r *Renderer) Render(sub submission.Submission, questions []model.Question, t locale.Translator, loc string) (string, error) {
	if r == nil || r.set == nil {
		return "", errors.New("receipt: renderer is nil")
	}
	tmpl, err := r.template()
	if err != nil {
		return "", err
	}

	rows := Rows(sub, questions)
	ctxRows := make([]pongo2.Context, 0, len(rows))
	for _, row := range rows {
		ctxRows = append(ctxRows, pongo2.Context{"label": row.Label, "answer": row.Answer})
	}
	data := pongo2.Context{
		"title":            locale.T(t, loc, "receipt.title", "Submission summary"),
		"submission_label": locale.T(t, loc, "receipt.submission", "Submission id"),
		"submission_id":    sub.ID,
		"empty":            locale.T(t, loc, "receipt.empty", "No answers were stored."),
		"rows":             ctxRows,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(data, &buf); err != nil {
		return "", fmt.Errorf("receipt: execute template %q: %w", r.path, err)
	}
	return buf.String(), nil
}

func (r *Renderer) template() (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tmpl != nil {
		return r.tmpl, nil
	}
	tmpl, err := r.set.FromFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("receipt: load template %q: %w", r.path, err)
	}
	r.tmpl = tmpl
	return tmpl, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
	defaultErr      error
)

// Render uses a shared renderer over the embedded template.
func Render(sub submission.Submission, questions []model.Question, t locale.Translator, loc string) (string, error) {
	defaultOnce.Do(func() {
		defaultRenderer, defaultErr = New()
	})
	if defaultErr != nil {
		return "", defaultErr
	}
	return defaultRenderer.Render(sub, questions, t, loc)
}
