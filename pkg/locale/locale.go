// Package locale resolves operator-facing messages. Catalogs are flat YAML
// maps (one file per locale) embedded in the binary; callers may load extra
// catalogs from any fs.FS.
package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formreader/pkg/model"
)

const (
	// DefaultLocale is Turkish, the operators' language.
	DefaultLocale = "tr"
	// FallbackLocale is consulted when a key is missing in the requested locale.
	FallbackLocale = "en"
)

var (
	// ErrMissingTranslator is reported when no translator was configured.
	ErrMissingTranslator = errors.New("locale: translator is nil")
	// ErrMissingTranslation is returned when no catalog defines a key.
	ErrMissingTranslation = errors.New("locale: missing translation")
)

//go:embed messages/*.yaml
var embedded embed.FS

// Translator resolves a message key for a locale, formatting args into it.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Catalog is a Translator backed by in-memory message maps.
type Catalog struct {
	messages map[string]map[string]string
	fallback string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded message files.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(embedded, "messages")
	})
	return defaultCatalog, defaultErr
}

// MustDefault panics when the embedded catalogs cannot be parsed.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFS reads every `<locale>.yaml` / `<locale>.yml` file under dir.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("locale: read %s: %w", dir, err)
	}
	c := &Catalog{
		messages: make(map[string]map[string]string),
		fallback: FallbackLocale,
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := path.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		name := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("locale: read %s: %w", name, err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("locale: parse %s: %w", name, err)
		}
		c.Add(strings.TrimSuffix(entry.Name(), ext), messages)
	}
	return c, nil
}

// Add merges messages into the catalog for loc.
func (c *Catalog) Add(loc string, messages map[string]string) {
	loc = normalize(loc)
	if c.messages == nil {
		c.messages = make(map[string]map[string]string)
	}
	if c.messages[loc] == nil {
		c.messages[loc] = make(map[string]string, len(messages))
	}
	for k, v := range messages {
		c.messages[loc][strings.TrimSpace(k)] = v
	}
}

// Locales lists the loaded locales.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for loc := range c.messages {
		out = append(out, loc)
	}
	return out
}

// Translate implements Translator. Lookups try the exact locale, its base
// language (`tr-TR` -> `tr`), then the fallback locale.
func (c *Catalog) Translate(loc, key string, args ...any) (string, error) {
	if c == nil {
		return "", ErrMissingTranslator
	}
	for _, candidate := range c.candidates(loc) {
		if msg, ok := c.messages[candidate][key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, loc, key)
}

func (c *Catalog) candidates(loc string) []string {
	loc = normalize(loc)
	out := []string{loc}
	if base, _, ok := strings.Cut(loc, "-"); ok {
		out = append(out, base)
	}
	if c.fallback != "" && c.fallback != loc {
		out = append(out, c.fallback)
	}
	return out
}

func normalize(loc string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(loc), "_", "-"))
}

// T translates key, returning fallback (or the key itself) when the
// translator is missing or fails.
func T(t Translator, loc, key, fallback string, args ...any) string {
	if t != nil {
		if msg, err := t.Translate(loc, key, args...); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// TypeName returns the display name of a question variant.
func TypeName(t Translator, loc string, qt model.QuestionType) string {
	return T(t, loc, "type."+string(qt), string(qt))
}

// MessageKey maps a domain error onto its message key.
func MessageKey(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrRequiredFieldsMissing):
		return "error.required_fields"
	case errors.Is(err, model.ErrRequiredFieldMissing):
		return "error.required_field"
	case errors.Is(err, model.ErrNoOptions):
		return "error.no_options"
	case errors.Is(err, model.ErrOptionsDecode):
		return "error.options_decode"
	case errors.Is(err, model.ErrStoreUnavailable):
		return "error.store_unavailable"
	case errors.Is(err, model.ErrFormNotFound):
		return "error.form_not_found"
	case errors.Is(err, model.ErrUnsupportedQuestionType):
		return "error.unsupported_type"
	case errors.Is(err, model.ErrAnswerTypeMismatch):
		return "error.type_mismatch"
	default:
		return "error.unknown"
	}
}

// Describe returns the localized, operator-facing text for err.
func Describe(t Translator, loc string, err error) string {
	if err == nil {
		return ""
	}
	return T(t, loc, MessageKey(err), err.Error())
}
