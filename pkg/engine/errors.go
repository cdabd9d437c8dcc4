package engine

import (
	"errors"

	"github.com/goliatone/go-formreader/pkg/model"
)

// ErrAborted is returned when the operator interrupts a prompt.
var ErrAborted = errors.New("engine: aborted")

// IsInline reports whether err degrades a single question to an error
// display instead of stopping the form.
func IsInline(err error) bool {
	return errors.Is(err, model.ErrOptionsDecode) ||
		errors.Is(err, model.ErrNoOptions) ||
		errors.Is(err, model.ErrUnsupportedQuestionType)
}
