// Package store declares the contracts the form reader consumes from the
// external tabular store: a schema reader returning every raw question record
// and an answer writer creating one row per call. Backends live in the
// airtable, sqlstore and filestore subpackages.
package store

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formreader/pkg/model"
)

const (
	// DefaultQuestionsTable holds the question schema rows.
	DefaultQuestionsTable = "registration_form"
	// DefaultAnswersTable receives one row per persisted answer.
	DefaultAnswersTable = "registration_form_answers"
)

// Schema record field names.
const (
	FieldEventID         = "event_id"
	FieldID              = "id"
	FieldName            = "name"
	FieldType            = "type"
	FieldIsRequired      = "is_required"
	FieldRank            = "rank"
	FieldPossibleAnswers = "possible_answers"
)

// Answer record field names.
const (
	FieldRegistrationFormID = "registration_form_id"
	FieldUserID             = "user_id"
	FieldAnswer             = "answer"
)

// ErrUnavailable is the store-level name for model.ErrStoreUnavailable.
var ErrUnavailable = model.ErrStoreUnavailable

// Record is one raw row as returned by a backend. Values keep whatever type
// the backend decoded (float64 for JSON numbers, int64 for SQL integers, ...).
type Record map[string]any

// SchemaReader returns every record of a table.
type SchemaReader interface {
	ReadAll(ctx context.Context, table string) ([]Record, error)
}

// AnswerWriter creates a single record in a table.
type AnswerWriter interface {
	Create(ctx context.Context, table string, record Record) error
}

// Store is implemented by backends that both read schemas and write answers.
type Store interface {
	SchemaReader
	AnswerWriter
}

// AnswerRecord is the persisted unit: one answered question of one
// submission.
type AnswerRecord struct {
	QuestionID   int    `json:"registration_form_id" yaml:"registration_form_id"`
	SubmissionID string `json:"user_id" yaml:"user_id"`
	Answer       string `json:"answer" yaml:"answer"`
}

// Fields maps the record onto the answer table columns.
func (r AnswerRecord) Fields() Record {
	return Record{
		FieldRegistrationFormID: r.QuestionID,
		FieldUserID:             r.SubmissionID,
		FieldAnswer:             r.Answer,
	}
}

// Unavailable wraps err so it matches ErrUnavailable.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
