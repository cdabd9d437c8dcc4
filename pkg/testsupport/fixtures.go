// Package testsupport provides in-memory collaborators for tests: a store
// with failure injection, a scripted prompt driver and question fixtures.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/store"
)

// QuestionRecord converts a question into the raw schema record a backend
// would return.
func QuestionRecord(q model.Question) store.Record {
	return store.Record{
		store.FieldEventID:         q.EventID,
		store.FieldID:              float64(q.ID),
		store.FieldName:            q.Name,
		store.FieldType:            string(q.Type),
		store.FieldIsRequired:      q.Required,
		store.FieldRank:            float64(q.Rank),
		store.FieldPossibleAnswers: q.PossibleAnswers,
	}
}

// QuestionRecords converts many questions, keeping their order.
func QuestionRecords(questions ...model.Question) []store.Record {
	out := make([]store.Record, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuestionRecord(q))
	}
	return out
}

// RegistrationForm returns form "22": a required text question and an optional
// number question.
func RegistrationForm() []model.Question {
	return []model.Question{
		{ID: 1, EventID: "22", Name: "Name", Type: model.QuestionTypeText, Required: true, Rank: 1, PossibleAnswers: "[]"},
		{ID: 2, EventID: "22", Name: "Age", Type: model.QuestionTypeNumber, Rank: 2, PossibleAnswers: "[]"},
	}
}

// LoadQuestions reads a YAML list of questions.
func LoadQuestions(path string) ([]model.Question, error) {
	if path == "" {
		return nil, errors.New("testsupport: questions path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read questions: %w", err)
	}
	var out []model.Question
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal questions: %w", err)
	}
	return out, nil
}

// MustLoadQuestions is LoadQuestions for tests.
func MustLoadQuestions(t *testing.T, path string) []model.Question {
	t.Helper()

	out, err := LoadQuestions(path)
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	return out
}
