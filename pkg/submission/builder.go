// Package submission turns collected answers into answer records and
// persists them. Every build draws a fresh submission id shared by all of its
// records.
package submission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/store"
)

// Submission groups the records produced for one filled-in form.
type Submission struct {
	ID      string
	Records []store.AnswerRecord
}

// Empty reports whether no answer produced a record.
func (s Submission) Empty() bool {
	return len(s.Records) == 0
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithIDGenerator overrides the submission id source.
func WithIDGenerator(next func() string) BuilderOption {
	return func(b *Builder) {
		if next != nil {
			b.nextID = next
		}
	}
}

// Builder encodes answers into records.
type Builder struct {
	nextID func() string
}

// NewBuilder returns a builder drawing ids from uuid.NewString.
func NewBuilder(options ...BuilderOption) *Builder {
	b := &Builder{nextID: uuid.NewString}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Build produces one record per present answer, ordered by question id.
// Absent answers (nil, empty text, empty selection) are skipped. Multi-choice
// answers are stored as a JSON list.
func (b *Builder) Build(answers map[int]model.AnswerValue) (Submission, error) {
	id := strings.TrimSpace(b.nextID())
	if id == "" {
		return Submission{}, fmt.Errorf("submission: empty submission id")
	}

	ids := make([]int, 0, len(answers))
	for qid, value := range answers {
		if model.IsAbsent(value) {
			continue
		}
		ids = append(ids, qid)
	}
	sort.Ints(ids)

	records := make([]store.AnswerRecord, 0, len(ids))
	for _, qid := range ids {
		encoded, err := answers[qid].Encode()
		if err != nil {
			return Submission{}, fmt.Errorf("submission: encode answer for question %d: %w", qid, err)
		}
		records = append(records, store.AnswerRecord{
			QuestionID:   qid,
			SubmissionID: id,
			Answer:       encoded,
		})
	}
	return Submission{ID: id, Records: records}, nil
}
