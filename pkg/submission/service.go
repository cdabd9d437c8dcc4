package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/store"
)

// WriteError reports a submit that stopped part way. Written records stay in
// the store; nothing is rolled back.
type WriteError struct {
	SubmissionID string
	Written      int
	Total        int
	Err          error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("submission %s: wrote %d of %d records: %v", e.SubmissionID, e.Written, e.Total, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithAnswersTable overrides the table answers are written to.
func WithAnswersTable(table string) ServiceOption {
	return func(s *Service) {
		if trimmed := strings.TrimSpace(table); trimmed != "" {
			s.table = trimmed
		}
	}
}

// Service writes submissions record by record.
type Service struct {
	writer store.AnswerWriter
	table  string
}

// NewService returns a service writing through writer.
func NewService(writer store.AnswerWriter, options ...ServiceOption) (*Service, error) {
	if writer == nil {
		return nil, errors.New("submission: answer writer is required")
	}
	s := &Service{writer: writer, table: store.DefaultAnswersTable}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Submit writes each record in order with one create call per record and
// stops at the first failure. Failures come back as a *WriteError carrying
// the written count; store failures also match model.ErrStoreUnavailable.
func (s *Service) Submit(ctx context.Context, sub Submission) (int, error) {
	logger := log.WithFields(log.Fields{"submission": sub.ID, "table": s.table})
	for i, rec := range sub.Records {
		if err := ctx.Err(); err != nil {
			return i, &WriteError{SubmissionID: sub.ID, Written: i, Total: len(sub.Records), Err: err}
		}
		if err := s.writer.Create(ctx, s.table, rec.Fields()); err != nil {
			if !errors.Is(err, model.ErrStoreUnavailable) {
				err = store.Unavailable("submission: create", err)
			}
			logger.Errorf("stopped after %d of %d records: %v", i, len(sub.Records), err)
			return i, &WriteError{SubmissionID: sub.ID, Written: i, Total: len(sub.Records), Err: err}
		}
	}
	logger.Infof("stored %d records", len(sub.Records))
	return len(sub.Records), nil
}
