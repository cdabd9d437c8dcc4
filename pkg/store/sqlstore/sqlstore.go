// Package sqlstore keeps the question and answer tables in a local SQLite
// database through gorm, mirroring the hosted tabular store's columns.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/store"
)

// QuestionRow is the schema table layout.
type QuestionRow struct {
	RowID           uint   `gorm:"primaryKey;column:row_id"`
	EventID         string `gorm:"column:event_id;index;not null"`
	QuestionID      int    `gorm:"column:id;not null"`
	Name            string `gorm:"column:name;not null"`
	Type            string `gorm:"column:type;size:32;not null;default:text"`
	IsRequired      bool   `gorm:"column:is_required;not null;default:false"`
	Rank            int    `gorm:"column:rank;not null;default:0"`
	PossibleAnswers string `gorm:"column:possible_answers;not null;default:'[]'"`
}

// AnswerRow is the answer table layout.
type AnswerRow struct {
	RowID              uint   `gorm:"primaryKey;column:row_id"`
	RegistrationFormID int    `gorm:"column:registration_form_id;index;not null"`
	UserID             string `gorm:"column:user_id;size:36;index;not null"`
	Answer             string `gorm:"column:answer;not null"`
}

// Store implements store.Store on a gorm handle.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to the SQLite file at path and migrates both tables.
func Open(path, questionsTable, answersTable string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlstore: database path is required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(questionsTable, answersTable); err != nil {
		return nil, err
	}
	log.Debugf("sqlstore: opened %s", path)
	return s, nil
}

// New wraps an existing gorm handle without migrating.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) migrate(questionsTable, answersTable string) error {
	if questionsTable == "" {
		questionsTable = store.DefaultQuestionsTable
	}
	if answersTable == "" {
		answersTable = store.DefaultAnswersTable
	}
	if err := s.db.Table(questionsTable).AutoMigrate(&QuestionRow{}); err != nil {
		return fmt.Errorf("sqlstore: migrate %s: %w", questionsTable, err)
	}
	if err := s.db.Table(answersTable).AutoMigrate(&AnswerRow{}); err != nil {
		return fmt.Errorf("sqlstore: migrate %s: %w", answersTable, err)
	}
	return nil
}

// ReadAll returns every row of table as raw column maps.
func (s *Store) ReadAll(ctx context.Context, table string) ([]store.Record, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(table).Order("row_id").Find(&rows).Error; err != nil {
		return nil, store.Unavailable("sqlstore: read "+table, err)
	}
	out := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.Record(row))
	}
	return out, nil
}

// Create inserts one row into table.
func (s *Store) Create(ctx context.Context, table string, record store.Record) error {
	values := make(map[string]any, len(record))
	for k, v := range record {
		values[k] = v
	}
	if err := s.db.WithContext(ctx).Table(table).Create(values).Error; err != nil {
		return store.Unavailable("sqlstore: create in "+table, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
