package testsupport

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-formreader/pkg/model"
	"github.com/goliatone/go-formreader/pkg/store"
)

// ErrInjected is the default failure returned by MemoryStore when asked to
// fail.
var ErrInjected = errors.New("testsupport: injected failure")

// MemoryStore is an in-memory store.Store. Reads return copies so callers
// cannot mutate the stored rows.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]store.Record

	readErr     error
	createErr   error
	createAfter int

	Reads   int
	Creates int
}

var _ store.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables:      make(map[string][]store.Record),
		createAfter: -1,
	}
}

// Seed appends records to table.
func (m *MemoryStore) Seed(table string, records ...store.Record) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.tables[table] = append(m.tables[table], cloneRecord(rec))
	}
	return m
}

// SeedQuestions appends question records to the default questions table.
func (m *MemoryStore) SeedQuestions(questions ...model.Question) *MemoryStore {
	return m.Seed(store.DefaultQuestionsTable, QuestionRecords(questions...)...)
}

// Replace swaps the content of table.
func (m *MemoryStore) Replace(table string, records ...store.Record) {
	m.mu.Lock()
	m.tables[table] = nil
	m.mu.Unlock()
	m.Seed(table, records...)
}

// FailReads makes every ReadAll fail with err (ErrInjected when nil).
// FailReads(nil) after a failure keeps failing; use ResetFailures to clear.
func (m *MemoryStore) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	m.readErr = err
}

// FailCreatesAfter lets n creates succeed, then fails every following one.
func (m *MemoryStore) FailCreatesAfter(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	m.createErr = err
	m.createAfter = n
}

// ResetFailures clears injected failures.
func (m *MemoryStore) ResetFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = nil
	m.createErr = nil
	m.createAfter = -1
}

// Records returns a copy of table.
func (m *MemoryStore) Records(table string) []store.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Record, 0, len(m.tables[table]))
	for _, rec := range m.tables[table] {
		out = append(out, cloneRecord(rec))
	}
	return out
}

func (m *MemoryStore) ReadAll(ctx context.Context, table string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Reads++
	err := m.readErr
	m.mu.Unlock()
	if err != nil {
		return nil, store.Unavailable("memory: read "+table, err)
	}
	return m.Records(table), nil
}

func (m *MemoryStore) Create(ctx context.Context, table string, record store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil && m.createAfter >= 0 && m.Creates >= m.createAfter {
		return store.Unavailable("memory: create in "+table, m.createErr)
	}
	m.Creates++
	m.tables[table] = append(m.tables[table], cloneRecord(record))
	return nil
}

func cloneRecord(rec store.Record) store.Record {
	out := make(store.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
