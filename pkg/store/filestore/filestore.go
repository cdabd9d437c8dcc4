// Package filestore serves tables from a directory for offline use. A table
// is read from `<table>.json`, `<table>.yaml` or `<table>.yml` (a list of
// records) plus any rows appended to `<table>.jsonl`; Create appends to the
// JSON lines file.
package filestore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formreader/pkg/store"
)

var tableExtensions = []string{".json", ".yaml", ".yml"}

// Store implements store.Store over a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New returns a store rooted at dir. The directory must exist.
func New(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("filestore: directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("filestore: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

// ReadAll returns the static records of table followed by appended rows.
func (s *Store) ReadAll(ctx context.Context, table string) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fsys := os.DirFS(s.dir)
	var (
		out   []store.Record
		found bool
	)
	for _, ext := range tableExtensions {
		data, err := fs.ReadFile(fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, store.Unavailable("filestore: read "+table, err)
		}
		records, err := parseTable(data, name+ext)
		if err != nil {
			return nil, store.Unavailable("filestore: read "+table, err)
		}
		out = append(out, records...)
		found = true
		break
	}

	appended, ok, err := readLines(fsys, name+".jsonl")
	if err != nil {
		return nil, store.Unavailable("filestore: read "+table, err)
	}
	if !found && !ok {
		return nil, store.Unavailable("filestore: read "+table, fs.ErrNotExist)
	}
	return append(out, appended...), nil
}

// Create appends record as one JSON line.
func (s *Store) Create(ctx context.Context, table string, record store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := tableName(table)
	if err != nil {
		return err
	}
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("filestore: encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, name+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return store.Unavailable("filestore: create in "+table, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return store.Unavailable("filestore: create in "+table, err)
	}
	if err := f.Close(); err != nil {
		return store.Unavailable("filestore: create in "+table, err)
	}
	return nil
}

func tableName(table string) (string, error) {
	name := strings.TrimSpace(table)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("filestore: invalid table name %q", table)
	}
	return name, nil
}

func parseTable(data []byte, source string) ([]store.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []store.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	return nil, fmt.Errorf("parse %s: invalid JSON or YAML", source)
}

func readLines(fsys fs.FS, name string) ([]store.Record, bool, error) {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	var out []store.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec store.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, true, fmt.Errorf("parse %s: %w", name, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, true, err
	}
	return out, true, nil
}
