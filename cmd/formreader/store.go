package main

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-formreader/internal/config"
	"github.com/goliatone/go-formreader/pkg/store"
	"github.com/goliatone/go-formreader/pkg/store/airtable"
	"github.com/goliatone/go-formreader/pkg/store/filestore"
	"github.com/goliatone/go-formreader/pkg/store/sqlstore"
)

// openStore builds the configured backend. The returned func releases it.
func openStore(cfg config.Config) (store.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store.Backend {
	case config.BackendAirtable:
		client, err := airtable.New(cfg.Airtable.BaseID, cfg.Airtable.APIKey,
			airtable.WithEndpoint(cfg.Airtable.Endpoint),
			airtable.WithHTTPClient(&http.Client{Timeout: cfg.Airtable.Timeout}),
		)
		if err != nil {
			return nil, nil, err
		}
		return client, noop, nil
	case config.BackendSQLite:
		s, err := sqlstore.Open(cfg.SQLite.Path, cfg.Store.QuestionsTable, cfg.Store.AnswersTable)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendFile:
		s, err := filestore.New(cfg.File.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
