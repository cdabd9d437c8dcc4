// Package airtable reads question schemas from and writes answers to an
// Airtable base over its REST API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formreader/internal/log"
	"github.com/goliatone/go-formreader/pkg/store"
)

// DefaultEndpoint is the public Airtable API root.
const DefaultEndpoint = "https://api.airtable.com"

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client; its Timeout bounds every call.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithEndpoint points the client at another API root (tests, proxies).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(endpoint), "/"); trimmed != "" {
			c.endpoint = trimmed
		}
	}
}

// Client implements store.Store against one Airtable base.
type Client struct {
	http     *http.Client
	endpoint string
	baseID   string
	apiKey   string
}

var _ store.Store = (*Client)(nil)

// New constructs a client for the given base. Both baseID and apiKey are
// required.
func New(baseID, apiKey string, options ...Option) (*Client, error) {
	baseID = strings.TrimSpace(baseID)
	apiKey = strings.TrimSpace(apiKey)
	if baseID == "" {
		return nil, errors.New("airtable: base id is required")
	}
	if apiKey == "" {
		return nil, errors.New("airtable: api key is required")
	}

	c := &Client{
		http:     http.DefaultClient,
		endpoint: DefaultEndpoint,
		baseID:   baseID,
		apiKey:   apiKey,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

type listResponse struct {
	Records []struct {
		ID     string         `json:"id"`
		Fields map[string]any `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

type createRequest struct {
	Fields store.Record `json:"fields"`
}

type apiError struct {
	Error json.RawMessage `json:"error"`
}

// ReadAll lists every record of table, following offset pagination until the
// API stops returning an offset.
func (c *Client) ReadAll(ctx context.Context, table string) ([]store.Record, error) {
	var (
		out    []store.Record
		offset string
	)
	for {
		endpoint, err := c.tableURL(table)
		if err != nil {
			return nil, err
		}
		if offset != "" {
			endpoint += "?" + url.Values{"offset": {offset}}.Encode()
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, store.Unavailable("airtable: list "+table, err)
		}
		for _, rec := range page.Records {
			fields := store.Record(rec.Fields)
			if fields == nil {
				fields = store.Record{}
			}
			out = append(out, fields)
		}
		log.Debugf("airtable: fetched %d records from %s", len(page.Records), table)

		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

// Create inserts a single record into table.
func (c *Client) Create(ctx context.Context, table string, record store.Record) error {
	endpoint, err := c.tableURL(table)
	if err != nil {
		return err
	}
	body, err := json.Marshal(createRequest{Fields: record})
	if err != nil {
		return fmt.Errorf("airtable: encode record: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return store.Unavailable("airtable: create in "+table, err)
	}
	return nil
}

func (c *Client) tableURL(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", errors.New("airtable: table name is required")
	}
	return fmt.Sprintf("%s/v0/%s/%s", c.endpoint, url.PathEscape(c.baseID), url.PathEscape(table)), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var payload apiError
	if err := json.Unmarshal(data, &payload); err == nil && len(payload.Error) > 0 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload.Error)))
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
