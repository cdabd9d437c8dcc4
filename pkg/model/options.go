package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeOptions parses a JSON string list such as `["A", "B"]`. Scalar
// entries (numbers, booleans) are stringified; nested values are rejected.
func DecodeOptions(raw string) ([]string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrOptionsDecode)
	}

	var items []any
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOptionsDecode, err)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64, bool:
			out = append(out, fmt.Sprint(v))
		default:
			return nil, fmt.Errorf("%w: entry %d is %T", ErrOptionsDecode, i, item)
		}
	}
	return out, nil
}

// EncodeOptions serializes values as a JSON string list. HTML characters are
// kept verbatim so stored answers stay readable.
func EncodeOptions(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(values); err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
