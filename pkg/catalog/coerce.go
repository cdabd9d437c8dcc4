package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coerceID turns the stored id into an int. Absent ids default to 0; values
// that cannot be read as integers are rejected.
func coerceID(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		return parseIntString(v.String())
	case string:
		return parseIntString(v)
	default:
		return 0, fmt.Errorf("invalid id %v (%T)", value, value)
	}
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid id %v", f)
	}
	return int(f), nil
}

func roundInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}

func parseIntString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return floatToInt(f)
}

// coerceInt is used for rank; fractional values round to the nearest
// integer and anything unreadable becomes 0.
func coerceInt(value any) int {
	switch v := value.(type) {
	case float32:
		return roundInt(float64(v))
	case float64:
		return roundInt(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return roundInt(f)
		}
	}
	i, err := coerceID(value)
	if err != nil {
		return 0
	}
	return i
}

// coerceBool is used for is_required; anything unreadable becomes false.
func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// coerceOptions keeps string payloads as stored and re-encodes lists that a
// backend already decoded (YAML sequences, JSON arrays).
func coerceOptions(value any) string {
	switch v := value.(type) {
	case nil:
		return "[]"
	case string:
		return v
	case []byte:
		return string(v)
	case []any, []string:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
