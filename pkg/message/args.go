package message

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns a string argument or def when absent or empty
func (v ToolArgumentValues) String(name, def string) string {
	if s, ok := v[name].(string); ok && s != "" {
		return s
	}
	return def
}

// Number returns a numeric argument. Numbers may arrive as float64 (JSON),
// int (Go callers) or string (CLI key=value pairs).
func (v ToolArgumentValues) Number(name string) (float64, error) {
	raw, exists := v[name]
	if !exists {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %v", name, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", name, raw)
	}
}

// Bool returns a boolean argument and whether it was supplied
func (v ToolArgumentValues) Bool(name string) (value bool, present bool) {
	switch b := v[name].(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

// ParseKeyValueArgs turns CLI "key=value" words into argument values.
// Values stay strings; typed accessors convert them on use.
func ParseKeyValueArgs(words []string) (ToolArgumentValues, error) {
	args := ToolArgumentValues{}
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", w)
		}
		args[key] = value
	}
	return args, nil
}
