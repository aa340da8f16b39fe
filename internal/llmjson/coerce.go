package llmjson

import (
	"math"
	"strconv"
	"strings"
)

// Field helpers for untyped JSON objects. Model output never guarantees field
// presence or type, so every accessor returns a zero value instead of failing.

// String returns v as trimmed text. Numbers and booleans are formatted.
func String(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// Float returns v as a number. Numeric strings are parsed.
func Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

// Unit returns Float(v) clamped to [0,1]. NaN becomes 0.
func Unit(v any) float64 {
	return Clamp01(Float(v))
}

// Clamp01 clamps f to [0,1]. NaN becomes 0.
func Clamp01(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Strings returns the non-empty string items of a list. A lone string is
// treated as a one-item list.
func Strings(v any) []string {
	switch x := v.(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s := String(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
	}
	return nil
}

// Objects returns the object items of a list, dropping anything else.
func Objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, it := range list {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
