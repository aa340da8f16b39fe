// Package llmjson recovers JSON values from free-form model output.
package llmjson

import (
	"encoding/json"
	"strings"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
)

// bracketPairs are tried in order after a direct parse fails.
var bracketPairs = [...][2]string{
	{"[", "]"},
	{"{", "}"},
}

// Extract returns the JSON value held in text.
//
// A direct parse is tried first. Otherwise the slice from the first opening
// bracket to the last closing bracket is parsed, arrays before objects. No
// balance check is done, so nested chatter can defeat the slice; that case is
// reported as a ParseError.
func Extract(text string) (any, error) {
	text = strings.TrimSpace(text)

	if v, ok := decode(text); ok {
		return v, nil
	}

	for _, pair := range bracketPairs {
		l := strings.Index(text, pair[0])
		r := strings.LastIndex(text, pair[1])
		if l < 0 || r <= l {
			continue
		}
		if v, ok := decode(text[l : r+1]); ok {
			return v, nil
		}
	}

	return nil, apperrors.NewParseError(head(text, 80))
}

// decode treats a literal null as no value.
func decode(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
