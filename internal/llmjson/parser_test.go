package llmjson

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{
			name:     "plain object",
			input:    `{"a": 1}`,
			expected: map[string]any{"a": float64(1)},
		},
		{
			name:     "plain array with whitespace",
			input:    "\n  [1, 2, 3]  \n",
			expected: []any{float64(1), float64(2), float64(3)},
		},
		{
			name:     "array inside prose",
			input:    "Here are the events:\n[{\"name\":\"x\"}]\nHope this helps!",
			expected: []any{map[string]any{"name": "x"}},
		},
		{
			name:     "flat object inside code fence",
			input:    "```json\n{\"name\": \"세계 환경의 날\"}\n```",
			expected: map[string]any{"name": "세계 환경의 날"},
		},
		{
			name:     "scalar string",
			input:    `"hello"`,
			expected: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	inputs := []string{
		"",
		"no json here",
		"null",
		"] backwards [",
		"{broken: json}",
		"[1, 2 and {\"a\": }",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := Extract(in)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.CategoryParse))
		})
	}
}

func TestExtractSlicesFromFirstToLastBracket(t *testing.T) {
	// Two separate arrays produce a slice that is not valid JSON.
	_, err := Extract(`[1] and [2]`)
	assert.Error(t, err)

	// The array slice is tried first, so an object wrapped in prose yields
	// its inner list.
	got, err := Extract(`Result: {"WorldDays": [{"name": "세계 환경의 날"}]} done`)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "세계 환경의 날"}}, got)

	// Without prose the whole object parses directly.
	got, err = Extract(`{"a": [1]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1)}}, got)
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	params := Params{Model: "gemini-2.5-flash", Temperature: 0.35, ThinkingDisabled: true}

	t.Run("success", func(t *testing.T) {
		var seen Params
		m := ModelFunc(func(_ context.Context, prompt string, p Params) (string, error) {
			seen = p
			assert.Equal(t, "prompt", prompt)
			return "sure! [1]", nil
		})
		got, err := Call(ctx, m, "prompt", params)
		require.NoError(t, err)
		assert.Equal(t, []any{float64(1)}, got)
		assert.Equal(t, params, seen)
	})

	t.Run("transport failure", func(t *testing.T) {
		m := ModelFunc(func(context.Context, string, Params) (string, error) {
			return "", fmt.Errorf("dial tcp: connection refused")
		})
		_, err := Call(ctx, m, "p", params)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.CategoryModelCall))
		assert.Contains(t, apperrors.UserMessage(err), "connection refused")
	})

	t.Run("unparseable reply", func(t *testing.T) {
		m := ModelFunc(func(context.Context, string, Params) (string, error) {
			return "I cannot help with that.", nil
		})
		_, err := Call(ctx, m, "p", params)
		assert.True(t, apperrors.IsKind(err, apperrors.CategoryParse))
	})
}
