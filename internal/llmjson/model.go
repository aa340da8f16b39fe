package llmjson

import (
	"context"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
)

// Params are the per-call generation settings.
type Params struct {
	Model            string
	Temperature      float64
	ThinkingDisabled bool
}

// Model is a text-generation backend: prompt in, raw text out.
type Model interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, prompt string, params Params) (string, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, prompt string, params Params) (string, error) {
	return f(ctx, prompt, params)
}

// Call runs one model round trip and extracts the JSON value of the reply.
// Transport failures become ModelCallError; unparseable replies ParseError.
func Call(ctx context.Context, m Model, prompt string, params Params) (any, error) {
	text, err := m.Generate(ctx, prompt, params)
	if err != nil {
		if apperrors.IsKind(err, apperrors.CategoryModelCall) {
			return nil, err
		}
		return nil, apperrors.NewModelCallError(params.Model, err)
	}
	return Extract(text)
}
