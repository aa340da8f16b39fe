package adapters

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/resilience"
)

// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// reasoningNone disables thinking on Gemini 2.5 models.
const reasoningNone = shared.ReasoningEffort("none")

// GeminiConfig configures the Gemini adapter.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Breaker    resilience.CircuitBreakerConfig
}

type chatCompletions interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// GeminiAdapter sends prompts to Gemini through the OpenAI chat completions
// API. Calls are never repeated; a breaker rejects calls while the provider
// keeps failing.
type GeminiAdapter struct {
	completions chatCompletions
	timeout     time.Duration
	breaker     *resilience.CircuitBreaker
}

// NewGeminiAdapter creates the adapter. The API key is required.
func NewGeminiAdapter(cfg GeminiConfig) (*GeminiAdapter, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, apperrors.NewConfigError("GEMINI_API_KEY가 설정되지 않았습니다.", nil)
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	client := openai.NewClient(opts...)
	return &GeminiAdapter{
		completions: &client.Chat.Completions,
		timeout:     cfg.Timeout,
		breaker:     resilience.NewCircuitBreaker(cfg.Breaker),
	}, nil
}

// Generate implements llmjson.Model.
func (g *GeminiAdapter) Generate(ctx context.Context, prompt string, params llmjson.Params) (string, error) {
	caller := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(params.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(params.Temperature),
	}
	if params.ThinkingDisabled {
		req.ReasoningEffort = reasoningNone
	}

	var text string
	err := g.breaker.Call(func() error {
		completion, err := g.completions.New(ctx, req)
		if err != nil {
			if !providerFault(caller, err) {
				return resilience.Ignore(err)
			}
			return err
		}
		if len(completion.Choices) == 0 {
			return errors.New("empty completion")
		}
		text = completion.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", apperrors.NewModelCallError(params.Model, err)
	}
	return text, nil
}

// providerFault reports whether err should count against the provider. A
// caller that cancelled or ran out of time, and requests the provider
// rejected as malformed, leave the breaker alone. The adapter's own timeout
// still counts.
func providerFault(caller context.Context, err error) bool {
	if caller.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch code := apiErr.StatusCode; {
		case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
			return true
		case code >= 400 && code < 500:
			return false
		}
	}
	return true
}

// Stats reports the breaker state.
func (g *GeminiAdapter) Stats() map[string]interface{} {
	return g.breaker.Stats()
}
