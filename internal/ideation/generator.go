// Package ideation runs the research and idea-card pipeline against a
// language model and degrades to deterministic output when the model fails.
package ideation

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/monitoring"
)

// User-facing pipeline messages.
const (
	MsgResearchShape    = "리서치 결과 형식 오류"
	MsgNoEventsInWindow = "기간 내 적합한 이벤트를 찾지 못했습니다."
	MsgEmptyContext     = "이벤트 컨텍스트가 비어 있습니다."
	MsgGenerationShape  = "아이디어 생성 결과가 비어 있거나 형식이 아닙니다."
	MsgRefineShape      = "수정 결과 형식 오류"
	MsgBrandRequired    = "브랜드와 제품명 또는 카테고리를 입력해주세요"
)

// Stage names used for logs and metrics.
const (
	StageResearch = "research"
	StageGenerate = "generate"
	StageRefine   = "refine"
)

// Card count limits.
const (
	MinCards         = 1
	MaxCards         = 10
	DefaultCards     = 6
	maxRequestCards  = 12
	extraCandidates  = 3
	DefaultModel     = "gemini-2.5-flash"
	DefaultCreative  = 0.60
	DefaultResearchT = 0.35
)

// Options tune the pipeline.
type Options struct {
	Model               string
	ResearchTemperature float64
	ThinkingDisabled    bool
	WindowDays          int
	MaxPerCategory      int
	MinEvents           int
	// AlmanacOnFailure turns a failed research stage into an almanac-only
	// context instead of aborting the batch.
	AlmanacOnFailure bool
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Model:               DefaultModel,
		ResearchTemperature: DefaultResearchT,
		ThinkingDisabled:    true,
		WindowDays:          events.DefaultWindowDays,
		MaxPerCategory:      events.DefaultMaxPerCategory,
		MinEvents:           events.MinResearchEvents,
	}
}

// Generator orchestrates research, generation and refinement.
type Generator struct {
	model   llmjson.Model
	opts    Options
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewGenerator creates a Generator. logger and metrics may be nil.
func NewGenerator(model llmjson.Model, opts Options, logger *monitoring.Logger, metrics *monitoring.Metrics) *Generator {
	if logger == nil {
		logger = monitoring.NopLogger()
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return &Generator{
		model:   model,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Options returns the generator settings.
func (g *Generator) Options() Options {
	return g.opts
}

// call runs one model round trip with logging and metrics.
func (g *Generator) call(ctx context.Context, stage, prompt string, temperature float64) (any, error) {
	params := llmjson.Params{
		Model:            g.opts.Model,
		Temperature:      temperature,
		ThinkingDisabled: g.opts.ThinkingDisabled,
	}

	start := time.Now()
	raw, err := llmjson.Call(ctx, g.model, prompt, params)
	duration := time.Since(start)

	g.metrics.RecordModelCall(stage, duration, err)
	g.logger.ModelCallLogger(stage, params.Model, utf8.RuneCountInString(prompt), duration, err)
	return raw, err
}

// ResearchInput selects the market and date of a batch.
type ResearchInput struct {
	Target  time.Time
	Country string
}

// ResearchResult is the event context of a batch.
type ResearchResult struct {
	Events events.Context
	// Injected counts almanac events added to reach the minimum.
	Injected int
	// FromAlmanac is set when the model failed and the context is almanac-only.
	FromAlmanac bool
	Cause       error
}

// Research asks the model for local events around the target date, then
// normalizes, window-filters and pads the result.
func (g *Generator) Research(ctx context.Context, in ResearchInput) (ResearchResult, error) {
	target := events.Civil(in.Target)
	prompt := researchPrompt(in.Country, target, g.opts.WindowDays)

	filtered, err := g.research(ctx, prompt, target)
	if err != nil {
		if !g.opts.AlmanacOnFailure {
			return ResearchResult{}, err
		}
		padded, n := events.EnsureMinimum(events.Context{}, target, g.opts.WindowDays, g.opts.MinEvents)
		if n == 0 {
			return ResearchResult{}, err
		}
		g.metrics.AddAlmanacFill(StageResearch, n)
		g.logger.FallbackLogger(StageResearch, apperrors.UserMessage(err), n)
		return ResearchResult{Events: padded, Injected: n, FromAlmanac: true, Cause: err}, nil
	}

	padded, n := events.EnsureMinimum(filtered, target, g.opts.WindowDays, g.opts.MinEvents)
	if n > 0 {
		g.metrics.AddAlmanacFill(StageResearch, n)
		g.logger.PipelineLogger(StageResearch, "almanac_injected", n, "total", padded.Total())
	}
	return ResearchResult{Events: padded, Injected: n}, nil
}

func (g *Generator) research(ctx context.Context, prompt string, target time.Time) (events.Context, error) {
	raw, err := g.call(ctx, StageResearch, prompt, g.opts.ResearchTemperature)
	if err != nil {
		return nil, err
	}

	normalized := events.Normalize(raw)
	if len(normalized) == 0 {
		return nil, apperrors.NewEmptyResultError(MsgResearchShape)
	}

	filtered := events.FilterWindow(normalized, target, g.opts.WindowDays, g.opts.MaxPerCategory)
	if len(filtered) == 0 {
		return nil, apperrors.NewEmptyResultError(MsgNoEventsInWindow)
	}

	g.logger.PipelineLogger(StageResearch,
		"normalized", normalized.Total(),
		"kept", filtered.Total(),
		"categories", len(filtered),
	)
	return filtered, nil
}

// GenerateInput holds everything a card batch depends on.
type GenerateInput struct {
	Target   time.Time
	Country  string
	Brand    string
	Channels []Channel
	Goals    []string
	Events   events.Context
	Count    int
	// Temperature is passed to the model as is; callers resolve defaults.
	Temperature float64
}

// GenerateResult is a ranked card batch.
type GenerateResult struct {
	Cards []Card
	// Fallback is set when the cards were synthesized without the model.
	Fallback bool
	// Cause is the model-path error that triggered the fallback.
	Cause error
}

// RequestedCount is how many candidates are asked for to rank the best n.
func RequestedCount(n int) int {
	return min(maxRequestCards, n+extraCandidates)
}

// Generate asks the model for idea cards, scores and ranks them and keeps the
// best Count. Model or shape failures fall back to deterministic cards
// sampled from the context; that path fails only when the context is empty.
func (g *Generator) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	if in.Events.Empty() {
		return GenerateResult{}, apperrors.NewEmptyResultError(MsgEmptyContext)
	}
	if in.Count < MinCards {
		return GenerateResult{}, apperrors.NewValidationError("생성 카드 수는 1 이상이어야 합니다.", in.Count)
	}

	target := events.Civil(in.Target)
	prompt := generationPrompt(generationPromptInput{
		Target:    target,
		Country:   in.Country,
		Brand:     in.Brand,
		Channels:  in.Channels,
		Goals:     in.Goals,
		Events:    in.Events,
		Requested: RequestedCount(in.Count),
	})

	cards, err := g.generate(ctx, prompt, in)
	if err == nil {
		return GenerateResult{Cards: cards}, nil
	}

	fallback := FallbackCards(FallbackInput{
		Target:     target,
		Brand:      in.Brand,
		Channels:   in.Channels,
		Goals:      in.Goals,
		Events:     in.Events,
		Count:      in.Count,
		WindowDays: g.opts.WindowDays,
	})
	if len(fallback) == 0 {
		return GenerateResult{}, err
	}

	g.metrics.AddFallbackCards(len(fallback))
	g.logger.FallbackLogger(StageGenerate, apperrors.UserMessage(err), len(fallback))
	return GenerateResult{Cards: fallback, Fallback: true, Cause: err}, nil
}

func (g *Generator) generate(ctx context.Context, prompt string, in GenerateInput) ([]Card, error) {
	raw, err := g.call(ctx, StageGenerate, prompt, in.Temperature)
	if err != nil {
		return nil, err
	}

	objects := llmjson.Objects(raw)
	if len(objects) == 0 {
		return nil, apperrors.NewEmptyResultError(MsgGenerationShape)
	}

	cards := make([]Card, len(objects))
	for i, obj := range objects {
		cards[i] = CardFromMap(obj)
	}
	assignIDs(cards)
	for i := range cards {
		cards[i] = finalize(cards[i], in.Events)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Confidence > cards[j].Confidence
	})
	if len(cards) > in.Count {
		cards = cards[:in.Count]
	}

	g.logger.PipelineLogger(StageGenerate, "returned", len(objects), "kept", len(cards))
	return cards, nil
}

// RefineInput asks for a small edit of one card.
type RefineInput struct {
	Base        Card
	Instruction string
	Country     string
	Events      events.Context
	Temperature float64
}

// Refine asks the model to edit a card. The result keeps the base id and is
// rescored against the context. On failure the caller keeps the base card.
func (g *Generator) Refine(ctx context.Context, in RefineInput) (Card, error) {
	raw, err := g.call(ctx, StageRefine, refinePrompt(in.Country, in.Base, in.Instruction), in.Temperature)
	if err != nil {
		return Card{}, err
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return Card{}, apperrors.NewEmptyResultError(MsgRefineShape)
	}

	card := CardFromMap(obj)
	card.ID = in.Base.ID
	return finalize(card, in.Events), nil
}
