package ideation

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

// Failure prefixes shown next to stage errors.
const (
	ResearchFailedPrefix = "리서치 실패: "
	GenerateFailedPrefix = "아이디어 생성 실패: "
	RefineFailedPrefix   = "수정 실패: "
)

// Progress reports the running stage and a completion percentage.
type Progress func(stage string, percent int)

// BatchInput is one "generate ideas" request.
type BatchInput struct {
	Target      time.Time
	Country     string
	Brand       string
	Channels    []Channel
	Count       int
	Temperature float64
}

// Validate applies request defaults and rejects a missing brand.
func (in *BatchInput) Validate() error {
	in.Brand = strings.TrimSpace(in.Brand)
	if in.Brand == "" {
		return apperrors.NewValidationError(MsgBrandRequired)
	}
	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		in.Country = DefaultCountry
	}
	if in.Count == 0 {
		in.Count = DefaultCards
	}
	if in.Count < MinCards || in.Count > MaxCards {
		return apperrors.NewValidationError("생성 카드 수는 1~10 사이여야 합니다.", in.Count)
	}
	if in.Temperature < 0 || in.Temperature > 1 {
		return apperrors.NewValidationError("창의성은 0~1 사이여야 합니다.", in.Temperature)
	}
	if in.Target.IsZero() {
		in.Target = time.Now()
	}
	in.Target = events.Civil(in.Target)
	return nil
}

// Batch is the outcome of one full research and generation run.
type Batch struct {
	Input    BatchInput
	Research ResearchResult
	Result   GenerateResult
}

// RunBatch validates the input, researches the event context and
// generates the cards. Stage failures come back as *StageError.
func (g *Generator) RunBatch(ctx context.Context, in BatchInput, progress Progress) (Batch, error) {
	if progress == nil {
		progress = func(string, int) {}
	}
	if err := in.Validate(); err != nil {
		return Batch{}, err
	}

	progress(StageResearch, 10)
	research, err := g.Research(ctx, ResearchInput{Target: in.Target, Country: in.Country})
	if err != nil {
		return Batch{Input: in}, stageError(ResearchFailedPrefix, err)
	}

	progress(StageGenerate, 55)
	result, err := g.Generate(ctx, GenerateInput{
		Target:      in.Target,
		Country:     in.Country,
		Brand:       in.Brand,
		Channels:    in.Channels,
		Goals:       Goals(),
		Events:      research.Events,
		Count:       in.Count,
		Temperature: in.Temperature,
	})
	if err != nil {
		return Batch{Input: in, Research: research}, stageError(GenerateFailedPrefix, err)
	}

	progress("done", 100)
	g.logger.PipelineLogger("batch",
		"country", in.Country,
		"cards", len(result.Cards),
		"fallback", result.Fallback,
		"almanac_only", research.FromAlmanac,
	)
	return Batch{Input: in, Research: research, Result: result}, nil
}

// stageError keeps the category and status of err while prefixing the
// user message with the failed stage.
func stageError(prefix string, err error) error {
	return &StageError{Prefix: prefix, Err: apperrors.ToAppError(err)}
}

// StageError tags a pipeline error with the stage that produced it.
type StageError struct {
	Prefix string
	Err    *apperrors.AppError
}

func (e *StageError) Error() string {
	return e.Prefix + apperrors.UserMessage(e.Err)
}

// StagedMessage is the user-facing message, prefixed with the stage.
func (e *StageError) StagedMessage() string {
	return e.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
