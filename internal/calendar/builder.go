// Package calendar builds a full-year marketing event calendar and exports
// it as a spreadsheet, CSV or iCalendar file.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/monitoring"
)

const (
	MsgEmptyCalendar = "연간 이벤트 결과가 비어 있습니다."
	stage            = "annual"

	DefaultMinYear  = 2024
	DefaultMaxYear  = 2027
	DefaultYear     = 2025
	DefaultModel    = "gemini-2.5-flash"
	DefaultTemp     = 0.35
	FailedPrefix    = "연간 이벤트 생성 실패: "
	defaultCountry  = "대한민국"
	calendarSubject = "연간 마케팅 캘린더"
)

// Options tune annual generation.
type Options struct {
	Model            string
	Temperature      float64
	ThinkingDisabled bool
	MinYear          int
	MaxYear          int
	PerMonth         int
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Model:            DefaultModel,
		Temperature:      DefaultTemp,
		ThinkingDisabled: true,
		MinYear:          DefaultMinYear,
		MaxYear:          DefaultMaxYear,
		PerMonth:         events.MinEventsPerMonth,
	}
}

// Calendar is one generated year.
type Calendar struct {
	Year        int             `json:"year"`
	Country     string          `json:"country"`
	Events      []events.Record `json:"events"`
	Injected    int             `json:"injected"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Label is the completion message shown after a build.
func (c Calendar) Label() string {
	return fmt.Sprintf("✅ %d년 이벤트 %d건 · (월별≥%d 보장)", c.Year, len(c.Events), events.MinEventsPerMonth)
}

// Builder generates annual calendars through a language model.
type Builder struct {
	model   llmjson.Model
	opts    Options
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
	now     func() time.Time
}

// NewBuilder creates a Builder. logger and metrics may be nil.
func NewBuilder(model llmjson.Model, opts Options, logger *monitoring.Logger, metrics *monitoring.Metrics) *Builder {
	if logger == nil {
		logger = monitoring.NopLogger()
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.PerMonth <= 0 {
		opts.PerMonth = events.MinEventsPerMonth
	}
	if opts.MinYear == 0 && opts.MaxYear == 0 {
		opts.MinYear, opts.MaxYear = DefaultMinYear, DefaultMaxYear
	}
	return &Builder{
		model:   model,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// ValidateYear rejects years outside the configured range.
func (b *Builder) ValidateYear(year int) error {
	if year < b.opts.MinYear || year > b.opts.MaxYear {
		return apperrors.NewValidationError(
			fmt.Sprintf("연도는 %d~%d 사이여야 합니다.", b.opts.MinYear, b.opts.MaxYear), year)
	}
	return nil
}

// YearRange returns the accepted years, inclusive.
func (b *Builder) YearRange() (int, int) {
	return b.opts.MinYear, b.opts.MaxYear
}

// Build asks the model for at least PerMonth events in every month of year,
// pads thin months from the almanac and sorts the result by date.
func (b *Builder) Build(ctx context.Context, year int, country string) (Calendar, error) {
	if err := b.ValidateYear(year); err != nil {
		return Calendar{}, err
	}
	country = strings.TrimSpace(country)
	if country == "" {
		country = defaultCountry
	}

	prompt := annualPrompt(year, country, b.opts.PerMonth)
	params := llmjson.Params{
		Model:            b.opts.Model,
		Temperature:      b.opts.Temperature,
		ThinkingDisabled: b.opts.ThinkingDisabled,
	}

	start := time.Now()
	raw, err := llmjson.Call(ctx, b.model, prompt, params)
	duration := time.Since(start)
	b.metrics.RecordModelCall(stage, duration, err)
	b.logger.ModelCallLogger(stage, params.Model, utf8.RuneCountInString(prompt), duration, err)
	if err != nil {
		return Calendar{}, err
	}

	flat := events.FlattenAny(raw)
	if len(flat) == 0 {
		return Calendar{}, apperrors.NewEmptyResultError(MsgEmptyCalendar)
	}

	padded, injected := events.EnsureMonthMinimum(flat, year, b.opts.PerMonth)
	events.SortChronological(padded, year)

	b.metrics.AddAlmanacFill(stage, injected)
	b.logger.PipelineLogger(stage,
		"year", year,
		"country", country,
		"model_events", len(flat),
		"injected", injected,
	)

	return Calendar{
		Year:        year,
		Country:     country,
		Events:      padded,
		Injected:    injected,
		GeneratedAt: b.now().UTC(),
	}, nil
}

func annualPrompt(year int, country string, perMonth int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "당신은 %s 시장의 연간 마케팅 캘린더 작성자다.\n", country)
	fmt.Fprintf(&sb, "연도: %d, 국가: %s.\n", year, country)
	fmt.Fprintf(&sb, "카테고리: %s\n", events.CategoryList())
	fmt.Fprintf(&sb, "월별 최소 %d개 이상 이벤트를 JSON 배열로 생성하라 (부족하면 WorldDays, 스포츠, 문화로 보강).\n", perMonth)
	sb.WriteString("반환 스키마:\n")
	sb.WriteString(events.RecordSchema)
	sb.WriteString("\n")
	return sb.String()
}
