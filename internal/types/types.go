package types

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/calendar"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/schedule"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/session"
)

// MsgBadDate is returned for dates that are not YYYY-MM-DD.
const MsgBadDate = "날짜 형식이 올바르지 않습니다. (YYYY-MM-DD)"

// IdeasRequest represents the request structure for the ideas endpoint
type IdeasRequest struct {
	Brand      string   `json:"brand" example:"오뚜기 진라면"`
	TargetDate string   `json:"target_date,omitempty" example:"2025-06-05"`
	Country    string   `json:"country,omitempty" example:"대한민국"`
	Channels   []string `json:"channels,omitempty" example:"Instagram,X(Twitter)"`
	Count      int      `json:"count,omitempty" example:"6"`
	// Creativity is the generation temperature; omitted means the configured default.
	Creativity *float64 `json:"creativity,omitempty" example:"0.6"`
}

// BatchInput converts the request into pipeline input. A nil channel list
// selects the default channels; an empty list selects none.
func (r IdeasRequest) BatchInput(defaultCountry string, defaultCreativity float64, now time.Time) (ideation.BatchInput, error) {
	target := events.Civil(now)
	if s := strings.TrimSpace(r.TargetDate); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return ideation.BatchInput{}, apperrors.NewValidationError(MsgBadDate, s)
		}
		target = t
	}

	country := strings.TrimSpace(r.Country)
	if country == "" {
		country = defaultCountry
	}

	channels := ideation.NormalizeChannels(r.Channels)
	if r.Channels == nil {
		channels = append([]ideation.Channel(nil), ideation.DefaultChannels...)
	}

	temperature := defaultCreativity
	if r.Creativity != nil {
		temperature = *r.Creativity
	}

	return ideation.BatchInput{
		Target:      target,
		Country:     country,
		Brand:       r.Brand,
		Channels:    channels,
		Count:       r.Count,
		Temperature: temperature,
	}, nil
}

// EventView is an event as displayed, with the low-confidence warning applied.
type EventView struct {
	events.Record
	DisplayNote   string `json:"display_note"`
	LowConfidence bool   `json:"low_confidence"`
}

// GroupView is one category of the displayed context.
type GroupView struct {
	Category events.Category `json:"category"`
	Color    string          `json:"color"`
	Events   []EventView     `json:"events"`
}

// Groups renders a context in display order.
func Groups(ctx events.Context) []GroupView {
	groups := ctx.Groups()
	out := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views := make([]EventView, len(g.Events))
		for i, r := range g.Events {
			views[i] = EventView{Record: r, DisplayNote: r.DisplayNote(), LowConfidence: r.LowConfidence()}
		}
		out = append(out, GroupView{Category: g.Category, Color: g.Color, Events: views})
	}
	return out
}

// IdeasResponse is returned after a successful batch.
type IdeasResponse struct {
	BatchID     string          `json:"batch_id"`
	Label       string          `json:"label"`
	Cards       []ideation.Card `json:"cards"`
	Groups      []GroupView     `json:"groups"`
	Injected    int             `json:"injected"`
	FromAlmanac bool            `json:"from_almanac"`
	Fallback    bool            `json:"fallback"`
	Warning     string          `json:"warning,omitempty"`
}

// OperationView is the status of the last operation.
type OperationView struct {
	Kind       string         `json:"kind,omitempty"`
	Status     session.Status `json:"status"`
	Label      string         `json:"label,omitempty"`
	Progress   int            `json:"progress"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// NewOperationView drops zero timestamps.
func NewOperationView(op session.Operation) OperationView {
	v := OperationView{Kind: op.Kind, Status: op.Status, Label: op.Label, Progress: op.Progress}
	if !op.StartedAt.IsZero() {
		started := op.StartedAt
		v.StartedAt = &started
	}
	if !op.FinishedAt.IsZero() {
		finished := op.FinishedAt
		v.FinishedAt = &finished
	}
	return v
}

// SessionResponse is the full workspace state.
type SessionResponse struct {
	Operation     OperationView     `json:"operation"`
	LastError     string            `json:"last_error,omitempty"`
	Snapshot      *session.Snapshot `json:"snapshot,omitempty"`
	Groups        []GroupView       `json:"groups"`
	TotalEvents   int               `json:"total_events"`
	Cards         []ideation.Card   `json:"cards"`
	CalendarYears []int             `json:"calendar_years"`
}

// RefineRequest carries the edit instruction for one card.
type RefineRequest struct {
	Instruction string `json:"instruction" example:"더 유머러스하게, 해시태그 3개 추가"`
	// Creativity is the refinement temperature; omitted means the batch's creativity.
	Creativity *float64 `json:"creativity,omitempty"`
}

// CardResponse wraps a single card.
type CardResponse struct {
	Card  ideation.Card `json:"card"`
	Label string        `json:"label"`
}

// PublishPreviewRequest asks how a card would be posted.
type PublishPreviewRequest struct {
	UseLocal bool   `json:"use_local"`
	Date     string `json:"date,omitempty" example:"2025-06-05"`
	Time     string `json:"time,omitempty" example:"07:15"`
	Zone     string `json:"zone,omitempty" example:"America/New_York"`
	// Platform defaults to the card's first recommended channel.
	Platform string `json:"platform,omitempty" example:"Instagram"`
}

// PublishPreviewResponse is the caption and schedule that would be posted.
type PublishPreviewResponse struct {
	CardID     string              `json:"card_id"`
	Caption    string              `json:"caption"`
	Platform   ideation.Channel    `json:"platform"`
	Date       string              `json:"date"`
	Conversion schedule.Conversion `json:"conversion"`
	Label      string              `json:"label"`
}

// CategoryOption is a category with its display colour.
type CategoryOption struct {
	Name  events.Category `json:"name"`
	Color string          `json:"color"`
}

// OptionsResponse holds everything the input form needs.
type OptionsResponse struct {
	Categories      []CategoryOption   `json:"categories"`
	Channels        []ideation.Channel `json:"channels"`
	DefaultChannels []ideation.Channel `json:"default_channels"`
	Goals           []string           `json:"goals"`
	Zones           []string           `json:"zones"`
	DefaultCountry  string             `json:"default_country"`
	ReferenceZone   string             `json:"reference_zone"`
	DefaultClock    string             `json:"default_clock"`
	Model           string             `json:"model"`
	Creativity      float64            `json:"creativity"`
	MinCards        int                `json:"min_cards"`
	MaxCards        int                `json:"max_cards"`
	DefaultCards    int                `json:"default_cards"`
	MinYear         int                `json:"min_year"`
	MaxYear         int                `json:"max_year"`
	DefaultYear     int                `json:"default_year"`
	Formats         []calendar.Format  `json:"formats"`
}

// CategoryOptions lists every category in display order.
func CategoryOptions() []CategoryOption {
	cats := events.Categories()
	out := make([]CategoryOption, len(cats))
	for i, c := range cats {
		out[i] = CategoryOption{Name: c, Color: c.Color()}
	}
	return out
}

// CalendarRequest selects the country of an annual calendar.
type CalendarRequest struct {
	Country string `json:"country,omitempty" example:"대한민국"`
}

// CalendarResponse is one generated year.
type CalendarResponse struct {
	Year        int            `json:"year"`
	Country     string         `json:"country"`
	Label       string         `json:"label"`
	Injected    int            `json:"injected"`
	Rows        []calendar.Row `json:"rows"`
	GeneratedAt time.Time      `json:"generated_at"`
	Cached      bool           `json:"cached"`
}

// NewCalendarResponse renders a cached year entry.
func NewCalendarResponse(entry session.YearEntry, cached bool) CalendarResponse {
	return CalendarResponse{
		Year:        entry.Calendar.Year,
		Country:     entry.Calendar.Country,
		Label:       entry.Calendar.Label(),
		Injected:    entry.Calendar.Injected,
		Rows:        entry.Rows,
		GeneratedAt: entry.Calendar.GeneratedAt,
		Cached:      cached,
	}
}
