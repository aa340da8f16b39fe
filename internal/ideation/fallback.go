package ideation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

// ordinalEpoch is the proleptic Gregorian day number of 1970-01-01,
// counting 0001-01-01 as day 1.
const ordinalEpoch = 719163

// Fallback card defaults for events without scores.
const (
	fallbackConfidence  = 0.5
	fallbackSpecificity = 0.3
	fallbackChannels    = 3
	fallbackGoals       = 2
)

// FallbackInput holds what the deterministic generator needs.
type FallbackInput struct {
	Target   time.Time
	Brand    string
	Channels []Channel
	Goals    []string
	Events   events.Context
	Count    int
	// WindowDays is quoted in the rationale; zero means the default window.
	WindowDays int
}

// FallbackSeed derives the sampling seed from the target date ordinal plus
// the number of candidate events, so equal inputs sample equal events.
func FallbackSeed(target time.Time, eventCount int) int64 {
	day := events.Civil(target).Unix() / 86400
	return day + ordinalEpoch + int64(eventCount)
}

// FallbackCards builds min(Count, events) template cards from a seeded
// sample of the flattened context. It returns nil when the context is empty.
func FallbackCards(in FallbackInput) []Card {
	flat := in.Events.Flatten()
	k := min(in.Count, len(flat))
	if k <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(FallbackSeed(in.Target, len(flat))))
	picks := rng.Perm(len(flat))[:k]

	channels := in.Channels
	if len(channels) == 0 {
		channels = DefaultChannels
	}
	channels = append([]Channel(nil), channels[:min(fallbackChannels, len(channels))]...)
	goals := append([]string{}, in.Goals[:min(fallbackGoals, len(in.Goals))]...)
	window := in.WindowDays
	if window <= 0 {
		window = events.DefaultWindowDays
	}

	cards := make([]Card, 0, k)
	for i, idx := range picks {
		ev := flat[idx]
		spec := ev.SpecificConfidence
		if spec == 0 {
			spec = fallbackSpecificity
		}
		conf := ev.Confidence
		if conf == 0 {
			conf = fallbackConfidence
		}

		cards = append(cards, Card{
			ID:           fmt.Sprintf("fb_%d", i+1),
			Title:        fmt.Sprintf("[%s] 타깃 아이디어", ev.Name),
			ImageConcept: fmt.Sprintf("%s 현장과 %s 연관 소품/상황을 배치한 합성 컨셉.", ev.Name, in.Brand),
			CopyDraftKO:  fmt.Sprintf("%s 현장감을 살린 캡션. %s의 사용 순간을 포착하고 CTA 유도. #로컬이벤트", ev.Name, in.Brand),
			// Each card owns its slices so later edits stay local.
			RecommendedChannels: append([]Channel(nil), channels...),
			FitGoals:            append([]string{}, goals...),
			TargetedEvents: []TargetedEvent{{
				Category: ev.Category,
				Name:     ev.Name,
				Date:     ev.Date,
				Note:     ev.Note,
			}},
			Rationale:             fmt.Sprintf("±%d일 로컬 이벤트 '%s'와 %s의 USP 연결.", window, ev.Name, in.Brand),
			ExpectedImpact:        "로컬 적합성으로 도달/ER 향상.",
			SpecificityConfidence: spec,
			Confidence:            conf,
		})
	}
	return cards
}
