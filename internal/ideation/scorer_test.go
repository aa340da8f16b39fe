package ideation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

func scoringContext() events.Context {
	return events.Context{
		events.Sports: {
			{Category: events.Sports, Name: "KBO 올스타전", Confidence: 0.8, SpecificConfidence: 0.6},
			{Category: events.Sports, Name: "e스포츠 결승", Confidence: 0.4, SpecificConfidence: 0.2},
		},
		events.WorldDays: {
			{Category: events.WorldDays, Name: "세계 환경의 날", Confidence: 1.0, SpecificConfidence: 1.0},
		},
	}
}

func TestScore(t *testing.T) {
	ctx := scoringContext()

	tests := []struct {
		name     string
		card     Card
		expected float64
	}{
		{
			name: "single matching event",
			card: Card{
				ImageConcept:          strings.Repeat("가", 300),
				SpecificityConfidence: 0.4,
				TargetedEvents:        []TargetedEvent{{Category: events.Sports, Name: "KBO 올스타전"}},
			},
			expected: 0.82,
		},
		{
			name: "name match ignores case",
			card: Card{
				ImageConcept:   strings.Repeat("a", 300),
				TargetedEvents: []TargetedEvent{{Category: events.Sports, Name: "kbo 올스타전"}},
			},
			expected: 0.82,
		},
		{
			name: "unmatched event contributes zero",
			card: Card{
				SpecificityConfidence: 0.5,
				TargetedEvents: []TargetedEvent{
					{Category: events.Sports, Name: "KBO 올스타전"},
					{Category: events.Sports, Name: "없는 경기"},
				},
			},
			// 0.55*0.4 + 0.30*max(0.3, 0.5)
			expected: 0.37,
		},
		{
			name: "category must match",
			card: Card{
				TargetedEvents: []TargetedEvent{{Category: events.WorldDays, Name: "KBO 올스타전"}},
			},
			expected: 0,
		},
		{
			name:     "no targeted events uses card specificity only",
			card:     Card{SpecificityConfidence: 1, ImageConcept: strings.Repeat("x", 60)},
			expected: 0.4,
		},
		{
			name: "clamped to one",
			card: Card{
				ImageConcept:          strings.Repeat("x", 2000),
				SpecificityConfidence: 1,
				TargetedEvents:        []TargetedEvent{{Category: events.WorldDays, Name: "세계 환경의 날"}},
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(tt.card, ctx), 1e-9)
		})
	}
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	ctx := scoringContext()
	card := Card{
		ImageConcept:          "노을 진 잠실 야구장, 응원봉과 제품 클로즈업",
		SpecificityConfidence: 0.7,
		TargetedEvents: []TargetedEvent{
			{Category: events.Sports, Name: "KBO 올스타전"},
			{Category: events.Sports, Name: "e스포츠 결승"},
		},
	}

	first := Score(card, ctx)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(card, ctx))
	}
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
	assert.Equal(t, first, round4(first))
}

func TestScoreCountsCharactersNotBytes(t *testing.T) {
	ascii := Card{ImageConcept: strings.Repeat("a", 60)}
	hangul := Card{ImageConcept: strings.Repeat("한", 60)}
	assert.Equal(t, Score(ascii, nil), Score(hangul, nil))
	assert.InDelta(t, 0.1, Score(hangul, nil), 1e-9)
}
