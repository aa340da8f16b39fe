package ideation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

var june5 = time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)

func contextOf(n int) events.Context {
	ctx := events.Context{}
	for i := 0; i < n; i++ {
		cat := events.Categories()[i%len(events.Categories())]
		ctx[cat] = append(ctx[cat], events.Record{
			Category: cat,
			Name:     fmt.Sprintf("이벤트 %d", i),
			Date:     "2025-06-05",
		})
	}
	return ctx
}

func TestFallbackCardsCount(t *testing.T) {
	tests := []struct {
		name     string
		events   int
		count    int
		expected int
	}{
		{"fewer events than requested", 2, 6, 2},
		{"more events than requested", 9, 4, 4},
		{"exact", 3, 3, 3},
		{"empty context", 0, 6, 0},
		{"zero requested", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := FallbackCards(FallbackInput{
				Target: june5,
				Brand:  "브랜드",
				Events: contextOf(tt.events),
				Count:  tt.count,
			})
			assert.Len(t, cards, tt.expected)
		})
	}
}

func TestFallbackCardsAreReproducible(t *testing.T) {
	in := FallbackInput{
		Target:   june5,
		Brand:    "아이스티",
		Channels: []Channel{Facebook},
		Goals:    Goals(),
		Events:   contextOf(8),
		Count:    4,
	}

	first := FallbackCards(in)
	second := FallbackCards(in)
	require.Len(t, first, 4)
	assert.Equal(t, first, second)

	names := map[string]bool{}
	for _, c := range first {
		require.Len(t, c.TargetedEvents, 1)
		assert.False(t, names[c.TargetedEvents[0].Name], "sampled without replacement")
		names[c.TargetedEvents[0].Name] = true
	}
}

func TestFallbackCardTemplate(t *testing.T) {
	ctx := events.Context{
		events.WorldDays: {{Category: events.WorldDays, Name: "세계 환경의 날", Date: "2025-06-05", Note: "기념일"}},
	}
	cards := FallbackCards(FallbackInput{
		Target: june5,
		Brand:  "텀블러",
		Goals:  Goals(),
		Events: ctx,
		Count:  3,
	})
	require.Len(t, cards, 1)

	c := cards[0]
	assert.Equal(t, "fb_1", c.ID)
	assert.Equal(t, "[세계 환경의 날] 타깃 아이디어", c.Title)
	assert.Equal(t, "세계 환경의 날 현장과 텀블러 연관 소품/상황을 배치한 합성 컨셉.", c.ImageConcept)
	assert.Contains(t, c.CopyDraftKO, "#로컬이벤트")
	assert.Empty(t, c.CopyDraftLocal)
	assert.Equal(t, DefaultChannels, c.RecommendedChannels)
	assert.Equal(t, Goals()[:2], c.FitGoals)
	assert.Equal(t, []TargetedEvent{{Category: events.WorldDays, Name: "세계 환경의 날", Date: "2025-06-05", Note: "기념일"}}, c.TargetedEvents)
	assert.Equal(t, 0.3, c.SpecificityConfidence)
	assert.Equal(t, 0.5, c.Confidence)
	assert.Equal(t, "±7일 로컬 이벤트 '세계 환경의 날'와 텀블러의 USP 연결.", c.Rationale)

	wide := FallbackCards(FallbackInput{Target: june5, Brand: "텀블러", Events: ctx, Count: 1, WindowDays: 14})
	require.Len(t, wide, 1)
	assert.Equal(t, "±14일 로컬 이벤트 '세계 환경의 날'와 텀블러의 USP 연결.", wide[0].Rationale)
}

func TestFallbackSeed(t *testing.T) {
	// 2025-06-05 is proleptic ordinal 739407.
	assert.Equal(t, int64(739407+3), FallbackSeed(june5, 3))
	assert.Equal(t, FallbackSeed(june5, 3), FallbackSeed(june5.Add(15*time.Hour), 3))
	assert.NotEqual(t, FallbackSeed(june5, 3), FallbackSeed(june5, 4))
}
