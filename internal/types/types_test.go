package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/session"
)

var now = time.Date(2025, 6, 5, 22, 30, 0, 0, time.UTC)

func TestIdeasRequestBatchInput(t *testing.T) {
	zero := 0.0

	tests := []struct {
		name     string
		req      IdeasRequest
		target   time.Time
		country  string
		channels []ideation.Channel
		temp     float64
	}{
		{
			name:     "defaults",
			req:      IdeasRequest{Brand: "b"},
			target:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			country:  "대한민국",
			channels: []ideation.Channel{ideation.Instagram, ideation.XTwitter},
			temp:     0.6,
		},
		{
			name:     "explicit values",
			req:      IdeasRequest{Brand: "b", TargetDate: "2025-12-24", Country: "미국", Channels: []string{"twitter", "facebook", "tiktok"}, Creativity: &zero},
			target:   time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC),
			country:  "미국",
			channels: []ideation.Channel{ideation.XTwitter, ideation.Facebook},
			temp:     0,
		},
		{
			name:     "empty channel list stays empty",
			req:      IdeasRequest{Brand: "b", Channels: []string{}},
			target:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			country:  "대한민국",
			channels: []ideation.Channel{},
			temp:     0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := tt.req.BatchInput("대한민국", 0.6, now)
			require.NoError(t, err)
			assert.True(t, tt.target.Equal(in.Target))
			assert.Equal(t, tt.country, in.Country)
			assert.Equal(t, tt.channels, in.Channels)
			assert.InDelta(t, tt.temp, in.Temperature, 1e-9)
		})
	}
}

func TestIdeasRequestBadDate(t *testing.T) {
	_, err := IdeasRequest{Brand: "b", TargetDate: "06/05/2025"}.BatchInput("대한민국", 0.6, now)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.CategoryValidation))
	assert.Equal(t, MsgBadDate, apperrors.UserMessage(err))
}

func TestGroupsApplyWarning(t *testing.T) {
	ctx := events.Context{
		events.Sports:    {{Category: events.Sports, Name: "경기", Note: "결승", Confidence: 0.4}},
		events.WorldDays: {{Category: events.WorldDays, Name: "환경의 날", Note: "6/5", Confidence: 0.9}},
	}

	groups := Groups(ctx)
	require.Len(t, groups, 2)
	assert.Equal(t, events.Sports, groups[0].Category)
	assert.Equal(t, events.Sports.Color(), groups[0].Color)

	low := groups[0].Events[0]
	assert.True(t, low.LowConfidence)
	assert.Contains(t, low.DisplayNote, "(주의)")
	assert.Equal(t, "결승", low.Note)

	high := groups[1].Events[0]
	assert.False(t, high.LowConfidence)
	assert.Equal(t, "6/5", high.DisplayNote)

	raw, err := json.Marshal(low)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name":"경기"`, "record fields are inlined")
}

func TestNewOperationView(t *testing.T) {
	v := NewOperationView(session.Operation{Status: session.StatusIdle})
	assert.Nil(t, v.StartedAt)
	assert.Nil(t, v.FinishedAt)

	v = NewOperationView(session.Operation{Kind: session.OpIdeas, Status: session.StatusRunning, StartedAt: now})
	require.NotNil(t, v.StartedAt)
	assert.True(t, now.Equal(*v.StartedAt))
	assert.Nil(t, v.FinishedAt)
}

func TestCategoryOptions(t *testing.T) {
	opts := CategoryOptions()
	require.Len(t, opts, len(events.Categories()))
	assert.Equal(t, events.Categories()[0], opts[0].Name)
	for _, o := range opts {
		assert.NotEmpty(t, o.Color)
	}
}
