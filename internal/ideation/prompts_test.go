package ideation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

func TestContextJSONFollowsDisplayOrder(t *testing.T) {
	ctx := events.Context{
		events.Sports:        {{Category: events.Sports, Name: "KBO 올스타전", Date: "2025-06-07"}},
		events.WeatherEnv:    {{Category: events.WeatherEnv, Name: "장마 시작", Date: "2025-06-19"}},
		events.PublicHoliday: {{Category: events.PublicHoliday, Name: "현충일", Date: "2025-06-06"}},
	}

	out := contextJSON(ctx)

	holiday := strings.Index(out, `"PublicHoliday":`)
	weather := strings.Index(out, `"WeatherEnv":`)
	sports := strings.Index(out, `"Sports":`)
	require.True(t, holiday >= 0 && weather >= 0 && sports >= 0, out)
	assert.Less(t, holiday, weather)
	assert.Less(t, weather, sports)

	var decoded map[string][]events.Record
	require.NoError(t, json.Unmarshal([]byte(out), &decoded), out)
	assert.Len(t, decoded, 3)
	assert.Equal(t, "장마 시작", decoded["WeatherEnv"][0].Name)

	assert.Equal(t, "{}", contextJSON(events.Context{}))
}
