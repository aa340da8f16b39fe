package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, ok := ParseDate(s)
	if !ok {
		panic("bad date " + s)
	}
	return d
}

func TestFilterWindow(t *testing.T) {
	target := day("2025-06-05")

	ctx := Context{
		Sports: {
			{Name: "too early", Date: "2025-05-28"},
			{Name: "edge early", Date: "2025-05-29"},
			{Name: "edge late", Date: "2025-06-12"},
			{Name: "too late", Date: "2025-06-13"},
		},
		Cultural: {
			{Name: "dateless 1"},
			{Name: "dateless 2"},
			{Name: "dated", Date: "2025-06-06"},
		},
		Gimmick: {
			{Name: "garbage date", Date: "next week"},
		},
		Commercial: {
			{Name: "a", Date: "2025-06-01"},
			{Name: "b", Date: "2025-06-02"},
			{Name: "c", Date: "2025-06-03"},
			{Name: "d", Date: "2025-06-04"},
		},
	}

	got := FilterWindow(ctx, target, 7, 3)

	assert.Equal(t, []string{"edge early", "edge late"}, names(got[Sports]))
	assert.Equal(t, []string{"dateless 1", "dated"}, names(got[Cultural]))
	assert.Equal(t, []string{"a", "b", "c"}, names(got[Commercial]))
	_, hasGimmick := got[Gimmick]
	assert.False(t, hasGimmick, "category with no survivors is dropped")
}

func TestFilterWindowNoCap(t *testing.T) {
	target := day("2025-01-10")
	var recs []Record
	for i := 1; i <= 9; i++ {
		recs = append(recs, Record{Name: fmt.Sprint(i), Date: fmt.Sprintf("2025-01-%02d", i)})
	}
	got := FilterWindow(Context{School: recs}, target, 30, 0)
	assert.Len(t, got[School], 9)
}

func TestFilterWindowRetentionProperty(t *testing.T) {
	target := day("2025-06-05")
	for offset := -20; offset <= 20; offset++ {
		d := target.AddDate(0, 0, offset).Format("2006-01-02")
		got := FilterWindow(Context{Sports: {{Name: "x", Date: d}}}, target, 7, 3)
		if offset >= -7 && offset <= 7 {
			require.Len(t, got[Sports], 1, "offset %d", offset)
		} else {
			require.Empty(t, got, "offset %d", offset)
		}
	}
}

func TestFilterWindowEmpty(t *testing.T) {
	assert.Empty(t, FilterWindow(nil, day("2025-06-05"), 7, 3))
	assert.Empty(t, FilterWindow(Context{Sports: {}}, day("2025-06-05"), 7, 3))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(day("2025-06-05"), day("2025-06-05")))
	assert.Equal(t, 7, DaysBetween(day("2025-06-05"), day("2025-06-12")))
	assert.Equal(t, -5, DaysBetween(day("2025-03-03"), day("2025-02-26")))
	assert.Equal(t, 366, DaysBetween(day("2024-01-01"), day("2025-01-01")))
}

func names(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}
