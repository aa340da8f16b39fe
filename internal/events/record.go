package events

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
)

// LowConfidenceThreshold marks events the user should double check.
const LowConfidenceThreshold = 0.5

const lowConfidenceWarning = " (주의) 해당 이벤트는 연관성이 낮을 수 있습니다. 재확인을 해주세요."

// Record is one event. Identity for deduplication is (Name, Date).
type Record struct {
	Category           Category `json:"category"`
	Name               string   `json:"name"`
	Date               string   `json:"date,omitempty"`
	Note               string   `json:"note"`
	Confidence         float64  `json:"confidence"`
	SpecificConfidence float64  `json:"specific_confidence"`
	Sources            []string `json:"sources,omitempty"`
}

// Key is the deduplication identity of a record.
type Key struct {
	Name string
	Date string
}

// Key returns the (name, date) identity.
func (r Record) Key() Key { return Key{Name: r.Name, Date: r.Date} }

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDate parses the ISO date forms a model is likely to emit and returns
// the calendar day at UTC midnight.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Civil(t), true
		}
	}
	return time.Time{}, false
}

// Civil truncates t to its calendar day at UTC midnight.
func Civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Civil(b).Sub(Civil(a)).Hours() / 24)
}

// Day parses the record date.
func (r Record) Day() (time.Time, bool) {
	return ParseDate(r.Date)
}

// Dated reports whether the record carries a date string at all.
func (r Record) Dated() bool {
	return strings.TrimSpace(r.Date) != ""
}

// LowConfidence reports whether the event relevance is doubtful.
func (r Record) LowConfidence() bool {
	return r.Confidence < LowConfidenceThreshold
}

// DisplayNote is the note with a warning appended for low-confidence events.
func (r Record) DisplayNote() string {
	if r.LowConfidence() {
		return r.Note + lowConfidenceWarning
	}
	return r.Note
}

// FromMap builds a record from an untyped JSON object. Missing fields take
// zero values and confidences are clamped to [0,1]. fallback is used when the
// object has no category of its own.
func FromMap(m map[string]any, fallback Category) Record {
	r := Record{
		Category:           fallback,
		Name:               llmjson.String(m["name"]),
		Date:               llmjson.String(m["date"]),
		Note:               llmjson.String(m["note"]),
		Confidence:         llmjson.Unit(m["confidence"]),
		SpecificConfidence: llmjson.Unit(m["specific_confidence"]),
		Sources:            llmjson.Strings(m["sources"]),
	}
	if c := llmjson.String(m["category"]); c != "" {
		r.Category = Category(c)
	}
	return r
}
