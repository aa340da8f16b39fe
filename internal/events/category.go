// Package events models local marketing events and the rules that turn raw
// model output into a bounded, per-category event context.
package events

// Category classifies an event. The declaration order is the display order.
type Category string

const (
	Commercial    Category = "Commercial"
	Cultural      Category = "Cultural"
	PublicHoliday Category = "PublicHoliday"
	WeatherEnv    Category = "WeatherEnv"
	School        Category = "School"
	Religion      Category = "Religion"
	MediaEnt      Category = "MediaEnt"
	Sports        Category = "Sports"
	Gimmick       Category = "Gimmick"
	WorldDays     Category = "WorldDays"
)

var categoryOrder = [...]Category{
	Commercial, Cultural, PublicHoliday, WeatherEnv, School,
	Religion, MediaEnt, Sports, Gimmick, WorldDays,
}

var categoryColors = map[Category]string{
	Commercial:    "#FED7AA",
	Cultural:      "#FBCFE8",
	PublicHoliday: "#A7F3D0",
	WeatherEnv:    "#BAE6FD",
	School:        "#E9D5FF",
	Religion:      "#FEF3C7",
	MediaEnt:      "#C7D2FE",
	Sports:        "#FDE68A",
	Gimmick:       "#FFE4E6",
	WorldDays:     "#E2E8F0",
}

const defaultColor = "#E5E7EB"

// Categories returns the known categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder[:])
	return out
}

// ParseCategory matches s exactly against the known categories.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color is the pill colour used by the UI.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return defaultColor
}

func (c Category) String() string { return string(c) }
