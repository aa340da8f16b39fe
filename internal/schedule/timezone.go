// Package schedule converts publish times between a market's local zone and
// the operator's reference zone. It only affects what is displayed.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	// Zone lookups must not depend on the host having tzdata installed.
	_ "time/tzdata"
)

// DefaultReferenceZone is the operator's home zone.
const DefaultReferenceZone = "Asia/Seoul"

// DefaultPublishClock is the preselected publish time.
const DefaultPublishClock = "07:15"

const clockLayout = "15:04"

var zoneByCountry = map[string]string{
	"대한민국":           "Asia/Seoul",
	"Korea":          "Asia/Seoul",
	"South Korea":    "Asia/Seoul",
	"United States":  "America/New_York",
	"USA":            "America/New_York",
	"US":             "America/New_York",
	"United Kingdom": "Europe/London",
	"UK":             "Europe/London",
	"France":         "Europe/Paris",
	"Germany":        "Europe/Berlin",
	"Spain":          "Europe/Madrid",
	"Japan":          "Asia/Tokyo",
	"China":          "Asia/Shanghai",
	"Taiwan":         "Asia/Taipei",
	"Hong Kong":      "Asia/Hong_Kong",
	"Italy":          "Europe/Rome",
	"Brazil":         "America/Sao_Paulo",
	"Australia":      "Australia/Sydney",
	"Canada":         "America/Toronto",
	"Mexico":         "America/Mexico_City",
}

// ZoneForCountry returns the default publishing zone of a market, UTC when
// the country is unknown.
func ZoneForCountry(country string) string {
	if z, ok := zoneByCountry[strings.TrimSpace(country)]; ok {
		return z
	}
	return "UTC"
}

// ZoneOptions lists every zone ZoneForCountry can return, sorted.
func ZoneOptions() []string {
	set := map[string]struct{}{"UTC": {}}
	for _, z := range zoneByCountry {
		set[z] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for z := range set {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}

// LoadZone resolves an IANA zone name. Empty or unknown names resolve to UTC.
func LoadZone(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// At places the clock on day in loc.
func (c Clock) At(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// Equivalent returns the reference-zone wall clock ("HH:MM") of clock on day
// in zone. Unknown zone names on either side resolve to UTC.
func Equivalent(clock Clock, zone string, day time.Time, reference string) string {
	local := clock.At(day, LoadZone(zone))
	return local.In(LoadZone(reference)).Format(clockLayout)
}

// Conversion describes one local to reference time mapping.
type Conversion struct {
	Zone          string    `json:"zone"`
	LocalTime     string    `json:"local_time"`
	Reference     string    `json:"reference_zone"`
	ReferenceTime string    `json:"reference_time"`
	At            time.Time `json:"at"`
}

// Convert is Equivalent with the resolved zone names and the instant.
func Convert(clock Clock, zone string, day time.Time, reference string) Conversion {
	from := LoadZone(zone)
	to := LoadZone(reference)
	at := clock.At(day, from)
	return Conversion{
		Zone:          from.String(),
		LocalTime:     clock.String(),
		Reference:     to.String(),
		ReferenceTime: at.In(to).Format(clockLayout),
		At:            at.UTC(),
	}
}
