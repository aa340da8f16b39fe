package events

import "time"

// Research defaults.
const (
	DefaultWindowDays     = 7
	DefaultMaxPerCategory = 3
)

// FilterWindow keeps, per category, the events dated within windowDays of
// target. One dateless event per category is admitted. Events whose date
// does not parse are dropped. Accepting stops at maxPerCategory (0 means no
// cap). Categories left empty are removed.
func FilterWindow(ctx Context, target time.Time, windowDays, maxPerCategory int) Context {
	out := Context{}
	for _, cat := range categoryOrder {
		items := ctx[cat]
		if len(items) == 0 {
			continue
		}

		kept := make([]Record, 0, len(items))
		datelessKept := false
		for _, r := range items {
			if maxPerCategory > 0 && len(kept) >= maxPerCategory {
				break
			}
			if !r.Dated() {
				if !datelessKept {
					kept = append(kept, r)
					datelessKept = true
				}
				continue
			}
			d, ok := r.Day()
			if !ok {
				continue
			}
			if abs(DaysBetween(target, d)) <= windowDays {
				kept = append(kept, r)
			}
		}

		if len(kept) > 0 {
			out[cat] = kept
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
