package events

import "time"

// Floors enforced by the minimum-fill step.
const (
	MinResearchEvents = 5
	MinEventsPerMonth = 10
	researchFillNote  = "월별 고정 국제 기념일"
	monthlyFillNote   = "고정 국제 기념일(월별 보강)"
)

// EnsureMinimum pads ctx up to floor events with almanac observances of the
// target month that fall within windowDays of target. Existing (name, date)
// pairs are never duplicated. The input is not modified; the second result
// is the number of injected events.
func EnsureMinimum(ctx Context, target time.Time, windowDays, floor int) (Context, int) {
	total := ctx.Total()
	if total >= floor {
		return ctx, 0
	}

	out := ctx.Clone()
	seen := ctx.Keys()
	month := target.Month()
	injected := 0

	for _, obs := range almanac[month] {
		if total+injected >= floor {
			break
		}
		d := obs.Date(target.Year(), month)
		if abs(DaysBetween(target, d)) > windowDays {
			continue
		}
		rec := obs.Record(target.Year(), month, researchFillNote)
		if _, dup := seen[rec.Key()]; dup {
			continue
		}
		out[WorldDays] = append(out[WorldDays], rec)
		seen[rec.Key()] = struct{}{}
		injected++
	}

	if injected == 0 {
		return ctx, 0
	}
	return out, injected
}

// EnsureMonthMinimum pads every month of year to perMonth events from the
// almanac, skipping (name, date) pairs already present. Records are bucketed
// by the month of their parsed date; undated records count toward no month.
// The returned slice holds the originals followed by the injected events.
func EnsureMonthMinimum(records []Record, year, perMonth int) ([]Record, int) {
	var counts [13]int
	seen := make(map[Key]struct{}, len(records))
	for _, r := range records {
		if d, ok := r.Day(); ok {
			counts[d.Month()]++
		}
		seen[r.Key()] = struct{}{}
	}

	out := make([]Record, len(records), len(records)+12*perMonth)
	copy(out, records)
	injected := 0

	for m := time.January; m <= time.December; m++ {
		for _, obs := range almanac[m] {
			if counts[m] >= perMonth {
				break
			}
			rec := obs.Record(year, m, monthlyFillNote)
			if _, dup := seen[rec.Key()]; dup {
				continue
			}
			out = append(out, rec)
			seen[rec.Key()] = struct{}{}
			counts[m]++
			injected++
		}
	}
	return out, injected
}
