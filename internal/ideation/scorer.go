package ideation

import (
	"math"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

var (
	eventConfidenceWeight = 0.55
	specificityWeight     = 0.30
	// image concepts earn up to densityCap, reached at densityRunes characters
	densityCap   = 0.2
	densityRunes = 600.0
)

// Score ranks a card against the event context:
//
//	0.55*avg(event confidence) + 0.30*max(avg(event specificity), card specificity) + density bonus
//
// Each targeted event is matched by category and case-insensitive name;
// unmatched events contribute zeros. The result is clamped to [0,1] and
// rounded to four decimals.
func Score(card Card, ctx events.Context) float64 {
	var confSum, specSum float64
	for _, te := range card.TargetedEvents {
		if r, ok := ctx.Lookup(te.Category, te.Name); ok {
			confSum += r.Confidence
			specSum += r.SpecificConfidence
		}
	}

	var avgConf, avgSpec float64
	if n := len(card.TargetedEvents); n > 0 {
		avgConf = confSum / float64(n)
		avgSpec = specSum / float64(n)
	}

	density := math.Min(densityCap, float64(utf8.RuneCountInString(card.ImageConcept))/densityRunes)
	score := eventConfidenceWeight*avgConf +
		specificityWeight*math.Max(avgSpec, card.SpecificityConfidence) +
		density

	return round4(clip(score, 0, 1))
}

func clip(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
