package ideation

import (
	"fmt"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
)

// TargetedEvent links a card to an event of the context.
type TargetedEvent struct {
	Category events.Category `json:"category"`
	Name     string          `json:"name"`
	Date     string          `json:"date,omitempty"`
	Note     string          `json:"note"`
}

// Card is one generated post concept. Confidence is always computed by
// Score and never taken from the model.
type Card struct {
	ID                    string          `json:"id"`
	Title                 string          `json:"title"`
	ImageConcept          string          `json:"image_concept"`
	CopyDraft             string          `json:"copy_draft,omitempty"`
	CopyDraftKO           string          `json:"copy_draft_ko"`
	CopyDraftLocal        string          `json:"copy_draft_local,omitempty"`
	RecommendedChannels   []Channel       `json:"recommended_channels"`
	FitGoals              []string        `json:"fit_goals"`
	TargetedEvents        []TargetedEvent `json:"targeted_events"`
	Rationale             string          `json:"rationale"`
	ExpectedImpact        string          `json:"expected_impact"`
	SpecificEntities      []string        `json:"specific_entities,omitempty"`
	SpecificityConfidence float64         `json:"specificity_confidence"`
	Confidence            float64         `json:"confidence"`
}

// KoreanCaption returns the Korean caption, falling back to the legacy field.
func (c Card) KoreanCaption() string {
	if c.CopyDraftKO != "" {
		return c.CopyDraftKO
	}
	return c.CopyDraft
}

// Caption picks the caption to publish. The local caption wins only when
// requested and present.
func (c Card) Caption(useLocal bool) string {
	if useLocal && c.CopyDraftLocal != "" {
		return c.CopyDraftLocal
	}
	return c.KoreanCaption()
}

// CardFromMap decodes an untyped model object into a Card with explicit
// defaults. Unknown channels are dropped and specificity is clamped.
func CardFromMap(m map[string]any) Card {
	c := Card{
		ID:                    llmjson.String(m["id"]),
		Title:                 llmjson.String(m["title"]),
		ImageConcept:          llmjson.String(m["image_concept"]),
		CopyDraft:             llmjson.String(m["copy_draft"]),
		CopyDraftKO:           llmjson.String(m["copy_draft_ko"]),
		CopyDraftLocal:        llmjson.String(m["copy_draft_local"]),
		RecommendedChannels:   NormalizeChannels(llmjson.Strings(m["recommended_channels"])),
		FitGoals:              llmjson.Strings(m["fit_goals"]),
		Rationale:             llmjson.String(m["rationale"]),
		ExpectedImpact:        llmjson.String(m["expected_impact"]),
		SpecificEntities:      llmjson.Strings(m["specific_entities"]),
		SpecificityConfidence: llmjson.Unit(m["specificity_confidence"]),
	}
	if c.FitGoals == nil {
		c.FitGoals = []string{}
	}

	targeted := llmjson.Objects(m["targeted_events"])
	c.TargetedEvents = make([]TargetedEvent, 0, len(targeted))
	for _, t := range targeted {
		c.TargetedEvents = append(c.TargetedEvents, TargetedEvent{
			Category: events.Category(llmjson.String(t["category"])),
			Name:     llmjson.String(t["name"]),
			Date:     llmjson.String(t["date"]),
			Note:     llmjson.String(t["note"]),
		})
	}
	return c
}

// finalize backfills the Korean caption and recomputes confidence.
func finalize(c Card, ctx events.Context) Card {
	if c.CopyDraftKO == "" && c.CopyDraft != "" {
		c.CopyDraftKO = c.CopyDraft
	}
	c.SpecificityConfidence = llmjson.Clamp01(c.SpecificityConfidence)
	c.Confidence = Score(c, ctx)
	return c
}

// assignIDs gives every card a batch-unique id. Missing or repeated ids
// become card_<n> with n the 1-based position.
func assignIDs(cards []Card) {
	seen := make(map[string]bool, len(cards))
	for i := range cards {
		id := cards[i].ID
		if id == "" || seen[id] {
			id = fmt.Sprintf("card_%d", i+1)
			for k := 2; seen[id]; k++ {
				id = fmt.Sprintf("card_%d_%d", i+1, k)
			}
		}
		seen[id] = true
		cards[i].ID = id
	}
}
