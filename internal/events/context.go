package events

import "strings"

// Context maps each category to its ordered events. Every key is a known
// category; iterate with Groups or Flatten to get display order.
type Context map[Category][]Record

// Group is one category of a context in display order.
type Group struct {
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Events   []Record `json:"events"`
}

// Total counts events across all categories.
func (c Context) Total() int {
	n := 0
	for _, recs := range c {
		n += len(recs)
	}
	return n
}

// Empty reports whether the context holds no events.
func (c Context) Empty() bool {
	return c.Total() == 0
}

// Groups returns the non-empty categories in display order.
func (c Context) Groups() []Group {
	out := make([]Group, 0, len(c))
	for _, cat := range categoryOrder {
		recs := c[cat]
		if len(recs) == 0 {
			continue
		}
		out = append(out, Group{Category: cat, Color: cat.Color(), Events: recs})
	}
	return out
}

// Flatten lists every event in display order, each tagged with its category.
func (c Context) Flatten() []Record {
	out := make([]Record, 0, c.Total())
	for _, cat := range categoryOrder {
		for _, r := range c[cat] {
			r.Category = cat
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds the first event in cat whose name matches, ignoring case.
func (c Context) Lookup(cat Category, name string) (Record, bool) {
	for _, r := range c[cat] {
		if equalFoldName(r.Name, name) {
			return r, true
		}
	}
	return Record{}, false
}

// Keys returns the (name, date) identities already present.
func (c Context) Keys() map[Key]struct{} {
	seen := make(map[Key]struct{}, c.Total())
	for _, recs := range c {
		for _, r := range recs {
			seen[r.Key()] = struct{}{}
		}
	}
	return seen
}

// Clone copies the context so callers can append without aliasing.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for cat, recs := range c {
		cp := make([]Record, len(recs))
		copy(cp, recs)
		out[cat] = cp
	}
	return out
}

func equalFoldName(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}
