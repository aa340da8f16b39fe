package events

import (
	"sort"
	"time"
)

// FlattenAny turns an annual payload into a flat record list. It accepts an
// {"events": [...]} object, a category-keyed object or a plain array, after
// unwrapping single-key envelopes. Records without a category are tagged
// WorldDays, or the key they were listed under. Unknown categories are kept.
func FlattenAny(raw any) []Record {
	if obj, ok := raw.(map[string]any); ok && len(obj) == 1 {
		for k, v := range obj {
			if _, wrapped := wrapperKeys[k]; wrapped && k != "events" {
				raw = v
			}
		}
	}

	var out []Record
	switch v := raw.(type) {
	case map[string]any:
		if list, ok := v["events"].([]any); ok {
			return appendObjects(out, list, WorldDays)
		}
		// map iteration is unordered; walk categories first so output is stable
		for _, cat := range categoryOrder {
			if list, ok := v[string(cat)].([]any); ok {
				out = appendObjects(out, list, cat)
			}
		}
		for _, k := range sortedKeys(v) {
			if Category(k).Valid() {
				continue
			}
			if list, ok := v[k].([]any); ok {
				out = appendObjects(out, list, Category(k))
			}
		}
	case []any:
		out = appendObjects(out, v, WorldDays)
	}
	return out
}

func appendObjects(out []Record, list []any, fallback Category) []Record {
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, FromMap(m, fallback))
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortChronological orders records by date in place. Records with a missing
// or unparsable date go last, keyed to December 31 of year. The sort is
// stable.
func SortChronological(records []Record, year int) {
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	type key struct {
		undated bool
		day     time.Time
	}
	keyOf := func(r Record) key {
		if d, ok := r.Day(); ok {
			return key{day: d}
		}
		return key{undated: true, day: yearEnd}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := keyOf(records[i]), keyOf(records[j])
		if a.undated != b.undated {
			return !a.undated
		}
		return a.day.Before(b.day)
	})
}
