package events

// wrapperKeys are single-key envelopes models like to put around the payload.
var wrapperKeys = map[string]struct{}{
	"data":        {},
	"result":      {},
	"payload":     {},
	"LocalEvents": {},
	"events":      {},
}

// Normalize coerces a decoded model payload into a Context. Rules, first
// match wins:
//
//  1. a single-key wrapper object is unwrapped one level
//  2. an object keyed by categories with list values keeps those lists,
//     dropping non-object entries
//  3. an object with an "events" list is treated as a flat list
//  4. a flat list is grouped by each record's category field
//  5. anything else is empty
//
// Unknown categories are dropped. Normalize never fails.
func Normalize(raw any) Context {
	if obj, ok := raw.(map[string]any); ok && len(obj) == 1 {
		for k, v := range obj {
			if _, wrapped := wrapperKeys[k]; wrapped {
				raw = v
			}
		}
	}

	if obj, ok := raw.(map[string]any); ok {
		if out := fromCategoryObject(obj); len(out) > 0 {
			return out
		}
		if list, ok := obj["events"].([]any); ok {
			raw = list
		}
	}

	if list, ok := raw.([]any); ok {
		return fromFlatList(list)
	}

	return Context{}
}

func fromCategoryObject(obj map[string]any) Context {
	out := Context{}
	for k, v := range obj {
		cat, ok := ParseCategory(k)
		if !ok {
			continue
		}
		list, ok := v.([]any)
		if !ok {
			continue
		}
		recs := make([]Record, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			r := FromMap(m, cat)
			r.Category = cat
			recs = append(recs, r)
		}
		out[cat] = recs
	}
	return out
}

func fromFlatList(list []any) Context {
	out := Context{}
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		r := FromMap(m, "")
		if !r.Category.Valid() {
			continue
		}
		out[r.Category] = append(out[r.Category], r)
	}
	return out
}
