package events

import "strings"

// RecordSchema is the event shape requested from the model.
const RecordSchema = `{
  "category": "string",
  "name": "string",
  "date": "YYYY-MM-DD or null",
  "note": "관련 이유 1~2줄 (명절은 '연휴 시작~끝' 포함 권장)",
  "confidence": 0.0,
  "specific_confidence": 0.0,
  "sources": ["간단 키워드 또는 URL"]
}`

// CategoryList joins the category names for prompts.
func CategoryList() string {
	names := make([]string, len(categoryOrder))
	for i, c := range categoryOrder {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
