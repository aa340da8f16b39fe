package ideation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

const cardSchema = `{
  "id": "string",
  "title": "string",
  "image_concept": "string (구체적인 이미지 컨셉, 텍스트만)",
  "copy_draft": "string (구형 호환, 없으면 생략)",
  "copy_draft_ko": "string (한국어 캡션)",
  "copy_draft_local": "string (현지어 캡션, 한국 대상이면 생략 가능)",
  "recommended_channels": ["Instagram","Facebook","X(Twitter)"],
  "fit_goals": ["..."],
  "targeted_events": [{"category":"string","name":"string","date":"YYYY-MM-DD or null","note":"string"}],
  "rationale": "string (이벤트 적합 이유, 구체 요소 포함)",
  "expected_impact": "string",
  "specific_entities": ["구체명1","구체명2"],
  "specificity_confidence": 0.0,
  "confidence": 0.0
}`

const isoDate = "2006-01-02"

func researchPrompt(country string, target time.Time, windowDays int) string {
	start := target.AddDate(0, 0, -windowDays).Format(isoDate)
	end := target.AddDate(0, 0, windowDays).Format(isoDate)

	var b strings.Builder
	fmt.Fprintf(&b, "당신은 %s 시장을 담당하는 소셜 마케팅 리서처다.\n", country)
	fmt.Fprintf(&b, "%s에서 %s~%s (±%d일) 기간에 소셜 포스팅에 활용할 수 있는 로컬 이벤트를 찾아라.\n", country, start, end, windowDays)
	fmt.Fprintf(&b, "카테고리: %s. 확신이 낮은 카테고리는 생략해도 된다.\n\n", events.CategoryList())
	b.WriteString("반드시 확인할 것:\n")
	b.WriteString("- 국가 주요 명절과 공휴일(대체공휴일 포함)\n")
	b.WriteString("- WorldDays (예: 6/5 세계 환경의 날, 8/8 세계 고양이의 날, 4/23 세계 책의 날)\n")
	b.WriteString("- Sports: 인기 프로리그, 국가대표 및 국제대회, e스포츠 메이저\n\n")
	b.WriteString("구체성 규칙:\n")
	b.WriteString("- 리그와 대표팀 경기는 매치업, 라운드, 장소까지\n")
	b.WriteString("- 명절과 공휴일은 연휴 시작~끝\n")
	b.WriteString("- 콘서트와 내한은 아티스트와 장소\n\n")
	b.WriteString("JSON으로만 답하라. 카테고리별 배열 객체 또는 events 배열. 각 이벤트 스키마:\n")
	b.WriteString(events.RecordSchema)
	b.WriteString("\n")
	return b.String()
}

type generationPromptInput struct {
	Target    time.Time
	Country   string
	Brand     string
	Channels  []Channel
	Goals     []string
	Events    events.Context
	Requested int
}

func generationPrompt(in generationPromptInput) string {
	lang := DetectLanguage(in.Country)

	var b strings.Builder
	fmt.Fprintf(&b, "당신은 %s 시장의 소셜 마케팅 전문가다.\n", in.Country)
	b.WriteString("아래 브랜드/제품(또는 카테고리)의 USP, 페인포인트, 대표 사용 장면을 짧게 정리한 뒤\n")
	fmt.Fprintf(&b, "로컬 이벤트와 전략적으로 연결한 아이디어 카드를 정확히 %d개 만들어라.\n", in.Requested)
	b.WriteString("- 이벤트 인사이트와 제품 USP를 설득력 있게 연결할 것\n")
	b.WriteString("- 이미지는 텍스트 컨셉으로만 (구도, 피사체, 소품, 조명, 색감)\n")
	b.WriteString("- 캡션은 실제 소셜 톤 (멘션, 해시태그 허용)\n")
	if Bilingual(in.Country) {
		fmt.Fprintf(&b, "- 캡션은 이중언어: copy_draft_ko(한국어)와 copy_draft_local(%s)\n", lang.Korean)
	} else {
		b.WriteString("- 한국 대상이므로 copy_draft_ko만 작성\n")
	}

	b.WriteString("\n입력:\n")
	fmt.Fprintf(&b, "- 대상일: %s\n", in.Target.Format(isoDate))
	fmt.Fprintf(&b, "- 국가: %s\n", in.Country)
	fmt.Fprintf(&b, "- 브랜드/제품/카테고리: %s\n", orNA(in.Brand))
	fmt.Fprintf(&b, "- 채널 후보: %s\n", orNA(strings.Join(channelNames(in.Channels), ", ")))
	fmt.Fprintf(&b, "- 목표: %s\n", orNA(strings.Join(in.Goals, ", ")))

	b.WriteString("\n로컬 이벤트 컨텍스트:\n")
	b.WriteString(contextJSON(in.Events))
	fmt.Fprintf(&b, "\n\nJSON 배열로만 답하라 (정확히 %d개). 각 카드 스키마:\n", in.Requested)
	b.WriteString(cardSchema)
	b.WriteString("\n")
	return b.String()
}

func refinePrompt(country string, base Card, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "당신은 %s 시장의 소셜 카피/아이디어 디렉터다.\n", country)
	b.WriteString("아래 기존 카드를 사용자 지시에 맞게 조금만 고쳐라. 이벤트 타깃팅은 유지하고\n")
	b.WriteString("스키마의 모든 필드를 채워라. JSON 오브젝트 하나만 반환한다.\n\n")
	b.WriteString("[지시]\n")
	b.WriteString(instruction)
	b.WriteString("\n\n[기존 카드(JSON)]\n")
	raw, _ := json.MarshalIndent(base, "", "  ")
	b.Write(raw)
	b.WriteString("\n\n[반환 스키마]\n")
	b.WriteString(cardSchema)
	b.WriteString("\n")
	return b.String()
}

// contextJSON renders the context as a category-keyed object whose keys
// follow display order.
func contextJSON(ctx events.Context) string {
	groups := ctx.Groups()
	if len(groups) == 0 {
		return "{}"
	}

	var b strings.Builder
	b.WriteString("{\n")
	for i, g := range groups {
		raw, err := json.MarshalIndent(g.Events, "  ", "  ")
		if err != nil {
			return "{}"
		}
		fmt.Fprintf(&b, "  %q: %s", string(g.Category), raw)
		if i < len(groups)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
