package ideation

import "strings"

// DefaultCountry is the market assumed when none is given.
const DefaultCountry = "대한민국"

// Language names a caption language in Korean (for prompts and labels) and English.
type Language struct {
	Korean  string `json:"korean"`
	English string `json:"english"`
}

var (
	english    = Language{"영어", "English"}
	french     = Language{"프랑스어", "French"}
	german     = Language{"독일어", "German"}
	spanish    = Language{"스페인어", "Spanish"}
	korean     = Language{"한국어", "Korean"}
	localLang  = Language{"현지어", "Local language"}
	chineseTrd = Language{"중국어(번체)", "Chinese Traditional"}
)

var languageByCountry = map[string]Language{
	"United States":     english,
	"USA":               english,
	"US":                english,
	"United Kingdom":    english,
	"UK":                english,
	"Canada":            english,
	"Australia":         english,
	"New Zealand":       english,
	"France":            french,
	"Belgium":           french,
	"Switzerland":       french,
	"Germany":           german,
	"Austria":           german,
	"Spain":             spanish,
	"Mexico":            spanish,
	"Argentina":         spanish,
	"Japan":             {"일본어", "Japanese"},
	"China":             {"중국어(간체)", "Chinese Simplified"},
	"Taiwan":            chineseTrd,
	"Hong Kong":         chineseTrd,
	"Korea":             korean,
	"South Korea":       korean,
	"Republic of Korea": korean,
	"KR":                korean,
	"대한민국":              korean,
	"Italy":             {"이탈리아어", "Italian"},
	"Brazil":            {"포르투갈어(브라질)", "Portuguese (Brazil)"},
}

// DetectLanguage returns the caption language for a country name.
func DetectLanguage(country string) Language {
	if lang, ok := languageByCountry[strings.TrimSpace(country)]; ok {
		return lang
	}
	return localLang
}

// Bilingual reports whether captions need a local-language version next to Korean.
func Bilingual(country string) bool {
	return DetectLanguage(country) != korean
}
