package events

import (
	"fmt"
	"time"
)

// Observance is a fixed-date international day.
type Observance struct {
	Day  int
	Name string
}

var almanac = map[time.Month][]Observance{
	time.January: {
		{4, "세계 점자Day"}, {11, "국제 감사의 날"}, {24, "국제 교육의 날"}, {28, "데이터 프라이버시의 날"},
	},
	time.February: {
		{2, "세계 습지의 날"}, {9, "세계 피자Day(기믹)"}, {13, "세계 라디오의 날"}, {14, "밸런타인Day"}, {20, "세계 사회정의의 날"},
	},
	time.March: {
		{3, "세계 야생동물의 날"}, {8, "국제 여성의 날"}, {14, "파이Day"}, {20, "세계 행복의 날"},
		{21, "세계 산림의 날"}, {22, "세계 물의 날"}, {23, "세계 기상의 날"},
	},
	time.April: {
		{7, "세계 보건의 날"}, {22, "지구의 날"}, {23, "세계 책의 날"}, {26, "세계 지식재산권의 날"}, {29, "세계 춤의 날"},
	},
	time.May: {
		{3, "세계 언론자유의 날"}, {4, "스타워즈Day(기믹)"}, {8, "세계 적십자·적신월의 날"},
		{17, "세계 전기통신의 날"}, {20, "세계 벌의 날"}, {22, "국제 생물다양성의 날"}, {25, "타월Day(기믹)"},
	},
	time.June: {
		{3, "세계 자전거의 날"}, {5, "세계 환경의 날"}, {8, "세계 해양의 날"}, {14, "세계 헌혈자의 날"},
		{21, "세계 요가의 날"}, {21, "세계 음악의 날"}, {27, "세계 중소기업의 날"},
	},
	time.July: {
		{7, "세계 초콜릿Day(기믹)"}, {11, "세계 인구의 날"}, {17, "세계 이모지의 날"}, {29, "국제 호랑이의 날"},
	},
	time.August: {
		{8, "세계 고양이의 날"}, {12, "국제 청년의 날"}, {19, "세계 인도주의의 날"}, {26, "국제 개의 날"},
	},
	time.September: {
		{5, "국제 자선의 날"}, {8, "국제 문해의 날"}, {16, "세계 오존층 보호의 날"},
		{21, "세계 평화의 날"}, {27, "세계 관광의 날"}, {29, "세계 심장의 날"},
	},
	time.October: {
		{1, "국제 커피의 날"}, {4, "세계 동물의 날"}, {10, "세계 정신건강의 날"},
		{16, "세계 식량의 날"}, {20, "세계 나무늘보의 날"}, {31, "할로윈(기믹)"},
	},
	time.November: {
		{13, "세계 친절의 날"}, {14, "세계 당뇨병의 날"}, {20, "세계 아동의 날"}, {21, "세계 텔레비전의 날"},
	},
	time.December: {
		{3, "세계 장애인의 날"}, {5, "세계 자원봉사의 날"}, {11, "세계 산의 날"}, {14, "원숭이Day(기믹)"},
	},
}

// Almanac returns the observances of month in day order.
func Almanac(month time.Month) []Observance {
	src := almanac[month]
	out := make([]Observance, len(src))
	copy(out, src)
	return out
}

// Almanac-injected records carry fixed confidences.
const (
	almanacConfidence         = 0.9
	almanacSpecificConfidence = 0.95
)

// Date returns the observance day in the given year.
func (o Observance) Date(year int, month time.Month) time.Time {
	return time.Date(year, month, o.Day, 0, 0, 0, 0, time.UTC)
}

// Record converts the observance into a WorldDays event.
func (o Observance) Record(year int, month time.Month, note string) Record {
	return Record{
		Category:           WorldDays,
		Name:               o.Name,
		Date:               o.Date(year, month).Format("2006-01-02"),
		Note:               note,
		Confidence:         almanacConfidence,
		SpecificConfidence: almanacSpecificConfidence,
		Sources:            []string{fmt.Sprintf("WorldDays %s", o.Name)},
	}
}
