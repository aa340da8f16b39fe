package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/config"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/monitoring"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/session"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/types"
)

type reply struct {
	text string
	err  error
}

// fakeModel answers by recognizing which prompt it received.
type fakeModel struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   map[string]int
	temps   map[string][]float64
	state   string
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		replies: map[string]reply{
			"research": {text: researchReply},
			"generate": {text: generateReply},
			"refine":   {text: refineReply},
			"annual":   {text: annualReply},
		},
		calls: map[string]int{},
		temps: map[string][]float64{},
	}
}

func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "연간 마케팅 캘린더"):
		return "annual"
	case strings.Contains(prompt, "리서처"):
		return "research"
	case strings.Contains(prompt, "디렉터"):
		return "refine"
	}
	return "generate"
}

func (m *fakeModel) Generate(_ context.Context, prompt string, params llmjson.Params) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kind := promptKind(prompt)
	m.calls[kind]++
	m.temps[kind] = append(m.temps[kind], params.Temperature)
	r := m.replies[kind]
	return r.text, r.err
}

func (m *fakeModel) set(kind string, r reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[kind] = r
}

func (m *fakeModel) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *fakeModel) temperatures(kind string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.temps[kind]...)
}

func (m *fakeModel) Stats() map[string]interface{} {
	state := m.state
	if state == "" {
		state = "closed"
	}
	return map[string]interface{}{"state": state, "failures": 0}
}

const researchReply = `{
  "WorldDays": [
    {"name": "세계 환경의 날", "date": "2025-06-05", "confidence": 0.9, "specific_confidence": 0.8, "sources": ["UN"]}
  ],
  "Sports": [
    {"name": "KBO 올스타전", "date": "2025-06-07", "confidence": 0.7, "specific_confidence": 0.6}
  ]
}`

const generateReply = `[
  {"id": "c1", "title": "환경의 날 텀블러", "image_concept": "재활용 소재 위 텀블러",
   "copy_draft_ko": "오늘은 환경의 날", "copy_draft_local": "Happy Environment Day",
   "recommended_channels": ["X(Twitter)"], "fit_goals": ["제품 프로모션"],
   "targeted_events": [{"category": "WorldDays", "name": "세계 환경의 날", "date": "2025-06-05"}],
   "specificity_confidence": 0.9},
  {"id": "c2", "title": "올스타 응원", "image_concept": "야구장",
   "copy_draft_ko": "올스타 응원해요",
   "targeted_events": [{"category": "Sports", "name": "KBO 올스타전", "date": "2025-06-07"}],
   "specificity_confidence": 0.5}
]`

const refineReply = `{"title": "유머 텀블러", "image_concept": "웃는 텀블러", "copy_draft_ko": "ㅋㅋ 환경의 날 #텀블러",
  "targeted_events": [{"category": "WorldDays", "name": "세계 환경의 날", "date": "2025-06-05"}]}`

const annualReply = `[
  {"category": "Cultural", "name": "설날", "date": "2025-01-29", "confidence": 0.9},
  {"category": "Commercial", "name": "블랙프라이데이", "date": "2025-11-28"}
]`

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Normalize()
	return cfg
}

func newTestApp(t *testing.T, model *fakeModel) (*App, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newApp(testConfig(), model, monitoring.NopLogger())
	app.now = func() time.Time { return time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC) }

	r, err := app.router()
	require.NoError(t, err)
	return app, r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func generateIdeas(t *testing.T, r http.Handler) types.IdeasResponse {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/ideas", types.IdeasRequest{
		Brand:      "텀블러",
		TargetDate: "2025-06-05",
		Count:      2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[types.IdeasResponse](t, w)
}

func TestHealthEndpoint(t *testing.T) {
	model := newFakeModel()
	_, r := newTestApp(t, model)

	tests := []struct {
		name           string
		method         string
		state          string
		expectedStatus int
		expectedState  string
	}{
		{name: "GET /health returns ok", method: http.MethodGet, expectedStatus: http.StatusOK, expectedState: "ok"},
		{name: "open breaker is degraded", method: http.MethodGet, state: "open", expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
		{name: "POST /health is not routed", method: http.MethodPost, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model.state = tt.state
			w := doJSON(r, tt.method, "/health", nil)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedState != "" {
				body := decode[map[string]any](t, w)
				assert.Equal(t, tt.expectedState, body["status"])
				assert.Contains(t, body, "metrics")
				assert.Contains(t, body, "rate_limiter")
			}
		})
	}
}

func TestOptionsEndpoint(t *testing.T) {
	_, r := newTestApp(t, newFakeModel())

	w := doJSON(r, http.MethodGet, "/api/options", nil)
	require.Equal(t, http.StatusOK, w.Code)

	opts := decode[types.OptionsResponse](t, w)
	assert.Equal(t, "대한민국", opts.DefaultCountry)
	assert.Equal(t, "Asia/Seoul", opts.ReferenceZone)
	assert.Equal(t, "07:15", opts.DefaultClock)
	assert.Equal(t, ideation.DefaultChannels, opts.DefaultChannels)
	assert.Len(t, opts.Formats, 3)
	assert.Equal(t, 2025, opts.DefaultYear)
	assert.LessOrEqual(t, opts.MinYear, opts.DefaultYear)
	assert.GreaterOrEqual(t, opts.MaxYear, opts.DefaultYear)
	assert.NotEmpty(t, opts.Categories)
	assert.NotEmpty(t, opts.Zones)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreativityIsPassedThrough(t *testing.T) {
	model := newFakeModel()
	_, r := newTestApp(t, model)

	zero := 0.0
	w := doJSON(r, http.MethodPost, "/api/ideas", types.IdeasRequest{
		Brand:      "텀블러",
		TargetDate: "2025-06-05",
		Count:      2,
		Creativity: &zero,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []float64{0}, model.temperatures("generate"))

	s := decode[types.SessionResponse](t, doJSON(r, http.MethodGet, "/api/session", nil))
	require.NotNil(t, s.Snapshot)
	assert.Equal(t, 0.0, s.Snapshot.Temperature)

	w = doJSON(r, http.MethodPost, "/api/cards/c1/refine", types.RefineRequest{Instruction: "더 짧게"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []float64{0}, model.temperatures("refine"), "refine reuses the batch creativity")

	generateIdeas(t, r)
	assert.Equal(t, []float64{0, ideation.DefaultCreative}, model.temperatures("generate"), "omitted creativity uses the configured default")
}

func TestIdeasFlow(t *testing.T) {
	model := newFakeModel()
	app, r := newTestApp(t, model)

	ideas := generateIdeas(t, r)
	assert.NotEmpty(t, ideas.BatchID)
	assert.Equal(t, "✅ 아이디어 2개 생성 완료", ideas.Label)
	require.Len(t, ideas.Cards, 2)
	assert.False(t, ideas.Fallback)
	assert.Empty(t, ideas.Warning)
	assert.NotEmpty(t, ideas.Groups)

	t.Run("session holds the batch", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/session", nil)
		require.Equal(t, http.StatusOK, w.Code)

		s := decode[types.SessionResponse](t, w)
		assert.Equal(t, session.StatusComplete, s.Operation.Status)
		assert.Equal(t, 100, s.Operation.Progress)
		assert.Empty(t, s.LastError)
		require.NotNil(t, s.Snapshot)
		assert.Equal(t, "텀블러", s.Snapshot.Brand)
		assert.Equal(t, ideas.BatchID, s.Snapshot.BatchID)
		assert.Equal(t, "대한민국", s.Snapshot.Country)
		assert.Len(t, s.Cards, 2)
		assert.Positive(t, s.TotalEvents)
	})

	t.Run("refine replaces the card", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/cards/c1/refine", types.RefineRequest{Instruction: "더 유머러스하게"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[types.CardResponse](t, w)
		assert.Equal(t, "c1", resp.Card.ID)
		assert.Equal(t, "유머 텀블러", resp.Card.Title)
		assert.Equal(t, "수정 적용 완료", resp.Label)

		stored, err := app.session.Card("c1")
		require.NoError(t, err)
		assert.Equal(t, "유머 텀블러", stored.Title)
	})

	t.Run("publish preview converts to the reference zone", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/cards/c2/publish/preview", types.PublishPreviewRequest{
			Date: "2025-06-05",
			Time: "07:15",
			Zone: "America/New_York",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[types.PublishPreviewResponse](t, w)
		assert.Equal(t, "올스타 응원해요", resp.Caption)
		assert.Equal(t, ideation.Instagram, resp.Platform)
		assert.Equal(t, "2025-06-05", resp.Date)
		assert.Equal(t, "20:15", resp.Conversion.ReferenceTime)
		assert.Equal(t, "현지 07:15 → KST 20:15", resp.Label)
	})

	t.Run("publish preview defaults to the batch", func(t *testing.T) {
		card, err := app.session.Card("c2")
		require.NoError(t, err)
		card.CopyDraftLocal = "Go All-Stars"
		require.NoError(t, app.session.ReplaceCard("c2", card))

		w := doJSON(r, http.MethodPost, "/api/cards/c2/publish/preview", types.PublishPreviewRequest{UseLocal: true, Platform: "x"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[types.PublishPreviewResponse](t, w)
		assert.Equal(t, "Go All-Stars", resp.Caption)
		assert.Equal(t, ideation.XTwitter, resp.Platform)
		assert.Equal(t, "2025-06-05", resp.Date)
		assert.Equal(t, "Asia/Seoul", resp.Conversion.Zone)
		assert.Equal(t, "현지 07:15 → KST 07:15", resp.Label)
	})

	t.Run("publish is not connected", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/cards/c1/publish", nil)
		assert.Equal(t, http.StatusNotImplemented, w.Code)
		assert.Equal(t, "발행 계정 연계가 필요합니다.", decode[apperrors.Response](t, w).Error)
	})

	assert.Equal(t, 1, model.count("research"))
	assert.Equal(t, 1, model.count("generate"))
	assert.Equal(t, 1, model.count("refine"))
}

func TestIdeasValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{name: "brand required", body: types.IdeasRequest{Brand: "   "}, message: ideation.MsgBrandRequired},
		{name: "markup only brand", body: types.IdeasRequest{Brand: "<b></b>"}, message: ideation.MsgBrandRequired},
		{name: "bad date", body: types.IdeasRequest{Brand: "x", TargetDate: "06/05/2025"}, message: types.MsgBadDate},
		{name: "count out of range", body: types.IdeasRequest{Brand: "x", Count: 11}},
		{name: "malformed json", body: `{"brand": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newFakeModel()
			app, r := newTestApp(t, model)

			w := doJSON(r, http.MethodPost, "/api/ideas", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode[apperrors.Response](t, w)
			assert.Equal(t, apperrors.CategoryValidation, resp.Category)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error)
			}

			assert.Zero(t, model.count("research"))
			assert.Equal(t, session.StatusIdle, app.session.Operation().Status)
		})
	}
}

func TestIdeasStageFailures(t *testing.T) {
	t.Run("research failure clears the context", func(t *testing.T) {
		model := newFakeModel()
		model.set("research", reply{text: "없음"})
		app, r := newTestApp(t, model)

		w := doJSON(r, http.MethodPost, "/api/ideas", types.IdeasRequest{Brand: "텀블러", TargetDate: "2025-06-05"})
		assert.Equal(t, http.StatusBadGateway, w.Code)

		resp := decode[apperrors.Response](t, w)
		assert.Equal(t, "리서치 실패: "+apperrors.MsgParseFailed, resp.Error)
		assert.Equal(t, apperrors.CategoryParse, resp.Category)

		assert.Equal(t, session.StatusError, app.session.Operation().Status)
		assert.Equal(t, resp.Error, app.session.LastError())
		assert.True(t, app.session.Events().Empty())
		assert.Zero(t, model.count("generate"))
	})

	t.Run("model failure falls back to sampled cards", func(t *testing.T) {
		model := newFakeModel()
		model.set("generate", reply{err: errors.New("quota exceeded")})
		app, r := newTestApp(t, model)

		w := doJSON(r, http.MethodPost, "/api/ideas", types.IdeasRequest{Brand: "텀블러", TargetDate: "2025-06-05", Count: 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[types.IdeasResponse](t, w)
		assert.True(t, resp.Fallback)
		assert.Equal(t, "모델 결과가 부족해 기본 아이디어로 채웠습니다.", resp.Warning)
		assert.Len(t, resp.Cards, 2)
		assert.Len(t, app.session.Cards(), 2)
	})
}

func TestRefineErrors(t *testing.T) {
	model := newFakeModel()
	app, r := newTestApp(t, model)

	w := doJSON(r, http.MethodPost, "/api/cards/nope/refine", types.RefineRequest{Instruction: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, session.MsgCardNotFound, decode[apperrors.Response](t, w).Error)

	generateIdeas(t, r)
	before, err := app.session.Card("c1")
	require.NoError(t, err)

	w = doJSON(r, http.MethodPost, "/api/cards/c1/refine", types.RefineRequest{Instruction: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, model.count("refine"))

	model.set("refine", reply{text: `["not", "an", "object"]`})
	w = doJSON(r, http.MethodPost, "/api/cards/c1/refine", types.RefineRequest{Instruction: "짧게"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "수정 실패: "+ideation.MsgRefineShape, decode[apperrors.Response](t, w).Error)

	after, err := app.session.Card("c1")
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed refinement leaves the card untouched")
	assert.Equal(t, "수정 실패: "+ideation.MsgRefineShape, app.session.LastError())
}

func TestPublishPreviewErrors(t *testing.T) {
	_, r := newTestApp(t, newFakeModel())
	generateIdeas(t, r)

	tests := []struct {
		name string
		body types.PublishPreviewRequest
		code int
	}{
		{name: "bad clock", body: types.PublishPreviewRequest{Time: "7pm"}, code: http.StatusBadRequest},
		{name: "bad date", body: types.PublishPreviewRequest{Date: "June 5"}, code: http.StatusBadRequest},
		{name: "unknown platform", body: types.PublishPreviewRequest{Platform: "myspace"}, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/cards/c1/publish/preview", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	w := doJSON(r, http.MethodPost, "/api/cards/missing/publish/preview", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarFlow(t *testing.T) {
	model := newFakeModel()
	app, r := newTestApp(t, model)

	w := doJSON(r, http.MethodGet, "/api/calendar/2025/export?format=csv", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing to export before a build")

	w = doJSON(r, http.MethodPost, "/api/calendar/2025", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cal := decode[types.CalendarResponse](t, w)
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, "대한민국", cal.Country)
	assert.False(t, cal.Cached)
	assert.Greater(t, len(cal.Rows), 2)
	assert.Equal(t, len(cal.Rows)-2, cal.Injected)
	assert.Equal(t, session.StatusComplete, app.session.Operation().Status)

	w = doJSON(r, http.MethodPost, "/api/calendar/2025", types.CalendarRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.CalendarResponse](t, w).Cached)
	assert.Equal(t, 1, model.count("annual"))

	w = doJSON(r, http.MethodPost, "/api/calendar/2025?refresh=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, model.count("annual"))

	tests := []struct {
		format      string
		contentType string
		fileName    string
	}{
		{format: "", contentType: "spreadsheetml", fileName: "marketing_events_2025.xlsx"},
		{format: "csv", contentType: "text/csv", fileName: "marketing_events_2025.csv"},
		{format: "ics", contentType: "text/calendar", fileName: "marketing_events_2025.ics"},
	}
	for _, tt := range tests {
		t.Run("export "+tt.fileName, func(t *testing.T) {
			w := doJSON(r, http.MethodGet, "/api/calendar/2025/export?format="+tt.format, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.fileName)
			assert.NotEmpty(t, w.Body.Bytes())
		})
	}

	w = doJSON(r, http.MethodGet, "/api/calendar/2025/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/session", nil)
	assert.Equal(t, []int{2025}, decode[types.SessionResponse](t, w).CalendarYears)
}

func TestCalendarErrors(t *testing.T) {
	model := newFakeModel()
	app, r := newTestApp(t, model)

	for _, path := range []string{"/api/calendar/1999", "/api/calendar/next"} {
		w := doJSON(r, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
	assert.Zero(t, model.count("annual"))

	model.set("annual", reply{err: errors.New("boom")})
	w := doJSON(r, http.MethodPost, "/api/calendar/2026", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	resp := decode[apperrors.Response](t, w)
	assert.True(t, strings.HasPrefix(resp.Error, "연간 이벤트 생성 실패: "), resp.Error)
	assert.Equal(t, resp.Error, app.session.LastError())
}

func TestRequestGuards(t *testing.T) {
	_, r := newTestApp(t, newFakeModel())

	req, _ := http.NewRequest(http.MethodPost, "/api/ideas", strings.NewReader("brand=x"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = doJSON(r, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CategoryNotFound, decode[apperrors.Response](t, w).Category)

	w = doJSON(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'nonce-")

	w = doJSON(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitOnModelRoutes(t *testing.T) {
	model := newFakeModel()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	cfg.Security.RequestsPerMinute = 1
	cfg.Security.Burst = 1
	app := newApp(cfg, model, monitoring.NopLogger())
	r, err := app.router()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPost, "/api/calendar/2025", nil).Code)

	w := doJSON(r, http.MethodPost, "/api/calendar/2025", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// read-only routes are not limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/api/session", nil).Code)
	}
}
