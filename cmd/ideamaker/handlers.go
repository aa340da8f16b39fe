package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/calendar"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/schedule"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/security"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/session"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/types"
)

const (
	maxBrandRunes       = 100
	maxCountryRunes     = 40
	maxInstructionRunes = 500

	msgBadRequest         = "요청 형식이 올바르지 않습니다."
	msgBodyTooLarge       = "요청 본문이 너무 큽니다."
	msgInstructionMissing = "수정 요청을 입력해주세요."
	msgBadYear            = "연도 형식이 올바르지 않습니다."
	msgBadClock           = "게시 시각 형식이 올바르지 않습니다. (HH:MM)"
	msgBadPlatform        = "지원하지 않는 채널입니다."
	msgPublishStub        = "발행 계정 연계가 필요합니다."
	msgRefineDone         = "수정 적용 완료"
)

// bindJSON decodes the body into dst. An empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.NewValidationError(msgBodyTooLarge, tooLarge.Limit)
	}
	return apperrors.NewValidationError(msgBadRequest, err.Error())
}

func (a *App) country(s string) (string, error) {
	country, err := security.ValidateText("국가", s, maxCountryRunes)
	if err != nil {
		return "", err
	}
	if country == "" {
		country = a.cfg.DefaultCountry
	}
	return country, nil
}

func (a *App) getOptions(c *gin.Context) {
	minYear, maxYear := a.builder.YearRange()
	year := min(max(a.now().Year(), minYear), maxYear)

	c.JSON(http.StatusOK, types.OptionsResponse{
		Categories:      types.CategoryOptions(),
		Channels:        ideation.Channels(),
		DefaultChannels: ideation.DefaultChannels,
		Goals:           ideation.Goals(),
		Zones:           schedule.ZoneOptions(),
		DefaultCountry:  a.cfg.DefaultCountry,
		ReferenceZone:   a.cfg.ReferenceZone,
		DefaultClock:    schedule.DefaultPublishClock,
		Model:           a.cfg.Model.Name,
		Creativity:      a.cfg.Model.Creativity,
		MinCards:        ideation.MinCards,
		MaxCards:        ideation.MaxCards,
		DefaultCards:    ideation.DefaultCards,
		MinYear:         minYear,
		MaxYear:         maxYear,
		DefaultYear:     year,
		Formats:         calendar.Formats,
	})
}

func (a *App) getSession(c *gin.Context) {
	ctx := a.session.Events()
	resp := types.SessionResponse{
		Operation:     types.NewOperationView(a.session.Operation()),
		LastError:     a.session.LastError(),
		Groups:        types.Groups(ctx),
		TotalEvents:   ctx.Total(),
		Cards:         a.session.Cards(),
		CalendarYears: a.session.CalendarYears(),
	}
	if snap, ok := a.session.Snapshot(); ok {
		resp.Snapshot = &snap
	}
	if resp.Cards == nil {
		resp.Cards = []ideation.Card{}
	}
	c.JSON(http.StatusOK, resp)
}

func stageLabel(stage string) string {
	switch stage {
	case ideation.StageResearch:
		return "이벤트 리서치 중…"
	case ideation.StageGenerate:
		return "아이디어 생성 중…"
	}
	return "마무리 중…"
}

// postIdeas runs research and generation for one brand. Input errors are
// rejected before the operation starts; stage failures are recorded on the
// session with their stage prefix.
func (a *App) postIdeas(c *gin.Context) {
	var req types.IdeasRequest
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	brand, err := security.ValidateText("브랜드", req.Brand, maxBrandRunes)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	req.Brand = brand
	if req.Country, err = a.country(req.Country); err != nil {
		apperrors.Respond(c, err)
		return
	}

	in, err := req.BatchInput(a.cfg.DefaultCountry, a.cfg.Model.Creativity, a.now())
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	a.session.BeginOperation(session.OpIdeas, stageLabel(ideation.StageResearch))
	batch, err := a.generator.RunBatch(c.Request.Context(), in, func(stage string, percent int) {
		a.session.UpdateOperation(stageLabel(stage), percent)
	})
	if err != nil {
		var stageErr *ideation.StageError
		if errors.As(err, &stageErr) && stageErr.Prefix == ideation.GenerateFailedPrefix {
			a.session.SetEvents(batch.Research.Events)
		} else {
			a.session.SetEvents(nil)
		}
		msg := apperrors.UserMessage(err)
		a.session.FailOperation(msg, msg)
		apperrors.Respond(c, err)
		return
	}

	snap := session.Snapshot{
		BatchID:     uuid.NewString(),
		Brand:       batch.Input.Brand,
		Country:     batch.Input.Country,
		Target:      batch.Input.Target,
		Channels:    batch.Input.Channels,
		Goals:       ideation.Goals(),
		Model:       a.cfg.Model.Name,
		Temperature: batch.Input.Temperature,
		CreatedAt:   a.now().UTC(),
	}
	label := fmt.Sprintf("✅ 아이디어 %d개 생성 완료", len(batch.Result.Cards))

	a.session.SetEvents(batch.Research.Events)
	a.session.SetBatch(snap, batch.Result.Cards)
	a.session.CompleteOperation(label)

	resp := types.IdeasResponse{
		BatchID:     snap.BatchID,
		Label:       label,
		Cards:       batch.Result.Cards,
		Groups:      types.Groups(batch.Research.Events),
		Injected:    batch.Research.Injected,
		FromAlmanac: batch.Research.FromAlmanac,
		Fallback:    batch.Result.Fallback,
	}
	switch {
	case batch.Research.FromAlmanac:
		resp.Warning = "리서치에 실패해 기본 기념일로 대체했습니다."
	case batch.Result.Fallback:
		resp.Warning = "모델 결과가 부족해 기본 아이디어로 채웠습니다."
	}
	c.JSON(http.StatusOK, resp)
}

// postRefine edits one card. On failure the card is left unchanged.
func (a *App) postRefine(c *gin.Context) {
	id := c.Param("id")
	base, err := a.session.Card(id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req types.RefineRequest
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}
	instruction, err := security.ValidateText("수정 요청", req.Instruction, maxInstructionRunes)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if instruction == "" {
		apperrors.Respond(c, apperrors.NewValidationError(msgInstructionMissing))
		return
	}

	country := a.cfg.DefaultCountry
	temperature := a.cfg.Model.Creativity
	if snap, ok := a.session.Snapshot(); ok {
		country = snap.Country
		temperature = snap.Temperature
	}
	if req.Creativity != nil {
		if *req.Creativity < 0 || *req.Creativity > 1 {
			apperrors.Respond(c, apperrors.NewValidationError("창의성은 0~1 사이여야 합니다.", *req.Creativity))
			return
		}
		temperature = *req.Creativity
	}

	a.session.BeginOperation(session.OpRefine, "수정 중…")
	card, err := a.generator.Refine(c.Request.Context(), ideation.RefineInput{
		Base:        base,
		Instruction: instruction,
		Country:     country,
		Events:      a.session.Events(),
		Temperature: temperature,
	})
	if err == nil {
		err = a.session.ReplaceCard(id, card)
	}
	if err != nil {
		staged := &ideation.StageError{Prefix: ideation.RefineFailedPrefix, Err: apperrors.ToAppError(err)}
		msg := staged.StagedMessage()
		a.session.FailOperation(msg, msg)
		apperrors.Respond(c, staged)
		return
	}

	a.session.CompleteOperation(msgRefineDone)
	c.JSON(http.StatusOK, types.CardResponse{Card: card, Label: msgRefineDone})
}

// referenceName is the short label of the reference zone.
func referenceName(zone string) string {
	if zone == schedule.DefaultReferenceZone {
		return "KST"
	}
	return zone
}

// postPublishPreview shows the caption and the schedule a card would be
// posted with. Nothing is sent.
func (a *App) postPublishPreview(c *gin.Context) {
	card, err := a.session.Card(c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req types.PublishPreviewRequest
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	country := a.cfg.DefaultCountry
	day := a.now()
	if snap, ok := a.session.Snapshot(); ok {
		country = snap.Country
		day = snap.Target
	}
	if s := strings.TrimSpace(req.Date); s != "" {
		if day, err = time.Parse("2006-01-02", s); err != nil {
			apperrors.Respond(c, apperrors.NewValidationError(types.MsgBadDate, s))
			return
		}
	}

	clockText := strings.TrimSpace(req.Time)
	if clockText == "" {
		clockText = schedule.DefaultPublishClock
	}
	clock, err := schedule.ParseClock(clockText)
	if err != nil {
		apperrors.Respond(c, apperrors.NewValidationError(msgBadClock, clockText))
		return
	}

	zone := strings.TrimSpace(req.Zone)
	if zone == "" {
		zone = schedule.ZoneForCountry(country)
	}

	platform := ideation.Instagram
	if len(card.RecommendedChannels) > 0 {
		platform = card.RecommendedChannels[0]
	}
	if req.Platform != "" {
		p, ok := ideation.ParseChannel(req.Platform)
		if !ok {
			apperrors.Respond(c, apperrors.NewValidationError(msgBadPlatform, req.Platform))
			return
		}
		platform = p
	}

	conv := schedule.Convert(clock, zone, day, a.cfg.ReferenceZone)
	c.JSON(http.StatusOK, types.PublishPreviewResponse{
		CardID:     card.ID,
		Caption:    card.Caption(req.UseLocal),
		Platform:   platform,
		Date:       day.Format("2006-01-02"),
		Conversion: conv,
		Label:      fmt.Sprintf("현지 %s → %s %s", conv.LocalTime, referenceName(conv.Reference), conv.ReferenceTime),
	})
}

// postPublish is not connected to any account yet.
func (a *App) postPublish(c *gin.Context) {
	if _, err := a.session.Card(c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	apperrors.Respond(c, apperrors.NewUnimplementedError(msgPublishStub))
}

func (a *App) yearParam(c *gin.Context) (int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, apperrors.NewValidationError(msgBadYear, c.Param("year"))
	}
	if err := a.builder.ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

// postCalendar builds the annual calendar of a year. A cached build for the
// same country is returned unless ?refresh=true.
func (a *App) postCalendar(c *gin.Context) {
	year, err := a.yearParam(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req types.CalendarRequest
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}
	country, err := a.country(req.Country)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	if entry, ok := a.session.Calendar(year); ok && !refresh && entry.Calendar.Country == country {
		c.JSON(http.StatusOK, types.NewCalendarResponse(entry, true))
		return
	}

	a.session.BeginOperation(session.OpCalendar, fmt.Sprintf("%d년 연간 이벤트 생성 중…", year))
	cal, err := a.builder.Build(c.Request.Context(), year, country)
	if err != nil {
		staged := &ideation.StageError{Prefix: calendar.FailedPrefix, Err: apperrors.ToAppError(err)}
		msg := staged.StagedMessage()
		a.session.FailOperation(msg, msg)
		apperrors.Respond(c, staged)
		return
	}

	a.session.StoreCalendar(session.YearEntry{Calendar: cal})
	a.session.CompleteOperation(cal.Label())

	entry, _ := a.session.Calendar(year)
	c.JSON(http.StatusOK, types.NewCalendarResponse(entry, false))
}

func (a *App) getCalendarExport(c *gin.Context) {
	year, err := a.yearParam(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	format, err := calendar.ParseFormat(c.Query("format"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	file, err := a.session.CalendarFile(year, format)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	a.metrics.RecordExport(string(file.Format))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.MIME, file.Data)
}
