package calendar

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
)

// Format is an export file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
)

// Formats lists the export formats in menu order.
var Formats = []Format{FormatXLSX, FormatCSV, FormatICS}

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv"
	mimeICS  = "text/calendar"

	utf8BOM = "\ufeff"
)

// Columns is the export header.
var Columns = []string{"date", "name", "category", "note", "confidence", "specific_confidence", "sources"}

// uidNamespace scopes the deterministic VEVENT UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://ideamaker.local/calendar"))

// ParseFormat resolves a format name; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatICS:
		return FormatICS, nil
	}
	return "", apperrors.NewValidationError("지원하지 않는 파일 형식입니다. (xlsx, csv, ics)", s)
}

// Row is one exported event.
type Row struct {
	Date               string  `json:"date"`
	Name               string  `json:"name"`
	Category           string  `json:"category"`
	Note               string  `json:"note"`
	Confidence         float64 `json:"confidence"`
	SpecificConfidence float64 `json:"specific_confidence"`
	Sources            string  `json:"sources"`
}

// Rows shapes records into export rows, keeping their order.
func Rows(records []events.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			Date:               r.Date,
			Name:               r.Name,
			Category:           string(r.Category),
			Note:               r.Note,
			Confidence:         r.Confidence,
			SpecificConfidence: r.SpecificConfidence,
			Sources:            strings.Join(r.Sources, ", "),
		}
	}
	return rows
}

func (r Row) values() []string {
	return []string{
		r.Date,
		r.Name,
		r.Category,
		r.Note,
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		strconv.FormatFloat(r.SpecificConfidence, 'f', -1, 64),
		r.Sources,
	}
}

// File is a built export ready to download.
type File struct {
	Format Format `json:"format"`
	Name   string `json:"name"`
	MIME   string `json:"mime"`
	Data   []byte `json:"-"`
}

// BuildFile renders rows in the requested format. A spreadsheet that fails
// to render is served as CSV instead.
func BuildFile(rows []Row, year int, format Format) (File, error) {
	switch format {
	case FormatXLSX:
		if f, err := buildXLSX(rows, year); err == nil {
			return f, nil
		}
		return buildCSV(rows, year)
	case FormatCSV:
		return buildCSV(rows, year)
	case FormatICS:
		return buildICS(rows, year)
	}
	return File{}, apperrors.NewValidationError("지원하지 않는 파일 형식입니다. (xlsx, csv, ics)", string(format))
}

func fileName(year int, format Format) string {
	return fmt.Sprintf("marketing_events_%d.%s", year, format)
}

func buildXLSX(rows []Row, year int) (File, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := strconv.Itoa(year)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return File{}, err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return File{}, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return File{}, err
		}
		values := []interface{}{r.Date, r.Name, r.Category, r.Note, r.Confidence, r.SpecificConfidence, r.Sources}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return File{}, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return File{}, err
	}
	return File{Format: FormatXLSX, Name: fileName(year, FormatXLSX), MIME: mimeXLSX, Data: buf.Bytes()}, nil
}

func buildCSV(rows []Row, year int) (File, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return File{}, apperrors.NewInternalError("CSV 생성 실패", err)
	}
	for _, r := range rows {
		if err := w.Write(r.values()); err != nil {
			return File{}, apperrors.NewInternalError("CSV 생성 실패", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return File{}, apperrors.NewInternalError("CSV 생성 실패", err)
	}
	return File{Format: FormatCSV, Name: fileName(year, FormatCSV), MIME: mimeCSV, Data: buf.Bytes()}, nil
}

// buildICS writes one all-day VEVENT per dated row. Undated rows have no
// place on a calendar and are skipped.
func buildICS(rows []Row, year int) (File, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//marcom-ideamaker//annual calendar//KO")
	cal.SetXWRCalName(fmt.Sprintf("%d %s", year, calendarSubject))

	stamp := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range rows {
		day, ok := events.ParseDate(r.Date)
		if !ok {
			continue
		}
		uid := uuid.NewSHA1(uidNamespace, []byte(r.Date+"|"+r.Name)).String()

		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(r.Name)
		if r.Note != "" {
			ev.SetDescription(r.Note)
		}
		if r.Category != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, r.Category)
		}
	}

	return File{
		Format: FormatICS,
		Name:   fileName(year, FormatICS),
		MIME:   mimeICS,
		Data:   []byte(cal.Serialize()),
	}, nil
}
