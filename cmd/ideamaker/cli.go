package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/calendar"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/schedule"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newIdeasCmd(opts *rootOptions) *cobra.Command {
	var (
		req        types.IdeasRequest
		channels   []string
		creativity float64
		out        string
	)

	cmd := &cobra.Command{
		Use:   "ideas",
		Short: "Research events and print idea cards as JSON",
		Example: `  ideamaker ideas --brand "오뚜기 진라면" --date 2025-06-05
  ideamaker ideas --brand "텀블러" --country "United States" --channel instagram --count 3 -o ideas.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("channel") {
				req.Channels = channels
			}
			if cmd.Flags().Changed("creativity") {
				req.Creativity = &creativity
			}

			in, err := req.BatchInput(app.cfg.DefaultCountry, app.cfg.Model.Creativity, app.now())
			if err != nil {
				return err
			}

			progress := cmd.ErrOrStderr()
			batch, err := app.generator.RunBatch(cmd.Context(), in, func(stage string, percent int) {
				fmt.Fprintf(progress, "[%3d%%] %s\n", percent, stageLabel(stage))
			})
			if err != nil {
				return err
			}

			resp := types.IdeasResponse{
				Label:       fmt.Sprintf("✅ 아이디어 %d개 생성 완료", len(batch.Result.Cards)),
				Cards:       batch.Result.Cards,
				Groups:      types.Groups(batch.Research.Events),
				Injected:    batch.Research.Injected,
				FromAlmanac: batch.Research.FromAlmanac,
				Fallback:    batch.Result.Fallback,
			}
			return emit(cmd, out, resp)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.Brand, "brand", "b", "", "brand and product or category (required)")
	f.StringVarP(&req.TargetDate, "date", "d", "", "target day, YYYY-MM-DD (default today)")
	f.StringVar(&req.Country, "country", "", "target market (default from config)")
	f.StringSliceVar(&channels, "channel", nil, "channels to plan for, repeatable")
	f.IntVarP(&req.Count, "count", "n", 0, "number of cards, 1-10 (default 6)")
	f.Float64Var(&creativity, "creativity", 0, "generation temperature, 0-1 (default from config)")
	f.StringVarP(&out, "output", "o", "", "write JSON to this file instead of stdout")
	_ = cmd.MarkFlagRequired("brand")
	return cmd
}

// emit writes v as JSON to path, or to stdout when path is empty.
func emit(cmd *cobra.Command, path string, v any) error {
	if path == "" {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewInternalError("결과 파일을 만들 수 없습니다.", err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return apperrors.NewInternalError("결과 파일을 쓸 수 없습니다.", err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewInternalError("결과 파일을 쓸 수 없습니다.", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "wrote", path)
	return nil
}

func newCalendarCmd(opts *rootOptions) *cobra.Command {
	var (
		year    int
		country string
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Build an annual event calendar and export it",
		Example: `  ideamaker calendar --year 2025
  ideamaker calendar --year 2026 --country Japan --format ics -o japan-2026.ics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportFormat, err := calendar.ParseFormat(format)
			if err != nil {
				return err
			}

			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if strings.TrimSpace(country) == "" {
				country = app.cfg.DefaultCountry
			}

			cal, err := app.builder.Build(cmd.Context(), year, country)
			if err != nil {
				return &ideation.StageError{Prefix: calendar.FailedPrefix, Err: apperrors.ToAppError(err)}
			}

			file, err := calendar.BuildFile(calendar.Rows(cal.Events), year, exportFormat)
			if err != nil {
				return err
			}
			if out == "" {
				out = file.Name
			} else if filepath.Ext(out) == "" {
				out += "." + string(file.Format)
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return apperrors.NewInternalError("결과 파일을 만들 수 없습니다.", err)
			}

			app.metrics.RecordExport(string(file.Format))
			fmt.Fprintln(cmd.OutOrStdout(), cal.Label())
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", out)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVarP(&year, "year", "y", calendar.DefaultYear, "calendar year")
	f.StringVar(&country, "country", "", "target market (default from config)")
	f.StringVarP(&format, "format", "f", string(calendar.FormatXLSX), "export format: xlsx, csv or ics")
	f.StringVarP(&out, "output", "o", "", "output file (default marketing_events_<year>.<format>)")
	return cmd
}

func newTZCmd(opts *rootOptions) *cobra.Command {
	var (
		country string
		zone    string
		date    string
		clock   string
	)

	cmd := &cobra.Command{
		Use:   "tz",
		Short: "Convert a local publish time into the reference zone",
		Example: `  ideamaker tz --country "United States" --time 07:15
  ideamaker tz --zone Europe/Paris --date 2025-03-30 --time 09:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, false)
			if err != nil {
				return err
			}

			c, err := schedule.ParseClock(clock)
			if err != nil {
				return apperrors.NewValidationError(msgBadClock, clock)
			}

			day := time.Now()
			if date != "" {
				if day, err = time.Parse("2006-01-02", date); err != nil {
					return apperrors.NewValidationError(types.MsgBadDate, date)
				}
			}

			if zone == "" {
				if country == "" {
					country = cfg.DefaultCountry
				}
				zone = schedule.ZoneForCountry(country)
			}

			conv := schedule.Convert(c, zone, day, cfg.ReferenceZone)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s → %s %s\n",
				day.Format("2006-01-02"), conv.Zone, conv.LocalTime, referenceName(conv.Reference), conv.ReferenceTime)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&country, "country", "", "market whose default zone is used")
	f.StringVar(&zone, "zone", "", "IANA zone, overrides --country")
	f.StringVarP(&date, "date", "d", "", "publish day, YYYY-MM-DD (default today)")
	f.StringVarP(&clock, "time", "t", schedule.DefaultPublishClock, "local publish time, HH:MM")
	return cmd
}
