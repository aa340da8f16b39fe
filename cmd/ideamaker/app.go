package main

import (
	"io"
	"time"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/adapters"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/calendar"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/config"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/llmjson"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/monitoring"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/session"
)

// App wires the pipeline components shared by the server and the CLI.
type App struct {
	cfg       *config.Config
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
	model     llmjson.Model
	generator *ideation.Generator
	builder   *calendar.Builder
	session   *session.Session
	now       func() time.Time
}

// newModel builds the language model client. Tests replace it.
var newModel = func(cfg *config.Config) (llmjson.Model, error) {
	gemini, err := adapters.NewGeminiAdapter(adapters.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Model.BaseURL,
		Timeout: cfg.Model.Timeout,
		Breaker: cfg.Breaker,
	})
	if err != nil {
		return nil, err
	}
	return gemini, nil
}

func newApp(cfg *config.Config, model llmjson.Model, logger *monitoring.Logger) *App {
	metrics := monitoring.NewMetrics()
	return &App{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		model:     model,
		generator: ideation.NewGenerator(model, cfg.GeneratorOptions(), logger, metrics),
		builder:   calendar.NewBuilder(model, cfg.CalendarOptions(), logger, metrics),
		session:   session.New(cfg.Calendar.CacheTTL),
		now:       time.Now,
	}
}

// loadConfig resolves and reads the config file. Without requireKey a
// missing API key is tolerated and no default file is written.
func loadConfig(opts *rootOptions, requireKey bool) (*config.Config, error) {
	load := config.Load
	if !requireKey {
		load = config.Read
	}
	cfg, err := load(config.ResolvePath(opts.configPath))
	if err != nil && (requireKey || cfg == nil) {
		return nil, err
	}
	return cfg, nil
}

// loadApp reads the config and builds an App logging to w.
func loadApp(opts *rootOptions, w io.Writer) (*App, error) {
	cfg, err := loadConfig(opts, true)
	if err != nil {
		return nil, err
	}
	model, err := newModel(cfg)
	if err != nil {
		return nil, err
	}
	logger := monitoring.NewLoggerWithWriter(w, monitoring.ParseLevel(cfg.LogLevel))
	return newApp(cfg, model, logger), nil
}

// modelStats reports the model client's breaker, when it has one.
func (a *App) modelStats() map[string]interface{} {
	if s, ok := a.model.(interface{ Stats() map[string]interface{} }); ok {
		return s.Stats()
	}
	return nil
}
