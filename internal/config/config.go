// Package config loads the YAML settings file, environment overrides and
// the Gemini API key.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/calendar"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/resilience"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/schedule"
)

// Environment variables that override the file.
const (
	EnvListen = "IDEAMAKER_LISTEN"
	EnvConfig = "IDEAMAKER_CONFIG"
	EnvAPIKey = "GEMINI_API_KEY"
)

// DefaultPath is used when neither a flag nor IDEAMAKER_CONFIG names a file.
const DefaultPath = "ideamaker.yaml"

// MsgMissingAPIKey is shown when no API key can be found.
const MsgMissingAPIKey = "GEMINI_API_KEY가 설정되지 않았습니다. secrets 파일이나 환경 변수에 키를 넣어주세요."

// ModelConfig selects the language model and its sampling defaults.
type ModelConfig struct {
	Name                string        `yaml:"name" json:"name"`
	BaseURL             string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout             time.Duration `yaml:"timeout" json:"timeout"`
	ResearchTemperature float64       `yaml:"research_temperature" json:"research_temperature"`
	Creativity          float64       `yaml:"creativity" json:"creativity"`
	CalendarTemperature float64       `yaml:"calendar_temperature" json:"calendar_temperature"`
	ThinkingDisabled    bool          `yaml:"thinking_disabled" json:"thinking_disabled"`
}

// ResearchConfig bounds the researched event context.
type ResearchConfig struct {
	WindowDays       int  `yaml:"window_days" json:"window_days"`
	MaxPerCategory   int  `yaml:"max_per_category" json:"max_per_category"`
	MinEvents        int  `yaml:"min_events" json:"min_events"`
	AlmanacOnFailure bool `yaml:"almanac_on_failure" json:"almanac_on_failure"`
}

// CalendarConfig bounds the annual calendar.
type CalendarConfig struct {
	MinYear  int           `yaml:"min_year" json:"min_year"`
	MaxYear  int           `yaml:"max_year" json:"max_year"`
	PerMonth int           `yaml:"per_month" json:"per_month"`
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// SecurityConfig configures the HTTP guards.
type SecurityConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins" json:"allowed_origins"`
	TrustedProxies    []string      `yaml:"trusted_proxies" json:"trusted_proxies"`
	EnableHSTS        bool          `yaml:"enable_hsts" json:"enable_hsts"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the UI and API.
	Listen   string `yaml:"listen" json:"listen"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SecretsPath names a YAML file holding GEMINI_API_KEY.
	SecretsPath string `yaml:"secrets_path" json:"secrets_path"`

	// ReferenceZone is the zone publish times are converted into.
	ReferenceZone  string `yaml:"reference_zone" json:"reference_zone"`
	DefaultCountry string `yaml:"default_country" json:"default_country"`

	Model    ModelConfig                     `yaml:"model" json:"model"`
	Research ResearchConfig                  `yaml:"research" json:"research"`
	Calendar CalendarConfig                  `yaml:"calendar" json:"calendar"`
	Breaker  resilience.CircuitBreakerConfig `yaml:"breaker" json:"breaker"`
	Security SecurityConfig                  `yaml:"security" json:"security"`

	// APIKey is resolved at load time and never written back.
	APIKey string `yaml:"-" json:"-"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		LogLevel:       "info",
		SecretsPath:    "secrets.yaml",
		ReferenceZone:  schedule.DefaultReferenceZone,
		DefaultCountry: ideation.DefaultCountry,
		Model: ModelConfig{
			Name:                ideation.DefaultModel,
			Timeout:             2 * time.Minute,
			ResearchTemperature: ideation.DefaultResearchT,
			Creativity:          ideation.DefaultCreative,
			CalendarTemperature: calendar.DefaultTemp,
			ThinkingDisabled:    true,
		},
		Research: ResearchConfig{
			WindowDays:     events.DefaultWindowDays,
			MaxPerCategory: events.DefaultMaxPerCategory,
			MinEvents:      events.MinResearchEvents,
		},
		Calendar: CalendarConfig{
			MinYear:  calendar.DefaultMinYear,
			MaxYear:  calendar.DefaultMaxYear,
			PerMonth: events.MinEventsPerMonth,
		},
		Breaker: resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 1,
		},
		Security: SecurityConfig{
			RequestsPerMinute: 20,
			Burst:             5,
			MaxBodyBytes:      64 << 10,
			RequestTimeout:    5 * time.Minute,
			AllowedOrigins:    []string{"http://localhost:5173", "http://127.0.0.1:8080"},
			TrustedProxies:    []string{"127.0.0.1", "::1"},
		},
	}
}

// Normalize fills zero values with defaults so partially-filled files still work.
func (c *Config) Normalize() {
	d := DefaultConfig()

	if c.Listen == "" {
		c.Listen = d.Listen
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		c.LogLevel = d.LogLevel
	}
	if c.ReferenceZone == "" {
		c.ReferenceZone = d.ReferenceZone
	}
	if strings.TrimSpace(c.DefaultCountry) == "" {
		c.DefaultCountry = d.DefaultCountry
	}

	if c.Model.Name == "" {
		c.Model.Name = d.Model.Name
	}
	if c.Model.Timeout <= 0 {
		c.Model.Timeout = d.Model.Timeout
	}
	c.Model.ResearchTemperature = clampTemperature(c.Model.ResearchTemperature, d.Model.ResearchTemperature)
	c.Model.Creativity = clampTemperature(c.Model.Creativity, d.Model.Creativity)
	c.Model.CalendarTemperature = clampTemperature(c.Model.CalendarTemperature, d.Model.CalendarTemperature)

	if c.Research.WindowDays <= 0 {
		c.Research.WindowDays = d.Research.WindowDays
	}
	if c.Research.MaxPerCategory <= 0 {
		c.Research.MaxPerCategory = d.Research.MaxPerCategory
	}
	if c.Research.MinEvents <= 0 {
		c.Research.MinEvents = d.Research.MinEvents
	}

	if c.Calendar.MinYear <= 0 {
		c.Calendar.MinYear = d.Calendar.MinYear
	}
	if c.Calendar.MaxYear < c.Calendar.MinYear {
		c.Calendar.MaxYear = max(d.Calendar.MaxYear, c.Calendar.MinYear)
	}
	if c.Calendar.PerMonth <= 0 {
		c.Calendar.PerMonth = d.Calendar.PerMonth
	}
	if c.Calendar.CacheTTL < 0 {
		c.Calendar.CacheTTL = 0
	}

	if c.Breaker.FailureThreshold <= 0 {
		c.Breaker.FailureThreshold = d.Breaker.FailureThreshold
	}
	if c.Breaker.RecoveryTimeout <= 0 {
		c.Breaker.RecoveryTimeout = d.Breaker.RecoveryTimeout
	}
	if c.Breaker.SuccessThreshold <= 0 {
		c.Breaker.SuccessThreshold = d.Breaker.SuccessThreshold
	}

	if c.Security.RequestsPerMinute <= 0 {
		c.Security.RequestsPerMinute = d.Security.RequestsPerMinute
	}
	if c.Security.Burst <= 0 {
		c.Security.Burst = d.Security.Burst
	}
	if c.Security.MaxBodyBytes <= 0 {
		c.Security.MaxBodyBytes = d.Security.MaxBodyBytes
	}
	if c.Security.RequestTimeout <= 0 {
		c.Security.RequestTimeout = d.Security.RequestTimeout
	}
	if len(c.Security.AllowedOrigins) == 0 {
		c.Security.AllowedOrigins = d.Security.AllowedOrigins
	}
	if c.Security.TrustedProxies == nil {
		c.Security.TrustedProxies = d.Security.TrustedProxies
	}
}

// Temperatures outside [0,1] fall back to the default; zero is a valid choice.
func clampTemperature(v, def float64) float64 {
	if v < 0 || v > 1 {
		return def
	}
	return v
}

// ResolvePath picks the config path: explicit flag, then IDEAMAKER_CONFIG, then DefaultPath.
func ResolvePath(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path, creating it with defaults on first run,
// then applies environment overrides and resolves the API key.
func Load(path string) (*Config, error) {
	return load(path, true)
}

// Read is Load without the first-run file creation. A missing file yields
// the defaults.
func Read(path string) (*Config, error) {
	return load(path, false)
}

func load(path string, create bool) (*Config, error) {
	if path == "" {
		return nil, apperrors.NewConfigError("config path is empty", nil)
	}

	cfg, err := readOrCreate(path, create)
	if err != nil {
		return nil, err
	}

	if listen := strings.TrimSpace(os.Getenv(EnvListen)); listen != "" {
		cfg.Listen = listen
	}

	secrets := cfg.SecretsPath
	if secrets != "" && !filepath.IsAbs(secrets) {
		secrets = filepath.Join(filepath.Dir(path), secrets)
	}
	key, err := LoadAPIKey(secrets)
	if err != nil {
		return cfg, err
	}
	cfg.APIKey = key
	return cfg, nil
}

func readOrCreate(path string, create bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if !create {
				cfg.Normalize()
				return cfg, nil
			}
			if err := Save(path, cfg); err != nil {
				return cfg, apperrors.NewConfigError("기본 설정 파일을 만들 수 없습니다.", err)
			}
			return cfg, nil
		}
		return nil, apperrors.NewConfigError("설정 파일을 읽을 수 없습니다.", err)
	}

	// Keys missing from the file keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.NewConfigError("설정 파일 형식이 올바르지 않습니다.", err)
	}
	cfg.Normalize()
	return cfg, nil
}

type secretsFile struct {
	GeminiAPIKey string `yaml:"GEMINI_API_KEY"`
}

// LoadAPIKey returns the key from the secrets file, then from GEMINI_API_KEY.
// A missing secrets file is not an error; a missing key is.
func LoadAPIKey(secretsPath string) (string, error) {
	if secretsPath != "" {
		data, err := os.ReadFile(secretsPath)
		switch {
		case err == nil:
			var s secretsFile
			if err := yaml.Unmarshal(data, &s); err != nil {
				return "", apperrors.NewConfigError("secrets 파일 형식이 올바르지 않습니다.", err)
			}
			if key := strings.TrimSpace(s.GeminiAPIKey); key != "" {
				return key, nil
			}
		case !errors.Is(err, fs.ErrNotExist):
			return "", apperrors.NewConfigError("secrets 파일을 읽을 수 없습니다.", err)
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, nil
	}
	return "", apperrors.NewConfigError(MsgMissingAPIKey, nil)
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ideamaker-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// GeneratorOptions maps the config onto the idea pipeline options.
func (c *Config) GeneratorOptions() ideation.Options {
	return ideation.Options{
		Model:               c.Model.Name,
		ResearchTemperature: c.Model.ResearchTemperature,
		ThinkingDisabled:    c.Model.ThinkingDisabled,
		WindowDays:          c.Research.WindowDays,
		MaxPerCategory:      c.Research.MaxPerCategory,
		MinEvents:           c.Research.MinEvents,
		AlmanacOnFailure:    c.Research.AlmanacOnFailure,
	}
}

// CalendarOptions maps the config onto the annual calendar options.
func (c *Config) CalendarOptions() calendar.Options {
	return calendar.Options{
		Model:            c.Model.Name,
		Temperature:      c.Model.CalendarTemperature,
		ThinkingDisabled: c.Model.ThinkingDisabled,
		MinYear:          c.Calendar.MinYear,
		MaxYear:          c.Calendar.MaxYear,
		PerMonth:         c.Calendar.PerMonth,
	}
}
