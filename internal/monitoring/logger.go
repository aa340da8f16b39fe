package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger provides structured JSON logging with domain helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stdout at the given level
func NewLogger(level slog.Level) *Logger {
	return NewLoggerWithWriter(os.Stdout, level)
}

// NewLoggerWithWriter creates a JSON logger on w
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Add timestamp in RFC3339 format
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NopLogger discards everything. Used when a component is built without a logger.
func NopLogger() *Logger {
	return NewLoggerWithWriter(io.Discard, slog.LevelError)
}

// ParseLevel maps a config string to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip, userAgent, requestID string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"request_id", requestID,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// ModelCallLogger logs one round trip to the language model
func (l *Logger) ModelCallLogger(stage, model string, promptLen int, duration time.Duration, err error) {
	attrs := []any{
		"stage", stage,
		"model", model,
		"prompt_runes", promptLen,
		"duration_ms", duration.Milliseconds(),
		"success", err == nil,
	}
	if err != nil {
		l.Log(context.Background(), slog.LevelWarn, "Model Call", append(attrs, "error", err.Error())...)
		return
	}
	l.Info("Model Call", attrs...)
}

// PipelineLogger logs the outcome of a pipeline stage
func (l *Logger) PipelineLogger(stage string, attrs ...any) {
	l.Info("Pipeline Stage", append([]any{"stage", stage}, attrs...)...)
}

// FallbackLogger logs a stage that degraded to a deterministic path
func (l *Logger) FallbackLogger(stage, reason string, produced int) {
	l.Warn("Fallback Engaged",
		"stage", stage,
		"reason", reason,
		"produced", produced,
	)
}

// SecurityLogger logs security-related events
func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]interface{}) {
	attrs := []any{
		"event", event,
		"ip", ip,
		"user_agent", userAgent,
	}

	for key, value := range details {
		attrs = append(attrs, key, value)
	}

	l.Warn("Security Event", attrs...)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

var startTime = time.Now()
