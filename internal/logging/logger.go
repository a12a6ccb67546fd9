// Package logging provides structured logging for practicals on top of
// log/slog.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a configuration string to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// PracticalsLogger implements structured logging for practicals
type PracticalsLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	fields    map[string]interface{}
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) *PracticalsLogger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     config.Level.slogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &PracticalsLogger{
		logger:    slog.New(handler),
		level:     config.Level,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

// NewNopLogger returns a logger that discards everything. Tests use it.
func NewNopLogger() *PracticalsLogger {
	return NewLogger(&LoggerConfig{Level: LevelError + 1, Output: io.Discard})
}

// Debug logs a debug message
func (l *PracticalsLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, LevelDebug, nil, msg, fields)
}

// Info logs an info message
func (l *PracticalsLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, LevelInfo, nil, msg, fields)
}

// Warn logs a warning message
func (l *PracticalsLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, LevelWarn, err, msg, fields)
}

// Error logs an error message
func (l *PracticalsLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, LevelError, err, msg, fields)
}

// With returns a child logger that adds fields to every record. The parent
// is unchanged.
func (l *PracticalsLogger) With(fields ...interface{}) Logger {
	child := l.clone()
	for key, value := range pairs(fields) {
		child.fields[key] = value
	}
	return child
}

// WithComponent returns a child logger tagged with component.
func (l *PracticalsLogger) WithComponent(component string) Logger {
	child := l.clone()
	child.component = component
	return child
}

func (l *PracticalsLogger) clone() *PracticalsLogger {
	fields := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &PracticalsLogger{
		logger:    l.logger,
		level:     l.level,
		component: l.component,
		fields:    fields,
	}
}

func (l *PracticalsLogger) log(ctx context.Context, level LogLevel, err error, msg string, fields []interface{}) {
	if level < l.level {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sl := level.slogLevel()
	handler := l.logger.Handler()
	if !handler.Enabled(ctx, sl) {
		return
	}

	record := slog.NewRecord(time.Now(), sl, msg, 0)
	if l.component != "" {
		record.AddAttrs(slog.String("component", l.component))
	}
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}
	for k, v := range l.fields {
		record.AddAttrs(slog.Any(k, v))
	}
	for k, v := range FieldsFrom(ctx) {
		record.AddAttrs(slog.Any(k, v))
	}
	for k, v := range pairs(fields) {
		record.AddAttrs(slog.Any(k, v))
	}

	_ = handler.Handle(ctx, record)
}

// pairs turns alternating key/value arguments into a map. Non-string keys
// and a trailing key without value are dropped.
func pairs(fields []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			out[key] = fields[i+1]
		}
	}
	return out
}

type fieldsKey struct{}

// ContextWithFields returns a context whose log records carry fields, in
// addition to any fields already attached to ctx. The server uses it for
// the request id so that every record of a request can be correlated.
func ContextWithFields(ctx context.Context, fields ...interface{}) context.Context {
	merged := make(map[string]interface{})
	for k, v := range FieldsFrom(ctx) {
		merged[k] = v
	}
	for k, v := range pairs(fields) {
		merged[k] = v
	}
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// FieldsFrom returns the fields attached with ContextWithFields.
func FieldsFrom(ctx context.Context) map[string]interface{} {
	fields, _ := ctx.Value(fieldsKey{}).(map[string]interface{})
	return fields
}

// SanitizeForLog makes client-supplied text safe to put in a log record:
// control characters are replaced and long values truncated.
func SanitizeForLog(data string) string {
	const maxLen = 256

	clean := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '?'
		}
		return r
	}, data)

	if len(clean) > maxLen {
		return clean[:maxLen] + "...[TRUNCATED]"
	}
	return clean
}

// PerfLogger tracks how long an operation took
type PerfLogger struct {
	Logger
	startTime time.Time
}

// StartOperation begins performance tracking
func StartOperation(l Logger, operation string) *PerfLogger {
	return &PerfLogger{
		Logger:    l.With("operation", operation),
		startTime: time.Now(),
	}
}

// End logs the duration at debug level.
func (p *PerfLogger) End(ctx context.Context, fields ...interface{}) {
	fields = append(fields, "duration_ms", time.Since(p.startTime).Milliseconds())
	p.Debug(ctx, "Operation completed", fields...)
}

// EndWithError logs the duration and err at error level.
func (p *PerfLogger) EndWithError(ctx context.Context, err error, fields ...interface{}) {
	fields = append(fields, "duration_ms", time.Since(p.startTime).Milliseconds())
	p.Error(ctx, err, "Operation failed", fields...)
}
