package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithComponent("shell").
		With("page", "practical_exe_02.html").
		Error(context.Background(), errors.New("boom"), "render failed", "stage", "sidebar")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "render failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "shell", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "practical_exe_02.html", entry["page"])
	assert.Equal(t, "sidebar", entry["stage"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "hidden debug")
	logger.Info(ctx, "hidden info")
	logger.Warn(ctx, nil, "shown warn")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
}

func TestWithDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})
	_ = parent.With("request_id", "abc")

	parent.Info(context.Background(), "plain")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	ctx := context.Background()
	assert.NotPanics(t, func() {
		logger.Error(ctx, errors.New("x"), "nothing")
		logger.Info(ctx, "nothing")
	})
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

	op := StartOperation(logger, "render")
	op.End(context.Background(), "page", "index.html")

	out := buf.String()
	assert.True(t, strings.Contains(out, "operation=render"), out)
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, "page=index.html")
}

func TestContextFields(t *testing.T) {
	ctx := ContextWithFields(context.Background(), "request_id", "abc")
	ctx = ContextWithFields(ctx, "user", "ada", "request_id", "def")

	assert.Equal(t, map[string]interface{}{"request_id": "def", "user": "ada"}, FieldsFrom(ctx))
	assert.Nil(t, FieldsFrom(context.Background()))

	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})
	logger.WithComponent("http").Info(ctx, "request", "status", 200)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "def", rec["request_id"])
	assert.Equal(t, "ada", rec["user"])
	assert.Equal(t, "http", rec["component"])
	assert.Equal(t, float64(200), rec["status"])
}

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "index.html", "index.html"},
		{"newline", "a\nINFO forged", "a?INFO forged"},
		{"escape", "\x1b[31mred", "?[31mred"},
		{"delete", "a\x7fb", "a?b"},
		{"long", strings.Repeat("x", 300), strings.Repeat("x", 256) + "...[TRUNCATED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeForLog(tt.in))
		})
	}
}
