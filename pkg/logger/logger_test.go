package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":   TraceLevel,
		"DEBUG":   DebugLevel,
		" info ":  InfoLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
		"":        InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestInitializeRejectsInvalidLevel(t *testing.T) {
	err := Initialize(Config{Level: Level(42)})
	assert.Error(t, err)
}

func TestLoggerPrettyFormatting(t *testing.T) {
	l := New(Config{Level: InfoLevel, Component: "test"}, &bytes.Buffer{})

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "scan finished",
		Component: "test",
		Fields:    map[string]interface{}{"platform": "steam", "found": 3},
	}

	result := l.formatPretty(entry)

	for _, part := range []string{"2025-01-01 12:00:00", "[INFO]", "test:", "scan finished"} {
		assert.Contains(t, result, part)
	}
	// fields are sorted by key
	assert.Contains(t, result, "{found=3, platform=steam}")
}

func TestLoggerJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{
		config: Config{Level: InfoLevel, JSON: true, Component: "test"},
		logger: log.New(&buf, "", 0),
	}

	l.Log(InfoLevel, "tier complete", String("tier", "fast"), Duration("elapsed", 1500*time.Millisecond))

	var parsed LogEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed))
	assert.Equal(t, "tier complete", parsed.Message)
	assert.Equal(t, "INFO", parsed.Level)
	assert.Equal(t, "fast", parsed.Fields["tier"])
	assert.Equal(t, "1.5s", parsed.Fields["elapsed"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel, Component: "test"}, &buf)

	l.Log(InfoLevel, "info message")
	l.Log(DebugLevel, "debug message")
	l.Log(WarnLevel, "warn message")
	l.Log(ErrorLevel, "error message")

	output := buf.String()
	assert.NotContains(t, output, "info message")
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
	assert.False(t, l.Enabled(InfoLevel))
	assert.True(t, l.Enabled(ErrorLevel))
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "key", Value: "value"}, String("key", "value"))
	assert.Equal(t, Field{Key: "count", Value: 42}, Int("count", 42))
	assert.Equal(t, Field{Key: "enabled", Value: true}, Bool("enabled", true))
	assert.Equal(t, Field{Key: "roots", Value: "C:\\,D:\\"}, Strings("roots", []string{"C:\\", "D:\\"}))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))

	type platform string
	assert.Equal(t, Field{Key: "platform", Value: "steam"}, Platform(platform("steam")))
}

func TestConvenienceFunctions(t *testing.T) {
	require.NoError(t, Initialize(Config{Level: InfoLevel, Component: "test"}))

	var buf bytes.Buffer
	SetOutput(&buf)

	Info("test info message")
	Debug("test debug message")
	Warn("test warn message")

	output := buf.String()
	assert.Contains(t, output, "test info message")
	assert.Contains(t, output, "test warn message")
	assert.NotContains(t, output, "test debug message")
}

func TestUninitializedLoggerDoesNotPanic(t *testing.T) {
	mu.Lock()
	original := defaultLogger
	defaultLogger = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		defaultLogger = original
		mu.Unlock()
	}()

	assert.NotPanics(t, func() {
		Info("dropped")
		Debug("dropped")
		SetOutput(&bytes.Buffer{})
	})
}
