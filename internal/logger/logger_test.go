package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithFormat(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"text debug", "debug", FormatText},
		{"text warn", "warn", FormatText},
		{"json info", "info", FormatJSON},
		{"json error", "error", FormatJSON},
		{"unknown format falls back to text", "info", "xml"},
		{"invalid level", "invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithFormat(tt.level, tt.format, &buf)
			if log == nil {
				t.Fatal("NewWithFormat() returned nil")
			}
			log.Error(context.Background(), "disk full")
			if !strings.Contains(buf.String(), "disk full") {
				t.Errorf("error line missing from output %q", buf.String())
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := NewWithFormat("info", FormatText, &buf)

	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")
	log.Info(ctx, "formatted message: %s %d", "test", 123)

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug line should be filtered at info level")
	}
	for _, want := range []string{"info message", "warn message", "error message", "formatted message: test 123"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", "debug", true},
		{"info logs at debug level", "debug", "info", true},
		{"debug doesn't log at info level", "info", "debug", false},
		{"info logs at info level", "info", "info", true},
		{"error always logs", "debug", "error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.configLevel).(*implLogger)
			result := log.shouldLog(tt.logLevel)
			if result != tt.shouldLog {
				t.Errorf("shouldLog() = %v, want %v", result, tt.shouldLog)
			}
		})
	}
}

func TestJSONFormatIncludesJobID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("debug", FormatJSON, &buf)

	ctx := ContextWithJobID(context.Background(), "abc123")
	log.Info(ctx, "transcribing segment %d", 2)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "transcribing segment 2" {
		t.Errorf("msg = %v", line["msg"])
	}
	if line["job_id"] != "abc123" {
		t.Errorf("job_id = %v, want abc123", line["job_id"])
	}
	if line["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", line["level"])
	}
}

func TestTextFormatIncludesJobID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("info", FormatText, &buf)

	log.Warn(ContextWithJobID(context.Background(), "big1"), "slow segment")

	if !strings.Contains(buf.String(), "[big1] slow segment") {
		t.Errorf("output = %q, want job tag", buf.String())
	}
}
