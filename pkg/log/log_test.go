package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestZerologProviderEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(&buf, LevelInfo)
	logger := provider.GetLogger()

	logger.Info("upload finished",
		DatasetIDKey, "ds-12",
		SamplesKey, 243,
	)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "upload finished" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry[DatasetIDKey] != "ds-12" {
		t.Errorf("%s = %v", DatasetIDKey, entry[DatasetIDKey])
	}
	if entry[SamplesKey] != float64(243) {
		t.Errorf("%s = %v", SamplesKey, entry[SamplesKey])
	}
}

func TestZerologLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(&buf, LevelWarn)
	logger := provider.GetLogger()

	logger.Info("should be dropped")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be dropped") {
		t.Error("info record leaked through warn-level logger")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn record missing")
	}
}

func TestZerologErrorWithStacktrace(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(&buf, LevelInfo)
	logger := provider.GetLogger()

	err := errors.New("boom")
	logger.Error("request failed", err, PathKey, "/api/datasets")

	out := buf.String()
	if !strings.Contains(out, "boom") {
		t.Errorf("error message missing from output: %q", out)
	}
	if !strings.Contains(out, StacktraceAttrKey) {
		t.Errorf("stacktrace attribute missing from output: %q", out)
	}
}

func TestWithChaining(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(&buf, LevelInfo)
	logger := provider.GetLogger().With(ViewIDKey, "view-7")

	logger.Info("poll", JobStatusKey, "running")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry[ViewIDKey] != "view-7" {
		t.Errorf("chained field missing: %v", entry)
	}
	if entry[JobStatusKey] != "running" {
		t.Errorf("call field missing: %v", entry)
	}
}

func TestEnabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewProvider(&buf, LevelWarn).GetLogger()

	if logger.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be disabled at warn level")
	}
	if !logger.Enabled(context.Background(), LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTestLoggerCapture(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	logger.Info("design run submitted", RunIDKey, "run-1")
	logger.Debug("poll", PollCountKey, 2)

	entries, err := logger.GetLogEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("captured %d entries, want 2", len(entries))
	}
	if !logger.ContainsField(RunIDKey, "run-1") {
		t.Error("run id field missing")
	}
	if !logger.ContainsMessage("design run submitted") {
		t.Error("message missing")
	}
}
