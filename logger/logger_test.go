package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return m
}

func TestInfoWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info").WithComponent("llm")

	l.Info("generate finished", Fields(FieldProvider, "openai", FieldDuration, 12))

	m := decodeLine(t, &buf)
	if m["message"] != "generate finished" {
		t.Errorf("message = %v", m["message"])
	}
	if m[FieldComponent] != "llm" || m[FieldProvider] != "openai" || m["service"] != "test-svc" {
		t.Errorf("missing fields in %v", m)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")

	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message not written: %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "loud")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWithErrorAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").
		WithFields(map[string]interface{}{FieldModel: "m"}).
		WithError(errors.New("boom"))
	l.Error("failed")

	m := decodeLine(t, &buf)
	if m[FieldModel] != "m" || m["error"] != "boom" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestNopAndGlobalDefault(t *testing.T) {
	SetGlobalLogger(nil)
	// Must not panic and must not write anywhere.
	Info("nothing")
	Get("anything").Warn("nothing")
	Nop().Error("nothing")
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	Register("custom", l)

	Get("custom").Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("registered logger not returned: %q", buf.String())
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	bad := Config{Level: "verbose", Format: "json"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
	bad = Config{Level: "info", Format: "xml"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid format error")
	}
	if err := Init(Config{Level: "nope"}); err == nil {
		t.Error("Init should reject invalid config")
	}
	SetGlobalLogger(nil)
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, 2, "skipped", "dangling")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("Fields() = %v", f)
	}
	ef := ErrorFields("generate", errors.New("x"))
	if ef[FieldOperation] != "generate" || ef[FieldError] != "x" {
		t.Errorf("ErrorFields() = %v", ef)
	}
	df := DurationFields("generate", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("DurationFields() = %v", df)
	}
}
