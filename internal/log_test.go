package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestLoggerLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	l := NewLogger(LogLevelWarn)

	l.Error("broke: %d", 1)
	l.Warn("degraded")
	l.Info("routine")
	l.Debug("detail")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] broke: 1") {
		t.Error("error line missing")
	}
	if !strings.Contains(out, "[WARN] degraded") {
		t.Error("warn line missing")
	}
	if strings.Contains(out, "routine") || strings.Contains(out, "detail") {
		t.Errorf("lines above the configured level were emitted:\n%s", out)
	}
}

func TestLoggerComponentTag(t *testing.T) {
	buf := captureLog(t)
	base := NewLogger(LogLevelInfo)
	scoped := base.WithComponent("ladder")

	scoped.Info("attempt failed")
	if !strings.Contains(buf.String(), "component=ladder attempt failed") {
		t.Errorf("component tag missing: %q", buf.String())
	}

	buf.Reset()
	base.Info("untagged")
	if strings.Contains(buf.String(), "component=") {
		t.Errorf("base logger picked up a component: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"error", LogLevelError},
		{"WARN", LogLevelWarn},
		{" debug ", LogLevelDebug},
		{"info", LogLevelInfo},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}
	for _, tt := range cases {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
