package hooks

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/output/events"
)

func TestOrDefault_NilReturnsDefault(t *testing.T) {
	if orDefault(nil) != slog.Default() {
		t.Error("orDefault(nil) should return slog.Default()")
	}
}

func TestOrDefault_NonNilReturnsInput(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if orDefault(custom) != custom {
		t.Error("orDefault should return the provided logger")
	}
}

func TestLoggerHook_LogsFinding(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hook := NewLoggerHook(logger)

	ev := events.NewFinding("r9", finding.Finding{
		TemplateID: "git-config-exposure",
		Severity:   finding.Medium,
		Host:       "dev.example.com",
		Category:   "Information Disclosure",
	})
	if err := hook.OnEvent(context.Background(), ev); err != nil {
		t.Fatalf("OnEvent: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"git-config-exposure", "medium", "dev.example.com", "r9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}

func TestLoggerHook_FatalErrorLogsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	hook := NewLoggerHook(logger)

	ev := &events.ErrorEvent{
		BaseEvent: events.NewBase(events.EventTypeError, "r9"),
		Stage:     "supervisor",
		ErrorType: "launch",
		Message:   "binary not found",
		Fatal:     true,
	}
	if err := hook.OnEvent(context.Background(), ev); err != nil {
		t.Fatalf("OnEvent: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("fatal error not logged at error level: %s", out)
	}
	if !strings.Contains(out, "binary not found") {
		t.Errorf("log line missing message: %s", out)
	}
}

func TestLoggerHook_AssetLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	hook := NewLoggerHook(logger)

	ev := events.NewAsset("r9", asset.Record{Identifier: "quiet.example.com"})
	if err := hook.OnEvent(context.Background(), ev); err != nil {
		t.Fatalf("OnEvent: %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("asset event logged above debug level: %s", buf.String())
	}
}

func TestLoggerHook_ReceivesAllEventTypes(t *testing.T) {
	hook := NewLoggerHook(nil)
	if types := hook.EventTypes(); types != nil {
		t.Errorf("EventTypes = %v, want nil (all events)", types)
	}
}
