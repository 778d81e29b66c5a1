package hooks

import (
	"context"
	"testing"

	"github.com/recontriage/recontriage/pkg/defaults"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/output/events"
)

// The OTLP exporter connects lazily, so these tests run without a
// collector; export failures surface only at shutdown and are ignored.

func newTestOTelHook(t *testing.T) *OTelHook {
	t.Helper()
	hook, err := NewOTelHook(OTelOptions{
		Endpoint: "localhost:14317",
		Insecure: true,
	})
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	return hook
}

func TestOTelHook_Defaults(t *testing.T) {
	hook, err := NewOTelHook(OTelOptions{Insecure: true})
	if err != nil {
		t.Fatalf("create hook: %v", err)
	}
	defer hook.Close()

	if hook.Endpoint() != "localhost:4317" {
		t.Errorf("default endpoint = %q, want localhost:4317", hook.Endpoint())
	}
	if hook.opts.ServiceName != defaults.ToolName {
		t.Errorf("default service name = %q, want %q", hook.opts.ServiceName, defaults.ToolName)
	}
}

func TestOTelHook_EventTypes(t *testing.T) {
	hook := newTestOTelHook(t)
	defer hook.Close()

	types := hook.EventTypes()
	want := map[events.EventType]bool{
		events.EventTypeRunStart: true,
		events.EventTypeFinding:  true,
		events.EventTypeError:    true,
		events.EventTypeSummary:  true,
		events.EventTypeComplete: true,
	}
	if len(types) != len(want) {
		t.Fatalf("EventTypes returned %d types, want %d", len(types), len(want))
	}
	for _, et := range types {
		if !want[et] {
			t.Errorf("unexpected event type %q", et)
		}
	}
	for _, et := range types {
		if et == events.EventTypeAsset {
			t.Error("asset events must not reach the trace hook")
		}
	}
}

func TestOTelHook_FullRunLifecycle(t *testing.T) {
	hook := newTestOTelHook(t)
	defer hook.Close()

	ctx := context.Background()
	runEvents := []events.Event{
		&events.RunStartEvent{
			BaseEvent: events.NewBase(events.EventTypeRunStart, "r1"),
			Target:    "example.com",
			Tool:      "recon-engine",
		},
		events.NewFinding("r1", finding.Finding{
			TemplateID: "exposed-panel",
			Severity:   finding.High,
			Host:       "admin.example.com",
		}),
		&events.ErrorEvent{
			BaseEvent: events.NewBase(events.EventTypeError, "r1"),
			Stage:     "history",
			ErrorType: "persist",
			Message:   "disk full",
		},
		&events.SummaryEvent{
			BaseEvent:  events.NewBase(events.EventTypeSummary, "r1"),
			Target:     "example.com",
			Totals:     events.SummaryTotals{Assets: 4, Findings: 1},
			ExitReason: "completed",
		},
		&events.CompleteEvent{BaseEvent: events.NewBase(events.EventTypeComplete, "r1")},
	}

	for i, ev := range runEvents {
		if err := hook.OnEvent(ctx, ev); err != nil {
			t.Fatalf("event %d: OnEvent: %v", i, err)
		}
	}

	if hook.rootSpan != nil {
		t.Error("root span still open after complete event")
	}
}

func TestOTelHook_FindingWithoutStartIsIgnored(t *testing.T) {
	hook := newTestOTelHook(t)
	defer hook.Close()

	err := hook.OnEvent(context.Background(), events.NewFinding("r1", finding.Finding{TemplateID: "x"}))
	if err != nil {
		t.Errorf("finding without run start = %v, want nil", err)
	}
}

func TestOTelHook_CloseIsIdempotent(t *testing.T) {
	hook := newTestOTelHook(t)

	if err := hook.Close(); err != nil {
		t.Logf("first Close: %v (export failure without collector is fine)", err)
	}
	if err := hook.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}
}

func TestOTelHook_IgnoresEventsAfterClose(t *testing.T) {
	hook := newTestOTelHook(t)
	_ = hook.Close()

	err := hook.OnEvent(context.Background(), &events.RunStartEvent{
		BaseEvent: events.NewBase(events.EventTypeRunStart, "r1"),
	})
	if err != nil {
		t.Errorf("OnEvent after Close = %v, want nil", err)
	}
	if hook.rootSpan != nil {
		t.Error("span opened after Close")
	}
}
