package events

import (
	"strings"
	"testing"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/jsonutil"
)

func TestEventInterface(t *testing.T) {
	t.Parallel()

	evs := []Event{
		&RunStartEvent{BaseEvent: NewBase(EventTypeRunStart, "r1"), Target: "example.com"},
		NewAsset("r1", asset.Record{Identifier: "a.example.com"}),
		NewFinding("r1", finding.Finding{TemplateID: "tls-version"}),
		&ErrorEvent{BaseEvent: NewBase(EventTypeError, "r1"), Stage: "ingest"},
		&SummaryEvent{BaseEvent: NewBase(EventTypeSummary, "r1"), Target: "example.com"},
		&CompleteEvent{BaseEvent: NewBase(EventTypeComplete, "r1")},
	}

	want := []EventType{
		EventTypeRunStart,
		EventTypeAsset,
		EventTypeFinding,
		EventTypeError,
		EventTypeSummary,
		EventTypeComplete,
	}

	for i, ev := range evs {
		if ev.EventType() != want[i] {
			t.Errorf("event %d: type = %q, want %q", i, ev.EventType(), want[i])
		}
		if ev.RunID() != "r1" {
			t.Errorf("event %d: run ID = %q, want r1", i, ev.RunID())
		}
		if ev.Timestamp().IsZero() {
			t.Errorf("event %d: timestamp is zero", i)
		}
	}
}

func TestEventJSONFields(t *testing.T) {
	t.Parallel()

	ev := NewAsset("run-42", asset.Record{Identifier: "api.example.com", Source: "crtsh"})
	data, err := jsonutil.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	for _, field := range []string{`"type":"asset"`, `"run_id":"run-42"`, `"subdomain":"api.example.com"`} {
		if !strings.Contains(out, field) {
			t.Errorf("marshaled event missing %s: %s", field, out)
		}
	}
}
