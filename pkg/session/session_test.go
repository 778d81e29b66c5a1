package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recontriage/recontriage/pkg/asset"
	"github.com/recontriage/recontriage/pkg/finding"
)

func TestNewRunState(t *testing.T) {
	st := New("example.com")

	_, err := uuid.Parse(st.ID)
	require.NoError(t, err, "run ID should be a uuid")
	assert.Equal(t, "example.com", st.Target)
	assert.Equal(t, StatusPending, st.Status())
	assert.Zero(t, st.RecordCount())
	assert.NotNil(t, st.Selection())
	assert.False(t, st.StartedAt.IsZero())
}

func TestRecordAccumulationAndRetag(t *testing.T) {
	st := New("example.com")
	st.AddRecord(asset.Record{Identifier: "a.example.com"})
	st.AddRecord(asset.Record{Identifier: "b.example.com"})
	assert.Equal(t, 2, st.RecordCount())

	tagged := []asset.Record{
		{Identifier: "a.example.com", IsNew: true},
		{Identifier: "b.example.com"},
	}
	st.SetRecords(tagged)

	got := st.Records()
	require.Len(t, got, 2)
	assert.True(t, got[0].IsNew)
	assert.False(t, got[1].IsNew)

	// Both directions are copies: mutating either side must not leak.
	tagged[1].Identifier = "mutated"
	got[0].Identifier = "mutated"
	fresh := st.Records()
	assert.Equal(t, "a.example.com", fresh[0].Identifier)
	assert.Equal(t, "b.example.com", fresh[1].Identifier)
}

func TestIngestStatsAndStatus(t *testing.T) {
	st := New("example.com")
	st.SetIngestStats(3, 1)
	newCount, skipped := st.IngestStats()
	assert.Equal(t, 3, newCount)
	assert.Equal(t, 1, skipped)

	st.SetStatus(StatusScanning)
	assert.Equal(t, StatusScanning, st.Status())
}

func TestFindingsLifecycle(t *testing.T) {
	st := New("example.com")
	st.AddFindings(
		finding.Finding{Template: "Exposed Panel", Host: "a.example.com"},
		finding.Finding{Template: "TLS 1.0", Host: "b.example.com"},
	)
	require.Len(t, st.Findings(), 2)

	st.SetFindings([]finding.Finding{{Template: "Only", Host: "c.example.com"}})
	got := st.Findings()
	require.Len(t, got, 1)
	assert.Equal(t, "Only", got[0].Template)
}

func TestConcurrentAppendAndCount(t *testing.T) {
	st := New("example.com")
	const total = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			st.AddRecord(asset.Record{Identifier: "host"})
		}
	}()

	deadline := time.After(5 * time.Second)
	for st.RecordCount() < total {
		select {
		case <-deadline:
			t.Fatalf("record count stuck at %d", st.RecordCount())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	wg.Wait()
	assert.Equal(t, total, st.RecordCount())
}

func writeStageFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRecordsFromExport(t *testing.T) {
	content := `{"type":"run_start","timestamp":"2025-03-01T10:00:00Z","run_id":"run-1","target":"example.com","tool":"recon-engine"}
{"type":"asset","timestamp":"2025-03-01T10:00:01Z","run_id":"run-1","record":{"subdomain":"api.example.com","timestamp":"2025-03-01 10:00:01","status_code":200,"tech_stack":["nginx"],"is_new":true}}

{"type":"asset","timestamp":"2025-03-01T10:00:02Z","run_id":"run-1","record":{"subdomain":"old.example.com","status_code":301}}
{"type":"summary","timestamp":"2025-03-01T10:00:03Z","run_id":"run-1","target":"example.com"}
{"type":"complete","timestamp":"2025-03-01T10:00:03Z","run_id":"run-1"}
`
	path := writeStageFile(t, "assets.jsonl", content)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "api.example.com", records[0].Identifier)
	assert.True(t, records[0].IsNew)
	assert.Equal(t, []string{"nginx"}, records[0].TechStack)
	assert.Equal(t, "old.example.com", records[1].Identifier)
	assert.False(t, records[1].IsNew)
}

func TestLoadRecordsBareLines(t *testing.T) {
	content := `{"subdomain":"a.example.com","timestamp":"2025-03-01 10:00:00","status_code":200}
{"note":"not a record"}
{"subdomain":"b.example.com"}
`
	path := writeStageFile(t, "bare.jsonl", content)

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a.example.com", records[0].Identifier)
	assert.Equal(t, "b.example.com", records[1].Identifier)
}

func TestLoadRecordsMalformedLine(t *testing.T) {
	content := `{"subdomain":"a.example.com"}
{oops
`
	path := writeStageFile(t, "broken.jsonl", content)

	_, err := LoadRecords(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadRecordsMissingFile(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestLoadFindingsMixedShapes(t *testing.T) {
	content := `{"type":"run_start","timestamp":"2025-03-01T11:00:00Z","run_id":"run-2","target":"example.com","tool":"nuclei"}
{"type":"finding","timestamp":"2025-03-01T11:00:05Z","run_id":"run-2","finding":{"template":"Exposed Panel","template_id":"panel-detect","severity":"high","host":"api.example.com","tags":["panel","exposure"],"category":"Security Misconfiguration"}}
{"template":"TLS 1.0 Enabled","severity":"low","host":"old.example.com"}
{"type":"summary","timestamp":"2025-03-01T11:00:06Z","run_id":"run-2","target":"example.com"}
`
	path := writeStageFile(t, "findings.jsonl", content)

	findings, err := LoadFindings(path)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "Exposed Panel", findings[0].Template)
	assert.Equal(t, finding.High, findings[0].Severity)
	assert.Equal(t, "Security Misconfiguration", findings[0].Category)
	assert.Equal(t, "old.example.com", findings[1].Host)
}
