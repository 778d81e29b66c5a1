// Package archive persists completed scan runs to a local SQLite
// database for later listing and inspection. Findings are deduplicated
// per run by a murmur3 fingerprint over template ID, host, and match
// location, so re-saving a run or a scanner that reports the same match
// twice never inflates the archive.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spaolacci/murmur3"
	_ "modernc.org/sqlite"

	"github.com/recontriage/recontriage/pkg/finding"
	"github.com/recontriage/recontriage/pkg/jsonutil"
)

// ErrNotFound indicates the requested run ID is not in the archive.
var ErrNotFound = errors.New("archive: run not found")

// Run is the stored metadata of one completed pipeline run.
type Run struct {
	ID          string
	Target      string
	StartedAt   time.Time
	CompletedAt time.Time
	Assets      int
	NewAssets   int
	Findings    int
	ExitReason  string
}

// Store is a SQLite-backed run archive. Safe for use from one process;
// the connection pool is capped at a single connection and the database
// runs in WAL mode with a busy timeout, matching the single-operator
// deployment model.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the archive database at path and ensures the
// schema exists. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("archive: path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("archive: %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	target TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	completed_at INTEGER NOT NULL,
	asset_count INTEGER NOT NULL,
	new_asset_count INTEGER NOT NULL,
	finding_count INTEGER NOT NULL,
	exit_reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
	run_id TEXT NOT NULL REFERENCES runs(id),
	fingerprint TEXT NOT NULL,
	template TEXT NOT NULL,
	template_id TEXT NOT NULL,
	severity TEXT NOT NULL,
	host TEXT NOT NULL,
	matched_at TEXT NOT NULL,
	reported_at TEXT NOT NULL,
	tags TEXT NOT NULL,
	category TEXT NOT NULL,
	remediation TEXT NOT NULL,
	PRIMARY KEY (run_id, fingerprint)
);
`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("archive: init schema: %w", err)
	}
	return nil
}

// Fingerprint returns the dedup key for a finding: a murmur3 hash over
// template ID, host, and match location.
func Fingerprint(f finding.Finding) string {
	sum := murmur3.Sum64([]byte(f.TemplateID + "|" + f.Host + "|" + f.MatchedAt))
	return fmt.Sprintf("%016x", sum)
}

// SaveRun stores run metadata and its findings in one transaction.
// Findings already present for the run are updated in place, so the
// call is idempotent. The stored finding count reflects the
// deduplicated set, not the raw input length.
func (s *Store) SaveRun(ctx context.Context, run Run, findings []finding.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin tx: %w", err)
	}
	defer tx.Rollback()

	const upsertRun = `
INSERT INTO runs (id, target, started_at, completed_at, asset_count, new_asset_count, finding_count, exit_reason)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	target = excluded.target,
	started_at = excluded.started_at,
	completed_at = excluded.completed_at,
	asset_count = excluded.asset_count,
	new_asset_count = excluded.new_asset_count,
	finding_count = excluded.finding_count,
	exit_reason = excluded.exit_reason;
`
	_, err = tx.ExecContext(ctx, upsertRun,
		run.ID,
		run.Target,
		run.StartedAt.UTC().Unix(),
		run.CompletedAt.UTC().Unix(),
		run.Assets,
		run.NewAssets,
		len(findings),
		run.ExitReason,
	)
	if err != nil {
		return fmt.Errorf("archive: upsert run: %w", err)
	}

	const upsertFinding = `
INSERT INTO findings (run_id, fingerprint, template, template_id, severity, host, matched_at, reported_at, tags, category, remediation)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, fingerprint) DO UPDATE SET
	template = excluded.template,
	severity = excluded.severity,
	reported_at = excluded.reported_at,
	tags = excluded.tags,
	category = excluded.category,
	remediation = excluded.remediation;
`
	stmt, err := tx.PrepareContext(ctx, upsertFinding)
	if err != nil {
		return fmt.Errorf("archive: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		tags, err := jsonutil.Marshal(f.Tags)
		if err != nil {
			return fmt.Errorf("archive: encode tags: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			run.ID,
			Fingerprint(f),
			f.Template,
			f.TemplateID,
			string(f.Severity),
			f.Host,
			f.MatchedAt,
			f.Timestamp,
			string(tags),
			f.Category,
			f.Remediation,
		)
		if err != nil {
			return fmt.Errorf("archive: upsert finding %s: %w", f.Host, err)
		}
	}

	// Recount after dedup so the run row matches what a later
	// FindingsByRun will actually return.
	const recount = `
UPDATE runs SET finding_count = (SELECT COUNT(*) FROM findings WHERE run_id = ?) WHERE id = ?;
`
	if _, err := tx.ExecContext(ctx, recount, run.ID, run.ID); err != nil {
		return fmt.Errorf("archive: recount findings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

// ListRuns returns stored runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	const query = `
SELECT id, target, started_at, completed_at, asset_count, new_asset_count, finding_count, exit_reason
FROM runs ORDER BY started_at DESC, id;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("archive: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: list runs: %w", err)
	}
	return out, nil
}

// RunByID returns the stored metadata for one run. Unknown IDs yield
// ErrNotFound.
func (s *Store) RunByID(ctx context.Context, id string) (Run, error) {
	const query = `
SELECT id, target, started_at, completed_at, asset_count, new_asset_count, finding_count, exit_reason
FROM runs WHERE id = ?;
`
	row := s.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// FindingsByRun returns the deduplicated findings of a run in insert
// order. A run with no findings yields an empty slice; an unknown run
// yields ErrNotFound.
func (s *Store) FindingsByRun(ctx context.Context, runID string) ([]finding.Finding, error) {
	if _, err := s.RunByID(ctx, runID); err != nil {
		return nil, err
	}

	const query = `
SELECT template, template_id, severity, host, matched_at, reported_at, tags, category, remediation
FROM findings WHERE run_id = ? ORDER BY rowid;
`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("archive: query findings: %w", err)
	}
	defer rows.Close()

	out := []finding.Finding{}
	for rows.Next() {
		var f finding.Finding
		var severity, tags string
		err := rows.Scan(&f.Template, &f.TemplateID, &severity, &f.Host,
			&f.MatchedAt, &f.Timestamp, &tags, &f.Category, &f.Remediation)
		if err != nil {
			return nil, fmt.Errorf("archive: scan finding: %w", err)
		}
		f.Severity = finding.Severity(severity)
		if err := jsonutil.Unmarshal([]byte(tags), &f.Tags); err != nil {
			return nil, fmt.Errorf("archive: decode tags: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: query findings: %w", err)
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows for run hydration.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var started, completed int64
	err := row.Scan(&run.ID, &run.Target, &started, &completed,
		&run.Assets, &run.NewAssets, &run.Findings, &run.ExitReason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("archive: scan run: %w", err)
	}
	run.StartedAt = time.Unix(started, 0).UTC()
	run.CompletedAt = time.Unix(completed, 0).UTC()
	return run, nil
}
