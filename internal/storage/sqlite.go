package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nrtrewriter/internal/pipeline"
	"nrtrewriter/internal/syntax"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ AuditStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT,
			project TEXT,
			started_at TEXT,
			dry_run INTEGER,
			documents INTEGER,
			changed INTEGER,
			edits INTEGER,
			skipped INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id TEXT,
			path TEXT,
			before_hash TEXT,
			after_hash TEXT,
			edits JSON,
			PRIMARY KEY (run_id, path)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, files []FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, project, started_at, dry_run, documents, changed, edits, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			documents=excluded.documents,
			changed=excluded.changed,
			edits=excluded.edits,
			skipped=excluded.skipped
	`, run.ID, run.Root, run.Project, run.StartedAt.UTC().Format(time.RFC3339Nano), run.DryRun,
		run.Documents, run.Changed, run.Edits, run.Skipped)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO files (run_id, path, before_hash, after_hash, edits)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, path) DO UPDATE SET
			before_hash=excluded.before_hash,
			after_hash=excluded.after_hash,
			edits=excluded.edits
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range files {
		edits, err := json.Marshal(f.Edits)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, run.ID, f.Path, f.Before, f.After, string(edits)); err != nil {
			return fmt.Errorf("failed to save file %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, project, started_at, dry_run, documents, changed, edits, skipped
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Root, &r.Project, &started, &r.DryRun, &r.Documents, &r.Changed, &r.Edits, &r.Skipped); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s has a bad timestamp: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Files(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, before_hash, after_hash, edits FROM files WHERE run_id = ? ORDER BY path
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		f := FileRecord{RunID: runID}
		var edits string
		if err := rows.Scan(&f.Path, &f.Before, &f.After, &edits); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(edits), &f.Edits); err != nil {
			return nil, fmt.Errorf("file %s has bad edits: %w", f.Path, err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// FileRecords fingerprints the changes of a run: the original text and the
// text the writer renders from it.
func FileRecords(runID string, changes []pipeline.Change) ([]FileRecord, error) {
	out := make([]FileRecord, 0, len(changes))
	for _, c := range changes {
		before, err := Fingerprint(c.Original.Source)
		if err != nil {
			return nil, err
		}
		after, err := Fingerprint(syntax.Render(c.Original, c.Updated))
		if err != nil {
			return nil, err
		}
		out = append(out, FileRecord{RunID: runID, Path: c.Path, Before: before, After: after, Edits: c.Edits})
	}
	return out, nil
}
