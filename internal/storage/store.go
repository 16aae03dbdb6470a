package storage

import (
	"context"
	"time"

	"nrtrewriter/internal/syntax"

	"github.com/google/uuid"
)

// Run is one invocation of the rewriter.
type Run struct {
	ID        string
	Root      string
	Project   string
	StartedAt time.Time
	DryRun    bool
	Documents int
	Changed   int
	Edits     int
	Skipped   int
}

// NewRun starts a run record with a fresh identifier.
func NewRun(root, project string, dryRun bool) Run {
	return Run{
		ID:        uuid.NewString(),
		Root:      root,
		Project:   project,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
}

// FileRecord is the audit entry of one changed file. Before and After are
// content fingerprints of the file text around the rewrite.
type FileRecord struct {
	RunID  string
	Path   string
	Before string
	After  string
	Edits  []syntax.Edit
}

// AuditStore persists what a run changed. Nothing in a run reads it back.
type AuditStore interface {
	// SaveRun stores the run and its file records in one transaction.
	SaveRun(ctx context.Context, run Run, files []FileRecord) error

	// Runs lists the most recent runs first.
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Files returns the file records of a run ordered by path.
	Files(ctx context.Context, runID string) ([]FileRecord, error)

	Close() error
}
