package pipeline

import (
	"context"
	"errors"
	"fmt"

	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// ErrMissingSemanticContext marks a document that has no tree or no model.
// Such documents are skipped, not fatal.
var ErrMissingSemanticContext = errors.New("missing semantic context")

// ErrWriteFailure is matched by every *WriteError.
var ErrWriteFailure = errors.New("failed to write changes")

// WriteError reports the unit whose write failed. Units written before it
// stay written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write changes to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailure, e.Err}
}

// Document is one source file of the program. Unit is nil when the file
// could not be parsed.
type Document struct {
	Path string
	Unit *syntax.Unit
}

// Program is the loaded program model the pipeline runs on.
type Program interface {
	Documents(ctx context.Context) ([]Document, error)
	// ModelFor returns a model for the given version of a unit. The pipeline
	// asks again after every pass so the model always matches the tree.
	ModelFor(unit *syntax.Unit) (semantic.Model, error)
	// Solution builds the whole-program view over the committed units.
	Solution(units []*syntax.Unit) (semantic.Solution, error)
}

// Writer persists a rewritten unit.
type Writer interface {
	Write(ctx context.Context, original, updated *syntax.Unit) error
}

// Change is the outcome for one unit that gained annotations.
type Change struct {
	Path     string        `yaml:"path" json:"path"`
	Original *syntax.Unit  `yaml:"-" json:"-"`
	Updated  *syntax.Unit  `yaml:"-" json:"-"`
	Edits    []syntax.Edit `yaml:"edits" json:"edits"`
}

// Skipped is a document the per-file pass did not process.
type Skipped struct {
	Path string
	Err  error
}
