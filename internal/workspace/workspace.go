// Package workspace loads a C# project from disk into the program model the
// pipeline runs on and writes rewritten files back.
package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"nrtrewriter/internal/crawler"
	"nrtrewriter/internal/extractor"
	"nrtrewriter/internal/pipeline"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"

	"github.com/viant/afs"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrAmbiguousProject = errors.New("project name is ambiguous")
)

type Options struct {
	// Ignored directory names; empty means crawler.DefaultIgnored.
	Ignored []string
	Logger  *slog.Logger
	FS      afs.Service
}

// Workspace is a parsed project. It is read-only after Open and safe for
// concurrent use by the pipeline.
type Workspace struct {
	Root    string
	Project string
	docs    []pipeline.Document
	oracle  *semantic.Workspace
	fs      afs.Service
	logger  *slog.Logger
}

// Open finds the single `<projectName>.csproj` under root and parses every
// C# file in its directory tree. Files that fail to parse are kept as
// documents without a unit.
func Open(ctx context.Context, root, projectName string, opts Options) (*Workspace, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.FS == nil {
		opts.FS = afs.New()
	}
	c := crawler.NewCrawler(opts.Ignored...)

	projects, err := c.FindProjects(root, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", root, err)
	}
	switch len(projects) {
	case 0:
		return nil, fmt.Errorf("%w: %s.csproj under %s", ErrProjectNotFound, projectName, root)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s matches %s", ErrAmbiguousProject, projectName, strings.Join(projects, ", "))
	}

	ext, err := extractor.NewExtractor("csharp", extractor.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}

	w := &Workspace{Root: root, Project: projects[0], fs: opts.FS, logger: opts.Logger}
	var units []*syntax.Unit
	err = c.ScanProject(filepath.Dir(w.Project), func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		src, err := w.fs.DownloadWithURL(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		unit, err := ext.Extract(ctx, path, src)
		if err != nil {
			w.logger.Warn("failed to parse file", "path", path, "error", err)
			w.docs = append(w.docs, pipeline.Document{Path: path})
			return nil
		}
		w.docs = append(w.docs, pipeline.Document{Path: path, Unit: unit})
		units = append(units, unit)
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.oracle = semantic.NewWorkspace(units)
	types, methods := w.oracle.Stats()
	w.logger.Info("loaded project", "project", w.Project, "files", len(w.docs), "types", types, "methods", methods)
	return w, nil
}

func (w *Workspace) Documents(ctx context.Context) ([]pipeline.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.docs, nil
}

func (w *Workspace) ModelFor(unit *syntax.Unit) (semantic.Model, error) {
	if unit == nil {
		return nil, pipeline.ErrMissingSemanticContext
	}
	return w.oracle.ModelFor(unit), nil
}

func (w *Workspace) Solution(units []*syntax.Unit) (semantic.Solution, error) {
	return semantic.NewWorkspace(units), nil
}

// Writer returns a FileWriter sharing the workspace's file system.
func (w *Workspace) Writer() *FileWriter {
	return NewFileWriter(w.fs)
}

// FileWriter renders a rewritten unit over its original text and replaces
// the whole file.
type FileWriter struct {
	fs afs.Service
}

func NewFileWriter(fs afs.Service) *FileWriter {
	if fs == nil {
		fs = afs.New()
	}
	return &FileWriter{fs: fs}
}

func (f *FileWriter) Write(ctx context.Context, original, updated *syntax.Unit) error {
	if original == updated {
		return nil
	}
	out := syntax.Render(original, updated)
	if err := f.fs.Upload(ctx, updated.Path, 0o644, bytes.NewReader(out)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", updated.Path, err)
	}
	return nil
}
