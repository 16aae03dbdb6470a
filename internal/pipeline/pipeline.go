// Package pipeline runs the annotator passes over a whole program: every file
// in parallel, then the inheritance pass over the committed units, then the
// writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nrtrewriter/internal/annotator"
	"nrtrewriter/internal/inheritance"
	"nrtrewriter/internal/syntax"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("nrtrewriter.pipeline")

// InheritancePass is the name edits of the inheritance pass are counted under.
const InheritancePass = "inheritance"

type Options struct {
	// Workers bounds the number of files annotated at once. Zero or less
	// means one.
	Workers    int
	DryRun     bool
	Annotators []annotator.Annotator
	Writer     Writer
	Logger     *slog.Logger
}

type Pipeline struct {
	workers    int
	dryRun     bool
	annotators []annotator.Annotator
	writer     Writer
	logger     *slog.Logger
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		workers:    opts.Workers,
		dryRun:     opts.DryRun,
		annotators: opts.Annotators,
		writer:     opts.Writer,
		logger:     opts.Logger,
	}
	if p.workers <= 0 {
		p.workers = 1
	}
	if p.annotators == nil {
		p.annotators = annotator.Default(annotator.Options{Properties: true})
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Result summarizes one run.
type Result struct {
	Documents   int
	Changes     []Change
	Skipped     []Skipped
	Edits       map[string]int
	Inheritance inheritance.Stats
	Written     int
	Duration    time.Duration
}

// TotalEdits is the number of annotations added across all changes.
func (r *Result) TotalEdits() int {
	n := 0
	for _, c := range r.Changes {
		n += len(c.Edits)
	}
	return n
}

type fileOutcome struct {
	unit   *syntax.Unit
	counts map[string]int
	err    error
}

// Run annotates the program. A file whose passes fail is skipped and keeps
// its original tree; a failure of the inheritance pass or a write failure
// ends the run. On a write failure the returned result still lists every
// change.
func (p *Pipeline) Run(ctx context.Context, prog Program) (*Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	docs, err := prog.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	res := &Result{Documents: len(docs), Edits: make(map[string]int)}

	outcomes, err := p.annotateStage(ctx, prog, docs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	committed := make([]*syntax.Unit, 0, len(docs))
	for i, doc := range docs {
		o := outcomes[i]
		if o.err != nil {
			res.Skipped = append(res.Skipped, Skipped{Path: doc.Path, Err: o.err})
			p.logger.Warn("skipping file", "path", doc.Path, "error", o.err)
			if doc.Unit != nil {
				committed = append(committed, doc.Unit)
			}
			continue
		}
		for name, n := range o.counts {
			res.Edits[name] += n
		}
		committed = append(committed, o.unit)
	}

	final, err := p.inheritanceStage(ctx, prog, committed, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res.Changes = changesStage(docs, final)
	res.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("documents", res.Documents),
		attribute.Int("changes", len(res.Changes)),
		attribute.Int("edits", res.TotalEdits()),
	)

	if err := p.writeStage(ctx, res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	p.logger.Info("run complete",
		"documents", res.Documents,
		"changed", len(res.Changes),
		"edits", res.TotalEdits(),
		"skipped", len(res.Skipped),
		"written", res.Written,
		"dry_run", p.dryRun,
		"duration", res.Duration)
	return res, nil
}

// annotateStage runs the per-file passes. Each goroutine owns one document
// and stores its outcome by index.
func (p *Pipeline) annotateStage(ctx context.Context, prog Program, docs []Document) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, doc := range docs {
		if doc.Unit == nil {
			outcomes[i] = fileOutcome{err: fmt.Errorf("%s: %w", doc.Path, ErrMissingSemanticContext)}
			continue
		}
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			unit, counts, err := p.annotateFile(gctx, prog, doc)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			outcomes[i] = fileOutcome{unit: unit, counts: counts, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("annotation interrupted: %w", err)
	}
	return outcomes, nil
}

func (p *Pipeline) annotateFile(ctx context.Context, prog Program, doc Document) (*syntax.Unit, map[string]int, error) {
	ctx, span := tracer.Start(ctx, "pipeline.annotateFile", trace.WithAttributes(attribute.String("path", doc.Path)))
	defer span.End()

	unit := doc.Unit
	counts := make(map[string]int, len(p.annotators))
	for _, a := range p.annotators {
		model, err := prog.ModelFor(unit)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w: %v", doc.Path, ErrMissingSemanticContext, err)
		}
		if model == nil {
			return nil, nil, fmt.Errorf("%s: %w", doc.Path, ErrMissingSemanticContext)
		}
		next, err := a.Annotate(ctx, unit, model)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, nil, fmt.Errorf("%s pass failed on %s: %w", a.Name(), doc.Path, err)
		}
		if next != unit {
			counts[a.Name()] = len(syntax.Diff(unit, next))
		}
		unit = next
	}
	for name, n := range counts {
		span.SetAttributes(attribute.Int("edits."+name, n))
	}
	p.logger.Debug("annotated file", "path", doc.Path, "edits", counts)
	return unit, counts, nil
}

// inheritanceStage resolves method families over the committed units and
// applies the merged upward and downward slots.
func (p *Pipeline) inheritanceStage(ctx context.Context, prog Program, units []*syntax.Unit, res *Result) ([]*syntax.Unit, error) {
	solution, err := prog.Solution(units)
	if err != nil {
		return nil, fmt.Errorf("failed to build solution: %w", err)
	}
	if solution == nil {
		return nil, fmt.Errorf("failed to build solution: %w", ErrMissingSemanticContext)
	}
	resolved, err := inheritance.NewResolver(solution, p.logger).Resolve(ctx, units)
	if err != nil {
		return nil, fmt.Errorf("inheritance resolution failed: %w", err)
	}
	res.Inheritance = resolved.Stats

	var types inheritance.ValueTypes
	if vt, ok := solution.(inheritance.ValueTypes); ok {
		types = vt
	}
	applier := inheritance.NewAnnotator(inheritance.Merge(resolved.Upward(), resolved.Downward()), types)
	out := make([]*syntax.Unit, len(units))
	for i, u := range units {
		out[i] = applier.Apply(u)
		if out[i] != u {
			res.Edits[InheritancePass] += len(syntax.Diff(u, out[i]))
		}
	}
	return out, nil
}

// changesStage pairs every parsed document with its final tree.
func changesStage(docs []Document, final []*syntax.Unit) []Change {
	byPath := make(map[string]*syntax.Unit, len(final))
	for _, u := range final {
		byPath[u.Path] = u
	}
	var changes []Change
	for _, doc := range docs {
		if doc.Unit == nil {
			continue
		}
		updated, ok := byPath[doc.Unit.Path]
		if !ok || updated == doc.Unit {
			continue
		}
		edits := syntax.Diff(doc.Unit, updated)
		if len(edits) == 0 {
			continue
		}
		changes = append(changes, Change{Path: doc.Path, Original: doc.Unit, Updated: updated, Edits: edits})
	}
	return changes
}

func (p *Pipeline) writeStage(ctx context.Context, res *Result) error {
	if p.dryRun || p.writer == nil {
		return nil
	}
	for _, c := range res.Changes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.writer.Write(ctx, c.Original, c.Updated); err != nil {
			return &WriteError{Path: c.Path, Err: err}
		}
		res.Written++
		p.logger.Info("wrote changes", "path", c.Path, "edits", len(c.Edits))
	}
	return nil
}

// IsSkippable reports errors that only cost the affected file.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrMissingSemanticContext)
}
