// Package inheritance keeps nullable annotations consistent across method
// families: an interface method and its implementations, or a virtual method
// and its overrides.
package inheritance

import (
	"context"
	"fmt"
	"log/slog"

	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("nrtrewriter.inheritance")

// ReturnSlot names the return type in a slot list; every other slot is a
// parameter name.
const ReturnSlot = "#return"

// FamilySearch finds the members of the family whose canonical method is sym.
type FamilySearch interface {
	Name() string
	Search(ctx context.Context, solution semantic.Solution, sym semantic.Symbol) ([]semantic.Symbol, error)
}

type implementationSearch struct{}

func (implementationSearch) Name() string { return "implementations" }

func (implementationSearch) Search(ctx context.Context, s semantic.Solution, sym semantic.Symbol) ([]semantic.Symbol, error) {
	return s.FindImplementations(ctx, sym)
}

type overrideSearch struct{}

func (overrideSearch) Name() string { return "overrides" }

func (overrideSearch) Search(ctx context.Context, s semantic.Solution, sym semantic.Symbol) ([]semantic.Symbol, error) {
	return s.FindOverrides(ctx, sym)
}

// DefaultSearches looks for implementations first and falls back to
// overrides when there are none.
func DefaultSearches() []FamilySearch {
	return []FamilySearch{implementationSearch{}, overrideSearch{}}
}

// Stats describes one resolution pass.
type Stats struct {
	Methods   int
	Families  int
	Searches  int
	CacheHits int
	BySearch  map[string]int
}

// Family is a canonical method and the members found for it.
type Family struct {
	Canonical semantic.Declaration
	Members   []semantic.Declaration
}

// Resolver groups the methods of a program into families. The memo lives for
// one pass and is owned by the goroutine calling Resolve.
type Resolver struct {
	solution semantic.Solution
	searches []FamilySearch
	logger   *slog.Logger
	memo     map[semantic.Symbol][]semantic.Symbol
	stats    Stats
}

func NewResolver(solution semantic.Solution, logger *slog.Logger, searches ...FamilySearch) *Resolver {
	if len(searches) == 0 {
		searches = DefaultSearches()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{solution: solution, searches: searches, logger: logger}
}

// Resolve visits every method declared in units and returns the families
// found among them.
func (r *Resolver) Resolve(ctx context.Context, units []*syntax.Unit) (*Result, error) {
	ctx, span := tracer.Start(ctx, "inheritance.Resolve", trace.WithAttributes(
		attribute.Int("units", len(units)),
	))
	defer span.End()

	r.memo = make(map[semantic.Symbol][]semantic.Symbol)
	r.stats = Stats{BySearch: make(map[string]int)}

	var families []Family
	for _, u := range units {
		if u == nil {
			continue
		}
		for _, t := range u.AllTypes() {
			for _, m := range t.Methods() {
				r.stats.Methods++
				sym := r.solution.DeclaredSymbol(t, m)
				members, err := r.family(ctx, sym)
				if err != nil {
					span.RecordError(err)
					return nil, fmt.Errorf("resolve family of %s: %w", sym, err)
				}
				if len(members) == 0 {
					continue
				}
				fam := Family{Canonical: semantic.Declaration{Symbol: sym, Path: u.Path, Owner: t, Method: m}}
				for _, ms := range members {
					if d, ok := r.solution.DeclarationOf(ms); ok {
						fam.Members = append(fam.Members, d)
					}
				}
				if len(fam.Members) > 0 {
					families = append(families, fam)
				}
			}
		}
	}
	r.stats.Families = len(families)
	span.SetAttributes(attribute.Int("families", len(families)))

	r.logger.Info("inheritance resolved",
		"methods", r.stats.Methods,
		"families", r.stats.Families,
		"searches", r.stats.Searches,
		"cache_hits", r.stats.CacheHits,
	)
	return &Result{Families: families, Stats: r.stats}, nil
}

// family runs the searches in order and keeps the first non-empty answer.
func (r *Resolver) family(ctx context.Context, sym semantic.Symbol) ([]semantic.Symbol, error) {
	if members, ok := r.memo[sym]; ok {
		r.stats.CacheHits++
		return members, nil
	}
	var members []semantic.Symbol
	for _, s := range r.searches {
		r.stats.Searches++
		found, err := s.Search(ctx, r.solution, sym)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		if len(found) > 0 {
			r.stats.BySearch[s.Name()]++
			members = found
			break
		}
	}
	r.memo[sym] = members
	return members, nil
}
