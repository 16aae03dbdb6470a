package semantic

import (
	"context"
	"fmt"

	"nrtrewriter/internal/syntax"
)

// FindImplementations returns the methods implementing sym in every class
// that transitively implements sym's interface. A symbol not declared on an
// interface has no implementations.
func (w *Workspace) FindImplementations(ctx context.Context, sym Symbol) ([]Symbol, error) {
	d, ok := w.DeclarationOf(sym)
	if !ok || d.Owner.Kind != syntax.KindInterface {
		return nil, nil
	}
	return w.matchingIn(ctx, d, func(t *syntax.TypeDecl, m *syntax.Method) bool {
		return t.IsClassLike() && !m.Modifiers.IsStatic()
	})
}

// FindOverrides returns the override methods of sym in classes transitively
// derived from sym's declaring class. Only virtual, abstract and override
// methods can be overridden.
func (w *Workspace) FindOverrides(ctx context.Context, sym Symbol) ([]Symbol, error) {
	d, ok := w.DeclarationOf(sym)
	if !ok || d.Owner.Kind == syntax.KindInterface || !d.Method.Modifiers.IsOverridable() {
		return nil, nil
	}
	return w.matchingIn(ctx, d, func(_ *syntax.TypeDecl, m *syntax.Method) bool {
		return m.Modifiers.Has("override")
	})
}

func (w *Workspace) matchingIn(ctx context.Context, d Declaration, accept func(*syntax.TypeDecl, *syntax.Method) bool) ([]Symbol, error) {
	var out []Symbol
	for _, t := range w.descendants(d.Owner) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search %s: %w", d.Symbol, err)
		}
		for _, m := range t.Methods() {
			if accept(t, m) && sameSignature(m, d.Method) {
				out = append(out, SymbolFor(t, m))
			}
		}
	}
	return out, nil
}

// descendants returns every source type that names t, directly or through
// other source types, in its base list.
func (w *Workspace) descendants(t *syntax.TypeDecl) []*syntax.TypeDecl {
	v := w.view()
	seen := map[*syntax.TypeDecl]bool{t: true}
	queue := []*syntax.TypeDecl{t}
	var out []*syntax.TypeDecl
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range v.derivedFrom(cur.Name) {
			if seen[e.decl] {
				continue
			}
			seen[e.decl] = true
			out = append(out, e.decl)
			queue = append(queue, e.decl)
		}
	}
	return out
}

func sameSignature(a, b *syntax.Method) bool {
	if a.Name != b.Name || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if simpleTypeName(a.Params[i].Type.Name) != simpleTypeName(b.Params[i].Type.Name) {
			return false
		}
	}
	return true
}
