// Package nullability decides whether an expression or a body can produce
// null. Every predicate is pure: it reads the tree and the model and nothing
// else.
package nullability

import (
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// CanBeNull is the permissive tier: the model's flow state for e is
// MaybeNull.
func CanBeNull(model semantic.Model, e syntax.Expr) bool {
	if e == nil {
		return false
	}
	return model.Classify(e) == semantic.MaybeNull
}

// Decls maps call expressions to the declarations of their targets. Build it
// once per node with Prefetch.
type Decls map[syntax.NodeID]semantic.Declaration

// Prefetch resolves the target of every call under the given member in one
// batch. Calls whose target is not in source are left out.
func Prefetch(model semantic.Model, owner *syntax.TypeDecl, m syntax.Member) Decls {
	decls := make(Decls)
	for _, call := range syntax.Invocations(owner, m) {
		sym, ok := model.SymbolOf(call)
		if !ok {
			continue
		}
		if d, ok := model.DeclarationOf(sym); ok {
			decls[call.ID] = d
		}
	}
	return decls
}

// IsDefinitelyNull is the strict tier: e is a null or default literal, or a
// call whose prefetched target is declared to return an annotated nullable
// reference type.
func IsDefinitelyNull(model semantic.Model, decls Decls, e syntax.Expr) bool {
	if syntax.IsNullOrDefault(e) {
		return true
	}
	call, ok := e.(*syntax.Invocation)
	if !ok {
		return false
	}
	d, ok := decls[call.ID]
	if !ok {
		return false
	}
	ret := d.Method.ReturnType
	return ret.Nullable && !ret.IsVoid() && !model.IsValueType(ret)
}

// ReturnsNull reports whether any return statement reachable in body returns
// a value that CanBeNull. Returns inside lambdas and local functions belong
// to those and are not considered. Within a block, statements after an
// unconditional return or throw are unreachable.
func ReturnsNull(model semantic.Model, body *syntax.Block) bool {
	found := false
	// walk reports whether stmts can complete normally.
	var walk func(stmts []syntax.Stmt) bool
	walk = func(stmts []syntax.Stmt) bool {
		for _, s := range stmts {
			if found {
				return false
			}
			switch x := s.(type) {
			case *syntax.Return:
				if CanBeNull(model, x.Value) {
					found = true
				}
				return false
			case *syntax.Throw:
				return false
			case *syntax.Block:
				if !walk(x.Stmts) {
					return false
				}
			case *syntax.Compound:
				// The body of a branch or loop may be skipped.
				walk(x.Body)
			}
		}
		return true
	}
	if body != nil {
		walk(body.Stmts)
	}
	return found
}

// GetterReturnsNull applies ReturnsNull or CanBeNull to whatever form of
// getter p has. Auto-properties never return null by this test.
func GetterReturnsNull(model semantic.Model, p *syntax.Property) bool {
	if p.ExprBody != nil {
		return CanBeNull(model, p.ExprBody)
	}
	get, ok := p.Getter()
	if !ok {
		return false
	}
	switch {
	case get.Body != nil:
		return ReturnsNull(model, get.Body)
	case get.ExprBody != nil:
		return CanBeNull(model, get.ExprBody)
	}
	return false
}
