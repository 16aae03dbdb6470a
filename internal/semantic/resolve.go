package semantic

import (
	"nrtrewriter/internal/syntax"
)

// SymbolOf resolves the target of a call to a source method. Calls through a
// receiver whose type is known but not declared in source (framework types)
// do not resolve. Overloads are told apart by arity only; a call that still
// matches more than one method is unresolved.
func (m *UnitModel) SymbolOf(call *syntax.Invocation) (Symbol, bool) {
	sc := m.scopes[call.ID]
	types, known := m.receiverTypes(sc, call.Receiver)
	if known {
		for _, t := range types {
			if d, ok := pickOverload(m.methodsIn(t, call.Name), call.Args); ok {
				return d.Symbol, true
			}
		}
		if len(types) > 0 || call.Receiver != nil {
			return "", false
		}
	}
	if d, ok := pickOverload(m.view.methodsNamed(call.Name), call.Args); ok {
		return d.Symbol, true
	}
	return "", false
}

// receiverTypes returns the types in which to look for the called method,
// nearest first. known is false when the receiver's type cannot be
// determined at all, so a program-wide search by name is the only option.
func (m *UnitModel) receiverTypes(sc *scope, recv syntax.Expr) ([]*syntax.TypeDecl, bool) {
	switch {
	case recv == nil || isThis(recv):
		if sc == nil {
			return nil, false
		}
		return m.view.baseChain(sc.owner), true
	case isBase(recv):
		if sc == nil {
			return nil, false
		}
		return m.view.baseChain(sc.owner)[1:], true
	}
	var typ syntax.TypeRef
	switch r := recv.(type) {
	case *syntax.Identifier:
		if t, ok := m.variableType(sc, r.Name); ok {
			typ = t
		} else if m.isVariable(sc, r.Name) {
			return nil, false
		} else {
			// Static call through a type name.
			typ = syntax.TypeRef{Name: r.Name}
		}
	case *syntax.MemberAccess:
		if !isThis(r.Receiver) || sc == nil {
			return nil, false
		}
		t, ok := m.memberType(sc.owner, r.Name)
		if !ok {
			return nil, false
		}
		typ = t
	case *syntax.ObjectCreation:
		typ = r.Type
	default:
		return nil, false
	}
	var out []*syntax.TypeDecl
	for _, e := range m.view.typesNamed(typ.Name) {
		out = append(out, m.view.baseChain(e.decl)...)
	}
	return out, true
}

func (m *UnitModel) methodsIn(t *syntax.TypeDecl, name string) []Declaration {
	var out []Declaration
	for _, md := range t.Methods() {
		if md.Name != name {
			continue
		}
		sym := SymbolFor(t, md)
		if d, ok := m.view.declaration(sym); ok {
			out = append(out, d)
		}
	}
	return out
}

func pickOverload(candidates []Declaration, args []syntax.Argument) (Declaration, bool) {
	var fits, exact []Declaration
	for _, d := range candidates {
		if !Accepts(d.Method, args) {
			continue
		}
		fits = append(fits, d)
		if len(d.Method.Params) == len(args) {
			exact = append(exact, d)
		}
	}
	switch {
	case len(fits) == 1:
		return fits[0], true
	case len(exact) == 1:
		return exact[0], true
	}
	return Declaration{}, false
}

// Accepts reports whether m can be called with args: every named argument
// names a parameter, and the count fits between the required parameters and
// all parameters (or more, for a trailing params array).
func Accepts(m *syntax.Method, args []syntax.Argument) bool {
	required := 0
	variadic := false
	for i, p := range m.Params {
		if p.Modifiers.Has("params") && i == len(m.Params)-1 {
			variadic = true
			continue
		}
		if p.Default == nil {
			required++
		}
	}
	for _, a := range args {
		if a.Name == "" {
			continue
		}
		if _, ok := m.Param(a.Name); !ok {
			return false
		}
	}
	if len(args) < required {
		return false
	}
	return variadic || len(args) <= len(m.Params)
}

// ParamFor maps the argument at position i of args to the parameter it binds
// to.
func ParamFor(m *syntax.Method, args []syntax.Argument, i int) (*syntax.Parameter, bool) {
	a := args[i]
	if a.Name != "" {
		return m.Param(a.Name)
	}
	if i < len(m.Params) {
		return m.Params[i], true
	}
	if n := len(m.Params); n > 0 && m.Params[n-1].Modifiers.Has("params") {
		return m.Params[n-1], true
	}
	return nil, false
}
