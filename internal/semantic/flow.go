package semantic

import (
	"strings"

	"nrtrewriter/internal/syntax"
)

// maxFlowDepth bounds how far Classify follows locals through their
// initializers.
const maxFlowDepth = 8

// Classify returns the flow state of e. It follows locals to their
// initializers and assignments, members and parameters to their declared
// types, and calls to the declared return type of the resolved target.
func (m *UnitModel) Classify(e syntax.Expr) Classification {
	return m.classify(e, 0)
}

func (m *UnitModel) classify(e syntax.Expr, depth int) Classification {
	if e == nil || depth > maxFlowDepth {
		return Unknown
	}
	switch x := e.(type) {
	case *syntax.Literal:
		if x.Kind == syntax.LiteralNull || x.Kind == syntax.LiteralDefault {
			return MaybeNull
		}
		return NotNull
	case *syntax.ObjectCreation, *syntax.Lambda:
		return NotNull
	case *syntax.Conditional:
		then, els := m.classify(x.Then, depth+1), m.classify(x.Else, depth+1)
		switch {
		case then == MaybeNull || els == MaybeNull:
			return MaybeNull
		case then == NotNull && els == NotNull:
			return NotNull
		}
		return Unknown
	case *syntax.Cast:
		return m.classify(x.Operand, depth+1)
	case *syntax.Assignment:
		return m.classify(x.Right, depth+1)
	case *syntax.Invocation:
		return m.classifyCall(x)
	case *syntax.Identifier:
		return m.classifyName(m.scopes[x.ID], x.Name, depth)
	case *syntax.MemberAccess:
		if isThis(x.Receiver) {
			sc := m.scopes[x.ID]
			if sc == nil {
				return Unknown
			}
			return m.classifyMember(sc.owner, x.Name)
		}
		if id, ok := x.Receiver.(*syntax.Identifier); ok && !m.isVariable(m.scopes[x.ID], id.Name) {
			for _, e := range m.view.typesNamed(id.Name) {
				if c := m.classifyMember(e.decl, x.Name); c != Unknown {
					return c
				}
			}
		}
		return Unknown
	case *syntax.OtherExpr:
		switch x.Kind {
		case syntax.OtherAs, syntax.OtherConditionalAccess:
			return MaybeNull
		case syntax.OtherSuppress, syntax.OtherCreation:
			return NotNull
		case syntax.OtherCoalesce:
			if len(x.Children) > 0 {
				return m.classify(x.Children[len(x.Children)-1], depth+1)
			}
		}
	}
	return Unknown
}

func (m *UnitModel) classifyCall(call *syntax.Invocation) Classification {
	sym, ok := m.SymbolOf(call)
	if !ok {
		if strings.HasSuffix(call.Name, "OrDefault") {
			return MaybeNull
		}
		return Unknown
	}
	d, ok := m.DeclarationOf(sym)
	if !ok {
		return Unknown
	}
	if d.Method.ReturnType.Nullable {
		return MaybeNull
	}
	return NotNull
}

func (m *UnitModel) classifyName(sc *scope, name string, depth int) Classification {
	if sc == nil {
		return Unknown
	}
	if l, ok := sc.locals[name]; ok {
		if l.typ.Nullable {
			return MaybeNull
		}
		all := len(l.inits) > 0
		for _, init := range l.inits {
			switch m.classify(init, depth+1) {
			case MaybeNull:
				return MaybeNull
			case Unknown:
				all = false
			}
		}
		if !l.typ.IsVar() || m.view.isValueType(l.typ.Name) || all {
			return NotNull
		}
		return Unknown
	}
	if p, ok := sc.params[name]; ok {
		switch {
		case p.Type.Nullable || syntax.IsNullOrDefault(p.Default):
			return MaybeNull
		case p.Type.IsZero():
			return Unknown
		}
		return NotNull
	}
	return m.classifyMember(sc.owner, name)
}

// classifyMember looks name up among the fields and properties of t and its
// source base types.
func (m *UnitModel) classifyMember(t *syntax.TypeDecl, name string) Classification {
	if t == nil {
		return Unknown
	}
	typ, ok := m.memberType(t, name)
	if !ok {
		return Unknown
	}
	if typ.Nullable {
		return MaybeNull
	}
	return NotNull
}

func (m *UnitModel) memberType(t *syntax.TypeDecl, name string) (syntax.TypeRef, bool) {
	for _, decl := range m.view.baseChain(t) {
		for _, member := range decl.Members {
			switch x := member.(type) {
			case *syntax.Field:
				for _, v := range x.Vars {
					if v.Name == name {
						return x.Type, true
					}
				}
			case *syntax.Property:
				if x.Name == name {
					return x.Type, true
				}
			}
		}
	}
	return syntax.TypeRef{}, false
}

func (m *UnitModel) isVariable(sc *scope, name string) bool {
	if sc == nil {
		return false
	}
	if _, ok := sc.locals[name]; ok {
		return true
	}
	if _, ok := sc.params[name]; ok {
		return true
	}
	_, ok := m.memberType(sc.owner, name)
	return ok
}

// variableType returns the declared type of a variable visible in sc, if it
// has an explicit one.
func (m *UnitModel) variableType(sc *scope, name string) (syntax.TypeRef, bool) {
	if sc == nil {
		return syntax.TypeRef{}, false
	}
	if l, ok := sc.locals[name]; ok {
		if l.typ.IsVar() {
			for _, init := range l.inits {
				if oc, ok := init.(*syntax.ObjectCreation); ok {
					return oc.Type, true
				}
			}
			return syntax.TypeRef{}, false
		}
		return l.typ, true
	}
	if p, ok := sc.params[name]; ok {
		return p.Type, !p.Type.IsZero()
	}
	return m.memberType(sc.owner, name)
}

func isThis(e syntax.Expr) bool {
	lit, ok := e.(*syntax.Literal)
	return ok && lit.Text == "this"
}

func isBase(e syntax.Expr) bool {
	lit, ok := e.(*syntax.Literal)
	return ok && lit.Text == "base"
}
