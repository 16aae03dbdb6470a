package semantic

import (
	"nrtrewriter/internal/syntax"
)

// Workspace is an in-process stand-in for a compiler's semantic model, built
// from parsed units. It is read-only after construction and safe for
// concurrent use; per-unit models derived from it do not share mutable state.
type Workspace struct {
	units []*syntax.Unit
	idx   *index
}

func NewWorkspace(units []*syntax.Unit) *Workspace {
	return &Workspace{units: units, idx: newIndex(units)}
}

func (w *Workspace) Units() []*syntax.Unit {
	return w.units
}

// Stats reports the number of indexed types and methods.
func (w *Workspace) Stats() (types, methods int) {
	for _, entries := range w.idx.types {
		types += len(entries)
	}
	return types, len(w.idx.methods)
}

func (w *Workspace) view() view {
	return view{base: w.idx}
}

// ModelFor returns the model of u. The unit's own tree, in whatever version
// is passed, replaces the workspace copy of the same path; all other files
// are seen as the workspace holds them.
func (w *Workspace) ModelFor(u *syntax.Unit) *UnitModel {
	v := view{base: w.idx, overlay: newIndex([]*syntax.Unit{u})}
	m := &UnitModel{view: v, unit: u, scopes: make(map[syntax.NodeID]*scope)}
	m.buildScopes()
	return m
}

func (w *Workspace) DeclaredSymbol(owner *syntax.TypeDecl, m *syntax.Method) Symbol {
	return SymbolFor(owner, m)
}

func (w *Workspace) DeclarationOf(sym Symbol) (Declaration, bool) {
	return w.view().declaration(sym)
}

func (w *Workspace) IsValueType(t syntax.TypeRef) bool {
	return w.view().isValueType(t.Name)
}

// UnitModel is the Model of one unit version.
type UnitModel struct {
	view   view
	unit   *syntax.Unit
	scopes map[syntax.NodeID]*scope
}

func (m *UnitModel) Unit() *syntax.Unit {
	return m.unit
}

func (m *UnitModel) DeclarationOf(sym Symbol) (Declaration, bool) {
	return m.view.declaration(sym)
}

func (m *UnitModel) IsValueType(t syntax.TypeRef) bool {
	return m.view.isValueType(t.Name)
}

type local struct {
	typ   syntax.TypeRef
	inits []syntax.Expr
}

// scope is what an expression can see by simple name: the enclosing member,
// its parameters and the locals declared anywhere in its body.
type scope struct {
	owner  *syntax.TypeDecl
	method *syntax.Method
	params map[string]*syntax.Parameter
	locals map[string]*local
}

func newScope(owner *syntax.TypeDecl) *scope {
	return &scope{owner: owner, params: make(map[string]*syntax.Parameter), locals: make(map[string]*local)}
}

func (s *scope) addParams(ps []*syntax.Parameter) {
	for _, p := range ps {
		s.params[p.Name] = p
	}
}

func (m *UnitModel) buildScopes() {
	if m.unit == nil {
		return
	}
	for _, t := range m.unit.AllTypes() {
		for _, member := range t.Members {
			if _, nested := member.(*syntax.TypeDecl); nested {
				continue
			}
			sc := newScope(t)
			switch x := member.(type) {
			case *syntax.Method:
				sc.method = x
				sc.addParams(x.Params)
			case *syntax.Constructor:
				sc.addParams(x.Params)
			}
			m.collect(t, member, sc)
		}
	}
}

// collect records locals, local-function parameters and assignments to
// locals, then maps every expression of the member to sc.
func (m *UnitModel) collect(owner *syntax.TypeDecl, member syntax.Member, sc *scope) {
	var exprs []syntax.Expr
	var assigns []*syntax.Assignment
	syntax.Visitor{
		Member: func(_ *syntax.TypeDecl, mem syntax.Member) bool {
			_, nested := mem.(*syntax.TypeDecl)
			return !nested
		},
		Stmt: func(s syntax.Stmt) bool {
			switch x := s.(type) {
			case *syntax.LocalDecl:
				if x.Decl == nil {
					break
				}
				for _, v := range x.Decl.Vars {
					l := &local{typ: x.Decl.Type}
					if v.Init != nil {
						l.inits = append(l.inits, v.Init)
					}
					sc.locals[v.Name] = l
				}
			case *syntax.LocalFunction:
				sc.addParams(x.Params)
			}
			return true
		},
		Expr: func(e syntax.Expr) bool {
			exprs = append(exprs, e)
			if a, ok := e.(*syntax.Assignment); ok {
				assigns = append(assigns, a)
			}
			return true
		},
	}.WalkMember(owner, member)

	for _, a := range assigns {
		if id, ok := a.Left.(*syntax.Identifier); ok {
			if l, ok := sc.locals[id.Name]; ok {
				l.inits = append(l.inits, a.Right)
			}
		}
	}
	for _, e := range exprs {
		m.scopes[e.NodeID()] = sc
	}
}
