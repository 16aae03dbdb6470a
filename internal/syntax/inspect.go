package syntax

// Visitor walks a tree read-only in pre-order. A hook returning false skips
// the children of the node it was called for. Nil hooks visit everything.
type Visitor struct {
	Member func(owner *TypeDecl, m Member) bool
	Stmt   func(s Stmt) bool
	Expr   func(e Expr) bool
}

func (v Visitor) WalkUnit(u *Unit) {
	if u == nil {
		return
	}
	for _, t := range u.Types {
		v.WalkType(t)
	}
}

func (v Visitor) WalkType(t *TypeDecl) {
	for _, m := range t.Members {
		v.WalkMember(t, m)
	}
}

func (v Visitor) WalkMember(owner *TypeDecl, m Member) {
	if v.Member != nil && !v.Member(owner, m) {
		return
	}
	switch x := m.(type) {
	case *Field:
		for _, vr := range x.Vars {
			v.WalkExpr(vr.Init)
		}
	case *Property:
		v.WalkExpr(x.Init)
		v.WalkExpr(x.ExprBody)
		for _, a := range x.Accessors {
			v.WalkBlock(a.Body)
			v.WalkExpr(a.ExprBody)
		}
	case *Method:
		for _, p := range x.Params {
			v.WalkExpr(p.Default)
		}
		v.WalkBlock(x.Body)
		v.WalkExpr(x.ExprBody)
	case *Constructor:
		for _, p := range x.Params {
			v.WalkExpr(p.Default)
		}
		for _, a := range x.ChainArgs {
			v.WalkExpr(a.Value)
		}
		v.WalkBlock(x.Body)
		v.WalkExpr(x.ExprBody)
	case *TypeDecl:
		v.WalkType(x)
	}
}

func (v Visitor) WalkBlock(b *Block) {
	if b == nil {
		return
	}
	v.WalkStmt(b)
}

func (v Visitor) WalkStmt(s Stmt) {
	if s == nil {
		return
	}
	if v.Stmt != nil && !v.Stmt(s) {
		return
	}
	switch x := s.(type) {
	case *Block:
		for _, st := range x.Stmts {
			v.WalkStmt(st)
		}
	case *Return:
		v.WalkExpr(x.Value)
	case *LocalDecl:
		if x.Decl != nil {
			for _, vr := range x.Decl.Vars {
				v.WalkExpr(vr.Init)
			}
		}
	case *ExprStmt:
		v.WalkExpr(x.X)
	case *Throw:
		v.WalkExpr(x.Value)
	case *Compound:
		for _, e := range x.Exprs {
			v.WalkExpr(e)
		}
		for _, st := range x.Body {
			v.WalkStmt(st)
		}
	case *LocalFunction:
		v.WalkBlock(x.Body)
		v.WalkExpr(x.ExprBody)
	}
}

func (v Visitor) WalkExpr(e Expr) {
	if e == nil {
		return
	}
	if v.Expr != nil && !v.Expr(e) {
		return
	}
	switch x := e.(type) {
	case *Invocation:
		v.WalkExpr(x.Receiver)
		for _, a := range x.Args {
			v.WalkExpr(a.Value)
		}
	case *Conditional:
		v.WalkExpr(x.Cond)
		v.WalkExpr(x.Then)
		v.WalkExpr(x.Else)
	case *MemberAccess:
		v.WalkExpr(x.Receiver)
	case *Cast:
		v.WalkExpr(x.Operand)
	case *ObjectCreation:
		for _, a := range x.Args {
			v.WalkExpr(a.Value)
		}
	case *Assignment:
		v.WalkExpr(x.Left)
		v.WalkExpr(x.Right)
	case *Lambda:
		v.WalkBlock(x.Body)
		v.WalkExpr(x.ExprBody)
	case *OtherExpr:
		for _, c := range x.Children {
			v.WalkExpr(c)
		}
	}
}

// Invocations returns every call under the given member, nested lambdas
// included.
func Invocations(owner *TypeDecl, m Member) []*Invocation {
	var out []*Invocation
	Visitor{Expr: func(e Expr) bool {
		if call, ok := e.(*Invocation); ok {
			out = append(out, call)
		}
		return true
	}}.WalkMember(owner, m)
	return out
}

// Assignments returns every assignment expression under the block,
// including those in nested blocks.
func Assignments(b *Block) []*Assignment {
	var out []*Assignment
	Visitor{Expr: func(e Expr) bool {
		if a, ok := e.(*Assignment); ok {
			out = append(out, a)
		}
		return true
	}}.WalkBlock(b)
	return out
}
