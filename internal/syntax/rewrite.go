package syntax

// Rewriter performs copy-on-write substitution over a tree. Hooks run
// post-order: children are rewritten first, then the hook sees the node (or
// its copy, if a child changed). A hook returns its argument to keep it.
// Whenever nothing below a node changes, the node is returned as the same
// pointer, so an untouched unit compares equal to its input.
type Rewriter struct {
	Expr   func(e Expr) Expr
	Stmt   func(s Stmt) Stmt
	Member func(owner *TypeDecl, m Member) Member
	Type   func(t *TypeDecl) *TypeDecl
}

func (r Rewriter) descends() bool {
	return r.Expr != nil || r.Stmt != nil
}

func (r Rewriter) RewriteUnit(u *Unit) *Unit {
	if u == nil {
		return nil
	}
	types, changed := r.rewriteTypes(u.Types)
	if !changed {
		return u
	}
	c := *u
	c.Types = types
	return &c
}

func (r Rewriter) rewriteTypes(types []*TypeDecl) ([]*TypeDecl, bool) {
	var out []*TypeDecl
	for i, t := range types {
		nt := r.RewriteType(t)
		if nt != t && out == nil {
			out = make([]*TypeDecl, len(types))
			copy(out, types[:i])
		}
		if out != nil {
			out[i] = nt
		}
	}
	if out == nil {
		return types, false
	}
	return out, true
}

func (r Rewriter) RewriteType(t *TypeDecl) *TypeDecl {
	var members []Member
	for i, m := range t.Members {
		nm := r.RewriteMember(t, m)
		if nm != m && members == nil {
			members = make([]Member, len(t.Members))
			copy(members, t.Members[:i])
		}
		if members != nil {
			members[i] = nm
		}
	}
	out := t
	if members != nil {
		c := *t
		c.Members = members
		out = &c
	}
	if r.Type != nil {
		out = r.Type(out)
	}
	return out
}

func (r Rewriter) RewriteMember(owner *TypeDecl, m Member) Member {
	out := m
	switch x := m.(type) {
	case *TypeDecl:
		if nt := r.RewriteType(x); nt != x {
			out = nt
		}
	case *Field:
		if r.descends() {
			if vars, ok := r.rewriteVars(x.Vars); ok {
				c := *x
				c.Vars = vars
				out = &c
			}
		}
	case *Property:
		if r.descends() {
			init := r.RewriteExpr(x.Init)
			body := r.RewriteExpr(x.ExprBody)
			accessors, accChanged := r.rewriteAccessors(x.Accessors)
			if init != x.Init || body != x.ExprBody || accChanged {
				c := *x
				c.Init, c.ExprBody, c.Accessors = init, body, accessors
				out = &c
			}
		}
	case *Method:
		if r.descends() {
			body := r.RewriteBlock(x.Body)
			expr := r.RewriteExpr(x.ExprBody)
			if body != x.Body || expr != x.ExprBody {
				c := *x
				c.Body, c.ExprBody = body, expr
				out = &c
			}
		}
	case *Constructor:
		if r.descends() {
			body := r.RewriteBlock(x.Body)
			expr := r.RewriteExpr(x.ExprBody)
			args, argsChanged := r.rewriteArgs(x.ChainArgs)
			if body != x.Body || expr != x.ExprBody || argsChanged {
				c := *x
				c.Body, c.ExprBody, c.ChainArgs = body, expr, args
				out = &c
			}
		}
	}
	if r.Member != nil {
		out = r.Member(owner, out)
	}
	return out
}

func (r Rewriter) rewriteAccessors(in []Accessor) ([]Accessor, bool) {
	var out []Accessor
	for i, a := range in {
		body := r.RewriteBlock(a.Body)
		expr := r.RewriteExpr(a.ExprBody)
		if (body != a.Body || expr != a.ExprBody) && out == nil {
			out = make([]Accessor, len(in))
			copy(out, in)
		}
		if out != nil {
			out[i].Body, out[i].ExprBody = body, expr
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

func (r Rewriter) rewriteVars(in []Variable) ([]Variable, bool) {
	var out []Variable
	for i, v := range in {
		init := r.RewriteExpr(v.Init)
		if init != v.Init && out == nil {
			out = make([]Variable, len(in))
			copy(out, in)
		}
		if out != nil {
			out[i].Init = init
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

func (r Rewriter) rewriteArgs(in []Argument) ([]Argument, bool) {
	var out []Argument
	for i, a := range in {
		v := r.RewriteExpr(a.Value)
		if v != a.Value && out == nil {
			out = make([]Argument, len(in))
			copy(out, in)
		}
		if out != nil {
			out[i].Value = v
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

func (r Rewriter) rewriteExprs(in []Expr) ([]Expr, bool) {
	var out []Expr
	for i, e := range in {
		ne := r.RewriteExpr(e)
		if ne != e && out == nil {
			out = make([]Expr, len(in))
			copy(out, in)
		}
		if out != nil {
			out[i] = ne
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

func (r Rewriter) rewriteStmts(in []Stmt) ([]Stmt, bool) {
	var out []Stmt
	for i, s := range in {
		ns := r.RewriteStmt(s)
		if ns != s && out == nil {
			out = make([]Stmt, len(in))
			copy(out, in)
		}
		if out != nil {
			out[i] = ns
		}
	}
	if out == nil {
		return in, false
	}
	return out, true
}

// RewriteBlock rewrites a block; a nil block stays nil.
func (r Rewriter) RewriteBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	ns := r.RewriteStmt(b)
	if nb, ok := ns.(*Block); ok {
		return nb
	}
	return b
}

func (r Rewriter) RewriteStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	out := s
	switch x := s.(type) {
	case *Block:
		if stmts, ok := r.rewriteStmts(x.Stmts); ok {
			c := *x
			c.Stmts = stmts
			out = &c
		}
	case *Return:
		if v := r.RewriteExpr(x.Value); v != x.Value {
			c := *x
			c.Value = v
			out = &c
		}
	case *LocalDecl:
		if x.Decl != nil {
			if vars, ok := r.rewriteVars(x.Decl.Vars); ok {
				d := *x.Decl
				d.Vars = vars
				c := *x
				c.Decl = &d
				out = &c
			}
		}
	case *ExprStmt:
		if v := r.RewriteExpr(x.X); v != x.X {
			c := *x
			c.X = v
			out = &c
		}
	case *Throw:
		if v := r.RewriteExpr(x.Value); v != x.Value {
			c := *x
			c.Value = v
			out = &c
		}
	case *Compound:
		exprs, exprsChanged := r.rewriteExprs(x.Exprs)
		body, bodyChanged := r.rewriteStmts(x.Body)
		if exprsChanged || bodyChanged {
			c := *x
			c.Exprs, c.Body = exprs, body
			out = &c
		}
	case *LocalFunction:
		body := r.RewriteBlock(x.Body)
		expr := r.RewriteExpr(x.ExprBody)
		if body != x.Body || expr != x.ExprBody {
			c := *x
			c.Body, c.ExprBody = body, expr
			out = &c
		}
	}
	if r.Stmt != nil {
		out = r.Stmt(out)
	}
	return out
}

func (r Rewriter) RewriteExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	out := e
	switch x := e.(type) {
	case *Invocation:
		recv := r.RewriteExpr(x.Receiver)
		args, argsChanged := r.rewriteArgs(x.Args)
		if recv != x.Receiver || argsChanged {
			c := *x
			c.Receiver, c.Args = recv, args
			out = &c
		}
	case *Conditional:
		cond, then, els := r.RewriteExpr(x.Cond), r.RewriteExpr(x.Then), r.RewriteExpr(x.Else)
		if cond != x.Cond || then != x.Then || els != x.Else {
			c := *x
			c.Cond, c.Then, c.Else = cond, then, els
			out = &c
		}
	case *MemberAccess:
		if recv := r.RewriteExpr(x.Receiver); recv != x.Receiver {
			c := *x
			c.Receiver = recv
			out = &c
		}
	case *Cast:
		if op := r.RewriteExpr(x.Operand); op != x.Operand {
			c := *x
			c.Operand = op
			out = &c
		}
	case *ObjectCreation:
		if args, ok := r.rewriteArgs(x.Args); ok {
			c := *x
			c.Args = args
			out = &c
		}
	case *Assignment:
		left, right := r.RewriteExpr(x.Left), r.RewriteExpr(x.Right)
		if left != x.Left || right != x.Right {
			c := *x
			c.Left, c.Right = left, right
			out = &c
		}
	case *Lambda:
		body := r.RewriteBlock(x.Body)
		expr := r.RewriteExpr(x.ExprBody)
		if body != x.Body || expr != x.ExprBody {
			c := *x
			c.Body, c.ExprBody = body, expr
			out = &c
		}
	case *OtherExpr:
		if children, ok := r.rewriteExprs(x.Children); ok {
			c := *x
			c.Children = children
			out = &c
		}
	}
	if r.Expr != nil {
		out = r.Expr(out)
	}
	return out
}

// MapMembers applies fn to every member of every type in u, nested types
// included, without descending into bodies.
func MapMembers(u *Unit, fn func(owner *TypeDecl, m Member) Member) *Unit {
	return Rewriter{Member: fn}.RewriteUnit(u)
}

// MapTypes applies fn to every type declaration in u after its nested types
// have been mapped.
func MapTypes(u *Unit, fn func(t *TypeDecl) *TypeDecl) *Unit {
	return Rewriter{Type: fn}.RewriteUnit(u)
}
