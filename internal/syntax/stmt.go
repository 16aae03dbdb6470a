package syntax

// Stmt is a statement. The set of implementations is closed: Block, Return,
// LocalDecl, ExprStmt, Throw, Compound, LocalFunction and OtherStmt.
type Stmt interface {
	NodeID() NodeID
	stmtNode()
}

type Block struct {
	Node
	Stmts []Stmt
}

// Return is a return statement; Value is nil for a bare `return;`.
type Return struct {
	Node
	Value Expr
}

type LocalDecl struct {
	Node
	Decl *LocalDeclaration
}

type ExprStmt struct {
	Node
	X Expr
}

type Throw struct {
	Node
	Value Expr
}

// Compound covers if/else, loops, try/catch/finally, using, lock, switch and
// similar statements: header expressions plus nested statements.
type Compound struct {
	Node
	Kind  string
	Exprs []Expr
	Body  []Stmt
}

// LocalFunction is a nested function declaration. Like Lambda, its returns
// are not returns of the enclosing member.
type LocalFunction struct {
	Node
	Name       string
	ReturnType TypeRef
	Params     []*Parameter
	Body       *Block
	ExprBody   Expr
}

type OtherStmt struct {
	Node
}

func (*Block) stmtNode()         {}
func (*Return) stmtNode()        {}
func (*LocalDecl) stmtNode()     {}
func (*ExprStmt) stmtNode()      {}
func (*Throw) stmtNode()         {}
func (*Compound) stmtNode()      {}
func (*LocalFunction) stmtNode() {}
func (*OtherStmt) stmtNode()     {}

// Len is the number of top-level statements; a nil block has none.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Stmts)
}
