package syntax

// Expr is a value-producing node. The set of implementations is closed:
// Literal, Invocation, Conditional, Identifier, MemberAccess, Cast,
// ObjectCreation, Assignment, Lambda and OtherExpr.
type Expr interface {
	NodeID() NodeID
	Source() string
	exprNode()
}

type LiteralKind int

const (
	LiteralValue LiteralKind = iota
	LiteralNull
	LiteralDefault
)

// Literal is a constant: null, default, or any other literal value
// (strings, numbers, booleans, interpolated strings, this, typeof, nameof).
type Literal struct {
	Node
	Kind LiteralKind
}

// Argument is one call argument. Name is set for named arguments.
type Argument struct {
	Name  string
	Value Expr
}

// Invocation is a call. Name is the invoked simple name; Receiver is the
// expression left of the last dot, or nil for unqualified calls.
type Invocation struct {
	Node
	Receiver Expr
	Name     string
	Args     []Argument
}

type Conditional struct {
	Node
	Cond Expr
	Then Expr
	Else Expr
}

type Identifier struct {
	Node
	Name string
}

type MemberAccess struct {
	Node
	Receiver Expr
	Name     string
}

type Cast struct {
	Node
	Type    TypeRef
	Operand Expr
}

type ObjectCreation struct {
	Node
	Type TypeRef
	Args []Argument
}

type Assignment struct {
	Node
	Left  Expr
	Right Expr
}

// Lambda is an anonymous function. Its returns do not belong to the
// enclosing member.
type Lambda struct {
	Node
	Body     *Block
	ExprBody Expr
}

// OtherExpr is any expression the classifier does not dispatch on directly.
// Kind is the front-end's name for the construct (for example "as",
// "coalesce", "conditional_access"). It keeps its sub-expressions so nested
// casts and calls are still visited. OtherCreation covers array, anonymous
// and collection creations, which are never null.
type OtherExpr struct {
	Node
	Kind     string
	Children []Expr
}

const (
	OtherAs                = "as"
	OtherCoalesce          = "coalesce"
	OtherConditionalAccess = "conditional_access"
	OtherSuppress          = "suppress"
	OtherCreation          = "creation"
)

func (n *Node) NodeID() NodeID { return n.ID }
func (n *Node) Source() string { return n.Text }

func (*Literal) exprNode()        {}
func (*Invocation) exprNode()     {}
func (*Conditional) exprNode()    {}
func (*Identifier) exprNode()     {}
func (*MemberAccess) exprNode()   {}
func (*Cast) exprNode()           {}
func (*ObjectCreation) exprNode() {}
func (*Assignment) exprNode()     {}
func (*Lambda) exprNode()         {}
func (*OtherExpr) exprNode()      {}

// IsNullOrDefault reports a literal null or default value.
func IsNullOrDefault(e Expr) bool {
	lit, ok := e.(*Literal)
	return ok && (lit.Kind == LiteralNull || lit.Kind == LiteralDefault)
}

// AssignedName returns the simple member name written on the left of an
// assignment: "x" for both `x = ...` and `this.x = ...`.
func AssignedName(left Expr) string {
	switch l := left.(type) {
	case *Identifier:
		return l.Name
	case *MemberAccess:
		if lit, ok := l.Receiver.(*Literal); ok && lit.Text == "this" {
			return l.Name
		}
	}
	return ""
}
