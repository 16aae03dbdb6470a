// Package syntaxtest builds syntax trees by hand for tests that should not
// depend on the C# front-end.
package syntaxtest

import (
	"strings"

	"nrtrewriter/internal/syntax"
)

// Builder hands out unique node IDs and fake spans within one file.
type Builder struct {
	path string
	pos  int
}

func New(path string) *Builder {
	return &Builder{path: path}
}

func (b *Builder) node(kind, text string) syntax.Node {
	start := b.pos
	b.pos += 10
	return syntax.Node{ID: syntax.NewNodeID(b.path, kind, start), Span: syntax.Span{Start: start, End: start + 5}, Text: text}
}

// Type parses "string" or "string?" into a type reference with the given role.
func (b *Builder) Type(name string, role syntax.Role) syntax.TypeRef {
	n := b.node("type", name)
	nullable := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")
	return syntax.TypeRef{
		ID:             n.ID,
		Name:           name,
		Nullable:       nullable,
		SourceNullable: nullable,
		Implicit:       name == "var",
		Role:           role,
		Span:           n.Span,
	}
}

func (b *Builder) Null() *syntax.Literal {
	return &syntax.Literal{Node: b.node("null_literal", "null"), Kind: syntax.LiteralNull}
}

func (b *Builder) Default() *syntax.Literal {
	return &syntax.Literal{Node: b.node("default_expression", "default"), Kind: syntax.LiteralDefault}
}

func (b *Builder) Lit(text string) *syntax.Literal {
	return &syntax.Literal{Node: b.node("literal", text), Kind: syntax.LiteralValue}
}

func (b *Builder) This() *syntax.Literal {
	return b.Lit("this")
}

func (b *Builder) Ident(name string) *syntax.Identifier {
	return &syntax.Identifier{Node: b.node("identifier", name), Name: name}
}

func (b *Builder) Member(recv syntax.Expr, name string) *syntax.MemberAccess {
	return &syntax.MemberAccess{Node: b.node("member_access_expression", name), Receiver: recv, Name: name}
}

func Arg(v syntax.Expr) syntax.Argument {
	return syntax.Argument{Value: v}
}

func Named(name string, v syntax.Expr) syntax.Argument {
	return syntax.Argument{Name: name, Value: v}
}

func (b *Builder) Call(recv syntax.Expr, name string, args ...syntax.Argument) *syntax.Invocation {
	return &syntax.Invocation{Node: b.node("invocation_expression", name+"()"), Receiver: recv, Name: name, Args: args}
}

func (b *Builder) Cond(c, then, els syntax.Expr) *syntax.Conditional {
	return &syntax.Conditional{Node: b.node("conditional_expression", "?:"), Cond: c, Then: then, Else: els}
}

func (b *Builder) Cast(typ string, operand syntax.Expr) *syntax.Cast {
	return &syntax.Cast{Node: b.node("cast_expression", "("+typ+")"), Type: b.Type(typ, syntax.RoleCast), Operand: operand}
}

func (b *Builder) New(typ string, args ...syntax.Argument) *syntax.ObjectCreation {
	return &syntax.ObjectCreation{Node: b.node("object_creation_expression", "new "+typ), Type: b.Type(typ, syntax.RoleOther), Args: args}
}

func (b *Builder) Assign(left, right syntax.Expr) *syntax.Assignment {
	return &syntax.Assignment{Node: b.node("assignment_expression", "="), Left: left, Right: right}
}

func (b *Builder) Other(kind string, children ...syntax.Expr) *syntax.OtherExpr {
	return &syntax.OtherExpr{Node: b.node(kind, kind), Kind: kind, Children: children}
}

func (b *Builder) Lambda(body syntax.Expr) *syntax.Lambda {
	return &syntax.Lambda{Node: b.node("lambda_expression", "=>"), ExprBody: body}
}

func (b *Builder) LambdaBlock(body *syntax.Block) *syntax.Lambda {
	return &syntax.Lambda{Node: b.node("lambda_expression", "=>"), Body: body}
}

func (b *Builder) Return(v syntax.Expr) *syntax.Return {
	return &syntax.Return{Node: b.node("return_statement", "return"), Value: v}
}

func (b *Builder) Throw(v syntax.Expr) *syntax.Throw {
	return &syntax.Throw{Node: b.node("throw_statement", "throw"), Value: v}
}

func (b *Builder) Do(x syntax.Expr) *syntax.ExprStmt {
	return &syntax.ExprStmt{Node: b.node("expression_statement", ""), X: x}
}

// Local declares one variable; init may be nil.
func (b *Builder) Local(typ, name string, init syntax.Expr) *syntax.LocalDecl {
	n := b.node("local_declaration_statement", "")
	decl := &syntax.LocalDeclaration{
		Node: b.node("variable_declaration", ""),
		Type: b.Type(typ, syntax.RoleLocal),
		Vars: []syntax.Variable{{ID: b.node("variable_declarator", name).ID, Name: name, Init: init}},
	}
	return &syntax.LocalDecl{Node: n, Decl: decl}
}

func (b *Builder) If(cond syntax.Expr, body ...syntax.Stmt) *syntax.Compound {
	return &syntax.Compound{Node: b.node("if_statement", "if"), Kind: "if", Exprs: []syntax.Expr{cond}, Body: []syntax.Stmt{b.Block(body...)}}
}

func (b *Builder) LocalFunc(ret, name string, body *syntax.Block) *syntax.LocalFunction {
	return &syntax.LocalFunction{Node: b.node("local_function_statement", name), Name: name, ReturnType: b.Type(ret, syntax.RoleReturn), Body: body}
}

func (b *Builder) Block(stmts ...syntax.Stmt) *syntax.Block {
	return &syntax.Block{Node: b.node("block", "{}"), Stmts: stmts}
}

func mods(s string) syntax.Modifiers {
	return syntax.Modifiers(strings.Fields(s))
}

// Field declares one variable; init may be nil. modifiers is space separated.
func (b *Builder) Field(modifiers, typ, name string, init syntax.Expr) *syntax.Field {
	return &syntax.Field{
		Node:      b.node("field_declaration", name),
		Modifiers: mods(modifiers),
		Type:      b.Type(typ, syntax.RoleField),
		Vars:      []syntax.Variable{{ID: b.node("variable_declarator", name).ID, Name: name, Init: init}},
	}
}

// AutoProperty declares `typ name { get; set; }`.
func (b *Builder) AutoProperty(modifiers, typ, name string) *syntax.Property {
	return &syntax.Property{
		Node:      b.node("property_declaration", name),
		Modifiers: mods(modifiers),
		Type:      b.Type(typ, syntax.RoleProperty),
		Name:      name,
		Accessors: []syntax.Accessor{{Kind: syntax.AccessorGet}, {Kind: syntax.AccessorSet}},
	}
}

// Getter declares `typ name { get { body } }`.
func (b *Builder) Getter(modifiers, typ, name string, body *syntax.Block) *syntax.Property {
	return &syntax.Property{
		Node:      b.node("property_declaration", name),
		Modifiers: mods(modifiers),
		Type:      b.Type(typ, syntax.RoleProperty),
		Name:      name,
		Accessors: []syntax.Accessor{{Kind: syntax.AccessorGet, Body: body}},
	}
}

// ArrowProperty declares `typ name => body;`.
func (b *Builder) ArrowProperty(modifiers, typ, name string, body syntax.Expr) *syntax.Property {
	return &syntax.Property{
		Node:      b.node("property_declaration", name),
		Modifiers: mods(modifiers),
		Type:      b.Type(typ, syntax.RoleProperty),
		Name:      name,
		ExprBody:  body,
	}
}

func (b *Builder) Param(typ, name string) *syntax.Parameter {
	return &syntax.Parameter{Node: b.node("parameter", name), Type: b.Type(typ, syntax.RoleParameter), Name: name}
}

// Method declares a block-bodied method; a nil body declares an abstract one.
func (b *Builder) Method(modifiers, ret, name string, params []*syntax.Parameter, body *syntax.Block) *syntax.Method {
	return &syntax.Method{
		Node:       b.node("method_declaration", name),
		Modifiers:  mods(modifiers),
		ReturnType: b.Type(ret, syntax.RoleReturn),
		Name:       name,
		Params:     params,
		Body:       body,
	}
}

func (b *Builder) ArrowMethod(modifiers, ret, name string, params []*syntax.Parameter, body syntax.Expr) *syntax.Method {
	m := b.Method(modifiers, ret, name, params, nil)
	m.ExprBody = body
	return m
}

func (b *Builder) Ctor(name string, chain syntax.ChainKind, params []*syntax.Parameter, body *syntax.Block) *syntax.Constructor {
	return &syntax.Constructor{
		Node:   b.node("constructor_declaration", name),
		Name:   name,
		Params: params,
		Chain:  chain,
		Body:   body,
	}
}

func (b *Builder) typeDecl(kind syntax.TypeKind, name string, bases []string, members []syntax.Member) *syntax.TypeDecl {
	return &syntax.TypeDecl{Node: b.node(string(kind)+"_declaration", name), Kind: kind, Name: name, Namespace: "App", Bases: bases, Members: members}
}

func (b *Builder) Class(name string, bases []string, members ...syntax.Member) *syntax.TypeDecl {
	return b.typeDecl(syntax.KindClass, name, bases, members)
}

func (b *Builder) Struct(name string, members ...syntax.Member) *syntax.TypeDecl {
	return b.typeDecl(syntax.KindStruct, name, nil, members)
}

func (b *Builder) Interface(name string, bases []string, members ...syntax.Member) *syntax.TypeDecl {
	return b.typeDecl(syntax.KindInterface, name, bases, members)
}

func (b *Builder) Unit(types ...*syntax.TypeDecl) *syntax.Unit {
	return &syntax.Unit{Path: b.path, Types: types}
}
