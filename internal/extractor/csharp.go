package extractor

import (
	"strings"

	"nrtrewriter/internal/syntax"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// CSharpExtractor implements LanguageExtractor for C#.
//
// Grammar releases differ in a few field and node names (the return type of
// a method is `type` in older grammars and `returns` in newer ones, `this`
// is either a keyword or this_expression, and so on). Lookups below try the
// known spellings in order.
type CSharpExtractor struct{}

func (c *CSharpExtractor) GetLanguage() *sitter.Language {
	return csharp.GetLanguage()
}

func (c *CSharpExtractor) BuildUnit(root *sitter.Node, src []byte, path string) *syntax.Unit {
	b := &csBuilder{src: src, path: path}
	return &syntax.Unit{
		Path:   path,
		Source: src,
		Types:  b.declarations(root, ""),
	}
}

type csBuilder struct {
	src  []byte
	path string
}

var typeDeclKinds = map[string]syntax.TypeKind{
	"class_declaration":         syntax.KindClass,
	"struct_declaration":        syntax.KindStruct,
	"interface_declaration":     syntax.KindInterface,
	"enum_declaration":          syntax.KindEnum,
	"record_declaration":        syntax.KindRecord,
	"record_struct_declaration": syntax.KindStruct,
}

// Nodes that only group other nodes inside compound statements.
var structuralNodes = map[string]bool{
	"catch_clause":               true,
	"catch_declaration":          true,
	"catch_filter_clause":        true,
	"finally_clause":             true,
	"else_clause":                true,
	"switch_body":                true,
	"switch_section":             true,
	"case_switch_label":          true,
	"case_pattern_switch_label":  true,
	"default_switch_label":       true,
	"when_clause":                true,
	"for_statement_initializer":  true,
	"using_variable_declaration": true,
}

var typeNodes = map[string]bool{
	"predefined_type": true,
	"implicit_type":   true,
	"nullable_type":   true,
	"array_type":      true,
	"pointer_type":    true,
	"tuple_type":      true,
	"qualified_name":  true,
	"ref_type":        true,
}

var parameterModifiers = map[string]bool{
	"params": true, "this": true, "ref": true, "out": true, "in": true, "scoped": true, "readonly": true,
}

// declarations collects the type declarations under a compilation unit or
// namespace body.
func (b *csBuilder) declarations(container *sitter.Node, ns string) []*syntax.TypeDecl {
	var out []*syntax.TypeDecl
	for _, ch := range namedChildren(container) {
		switch t := ch.Type(); {
		case t == "namespace_declaration":
			name := joinName(ns, b.text(fieldOf(ch, "name")))
			if body := fieldOf(ch, "body"); body != nil {
				out = append(out, b.declarations(body, name)...)
			} else if body := childOfType(ch, "declaration_list"); body != nil {
				out = append(out, b.declarations(body, name)...)
			}
		case t == "file_scoped_namespace_declaration":
			// Older grammars leave the members as siblings; newer ones nest
			// them. The namespace applies to everything after it either way.
			ns = joinName(ns, b.text(fieldOf(ch, "name")))
			out = append(out, b.declarations(ch, ns)...)
		case typeDeclKinds[t] != "":
			out = append(out, b.typeDecl(ch, ns, ""))
		}
	}
	return out
}

func (b *csBuilder) typeDecl(n *sitter.Node, ns, outer string) *syntax.TypeDecl {
	t := &syntax.TypeDecl{
		Node:      b.node(n),
		Kind:      typeDeclKinds[n.Type()],
		Name:      identName(b, fieldOf(n, "name")),
		Namespace: ns,
		Outer:     outer,
	}
	if t.Kind == syntax.KindRecord && hasToken(n, "struct") {
		t.Kind = syntax.KindStruct
	}
	t.Modifiers, t.Attributes = b.modifiers(n)
	t.TypeParams = b.typeParams(n)
	t.Bases = b.bases(n)
	if t.Kind == syntax.KindEnum {
		return t
	}

	body := fieldOf(n, "body")
	if body == nil {
		body = childOfType(n, "declaration_list")
	}
	if body == nil {
		return t
	}
	nested := joinName(outer, t.Name)
	for _, ch := range namedChildren(body) {
		if m := b.member(ch, ns, nested); m != nil {
			t.Members = append(t.Members, m)
		}
	}
	return t
}

func (b *csBuilder) member(n *sitter.Node, ns, outer string) syntax.Member {
	switch n.Type() {
	case "field_declaration":
		return b.field(n)
	case "property_declaration":
		return b.property(n)
	case "method_declaration":
		return b.method(n)
	case "constructor_declaration":
		return b.constructor(n)
	}
	if typeDeclKinds[n.Type()] != "" {
		return b.typeDecl(n, ns, outer)
	}
	return nil
}

func (b *csBuilder) modifiers(n *sitter.Node) (syntax.Modifiers, []string) {
	var mods syntax.Modifiers
	var attrs []string
	for _, ch := range namedChildren(n) {
		switch ch.Type() {
		case "modifier":
			mods = append(mods, b.text(ch))
		case "attribute_list":
			for _, a := range namedChildren(ch) {
				if a.Type() != "attribute" {
					continue
				}
				name := fieldOf(a, "name")
				if name == nil {
					name = firstNamed(a)
				}
				attrs = append(attrs, normalizeSpace(b.text(name)))
			}
		}
	}
	return mods, attrs
}

func (b *csBuilder) typeParams(n *sitter.Node) []string {
	list := fieldOf(n, "type_parameters")
	if list == nil {
		list = childOfType(n, "type_parameter_list")
	}
	var out []string
	for _, ch := range namedChildren(list) {
		if ch.Type() != "type_parameter" {
			continue
		}
		name := fieldOf(ch, "name")
		if name == nil {
			name = childOfType(ch, "identifier")
		}
		out = append(out, b.text(name))
	}
	return out
}

func (b *csBuilder) bases(n *sitter.Node) []string {
	list := fieldOf(n, "bases")
	if list == nil {
		list = childOfType(n, "base_list")
	}
	var out []string
	for _, ch := range namedChildren(list) {
		switch ch.Type() {
		case "argument_list":
			continue
		case "primary_constructor_base_type":
			ch = firstNamed(ch)
		}
		if ch != nil {
			out = append(out, normalizeSpace(b.text(ch)))
		}
	}
	return out
}

// typeRef converts a written type. The ID is derived from the type's start
// offset so the same annotation keeps its ID across extractions.
func (b *csBuilder) typeRef(n *sitter.Node, role syntax.Role) syntax.TypeRef {
	if n == nil {
		return syntax.TypeRef{Role: role}
	}
	ref := syntax.TypeRef{
		ID:   syntax.NewNodeID(b.path, "type", int(n.StartByte())),
		Role: role,
		Span: b.span(n),
	}
	inner := n
	if n.Type() == "nullable_type" {
		ref.Nullable, ref.SourceNullable = true, true
		if t := fieldOf(n, "type"); t != nil {
			inner = t
		} else if t := firstNamed(n); t != nil {
			inner = t
		}
	}
	name := normalizeSpace(b.text(inner))
	if !ref.Nullable && strings.HasSuffix(name, "?") {
		ref.Nullable, ref.SourceNullable = true, true
		name = strings.TrimSuffix(name, "?")
	}
	ref.Name = name
	ref.Implicit = n.Type() == "implicit_type" || name == "var"
	return ref
}

func (b *csBuilder) variables(decl *sitter.Node, role syntax.Role) (syntax.TypeRef, []syntax.Variable) {
	if decl == nil {
		return syntax.TypeRef{Role: role}, nil
	}
	typ := b.typeRef(fieldOf(decl, "type"), role)
	var vars []syntax.Variable
	for _, vd := range namedChildren(decl) {
		if vd.Type() != "variable_declarator" {
			continue
		}
		name := fieldOf(vd, "name")
		if name == nil {
			name = childOfType(vd, "identifier")
		}
		vars = append(vars, syntax.Variable{
			ID:   b.id(vd),
			Name: b.text(name),
			Init: b.expr(b.initializer(vd)),
		})
	}
	return typ, vars
}

// initializer returns the expression after `=` in a declarator, property or
// parameter, whether or not the grammar wraps it in equals_value_clause.
func (b *csBuilder) initializer(n *sitter.Node) *sitter.Node {
	if evc := childOfType(n, "equals_value_clause"); evc != nil {
		return firstNamed(evc)
	}
	seen := false
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if !ch.IsNamed() {
			seen = seen || ch.Type() == "="
			continue
		}
		if seen && !skipped(ch) {
			return ch
		}
	}
	return nil
}

func (b *csBuilder) field(n *sitter.Node) *syntax.Field {
	f := &syntax.Field{Node: b.node(n)}
	f.Modifiers, f.Attributes = b.modifiers(n)
	f.Type, f.Vars = b.variables(childOfType(n, "variable_declaration"), syntax.RoleField)
	return f
}

func (b *csBuilder) property(n *sitter.Node) *syntax.Property {
	p := &syntax.Property{
		Node: b.node(n),
		Name: b.text(fieldOf(n, "name")),
		Type: b.typeRef(fieldOf(n, "type"), syntax.RoleProperty),
	}
	p.Modifiers, p.Attributes = b.modifiers(n)

	accessors := fieldOf(n, "accessors")
	if accessors == nil {
		accessors = childOfType(n, "accessor_list")
	}
	for _, a := range namedChildren(accessors) {
		if a.Type() == "accessor_declaration" {
			p.Accessors = append(p.Accessors, b.accessor(a))
		}
	}

	if v := fieldOf(n, "value"); v != nil {
		if v.Type() == "arrow_expression_clause" {
			p.ExprBody = b.arrow(v)
		} else {
			p.Init = b.expr(v)
		}
	}
	if p.ExprBody == nil {
		if arrow := childOfType(n, "arrow_expression_clause"); arrow != nil {
			p.ExprBody = b.arrow(arrow)
		}
	}
	if p.Init == nil && p.ExprBody == nil {
		p.Init = b.expr(b.initializer(n))
	}
	return p
}

func (b *csBuilder) accessor(n *sitter.Node) syntax.Accessor {
	var a syntax.Accessor
	if name := fieldOf(n, "name"); name != nil {
		a.Kind = syntax.AccessorKind(b.text(name))
	} else {
		for i := 0; i < int(n.ChildCount()); i++ {
			switch k := b.text(n.Child(i)); k {
			case "get", "set", "init":
				a.Kind = syntax.AccessorKind(k)
			}
		}
	}
	a.Body, a.ExprBody = b.body(n)
	return a
}

func (b *csBuilder) method(n *sitter.Node) *syntax.Method {
	ret := fieldOf(n, "returns", "type")
	m := &syntax.Method{
		Node:       b.node(n),
		ReturnType: b.typeRef(ret, syntax.RoleReturn),
		Name:       identName(b, fieldOf(n, "name")),
		TypeParams: b.typeParams(n),
		Params:     b.params(n),
	}
	m.Modifiers, m.Attributes = b.modifiers(n)
	m.Body, m.ExprBody = b.body(n)
	return m
}

func (b *csBuilder) constructor(n *sitter.Node) *syntax.Constructor {
	c := &syntax.Constructor{
		Node:   b.node(n),
		Name:   identName(b, fieldOf(n, "name")),
		Params: b.params(n),
	}
	c.Modifiers, _ = b.modifiers(n)
	if init := childOfType(n, "constructor_initializer"); init != nil {
		for i := 0; i < int(init.ChildCount()); i++ {
			switch b.text(init.Child(i)) {
			case "this":
				c.Chain = syntax.ChainThis
			case "base":
				c.Chain = syntax.ChainBase
			}
		}
		c.ChainArgs = b.arguments(childOfType(init, "argument_list"))
	}
	c.Body, c.ExprBody = b.body(n)
	return c
}

func (b *csBuilder) params(n *sitter.Node) []*syntax.Parameter {
	list := fieldOf(n, "parameters")
	if list == nil {
		list = childOfType(n, "parameter_list")
	}
	var out []*syntax.Parameter
	for _, ch := range namedChildren(list) {
		switch ch.Type() {
		case "parameter", "parameter_array":
			out = append(out, b.param(ch))
		}
	}
	if p := b.inlineParams(list); p != nil {
		out = append(out, p)
	}
	return out
}

// inlineParams builds the trailing params array of grammars that hang its
// type and name directly off the parameter list instead of wrapping them in
// a parameter node.
func (b *csBuilder) inlineParams(list *sitter.Node) *syntax.Parameter {
	typ, name := fieldOf(list, "type"), fieldOf(list, "name")
	if typ == nil || name == nil {
		return nil
	}
	start := typ
	for i := 0; i < int(list.ChildCount()); i++ {
		if ch := list.Child(i); !ch.IsNamed() && ch.Type() == "params" {
			start = ch
			break
		}
	}
	return &syntax.Parameter{
		Node: syntax.Node{
			ID:   syntax.NewNodeID(b.path, "parameter", int(start.StartByte())),
			Span: syntax.Span{Start: int(start.StartByte()), End: int(name.EndByte())},
		},
		Modifiers: syntax.Modifiers{"params"},
		Type:      b.typeRef(typ, syntax.RoleParameter),
		Name:      b.text(name),
	}
}

func (b *csBuilder) param(n *sitter.Node) *syntax.Parameter {
	p := &syntax.Parameter{Node: b.node(n)}
	typ, name := fieldOf(n, "type"), fieldOf(n, "name")
	if typ == nil || name == nil {
		// parameter_array has no fields: the type comes first, the name last.
		var rest []*sitter.Node
	collect:
		for i := 0; i < int(n.ChildCount()); i++ {
			ch := n.Child(i)
			switch {
			case ch.Type() == "=":
				break collect
			case !ch.IsNamed() || skipped(ch):
			case ch.Type() == "attribute_list", ch.Type() == "modifier", ch.Type() == "parameter_modifier", ch.Type() == "equals_value_clause":
			default:
				rest = append(rest, ch)
			}
		}
		if name == nil && len(rest) > 0 {
			name = rest[len(rest)-1]
		}
		if typ == nil && len(rest) > 1 {
			typ = rest[0]
		}
	}
	p.Type = b.typeRef(typ, syntax.RoleParameter)
	p.Name = b.text(name)
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		switch {
		case ch.Type() == "modifier" || ch.Type() == "parameter_modifier":
			p.Modifiers = append(p.Modifiers, b.text(ch))
		case !ch.IsNamed() && parameterModifiers[ch.Type()]:
			p.Modifiers = append(p.Modifiers, ch.Type())
		}
	}
	if n.Type() == "parameter_array" && !p.Modifiers.Has("params") {
		p.Modifiers = append(p.Modifiers, "params")
	}
	p.Default = b.expr(b.initializer(n))
	return p
}

// body returns the block or expression body of a member, accessor, local
// function or lambda.
func (b *csBuilder) body(n *sitter.Node) (*syntax.Block, syntax.Expr) {
	if body := fieldOf(n, "body"); body != nil {
		switch body.Type() {
		case "block":
			return b.block(body), nil
		case "arrow_expression_clause":
			return nil, b.arrow(body)
		}
	}
	if blk := childOfType(n, "block"); blk != nil {
		return b.block(blk), nil
	}
	if arrow := childOfType(n, "arrow_expression_clause"); arrow != nil {
		return nil, b.arrow(arrow)
	}
	return nil, nil
}

func (b *csBuilder) arrow(n *sitter.Node) syntax.Expr {
	return b.expr(firstNamed(n))
}

func (b *csBuilder) block(n *sitter.Node) *syntax.Block {
	blk := &syntax.Block{Node: b.node(n)}
	for _, ch := range namedChildren(n) {
		if s := b.stmt(ch); s != nil {
			blk.Stmts = append(blk.Stmts, s)
		}
	}
	return blk
}

func (b *csBuilder) stmt(n *sitter.Node) syntax.Stmt {
	switch n.Type() {
	case "block":
		return b.block(n)
	case "return_statement":
		return &syntax.Return{Node: b.node(n), Value: b.expr(firstNamed(n))}
	case "throw_statement":
		return &syntax.Throw{Node: b.node(n), Value: b.expr(firstNamed(n))}
	case "expression_statement":
		return &syntax.ExprStmt{Node: b.node(n), X: b.expr(firstNamed(n))}
	case "local_declaration_statement":
		vd := childOfType(n, "variable_declaration")
		if vd == nil {
			return &syntax.OtherStmt{Node: b.node(n)}
		}
		return &syntax.LocalDecl{Node: b.node(n), Decl: b.localDecl(vd)}
	case "local_function_statement":
		fn := &syntax.LocalFunction{
			Node:       b.node(n),
			Name:       identName(b, fieldOf(n, "name")),
			ReturnType: b.typeRef(fieldOf(n, "returns", "type"), syntax.RoleReturn),
			Params:     b.params(n),
		}
		fn.Body, fn.ExprBody = b.body(n)
		return fn
	case "empty_statement":
		return nil
	}
	c := &syntax.Compound{Node: b.node(n), Kind: strings.TrimSuffix(n.Type(), "_statement")}
	b.fillCompound(c, n)
	return c
}

func (b *csBuilder) fillCompound(c *syntax.Compound, n *sitter.Node) {
	for _, ch := range namedChildren(n) {
		t := ch.Type()
		switch {
		case t == "block" || strings.HasSuffix(t, "_statement"):
			if s := b.stmt(ch); s != nil {
				c.Body = append(c.Body, s)
			}
		case t == "variable_declaration":
			c.Body = append(c.Body, &syntax.LocalDecl{Node: b.node(ch), Decl: b.localDecl(ch)})
		case structuralNodes[t]:
			b.fillCompound(c, ch)
		case typeNodes[t]:
		default:
			if e := b.expr(ch); e != nil {
				c.Exprs = append(c.Exprs, e)
			}
		}
	}
}

func (b *csBuilder) localDecl(vd *sitter.Node) *syntax.LocalDeclaration {
	typ, vars := b.variables(vd, syntax.RoleLocal)
	return &syntax.LocalDeclaration{Node: b.node(vd), Type: typ, Vars: vars}
}

func (b *csBuilder) expr(n *sitter.Node) syntax.Expr {
	if n == nil {
		return nil
	}
	t := n.Type()
	switch t {
	case "parenthesized_expression":
		if inner := firstNamed(n); inner != nil {
			return b.expr(inner)
		}
	case "null_literal":
		return &syntax.Literal{Node: b.leaf(n), Kind: syntax.LiteralNull}
	case "default_expression", "default_literal":
		return &syntax.Literal{Node: b.leaf(n), Kind: syntax.LiteralDefault}
	case "this_expression", "this":
		lit := &syntax.Literal{Node: b.node(n)}
		lit.Text = "this"
		return lit
	case "base_expression", "base":
		lit := &syntax.Literal{Node: b.node(n)}
		lit.Text = "base"
		return lit
	case "interpolated_string_expression", "typeof_expression", "sizeof_expression", "verbatim_string_literal", "raw_string_literal":
		return &syntax.Literal{Node: b.leaf(n)}
	case "identifier", "generic_name":
		return &syntax.Identifier{Node: b.leaf(n), Name: identName(b, n)}
	case "member_access_expression":
		return &syntax.MemberAccess{
			Node:     b.node(n),
			Receiver: b.expr(fieldOf(n, "expression")),
			Name:     identName(b, fieldOf(n, "name")),
		}
	case "invocation_expression":
		call := b.invocation(n)
		if !conditionalChain(callee(n)) {
			return call
		}
		// a?.M() yields null when a is null, whatever M returns.
		return &syntax.OtherExpr{
			Node:     syntax.Node{ID: syntax.NewNodeID(b.path, syntax.OtherConditionalAccess, int(n.StartByte())), Span: b.span(n)},
			Kind:     syntax.OtherConditionalAccess,
			Children: []syntax.Expr{call},
		}
	case "conditional_expression":
		return &syntax.Conditional{
			Node: b.node(n),
			Cond: b.expr(fieldOf(n, "condition")),
			Then: b.expr(fieldOf(n, "consequence")),
			Else: b.expr(fieldOf(n, "alternative")),
		}
	case "cast_expression":
		return &syntax.Cast{
			Node:    b.node(n),
			Type:    b.typeRef(fieldOf(n, "type"), syntax.RoleCast),
			Operand: b.expr(fieldOf(n, "value")),
		}
	case "object_creation_expression", "implicit_object_creation_expression":
		oc := &syntax.ObjectCreation{Node: b.node(n)}
		if typ := fieldOf(n, "type"); typ != nil {
			oc.Type = b.typeRef(typ, syntax.RoleOther)
		}
		args := fieldOf(n, "arguments")
		if args == nil {
			args = childOfType(n, "argument_list")
		}
		oc.Args = b.arguments(args)
		return oc
	case "array_creation_expression", "implicit_array_creation_expression", "anonymous_object_creation_expression",
		"stackalloc_expression", "implicit_stackalloc_expression", "collection_expression":
		return &syntax.OtherExpr{Node: b.node(n), Kind: syntax.OtherCreation, Children: b.exprChildren(n)}
	case "assignment_expression":
		return &syntax.Assignment{
			Node:  b.node(n),
			Left:  b.expr(fieldOf(n, "left")),
			Right: b.expr(fieldOf(n, "right")),
		}
	case "lambda_expression", "anonymous_method_expression":
		l := &syntax.Lambda{Node: b.node(n)}
		if body := fieldOf(n, "body"); body != nil && body.Type() != "block" {
			l.ExprBody = b.expr(body)
		} else if blk := childOfType(n, "block"); blk != nil {
			l.Body = b.block(blk)
		}
		return l
	case "as_expression":
		left := fieldOf(n, "left")
		if left == nil {
			left = firstNamed(n)
		}
		return b.other(n, syntax.OtherAs, b.expr(left))
	case "binary_expression":
		left, right := b.expr(fieldOf(n, "left")), b.expr(fieldOf(n, "right"))
		switch b.text(fieldOf(n, "operator")) {
		case "??":
			return b.other(n, syntax.OtherCoalesce, left, right)
		case "as":
			return b.other(n, syntax.OtherAs, left)
		}
		return b.other(n, t, left, right)
	case "conditional_access_expression":
		return &syntax.OtherExpr{Node: b.node(n), Kind: syntax.OtherConditionalAccess, Children: b.exprChildren(n)}
	case "postfix_unary_expression":
		if strings.HasSuffix(strings.TrimSpace(b.text(n)), "!") {
			return &syntax.OtherExpr{Node: b.node(n), Kind: syntax.OtherSuppress, Children: b.exprChildren(n)}
		}
	case "member_binding_expression":
		return &syntax.OtherExpr{Node: b.node(n), Kind: t}
	}
	if strings.HasSuffix(t, "_literal") {
		return &syntax.Literal{Node: b.leaf(n)}
	}
	return &syntax.OtherExpr{Node: b.node(n), Kind: t, Children: b.exprChildren(n)}
}

func (b *csBuilder) other(n *sitter.Node, kind string, children ...syntax.Expr) *syntax.OtherExpr {
	o := &syntax.OtherExpr{Node: b.node(n), Kind: kind}
	for _, c := range children {
		if c != nil {
			o.Children = append(o.Children, c)
		}
	}
	return o
}

func (b *csBuilder) invocation(n *sitter.Node) *syntax.Invocation {
	call := &syntax.Invocation{Node: b.node(n)}
	if fn := callee(n); fn != nil {
		if fn.Type() == "conditional_access_expression" {
			if binding := childOfType(fn, "member_binding_expression"); binding != nil {
				cond := fieldOf(fn, "condition")
				if cond == nil {
					cond = firstNamed(fn)
				}
				call.Receiver = b.expr(cond)
				fn = binding
			}
		}
		switch fn.Type() {
		case "member_access_expression":
			call.Receiver = b.expr(fieldOf(fn, "expression"))
			call.Name = identName(b, fieldOf(fn, "name"))
		case "identifier", "generic_name":
			call.Name = identName(b, fn)
		case "member_binding_expression":
			// a?.M(): the receiver sits on the enclosing conditional access.
			name := fieldOf(fn, "name")
			if name == nil {
				name = lastNamed(fn)
			}
			if call.Receiver == nil {
				call.Receiver = &syntax.OtherExpr{Node: b.node(fn), Kind: fn.Type()}
			}
			call.Name = identName(b, name)
		default:
			call.Receiver = b.expr(fn)
		}
	}
	call.Text = call.Name
	args := fieldOf(n, "arguments")
	if args == nil {
		args = childOfType(n, "argument_list")
	}
	call.Args = b.arguments(args)
	return call
}

func callee(call *sitter.Node) *sitter.Node {
	if fn := fieldOf(call, "function"); fn != nil {
		return fn
	}
	return firstNamed(call)
}

// conditionalChain reports whether n is reached through a null-conditional
// access, as in a?.M() or a?.B.M().
func conditionalChain(n *sitter.Node) bool {
	for n != nil {
		switch n.Type() {
		case "conditional_access_expression":
			return true
		case "member_access_expression", "element_access_expression":
			n = fieldOf(n, "expression")
		case "invocation_expression":
			n = callee(n)
		default:
			return false
		}
	}
	return false
}

func (b *csBuilder) arguments(list *sitter.Node) []syntax.Argument {
	var out []syntax.Argument
	for _, ch := range namedChildren(list) {
		if ch.Type() == "argument" {
			out = append(out, b.argument(ch))
		}
	}
	return out
}

func (b *csBuilder) argument(n *sitter.Node) syntax.Argument {
	var arg syntax.Argument
	name := fieldOf(n, "name")
	if name != nil {
		arg.Name = b.text(name)
	}
	var value *sitter.Node
	for _, ch := range namedChildren(n) {
		switch {
		case ch.Type() == "name_colon":
			arg.Name = identName(b, firstNamed(ch))
		case name != nil && sameNode(ch, name):
		default:
			value = ch
		}
	}
	arg.Value = b.expr(value)
	return arg
}

// exprChildren flattens the sub-expressions of a construct the classifier
// does not model. Object initializer assignments contribute only their right
// side, so they are never mistaken for assignments to the enclosing type's
// members.
func (b *csBuilder) exprChildren(n *sitter.Node) []syntax.Expr {
	var out []syntax.Expr
	add := func(e syntax.Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	for _, ch := range namedChildren(n) {
		t := ch.Type()
		switch {
		case t == "argument_list" || t == "bracketed_argument_list":
			for _, a := range b.arguments(ch) {
				add(a.Value)
			}
		case t == "argument":
			add(b.argument(ch).Value)
		case t == "initializer_expression" || t == "with_initializer_expression" || t == "with_expression_initializer":
			for _, item := range namedChildren(ch) {
				if item.Type() == "assignment_expression" || item.Type() == "with_initializer" {
					add(b.expr(lastNamed(item)))
					continue
				}
				add(b.expr(item))
			}
		case t == "block" || strings.HasSuffix(t, "_statement"), typeNodes[t]:
		case t == "switch_expression_arm" || t == "interpolation" || t == "when_clause":
			out = append(out, b.exprChildren(ch)...)
		default:
			add(b.expr(ch))
		}
	}
	return out
}

func (b *csBuilder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func (b *csBuilder) id(n *sitter.Node) syntax.NodeID {
	return syntax.NewNodeID(b.path, n.Type(), int(n.StartByte()))
}

func (b *csBuilder) span(n *sitter.Node) syntax.Span {
	return syntax.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (b *csBuilder) node(n *sitter.Node) syntax.Node {
	return syntax.Node{ID: b.id(n), Span: b.span(n)}
}

// leaf is node plus the source text; only leaves keep their text.
func (b *csBuilder) leaf(n *sitter.Node) syntax.Node {
	node := b.node(n)
	node.Text = b.text(n)
	return node
}

// identName returns the simple name of an identifier, generic name or
// qualified name.
func identName(b *csBuilder, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return b.text(n)
	case "generic_name":
		if id := childOfType(n, "identifier"); id != nil {
			return b.text(id)
		}
	case "qualified_name":
		return identName(b, lastNamed(n))
	}
	name := normalizeSpace(b.text(n))
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// skipped reports trivia nodes: comments and preprocessor lines.
func skipped(n *sitter.Node) bool {
	t := n.Type()
	return t == "comment" || strings.HasPrefix(t, "preproc")
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if ch := n.NamedChild(i); ch != nil && !skipped(ch) {
			out = append(out, ch)
		}
	}
	return out
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if ch := namedChildren(n); len(ch) > 0 {
		return ch[0]
	}
	return nil
}

func lastNamed(n *sitter.Node) *sitter.Node {
	if ch := namedChildren(n); len(ch) > 0 {
		return ch[len(ch)-1]
	}
	return nil
}

func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, ch := range namedChildren(n) {
		for _, t := range types {
			if ch.Type() == t {
				return ch
			}
		}
	}
	return nil
}

// fieldOf returns the first of the named fields present on n.
func fieldOf(n *sitter.Node, names ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for _, name := range names {
		if ch := n.ChildByFieldName(name); ch != nil {
			return ch
		}
	}
	return nil
}

func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); !ch.IsNamed() && ch.Type() == token {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
