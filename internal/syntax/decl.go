package syntax

// Member is a declaration inside a type body. The set of implementations is
// closed: Field, Property, Method, Constructor and TypeDecl (nested types).
type Member interface {
	NodeID() NodeID
	memberNode()
}

type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindStruct    TypeKind = "struct"
	KindInterface TypeKind = "interface"
	KindRecord    TypeKind = "record"
	KindEnum      TypeKind = "enum"
)

// Variable is one declarator of a field or local declaration.
type Variable struct {
	ID   NodeID
	Name string
	Init Expr
}

type Field struct {
	Node
	Modifiers  Modifiers
	Attributes []string
	Type       TypeRef
	Vars       []Variable
}

type AccessorKind string

const (
	AccessorGet  AccessorKind = "get"
	AccessorSet  AccessorKind = "set"
	AccessorInit AccessorKind = "init"
)

type Accessor struct {
	Kind     AccessorKind
	Body     *Block
	ExprBody Expr
}

// IsAuto reports an accessor without a body.
func (a Accessor) IsAuto() bool {
	return a.Body == nil && a.ExprBody == nil
}

type Property struct {
	Node
	Modifiers  Modifiers
	Attributes []string
	Type       TypeRef
	Name       string
	Accessors  []Accessor
	// ExprBody is set for `T P => expr;`.
	ExprBody Expr
	Init     Expr
}

// IsAutoProperty reports a property whose accessors all lack bodies.
func (p *Property) IsAutoProperty() bool {
	if p.ExprBody != nil || len(p.Accessors) == 0 {
		return false
	}
	for _, a := range p.Accessors {
		if !a.IsAuto() {
			return false
		}
	}
	return true
}

// Getter returns the get accessor, if declared.
func (p *Property) Getter() (Accessor, bool) {
	for _, a := range p.Accessors {
		if a.Kind == AccessorGet {
			return a, true
		}
	}
	return Accessor{}, false
}

type Parameter struct {
	Node
	Modifiers Modifiers
	Type      TypeRef
	Name      string
	Default   Expr
}

type Method struct {
	Node
	Modifiers  Modifiers
	Attributes []string
	ReturnType TypeRef
	Name       string
	TypeParams []string
	Params     []*Parameter
	Body       *Block
	ExprBody   Expr
}

// HasBody reports a method with a block or expression body.
func (m *Method) HasBody() bool {
	return m.Body != nil || m.ExprBody != nil
}

// Param returns the parameter with the given name.
func (m *Method) Param(name string) (*Parameter, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

type ChainKind string

const (
	ChainNone ChainKind = ""
	ChainThis ChainKind = "this"
	ChainBase ChainKind = "base"
)

type Constructor struct {
	Node
	Modifiers Modifiers
	Name      string
	Params    []*Parameter
	Chain     ChainKind
	ChainArgs []Argument
	Body      *Block
	ExprBody  Expr
}

// IsRoot reports a constructor that does not delegate to another constructor
// of the same type.
func (c *Constructor) IsRoot() bool {
	return c.Chain != ChainThis
}

type LocalDeclaration struct {
	Node
	Type TypeRef
	Vars []Variable
}

type TypeDecl struct {
	Node
	Kind       TypeKind
	Name       string
	Namespace  string
	Outer      string
	Modifiers  Modifiers
	Attributes []string
	TypeParams []string
	Bases      []string
	Members    []Member
}

// QualifiedName is Namespace.Outer.Name with empty parts omitted.
func (t *TypeDecl) QualifiedName() string {
	name := t.Name
	if t.Outer != "" {
		name = t.Outer + "." + name
	}
	if t.Namespace != "" {
		name = t.Namespace + "." + name
	}
	return name
}

// Constructors returns the type's constructors in declaration order.
func (t *TypeDecl) Constructors() []*Constructor {
	var out []*Constructor
	for _, m := range t.Members {
		if c, ok := m.(*Constructor); ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *TypeDecl) Fields() []*Field {
	var out []*Field
	for _, m := range t.Members {
		if f, ok := m.(*Field); ok {
			out = append(out, f)
		}
	}
	return out
}

func (t *TypeDecl) Methods() []*Method {
	var out []*Method
	for _, m := range t.Members {
		if md, ok := m.(*Method); ok {
			out = append(out, md)
		}
	}
	return out
}

// IsClassLike reports a class, struct or record: the kinds that own storage.
func (t *TypeDecl) IsClassLike() bool {
	return t.Kind == KindClass || t.Kind == KindStruct || t.Kind == KindRecord
}

// IsTypeParam reports whether name is a type parameter of the type t or of
// the method m. Either may be nil.
func IsTypeParam(name string, t *TypeDecl, m *Method) bool {
	if m != nil {
		for _, p := range m.TypeParams {
			if p == name {
				return true
			}
		}
	}
	if t != nil {
		for _, p := range t.TypeParams {
			if p == name {
				return true
			}
		}
	}
	return false
}

func (*Field) memberNode()       {}
func (*Property) memberNode()    {}
func (*Method) memberNode()      {}
func (*Constructor) memberNode() {}
func (*TypeDecl) memberNode()    {}

// Unit is one parsed compilation unit. Source is the text the tree was built
// from; spans in the tree refer to it.
type Unit struct {
	Path   string
	Source []byte
	Types  []*TypeDecl
}

// AllTypes returns every type declared in the unit, nested types included,
// in source order.
func (u *Unit) AllTypes() []*TypeDecl {
	var out []*TypeDecl
	var walk func(types []*TypeDecl)
	walk = func(types []*TypeDecl) {
		for _, t := range types {
			out = append(out, t)
			var nested []*TypeDecl
			for _, m := range t.Members {
				if nt, ok := m.(*TypeDecl); ok {
					nested = append(nested, nt)
				}
			}
			walk(nested)
		}
	}
	walk(u.Types)
	return out
}

// FindMethod looks up a method declaration by ID together with its owner.
func (u *Unit) FindMethod(id NodeID) (*TypeDecl, *Method, bool) {
	for _, t := range u.AllTypes() {
		for _, m := range t.Members {
			if md, ok := m.(*Method); ok && md.ID == id {
				return t, md, true
			}
		}
	}
	return nil, nil, false
}
