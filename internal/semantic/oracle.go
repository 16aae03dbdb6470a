package semantic

import (
	"context"
	"strings"

	"nrtrewriter/internal/syntax"
)

// Classification is the flow state of an expression at the point it is
// evaluated.
type Classification int

const (
	Unknown Classification = iota
	NotNull
	MaybeNull
)

func (c Classification) String() string {
	switch c {
	case NotNull:
		return "not-null"
	case MaybeNull:
		return "maybe-null"
	default:
		return "unknown"
	}
}

// Symbol names a method independently of any tree version:
// Namespace.Type.Method(ParamType,...), built from un-annotated type names.
type Symbol string

// Name returns the simple method name of the symbol.
func (s Symbol) Name() string {
	str := string(s)
	if i := strings.IndexByte(str, '('); i >= 0 {
		str = str[:i]
	}
	if i := strings.LastIndexByte(str, '.'); i >= 0 {
		str = str[i+1:]
	}
	return str
}

// Declaration locates a method declaration in some unit of the program.
type Declaration struct {
	Symbol Symbol
	Path   string
	Owner  *syntax.TypeDecl
	Method *syntax.Method
}

// Signature is the nullable intent declared on a method: whether its return
// type is nullable and the names of its nullable parameters in declaration
// order.
type Signature struct {
	ReturnNullable bool
	NullableParams []string
}

// SignatureOf reads the declared nullable intent of m.
func SignatureOf(m *syntax.Method) Signature {
	sig := Signature{ReturnNullable: m.ReturnType.Nullable}
	for _, p := range m.Params {
		if p.Type.Nullable {
			sig.NullableParams = append(sig.NullableParams, p.Name)
		}
	}
	return sig
}

// Model answers flow and symbol questions about one compilation unit.
// Absence of information is reported as Unknown or false, never as an error.
type Model interface {
	Classify(e syntax.Expr) Classification
	SymbolOf(call *syntax.Invocation) (Symbol, bool)
	DeclarationOf(sym Symbol) (Declaration, bool)
	IsValueType(t syntax.TypeRef) bool
}

// Solution answers whole-program questions about method families.
type Solution interface {
	DeclaredSymbol(owner *syntax.TypeDecl, m *syntax.Method) Symbol
	DeclarationOf(sym Symbol) (Declaration, bool)
	FindImplementations(ctx context.Context, sym Symbol) ([]Symbol, error)
	FindOverrides(ctx context.Context, sym Symbol) ([]Symbol, error)
}

// SymbolFor builds the symbol of a method declared in owner.
func SymbolFor(owner *syntax.TypeDecl, m *syntax.Method) Symbol {
	var b strings.Builder
	b.WriteString(owner.QualifiedName())
	b.WriteByte('.')
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(normalizeTypeName(p.Type.Name))
	}
	b.WriteByte(')')
	return Symbol(b.String())
}

func normalizeTypeName(name string) string {
	return strings.Join(strings.Fields(name), "")
}
