package fields

import (
	"testing"

	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
	st "nrtrewriter/internal/syntax/syntaxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClass struct {
	b      *st.Builder
	decl   *syntax.TypeDecl
	fields []*syntax.Field
}

// newTestClass declares field1..field3 of type string plus the given
// constructors, each assigning the listed names.
func newTestClass(ctors ...func(b *st.Builder) *syntax.Constructor) testClass {
	b := st.New("test.cs")
	fs := []*syntax.Field{
		b.Field("private", "string", "field1", nil),
		b.Field("private", "string", "field2", nil),
		b.Field("private", "string", "field3", nil),
	}
	var members []syntax.Member
	for _, f := range fs {
		members = append(members, f)
	}
	for _, c := range ctors {
		members = append(members, c(b))
	}
	return testClass{b: b, decl: b.Class("TestClass", []string{"TestBase"}, members...), fields: fs}
}

func ctor(chain syntax.ChainKind, assigned ...string) func(b *st.Builder) *syntax.Constructor {
	return func(b *st.Builder) *syntax.Constructor {
		var stmts []syntax.Stmt
		for _, name := range assigned {
			stmts = append(stmts, b.Do(b.Assign(b.Ident(name), b.Lit(`"hello"`))))
		}
		return b.Ctor("TestClass", chain, nil, b.Block(stmts...))
	}
}

func (tc testClass) candidates() []Candidate {
	var out []Candidate
	for _, f := range tc.fields {
		out = append(out, Candidate{ID: f.ID, Names: []string{f.Vars[0].Name}, Static: f.Modifiers.IsStatic()})
	}
	return out
}

func (tc testClass) uninitialized(t *testing.T) []string {
	t.Helper()
	ids := UninitializedFields(tc.decl, tc.candidates())
	var names []string
	for _, f := range tc.fields {
		if ids[f.ID] {
			names = append(names, f.Vars[0].Name)
		}
	}
	return names
}

func TestUninitializedFields(t *testing.T) {
	tests := []struct {
		name  string
		ctors []func(b *st.Builder) *syntax.Constructor
		want  []string
	}{
		{
			name:  "no initializations",
			ctors: []func(b *st.Builder) *syntax.Constructor{ctor(syntax.ChainThis), ctor(syntax.ChainNone)},
			want:  []string{"field1", "field2", "field3"},
		},
		{
			name:  "initializer in the root constructor",
			ctors: []func(b *st.Builder) *syntax.Constructor{ctor(syntax.ChainThis), ctor(syntax.ChainNone, "field1")},
			want:  []string{"field2", "field3"},
		},
		{
			name:  "base initializer is a root",
			ctors: []func(b *st.Builder) *syntax.Constructor{ctor(syntax.ChainBase, "field1")},
			want:  []string{"field2", "field3"},
		},
		{
			name:  "assignment in this-chained constructor is not recognized",
			ctors: []func(b *st.Builder) *syntax.Constructor{ctor(syntax.ChainThis, "field1"), ctor(syntax.ChainNone, "field2")},
			want:  []string{"field1", "field3"},
		},
		{
			name: "every root assigns everything",
			ctors: []func(b *st.Builder) *syntax.Constructor{
				ctor(syntax.ChainNone, "field1", "field2", "field3"),
				ctor(syntax.ChainNone, "field1", "field2", "field3"),
				ctor(syntax.ChainNone, "field1", "field2", "field3"),
			},
			want: nil,
		},
		{
			name: "one root misses a field",
			ctors: []func(b *st.Builder) *syntax.Constructor{
				ctor(syntax.ChainNone, "field1", "field2", "field3"),
				ctor(syntax.ChainNone, "field1", "field3"),
				ctor(syntax.ChainNone, "field1", "field2", "field3"),
			},
			want: []string{"field2"},
		},
		{
			name: "several roots miss fields",
			ctors: []func(b *st.Builder) *syntax.Constructor{
				ctor(syntax.ChainNone, "field1", "field2", "field3"),
				ctor(syntax.ChainNone, "field1"),
				ctor(syntax.ChainNone, "field2", "field3"),
			},
			want: []string{"field1", "field2", "field3"},
		},
		{
			name:  "no constructors",
			ctors: nil,
			want:  []string{"field1", "field2", "field3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestClass(tt.ctors...)
			assert.Equal(t, tt.want, tc.uninitialized(t))
		})
	}
}

func TestUninitializedFields_ConstructorOrderDoesNotMatter(t *testing.T) {
	a := ctor(syntax.ChainNone, "field1", "field2")
	b := ctor(syntax.ChainNone, "field2")
	c := ctor(syntax.ChainThis, "field3")

	first := newTestClass(a, b, c).uninitialized(t)
	second := newTestClass(c, b, a).uninitialized(t)

	assert.Equal(t, []string{"field1", "field3"}, first)
	assert.Equal(t, first, second)
}

func TestUninitializedFields_StaticFieldIsAlwaysUninitialized(t *testing.T) {
	tc := newTestClass(ctor(syntax.ChainNone, "field1", "field2", "field3"))
	tc.fields[2].Modifiers = syntax.Modifiers{"private", "static"}

	assert.Equal(t, []string{"field3"}, tc.uninitialized(t))
}

func TestUninitializedFields_ThisQualifiedAndNestedAssignments(t *testing.T) {
	tc := newTestClass(func(b *st.Builder) *syntax.Constructor {
		return b.Ctor("TestClass", syntax.ChainNone, nil, b.Block(
			b.Do(b.Assign(b.Member(b.This(), "field1"), b.Lit(`""`))),
			b.If(b.Ident("flag"), b.Do(b.Assign(b.Ident("field2"), b.Lit(`""`)))),
		))
	})

	assert.Equal(t, []string{"field3"}, tc.uninitialized(t))
}

func TestInitRecord(t *testing.T) {
	tc := newTestClass(ctor(syntax.ChainNone, "field1"))
	record := InitRecord(tc.decl, tc.candidates())

	require.Len(t, record, 3)
	assert.Equal(t, Guaranteed, record[tc.fields[0].ID])
	assert.Equal(t, PossiblyUninitialized, record[tc.fields[1].ID])
	assert.Equal(t, "possibly-uninitialized", record[tc.fields[2].ID].String())
}

func TestAssignedInEveryRootConstructor(t *testing.T) {
	tc := newTestClass(ctor(syntax.ChainNone, "Name"), ctor(syntax.ChainBase, "Name"), ctor(syntax.ChainThis))
	assert.True(t, AssignedInEveryRootConstructor(tc.decl, "Name"))
	assert.False(t, AssignedInEveryRootConstructor(tc.decl, "Other"))

	empty := newTestClass()
	assert.False(t, AssignedInEveryRootConstructor(empty.decl, "Name"))
}

func TestLocateFields(t *testing.T) {
	b := st.New("test.cs")
	plain := b.Field("private", "string", "plain", nil)
	nullInit := b.Field("private", "string", "nullInit", b.Null())
	valueInit := b.Field("private", "string", "valueInit", b.Lit(`"x"`))
	readonly := b.Field("private readonly", "string", "ro", nil)
	constant := b.Field("private const", "string", "c", b.Lit(`"x"`))
	number := b.Field("private", "int", "n", nil)
	decl := b.Class("A", nil, plain, nullInit, valueInit, readonly, constant, number)
	u := b.Unit(decl)
	model := semantic.NewWorkspace([]*syntax.Unit{u}).ModelFor(u)

	var ids []syntax.NodeID
	for _, c := range LocateFields(model, decl) {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []syntax.NodeID{plain.ID, nullInit.ID}, ids)
}
