package semantic

import (
	"context"
	"testing"

	"nrtrewriter/internal/syntax"
	st "nrtrewriter/internal/syntax/syntaxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Model    = (*UnitModel)(nil)
	_ Solution = (*Workspace)(nil)
)

func TestClassify_Literals(t *testing.T) {
	b := st.New("a.cs")
	u := b.Unit(b.Class("A", nil))
	m := NewWorkspace([]*syntax.Unit{u}).ModelFor(u)

	assert.Equal(t, MaybeNull, m.Classify(b.Null()))
	assert.Equal(t, MaybeNull, m.Classify(b.Default()))
	assert.Equal(t, NotNull, m.Classify(b.Lit(`"x"`)))
	assert.Equal(t, NotNull, m.Classify(b.New("List<string>")))
	assert.Equal(t, MaybeNull, m.Classify(b.Cond(b.Ident("c"), b.Lit(`"x"`), b.Null())))
	assert.Equal(t, NotNull, m.Classify(b.Cond(b.Ident("c"), b.Lit(`"x"`), b.Lit(`"y"`))))
	assert.Equal(t, MaybeNull, m.Classify(b.Cast("object", b.Null())))
	assert.Equal(t, MaybeNull, m.Classify(b.Other(syntax.OtherAs, b.Ident("o"))))
	assert.Equal(t, NotNull, m.Classify(b.Other(syntax.OtherCoalesce, b.Null(), b.Lit(`""`))))
	assert.Equal(t, Unknown, m.Classify(b.Ident("nowhere")))
}

func TestClassify_FollowsDeclarations(t *testing.T) {
	b := st.New("a.cs")
	useLocal := b.Ident("s")
	useParam := b.Ident("p")
	useOpt := b.Ident("opt")
	useField := b.Ident("name")
	useNullableField := b.Member(b.This(), "label")
	body := b.Block(
		b.Local("string", "s", nil),
		b.Do(b.Assign(b.Ident("s"), b.Null())),
		b.Do(useLocal),
		b.Do(useParam),
		b.Do(useOpt),
		b.Do(useField),
		b.Return(useNullableField),
	)
	opt := b.Param("string", "opt")
	opt.Default = b.Null()
	method := b.Method("", "string", "Run", []*syntax.Parameter{b.Param("string", "p"), opt}, body)
	u := b.Unit(b.Class("A", nil,
		b.Field("", "string", "name", nil),
		b.Field("", "string?", "label", nil),
		method,
	))
	m := NewWorkspace([]*syntax.Unit{u}).ModelFor(u)

	assert.Equal(t, MaybeNull, m.Classify(useLocal), "local assigned null")
	assert.Equal(t, NotNull, m.Classify(useParam))
	assert.Equal(t, MaybeNull, m.Classify(useOpt), "parameter defaulting to null")
	assert.Equal(t, NotNull, m.Classify(useField))
	assert.Equal(t, MaybeNull, m.Classify(useNullableField))
}

func TestClassify_CallUsesDeclaredReturn(t *testing.T) {
	b := st.New("a.cs")
	callMaybe := b.Call(nil, "Find")
	callSure := b.Call(b.This(), "Make")
	callLib := b.Call(b.Ident("Console"), "ReadLine")
	callDefault := b.Call(b.Ident("items"), "FirstOrDefault")
	callGuarded := b.Call(b.This(), "Make")
	guarded := b.Other(syntax.OtherConditionalAccess, callGuarded)
	u := b.Unit(b.Class("A", nil,
		b.Method("", "string?", "Find", nil, b.Block(b.Return(b.Null()))),
		b.Method("", "string", "Make", nil, b.Block(b.Return(b.Lit(`"x"`)))),
		b.Method("", "void", "Run", nil, b.Block(b.Do(callMaybe), b.Do(callSure), b.Do(callLib), b.Do(callDefault), b.Do(guarded))),
	))
	m := NewWorkspace([]*syntax.Unit{u}).ModelFor(u)

	assert.Equal(t, MaybeNull, m.Classify(callMaybe))
	assert.Equal(t, NotNull, m.Classify(callSure))
	assert.Equal(t, Unknown, m.Classify(callLib))
	assert.Equal(t, MaybeNull, m.Classify(callDefault))
	assert.Equal(t, NotNull, m.Classify(callGuarded))
	assert.Equal(t, MaybeNull, m.Classify(guarded), "a?.M() is null when a is")
}

func TestSymbolOf_ResolvesAcrossFiles(t *testing.T) {
	lib := st.New("lib.cs")
	target := lib.Method("public static", "string", "Lookup", []*syntax.Parameter{lib.Param("string", "key")}, lib.Block(lib.Return(lib.Null())))
	libUnit := lib.Unit(lib.Class("Registry", nil, target))

	app := st.New("app.cs")
	call := app.Call(app.Ident("Registry"), "Lookup", st.Arg(app.Null()))
	appUnit := app.Unit(app.Class("App", nil, app.Method("", "void", "Run", nil, app.Block(app.Do(call)))))

	ws := NewWorkspace([]*syntax.Unit{libUnit, appUnit})
	m := ws.ModelFor(appUnit)

	sym, ok := m.SymbolOf(call)
	require.True(t, ok)
	assert.Equal(t, Symbol("App.Registry.Lookup(string)"), sym)
	assert.Equal(t, "Lookup", sym.Name())

	d, ok := m.DeclarationOf(sym)
	require.True(t, ok)
	assert.Equal(t, "lib.cs", d.Path)
	assert.Same(t, target, d.Method)
}

func TestSymbolOf_UnknownReceiverTypeDoesNotResolve(t *testing.T) {
	b := st.New("a.cs")
	call := b.Call(b.Ident("list"), "Add", st.Arg(b.Null()))
	u := b.Unit(b.Class("A", nil,
		b.Method("", "void", "Add", []*syntax.Parameter{b.Param("string", "s")}, b.Block()),
		b.Method("", "void", "Run", nil, b.Block(
			b.Local("List<string>", "list", b.New("List<string>")),
			b.Do(call),
		)),
	))
	m := NewWorkspace([]*syntax.Unit{u}).ModelFor(u)

	_, ok := m.SymbolOf(call)
	assert.False(t, ok)
}

func TestModelFor_OverlaysCurrentTree(t *testing.T) {
	b := st.New("a.cs")
	call := b.Call(nil, "Find")
	find := b.Method("", "string", "Find", nil, b.Block(b.Return(b.Null())))
	u := b.Unit(b.Class("A", nil, find, b.Method("", "void", "Run", nil, b.Block(b.Do(call)))))
	ws := NewWorkspace([]*syntax.Unit{u})

	assert.Equal(t, NotNull, ws.ModelFor(u).Classify(call))

	updated := syntax.MapMembers(u, func(_ *syntax.TypeDecl, m syntax.Member) syntax.Member {
		if md, ok := m.(*syntax.Method); ok && md.Name == "Find" {
			c := *md
			c.ReturnType = c.ReturnType.ToNullable()
			return &c
		}
		return m
	})
	assert.Equal(t, MaybeNull, ws.ModelFor(updated).Classify(call))
}

func TestSignatureOf(t *testing.T) {
	b := st.New("a.cs")
	m := b.Method("public", "string?", "Find",
		[]*syntax.Parameter{b.Param("string?", "key"), b.Param("int", "limit"), b.Param("object?", "hint")}, nil)

	sig := SignatureOf(m)
	assert.True(t, sig.ReturnNullable)
	assert.Equal(t, []string{"key", "hint"}, sig.NullableParams)

	assert.Empty(t, SignatureOf(b.Method("", "void", "Run", nil, nil)).NullableParams)
}

func TestIsValueType(t *testing.T) {
	b := st.New("a.cs")
	u := b.Unit(b.Class("A", nil), b.Struct("Point"))
	m := NewWorkspace([]*syntax.Unit{u}).ModelFor(u)

	for _, name := range []string{"int", "bool", "Guid", "System.DateTime", "Point", "(int, string)", "Nullable<int>"} {
		assert.True(t, m.IsValueType(syntax.TypeRef{Name: name}), name)
	}
	for _, name := range []string{"string", "A", "int[]", "List<int>", "object"} {
		assert.False(t, m.IsValueType(syntax.TypeRef{Name: name}), name)
	}
}

func TestFindImplementationsAndOverrides(t *testing.T) {
	b := st.New("a.cs")
	iface := b.Interface("IRepo", nil, b.Method("", "string", "Get", []*syntax.Parameter{b.Param("int", "id")}, nil))
	base := b.Class("RepoBase", []string{"IRepo"},
		b.Method("public virtual", "string", "Get", []*syntax.Parameter{b.Param("int", "id")}, b.Block(b.Return(b.Lit(`"x"`)))),
	)
	derived := b.Class("SqlRepo", []string{"RepoBase"},
		b.Method("public override", "string", "Get", []*syntax.Parameter{b.Param("int", "id")}, b.Block(b.Return(b.Null()))),
		b.Method("public", "string", "Get", []*syntax.Parameter{b.Param("string", "name")}, b.Block(b.Return(b.Null()))),
	)
	u := b.Unit(iface, base, derived)
	ws := NewWorkspace([]*syntax.Unit{u})
	ctx := context.Background()

	impls, err := ws.FindImplementations(ctx, "App.IRepo.Get(int)")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Symbol{"App.RepoBase.Get(int)", "App.SqlRepo.Get(int)"}, impls)

	overrides, err := ws.FindOverrides(ctx, "App.RepoBase.Get(int)")
	require.NoError(t, err)
	assert.Equal(t, []Symbol{"App.SqlRepo.Get(int)"}, overrides)

	none, err := ws.FindOverrides(ctx, "App.SqlRepo.Get(string)")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindOverrides_HonorsCancellation(t *testing.T) {
	b := st.New("a.cs")
	u := b.Unit(
		b.Class("Base", nil, b.Method("public virtual", "string", "Name", nil, b.Block(b.Return(b.Lit(`"x"`))))),
		b.Class("Derived", []string{"Base"}),
	)
	ws := NewWorkspace([]*syntax.Unit{u})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ws.FindOverrides(ctx, "App.Base.Name()")
	assert.ErrorIs(t, err, context.Canceled)
}
