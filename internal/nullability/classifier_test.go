package nullability

import (
	"testing"

	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
	st "nrtrewriter/internal/syntax/syntaxtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel classifies by node ID and resolves nothing unless told to.
type fakeModel struct {
	states  map[syntax.NodeID]semantic.Classification
	targets map[syntax.NodeID]semantic.Declaration
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		states:  make(map[syntax.NodeID]semantic.Classification),
		targets: make(map[syntax.NodeID]semantic.Declaration),
	}
}

func (f *fakeModel) Classify(e syntax.Expr) semantic.Classification {
	if syntax.IsNullOrDefault(e) {
		return semantic.MaybeNull
	}
	return f.states[e.NodeID()]
}

func (f *fakeModel) SymbolOf(call *syntax.Invocation) (semantic.Symbol, bool) {
	d, ok := f.targets[call.ID]
	return d.Symbol, ok
}

func (f *fakeModel) DeclarationOf(sym semantic.Symbol) (semantic.Declaration, bool) {
	for _, d := range f.targets {
		if d.Symbol == sym {
			return d, true
		}
	}
	return semantic.Declaration{}, false
}

func (f *fakeModel) IsValueType(t syntax.TypeRef) bool {
	return t.Name == "int"
}

func TestTiers(t *testing.T) {
	b := st.New("a.cs")
	model := newFakeModel()

	maybe := b.Ident("maybe")
	model.states[maybe.ID] = semantic.MaybeNull

	nullableTarget := b.Method("", "string?", "Find", nil, nil)
	plainTarget := b.Method("", "string", "Make", nil, nil)
	valueTarget := b.Method("", "int?", "Count", nil, nil)
	callNullable := b.Call(nil, "Find")
	callPlain := b.Call(nil, "Make")
	callValue := b.Call(nil, "Count")
	callUnknown := b.Call(nil, "Elsewhere")
	model.targets[callNullable.ID] = semantic.Declaration{Symbol: "A.Find()", Method: nullableTarget}
	model.targets[callPlain.ID] = semantic.Declaration{Symbol: "A.Make()", Method: plainTarget}
	model.targets[callValue.ID] = semantic.Declaration{Symbol: "A.Count()", Method: valueTarget}
	model.states[callNullable.ID] = semantic.MaybeNull

	owner := b.Class("A", nil)
	run := b.Method("", "void", "Run", nil, b.Block(b.Do(callNullable), b.Do(callPlain), b.Do(callValue), b.Do(callUnknown)))
	decls := Prefetch(model, owner, run)
	require.Len(t, decls, 3)

	t.Run("CanBeNull", func(t *testing.T) {
		assert.True(t, CanBeNull(model, b.Null()))
		assert.True(t, CanBeNull(model, maybe))
		assert.False(t, CanBeNull(model, b.Lit("1")))
		assert.False(t, CanBeNull(model, nil))
	})

	t.Run("IsDefinitelyNull", func(t *testing.T) {
		assert.True(t, IsDefinitelyNull(model, decls, b.Null()))
		assert.True(t, IsDefinitelyNull(model, decls, b.Default()))
		assert.True(t, IsDefinitelyNull(model, decls, callNullable))
		assert.False(t, IsDefinitelyNull(model, decls, callPlain))
		assert.False(t, IsDefinitelyNull(model, decls, callValue), "nullable value type is not a nullable reference")
		assert.False(t, IsDefinitelyNull(model, decls, callUnknown))
		// A variable that may be null is only evidence for the permissive tier.
		assert.False(t, IsDefinitelyNull(model, decls, maybe))
	})
}

func TestReturnsNull(t *testing.T) {
	b := st.New("a.cs")
	model := newFakeModel()

	tests := []struct {
		name string
		body *syntax.Block
		want bool
	}{
		{"direct", b.Block(b.Return(b.Null())), true},
		{"non-null", b.Block(b.Return(b.Lit(`"x"`))), false},
		{"nested branch", b.Block(b.If(b.Ident("c"), b.Return(b.Null())), b.Return(b.Lit(`"x"`))), true},
		{"after return", b.Block(b.Return(b.Lit(`"x"`)), b.Return(b.Null())), false},
		{"after throw", b.Block(b.Throw(b.New("Exception")), b.Return(b.Null())), false},
		{"after nested block return", b.Block(b.Block(b.Return(b.Lit(`""`))), b.Return(b.Null())), false},
		{"nested block falls through", b.Block(b.Block(b.Do(b.Call(nil, "Log"))), b.Return(b.Null())), true},
		{"after branch return", b.Block(b.If(b.Ident("c"), b.Return(b.Lit(`""`))), b.Return(b.Null())), true},
		{"lambda", b.Block(b.Do(b.LambdaBlock(b.Block(b.Return(b.Null())))), b.Return(b.Lit(`"x"`))), false},
		{"local function", b.Block(b.LocalFunc("string", "f", b.Block(b.Return(b.Null()))), b.Return(b.Lit(`"x"`))), false},
		{"empty", b.Block(), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReturnsNull(model, tt.body))
		})
	}
}

func TestGetterReturnsNull(t *testing.T) {
	b := st.New("a.cs")
	model := newFakeModel()

	assert.True(t, GetterReturnsNull(model, b.Getter("", "string", "A", b.Block(b.Return(b.Null())))))
	assert.False(t, GetterReturnsNull(model, b.Getter("", "string", "B", b.Block(b.Return(b.Lit(`""`))))))
	assert.True(t, GetterReturnsNull(model, b.ArrowProperty("", "string", "C", b.Null())))
	assert.False(t, GetterReturnsNull(model, b.AutoProperty("", "string", "D")))
}
