// Package annotator holds the per-construct rewriting passes. Each pass looks
// at one kind of declaration in a single unit, decides from the nullability
// classifier whether its type must become nullable, and returns the rewritten
// unit. Passes are idempotent and return their input unchanged, as the same
// pointer, when they have nothing to do.
package annotator

import (
	"context"
	"strings"

	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

type Annotator interface {
	Name() string
	Annotate(ctx context.Context, unit *syntax.Unit, model semantic.Model) (*syntax.Unit, error)
}

// DefaultNullableAttributes are the attribute names that mark a member as
// possibly null.
var DefaultNullableAttributes = []string{"CanBeNull"}

// Options configures the default pass list.
type Options struct {
	NullableAttributes []string
	Properties         bool
}

// Default returns the passes in the order they must run: method returns,
// locals, casts, call-site parameters, fields, then properties if enabled.
func Default(opts Options) []Annotator {
	attrs := NewAttributeSet(opts.NullableAttributes)
	passes := []Annotator{
		NewMethodReturn(attrs),
		NewLocalDeclaration(),
		NewCast(),
		NewCallSite(),
		NewField(attrs),
	}
	if opts.Properties {
		passes = append(passes, NewProperty(attrs))
	}
	return passes
}

// AttributeSet matches written attributes against configured names.
// "CanBeNull", "CanBeNullAttribute" and "JetBrains.Annotations.CanBeNull" all
// match the configured name "CanBeNull".
type AttributeSet map[string]bool

func NewAttributeSet(names []string) AttributeSet {
	if len(names) == 0 {
		names = DefaultNullableAttributes
	}
	set := make(AttributeSet, len(names))
	for _, n := range names {
		set[normalizeAttribute(n)] = true
	}
	return set
}

func normalizeAttribute(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexAny(name, ".:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Attribute")
}

// Any reports whether one of the written attributes is in the set.
func (s AttributeSet) Any(written []string) bool {
	for _, w := range written {
		if s[normalizeAttribute(w)] {
			return true
		}
	}
	return false
}

// annotatable reports whether t is a written reference type that does not
// carry the nullable marker yet. Type parameters are left alone: T? means
// something else for unconstrained generics.
func annotatable(model semantic.Model, owner *syntax.TypeDecl, m *syntax.Method, t syntax.TypeRef) bool {
	switch {
	case t.Nullable, t.IsZero(), t.IsVoid(), t.IsVar():
		return false
	case syntax.IsTypeParam(t.Name, owner, m):
		return false
	}
	return !model.IsValueType(t)
}

// mapBodies runs the rewriter built by mk over every member of u, handing
// mk the owner type and, for methods, the method itself.
func mapBodies(u *syntax.Unit, mk func(owner *syntax.TypeDecl, m *syntax.Method) syntax.Rewriter) *syntax.Unit {
	return syntax.MapMembers(u, func(owner *syntax.TypeDecl, member syntax.Member) syntax.Member {
		if _, nested := member.(*syntax.TypeDecl); nested {
			return member
		}
		md, _ := member.(*syntax.Method)
		return mk(owner, md).RewriteMember(owner, member)
	})
}
