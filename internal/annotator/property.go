package annotator

import (
	"context"

	"nrtrewriter/internal/fields"
	"nrtrewriter/internal/nullability"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// Property marks properties whose getter may return null, auto-properties no
// constructor is guaranteed to assign, and properties carrying a nullable
// attribute. Interface members are never touched.
type Property struct {
	attrs AttributeSet
}

func NewProperty(attrs AttributeSet) *Property {
	return &Property{attrs: attrs}
}

func (a *Property) Name() string { return "property" }

func (a *Property) Annotate(ctx context.Context, u *syntax.Unit, model semantic.Model) (*syntax.Unit, error) {
	if err := ctx.Err(); err != nil {
		return u, err
	}
	return syntax.MapMembers(u, func(owner *syntax.TypeDecl, m syntax.Member) syntax.Member {
		p, ok := m.(*syntax.Property)
		if !ok || !a.mayBeNull(model, owner, p) {
			return m
		}
		c := *p
		c.Type = c.Type.ToNullable()
		return &c
	}), nil
}

func (a *Property) mayBeNull(model semantic.Model, owner *syntax.TypeDecl, p *syntax.Property) bool {
	if owner.Kind == syntax.KindInterface || !annotatable(model, owner, nil, p.Type) {
		return false
	}
	if a.attrs.Any(p.Attributes) {
		return true
	}
	if !owner.IsClassLike() {
		return false
	}
	return nullability.GetterReturnsNull(model, p) || uninitialized(model, owner, p)
}

// uninitialized reports an auto-property with no non-null initializer that
// is not assigned in every root constructor. Abstract and extern properties
// have no storage of their own.
func uninitialized(model semantic.Model, owner *syntax.TypeDecl, p *syntax.Property) bool {
	if !p.IsAutoProperty() || p.Modifiers.Has("abstract") || p.Modifiers.Has("extern") {
		return false
	}
	if p.Init != nil && !nullability.CanBeNull(model, p.Init) {
		return false
	}
	if p.Modifiers.IsStatic() {
		return true
	}
	return !fields.AssignedInEveryRootConstructor(owner, p.Name)
}
