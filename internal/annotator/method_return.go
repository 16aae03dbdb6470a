package annotator

import (
	"context"

	"nrtrewriter/internal/nullability"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// MethodReturn marks the return type of methods that may return null.
type MethodReturn struct {
	attrs AttributeSet
}

func NewMethodReturn(attrs AttributeSet) *MethodReturn {
	return &MethodReturn{attrs: attrs}
}

func (a *MethodReturn) Name() string { return "method-return" }

func (a *MethodReturn) Annotate(ctx context.Context, u *syntax.Unit, model semantic.Model) (*syntax.Unit, error) {
	if err := ctx.Err(); err != nil {
		return u, err
	}
	return syntax.MapMembers(u, func(owner *syntax.TypeDecl, m syntax.Member) syntax.Member {
		md, ok := m.(*syntax.Method)
		if !ok || !a.mayReturnNull(model, owner, md) {
			return m
		}
		c := *md
		c.ReturnType = c.ReturnType.ToNullable()
		return &c
	}), nil
}

func (a *MethodReturn) mayReturnNull(model semantic.Model, owner *syntax.TypeDecl, m *syntax.Method) bool {
	if !annotatable(model, owner, m, m.ReturnType) || !m.HasBody() {
		return false
	}
	if m.Body != nil && m.Body.Len() == 0 {
		return false
	}
	if a.attrs.Any(m.Attributes) {
		return true
	}
	if m.Body != nil {
		return nullability.ReturnsNull(model, m.Body)
	}
	return nullability.CanBeNull(model, m.ExprBody)
}
