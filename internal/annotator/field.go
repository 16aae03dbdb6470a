package annotator

import (
	"context"

	"nrtrewriter/internal/fields"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// Field marks fields that some constructor path may leave null, and fields
// carrying a nullable attribute.
type Field struct {
	attrs AttributeSet
}

func NewField(attrs AttributeSet) *Field {
	return &Field{attrs: attrs}
}

func (a *Field) Name() string { return "field" }

func (a *Field) Annotate(ctx context.Context, u *syntax.Unit, model semantic.Model) (*syntax.Unit, error) {
	if err := ctx.Err(); err != nil {
		return u, err
	}
	uninit := make(map[*syntax.TypeDecl]map[syntax.NodeID]bool)
	return syntax.MapMembers(u, func(owner *syntax.TypeDecl, m syntax.Member) syntax.Member {
		f, ok := m.(*syntax.Field)
		if !ok || !a.annotatable(model, owner, f) {
			return m
		}
		ids, ok := uninit[owner]
		if !ok {
			ids = fields.UninitializedFields(owner, fields.LocateFields(model, owner))
			uninit[owner] = ids
		}
		if !ids[f.ID] && !a.attrs.Any(f.Attributes) {
			return m
		}
		c := *f
		c.Type = c.Type.ToNullable()
		return &c
	}), nil
}

func (a *Field) annotatable(model semantic.Model, owner *syntax.TypeDecl, f *syntax.Field) bool {
	if f.Modifiers.IsReadOnly() || f.Modifiers.IsConst() {
		return false
	}
	return annotatable(model, owner, nil, f.Type)
}
