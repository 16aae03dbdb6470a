package inheritance

import (
	"nrtrewriter/internal/syntax"
)

// ValueTypes tells value types apart from reference types.
type ValueTypes interface {
	IsValueType(t syntax.TypeRef) bool
}

// Annotator applies resolved slots to the method declarations of one unit.
type Annotator struct {
	slots map[DeclRef][]string
	types ValueTypes
}

// NewAnnotator takes the merged slots of a pass. types, when not nil, is used
// to leave value-typed slots alone.
func NewAnnotator(slots map[DeclRef][]string, types ValueTypes) *Annotator {
	return &Annotator{slots: slots, types: types}
}

// Apply rewrites the return types and named parameters of matching methods.
// Slots naming parameters the method does not have are ignored.
func (a *Annotator) Apply(u *syntax.Unit) *syntax.Unit {
	if len(a.slots) == 0 {
		return u
	}
	return syntax.MapMembers(u, func(_ *syntax.TypeDecl, m syntax.Member) syntax.Member {
		md, ok := m.(*syntax.Method)
		if !ok {
			return m
		}
		slots, ok := a.slots[DeclRef{Path: u.Path, ID: md.ID}]
		if !ok {
			return m
		}
		return a.apply(md, slots)
	})
}

func (a *Annotator) apply(md *syntax.Method, slots []string) *syntax.Method {
	out := md
	copied := func() {
		if out == md {
			c := *md
			c.Params = append([]*syntax.Parameter(nil), md.Params...)
			out = &c
		}
	}
	for _, slot := range slots {
		if slot == ReturnSlot {
			if a.eligible(md.ReturnType) && !md.ReturnType.IsVoid() {
				copied()
				out.ReturnType = out.ReturnType.ToNullable()
			}
			continue
		}
		for i, p := range md.Params {
			if p.Name != slot || !a.eligible(p.Type) {
				continue
			}
			copied()
			c := *p
			c.Type = c.Type.ToNullable()
			out.Params[i] = &c
		}
	}
	return out
}

func (a *Annotator) eligible(t syntax.TypeRef) bool {
	if t.Nullable || t.IsZero() {
		return false
	}
	return a.types == nil || !a.types.IsValueType(t)
}
