package annotator

import (
	"context"

	"nrtrewriter/internal/nullability"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// CallSite marks parameters that receive a definitely-null argument at some
// call in the same file. Only methods declared in the unit being rewritten
// are touched; calls into other files are left to those files' own passes.
type CallSite struct{}

func NewCallSite() *CallSite {
	return &CallSite{}
}

func (a *CallSite) Name() string { return "call-site" }

func (a *CallSite) Annotate(ctx context.Context, u *syntax.Unit, model semantic.Model) (*syntax.Unit, error) {
	if err := ctx.Err(); err != nil {
		return u, err
	}
	params := a.collect(u, model)
	if len(params) == 0 {
		return u, nil
	}
	return syntax.MapMembers(u, func(owner *syntax.TypeDecl, m syntax.Member) syntax.Member {
		md, ok := m.(*syntax.Method)
		if !ok {
			return m
		}
		var out []*syntax.Parameter
		for i, p := range md.Params {
			if !params[p.ID] {
				continue
			}
			if out == nil {
				out = make([]*syntax.Parameter, len(md.Params))
				copy(out, md.Params)
			}
			c := *p
			c.Type = c.Type.ToNullable()
			out[i] = &c
		}
		if out == nil {
			return m
		}
		c := *md
		c.Params = out
		return &c
	}), nil
}

// collect is the first pass: the set of parameter declarations in u that
// some call passes definite null to.
func (a *CallSite) collect(u *syntax.Unit, model semantic.Model) map[syntax.NodeID]bool {
	params := make(map[syntax.NodeID]bool)
	for _, owner := range u.AllTypes() {
		for _, member := range owner.Members {
			if _, nested := member.(*syntax.TypeDecl); nested {
				continue
			}
			decls := nullability.Prefetch(model, owner, member)
			for _, call := range syntax.Invocations(owner, member) {
				d, ok := decls[call.ID]
				if !ok || d.Path != u.Path {
					continue
				}
				for i, arg := range call.Args {
					if !nullability.IsDefinitelyNull(model, decls, arg.Value) {
						continue
					}
					p, ok := semantic.ParamFor(d.Method, call.Args, i)
					if !ok || !annotatable(model, d.Owner, d.Method, p.Type) {
						continue
					}
					params[p.ID] = true
				}
			}
		}
	}
	return params
}
