package annotator

import (
	"context"

	"nrtrewriter/internal/nullability"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// Cast marks the target type of casts whose operand is definitely null.
type Cast struct{}

func NewCast() *Cast {
	return &Cast{}
}

func (a *Cast) Name() string { return "cast" }

func (a *Cast) Annotate(ctx context.Context, u *syntax.Unit, model semantic.Model) (*syntax.Unit, error) {
	if err := ctx.Err(); err != nil {
		return u, err
	}
	return syntax.MapMembers(u, func(owner *syntax.TypeDecl, member syntax.Member) syntax.Member {
		if _, nested := member.(*syntax.TypeDecl); nested {
			return member
		}
		md, _ := member.(*syntax.Method)
		var decls nullability.Decls
		r := syntax.Rewriter{Expr: func(e syntax.Expr) syntax.Expr {
			cast, ok := e.(*syntax.Cast)
			if !ok || !annotatable(model, owner, md, cast.Type) {
				return e
			}
			if decls == nil {
				decls = nullability.Prefetch(model, owner, member)
			}
			if !nullability.IsDefinitelyNull(model, decls, cast.Operand) {
				return e
			}
			c := *cast
			c.Type = c.Type.ToNullable()
			return &c
		}}
		return r.RewriteMember(owner, member)
	}), nil
}
