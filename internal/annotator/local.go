package annotator

import (
	"context"

	"nrtrewriter/internal/nullability"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// LocalDeclaration marks explicitly typed locals initialized with a value
// that can be null. Locals declared with var are left alone.
type LocalDeclaration struct{}

func NewLocalDeclaration() *LocalDeclaration {
	return &LocalDeclaration{}
}

func (a *LocalDeclaration) Name() string { return "local-declaration" }

func (a *LocalDeclaration) Annotate(ctx context.Context, u *syntax.Unit, model semantic.Model) (*syntax.Unit, error) {
	if err := ctx.Err(); err != nil {
		return u, err
	}
	return mapBodies(u, func(owner *syntax.TypeDecl, m *syntax.Method) syntax.Rewriter {
		return syntax.Rewriter{Stmt: func(s syntax.Stmt) syntax.Stmt {
			ld, ok := s.(*syntax.LocalDecl)
			if !ok || ld.Decl == nil || !annotatable(model, owner, m, ld.Decl.Type) {
				return s
			}
			if !anyInitCanBeNull(model, ld.Decl.Vars) {
				return s
			}
			decl := *ld.Decl
			decl.Type = decl.Type.ToNullable()
			c := *ld
			c.Decl = &decl
			return &c
		}}
	}), nil
}

func anyInitCanBeNull(model semantic.Model, vars []syntax.Variable) bool {
	for _, v := range vars {
		if nullability.CanBeNull(model, v.Init) {
			return true
		}
	}
	return false
}
