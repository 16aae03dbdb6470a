package syntax

import (
	"bytes"
	"sort"
)

// Edit is one nullable marker to insert into the source: a `?` written right
// after the type reference ending at Offset.
type Edit struct {
	Offset int    `yaml:"offset" json:"offset"`
	Type   string `yaml:"type" json:"type"`
	Role   Role   `yaml:"role" json:"role"`
	Node   NodeID `yaml:"node" json:"node"`
}

// TypeRefs returns every written type reference in the unit: field, property,
// return, parameter, local and cast types, including those inside local
// functions.
func TypeRefs(u *Unit) []TypeRef {
	var out []TypeRef
	params := func(ps []*Parameter) {
		for _, p := range ps {
			out = append(out, p.Type)
		}
	}
	Visitor{
		Member: func(_ *TypeDecl, m Member) bool {
			switch x := m.(type) {
			case *Field:
				out = append(out, x.Type)
			case *Property:
				out = append(out, x.Type)
			case *Method:
				out = append(out, x.ReturnType)
				params(x.Params)
			case *Constructor:
				params(x.Params)
			}
			return true
		},
		Stmt: func(s Stmt) bool {
			switch x := s.(type) {
			case *LocalDecl:
				if x.Decl != nil {
					out = append(out, x.Decl.Type)
				}
			case *LocalFunction:
				out = append(out, x.ReturnType)
				params(x.Params)
			}
			return true
		},
		Expr: func(e Expr) bool {
			if c, ok := e.(*Cast); ok {
				out = append(out, c.Type)
			}
			return true
		},
	}.WalkUnit(u)
	return out
}

// Diff lists the type references of updated that were made nullable by a
// rewrite, ordered by source offset. original is accepted so callers can diff
// any two versions of a unit; only type references whose ID is also present in
// original are reported.
func Diff(original, updated *Unit) []Edit {
	if updated == nil || original == updated {
		return nil
	}
	known := make(map[NodeID]bool)
	for _, t := range TypeRefs(original) {
		if !t.Nullable {
			known[t.ID] = true
		}
	}
	seen := make(map[int]bool)
	var edits []Edit
	for _, t := range TypeRefs(updated) {
		if !t.Nullable || t.SourceNullable || t.Implicit || t.IsZero() {
			continue
		}
		if !known[t.ID] || seen[t.Span.End] {
			continue
		}
		seen[t.Span.End] = true
		edits = append(edits, Edit{Offset: t.Span.End, Type: t.Name, Role: t.Role, Node: t.ID})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].Offset < edits[j].Offset })
	return edits
}

// Render returns the text of updated: the original source with a `?` inserted
// after every type reference that Diff reports. Everything else, comments and
// whitespace included, is copied through unchanged.
func Render(original, updated *Unit) []byte {
	src := original.Source
	edits := Diff(original, updated)
	if len(edits) == 0 {
		return bytes.Clone(src)
	}
	var buf bytes.Buffer
	buf.Grow(len(src) + len(edits))
	last := 0
	for _, e := range edits {
		if e.Offset < last || e.Offset > len(src) {
			continue
		}
		buf.Write(src[last:e.Offset])
		buf.WriteByte('?')
		last = e.Offset
	}
	buf.Write(src[last:])
	return buf.Bytes()
}

// MapBodies rewrites every expression in the unit's bodies and initializers
// with fn.
func MapBodies(u *Unit, fn func(e Expr) Expr) *Unit {
	return Rewriter{Expr: fn}.RewriteUnit(u)
}
