package syntax

import "fmt"

// NodeID is a stable synthetic identifier assigned by the extractor.
// Rewrites copy nodes but never change their IDs, so an ID found while
// locating a declaration still names the same declaration after any number
// of annotator passes.
type NodeID string

// NewNodeID builds the canonical ID for a node of the given kind starting at
// byte offset start in path.
func NewNodeID(path, kind string, start int) NodeID {
	return NodeID(fmt.Sprintf("%s:%s:%d", path, kind, start))
}

// Span is a half-open byte range [Start, End) in the unit's original source.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Node carries the identity and location shared by every tree element.
type Node struct {
	ID   NodeID `json:"id"`
	Span Span   `json:"span"`
	Text string `json:"text,omitempty"`
}

// Role says which kind of declaration a type reference belongs to.
type Role string

const (
	RoleField     Role = "field"
	RoleProperty  Role = "property"
	RoleLocal     Role = "local"
	RoleParameter Role = "parameter"
	RoleReturn    Role = "return"
	RoleCast      Role = "cast"
	RoleOther     Role = "other"
)

// TypeRef is a written type annotation. Name never contains the trailing
// nullable marker; Nullable says whether the (possibly rewritten) type
// carries it.
type TypeRef struct {
	ID             NodeID `json:"id"`
	Name           string `json:"name"`
	Nullable       bool   `json:"nullable"`
	SourceNullable bool   `json:"source_nullable"`
	Implicit       bool   `json:"implicit,omitempty"`
	Role           Role   `json:"role"`
	Span           Span   `json:"span"`
}

// ToNullable returns the nullable form of t. It is a no-op on a type that is
// already nullable.
func (t TypeRef) ToNullable() TypeRef {
	if t.Nullable {
		return t
	}
	t.Nullable = true
	return t
}

func (t TypeRef) IsVoid() bool {
	return t.Name == "void"
}

// IsVar reports an inferred local type.
func (t TypeRef) IsVar() bool {
	return t.Implicit || t.Name == "var"
}

// IsZero reports a missing type (untyped lambda parameters, for example).
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

func (t TypeRef) String() string {
	if t.Nullable {
		return t.Name + "?"
	}
	return t.Name
}

// Modifiers is the set of declaration modifiers written on a member.
type Modifiers []string

func (m Modifiers) Has(name string) bool {
	for _, mod := range m {
		if mod == name {
			return true
		}
	}
	return false
}

func (m Modifiers) IsStatic() bool   { return m.Has("static") }
func (m Modifiers) IsReadOnly() bool { return m.Has("readonly") }
func (m Modifiers) IsConst() bool    { return m.Has("const") }

// IsOverridable reports a method that can be the canonical member of an
// override family.
func (m Modifiers) IsOverridable() bool {
	if m.Has("sealed") {
		return false
	}
	return m.Has("virtual") || m.Has("abstract") || m.Has("override")
}
