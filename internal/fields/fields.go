// Package fields finds the fields of a type that may be observed before any
// constructor assigns them.
package fields

import (
	"nrtrewriter/internal/nullability"
	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// State is the initialization state of one field after construction.
type State int

const (
	Guaranteed State = iota
	PossiblyUninitialized
)

func (s State) String() string {
	if s == PossiblyUninitialized {
		return "possibly-uninitialized"
	}
	return "guaranteed"
}

// Candidate is a field declaration that a constructor may leave null.
type Candidate struct {
	ID     syntax.NodeID
	Names  []string
	Static bool
}

// LocateFields returns the fields of t that are not readonly, not const, not
// value-typed, and whose every variable either has no initializer or has one
// that can be null.
func LocateFields(model semantic.Model, t *syntax.TypeDecl) []Candidate {
	var out []Candidate
	for _, f := range t.Fields() {
		if f.Modifiers.IsReadOnly() || f.Modifiers.IsConst() || model.IsValueType(f.Type) {
			continue
		}
		ok := true
		names := make([]string, 0, len(f.Vars))
		for _, v := range f.Vars {
			if v.Init != nil && !nullability.CanBeNull(model, v.Init) {
				ok = false
				break
			}
			names = append(names, v.Name)
		}
		if ok && len(names) > 0 {
			out = append(out, Candidate{ID: f.ID, Names: names, Static: f.Modifiers.IsStatic()})
		}
	}
	return out
}

// rootAssignments returns, per root constructor of t, the set of member
// names assigned anywhere in its body. Constructors chaining to this(...) are
// not roots: whatever they reach goes through a root first.
func rootAssignments(t *syntax.TypeDecl) []map[string]bool {
	var out []map[string]bool
	for _, c := range t.Constructors() {
		if !c.IsRoot() || c.Modifiers.IsStatic() {
			continue
		}
		assigned := make(map[string]bool)
		for _, a := range syntax.Assignments(c.Body) {
			if name := syntax.AssignedName(a.Left); name != "" {
				assigned[name] = true
			}
		}
		if a, ok := c.ExprBody.(*syntax.Assignment); ok {
			if name := syntax.AssignedName(a.Left); name != "" {
				assigned[name] = true
			}
		}
		out = append(out, assigned)
	}
	return out
}

func assignedInAll(roots []map[string]bool, name string) bool {
	if len(roots) == 0 {
		return false
	}
	for _, assigned := range roots {
		if !assigned[name] {
			return false
		}
	}
	return true
}

// InitRecord maps every candidate to its state. A static candidate is always
// possibly uninitialized; an instance candidate is guaranteed only if every
// root constructor assigns every one of its variables. A type without root
// constructors guarantees nothing.
func InitRecord(t *syntax.TypeDecl, candidates []Candidate) map[syntax.NodeID]State {
	roots := rootAssignments(t)
	record := make(map[syntax.NodeID]State, len(candidates))
	for _, c := range candidates {
		state := Guaranteed
		if c.Static {
			state = PossiblyUninitialized
		} else {
			for _, name := range c.Names {
				if !assignedInAll(roots, name) {
					state = PossiblyUninitialized
					break
				}
			}
		}
		record[c.ID] = state
	}
	return record
}

// UninitializedFields returns the IDs of the candidates that may be left
// null after construction.
func UninitializedFields(t *syntax.TypeDecl, candidates []Candidate) map[syntax.NodeID]bool {
	out := make(map[syntax.NodeID]bool)
	for id, state := range InitRecord(t, candidates) {
		if state == PossiblyUninitialized {
			out[id] = true
		}
	}
	return out
}

// AssignedInEveryRootConstructor applies the same rule to a single member
// name, for auto-properties.
func AssignedInEveryRootConstructor(t *syntax.TypeDecl, name string) bool {
	return assignedInAll(rootAssignments(t), name)
}
