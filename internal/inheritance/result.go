package inheritance

import (
	"sort"

	"nrtrewriter/internal/semantic"
	"nrtrewriter/internal/syntax"
)

// DeclRef names a method declaration by file and node ID.
type DeclRef struct {
	Path string
	ID   syntax.NodeID
}

func refOf(d semantic.Declaration) DeclRef {
	return DeclRef{Path: d.Path, ID: d.Method.ID}
}

// Pair is a declaration and the slots that must be nullable on it.
type Pair struct {
	Decl  DeclRef
	Slots []string
}

type Result struct {
	Families []Family
	Stats    Stats
}

// Slots lists the nullable slots of a method: ReturnSlot if the return type
// is nullable, then the nullable parameter names.
func Slots(m *syntax.Method) []string {
	sig := semantic.SignatureOf(m)
	var out []string
	if sig.ReturnNullable {
		out = append(out, ReturnSlot)
	}
	return append(out, sig.NullableParams...)
}

// Upward pairs each canonical declaration with the union of its members'
// nullable slots.
func (r *Result) Upward() []Pair {
	var out []Pair
	for _, f := range r.Families {
		set := make(map[string]bool)
		for _, m := range f.Members {
			for _, s := range Slots(m.Method) {
				set[s] = true
			}
		}
		out = append(out, Pair{Decl: refOf(f.Canonical), Slots: sortedSlots(set)})
	}
	return out
}

// Downward pairs each member declaration with its canonical's own nullable
// slots.
func (r *Result) Downward() []Pair {
	var out []Pair
	for _, f := range r.Families {
		slots := Slots(f.Canonical.Method)
		for _, m := range f.Members {
			out = append(out, Pair{Decl: refOf(m), Slots: slots})
		}
	}
	return out
}

// Merge folds pair lists into one slot set per declaration.
func Merge(lists ...[]Pair) map[DeclRef][]string {
	sets := make(map[DeclRef]map[string]bool)
	for _, pairs := range lists {
		for _, p := range pairs {
			set, ok := sets[p.Decl]
			if !ok {
				set = make(map[string]bool)
				sets[p.Decl] = set
			}
			for _, s := range p.Slots {
				set[s] = true
			}
		}
	}
	out := make(map[DeclRef][]string, len(sets))
	for ref, set := range sets {
		if len(set) > 0 {
			out[ref] = sortedSlots(set)
		}
	}
	return out
}

func sortedSlots(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
