package semantic

import (
	"nrtrewriter/internal/syntax"
)

type typeEntry struct {
	path string
	decl *syntax.TypeDecl
}

// index is the symbol table of a set of units.
type index struct {
	types   map[string][]typeEntry // simple name
	methods map[Symbol]Declaration
	byName  map[string][]Symbol    // simple method name
	derived map[string][]typeEntry // simple base name
	paths   map[string]bool
}

func newIndex(units []*syntax.Unit) *index {
	idx := &index{
		types:   make(map[string][]typeEntry),
		methods: make(map[Symbol]Declaration),
		byName:  make(map[string][]Symbol),
		derived: make(map[string][]typeEntry),
		paths:   make(map[string]bool),
	}
	for _, u := range units {
		idx.add(u)
	}
	return idx
}

func (idx *index) add(u *syntax.Unit) {
	if u == nil {
		return
	}
	idx.paths[u.Path] = true
	for _, t := range u.AllTypes() {
		entry := typeEntry{path: u.Path, decl: t}
		idx.types[t.Name] = append(idx.types[t.Name], entry)
		for _, base := range t.Bases {
			name := simpleTypeName(base)
			idx.derived[name] = append(idx.derived[name], entry)
		}
		for _, m := range t.Methods() {
			sym := SymbolFor(t, m)
			if _, dup := idx.methods[sym]; dup {
				// Partial declarations and duplicates keep the first one.
				continue
			}
			idx.methods[sym] = Declaration{Symbol: sym, Path: u.Path, Owner: t, Method: m}
			idx.byName[m.Name] = append(idx.byName[m.Name], sym)
		}
	}
}

// view merges a base index with an optional overlay. Entries of base that
// come from a path the overlay covers are hidden.
type view struct {
	base    *index
	overlay *index
}

func (v view) hidden(path string) bool {
	return v.overlay != nil && v.overlay.paths[path]
}

func (v view) typesNamed(name string) []typeEntry {
	simple := simpleTypeName(name)
	var out []typeEntry
	if v.overlay != nil {
		out = append(out, v.overlay.types[simple]...)
	}
	for _, e := range v.base.types[simple] {
		if !v.hidden(e.path) {
			out = append(out, e)
		}
	}
	return filterQualified(out, normalizeTypeName(name))
}

// filterQualified narrows by a written qualifier, when there is one and it
// matches anything.
func filterQualified(entries []typeEntry, written string) []typeEntry {
	if len(entries) < 2 || simpleTypeName(written) == written {
		return entries
	}
	var out []typeEntry
	for _, e := range entries {
		q := e.decl.QualifiedName()
		if q == written || hasDottedSuffix(q, written) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return entries
	}
	return out
}

func hasDottedSuffix(s, suffix string) bool {
	return len(s) > len(suffix) && s[len(s)-len(suffix)-1] == '.' && s[len(s)-len(suffix):] == suffix
}

func (v view) declaration(sym Symbol) (Declaration, bool) {
	if v.overlay != nil {
		if d, ok := v.overlay.methods[sym]; ok {
			return d, true
		}
	}
	d, ok := v.base.methods[sym]
	if !ok || v.hidden(d.Path) {
		return Declaration{}, false
	}
	return d, true
}

func (v view) methodsNamed(name string) []Declaration {
	var out []Declaration
	if v.overlay != nil {
		for _, sym := range v.overlay.byName[name] {
			out = append(out, v.overlay.methods[sym])
		}
	}
	for _, sym := range v.base.byName[name] {
		d := v.base.methods[sym]
		if !v.hidden(d.Path) {
			out = append(out, d)
		}
	}
	return out
}

func (v view) derivedFrom(name string) []typeEntry {
	var out []typeEntry
	if v.overlay != nil {
		out = append(out, v.overlay.derived[name]...)
	}
	for _, e := range v.base.derived[name] {
		if !v.hidden(e.path) {
			out = append(out, e)
		}
	}
	return out
}

// baseChain returns t followed by its source base classes, nearest first.
// Interfaces in the base list are included; cycles are cut.
func (v view) baseChain(t *syntax.TypeDecl) []*syntax.TypeDecl {
	seen := map[*syntax.TypeDecl]bool{t: true}
	out := []*syntax.TypeDecl{t}
	for i := 0; i < len(out); i++ {
		for _, base := range out[i].Bases {
			for _, e := range v.typesNamed(base) {
				if !seen[e.decl] {
					seen[e.decl] = true
					out = append(out, e.decl)
				}
			}
		}
	}
	return out
}

// isValueType reports a built-in value type or a source struct or enum.
func (v view) isValueType(name string) bool {
	if isBuiltinValueType(name) {
		return true
	}
	entries := v.typesNamed(name)
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if e.decl.Kind != syntax.KindStruct && e.decl.Kind != syntax.KindEnum {
			return false
		}
	}
	return true
}
