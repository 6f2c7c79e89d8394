package gdlens

import (
	"fmt"

	"github.com/jward/gdlens/internal/store"
)

// TypeHierarchy is the stored view of one script type: where it sits in
// the inheritance chain, what extends it, and what it declares.
type TypeHierarchy struct {
	Type *store.ScriptType
	File string
	// Ancestors runs from the direct base upwards. It ends with the first
	// engine type, which has no script of its own.
	Ancestors []string
	// Subtypes are the scripts extending Type directly.
	Subtypes []*store.ScriptType
	Members  []SymbolResult
}

// TypeHierarchy returns the hierarchy of a script type named by its
// class_name or res:// path.
// Returns nil with no error if no stored script has that type.
func (q *QueryBuilder) TypeHierarchy(typeName string) (*TypeHierarchy, error) {
	st, err := q.store.ScriptTypeByName(typeName)
	if err != nil {
		return nil, fmt.Errorf("type hierarchy: %w", err)
	}
	if st == nil {
		return nil, nil
	}
	h := &TypeHierarchy{Type: st, Ancestors: []string{}}

	f, err := q.store.FileByID(st.FileID)
	if err != nil {
		return nil, fmt.Errorf("type hierarchy: file: %w", err)
	}
	if f != nil {
		h.File = f.Path
	}

	seen := map[string]bool{st.TypeName: true}
	for base := st.BaseType; base != "" && !seen[base]; {
		seen[base] = true
		h.Ancestors = append(h.Ancestors, base)
		parent, err := q.store.ScriptTypeByName(base)
		if err != nil {
			return nil, fmt.Errorf("type hierarchy: ancestor %s: %w", base, err)
		}
		if parent == nil {
			break
		}
		base = parent.BaseType
	}

	if h.Subtypes, err = q.store.ScriptTypesByBase(st.TypeName); err != nil {
		return nil, fmt.Errorf("type hierarchy: subtypes: %w", err)
	}
	if h.Subtypes == nil {
		h.Subtypes = []*store.ScriptType{}
	}

	if h.Members, err = q.membersOf(st.TypeName); err != nil {
		return nil, fmt.Errorf("type hierarchy: members: %w", err)
	}
	return h, nil
}
