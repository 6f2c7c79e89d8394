package runtime

import (
	"fmt"
	"sort"
	"strings"
)

// TypeInfo is one class in a TypeDB.
type TypeInfo struct {
	Name    string
	Base    string
	Members map[string]Member
}

func (ti *TypeInfo) add(m Member) *TypeInfo {
	m.DeclaringType = ti.Name
	ti.Members[m.Name] = m
	return ti
}

// Method declares a method returning returns.
func (ti *TypeInfo) Method(name, returns string) *TypeInfo {
	return ti.add(Member{Name: name, Kind: MemberMethod, Type: returns})
}

// Property declares a property of type typ.
func (ti *TypeInfo) Property(name, typ string) *TypeInfo {
	return ti.add(Member{Name: name, Kind: MemberProperty, Type: typ})
}

// Signal declares a signal.
func (ti *TypeInfo) Signal(name string) *TypeInfo {
	return ti.add(Member{Name: name, Kind: MemberSignal, Type: "Signal"})
}

// Constant declares a class constant.
func (ti *TypeInfo) Constant(name, typ string) *TypeInfo {
	return ti.add(Member{Name: name, Kind: MemberConstant, Type: typ, IsStatic: true})
}

// TypeDB is a table-driven Provider. The engine built-ins and scripted
// type databases are both TypeDBs; only the former reports IsBuiltIn.
type TypeDB struct {
	types      map[string]*TypeInfo
	functions  map[string]Member
	singletons map[string]string
	builtin    bool
}

// NewTypeDB returns an empty, non-builtin database.
func NewTypeDB() *TypeDB {
	return &TypeDB{
		types:      make(map[string]*TypeInfo),
		functions:  make(map[string]Member),
		singletons: make(map[string]string),
	}
}

// Define adds or replaces the class name.
func (db *TypeDB) Define(name, base string) *TypeInfo {
	ti, ok := db.types[name]
	if !ok {
		ti = &TypeInfo{Name: name, Members: make(map[string]Member)}
		db.types[name] = ti
	}
	ti.Base = base
	return ti
}

// Type returns the class named name.
func (db *TypeDB) Type(name string) (*TypeInfo, bool) {
	ti, ok := db.types[name]
	return ti, ok
}

// Types returns every class name, sorted.
func (db *TypeDB) Types() []string {
	out := make([]string, 0, len(db.types))
	for name := range db.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Function declares a global function or global constant.
func (db *TypeDB) Function(name, returns string) {
	db.functions[name] = Member{Name: name, Kind: MemberMethod, Type: returns}
}

// Singleton registers a global object name of type typ.
func (db *TypeDB) Singleton(name, typ string) {
	db.singletons[name] = typ
}

func (db *TypeDB) IsKnownType(name string) bool {
	_, ok := db.types[ElementBase(name)]
	return ok
}

func (db *TypeDB) GetBaseType(name string) (string, bool) {
	ti, ok := db.types[ElementBase(name)]
	if !ok || ti.Base == "" {
		return "", false
	}
	return ti.Base, true
}

func (db *TypeDB) GetMember(typeName, member string) (Member, bool) {
	seen := make(map[string]bool)
	for t := ElementBase(typeName); t != "" && !seen[t]; {
		seen[t] = true
		ti, ok := db.types[t]
		if !ok {
			break
		}
		if m, ok := ti.Members[member]; ok {
			return m, true
		}
		t = ti.Base
	}
	return Member{}, false
}

func (db *TypeDB) IsAssignableTo(from, to string) bool {
	if Assignable(from, to) {
		return true
	}
	seen := make(map[string]bool)
	for t := ElementBase(from); t != "" && !seen[t]; {
		if t == to {
			return true
		}
		seen[t] = true
		ti, ok := db.types[t]
		if !ok {
			return false
		}
		t = ti.Base
	}
	return false
}

func (db *TypeDB) GetGlobalFunction(name string) (Member, bool) {
	m, ok := db.functions[name]
	return m, ok
}

func (db *TypeDB) GetGlobalClass(name string) (string, bool) {
	t, ok := db.singletons[name]
	return t, ok
}

func (db *TypeDB) IsBuiltIn(name string) bool {
	if !db.builtin {
		return false
	}
	if db.IsKnownType(name) {
		return true
	}
	if _, ok := db.functions[name]; ok {
		return true
	}
	_, ok := db.singletons[name]
	return ok
}

// ElementBase strips container type arguments: "Array[int]" -> "Array".
func ElementBase(name string) string {
	if i := strings.IndexByte(name, '['); i > 0 {
		return name[:i]
	}
	return name
}

// typeSpec is a compact declaration of one class used to seed a TypeDB.
// Each member line is one of:
//
//	name() Ret          method
//	name: Type          property
//	signal name         signal
//	const NAME: Type    constant
//	static name() Ret   static method
type typeSpec struct {
	name    string
	base    string
	members []string
}

func (db *TypeDB) load(specs []typeSpec) error {
	for _, spec := range specs {
		ti := db.Define(spec.name, spec.base)
		for _, line := range spec.members {
			if err := ti.parseMember(line); err != nil {
				return fmt.Errorf("runtime: type %s: %w", spec.name, err)
			}
		}
	}
	return nil
}

func (ti *TypeInfo) parseMember(line string) error {
	if rest, ok := strings.CutPrefix(line, "static "); ok {
		name, ret, _ := strings.Cut(rest, "()")
		ti.add(Member{Name: strings.TrimSpace(name), Kind: MemberMethod, Type: strings.TrimSpace(ret), IsStatic: true})
		return nil
	}
	switch {
	case strings.HasPrefix(line, "signal "):
		ti.Signal(strings.TrimSpace(strings.TrimPrefix(line, "signal ")))
	case strings.HasPrefix(line, "const "):
		name, typ, ok := strings.Cut(strings.TrimPrefix(line, "const "), ":")
		if !ok {
			return fmt.Errorf("malformed constant %q", line)
		}
		ti.Constant(strings.TrimSpace(name), strings.TrimSpace(typ))
	case strings.Contains(line, "()"):
		name, ret, _ := strings.Cut(line, "()")
		ret = strings.TrimSpace(ret)
		if ret == "" {
			ret = "void"
		}
		ti.Method(strings.TrimSpace(name), ret)
	default:
		name, typ, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("malformed member %q", line)
		}
		ti.Property(strings.TrimSpace(name), strings.TrimSpace(typ))
	}
	return nil
}
