package project

import (
	"github.com/jward/gdlens/internal/infer"
	"github.com/jward/gdlens/internal/runtime"
	"github.com/jward/gdlens/internal/semantic"
	"github.com/jward/gdlens/internal/symbols"
)

// ScriptProvider exposes the project's own scripts to the provider chain.
// Script types are named by class_name, or by res:// path when anonymous.
//
// Member types are taken from annotations, or from the owning model's
// inference when it is High confidence. While the project is being built
// they are computed on demand; once Build returns the provider is sealed
// and read-only.
type ScriptProvider struct {
	tables map[string]*symbols.Table
	byType map[string]string
	model  func(path string) *semantic.Model

	types  map[string]map[string]string
	sealed bool
}

func newScriptProvider(tables map[string]*symbols.Table, byType map[string]string) *ScriptProvider {
	return &ScriptProvider{
		tables: tables,
		byType: byType,
		types:  make(map[string]map[string]string),
	}
}

// Path returns the script file declaring typeName.
func (p *ScriptProvider) Path(typeName string) (string, bool) {
	path, ok := p.byType[typeName]
	return path, ok
}

// TypeOf returns the type the script at path declares.
func (p *ScriptProvider) TypeOf(path string) (string, bool) {
	t, ok := p.tables[path]
	if !ok {
		return "", false
	}
	if name := t.ClassName(); name != "" && p.byType[name] == path {
		return name, true
	}
	return path, true
}

func (p *ScriptProvider) table(typeName string) *symbols.Table {
	path, ok := p.byType[typeName]
	if !ok {
		return nil
	}
	return p.tables[path]
}

func (p *ScriptProvider) IsKnownType(name string) bool {
	_, ok := p.byType[name]
	return ok
}

func (p *ScriptProvider) GetBaseType(name string) (string, bool) {
	t := p.table(name)
	if t == nil {
		return "", false
	}
	extName, extPath := t.Extends()
	switch {
	case extPath != "":
		if base, ok := p.TypeOf(extPath); ok {
			return base, true
		}
		return extPath, true
	case extName != "":
		return extName, true
	}
	return runtime.ImplicitBase, true
}

// GetMember returns members the script declares itself. The composite
// chain walks base types.
func (p *ScriptProvider) GetMember(typeName, member string) (runtime.Member, bool) {
	t := p.table(typeName)
	if t == nil {
		return runtime.Member{}, false
	}
	sym := t.ClassMember(member)
	if sym == nil {
		return runtime.Member{}, false
	}
	m := runtime.Member{
		Name:          sym.Name,
		DeclaringType: typeName,
		IsStatic:      sym.IsStatic,
		Type:          p.memberType(typeName, sym),
	}
	switch sym.Kind {
	case symbols.Method:
		m.Kind = runtime.MemberMethod
	case symbols.Signal:
		m.Kind, m.Type = runtime.MemberSignal, "Signal"
	case symbols.Constant, symbols.Enum, symbols.EnumValue, symbols.Class:
		m.Kind = runtime.MemberConstant
	default:
		m.Kind = runtime.MemberProperty
	}
	return m, true
}

func (p *ScriptProvider) memberType(typeName string, sym *symbols.Symbol) string {
	switch sym.Kind {
	case symbols.Enum, symbols.Class:
		return sym.Name
	case symbols.Method, symbols.Signal:
		return sym.TypeName
	}
	if sym.TypeName != "" {
		return sym.TypeName
	}
	if t, ok := p.types[typeName][sym.Name]; ok {
		return t
	}
	if p.sealed || p.model == nil {
		return ""
	}
	m := p.model(p.byType[typeName])
	if m == nil {
		// The model is still being built; do not cache the miss.
		return ""
	}
	var name string
	if t := m.Types.InferDecl(sym); t.Confidence == infer.High && t.Known() {
		name = t.Annotation()
	}
	if p.types[typeName] == nil {
		p.types[typeName] = make(map[string]string)
	}
	p.types[typeName][sym.Name] = name
	return name
}

// seal resolves every remaining member type and stops further model
// access.
func (p *ScriptProvider) seal() {
	for typeName := range p.byType {
		t := p.table(typeName)
		for _, sym := range t.Members() {
			p.memberType(typeName, sym)
		}
	}
	p.sealed = true
}

func (p *ScriptProvider) IsAssignableTo(from, to string) bool {
	seen := make(map[string]bool)
	for t := from; !seen[t]; {
		if t == to {
			return true
		}
		seen[t] = true
		base, ok := p.GetBaseType(t)
		if !ok {
			return false
		}
		t = base
	}
	return false
}

func (p *ScriptProvider) GetGlobalFunction(string) (runtime.Member, bool) {
	return runtime.Member{}, false
}

func (p *ScriptProvider) GetGlobalClass(string) (string, bool) { return "", false }

func (p *ScriptProvider) IsBuiltIn(string) bool { return false }
