// Package runtime answers questions about types the analyzer did not read
// from source: engine built-ins, autoload singletons, scenes and
// project-specific type databases loaded from Risor scripts.
package runtime

// MemberKind classifies a type member.
type MemberKind uint8

const (
	MemberMethod MemberKind = iota
	MemberProperty
	MemberSignal
	MemberConstant
)

func (k MemberKind) String() string {
	switch k {
	case MemberMethod:
		return "method"
	case MemberProperty:
		return "property"
	case MemberSignal:
		return "signal"
	case MemberConstant:
		return "constant"
	}
	return "unknown"
}

// Member describes a method, property, signal or constant of a type, or a
// global function.
type Member struct {
	Name string
	Kind MemberKind
	// Type is the return type of a method and the value type otherwise.
	// Empty or "Variant" when unknown.
	Type          string
	DeclaringType string
	IsStatic      bool
}

// Provider is the uniform lookup interface over everything the analyzer
// knows about types it did not declare itself.
type Provider interface {
	IsKnownType(name string) bool
	GetBaseType(name string) (string, bool)
	// GetMember looks up member on typeName or any of its ancestors.
	GetMember(typeName, member string) (Member, bool)
	IsAssignableTo(from, to string) bool
	GetGlobalFunction(name string) (Member, bool)
	// GetGlobalClass resolves a global identifier (engine singleton or
	// autoload) to the type of the object it names.
	GetGlobalClass(name string) (string, bool)
	IsBuiltIn(name string) bool
}

// Composite asks each provider in order and returns the first affirmative
// answer. Inheritance questions walk across providers, so a script type
// extending an engine class sees the engine class's members.
type Composite struct {
	providers []Provider
}

// NewComposite returns a provider chaining ps in order. Nil entries are
// skipped.
func NewComposite(ps ...Provider) *Composite {
	c := &Composite{}
	for _, p := range ps {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Append adds p to the end of the chain.
func (c *Composite) Append(p Provider) {
	if p != nil {
		c.providers = append(c.providers, p)
	}
}

func (c *Composite) IsKnownType(name string) bool {
	for _, p := range c.providers {
		if p.IsKnownType(name) {
			return true
		}
	}
	return false
}

func (c *Composite) GetBaseType(name string) (string, bool) {
	for _, p := range c.providers {
		if base, ok := p.GetBaseType(name); ok {
			return base, true
		}
	}
	return "", false
}

func (c *Composite) GetMember(typeName, member string) (Member, bool) {
	seen := make(map[string]bool)
	for t := typeName; t != "" && !seen[t]; {
		seen[t] = true
		for _, p := range c.providers {
			if m, ok := p.GetMember(t, member); ok {
				return m, true
			}
		}
		base, ok := c.GetBaseType(t)
		if !ok {
			break
		}
		t = base
	}
	return Member{}, false
}

func (c *Composite) IsAssignableTo(from, to string) bool {
	if Assignable(from, to) {
		return true
	}
	seen := make(map[string]bool)
	for t := from; t != "" && !seen[t]; {
		if t == to {
			return true
		}
		seen[t] = true
		base, ok := c.GetBaseType(t)
		if !ok {
			break
		}
		t = base
	}
	return false
}

func (c *Composite) GetGlobalFunction(name string) (Member, bool) {
	for _, p := range c.providers {
		if m, ok := p.GetGlobalFunction(name); ok {
			return m, true
		}
	}
	return Member{}, false
}

func (c *Composite) GetGlobalClass(name string) (string, bool) {
	for _, p := range c.providers {
		if t, ok := p.GetGlobalClass(name); ok {
			return t, true
		}
	}
	return "", false
}

func (c *Composite) IsBuiltIn(name string) bool {
	for _, p := range c.providers {
		if p.IsBuiltIn(name) {
			return true
		}
	}
	return false
}

// Assignable implements the assignability rules that hold regardless of
// inheritance: identity, Variant, and int to float promotion.
func Assignable(from, to string) bool {
	switch {
	case from == "" || to == "":
		return false
	case from == to, to == "Variant":
		return true
	case from == "int" && to == "float":
		return true
	case from == "StringName" && to == "String", from == "String" && to == "StringName":
		return true
	}
	return false
}
