// Package infer computes confidence-graded types for GDScript expressions
// and declarations, and per-class container element profiles.
package infer

import (
	"strings"
)

// Confidence grades how sure the engine is about an inferred type.
type Confidence uint8

const (
	Unknown Confidence = iota
	Low
	High
)

func (c Confidence) String() string {
	switch c {
	case High:
		return "high"
	case Low:
		return "low"
	}
	return "unknown"
}

// Union is the set of distinct element types observed for a container.
type Union struct {
	Types   []string
	IsUnion bool
}

// Type is an inferred type. Container types carry element and key types;
// Name may also spell them inline ("Array[int]").
type Type struct {
	Name       string
	Confidence Confidence
	Reason     string
	// IsClass marks an expression that denotes a class itself (Node2D in
	// Node2D.new()) rather than an instance of it.
	IsClass     bool
	ElementType string
	KeyType     string
	Union       Union
	KeyUnion    Union
}

func unknown(reason string) Type {
	return Type{Confidence: Unknown, Reason: reason}
}

func high(name, reason string) Type {
	return Type{Name: name, Confidence: High, Reason: reason}
}

// Known reports whether the type carries a usable name.
func (t Type) Known() bool {
	return t.Confidence != Unknown && t.Name != "" && t.Name != "Variant"
}

// Base returns the type name without container arguments.
func (t Type) Base() string {
	base, _ := splitArgs(t.Name)
	return base
}

// IsArray reports whether the type is an Array or packed array.
func (t Type) IsArray() bool {
	b := t.Base()
	return b == "Array" || (strings.HasPrefix(b, "Packed") && strings.HasSuffix(b, "Array"))
}

// IsDictionary reports whether the type is a Dictionary.
func (t Type) IsDictionary() bool { return t.Base() == "Dictionary" }

// EffectiveElementType returns the element type of an array or the value
// type of a dictionary. A union of element types yields "Variant".
func (t Type) EffectiveElementType() string {
	if t.Union.IsUnion {
		return "Variant"
	}
	if t.ElementType != "" {
		return t.ElementType
	}
	base, args := splitArgs(t.Name)
	switch {
	case base == "Array" && len(args) == 1:
		return args[0]
	case base == "Dictionary" && len(args) == 2:
		return args[1]
	}
	return packedElement(base)
}

// EffectiveKeyType returns the key type of a dictionary.
func (t Type) EffectiveKeyType() string {
	if t.KeyType != "" {
		return t.KeyType
	}
	base, args := splitArgs(t.Name)
	if base == "Dictionary" && len(args) == 2 {
		return args[0]
	}
	return ""
}

// ElementUnionType returns the element union. A single element type is
// reported as a one-member, non-union set.
func (t Type) ElementUnionType() Union {
	if len(t.Union.Types) > 0 {
		return t.Union
	}
	if e := t.EffectiveElementType(); e != "" {
		return Union{Types: []string{e}}
	}
	return Union{}
}

func (t Type) String() string {
	name := t.Annotation()
	if name == "" {
		name = "?"
	}
	return name + " (" + t.Confidence.String() + ")"
}

// Annotation returns the type as it would be written in a declaration,
// e.g. "Array[Node2D]".
func (t Type) Annotation() string {
	name := t.Name
	if t.ElementType != "" && name != "" && !strings.Contains(name, "[") {
		if t.KeyType != "" {
			name += "[" + t.KeyType + ", " + t.ElementType + "]"
		} else {
			name += "[" + t.ElementType + "]"
		}
	}
	return name
}

// splitArgs splits "Dictionary[int, Node2D]" into "Dictionary" and
// ["int", "Node2D"].
func splitArgs(name string) (string, []string) {
	i := strings.IndexByte(name, '[')
	if i < 0 || !strings.HasSuffix(name, "]") {
		return name, nil
	}
	inner := name[i+1 : len(name)-1]
	var args []string
	depth, start := 0, 0
	for j := 0; j < len(inner); j++ {
		switch inner[j] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:j]))
				start = j + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return name[:i], args
}

func packedElement(base string) string {
	switch base {
	case "PackedByteArray", "PackedInt32Array", "PackedInt64Array":
		return "int"
	case "PackedFloat32Array", "PackedFloat64Array":
		return "float"
	case "PackedStringArray":
		return "String"
	case "PackedVector2Array":
		return "Vector2"
	case "PackedVector3Array":
		return "Vector3"
	case "PackedColorArray":
		return "Color"
	}
	return ""
}

// fromAnnotation converts a declared type to a High-confidence Type.
func fromAnnotation(name string) Type {
	t := high(name, "declared")
	base, args := splitArgs(name)
	switch {
	case base == "Array" && len(args) == 1:
		t.ElementType = args[0]
	case base == "Dictionary" && len(args) == 2:
		t.KeyType, t.ElementType = args[0], args[1]
	}
	return t
}

func minConfidence(a, b Confidence) Confidence {
	if a < b {
		return a
	}
	return b
}
