package runtime

import (
	"fmt"

	"github.com/risor-io/risor/object"
)

// Risor scripts cannot construct Go structs, so host functions accept
// Risor maps and lists of primitives and convert them here.

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

// getStringMap reads a map of string values; non-string values become
// "Variant".
func getStringMap(m map[string]object.Object, key string) map[string]string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	inner, ok := v.(*object.Map)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(inner.Value()))
	for k, val := range inner.Value() {
		if s, ok := val.(*object.String); ok && s.Value() != "" {
			out[k] = s.Value()
		} else {
			out[k] = "Variant"
		}
	}
	return out
}

func getStringList(m map[string]object.Object, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	l, ok := v.(*object.List)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range l.Value() {
		if s, ok := item.(*object.String); ok {
			out = append(out, s.Value())
		}
	}
	return out
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
