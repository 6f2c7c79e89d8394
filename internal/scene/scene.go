// Package scene reads Godot text scene files (.tscn) and project.godot.
//
// Only the facts the analyzer needs are extracted: node names and types,
// attached scripts, instanced sub-scenes, groups, and signal connections.
// Line numbers are kept exactly as they appear in the file (1-based).
package scene

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Scene is a parsed .tscn file.
type Scene struct {
	Path         string
	Nodes        []*Node
	Connections  []Connection
	ExtResources map[string]ExtResource
}

// ExtResource is an [ext_resource] entry.
type ExtResource struct {
	ID   string
	Type string
	Path string
}

// Node is a [node] entry.
type Node struct {
	Name string
	Type string
	// Parent is the parent path as written in the file: "" for the root,
	// "." for children of the root, "A/B" otherwise.
	Parent   string
	Script   string
	Instance string
	Groups   []string
	Line     int
}

// Path returns the node path relative to the scene root ("." for the root).
func (n *Node) Path() string {
	switch n.Parent {
	case "":
		return "."
	case ".":
		return n.Name
	}
	return n.Parent + "/" + n.Name
}

// Connection is a [connection] entry. Line is 1-based.
type Connection struct {
	Signal string
	From   string
	To     string
	Method string
	Flags  int
	Line   int
}

// Root returns the root node, or nil for an empty scene.
func (s *Scene) Root() *Node {
	for _, n := range s.Nodes {
		if n.Parent == "" {
			return n
		}
	}
	return nil
}

// NodeByPath returns the node at the root-relative path. "." and "" name
// the root.
func (s *Scene) NodeByPath(path string) *Node {
	path = strings.TrimPrefix(path, "./")
	if path == "" || path == "." {
		return s.Root()
	}
	for _, n := range s.Nodes {
		if n.Path() == path {
			return n
		}
	}
	return nil
}

// NodeByName returns the first node named name. Unique-name lookups
// (%Name) and single-segment $Name paths both resolve through it.
func (s *Scene) NodeByName(name string) *Node {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Parse reads a .tscn file. Unknown sections and properties are ignored.
func Parse(path string, src []byte) (*Scene, error) {
	s := &Scene{Path: path, ExtResources: make(map[string]ExtResource)}
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var cur *Node
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		if strings.HasPrefix(text, "[") {
			cur = nil
			tag, attrs, err := parseHeader(text)
			if err != nil {
				return nil, fmt.Errorf("scene: %s:%d: %w", path, line, err)
			}
			switch tag {
			case "ext_resource":
				r := ExtResource{ID: attrs["id"].str, Type: attrs["type"].str, Path: attrs["path"].str}
				s.ExtResources[r.ID] = r
			case "node":
				n := &Node{
					Name:   attrs["name"].str,
					Type:   attrs["type"].str,
					Parent: attrs["parent"].str,
					Groups: attrs["groups"].list,
					Line:   line,
				}
				if v, ok := attrs["instance"]; ok && v.call == "ExtResource" {
					n.Instance = s.ExtResources[v.str].Path
				}
				s.Nodes = append(s.Nodes, n)
				cur = n
			case "connection":
				c := Connection{
					Signal: attrs["signal"].str,
					From:   attrs["from"].str,
					To:     attrs["to"].str,
					Method: attrs["method"].str,
					Line:   line,
				}
				fmt.Sscanf(attrs["flags"].str, "%d", &c.Flags)
				s.Connections = append(s.Connections, c)
			}
			continue
		}
		if cur == nil {
			continue
		}
		key, val, ok := strings.Cut(text, "=")
		if !ok || strings.TrimSpace(key) != "script" {
			continue
		}
		v, _, err := parseValue(strings.TrimSpace(val))
		if err == nil && v.call == "ExtResource" {
			cur.Script = s.ExtResources[v.str].Path
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", path, err)
	}
	return s, nil
}

// value is a header attribute value: a string, a number (kept as text), a
// call such as ExtResource("1"), or a list of strings.
type value struct {
	str  string
	call string
	list []string
}

func parseHeader(text string) (string, map[string]value, error) {
	if !strings.HasSuffix(text, "]") {
		return "", nil, fmt.Errorf("unterminated section header")
	}
	body := strings.TrimSpace(text[1 : len(text)-1])
	tag, rest, _ := strings.Cut(body, " ")
	attrs := make(map[string]value)
	rest = strings.TrimSpace(rest)
	for rest != "" {
		key, after, ok := strings.Cut(rest, "=")
		if !ok {
			return "", nil, fmt.Errorf("expected key=value in %q", rest)
		}
		v, remain, err := parseValue(after)
		if err != nil {
			return "", nil, fmt.Errorf("attribute %s: %w", strings.TrimSpace(key), err)
		}
		attrs[strings.TrimSpace(key)] = v
		rest = strings.TrimSpace(remain)
	}
	return tag, attrs, nil
}

// parseValue reads one value from the front of s and returns the rest.
func parseValue(s string) (value, string, error) {
	s = strings.TrimLeft(s, " ")
	switch {
	case s == "":
		return value{}, "", fmt.Errorf("missing value")
	case s[0] == '"':
		str, rest, err := quoted(s)
		return value{str: str}, rest, err
	case s[0] == '[':
		var v value
		rest := strings.TrimLeft(s[1:], " ")
		for !strings.HasPrefix(rest, "]") {
			if rest == "" {
				return value{}, "", fmt.Errorf("unterminated list")
			}
			if rest[0] == '"' {
				str, r, err := quoted(rest)
				if err != nil {
					return value{}, "", err
				}
				v.list = append(v.list, str)
				rest = r
			} else {
				end := strings.IndexAny(rest, ",]")
				if end < 0 {
					return value{}, "", fmt.Errorf("unterminated list")
				}
				v.list = append(v.list, strings.TrimSpace(rest[:end]))
				rest = rest[end:]
			}
			rest = strings.TrimLeft(strings.TrimPrefix(strings.TrimLeft(rest, " "), ","), " ")
		}
		return v, rest[1:], nil
	}
	end := strings.IndexAny(s, " (")
	if end < 0 {
		return value{str: s}, "", nil
	}
	if s[end] == ' ' {
		return value{str: s[:end]}, s[end:], nil
	}
	name := s[:end]
	closeIdx := strings.IndexByte(s, ')')
	if closeIdx < 0 {
		return value{}, "", fmt.Errorf("unterminated %s(", name)
	}
	arg := strings.TrimSpace(s[end+1 : closeIdx])
	if strings.HasPrefix(arg, `"`) {
		str, _, err := quoted(arg)
		if err != nil {
			return value{}, "", err
		}
		arg = str
	}
	return value{str: arg, call: name}, s[closeIdx+1:], nil
}

func quoted(s string) (string, string, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:], nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", "", fmt.Errorf("unterminated string")
}
