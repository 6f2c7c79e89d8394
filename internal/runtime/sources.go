package runtime

import (
	"strings"

	"github.com/jward/gdlens/internal/scene"
)

// TypeResolver maps a resource path to the type it declares: a script's
// class_name (or its own path when anonymous), or a scene's path.
type TypeResolver func(path string) (string, bool)

// AutoloadProvider exposes autoload singletons as global identifiers.
type AutoloadProvider struct {
	types map[string]string
	paths map[string]string
}

// NewAutoloadProvider registers every singleton autoload whose path
// resolve can type. Non-singleton autoloads are not globally reachable
// and are skipped.
func NewAutoloadProvider(autoloads []scene.Autoload, resolve TypeResolver) *AutoloadProvider {
	p := &AutoloadProvider{types: make(map[string]string), paths: make(map[string]string)}
	for _, a := range autoloads {
		if !a.Singleton {
			continue
		}
		p.paths[a.Name] = a.Path
		if t, ok := resolve(a.Path); ok {
			p.types[a.Name] = t
		}
	}
	return p
}

// Path returns the resource path registered for autoload name.
func (p *AutoloadProvider) Path(name string) (string, bool) {
	path, ok := p.paths[name]
	return path, ok
}

func (p *AutoloadProvider) IsKnownType(string) bool                 { return false }
func (p *AutoloadProvider) GetBaseType(string) (string, bool)       { return "", false }
func (p *AutoloadProvider) GetMember(string, string) (Member, bool) { return Member{}, false }
func (p *AutoloadProvider) IsAssignableTo(string, string) bool      { return false }
func (p *AutoloadProvider) GetGlobalFunction(string) (Member, bool) { return Member{}, false }
func (p *AutoloadProvider) IsBuiltIn(string) bool                   { return false }

func (p *AutoloadProvider) GetGlobalClass(name string) (string, bool) {
	t, ok := p.types[name]
	return t, ok
}

// SceneProvider treats each scene path as a type whose base is the type
// of the scene's root node, and resolves node paths inside scenes.
type SceneProvider struct {
	scenes     map[string]*scene.Scene
	scriptType TypeResolver
}

// NewSceneProvider indexes scenes by path.
func NewSceneProvider(scenes []*scene.Scene, scriptType TypeResolver) *SceneProvider {
	p := &SceneProvider{scenes: make(map[string]*scene.Scene, len(scenes)), scriptType: scriptType}
	for _, s := range scenes {
		p.scenes[s.Path] = s
	}
	return p
}

// Scene returns the scene at path.
func (p *SceneProvider) Scene(path string) (*scene.Scene, bool) {
	s, ok := p.scenes[path]
	return s, ok
}

// NodeType resolves a $Path or %Unique reference inside scenePath.
func (p *SceneProvider) NodeType(scenePath, nodePath string) (string, bool) {
	s, ok := p.scenes[scenePath]
	if !ok {
		return "", false
	}
	var n *scene.Node
	if name, unique := strings.CutPrefix(nodePath, "%"); unique {
		n = s.NodeByName(name)
	} else {
		n = s.NodeByPath(nodePath)
	}
	if n == nil {
		return "", false
	}
	return p.nodeType(n, make(map[string]bool))
}

// SceneType returns the type of the scene's root node.
func (p *SceneProvider) SceneType(path string) (string, bool) {
	return p.sceneType(path, make(map[string]bool))
}

func (p *SceneProvider) sceneType(path string, seen map[string]bool) (string, bool) {
	if seen[path] {
		return "", false
	}
	seen[path] = true
	s, ok := p.scenes[path]
	if !ok {
		return "", false
	}
	root := s.Root()
	if root == nil {
		return "", false
	}
	return p.nodeType(root, seen)
}

func (p *SceneProvider) nodeType(n *scene.Node, seen map[string]bool) (string, bool) {
	if n.Script != "" && p.scriptType != nil {
		if t, ok := p.scriptType(n.Script); ok {
			return t, true
		}
	}
	if n.Type != "" {
		return n.Type, true
	}
	if n.Instance != "" {
		return p.sceneType(n.Instance, seen)
	}
	return "", false
}

func (p *SceneProvider) IsKnownType(name string) bool {
	_, ok := p.scenes[name]
	return ok
}

func (p *SceneProvider) GetBaseType(name string) (string, bool) {
	if _, ok := p.scenes[name]; !ok {
		return "", false
	}
	return p.SceneType(name)
}

func (p *SceneProvider) GetMember(string, string) (Member, bool) { return Member{}, false }
func (p *SceneProvider) IsAssignableTo(string, string) bool      { return false }
func (p *SceneProvider) GetGlobalFunction(string) (Member, bool) { return Member{}, false }
func (p *SceneProvider) GetGlobalClass(string) (string, bool)    { return "", false }
func (p *SceneProvider) IsBuiltIn(string) bool                   { return false }
