package scene

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// ProjectFile holds the parts of project.godot the analyzer uses.
type ProjectFile struct {
	Name      string
	MainScene string
	Autoloads []Autoload
}

// Autoload is one entry of the [autoload] section. A leading '*' in the
// file marks the entry as a global singleton.
type Autoload struct {
	Name      string
	Path      string
	Singleton bool
}

// ParseProject reads project.godot.
func ParseProject(src []byte) (*ProjectFile, error) {
	pf := &ProjectFile{}
	sc := bufio.NewScanner(bytes.NewReader(src))
	section := ""
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		if strings.HasPrefix(text, "[") {
			if !strings.HasSuffix(text, "]") {
				return nil, fmt.Errorf("scene: project.godot:%d: unterminated section header", line)
			}
			section = text[1 : len(text)-1]
			continue
		}
		key, raw, ok := strings.Cut(text, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val := strings.TrimSpace(raw)
		if strings.HasPrefix(val, `"`) {
			s, _, err := quoted(val)
			if err != nil {
				return nil, fmt.Errorf("scene: project.godot:%d: %w", line, err)
			}
			val = s
		}
		switch section {
		case "application":
			switch key {
			case "config/name":
				pf.Name = val
			case "run/main_scene":
				pf.MainScene = val
			}
		case "autoload":
			a := Autoload{Name: key, Path: val}
			if strings.HasPrefix(val, "*") {
				a.Singleton = true
				a.Path = val[1:]
			}
			pf.Autoloads = append(pf.Autoloads, a)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scene: reading project.godot: %w", err)
	}
	return pf, nil
}
