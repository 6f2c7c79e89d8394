// Package config loads gdlens.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

// FileName is the configuration file looked up in the project root.
const FileName = "gdlens.toml"

type Config struct {
	Project  Project  `toml:"project"`
	Analysis Analysis `toml:"analysis"`
	Runtime  Runtime  `toml:"runtime"`
	Store    Store    `toml:"store"`
	Log      Log      `toml:"log"`
}

type Project struct {
	Root    string   `toml:"root"`
	Exclude []string `toml:"exclude"`
}

type Analysis struct {
	Parallel        bool `toml:"parallel"`
	Workers         int  `toml:"workers"`
	DuckTyping      bool `toml:"duck_typing"`
	ContractStrings bool `toml:"contract_strings"`
}

type Runtime struct {
	// TypesScript is an optional Risor script extending the built-in type
	// database.
	TypesScript string `toml:"types_script"`
}

type Store struct {
	Path string `toml:"path"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Analysis: Analysis{Parallel: true, DuckTyping: true, ContractStrings: true},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads and validates the file at path. Relative paths in the file
// are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	cfg.Project.Root = ""
	cfg.Store.Path = ""
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("config: unknown key %q in %s", undec[0].String(), path)
	}
	applyDefaults(cfg)
	resolvePaths(cfg, filepath.Dir(path))

	if err := validateAnalysis(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validateExcludes(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validateLog(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadDir loads FileName from dir, falling back to Default rooted at dir
// when the file does not exist.
func LoadDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		resolvePaths(cfg, dir)
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Project.Root) == "" {
		cfg.Project.Root = "."
	}
	if strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = filepath.Join(".gdlens", "index.db")
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	if strings.TrimSpace(cfg.Log.Format) == "" {
		cfg.Log.Format = "text"
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
}

func resolvePaths(cfg *Config, base string) {
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Join(base, cfg.Project.Root)
	}
	if !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(cfg.Project.Root, cfg.Store.Path)
	}
	if s := cfg.Runtime.TypesScript; s != "" && !filepath.IsAbs(s) {
		cfg.Runtime.TypesScript = filepath.Join(cfg.Project.Root, s)
	}
}

func validateAnalysis(cfg *Config) error {
	if cfg.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0, got %d", cfg.Analysis.Workers)
	}
	return nil
}

func validateExcludes(cfg *Config) error {
	for i, pattern := range cfg.Project.Exclude {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("project.exclude[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("project.exclude[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateLog(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be one of: text, json; got %q", cfg.Log.Format)
	}
	return nil
}
