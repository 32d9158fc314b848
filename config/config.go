package config

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResolverConfig describes where settings come from.
type ResolverConfig struct {
	// EnvPrefix turns key "base_branch" into ISSUEFLOW_BASE_BRANCH when
	// set to "ISSUEFLOW_".
	EnvPrefix string

	// EnvAliases are extra unprefixed variables per key, lowest priority
	// first. The prefixed variable beats all of them.
	EnvAliases map[string][]string

	// GlobalConfigDir names the directory under ~/.config. GlobalConfigFile
	// defaults to "config.yaml".
	GlobalConfigDir  string
	GlobalConfigFile string

	// LocalConfigName is the file read from the repository root.
	LocalConfigName string

	Defaults map[string]string

	// Keys each file may set. Nil allows any key.
	ValidGlobalKeys []string
	ValidLocalKeys  []string

	// GitRootFinder overrides the .git walk used to find the local file.
	GitRootFinder func(startDir string) (string, error)

	// ErrWriter receives warnings; nil means os.Stderr.
	ErrWriter io.Writer
}

// Resolver merges defaults, config files and the environment.
type Resolver struct {
	config     ResolverConfig
	globalPath string
	localPath  string
	gitRoot    string

	// Warnings holds every non-fatal problem seen while resolving.
	Warnings []string
}

// NewResolver places the global file under the user's home and the local
// file in the repository enclosing the working directory.
func NewResolver(cfg ResolverConfig) *Resolver {
	finder := cfg.GitRootFinder
	if finder == nil {
		finder = func(dir string) (string, error) { return findGitRoot(dir), nil }
	}

	var global, local, root string
	if r, err := finder("."); err == nil && r != "" {
		root = r
		if cfg.LocalConfigName != "" {
			local = filepath.Join(r, cfg.LocalConfigName)
		}
	}
	if home, err := os.UserHomeDir(); err == nil && cfg.GlobalConfigDir != "" {
		file := cfg.GlobalConfigFile
		if file == "" {
			file = "config.yaml"
		}
		global = filepath.Join(home, ".config", cfg.GlobalConfigDir, file)
	}

	res := NewResolverWithPaths(cfg, global, local)
	res.gitRoot = root
	return res
}

// NewResolverWithPaths uses explicit file paths. Empty paths are skipped.
func NewResolverWithPaths(cfg ResolverConfig, globalPath, localPath string) *Resolver {
	if cfg.ErrWriter == nil {
		cfg.ErrWriter = os.Stderr
	}
	return &Resolver{config: cfg, globalPath: globalPath, localPath: localPath}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	fmt.Fprintf(r.config.ErrWriter, "Warning: %s\n", msg)
}

// Resolved holds the final merged configuration.
type Resolved struct {
	entries map[string]entry
}

type entry struct {
	value  string
	source Source
}

// Get returns the value for a key, or empty string if not set.
func (c *Resolved) Get(key string) string {
	return c.entries[key].value
}

// Source returns the source of a key's value.
func (c *Resolved) Source(key string) Source {
	return c.entries[key].source
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	e := c.entries[key]
	return e.value, e.source
}

// All returns a copy of all key-value pairs.
func (c *Resolved) All() map[string]string {
	out := make(map[string]string, len(c.entries))
	for k, e := range c.entries {
		out[k] = e.value
	}
	return out
}

// Keys returns all configuration keys in sorted order.
func (c *Resolved) Keys() []string {
	return slices.Sorted(maps.Keys(c.entries))
}

// Resolve merges defaults, the global file, the local file and the
// environment, later layers overriding earlier ones.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{entries: make(map[string]entry)}
	layer := func(values map[string]string, src Source) {
		for k, v := range values {
			if v != "" || src == SourceDefault {
				cfg.entries[k] = entry{value: v, source: src}
			}
		}
	}

	layer(r.config.Defaults, SourceDefault)
	layer(r.readFile(r.globalPath, r.config.ValidGlobalKeys), SourceGlobal)
	layer(r.readFile(r.localPath, r.config.ValidLocalKeys), SourceLocal)
	layer(r.readEnv(cfg), SourceEnv)
	return cfg
}

// ResolveWithFlags resolves config and applies non-empty flag overrides.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.entries[key] = entry{value: value, source: SourceFlag}
		}
	}
	return cfg
}

// readFile returns the scalar top-level keys of a YAML file. A missing
// file yields nothing; nested values are skipped.
func (r *Resolver) readFile(path string, valid []string) map[string]string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return nil
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil
	}

	values := make(map[string]string)
	pairs := doc.Content[0].Content
	for i := 0; i+1 < len(pairs); i += 2 {
		key, val := pairs[i].Value, pairs[i+1]
		if len(valid) > 0 && !slices.Contains(valid, key) {
			r.warn(fmt.Sprintf("ignoring key %q in %s", key, path))
			continue
		}
		if val.Kind == yaml.ScalarNode && val.Tag != "!!null" {
			values[key] = val.Value
		}
	}
	return values
}

// readEnv looks up every known key under its aliases and then its
// prefixed name; the prefixed variable wins.
func (r *Resolver) readEnv(cfg *Resolved) map[string]string {
	known := make(map[string]bool)
	for k := range r.config.Defaults {
		known[k] = true
	}
	for k := range r.config.EnvAliases {
		known[k] = true
	}
	for k := range cfg.entries {
		known[k] = true
	}

	values := make(map[string]string)
	for key := range known {
		names := r.config.EnvAliases[key]
		if r.config.EnvPrefix != "" {
			names = append(slices.Clone(names), r.config.EnvPrefix+strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
		}
		for _, name := range names {
			if v := os.Getenv(name); v != "" {
				values[key] = v
			}
		}
	}
	return values
}

// GitRoot returns the detected git root directory.
func (r *Resolver) GitRoot() string {
	return r.gitRoot
}

// GlobalPath returns the path to the global config file.
func (r *Resolver) GlobalPath() string {
	return r.globalPath
}

// LocalPath returns the path to the local config file.
func (r *Resolver) LocalPath() string {
	return r.localPath
}

// findGitRoot walks up from startDir looking for a .git entry.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
