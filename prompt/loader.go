package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names of the built-in prompts.
const (
	PlanSystem    = "plan_system"
	PlanUser      = "plan_user"
	ExecuteSystem = "execute_system"
	ExecuteUser   = "execute_user"
	PRBody        = "pr_body"
)

//go:embed prompts/*.txt
var embedded embed.FS

// Loader renders prompt templates named "<name>.txt". Override
// directories are searched before the embedded set. Loader is safe for
// concurrent use.
type Loader struct {
	mu     sync.Mutex
	layers []fs.FS // highest priority first; embedded prompts last
	funcs  template.FuncMap
	parsed map[string]*template.Template
}

// NewLoader returns a loader that prefers <projectDir>/.issueflow/prompts
// over the embedded prompts. An empty projectDir uses the embedded set
// only.
func NewLoader(projectDir string) *Loader {
	builtin, _ := fs.Sub(embedded, "prompts")
	l := &Loader{
		layers: []fs.FS{builtin},
		funcs:  templateFuncs(),
		parsed: make(map[string]*template.Template),
	}
	if projectDir != "" {
		l.AddSearchDir(filepath.Join(projectDir, ".issueflow", "prompts"))
	}
	return l
}

// AddSearchDir puts dir ahead of every existing search location.
func (l *Loader) AddSearchDir(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.layers = slices.Insert(l.layers, 0, fs.FS(os.DirFS(dir)))
	clear(l.parsed)
}

// AddFunc registers a template function for later renders.
func (l *Loader) AddFunc(name string, fn any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funcs[name] = fn
	clear(l.parsed)
}

// Load renders a prompt with no variables.
func (l *Loader) Load(name string) (string, error) {
	return l.LoadWithVars(name, nil)
}

// LoadWithVars renders a prompt and trims surrounding whitespace.
// Missing variables render as their zero value.
func (l *Loader) LoadWithVars(name string, vars map[string]any) (string, error) {
	tmpl, err := l.template(name)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(out.String()), nil
}

// Exists reports whether any layer provides name.
func (l *Loader) Exists(name string) bool {
	_, err := l.source(name)
	return err == nil
}

// List returns the names of every available prompt, sorted.
func (l *Loader) List() []string {
	names := make(map[string]struct{})
	for _, layer := range l.snapshot() {
		matches, _ := fs.Glob(layer, "*.txt")
		for _, m := range matches {
			names[strings.TrimSuffix(m, ".txt")] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(names))
}

func (l *Loader) snapshot() []fs.FS {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.layers)
}

func (l *Loader) source(name string) (string, error) {
	for _, layer := range l.snapshot() {
		data, err := fs.ReadFile(layer, name+".txt")
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read prompt %s: %w", name, err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (l *Loader) template(name string) (*template.Template, error) {
	l.mu.Lock()
	tmpl, ok := l.parsed[name]
	funcs := maps.Clone(l.funcs)
	l.mu.Unlock()
	if ok {
		return tmpl, nil
	}

	text, err := l.source(name)
	if err != nil {
		return nil, err
	}
	tmpl, err = template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	l.mu.Lock()
	l.parsed[name] = tmpl
	l.mu.Unlock()
	return tmpl, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":     strings.Join,
		"trim":     strings.TrimSpace,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    cases.Title(language.English).String,
		"contains": strings.Contains,
		"indent":   indentString,
		"default":  defaultValue,
	}
}

// indentString prefixes every non-empty line with n spaces.
func indentString(n int, s string) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// defaultValue returns fallback when value is nil or an empty string.
func defaultValue(fallback, value any) any {
	if s, ok := value.(string); value == nil || (ok && s == "") {
		return fallback
	}
	return value
}
