package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry holds named templates.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty template registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds a template under its lower-cased name.
func (r *Registry) Register(t *Template) error {
	key := strings.ToLower(t.Name)
	if key == "" {
		return fmt.Errorf("%w: template has no name", ErrInvalidTemplate)
	}
	if _, ok := r.templates[key]; ok {
		return fmt.Errorf("duplicate template name: %s", key)
	}
	r.templates[key] = t
	return nil
}

// Get returns the template registered under name, or nil.
func (r *Registry) Get(name string) *Template {
	return r.templates[strings.ToLower(name)]
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for k := range r.templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadDir registers every *.yaml, *.yml and *.json file in dir. Templates
// without a name are registered under their file name minus extension.
// A missing directory yields an empty registry.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading template dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		t, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		if err := r.Register(t); err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
	}
	return r, nil
}
