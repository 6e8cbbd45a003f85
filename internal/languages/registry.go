package languages

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Language is one analysis language supported by the platform.
type Language struct {
	Key  string `yaml:"key" json:"key"`
	Name string `yaml:"name" json:"name"`
}

// Registry holds the supported analysis languages, loaded once from the
// embedded YAML file.
type Registry struct {
	byKey map[string]Language
	mu    sync.RWMutex
}

// NewRegistry creates a registry and loads the embedded language file
func NewRegistry() (*Registry, error) {
	r := &Registry{byKey: make(map[string]Language)}

	data, err := configFiles.ReadFile("config/languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read languages file: %w", err)
	}

	var file struct {
		Languages []Language `yaml:"languages"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal languages file: %w", err)
	}

	r.mu.Lock()
	for _, lang := range file.Languages {
		r.byKey[lang.Key] = lang
	}
	r.mu.Unlock()

	return r, nil
}

// List returns all supported languages sorted by key
func (r *Registry) List() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]Language, 0, len(r.byKey))
	for _, lang := range r.byKey {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Key < langs[j].Key })
	return langs
}

// Supports reports whether the language key is known
func (r *Registry) Supports(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byKey[key]
	return ok
}
