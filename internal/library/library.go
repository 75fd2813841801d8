// Package library loads the reusable prompt versions and model
// configurations authored in the editor. It serves the engine's read-only
// lookup ports from a YAML document on disk.
package library

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/weft-dev/weft/internal/core"
)

// document is the on-disk shape of a library file.
type document struct {
	DefaultModel string                `yaml:"default_model"`
	Models       []*core.ModelConfig   `yaml:"models"`
	Versions     []*core.PromptVersion `yaml:"versions"`
}

// Library holds prompt versions and model configs and implements
// core.VersionStore and core.ModelStore. Reload swaps the whole snapshot,
// so in-flight runs keep a consistent view.
type Library struct {
	path string

	mu           sync.RWMutex
	versions     map[string]*core.PromptVersion
	models       map[string]*core.ModelConfig
	defaultModel string
}

// Load reads a library file.
func Load(path string) (*Library, error) {
	l := &Library{path: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the library file and atomically replaces the snapshot.
func (l *Library) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("reading library: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing library %s: %w", l.path, err)
	}

	versions := make(map[string]*core.PromptVersion, len(doc.Versions))
	for _, v := range doc.Versions {
		if v.ID == "" {
			return fmt.Errorf("library %s: prompt version without an id", l.path)
		}
		if _, ok := versions[v.ID]; ok {
			return fmt.Errorf("library %s: duplicate prompt version %q", l.path, v.ID)
		}
		versions[v.ID] = v
	}

	models := make(map[string]*core.ModelConfig, len(doc.Models))
	for _, m := range doc.Models {
		if m.ID == "" {
			return fmt.Errorf("library %s: model config without an id", l.path)
		}
		if _, ok := models[m.ID]; ok {
			return fmt.Errorf("library %s: duplicate model config %q", l.path, m.ID)
		}
		models[m.ID] = m
	}

	defaultModel := doc.DefaultModel
	if defaultModel == "" && len(doc.Models) > 0 {
		defaultModel = doc.Models[0].ID
	}

	l.mu.Lock()
	l.versions = versions
	l.models = models
	l.defaultModel = defaultModel
	l.mu.Unlock()
	return nil
}

// Version implements core.VersionStore.
func (l *Library) Version(id string) (*core.PromptVersion, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if v, ok := l.versions[id]; ok {
		return v, nil
	}
	return nil, core.ErrVersionNotFound(id)
}

// Model implements core.ModelStore.
func (l *Library) Model(id string) (*core.ModelConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.models[id]; ok {
		return m, nil
	}
	return nil, core.ErrModelNotFound(id)
}

// DefaultModel implements core.ModelStore. When the file names no default
// the first declared model serves as one.
func (l *Library) DefaultModel() (*core.ModelConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.models[l.defaultModel]; ok {
		return m, nil
	}
	return nil, core.ErrModelNotFound("default")
}

// Versions returns all prompt version IDs, for listings.
func (l *Library) Versions() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.versions))
	for id := range l.versions {
		ids = append(ids, id)
	}
	return ids
}

// Path returns the library file path.
func (l *Library) Path() string {
	return l.path
}
