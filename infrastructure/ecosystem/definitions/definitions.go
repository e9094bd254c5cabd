// Package definitions embeds the per-ecosystem manifest tables. Each YAML
// file maps an ecosystem to its platform language name and the manifest files
// (with their dependency-management system) that identify it, so adding a new
// ecosystem starts with dropping in a new *.yaml file.
package definitions

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var definitionsFS embed.FS

// Definition describes one dependency ecosystem.
type Definition struct {
	Name      string         `yaml:"name"`     // Ecosystem identifier (e.g. "python")
	Language  string         `yaml:"language"` // Platform language name (e.g. "Python"), may be empty
	Manifests []ManifestRule `yaml:"manifests"`
}

// ManifestRule maps a manifest file to its dependency-management system.
// File is an exact base name (e.g. "requirements.txt") or a "*.ext" pattern.
type ManifestRule struct {
	File   string `yaml:"file"`
	System string `yaml:"system"`
}

// Matches reports whether the given repository path is covered by this rule.
func (r ManifestRule) Matches(filePath string) bool {
	base := path.Base(filePath)
	if ext, ok := strings.CutPrefix(r.File, "*"); ok {
		return strings.HasSuffix(base, ext)
	}
	return base == r.File
}

// Match returns the first rule of the definition covering the given path.
func (d Definition) Match(filePath string) (ManifestRule, bool) {
	for _, rule := range d.Manifests {
		if rule.Matches(filePath) {
			return rule, true
		}
	}
	return ManifestRule{}, false
}

var (
	loadOnce sync.Once
	loaded   []Definition
	loadErr  error
)

// All returns every embedded definition, sorted by ecosystem name.
func All() ([]Definition, error) {
	loadOnce.Do(func() {
		entries, err := definitionsFS.ReadDir(".")
		if err != nil {
			loadErr = fmt.Errorf("failed to read embedded definitions: %w", err)
			return
		}

		for _, entry := range entries {
			data, readErr := definitionsFS.ReadFile(entry.Name())
			if readErr != nil {
				loadErr = fmt.Errorf("failed to read %q: %w", entry.Name(), readErr)
				return
			}

			var def Definition
			if unmarshalErr := yaml.Unmarshal(data, &def); unmarshalErr != nil {
				loadErr = fmt.Errorf("failed to parse %q: %w", entry.Name(), unmarshalErr)
				return
			}
			loaded = append(loaded, def)
		}

		sort.Slice(loaded, func(i, j int) bool {
			return loaded[i].Name < loaded[j].Name
		})
	})

	return loaded, loadErr
}

// ForName returns the definition with the given ecosystem name.
func ForName(name string) (Definition, error) {
	defs, err := All()
	if err != nil {
		return Definition{}, err
	}
	for _, def := range defs {
		if def.Name == name {
			return def, nil
		}
	}
	return Definition{}, fmt.Errorf("unknown ecosystem definition: %q", name)
}

// MustForName is ForName for static, embedded names; it panics on a missing
// definition, which can only happen when a YAML file is renamed or removed.
func MustForName(name string) Definition {
	def, err := ForName(name)
	if err != nil {
		panic(err)
	}
	return def
}
