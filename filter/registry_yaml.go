package filter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/easel"
)

// Registry files are YAML documents describing the filters an execution
// service provides:
//
//	filters:
//	  - id: brightness
//	    name: Brightness
//	    category: Adjust
//	    parameters:
//	      - id: amount
//	        type: range
//	        min: -1
//	        max: 1
//	        default: 0
//
// Malformed entries are skipped with a warning, never fatal: one broken
// filter pack must not take down the editor.

// yamlDoc is the top-level shape of a registry file.
type yamlDoc struct {
	Filters []yamlDef `yaml:"filters"`
}

// yamlDef is one filter entry.
type yamlDef struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Category   string      `yaml:"category"`
	Parameters []yamlParam `yaml:"parameters"`
}

// yamlParam is one parameter declaration.
type yamlParam struct {
	ID      string   `yaml:"id"`
	Type    string   `yaml:"type"`
	Default any      `yaml:"default"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Options []string `yaml:"options"`
}

// definition converts the YAML form, reporting the first constraint the
// entry breaks.
func (yd yamlDef) definition() (*Definition, error) {
	def := &Definition{
		ID:       strings.TrimSpace(yd.ID),
		Name:     strings.TrimSpace(yd.Name),
		Category: strings.TrimSpace(yd.Category),
	}
	for _, yp := range yd.Parameters {
		t, err := ParseParamType(yp.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", yp.ID, err)
		}
		p := Parameter{
			ID:      strings.TrimSpace(yp.ID),
			Type:    t,
			Default: yp.Default,
			Options: yp.Options,
		}
		if t == ParamRange {
			if yp.Min == nil || yp.Max == nil {
				return nil, fmt.Errorf("%w: %q parameter %q needs min and max",
					ErrBadDefinition, def.ID, yp.ID)
			}
			p.Min, p.Max = *yp.Min, *yp.Max
		}
		def.Parameters = append(def.Parameters, p)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// ParseYAML decodes a registry file payload and registers its valid
// entries on r. Malformed entries are skipped with a warning; the count
// of registered definitions is returned. A payload that is not YAML at
// all is an error.
func (r *Registry) ParseYAML(data []byte) (int, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("filter: decode registry: %w", err)
	}
	n := 0
	for _, yd := range doc.Filters {
		def, err := yd.definition()
		if err != nil {
			easel.Logger().Warn("filter: skipping malformed definition",
				"id", yd.ID, "error", err)
			continue
		}
		if err := r.Register(def); err != nil {
			easel.Logger().Warn("filter: skipping definition",
				"id", def.ID, "error", err)
			continue
		}
		n++
	}
	return n, nil
}

// LoadFile reads one registry file and registers its valid entries.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("filter: read %s: %w", path, err)
	}
	n, err := r.ParseYAML(data)
	if err != nil {
		return 0, fmt.Errorf("filter: %s: %w", path, err)
	}
	return n, nil
}

// LoadDir scans dir for *.yaml and *.yml registry files, loading them in
// sorted path order so registration order is stable. A missing directory
// means no filters, not an error. Files that fail to decode are skipped
// with a warning.
func (r *Registry) LoadDir(dir string) (int, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("filter: read %s: %w", trimmed, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(trimmed, entry.Name()))
	}
	sort.Strings(paths)

	total := 0
	for _, path := range paths {
		n, err := r.LoadFile(path)
		if err != nil {
			easel.Logger().Warn("filter: skipping registry file",
				"path", path, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
