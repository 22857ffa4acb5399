package request

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Example is a named, ready-to-run request from the catalog.
type Example struct {
	Name        string  `yaml:"name" json:"name"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description" json:"description"`
	Request     Request `yaml:"request" json:"request"`
}

var (
	catalogOnce sync.Once
	catalog     []Example
	catalogErr  error
)

// Catalog returns the embedded examples in file order. Each Request is
// already overlaid on Defaults().
func Catalog() ([]Example, error) {
	catalogOnce.Do(func() {
		var raw []Example
		if err := yaml.Unmarshal(catalogYAML, &raw); err != nil {
			catalogErr = fmt.Errorf("parsing example catalog: %w", err)
			return
		}
		seen := make(map[string]bool, len(raw))
		for i := range raw {
			if seen[raw[i].Name] {
				catalogErr = fmt.Errorf("example catalog: duplicate name %q", raw[i].Name)
				return
			}
			seen[raw[i].Name] = true
			raw[i].Request = Defaults().Overlay(raw[i].Request)
		}
		catalog = raw
	})
	if catalogErr != nil {
		return nil, catalogErr
	}
	out := make([]Example, len(catalog))
	copy(out, catalog)
	return out, nil
}

// Lookup returns the catalog example with the given name.
func Lookup(name string) (Example, error) {
	examples, err := Catalog()
	if err != nil {
		return Example{}, err
	}
	for _, ex := range examples {
		if ex.Name == name {
			return ex, nil
		}
	}
	names := make([]string, len(examples))
	for i, ex := range examples {
		names[i] = ex.Name
	}
	sort.Strings(names)
	return Example{}, fmt.Errorf("unknown example %q (available: %v)", name, names)
}
