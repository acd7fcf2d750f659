package schema

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/categories.yaml data/patterns.yaml
var defaultData embed.FS

// rawTables mirrors the YAML document layout.
type rawTables struct {
	Categories []*Category    `yaml:"categories"`
	Patterns   []*PatternRule `yaml:"patterns"`
}

// Load parses the embedded default mapping tables.
func Load() (*Tables, error) {
	catBytes, err := defaultData.ReadFile("data/categories.yaml")
	if err != nil {
		return nil, fmt.Errorf("embedded category table: %w", err)
	}
	patBytes, err := defaultData.ReadFile("data/patterns.yaml")
	if err != nil {
		return nil, fmt.Errorf("embedded pattern table: %w", err)
	}
	return build(catBytes, patBytes)
}

// LoadFile parses a user-supplied schema file containing both the
// category and pattern tables in one YAML document.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}
	return build(data, nil)
}

func build(docs ...[]byte) (*Tables, error) {
	t := &Tables{
		categories: make(map[string]*Category),
		patterns:   make(map[patternKey]*PatternRule),
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		var raw rawTables
		if err := yaml.Unmarshal(doc, &raw); err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}

		for _, c := range raw.Categories {
			if c.Name == "" {
				return nil, fmt.Errorf("category with empty name")
			}
			if _, exists := t.categories[c.Name]; exists {
				return nil, fmt.Errorf("duplicate category %q", c.Name)
			}
			for _, f := range c.Fields {
				if _, err := f.AccessorKind(); err != nil {
					return nil, fmt.Errorf("category %q: %w", c.Name, err)
				}
			}
			t.categories[c.Name] = c
			t.order = append(t.order, c.Name)
		}

		for _, r := range raw.Patterns {
			key := patternKey{tag: r.Tag, context: r.Context}
			if _, exists := t.patterns[key]; exists {
				return nil, fmt.Errorf("duplicate pattern rule for tag %q in context %q", r.Tag, r.Context)
			}
			t.patterns[key] = r
		}
	}

	// Every pattern rule must reference known categories.
	for key := range t.patterns {
		if _, ok := t.categories[key.tag]; !ok {
			return nil, fmt.Errorf("pattern rule references unknown tag %q", key.tag)
		}
		if _, ok := t.categories[key.context]; !ok {
			return nil, fmt.Errorf("pattern rule references unknown context %q", key.context)
		}
	}

	return t, nil
}
