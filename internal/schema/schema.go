package schema

import "fmt"

// AccessorKind describes how a unified field is reached on the strict
// target.
type AccessorKind int

const (
	// AccessDirect is a plain struct field read.
	AccessDirect AccessorKind = iota
	// AccessIndirect is a field behind one layer of boxed indirection.
	AccessIndirect
	// AccessVariant is a field stored as a sum-type payload; reading it
	// requires destructuring the named variant.
	AccessVariant
)

// String returns the string representation of the accessor kind
func (a AccessorKind) String() string {
	switch a {
	case AccessDirect:
		return "direct"
	case AccessIndirect:
		return "indirect"
	case AccessVariant:
		return "variant"
	default:
		return "unknown"
	}
}

// StrictField describes the strict-target representation of a unified
// field.
type StrictField struct {
	Name     string `yaml:"name"`               // strict-side field name
	Accessor string `yaml:"accessor,omitempty"` // direct | indirect | variant
	Variant  string `yaml:"variant,omitempty"`  // variant name when accessor == variant
	Boxed    bool   `yaml:"boxed,omitempty"`    // behind one layer of indirection
	Interned bool   `yaml:"interned,omitempty"` // string stored as an interned atom
}

// Field describes one unified-schema field and its per-target
// correspondences.
type Field struct {
	Name   string      `yaml:"name"` // unified field name
	Type   string      `yaml:"type"` // unified type expression, e.g. "Option<Expr>"
	Duck   string      `yaml:"duck"` // duck-target property name
	Strict StrictField `yaml:"strict"`
}

// AccessorKind parses the strict accessor string; an empty accessor
// defaults to direct.
func (f *Field) AccessorKind() (AccessorKind, error) {
	switch f.Strict.Accessor {
	case "", "direct":
		return AccessDirect, nil
	case "indirect":
		return AccessIndirect, nil
	case "variant":
		return AccessVariant, nil
	default:
		return AccessDirect, fmt.Errorf("field %q: unknown accessor %q", f.Name, f.Strict.Accessor)
	}
}

// Category describes one unified node category and its per-target
// correspondences.
type Category struct {
	Name   string   `yaml:"name"`          // unified category name
	Duck   string   `yaml:"duck"`          // duck-target type tag
	Strict string   `yaml:"strict"`        // strict-target type name
	Sum    bool     `yaml:"sum,omitempty"` // closed sum type on the strict target
	Fields []*Field `yaml:"fields,omitempty"`
}

// Field returns the named field of the category, or nil.
func (c *Category) Field(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// PatternRule maps a unified tag, in a scrutinee-category context, to a
// strict-target variant. Then optionally names a second-level variant
// for tags that live two sum layers deep on the strict target (e.g. a
// string literal matched under an expression context).
type PatternRule struct {
	Tag     string `yaml:"tag"`
	Context string `yaml:"context"`
	Variant string `yaml:"variant"`
	Then    string `yaml:"then,omitempty"`
}

type patternKey struct {
	tag     string
	context string
}

// Tables is the full set of mapping tables: node-category
// correspondences, field correspondences, and pattern-variant
// correspondences. Constructed once at startup and immutable
// afterwards; safe for concurrent read access.
type Tables struct {
	categories map[string]*Category
	patterns   map[patternKey]*PatternRule
	order      []string // category declaration order, for deterministic iteration
}

// Category looks up a unified category by name.
func (t *Tables) Category(name string) (*Category, bool) {
	c, ok := t.categories[name]
	return c, ok
}

// IsCategory reports whether the name is a known unified category.
func (t *Tables) IsCategory(name string) bool {
	_, ok := t.categories[name]
	return ok
}

// Field looks up a unified field on a category. The second result is
// false when either the category or the field is unmapped.
func (t *Tables) Field(category, field string) (*Field, bool) {
	c, ok := t.categories[category]
	if !ok {
		return nil, false
	}
	f := c.Field(field)
	if f == nil {
		return nil, false
	}
	return f, true
}

// PatternVariant looks up the strict variant for a unified tag in the
// given scrutinee-category context.
func (t *Tables) PatternVariant(tag, context string) (*PatternRule, bool) {
	r, ok := t.patterns[patternKey{tag: tag, context: context}]
	return r, ok
}

// Categories returns all category names in declaration order.
func (t *Tables) Categories() []string {
	return t.order
}
