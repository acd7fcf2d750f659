// Package decorate resolves the strict-target lowering plan for a
// checked program. The duck-typed backend emits the tree as written;
// the strict backend needs to know, per pattern and per field access,
// which enum variant to project, which boxes to look through, and which
// optional layers to unwrap. That knowledge is computed here, once,
// from the schema tables and the inferred types, and recorded against
// the AST nodes it applies to.
package decorate

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/schema"
)

// Strategy names one layer of pattern lowering on the strict target.
type Strategy int

const (
	// StrategyDirect projects an enum variant (or matches a concrete
	// node type as-is when no projection is needed).
	StrategyDirect Strategy = iota
	// StrategyIndirection looks through a box before matching.
	StrategyIndirection
	// StrategyOptionalUnwrap strips one optional layer before matching.
	StrategyOptionalUnwrap
)

func (s Strategy) String() string {
	switch s {
	case StrategyDirect:
		return "direct"
	case StrategyIndirection:
		return "indirection"
	case StrategyOptionalUnwrap:
		return "optional-unwrap"
	default:
		return "unknown"
	}
}

// PatternDecoration is one layer of the lowering chain for a category
// pattern. Layers nest outermost first: optional unwraps, then box
// indirections, then the variant projection, then any second-level
// projection the pattern table prescribes.
type PatternDecoration struct {
	Strategy Strategy
	// Variant is the projection path for a direct layer, e.g.
	// "Expr::Lit". Empty when the matched type already is the concrete
	// node type.
	Variant string
	Nested  *PatternDecoration
}

// Depth returns the number of layers in the chain.
func (d *PatternDecoration) Depth() int {
	n := 0
	for cur := d; cur != nil; cur = cur.Nested {
		n++
	}
	return n
}

// FieldAccessDecoration records how one field read lowers on each
// target: the duck property name, the strict field name, and the
// accessor shape the strict side needs.
type FieldAccessDecoration struct {
	DuckName   string
	StrictName string
	Accessor   schema.AccessorKind
	// Variant is the projection path for a variant accessor, e.g.
	// "Callee::Expr".
	Variant  string
	Boxed    bool
	Interned bool
}

// ConstructionField pairs one field of a node construction with its
// per-target lowering.
type ConstructionField struct {
	Name       string
	DuckName   string
	StrictName string
	Variant    string
	Boxed      bool
	Interned   bool
	Optional   bool
	Value      ast.Expression
}

// ConstructionDecoration records how a node-construction literal lowers
// on each target, with fields in schema order.
type ConstructionDecoration struct {
	Category string
	Duck     string
	Strict   string
	Fields   []ConstructionField
}

// Plan is the complete lowering plan for a program. All maps are keyed
// by the AST node the decoration applies to.
type Plan struct {
	Patterns      map[*ast.MatchPattern]*PatternDecoration
	FieldAccesses map[*ast.FieldAccessExpr]*FieldAccessDecoration
	Constructions map[*ast.StructLit]*ConstructionDecoration
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{
		Patterns:      make(map[*ast.MatchPattern]*PatternDecoration),
		FieldAccesses: make(map[*ast.FieldAccessExpr]*FieldAccessDecoration),
		Constructions: make(map[*ast.StructLit]*ConstructionDecoration),
	}
}
