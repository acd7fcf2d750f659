package decorate

import (
	"fmt"

	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/schema"
)

// DecorationError reports a category pattern that no strict variant can
// represent in its context. Unmapped combinations are always errors;
// there is no default lowering.
type DecorationError struct {
	Tag     string
	Context string
	Line    int
	Column  int
}

func (e *DecorationError) Error() string {
	return fmt.Sprintf("no strict variant maps node '%s' in context '%s'", e.Tag, e.Context)
}

// lowerPattern computes the lowering chain for a category pattern.
//
// The chain is derived purely from the shape of the scrutinee type and
// the pattern tables: every optional layer on the scrutinee becomes an
// unwrap, a boxed field becomes an indirection, and matching a member
// tag inside a sum context becomes the variant projection the tables
// prescribe, with a second projection when the tables name a nested
// variant. Matching a concrete category against its own type needs no
// projection at all.
func lowerPattern(tag string, scrutType *checker.Type, boxed bool, tables *schema.Tables, line, col int) (*PatternDecoration, error) {
	var steps []*PatternDecoration

	t := scrutType.Deref()
	for t.Kind == checker.KindOption {
		steps = append(steps, &PatternDecoration{Strategy: StrategyOptionalUnwrap})
		t = t.Inner().Deref()
	}

	if boxed {
		steps = append(steps, &PatternDecoration{Strategy: StrategyIndirection})
	}

	context := t.Name
	if t.Kind != checker.KindNode {
		// The checker already rejected this; fall back to the tag as
		// its own context so lowering stays total.
		context = tag
	}

	if tag == context {
		steps = append(steps, &PatternDecoration{Strategy: StrategyDirect})
	} else {
		rule, ok := tables.PatternVariant(tag, context)
		if !ok {
			return nil, &DecorationError{Tag: tag, Context: context, Line: line, Column: col}
		}
		steps = append(steps, &PatternDecoration{Strategy: StrategyDirect, Variant: rule.Variant})
		if rule.Then != "" {
			steps = append(steps, &PatternDecoration{Strategy: StrategyDirect, Variant: rule.Then})
		}
	}

	for i := len(steps) - 2; i >= 0; i-- {
		steps[i].Nested = steps[i+1]
	}
	return steps[0], nil
}
