package decorate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/parser"
	"github.com/morphlang/morphc/internal/schema"
)

func resolveSource(t *testing.T, src string) (*ast.Program, *Plan, *diagnostic.Diagnostics) {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors:\n%s", p.Diagnostics().Format("test.morph"))
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	require.False(t, result.Diagnostics.HasErrors(), "type errors:\n%s", result.Diagnostics.Format("test.morph"))
	plan, diag := Resolve(prog, result)
	return prog, plan, diag
}

// firstPattern digs out the first category pattern of the first match
// statement in the first visitor.
func firstPattern(t *testing.T, prog *ast.Program) *ast.MatchPattern {
	t.Helper()
	require.NotEmpty(t, prog.Visitors)
	for _, stmt := range prog.Visitors[0].Body.Statements {
		if m, ok := stmt.(*ast.MatchStmt); ok {
			require.NotEmpty(t, m.Arms)
			return m.Arms[0].Pattern
		}
	}
	t.Fatal("no match statement found")
	return nil
}

func chain(d *PatternDecoration) []Strategy {
	var out []Strategy
	for cur := d; cur != nil; cur = cur.Nested {
		out = append(out, cur.Strategy)
	}
	return out
}

func TestVariantProjection(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Expr(node) {
    match node {
        Identifier{text: t} => { print(t); }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors(), "unexpected errors:\n%s", diag.Format("test.morph"))

	dec := plan.Patterns[firstPattern(t, prog)]
	require.NotNil(t, dec)
	assert.Equal(t, []Strategy{StrategyDirect}, chain(dec))
	assert.Equal(t, "Expr::Ident", dec.Variant)
}

func TestTwoLevelVariantProjection(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Expr(node) {
    match node {
        StringLiteral{value: v} => { print(v); }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())

	dec := plan.Patterns[firstPattern(t, prog)]
	require.NotNil(t, dec)
	require.Equal(t, []Strategy{StrategyDirect, StrategyDirect}, chain(dec))
	assert.Equal(t, "Expr::Lit", dec.Variant)
	assert.Equal(t, "Lit::Str", dec.Nested.Variant)
}

func TestSameCategoryNeedsNoProjection(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Identifier(node) {
    match node {
        Identifier{text: t} => { print(t); }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())

	dec := plan.Patterns[firstPattern(t, prog)]
	require.NotNil(t, dec)
	assert.Equal(t, []Strategy{StrategyDirect}, chain(dec))
	assert.Empty(t, dec.Variant)
}

func TestOptionalUnwrapThroughBoxedField(t *testing.T) {
	// VarDecl.init is Option<Expr> and boxed on the strict target:
	// matching a tag straight through it unwraps the optional, then the
	// box, then projects the variant.
	src := `module test version "0.1.0";

visitor V on VarDecl(node) {
    match node.init {
        Identifier{text: t} => { print(t); }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())

	dec := plan.Patterns[firstPattern(t, prog)]
	require.NotNil(t, dec)
	require.Equal(t, []Strategy{StrategyOptionalUnwrap, StrategyIndirection, StrategyDirect}, chain(dec))
	assert.Equal(t, "Expr::Ident", dec.Nested.Nested.Variant)
}

func TestExplicitSomeTakesPrecedence(t *testing.T) {
	// An explicit Some consumes the optional layer itself; only the box
	// indirection and the projection remain on the inner pattern.
	src := `module test version "0.1.0";

visitor V on VarDecl(node) {
    match node.init {
        Some(Identifier{text: t}) => { print(t); }
        None => { }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())

	some := firstPattern(t, prog)
	require.Equal(t, "Some", some.Tag)
	require.Len(t, some.Positional, 1)
	inner := some.Positional[0]

	_, hasOuter := plan.Patterns[some]
	assert.False(t, hasOuter, "Some itself needs no lowering entry")

	dec := plan.Patterns[inner]
	require.NotNil(t, dec)
	require.Equal(t, []Strategy{StrategyIndirection, StrategyDirect}, chain(dec))
	assert.Equal(t, "Expr::Ident", dec.Nested.Variant)
}

func TestNestedFieldPatternsLowerToo(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on BinaryExpr(node) {
    match node.left {
        CallExpr{callee: Identifier{text: t}} => { print(t); }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())

	outer := firstPattern(t, prog)
	require.Equal(t, "CallExpr", outer.Tag)
	outerDec := plan.Patterns[outer]
	require.NotNil(t, outerDec)
	// node.left is a boxed Expr field.
	assert.Equal(t, []Strategy{StrategyIndirection, StrategyDirect}, chain(outerDec))
	assert.Equal(t, "Expr::Call", outerDec.Nested.Variant)

	// callee is a boxed variant-projected Expr field.
	require.Len(t, outer.Fields, 1)
	innerDec := plan.Patterns[outer.Fields[0].Pattern]
	require.NotNil(t, innerDec)
	assert.Equal(t, []Strategy{StrategyIndirection, StrategyDirect}, chain(innerDec))
	assert.Equal(t, "Expr::Ident", innerDec.Nested.Variant)
}

func TestUnmappableTagIsError(t *testing.T) {
	// No pattern rule maps Identifier inside a Stmt context; lowering
	// must fail loudly, never fall back to a default.
	src := `module test version "0.1.0";

visitor V on Stmt(node) {
    match node {
        Identifier{text: t} => { print(t); }
        _ => { }
    }
}
`
	prog, plan, diag := resolveSource(t, src)
	require.True(t, diag.HasErrors())
	assert.Contains(t, diag.Errors()[0].Message, "no strict variant maps node 'Identifier' in context 'Stmt'")
	assert.Equal(t, diagnostic.KindDecoration, diag.Errors()[0].Kind)

	_, ok := plan.Patterns[firstPattern(t, prog)]
	assert.False(t, ok, "unmappable pattern must not enter the plan")
}

func TestFieldAccessDecorations(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on CallExpr(node) {
    print(node.callee);
    print(node.args);
}

visitor W on Identifier(node) {
    print(node.text);
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())

	byField := make(map[string]*FieldAccessDecoration)
	for expr, dec := range plan.FieldAccesses {
		byField[expr.Field] = dec
	}
	_ = prog

	callee := byField["callee"]
	require.NotNil(t, callee)
	assert.Equal(t, schema.AccessVariant, callee.Accessor)
	assert.Equal(t, "Callee::Expr", callee.Variant)
	assert.True(t, callee.Boxed)

	args := byField["args"]
	require.NotNil(t, args)
	assert.Equal(t, schema.AccessDirect, args.Accessor)
	assert.Equal(t, "arguments", args.DuckName)
	assert.Equal(t, "args", args.StrictName)

	text := byField["text"]
	require.NotNil(t, text)
	assert.Equal(t, "name", text.DuckName)
	assert.Equal(t, "sym", text.StrictName)
	assert.True(t, text.Interned)
}

func TestConstructionDecoration(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on BinaryExpr(node) {
    replace node = BinaryExpr{
        op: "+",
        left: Identifier{text: "a"},
        right: Identifier{text: "b"},
    };
}
`
	prog, plan, diag := resolveSource(t, src)
	assert.False(t, diag.HasErrors())
	_ = prog

	var dec *ConstructionDecoration
	for lit, d := range plan.Constructions {
		if lit.Name == "BinaryExpr" {
			dec = d
		}
	}
	require.NotNil(t, dec)
	assert.Equal(t, "BinaryExpression", dec.Duck)
	assert.Equal(t, "BinExpr", dec.Strict)

	// Fields come back in schema order regardless of literal order.
	require.Len(t, dec.Fields, 3)
	assert.Equal(t, "op", dec.Fields[0].Name)
	assert.Equal(t, "left", dec.Fields[1].Name)
	assert.Equal(t, "right", dec.Fields[2].Name)
	assert.True(t, dec.Fields[1].Boxed)
	require.NotNil(t, dec.Fields[1].Value)
}

func TestStructPatternWithSomeBindsPayload(t *testing.T) {
	// A user-struct destructure composes with an explicit Some: the
	// field pattern consumes the optional layer and the inner binding
	// carries the payload type.
	src := `module test version "0.1.0";

struct Foo {
    bar: Option<Int>;
}

function f(node: &Foo) returns Unit {
    match node {
        Foo{bar: Some(x)} => { print(x); }
        _ => { }
    }
}
`
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors(), p.Diagnostics().Format("test.morph"))
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	require.False(t, result.Diagnostics.HasErrors(), result.Diagnostics.Format("test.morph"))

	plan, diag := Resolve(prog, result)
	assert.False(t, diag.HasErrors(), diag.Format("test.morph"))

	var outer *ast.MatchPattern
	for _, stmt := range prog.Functions[0].Body.Statements {
		if m, ok := stmt.(*ast.MatchStmt); ok {
			outer = m.Arms[0].Pattern
		}
	}
	require.NotNil(t, outer)
	require.Equal(t, "Foo", outer.Tag)
	require.Len(t, outer.Fields, 1)
	some := outer.Fields[0].Pattern
	require.Equal(t, "Some", some.Tag)
	require.Len(t, some.Positional, 1)
	assert.True(t, some.Positional[0].IsBinding)

	// Struct and Some layers lower syntactically on the strict target.
	_, ok := plan.Patterns[outer]
	assert.False(t, ok)
	_, ok = plan.Patterns[some]
	assert.False(t, ok)

	// The binding's use in the arm body carries the unwrapped Int.
	var xType *checker.Type
	for expr, typ := range result.ExprTypes {
		if id, ok := expr.(*ast.Identifier); ok && id.Name == "x" {
			xType = typ
		}
	}
	require.NotNil(t, xType, "no typed use of the binding found")
	assert.Equal(t, checker.KindInt, xType.Kind)
}

func TestResolveIsDeterministic(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Expr(node) {
    match node {
        StringLiteral{value: v} => { print(v); }
        CallExpr{callee: c} => { print("call"); }
        _ => { }
    }
}
`
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors())
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	require.False(t, result.Diagnostics.HasErrors())

	first, _ := Resolve(prog, result)
	for i := 0; i < 10; i++ {
		again, diag := Resolve(prog, result)
		assert.False(t, diag.HasErrors())
		require.Equal(t, len(first.Patterns), len(again.Patterns))
		for pat, dec := range first.Patterns {
			assert.Equal(t, dec, again.Patterns[pat], "pattern lowering drifted between runs")
		}
	}
}
