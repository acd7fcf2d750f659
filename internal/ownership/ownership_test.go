package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/parser"
	"github.com/morphlang/morphc/internal/schema"
)

func checkOwnership(t *testing.T, src string) *diagnostic.Diagnostics {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors:\n%s", p.Diagnostics().Format("test.morph"))
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	require.False(t, result.Diagnostics.HasErrors(), "type errors:\n%s", result.Diagnostics.Format("test.morph"))
	return Check(prog, result)
}

func firstError(t *testing.T, diag *diagnostic.Diagnostics) diagnostic.Diagnostic {
	t.Helper()
	require.True(t, diag.HasErrors(), "expected an ownership error")
	return diag.Errors()[0]
}

func TestExtractionWithoutOwnRejected(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Identifier(node) {
    let name = node.text;
    print(name);
}
`
	diag := checkOwnership(t, src)
	err := firstError(t, diag)
	assert.Contains(t, err.Message, "cannot move String out of a borrowed node")
	assert.Contains(t, err.Hint, "own")
}

func TestExtractionWithOwnAccepted(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Identifier(node) {
    let name = own node.text;
    print(name);
}
`
	diag := checkOwnership(t, src)
	assert.False(t, diag.HasErrors(), "unexpected errors:\n%s", diag.Format("test.morph"))
}

func TestOwnershipRoundTrip(t *testing.T) {
	// Extract with own, build a fresh node from the owned value, then
	// replace the visited node. The canonical edit pattern is clean.
	src := `module test version "0.1.0";

visitor Rename on Identifier(node) {
    let name = own node.text;
    replace node = Identifier{text: name + "_renamed"};
}
`
	diag := checkOwnership(t, src)
	assert.False(t, diag.HasErrors(), "unexpected errors:\n%s", diag.Format("test.morph"))
}

func TestReadsNeedNoOwn(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on BinaryExpr(node) {
    if node.op == "+" {
        print(node.op);
    }
    match node.left {
        Identifier{text: t} => { print(t); }
        _ => { }
    }
}
`
	diag := checkOwnership(t, src)
	assert.False(t, diag.HasErrors(), "unexpected errors:\n%s", diag.Format("test.morph"))
}

func TestScalarExtractionNeedsNoOwn(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on NumberLiteral(node) {
    let v = node.value;
    replace node = NumberLiteral{value: v * 2.0};
}
`
	diag := checkOwnership(t, src)
	assert.False(t, diag.HasErrors(), "unexpected errors:\n%s", diag.Format("test.morph"))
}

func TestDirectFieldMutationRejected(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Identifier(node) {
    node.text = "renamed";
}
`
	diag := checkOwnership(t, src)
	err := firstError(t, diag)
	assert.Contains(t, err.Message, "cannot assign to field 'text' of node 'Identifier'")
	assert.Contains(t, err.Hint, "replace")
}

func TestReplaceOnNonParamRejected(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Identifier(node) {
    let mut other = own node.text;
    other = "x";
    replace other = Identifier{text: "y"};
}
`
	// The checker flags the type mismatch too, so run the ownership
	// pass on its own diagnostics only.
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors())
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	diag := Check(prog, result)

	oerr := firstError(t, diag)
	assert.Contains(t, oerr.Message, "only the visited node parameter can be replaced")
	assert.Contains(t, oerr.Hint, "'node'")
}

func TestReplaceOutsideVisitorRejected(t *testing.T) {
	src := `module test version "0.1.0";

function f(e: Expr) returns Unit {
    replace e = e;
}
`
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors())
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	diag := Check(prog, result)

	oerr := firstError(t, diag)
	assert.Contains(t, oerr.Message, "replace is only allowed inside a visitor")
}

func TestReplaceShadowedParamRejected(t *testing.T) {
	src := `module test version "0.1.0";

visitor V on Expr(node) {
    match node {
        Identifier{text: t} => { print(t); }
        node => {
            replace node = node;
        }
    }
}
`
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors())
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	diag := Check(prog, result)

	oerr := firstError(t, diag)
	assert.Contains(t, oerr.Message, "shadows the visited node parameter")
}

func TestOwnOnOwnedValueWarns(t *testing.T) {
	src := `module test version "0.1.0";

function f() returns String {
    let s = "hello";
    return own s;
}
`
	diag := checkOwnership(t, src)
	assert.False(t, diag.HasErrors())
	require.Equal(t, 1, diag.WarningCount())
	assert.Contains(t, diag.All()[0].Message, "own has no effect")
}

func TestMovingNodeFieldIntoCallRejected(t *testing.T) {
	src := `module test version "0.1.0";

function keep(s: String) returns String {
    return s;
}

visitor V on Identifier(node) {
    let kept = keep(node.text);
    print(kept);
}
`
	diag := checkOwnership(t, src)
	err := firstError(t, diag)
	assert.Contains(t, err.Message, "cannot move String out of a borrowed node")
}

func TestRefParamBorrowsWithoutOwn(t *testing.T) {
	src := `module test version "0.1.0";

function inspect(e: &Expr) returns Unit {
    print("expr");
}

visitor V on BinaryExpr(node) {
    inspect(&node.left);
}
`
	diag := checkOwnership(t, src)
	assert.False(t, diag.HasErrors(), "unexpected errors:\n%s", diag.Format("test.morph"))
}
