package rustbe

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
	"github.com/morphlang/morphc/internal/parser"
	"github.com/morphlang/morphc/internal/schema"
)

func generateSource(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(src)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors:\n%s", p.Diagnostics().Format("test.morph"))
	tables, err := schema.Load()
	require.NoError(t, err)
	result := checker.CheckWithResult(prog, tables)
	require.Zero(t, result.Diagnostics.ErrorCount(), "check errors: %v", result.Diagnostics.All())
	plan, diags := decorate.Resolve(prog, result)
	require.Zero(t, diags.ErrorCount(), "decoration errors: %v", diags.All())
	return Generate(prog, result, plan)
}

func assertGenerated(t *testing.T, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Errorf("generated output mismatch:\n%s", diff)
}

func TestVisitorGoldenOutput(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor renameFoo on Identifier(node) {
    if node.text == "foo" {
        replace node = Identifier{text: "bar"};
    }
}
`)
	want := `// Generated visitor module (strict-variant tree)
#![allow(unused_parens, unused_variables, dead_code)]

use crate::ast::*;

pub fn rename_foo(node: &mut Ident) {
    if (node.sym == "foo") {
        *node = Ident { sym: "bar".into() };
    }
}

`
	assertGenerated(t, want, out)
}

func TestOptionalBoxedFieldMatch(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor v on VarDecl(node) {
    match node.init {
        Identifier{text: t} => {
            print(own t);
        }
        _ => {}
    }
}
`)
	assert.Contains(t, out, "if let Some(Expr::Ident(__p0)) = node.init.as_deref() {")
	assert.Contains(t, out, "let t = &__p0.sym;")
}

func TestExplicitSomeAndNone(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor v on VarDecl(node) {
    match node.init {
        Some(Identifier{text: t}) => {
            print(own t);
        }
        None => {
            print("no init");
        }
    }
}
`)
	assert.Contains(t, out, "if let Some(Expr::Ident(__p0)) = node.init.as_deref() {")
	assert.Contains(t, out, "else if node.init.is_none() {")
	assert.Contains(t, out, `println!("no init");`)
}

func TestTwoLevelVariantProjection(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor v on Expr(node) {
    match node {
        StringLiteral{value: s} => {
            print(own s);
        }
        _ => {}
    }
}
`)
	assert.Contains(t, out, "if let Expr::Lit(Lit::Str(__p0)) = &node {")
	assert.Contains(t, out, "let s = &__p0.value;")
}

func TestVariantAccessorScrutinee(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor v on CallExpr(node) {
    match node.callee {
        Identifier{text: t} => {
            print(own t);
        }
        _ => {}
    }
}
`)
	assert.Contains(t, out, "let Callee::Expr(__p0) = &node.callee")
	assert.Contains(t, out, "let Expr::Ident(__p1) = &*(*__p0)")
	assert.Contains(t, out, "let t = &__p1.sym;")
}

func TestConstructionWrapsIntoSumContext(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor inline on Expr(node) {
    match node {
        Identifier{text: t} => {
            if own t == "answer" {
                replace node = NumberLiteral{value: 42.0};
            }
        }
        _ => {}
    }
}
`)
	assert.Contains(t, out, "*node = Expr::Lit(Lit::Num(Number { value: 42.0 }));")
}

func TestConstructionBoxesAndClones(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor swap on BinaryExpr(node) {
    if node.op == "+" {
        replace node = BinaryExpr{
            op: own node.op,
            left: own node.right,
            right: own node.left,
        };
    }
}
`)
	assert.Contains(t, out, "op: node.op.clone()")
	assert.Contains(t, out, "left: Box::new((*node.right).clone())")
	assert.Contains(t, out, "right: Box::new((*node.left).clone())")
	// Same category as the visitor: no sum wrapping.
	assert.Contains(t, out, "*node = BinExpr {")
}

func TestUserEnumDeclAndMatch(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

enum Verdict {
    Keep;
    Rename(target: String);
}

function apply(v: Verdict) returns String {
    match v {
        Rename(t) => {
            return own t;
        }
        Keep => {
            return "unchanged";
        }
    }
    return "";
}
`)
	assert.Contains(t, out, "pub enum Verdict {")
	assert.Contains(t, out, "Keep,")
	assert.Contains(t, out, "Rename { target: String },")
	assert.Contains(t, out, "if let Verdict::Rename { target: t } = &v {")
	assert.Contains(t, out, "else if matches!(v, Verdict::Keep) {")
	assert.Contains(t, out, "return t.clone();")
}

func TestResultFunctions(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

function parsePort(s: String) returns Result<Int, String> {
    if s == "" {
        return Err("empty");
    }
    return Ok(8080);
}
`)
	assert.Contains(t, out, "pub fn parse_port(s: String) -> Result<i64, String> {")
	assert.Contains(t, out, `return Err("empty".to_string());`)
	assert.Contains(t, out, "return Ok(8080);")
}

func TestStructDeclAndLoops(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

struct Counter {
    hits: Int;
}

function spin(n: Int) returns Int {
    let mut total = 0;
    for i in 0..n {
        total = total + i;
    }
    return total;
}
`)
	assert.Contains(t, out, "pub struct Counter {")
	assert.Contains(t, out, "pub hits: i64,")
	assert.Contains(t, out, "let mut total = 0;")
	assert.Contains(t, out, "for i in 0..n {")
	assert.Contains(t, out, "total = (total + i);")
}

func TestInternedFieldAccess(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

function nameOf(id: &Identifier) returns String {
    return own id.text;
}
`)
	assert.Contains(t, out, "pub fn name_of(id: &Ident) -> String {")
	assert.Contains(t, out, "return id.sym.clone();")
}

func TestListBuiltins(t *testing.T) {
	out := generateSource(t, `
module test version "1.0";

visitor v on CallExpr(node) {
    if len(node.args) > 2 {
        print("wide call");
    }
}
`)
	assert.Contains(t, out, "(node.args.len() as i64)")
	assert.Contains(t, out, `println!("wide call");`)
}
