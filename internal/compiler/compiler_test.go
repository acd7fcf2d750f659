package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphlang/morphc/internal/diagnostic"
)

const validVisitor = `
module test version "1.0";

visitor renameFoo on Identifier(node) {
    if node.text == "foo" {
        replace node = Identifier{text: "bar"};
    }
}
`

func TestCompileDuckTarget(t *testing.T) {
	res := Compile(validVisitor, "duck", nil)
	require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Format("test.morph"))
	assert.Contains(t, res.Source, "function renameFoo(node) {")
	assert.Contains(t, res.Source, `"use strict";`)
}

func TestCompileStrictTarget(t *testing.T) {
	res := Compile(validVisitor, "strict", nil)
	require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Format("test.morph"))
	assert.Contains(t, res.Source, "pub fn rename_foo(node: &mut Ident) {")
}

func TestCompileUnknownTarget(t *testing.T) {
	res := Compile(validVisitor, "jvm", nil)
	require.True(t, res.Diagnostics.HasErrors())
	assert.Contains(t, res.Diagnostics.Errors()[0].Message, "unknown target")
}

func TestCompileStopsOnParseError(t *testing.T) {
	res := Compile(`module test version "1.0"`, "duck", nil)
	require.True(t, res.Diagnostics.HasErrors())
	assert.Empty(t, res.Source)
}

func TestCompileDoesNotEmitOnTypeError(t *testing.T) {
	res := Compile(`
module test version "1.0";

function f() returns Int {
    return "no";
}
`, "duck", nil)
	require.True(t, res.Diagnostics.HasErrors())
	assert.Empty(t, res.Source)
}

func TestCheckReportsOwnershipViolation(t *testing.T) {
	diag := Check(`
module test version "1.0";

visitor steal on VarDecl(node) {
    let name = node.name;
}
`, nil)
	require.True(t, diag.HasErrors())
	found := false
	for _, d := range diag.Errors() {
		if strings.Contains(d.Message, "borrowed node") {
			found = true
		}
	}
	assert.True(t, found, "expected a move-out-of-borrow error, got: %v", diag.All())
}

func TestCheckAccumulatesAcrossPasses(t *testing.T) {
	// A type error must not suppress the ownership pass; both kinds
	// surface in one run.
	diag := Check(`
module test version "1.0";

visitor broken on Identifier(node) {
    let bad: Int = "not an int";
    let moved = node.text;
}
`, nil)
	require.True(t, diag.HasErrors())
	assert.True(t, diag.HasKind(diagnostic.KindType), "missing type diagnostic: %v", diag.All())
	assert.True(t, diag.HasKind(diagnostic.KindOwnership), "missing ownership diagnostic: %v", diag.All())
}

func TestCompileAccumulatesButDoesNotEmit(t *testing.T) {
	res := Compile(`
module test version "1.0";

visitor broken on Identifier(node) {
    let bad: Int = "not an int";
    let moved = node.text;
}
`, "duck", nil)
	require.True(t, res.Diagnostics.HasErrors())
	assert.True(t, res.Diagnostics.HasKind(diagnostic.KindOwnership), "got: %v", res.Diagnostics.All())
	assert.Empty(t, res.Source)
}

func TestCheckProjectAccumulatesAcrossPasses(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.morph": `
module main version "1.0";

import "helpers.morph";

visitor broken on Identifier(node) {
    let bad: Int = "not an int";
    let moved = node.text;
}
`,
		"helpers.morph": `
module helpers version "1.0";

public function id(x: Int) returns Int {
    return x;
}
`,
	})

	diag := CheckProject(filepath.Join(dir, "main.morph"), nil)
	require.True(t, diag.HasErrors())
	assert.True(t, diag.HasKind(diagnostic.KindType), "got: %v", diag.All())
	assert.True(t, diag.HasKind(diagnostic.KindOwnership), "got: %v", diag.All())
}

func TestCheckReportsUnmappablePattern(t *testing.T) {
	diag := Check(`
module test version "1.0";

visitor v on Stmt(node) {
    match node {
        Identifier{text: t} => {
            print(own t);
        }
        _ => {}
    }
}
`, nil)
	require.True(t, diag.HasErrors())
}

func TestHasImports(t *testing.T) {
	assert.False(t, HasImports(validVisitor))
	assert.True(t, HasImports(`
module main version "1.0";

import "helpers.morph";
`))
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestCompileProject(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"helpers.morph": `
module helpers version "1.0";

public function isFoo(name: &String) returns Bool {
    return *name == "foo";
}
`,
		"main.morph": `
module main version "1.0";

import "helpers.morph";

visitor renameFoo on Identifier(node) {
    if isFoo(&node.text) {
        replace node = Identifier{text: "bar"};
    }
}
`,
	})

	res := CompileProject(filepath.Join(dir, "main.morph"), "duck", nil)
	require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Format("main.morph"))
	assert.Contains(t, res.Source, "// module helpers")
	assert.Contains(t, res.Source, "function isFoo(name) {")
	assert.Contains(t, res.Source, "function renameFoo(node) {")
}

func TestCompileProjectCycle(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a.morph": `
module a version "1.0";

import "b.morph";
`,
		"b.morph": `
module b version "1.0";

import "a.morph";
`,
	})

	res := CompileProject(filepath.Join(dir, "a.morph"), "duck", nil)
	require.True(t, res.Diagnostics.HasErrors())
	found := false
	for _, d := range res.Diagnostics.Errors() {
		if strings.Contains(d.Message, "import cycle detected") {
			found = true
		}
	}
	assert.True(t, found, "got: %v", res.Diagnostics.All())
}

func TestCompileProjectMissingImport(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"main.morph": `
module main version "1.0";

import "nope.morph";
`,
	})

	res := CompileProject(filepath.Join(dir, "main.morph"), "duck", nil)
	require.True(t, res.Diagnostics.HasErrors())
}

func TestEmitWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out")

	outPath, err := Emit(validVisitor, "strict", base, nil)
	require.NoError(t, err)
	assert.Equal(t, base+".rs", outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pub fn rename_foo")
}

func TestIsMultiFile(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"single.morph": validVisitor,
	})
	multi, err := IsMultiFile(filepath.Join(dir, "single.morph"))
	require.NoError(t, err)
	assert.False(t, multi)
}
