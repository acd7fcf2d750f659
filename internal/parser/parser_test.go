package parser

import (
	"testing"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/lexer"
)

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(input)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected errors: %s", p.Diagnostics().Format("test"))
	}
	return prog
}

func TestParseModuleDecl(t *testing.T) {
	prog := parseOK(t, `module rename version "0.1.0";`)

	if prog.Module == nil {
		t.Fatal("expected module declaration")
	}
	if prog.Module.Name != "rename" {
		t.Errorf("expected module name 'rename', got %q", prog.Module.Name)
	}
	if prog.Module.Version != "0.1.0" {
		t.Errorf("expected version '0.1.0', got %q", prog.Module.Version)
	}
}

func TestParseImports(t *testing.T) {
	prog := parseOK(t, `module main version "1.0.0";
import "helpers.morph";
import "names.morph";`)

	if len(prog.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(prog.Imports))
	}
	if prog.Imports[0].Path != "helpers.morph" {
		t.Errorf("expected first import 'helpers.morph', got %q", prog.Imports[0].Path)
	}
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function add(x: Int, y: Int) returns Int {
    return x + y;
}`)

	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}

	fn := prog.Functions[0]
	if fn.Name != "add" {
		t.Errorf("expected function name 'add', got %q", fn.Name)
	}
	if fn.IsPublic {
		t.Error("expected non-public function")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "x" || fn.Params[0].Type.Name != "Int" {
		t.Errorf("unexpected first param: %s: %s", fn.Params[0].Name, fn.Params[0].Type.Name)
	}
	if fn.ReturnType.Name != "Int" {
		t.Errorf("expected return type 'Int', got %q", fn.ReturnType.Name)
	}
}

func TestParsePublicFunction(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

public function isFoo(name: &String) returns Bool {
    return *name == "foo";
}`)

	fn := prog.Functions[0]
	if !fn.IsPublic {
		t.Error("expected public function")
	}
	param := fn.Params[0]
	if !param.Type.IsRef || param.Type.RefMut {
		t.Errorf("expected immutable reference param type, got %+v", param.Type)
	}
	if param.Type.Inner.Name != "String" {
		t.Errorf("expected &String, got &%s", param.Type.Inner.Name)
	}
}

func TestParseVisitor(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

visitor renameFoo on Identifier(node) {
    replace node = Identifier{text: "bar"};
}`)

	if len(prog.Visitors) != 1 {
		t.Fatalf("expected 1 visitor, got %d", len(prog.Visitors))
	}

	v := prog.Visitors[0]
	if v.Name != "renameFoo" {
		t.Errorf("expected visitor name 'renameFoo', got %q", v.Name)
	}
	if v.Category != "Identifier" {
		t.Errorf("expected category 'Identifier', got %q", v.Category)
	}
	if v.Param != "node" {
		t.Errorf("expected param 'node', got %q", v.Param)
	}

	rep, ok := v.Body.Statements[0].(*ast.ReplaceStmt)
	if !ok {
		t.Fatalf("expected ReplaceStmt, got %T", v.Body.Statements[0])
	}
	if rep.Target != "node" {
		t.Errorf("expected replace target 'node', got %q", rep.Target)
	}
	if _, ok := rep.Value.(*ast.StructLit); !ok {
		t.Errorf("expected StructLit value, got %T", rep.Value)
	}
}

func TestParseStructDecl(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

public struct Tally {
    hits: Int;
    names: List<String>;
}`)

	if len(prog.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(prog.Structs))
	}

	st := prog.Structs[0]
	if st.Name != "Tally" || !st.IsPublic {
		t.Errorf("unexpected struct header: %+v", st)
	}
	if len(st.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(st.Fields))
	}
	names := st.Fields[1]
	if names.Type.Name != "List" || len(names.Type.TypeArgs) != 1 || names.Type.TypeArgs[0].Name != "String" {
		t.Errorf("expected List<String>, got %+v", names.Type)
	}
}

func TestParseEnumDecl(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

enum Verdict {
    Keep;
    Rename(target: String);
}`)

	if len(prog.Enums) != 1 {
		t.Fatalf("expected 1 enum, got %d", len(prog.Enums))
	}

	e := prog.Enums[0]
	if e.Name != "Verdict" {
		t.Errorf("expected enum name 'Verdict', got %q", e.Name)
	}
	if len(e.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(e.Variants))
	}
	if len(e.Variants[0].Fields) != 0 {
		t.Errorf("expected unit variant 'Keep', got %d fields", len(e.Variants[0].Fields))
	}
	rename := e.Variants[1]
	if rename.Name != "Rename" || len(rename.Fields) != 1 || rename.Fields[0].Name != "target" {
		t.Errorf("unexpected payload variant: %+v", rename)
	}
}

func TestParseLetStatements(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function f() returns Int {
    let x = 1;
    let mut y: Int = 2;
    y = y + x;
    return y;
}`)

	body := prog.Functions[0].Body.Statements

	first, ok := body[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected LetStmt, got %T", body[0])
	}
	if first.Mutable || first.Type != nil {
		t.Errorf("expected plain untyped let, got %+v", first)
	}

	second, ok := body[1].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected LetStmt, got %T", body[1])
	}
	if !second.Mutable || second.Type == nil || second.Type.Name != "Int" {
		t.Errorf("expected 'let mut y: Int', got %+v", second)
	}

	if _, ok := body[2].(*ast.AssignStmt); !ok {
		t.Errorf("expected AssignStmt, got %T", body[2])
	}
}

func TestParseMatchStatement(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

visitor inspect on Expr(node) {
    match node {
        Identifier{text: t} => {
            print(own t);
        }
        Some(e) => {
        }
        _ => {
        }
    }
}`)

	m, ok := prog.Visitors[0].Body.Statements[0].(*ast.MatchStmt)
	if !ok {
		t.Fatalf("expected MatchStmt, got %T", prog.Visitors[0].Body.Statements[0])
	}
	if len(m.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(m.Arms))
	}

	tag := m.Arms[0].Pattern
	if tag.Tag != "Identifier" || len(tag.Fields) != 1 {
		t.Errorf("unexpected tag pattern: %+v", tag)
	}
	if tag.Fields[0].Name != "text" || !tag.Fields[0].Pattern.IsBinding || tag.Fields[0].Pattern.Name != "t" {
		t.Errorf("unexpected field sub-pattern: %+v", tag.Fields[0])
	}

	some := m.Arms[1].Pattern
	if some.Tag != "Some" || len(some.Positional) != 1 || !some.Positional[0].IsBinding {
		t.Errorf("unexpected positional pattern: %+v", some)
	}

	if !m.Arms[2].Pattern.IsWildcard {
		t.Errorf("expected wildcard arm, got %+v", m.Arms[2].Pattern)
	}
}

func TestParseOwnBindsTighterThanComparison(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function f(t: &String) returns Bool {
    return own t == "answer";
}`)

	ret := prog.Functions[0].Body.Statements[0].(*ast.ReturnStmt)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", ret.Value)
	}
	if bin.Op != lexer.EQ {
		t.Errorf("expected EQ, got %s", bin.Op)
	}
	if _, ok := bin.Left.(*ast.OwnExpr); !ok {
		t.Errorf("expected own to bind tighter than ==, got %T on the left", bin.Left)
	}
}

func TestParseBorrowAndDeref(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function f(x: Int) returns Int {
    let r = &x;
    return *r;
}`)

	body := prog.Functions[0].Body.Statements
	let := body[0].(*ast.LetStmt)
	borrow, ok := let.Value.(*ast.BorrowExpr)
	if !ok {
		t.Fatalf("expected BorrowExpr, got %T", let.Value)
	}
	if borrow.Mutable {
		t.Error("expected immutable borrow")
	}

	ret := body[1].(*ast.ReturnStmt)
	if _, ok := ret.Value.(*ast.DerefExpr); !ok {
		t.Errorf("expected DerefExpr, got %T", ret.Value)
	}
}

func TestParseForInRange(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function f() returns Int {
    let mut total = 0;
    for i in 0..10 {
        total = total + i;
    }
    return total;
}`)

	loop, ok := prog.Functions[0].Body.Statements[1].(*ast.ForInStmt)
	if !ok {
		t.Fatalf("expected ForInStmt, got %T", prog.Functions[0].Body.Statements[1])
	}
	if loop.Variable != "i" {
		t.Errorf("expected loop variable 'i', got %q", loop.Variable)
	}
	if _, ok := loop.Iterable.(*ast.RangeExpr); !ok {
		t.Errorf("expected RangeExpr iterable, got %T", loop.Iterable)
	}
}

func TestParseFunctionType(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function apply(f: fn(Int) returns Int, x: Int) returns Int {
    return f(x);
}`)

	param := prog.Functions[0].Params[0]
	if !param.Type.IsFunc {
		t.Fatalf("expected function type, got %+v", param.Type)
	}
	if len(param.Type.FnParams) != 1 || param.Type.FnParams[0].Name != "Int" {
		t.Errorf("unexpected fn params: %+v", param.Type.FnParams)
	}
	if param.Type.FnReturn == nil || param.Type.FnReturn.Name != "Int" {
		t.Errorf("unexpected fn return: %+v", param.Type.FnReturn)
	}
}

func TestParseTupleType(t *testing.T) {
	prog := parseOK(t, `module test version "1.0.0";

function pair() returns (Int, String) {
    return (1, "one");
}`)

	ret := prog.Functions[0].ReturnType
	if !ret.IsTuple || len(ret.Elems) != 2 {
		t.Fatalf("expected 2-element tuple return type, got %+v", ret)
	}
	if ret.Elems[0].Name != "Int" || ret.Elems[1].Name != "String" {
		t.Errorf("unexpected tuple element types: %+v", ret.Elems)
	}
}

func TestParseErrorsAreCollected(t *testing.T) {
	p := New(`module test version "1.0.0";

function broken( {
}`)
	p.Parse()

	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected parse errors")
	}
}

func TestParseMissingModuleHeader(t *testing.T) {
	p := New(`function f() returns Int { return 1; }`)
	prog := p.Parse()

	if prog.Module != nil && !p.Diagnostics().HasErrors() {
		t.Error("expected a missing module header to be reported or left nil")
	}
}
