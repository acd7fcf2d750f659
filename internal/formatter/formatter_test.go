package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/parser"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()
	require.False(t, p.Diagnostics().HasErrors(), "parse errors:\n%s", p.Diagnostics().Format("input"))
	return prog
}

func TestFormatModuleHeader(t *testing.T) {
	src := `module   demo   version "1.0.0" ;`
	got := Format(parse(t, src))
	assert.Equal(t, "module demo version \"1.0.0\";\n", got)
}

func TestFormatImports(t *testing.T) {
	src := `module demo version "1.0.0";
import "helpers.morph"; import "names.morph";`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

import "helpers.morph";
import "names.morph";
`
	assert.Equal(t, want, got)
}

func TestFormatStructAndEnum(t *testing.T) {
	src := `module demo version "1.0.0";
enum Verdict { Keep; Rename(target: String); }
struct Counter { hits : Int ; label:String; }`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

struct Counter {
    hits: Int;
    label: String;
}

enum Verdict {
    Keep;
    Rename(target: String);
}
`
	assert.Equal(t, want, got)
}

func TestFormatFunctionNormalizesSpacing(t *testing.T) {
	src := `module demo version "1.0.0";
function   add( a:Int,b:Int )   returns Int { return a+b*2; }`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

function add(a: Int, b: Int) returns Int {
    return a + b * 2;
}
`
	assert.Equal(t, want, got)
}

func TestFormatVisitorWithReplace(t *testing.T) {
	src := `module demo version "1.0.0";
visitor renameFoo on Identifier(node) {
if node.text=="foo" { replace node = Identifier{text:"bar"}; } }`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

visitor renameFoo on Identifier(node) {
    if node.text == "foo" {
        replace node = Identifier{text: "bar"};
    }
}
`
	assert.Equal(t, want, got)
}

func TestFormatMatchStatement(t *testing.T) {
	src := `module demo version "1.0.0";
visitor inspect on Expr(node) {
match node { Identifier{text: t} => { print(own t); }
StringLiteral{value: v} => { print(own v); }
_ => { } } }`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

visitor inspect on Expr(node) {
    match node {
        Identifier{text: t} => {
            print(own t);
        }
        StringLiteral{value: v} => {
            print(own v);
        }
        _ => {
        }
    }
}
`
	assert.Equal(t, want, got)
}

func TestFormatLetMutAndLoops(t *testing.T) {
	src := `module demo version "1.0.0";
function count(xs: &List<Int>) returns Int {
let mut total=0;
for x in 0..10 { total = total+x; }
while total>100 { total = total-1; }
return total; }`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

function count(xs: &List<Int>) returns Int {
    let mut total = 0;
    for x in 0..10 {
        total = total + x;
    }
    while total > 100 {
        total = total - 1;
    }
    return total;
}
`
	assert.Equal(t, want, got)
}

func TestFormatElseIfChain(t *testing.T) {
	src := `module demo version "1.0.0";
function sign(n: Int) returns Int {
if n>0 { return 1; } else if n<0 { return 0-1; } else { return 0; } }`
	got := Format(parse(t, src))
	want := `module demo version "1.0.0";

function sign(n: Int) returns Int {
    if n > 0 {
        return 1;
    } else if n < 0 {
        return 0 - 1;
    } else {
        return 0;
    }
}
`
	assert.Equal(t, want, got)
}

func TestFormatParensOnlyWhereNeeded(t *testing.T) {
	src := `module demo version "1.0.0";
function f(a: Int, b: Int, c: Int) returns Int {
return (a+b)*c + a*(b+c);
}`
	got := Format(parse(t, src))
	assert.Contains(t, got, "return (a + b) * c + a * (b + c);")
}

func TestFormatReferenceTypes(t *testing.T) {
	src := `module demo version "1.0.0";
public function touch(node: &mut Identifier, name: &String) returns Bool {
return *name=="x";
}`
	got := Format(parse(t, src))
	assert.Contains(t, got, "public function touch(node: &mut Identifier, name: &String) returns Bool {")
	assert.Contains(t, got, "return *name == \"x\";")
}

func TestFormatOptionAndOwn(t *testing.T) {
	src := `module demo version "1.0.0";
visitor clearInit on VarDecl(node) {
match node.init { Some(e) => { replace node = VarDecl{name: own node.name, init: None}; } None => { } } }`
	got := Format(parse(t, src))
	assert.Contains(t, got, "match node.init {")
	assert.Contains(t, got, "        Some(e) => {")
	assert.Contains(t, got, "replace node = VarDecl{name: own node.name, init: None};")
}

func TestFormatIsIdempotent(t *testing.T) {
	src := `module demo version "1.0.0";
import "helpers.morph";
struct Tally { n: Int; }
enum Verdict { Keep; Rename(target: String); }
function bump(t: &mut Tally) { t.n = t.n + 1; }
visitor renameFoo on Identifier(node) {
let name = own node.text;
if name == "foo" and not (node.text == "bar") {
replace node = Identifier{text: "bar"};
} }`
	once := Format(parse(t, src))
	twice := Format(parse(t, once))
	assert.Equal(t, once, twice)
}
