// Package rustbe emits the strict-variant target: Rust visitor
// functions over an SWC-style tree with closed sum enums, boxed
// indirection, and interned identifier symbols. The lowering plan from
// the decorate pass drives every pattern, field access, and node
// construction; nothing about the strict tree shape is rediscovered
// here.
package rustbe

import (
	"fmt"
	"strings"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
	"github.com/morphlang/morphc/internal/lexer"
	"github.com/morphlang/morphc/internal/schema"
)

// Generate produces the strict-target Rust module for a checked
// program.
func Generate(prog *ast.Program, result *checker.CheckResult, plan *decorate.Plan) string {
	g := &generator{
		result: result,
		plan:   plan,
		tables: result.Tables,
	}

	g.generateHeader()
	g.generateDecls(prog)
	return g.sb.String()
}

// GenerateAll produces one combined Rust module for a multi-file
// project, declarations in dependency order.
func GenerateAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult, plan *decorate.Plan) string {
	g := &generator{
		result: result.AsCheckResult(),
		plan:   plan,
		tables: result.Tables,
	}

	g.generateHeader()
	for _, path := range sortedPaths {
		prog := registry[path]
		if prog == nil {
			continue
		}
		if prog.Module != nil {
			g.emitLinef("// module %s\n", prog.Module.Name)
			g.emitLine("")
		}
		g.generateDecls(prog)
	}
	return g.sb.String()
}

func (g *generator) generateHeader() {
	g.emitLine("// Generated visitor module (strict-variant tree)")
	g.emitLine("#![allow(unused_parens, unused_variables, dead_code)]")
	g.emitLine("")
	g.emitLine("use crate::ast::*;")
	g.emitLine("")
}

func (g *generator) generateDecls(prog *ast.Program) {
	for _, st := range prog.Structs {
		g.generateStructDecl(st)
		g.emitLine("")
	}
	for _, enum := range prog.Enums {
		g.generateEnumDecl(enum)
		g.emitLine("")
	}
	for _, fn := range prog.Functions {
		g.generateFunction(fn)
		g.emitLine("")
	}
	for _, v := range prog.Visitors {
		g.generateVisitor(v)
		g.emitLine("")
	}
}

type generator struct {
	sb     strings.Builder
	indent int
	result *checker.CheckResult
	plan   *decorate.Plan
	tables *schema.Tables

	// visitorCategory is the category of the visitor being generated,
	// used to wrap replacement constructions into the sum type.
	visitorCategory string
	// returnCategory is the node category of the enclosing function's
	// return type, when it has one.
	returnCategory string

	tempCount int
}

func (g *generator) emit(s string) {
	g.sb.WriteString(s)
}

func (g *generator) emitf(format string, args ...any) {
	g.sb.WriteString(fmt.Sprintf(format, args...))
}

func (g *generator) emitLinef(format string, args ...any) {
	g.sb.WriteString(g.indentStr())
	g.sb.WriteString(fmt.Sprintf(format, args...))
}

func (g *generator) emitLine(s string) {
	if s == "" {
		g.sb.WriteString("\n")
	} else {
		g.sb.WriteString(g.indentStr())
		g.sb.WriteString(s)
		g.sb.WriteString("\n")
	}
}

func (g *generator) incIndent() { g.indent++ }
func (g *generator) decIndent() { g.indent-- }

func (g *generator) indentStr() string {
	return strings.Repeat("    ", g.indent)
}

func (g *generator) newTemp() string {
	name := fmt.Sprintf("__p%d", g.tempCount)
	g.tempCount++
	return name
}

// --- Type mapping ---

func (g *generator) mapType(t *checker.Type) string {
	if t == nil {
		return "()"
	}
	switch t.Kind {
	case checker.KindInt:
		return "i64"
	case checker.KindUint:
		return "u64"
	case checker.KindFloat:
		return "f64"
	case checker.KindString:
		return "String"
	case checker.KindBool:
		return "bool"
	case checker.KindUnit:
		return "()"
	case checker.KindList, checker.KindSet:
		return "Vec<" + g.mapType(t.Inner()) + ">"
	case checker.KindOption:
		return "Option<" + g.mapType(t.Inner()) + ">"
	case checker.KindResult:
		if len(t.Args) == 2 {
			return "Result<" + g.mapType(t.Args[0]) + ", " + g.mapType(t.Args[1]) + ">"
		}
		return "Result<(), ()>"
	case checker.KindRef:
		if t.Mutable {
			return "&mut " + g.mapType(t.Inner())
		}
		return "&" + g.mapType(t.Inner())
	case checker.KindTuple:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = g.mapType(a)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case checker.KindNode:
		if cat, ok := g.tables.Category(t.Name); ok {
			return cat.Strict
		}
		return t.Name
	default:
		return t.Name
	}
}

// --- Declarations ---

func (g *generator) generateStructDecl(st *ast.StructDecl) {
	g.emitLine("#[derive(Debug, Clone, PartialEq)]")
	g.emitLinef("pub struct %s {\n", st.Name)
	g.incIndent()
	for _, f := range st.Fields {
		t := checker.ResolveType(f.Type, g.result.Structs, g.result.Enums, g.tables)
		g.emitLinef("pub %s: %s,\n", f.Name, g.mapType(t))
	}
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) generateEnumDecl(enum *ast.EnumDecl) {
	g.emitLine("#[derive(Debug, Clone, PartialEq)]")
	g.emitLinef("pub enum %s {\n", enum.Name)
	g.incIndent()
	for _, v := range enum.Variants {
		if len(v.Fields) == 0 {
			g.emitLinef("%s,\n", v.Name)
		} else {
			g.emitLinef("%s {", v.Name)
			for i, f := range v.Fields {
				if i > 0 {
					g.emit(",")
				}
				t := checker.ResolveType(f.Type, g.result.Structs, g.result.Enums, g.tables)
				g.emitf(" %s: %s", f.Name, g.mapType(t))
			}
			g.emit(" },\n")
		}
	}
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) generateFunction(fn *ast.FunctionDecl) {
	info := g.result.Functions[fn.Name]

	g.returnCategory = ""
	if info != nil && info.ReturnType != nil && info.ReturnType.Kind == checker.KindNode {
		g.returnCategory = info.ReturnType.Name
	}

	g.emitLinef("pub fn %s(", toSnake(fn.Name))
	for i, p := range fn.Params {
		if i > 0 {
			g.emit(", ")
		}
		var pt *checker.Type
		if info != nil && i < len(info.Params) {
			pt = info.Params[i].Type
		}
		g.emitf("%s: %s", p.Name, g.mapType(pt))
	}
	g.emit(")")
	if info != nil && info.ReturnType != nil && info.ReturnType.Kind != checker.KindUnit {
		g.emitf(" -> %s", g.mapType(info.ReturnType))
	}
	g.emit(" {\n")
	g.incIndent()
	g.generateStmts(fn.Body.Statements)
	g.decIndent()
	g.emitLine("}")
	g.returnCategory = ""
}

// generateVisitor emits a visitor as a function taking the visited
// node by mutable reference. A replacement overwrites the node in
// place.
func (g *generator) generateVisitor(v *ast.VisitorDecl) {
	strictName := v.Category
	if cat, ok := g.tables.Category(v.Category); ok {
		strictName = cat.Strict
	}

	g.visitorCategory = v.Category
	g.emitLinef("pub fn %s(%s: &mut %s) {\n", toSnake(v.Name), v.Param, strictName)
	g.incIndent()
	g.generateStmts(v.Body.Statements)
	g.decIndent()
	g.emitLine("}")
	g.visitorCategory = ""
}

// --- Statements ---

func (g *generator) generateStmts(stmts []ast.Statement) {
	for _, stmt := range stmts {
		g.generateStmt(stmt)
	}
}

func (g *generator) generateStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		kw := "let"
		if stmt.Mutable {
			kw = "let mut"
		}
		g.emitLinef("%s %s = %s;\n", kw, stmt.Name, g.generateExpr(stmt.Value))

	case *ast.AssignStmt:
		g.emitLinef("%s = %s;\n", g.generateExpr(stmt.Target), g.generateExpr(stmt.Value))

	case *ast.ReplaceStmt:
		value := g.generateExprCtx(stmt.Value, g.visitorCategory)
		g.emitLinef("*%s = %s;\n", stmt.Target, value)

	case *ast.ReturnStmt:
		if stmt.Value != nil {
			g.emitLinef("return %s;\n", g.generateExprCtx(stmt.Value, g.returnCategory))
		} else {
			g.emitLine("return;")
		}

	case *ast.IfStmt:
		g.generateIfStmt(stmt)

	case *ast.WhileStmt:
		g.emitLinef("while %s {\n", g.generateExpr(stmt.Condition))
		g.incIndent()
		g.generateStmts(stmt.Body.Statements)
		g.decIndent()
		g.emitLine("}")

	case *ast.ForInStmt:
		if rangeExpr, ok := stmt.Iterable.(*ast.RangeExpr); ok {
			g.emitLinef("for %s in %s..%s {\n", stmt.Variable,
				g.generateExpr(rangeExpr.Start), g.generateExpr(rangeExpr.End))
		} else {
			g.emitLinef("for %s in &%s {\n", stmt.Variable, g.generateExpr(stmt.Iterable))
		}
		g.incIndent()
		g.generateStmts(stmt.Body.Statements)
		g.decIndent()
		g.emitLine("}")

	case *ast.MatchStmt:
		g.generateMatchStmt(stmt)

	case *ast.BreakStmt:
		g.emitLine("break;")

	case *ast.ContinueStmt:
		g.emitLine("continue;")

	case *ast.ExprStmt:
		g.emitLinef("%s;\n", g.generateExpr(stmt.Expr))

	case *ast.Block:
		g.emitLine("{")
		g.incIndent()
		g.generateStmts(stmt.Statements)
		g.decIndent()
		g.emitLine("}")
	}
}

func (g *generator) generateIfStmt(stmt *ast.IfStmt) {
	g.emitLinef("if %s {\n", g.generateExpr(stmt.Condition))
	g.incIndent()
	g.generateStmts(stmt.Then.Statements)
	g.decIndent()

	switch e := stmt.Else.(type) {
	case nil:
		g.emitLine("}")
	case *ast.IfStmt:
		g.emitLinef("} else ")
		saved := g.indent
		g.indent = 0
		g.generateIfStmt(e)
		g.indent = saved
	case *ast.Block:
		g.emitLine("} else {")
		g.incIndent()
		g.generateStmts(e.Statements)
		g.decIndent()
		g.emitLine("}")
	default:
		g.emitLine("}")
	}
}

// --- Match lowering ---

// generateMatchStmt lowers a match to an if/else chain of let-chains.
// Each arm's pattern becomes one or more `let <pat> = <place>`
// conditions joined with &&; optional layers, boxes, and sum variants
// come from the arm's decoration chain.
func (g *generator) generateMatchStmt(stmt *ast.MatchStmt) {
	place := g.scrutineePlace(stmt)

	first := true
	for _, arm := range stmt.Arms {
		conds, binds := g.lowerArmPattern(arm.Pattern, place, stmt.Scrutinee)
		if len(conds) == 0 {
			// Wildcard, plain binding, or struct destructure: matches
			// unconditionally and closes the chain.
			if first {
				g.emitLine("{")
			} else {
				g.emitLine("else {")
			}
			g.incIndent()
			for _, b := range binds {
				g.emitLine(b)
			}
			g.generateStmts(arm.Body.Statements)
			g.decIndent()
			g.emitLine("}")
			break
		}

		if first {
			g.emitLinef("if %s {\n", strings.Join(conds, " && "))
			first = false
		} else {
			g.emitLinef("else if %s {\n", strings.Join(conds, " && "))
		}
		g.incIndent()
		for _, b := range binds {
			g.emitLine(b)
		}
		g.generateStmts(arm.Body.Statements)
		g.decIndent()
		g.emitLine("}")
	}
}

// scrutineePlace returns a Rust place expression for the scrutinee,
// introducing no temporary: scrutinees are restricted to place
// expressions by the surface language (simple paths into the tree or
// plain values), so re-evaluating the path per arm is safe.
func (g *generator) scrutineePlace(stmt *ast.MatchStmt) string {
	return g.generateExpr(stmt.Scrutinee)
}

// lowerArmPattern turns one arm pattern into let-chain conditions plus
// binding statements for the arm body. Empty conds means the pattern
// matches unconditionally.
func (g *generator) lowerArmPattern(pat *ast.MatchPattern, place string, scrut ast.Expression) ([]string, []string) {
	if pat == nil || pat.IsWildcard {
		return nil, nil
	}
	if pat.IsBinding {
		return nil, []string{fmt.Sprintf("let %s = &%s;", pat.Name, place)}
	}

	// A variant-accessor scrutinee field needs its wrapper peeled
	// before the pattern chain applies.
	if fa, ok := scrut.(*ast.FieldAccessExpr); ok {
		if dec, ok := g.plan.FieldAccesses[fa]; ok && dec.Accessor == schema.AccessVariant {
			tmp := g.newTemp()
			cond := fmt.Sprintf("let %s(%s) = &%s", dec.Variant, tmp, place)
			conds, binds := g.lowerPattern(pat, "(*"+tmp+")")
			return append([]string{cond}, conds...), binds
		}
	}

	return g.lowerPattern(pat, place)
}

func (g *generator) lowerPattern(pat *ast.MatchPattern, place string) ([]string, []string) {
	if pat == nil || pat.IsWildcard {
		return nil, nil
	}
	if pat.IsBinding {
		return nil, []string{fmt.Sprintf("let %s = &%s;", pat.Name, place)}
	}

	switch pat.Tag {
	case "Some":
		return g.lowerSomePattern(pat, place)
	case "None":
		return []string{fmt.Sprintf("%s.is_none()", place)}, nil
	case "Ok", "Err":
		return g.lowerResultPattern(pat, place)
	}

	if g.tables.IsCategory(pat.Tag) {
		return g.lowerNodePattern(pat, place)
	}

	if g.userVariant(pat.Tag) != nil {
		return g.lowerEnumPattern(pat, place)
	}

	// User struct destructure: always matches, binds fields.
	var conds, binds []string
	for _, fp := range pat.Fields {
		c, b := g.lowerPattern(fp.Pattern, place+"."+fp.Name)
		conds = append(conds, c...)
		binds = append(binds, b...)
	}
	return conds, binds
}

func (g *generator) lowerSomePattern(pat *ast.MatchPattern, place string) ([]string, []string) {
	if len(pat.Positional) != 1 {
		return []string{fmt.Sprintf("%s.is_some()", place)}, nil
	}
	payload := pat.Positional[0]

	// The payload's decoration chain tells us whether a box sits under
	// the option.
	scrut := place + ".as_ref()"
	chain := g.plan.Patterns[payload]
	if chain != nil && chain.Strategy == decorate.StrategyIndirection {
		scrut = place + ".as_deref()"
		chain = chain.Nested
	}

	if payload.IsWildcard {
		return []string{fmt.Sprintf("%s.is_some()", place)}, nil
	}
	if payload.IsBinding {
		return []string{fmt.Sprintf("let Some(%s) = %s", payload.Name, scrut)}, nil
	}

	tmp := g.newTemp()
	pattern := g.variantPatternText(chain, tmp)
	cond := fmt.Sprintf("let Some(%s) = %s", pattern, scrut)
	conds, binds := g.lowerNodeFields(payload, tmp)
	return append([]string{cond}, conds...), binds
}

func (g *generator) lowerResultPattern(pat *ast.MatchPattern, place string) ([]string, []string) {
	if len(pat.Positional) != 1 {
		return []string{fmt.Sprintf("matches!(%s, %s(_))", place, pat.Tag)}, nil
	}
	payload := pat.Positional[0]
	if payload.IsWildcard {
		return []string{fmt.Sprintf("matches!(%s, %s(_))", place, pat.Tag)}, nil
	}
	if payload.IsBinding {
		return []string{fmt.Sprintf("let %s(%s) = &%s", pat.Tag, payload.Name, place)}, nil
	}
	tmp := g.newTemp()
	cond := fmt.Sprintf("let %s(%s) = &%s", pat.Tag, tmp, place)
	conds, binds := g.lowerPattern(payload, "(*"+tmp+")")
	return append([]string{cond}, conds...), binds
}

// lowerNodePattern handles a unified category tag: the decoration
// chain supplies optional-unwrap, box, and variant-projection layers.
func (g *generator) lowerNodePattern(pat *ast.MatchPattern, place string) ([]string, []string) {
	chain := g.plan.Patterns[pat]

	optional := false
	boxed := false
	for chain != nil && chain.Strategy != decorate.StrategyDirect {
		switch chain.Strategy {
		case decorate.StrategyOptionalUnwrap:
			optional = true
		case decorate.StrategyIndirection:
			boxed = true
		}
		chain = chain.Nested
	}

	var scrut string
	switch {
	case optional && boxed:
		scrut = place + ".as_deref()"
	case optional:
		scrut = place + ".as_ref()"
	case boxed:
		scrut = "&*" + place
	default:
		scrut = "&" + place
	}

	tmp := g.newTemp()
	pattern := g.variantPatternText(chain, tmp)
	if optional {
		pattern = "Some(" + pattern + ")"
	}

	if pattern == tmp && !optional {
		// Concrete node matched in its own category: no projection, the
		// place is already the right type.
		return g.lowerNodeFields(pat, place)
	}
	conds := []string{fmt.Sprintf("let %s = %s", pattern, scrut)}
	fieldConds, binds := g.lowerNodeFields(pat, tmp)
	return append(conds, fieldConds...), binds
}

// lowerNodeFields lowers the named-field subpatterns of a node tag,
// reading off the bound node temp (or place).
func (g *generator) lowerNodeFields(pat *ast.MatchPattern, base string) ([]string, []string) {
	cat, ok := g.tables.Category(pat.Tag)
	if !ok {
		return nil, nil
	}

	var conds, binds []string
	for _, fp := range pat.Fields {
		field := cat.Field(fp.Name)
		if field == nil {
			continue
		}
		fieldPlace := base + "." + field.Strict.Name

		kind, _ := field.AccessorKind()
		if kind == schema.AccessVariant && fp.Pattern != nil && !fp.Pattern.IsWildcard && !fp.Pattern.IsBinding {
			tmp := g.newTemp()
			conds = append(conds, fmt.Sprintf("let %s(%s) = &%s", field.Strict.Variant, tmp, fieldPlace))
			c, b := g.lowerPattern(fp.Pattern, "(*"+tmp+")")
			conds = append(conds, c...)
			binds = append(binds, b...)
			continue
		}

		c, b := g.lowerPattern(fp.Pattern, fieldPlace)
		conds = append(conds, c...)
		binds = append(binds, b...)
	}
	return conds, binds
}

func (g *generator) lowerEnumPattern(pat *ast.MatchPattern, place string) ([]string, []string) {
	variant := g.userVariant(pat.Tag)
	enumName := g.enumOf(pat.Tag)

	if len(variant.Fields) == 0 {
		return []string{fmt.Sprintf("matches!(%s, %s::%s)", place, enumName, pat.Tag)}, nil
	}

	parts := make([]string, 0, len(variant.Fields))
	var extraConds, binds []string
	for i, f := range variant.Fields {
		var sub *ast.MatchPattern
		if i < len(pat.Positional) {
			sub = pat.Positional[i]
		}
		switch {
		case sub == nil || sub.IsWildcard:
			parts = append(parts, f.Name+": _")
		case sub.IsBinding:
			parts = append(parts, f.Name+": "+sub.Name)
		default:
			tmp := g.newTemp()
			parts = append(parts, f.Name+": "+tmp)
			c, b := g.lowerPattern(sub, "(*"+tmp+")")
			extraConds = append(extraConds, c...)
			binds = append(binds, b...)
		}
	}

	cond := fmt.Sprintf("let %s::%s { %s } = &%s", enumName, pat.Tag, strings.Join(parts, ", "), place)
	return append([]string{cond}, extraConds...), binds
}

// variantPatternText composes the projection pattern for the direct
// layers of a chain, e.g. Expr::Lit(Lit::Str(tmp)).
func (g *generator) variantPatternText(chain *decorate.PatternDecoration, tmp string) string {
	var variants []string
	for cur := chain; cur != nil; cur = cur.Nested {
		if cur.Strategy == decorate.StrategyDirect && cur.Variant != "" {
			variants = append(variants, cur.Variant)
		}
	}
	text := tmp
	for i := len(variants) - 1; i >= 0; i-- {
		text = variants[i] + "(" + text + ")"
	}
	return text
}

// --- Expressions ---

func (g *generator) generateExpr(e ast.Expression) string {
	return g.generateExprCtx(e, "")
}

// generateExprCtx generates an expression in a sum-category context:
// when the expression constructs a concrete node and the context is a
// sum category, the result is wrapped in the projection variant.
func (g *generator) generateExprCtx(e ast.Expression, contextCat string) string {
	if lit, ok := e.(*ast.StructLit); ok {
		return g.generateStructLit(lit, contextCat)
	}

	switch expr := e.(type) {
	case *ast.BinaryExpr:
		left := g.generateOperand(expr.Left)
		right := g.generateOperand(expr.Right)
		return fmt.Sprintf("(%s %s %s)", left, g.mapOperator(expr.Op), right)

	case *ast.UnaryExpr:
		operand := g.generateExpr(expr.Operand)
		if expr.Op == lexer.NOT {
			return "!" + operand
		}
		return "-" + operand

	case *ast.BorrowExpr:
		if expr.Mutable {
			return "&mut " + g.generateExpr(expr.Operand)
		}
		return "&" + g.generateExpr(expr.Operand)

	case *ast.DerefExpr:
		return "*" + g.generateExpr(expr.Operand)

	case *ast.OwnExpr:
		return g.generateOwn(expr.Operand)

	case *ast.CallExpr:
		return g.generateCallExpr(expr)

	case *ast.FieldAccessExpr:
		return g.fieldPlace(expr)

	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s as usize]", g.generateExpr(expr.Object), g.generateExpr(expr.Index))

	case *ast.Identifier:
		if expr.Name == "None" {
			return "None"
		}
		if g.userVariant(expr.Name) != nil {
			return fmt.Sprintf("%s::%s", g.enumOf(expr.Name), expr.Name)
		}
		return expr.Name

	case *ast.IntLit:
		return expr.Value

	case *ast.FloatLit:
		return expr.Value

	case *ast.StringLit:
		return fmt.Sprintf("%q.to_string()", expr.Value)

	case *ast.BoolLit:
		if expr.Value {
			return "true"
		}
		return "false"

	case *ast.NullLit:
		return "None"

	case *ast.ListLit:
		elems := make([]string, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = g.generateExpr(el)
		}
		return "vec![" + strings.Join(elems, ", ") + "]"

	case *ast.TupleLit:
		elems := make([]string, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = g.generateExpr(el)
		}
		return "(" + strings.Join(elems, ", ") + ")"

	case *ast.RangeExpr:
		return fmt.Sprintf("(%s..%s).collect::<Vec<_>>()",
			g.generateExpr(expr.Start), g.generateExpr(expr.End))

	default:
		return "unreachable!()"
	}
}

// generateOperand emits a comparison or arithmetic operand; string
// literals stay bare so they compare against String and Atom fields
// without allocation.
func (g *generator) generateOperand(e ast.Expression) string {
	if lit, ok := e.(*ast.StringLit); ok {
		return fmt.Sprintf("%q", lit.Value)
	}
	return g.generateExpr(e)
}

// generateOwn emits the owning extraction: a clone out of the tree.
// Boxed fields clone the node behind the box, not the box.
func (g *generator) generateOwn(e ast.Expression) string {
	if fa, ok := e.(*ast.FieldAccessExpr); ok {
		if dec, ok := g.plan.FieldAccesses[fa]; ok && dec.Boxed && dec.Accessor == schema.AccessIndirect {
			return fmt.Sprintf("(*%s).clone()", g.fieldPlace(fa))
		}
	}
	return g.generateExpr(e) + ".clone()"
}

func (g *generator) generateCallExpr(expr *ast.CallExpr) string {
	switch expr.Function {
	case "print":
		if len(expr.Args) == 1 {
			if lit, ok := expr.Args[0].(*ast.StringLit); ok {
				return fmt.Sprintf("println!(%q)", lit.Value)
			}
			return fmt.Sprintf("println!(\"{:?}\", %s)", g.generateExpr(expr.Args[0]))
		}
	case "len":
		if len(expr.Args) == 1 {
			return fmt.Sprintf("(%s.len() as i64)", g.generateExpr(expr.Args[0]))
		}
	case "push":
		if len(expr.Args) == 2 {
			return fmt.Sprintf("%s.push(%s)", g.generateExpr(expr.Args[0]), g.generateExpr(expr.Args[1]))
		}
	case "Some", "Ok", "Err":
		if len(expr.Args) == 1 {
			return fmt.Sprintf("%s(%s)", expr.Function, g.generateExpr(expr.Args[0]))
		}
	}

	if variant := g.userVariant(expr.Function); variant != nil {
		parts := make([]string, 0, len(variant.Fields))
		for i, f := range variant.Fields {
			if i < len(expr.Args) {
				parts = append(parts, fmt.Sprintf("%s: %s", f.Name, g.generateExpr(expr.Args[i])))
			}
		}
		return fmt.Sprintf("%s::%s { %s }", g.enumOf(expr.Function), expr.Function, strings.Join(parts, ", "))
	}

	args := make([]string, 0, len(expr.Args))
	info := g.result.Functions[expr.Function]
	for i, arg := range expr.Args {
		ctx := ""
		if info != nil && i < len(info.Params) {
			if pt := info.Params[i].Type; pt != nil && pt.Kind == checker.KindNode {
				ctx = pt.Name
			}
		}
		args = append(args, g.generateExprCtx(arg, ctx))
	}
	return fmt.Sprintf("%s(%s)", toSnake(expr.Function), strings.Join(args, ", "))
}

// fieldPlace emits a field access with the strict field name. Variant
// and boxed accessors are left as the raw place; pattern positions and
// own expressions peel them where it matters.
func (g *generator) fieldPlace(expr *ast.FieldAccessExpr) string {
	if dec, ok := g.plan.FieldAccesses[expr]; ok {
		return fmt.Sprintf("%s.%s", g.generateExpr(expr.Object), dec.StrictName)
	}
	return fmt.Sprintf("%s.%s", g.generateExpr(expr.Object), expr.Field)
}

// generateStructLit emits a node or user-struct construction. Node
// constructions come from the lowering plan: fields take their strict
// names, boxed slots get Box::new, optional slots get Some/None, and
// sum-typed slots wrap the value in its projection variant.
func (g *generator) generateStructLit(expr *ast.StructLit, contextCat string) string {
	dec, ok := g.plan.Constructions[expr]
	if !ok {
		parts := make([]string, len(expr.Fields))
		for i, f := range expr.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, g.generateExpr(f.Value))
		}
		return fmt.Sprintf("%s { %s }", expr.Name, strings.Join(parts, ", "))
	}

	parts := make([]string, 0, len(dec.Fields))
	for _, f := range dec.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.StrictName, g.constructionValue(dec.Category, f)))
	}
	body := fmt.Sprintf("%s { %s }", dec.Strict, strings.Join(parts, ", "))

	if contextCat != "" && contextCat != dec.Category {
		if rule, ok := g.tables.PatternVariant(dec.Category, contextCat); ok {
			return g.wrapVariant(rule, body)
		}
	}
	return body
}

func (g *generator) constructionValue(category string, f decorate.ConstructionField) string {
	if f.Value == nil {
		if f.Optional {
			return "None"
		}
		return "Default::default()"
	}

	fieldCat := g.fieldCategory(category, f.Name)

	var value string
	if f.Interned {
		if lit, ok := f.Value.(*ast.StringLit); ok {
			value = fmt.Sprintf("%q.into()", lit.Value)
		} else {
			value = g.generateExpr(f.Value) + ".into()"
		}
	} else {
		value = g.generateExprCtx(f.Value, fieldCat)
	}

	if f.Boxed {
		value = "Box::new(" + value + ")"
	}
	if f.Variant != "" {
		value = f.Variant + "(" + value + ")"
	}
	if f.Optional {
		if _, isNull := f.Value.(*ast.NullLit); isNull {
			return "None"
		}
		// Explicit Some(..) already produced an Option.
		if call, isCall := f.Value.(*ast.CallExpr); isCall && call.Function == "Some" {
			return value
		}
		value = "Some(" + value + ")"
	}
	return value
}

// fieldCategory resolves the sum category a construction field expects,
// or empty when the field is not node-typed.
func (g *generator) fieldCategory(category, fieldName string) string {
	field, ok := g.tables.Field(category, fieldName)
	if !ok {
		return ""
	}
	t := checker.ResolveSchemaType(field.Type, g.tables)
	for t != nil && (t.Kind == checker.KindOption || t.Kind == checker.KindList) {
		t = t.Inner()
	}
	if t != nil && t.Kind == checker.KindNode {
		return t.Name
	}
	return ""
}

// wrapVariant wraps a constructed node in its projection path for a
// sum context, e.g. Expr::Lit(Lit::Str(..)).
func (g *generator) wrapVariant(rule *schema.PatternRule, inner string) string {
	if rule.Then != "" {
		inner = rule.Then + "(" + inner + ")"
	}
	return rule.Variant + "(" + inner + ")"
}

// --- Lookups ---

func (g *generator) userVariant(name string) *checker.EnumVariantInfo {
	for _, info := range g.result.Enums {
		for _, v := range info.Variants {
			if v.Name == name {
				return v
			}
		}
	}
	return nil
}

func (g *generator) enumOf(variant string) string {
	for name, info := range g.result.Enums {
		for _, v := range info.Variants {
			if v.Name == variant {
				return name
			}
		}
	}
	return ""
}

func (g *generator) mapOperator(op lexer.TokenType) string {
	switch op {
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.PERCENT:
		return "%"
	case lexer.EQ:
		return "=="
	case lexer.NEQ:
		return "!="
	case lexer.LT:
		return "<"
	case lexer.GT:
		return ">"
	case lexer.LEQ:
		return "<="
	case lexer.GEQ:
		return ">="
	case lexer.AND:
		return "&&"
	case lexer.OR:
		return "||"
	default:
		return "?"
	}
}

// toSnake converts a camelCase surface name to the snake_case the
// strict target conventionally uses.
func toSnake(name string) string {
	var out strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out.WriteByte('_')
			}
			out.WriteRune(r - 'A' + 'a')
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}
