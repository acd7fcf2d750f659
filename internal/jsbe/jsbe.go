// Package jsbe emits the duck-typed target: a JavaScript visitor module
// over a plain-object tree in the ESTree style. Nodes carry a "type"
// tag, optional children are null, and field names are the duck names
// from the schema. No lowering plan is consulted beyond the duck side
// of the decorations; the duck tree has no boxes, variants, or interned
// symbols to worry about.
package jsbe

import (
	"fmt"
	"strings"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/decorate"
	"github.com/morphlang/morphc/internal/lexer"
	"github.com/morphlang/morphc/internal/schema"
)

// Generate produces the duck-target JavaScript module for a checked
// program.
func Generate(prog *ast.Program, result *checker.CheckResult, plan *decorate.Plan) string {
	g := &generator{
		result: result,
		plan:   plan,
		tables: result.Tables,
	}

	g.generateHeader()
	g.generateDecls(prog)
	g.generateExports([]*ast.Program{prog})
	return g.sb.String()
}

// GenerateAll produces one combined JavaScript module for a multi-file
// project, declarations in dependency order and a single export table.
func GenerateAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult, plan *decorate.Plan) string {
	g := &generator{
		result: result.AsCheckResult(),
		plan:   plan,
		tables: result.Tables,
	}

	g.generateHeader()
	progs := make([]*ast.Program, 0, len(sortedPaths))
	for _, path := range sortedPaths {
		prog := registry[path]
		if prog == nil {
			continue
		}
		progs = append(progs, prog)
		if prog.Module != nil {
			g.emitLinef("// module %s\n", prog.Module.Name)
			g.emitLine("")
		}
		g.generateDecls(prog)
	}
	g.generateExports(progs)
	return g.sb.String()
}

func (g *generator) generateHeader() {
	g.emitLine("// Generated visitor module (duck-typed tree)")
	g.emitLine("\"use strict\";")
	g.emitLine("")
}

func (g *generator) generateDecls(prog *ast.Program) {
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

	// matchDepth numbers the scrutinee temporaries of nested matches.
	matchDepth int
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
	return strings.Repeat("  ", g.indent)
}

// --- Type mapping (JSDoc only) ---

func (g *generator) mapType(t *checker.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case checker.KindInt, checker.KindUint, checker.KindFloat:
		return "number"
	case checker.KindString:
		return "string"
	case checker.KindBool:
		return "boolean"
	case checker.KindUnit:
		return "void"
	case checker.KindList, checker.KindSet:
		return "Array<" + g.mapType(t.Inner()) + ">"
	case checker.KindOption:
		return g.mapType(t.Inner()) + "|null"
	case checker.KindRef:
		return g.mapType(t.Inner())
	case checker.KindNode:
		if cat, ok := g.tables.Category(t.Name); ok {
			return cat.Duck
		}
		return t.Name
	default:
		return t.Name
	}
}

// --- Declarations ---

func (g *generator) generateEnumDecl(enum *ast.EnumDecl) {
	g.emitLine("/**")
	g.emitLinef(" * Enum: %s\n", enum.Name)
	g.emitLine(" */")
	g.emitLinef("const %s = {\n", enum.Name)
	g.incIndent()
	for _, v := range enum.Variants {
		if len(v.Fields) == 0 {
			g.emitLinef("%s: () => ({ _tag: \"%s\" }),\n", v.Name, v.Name)
		} else {
			g.emitLinef("%s: (", v.Name)
			for i, f := range v.Fields {
				if i > 0 {
					g.emit(", ")
				}
				g.emitf("%s", f.Name)
			}
			g.emitf(") => ({ _tag: \"%s\"", v.Name)
			for _, f := range v.Fields {
				g.emitf(", %s", f.Name)
			}
			g.emit(" }),\n")
		}
	}
	g.decIndent()
	g.emitLine("};")
}

func (g *generator) generateFunction(fn *ast.FunctionDecl) {
	info := g.result.Functions[fn.Name]

	g.emitLine("/**")
	if info != nil {
		for _, p := range info.Params {
			g.emitLinef(" * @param {%s} %s\n", g.mapType(p.Type), p.Name)
		}
		g.emitLinef(" * @returns {%s}\n", g.mapType(info.ReturnType))
	}
	g.emitLine(" */")
	g.emitLinef("function %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			g.emit(", ")
		}
		g.emitf("%s", p.Name)
	}
	g.emit(") {\n")
	g.incIndent()
	g.generateStmts(fn.Body.Statements)
	g.decIndent()
	g.emitLine("}")
}

// generateVisitor emits a visitor as a function over one node. A
// replacement is communicated by returning the new node; returning
// undefined keeps the tree as-is.
func (g *generator) generateVisitor(v *ast.VisitorDecl) {
	duckName := v.Category
	if cat, ok := g.tables.Category(v.Category); ok {
		duckName = cat.Duck
	}

	g.emitLine("/**")
	g.emitLinef(" * Visitor: %s (on %s)\n", v.Name, duckName)
	g.emitLinef(" * @param {%s} %s\n", duckName, v.Param)
	g.emitLine(" * @returns {object|undefined} replacement node, if any")
	g.emitLine(" */")
	g.emitLinef("function %s(%s) {\n", v.Name, v.Param)
	g.incIndent()
	g.generateStmts(v.Body.Statements)
	g.decIndent()
	g.emitLine("}")
}

func (g *generator) generateExports(progs []*ast.Program) {
	g.emitLine("module.exports = {")
	g.incIndent()
	g.emitLine("visitors: {")
	g.incIndent()
	for _, prog := range progs {
		for _, v := range prog.Visitors {
			duckName := v.Category
			if cat, ok := g.tables.Category(v.Category); ok {
				duckName = cat.Duck
			}
			g.emitLinef("%s: { type: \"%s\", enter: %s },\n", v.Name, duckName, v.Name)
		}
	}
	g.decIndent()
	g.emitLine("},")
	g.decIndent()
	g.emitLine("};")
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
		kw := "const"
		if stmt.Mutable {
			kw = "let"
		}
		g.emitLinef("%s %s = %s;\n", kw, stmt.Name, g.generateExpr(stmt.Value))

	case *ast.AssignStmt:
		g.emitLinef("%s = %s;\n", g.generateExpr(stmt.Target), g.generateExpr(stmt.Value))

	case *ast.ReplaceStmt:
		g.emitLinef("return %s;\n", g.generateExpr(stmt.Value))

	case *ast.ReturnStmt:
		if stmt.Value != nil {
			g.emitLinef("return %s;\n", g.generateExpr(stmt.Value))
		} else {
			g.emitLine("return;")
		}

	case *ast.IfStmt:
		g.generateIfStmt(stmt)

	case *ast.WhileStmt:
		g.emitLinef("while (%s) {\n", g.generateExpr(stmt.Condition))
		g.incIndent()
		g.generateStmts(stmt.Body.Statements)
		g.decIndent()
		g.emitLine("}")

	case *ast.ForInStmt:
		g.generateForInStmt(stmt)

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
	g.emitLinef("if (%s) {\n", g.generateExpr(stmt.Condition))
	g.incIndent()
	g.generateStmts(stmt.Then.Statements)
	g.decIndent()

	switch e := stmt.Else.(type) {
	case nil:
		g.emitLine("}")
	case *ast.IfStmt:
		g.emitLinef("} else ")
		// Re-enter without indentation: the chained if continues the line.
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

func (g *generator) generateForInStmt(stmt *ast.ForInStmt) {
	g.emit(g.indentStr())
	g.emitf("for (const %s of ", stmt.Variable)
	if rangeExpr, ok := stmt.Iterable.(*ast.RangeExpr); ok {
		g.emitf("Array.from({ length: (%s) - (%s) }, (_, i) => (%s) + i)",
			g.generateExpr(rangeExpr.End),
			g.generateExpr(rangeExpr.Start),
			g.generateExpr(rangeExpr.Start))
	} else {
		g.emitf("%s", g.generateExpr(stmt.Iterable))
	}
	g.emit(") {\n")
	g.incIndent()
	g.generateStmts(stmt.Body.Statements)
	g.decIndent()
	g.emitLine("}")
}

// generateMatchStmt lowers a match to an if/else chain over the duck
// type tag. Optional children are null on the duck tree, so Some and
// None become null checks.
func (g *generator) generateMatchStmt(stmt *ast.MatchStmt) {
	scrut := fmt.Sprintf("__m%d", g.matchDepth)
	g.matchDepth++

	g.emitLine("{")
	g.incIndent()
	g.emitLinef("const %s = %s;\n", scrut, g.generateExpr(stmt.Scrutinee))

	first := true
	for _, arm := range stmt.Arms {
		cond := g.patternCond(arm.Pattern, scrut)
		if cond == "" {
			// Wildcard or catch-all binding: the final else.
			if first {
				g.emitLine("{")
			} else {
				g.emitLine("else {")
			}
			g.incIndent()
			g.emitBindings(arm.Pattern, scrut)
			g.generateStmts(arm.Body.Statements)
			g.decIndent()
			g.emitLine("}")
			break
		}

		if first {
			g.emitLinef("if (%s) {\n", cond)
			first = false
		} else {
			g.emitLinef("else if (%s) {\n", cond)
		}
		g.incIndent()
		g.emitBindings(arm.Pattern, scrut)
		g.generateStmts(arm.Body.Statements)
		g.decIndent()
		g.emitLine("}")
	}

	g.decIndent()
	g.emitLine("}")
	g.matchDepth--
}

// patternCond builds the test for a pattern over the value at path.
// An empty string means the pattern always matches.
func (g *generator) patternCond(pat *ast.MatchPattern, path string) string {
	if pat == nil || pat.IsWildcard || pat.IsBinding {
		return ""
	}

	switch pat.Tag {
	case "Some":
		conds := []string{fmt.Sprintf("%s != null", path)}
		if len(pat.Positional) == 1 {
			if sub := g.patternCond(pat.Positional[0], path); sub != "" {
				conds = append(conds, sub)
			}
		}
		return strings.Join(conds, " && ")
	case "None":
		return fmt.Sprintf("%s == null", path)
	case "Ok", "Err":
		conds := []string{fmt.Sprintf("%s._tag === %q", path, pat.Tag)}
		if len(pat.Positional) == 1 {
			if sub := g.patternCond(pat.Positional[0], path+".value"); sub != "" {
				conds = append(conds, sub)
			}
		}
		return strings.Join(conds, " && ")
	}

	if cat, ok := g.tables.Category(pat.Tag); ok {
		conds := []string{fmt.Sprintf("%s != null && %s.type === %q", path, path, cat.Duck)}
		for _, fp := range pat.Fields {
			field := cat.Field(fp.Name)
			if field == nil {
				continue
			}
			if sub := g.patternCond(fp.Pattern, path+"."+field.Duck); sub != "" {
				conds = append(conds, sub)
			}
		}
		return strings.Join(conds, " && ")
	}

	// User enum variant.
	conds := []string{fmt.Sprintf("%s._tag === %q", path, pat.Tag)}
	if fields := g.variantFields(pat.Tag); fields != nil {
		for i, sub := range pat.Positional {
			if i < len(fields) {
				if c := g.patternCond(sub, path+"."+fields[i].Name); c != "" {
					conds = append(conds, c)
				}
			}
		}
	}
	for _, fp := range pat.Fields {
		// Struct destructure: fields match by name.
		if sub := g.patternCond(fp.Pattern, path+"."+fp.Name); sub != "" {
			conds = append(conds, sub)
		}
	}
	return strings.Join(conds, " && ")
}

// emitBindings declares the names a pattern binds, reading off path.
func (g *generator) emitBindings(pat *ast.MatchPattern, path string) {
	if pat == nil || pat.IsWildcard {
		return
	}
	if pat.IsBinding {
		g.emitLinef("const %s = %s;\n", pat.Name, path)
		return
	}

	switch pat.Tag {
	case "Some":
		if len(pat.Positional) == 1 {
			g.emitBindings(pat.Positional[0], path)
		}
		return
	case "None":
		return
	case "Ok", "Err":
		if len(pat.Positional) == 1 {
			g.emitBindings(pat.Positional[0], path+".value")
		}
		return
	}

	if cat, ok := g.tables.Category(pat.Tag); ok {
		for _, fp := range pat.Fields {
			field := cat.Field(fp.Name)
			if field == nil {
				continue
			}
			g.emitBindings(fp.Pattern, path+"."+field.Duck)
		}
		return
	}

	if fields := g.variantFields(pat.Tag); fields != nil {
		for i, sub := range pat.Positional {
			if i < len(fields) {
				g.emitBindings(sub, path+"."+fields[i].Name)
			}
		}
		return
	}

	for _, fp := range pat.Fields {
		g.emitBindings(fp.Pattern, path+"."+fp.Name)
	}
}

func (g *generator) variantFields(name string) []checker.ParamInfo {
	for _, info := range g.result.Enums {
		for _, v := range info.Variants {
			if v.Name == name {
				return v.Fields
			}
		}
	}
	return nil
}

// --- Expressions ---

func (g *generator) generateExpr(e ast.Expression) string {
	switch expr := e.(type) {
	case *ast.BinaryExpr:
		left := g.generateExpr(expr.Left)
		right := g.generateExpr(expr.Right)
		return fmt.Sprintf("(%s %s %s)", left, g.mapOperator(expr.Op), right)

	case *ast.UnaryExpr:
		operand := g.generateExpr(expr.Operand)
		if expr.Op == lexer.NOT {
			return "!" + operand
		}
		return "-" + operand

	case *ast.BorrowExpr:
		// References vanish on the duck target.
		return g.generateExpr(expr.Operand)

	case *ast.DerefExpr:
		return g.generateExpr(expr.Operand)

	case *ast.OwnExpr:
		return fmt.Sprintf("structuredClone(%s)", g.generateExpr(expr.Operand))

	case *ast.CallExpr:
		return g.generateCallExpr(expr)

	case *ast.FieldAccessExpr:
		if dec, ok := g.plan.FieldAccesses[expr]; ok {
			return fmt.Sprintf("%s.%s", g.generateExpr(expr.Object), dec.DuckName)
		}
		return fmt.Sprintf("%s.%s", g.generateExpr(expr.Object), expr.Field)

	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", g.generateExpr(expr.Object), g.generateExpr(expr.Index))

	case *ast.Identifier:
		if expr.Name == "None" {
			return "null"
		}
		if g.variantFields(expr.Name) != nil || g.isUnitVariant(expr.Name) {
			if enum := g.enumOf(expr.Name); enum != "" {
				return fmt.Sprintf("%s.%s()", enum, expr.Name)
			}
		}
		return expr.Name

	case *ast.IntLit:
		return expr.Value

	case *ast.FloatLit:
		return expr.Value

	case *ast.StringLit:
		return fmt.Sprintf("%q", expr.Value)

	case *ast.BoolLit:
		if expr.Value {
			return "true"
		}
		return "false"

	case *ast.NullLit:
		return "null"

	case *ast.ListLit:
		elems := make([]string, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = g.generateExpr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"

	case *ast.TupleLit:
		elems := make([]string, len(expr.Elements))
		for i, el := range expr.Elements {
			elems[i] = g.generateExpr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"

	case *ast.StructLit:
		return g.generateStructLit(expr)

	case *ast.RangeExpr:
		return fmt.Sprintf("Array.from({ length: (%s) - (%s) }, (_, i) => (%s) + i)",
			g.generateExpr(expr.End), g.generateExpr(expr.Start), g.generateExpr(expr.Start))

	default:
		return "undefined"
	}
}

func (g *generator) generateCallExpr(expr *ast.CallExpr) string {
	switch expr.Function {
	case "print":
		args := g.argList(expr.Args)
		return fmt.Sprintf("console.log(%s)", args)
	case "len":
		if len(expr.Args) == 1 {
			return fmt.Sprintf("(%s.length)", g.generateExpr(expr.Args[0]))
		}
	case "push":
		if len(expr.Args) == 2 {
			return fmt.Sprintf("%s.push(%s)", g.generateExpr(expr.Args[0]), g.generateExpr(expr.Args[1]))
		}
	case "Some":
		// Optionals are bare-or-null on the duck tree.
		if len(expr.Args) == 1 {
			return g.generateExpr(expr.Args[0])
		}
	case "Ok", "Err":
		if len(expr.Args) == 1 {
			return fmt.Sprintf("{ _tag: %q, value: %s }", expr.Function, g.generateExpr(expr.Args[0]))
		}
	}

	if enum := g.enumOf(expr.Function); enum != "" {
		return fmt.Sprintf("%s.%s(%s)", enum, expr.Function, g.argList(expr.Args))
	}

	return fmt.Sprintf("%s(%s)", expr.Function, g.argList(expr.Args))
}

func (g *generator) argList(args []ast.Expression) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = g.generateExpr(arg)
	}
	return strings.Join(parts, ", ")
}

// generateStructLit emits a node construction as a plain object with
// the duck type tag, or a user struct as a bare object.
func (g *generator) generateStructLit(expr *ast.StructLit) string {
	if dec, ok := g.plan.Constructions[expr]; ok {
		parts := []string{fmt.Sprintf("type: %q", dec.Duck)}
		for _, f := range dec.Fields {
			if f.Value == nil {
				if f.Optional {
					parts = append(parts, fmt.Sprintf("%s: null", f.DuckName))
				}
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", f.DuckName, g.generateExpr(f.Value)))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}

	parts := make([]string, len(expr.Fields))
	for i, f := range expr.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, g.generateExpr(f.Value))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
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

func (g *generator) isUnitVariant(name string) bool {
	for _, info := range g.result.Enums {
		for _, v := range info.Variants {
			if v.Name == name && len(v.Fields) == 0 {
				return true
			}
		}
	}
	return false
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
		return "==="
	case lexer.NEQ:
		return "!=="
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
