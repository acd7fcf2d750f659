// Package formatter renders a parsed program back to canonical Morph
// source: four-space indents, one blank line between declarations, and
// normalized expression spacing.
package formatter

import (
	"fmt"
	"strings"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/lexer"
)

// Format takes an AST Program and returns canonical Morph source code.
func Format(prog *ast.Program) string {
	f := &formatter{}
	f.formatProgram(prog)
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

func (f *formatter) emit(s string) {
	f.sb.WriteString(s)
}

func (f *formatter) emitf(format string, args ...any) {
	f.sb.WriteString(fmt.Sprintf(format, args...))
}

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.sb.WriteString(f.indentStr())
	f.sb.WriteString(fmt.Sprintf(format, args...))
	f.sb.WriteString("\n")
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// --- program-level ---

func (f *formatter) formatProgram(prog *ast.Program) {
	if prog.Module != nil {
		f.emitLinef("module %s version \"%s\";", prog.Module.Name, prog.Module.Version)
	}

	if len(prog.Imports) > 0 {
		f.blankLine()
		for _, imp := range prog.Imports {
			f.emitLinef("import \"%s\";", imp.Path)
		}
	}

	// Canonical declaration order: structs, enums, functions, visitors.
	for _, st := range prog.Structs {
		f.blankLine()
		f.formatStructDecl(st)
	}
	for _, e := range prog.Enums {
		f.blankLine()
		f.formatEnumDecl(e)
	}
	for _, fn := range prog.Functions {
		f.blankLine()
		f.formatFunctionDecl(fn)
	}
	for _, v := range prog.Visitors {
		f.blankLine()
		f.formatVisitorDecl(v)
	}
}

// --- declarations ---

func (f *formatter) formatStructDecl(st *ast.StructDecl) {
	f.emit(f.indentStr())
	if st.IsPublic {
		f.emit("public ")
	}
	f.emitf("struct %s {\n", st.Name)
	f.incIndent()
	for _, field := range st.Fields {
		f.emitLinef("%s: %s;", field.Name, f.formatTypeRef(field.Type))
	}
	f.decIndent()
	f.emitLine("}")
}

func (f *formatter) formatEnumDecl(e *ast.EnumDecl) {
	f.emit(f.indentStr())
	if e.IsPublic {
		f.emit("public ")
	}
	f.emitf("enum %s {\n", e.Name)
	f.incIndent()
	for _, v := range e.Variants {
		if len(v.Fields) == 0 {
			f.emitLinef("%s;", v.Name)
		} else {
			f.emit(f.indentStr())
			f.emitf("%s(", v.Name)
			for i, field := range v.Fields {
				if i > 0 {
					f.emit(", ")
				}
				f.emitf("%s: %s", field.Name, f.formatTypeRef(field.Type))
			}
			f.emit(");\n")
		}
	}
	f.decIndent()
	f.emitLine("}")
}

func (f *formatter) formatFunctionDecl(fn *ast.FunctionDecl) {
	f.emit(f.indentStr())
	if fn.IsPublic {
		f.emit("public ")
	}
	f.emitf("function %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			f.emit(", ")
		}
		f.emitf("%s: %s", p.Name, f.formatTypeRef(p.Type))
	}
	f.emit(")")
	if fn.ReturnType != nil {
		f.emitf(" returns %s", f.formatTypeRef(fn.ReturnType))
	}
	f.emit(" {\n")
	f.incIndent()
	f.formatBlock(fn.Body)
	f.decIndent()
	f.emitLine("}")
}

func (f *formatter) formatVisitorDecl(v *ast.VisitorDecl) {
	f.emit(f.indentStr())
	if v.IsPublic {
		f.emit("public ")
	}
	f.emitf("visitor %s on %s(%s) {\n", v.Name, v.Category, v.Param)
	f.incIndent()
	f.formatBlock(v.Body)
	f.decIndent()
	f.emitLine("}")
}

// --- statements ---

func (f *formatter) formatBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		f.formatStmt(stmt)
	}
}

func (f *formatter) formatStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		f.emit(f.indentStr())
		f.emit("let ")
		if stmt.Mutable {
			f.emit("mut ")
		}
		if stmt.Type != nil {
			f.emitf("%s: %s = %s;\n", stmt.Name, f.formatTypeRef(stmt.Type), f.formatExpr(stmt.Value))
		} else {
			f.emitf("%s = %s;\n", stmt.Name, f.formatExpr(stmt.Value))
		}

	case *ast.AssignStmt:
		f.emitLinef("%s = %s;", f.formatExpr(stmt.Target), f.formatExpr(stmt.Value))

	case *ast.ReplaceStmt:
		f.emitLinef("replace %s = %s;", stmt.Target, f.formatExpr(stmt.Value))

	case *ast.ReturnStmt:
		if stmt.Value != nil {
			f.emitLinef("return %s;", f.formatExpr(stmt.Value))
		} else {
			f.emitLine("return;")
		}

	case *ast.IfStmt:
		f.formatIfStmt(stmt, false)

	case *ast.WhileStmt:
		f.emitLinef("while %s {", f.formatExpr(stmt.Condition))
		f.incIndent()
		f.formatBlock(stmt.Body)
		f.decIndent()
		f.emitLine("}")

	case *ast.ForInStmt:
		f.emitLinef("for %s in %s {", stmt.Variable, f.formatExpr(stmt.Iterable))
		f.incIndent()
		f.formatBlock(stmt.Body)
		f.decIndent()
		f.emitLine("}")

	case *ast.MatchStmt:
		f.formatMatchStmt(stmt)

	case *ast.BreakStmt:
		f.emitLine("break;")

	case *ast.ContinueStmt:
		f.emitLine("continue;")

	case *ast.ExprStmt:
		f.emitLinef("%s;", f.formatExpr(stmt.Expr))

	case *ast.Block:
		f.formatBlock(stmt)
	}
}

func (f *formatter) formatIfStmt(stmt *ast.IfStmt, isElseIf bool) {
	if isElseIf {
		f.emitf(" else if %s {\n", f.formatExpr(stmt.Condition))
	} else {
		f.emitLinef("if %s {", f.formatExpr(stmt.Condition))
	}
	f.incIndent()
	f.formatBlock(stmt.Then)
	f.decIndent()
	if stmt.Else != nil {
		if elseIf, ok := stmt.Else.(*ast.IfStmt); ok {
			f.emit(f.indentStr() + "}")
			f.formatIfStmt(elseIf, true)
		} else if elseBlock, ok := stmt.Else.(*ast.Block); ok {
			f.emitLine("} else {")
			f.incIndent()
			f.formatBlock(elseBlock)
			f.decIndent()
			f.emitLine("}")
		}
	} else {
		f.emitLine("}")
	}
}

func (f *formatter) formatMatchStmt(stmt *ast.MatchStmt) {
	f.emitLinef("match %s {", f.formatExpr(stmt.Scrutinee))
	f.incIndent()
	for _, arm := range stmt.Arms {
		f.emitLinef("%s => {", f.formatPattern(arm.Pattern))
		f.incIndent()
		f.formatBlock(arm.Body)
		f.decIndent()
		f.emitLine("}")
	}
	f.decIndent()
	f.emitLine("}")
}

func (f *formatter) formatPattern(p *ast.MatchPattern) string {
	if p == nil || p.IsWildcard {
		return "_"
	}
	if p.IsBinding {
		return p.Name
	}
	if len(p.Positional) > 0 {
		parts := make([]string, len(p.Positional))
		for i, sub := range p.Positional {
			parts[i] = f.formatPattern(sub)
		}
		return fmt.Sprintf("%s(%s)", p.Tag, strings.Join(parts, ", "))
	}
	if len(p.Fields) > 0 {
		parts := make([]string, len(p.Fields))
		for i, fp := range p.Fields {
			parts[i] = fmt.Sprintf("%s: %s", fp.Name, f.formatPattern(fp.Pattern))
		}
		return fmt.Sprintf("%s{%s}", p.Tag, strings.Join(parts, ", "))
	}
	return p.Tag
}

// --- expressions ---

func (f *formatter) formatExpr(e ast.Expression) string {
	return f.formatExprPrec(e, 0)
}

// formatExprPrec formats an expression, adding parens only where the
// parent context binds tighter.
func (f *formatter) formatExprPrec(e ast.Expression, parentPrec int) string {
	switch expr := e.(type) {
	case *ast.BinaryExpr:
		prec := precedence(expr.Op)
		left := f.formatExprPrec(expr.Left, prec)
		right := f.formatExprPrec(expr.Right, prec+1) // left-associative
		result := fmt.Sprintf("%s %s %s", left, operatorString(expr.Op), right)
		if prec < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.UnaryExpr:
		operand := f.formatExprPrec(expr.Operand, 10)
		if expr.Op == lexer.NOT {
			return "not " + operand
		}
		return "-" + operand

	case *ast.BorrowExpr:
		if expr.Mutable {
			return "&mut " + f.formatExprPrec(expr.Operand, 10)
		}
		return "&" + f.formatExprPrec(expr.Operand, 10)

	case *ast.DerefExpr:
		return "*" + f.formatExprPrec(expr.Operand, 10)

	case *ast.OwnExpr:
		return "own " + f.formatExprPrec(expr.Operand, 10)

	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = f.formatExpr(arg)
		}
		return fmt.Sprintf("%s(%s)", expr.Function, strings.Join(args, ", "))

	case *ast.FieldAccessExpr:
		return fmt.Sprintf("%s.%s", f.formatExprPrec(expr.Object, 10), expr.Field)

	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", f.formatExprPrec(expr.Object, 10), f.formatExpr(expr.Index))

	case *ast.Identifier:
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
		for i, elem := range expr.Elements {
			elems[i] = f.formatExpr(elem)
		}
		return fmt.Sprintf("[%s]", strings.Join(elems, ", "))

	case *ast.TupleLit:
		elems := make([]string, len(expr.Elements))
		for i, elem := range expr.Elements {
			elems[i] = f.formatExpr(elem)
		}
		return fmt.Sprintf("(%s)", strings.Join(elems, ", "))

	case *ast.StructLit:
		fields := make([]string, len(expr.Fields))
		for i, field := range expr.Fields {
			fields[i] = fmt.Sprintf("%s: %s", field.Name, f.formatExpr(field.Value))
		}
		return fmt.Sprintf("%s{%s}", expr.Name, strings.Join(fields, ", "))

	case *ast.RangeExpr:
		return fmt.Sprintf("%s..%s", f.formatExprPrec(expr.Start, 10), f.formatExprPrec(expr.End, 10))

	default:
		return "<unknown>"
	}
}

// --- type references ---

func (f *formatter) formatTypeRef(t *ast.TypeRef) string {
	if t == nil {
		return "Unit"
	}
	if t.IsRef {
		if t.RefMut {
			return "&mut " + f.formatTypeRef(t.Inner)
		}
		return "&" + f.formatTypeRef(t.Inner)
	}
	if t.IsTuple {
		elems := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			elems[i] = f.formatTypeRef(el)
		}
		return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
	}
	if t.IsFunc {
		params := make([]string, len(t.FnParams))
		for i, p := range t.FnParams {
			params[i] = f.formatTypeRef(p)
		}
		out := fmt.Sprintf("fn(%s)", strings.Join(params, ", "))
		if t.FnReturn != nil {
			out += " returns " + f.formatTypeRef(t.FnReturn)
		}
		return out
	}
	if len(t.TypeArgs) == 0 {
		return t.Name
	}
	args := make([]string, len(t.TypeArgs))
	for i, arg := range t.TypeArgs {
		args[i] = f.formatTypeRef(arg)
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(args, ", "))
}

// --- operator precedence ---

// Precedence levels (higher binds tighter):
//
//	2: or
//	3: and
//	5: == !=
//	6: < > <= >=
//	7: + -
//	8: * / %
func precedence(op lexer.TokenType) int {
	switch op {
	case lexer.OR:
		return 2
	case lexer.AND:
		return 3
	case lexer.EQ, lexer.NEQ:
		return 5
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return 6
	case lexer.PLUS, lexer.MINUS:
		return 7
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return 8
	default:
		return 0
	}
}

func operatorString(op lexer.TokenType) string {
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
		return "and"
	case lexer.OR:
		return "or"
	default:
		return "?"
	}
}
