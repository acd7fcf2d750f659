// Package linter reports style and hygiene warnings for a parsed
// program: naming conventions, empty bodies, unused bindings, needless
// mutability, and unreachable match arms. All findings are
// warning-level; the linter never fails a build.
package linter

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/diagnostic"
)

// Lint runs all lint rules over a program and returns the collected
// warnings.
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	l := &linter{diags: diagnostic.New()}
	l.lintProgram(prog)
	return l.diags
}

type linter struct {
	diags *diagnostic.Diagnostics
}

func (l *linter) warnf(line, col int, format string, args ...any) {
	l.diags.WarningfKind(diagnostic.KindLint, line, col, format, args...)
}

func (l *linter) lintProgram(prog *ast.Program) {
	for _, st := range prog.Structs {
		l.lintStructDecl(st)
	}
	for _, e := range prog.Enums {
		l.lintEnumDecl(e)
	}
	for _, fn := range prog.Functions {
		l.lintFunctionDecl(fn)
	}
	for _, v := range prog.Visitors {
		l.lintVisitorDecl(v)
	}
}

// --- declarations ---

func (l *linter) lintStructDecl(st *ast.StructDecl) {
	if !isUpperCamel(st.Name) {
		l.warnf(st.Line, st.Column, "struct %q should be UpperCamelCase", st.Name)
	}
	if len(st.Fields) == 0 {
		l.warnf(st.Line, st.Column, "struct %q has no fields", st.Name)
	}
}

func (l *linter) lintEnumDecl(e *ast.EnumDecl) {
	if !isUpperCamel(e.Name) {
		l.warnf(e.Line, e.Column, "enum %q should be UpperCamelCase", e.Name)
	}
	if len(e.Variants) == 0 {
		l.warnf(e.Line, e.Column, "enum %q has no variants", e.Name)
	}
	for _, v := range e.Variants {
		if !isUpperCamel(v.Name) {
			l.warnf(v.Line, v.Column, "variant %q should be UpperCamelCase", v.Name)
		}
	}
}

func (l *linter) lintFunctionDecl(fn *ast.FunctionDecl) {
	if !isLowerCamel(fn.Name) {
		l.warnf(fn.Line, fn.Column, "function %q should be lowerCamelCase", fn.Name)
	}
	if emptyBlock(fn.Body) {
		l.warnf(fn.Line, fn.Column, "function %q has an empty body", fn.Name)
	}
	u := newUsageScan()
	u.scanBlock(fn.Body)
	for _, p := range fn.Params {
		if !u.used[p.Name] {
			l.warnf(p.Line, p.Column, "parameter %q is never used", p.Name)
		}
	}
	l.reportBindings(u)
	l.lintMatchArms(fn.Body)
}

func (l *linter) lintVisitorDecl(v *ast.VisitorDecl) {
	if !isLowerCamel(v.Name) {
		l.warnf(v.Line, v.Column, "visitor %q should be lowerCamelCase", v.Name)
	}
	if emptyBlock(v.Body) {
		l.warnf(v.Line, v.Column, "visitor %q has an empty body", v.Name)
		return
	}
	u := newUsageScan()
	u.scanBlock(v.Body)
	if !u.used[v.Param] && !u.replaced[v.Param] {
		l.warnf(v.Line, v.Column, "visitor parameter %q is never used", v.Param)
	}
	l.reportBindings(u)
	l.lintMatchArms(v.Body)
}

// reportBindings flags let bindings that are never read and mut
// bindings that are never reassigned.
func (l *linter) reportBindings(u *usageScan) {
	for _, b := range u.lets {
		if !u.used[b.Name] {
			l.warnf(b.Line, b.Column, "variable %q is never used", b.Name)
			continue
		}
		if b.Mutable && !u.assigned[b.Name] {
			l.warnf(b.Line, b.Column, "variable %q is declared mut but never reassigned", b.Name)
		}
	}
}

// lintMatchArms walks all match statements in a block and warns about
// arms that can never run because an earlier arm matches everything.
func (l *linter) lintMatchArms(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *ast.MatchStmt:
			l.checkArmReachability(s)
			for _, arm := range s.Arms {
				l.lintMatchArms(arm.Body)
			}
		case *ast.IfStmt:
			l.lintMatchArms(s.Then)
			if elseBlock, ok := s.Else.(*ast.Block); ok {
				l.lintMatchArms(elseBlock)
			} else if elseIf, ok := s.Else.(*ast.IfStmt); ok {
				l.lintMatchArms(&ast.Block{Statements: []ast.Statement{elseIf}})
			}
		case *ast.WhileStmt:
			l.lintMatchArms(s.Body)
		case *ast.ForInStmt:
			l.lintMatchArms(s.Body)
		case *ast.Block:
			l.lintMatchArms(s)
		}
	}
}

func (l *linter) checkArmReachability(m *ast.MatchStmt) {
	for i, arm := range m.Arms {
		p := arm.Pattern
		if p == nil || p.IsWildcard || p.IsBinding {
			if i < len(m.Arms)-1 {
				next := m.Arms[i+1]
				l.warnf(next.Line, next.Column, "unreachable match arm: a previous arm matches all values")
			}
			return
		}
	}
}

// --- usage scanning ---

type letBinding struct {
	Name    string
	Mutable bool
	Line    int
	Column  int
}

type usageScan struct {
	used     map[string]bool
	assigned map[string]bool
	replaced map[string]bool
	lets     []letBinding
}

func newUsageScan() *usageScan {
	return &usageScan{
		used:     make(map[string]bool),
		assigned: make(map[string]bool),
		replaced: make(map[string]bool),
	}
}

func (u *usageScan) scanBlock(b *ast.Block) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		u.scanStmt(stmt)
	}
}

func (u *usageScan) scanStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		u.scanExpr(stmt.Value)
		u.lets = append(u.lets, letBinding{
			Name:    stmt.Name,
			Mutable: stmt.Mutable,
			Line:    stmt.Line,
			Column:  stmt.Column,
		})
	case *ast.AssignStmt:
		if root := rootIdentifier(stmt.Target); root != "" {
			u.assigned[root] = true
		}
		// Field and index assignments read the target object too.
		if _, plain := stmt.Target.(*ast.Identifier); !plain {
			u.scanExpr(stmt.Target)
		}
		u.scanExpr(stmt.Value)
	case *ast.ReplaceStmt:
		u.replaced[stmt.Target] = true
		u.scanExpr(stmt.Value)
	case *ast.ReturnStmt:
		u.scanExpr(stmt.Value)
	case *ast.IfStmt:
		u.scanExpr(stmt.Condition)
		u.scanBlock(stmt.Then)
		if stmt.Else != nil {
			u.scanStmt(stmt.Else)
		}
	case *ast.WhileStmt:
		u.scanExpr(stmt.Condition)
		u.scanBlock(stmt.Body)
	case *ast.ForInStmt:
		u.scanExpr(stmt.Iterable)
		u.scanBlock(stmt.Body)
	case *ast.MatchStmt:
		u.scanExpr(stmt.Scrutinee)
		for _, arm := range stmt.Arms {
			u.scanBlock(arm.Body)
		}
	case *ast.ExprStmt:
		u.scanExpr(stmt.Expr)
	case *ast.Block:
		u.scanBlock(stmt)
	}
}

func (u *usageScan) scanExpr(e ast.Expression) {
	switch expr := e.(type) {
	case nil:
	case *ast.Identifier:
		u.used[expr.Name] = true
	case *ast.BinaryExpr:
		u.scanExpr(expr.Left)
		u.scanExpr(expr.Right)
	case *ast.UnaryExpr:
		u.scanExpr(expr.Operand)
	case *ast.BorrowExpr:
		u.scanExpr(expr.Operand)
	case *ast.DerefExpr:
		u.scanExpr(expr.Operand)
	case *ast.OwnExpr:
		u.scanExpr(expr.Operand)
	case *ast.CallExpr:
		for _, arg := range expr.Args {
			u.scanExpr(arg)
		}
	case *ast.FieldAccessExpr:
		u.scanExpr(expr.Object)
	case *ast.IndexExpr:
		u.scanExpr(expr.Object)
		u.scanExpr(expr.Index)
	case *ast.ListLit:
		for _, el := range expr.Elements {
			u.scanExpr(el)
		}
	case *ast.TupleLit:
		for _, el := range expr.Elements {
			u.scanExpr(el)
		}
	case *ast.StructLit:
		for _, field := range expr.Fields {
			u.scanExpr(field.Value)
		}
	case *ast.RangeExpr:
		u.scanExpr(expr.Start)
		u.scanExpr(expr.End)
	}
}

// rootIdentifier returns the variable at the base of an assignment
// target, or "" when the target has no identifiable root.
func rootIdentifier(e ast.Expression) string {
	switch expr := e.(type) {
	case *ast.Identifier:
		return expr.Name
	case *ast.FieldAccessExpr:
		return rootIdentifier(expr.Object)
	case *ast.IndexExpr:
		return rootIdentifier(expr.Object)
	case *ast.DerefExpr:
		return rootIdentifier(expr.Operand)
	}
	return ""
}

// --- helpers ---

func emptyBlock(b *ast.Block) bool {
	return b == nil || len(b.Statements) == 0
}

func isUpperCamel(name string) bool {
	if name == "" {
		return false
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	return !containsUnderscore(name)
}

func isLowerCamel(name string) bool {
	if name == "" {
		return false
	}
	if name[0] < 'a' || name[0] > 'z' {
		return false
	}
	return !containsUnderscore(name)
}

func containsUnderscore(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == '_' {
			return true
		}
	}
	return false
}
