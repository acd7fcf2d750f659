// Package ownership enforces the borrow discipline on visitor and
// function bodies after type checking. Visited nodes are reached
// through references; pulling a non-copyable value out of the tree into
// an owned location must be spelled with an explicit own expression,
// node fields are never mutated in place, and whole-node replacement is
// only available on the visited node parameter itself.
package ownership

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/diagnostic"
)

const ownHint = "wrap the expression in 'own' to clone the value out of the tree"

// Checker walks typed bodies and reports ownership violations.
type Checker struct {
	types map[ast.Expression]*checker.Type
	funcs map[string]*checker.FuncInfo
	diag  *diagnostic.Diagnostics

	// visitedParam is the visited node parameter of the enclosing
	// visitor, or empty inside functions.
	visitedParam string
	// declared tracks local names per lexical scope so shadowing of the
	// visited parameter is detected.
	declared []map[string]bool
}

// Check runs the ownership pass over a checked program.
func Check(prog *ast.Program, result *checker.CheckResult) *diagnostic.Diagnostics {
	c := &Checker{
		types: result.ExprTypes,
		funcs: result.Functions,
		diag:  diagnostic.New(),
	}
	c.run(prog)
	return c.diag
}

// CheckAll runs the ownership pass over every file of a checked
// multi-file program, tagging diagnostics with their file.
func CheckAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult) *diagnostic.Diagnostics {
	diag := diagnostic.New()
	for _, filePath := range sortedPaths {
		prog := registry[filePath]
		if prog == nil {
			continue
		}
		c := &Checker{
			types: result.ExprTypes,
			funcs: result.Functions,
			diag:  diagnostic.New(),
		}
		c.run(prog)
		for _, d := range c.diag.All() {
			d.File = filePath
			diag.Add(d)
		}
	}
	return diag
}

func (c *Checker) run(prog *ast.Program) {
	for _, fn := range prog.Functions {
		c.visitedParam = ""
		if fn.Body != nil {
			c.checkBlock(fn.Body)
		}
	}
	for _, v := range prog.Visitors {
		c.visitedParam = v.Param
		if v.Body != nil {
			c.checkBlock(v.Body)
		}
	}
}

func (c *Checker) pushScope() {
	c.declared = append(c.declared, make(map[string]bool))
}

func (c *Checker) popScope() {
	c.declared = c.declared[:len(c.declared)-1]
}

func (c *Checker) declare(name string) {
	if len(c.declared) > 0 {
		c.declared[len(c.declared)-1][name] = true
	}
}

func (c *Checker) isDeclared(name string) bool {
	for i := len(c.declared) - 1; i >= 0; i-- {
		if c.declared[i][name] {
			return true
		}
	}
	return false
}

func (c *Checker) typeOf(expr ast.Expression) *checker.Type {
	if t, ok := c.types[expr]; ok {
		return t
	}
	return checker.TypeUnknown
}

func (c *Checker) checkBlock(block *ast.Block) {
	c.pushScope()
	for _, stmt := range block.Statements {
		c.checkStatement(stmt)
	}
	c.popScope()
}

func (c *Checker) checkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.checkExpr(s.Value, true)
		c.declare(s.Name)
	case *ast.AssignStmt:
		c.checkAssignTarget(s.Target)
		c.checkExpr(s.Value, true)
	case *ast.ReplaceStmt:
		c.checkReplace(s)
	case *ast.ReturnStmt:
		if s.Value != nil {
			c.checkExpr(s.Value, true)
		}
	case *ast.IfStmt:
		c.checkExpr(s.Condition, false)
		if s.Then != nil {
			c.checkBlock(s.Then)
		}
		if s.Else != nil {
			c.checkStatement(s.Else)
		}
	case *ast.WhileStmt:
		c.checkExpr(s.Condition, false)
		c.checkBlock(s.Body)
	case *ast.ForInStmt:
		c.checkExpr(s.Iterable, false)
		c.pushScope()
		c.declare(s.Variable)
		for _, inner := range s.Body.Statements {
			c.checkStatement(inner)
		}
		c.popScope()
	case *ast.MatchStmt:
		// Matching borrows the scrutinee; nothing moves.
		c.checkExpr(s.Scrutinee, false)
		for _, arm := range s.Arms {
			c.pushScope()
			c.declarePattern(arm.Pattern)
			for _, inner := range arm.Body.Statements {
				c.checkStatement(inner)
			}
			c.popScope()
		}
	case *ast.ExprStmt:
		c.checkExpr(s.Expr, false)
	case *ast.Block:
		c.checkBlock(s)
	}
}

func (c *Checker) declarePattern(pat *ast.MatchPattern) {
	if pat == nil {
		return
	}
	if pat.IsBinding {
		c.declare(pat.Name)
		return
	}
	for _, sub := range pat.Positional {
		c.declarePattern(sub)
	}
	for _, fp := range pat.Fields {
		c.declarePattern(fp.Pattern)
	}
}

// checkAssignTarget rejects writes to fields of syntax nodes. The tree
// is only edited by whole-node replacement.
func (c *Checker) checkAssignTarget(target ast.Expression) {
	if fa, ok := target.(*ast.FieldAccessExpr); ok {
		base := c.typeOf(fa.Object).Deref()
		if base.Kind == checker.KindNode {
			line, col := fa.Pos()
			c.diag.ErrorWithHint(diagnostic.KindOwnership, line, col,
				"cannot assign to field '"+fa.Field+"' of node '"+base.Name+"'",
				"node fields are immutable; replace the whole node instead")
			return
		}
	}
	// The target itself is a place, not a read.
	if idx, ok := target.(*ast.IndexExpr); ok {
		c.checkExpr(idx.Index, false)
	}
}

// checkReplace enforces that whole-node replacement names the visited
// node parameter, unshadowed.
func (c *Checker) checkReplace(stmt *ast.ReplaceStmt) {
	line, col := stmt.Pos()
	switch {
	case c.visitedParam == "":
		c.diag.ErrorfKind(diagnostic.KindOwnership, line, col,
			"replace is only allowed inside a visitor")
	case stmt.Target != c.visitedParam:
		c.diag.ErrorWithHint(diagnostic.KindOwnership, line, col,
			"cannot replace '"+stmt.Target+"': only the visited node parameter can be replaced",
			"the visited node here is '"+c.visitedParam+"'")
	case c.isDeclared(stmt.Target):
		c.diag.ErrorfKind(diagnostic.KindOwnership, line, col,
			"cannot replace '%s': a local binding shadows the visited node parameter", stmt.Target)
	}
	c.checkExpr(stmt.Value, true)
}

// checkExpr walks an expression. owned reports whether the value flows
// into an owned location (a binding, an argument, a constructed value)
// rather than being read in place.
func (c *Checker) checkExpr(expr ast.Expression, owned bool) {
	switch e := expr.(type) {
	case *ast.OwnExpr:
		if !c.refRooted(e.Operand) {
			line, col := e.Pos()
			c.diag.WarningfKind(diagnostic.KindOwnership, line, col,
				"own has no effect: the operand is already owned")
		}
		// own licenses the extraction underneath.
		c.checkExpr(e.Operand, false)
	case *ast.BorrowExpr:
		c.checkExpr(e.Operand, false)
	case *ast.DerefExpr:
		c.checkExpr(e.Operand, false)
	case *ast.UnaryExpr:
		c.checkExpr(e.Operand, false)
	case *ast.BinaryExpr:
		c.checkExpr(e.Left, false)
		c.checkExpr(e.Right, false)
	case *ast.FieldAccessExpr:
		c.checkExtraction(e, owned)
		c.checkExpr(e.Object, false)
	case *ast.IndexExpr:
		c.checkExtraction(e, owned)
		c.checkExpr(e.Object, false)
		c.checkExpr(e.Index, false)
	case *ast.CallExpr:
		c.checkCall(e)
	case *ast.ListLit:
		for _, el := range e.Elements {
			c.checkExpr(el, true)
		}
	case *ast.TupleLit:
		for _, el := range e.Elements {
			c.checkExpr(el, true)
		}
	case *ast.StructLit:
		for _, f := range e.Fields {
			c.checkExpr(f.Value, true)
		}
	case *ast.RangeExpr:
		c.checkExpr(e.Start, false)
		c.checkExpr(e.End, false)
	}
}

// checkCall decides per argument whether the callee takes ownership.
// Reference parameters borrow; everything else is an owned position.
func (c *Checker) checkCall(e *ast.CallExpr) {
	switch e.Function {
	case "print", "len":
		for _, arg := range e.Args {
			c.checkExpr(arg, false)
		}
		return
	case "push":
		// The list is mutated in place; the element is moved in.
		for i, arg := range e.Args {
			c.checkExpr(arg, i == 1)
		}
		return
	}

	fn := c.funcs[e.Function]
	for i, arg := range e.Args {
		owned := true
		if fn != nil && i < len(fn.Params) && fn.Params[i].Type.Kind == checker.KindRef {
			owned = false
		}
		c.checkExpr(arg, owned)
	}
}

// checkExtraction reports a field or element read that moves a
// non-copyable value out of a referenced tree without an own wrapper.
func (c *Checker) checkExtraction(expr ast.Expression, owned bool) {
	if !owned {
		return
	}
	if !c.refRooted(expr) {
		return
	}
	t := c.typeOf(expr)
	if copyable(t) {
		return
	}
	line, col := expr.Pos()
	c.diag.ErrorWithHint(diagnostic.KindOwnership, line, col,
		"cannot move "+t.String()+" out of a borrowed node",
		ownHint)
}

// refRooted reports whether a place expression reads through a
// reference somewhere along its base chain.
func (c *Checker) refRooted(expr ast.Expression) bool {
	for {
		if c.typeOf(expr).Kind == checker.KindRef {
			return true
		}
		switch e := expr.(type) {
		case *ast.FieldAccessExpr:
			expr = e.Object
		case *ast.IndexExpr:
			expr = e.Object
		case *ast.DerefExpr:
			expr = e.Operand
		default:
			return false
		}
	}
}

// copyable reports whether values of t duplicate freely, making
// extraction through a reference harmless.
func copyable(t *checker.Type) bool {
	switch t.Kind {
	case checker.KindInt, checker.KindUint, checker.KindFloat, checker.KindBool,
		checker.KindUnit, checker.KindNull, checker.KindRef, checker.KindUnknown:
		return true
	default:
		return false
	}
}
