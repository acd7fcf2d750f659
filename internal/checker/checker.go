package checker

import (
	"path/filepath"
	"strings"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/lexer"
	"github.com/morphlang/morphc/internal/schema"
)

// ModuleSymbols holds the public symbols exported by a module
type ModuleSymbols struct {
	Functions map[string]*FuncInfo
	Structs   map[string]*StructInfo
	Enums     map[string]*EnumInfo
}

// Checker performs name resolution and type inference on the AST
type Checker struct {
	prog         *ast.Program
	tables       *schema.Tables
	diag         *diagnostic.Diagnostics
	structs      map[string]*StructInfo
	enums        map[string]*EnumInfo
	enumVariants map[string]*EnumVariantLookup
	functions    map[string]*FuncInfo
	scope        *Scope
	exprTypes    map[ast.Expression]*Type

	// Context tracking
	loopDepth   int
	currentFunc *FuncInfo

	// Cross-file (multi-module) context
	moduleImports map[string]*ModuleSymbols // module name -> public symbols
	moduleFile    string                    // file path for error reporting
}

// EnumVariantLookup maps a variant name to its parent enum and variant info
type EnumVariantLookup struct {
	EnumInfo    *EnumInfo
	VariantInfo *EnumVariantInfo
}

// FuncInfo holds information about a function
type FuncInfo struct {
	Name       string
	Params     []ParamInfo
	ReturnType *Type
}

// CheckResult holds the results of type checking for use by later
// pipeline stages. Every expression in the program has an entry in
// ExprTypes; failed inference records Unknown rather than omitting the
// entry.
type CheckResult struct {
	Diagnostics *diagnostic.Diagnostics
	ExprTypes   map[ast.Expression]*Type
	Structs     map[string]*StructInfo
	Enums       map[string]*EnumInfo
	Functions   map[string]*FuncInfo
	Tables      *schema.Tables
}

func newChecker(prog *ast.Program, tables *schema.Tables) *Checker {
	return &Checker{
		prog:         prog,
		tables:       tables,
		diag:         diagnostic.New(),
		structs:      make(map[string]*StructInfo),
		enums:        make(map[string]*EnumInfo),
		enumVariants: make(map[string]*EnumVariantLookup),
		functions:    make(map[string]*FuncInfo),
		scope:        NewScope(nil),
		exprTypes:    make(map[ast.Expression]*Type),
	}
}

// CheckWithResult performs semantic analysis and returns results for
// downstream stages. The pass always runs to completion: mismatches are
// recorded as diagnostics and resolve to Unknown.
func CheckWithResult(prog *ast.Program, tables *schema.Tables) *CheckResult {
	c := newChecker(prog, tables)

	c.registerEnums()
	c.registerStructs()
	c.registerFunctions()
	c.checkFunctions()
	c.checkVisitors()

	return &CheckResult{
		Diagnostics: c.diag,
		ExprTypes:   c.exprTypes,
		Structs:     c.structs,
		Enums:       c.enums,
		Functions:   c.functions,
		Tables:      tables,
	}
}

// Check performs semantic analysis on an AST program
func Check(prog *ast.Program, tables *schema.Tables) *diagnostic.Diagnostics {
	return CheckWithResult(prog, tables).Diagnostics
}

// CheckAllResult holds results from multi-file type checking
type CheckAllResult struct {
	Diagnostics *diagnostic.Diagnostics
	ExprTypes   map[ast.Expression]*Type
	Structs     map[string]*StructInfo
	Enums       map[string]*EnumInfo
	Functions   map[string]*FuncInfo
	Tables      *schema.Tables
}

// AsCheckResult views the merged multi-file results through the
// single-file result shape the backends consume. The maps are shared,
// not copied.
func (r *CheckAllResult) AsCheckResult() *CheckResult {
	return &CheckResult{
		Diagnostics: r.Diagnostics,
		ExprTypes:   r.ExprTypes,
		Structs:     r.Structs,
		Enums:       r.Enums,
		Functions:   r.Functions,
		Tables:      r.Tables,
	}
}

// moduleNameFromPath derives a module name from a file path.
// e.g., "/project/helpers.morph" -> "helpers"
func moduleNameFromPath(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, ".morph")
}

// CheckAll performs two-pass cross-file type checking.
// Pass 1: Register public symbols from all files.
// Pass 2: Type-check each file with imported symbols injected.
func CheckAll(registry map[string]*ast.Program, sortedPaths []string, tables *schema.Tables) *CheckAllResult {
	diag := diagnostic.New()
	allExprTypes := make(map[ast.Expression]*Type)
	allStructs := make(map[string]*StructInfo)
	allEnums := make(map[string]*EnumInfo)
	allFunctions := make(map[string]*FuncInfo)

	// Pass 1: Register public symbols from all files
	publicSymbols := make(map[string]*ModuleSymbols)

	for _, filePath := range sortedPaths {
		prog := registry[filePath]
		if prog == nil {
			continue
		}

		modName := moduleNameFromPath(filePath)
		modSyms := &ModuleSymbols{
			Functions: make(map[string]*FuncInfo),
			Structs:   make(map[string]*StructInfo),
			Enums:     make(map[string]*EnumInfo),
		}

		// A temporary checker registers declarations for type resolution;
		// its diagnostics are discarded (pass 2 re-reports them).
		tmp := newChecker(prog, tables)
		tmp.registerEnums()
		tmp.registerStructs()
		tmp.registerFunctions()

		for _, fn := range prog.Functions {
			if fn.IsPublic {
				if fi, ok := tmp.functions[fn.Name]; ok {
					modSyms.Functions[fn.Name] = fi
				}
			}
		}
		for _, st := range prog.Structs {
			if st.IsPublic {
				if si, ok := tmp.structs[st.Name]; ok {
					modSyms.Structs[st.Name] = si
				}
			}
		}
		for _, enum := range prog.Enums {
			if enum.IsPublic {
				if ei, ok := tmp.enums[enum.Name]; ok {
					modSyms.Enums[enum.Name] = ei
				}
			}
		}

		publicSymbols[modName] = modSyms
	}

	// Pass 2: Type-check each file with cross-file context
	for _, filePath := range sortedPaths {
		prog := registry[filePath]
		if prog == nil {
			continue
		}

		moduleImports := make(map[string]*ModuleSymbols)
		for _, imp := range prog.Imports {
			importedModName := strings.TrimSuffix(filepath.Base(imp.Path), ".morph")
			if syms, ok := publicSymbols[importedModName]; ok {
				moduleImports[importedModName] = syms
			}
		}

		c := newChecker(prog, tables)
		c.moduleImports = moduleImports
		c.moduleFile = filePath

		// Inject imported public types before local registration so
		// annotations referencing them resolve.
		for _, modSyms := range moduleImports {
			for name, si := range modSyms.Structs {
				if _, exists := c.structs[name]; !exists {
					c.structs[name] = si
				}
			}
			for name, ei := range modSyms.Enums {
				if _, exists := c.enums[name]; !exists {
					c.enums[name] = ei
					for _, v := range ei.Variants {
						if _, exists := c.enumVariants[v.Name]; !exists {
							c.enumVariants[v.Name] = &EnumVariantLookup{EnumInfo: ei, VariantInfo: v}
						}
					}
				}
			}
			for name, fi := range modSyms.Functions {
				if _, exists := c.functions[name]; !exists {
					c.functions[name] = fi
				}
			}
		}

		c.registerEnums()
		c.registerStructs()
		c.registerFunctions()
		c.checkFunctions()
		c.checkVisitors()

		// Collect diagnostics with file context
		for _, d := range c.diag.All() {
			d.File = filePath
			diag.Add(d)
		}

		for expr, t := range c.exprTypes {
			allExprTypes[expr] = t
		}
		for name, info := range c.structs {
			allStructs[name] = info
		}
		for name, info := range c.enums {
			allEnums[name] = info
		}
		for name, info := range c.functions {
			allFunctions[name] = info
		}
	}

	return &CheckAllResult{
		Diagnostics: diag,
		ExprTypes:   allExprTypes,
		Structs:     allStructs,
		Enums:       allEnums,
		Functions:   allFunctions,
		Tables:      tables,
	}
}

// assignable is the assignability relation with sum-category widening
// backed by the pattern tables: a concrete node fits a sum slot when
// some pattern rule witnesses its membership.
func (c *Checker) assignable(src, dst *Type) bool {
	return AssignableWith(src, dst, c.widens)
}

func (c *Checker) widens(member, sum string) bool {
	if c.tables == nil {
		return false
	}
	_, ok := c.tables.PatternVariant(member, sum)
	return ok
}

// registerStructs registers all structs declared in the program.
// Names are pre-registered first so struct fields may reference
// sibling structs regardless of declaration order.
func (c *Checker) registerStructs() {
	declared := make([]*StructInfo, 0, len(c.prog.Structs))

	for _, st := range c.prog.Structs {
		if _, exists := c.structs[st.Name]; exists {
			line, col := st.Pos()
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col, "struct '%s' already defined", st.Name)
			declared = append(declared, nil)
			continue
		}
		if c.tables != nil && c.tables.IsCategory(st.Name) {
			line, col := st.Pos()
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
				"struct '%s' conflicts with a schema node category", st.Name)
			declared = append(declared, nil)
			continue
		}
		info := &StructInfo{
			Name:       st.Name,
			Fields:     make(map[string]*Type),
			FieldOrder: make([]string, 0),
		}
		c.structs[st.Name] = info
		declared = append(declared, info)
	}

	for i, st := range c.prog.Structs {
		info := declared[i]
		if info == nil {
			continue
		}
		for _, field := range st.Fields {
			if _, exists := info.Fields[field.Name]; exists {
				line, col := field.Pos()
				c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
					"duplicate field '%s' in struct '%s'", field.Name, st.Name)
				continue
			}
			fieldType := ResolveType(field.Type, c.structs, c.enums, c.tables)
			if fieldType.IsUnknown() {
				line, col := field.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col, "unknown type in field '%s'", field.Name)
			}
			info.Fields[field.Name] = fieldType
			info.FieldOrder = append(info.FieldOrder, field.Name)
		}
	}
}

// registerEnums registers all enums declared in the program
func (c *Checker) registerEnums() {
	for _, enum := range c.prog.Enums {
		if _, exists := c.enums[enum.Name]; exists {
			line, col := enum.Pos()
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col, "enum '%s' already defined", enum.Name)
			continue
		}

		info := &EnumInfo{
			Name:     enum.Name,
			Variants: make([]*EnumVariantInfo, 0, len(enum.Variants)),
		}
		c.enums[enum.Name] = info

		variantNames := make(map[string]bool)

		for _, variant := range enum.Variants {
			if variantNames[variant.Name] {
				line, col := variant.Pos()
				c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
					"duplicate variant name '%s' in enum '%s'", variant.Name, enum.Name)
				continue
			}
			variantNames[variant.Name] = true

			fields := make([]ParamInfo, 0, len(variant.Fields))
			for _, field := range variant.Fields {
				fieldType := ResolveType(field.Type, c.structs, c.enums, c.tables)
				if fieldType.IsUnknown() {
					line, col := field.Pos()
					c.diag.ErrorfKind(diagnostic.KindType, line, col, "unknown type in variant field '%s'", field.Name)
				}
				fields = append(fields, ParamInfo{Name: field.Name, Type: fieldType})
			}

			variantInfo := &EnumVariantInfo{
				Name:   variant.Name,
				Fields: fields,
			}
			info.Variants = append(info.Variants, variantInfo)

			c.enumVariants[variant.Name] = &EnumVariantLookup{
				EnumInfo:    info,
				VariantInfo: variantInfo,
			}
		}
	}
}

// registerFunctions registers all function signatures
func (c *Checker) registerFunctions() {
	for _, fn := range c.prog.Functions {
		if _, exists := c.functions[fn.Name]; exists {
			line, col := fn.Pos()
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col, "function '%s' already defined", fn.Name)
			continue
		}

		params := make([]ParamInfo, 0, len(fn.Params))
		for _, p := range fn.Params {
			pType := ResolveType(p.Type, c.structs, c.enums, c.tables)
			if pType.IsUnknown() {
				line, col := p.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col, "unknown type for parameter '%s'", p.Name)
			}
			params = append(params, ParamInfo{Name: p.Name, Type: pType})
		}

		returnType := TypeUnit
		if fn.ReturnType != nil {
			returnType = ResolveType(fn.ReturnType, c.structs, c.enums, c.tables)
			if returnType.IsUnknown() {
				line, col := fn.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col, "unknown return type for function '%s'", fn.Name)
			}
		}

		c.functions[fn.Name] = &FuncInfo{
			Name:       fn.Name,
			Params:     params,
			ReturnType: returnType,
		}
	}
}

// checkFunctions checks all function bodies
func (c *Checker) checkFunctions() {
	for _, fn := range c.prog.Functions {
		c.checkFunction(fn)
	}
}

// checkFunction checks a single function
func (c *Checker) checkFunction(fn *ast.FunctionDecl) {
	funcScope := NewScope(c.scope)
	c.currentFunc = c.functions[fn.Name]

	for _, p := range fn.Params {
		pType := ResolveType(p.Type, c.structs, c.enums, c.tables)
		line, col := p.Pos()
		if err := funcScope.Define(p.Name, &Symbol{
			Name:    p.Name,
			Type:    pType,
			Mutable: false,
			Kind:    SymParam,
			Line:    line,
			Column:  col,
		}); err != nil {
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col, "duplicate parameter '%s'", p.Name)
		}
	}

	if fn.Body != nil {
		c.checkBlock(fn.Body, funcScope)
	}
	c.reportUnused(funcScope)

	c.currentFunc = nil
}

// checkVisitors checks all visitor bodies
func (c *Checker) checkVisitors() {
	seen := make(map[string]bool)
	for _, v := range c.prog.Visitors {
		if seen[v.Name] {
			line, col := v.Pos()
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col, "visitor '%s' already defined", v.Name)
			continue
		}
		seen[v.Name] = true
		c.checkVisitor(v)
	}
}

// checkVisitor checks a single visitor. The visited node parameter is
// implicitly a mutable reference to the declared category.
func (c *Checker) checkVisitor(v *ast.VisitorDecl) {
	paramType := TypeUnknown
	if c.tables != nil && c.tables.IsCategory(v.Category) {
		paramType = NewRef(true, NewNode(v.Category))
	} else {
		line, col := v.Pos()
		c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
			"unknown node category '%s' in visitor '%s'", v.Category, v.Name)
	}

	visitorScope := NewScope(c.scope)
	line, col := v.Pos()
	visitorScope.Define(v.Param, &Symbol{
		Name:          v.Param,
		Type:          paramType,
		Mutable:       true,
		Kind:          SymParam,
		Line:          line,
		Column:        col,
		IsVisitedNode: true,
	})

	c.currentFunc = &FuncInfo{Name: v.Name, ReturnType: TypeUnit}
	if v.Body != nil {
		c.checkBlock(v.Body, visitorScope)
	}
	c.reportUnused(visitorScope)
	c.currentFunc = nil
}

// reportUnused warns on locally declared bindings that were never read
func (c *Checker) reportUnused(scope *Scope) {
	for _, sym := range scope.Locals() {
		if sym.Used || sym.Kind != SymVariable {
			continue
		}
		c.diag.WarningfKind(diagnostic.KindLint, sym.Line, sym.Column, "unused binding '%s'", sym.Name)
	}
}

// checkBlock checks a block of statements
func (c *Checker) checkBlock(block *ast.Block, scope *Scope) {
	for _, stmt := range block.Statements {
		c.checkStatement(stmt, scope)
	}
}

// checkStatement checks a statement
func (c *Checker) checkStatement(stmt ast.Statement, scope *Scope) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.checkLetStmt(s, scope)
	case *ast.AssignStmt:
		c.checkAssignStmt(s, scope)
	case *ast.ReplaceStmt:
		c.checkReplaceStmt(s, scope)
	case *ast.ReturnStmt:
		c.checkReturnStmt(s, scope)
	case *ast.IfStmt:
		c.checkIfStmt(s, scope)
	case *ast.WhileStmt:
		c.checkWhileStmt(s, scope)
	case *ast.ForInStmt:
		c.checkForInStmt(s, scope)
	case *ast.MatchStmt:
		c.checkMatchStmt(s, scope)
	case *ast.BreakStmt:
		c.checkBreakStmt(s)
	case *ast.ContinueStmt:
		c.checkContinueStmt(s)
	case *ast.ExprStmt:
		c.checkExpression(s.Expr, scope, nil)
	case *ast.Block:
		blockScope := NewScope(scope)
		c.checkBlock(s, blockScope)
		c.reportUnused(blockScope)
	}
}

// checkLetStmt checks a let statement
func (c *Checker) checkLetStmt(stmt *ast.LetStmt, scope *Scope) {
	line, col := stmt.Pos()

	if scope.ResolveLocal(stmt.Name) != nil {
		c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
			"variable '%s' already defined in this scope", stmt.Name)
		return
	}

	var declaredType *Type
	if stmt.Type != nil {
		declaredType = ResolveType(stmt.Type, c.structs, c.enums, c.tables)
		if declaredType.IsUnknown() {
			c.diag.ErrorfKind(diagnostic.KindType, line, col, "unknown type in let binding '%s'", stmt.Name)
		}
	}

	// The declared type is the expected-type hint for the initializer.
	valueType := c.checkExpression(stmt.Value, scope, declaredType)

	if declaredType != nil && !c.assignable(valueType, declaredType) {
		c.diag.ErrorfKind(diagnostic.KindType, line, col,
			"type mismatch: cannot assign %s to %s", valueType.String(), declaredType.String())
	}

	varType := declaredType
	if varType == nil {
		varType = valueType
	}

	scope.Define(stmt.Name, &Symbol{
		Name:    stmt.Name,
		Type:    varType,
		Mutable: stmt.Mutable,
		Kind:    SymVariable,
		Line:    line,
		Column:  col,
	})
}

// checkAssignStmt checks an assignment statement
func (c *Checker) checkAssignStmt(stmt *ast.AssignStmt, scope *Scope) {
	targetType := c.checkExpression(stmt.Target, scope, nil)

	if ident, ok := stmt.Target.(*ast.Identifier); ok {
		sym := scope.Resolve(ident.Name)
		if sym != nil && !sym.Mutable {
			line, col := stmt.Pos()
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot assign to immutable variable '%s'", ident.Name)
		}
	}

	if indexExpr, ok := stmt.Target.(*ast.IndexExpr); ok {
		if ident, ok := indexExpr.Object.(*ast.Identifier); ok {
			sym := scope.Resolve(ident.Name)
			if sym != nil && !sym.Mutable {
				line, col := stmt.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col,
					"cannot assign to index of immutable binding '%s'", ident.Name)
			}
		}
	}

	valueType := c.checkExpression(stmt.Value, scope, targetType)

	if !c.assignable(valueType, targetType) {
		line, col := stmt.Pos()
		c.diag.ErrorfKind(diagnostic.KindType, line, col,
			"type mismatch: cannot assign %s to %s", valueType.String(), targetType.String())
	}
}

// checkReplaceStmt checks a whole-node replacement. Whether the target
// is a legal replace target is the ownership pass's concern; here only
// names and types are validated.
func (c *Checker) checkReplaceStmt(stmt *ast.ReplaceStmt, scope *Scope) {
	line, col := stmt.Pos()

	sym := scope.ResolveUse(stmt.Target)
	if sym == nil {
		c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
			"undeclared variable '%s'", stmt.Target)
		c.checkExpression(stmt.Value, scope, nil)
		return
	}

	nodeType := sym.Type.Deref()
	valueType := c.checkExpression(stmt.Value, scope, nodeType)

	if !c.assignable(valueType, nodeType) {
		c.diag.ErrorfKind(diagnostic.KindType, line, col,
			"type mismatch: cannot replace %s with %s", nodeType.String(), valueType.String())
	}
}

// checkReturnStmt checks a return statement
func (c *Checker) checkReturnStmt(stmt *ast.ReturnStmt, scope *Scope) {
	line, col := stmt.Pos()

	var expected *Type
	if c.currentFunc != nil {
		expected = c.currentFunc.ReturnType
	}

	if stmt.Value == nil {
		if expected != nil && expected.Kind != KindUnit && !expected.IsUnknown() {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"missing return value, expected %s", expected.String())
		}
		return
	}

	valueType := c.checkExpression(stmt.Value, scope, expected)
	if expected != nil && !c.assignable(valueType, expected) {
		c.diag.ErrorfKind(diagnostic.KindType, line, col,
			"type mismatch: cannot return %s, expected %s", valueType.String(), expected.String())
	}
}

// checkIfStmt checks an if statement
func (c *Checker) checkIfStmt(stmt *ast.IfStmt, scope *Scope) {
	condType := c.checkExpression(stmt.Condition, scope, TypeBool)
	if !condType.IsUnknown() && condType.Kind != KindBool {
		line, col := stmt.Pos()
		c.diag.ErrorfKind(diagnostic.KindType, line, col, "if condition must be Bool, got %s", condType.String())
	}

	if stmt.Then != nil {
		thenScope := NewScope(scope)
		c.checkBlock(stmt.Then, thenScope)
		c.reportUnused(thenScope)
	}

	if stmt.Else != nil {
		elseScope := NewScope(scope)
		c.checkStatement(stmt.Else, elseScope)
		c.reportUnused(elseScope)
	}
}

// checkWhileStmt checks a while statement
func (c *Checker) checkWhileStmt(stmt *ast.WhileStmt, scope *Scope) {
	condType := c.checkExpression(stmt.Condition, scope, TypeBool)
	if !condType.IsUnknown() && condType.Kind != KindBool {
		line, col := stmt.Pos()
		c.diag.ErrorfKind(diagnostic.KindType, line, col, "while condition must be Bool, got %s", condType.String())
	}

	c.loopDepth++
	whileScope := NewScope(scope)
	c.checkBlock(stmt.Body, whileScope)
	c.reportUnused(whileScope)
	c.loopDepth--
}

// checkForInStmt checks a for-in statement
func (c *Checker) checkForInStmt(stmt *ast.ForInStmt, scope *Scope) {
	line, col := stmt.Pos()

	var elemType *Type

	if rangeExpr, ok := stmt.Iterable.(*ast.RangeExpr); ok {
		startType := c.checkExpression(rangeExpr.Start, scope, TypeInt)
		endType := c.checkExpression(rangeExpr.End, scope, TypeInt)

		if !startType.IsUnknown() && startType.Kind != KindInt {
			c.diag.ErrorfKind(diagnostic.KindType, line, col, "range start must be Int, got %s", startType.String())
		}
		if !endType.IsUnknown() && endType.Kind != KindInt {
			c.diag.ErrorfKind(diagnostic.KindType, line, col, "range end must be Int, got %s", endType.String())
		}

		elemType = TypeInt
	} else {
		iterType := c.checkExpression(stmt.Iterable, scope, nil).Deref()
		switch iterType.Kind {
		case KindList, KindSet:
			elemType = iterType.Inner()
		case KindUnknown:
			elemType = TypeUnknown
		default:
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot iterate over type %s (expected List, Set, or range)", iterType.String())
			elemType = TypeUnknown
		}
	}

	loopScope := NewScope(scope)
	loopScope.Define(stmt.Variable, &Symbol{
		Name:    stmt.Variable,
		Type:    elemType,
		Mutable: false, // loop variable is immutable
		Kind:    SymVariable,
		Line:    line,
		Column:  col,
	})

	c.loopDepth++
	c.checkBlock(stmt.Body, loopScope)
	c.reportUnused(loopScope)
	c.loopDepth--
}

// checkMatchStmt checks a match statement: the scrutinee is typed, then
// each arm's pattern binds names in a fresh scope.
func (c *Checker) checkMatchStmt(stmt *ast.MatchStmt, scope *Scope) {
	scrutType := c.checkExpression(stmt.Scrutinee, scope, nil)

	for _, arm := range stmt.Arms {
		armScope := NewScope(scope)
		c.checkPattern(arm.Pattern, scrutType, armScope)
		if arm.Body != nil {
			c.checkBlock(arm.Body, armScope)
		}
		c.reportUnused(armScope)
	}
}

// checkPattern checks a pattern against the scrutinee type and defines
// the pattern's bindings in the given scope.
func (c *Checker) checkPattern(pat *ast.MatchPattern, scrutType *Type, scope *Scope) {
	line, col := pat.Pos()
	t := scrutType.Deref()

	if pat.IsWildcard {
		return
	}

	if pat.IsBinding {
		if err := scope.Define(pat.Name, &Symbol{
			Name:   pat.Name,
			Type:   t,
			Kind:   SymVariable,
			Line:   line,
			Column: col,
		}); err != nil {
			c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col,
				"binding '%s' already defined in this pattern", pat.Name)
		}
		return
	}

	switch pat.Tag {
	case "Some":
		if t.Kind != KindOption && !t.IsUnknown() {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot match Some against %s", t.String())
			return
		}
		if len(pat.Positional) != 1 {
			c.diag.ErrorfKind(diagnostic.KindType, line, col, "Some pattern takes exactly one sub-pattern")
			return
		}
		c.checkPattern(pat.Positional[0], t.Inner(), scope)
		return
	case "None":
		if t.Kind != KindOption && !t.IsUnknown() {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot match None against %s", t.String())
		}
		return
	case "Ok", "Err":
		if t.Kind != KindResult && !t.IsUnknown() {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot match %s against %s", pat.Tag, t.String())
			return
		}
		if len(pat.Positional) != 1 {
			c.diag.ErrorfKind(diagnostic.KindType, line, col, "%s pattern takes exactly one sub-pattern", pat.Tag)
			return
		}
		payload := TypeUnknown
		if len(t.Args) == 2 {
			if pat.Tag == "Ok" {
				payload = t.Args[0]
			} else {
				payload = t.Args[1]
			}
		}
		c.checkPattern(pat.Positional[0], payload, scope)
		return
	}

	// User enum variant
	if lookup, ok := c.enumVariants[pat.Tag]; ok {
		if !t.IsUnknown() && (t.Kind != KindEnum || t.Name != lookup.EnumInfo.Name) {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"variant '%s' belongs to enum '%s', but scrutinee is %s",
				pat.Tag, lookup.EnumInfo.Name, t.String())
			return
		}
		if len(pat.Positional) != len(lookup.VariantInfo.Fields) {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"variant '%s' has %d field(s), pattern binds %d",
				pat.Tag, len(lookup.VariantInfo.Fields), len(pat.Positional))
			return
		}
		for i, sub := range pat.Positional {
			c.checkPattern(sub, lookup.VariantInfo.Fields[i].Type, scope)
		}
		return
	}

	// User struct destructure
	if info, ok := c.structs[pat.Tag]; ok {
		if !t.IsUnknown() && (t.Kind != KindStruct || t.Name != info.Name) {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot match struct '%s' against %s", pat.Tag, t.String())
			return
		}
		for _, fp := range pat.Fields {
			fieldType, ok := info.Fields[fp.Name]
			if !ok {
				fline, fcol := fp.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, fline, fcol,
					"struct '%s' has no field '%s'", pat.Tag, fp.Name)
				continue
			}
			c.checkPattern(fp.Pattern, fieldType, scope)
		}
		return
	}

	// Node category tag. Optional wrappers unwrap automatically unless
	// the user matched Some explicitly (handled above).
	if c.tables != nil && c.tables.IsCategory(pat.Tag) {
		unwrapped := t
		for unwrapped.Kind == KindOption {
			unwrapped = unwrapped.Inner().Deref()
		}
		if !unwrapped.IsUnknown() && unwrapped.Kind != KindNode {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"cannot match node category '%s' against %s", pat.Tag, t.String())
			return
		}
		tagCat, _ := c.tables.Category(pat.Tag)
		for _, fp := range pat.Fields {
			field := tagCat.Field(fp.Name)
			if field == nil {
				fline, fcol := fp.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, fline, fcol,
					"node category '%s' has no field '%s'", pat.Tag, fp.Name)
				continue
			}
			c.checkPattern(fp.Pattern, ResolveSchemaType(field.Type, c.tables), scope)
		}
		for range pat.Positional {
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"node category patterns use named fields, not positional bindings")
			break
		}
		return
	}

	c.diag.ErrorfKind(diagnostic.KindNameResolution, line, col, "unknown pattern tag '%s'", pat.Tag)
}

// checkBreakStmt checks a break statement
func (c *Checker) checkBreakStmt(stmt *ast.BreakStmt) {
	if c.loopDepth == 0 {
		line, col := stmt.Pos()
		c.diag.ErrorfKind(diagnostic.KindType, line, col, "break statement outside loop")
	}
}

// checkContinueStmt checks a continue statement
func (c *Checker) checkContinueStmt(stmt *ast.ContinueStmt) {
	if c.loopDepth == 0 {
		line, col := stmt.Pos()
		c.diag.ErrorfKind(diagnostic.KindType, line, col, "continue statement outside loop")
	}
}

// storeExprType stores the type of an expression for later pipeline
// stages. Unknown is stored too: downstream passes rely on every
// expression having an entry.
func (c *Checker) storeExprType(expr ast.Expression, t *Type) *Type {
	if t == nil {
		t = TypeUnknown
	}
	c.exprTypes[expr] = t
	return t
}

// checkExpression checks an expression and returns its type. The caller
// may supply an expected-type hint for bidirectional inference; nil
// means no expectation.
func (c *Checker) checkExpression(expr ast.Expression, scope *Scope, expected *Type) *Type {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		return c.storeExprType(expr, c.checkBinaryExpr(e, scope))
	case *ast.UnaryExpr:
		return c.storeExprType(expr, c.checkUnaryExpr(e, scope, expected))
	case *ast.BorrowExpr:
		return c.storeExprType(expr, c.checkBorrowExpr(e, scope, expected))
	case *ast.DerefExpr:
		return c.storeExprType(expr, c.checkDerefExpr(e, scope))
	case *ast.OwnExpr:
		return c.storeExprType(expr, c.checkOwnExpr(e, scope, expected))
	case *ast.CallExpr:
		return c.storeExprType(expr, c.checkCallExpr(e, scope, expected))
	case *ast.FieldAccessExpr:
		return c.storeExprType(expr, c.checkFieldAccessExpr(e, scope))
	case *ast.IndexExpr:
		return c.storeExprType(expr, c.checkIndexExpr(e, scope))
	case *ast.Identifier:
		return c.storeExprType(expr, c.checkIdentifier(e, scope, expected))
	case *ast.IntLit:
		// An integer literal adopts an expected float type.
		if expected != nil && expected.Kind == KindFloat {
			return c.storeExprType(expr, TypeFloat)
		}
		return c.storeExprType(expr, TypeInt)
	case *ast.FloatLit:
		return c.storeExprType(expr, TypeFloat)
	case *ast.StringLit:
		return c.storeExprType(expr, TypeString)
	case *ast.BoolLit:
		return c.storeExprType(expr, TypeBool)
	case *ast.NullLit:
		return c.storeExprType(expr, TypeNull)
	case *ast.ListLit:
		return c.storeExprType(expr, c.checkListLit(e, scope, expected))
	case *ast.TupleLit:
		return c.storeExprType(expr, c.checkTupleLit(e, scope, expected))
	case *ast.StructLit:
		return c.storeExprType(expr, c.checkStructLit(e, scope))
	case *ast.RangeExpr:
		return c.storeExprType(expr, c.checkRangeExpr(e, scope))
	default:
		return c.storeExprType(expr, TypeUnknown)
	}
}

// checkIdentifier resolves a name to its binding. None is special-cased
// here because it is a bare identifier, not a call.
func (c *Checker) checkIdentifier(e *ast.Identifier, scope *Scope, expected *Type) *Type {
	if e.Name == "None" {
		if expected != nil && expected.Kind == KindOption {
			return expected
		}
		return NewOption(TypeUnknown)
	}

	// Unit variants of user enums are bare identifiers too.
	if lookup, ok := c.enumVariants[e.Name]; ok && len(lookup.VariantInfo.Fields) == 0 {
		return NewEnum(lookup.EnumInfo)
	}

	sym := scope.ResolveUse(e.Name)
	if sym == nil {
		c.diag.ErrorfKind(diagnostic.KindNameResolution, e.Line, e.Column,
			"undeclared variable '%s'", e.Name)
		return TypeUnknown
	}
	return sym.Type
}

// checkBinaryExpr infers a binary operator's result from a fixed table
// keyed on operand types.
func (c *Checker) checkBinaryExpr(e *ast.BinaryExpr, scope *Scope) *Type {
	left := c.checkExpression(e.Left, scope, nil)
	right := c.checkExpression(e.Right, scope, left)

	// Unknown operands poison silently; the original error was already
	// reported where the operand failed.
	if left.IsUnknown() || right.IsUnknown() {
		return TypeUnknown
	}

	lt, rt := left.Deref(), right.Deref()

	switch e.Op {
	case lexer.PLUS:
		if lt.Kind == KindString && rt.Kind == KindString {
			return TypeString
		}
		if t := numericResult(lt, rt); t != nil {
			return t
		}
	case lexer.MINUS, lexer.STAR, lexer.SLASH:
		if t := numericResult(lt, rt); t != nil {
			return t
		}
	case lexer.PERCENT:
		if lt.Kind == KindInt && rt.Kind == KindInt {
			return TypeInt
		}
		if lt.Kind == KindUint && rt.Kind == KindUint {
			return TypeUint
		}
	case lexer.EQ, lexer.NEQ:
		if c.assignable(lt, rt) || c.assignable(rt, lt) {
			return TypeBool
		}
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		if (lt.IsNumeric() && rt.IsNumeric()) || (lt.Kind == KindString && rt.Kind == KindString) {
			return TypeBool
		}
	case lexer.AND, lexer.OR:
		if lt.Kind == KindBool && rt.Kind == KindBool {
			return TypeBool
		}
	}

	c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
		"operator %s not defined for %s and %s", e.Op.String(), left.String(), right.String())
	return TypeUnknown
}

// numericResult applies the numeric operator table: same kind
// preserves, Int and Float mix to Float.
func numericResult(lt, rt *Type) *Type {
	switch {
	case lt.Kind == KindInt && rt.Kind == KindInt:
		return TypeInt
	case lt.Kind == KindUint && rt.Kind == KindUint:
		return TypeUint
	case lt.Kind == KindFloat && rt.Kind == KindFloat:
		return TypeFloat
	case lt.Kind == KindInt && rt.Kind == KindFloat, lt.Kind == KindFloat && rt.Kind == KindInt:
		return TypeFloat
	}
	return nil
}

// checkUnaryExpr checks negation and logical not
func (c *Checker) checkUnaryExpr(e *ast.UnaryExpr, scope *Scope, expected *Type) *Type {
	operand := c.checkExpression(e.Operand, scope, expected)
	if operand.IsUnknown() {
		return TypeUnknown
	}

	t := operand.Deref()
	switch e.Op {
	case lexer.MINUS:
		if t.Kind == KindInt || t.Kind == KindFloat {
			return t
		}
	case lexer.NOT:
		if t.Kind == KindBool {
			return TypeBool
		}
	}

	c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
		"operator %s not defined for %s", e.Op.String(), operand.String())
	return TypeUnknown
}

// checkBorrowExpr types &expr and &mut expr
func (c *Checker) checkBorrowExpr(e *ast.BorrowExpr, scope *Scope, expected *Type) *Type {
	var hint *Type
	if expected != nil && expected.Kind == KindRef {
		hint = expected.Inner()
	}
	operand := c.checkExpression(e.Operand, scope, hint)
	return NewRef(e.Mutable, operand.Deref())
}

// checkDerefExpr types *expr
func (c *Checker) checkDerefExpr(e *ast.DerefExpr, scope *Scope) *Type {
	operand := c.checkExpression(e.Operand, scope, nil)
	if operand.IsUnknown() {
		return TypeUnknown
	}
	if operand.Kind != KindRef {
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
			"cannot dereference non-reference type %s", operand.String())
		return TypeUnknown
	}
	return operand.Inner()
}

// checkOwnExpr types the explicit owning extraction. The result is the
// owned (reference-stripped) form of the operand's type.
func (c *Checker) checkOwnExpr(e *ast.OwnExpr, scope *Scope, expected *Type) *Type {
	operand := c.checkExpression(e.Operand, scope, expected)
	return operand.Deref()
}

// checkCallExpr checks a function call, builtin call, or enum-variant
// construction.
func (c *Checker) checkCallExpr(e *ast.CallExpr, scope *Scope, expected *Type) *Type {
	switch e.Function {
	case "Some":
		var hint *Type
		if expected != nil && expected.Kind == KindOption {
			hint = expected.Inner()
		}
		if len(e.Args) != 1 {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column, "Some takes exactly one argument")
			return NewOption(TypeUnknown)
		}
		argType := c.checkExpression(e.Args[0], scope, hint)
		return NewOption(argType)
	case "Ok", "Err":
		if len(e.Args) != 1 {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column, "%s takes exactly one argument", e.Function)
			return NewResult(TypeUnknown, TypeUnknown)
		}
		okType, errType := TypeUnknown, TypeUnknown
		var hint *Type
		if expected != nil && expected.Kind == KindResult && len(expected.Args) == 2 {
			okType, errType = expected.Args[0], expected.Args[1]
			if e.Function == "Ok" {
				hint = okType
			} else {
				hint = errType
			}
		}
		argType := c.checkExpression(e.Args[0], scope, hint)
		if e.Function == "Ok" {
			return NewResult(argType, errType)
		}
		return NewResult(okType, argType)
	case "len":
		if len(e.Args) != 1 {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column, "len takes exactly one argument")
			return TypeInt
		}
		argType := c.checkExpression(e.Args[0], scope, nil).Deref()
		switch argType.Kind {
		case KindList, KindSet, KindMap, KindString, KindUnknown:
		default:
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"len not defined for %s", argType.String())
		}
		return TypeInt
	case "push":
		if len(e.Args) != 2 {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column, "push takes a list and an element")
			return TypeUnit
		}
		listType := c.checkExpression(e.Args[0], scope, nil).Deref()
		var elemHint *Type
		if listType.Kind == KindList {
			elemHint = listType.Inner()
		}
		elemType := c.checkExpression(e.Args[1], scope, elemHint)
		if listType.Kind != KindList && !listType.IsUnknown() {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"push expects a List, got %s", listType.String())
		} else if elemHint != nil && !c.assignable(elemType, elemHint) {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"cannot push %s into %s", elemType.String(), listType.String())
		}
		return TypeUnit
	case "print":
		for _, arg := range e.Args {
			c.checkExpression(arg, scope, nil)
		}
		return TypeUnit
	}

	// Enum variant construction
	if lookup, ok := c.enumVariants[e.Function]; ok {
		if len(e.Args) != len(lookup.VariantInfo.Fields) {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"variant '%s' takes %d argument(s), got %d",
				e.Function, len(lookup.VariantInfo.Fields), len(e.Args))
		}
		for i, arg := range e.Args {
			if i >= len(lookup.VariantInfo.Fields) {
				c.checkExpression(arg, scope, nil)
				continue
			}
			fieldType := lookup.VariantInfo.Fields[i].Type
			argType := c.checkExpression(arg, scope, fieldType)
			if !c.assignable(argType, fieldType) {
				line, col := arg.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col,
					"type mismatch in variant '%s': cannot pass %s as %s",
					e.Function, argType.String(), fieldType.String())
			}
		}
		return NewEnum(lookup.EnumInfo)
	}

	// Ordinary function call
	fn, ok := c.functions[e.Function]
	if !ok {
		c.diag.ErrorfKind(diagnostic.KindNameResolution, e.Line, e.Column,
			"undeclared function '%s'", e.Function)
		for _, arg := range e.Args {
			c.checkExpression(arg, scope, nil)
		}
		return TypeUnknown
	}

	if len(e.Args) != len(fn.Params) {
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
			"function '%s' takes %d argument(s), got %d", e.Function, len(fn.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		if i >= len(fn.Params) {
			c.checkExpression(arg, scope, nil)
			continue
		}
		paramType := fn.Params[i].Type
		argType := c.checkExpression(arg, scope, paramType)
		if !c.assignable(argType, paramType) {
			line, col := arg.Pos()
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"type mismatch in call to '%s': cannot pass %s as %s",
				e.Function, argType.String(), paramType.String())
		}
	}

	return fn.ReturnType
}

// checkFieldAccessExpr types a field read. Reference layers on the base
// are transparent; the result is the field's plain type (whether the
// read is a borrow is the ownership pass's concern).
func (c *Checker) checkFieldAccessExpr(e *ast.FieldAccessExpr, scope *Scope) *Type {
	baseType := c.checkExpression(e.Object, scope, nil)
	base := baseType.Deref()

	if base.IsUnknown() {
		return TypeUnknown
	}

	switch base.Kind {
	case KindStruct:
		if t, ok := base.Struct.Fields[e.Field]; ok {
			return t
		}
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
			"struct '%s' has no field '%s'", base.Name, e.Field)
		return TypeUnknown
	case KindNode:
		field, ok := c.tables.Field(base.Name, e.Field)
		if !ok {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"node category '%s' has no field '%s'", base.Name, e.Field)
			return TypeUnknown
		}
		return ResolveSchemaType(field.Type, c.tables)
	default:
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
			"cannot access field '%s' on %s", e.Field, baseType.String())
		return TypeUnknown
	}
}

// checkIndexExpr types an index access
func (c *Checker) checkIndexExpr(e *ast.IndexExpr, scope *Scope) *Type {
	objType := c.checkExpression(e.Object, scope, nil).Deref()

	switch objType.Kind {
	case KindList:
		idxType := c.checkExpression(e.Index, scope, TypeInt)
		if !idxType.IsUnknown() && idxType.Kind != KindInt && idxType.Kind != KindUint {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"list index must be an integer, got %s", idxType.String())
		}
		return objType.Inner()
	case KindMap:
		keyType := TypeUnknown
		if len(objType.Args) == 2 {
			keyType = objType.Args[0]
		}
		idxType := c.checkExpression(e.Index, scope, keyType)
		if !c.assignable(idxType, keyType) {
			c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
				"map key mismatch: cannot index %s with %s", objType.String(), idxType.String())
		}
		if len(objType.Args) == 2 {
			return objType.Args[1]
		}
		return TypeUnknown
	case KindUnknown:
		c.checkExpression(e.Index, scope, nil)
		return TypeUnknown
	default:
		c.checkExpression(e.Index, scope, nil)
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
			"cannot index into %s", objType.String())
		return TypeUnknown
	}
}

// checkListLit infers a list literal: the expected hint's element type
// wins; otherwise the first element fixes the type and homogeneity is
// assumed.
func (c *Checker) checkListLit(e *ast.ListLit, scope *Scope, expected *Type) *Type {
	var elemHint *Type
	if expected != nil && expected.Kind == KindList {
		elemHint = expected.Inner()
	}

	if len(e.Elements) == 0 {
		if elemHint != nil {
			return NewList(elemHint)
		}
		return NewList(TypeUnknown)
	}

	first := c.checkExpression(e.Elements[0], scope, elemHint)
	elemType := elemHint
	if elemType == nil {
		elemType = first
	} else if !c.assignable(first, elemType) {
		line, col := e.Elements[0].Pos()
		c.diag.ErrorfKind(diagnostic.KindType, line, col,
			"list element type mismatch: %s vs %s", first.String(), elemType.String())
	}

	for _, el := range e.Elements[1:] {
		t := c.checkExpression(el, scope, elemType)
		if !c.assignable(t, elemType) {
			line, col := el.Pos()
			c.diag.ErrorfKind(diagnostic.KindType, line, col,
				"list element type mismatch: %s vs %s", t.String(), elemType.String())
		}
	}

	return NewList(elemType)
}

// checkTupleLit infers a tuple literal with element hints from the
// expected type when arities agree.
func (c *Checker) checkTupleLit(e *ast.TupleLit, scope *Scope, expected *Type) *Type {
	var hints []*Type
	if expected != nil && expected.Kind == KindTuple && len(expected.Args) == len(e.Elements) {
		hints = expected.Args
	}

	elems := make([]*Type, 0, len(e.Elements))
	for i, el := range e.Elements {
		var hint *Type
		if hints != nil {
			hint = hints[i]
		}
		elems = append(elems, c.checkExpression(el, scope, hint))
	}
	return NewTuple(elems)
}

// checkStructLit checks a struct literal or a node-construction
// literal against the declared field set.
func (c *Checker) checkStructLit(e *ast.StructLit, scope *Scope) *Type {
	if info, ok := c.structs[e.Name]; ok {
		seen := make(map[string]bool)
		for _, init := range e.Fields {
			fieldType, ok := info.Fields[init.Name]
			if !ok {
				line, col := init.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col,
					"struct '%s' has no field '%s'", e.Name, init.Name)
				c.checkExpression(init.Value, scope, nil)
				continue
			}
			if seen[init.Name] {
				line, col := init.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col,
					"duplicate field '%s' in struct literal", init.Name)
			}
			seen[init.Name] = true
			valueType := c.checkExpression(init.Value, scope, fieldType)
			if !c.assignable(valueType, fieldType) {
				line, col := init.Pos()
				c.diag.ErrorfKind(diagnostic.KindType, line, col,
					"type mismatch in field '%s': cannot assign %s to %s",
					init.Name, valueType.String(), fieldType.String())
			}
		}
		for _, name := range info.FieldOrder {
			if !seen[name] {
				c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
					"missing field '%s' in struct literal '%s'", name, e.Name)
			}
		}
		return NewStruct(info)
	}

	if c.tables != nil {
		if cat, ok := c.tables.Category(e.Name); ok {
			seen := make(map[string]bool)
			for _, init := range e.Fields {
				field := cat.Field(init.Name)
				if field == nil {
					line, col := init.Pos()
					c.diag.ErrorfKind(diagnostic.KindType, line, col,
						"node category '%s' has no field '%s'", e.Name, init.Name)
					c.checkExpression(init.Value, scope, nil)
					continue
				}
				seen[init.Name] = true
				fieldType := ResolveSchemaType(field.Type, c.tables)
				valueType := c.checkExpression(init.Value, scope, fieldType)
				if !c.assignable(valueType, fieldType) {
					line, col := init.Pos()
					c.diag.ErrorfKind(diagnostic.KindType, line, col,
						"type mismatch in field '%s': cannot assign %s to %s",
						init.Name, valueType.String(), fieldType.String())
				}
			}
			for _, field := range cat.Fields {
				if !seen[field.Name] {
					c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
						"missing field '%s' constructing node '%s'", field.Name, e.Name)
				}
			}
			return NewNode(e.Name)
		}
	}

	if _, ok := c.enums[e.Name]; ok {
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column,
			"enum '%s' is constructed with a variant, not a struct literal", e.Name)
		return TypeUnknown
	}

	c.diag.ErrorfKind(diagnostic.KindNameResolution, e.Line, e.Column, "unknown type '%s'", e.Name)
	for _, init := range e.Fields {
		c.checkExpression(init.Value, scope, nil)
	}
	return TypeUnknown
}

// checkRangeExpr types start..end
func (c *Checker) checkRangeExpr(e *ast.RangeExpr, scope *Scope) *Type {
	startType := c.checkExpression(e.Start, scope, TypeInt)
	endType := c.checkExpression(e.End, scope, TypeInt)

	if !startType.IsUnknown() && startType.Kind != KindInt {
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column, "range start must be Int, got %s", startType.String())
	}
	if !endType.IsUnknown() && endType.Kind != KindInt {
		c.diag.ErrorfKind(diagnostic.KindType, e.Line, e.Column, "range end must be Int, got %s", endType.String())
	}

	return NewList(TypeInt)
}
