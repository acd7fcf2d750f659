package decorate

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/checker"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/schema"
)

type resolver struct {
	plan    *Plan
	tables  *schema.Tables
	types   map[ast.Expression]*checker.Type
	structs map[string]*checker.StructInfo
	// variants indexes user enum variants by name for recursing into
	// variant sub-patterns.
	variants map[string]*checker.EnumVariantInfo
	diag     *diagnostic.Diagnostics
}

func newResolver(tables *schema.Tables, types map[ast.Expression]*checker.Type,
	structs map[string]*checker.StructInfo, enums map[string]*checker.EnumInfo) *resolver {
	variants := make(map[string]*checker.EnumVariantInfo)
	for _, info := range enums {
		for _, v := range info.Variants {
			variants[v.Name] = v
		}
	}
	return &resolver{
		plan:     NewPlan(),
		tables:   tables,
		types:    types,
		structs:  structs,
		variants: variants,
		diag:     diagnostic.New(),
	}
}

// Resolve computes the lowering plan for a checked program. Resolution
// runs to completion; unmappable patterns are recorded as diagnostics
// and left out of the plan.
func Resolve(prog *ast.Program, result *checker.CheckResult) (*Plan, *diagnostic.Diagnostics) {
	r := newResolver(result.Tables, result.ExprTypes, result.Structs, result.Enums)
	r.walkProgram(prog)
	return r.plan, r.diag
}

// ResolveAll computes one shared lowering plan across every file of a
// multi-file program.
func ResolveAll(registry map[string]*ast.Program, sortedPaths []string, result *checker.CheckAllResult) (*Plan, *diagnostic.Diagnostics) {
	r := newResolver(result.Tables, result.ExprTypes, result.Structs, result.Enums)
	diag := diagnostic.New()
	for _, filePath := range sortedPaths {
		prog := registry[filePath]
		if prog == nil {
			continue
		}
		r.diag = diagnostic.New()
		r.walkProgram(prog)
		for _, d := range r.diag.All() {
			d.File = filePath
			diag.Add(d)
		}
	}
	return r.plan, diag
}

func (r *resolver) walkProgram(prog *ast.Program) {
	for _, fn := range prog.Functions {
		if fn.Body != nil {
			r.walkBlock(fn.Body)
		}
	}
	for _, v := range prog.Visitors {
		if v.Body != nil {
			r.walkBlock(v.Body)
		}
	}
}

func (r *resolver) walkBlock(block *ast.Block) {
	for _, stmt := range block.Statements {
		r.walkStmt(stmt)
	}
}

func (r *resolver) walkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		r.walkExpr(s.Value)
	case *ast.AssignStmt:
		r.walkExpr(s.Target)
		r.walkExpr(s.Value)
	case *ast.ReplaceStmt:
		r.walkExpr(s.Value)
	case *ast.ReturnStmt:
		if s.Value != nil {
			r.walkExpr(s.Value)
		}
	case *ast.IfStmt:
		r.walkExpr(s.Condition)
		if s.Then != nil {
			r.walkBlock(s.Then)
		}
		if s.Else != nil {
			r.walkStmt(s.Else)
		}
	case *ast.WhileStmt:
		r.walkExpr(s.Condition)
		r.walkBlock(s.Body)
	case *ast.ForInStmt:
		r.walkExpr(s.Iterable)
		r.walkBlock(s.Body)
	case *ast.MatchStmt:
		r.walkMatch(s)
	case *ast.ExprStmt:
		r.walkExpr(s.Expr)
	case *ast.Block:
		r.walkBlock(s)
	}
}

func (r *resolver) walkMatch(stmt *ast.MatchStmt) {
	r.walkExpr(stmt.Scrutinee)

	scrutType := r.typeOf(stmt.Scrutinee)
	boxed := false
	if fa, ok := stmt.Scrutinee.(*ast.FieldAccessExpr); ok {
		if dec, ok := r.plan.FieldAccesses[fa]; ok {
			boxed = dec.Boxed
		}
	}

	for _, arm := range stmt.Arms {
		r.walkPattern(arm.Pattern, scrutType, boxed)
		if arm.Body != nil {
			r.walkBlock(arm.Body)
		}
	}
}

func (r *resolver) walkPattern(pat *ast.MatchPattern, scrutType *checker.Type, boxed bool) {
	if pat == nil || pat.IsWildcard || pat.IsBinding {
		return
	}

	t := scrutType.Deref()

	switch pat.Tag {
	case "Some":
		// An explicit Some consumes one optional layer; a box under the
		// option still needs the indirection below.
		payload := checker.TypeUnknown
		if t.Kind == checker.KindOption {
			payload = t.Inner()
		}
		if len(pat.Positional) == 1 {
			r.walkPattern(pat.Positional[0], payload, boxed)
		}
		return
	case "None":
		return
	case "Ok", "Err":
		payload := checker.TypeUnknown
		if t.Kind == checker.KindResult && len(t.Args) == 2 {
			if pat.Tag == "Ok" {
				payload = t.Args[0]
			} else {
				payload = t.Args[1]
			}
		}
		if len(pat.Positional) == 1 {
			r.walkPattern(pat.Positional[0], payload, false)
		}
		return
	}

	if cat, ok := r.tables.Category(pat.Tag); ok {
		line, col := pat.Pos()
		dec, err := lowerPattern(pat.Tag, scrutType, boxed, r.tables, line, col)
		if err != nil {
			r.diag.ErrorfKind(diagnostic.KindDecoration, line, col, "%s", err.Error())
		} else {
			r.plan.Patterns[pat] = dec
		}
		// Once the tag matched, sub-patterns see the concrete category.
		for _, fp := range pat.Fields {
			field := cat.Field(fp.Name)
			if field == nil {
				continue
			}
			fieldType := checker.ResolveSchemaType(field.Type, r.tables)
			r.walkPattern(fp.Pattern, fieldType, field.Strict.Boxed)
		}
		return
	}

	if v, ok := r.variants[pat.Tag]; ok {
		for i, sub := range pat.Positional {
			if i < len(v.Fields) {
				r.walkPattern(sub, v.Fields[i].Type, false)
			}
		}
		return
	}

	if info, ok := r.structs[pat.Tag]; ok {
		for _, fp := range pat.Fields {
			if fieldType, ok := info.Fields[fp.Name]; ok {
				r.walkPattern(fp.Pattern, fieldType, false)
			}
		}
	}
}

func (r *resolver) walkExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.BinaryExpr:
		r.walkExpr(e.Left)
		r.walkExpr(e.Right)
	case *ast.UnaryExpr:
		r.walkExpr(e.Operand)
	case *ast.BorrowExpr:
		r.walkExpr(e.Operand)
	case *ast.DerefExpr:
		r.walkExpr(e.Operand)
	case *ast.OwnExpr:
		r.walkExpr(e.Operand)
	case *ast.CallExpr:
		for _, arg := range e.Args {
			r.walkExpr(arg)
		}
	case *ast.FieldAccessExpr:
		r.walkFieldAccess(e)
	case *ast.IndexExpr:
		r.walkExpr(e.Object)
		r.walkExpr(e.Index)
	case *ast.ListLit:
		for _, el := range e.Elements {
			r.walkExpr(el)
		}
	case *ast.TupleLit:
		for _, el := range e.Elements {
			r.walkExpr(el)
		}
	case *ast.StructLit:
		r.walkStructLit(e)
	case *ast.RangeExpr:
		r.walkExpr(e.Start)
		r.walkExpr(e.End)
	}
}

func (r *resolver) walkFieldAccess(e *ast.FieldAccessExpr) {
	r.walkExpr(e.Object)

	base := r.typeOf(e.Object).Deref()
	if base.Kind != checker.KindNode {
		return
	}
	field, ok := r.tables.Field(base.Name, e.Field)
	if !ok {
		// The checker already reported the unknown field.
		return
	}
	kind, _ := field.AccessorKind()
	r.plan.FieldAccesses[e] = &FieldAccessDecoration{
		DuckName:   field.Duck,
		StrictName: field.Strict.Name,
		Accessor:   kind,
		Variant:    field.Strict.Variant,
		Boxed:      field.Strict.Boxed,
		Interned:   field.Strict.Interned,
	}
}

func (r *resolver) walkStructLit(e *ast.StructLit) {
	for _, f := range e.Fields {
		r.walkExpr(f.Value)
	}

	cat, ok := r.tables.Category(e.Name)
	if !ok {
		return
	}

	values := make(map[string]ast.Expression, len(e.Fields))
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}

	dec := &ConstructionDecoration{
		Category: cat.Name,
		Duck:     cat.Duck,
		Strict:   cat.Strict,
		Fields:   make([]ConstructionField, 0, len(cat.Fields)),
	}
	for _, field := range cat.Fields {
		fieldType := checker.ResolveSchemaType(field.Type, r.tables)
		dec.Fields = append(dec.Fields, ConstructionField{
			Name:       field.Name,
			DuckName:   field.Duck,
			StrictName: field.Strict.Name,
			Variant:    field.Strict.Variant,
			Boxed:      field.Strict.Boxed,
			Interned:   field.Strict.Interned,
			Optional:   fieldType.Kind == checker.KindOption,
			Value:      values[field.Name],
		})
	}
	r.plan.Constructions[e] = dec
}

func (r *resolver) typeOf(expr ast.Expression) *checker.Type {
	if t, ok := r.types[expr]; ok {
		return t
	}
	return checker.TypeUnknown
}
