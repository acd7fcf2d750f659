package ast

import "github.com/morphlang/morphc/internal/lexer"

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Program represents an entire Morph source file
type Program struct {
	Module    *ModuleDecl
	Imports   []*ImportDecl
	Structs   []*StructDecl
	Enums     []*EnumDecl
	Functions []*FunctionDecl
	Visitors  []*VisitorDecl
}

func (p *Program) Pos() (int, int) {
	if p.Module != nil {
		return p.Module.Pos()
	}
	return 0, 0
}

// ModuleDecl represents a module declaration
type ModuleDecl struct {
	Name    string
	Version string
	Line    int
	Column  int
}

func (m *ModuleDecl) Pos() (int, int) { return m.Line, m.Column }

// ImportDecl represents an import declaration
type ImportDecl struct {
	Path   string // import path (e.g. "helpers.morph")
	Line   int
	Column int
}

func (i *ImportDecl) Pos() (int, int) { return i.Line, i.Column }

// StructDecl represents a struct declaration
type StructDecl struct {
	Name     string
	IsPublic bool
	Fields   []*FieldDecl
	Line     int
	Column   int
}

func (s *StructDecl) Pos() (int, int) { return s.Line, s.Column }

// FieldDecl represents a struct or enum-variant field declaration
type FieldDecl struct {
	Name   string
	Type   *TypeRef
	Line   int
	Column int
}

func (f *FieldDecl) Pos() (int, int) { return f.Line, f.Column }

// EnumDecl represents an enum declaration
type EnumDecl struct {
	Name     string
	IsPublic bool
	Variants []*EnumVariant
	Line     int
	Column   int
}

func (e *EnumDecl) Pos() (int, int) { return e.Line, e.Column }

// EnumVariant represents a variant in an enum
type EnumVariant struct {
	Name   string
	Fields []*FieldDecl // nil/empty for unit variants
	Line   int
	Column int
}

func (e *EnumVariant) Pos() (int, int) { return e.Line, e.Column }

// FunctionDecl represents a function declaration
type FunctionDecl struct {
	Name       string
	IsPublic   bool
	Params     []*Param
	ReturnType *TypeRef
	Body       *Block
	Line       int
	Column     int
}

func (f *FunctionDecl) Pos() (int, int) { return f.Line, f.Column }

// VisitorDecl represents a visitor declaration:
//
//	visitor Name on Category(param) { ... }
//
// The parameter is implicitly a mutable reference to the visited node.
type VisitorDecl struct {
	Name     string
	IsPublic bool
	Category string // unified-schema node category
	Param    string // name of the visited node parameter
	Body     *Block
	Line     int
	Column   int
}

func (v *VisitorDecl) Pos() (int, int) { return v.Line, v.Column }

// Param represents a function parameter
type Param struct {
	Name   string
	Type   *TypeRef
	Line   int
	Column int
}

func (p *Param) Pos() (int, int) { return p.Line, p.Column }

// TypeRef represents a parsed type annotation. Exactly one of the
// reference/tuple/function forms is set; otherwise the annotation is a
// plain (possibly generic) name.
type TypeRef struct {
	Name     string     // "Int", "List", "Identifier", struct/enum name
	TypeArgs []*TypeRef // e.g. []*TypeRef{{Name:"Int"}} for List<Int>

	IsRef  bool     // &T or &mut T
	RefMut bool     // &mut T
	Inner  *TypeRef // referent for IsRef

	IsTuple bool       // (T, U, ...)
	Elems   []*TypeRef // tuple element types

	IsFunc   bool       // fn(T, ...) returns U
	FnParams []*TypeRef
	FnReturn *TypeRef

	Line   int
	Column int
}

func (t *TypeRef) Pos() (int, int) { return t.Line, t.Column }

// Block represents a block of statements
type Block struct {
	Statements []Statement
	Line       int
	Column     int
}

func (b *Block) Pos() (int, int) { return b.Line, b.Column }
func (b *Block) stmtNode()       {}

// LetStmt represents a let statement
type LetStmt struct {
	Name    string
	Mutable bool
	Type    *TypeRef
	Value   Expression
	Line    int
	Column  int
}

func (l *LetStmt) Pos() (int, int) { return l.Line, l.Column }
func (l *LetStmt) stmtNode()       {}

// AssignStmt represents an assignment statement
type AssignStmt struct {
	Target Expression
	Value  Expression
	Line   int
	Column int
}

func (a *AssignStmt) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignStmt) stmtNode()       {}

// ReplaceStmt represents a whole-node replacement:
//
//	replace node = expr;
//
// Only legal on the visited node parameter of a visitor.
type ReplaceStmt struct {
	Target string // name of the binding being replaced
	Value  Expression
	Line   int
	Column int
}

func (r *ReplaceStmt) Pos() (int, int) { return r.Line, r.Column }
func (r *ReplaceStmt) stmtNode()       {}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Value  Expression
	Line   int
	Column int
}

func (r *ReturnStmt) Pos() (int, int) { return r.Line, r.Column }
func (r *ReturnStmt) stmtNode()       {}

// IfStmt represents an if statement
type IfStmt struct {
	Condition Expression
	Then      *Block
	Else      Statement
	Line      int
	Column    int
}

func (i *IfStmt) Pos() (int, int) { return i.Line, i.Column }
func (i *IfStmt) stmtNode()       {}

// WhileStmt represents a while statement
type WhileStmt struct {
	Condition Expression
	Body      *Block
	Line      int
	Column    int
}

func (w *WhileStmt) Pos() (int, int) { return w.Line, w.Column }
func (w *WhileStmt) stmtNode()       {}

// ForInStmt represents a for-in loop: for <variable> in <iterable> { ... }
type ForInStmt struct {
	Variable string     // loop variable name
	Iterable Expression // list expression or RangeExpr
	Body     *Block
	Line     int
	Column   int
}

func (f *ForInStmt) Pos() (int, int) { return f.Line, f.Column }
func (f *ForInStmt) stmtNode()       {}

// BreakStmt represents a break statement
type BreakStmt struct {
	Line   int
	Column int
}

func (b *BreakStmt) Pos() (int, int) { return b.Line, b.Column }
func (b *BreakStmt) stmtNode()       {}

// ContinueStmt represents a continue statement
type ContinueStmt struct {
	Line   int
	Column int
}

func (c *ContinueStmt) Pos() (int, int) { return c.Line, c.Column }
func (c *ContinueStmt) stmtNode()       {}

// ExprStmt represents an expression statement
type ExprStmt struct {
	Expr   Expression
	Line   int
	Column int
}

func (e *ExprStmt) Pos() (int, int) { return e.Line, e.Column }
func (e *ExprStmt) stmtNode()       {}

// MatchStmt represents a structural match statement
type MatchStmt struct {
	Scrutinee Expression
	Arms      []*MatchArm
	Line      int
	Column    int
}

func (m *MatchStmt) Pos() (int, int) { return m.Line, m.Column }
func (m *MatchStmt) stmtNode()       {}

// MatchArm represents an arm in a match statement
type MatchArm struct {
	Pattern *MatchPattern
	Body    *Block
	Line    int
	Column  int
}

func (m *MatchArm) Pos() (int, int) { return m.Line, m.Column }

// MatchPattern represents a pattern in a match arm. A pattern is either a
// wildcard, a plain binding, or a tag pattern with optional positional or
// named-field sub-patterns.
type MatchPattern struct {
	IsWildcard bool   // "_"
	IsBinding  bool   // lowercase identifier binding the whole scrutinee
	Name       string // binding name when IsBinding

	Tag        string           // variant or category name, e.g. "Some", "Identifier"
	Positional []*MatchPattern  // Some(p), Ok(p), user variants
	Fields     []*FieldPattern  // Identifier{text: t}
	Line       int
	Column     int
}

func (m *MatchPattern) Pos() (int, int) { return m.Line, m.Column }

// FieldPattern represents a named field sub-pattern inside a tag pattern
type FieldPattern struct {
	Name    string
	Pattern *MatchPattern
	Line    int
	Column  int
}

func (f *FieldPattern) Pos() (int, int) { return f.Line, f.Column }

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	Left   Expression
	Op     lexer.TokenType
	Right  Expression
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()       {}

// UnaryExpr represents a unary expression (not, -)
type UnaryExpr struct {
	Op      lexer.TokenType
	Operand Expression
	Line    int
	Column  int
}

func (u *UnaryExpr) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpr) exprNode()       {}

// BorrowExpr represents &expr or &mut expr
type BorrowExpr struct {
	Mutable bool
	Operand Expression
	Line    int
	Column  int
}

func (b *BorrowExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BorrowExpr) exprNode()       {}

// DerefExpr represents *expr
type DerefExpr struct {
	Operand Expression
	Line    int
	Column  int
}

func (d *DerefExpr) Pos() (int, int) { return d.Line, d.Column }
func (d *DerefExpr) exprNode()       {}

// OwnExpr represents the explicit owning extraction: own expr
type OwnExpr struct {
	Operand Expression
	Line    int
	Column  int
}

func (o *OwnExpr) Pos() (int, int) { return o.Line, o.Column }
func (o *OwnExpr) exprNode()       {}

// CallExpr represents a function call or an enum-variant construction;
// which one is decided during checking by name resolution.
type CallExpr struct {
	Function string
	Args     []Expression
	Line     int
	Column   int
}

func (c *CallExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CallExpr) exprNode()       {}

// FieldAccessExpr represents a field access
type FieldAccessExpr struct {
	Object Expression
	Field  string
	Line   int
	Column int
}

func (f *FieldAccessExpr) Pos() (int, int) { return f.Line, f.Column }
func (f *FieldAccessExpr) exprNode()       {}

// IndexExpr represents an index access list[i]
type IndexExpr struct {
	Object Expression
	Index  Expression
	Line   int
	Column int
}

func (i *IndexExpr) Pos() (int, int) { return i.Line, i.Column }
func (i *IndexExpr) exprNode()       {}

// Identifier represents an identifier
type Identifier struct {
	Name   string
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()       {}

// IntLit represents an integer literal
type IntLit struct {
	Value  string
	Line   int
	Column int
}

func (i *IntLit) Pos() (int, int) { return i.Line, i.Column }
func (i *IntLit) exprNode()       {}

// FloatLit represents a float literal
type FloatLit struct {
	Value  string
	Line   int
	Column int
}

func (f *FloatLit) Pos() (int, int) { return f.Line, f.Column }
func (f *FloatLit) exprNode()       {}

// StringLit represents a string literal
type StringLit struct {
	Value  string
	Line   int
	Column int
}

func (s *StringLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StringLit) exprNode()       {}

// BoolLit represents a boolean literal
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()       {}

// NullLit represents the null literal
type NullLit struct {
	Line   int
	Column int
}

func (n *NullLit) Pos() (int, int) { return n.Line, n.Column }
func (n *NullLit) exprNode()       {}

// ListLit represents a list literal [expr, expr, ...]
type ListLit struct {
	Elements []Expression
	Line     int
	Column   int
}

func (l *ListLit) Pos() (int, int) { return l.Line, l.Column }
func (l *ListLit) exprNode()       {}

// TupleLit represents a tuple literal (expr, expr, ...)
type TupleLit struct {
	Elements []Expression
	Line     int
	Column   int
}

func (t *TupleLit) Pos() (int, int) { return t.Line, t.Column }
func (t *TupleLit) exprNode()       {}

// StructLit represents a struct or node literal Name{field: expr, ...}
type StructLit struct {
	Name   string
	Fields []*FieldInit
	Line   int
	Column int
}

func (s *StructLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StructLit) exprNode()       {}

// FieldInit represents a field initializer inside a struct literal
type FieldInit struct {
	Name   string
	Value  Expression
	Line   int
	Column int
}

func (f *FieldInit) Pos() (int, int) { return f.Line, f.Column }

// RangeExpr represents an integer range: start..end (exclusive)
type RangeExpr struct {
	Start  Expression
	End    Expression
	Line   int
	Column int
}

func (r *RangeExpr) Pos() (int, int) { return r.Line, r.Column }
func (r *RangeExpr) exprNode()       {}
