package parser

import (
	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/diagnostic"
	"github.com/morphlang/morphc/internal/lexer"
)

// New creates a new parser
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program AST
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	prog.Module = p.parseModuleDecl()

	// Parse import declarations
	for p.check(lexer.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImportDecl())
	}

	// Parse top-level declarations
	for !p.check(lexer.EOF) {
		isPublic := false
		if p.check(lexer.PUBLIC) {
			p.advance()
			isPublic = true
		}

		switch p.current().Type {
		case lexer.FUNCTION:
			fn := p.parseFunctionDecl()
			fn.IsPublic = isPublic
			prog.Functions = append(prog.Functions, fn)
		case lexer.VISITOR:
			v := p.parseVisitorDecl()
			v.IsPublic = isPublic
			prog.Visitors = append(prog.Visitors, v)
		case lexer.STRUCT:
			st := p.parseStructDecl()
			st.IsPublic = isPublic
			prog.Structs = append(prog.Structs, st)
		case lexer.ENUM:
			enum := p.parseEnumDecl()
			enum.IsPublic = isPublic
			prog.Enums = append(prog.Enums, enum)
		default:
			if isPublic {
				p.diags.Errorf(p.current().Line, p.current().Column,
					"expected function, visitor, struct, or enum after 'public'")
			} else {
				p.diags.Errorf(p.current().Line, p.current().Column,
					"unexpected token %s at top level", p.current().Type)
			}
			startPos := p.pos
			p.synchronize()
			if p.pos == startPos {
				p.advance() // ensure forward progress to avoid infinite loop
			}
		}
	}
	return prog
}

// parseModuleDecl parses: module <name> version "<version>";
func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	tok := p.expect(lexer.MODULE)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.VERSION)
	version := p.expect(lexer.STRING_LIT)
	p.expect(lexer.SEMICOLON)

	return &ast.ModuleDecl{
		Name:    name.Literal,
		Version: version.Literal,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// parseImportDecl parses: import "path";
func (p *Parser) parseImportDecl() *ast.ImportDecl {
	tok := p.expect(lexer.IMPORT)
	pathTok := p.expect(lexer.STRING_LIT)
	p.expect(lexer.SEMICOLON)

	return &ast.ImportDecl{
		Path:   pathTok.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseFunctionDecl parses: function name(params) [returns Type] { ... }
func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	tok := p.expect(lexer.FUNCTION)
	name := p.expect(lexer.IDENT)

	p.expect(lexer.LPAREN)
	params := p.parseParamList()
	p.expect(lexer.RPAREN)

	var returnType *ast.TypeRef
	if p.match(lexer.RETURNS) {
		returnType = p.parseTypeRef()
	}

	body := p.parseBlock()

	return &ast.FunctionDecl{
		Name:       name.Literal,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Line:       tok.Line,
		Column:     tok.Column,
	}
}

// parseVisitorDecl parses: visitor Name on Category(param) { ... }
func (p *Parser) parseVisitorDecl() *ast.VisitorDecl {
	tok := p.expect(lexer.VISITOR)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.ON)
	category := p.expect(lexer.IDENT)
	p.expect(lexer.LPAREN)
	param := p.expect(lexer.IDENT)
	p.expect(lexer.RPAREN)

	body := p.parseBlock()

	return &ast.VisitorDecl{
		Name:     name.Literal,
		Category: category.Literal,
		Param:    param.Literal,
		Body:     body,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseStructDecl parses: struct Name { field: Type; ... }
func (p *Parser) parseStructDecl() *ast.StructDecl {
	tok := p.expect(lexer.STRUCT)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	var fields []*ast.FieldDecl
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		fields = append(fields, p.parseFieldDecl())
	}
	p.expect(lexer.RBRACE)

	return &ast.StructDecl{
		Name:   name.Literal,
		Fields: fields,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseFieldDecl parses: name: Type;
func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	name := p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	fieldType := p.parseTypeRef()
	p.expect(lexer.SEMICOLON)

	return &ast.FieldDecl{
		Name:   name.Literal,
		Type:   fieldType,
		Line:   name.Line,
		Column: name.Column,
	}
}

// parseEnumDecl parses: enum Name { Variant; Variant(field: Type, ...); }
func (p *Parser) parseEnumDecl() *ast.EnumDecl {
	tok := p.expect(lexer.ENUM)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	var variants []*ast.EnumVariant
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		vname := p.expect(lexer.IDENT)
		variant := &ast.EnumVariant{
			Name:   vname.Literal,
			Line:   vname.Line,
			Column: vname.Column,
		}
		if p.match(lexer.LPAREN) {
			variant.Fields = p.parseVariantFields()
			p.expect(lexer.RPAREN)
		}
		p.expect(lexer.SEMICOLON)
		variants = append(variants, variant)
	}
	p.expect(lexer.RBRACE)

	return &ast.EnumDecl{
		Name:     name.Literal,
		Variants: variants,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseVariantFields parses: name: Type, name: Type, ...
func (p *Parser) parseVariantFields() []*ast.FieldDecl {
	var fields []*ast.FieldDecl

	name := p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	fieldType := p.parseTypeRef()
	fields = append(fields, &ast.FieldDecl{
		Name:   name.Literal,
		Type:   fieldType,
		Line:   name.Line,
		Column: name.Column,
	})

	for p.match(lexer.COMMA) {
		name := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		fieldType := p.parseTypeRef()
		fields = append(fields, &ast.FieldDecl{
			Name:   name.Literal,
			Type:   fieldType,
			Line:   name.Line,
			Column: name.Column,
		})
	}

	return fields
}

// parseParamList parses a comma-separated parameter list
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	if p.check(lexer.RPAREN) {
		return params
	}
	params = append(params, p.parseParam())
	for p.match(lexer.COMMA) {
		params = append(params, p.parseParam())
	}
	return params
}

// parseParam parses: name: Type
func (p *Parser) parseParam() *ast.Param {
	name := p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	paramType := p.parseTypeRef()

	return &ast.Param{
		Name:   name.Literal,
		Type:   paramType,
		Line:   name.Line,
		Column: name.Column,
	}
}

// parseTypeRef parses a type annotation: a plain (possibly generic) name,
// a reference &T / &mut T, a tuple (T, U), or a function type
// fn(T, ...) returns U.
func (p *Parser) parseTypeRef() *ast.TypeRef {
	tok := p.current()

	switch tok.Type {
	case lexer.AMP:
		p.advance()
		mut := p.match(lexer.MUT)
		inner := p.parseTypeRef()
		return &ast.TypeRef{
			IsRef:  true,
			RefMut: mut,
			Inner:  inner,
			Line:   tok.Line,
			Column: tok.Column,
		}
	case lexer.LPAREN:
		p.advance()
		var elems []*ast.TypeRef
		if !p.check(lexer.RPAREN) {
			elems = append(elems, p.parseTypeRef())
			for p.match(lexer.COMMA) {
				elems = append(elems, p.parseTypeRef())
			}
		}
		p.expect(lexer.RPAREN)
		return &ast.TypeRef{
			IsTuple: true,
			Elems:   elems,
			Line:    tok.Line,
			Column:  tok.Column,
		}
	case lexer.FN:
		p.advance()
		p.expect(lexer.LPAREN)
		var params []*ast.TypeRef
		if !p.check(lexer.RPAREN) {
			params = append(params, p.parseTypeRef())
			for p.match(lexer.COMMA) {
				params = append(params, p.parseTypeRef())
			}
		}
		p.expect(lexer.RPAREN)
		var ret *ast.TypeRef
		if p.match(lexer.RETURNS) {
			ret = p.parseTypeRef()
		}
		return &ast.TypeRef{
			IsFunc:   true,
			FnParams: params,
			FnReturn: ret,
			Line:     tok.Line,
			Column:   tok.Column,
		}
	case lexer.NULL:
		p.advance()
		return &ast.TypeRef{Name: "Null", Line: tok.Line, Column: tok.Column}
	}

	name := p.expect(lexer.IDENT)
	ref := &ast.TypeRef{
		Name:   name.Literal,
		Line:   name.Line,
		Column: name.Column,
	}

	// Generic type arguments: Name<T, U>
	if p.check(lexer.LT) {
		p.advance()
		ref.TypeArgs = append(ref.TypeArgs, p.parseTypeRef())
		for p.match(lexer.COMMA) {
			ref.TypeArgs = append(ref.TypeArgs, p.parseTypeRef())
		}
		p.expect(lexer.GT)
	}

	return ref
}

// parseBlock parses: { statements }
func (p *Parser) parseBlock() *ast.Block {
	tok := p.expect(lexer.LBRACE)
	block := &ast.Block{
		Line:   tok.Line,
		Column: tok.Column,
	}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	p.expect(lexer.RBRACE)
	return block
}

// parseStatement parses a single statement
func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.REPLACE:
		return p.parseReplaceStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.MATCH:
		return p.parseMatchStmt()
	case lexer.BREAK:
		return p.parseBreakStmt()
	case lexer.CONTINUE:
		return p.parseContinueStmt()
	case lexer.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmtOrAssign()
	}
}

// parseLetStmt parses: let [mut] name [: Type] = expr;
func (p *Parser) parseLetStmt() *ast.LetStmt {
	tok := p.expect(lexer.LET)
	mutable := p.match(lexer.MUT)
	name := p.expect(lexer.IDENT)

	var declType *ast.TypeRef
	if p.match(lexer.COLON) {
		declType = p.parseTypeRef()
	}

	p.expect(lexer.ASSIGN)
	value := p.parseExpression()
	p.expect(lexer.SEMICOLON)

	return &ast.LetStmt{
		Name:    name.Literal,
		Mutable: mutable,
		Type:    declType,
		Value:   value,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// parseReplaceStmt parses: replace name = expr;
func (p *Parser) parseReplaceStmt() *ast.ReplaceStmt {
	tok := p.expect(lexer.REPLACE)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.ASSIGN)
	value := p.parseExpression()
	p.expect(lexer.SEMICOLON)

	return &ast.ReplaceStmt{
		Target: name.Literal,
		Value:  value,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseReturnStmt parses: return [expr];
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.expect(lexer.RETURN)

	var value ast.Expression
	if !p.check(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)

	return &ast.ReturnStmt{
		Value:  value,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseIfStmt parses: if cond { ... } [else { ... } | else if ...]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.expect(lexer.IF)
	cond := p.parseHeaderExpression()
	then := p.parseBlock()

	var elseStmt ast.Statement
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseBlock()
		}
	}

	return &ast.IfStmt{
		Condition: cond,
		Then:      then,
		Else:      elseStmt,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseWhileStmt parses: while cond { ... }
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.expect(lexer.WHILE)
	cond := p.parseHeaderExpression()
	body := p.parseBlock()

	return &ast.WhileStmt{
		Condition: cond,
		Body:      body,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseForStmt parses: for variable in iterable { ... }
func (p *Parser) parseForStmt() *ast.ForInStmt {
	tok := p.expect(lexer.FOR)
	variable := p.expect(lexer.IDENT)
	p.expect(lexer.IN)
	iterable := p.parseForIterable()
	body := p.parseBlock()

	return &ast.ForInStmt{
		Variable: variable.Literal,
		Iterable: iterable,
		Body:     body,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseForIterable parses the iterable of a for-in loop, which may be a
// range expression start..end
func (p *Parser) parseForIterable() ast.Expression {
	old := p.noStructLit
	p.noStructLit = true
	start := p.parseExpression()

	if p.check(lexer.DOTDOT) {
		dotdot := p.advance()
		end := p.parseExpression()
		p.noStructLit = old
		return &ast.RangeExpr{
			Start:  start,
			End:    end,
			Line:   dotdot.Line,
			Column: dotdot.Column,
		}
	}

	p.noStructLit = old
	return start
}

// parseMatchStmt parses: match scrutinee { pattern => { ... } ... }
func (p *Parser) parseMatchStmt() *ast.MatchStmt {
	tok := p.expect(lexer.MATCH)
	scrutinee := p.parseHeaderExpression()
	p.expect(lexer.LBRACE)

	var arms []*ast.MatchArm
	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		arms = append(arms, p.parseMatchArm())
		p.match(lexer.COMMA) // optional trailing comma between arms
	}
	p.expect(lexer.RBRACE)

	return &ast.MatchStmt{
		Scrutinee: scrutinee,
		Arms:      arms,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseMatchArm parses: pattern => { ... }
func (p *Parser) parseMatchArm() *ast.MatchArm {
	pattern := p.parseMatchPattern()
	p.expect(lexer.ARROW)
	body := p.parseBlock()

	line, col := pattern.Pos()
	return &ast.MatchArm{
		Pattern: pattern,
		Body:    body,
		Line:    line,
		Column:  col,
	}
}

// parseMatchPattern parses a pattern: wildcard, binding, or tag pattern
// with optional positional or named-field sub-patterns
func (p *Parser) parseMatchPattern() *ast.MatchPattern {
	tok := p.current()

	if tok.Type == lexer.UNDERSCORE {
		p.advance()
		return &ast.MatchPattern{
			IsWildcard: true,
			Line:       tok.Line,
			Column:     tok.Column,
		}
	}

	name := p.expect(lexer.IDENT)
	pat := &ast.MatchPattern{
		Line:   name.Line,
		Column: name.Column,
	}

	// Uppercase leading letter means a tag (variant or category);
	// lowercase means a binding.
	if isUpperStart(name.Literal) {
		pat.Tag = name.Literal
		if p.match(lexer.LPAREN) {
			pat.Positional = append(pat.Positional, p.parseMatchPattern())
			for p.match(lexer.COMMA) {
				pat.Positional = append(pat.Positional, p.parseMatchPattern())
			}
			p.expect(lexer.RPAREN)
		} else if p.match(lexer.LBRACE) {
			pat.Fields = append(pat.Fields, p.parseFieldPattern())
			for p.match(lexer.COMMA) {
				if p.check(lexer.RBRACE) {
					break
				}
				pat.Fields = append(pat.Fields, p.parseFieldPattern())
			}
			p.expect(lexer.RBRACE)
		}
	} else {
		pat.IsBinding = true
		pat.Name = name.Literal
	}

	return pat
}

// parseFieldPattern parses: name: pattern
func (p *Parser) parseFieldPattern() *ast.FieldPattern {
	name := p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	sub := p.parseMatchPattern()

	return &ast.FieldPattern{
		Name:    name.Literal,
		Pattern: sub,
		Line:    name.Line,
		Column:  name.Column,
	}
}

// parseBreakStmt parses: break;
func (p *Parser) parseBreakStmt() *ast.BreakStmt {
	tok := p.expect(lexer.BREAK)
	p.expect(lexer.SEMICOLON)
	return &ast.BreakStmt{Line: tok.Line, Column: tok.Column}
}

// parseContinueStmt parses: continue;
func (p *Parser) parseContinueStmt() *ast.ContinueStmt {
	tok := p.expect(lexer.CONTINUE)
	p.expect(lexer.SEMICOLON)
	return &ast.ContinueStmt{Line: tok.Line, Column: tok.Column}
}

// parseExprStmtOrAssign parses an expression statement or an assignment
func (p *Parser) parseExprStmtOrAssign() ast.Statement {
	tok := p.current()
	expr := p.parseExpression()

	if p.check(lexer.ASSIGN) {
		p.advance()
		value := p.parseExpression()
		p.expect(lexer.SEMICOLON)
		return &ast.AssignStmt{
			Target: expr,
			Value:  value,
			Line:   tok.Line,
			Column: tok.Column,
		}
	}

	p.expect(lexer.SEMICOLON)
	return &ast.ExprStmt{
		Expr:   expr,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// Expression parsing - precedence climbing

// Precedence levels (lowest to highest):
// 1. or           (left-associative)
// 2. and          (left-associative)
// 3. == !=        (left-associative)
// 4. < > <= >=    (left-associative)
// 5. + -          (left-associative)
// 6. * / %        (left-associative)
// 7. unary (- not own & *)
// 8. postfix (. [] ())

const (
	precNone       = 0
	precOr         = 1
	precAnd        = 2
	precEquality   = 3
	precComparison = 4
	precAdditive   = 5
	precMulti      = 6
	precUnary      = 7
	precPostfix    = 8
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.EQ, lexer.NEQ:
		return precEquality
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precComparison
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMulti
	default:
		return precNone
	}
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parsePrecedence(precOr)
}

// parseHeaderExpression parses the condition or scrutinee of a
// statement whose body is a brace block; struct literals are disabled
// so the block brace is not swallowed.
func (p *Parser) parseHeaderExpression() ast.Expression {
	old := p.noStructLit
	p.noStructLit = true
	expr := p.parseExpression()
	p.noStructLit = old
	return expr
}

func (p *Parser) parsePrecedence(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec < minPrec {
			break
		}

		op := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryExpr{
			Left:   left,
			Op:     op.Type,
			Right:  right,
			Line:   op.Line,
			Column: op.Column,
		}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.MINUS, lexer.NOT:
		op := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Op:      op.Type,
			Operand: operand,
			Line:    op.Line,
			Column:  op.Column,
		}
	case lexer.AMP:
		p.advance()
		mut := p.match(lexer.MUT)
		operand := p.parseUnary()
		return &ast.BorrowExpr{
			Mutable: mut,
			Operand: operand,
			Line:    tok.Line,
			Column:  tok.Column,
		}
	case lexer.STAR:
		p.advance()
		operand := p.parseUnary()
		return &ast.DerefExpr{
			Operand: operand,
			Line:    tok.Line,
			Column:  tok.Column,
		}
	case lexer.OWN:
		p.advance()
		operand := p.parseUnary()
		return &ast.OwnExpr{
			Operand: operand,
			Line:    tok.Line,
			Column:  tok.Column,
		}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	line, col := expr.Pos()

	for {
		if p.check(lexer.LBRACKET) {
			// Index access: expr[index]
			p.advance() // consume '['
			index := p.parseExpression()
			p.expect(lexer.RBRACKET)
			expr = &ast.IndexExpr{
				Object: expr,
				Index:  index,
				Line:   line,
				Column: col,
			}
		} else if p.check(lexer.DOT) {
			p.advance()
			name := p.expect(lexer.IDENT)
			expr = &ast.FieldAccessExpr{
				Object: expr,
				Field:  name.Literal,
				Line:   name.Line,
				Column: name.Column,
			}
		} else {
			break
		}
	}

	return expr
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.FLOAT_LIT:
		p.advance()
		return &ast.FloatLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.NULL:
		p.advance()
		return &ast.NullLit{Line: tok.Line, Column: tok.Column}
	case lexer.IDENT:
		p.advance()
		if p.check(lexer.LPAREN) {
			// function call or enum-variant construction
			p.advance()
			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			return &ast.CallExpr{
				Function: tok.Literal,
				Args:     args,
				Line:     tok.Line,
				Column:   tok.Column,
			}
		}
		if p.check(lexer.LBRACE) && !p.noStructLit && isUpperStart(tok.Literal) {
			return p.parseStructLit(tok)
		}
		return &ast.Identifier{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		if p.check(lexer.COMMA) {
			elements := []ast.Expression{expr}
			for p.match(lexer.COMMA) {
				if p.check(lexer.RPAREN) {
					break
				}
				elements = append(elements, p.parseExpression())
			}
			p.expect(lexer.RPAREN)
			return &ast.TupleLit{
				Elements: elements,
				Line:     tok.Line,
				Column:   tok.Column,
			}
		}
		p.expect(lexer.RPAREN)
		return expr
	case lexer.LBRACKET:
		return p.parseListLit()
	default:
		p.diags.Errorf(tok.Line, tok.Column, "unexpected token %s in expression", tok.Type)
		p.advance()
		return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
	}
}

// parseStructLit parses Name{field: expr, ...}; the name token has
// already been consumed
func (p *Parser) parseStructLit(name lexer.Token) *ast.StructLit {
	p.expect(lexer.LBRACE)

	lit := &ast.StructLit{
		Name:   name.Literal,
		Line:   name.Line,
		Column: name.Column,
	}

	// Struct literal fields never start a header expression, so struct
	// literals nest freely inside field values.
	old := p.noStructLit
	p.noStructLit = false

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		fname := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		value := p.parseExpression()
		lit.Fields = append(lit.Fields, &ast.FieldInit{
			Name:   fname.Literal,
			Value:  value,
			Line:   fname.Line,
			Column: fname.Column,
		})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)

	p.noStructLit = old
	return lit
}

func (p *Parser) parseArgList() []ast.Expression {
	var args []ast.Expression
	if p.check(lexer.RPAREN) {
		return args
	}

	// Arguments may contain struct literals even inside header
	// expressions.
	old := p.noStructLit
	p.noStructLit = false

	args = append(args, p.parseExpression())
	for p.match(lexer.COMMA) {
		args = append(args, p.parseExpression())
	}

	p.noStructLit = old
	return args
}

func (p *Parser) parseListLit() *ast.ListLit {
	tok := p.expect(lexer.LBRACKET)
	var elements []ast.Expression

	old := p.noStructLit
	p.noStructLit = false

	// Handle empty list: []
	if !p.check(lexer.RBRACKET) {
		elements = append(elements, p.parseExpression())
		for p.match(lexer.COMMA) {
			// Allow trailing comma
			if p.check(lexer.RBRACKET) {
				break
			}
			elements = append(elements, p.parseExpression())
		}
	}
	p.expect(lexer.RBRACKET)

	p.noStructLit = old
	return &ast.ListLit{
		Elements: elements,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

func isUpperStart(s string) bool {
	return len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z'
}
