package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT      // x, y, myVariable
	INT_LIT    // 123
	FLOAT_LIT  // 123.45
	STRING_LIT // "hello"

	// Keywords
	MODULE
	VERSION
	IMPORT
	PUBLIC
	FUNCTION
	RETURNS
	VISITOR
	ON
	STRUCT
	ENUM
	LET
	MUT
	OWN
	REPLACE
	MATCH
	IF
	ELSE
	WHILE
	FOR
	IN
	RETURN
	BREAK
	CONTINUE
	AND
	OR
	NOT
	TRUE
	FALSE
	NULL
	FN

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	EQ      // ==
	NEQ     // !=
	LT      // <
	GT      // >
	LEQ     // <=
	GEQ     // >=
	ASSIGN  // =
	ARROW   // =>
	AMP     // &

	// Delimiters
	LPAREN     // (
	RPAREN     // )
	LBRACE     // {
	RBRACE     // }
	LBRACKET   // [
	RBRACKET   // ]
	COMMA      // ,
	COLON      // :
	SEMICOLON  // ;
	DOT        // .
	DOTDOT     // ..
	UNDERSCORE // _
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

var keywords = map[string]TokenType{
	"module":   MODULE,
	"version":  VERSION,
	"import":   IMPORT,
	"public":   PUBLIC,
	"function": FUNCTION,
	"returns":  RETURNS,
	"visitor":  VISITOR,
	"on":       ON,
	"struct":   STRUCT,
	"enum":     ENUM,
	"let":      LET,
	"mut":      MUT,
	"own":      OWN,
	"replace":  REPLACE,
	"match":    MATCH,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
	"fn":       FN,
}

// LookupIdent checks if an identifier is a keyword and returns the
// appropriate token type
func LookupIdent(ident string) TokenType {
	if ident == "_" {
		return UNDERSCORE
	}
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case INT_LIT:
		return "INT_LIT"
	case FLOAT_LIT:
		return "FLOAT_LIT"
	case STRING_LIT:
		return "STRING_LIT"
	case MODULE:
		return "MODULE"
	case VERSION:
		return "VERSION"
	case IMPORT:
		return "IMPORT"
	case PUBLIC:
		return "PUBLIC"
	case FUNCTION:
		return "FUNCTION"
	case RETURNS:
		return "RETURNS"
	case VISITOR:
		return "VISITOR"
	case ON:
		return "ON"
	case STRUCT:
		return "STRUCT"
	case ENUM:
		return "ENUM"
	case LET:
		return "LET"
	case MUT:
		return "MUT"
	case OWN:
		return "OWN"
	case REPLACE:
		return "REPLACE"
	case MATCH:
		return "MATCH"
	case IF:
		return "IF"
	case ELSE:
		return "ELSE"
	case WHILE:
		return "WHILE"
	case FOR:
		return "FOR"
	case IN:
		return "IN"
	case RETURN:
		return "RETURN"
	case BREAK:
		return "BREAK"
	case CONTINUE:
		return "CONTINUE"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case NOT:
		return "NOT"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	case FN:
		return "FN"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case STAR:
		return "STAR"
	case SLASH:
		return "SLASH"
	case PERCENT:
		return "PERCENT"
	case EQ:
		return "EQ"
	case NEQ:
		return "NEQ"
	case LT:
		return "LT"
	case GT:
		return "GT"
	case LEQ:
		return "LEQ"
	case GEQ:
		return "GEQ"
	case ASSIGN:
		return "ASSIGN"
	case ARROW:
		return "ARROW"
	case AMP:
		return "AMP"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACE:
		return "LBRACE"
	case RBRACE:
		return "RBRACE"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case COMMA:
		return "COMMA"
	case COLON:
		return "COLON"
	case SEMICOLON:
		return "SEMICOLON"
	case DOT:
		return "DOT"
	case DOTDOT:
		return "DOTDOT"
	case UNDERSCORE:
		return "UNDERSCORE"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}
