package ast

import (
	"fmt"
	"strings"

	"github.com/morphlang/morphc/internal/lexer"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *Program:
		sb.WriteString(prefix + "Program\n")
		if n.Module != nil {
			printNode(sb, n.Module, indent+1)
		}
		for _, imp := range n.Imports {
			printNode(sb, imp, indent+1)
		}
		for _, st := range n.Structs {
			printNode(sb, st, indent+1)
		}
		for _, enum := range n.Enums {
			printNode(sb, enum, indent+1)
		}
		for _, fn := range n.Functions {
			printNode(sb, fn, indent+1)
		}
		for _, v := range n.Visitors {
			printNode(sb, v, indent+1)
		}

	case *ModuleDecl:
		sb.WriteString(fmt.Sprintf("%sModule: %s v%s\n", prefix, n.Name, n.Version))

	case *ImportDecl:
		sb.WriteString(fmt.Sprintf("%sImport: %s\n", prefix, n.Path))

	case *StructDecl:
		visibility := ""
		if n.IsPublic {
			visibility = " (public)"
		}
		sb.WriteString(fmt.Sprintf("%sStruct: %s%s\n", prefix, n.Name, visibility))
		for _, f := range n.Fields {
			printNode(sb, f, indent+1)
		}

	case *FieldDecl:
		sb.WriteString(fmt.Sprintf("%s%s: %s\n", prefix, n.Name, typeRefName(n.Type)))

	case *EnumDecl:
		visibility := ""
		if n.IsPublic {
			visibility = " (public)"
		}
		sb.WriteString(fmt.Sprintf("%sEnum: %s%s\n", prefix, n.Name, visibility))
		for _, v := range n.Variants {
			printNode(sb, v, indent+1)
		}

	case *EnumVariant:
		if len(n.Fields) == 0 {
			sb.WriteString(fmt.Sprintf("%s%s (unit variant)\n", prefix, n.Name))
		} else {
			sb.WriteString(fmt.Sprintf("%s%s\n", prefix, n.Name))
			for _, f := range n.Fields {
				printNode(sb, f, indent+1)
			}
		}

	case *FunctionDecl:
		visibility := ""
		if n.IsPublic {
			visibility = " (public)"
		}
		sb.WriteString(fmt.Sprintf("%sFunction: %s%s\n", prefix, n.Name, visibility))

		if len(n.Params) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Params:\n", prefix))
			for _, p := range n.Params {
				printNode(sb, p, indent+2)
			}
		} else {
			sb.WriteString(fmt.Sprintf("%s  Params: none\n", prefix))
		}

		if n.ReturnType != nil {
			sb.WriteString(fmt.Sprintf("%s  Returns: %s\n", prefix, typeRefName(n.ReturnType)))
		}

		if n.Body != nil {
			sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
			printNode(sb, n.Body, indent+2)
		}

	case *VisitorDecl:
		visibility := ""
		if n.IsPublic {
			visibility = " (public)"
		}
		sb.WriteString(fmt.Sprintf("%sVisitor: %s on %s(%s)%s\n", prefix, n.Name, n.Category, n.Param, visibility))
		if n.Body != nil {
			sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
			printNode(sb, n.Body, indent+2)
		}

	case *Param:
		sb.WriteString(fmt.Sprintf("%s%s: %s\n", prefix, n.Name, typeRefName(n.Type)))

	case *Block:
		for _, stmt := range n.Statements {
			printNode(sb, stmt, indent)
		}

	case *LetStmt:
		mutable := ""
		if n.Mutable {
			mutable = " (mut)"
		}
		sb.WriteString(fmt.Sprintf("%sLetStmt: %s%s\n", prefix, n.Name, mutable))
		if n.Type != nil {
			sb.WriteString(fmt.Sprintf("%s  Type: %s\n", prefix, typeRefName(n.Type)))
		}
		if n.Value != nil {
			sb.WriteString(fmt.Sprintf("%s  Value:\n", prefix))
			printNode(sb, n.Value, indent+2)
		}

	case *AssignStmt:
		sb.WriteString(fmt.Sprintf("%sAssignStmt\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Target:\n", prefix))
		printNode(sb, n.Target, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Value:\n", prefix))
		printNode(sb, n.Value, indent+2)

	case *ReplaceStmt:
		sb.WriteString(fmt.Sprintf("%sReplaceStmt: %s\n", prefix, n.Target))
		sb.WriteString(fmt.Sprintf("%s  Value:\n", prefix))
		printNode(sb, n.Value, indent+2)

	case *ReturnStmt:
		sb.WriteString(fmt.Sprintf("%sReturnStmt\n", prefix))
		if n.Value != nil {
			sb.WriteString(fmt.Sprintf("%s  Value:\n", prefix))
			printNode(sb, n.Value, indent+2)
		}

	case *IfStmt:
		sb.WriteString(fmt.Sprintf("%sIfStmt\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Condition:\n", prefix))
		printNode(sb, n.Condition, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Then:\n", prefix))
		printNode(sb, n.Then, indent+2)
		if n.Else != nil {
			sb.WriteString(fmt.Sprintf("%s  Else:\n", prefix))
			printNode(sb, n.Else, indent+2)
		}

	case *WhileStmt:
		sb.WriteString(fmt.Sprintf("%sWhileStmt\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Condition:\n", prefix))
		printNode(sb, n.Condition, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *ForInStmt:
		sb.WriteString(fmt.Sprintf("%sForInStmt: %s\n", prefix, n.Variable))
		sb.WriteString(fmt.Sprintf("%s  Iterable:\n", prefix))
		printNode(sb, n.Iterable, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *MatchStmt:
		sb.WriteString(fmt.Sprintf("%sMatchStmt\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Scrutinee:\n", prefix))
		printNode(sb, n.Scrutinee, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Arms:\n", prefix))
		for _, arm := range n.Arms {
			printNode(sb, arm, indent+2)
		}

	case *MatchArm:
		sb.WriteString(fmt.Sprintf("%sMatchArm\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Pattern: %s\n", prefix, patternString(n.Pattern)))
		sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
		printNode(sb, n.Body, indent+2)

	case *BreakStmt:
		sb.WriteString(fmt.Sprintf("%sBreakStmt\n", prefix))

	case *ContinueStmt:
		sb.WriteString(fmt.Sprintf("%sContinueStmt\n", prefix))

	case *ExprStmt:
		sb.WriteString(fmt.Sprintf("%sExprStmt\n", prefix))
		printNode(sb, n.Expr, indent+1)

	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("%sBinaryExpr: %s\n", prefix, tokenTypeToString(n.Op)))
		sb.WriteString(fmt.Sprintf("%s  Left:\n", prefix))
		printNode(sb, n.Left, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Right:\n", prefix))
		printNode(sb, n.Right, indent+2)

	case *UnaryExpr:
		sb.WriteString(fmt.Sprintf("%sUnaryExpr: %s\n", prefix, tokenTypeToString(n.Op)))
		printNode(sb, n.Operand, indent+1)

	case *BorrowExpr:
		kind := "&"
		if n.Mutable {
			kind = "&mut"
		}
		sb.WriteString(fmt.Sprintf("%sBorrowExpr: %s\n", prefix, kind))
		printNode(sb, n.Operand, indent+1)

	case *DerefExpr:
		sb.WriteString(fmt.Sprintf("%sDerefExpr\n", prefix))
		printNode(sb, n.Operand, indent+1)

	case *OwnExpr:
		sb.WriteString(fmt.Sprintf("%sOwnExpr\n", prefix))
		printNode(sb, n.Operand, indent+1)

	case *CallExpr:
		sb.WriteString(fmt.Sprintf("%sCallExpr: %s\n", prefix, n.Function))
		if len(n.Args) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Args:\n", prefix))
			for _, arg := range n.Args {
				printNode(sb, arg, indent+2)
			}
		} else {
			sb.WriteString(fmt.Sprintf("%s  Args: none\n", prefix))
		}

	case *FieldAccessExpr:
		sb.WriteString(fmt.Sprintf("%sFieldAccessExpr: %s\n", prefix, n.Field))
		sb.WriteString(fmt.Sprintf("%s  Object:\n", prefix))
		printNode(sb, n.Object, indent+2)

	case *IndexExpr:
		sb.WriteString(fmt.Sprintf("%sIndexExpr\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Object:\n", prefix))
		printNode(sb, n.Object, indent+2)
		sb.WriteString(fmt.Sprintf("%s  Index:\n", prefix))
		printNode(sb, n.Index, indent+2)

	case *Identifier:
		sb.WriteString(fmt.Sprintf("%sIdentifier: %s\n", prefix, n.Name))

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sIntLit: %s\n", prefix, n.Value))

	case *FloatLit:
		sb.WriteString(fmt.Sprintf("%sFloatLit: %s\n", prefix, n.Value))

	case *StringLit:
		sb.WriteString(fmt.Sprintf("%sStringLit: %q\n", prefix, n.Value))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBoolLit: %t\n", prefix, n.Value))

	case *NullLit:
		sb.WriteString(fmt.Sprintf("%sNullLit\n", prefix))

	case *ListLit:
		sb.WriteString(fmt.Sprintf("%sListLit (%d elements)\n", prefix, len(n.Elements)))
		for _, el := range n.Elements {
			printNode(sb, el, indent+1)
		}

	case *TupleLit:
		sb.WriteString(fmt.Sprintf("%sTupleLit (%d elements)\n", prefix, len(n.Elements)))
		for _, el := range n.Elements {
			printNode(sb, el, indent+1)
		}

	case *StructLit:
		sb.WriteString(fmt.Sprintf("%sStructLit: %s\n", prefix, n.Name))
		for _, f := range n.Fields {
			sb.WriteString(fmt.Sprintf("%s  %s:\n", prefix, f.Name))
			printNode(sb, f.Value, indent+2)
		}

	case *RangeExpr:
		sb.WriteString(fmt.Sprintf("%sRangeExpr\n", prefix))
		sb.WriteString(fmt.Sprintf("%s  Start:\n", prefix))
		printNode(sb, n.Start, indent+2)
		sb.WriteString(fmt.Sprintf("%s  End:\n", prefix))
		printNode(sb, n.End, indent+2)

	default:
		sb.WriteString(fmt.Sprintf("%sUnknown node type: %T\n", prefix, node))
	}
}

// patternString renders a match pattern compactly on one line.
func patternString(p *MatchPattern) string {
	if p == nil || p.IsWildcard {
		return "_"
	}
	if p.IsBinding {
		return p.Name
	}
	if len(p.Positional) > 0 {
		parts := make([]string, len(p.Positional))
		for i, sub := range p.Positional {
			parts[i] = patternString(sub)
		}
		return fmt.Sprintf("%s(%s)", p.Tag, strings.Join(parts, ", "))
	}
	if len(p.Fields) > 0 {
		parts := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, patternString(f.Pattern))
		}
		return fmt.Sprintf("%s{%s}", p.Tag, strings.Join(parts, ", "))
	}
	return p.Tag
}

// typeRefName renders a type annotation compactly for debug output.
func typeRefName(t *TypeRef) string {
	if t == nil {
		return "Unit"
	}
	if t.IsRef {
		if t.RefMut {
			return "&mut " + typeRefName(t.Inner)
		}
		return "&" + typeRefName(t.Inner)
	}
	if t.IsTuple {
		parts := make([]string, len(t.Elems))
		for i, el := range t.Elems {
			parts[i] = typeRefName(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	if t.IsFunc {
		parts := make([]string, len(t.FnParams))
		for i, p := range t.FnParams {
			parts[i] = typeRefName(p)
		}
		out := "fn(" + strings.Join(parts, ", ") + ")"
		if t.FnReturn != nil {
			out += " returns " + typeRefName(t.FnReturn)
		}
		return out
	}
	if len(t.TypeArgs) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.TypeArgs))
	for i, arg := range t.TypeArgs {
		parts[i] = typeRefName(arg)
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

func tokenTypeToString(tt lexer.TokenType) string {
	switch tt {
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
	case lexer.LEQ:
		return "<="
	case lexer.GT:
		return ">"
	case lexer.GEQ:
		return ">="
	case lexer.AND:
		return "and"
	case lexer.OR:
		return "or"
	case lexer.NOT:
		return "not"
	default:
		return fmt.Sprintf("token(%d)", tt)
	}
}
