package checker

import (
	"strconv"
	"strings"

	"github.com/morphlang/morphc/internal/ast"
	"github.com/morphlang/morphc/internal/schema"
)

// Kind discriminates the closed set of semantic types.
type Kind int

const (
	// KindUnknown is the error-recovery sentinel; it is compatible
	// with every type so one mistake does not cascade.
	KindUnknown Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindUnit
	KindNull
	KindNever
	KindRef
	KindList
	KindOption
	KindResult
	KindMap
	KindSet
	KindTuple
	KindFunc
	KindStruct
	KindEnum
	KindNode
	KindModule
	KindVar
)

// Type represents a type in the Morph type system. The Kind tag decides
// which payload fields are meaningful.
type Type struct {
	Kind    Kind
	Name    string  // struct/enum/node-category/module name
	Mutable bool    // KindRef: &mut T vs &T
	Args    []*Type // type parameters: Ref inner, container elements, tuple elements, func params
	Ret     *Type   // KindFunc return type

	Struct *StructInfo // non-nil for KindStruct
	Enum   *EnumInfo   // non-nil for KindEnum

	ID int // KindVar: inference variable id
}

// StructInfo holds information about a user struct type
type StructInfo struct {
	Name       string
	Fields     map[string]*Type
	FieldOrder []string // preserve declaration order
}

// EnumInfo holds information about a user enum type
type EnumInfo struct {
	Name     string
	Variants []*EnumVariantInfo
}

// EnumVariantInfo holds information about an enum variant
type EnumVariantInfo struct {
	Name   string
	Fields []ParamInfo // empty for unit variants
}

// ParamInfo holds information about a parameter or variant field
type ParamInfo struct {
	Name string
	Type *Type
}

// Builtin types
var (
	TypeString  = &Type{Kind: KindString}
	TypeInt     = &Type{Kind: KindInt}
	TypeUint    = &Type{Kind: KindUint}
	TypeFloat   = &Type{Kind: KindFloat}
	TypeBool    = &Type{Kind: KindBool}
	TypeUnit    = &Type{Kind: KindUnit}
	TypeNull    = &Type{Kind: KindNull}
	TypeNever   = &Type{Kind: KindNever}
	TypeUnknown = &Type{Kind: KindUnknown}
)

// Constructors for the parametric types

func NewRef(mutable bool, inner *Type) *Type {
	return &Type{Kind: KindRef, Mutable: mutable, Args: []*Type{inner}}
}

func NewList(elem *Type) *Type {
	return &Type{Kind: KindList, Args: []*Type{elem}}
}

func NewOption(elem *Type) *Type {
	return &Type{Kind: KindOption, Args: []*Type{elem}}
}

func NewResult(ok, err *Type) *Type {
	return &Type{Kind: KindResult, Args: []*Type{ok, err}}
}

func NewMap(key, value *Type) *Type {
	return &Type{Kind: KindMap, Args: []*Type{key, value}}
}

func NewSet(elem *Type) *Type {
	return &Type{Kind: KindSet, Args: []*Type{elem}}
}

func NewTuple(elems []*Type) *Type {
	return &Type{Kind: KindTuple, Args: elems}
}

func NewFunc(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunc, Args: params, Ret: ret}
}

func NewNode(category string) *Type {
	return &Type{Kind: KindNode, Name: category}
}

func NewStruct(info *StructInfo) *Type {
	return &Type{Kind: KindStruct, Name: info.Name, Struct: info}
}

func NewEnum(info *EnumInfo) *Type {
	return &Type{Kind: KindEnum, Name: info.Name, Enum: info}
}

// Inner returns the single type argument (Ref referent, List/Option/Set
// element), or Unknown if absent.
func (t *Type) Inner() *Type {
	if len(t.Args) > 0 {
		return t.Args[0]
	}
	return TypeUnknown
}

// IsUnknown reports whether the type is the error-recovery sentinel.
func (t *Type) IsUnknown() bool {
	return t == nil || t.Kind == KindUnknown
}

// IsNumeric reports whether the type is one of the numeric scalars.
func (t *Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindUint || t.Kind == KindFloat
}

// Deref strips any number of reference layers.
func (t *Type) Deref() *Type {
	for t != nil && t.Kind == KindRef {
		t = t.Inner()
	}
	if t == nil {
		return TypeUnknown
	}
	return t
}

// ResolveType converts a parsed type annotation into a semantic type.
// Unrecognized names resolve to Unknown rather than failing, so that
// one bad annotation does not cascade; the caller reports the error.
func ResolveType(ref *ast.TypeRef, structs map[string]*StructInfo, enums map[string]*EnumInfo, tables *schema.Tables) *Type {
	if ref == nil {
		return TypeUnknown
	}

	switch {
	case ref.IsRef:
		return NewRef(ref.RefMut, ResolveType(ref.Inner, structs, enums, tables))
	case ref.IsTuple:
		elems := make([]*Type, 0, len(ref.Elems))
		for _, e := range ref.Elems {
			elems = append(elems, ResolveType(e, structs, enums, tables))
		}
		return NewTuple(elems)
	case ref.IsFunc:
		params := make([]*Type, 0, len(ref.FnParams))
		for _, p := range ref.FnParams {
			params = append(params, ResolveType(p, structs, enums, tables))
		}
		ret := TypeUnit
		if ref.FnReturn != nil {
			ret = ResolveType(ref.FnReturn, structs, enums, tables)
		}
		return NewFunc(params, ret)
	}

	resolveArg := func(i int) *Type {
		if i < len(ref.TypeArgs) {
			return ResolveType(ref.TypeArgs[i], structs, enums, tables)
		}
		return TypeUnknown
	}

	switch ref.Name {
	case "String":
		return TypeString
	case "Int":
		return TypeInt
	case "Uint":
		return TypeUint
	case "Float", "Num":
		// Num is the numeric alias for Float
		return TypeFloat
	case "Bool":
		return TypeBool
	case "Unit":
		return TypeUnit
	case "Null":
		return TypeNull
	case "Never":
		return TypeNever
	case "List":
		if len(ref.TypeArgs) != 1 {
			return TypeUnknown
		}
		return NewList(resolveArg(0))
	case "Option":
		if len(ref.TypeArgs) != 1 {
			return TypeUnknown
		}
		return NewOption(resolveArg(0))
	case "Result":
		if len(ref.TypeArgs) != 2 {
			return TypeUnknown
		}
		return NewResult(resolveArg(0), resolveArg(1))
	case "Map":
		if len(ref.TypeArgs) != 2 {
			return TypeUnknown
		}
		return NewMap(resolveArg(0), resolveArg(1))
	case "Set":
		if len(ref.TypeArgs) != 1 {
			return TypeUnknown
		}
		return NewSet(resolveArg(0))
	default:
		if st, ok := structs[ref.Name]; ok {
			return NewStruct(st)
		}
		if en, ok := enums[ref.Name]; ok {
			return NewEnum(en)
		}
		if tables != nil && tables.IsCategory(ref.Name) {
			return NewNode(ref.Name)
		}
		return TypeUnknown
	}
}

// ResolveSchemaType parses a unified type expression from the mapping
// tables (e.g. "Option<Expr>", "List<Stmt>", "String") into a semantic
// type. Node categories come from the tables; there are no user types
// in the schema.
func ResolveSchemaType(s string, tables *schema.Tables) *Type {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeUnknown
	}

	if open := strings.IndexByte(s, '<'); open >= 0 && strings.HasSuffix(s, ">") {
		head := s[:open]
		inner := s[open+1 : len(s)-1]
		args := splitTypeArgs(inner)
		resolve := func(i int) *Type {
			if i < len(args) {
				return ResolveSchemaType(args[i], tables)
			}
			return TypeUnknown
		}
		switch head {
		case "List":
			return NewList(resolve(0))
		case "Option":
			return NewOption(resolve(0))
		case "Result":
			return NewResult(resolve(0), resolve(1))
		case "Map":
			return NewMap(resolve(0), resolve(1))
		case "Set":
			return NewSet(resolve(0))
		default:
			return TypeUnknown
		}
	}

	switch s {
	case "String":
		return TypeString
	case "Int":
		return TypeInt
	case "Uint":
		return TypeUint
	case "Float", "Num":
		return TypeFloat
	case "Bool":
		return TypeBool
	case "Unit":
		return TypeUnit
	}

	if tables != nil && tables.IsCategory(s) {
		return NewNode(s)
	}
	return TypeUnknown
}

// splitTypeArgs splits a comma-separated type-argument list at the top
// nesting level.
func splitTypeArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, s[start:])
	return args
}

// Equal checks structural identity of two types. Nominal types compare
// by name only.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindStruct, KindEnum, KindNode, KindModule:
		return t.Name == other.Name
	case KindRef:
		return t.Mutable == other.Mutable && t.Inner().Equal(other.Inner())
	case KindVar:
		return t.ID == other.ID
	}
	if len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	if (t.Ret == nil) != (other.Ret == nil) {
		return false
	}
	if t.Ret != nil && !t.Ret.Equal(other.Ret) {
		return false
	}
	return true
}

// String returns the surface-syntax representation of the type
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindUnknown:
		return "?"
	case KindString:
		return "String"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindUnit:
		return "Unit"
	case KindNull:
		return "Null"
	case KindNever:
		return "Never"
	case KindRef:
		if t.Mutable {
			return "&mut " + t.Inner().String()
		}
		return "&" + t.Inner().String()
	case KindList:
		return "List<" + t.Inner().String() + ">"
	case KindOption:
		return "Option<" + t.Inner().String() + ">"
	case KindResult:
		if len(t.Args) == 2 {
			return "Result<" + t.Args[0].String() + ", " + t.Args[1].String() + ">"
		}
		return "Result<?, ?>"
	case KindMap:
		if len(t.Args) == 2 {
			return "Map<" + t.Args[0].String() + ", " + t.Args[1].String() + ">"
		}
		return "Map<?, ?>"
	case KindSet:
		return "Set<" + t.Inner().String() + ">"
	case KindTuple:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFunc:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		s := "fn(" + strings.Join(parts, ", ") + ")"
		if t.Ret != nil && t.Ret.Kind != KindUnit {
			s += " returns " + t.Ret.String()
		}
		return s
	case KindStruct, KindEnum, KindNode, KindModule:
		return t.Name
	case KindVar:
		return "?T" + strconv.Itoa(t.ID)
	default:
		return "<invalid>"
	}
}
