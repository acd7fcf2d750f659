package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphlang/morphc/internal/schema"
)

func TestAssignableReflexive(t *testing.T) {
	types := []*Type{
		TypeString, TypeInt, TypeUint, TypeFloat, TypeBool, TypeUnit,
		NewList(TypeInt),
		NewOption(TypeString),
		NewResult(TypeInt, TypeString),
		NewMap(TypeString, TypeInt),
		NewRef(true, NewNode("Expr")),
		NewTuple([]*Type{TypeInt, TypeString}),
	}
	for _, ty := range types {
		assert.True(t, Assignable(ty, ty), "type %s should be assignable to itself", ty.String())
	}
}

func TestAssignableNullToOption(t *testing.T) {
	assert.True(t, Assignable(TypeNull, NewOption(TypeInt)))
	assert.True(t, Assignable(TypeNull, NewOption(NewNode("Expr"))))
	assert.False(t, Assignable(TypeNull, TypeInt))
	assert.False(t, Assignable(TypeNull, NewList(TypeInt)))
}

func TestAssignableIntToFloatOneWay(t *testing.T) {
	assert.True(t, Assignable(TypeInt, TypeFloat))
	assert.False(t, Assignable(TypeFloat, TypeInt))
	assert.False(t, Assignable(TypeUint, TypeFloat))
}

func TestAssignableRefWidening(t *testing.T) {
	node := NewNode("Expr")
	// &mut T flows into &T, never the other way.
	assert.True(t, Assignable(NewRef(true, node), NewRef(false, node)))
	assert.False(t, Assignable(NewRef(false, node), NewRef(true, node)))
	// Referents must be the same type.
	assert.False(t, Assignable(NewRef(true, NewNode("Expr")), NewRef(false, NewNode("Stmt"))))
}

func TestAssignableNominal(t *testing.T) {
	point := NewStruct(&StructInfo{Name: "Point", Fields: map[string]*Type{"x": TypeInt}})
	coord := NewStruct(&StructInfo{Name: "Coord", Fields: map[string]*Type{"x": TypeInt}})
	// Identical shape, different names: never assignable.
	assert.False(t, Assignable(point, coord))
	assert.False(t, Assignable(coord, point))
	assert.True(t, Assignable(point, point))
}

func TestAssignableUnknownAbsorbs(t *testing.T) {
	assert.True(t, Assignable(TypeUnknown, TypeInt))
	assert.True(t, Assignable(TypeInt, TypeUnknown))
	assert.True(t, Assignable(NewList(TypeUnknown), NewList(TypeString)))
}

func TestAssignableNever(t *testing.T) {
	assert.True(t, Assignable(TypeNever, TypeInt))
	assert.True(t, Assignable(TypeNever, NewOption(TypeString)))
	assert.False(t, Assignable(TypeInt, TypeNever))
}

func TestAssignableContainersRecurse(t *testing.T) {
	assert.True(t, Assignable(NewList(TypeNull), NewList(NewOption(TypeInt))))
	assert.False(t, Assignable(NewList(TypeInt), NewList(TypeString)))
	assert.True(t, Assignable(NewOption(TypeInt), NewOption(TypeFloat)))
	assert.False(t, Assignable(NewMap(TypeString, TypeInt), NewMap(TypeInt, TypeInt)))
}

func TestResolveSchemaType(t *testing.T) {
	tables, err := schema.Load()
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
	}{
		{"String", "String"},
		{"Int", "Int"},
		{"Float", "Float"},
		{"Num", "Float"},
		{"Expr", "Expr"},
		{"List<Expr>", "List<Expr>"},
		{"Option<BlockStmt>", "Option<BlockStmt>"},
		{"Map<String, Int>", "Map<String, Int>"},
		{"List<Option<Expr>>", "List<Option<Expr>>"},
	}
	for _, tt := range tests {
		got := ResolveSchemaType(tt.input, tables)
		assert.Equal(t, tt.want, got.String(), "resolving %q", tt.input)
	}

	assert.True(t, ResolveSchemaType("Bogus", tables).IsUnknown())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "&mut Expr", NewRef(true, NewNode("Expr")).String())
	assert.Equal(t, "&Expr", NewRef(false, NewNode("Expr")).String())
	assert.Equal(t, "Result<Int, String>", NewResult(TypeInt, TypeString).String())
	assert.Equal(t, "(Int, String)", NewTuple([]*Type{TypeInt, TypeString}).String())
	assert.Equal(t, "?T42", (&Type{Kind: KindVar, ID: 42}).String())
}

func TestEqualNominal(t *testing.T) {
	assert.True(t, NewNode("Expr").Equal(NewNode("Expr")))
	assert.False(t, NewNode("Expr").Equal(NewNode("Stmt")))
	assert.False(t, NewNode("Identifier").Equal(NewStruct(&StructInfo{Name: "Identifier"})))
}
