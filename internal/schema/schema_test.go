package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedTables(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	assert.True(t, tables.IsCategory("Expr"))
	assert.True(t, tables.IsCategory("Identifier"))
	assert.False(t, tables.IsCategory("NoSuchCategory"))
}

func TestCategoryCorrespondences(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	ident, ok := tables.Category("Identifier")
	require.True(t, ok)
	assert.Equal(t, "Identifier", ident.Duck)
	assert.Equal(t, "Ident", ident.Strict)
	assert.False(t, ident.Sum)

	expr, ok := tables.Category("Expr")
	require.True(t, ok)
	assert.True(t, expr.Sum)
}

func TestFieldCorrespondences(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	text, ok := tables.Field("Identifier", "text")
	require.True(t, ok)
	assert.Equal(t, "name", text.Duck)
	assert.Equal(t, "sym", text.Strict.Name)
	assert.True(t, text.Strict.Interned)

	callee, ok := tables.Field("CallExpr", "callee")
	require.True(t, ok)
	kind, err := callee.AccessorKind()
	require.NoError(t, err)
	assert.Equal(t, AccessVariant, kind)
	assert.Equal(t, "Callee::Expr", callee.Strict.Variant)
	assert.True(t, callee.Strict.Boxed)

	left, ok := tables.Field("BinaryExpr", "left")
	require.True(t, ok)
	kind, err = left.AccessorKind()
	require.NoError(t, err)
	assert.Equal(t, AccessIndirect, kind)

	_, ok = tables.Field("Identifier", "nope")
	assert.False(t, ok)
	_, ok = tables.Field("NoSuchCategory", "text")
	assert.False(t, ok)
}

func TestPatternVariantsDependOnContext(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	inExpr, ok := tables.PatternVariant("StringLiteral", "Expr")
	require.True(t, ok)
	assert.Equal(t, "Expr::Lit", inExpr.Variant)
	assert.Equal(t, "Lit::Str", inExpr.Then)

	inProp, ok := tables.PatternVariant("StringLiteral", "PropName")
	require.True(t, ok)
	assert.Equal(t, "PropName::Str", inProp.Variant)
	assert.Empty(t, inProp.Then)

	_, ok = tables.PatternVariant("Identifier", "Stmt")
	assert.False(t, ok, "Identifier has no mapping in statement context")
}

func TestCategoriesDeclarationOrder(t *testing.T) {
	tables, err := Load()
	require.NoError(t, err)

	order := tables.Categories()
	require.NotEmpty(t, order)
	assert.Equal(t, "Expr", order[0], "sum categories come first in the table")
}

func TestLoadFileOverride(t *testing.T) {
	doc := `
categories:
  - name: Expr
    duck: Expression
    strict: Expr
    sum: true
  - name: Widget
    duck: Widget
    strict: Widget
    fields:
      - name: label
        type: String
        duck: label
        strict: {name: label, interned: true}
patterns:
  - {tag: Widget, context: Expr, variant: "Expr::Widget"}
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	tables, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, tables.IsCategory("Widget"))
	rule, ok := tables.PatternVariant("Widget", "Expr")
	require.True(t, ok)
	assert.Equal(t, "Expr::Widget", rule.Variant)
}

func TestLoadFileRejectsBadAccessor(t *testing.T) {
	doc := `
categories:
  - name: Widget
    duck: Widget
    strict: Widget
    fields:
      - name: label
        type: String
        duck: label
        strict: {name: label, accessor: sideways}
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown accessor")
}

func TestLoadFileRejectsDanglingPatternRule(t *testing.T) {
	doc := `
categories:
  - name: Expr
    duck: Expression
    strict: Expr
    sum: true
patterns:
  - {tag: Ghost, context: Expr, variant: "Expr::Ghost"}
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tag")
}

func TestLoadFileRejectsDuplicateCategory(t *testing.T) {
	doc := `
categories:
  - name: Widget
    duck: Widget
    strict: Widget
  - name: Widget
    duck: Widget2
    strict: Widget2
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate category")
}
