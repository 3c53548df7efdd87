package ion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{NullType, "null"},
		{BoolType, "bool"},
		{IntType, "int"},
		{FloatType, "float"},
		{DecimalType, "decimal"},
		{TimestampType, "timestamp"},
		{SymbolType, "symbol"},
		{StringType, "string"},
		{ClobType, "clob"},
		{BlobType, "blob"},
		{ListType, "list"},
		{SExpType, "sexp"},
		{StructType, "struct"},
		{Type(200), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestType_IsContainer(t *testing.T) {
	assert.True(t, ListType.IsContainer())
	assert.True(t, SExpType.IsContainer())
	assert.True(t, StructType.IsContainer())

	assert.False(t, NullType.IsContainer())
	assert.False(t, StringType.IsContainer())
	assert.False(t, SymbolType.IsContainer())
	assert.False(t, IntType.IsContainer())
}

func TestSymbol(t *testing.T) {
	s := NewSymbol("$ion_encoding")
	assert.Equal(t, "$ion_encoding", s.Text())
	assert.Equal(t, "$ion_encoding", s.String())

	// Symbols with equal text compare equal.
	assert.Equal(t, NewSymbol("abc"), NewSymbol("abc"))
	assert.NotEqual(t, NewSymbol("abc"), NewSymbol("abd"))
}

func TestSymbolTexts(t *testing.T) {
	symbols := []Symbol{NewSymbol("a"), NewSymbol("b"), NewSymbol("c")}
	assert.Equal(t, []string{"a", "b", "c"}, SymbolTexts(symbols))
	assert.Empty(t, SymbolTexts(nil))
}
