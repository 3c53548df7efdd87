package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapion/pkg/ion"
)

func TestBodyBuilder_FlattensNestedStructure(t *testing.T) {
	sig := MustSignature(NewParameter("who", EncodingTagged, ZeroOrMore, RestAllowed))

	b := NewBodyBuilder(sig)
	b.BeginSExp()
	b.Symbol("hello")
	b.Variable("who")
	b.End()

	body, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, body.Validate())

	require.Equal(t, 3, body.Len())
	assert.Equal(t, NewExprRange(0, 3), body.ExprAt(0).SubtreeRange())
	assert.Equal(t, NewExprRange(1, 2), body.ExprAt(1).SubtreeRange())

	idx, ok := body.ExprAt(2).VariableIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// The built body compiles into a lazily evaluable template: a single
	// unannotated s-expression root.
	tmpl, err := NewTemplate("greet", sig, body)
	require.NoError(t, err)
	assert.True(t, tmpl.ExpansionAnalysis().CanBeLazilyEvaluatedAtTopLevel())
}

// Building set_symbols through the builder must yield the exact flattened
// form the bootstrap constructs by hand.
func TestBodyBuilder_ReproducesSetSymbolsBody(t *testing.T) {
	sig := MustSignature(NewParameter("symbols", EncodingTagged, ZeroOrMore, RestAllowed))

	b := NewBodyBuilder(sig)
	b.BeginSExp(ion.NewSymbol("$ion_encoding"))
	b.BeginSExp()
	b.Symbol("symbol_table")
	b.BeginList()
	b.Variable("symbols")
	b.End()
	b.End()
	b.BeginSExp()
	b.Symbol("macro_table")
	b.Symbol("$ion_encoding")
	b.End()
	b.End()

	body, err := b.Build()
	require.NoError(t, err)

	ref, ok := NewTableWithSystemMacros().MacroWithName("set_symbols")
	require.True(t, ok)
	want, ok := ref.TemplateBody()
	require.True(t, ok)

	assert.Equal(t, want.Expressions(), body.Expressions())
	assert.Equal(t, want.AnnotationsStorage(), body.AnnotationsStorage())
}

func TestBodyBuilder_InternsRepeatedAnnotations(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Symbol("a", ion.NewSymbol("$ion_encoding"))
	b.Symbol("b", ion.NewSymbol("$ion_encoding"))
	b.Symbol("c", ion.NewSymbol("other"))

	body, err := b.Build()
	require.NoError(t, err)

	// Storage holds each distinct sequence once.
	assert.Equal(t, []ion.Symbol{
		ion.NewSymbol("$ion_encoding"),
		ion.NewSymbol("other"),
	}, body.AnnotationsStorage())

	first, _ := body.ExprAt(0).Element()
	second, _ := body.ExprAt(1).Element()
	third, _ := body.ExprAt(2).Element()
	assert.Equal(t, first.AnnotationsRange(), second.AnnotationsRange())
	assert.NotEqual(t, first.AnnotationsRange(), third.AnnotationsRange())
}

func TestBodyBuilder_MultiSymbolAnnotationSequences(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Int(1, ion.NewSymbol("x"), ion.NewSymbol("y"))
	b.Int(2, ion.NewSymbol("x"))

	body, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, body.Validate())

	// "x,y" and "x" are distinct sequences even though they overlap.
	first, _ := body.ExprAt(0).Element()
	assert.Equal(t, 2, first.AnnotationsRange().Len())
	second, _ := body.ExprAt(1).Element()
	assert.Equal(t, 1, second.AnnotationsRange().Len())
	assert.Len(t, body.AnnotationsStorage(), 3)
}

func TestBodyBuilder_ScalarAppends(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Null(ion.TimestampType)
	b.Bool(true)
	b.Int(-7)
	b.Float(0.5)
	b.String("text")

	body, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, body.Validate())
	require.Equal(t, 5, body.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, body.Roots())

	null, _ := body.ExprAt(0).Element()
	assert.True(t, null.Value().IsNull())
	assert.Equal(t, ion.TimestampType, null.Value().Type())
}

func TestBodyBuilder_Value(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Value(SymbolValue(ion.NewSymbol("sym")), ion.NewSymbol("ann"))
	b.Value(IntValue(3))

	body, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, 2, body.Len())

	elem, _ := body.ExprAt(0).Element()
	assert.True(t, elem.HasAnnotations())
}

func TestBodyBuilder_ValueRejectsContainers(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Value(SExpValue())

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be opened with Begin")
}

func TestBodyBuilder_UnknownParameter(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Variable("missing")

	_, err := b.Build()
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, err.Error(), `no parameter named "missing"`)
}

func TestBodyBuilder_VariableIndexOutOfRange(t *testing.T) {
	b := NewBodyBuilder(MustSignature(NewParameter("only", EncodingTagged, ExactlyOne, RestNotAllowed)))
	b.VariableAt(1)

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestBodyBuilder_EndWithoutOpenContainer(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Int(1)
	b.End()

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "End without an open container")
}

func TestBodyBuilder_UnclosedContainer(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.BeginList()
	b.Int(1)

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "left open")
}

func TestBodyBuilder_FirstErrorWins(t *testing.T) {
	b := NewBodyBuilder(MustSignature())
	b.Variable("missing")
	b.End()

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no parameter named "missing"`)
}
