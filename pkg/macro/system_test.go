package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapion/pkg/ion"
)

func TestSystemTable_FixedLayout(t *testing.T) {
	table := NewTableWithSystemMacros()
	require.Equal(t, NumSystemMacros, table.Len())

	tests := []struct {
		address int
		name    string
		kind    Kind
	}{
		{0, "none", KindNone},
		{1, "values", KindTemplate},
		{2, "make_string", KindMakeString},
		{3, "make_sexp", KindMakeSExp},
		{4, "annotate", KindAnnotate},
		{5, "set_symbols", KindTemplate},
		{6, "add_symbols", KindTemplate},
		{7, "set_macros", KindTemplate},
		{8, "add_macros", KindTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := table.MacroAtAddress(tt.address)
			require.True(t, ok, "address %d", tt.address)

			name, named := ref.Name()
			require.True(t, named)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.kind, ref.Kind())

			// Name lookup round-trips to the same address.
			byName, ok := table.MacroWithName(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.address, byName.Address())
			assert.Same(t, ref.Macro(), byName.Macro())
		})
	}
}

func TestSystemTable_MakeString(t *testing.T) {
	table := NewTableWithSystemMacros()

	ref, ok := table.MacroWithName("make_string")
	require.True(t, ok)
	assert.Equal(t, KindMakeString, ref.Kind())

	sig := ref.Signature()
	require.Equal(t, 1, sig.Len())
	assert.Equal(t, ZeroOrMore, sig.At(0).Cardinality())
	assert.True(t, sig.At(0).AllowsRest())

	s, ok := ref.ExpansionAnalysis().ExpansionSingleton()
	require.True(t, ok)
	assert.False(t, s.IsNull())
	assert.Equal(t, ion.StringType, s.IonType())
	assert.Equal(t, 0, s.NumAnnotations())
	assert.True(t, ref.Macro().CanBeLazilyEvaluatedAtTopLevel())
}

func TestSystemTable_None(t *testing.T) {
	table := NewTableWithSystemMacros()

	ref, ok := table.MacroWithName("none")
	require.True(t, ok)
	assert.Equal(t, 0, ref.Signature().Len())

	a := ref.ExpansionAnalysis()
	assert.False(t, a.CouldProduceSystemValue())
	assert.False(t, a.MustProduceExactlyOneValue())
	assert.False(t, a.CanBeLazilyEvaluatedAtTopLevel(), "zero values cannot back a deferred handle")
}

func TestSystemTable_Annotate(t *testing.T) {
	table := NewTableWithSystemMacros()

	ref, ok := table.MacroWithName("annotate")
	require.True(t, ok)

	sig := ref.Signature()
	require.Equal(t, 2, sig.Len())
	assert.Equal(t, "annotations", sig.At(0).Name())
	assert.Equal(t, ZeroOrMore, sig.At(0).Cardinality())
	assert.False(t, sig.At(0).AllowsRest())
	assert.Equal(t, "value_to_annotate", sig.At(1).Name())
	assert.Equal(t, ExactlyOne, sig.At(1).Cardinality())

	a := ref.ExpansionAnalysis()
	assert.True(t, a.CouldProduceSystemValue())
	assert.True(t, a.MustProduceExactlyOneValue())
	assert.False(t, a.CanBeLazilyEvaluatedAtTopLevel())
	_, ok = a.ExpansionSingleton()
	assert.False(t, ok, "output type depends on the annotated value")
}

func TestSystemTable_Values(t *testing.T) {
	table := NewTableWithSystemMacros()

	ref, ok := table.MacroWithName("values")
	require.True(t, ok)
	assert.Equal(t, ConservativeAnalysis(), ref.ExpansionAnalysis())

	body, ok := ref.TemplateBody()
	require.True(t, ok)
	require.Equal(t, 1, body.Len())
	idx, ok := body.ExprAt(0).VariableIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestSystemTable_BodiesSatisfyStructuralInvariants(t *testing.T) {
	table := NewTableWithSystemMacros()

	for _, ref := range table.AllMacros() {
		body, ok := ref.TemplateBody()
		if !ok {
			continue
		}
		name, _ := ref.Name()
		assert.NoError(t, body.Validate(), "system macro %s", name)
	}
}

// The system templates carry hand-authored analyses; deriving them from
// the bodies must agree.
func TestSystemTable_StoredAnalysesMatchDerivation(t *testing.T) {
	table := NewTableWithSystemMacros()

	for _, ref := range table.AllMacros() {
		body, ok := ref.TemplateBody()
		if !ok {
			continue
		}
		name, _ := ref.Name()
		derived := AnalyzeTemplateBody(ref.Signature(), body)
		assert.Equal(t, ref.ExpansionAnalysis(), derived, "system macro %s", name)
	}
}

func TestSystemTable_SetSymbolsBody(t *testing.T) {
	table := NewTableWithSystemMacros()

	ref, ok := table.MacroWithName("set_symbols")
	require.True(t, ok)

	a := ref.ExpansionAnalysis()
	assert.True(t, a.CouldProduceSystemValue())
	s, ok := a.ExpansionSingleton()
	require.True(t, ok)
	assert.Equal(t, ion.SExpType, s.IonType())
	assert.Equal(t, 1, s.NumAnnotations())

	body, ok := ref.TemplateBody()
	require.True(t, ok)
	require.Equal(t, 8, body.Len())

	// The root directive s-expression is annotated $ion_encoding and
	// spans the whole body.
	root, ok := body.ExprAt(0).Element()
	require.True(t, ok)
	assert.Equal(t, ion.SExpType, root.Value().Type())
	assert.Equal(t, NewExprRange(0, 8), body.ExprAt(0).SubtreeRange())
	annotations := body.AnnotationsInRange(root.AnnotationsRange())
	require.Len(t, annotations, 1)
	assert.Equal(t, "$ion_encoding", annotations[0].Text())

	// The symbols variable sits inside the list of the symbol_table
	// clause.
	list := body.ExprAt(3)
	assert.Equal(t, NewExprRange(3, 5), list.SubtreeRange())
	idx, ok := body.ExprAt(4).VariableIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestSystemTable_DirectiveBodyShapes(t *testing.T) {
	table := NewTableWithSystemMacros()

	tests := []struct {
		name          string
		bodyLen       int
		variableIndex int
	}{
		{"set_symbols", 8, 4},
		{"add_symbols", 9, 5},
		{"set_macros", 7, 6},
		{"add_macros", 8, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := table.MacroWithName(tt.name)
			require.True(t, ok)

			body, ok := ref.TemplateBody()
			require.True(t, ok)
			require.Equal(t, tt.bodyLen, body.Len())

			// One root spanning the whole body.
			assert.Equal(t, []int{0}, body.Roots())
			assert.Equal(t, NewExprRange(0, tt.bodyLen), body.ExprAt(0).SubtreeRange())

			// Exactly one variable, at the documented position.
			for i := 0; i < body.Len(); i++ {
				_, isVar := body.ExprAt(i).VariableIndex()
				assert.Equal(t, i == tt.variableIndex, isVar, "expression %d", i)
			}
		})
	}
}

func TestNewTableWithSystemMacros_ClonesShareDefinitions(t *testing.T) {
	first := NewTableWithSystemMacros()
	second := NewTableWithSystemMacros()

	a, ok := first.MacroWithName("set_symbols")
	require.True(t, ok)
	b, ok := second.MacroWithName("set_symbols")
	require.True(t, ok)
	assert.Same(t, a.Macro(), b.Macro(), "clones share the compiled definitions")

	// Appends to one clone never reach another.
	_, err := first.AddMacro(stringTemplate(t, "greet"))
	require.NoError(t, err)
	assert.Equal(t, NumSystemMacros, second.Len())

	third := NewTableWithSystemMacros()
	_, ok = third.MacroWithName("greet")
	assert.False(t, ok)
}

func TestSystemTable_FirstUserMacroID(t *testing.T) {
	table := NewTableWithSystemMacros()

	addr, err := table.AddMacro(stringTemplate(t, "greet"))
	require.NoError(t, err)
	assert.Equal(t, FirstUserMacroID, addr)

	ref, ok := table.MacroWithID(AddressID(FirstUserMacroID))
	require.True(t, ok)
	name, _ := ref.Name()
	assert.Equal(t, "greet", name)
}

func TestSystemTable_UserMacroMayNotShadowSystemName(t *testing.T) {
	table := NewTableWithSystemMacros()

	_, err := table.AddMacro(stringTemplate(t, "make_string"))
	require.Error(t, err)

	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 2, dup.ExistingAddress)
}
