package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

func systemRef(t *testing.T, name string) macro.Ref {
	t.Helper()
	ref, ok := macro.NewTableWithSystemMacros().MacroWithName(name)
	require.True(t, ok, "system macro %q should exist", name)
	return ref
}

func TestKindTitle(t *testing.T) {
	tests := []struct {
		kind macro.Kind
		want string
	}{
		{macro.KindTemplate, "Template"},
		{macro.KindMakeString, "Make String"},
		{macro.KindExprGroup, "Expr Group"},
		{macro.KindNone, "None"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, kindTitle(tt.kind))
	}
}

func TestBodyTreeLines_SetSymbols(t *testing.T) {
	ref := systemRef(t, "set_symbols")
	body, ok := ref.TemplateBody()
	require.True(t, ok)

	lines := bodyTreeLines(body, ref.Signature())
	assert.Equal(t, []string{
		"$ion_encoding::sexp",
		"  sexp",
		"    symbol_table",
		"    list",
		"      variable symbols",
		"  sexp",
		"    macro_table",
		"    $ion_encoding",
	}, lines)
}

func TestBodyTreeLines_Values(t *testing.T) {
	ref := systemRef(t, "values")
	body, ok := ref.TemplateBody()
	require.True(t, ok)

	lines := bodyTreeLines(body, ref.Signature())
	assert.Equal(t, []string{"variable expr_group"}, lines)
}

func TestRenderEntries_JSON(t *testing.T) {
	var buf, errBuf bytes.Buffer
	r := output.NewRenderer(&buf, &errBuf, output.ModeJSON)

	table := macro.NewTableWithSystemMacros()
	var entries []output.MacroEntry
	for _, ref := range table.AllMacros() {
		entries = append(entries, output.NewMacroEntry(ref, ""))
	}

	require.NoError(t, renderEntries(r, "Macros", entries))

	var payload output.ListOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, macro.NumSystemMacros, payload.Summary.Total)
	assert.Equal(t, macro.NumSystemMacros, payload.Summary.System)
	assert.Equal(t, 0, payload.Summary.User)
	assert.Empty(t, errBuf.String())
}

func TestRenderEntries_Markdown(t *testing.T) {
	var buf, errBuf bytes.Buffer
	r := output.NewRenderer(&buf, &errBuf, output.ModeMarkdown)

	ref := systemRef(t, "make_string")
	entries := []output.MacroEntry{output.NewMacroEntry(ref, "")}

	require.NoError(t, renderEntries(r, "Macros", entries))

	out := buf.String()
	assert.Contains(t, out, "# Macros")
	assert.Contains(t, out, "| Address | Name | Kind | Signature | Lazy |")
	assert.Contains(t, out, "make_string")
	assert.Contains(t, out, "(1 macros)")
}

func TestRenderMacroDetail_Markdown(t *testing.T) {
	var buf, errBuf bytes.Buffer
	r := output.NewRenderer(&buf, &errBuf, output.ModeMarkdown)

	require.NoError(t, renderMacroDetail(r, systemRef(t, "make_string"), ""))

	out := buf.String()
	assert.Contains(t, out, "# make_string")
	assert.Contains(t, out, "- **Kind:** Make String")
	assert.Contains(t, out, "- **Origin:** system")
	assert.Contains(t, out, "text_values")
	assert.Contains(t, out, "exactly one value")
	assert.Contains(t, out, "lazily evaluable at top level")
	assert.Contains(t, out, "- **Produces:** string")
}

func TestRenderMacroDetail_SetSymbolsTraits(t *testing.T) {
	var buf, errBuf bytes.Buffer
	r := output.NewRenderer(&buf, &errBuf, output.ModeText)

	require.NoError(t, renderMacroDetail(r, systemRef(t, "set_symbols"), ""))

	out := buf.String()
	assert.Contains(t, out, "could produce a system value")
	assert.Contains(t, out, "sexp with 1 annotation(s)")
	assert.Contains(t, out, "Template body:")
	assert.Contains(t, out, "variable symbols")
}

func TestRenderMacroDetail_JSON(t *testing.T) {
	var buf, errBuf bytes.Buffer
	r := output.NewRenderer(&buf, &errBuf, output.ModeJSON)

	require.NoError(t, renderMacroDetail(r, systemRef(t, "none"), ""))

	var entry output.MacroEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "none", entry.Name)
	assert.Equal(t, 0, entry.Address)
	assert.True(t, entry.System)
	assert.Zero(t, entry.BodyExprs)
}
