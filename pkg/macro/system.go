package macro

import (
	"sync"

	"github.com/leapstack-labs/leapion/pkg/ion"
)

// System table dimensions.
const (
	// NumSystemMacros is the number of entries in the built-in system
	// macro table.
	NumSystemMacros = 9
	// FirstUserMacroID is the address the first user-defined macro
	// receives when added to a system-initialized table.
	FirstUserMacroID = NumSystemMacros
)

// SystemMacroKinds lists the primitive kinds that appear in the system
// table. Template-defined system macros are not listed; they share
// KindTemplate with user macros.
var SystemMacroKinds = []Kind{
	KindNone,
	KindExprGroup,
	KindMakeString,
	KindMakeSExp,
	KindAnnotate,
}

// ionEncodingModule is the annotation that marks an s-expression as an
// encoding directive.
const ionEncodingModule = "$ion_encoding"

// systemTable holds the canonical system macro table, compiled once per
// process. Readers receive clones of it; the macro definitions inside are
// immutable and stay shared across every clone.
var systemTable = sync.OnceValue(constructSystemTable)

// NewTableWithSystemMacros returns a table pre-populated with the fixed
// system macros at addresses 0 through NumSystemMacros-1. Each call
// returns an independent clone backed by the shared definitions.
func NewTableWithSystemMacros() *Table {
	return systemTable().Clone()
}

func constructSystemTable() *Table {
	t := NewEmptyTable()
	for _, m := range compileSystemMacros() {
		t.appendShared(m)
	}
	return t
}

// compileSystemMacros assembles the system macros by direct construction.
// They cannot be compiled from source text: that would require a reader,
// and a reader requires a system macro table to exist first. The template
// bodies below are the pre-flattened equivalents of their definitions.
func compileSystemMacros() []*Macro {
	return []*Macro{
		noneMacro(),
		valuesMacro(),
		makeStringMacro(),
		makeSExpMacro(),
		annotateMacro(),
		setSymbolsMacro(),
		addSymbolsMacro(),
		setMacrosMacro(),
		addMacrosMacro(),
		// Adding a system macro? Update NumSystemMacros.
	}
}

// noneMacro expands to the empty stream. It is not lazily evaluable: a
// deferred single-value handle cannot represent zero values.
func noneMacro() *Macro {
	return NewNamedMacro(
		"none",
		MustSignature(),
		KindNone,
		NewExpansionAnalysis(false, false, false),
	)
}

// valuesMacro is equivalent to:
//
//	(macro values (x*) x)
//
// It is a user-addressable expression group, so nothing can be assumed
// about its output.
func valuesMacro() *Macro {
	return NewMacroFromTemplate(newTemplate(
		"values",
		MustSignature(NewParameter("expr_group", EncodingTagged, ZeroOrMore, RestAllowed)),
		NewTemplateBody(
			[]TemplateBodyExpr{variableExpr(0, 0)},
			nil,
		),
		ConservativeAnalysis(),
	))
}

func makeStringMacro() *Macro {
	return NewNamedMacro(
		"make_string",
		MustSignature(NewParameter("text_values", EncodingTagged, ZeroOrMore, RestAllowed)),
		KindMakeString,
		NewExpansionAnalysis(false, true, true).
			WithSingleton(NewExpansionSingleton(false, ion.StringType, 0)),
	)
}

// makeSExpMacro always yields one unannotated s-expression, which on its
// own can never be a directive; becoming one would require wrapping the
// call in annotate.
func makeSExpMacro() *Macro {
	return NewNamedMacro(
		"make_sexp",
		MustSignature(NewParameter("sequences", EncodingTagged, ZeroOrMore, RestAllowed)),
		KindMakeSExp,
		NewExpansionAnalysis(false, true, true).
			WithSingleton(NewExpansionSingleton(false, ion.SExpType, 0)),
	)
}

func annotateMacro() *Macro {
	return NewNamedMacro(
		"annotate",
		MustSignature(
			NewParameter("annotations", EncodingTagged, ZeroOrMore, RestNotAllowed),
			NewParameter("value_to_annotate", EncodingTagged, ExactlyOne, RestNotAllowed),
		),
		KindAnnotate,
		NewExpansionAnalysis(true, true, false),
	)
}

// setSymbolsMacro is equivalent to:
//
//	(macro set_symbols (symbols*)
//	  $ion_encoding::(
//	    (symbol_table [(%symbols)])
//	    (macro_table $ion_encoding)
//	  )
//	)
//
// Omitting the $ion_encoding literal from the symbol_table clause replaces
// the active symbol table; the macro_table clause re-includes the active
// macros.
func setSymbolsMacro() *Macro {
	return NewMacroFromTemplate(newTemplate(
		"set_symbols",
		MustSignature(NewParameter("symbols", EncodingTagged, ZeroOrMore, RestAllowed)),
		NewTemplateBody(
			[]TemplateBodyExpr{
				// 0: the $ion_encoding::(...) s-expression
				annotatedSExpExpr(0, 8, NewAnnotationsRange(0, 1)),
				// 1: the (symbol_table ...) clause
				sexpExpr(1, 5),
				symbolExpr(2, "symbol_table"),
				// 3: the list receiving the expanded symbols variable
				listExpr(3, 5),
				variableExpr(4, 0),
				// 5: the (macro_table ...) clause
				sexpExpr(5, 8),
				symbolExpr(6, "macro_table"),
				symbolExpr(7, ionEncodingModule),
			},
			encodingAnnotations(),
		),
		directiveAnalysis(),
	))
}

// addSymbolsMacro is equivalent to:
//
//	(macro add_symbols (symbols*)
//	  $ion_encoding::(
//	    (symbol_table $ion_encoding [(%symbols)])
//	    (macro_table $ion_encoding)
//	  )
//	)
//
// Both clauses name $ion_encoding first, re-including the active tables
// before appending.
func addSymbolsMacro() *Macro {
	return NewMacroFromTemplate(newTemplate(
		"add_symbols",
		MustSignature(NewParameter("symbols", EncodingTagged, ZeroOrMore, RestAllowed)),
		NewTemplateBody(
			[]TemplateBodyExpr{
				// 0: the $ion_encoding::(...) s-expression
				annotatedSExpExpr(0, 9, NewAnnotationsRange(0, 1)),
				// 1: the (symbol_table ...) clause
				sexpExpr(1, 6),
				symbolExpr(2, "symbol_table"),
				symbolExpr(3, ionEncodingModule),
				// 4: the list receiving the expanded symbols variable
				listExpr(4, 6),
				variableExpr(5, 0),
				// 6: the (macro_table ...) clause
				sexpExpr(6, 9),
				symbolExpr(7, "macro_table"),
				symbolExpr(8, ionEncodingModule),
			},
			encodingAnnotations(),
		),
		directiveAnalysis(),
	))
}

// setMacrosMacro is equivalent to:
//
//	(macro set_macros (macro_definitions*)
//	  $ion_encoding::(
//	    (symbol_table $ion_encoding)
//	    (macro_table (%macro_definitions))
//	  )
//	)
//
// Omitting the $ion_encoding literal from the macro_table clause replaces
// the active macro table.
func setMacrosMacro() *Macro {
	return NewMacroFromTemplate(newTemplate(
		"set_macros",
		MustSignature(NewParameter("macro_definitions", EncodingTagged, ZeroOrMore, RestAllowed)),
		NewTemplateBody(
			[]TemplateBodyExpr{
				// 0: the $ion_encoding::(...) s-expression
				annotatedSExpExpr(0, 7, NewAnnotationsRange(0, 1)),
				// 1: the (symbol_table ...) clause
				sexpExpr(1, 4),
				symbolExpr(2, "symbol_table"),
				symbolExpr(3, ionEncodingModule),
				// 4: the (macro_table ...) clause
				sexpExpr(4, 7),
				symbolExpr(5, "macro_table"),
				variableExpr(6, 0),
			},
			encodingAnnotations(),
		),
		directiveAnalysis(),
	))
}

// addMacrosMacro is equivalent to:
//
//	(macro add_macros (macro_definitions*)
//	  $ion_encoding::(
//	    (symbol_table $ion_encoding)
//	    (macro_table $ion_encoding (%macro_definitions))
//	  )
//	)
func addMacrosMacro() *Macro {
	return NewMacroFromTemplate(newTemplate(
		"add_macros",
		MustSignature(NewParameter("macro_definitions", EncodingTagged, ZeroOrMore, RestAllowed)),
		NewTemplateBody(
			[]TemplateBodyExpr{
				// 0: the $ion_encoding::(...) s-expression
				annotatedSExpExpr(0, 8, NewAnnotationsRange(0, 1)),
				// 1: the (symbol_table ...) clause
				sexpExpr(1, 4),
				symbolExpr(2, "symbol_table"),
				symbolExpr(3, ionEncodingModule),
				// 4: the (macro_table ...) clause
				sexpExpr(4, 8),
				symbolExpr(5, "macro_table"),
				symbolExpr(6, ionEncodingModule),
				variableExpr(7, 0),
			},
			encodingAnnotations(),
		),
		directiveAnalysis(),
	))
}

// directiveAnalysis is the hand-authored analysis shared by the
// table-altering system templates: each yields exactly one annotated
// s-expression that is itself a system value.
func directiveAnalysis() ExpansionAnalysis {
	return NewExpansionAnalysis(true, true, false).
		WithSingleton(NewExpansionSingleton(false, ion.SExpType, 1))
}

func encodingAnnotations() []ion.Symbol {
	return []ion.Symbol{ion.NewSymbol(ionEncodingModule)}
}

// Shorthand for hand-flattened bodies. Each constructor takes the
// expression's own flat index; containers also take the exclusive end of
// their subtree.

func annotatedSExpExpr(index, end int, annotations AnnotationsRange) TemplateBodyExpr {
	elem := NewBodyElement(SExpValue()).WithAnnotations(annotations)
	return NewElementExpr(elem, NewExprRange(index, end))
}

func sexpExpr(index, end int) TemplateBodyExpr {
	return NewElementExpr(NewBodyElement(SExpValue()), NewExprRange(index, end))
}

func listExpr(index, end int) TemplateBodyExpr {
	return NewElementExpr(NewBodyElement(ListValue()), NewExprRange(index, end))
}

func symbolExpr(index int, text string) TemplateBodyExpr {
	return NewElementExpr(NewBodyElement(SymbolValue(ion.NewSymbol(text))), NewExprRange(index, index+1))
}

func variableExpr(index, parameterIndex int) TemplateBodyExpr {
	return NewVariableExpr(parameterIndex, NewExprRange(index, index+1))
}
