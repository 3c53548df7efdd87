// Package macro implements the macro/template subsystem for Ion 1.1
// streams: parameterized definitions ("macros") that invocations in an
// encoded stream reference by name or by numeric address instead of
// re-encoding repeated structure.
//
// This package owns the data model and the registry; it does not read or
// write any wire format and it does not evaluate macros. A reader resolves
// an invocation through a Table, inspects the resulting Ref's Kind and
// ExpansionAnalysis to pick an evaluation strategy, and for
// template-defined macros walks the TemplateBody itself.
//
// # Components
//
//   - Parameter / Signature: the formal parameters a macro accepts
//     (encoding, cardinality, rest-syntax eligibility).
//   - TemplateBody: a macro's expansion body, stored as a flattened
//     pre-order walk of the expression tree. Every expression records the
//     index range of its own subtree, so consumers can expand or skip a
//     subtree in O(1) without building an auxiliary tree.
//   - ExpansionAnalysis: facts about a macro's output shape that are
//     derived once at definition time. Evaluators consult the analysis to
//     decide whether an invocation can be handed out as a single lazy
//     value instead of eagerly expanded.
//   - Macro / Kind: a definition pairing an optional name, a signature, a
//     kind (built-in primitive or template), and its analysis.
//   - Table: the append-only registry addressable by position and by
//     name, including the fixed system macro set at addresses
//     0..NumSystemMacros.
//
// # Basic usage
//
//	table := macro.NewTableWithSystemMacros()
//
//	ref, ok := table.MacroWithName("make_string")
//	if ok && ref.CanBeLazilyEvaluatedAtTopLevel() {
//	    // hand out a deferred single-value handle
//	}
//
// User macros are compiled from a Signature and a TemplateBody (usually
// via BodyBuilder) into a Template and appended with AddMacro:
//
//	sig, _ := macro.NewSignature(
//	    macro.NewParameter("who", macro.EncodingTagged, macro.ZeroOrMore, macro.RestAllowed),
//	)
//	b := macro.NewBodyBuilder(sig)
//	b.BeginSExp()
//	b.Symbol("hello")
//	b.Variable("who")
//	b.End()
//	body, _ := b.Build()
//
//	tmpl, _ := macro.NewTemplate("greet", sig, body)
//	addr, _ := table.AddMacro(tmpl)
//
// Tables are cheap to clone: definitions are immutable after construction
// and shared between clones, so handing every reader its own copy of the
// system table costs two small allocations, not a re-bootstrap.
package macro
