package macro

import (
	"fmt"

	"github.com/leapstack-labs/leapion/pkg/ion"
)

// ExpansionSingleton describes the one value a macro is statically known
// to produce under every legal argument binding: whether it is null, its
// Ion type, and how many annotations it carries. Evaluators use it to
// answer shape questions without expanding.
type ExpansionSingleton struct {
	isNull         bool
	ionType        ion.Type
	numAnnotations int
}

// NewExpansionSingleton records a guaranteed single-value output shape.
func NewExpansionSingleton(isNull bool, ionType ion.Type, numAnnotations int) ExpansionSingleton {
	return ExpansionSingleton{isNull: isNull, ionType: ionType, numAnnotations: numAnnotations}
}

// IsNull reports whether the produced value is a null.
func (s ExpansionSingleton) IsNull() bool { return s.isNull }

// IonType returns the produced value's Ion type.
func (s ExpansionSingleton) IonType() ion.Type { return s.ionType }

// NumAnnotations returns how many annotations the produced value carries.
func (s ExpansionSingleton) NumAnnotations() int { return s.numAnnotations }

func (s ExpansionSingleton) String() string {
	null := ""
	if s.isNull {
		null = "null."
	}
	return fmt.Sprintf("%s%s/%d", null, s.ionType, s.numAnnotations)
}

// ExpansionAnalysis holds facts about a macro's output derived once at
// definition time. An evaluator reads them to pick a strategy for each
// invocation: whether expansion must be drained eagerly in case it
// produces a directive, and whether a top-level invocation may be handed
// back as a single deferred value.
//
// The facts are conservative. A false mustProduceExactlyOneValue means
// "not guaranteed", not "will produce several"; a true
// couldProduceSystemValue means "cannot be ruled out".
type ExpansionAnalysis struct {
	couldProduceSystemValue        bool
	mustProduceExactlyOneValue     bool
	canBeLazilyEvaluatedAtTopLevel bool
	singleton                      ExpansionSingleton
	hasSingleton                   bool
}

// NewExpansionAnalysis records hand-authored facts, used for primitives
// whose semantics are native rather than expressed as a template body.
func NewExpansionAnalysis(couldProduceSystemValue, mustProduceExactlyOneValue, canBeLazilyEvaluatedAtTopLevel bool) ExpansionAnalysis {
	return ExpansionAnalysis{
		couldProduceSystemValue:        couldProduceSystemValue,
		mustProduceExactlyOneValue:     mustProduceExactlyOneValue,
		canBeLazilyEvaluatedAtTopLevel: canBeLazilyEvaluatedAtTopLevel,
	}
}

// WithSingleton returns a copy of the analysis that also guarantees the
// given single-value output shape.
func (a ExpansionAnalysis) WithSingleton(s ExpansionSingleton) ExpansionAnalysis {
	a.singleton = s
	a.hasSingleton = true
	return a
}

// ConservativeAnalysis assumes nothing about the output: it may produce
// any number of values, any of which could be a system value, so eager
// evaluation is required.
func ConservativeAnalysis() ExpansionAnalysis {
	return ExpansionAnalysis{couldProduceSystemValue: true}
}

// CouldProduceSystemValue reports whether any legal expansion might yield
// a value with stream-control significance, such as an encoding directive.
func (a ExpansionAnalysis) CouldProduceSystemValue() bool {
	return a.couldProduceSystemValue
}

// MustProduceExactlyOneValue reports whether every legal expansion yields
// exactly one top-level value.
func (a ExpansionAnalysis) MustProduceExactlyOneValue() bool {
	return a.mustProduceExactlyOneValue
}

// CanBeLazilyEvaluatedAtTopLevel reports whether a top-level invocation
// may be handed back as a deferred single-value handle instead of being
// drained eagerly. Requires exactly one produced value that cannot be a
// system value.
func (a ExpansionAnalysis) CanBeLazilyEvaluatedAtTopLevel() bool {
	return a.canBeLazilyEvaluatedAtTopLevel
}

// ExpansionSingleton returns the guaranteed output shape, if one is known.
func (a ExpansionAnalysis) ExpansionSingleton() (ExpansionSingleton, bool) {
	return a.singleton, a.hasSingleton
}

// AnalyzeTemplateBody derives an ExpansionAnalysis for a template-defined
// macro. The derivation is conservative: it only claims a guarantee when
// the body's shape proves it for every legal argument binding.
//
//   - Exactly one value is guaranteed when the body has a single root that
//     is either a literal element or a variable whose parameter binds
//     exactly one argument.
//   - A system value can be ruled out only when no root is a variable
//     (substituted arguments are opaque) and no root element carries an
//     annotated container or bare symbol, the shapes directives, inline
//     symbol tables, and version markers take.
//   - Lazy top-level evaluation follows from the two guarantees above.
//   - When the single root is a literal element, its shape is recorded as
//     the expansion singleton.
func AnalyzeTemplateBody(signature Signature, body *TemplateBody) ExpansionAnalysis {
	roots := body.Roots()

	exactlyOne := false
	if len(roots) == 1 {
		expr := body.ExprAt(roots[0])
		if expr.IsElement() {
			exactlyOne = true
		} else if idx, ok := expr.VariableIndex(); ok {
			exactlyOne = signature.At(idx).Cardinality() == ExactlyOne
		}
	}

	couldSystem := false
	for _, root := range roots {
		expr := body.ExprAt(root)
		if expr.IsVariable() {
			couldSystem = true
			break
		}
		elem, _ := expr.Element()
		if couldBeSystemValue(elem) {
			couldSystem = true
			break
		}
	}

	analysis := ExpansionAnalysis{
		couldProduceSystemValue:        couldSystem,
		mustProduceExactlyOneValue:     exactlyOne,
		canBeLazilyEvaluatedAtTopLevel: exactlyOne && !couldSystem,
	}
	if exactlyOne {
		if elem, ok := body.ExprAt(roots[0]).Element(); ok {
			analysis = analysis.WithSingleton(NewExpansionSingleton(
				elem.Value().IsNull(),
				elem.Value().Type(),
				elem.AnnotationsRange().Len(),
			))
		}
	}
	return analysis
}

// couldBeSystemValue reports whether a literal element's shape overlaps
// the shapes system values take at top level: annotated s-expressions
// (encoding directives), annotated structs (inline symbol tables), and
// unannotated symbols (version markers).
func couldBeSystemValue(elem TemplateBodyElement) bool {
	if elem.Value().IsNull() {
		return false
	}
	switch elem.Value().Type() {
	case ion.SExpType, ion.StructType:
		return elem.HasAnnotations()
	case ion.SymbolType:
		return !elem.HasAnnotations()
	default:
		return false
	}
}
