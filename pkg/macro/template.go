package macro

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapion/pkg/ion"
)

// ExprRange is a half-open index range over a TemplateBody's flattened
// expression sequence. The expression at flat index i always has a range
// starting at i; the range's end is the exclusive index just past the last
// expression in i's subtree, so a consumer can skip the whole subtree by
// jumping straight to End().
type ExprRange struct {
	start int
	end   int
}

// NewExprRange constructs the half-open range [start, end).
func NewExprRange(start, end int) ExprRange {
	return ExprRange{start: start, end: end}
}

// Start returns the inclusive start index.
func (r ExprRange) Start() int { return r.start }

// End returns the exclusive end index.
func (r ExprRange) End() int { return r.end }

// Len returns the number of expressions covered, including the subtree
// root itself.
func (r ExprRange) Len() int { return r.end - r.start }

// IsEmpty reports whether the range covers no expressions.
func (r ExprRange) IsEmpty() bool { return r.end <= r.start }

// Contains reports whether other lies fully within r.
func (r ExprRange) Contains(other ExprRange) bool {
	return other.start >= r.start && other.end <= r.end
}

func (r ExprRange) String() string {
	return strconv.Itoa(r.start) + ".." + strconv.Itoa(r.end)
}

// AnnotationsRange is a half-open index range over a TemplateBody's shared
// annotation storage. An empty range means "no annotations".
type AnnotationsRange struct {
	start int
	end   int
}

// NewAnnotationsRange constructs the half-open range [start, end).
func NewAnnotationsRange(start, end int) AnnotationsRange {
	return AnnotationsRange{start: start, end: end}
}

// Start returns the inclusive start index.
func (r AnnotationsRange) Start() int { return r.start }

// End returns the exclusive end index.
func (r AnnotationsRange) End() int { return r.end }

// Len returns the number of annotations covered.
func (r AnnotationsRange) Len() int { return r.end - r.start }

// IsEmpty reports whether the range names no annotations.
func (r AnnotationsRange) IsEmpty() bool { return r.end <= r.start }

// TemplateValue is a literal value node in a template body: either a
// scalar with its payload, or a container marker (list/sexp) whose
// children follow it in the flattened expression order. It is a plain
// tagged struct rather than an interface so a body can hold its
// expressions in one contiguous slice.
type TemplateValue struct {
	typ      ion.Type
	null     bool
	boolVal  bool
	intVal   int64
	floatVal float64
	text     string
}

// NullValue returns a (possibly typed) null, e.g. NullValue(ion.IntType)
// for null.int. NullValue(ion.NullType) is the untyped null.
func NullValue(t ion.Type) TemplateValue {
	return TemplateValue{typ: t, null: true}
}

// BoolValue returns a bool literal.
func BoolValue(v bool) TemplateValue {
	return TemplateValue{typ: ion.BoolType, boolVal: v}
}

// IntValue returns an int literal.
func IntValue(v int64) TemplateValue {
	return TemplateValue{typ: ion.IntType, intVal: v}
}

// FloatValue returns a float literal.
func FloatValue(v float64) TemplateValue {
	return TemplateValue{typ: ion.FloatType, floatVal: v}
}

// StringValue returns a string literal.
func StringValue(s string) TemplateValue {
	return TemplateValue{typ: ion.StringType, text: s}
}

// SymbolValue returns a symbol literal.
func SymbolValue(s ion.Symbol) TemplateValue {
	return TemplateValue{typ: ion.SymbolType, text: s.Text()}
}

// ListValue returns a list container marker. The list's elements are the
// child subtrees that follow it in the body.
func ListValue() TemplateValue {
	return TemplateValue{typ: ion.ListType}
}

// SExpValue returns an s-expression container marker.
func SExpValue() TemplateValue {
	return TemplateValue{typ: ion.SExpType}
}

// Type returns the value's Ion type.
func (v TemplateValue) Type() ion.Type {
	return v.typ
}

// IsNull reports whether the value is a null of any type.
func (v TemplateValue) IsNull() bool {
	return v.null
}

// IsContainer reports whether the value is a non-null container marker.
func (v TemplateValue) IsContainer() bool {
	return !v.null && v.typ.IsContainer()
}

// Bool returns the payload of a non-null bool value.
func (v TemplateValue) Bool() (bool, bool) {
	if v.null || v.typ != ion.BoolType {
		return false, false
	}
	return v.boolVal, true
}

// Int returns the payload of a non-null int value.
func (v TemplateValue) Int() (int64, bool) {
	if v.null || v.typ != ion.IntType {
		return 0, false
	}
	return v.intVal, true
}

// Float returns the payload of a non-null float value.
func (v TemplateValue) Float() (float64, bool) {
	if v.null || v.typ != ion.FloatType {
		return 0, false
	}
	return v.floatVal, true
}

// Text returns the payload of a non-null string or symbol value.
func (v TemplateValue) Text() (string, bool) {
	if v.null || (v.typ != ion.StringType && v.typ != ion.SymbolType) {
		return "", false
	}
	return v.text, true
}

// String renders a display form: scalars show their payload, containers
// show their type name.
func (v TemplateValue) String() string {
	if v.null {
		if v.typ == ion.NullType {
			return "null"
		}
		return "null." + v.typ.String()
	}
	switch v.typ {
	case ion.BoolType:
		return strconv.FormatBool(v.boolVal)
	case ion.IntType:
		return strconv.FormatInt(v.intVal, 10)
	case ion.FloatType:
		return strconv.FormatFloat(v.floatVal, 'g', -1, 64)
	case ion.StringType:
		return strconv.Quote(v.text)
	case ion.SymbolType:
		return v.text
	default:
		return v.typ.String()
	}
}

// TemplateBodyElement is a literal value node together with the range of
// its annotations in the body's shared annotation storage.
type TemplateBodyElement struct {
	value       TemplateValue
	annotations AnnotationsRange
}

// NewBodyElement wraps a value with no annotations.
func NewBodyElement(value TemplateValue) TemplateBodyElement {
	return TemplateBodyElement{value: value}
}

// WithAnnotations returns a copy of the element that draws its annotations
// from the given range of the body's annotation storage.
func (e TemplateBodyElement) WithAnnotations(r AnnotationsRange) TemplateBodyElement {
	e.annotations = r
	return e
}

// Value returns the element's literal value.
func (e TemplateBodyElement) Value() TemplateValue {
	return e.value
}

// AnnotationsRange returns the element's range into the body's annotation
// storage. Empty when the element is unannotated.
func (e TemplateBodyElement) AnnotationsRange() AnnotationsRange {
	return e.annotations
}

// HasAnnotations reports whether the element carries any annotations.
func (e TemplateBodyElement) HasAnnotations() bool {
	return !e.annotations.IsEmpty()
}

// BodyExprKind discriminates the two expression forms a template body can
// hold.
type BodyExprKind uint8

// Body expression kinds.
const (
	// BodyExprElement is a literal value node (scalar or container).
	BodyExprElement BodyExprKind = iota
	// BodyExprVariable is a leaf referencing a signature parameter by
	// position; expansion substitutes the argument expression(s) bound to
	// that parameter.
	BodyExprVariable
)

func (k BodyExprKind) String() string {
	if k == BodyExprVariable {
		return "variable"
	}
	return "element"
}

// TemplateBodyExpr is one expression in a flattened template body: an
// element or a variable, plus the range of its own subtree.
type TemplateBodyExpr struct {
	kind          BodyExprKind
	element       TemplateBodyElement
	variableIndex int
	subtree       ExprRange
}

// NewElementExpr constructs an element expression whose subtree occupies
// the given range.
func NewElementExpr(element TemplateBodyElement, subtree ExprRange) TemplateBodyExpr {
	return TemplateBodyExpr{kind: BodyExprElement, element: element, subtree: subtree}
}

// NewVariableExpr constructs a variable expression referencing the
// signature parameter at signatureIndex. Variables are leaves; their
// subtree covers only themselves.
func NewVariableExpr(signatureIndex int, subtree ExprRange) TemplateBodyExpr {
	return TemplateBodyExpr{kind: BodyExprVariable, variableIndex: signatureIndex, subtree: subtree}
}

// Kind returns the expression's discriminator.
func (x TemplateBodyExpr) Kind() BodyExprKind {
	return x.kind
}

// IsElement reports whether the expression is a literal value node.
func (x TemplateBodyExpr) IsElement() bool {
	return x.kind == BodyExprElement
}

// IsVariable reports whether the expression references a parameter.
func (x TemplateBodyExpr) IsVariable() bool {
	return x.kind == BodyExprVariable
}

// Element returns the literal node when the expression is an element.
func (x TemplateBodyExpr) Element() (TemplateBodyElement, bool) {
	if x.kind != BodyExprElement {
		return TemplateBodyElement{}, false
	}
	return x.element, true
}

// VariableIndex returns the referenced signature position when the
// expression is a variable.
func (x TemplateBodyExpr) VariableIndex() (int, bool) {
	if x.kind != BodyExprVariable {
		return 0, false
	}
	return x.variableIndex, true
}

// SubtreeRange returns the half-open range of the expression's subtree in
// the enclosing body, including the expression itself.
func (x TemplateBodyExpr) SubtreeRange() ExprRange {
	return x.subtree
}

// TemplateBody is a macro's expansion body: the flattened pre-order walk
// of its expression tree plus the shared pool that annotated elements draw
// their annotation sequences from. Bodies are immutable once built.
type TemplateBody struct {
	expressions        []TemplateBodyExpr
	annotationsStorage []ion.Symbol
}

// NewTemplateBody assembles a body from an already-flattened expression
// sequence and its annotation pool. The slices are retained; callers must
// not modify them afterwards. Use Validate (or compile through
// NewTemplate) to check the structural invariants.
func NewTemplateBody(expressions []TemplateBodyExpr, annotationsStorage []ion.Symbol) *TemplateBody {
	return &TemplateBody{
		expressions:        expressions,
		annotationsStorage: annotationsStorage,
	}
}

// Len returns the number of flattened expressions.
func (b *TemplateBody) Len() int {
	return len(b.expressions)
}

// ExprAt returns the expression at the given flat index.
func (b *TemplateBody) ExprAt(index int) TemplateBodyExpr {
	return b.expressions[index]
}

// Expressions returns a copy of the flattened expression sequence.
func (b *TemplateBody) Expressions() []TemplateBodyExpr {
	exprs := make([]TemplateBodyExpr, len(b.expressions))
	copy(exprs, b.expressions)
	return exprs
}

// AnnotationsStorage returns a copy of the shared annotation pool.
func (b *TemplateBody) AnnotationsStorage() []ion.Symbol {
	storage := make([]ion.Symbol, len(b.annotationsStorage))
	copy(storage, b.annotationsStorage)
	return storage
}

// AnnotationsInRange returns the annotation sequence for the given range.
// The returned slice aliases the body's storage and must not be modified.
func (b *TemplateBody) AnnotationsInRange(r AnnotationsRange) []ion.Symbol {
	return b.annotationsStorage[r.Start():r.End()]
}

// Roots returns the flat indexes of the body's top-level expressions,
// found by hopping across subtree ranges.
func (b *TemplateBody) Roots() []int {
	var roots []int
	for i := 0; i < len(b.expressions); i = b.expressions[i].SubtreeRange().End() {
		roots = append(roots, i)
	}
	return roots
}

// Validate checks the structural invariants that evaluators rely on:
//
//   - every expression's subtree range starts at its own flat index and
//     ends within the body;
//   - children of a subtree are contiguous and fully nested inside it, so
//     jumping to SubtreeRange().End() skips the subtree exactly;
//   - variables and non-container elements are leaves;
//   - annotation ranges lie within the annotation storage.
func (b *TemplateBody) Validate() error {
	n := len(b.expressions)
	for i, expr := range b.expressions {
		r := expr.SubtreeRange()
		switch {
		case r.Start() != i:
			return &BodyError{Index: i, Message: fmt.Sprintf("subtree range %s must start at the expression's own index", r)}
		case r.End() > n:
			return &BodyError{Index: i, Message: fmt.Sprintf("subtree range %s extends past the body's %d expressions", r, n)}
		case r.Len() < 1:
			return &BodyError{Index: i, Message: fmt.Sprintf("subtree range %s must cover the expression itself", r)}
		}

		if expr.IsVariable() && r.Len() != 1 {
			return &BodyError{Index: i, Message: "variables are leaves and must span exactly one expression"}
		}
		if elem, ok := expr.Element(); ok {
			if !elem.Value().IsContainer() && r.Len() != 1 {
				return &BodyError{Index: i, Message: fmt.Sprintf("scalar %s must span exactly one expression", elem.Value())}
			}
			ar := elem.AnnotationsRange()
			if ar.Start() < 0 || ar.End() > len(b.annotationsStorage) || ar.End() < ar.Start() {
				return &BodyError{Index: i, Message: "annotation range lies outside the annotation storage"}
			}
		}

		// Children must tile the remainder of the subtree exactly: each
		// child starts where the previous one ended, and the last one ends
		// at the parent's end.
		for j := i + 1; j < r.End(); {
			child := b.expressions[j].SubtreeRange()
			if !r.Contains(child) {
				return &BodyError{Index: j, Message: fmt.Sprintf("child subtree %s escapes parent subtree %s", child, r)}
			}
			j = child.End()
		}
	}
	return nil
}

// BodyError reports a template body whose flattened structure violates the
// range-nesting invariants.
type BodyError struct {
	Index   int
	Message string
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("invalid template body: expression %d: %s", e.Index, e.Message)
}
