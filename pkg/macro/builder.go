package macro

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapion/pkg/ion"
)

// BodyBuilder assembles a TemplateBody in pre-order without the caller
// tracking flat indexes or subtree ranges. Containers are opened with
// BeginSExp/BeginList and closed with End; scalars and variables append
// leaves. The first error sticks and is reported by Build, so call sites
// can chain appends without checking each one.
//
// A builder is single-use: after Build it must not be touched again.
type BodyBuilder struct {
	signature Signature
	exprs     []TemplateBodyExpr
	storage   []ion.Symbol
	interned  map[string]AnnotationsRange
	open      []int
	err       error
}

// NewBodyBuilder starts a body for a macro with the given signature.
// Variables appended later are resolved against it.
func NewBodyBuilder(signature Signature) *BodyBuilder {
	return &BodyBuilder{
		signature: signature,
		interned:  make(map[string]AnnotationsRange),
	}
}

// BeginSExp opens an s-expression; subsequent appends become its children
// until the matching End.
func (b *BodyBuilder) BeginSExp(annotations ...ion.Symbol) {
	b.beginContainer(SExpValue(), annotations)
}

// BeginList opens a list.
func (b *BodyBuilder) BeginList(annotations ...ion.Symbol) {
	b.beginContainer(ListValue(), annotations)
}

// End closes the most recently opened container.
func (b *BodyBuilder) End() {
	if b.err != nil {
		return
	}
	if len(b.open) == 0 {
		b.fail("End without an open container")
		return
	}
	index := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	b.exprs[index].subtree = NewExprRange(index, len(b.exprs))
}

// Null appends a (possibly typed) null scalar.
func (b *BodyBuilder) Null(t ion.Type, annotations ...ion.Symbol) {
	b.appendScalar(NullValue(t), annotations)
}

// Bool appends a bool scalar.
func (b *BodyBuilder) Bool(v bool, annotations ...ion.Symbol) {
	b.appendScalar(BoolValue(v), annotations)
}

// Int appends an int scalar.
func (b *BodyBuilder) Int(v int64, annotations ...ion.Symbol) {
	b.appendScalar(IntValue(v), annotations)
}

// Float appends a float scalar.
func (b *BodyBuilder) Float(v float64, annotations ...ion.Symbol) {
	b.appendScalar(FloatValue(v), annotations)
}

// String appends a string scalar.
func (b *BodyBuilder) String(s string, annotations ...ion.Symbol) {
	b.appendScalar(StringValue(s), annotations)
}

// Symbol appends a symbol scalar.
func (b *BodyBuilder) Symbol(text string, annotations ...ion.Symbol) {
	b.appendScalar(SymbolValue(ion.NewSymbol(text)), annotations)
}

// Value appends an already-constructed scalar value. Containers must be
// opened with BeginSExp/BeginList so their subtree ranges can be tracked.
func (b *BodyBuilder) Value(v TemplateValue, annotations ...ion.Symbol) {
	if b.err != nil {
		return
	}
	if v.IsContainer() {
		b.fail(fmt.Sprintf("container %s must be opened with Begin, not appended as a value", v))
		return
	}
	b.appendScalar(v, annotations)
}

// Variable appends a reference to the named signature parameter.
func (b *BodyBuilder) Variable(name string) {
	if b.err != nil {
		return
	}
	index, ok := b.signature.ParameterIndex(name)
	if !ok {
		b.fail(fmt.Sprintf("no parameter named %q in signature %s", name, b.signature))
		return
	}
	b.appendVariable(index)
}

// VariableAt appends a reference to the signature parameter at the given
// position.
func (b *BodyBuilder) VariableAt(index int) {
	if b.err != nil {
		return
	}
	if index < 0 || index >= b.signature.Len() {
		b.fail(fmt.Sprintf("parameter index %d out of range for signature %s", index, b.signature))
		return
	}
	b.appendVariable(index)
}

// Build finalizes the body. It fails if any append failed or a container
// was left open.
func (b *BodyBuilder) Build() (*TemplateBody, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.open) > 0 {
		return nil, &BuildError{Message: fmt.Sprintf("%d container(s) left open", len(b.open))}
	}
	return NewTemplateBody(b.exprs, b.storage), nil
}

func (b *BodyBuilder) beginContainer(value TemplateValue, annotations []ion.Symbol) {
	if b.err != nil {
		return
	}
	index := len(b.exprs)
	elem := NewBodyElement(value).WithAnnotations(b.intern(annotations))
	// Provisional range; End patches the end index.
	b.exprs = append(b.exprs, NewElementExpr(elem, NewExprRange(index, index+1)))
	b.open = append(b.open, index)
}

func (b *BodyBuilder) appendScalar(value TemplateValue, annotations []ion.Symbol) {
	if b.err != nil {
		return
	}
	index := len(b.exprs)
	elem := NewBodyElement(value).WithAnnotations(b.intern(annotations))
	b.exprs = append(b.exprs, NewElementExpr(elem, NewExprRange(index, index+1)))
}

func (b *BodyBuilder) appendVariable(parameterIndex int) {
	index := len(b.exprs)
	b.exprs = append(b.exprs, NewVariableExpr(parameterIndex, NewExprRange(index, index+1)))
}

// intern stores an annotation sequence once and hands out the same range
// to every element that repeats it, e.g. identical directive prefixes on
// sibling nodes.
func (b *BodyBuilder) intern(annotations []ion.Symbol) AnnotationsRange {
	if len(annotations) == 0 {
		return AnnotationsRange{}
	}
	key := annotationsKey(annotations)
	if r, ok := b.interned[key]; ok {
		return r
	}
	start := len(b.storage)
	b.storage = append(b.storage, annotations...)
	r := NewAnnotationsRange(start, len(b.storage))
	b.interned[key] = r
	return r
}

func annotationsKey(annotations []ion.Symbol) string {
	return strings.Join(ion.SymbolTexts(annotations), "\x00")
}

func (b *BodyBuilder) fail(message string) {
	if b.err == nil {
		b.err = &BuildError{Message: message}
	}
}

// BuildError reports a misuse of BodyBuilder.
type BuildError struct {
	Message string
}

func (e *BuildError) Error() string {
	return "template body builder: " + e.Message
}
