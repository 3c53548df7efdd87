package macro

import "strconv"

// Kind tags how a macro expands. Primitives have native semantics supplied
// by the evaluator; KindTemplate macros expand by walking a TemplateBody.
type Kind uint8

// The closed set of macro kinds.
const (
	// KindNone expands to nothing.
	KindNone Kind = iota
	// KindExprGroup splices a group of argument expressions.
	KindExprGroup
	// KindMakeString concatenates text arguments into one string.
	KindMakeString
	// KindMakeSExp assembles sequence arguments into one s-expression.
	KindMakeSExp
	// KindAnnotate prepends annotations to a value.
	KindAnnotate
	// KindTemplate expands a user- or system-defined template body.
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindExprGroup:
		return "expr_group"
	case KindMakeString:
		return "make_string"
	case KindMakeSExp:
		return "make_sexp"
	case KindAnnotate:
		return "annotate"
	case KindTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// IsTemplate reports whether the kind expands by template body.
func (k Kind) IsTemplate() bool {
	return k == KindTemplate
}

// Macro is one entry in a macro table: an optional name, the signature its
// invocations bind against, its kind, and the expansion analysis computed
// at definition time. Macros are immutable after construction and shared
// by pointer between table clones.
type Macro struct {
	name      string
	signature Signature
	kind      Kind
	body      *TemplateBody
	analysis  ExpansionAnalysis
}

// NewNamedMacro constructs a named non-template macro, typically a
// primitive with a hand-authored analysis.
func NewNamedMacro(name string, signature Signature, kind Kind, analysis ExpansionAnalysis) *Macro {
	return &Macro{name: name, signature: signature, kind: kind, analysis: analysis}
}

// NewAnonymousMacro constructs a nameless non-template macro. It can only
// be addressed numerically.
func NewAnonymousMacro(signature Signature, kind Kind, analysis ExpansionAnalysis) *Macro {
	return &Macro{signature: signature, kind: kind, analysis: analysis}
}

// NewMacroFromTemplate wraps a compiled template as a KindTemplate macro,
// carrying over its name, signature, body, and analysis.
func NewMacroFromTemplate(t *Template) *Macro {
	m := &Macro{
		signature: t.signature,
		kind:      KindTemplate,
		body:      t.body,
		analysis:  t.analysis,
	}
	if name, ok := t.Name(); ok {
		m.name = name
	}
	return m
}

// Name returns the macro's name, or false for anonymous macros.
func (m *Macro) Name() (string, bool) {
	if m.name == "" {
		return "", false
	}
	return m.name, true
}

// Signature returns the macro's parameter list.
func (m *Macro) Signature() Signature {
	return m.signature
}

// Kind returns the macro's kind tag.
func (m *Macro) Kind() Kind {
	return m.kind
}

// TemplateBody returns the macro's expansion body. Only KindTemplate
// macros have one.
func (m *Macro) TemplateBody() (*TemplateBody, bool) {
	if m.body == nil {
		return nil, false
	}
	return m.body, true
}

// ExpansionAnalysis returns the facts derived about the macro's output.
func (m *Macro) ExpansionAnalysis() ExpansionAnalysis {
	return m.analysis
}

// MustProduceExactlyOneValue reads the stored analysis.
func (m *Macro) MustProduceExactlyOneValue() bool {
	return m.analysis.MustProduceExactlyOneValue()
}

// CanBeLazilyEvaluatedAtTopLevel reads the stored analysis.
func (m *Macro) CanBeLazilyEvaluatedAtTopLevel() bool {
	return m.analysis.CanBeLazilyEvaluatedAtTopLevel()
}

// Template is a macro definition expressed as a compiled body: the unit
// added to a table by AddMacro. Compiling derives the expansion analysis
// once; the template is immutable afterwards.
type Template struct {
	name      string
	signature Signature
	body      *TemplateBody
	analysis  ExpansionAnalysis
}

// NewTemplate compiles a named template. The body's structural invariants
// are validated, every variable is checked against the signature, and the
// expansion analysis is derived.
func NewTemplate(name string, signature Signature, body *TemplateBody) (*Template, error) {
	if err := checkTemplateBody(signature, body); err != nil {
		return nil, err
	}
	return &Template{
		name:      name,
		signature: signature,
		body:      body,
		analysis:  AnalyzeTemplateBody(signature, body),
	}, nil
}

// NewAnonymousTemplate compiles a nameless template. Adding it to a table
// assigns it an address but no name entry.
func NewAnonymousTemplate(signature Signature, body *TemplateBody) (*Template, error) {
	return NewTemplate("", signature, body)
}

// newTemplate builds a template with a caller-supplied analysis, trusted
// without rederivation. The system bootstrap uses it to carry the
// hand-authored analyses of the built-in templates.
func newTemplate(name string, signature Signature, body *TemplateBody, analysis ExpansionAnalysis) *Template {
	return &Template{name: name, signature: signature, body: body, analysis: analysis}
}

func checkTemplateBody(signature Signature, body *TemplateBody) error {
	if err := body.Validate(); err != nil {
		return err
	}
	for i := 0; i < body.Len(); i++ {
		if idx, ok := body.ExprAt(i).VariableIndex(); ok {
			if idx < 0 || idx >= signature.Len() {
				return &BodyError{Index: i, Message: "variable references parameter " + strconv.Itoa(idx) + " but the signature has " + strconv.Itoa(signature.Len()) + " parameters"}
			}
		}
	}
	return nil
}

// Name returns the template's name, or false when anonymous.
func (t *Template) Name() (string, bool) {
	if t.name == "" {
		return "", false
	}
	return t.name, true
}

// Signature returns the template's parameter list.
func (t *Template) Signature() Signature {
	return t.signature
}

// Body returns the compiled body.
func (t *Template) Body() *TemplateBody {
	return t.body
}

// ExpansionAnalysis returns the analysis derived at compile time.
func (t *Template) ExpansionAnalysis() ExpansionAnalysis {
	return t.analysis
}

// Ref pairs a macro with the address it was resolved at, so a caller that
// needs both (for diagnostics or re-lookup caching) does not repeat the
// lookup. Refs are cheap values; the macro itself is shared.
type Ref struct {
	address int
	macro   *Macro
}

// NewRef binds a macro to its table address.
func NewRef(address int, m *Macro) Ref {
	return Ref{address: address, macro: m}
}

// Address returns the table address the macro was resolved at.
func (r Ref) Address() int {
	return r.address
}

// Macro returns the resolved macro.
func (r Ref) Macro() *Macro {
	return r.macro
}

// Name returns the macro's name, or false for anonymous macros.
func (r Ref) Name() (string, bool) {
	return r.macro.Name()
}

// Kind returns the macro's kind tag.
func (r Ref) Kind() Kind {
	return r.macro.Kind()
}

// Signature returns the macro's parameter list.
func (r Ref) Signature() Signature {
	return r.macro.Signature()
}

// ExpansionAnalysis returns the macro's derived output facts.
func (r Ref) ExpansionAnalysis() ExpansionAnalysis {
	return r.macro.ExpansionAnalysis()
}

// TemplateBody returns the macro's body when it is a template.
func (r Ref) TemplateBody() (*TemplateBody, bool) {
	return r.macro.TemplateBody()
}

// IDText renders the identifier an invocation would most naturally use:
// the name when the macro has one, otherwise the decimal address.
func (r Ref) IDText() string {
	if name, ok := r.macro.Name(); ok {
		return name
	}
	return strconv.Itoa(r.address)
}
