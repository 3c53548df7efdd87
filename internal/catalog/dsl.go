package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapion/pkg/ion"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// collectorKey locates the per-file declaration collector in a Starlark
// thread's locals.
const collectorKey = "leapion.catalog.collector"

type collector struct {
	file    string
	entries []Entry
}

// loadFile executes a single catalog file and returns the macros it
// declared, in declaration order.
func loadFile(path string) ([]Entry, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a glob over the catalog directory
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	col := &collector{file: path}
	thread := &starlark.Thread{
		Name: "catalog:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, _ string) {
			// Ignore prints during catalog loading
		},
	}
	thread.SetLocal(collectorKey, col)

	if _, err := starlark.ExecFile(thread, path, content, builtins()); err != nil { //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("Starlark execution error: %v", err),
		}
	}
	return col.entries, nil
}

// builtins returns the predeclared environment for catalog files.
func builtins() starlark.StringDict {
	return starlark.StringDict{
		"macro":     starlark.NewBuiltin("macro", macroBuiltin),
		"param":     starlark.NewBuiltin("param", paramBuiltin),
		"sexp":      starlark.NewBuiltin("sexp", containerBuiltin(nodeSExp)),
		"seq":       starlark.NewBuiltin("seq", containerBuiltin(nodeSeq)),
		"symbol":    starlark.NewBuiltin("symbol", symbolBuiltin),
		"null":      starlark.NewBuiltin("null", nullBuiltin),
		"var":       starlark.NewBuiltin("var", variableBuiltin),
		"annotated": starlark.NewBuiltin("annotated", annotatedBuiltin),
	}
}

// macroBuiltin is the `macro(name, params=[...], body=...)` builtin. It
// compiles the declaration into a template and registers it with the
// file's collector.
func macroBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var params *starlark.List
	var body starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "body", &body, "params?", &params); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("macro: name must not be empty")
	}

	var parameters []macro.Parameter
	if params != nil {
		for i := 0; i < params.Len(); i++ {
			pv, ok := params.Index(i).(*paramValue)
			if !ok {
				return nil, fmt.Errorf("macro %q: params[%d] is %s, want param(...)", name, i, params.Index(i).Type())
			}
			parameters = append(parameters, pv.parameter)
		}
	}
	sig, err := macro.NewSignature(parameters...)
	if err != nil {
		return nil, fmt.Errorf("macro %q: %w", name, err)
	}

	builder := macro.NewBodyBuilder(sig)
	if err := appendBodyValue(builder, body); err != nil {
		return nil, fmt.Errorf("macro %q: %w", name, err)
	}
	compiled, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("macro %q: %w", name, err)
	}
	tmpl, err := macro.NewTemplate(name, sig, compiled)
	if err != nil {
		return nil, fmt.Errorf("macro %q: %w", name, err)
	}

	col, ok := thread.Local(collectorKey).(*collector)
	if !ok {
		return nil, fmt.Errorf("macro: no catalog load in progress")
	}
	col.entries = append(col.entries, Entry{Template: tmpl, File: col.file})
	return starlark.None, nil
}

// paramBuiltin is the `param(name, cardinality="!", encoding="tagged",
// rest=False)` builtin. Cardinality accepts the sigil forms "!", "?",
// "*", "+" as well as spelled-out names.
func paramBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, cardinality, encoding string
	var rest bool
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name, "cardinality?", &cardinality, "encoding?", &encoding, "rest?", &rest); err != nil {
		return nil, err
	}

	card, err := parseCardinality(cardinality)
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", name, err)
	}
	enc, err := parseEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", name, err)
	}
	policy := macro.RestNotAllowed
	if rest {
		policy = macro.RestAllowed
	}
	return &paramValue{parameter: macro.NewParameter(name, enc, card, policy)}, nil
}

func containerBuiltin(kind nodeKind) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		return &bodyNode{kind: kind, children: append([]starlark.Value(nil), args...)}, nil
	}
}

func symbolBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "text", &text); err != nil {
		return nil, err
	}
	return &bodyNode{kind: nodeScalar, scalar: macro.SymbolValue(ion.NewSymbol(text))}, nil
}

func nullBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var typeName string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "type?", &typeName); err != nil {
		return nil, err
	}
	t, err := parseIonType(typeName)
	if err != nil {
		return nil, fmt.Errorf("null: %w", err)
	}
	return &bodyNode{kind: nodeScalar, scalar: macro.NullValue(t)}, nil
}

func variableBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	return &bodyNode{kind: nodeVariable, variable: name}, nil
}

// annotatedBuiltin is `annotated(["a", "b"], value)`: it wraps any body
// value with an annotation sequence.
func annotatedBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var annotations *starlark.List
	var value starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "annotations", &annotations, "value", &value); err != nil {
		return nil, err
	}

	symbols := make([]ion.Symbol, 0, annotations.Len())
	for i := 0; i < annotations.Len(); i++ {
		s, ok := starlark.AsString(annotations.Index(i))
		if !ok {
			return nil, fmt.Errorf("annotated: annotations[%d] is %s, want string", i, annotations.Index(i).Type())
		}
		symbols = append(symbols, ion.NewSymbol(s))
	}

	node, err := toNode(value)
	if err != nil {
		return nil, fmt.Errorf("annotated: %w", err)
	}
	node.annotations = symbols
	return node, nil
}

type nodeKind uint8

const (
	nodeScalar nodeKind = iota
	nodeSExp
	nodeSeq
	nodeVariable
)

// bodyNode is the Starlark-side representation of a template body
// expression. Scalars carry their value directly; containers keep their
// children as Starlark values and convert them when the declaration is
// compiled.
type bodyNode struct {
	kind        nodeKind
	scalar      macro.TemplateValue
	children    []starlark.Value
	variable    string
	annotations []ion.Symbol
}

func (n *bodyNode) String() string {
	switch n.kind {
	case nodeScalar:
		return n.scalar.String()
	case nodeSExp:
		return fmt.Sprintf("sexp(%d children)", len(n.children))
	case nodeSeq:
		return fmt.Sprintf("seq(%d children)", len(n.children))
	default:
		return "var(" + n.variable + ")"
	}
}

func (n *bodyNode) Type() string {
	switch n.kind {
	case nodeSExp:
		return "sexp"
	case nodeSeq:
		return "seq"
	case nodeVariable:
		return "variable"
	default:
		return "value"
	}
}

func (n *bodyNode) Freeze() {
	for _, c := range n.children {
		c.Freeze()
	}
}

func (n *bodyNode) Truth() starlark.Bool { return starlark.True }

func (n *bodyNode) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", n.Type())
}

// paramValue is the Starlark-side representation of a macro parameter.
type paramValue struct {
	parameter macro.Parameter
}

func (p *paramValue) String() string        { return "param(" + p.parameter.String() + ")" }
func (p *paramValue) Type() string          { return "param" }
func (p *paramValue) Freeze()               {}
func (p *paramValue) Truth() starlark.Bool  { return starlark.True }
func (p *paramValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: param") }

// appendBodyValue feeds one Starlark body value into the builder. Plain
// Starlark scalars map directly: str to string, int to int, float to
// float, bool to bool, None to null.
func appendBodyValue(b *macro.BodyBuilder, v starlark.Value) error {
	if n, ok := v.(*bodyNode); ok {
		return n.appendTo(b)
	}
	scalar, err := scalarValue(v)
	if err != nil {
		return err
	}
	b.Value(scalar)
	return nil
}

func (n *bodyNode) appendTo(b *macro.BodyBuilder) error {
	switch n.kind {
	case nodeScalar:
		b.Value(n.scalar, n.annotations...)
	case nodeSExp, nodeSeq:
		if n.kind == nodeSExp {
			b.BeginSExp(n.annotations...)
		} else {
			b.BeginList(n.annotations...)
		}
		for _, child := range n.children {
			if err := appendBodyValue(b, child); err != nil {
				return err
			}
		}
		b.End()
	case nodeVariable:
		if len(n.annotations) > 0 {
			return fmt.Errorf("variable %q cannot carry annotations", n.variable)
		}
		b.Variable(n.variable)
	}
	return nil
}

func toNode(v starlark.Value) (*bodyNode, error) {
	if n, ok := v.(*bodyNode); ok {
		copied := *n
		return &copied, nil
	}
	scalar, err := scalarValue(v)
	if err != nil {
		return nil, err
	}
	return &bodyNode{kind: nodeScalar, scalar: scalar}, nil
}

func scalarValue(v starlark.Value) (macro.TemplateValue, error) {
	switch val := v.(type) {
	case starlark.String:
		return macro.StringValue(string(val)), nil
	case starlark.Bool:
		return macro.BoolValue(bool(val)), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return macro.TemplateValue{}, fmt.Errorf("int %s does not fit in 64 bits", val)
		}
		return macro.IntValue(i), nil
	case starlark.Float:
		return macro.FloatValue(float64(val)), nil
	case starlark.NoneType:
		return macro.NullValue(ion.NullType), nil
	default:
		return macro.TemplateValue{}, fmt.Errorf("cannot use %s as a template body value", v.Type())
	}
}

func parseCardinality(s string) (macro.ParameterCardinality, error) {
	switch s {
	case "", "!", "exactly-one":
		return macro.ExactlyOne, nil
	case "?", "zero-or-one":
		return macro.ZeroOrOne, nil
	case "*", "zero-or-more":
		return macro.ZeroOrMore, nil
	case "+", "one-or-more":
		return macro.OneOrMore, nil
	default:
		return 0, fmt.Errorf("unknown cardinality %q (want one of !, ?, *, +)", s)
	}
}

func parseEncoding(s string) (macro.ParameterEncoding, error) {
	switch s {
	case "", "tagged":
		return macro.EncodingTagged, nil
	case "flex_uint":
		return macro.EncodingFlexUInt, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q (want tagged or flex_uint)", s)
	}
}

var ionTypeNames = map[string]ion.Type{
	"null":      ion.NullType,
	"bool":      ion.BoolType,
	"int":       ion.IntType,
	"float":     ion.FloatType,
	"decimal":   ion.DecimalType,
	"timestamp": ion.TimestampType,
	"symbol":    ion.SymbolType,
	"string":    ion.StringType,
	"clob":      ion.ClobType,
	"blob":      ion.BlobType,
	"list":      ion.ListType,
	"sexp":      ion.SExpType,
	"struct":    ion.StructType,
}

func parseIonType(s string) (ion.Type, error) {
	if s == "" {
		return ion.NullType, nil
	}
	t, ok := ionTypeNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown ion type %q", s)
	}
	return t, nil
}
