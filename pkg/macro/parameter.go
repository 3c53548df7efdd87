package macro

// ParameterEncoding describes how argument values bound to a parameter are
// encoded in a binary invocation.
type ParameterEncoding uint8

// Supported parameter encodings.
const (
	// EncodingTagged arguments carry their own opcode, like any other
	// value in the stream. This is the default and the only encoding the
	// text form can express.
	EncodingTagged ParameterEncoding = iota
	// EncodingFlexUInt arguments are variable-length unsigned integers
	// with no leading opcode.
	EncodingFlexUInt
)

func (e ParameterEncoding) String() string {
	switch e {
	case EncodingTagged:
		return "tagged"
	case EncodingFlexUInt:
		return "flex_uint"
	default:
		return "unknown"
	}
}

// ParameterCardinality constrains how many argument values an invocation
// may bind to a parameter.
type ParameterCardinality uint8

// The four cardinalities, matching the `!`, `?`, `*`, and `+` sigils of
// the definition syntax.
const (
	ExactlyOne ParameterCardinality = iota
	ZeroOrOne
	ZeroOrMore
	OneOrMore
)

func (c ParameterCardinality) String() string {
	switch c {
	case ExactlyOne:
		return "exactly-one"
	case ZeroOrOne:
		return "zero-or-one"
	case ZeroOrMore:
		return "zero-or-more"
	case OneOrMore:
		return "one-or-more"
	default:
		return "unknown"
	}
}

// Sigil returns the cardinality's definition-syntax suffix. ExactlyOne is
// the default in that syntax and has no sigil.
func (c ParameterCardinality) Sigil() string {
	switch c {
	case ZeroOrOne:
		return "?"
	case ZeroOrMore:
		return "*"
	case OneOrMore:
		return "+"
	default:
		return ""
	}
}

// AllowsZero reports whether an invocation may bind no values at all.
func (c ParameterCardinality) AllowsZero() bool {
	return c == ZeroOrOne || c == ZeroOrMore
}

// AllowsMany reports whether an invocation may bind more than one value.
func (c ParameterCardinality) AllowsMany() bool {
	return c == ZeroOrMore || c == OneOrMore
}

// RestSyntaxPolicy governs whether, when a parameter is the final one in a
// signature, an invocation may supply its arguments as a trailing
// unbracketed run rather than an explicit group.
type RestSyntaxPolicy uint8

// Rest syntax policies.
const (
	RestNotAllowed RestSyntaxPolicy = iota
	RestAllowed
)

func (p RestSyntaxPolicy) String() string {
	if p == RestAllowed {
		return "rest-allowed"
	}
	return "rest-not-allowed"
}

// Parameter is one formal parameter of a macro signature. Parameters are
// immutable once constructed.
type Parameter struct {
	name        string
	encoding    ParameterEncoding
	cardinality ParameterCardinality
	restSyntax  RestSyntaxPolicy
}

// NewParameter constructs a parameter. Structural validity (for example,
// that a rest-eligible parameter is last) is checked when the parameter
// list is assembled into a Signature, not here.
func NewParameter(name string, encoding ParameterEncoding, cardinality ParameterCardinality, restSyntax RestSyntaxPolicy) Parameter {
	return Parameter{
		name:        name,
		encoding:    encoding,
		cardinality: cardinality,
		restSyntax:  restSyntax,
	}
}

// Name returns the parameter's name, used for positional binding display
// and for variable references inside template bodies.
func (p Parameter) Name() string {
	return p.name
}

// Encoding returns how bound arguments are encoded in binary invocations.
func (p Parameter) Encoding() ParameterEncoding {
	return p.encoding
}

// Cardinality returns how many argument values may be bound.
func (p Parameter) Cardinality() ParameterCardinality {
	return p.cardinality
}

// RestSyntaxPolicy returns whether trailing rest syntax is permitted when
// this parameter is the signature's final parameter.
func (p Parameter) RestSyntaxPolicy() RestSyntaxPolicy {
	return p.restSyntax
}

// AllowsRest reports whether the parameter accepts rest syntax.
func (p Parameter) AllowsRest() bool {
	return p.restSyntax == RestAllowed
}

// String renders the parameter the way a definition would: name followed
// by the cardinality sigil, e.g. "symbols*".
func (p Parameter) String() string {
	return p.name + p.cardinality.Sigil()
}
