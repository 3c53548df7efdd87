package macro

import (
	"fmt"
	"strings"
)

// Signature is the ordered parameter list of a macro. Order is the
// positional binding order for invocations. A Signature is validated once
// at construction and immutable afterwards.
type Signature struct {
	parameters []Parameter
}

// NewSignature validates and assembles a parameter list. It returns a
// *SignatureError if a rest-eligible parameter is followed by further
// parameters: rest syntax consumes every remaining argument expression in
// an invocation, so anything after it could never be bound.
func NewSignature(parameters ...Parameter) (Signature, error) {
	for i, p := range parameters {
		if p.AllowsRest() && i != len(parameters)-1 {
			return Signature{}, &SignatureError{
				ParameterName: p.Name(),
				Message:       "only the final parameter may allow rest syntax",
			}
		}
	}
	params := make([]Parameter, len(parameters))
	copy(params, parameters)
	return Signature{parameters: params}, nil
}

// MustSignature is like NewSignature but panics on validation failure.
// Intended for statically known signatures (the system macro set, tests).
func MustSignature(parameters ...Parameter) Signature {
	sig, err := NewSignature(parameters...)
	if err != nil {
		panic(err)
	}
	return sig
}

// Len returns the number of parameters.
func (s Signature) Len() int {
	return len(s.parameters)
}

// At returns the parameter at the given position.
func (s Signature) At(index int) Parameter {
	return s.parameters[index]
}

// Parameters returns a copy of the parameter list.
func (s Signature) Parameters() []Parameter {
	params := make([]Parameter, len(s.parameters))
	copy(params, s.parameters)
	return params
}

// ParameterIndex returns the position of the named parameter, or false if
// the signature has no parameter with that name.
func (s Signature) ParameterIndex(name string) (int, bool) {
	for i, p := range s.parameters {
		if p.Name() == name {
			return i, true
		}
	}
	return 0, false
}

// String renders the signature in definition style, e.g.
// "(annotations* value_to_annotate)".
func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range s.parameters {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// SignatureError reports a structurally invalid parameter list.
type SignatureError struct {
	ParameterName string
	Message       string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid macro signature: parameter %q: %s", e.ParameterName, e.Message)
}
