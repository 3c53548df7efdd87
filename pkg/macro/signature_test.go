package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameter_Accessors(t *testing.T) {
	p := NewParameter("symbols", EncodingTagged, ZeroOrMore, RestAllowed)

	assert.Equal(t, "symbols", p.Name())
	assert.Equal(t, EncodingTagged, p.Encoding())
	assert.Equal(t, ZeroOrMore, p.Cardinality())
	assert.Equal(t, RestAllowed, p.RestSyntaxPolicy())
	assert.True(t, p.AllowsRest())
	assert.Equal(t, "symbols*", p.String())
}

func TestParameterCardinality_Sigils(t *testing.T) {
	tests := []struct {
		cardinality ParameterCardinality
		sigil       string
		allowsZero  bool
		allowsMany  bool
	}{
		{ExactlyOne, "", false, false},
		{ZeroOrOne, "?", true, false},
		{ZeroOrMore, "*", true, true},
		{OneOrMore, "+", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.cardinality.String(), func(t *testing.T) {
			assert.Equal(t, tt.sigil, tt.cardinality.Sigil())
			assert.Equal(t, tt.allowsZero, tt.cardinality.AllowsZero())
			assert.Equal(t, tt.allowsMany, tt.cardinality.AllowsMany())
		})
	}
}

func TestNewSignature_Empty(t *testing.T) {
	sig, err := NewSignature()
	require.NoError(t, err)

	assert.Equal(t, 0, sig.Len())
	assert.Equal(t, "()", sig.String())
}

func TestNewSignature_RestParameterMustBeLast(t *testing.T) {
	rest := NewParameter("values", EncodingTagged, ZeroOrMore, RestAllowed)
	one := NewParameter("target", EncodingTagged, ExactlyOne, RestNotAllowed)

	_, err := NewSignature(rest, one)
	require.Error(t, err)

	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "values", sigErr.ParameterName)
	assert.Contains(t, err.Error(), "invalid macro signature")
}

func TestNewSignature_RestParameterLastIsValid(t *testing.T) {
	one := NewParameter("target", EncodingTagged, ExactlyOne, RestNotAllowed)
	rest := NewParameter("values", EncodingTagged, ZeroOrMore, RestAllowed)

	sig, err := NewSignature(one, rest)
	require.NoError(t, err)

	assert.Equal(t, 2, sig.Len())
	assert.Equal(t, "(target values*)", sig.String())
}

func TestSignature_ParameterIndex(t *testing.T) {
	sig := MustSignature(
		NewParameter("annotations", EncodingTagged, ZeroOrMore, RestNotAllowed),
		NewParameter("value_to_annotate", EncodingTagged, ExactlyOne, RestNotAllowed),
	)

	idx, ok := sig.ParameterIndex("value_to_annotate")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = sig.ParameterIndex("missing")
	assert.False(t, ok)
}

func TestSignature_ParametersReturnsCopy(t *testing.T) {
	sig := MustSignature(NewParameter("x", EncodingTagged, ExactlyOne, RestNotAllowed))

	params := sig.Parameters()
	params[0] = NewParameter("clobbered", EncodingTagged, ZeroOrMore, RestAllowed)

	assert.Equal(t, "x", sig.At(0).Name())
}

func TestMustSignature_PanicsOnInvalid(t *testing.T) {
	rest := NewParameter("values", EncodingTagged, ZeroOrMore, RestAllowed)
	one := NewParameter("target", EncodingTagged, ExactlyOne, RestNotAllowed)

	assert.Panics(t, func() {
		MustSignature(rest, one)
	})
}
