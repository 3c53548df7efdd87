// Package ion defines the minimal value-model vocabulary shared between
// the macro subsystem and the readers/writers that consume it: the Ion
// type enumeration and symbol values. The full value model (lazy values,
// raw tokens, wire encodings) lives with the reader layers; macro tables
// and template bodies only need to talk about types, nullability, and
// symbol text.
package ion

// Type identifies one of the Ion data model's types.
type Type uint8

// The Ion types, in the data model's canonical order.
const (
	NullType Type = iota
	BoolType
	IntType
	FloatType
	DecimalType
	TimestampType
	SymbolType
	StringType
	ClobType
	BlobType
	ListType
	SExpType
	StructType
)

func (t Type) String() string {
	switch t {
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case DecimalType:
		return "decimal"
	case TimestampType:
		return "timestamp"
	case SymbolType:
		return "symbol"
	case StringType:
		return "string"
	case ClobType:
		return "clob"
	case BlobType:
		return "blob"
	case ListType:
		return "list"
	case SExpType:
		return "sexp"
	case StructType:
		return "struct"
	default:
		return "unknown"
	}
}

// IsContainer reports whether values of this type hold nested values.
func (t Type) IsContainer() bool {
	return t == ListType || t == SExpType || t == StructType
}

// Symbol is an interned identifier with known text. Symbols are immutable
// value types; two symbols compare equal when their text is equal, which
// lets shared annotation storage be compared and deduplicated cheaply.
type Symbol struct {
	text string
}

// NewSymbol returns a symbol with the given text.
func NewSymbol(text string) Symbol {
	return Symbol{text: text}
}

// Text returns the symbol's text.
func (s Symbol) Text() string {
	return s.text
}

func (s Symbol) String() string {
	return s.text
}

// SymbolTexts converts a slice of symbols to their text representations.
// Handy for display and for building deduplication keys.
func SymbolTexts(symbols []Symbol) []string {
	texts := make([]string, len(symbols))
	for i, s := range symbols {
		texts[i] = s.Text()
	}
	return texts
}
