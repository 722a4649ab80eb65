package graphml

import "strconv"

// Kind identifies the scalar type of a decoded attribute value.
type Kind int

const (
	// KindString is plain text, and the fallback for failed decodes.
	KindString Kind = iota
	// KindBool is a boolean decoded from the literal vocabulary "true"/"false".
	KindBool
	// KindInt is a signed integer (GraphML "int" and "long" declarations).
	KindInt
	// KindTimestamp is an integer microsecond counter from the page load start.
	KindTimestamp
	// KindFloat is a floating-point number (GraphML "float" and "double").
	KindFloat
)

// String returns the GraphML-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindInt:
		return "int"
	case KindTimestamp:
		return "timestamp"
	case KindFloat:
		return "double"
	default:
		return "string"
	}
}

// Value is one decoded attribute value.
//
// Decoding is total: when the raw text does not parse as its declared type,
// the value keeps its original string form with Failed set, and the caller
// decides whether that attribute was required (hard failure) or optional
// (degrade to absent).
type Value struct {
	Kind   Kind
	Raw    string // original text as written in the document
	Bool   bool   // valid when Kind == KindBool and !Failed
	Int    int64  // valid when Kind is KindInt or KindTimestamp and !Failed
	Float  float64
	Failed bool // declared type did not parse; value degrades to Raw
}

// String returns the original source text of the value.
func (v Value) String() string { return v.Raw }

// AsBool returns the boolean value and whether it decoded successfully.
func (v Value) AsBool() (bool, bool) {
	return v.Bool, v.Kind == KindBool && !v.Failed
}

// AsInt returns the integer value and whether it decoded successfully.
func (v Value) AsInt() (int64, bool) {
	return v.Int, (v.Kind == KindInt || v.Kind == KindTimestamp) && !v.Failed
}

// AsTimestamp returns the timestamp value and whether it decoded successfully.
// Timestamps are the format's integer microsecond counters.
func (v Value) AsTimestamp() (int64, bool) {
	return v.Int, v.Kind == KindTimestamp && !v.Failed
}

// timestampAttr is the attribute name whose numeric values carry event times.
const timestampAttr = "timestamp"

// DecodeValue converts one raw attribute string into a typed scalar according
// to its declared GraphML type. Numeric attributes named "timestamp" decode
// as KindTimestamp. DecodeValue is pure and never fails: unparseable input
// yields a Failed value preserving the raw text.
func DecodeValue(name, declaredType, raw string) Value {
	switch declaredType {
	case "boolean":
		switch raw {
		case "true":
			return Value{Kind: KindBool, Raw: raw, Bool: true}
		case "false":
			return Value{Kind: KindBool, Raw: raw}
		}
		return Value{Kind: KindBool, Raw: raw, Failed: true}

	case "int", "long":
		kind := KindInt
		if name == timestampAttr {
			kind = KindTimestamp
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{Kind: kind, Raw: raw, Failed: true}
		}
		return Value{Kind: kind, Raw: raw, Int: n}

	case "float", "double":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{Kind: KindFloat, Raw: raw, Failed: true}
		}
		return Value{Kind: KindFloat, Raw: raw, Float: f}

	default:
		return Value{Kind: KindString, Raw: raw}
	}
}
