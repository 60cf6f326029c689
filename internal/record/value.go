// Package record decodes SQLite's record format: a header of per-column
// serial types followed by a body of variable-length values, and the
// tagged value union those values are exposed as.
package record

import "strconv"

// Kind tags which variant of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
	KindBlob
)

// Value is the decoded form of one column in one row: exactly one of its
// fields is meaningful, selected by Kind. Comparisons and output rendering
// never consult SQLite's type-affinity rules — byte comparison only, per
// this engine's scope.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bytes []byte // Text or Blob payload
}

// Null is the shared NULL value.
func Null() Value { return Value{Kind: KindNull} }

// Int64 builds an integer value.
func Int64(v int64) Value { return Value{Kind: KindInt, Int: v} }

// Float64 builds a floating-point value.
func Float64(v float64) Value { return Value{Kind: KindFloat, Float: v} }

// Text builds a text value from raw bytes.
func Text(b []byte) Value { return Value{Kind: KindText, Bytes: b} }

// Blob builds a blob value from raw bytes.
func Blob(b []byte) Value { return Value{Kind: KindBlob, Bytes: b} }

// String renders v the way output concatenation requires: NULL becomes
// the empty string, Int/Float their natural decimal form, Text/Blob their
// raw bytes.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindText, KindBlob:
		return string(v.Bytes)
	default:
		return ""
	}
}

// Equal reports whether two values compare equal under byte/value
// comparison (no type coercion beyond what SQLite's own Int/Float split
// already encodes).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindInt:
		return v.Int == other.Int
	case KindFloat:
		return v.Float == other.Float
	case KindText, KindBlob:
		return string(v.Bytes) == string(other.Bytes)
	default:
		return false
	}
}
