// Package runtime implements the abstract value model, environment
// records, execution contexts, and ambiguous/skipped execution machinery.
// It is deliberately one package: the value, conversion, and reference
// layers cross-reference each other heavily (ToObject boxes a primitive
// into an Object carrying a prototype; GetValue resolves a Reference
// through an Object's [[Get]]; [[Put]] invokes ToString on property keys),
// and splitting them would mean either an import cycle or an adapter
// interface at every call site.
package runtime

import (
	"fmt"
	"math"
)

// ValueType is the variant tag every Value carries.
type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeReference
	TypeUnknown
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeReference:
		return "reference"
	case TypeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Value is implemented by every runtime value: the six ES5.1 language
// types and the engine's own Unknown variant. TypeReference has a tag
// above, but Reference (reference.go) is a separate struct and does not
// implement Value. String returns a short debug representation; it is not
// the ES5.1 ToString abstract operation (see conversion.go for that).
type Value interface {
	Type() ValueType
	String() string
}

// UndefinedValue is ES5.1's `undefined`.
type UndefinedValue struct{}

func (UndefinedValue) Type() ValueType { return TypeUndefined }
func (UndefinedValue) String() string  { return "undefined" }

// NullValue is ES5.1's `null`.
type NullValue struct{}

func (NullValue) Type() ValueType { return TypeNull }
func (NullValue) String() string  { return "null" }

// BooleanValue wraps a Go bool.
type BooleanValue bool

func (b BooleanValue) Type() ValueType { return TypeBoolean }
func (b BooleanValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

// NumberValue wraps an IEEE 754 double, including NaN and the signed
// infinities/zeros ES5.1 numbers require.
type NumberValue float64

func (n NumberValue) Type() ValueType { return TypeNumber }
func (n NumberValue) String() string  { return formatNumber(float64(n)) }

// IsNaN reports whether n is NaN.
func (n NumberValue) IsNaN() bool { return math.IsNaN(float64(n)) }

// StringValue wraps an immutable UTF-16-semantic string. Go strings are
// UTF-8; indexing and length use UTF-16 code unit counts (via utf16.Encode)
// wherever ES5.1 semantics require it (see conversion.go/string_object.go).
type StringValue string

func (s StringValue) Type() ValueType { return TypeString }
func (s StringValue) String() string  { return string(s) }

// UnknownValue is the engine's defining invention: a value
// whose identity is statically indeterminate. Reason documents why it was
// created, purely for diagnostics; no operation may branch on it.
type UnknownValue struct {
	Reason string
}

func (UnknownValue) Type() ValueType { return TypeUnknown }
func (u UnknownValue) String() string {
	if u.Reason != "" {
		return fmt.Sprintf("Unknown(%s)", u.Reason)
	}
	return "Unknown"
}

// Singletons for the values that carry no state of their own.
var (
	Undefined = UndefinedValue{}
	Null      = NullValue{}
	True      = BooleanValue(true)
	False     = BooleanValue(false)
	Unknown   = UnknownValue{}
)

// Bool returns True or False for a Go bool.
func Bool(b bool) BooleanValue {
	if b {
		return True
	}
	return False
}

// UnknownBecause builds an Unknown value carrying a diagnostic reason.
func UnknownBecause(reason string) UnknownValue {
	return UnknownValue{Reason: reason}
}

// IsUnknown reports whether v is the Unknown variant.
func IsUnknown(v Value) bool {
	_, ok := v.(UnknownValue)
	return ok
}

// formatNumber renders a float64 the way ES5.1's ToString(Number) does for
// the common finite/NaN/Infinity cases (full §9.8.1 radix-free decimal
// shortest-round-trip rules are approximated by strconv's shortest form).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "0" // ES5.1 ToString(-0) is "0"; only +0/-0 equality distinguishes it
		}
		return "0"
	}
	return formatShortestDecimal(f)
}
