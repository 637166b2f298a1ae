package runtime

import (
	"math"
	"strconv"
	"strings"
)

// This file implements the ES5.1 §9 abstract conversion operations.
// Every conversion that returns a Value returns Unknown, rather than
// panicking or guessing, whenever its input is Unknown. ToBoolean, whose
// BooleanValue result cannot hold Unknown, is the exception (see its doc).

// ToPrimitive implements ES5.1 §9.1. hint is "Number", "String", or "" (no
// hint; DefaultValue then uses "String" for Date objects and "Number" for
// everything else, per §8.12.8).
func ToPrimitive(v Value, hint string, call CallFunc) Value {
	obj, ok := v.(*ObjectValue)
	if !ok {
		return v
	}
	if IsUnknown(v) {
		return Unknown
	}
	result, ok := obj.DefaultValue(hint, call)
	if !ok {
		return Unknown
	}
	return result
}

// ToBoolean implements ES5.1 §9.2. It never fails and never returns
// Unknown for non-Unknown input; branching on an Unknown boolean is what
// enters ambiguous mode, handled by the evaluator rather
// than here.
func ToBoolean(v Value) BooleanValue {
	switch t := v.(type) {
	case UndefinedValue, NullValue:
		return False
	case BooleanValue:
		return t
	case NumberValue:
		f := float64(t)
		return Bool(f != 0 && !math.IsNaN(f))
	case StringValue:
		return Bool(len(t) != 0)
	case *ObjectValue:
		return True
	case UnknownValue:
		return True // ToBoolean(Unknown) is only used by non-branching callers (e.g. String(Unknown)); branching goes through IsUnknown first.
	default:
		return False
	}
}

// ToNumber implements ES5.1 §9.3.
func ToNumber(v Value, call CallFunc) Value {
	switch t := v.(type) {
	case UndefinedValue:
		return NumberValue(math.NaN())
	case NullValue:
		return NumberValue(0)
	case BooleanValue:
		if t {
			return NumberValue(1)
		}
		return NumberValue(0)
	case NumberValue:
		return t
	case StringValue:
		return NumberValue(stringToNumber(string(t)))
	case UnknownValue:
		return Unknown
	case *ObjectValue:
		prim := ToPrimitive(t, "Number", call)
		if IsUnknown(prim) {
			return Unknown
		}
		if _, isObj := prim.(*ObjectValue); isObj {
			return NumberValue(math.NaN())
		}
		return ToNumber(prim, call)
	default:
		return NumberValue(math.NaN())
	}
}

// ToInteger implements ES5.1 §9.4.
func ToInteger(v Value, call CallFunc) Value {
	n := ToNumber(v, call)
	if IsUnknown(n) {
		return Unknown
	}
	f := float64(n.(NumberValue))
	if math.IsNaN(f) {
		return NumberValue(0)
	}
	if f == 0 || math.IsInf(f, 0) {
		return NumberValue(f)
	}
	return NumberValue(math.Trunc(f))
}

// ToInt32 implements ES5.1 §9.5.
func ToInt32(v Value, call CallFunc) Value {
	n := ToNumber(v, call)
	if IsUnknown(n) {
		return Unknown
	}
	return NumberValue(float64(toInt32Float(float64(n.(NumberValue)))))
}

func toInt32Float(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	posInt := math.Trunc(f)
	mod := math.Mod(posInt, 4294967296)
	if mod < 0 {
		mod += 4294967296
	}
	if mod >= 2147483648 {
		return int32(mod - 4294967296)
	}
	return int32(mod)
}

// ToUint32 implements ES5.1 §9.6.
func ToUint32(v Value, call CallFunc) Value {
	n := ToNumber(v, call)
	if IsUnknown(n) {
		return Unknown
	}
	return NumberValue(toUint32Float(float64(n.(NumberValue))))
}

func toUint32Float(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	posInt := math.Trunc(f)
	mod := math.Mod(posInt, 4294967296)
	if mod < 0 {
		mod += 4294967296
	}
	return mod
}

// ToUint16 implements ES5.1 §9.7.
func ToUint16(v Value, call CallFunc) Value {
	n := ToNumber(v, call)
	if IsUnknown(n) {
		return Unknown
	}
	f := float64(n.(NumberValue))
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return NumberValue(0)
	}
	posInt := math.Trunc(f)
	mod := math.Mod(posInt, 65536)
	if mod < 0 {
		mod += 65536
	}
	return NumberValue(mod)
}

// ToString implements ES5.1 §9.8.
func ToString(v Value, call CallFunc) Value {
	switch t := v.(type) {
	case UndefinedValue:
		return StringValue("undefined")
	case NullValue:
		return StringValue("null")
	case BooleanValue:
		return StringValue(t.String())
	case NumberValue:
		return StringValue(formatNumber(float64(t)))
	case StringValue:
		return t
	case UnknownValue:
		return Unknown
	case *ObjectValue:
		prim := ToPrimitive(t, "String", call)
		if IsUnknown(prim) {
			return Unknown
		}
		if _, isObj := prim.(*ObjectValue); isObj {
			return StringValue("[object Object]")
		}
		return ToString(prim, call)
	default:
		return StringValue("")
	}
}

// ToObject implements ES5.1 §9.9, boxing a primitive through the relevant
// built-in wrapper. protos supplies the prototype to attach; the built-ins
// package is the only caller that has those prototypes in hand.
func ToObject(v Value, protos *Prototypes, ctx *ExecutionContext) (Value, *ExceptionValue) {
	switch t := v.(type) {
	case UndefinedValue, NullValue:
		return nil, NewTypeError("cannot convert undefined or null to object", ctx)
	case BooleanValue:
		o := NewObject(protos.Boolean, "Boolean", ctx)
		o.Primitive = t
		return o, nil
	case NumberValue:
		o := NewObject(protos.Number, "Number", ctx)
		o.Primitive = t
		return o, nil
	case StringValue:
		o := NewObject(protos.String, "String", ctx)
		o.Primitive = t
		installStringLength(o)
		return o, nil
	case *ObjectValue:
		return t, nil
	case UnknownValue:
		return Unknown, nil
	default:
		return nil, NewTypeError("cannot convert to object", ctx)
	}
}

// CheckObjectCoercible implements ES5.1 §9.10: everything but
// undefined/null is coercible.
func CheckObjectCoercible(v Value, ctx *ExecutionContext) *ExceptionValue {
	switch v.(type) {
	case UndefinedValue, NullValue:
		return NewTypeError("cannot convert undefined or null to an object", ctx)
	}
	return nil
}

// Prototypes groups the shared built-in prototype objects ToObject needs
// to box a primitive.
type Prototypes struct {
	Object   *ObjectValue
	Function *ObjectValue
	Array    *ObjectValue
	String   *ObjectValue
	Number   *ObjectValue
	Boolean  *ObjectValue
	Date     *ObjectValue
	RegExp   *ObjectValue
	Error    *ObjectValue
}

// stringToNumber implements the StringNumericLiteral grammar of §9.3.1,
// approximated with strconv plus the hex/Infinity/whitespace special
// cases it doesn't cover.
func stringToNumber(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	if trimmed == "Infinity" || trimmed == "+Infinity" {
		return math.Inf(1)
	}
	if trimmed == "-Infinity" {
		return math.Inf(-1)
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "-0x") || strings.HasPrefix(lower, "+0x") {
		neg := strings.HasPrefix(lower, "-")
		digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(lower, "-"), "+"), "0x")
		n, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return math.NaN()
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// formatShortestDecimal renders a finite, non-zero float the way
// ToString(Number) does: the shortest decimal that round-trips, falling
// back to exponential notation for very large/small magnitudes per
// §9.8.1 steps 9-20 (approximated via Go's 'g'-style shortest form).
func formatShortestDecimal(f float64) string {
	abs := math.Abs(f)
	if abs >= 1e21 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	if abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
