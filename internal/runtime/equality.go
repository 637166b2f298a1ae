package runtime

import "math"

// StrictEquals implements ES5.1 §11.9.6 (`===`). Unknown is never strictly
// equal to anything, including itself — callers branching on
// StrictEquals(a, b) when either side IsUnknown(a) || IsUnknown(b) must
// instead enter ambiguous mode; this function only answers
// the question for two known values.
func StrictEquals(a, b Value) BooleanValue {
	if IsUnknown(a) || IsUnknown(b) {
		return False
	}
	if a.Type() != b.Type() {
		return False
	}
	switch x := a.(type) {
	case UndefinedValue, NullValue:
		return True
	case BooleanValue:
		y := b.(BooleanValue)
		return Bool(x == y)
	case NumberValue:
		y := b.(NumberValue)
		return Bool(float64(x) == float64(y))
	case StringValue:
		y := b.(StringValue)
		return Bool(x == y)
	case *ObjectValue:
		y := b.(*ObjectValue)
		return Bool(x == y)
	default:
		return False
	}
}

// AbstractEquals implements ES5.1 §11.9.3 (`==`), including the coercion
// steps between Number/String/Boolean/Object. call lets step 9's ToPrimitive
// invoke valueOf/toString.
func AbstractEquals(a, b Value, call CallFunc) Value {
	if IsUnknown(a) || IsUnknown(b) {
		return Unknown
	}
	if a.Type() == b.Type() {
		return StrictEquals(a, b)
	}
	_, aUndef := a.(UndefinedValue)
	_, aNull := a.(NullValue)
	_, bUndef := b.(UndefinedValue)
	_, bNull := b.(NullValue)
	if (aUndef || aNull) && (bUndef || bNull) {
		return True
	}
	if aUndef || aNull || bUndef || bNull {
		return False
	}
	if _, ok := a.(NumberValue); ok {
		if _, ok := b.(StringValue); ok {
			return AbstractEquals(a, ToNumber(b, call), call)
		}
	}
	if _, ok := a.(StringValue); ok {
		if _, ok := b.(NumberValue); ok {
			return AbstractEquals(ToNumber(a, call), b, call)
		}
	}
	if ab, ok := a.(BooleanValue); ok {
		return AbstractEquals(ToNumber(ab, call), b, call)
	}
	if bb, ok := b.(BooleanValue); ok {
		return AbstractEquals(a, ToNumber(bb, call), call)
	}
	switch a.(type) {
	case NumberValue, StringValue:
		if _, ok := b.(*ObjectValue); ok {
			prim := ToPrimitive(b, "", call)
			if IsUnknown(prim) {
				return Unknown
			}
			return AbstractEquals(a, prim, call)
		}
	}
	switch b.(type) {
	case NumberValue, StringValue:
		if _, ok := a.(*ObjectValue); ok {
			prim := ToPrimitive(a, "", call)
			if IsUnknown(prim) {
				return Unknown
			}
			return AbstractEquals(prim, b, call)
		}
	}
	return False
}

// SameValue implements ES5.1 §9.12, used by [[DefineOwnProperty]]'s
// descriptor-equivalence check. It differs from
// StrictEquals at +0/-0 and NaN.
func SameValue(a, b Value) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case NumberValue:
		y := b.(NumberValue)
		fx, fy := float64(x), float64(y)
		if math.IsNaN(fx) && math.IsNaN(fy) {
			return true
		}
		if fx == 0 && fy == 0 {
			return math.Signbit(fx) == math.Signbit(fy)
		}
		return fx == fy
	default:
		return bool(StrictEquals(a, b))
	}
}

// sameValueStrict is the internal alias DefineOwnProperty uses; SameValue
// is exported for the engine's testable-properties suite.
func sameValueStrict(a, b Value) bool { return SameValue(a, b) }
