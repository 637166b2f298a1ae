package runtime

import (
	"math"
	"testing"
)

func TestStrictEqualsUnknownNeverEqual(t *testing.T) {
	if bool(StrictEquals(Unknown, Unknown)) {
		t.Error("StrictEquals(Unknown, Unknown) should be false")
	}
	if bool(StrictEquals(Unknown, NumberValue(1))) {
		t.Error("StrictEquals(Unknown, 1) should be false")
	}
}

func TestStrictEqualsReflexiveExceptNaN(t *testing.T) {
	values := []Value{Undefined, Null, True, False, NumberValue(0), NumberValue(-1), NumberValue(3.5), StringValue(""), StringValue("x")}
	for _, v := range values {
		if !bool(StrictEquals(v, v)) {
			t.Errorf("StrictEquals(%v, %v) should be true", v, v)
		}
	}
	nan := NumberValue(math.NaN())
	if bool(StrictEquals(nan, nan)) {
		t.Error("StrictEquals(NaN, NaN) should be false")
	}
}

func TestStrictEqualsDifferentTypes(t *testing.T) {
	if bool(StrictEquals(NumberValue(0), StringValue("0"))) {
		t.Error("StrictEquals(0, \"0\") should be false")
	}
	if bool(StrictEquals(Undefined, Null)) {
		t.Error("StrictEquals(undefined, null) should be false")
	}
}

func TestStrictEqualsPositiveNegativeZero(t *testing.T) {
	if !bool(StrictEquals(NumberValue(0), NumberValue(math.Copysign(0, -1)))) {
		t.Error("StrictEquals(+0, -0) should be true per ES5.1 §11.9.6")
	}
}

func TestAbstractEqualsUnknownPropagates(t *testing.T) {
	if got := AbstractEquals(Unknown, NumberValue(1), noopCall); !IsUnknown(got) {
		t.Errorf("AbstractEquals(Unknown, 1) = %v, want Unknown", got)
	}
}

func TestAbstractEqualsCoercion(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"number==numeric string", NumberValue(1), StringValue("1"), true},
		{"null==undefined", Null, Undefined, true},
		{"null!=0", Null, NumberValue(0), false},
		{"true==1", True, NumberValue(1), true},
		{"false==0", False, NumberValue(0), true},
		{"string!=different string", StringValue("a"), StringValue("b"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AbstractEquals(tt.a, tt.b, noopCall)
			b, ok := got.(BooleanValue)
			if !ok {
				t.Fatalf("AbstractEquals(%v, %v) = %v, want boolean", tt.a, tt.b, got)
			}
			if bool(b) != tt.want {
				t.Errorf("AbstractEquals(%v, %v) = %v, want %v", tt.a, tt.b, b, tt.want)
			}
		})
	}
}

func TestSameValueDistinguishesSignedZero(t *testing.T) {
	posZero := NumberValue(0)
	negZero := NumberValue(math.Copysign(0, -1))
	if SameValue(posZero, negZero) {
		t.Error("SameValue(+0, -0) should be false")
	}
	if bool(StrictEquals(posZero, negZero)) == SameValue(posZero, negZero) {
		// sanity: the two operations must actually disagree on this input
		t.Error("SameValue should differ from StrictEquals at signed zero")
	}
}

func TestSameValueNaNEqualsItself(t *testing.T) {
	nan := NumberValue(math.NaN())
	if !SameValue(nan, nan) {
		t.Error("SameValue(NaN, NaN) should be true")
	}
}

func TestSameValueUnknownNeverSame(t *testing.T) {
	if SameValue(Unknown, Unknown) {
		t.Error("SameValue(Unknown, Unknown) should be false")
	}
}
