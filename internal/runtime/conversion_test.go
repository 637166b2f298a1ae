package runtime

import (
	"math"
	"testing"
)

func noopCall(fn *ObjectValue, this Value, args []Value) (Value, *ExceptionValue) {
	return Undefined, nil
}

func TestToBoolean(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected BooleanValue
	}{
		{"undefined", Undefined, False},
		{"null", Null, False},
		{"true", True, True},
		{"false", False, False},
		{"zero", NumberValue(0), False},
		{"negative zero", NumberValue(math.Copysign(0, -1)), False},
		{"NaN", NumberValue(math.NaN()), False},
		{"nonzero number", NumberValue(1), True},
		{"empty string", StringValue(""), False},
		{"nonempty string", StringValue("a"), True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToBoolean(tt.v); got != tt.expected {
				t.Errorf("ToBoolean(%v) = %v, want %v", tt.v, got, tt.expected)
			}
		})
	}
}

func TestToBooleanObjectAlwaysTrue(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	if !bool(ToBoolean(o)) {
		t.Error("ToBoolean(object) should always be true")
	}
}

func TestToNumberUnknownPropagates(t *testing.T) {
	if got := ToNumber(Unknown, noopCall); !IsUnknown(got) {
		t.Errorf("ToNumber(Unknown) = %v, want Unknown", got)
	}
}

func TestToNumberPrimitives(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want float64
	}{
		{"undefined is NaN", Undefined, math.NaN()},
		{"null is zero", Null, 0},
		{"true is one", True, 1},
		{"false is zero", False, 0},
		{"numeric string", StringValue("42"), 42},
		{"hex string", StringValue("0x1A"), 26},
		{"whitespace string is zero", StringValue("   "), 0},
		{"garbage string is NaN", StringValue("abc"), math.NaN()},
		{"Infinity string", StringValue("Infinity"), math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToNumber(tt.v, noopCall).(NumberValue)
			gf := float64(got)
			if math.IsNaN(tt.want) {
				if !math.IsNaN(gf) {
					t.Errorf("ToNumber(%v) = %v, want NaN", tt.v, gf)
				}
				return
			}
			if gf != tt.want {
				t.Errorf("ToNumber(%v) = %v, want %v", tt.v, gf, tt.want)
			}
		})
	}
}

// ToInt32 must be idempotent: re-applying it to its own result is a no-op,
// since the result is already a signed 32-bit-representable double.
func TestToInt32Idempotent(t *testing.T) {
	inputs := []float64{0, 1, -1, 2147483647, 2147483648, 4294967295, 4294967296, -4294967296.5, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, f := range inputs {
		once := ToInt32(NumberValue(f), noopCall)
		twice := ToInt32(once, noopCall)
		if float64(once.(NumberValue)) != float64(twice.(NumberValue)) {
			t.Errorf("ToInt32 not idempotent for %v: once=%v twice=%v", f, once, twice)
		}
	}
}

func TestToInt32Wraps(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{2147483647, 2147483647},
		{2147483648, -2147483648},
		{4294967295, -1},
		{4294967296, 0},
		{-1, -1},
	}
	for _, tt := range tests {
		got := ToInt32(NumberValue(tt.in), noopCall).(NumberValue)
		if int32(float64(got)) != tt.want {
			t.Errorf("ToInt32(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToInt32UnknownPropagates(t *testing.T) {
	if got := ToInt32(Unknown, noopCall); !IsUnknown(got) {
		t.Errorf("ToInt32(Unknown) = %v, want Unknown", got)
	}
}

func TestToUint32Wraps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{-1, 4294967295},
		{4294967296, 0},
		{4294967297, 1},
	}
	for _, tt := range tests {
		got := ToUint32(NumberValue(tt.in), noopCall).(NumberValue)
		if float64(got) != tt.want {
			t.Errorf("ToUint32(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToStringPrimitives(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", Undefined, "undefined"},
		{"null", Null, "null"},
		{"true", True, "true"},
		{"false", False, "false"},
		{"integer", NumberValue(42), "42"},
		{"NaN", NumberValue(math.NaN()), "NaN"},
		{"Infinity", NumberValue(math.Inf(1)), "Infinity"},
		{"-Infinity", NumberValue(math.Inf(-1)), "-Infinity"},
		{"string passthrough", StringValue("hi"), "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToString(tt.v, noopCall).(StringValue)
			if string(got) != tt.want {
				t.Errorf("ToString(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestToStringUnknownPropagates(t *testing.T) {
	if got := ToString(Unknown, noopCall); !IsUnknown(got) {
		t.Errorf("ToString(Unknown) = %v, want Unknown", got)
	}
}

func TestCheckObjectCoercible(t *testing.T) {
	if exc := CheckObjectCoercible(Undefined, nil); exc == nil {
		t.Error("CheckObjectCoercible(undefined) should throw")
	}
	if exc := CheckObjectCoercible(Null, nil); exc == nil {
		t.Error("CheckObjectCoercible(null) should throw")
	}
	if exc := CheckObjectCoercible(NumberValue(0), nil); exc != nil {
		t.Errorf("CheckObjectCoercible(0) should not throw, got %v", exc)
	}
	if exc := CheckObjectCoercible(Unknown, nil); exc != nil {
		t.Errorf("CheckObjectCoercible(Unknown) should not throw, got %v", exc)
	}
}

func TestToObjectBoxesPrimitives(t *testing.T) {
	protos := &Prototypes{}
	v, exc := ToObject(StringValue("abc"), protos, nil)
	if exc != nil {
		t.Fatalf("ToObject(string) errored: %v", exc)
	}
	obj, ok := v.(*ObjectValue)
	if !ok {
		t.Fatalf("ToObject(string) did not return an object, got %T", v)
	}
	if obj.Primitive != StringValue("abc") {
		t.Errorf("boxed string object Primitive = %v, want abc", obj.Primitive)
	}
}

func TestToObjectRejectsUndefinedAndNull(t *testing.T) {
	protos := &Prototypes{}
	if _, exc := ToObject(Undefined, protos, nil); exc == nil {
		t.Error("ToObject(undefined) should throw a TypeError")
	}
	if _, exc := ToObject(Null, protos, nil); exc == nil {
		t.Error("ToObject(null) should throw a TypeError")
	}
}

func TestToObjectPassesUnknownThrough(t *testing.T) {
	protos := &Prototypes{}
	v, exc := ToObject(Unknown, protos, nil)
	if exc != nil {
		t.Fatalf("ToObject(Unknown) errored: %v", exc)
	}
	if !IsUnknown(v) {
		t.Errorf("ToObject(Unknown) = %v, want Unknown", v)
	}
}
