package builtins

import (
	"math"
	"strconv"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installNumber wires the Number constructor and Number.prototype (ES5.1
// §15.7), plus the numeric limit constants every built-in library of this
// vintage exposes as non-writable statics.
func (b *builder) installNumber(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Number

	b.method(proto, "toString", 1, "Number.prototype.toString", CategoryNumber, "returns a string representation in the given radix", numberToString)
	b.method(proto, "valueOf", 0, "Number.prototype.valueOf", CategoryNumber, "returns the wrapped primitive number", numberValueOf)
	b.method(proto, "toFixed", 1, "Number.prototype.toFixed", CategoryNumber, "returns a fixed-point decimal string", numberToFixed)
	b.method(proto, "toPrecision", 1, "Number.prototype.toPrecision", CategoryNumber, "returns a string with the given number of significant digits", numberToPrecision)
	b.method(proto, "toExponential", 1, "Number.prototype.toExponential", CategoryNumber, "returns an exponential-notation string", numberToExponential)
	b.method(proto, "toLocaleString", 0, "Number.prototype.toLocaleString", CategoryNumber, "returns a locale-formatted string", numberToString)

	ctor := b.ctorBuilder("Number", 1, proto, numberConstructor)
	b.value(ctor, "MAX_VALUE", runtime.NumberValue(math.MaxFloat64))
	b.value(ctor, "MIN_VALUE", runtime.NumberValue(5e-324))
	b.value(ctor, "NaN", runtime.NumberValue(math.NaN()))
	b.value(ctor, "POSITIVE_INFINITY", runtime.NumberValue(math.Inf(1)))
	b.value(ctor, "NEGATIVE_INFINITY", runtime.NumberValue(math.Inf(-1)))
	b.installGlobal(global, "Number", ctor)
}

func numberConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	var nv runtime.Value = runtime.NumberValue(0)
	if len(args) > 0 {
		nv = runtime.ToNumber(args[0], callFn(ctx))
	}
	if obj, ok := this.(*runtime.ObjectValue); ok && obj.ClassName == "Object" && obj.Prototype == ctx.Realm().Protos.Number {
		obj.ClassName = "Number"
		obj.Primitive = nv
		return obj, nil
	}
	return nv, nil
}

func thisNumber(ctx *runtime.ExecutionContext, this runtime.Value, method string) (float64, bool, *runtime.ExceptionValue) {
	switch v := this.(type) {
	case runtime.NumberValue:
		return float64(v), true, nil
	case *runtime.ObjectValue:
		if v.ClassName == "Number" && v.Primitive != nil {
			return float64(v.Primitive.(runtime.NumberValue)), true, nil
		}
	}
	return 0, false, runtime.NewTypeError(method+" called on incompatible receiver", ctx)
}

func numberValueOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok, exc := thisNumber(ctx, this, "Number.prototype.valueOf")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(f), nil
}

func numberToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok, exc := thisNumber(ctx, this, "Number.prototype.toString")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	radix := 10
	if len(args) > 0 {
		if _, isUndef := args[0].(runtime.UndefinedValue); !isUndef {
			r, ok := intArg(ctx, args, 0)
			if !ok {
				return runtime.Unknown, nil
			}
			if r < 2 || r > 36 {
				return nil, runtime.NewRangeError("toString radix must be between 2 and 36", ctx)
			}
			radix = r
		}
	}
	if radix == 10 {
		return runtime.StringValue(formatNumberValue(f)), nil
	}
	if math.IsNaN(f) {
		return runtime.StringValue("NaN"), nil
	}
	neg := f < 0
	if neg {
		f = -f
	}
	whole := int64(f)
	s := strconv.FormatInt(whole, radix)
	if neg {
		s = "-" + s
	}
	return runtime.StringValue(s), nil
}

func formatNumberValue(f float64) string {
	return string(runtime.ToString(runtime.NumberValue(f), nil).(runtime.StringValue))
}

func numberToFixed(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok, exc := thisNumber(ctx, this, "Number.prototype.toFixed")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	digits := 0
	if len(args) > 0 {
		d, ok := intArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		digits = d
	}
	if digits < 0 || digits > 20 {
		return nil, runtime.NewRangeError("toFixed digits must be between 0 and 20", ctx)
	}
	if math.IsNaN(f) {
		return runtime.StringValue("NaN"), nil
	}
	if math.Abs(f) >= 1e21 {
		return runtime.StringValue(formatNumberValue(f)), nil
	}
	return runtime.StringValue(strconv.FormatFloat(f, 'f', digits, 64)), nil
}

func numberToPrecision(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok, exc := thisNumber(ctx, this, "Number.prototype.toPrecision")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	if len(args) == 0 || func() bool { _, isUndef := args[0].(runtime.UndefinedValue); return isUndef }() {
		return runtime.StringValue(formatNumberValue(f)), nil
	}
	precision, ok := intArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	if precision < 1 || precision > 21 {
		return nil, runtime.NewRangeError("toPrecision argument must be between 1 and 21", ctx)
	}
	if math.IsNaN(f) {
		return runtime.StringValue("NaN"), nil
	}
	return runtime.StringValue(strconv.FormatFloat(f, 'g', precision, 64)), nil
}

func numberToExponential(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok, exc := thisNumber(ctx, this, "Number.prototype.toExponential")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	digits := -1
	if len(args) > 0 {
		if _, isUndef := args[0].(runtime.UndefinedValue); !isUndef {
			d, ok := intArg(ctx, args, 0)
			if !ok {
				return runtime.Unknown, nil
			}
			if d < 0 || d > 20 {
				return nil, runtime.NewRangeError("toExponential digits must be between 0 and 20", ctx)
			}
			digits = d
		}
	}
	if math.IsNaN(f) {
		return runtime.StringValue("NaN"), nil
	}
	s := strconv.FormatFloat(f, 'e', digits, 64)
	return runtime.StringValue(normalizeExponent(s)), nil
}

// normalizeExponent rewrites Go's "e+05" exponent form to JS's "e+5".
func normalizeExponent(s string) string {
	idx := -1
	for i, c := range s {
		if c == 'e' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	for len(exp) > 1 && exp[0] == '0' {
		exp = exp[1:]
	}
	return mantissa + "e" + sign + exp
}
