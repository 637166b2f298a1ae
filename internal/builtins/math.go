package builtins

import (
	"math"
	"math/rand"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installMath wires the Math object (ES5.1 §15.8): a plain Object, not a
// constructor, whose own properties are read-only constants and unary/
// binary numeric functions.
func (b *builder) installMath(global *runtime.ObjectValue) {
	m := runtime.NewObject(b.realm.Protos.Object, "Math", b.ctx)

	b.value(m, "E", runtime.NumberValue(math.E))
	b.value(m, "LN10", runtime.NumberValue(math.Log(10)))
	b.value(m, "LN2", runtime.NumberValue(math.Log(2)))
	b.value(m, "LOG2E", runtime.NumberValue(1/math.Log(2)))
	b.value(m, "LOG10E", runtime.NumberValue(1/math.Log(10)))
	b.value(m, "PI", runtime.NumberValue(math.Pi))
	b.value(m, "SQRT1_2", runtime.NumberValue(math.Sqrt(0.5)))
	b.value(m, "SQRT2", runtime.NumberValue(math.Sqrt2))

	unary := map[string]func(float64) float64{
		"abs": math.Abs, "ceil": math.Ceil, "floor": math.Floor,
		"sqrt": math.Sqrt, "sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
		"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
		"exp": math.Exp, "log": math.Log,
	}
	for name, fn := range unary {
		b.method(m, name, 1, "Math."+name, CategoryMath, "returns the "+name+" of the argument", mathUnary(fn))
	}
	b.method(m, "round", 1, "Math.round", CategoryMath, "returns the argument rounded to the nearest integer, half up", mathRound)
	b.method(m, "max", 2, "Math.max", CategoryMath, "returns the largest argument", mathMax)
	b.method(m, "min", 2, "Math.min", CategoryMath, "returns the smallest argument", mathMin)
	b.method(m, "pow", 2, "Math.pow", CategoryMath, "returns the first argument raised to the second", mathPow)
	b.method(m, "atan2", 2, "Math.atan2", CategoryMath, "returns the angle of the point (x, y)", mathAtan2)
	b.method(m, "random", 0, "Math.random", CategoryMath, "returns a pseudo-random number in [0, 1); not statically known", mathRandom)

	global.DefineOwnProperty("Math", runtime.DataDescriptor(m, true, false, true), true, nil)
}

func mathUnary(fn func(float64) float64) runtime.NativeFunc {
	return func(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
		f, ok := numArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		return runtime.NumberValue(fn(f)), nil
	}
}

func mathRound(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok := numArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(math.Floor(f + 0.5)), nil
}

func mathMax(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if len(args) == 0 {
		return runtime.NumberValue(math.Inf(-1)), nil
	}
	best := math.Inf(-1)
	for i := range args {
		f, ok := numArg(ctx, args, i)
		if !ok {
			return runtime.Unknown, nil
		}
		if math.IsNaN(f) {
			return runtime.NumberValue(math.NaN()), nil
		}
		if f > best {
			best = f
		}
	}
	return runtime.NumberValue(best), nil
}

func mathMin(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if len(args) == 0 {
		return runtime.NumberValue(math.Inf(1)), nil
	}
	best := math.Inf(1)
	for i := range args {
		f, ok := numArg(ctx, args, i)
		if !ok {
			return runtime.Unknown, nil
		}
		if math.IsNaN(f) {
			return runtime.NumberValue(math.NaN()), nil
		}
		if f < best {
			best = f
		}
	}
	return runtime.NumberValue(best), nil
}

func mathPow(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	x, ok := numArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	y, ok := numArg(ctx, args, 1)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(math.Pow(x, y)), nil
}

func mathAtan2(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	y, ok := numArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	x, ok := numArg(ctx, args, 1)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(math.Atan2(y, x)), nil
}

// mathRandom reports Unknown outside exact mode: a static analyzer has no
// way to know which value a real run would draw. In exact mode it draws a
// real pseudo-random number, like Date's "now" forms.
func mathRandom(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if cfg := ctx.Realm().Config; cfg != nil && cfg.ExactMode {
		return runtime.NumberValue(rand.Float64()), nil
	}
	return runtime.Unknown, nil
}
