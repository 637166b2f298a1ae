package builtins

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/jsstatic/internal/events"
	"github.com/cwbudde/jsstatic/internal/runtime"
)

// callFn builds a runtime.CallFunc bound to ctx, the adapter every value-layer
// operation (ToPrimitive, Get on an accessor, Array.prototype.sort's
// comparator, ...) needs to invoke a callable Object without this package
// importing the evaluator.
func callFn(ctx *runtime.ExecutionContext) runtime.CallFunc {
	return func(fn *runtime.ObjectValue, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
		return runtime.Call(ctx, fn, this, args, ctx.Realm().Invoke)
	}
}

// realmCall is callFn's counterpart for the handful of places (the global
// object environment record) that must capture a CallFunc before any
// execution context exists: it resolves the current context lazily, at
// call time, from the realm's stack instead of a fixed ctx value.
func realmCall(realm *runtime.Realm) runtime.CallFunc {
	return func(fn *runtime.ObjectValue, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
		return runtime.Call(realm.CurrentContext(), fn, this, args, realm.Invoke)
	}
}

// realmTypeErrorHook mirrors the evaluator's recoverable-exception policy
// for the one onTypeError callback — the global object's environment
// record — that must be built before the evaluator exists.
func realmTypeErrorHook(realm *runtime.Realm) func(string) {
	return func(msg string) {
		ctx := realm.CurrentContext()
		exc := runtime.NewTypeError(msg, ctx)
		exact := realm.Config != nil && realm.Config.ExactMode
		recovery := realm.Config == nil || realm.Config.NativeExceptionRecovery
		if exact || realm.InTryCatch() || !recovery {
			realm.SetException(exc)
			return
		}
		realm.Events.Emit(events.Event{
			Kind: events.ErrorReported, ErrorKind: exc.Kind, Message: exc.Value.String(),
			StackTrace: exc.StackTrace, RunID: realm.RunID.String(),
		})
	}
}

// arg returns args[i], or Undefined if the call site omitted it — every
// ES5.1 native function treats a missing argument the same as an explicit
// undefined.
func arg(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}

// anyUnknown reports whether this or any argument is Unknown: every native
// function must propagate Unknown rather than do any real work on it.
func anyUnknown(this runtime.Value, args ...runtime.Value) bool {
	if runtime.IsUnknown(this) {
		return true
	}
	for _, a := range args {
		if runtime.IsUnknown(a) {
			return true
		}
	}
	return false
}

// thisObject requires this to be an Object, reporting a TypeError named
// after method if it is not.
func thisObject(ctx *runtime.ExecutionContext, this runtime.Value, method string) (*runtime.ObjectValue, *runtime.ExceptionValue) {
	obj, ok := this.(*runtime.ObjectValue)
	if !ok {
		return nil, runtime.NewTypeError(method+" called on non-object", ctx)
	}
	return obj, nil
}

// numArg converts args[i] with ToNumber, returning ok=false when the
// result is Unknown.
func numArg(ctx *runtime.ExecutionContext, args []runtime.Value, i int) (float64, bool) {
	n := runtime.ToNumber(arg(args, i), callFn(ctx))
	if runtime.IsUnknown(n) {
		return 0, false
	}
	return float64(n.(runtime.NumberValue)), true
}

// strArg converts args[i] with ToString, returning ok=false when the
// result is Unknown.
func strArg(ctx *runtime.ExecutionContext, args []runtime.Value, i int) (string, bool) {
	s := runtime.ToString(arg(args, i), callFn(ctx))
	if runtime.IsUnknown(s) {
		return "", false
	}
	return string(s.(runtime.StringValue)), true
}

// intArg converts args[i] with ToInteger, returning ok=false on Unknown.
func intArg(ctx *runtime.ExecutionContext, args []runtime.Value, i int) (int, bool) {
	n := runtime.ToInteger(arg(args, i), callFn(ctx))
	if runtime.IsUnknown(n) {
		return 0, false
	}
	f := float64(n.(runtime.NumberValue))
	if math.IsInf(f, 1) {
		return math.MaxInt32, true
	}
	if math.IsInf(f, -1) {
		return math.MinInt32, true
	}
	return int(f), true
}

// length reads o's "length" property (own or inherited, via Get) as an
// unsigned integer (ES5.1
// §15.4.4's ToUint32(Get(O, "length")) pattern shared by every generic
// Array.prototype method).
func length(ctx *runtime.ExecutionContext, o *runtime.ObjectValue) (int, bool) {
	l := runtime.ToUint32(o.Get("length", callFn(ctx)), callFn(ctx))
	if runtime.IsUnknown(l) {
		return 0, false
	}
	return int(float64(l.(runtime.NumberValue))), true
}

// clampIndex implements the relative-index clamping ES5.1 §15.4.4.10/.12
// repeats for slice/splice's fromIndex/endIndex arguments: negative counts
// back from len, then clamps into [0, len].
func clampIndex(raw, ln int) int {
	if raw < 0 {
		raw += ln
	}
	if raw < 0 {
		return 0
	}
	if raw > ln {
		return ln
	}
	return raw
}

// isCallableObject reports whether v is a Function object.
func isCallableObject(v runtime.Value) (*runtime.ObjectValue, bool) {
	obj, ok := v.(*runtime.ObjectValue)
	if !ok || !obj.IsCallable() {
		return nil, false
	}
	return obj, true
}

// indexName renders i the way an own numeric property's key is spelled.
func indexName(i int) string { return strconv.Itoa(i) }

// joinStrings is a small helper around strings.Join kept local so the
// array/string builtins don't need a second import alias.
func joinStrings(parts []string, sep string) string { return strings.Join(parts, sep) }

// stableSortIndices returns a permutation of [0,n) sorted by less, using
// Go's stable sort (Array.prototype.sort does not require stability in
// ES5.1, but a stable sort is a strictly more conservative, still-correct
// choice and matches what most hosts actually ship).
func stableSortIndices(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return less(idx[a], idx[b]) })
	return idx
}
