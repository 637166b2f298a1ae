package runtime

// Callable is the internal state a Function object's ObjectValue.Call
// field carries. Exactly one of Native or (Params/Body-bearing evaluator
// closure, invoked through Invoke) is meaningful for a given function —
// user functions store everything the evaluator needs to re-enter
// evaluation (scope, parameter names, strictness); native functions store
// a Go closure directly.
type Callable struct {
	Name   string
	Params []string
	Length int // Function.prototype.length: formal parameter count

	Strict bool

	// Scope is the lexical environment captured at function-expression
	// evaluation time (ES5.1 §13.2 step 2).
	Scope *LexicalEnvironment

	// Body is opaque to the runtime package — it is the evaluator's AST
	// node for the function body, invoked through Invoke. Kept as `any` to
	// avoid an import cycle with the evaluator/AST packages.
	Body any

	// Native is non-nil for built-in functions (Object.prototype.toString,
	// Array.prototype.push, ...); Invoke calls it directly instead of
	// re-entering the evaluator.
	Native NativeFunc

	// IsConstructor reports whether `new` is permitted. Arrow-like natives
	// (none in ES5.1, kept for builtins that wrap accessors) set this false.
	IsConstructor bool

	// BoundThis/BoundArgs are set for a Function.prototype.bind result;
	// Target is the underlying function being bound (ES5.1 §15.3.4.5).
	BoundThis Value
	BoundArgs []Value
	Target    *ObjectValue

	// Owner is the Function ObjectValue this Callable is installed on,
	// set by NewFunctionObject. The evaluator needs it to populate a
	// non-strict Arguments object's `callee` property from inside Invoke,
	// which only receives the Callable, not its owning object.
	Owner *ObjectValue
}

// NativeFunc is a built-in function's Go implementation. this is already
// resolved per ES5.1 §10.4.3 (boxed in non-strict mode if needed, left
// alone in strict mode — the evaluator decides, not the callee).
type NativeFunc func(ctx *ExecutionContext, this Value, args []Value) (Value, *ExceptionValue)

// Invoker is supplied by the evaluator (the only package able to execute a
// user function's Body AST) so NewFunctionObject's Call descriptor can
// dispatch to either a native Go function or back into evaluation without
// the runtime package importing the evaluator.
type Invoker func(callable *Callable, this Value, args []Value) (Value, *ExceptionValue)

// NewFunctionObject builds a Function object around callable, wiring the
// standard `length`/`name` own properties (ES5.1 §15.3.5). Constructors and
// user-defined (non-native, unbound) functions also get a writable,
// non-enumerable, non-configurable `prototype` object whose `constructor`
// points back at the function.
func NewFunctionObject(proto *ObjectValue, fnProto *ObjectValue, callable *Callable, ctx *ExecutionContext) *ObjectValue {
	fn := NewObject(proto, "Function", ctx)
	fn.Call = callable
	callable.Owner = fn
	fn.defineDataProperty("length", NumberValue(float64(callable.Length)), false, false, false)
	fn.defineDataProperty("name", StringValue(callable.Name), false, false, true)
	if callable.IsConstructor || (callable.Native == nil && callable.BoundArgs == nil) {
		protoObj := NewObject(fnProto, "Object", ctx)
		protoObj.defineDataProperty("constructor", fn, true, false, true)
		fn.defineDataProperty("prototype", protoObj, true, false, false)
	}
	return fn
}

// Construct implements ES5.1 §13.2.2 (`new F(...)`): allocate a fresh
// object whose prototype is F.prototype (or Object.prototype if that isn't
// an object), invoke F with the new object as `this`, and return the
// invocation's result if it was an object, or the new object otherwise.
func Construct(ctx *ExecutionContext, fn *ObjectValue, args []Value, invoke Invoker, objectProto *ObjectValue) (Value, *ExceptionValue) {
	if fn == nil || fn.Call == nil {
		return nil, NewTypeError("not a constructor", ctx)
	}
	c := fn.Call
	if c.Target != nil {
		return Construct(ctx, c.Target, args, invoke, objectProto)
	}
	protoVal := fn.Get("prototype", nil)
	proto, ok := protoVal.(*ObjectValue)
	if !ok {
		proto = objectProto
	}
	instance := NewObject(proto, "Object", ctx)
	result, exc := invoke(c, instance, args)
	if exc != nil {
		return nil, exc
	}
	if obj, ok := result.(*ObjectValue); ok {
		return obj, nil
	}
	return instance, nil
}

// Call invokes fn per ES5.1 §13.2.1, resolving Function.prototype.bind
// wrapping by delegating to Target with the bound this/args prepended.
func Call(ctx *ExecutionContext, fn *ObjectValue, this Value, args []Value, invoke Invoker) (Value, *ExceptionValue) {
	if fn == nil || fn.Call == nil {
		return nil, NewTypeError("value is not a function", ctx)
	}
	c := fn.Call
	if c.Target != nil {
		full := append(append([]Value{}, c.BoundArgs...), args...)
		return Call(ctx, c.Target, c.BoundThis, full, invoke)
	}
	return invoke(c, this, args)
}
