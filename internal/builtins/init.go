package builtins

import (
	"math"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// Init builds a fresh Realm with the full ES5.1 global object installed:
// every prototype singleton, every constructor, Math, JSON, and the global
// functions (§2 "Built-in library", ~28% of the engine). It is the single
// entry point the evaluator/engine packages call before running any
// program; the returned Realm's context stack is empty and ready for
// runtime.NewGlobalContext.
func Init(cfg *runtime.Configuration) (*runtime.Realm, *Registry) {
	realm := runtime.NewRealm(cfg)
	reg := newRegistry()

	// A bootstrap execution context is pushed so NewObject/DefineOwnProperty
	// calls made while assembling the prototype table have a realm (and
	// hence an event emitter) to attach to, exactly as any other object
	// created during analysis would. It is popped before Init returns,
	// leaving the stack empty for the evaluator's first NewGlobalContext.
	bootstrap := &runtime.ExecutionContext{}
	realm.PushContext(bootstrap)

	protos := &runtime.Prototypes{}
	realm.Protos = protos

	protos.Object = runtime.NewObject(nil, "Object", bootstrap)
	protos.Function = runtime.NewObject(protos.Object, "Function", bootstrap)
	protos.Function.Call = &runtime.Callable{
		Name: "", Length: 0,
		Native: func(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
			return runtime.Undefined, nil // Function.prototype is itself a callable no-op (ES5.1 §15.3.4).
		},
	}
	protos.Array = runtime.NewObject(protos.Object, "Array", bootstrap)
	protos.Array.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(0), true, false, false), true, nil)
	protos.String = runtime.NewObject(protos.Object, "String", bootstrap)
	protos.String.Primitive = runtime.StringValue("")
	protos.String.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(0), false, false, false), true, nil)
	protos.Number = runtime.NewObject(protos.Object, "Number", bootstrap)
	protos.Number.Primitive = runtime.NumberValue(0)
	protos.Boolean = runtime.NewObject(protos.Object, "Boolean", bootstrap)
	protos.Boolean.Primitive = runtime.False
	protos.Date = runtime.NewObject(protos.Object, "Date", bootstrap)
	protos.Date.Date = &runtime.DateData{}
	protos.RegExp = runtime.NewObject(protos.Object, "RegExp", bootstrap)
	protos.Error = runtime.NewObject(protos.Object, "Error", bootstrap)

	global := runtime.NewObject(protos.Object, "global", bootstrap)
	realm.Global = global
	realm.GlobalEnv = runtime.NewObjectEnvironment(global, nil, false, realmCall(realm), realmTypeErrorHook(realm))

	b := &builder{realm: realm, reg: reg, ctx: bootstrap}

	b.installObject(global)
	b.installFunction(global)
	b.installArray(global)
	b.installString(global)
	b.installNumber(global)
	b.installBoolean(global)
	b.installDate(global)
	b.installRegExp(global)
	b.installErrors(global)
	b.installMath(global)
	b.installJSON(global)
	b.installGlobalFunctions(global)
	installArgumentsThrower(b)

	global.DefineOwnProperty("NaN", runtime.DataDescriptor(runtime.NumberValue(math.NaN()), false, false, false), true, nil)
	global.DefineOwnProperty("Infinity", runtime.DataDescriptor(runtime.NumberValue(math.Inf(1)), false, false, false), true, nil)
	global.DefineOwnProperty("undefined", runtime.DataDescriptor(runtime.Undefined, false, false, false), true, nil)
	global.DefineOwnProperty("global", runtime.DataDescriptor(global, false, false, false), true, nil)

	realm.PopContext(func(string) {})
	return realm, reg
}

// ctorBuilder installs a native constructor function: its own [[Prototype]]
// is Function.prototype, its "prototype" own property is the shared proto
// singleton (non-writable/non-enumerable/non-configurable per ES5.1
// §15.*.3.1 tables), and proto's "constructor" points back at it. Unlike
// builder.method, the auto-create-a-fresh-prototype-object path in
// NewFunctionObject is deliberately bypassed — constructors install
// the shared realm prototype instead of a one-off object.
func (b *builder) ctorBuilder(name string, length int, proto *runtime.ObjectValue, fn runtime.NativeFunc) *runtime.ObjectValue {
	callable := &runtime.Callable{Name: name, Length: length, Native: fn}
	ctor := runtime.NewFunctionObject(b.realm.Protos.Function, b.realm.Protos.Object, callable, b.ctx)
	ctor.DefineOwnProperty("prototype", runtime.DataDescriptor(proto, false, false, false), true, nil)
	proto.DefineOwnProperty("constructor", runtime.DataDescriptor(ctor, true, false, true), true, nil)
	return ctor
}

// installGlobal installs ctor as an own property of the global object under
// name, non-enumerable per ES5.1's built-in attribute table. It does not
// touch Realm.ErrorCtor; installErrors records the Error-family
// constructors there itself.
func (b *builder) installGlobal(global *runtime.ObjectValue, name string, ctor *runtime.ObjectValue) {
	global.DefineOwnProperty(name, runtime.DataDescriptor(ctor, true, false, true), true, nil)
}
