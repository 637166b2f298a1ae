package builtins

import (
	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installFunction wires Function.prototype's own methods (ES5.1 §15.3.4)
// and the Function constructor itself. Function(...) / new Function(...)
// (§15.3.2, dynamic function construction from source text) is out of
// scope: the engine only ever sees functions that already exist as AST
// nodes, so the constructor reports Unknown rather than synthesizing one.
func (b *builder) installFunction(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Function

	b.method(proto, "toString", 0, "Function.prototype.toString", CategoryFunction, "returns a source-like string for the function", functionToString)
	b.method(proto, "call", 1, "Function.prototype.call", CategoryFunction, "invokes the function with the given this and arguments", functionCall)
	b.method(proto, "apply", 2, "Function.prototype.apply", CategoryFunction, "invokes the function with the given this and an array of arguments", functionApply)
	b.method(proto, "bind", 1, "Function.prototype.bind", CategoryFunction, "returns a new function with this and leading arguments fixed", functionBind)

	ctor := b.ctorBuilder("Function", 1, proto, functionConstructor)
	b.installGlobal(global, "Function", ctor)
}

func functionConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	return runtime.Unknown, nil
}

func functionToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	fn, ok := isCallableObject(this)
	if !ok {
		return nil, runtime.NewTypeError("Function.prototype.toString called on non-function", ctx)
	}
	name := fn.Call.Name
	return runtime.StringValue("function " + name + "() { [native code] }"), nil
}

func functionCall(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	fn, ok := isCallableObject(this)
	if !ok {
		return nil, runtime.NewTypeError("Function.prototype.call called on non-function", ctx)
	}
	thisArg := arg(args, 0)
	var rest []runtime.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return runtime.Call(ctx, fn, thisArg, rest, ctx.Realm().Invoke)
}

func functionApply(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	fn, ok := isCallableObject(this)
	if !ok {
		return nil, runtime.NewTypeError("Function.prototype.apply called on non-function", ctx)
	}
	thisArg := arg(args, 0)
	argsArg := arg(args, 1)
	var list []runtime.Value
	switch a := argsArg.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		list = nil
	case *runtime.ObjectValue:
		n, ok := length(ctx, a)
		if !ok {
			return runtime.Unknown, nil
		}
		list = make([]runtime.Value, n)
		for i := 0; i < n; i++ {
			list[i] = a.Get(indexName(i), callFn(ctx))
		}
	default:
		return nil, runtime.NewTypeError("Function.prototype.apply: arguments must be an array-like object", ctx)
	}
	return runtime.Call(ctx, fn, thisArg, list, ctx.Realm().Invoke)
}

// functionBind implements ES5.1 §15.3.4.5: the returned function carries
// BoundThis/BoundArgs/Target, resolved by runtime.Call/Construct without
// re-entering this package.
func functionBind(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	target, ok := isCallableObject(this)
	if !ok {
		return nil, runtime.NewTypeError("Function.prototype.bind called on non-function", ctx)
	}
	boundThis := arg(args, 0)
	var boundArgs []runtime.Value
	if len(args) > 1 {
		boundArgs = append(boundArgs, args[1:]...)
	}
	boundLength := 0
	if target.Call.Length > len(boundArgs) {
		boundLength = target.Call.Length - len(boundArgs)
	}
	name := "bound " + target.Call.Name
	callable := &runtime.Callable{
		Name: name, Length: boundLength,
		BoundThis: boundThis, BoundArgs: boundArgs, Target: target,
	}
	bound := runtime.NewFunctionObject(ctx.Realm().Protos.Function, ctx.Realm().Protos.Object, callable, ctx)
	return bound, nil
}
