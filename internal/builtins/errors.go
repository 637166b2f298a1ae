package builtins

import (
	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installErrors wires Error.prototype and the six native Error subtypes
// ES5.1 §15.11 defines, recording each constructor in Realm.ErrorCtor so
// runtime.NewTypeError et al. pick the right .prototype for a thrown
// instance (see runtime/exception.go's newNativeError).
func (b *builder) installErrors(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Error
	b.method(proto, "toString", 0, "Error.prototype.toString", CategoryError, "returns \"name: message\" or just name", errorToString)
	b.value(proto, "name", runtime.StringValue(errors.KindError))
	b.value(proto, "message", runtime.StringValue(""))

	errCtor := b.ctorBuilder(errors.KindError, 1, proto, errorConstructorFor(errors.KindError, proto))
	b.realm.ErrorCtor[errors.KindError] = errCtor
	b.installGlobal(global, errors.KindError, errCtor)

	for _, kind := range []string{
		errors.KindEvalError, errors.KindRangeError, errors.KindReferenceError,
		errors.KindSyntaxError, errors.KindTypeError, errors.KindURIError,
	} {
		subProto := runtime.NewObject(proto, "Error", b.ctx)
		subProto.DefineOwnProperty("name", runtime.DataDescriptor(runtime.StringValue(kind), true, false, true), true, nil)
		subProto.DefineOwnProperty("message", runtime.DataDescriptor(runtime.StringValue(""), true, false, true), true, nil)
		ctor := b.ctorBuilder(kind, 1, subProto, errorConstructorFor(kind, subProto))
		ctor.Prototype = errCtor
		b.realm.ErrorCtor[kind] = ctor
		b.installGlobal(global, kind, ctor)
	}
}

// errorConstructorFor builds the Native function backing one Error-family
// constructor: called with or without `new`, it produces an instance whose
// prototype is proto (ES5.1 §15.11.1/§15.11.2 treat the two call forms
// identically).
func errorConstructorFor(kind string, proto *runtime.ObjectValue) runtime.NativeFunc {
	return func(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
		obj, ok := this.(*runtime.ObjectValue)
		if !ok || obj.ClassName != "Object" {
			obj = runtime.NewObject(proto, kind, ctx)
		} else {
			obj.ClassName = kind
		}
		if len(args) > 0 {
			if _, isUndef := args[0].(runtime.UndefinedValue); !isUndef {
				msg := runtime.ToString(args[0], callFn(ctx))
				if runtime.IsUnknown(msg) {
					obj.DefineOwnProperty("message", runtime.DataDescriptor(runtime.Unknown, true, false, true), true, nil)
				} else {
					obj.DefineOwnProperty("message", runtime.DataDescriptor(msg, true, false, true), true, nil)
				}
			}
		}
		return obj, nil
	}
}

func errorToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, ok := this.(*runtime.ObjectValue)
	if !ok {
		return nil, runtime.NewTypeError("Error.prototype.toString called on non-object", ctx)
	}
	name := "Error"
	if n := obj.Get("name", callFn(ctx)); n != nil {
		if s, ok := elementToString(ctx, n); ok {
			name = s
		}
	}
	msg := ""
	if m := obj.Get("message", callFn(ctx)); m != nil {
		if s, ok := elementToString(ctx, m); ok {
			msg = s
		}
	}
	if msg == "" {
		return runtime.StringValue(name), nil
	}
	if name == "" {
		return runtime.StringValue(msg), nil
	}
	return runtime.StringValue(name + ": " + msg), nil
}
