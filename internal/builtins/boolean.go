package builtins

import "github.com/cwbudde/jsstatic/internal/runtime"

// installBoolean wires the Boolean constructor and Boolean.prototype
// (ES5.1 §15.6).
func (b *builder) installBoolean(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Boolean

	b.method(proto, "toString", 0, "Boolean.prototype.toString", CategoryBoolean, "returns \"true\" or \"false\"", booleanToString)
	b.method(proto, "valueOf", 0, "Boolean.prototype.valueOf", CategoryBoolean, "returns the wrapped primitive boolean", booleanValueOf)

	ctor := b.ctorBuilder("Boolean", 1, proto, booleanConstructor)
	b.installGlobal(global, "Boolean", ctor)
}

func booleanConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	bv := runtime.Bool(false)
	if len(args) > 0 {
		bv = runtime.ToBoolean(args[0])
	}
	if obj, ok := this.(*runtime.ObjectValue); ok && obj.ClassName == "Object" && obj.Prototype == ctx.Realm().Protos.Boolean {
		obj.ClassName = "Boolean"
		obj.Primitive = bv
		return obj, nil
	}
	return bv, nil
}

func thisBoolean(ctx *runtime.ExecutionContext, this runtime.Value, method string) (runtime.BooleanValue, bool, *runtime.ExceptionValue) {
	switch v := this.(type) {
	case runtime.BooleanValue:
		return v, true, nil
	case *runtime.ObjectValue:
		if v.ClassName == "Boolean" && v.Primitive != nil {
			return v.Primitive.(runtime.BooleanValue), true, nil
		}
	}
	return false, false, runtime.NewTypeError(method+" called on incompatible receiver", ctx)
}

func booleanToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	v, ok, exc := thisBoolean(ctx, this, "Boolean.prototype.toString")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(v.String()), nil
}

func booleanValueOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	v, ok, exc := thisBoolean(ctx, this, "Boolean.prototype.valueOf")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return v, nil
}
