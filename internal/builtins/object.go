package builtins

import (
	"fmt"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installArgumentsThrower builds the shared [[ThrowTypeError]] accessor
// ES5.1 §13.2.3 describes and wires it into runtime.ThrowTypeErrorAccessor,
// so every strict-mode Arguments object built afterward (hoisting.go, via
// NewArgumentsObject) poisons its callee/caller properties with it.
func installArgumentsThrower(b *builder) {
	callable := &runtime.Callable{
		Name: "", Length: 0,
		Native: func(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
			return nil, runtime.NewTypeError("'caller' and 'callee' are restricted function properties and cannot be accessed in this context", ctx)
		},
	}
	fn := runtime.NewFunctionObject(b.realm.Protos.Function, b.realm.Protos.Object, callable, b.ctx)
	runtime.ThrowTypeErrorAccessor = fn
}

// installObject wires Object, its constructor statics (ES5.1 §15.2.3), and
// Object.prototype's own methods (§15.2.4) onto global.
func (b *builder) installObject(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Object

	b.method(proto, "toString", 0, "Object.prototype.toString", CategoryObject, "returns a string identifying the object's class", objectToString)
	b.method(proto, "toLocaleString", 0, "Object.prototype.toLocaleString", CategoryObject, "calls toString by default", objectToLocaleString)
	b.method(proto, "valueOf", 0, "Object.prototype.valueOf", CategoryObject, "returns the object itself", objectValueOf)
	b.method(proto, "hasOwnProperty", 1, "Object.prototype.hasOwnProperty", CategoryObject, "reports whether the object has the named own property", objectHasOwnProperty)
	b.method(proto, "isPrototypeOf", 1, "Object.prototype.isPrototypeOf", CategoryObject, "reports whether the object occurs in the argument's prototype chain", objectIsPrototypeOf)
	b.method(proto, "propertyIsEnumerable", 1, "Object.prototype.propertyIsEnumerable", CategoryObject, "reports whether the named own property is enumerable", objectPropertyIsEnumerable)

	ctor := b.ctorBuilder("Object", 1, proto, objectConstructor)
	b.method(ctor, "getPrototypeOf", 1, "Object.getPrototypeOf", CategoryObject, "returns the argument's [[Prototype]]", objectGetPrototypeOf)
	b.method(ctor, "getOwnPropertyDescriptor", 2, "Object.getOwnPropertyDescriptor", CategoryObject, "returns a property descriptor for a named own property", objectGetOwnPropertyDescriptor)
	b.method(ctor, "getOwnPropertyNames", 1, "Object.getOwnPropertyNames", CategoryObject, "returns every own property name, enumerable or not", objectGetOwnPropertyNames)
	b.method(ctor, "create", 2, "Object.create", CategoryObject, "creates an object with the given prototype and own properties", objectCreate)
	b.method(ctor, "defineProperty", 3, "Object.defineProperty", CategoryObject, "defines or reconfigures a single own property", objectDefineProperty)
	b.method(ctor, "defineProperties", 2, "Object.defineProperties", CategoryObject, "defines or reconfigures multiple own properties", objectDefineProperties)
	b.method(ctor, "seal", 1, "Object.seal", CategoryObject, "makes every own property non-configurable and the object non-extensible", objectSeal)
	b.method(ctor, "isSealed", 1, "Object.isSealed", CategoryObject, "reports whether the object is sealed", objectIsSealed)
	b.method(ctor, "freeze", 1, "Object.freeze", CategoryObject, "makes every own data property non-writable and non-configurable, and the object non-extensible", objectFreeze)
	b.method(ctor, "isFrozen", 1, "Object.isFrozen", CategoryObject, "reports whether the object is frozen", objectIsFrozen)
	b.method(ctor, "preventExtensions", 1, "Object.preventExtensions", CategoryObject, "marks the object non-extensible", objectPreventExtensions)
	b.method(ctor, "isExtensible", 1, "Object.isExtensible", CategoryObject, "reports whether new own properties may be added", objectIsExtensible)
	b.method(ctor, "keys", 1, "Object.keys", CategoryObject, "returns every enumerable own property name", objectKeys)
	b.installGlobal(global, "Object", ctor)
}

func objectConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	v := arg(args, 0)
	switch v.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return runtime.NewObject(ctx.Realm().Protos.Object, "Object", ctx), nil
	}
	if runtime.IsUnknown(v) {
		return runtime.Unknown, nil
	}
	boxed, exc := runtime.ToObject(v, ctx.Realm().Protos, ctx)
	if exc != nil {
		return nil, exc
	}
	return boxed, nil
}

func objectToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if runtime.IsUnknown(this) {
		return runtime.Unknown, nil
	}
	switch this.(type) {
	case runtime.UndefinedValue:
		return runtime.StringValue("[object Undefined]"), nil
	case runtime.NullValue:
		return runtime.StringValue("[object Null]"), nil
	}
	obj, exc := runtime.ToObject(this, ctx.Realm().Protos, ctx)
	if exc != nil {
		return nil, exc
	}
	o := obj.(*runtime.ObjectValue)
	return runtime.StringValue(fmt.Sprintf("[object %s]", o.ClassName)), nil
}

func objectToLocaleString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Object.prototype.toLocaleString")
	if exc != nil {
		return nil, exc
	}
	toString := obj.Get("toString", callFn(ctx))
	fn, ok := isCallableObject(toString)
	if !ok {
		return nil, runtime.NewTypeError("toString is not a function", ctx)
	}
	return runtime.Call(ctx, fn, this, nil, ctx.Realm().Invoke)
}

func objectValueOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if runtime.IsUnknown(this) {
		return runtime.Unknown, nil
	}
	return runtime.ToObject(this, ctx.Realm().Protos, ctx)
}

func objectHasOwnProperty(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if anyUnknown(this, arg(args, 0)) {
		return runtime.Unknown, nil
	}
	obj, exc := runtime.ToObject(this, ctx.Realm().Protos, ctx)
	if exc != nil {
		return nil, exc
	}
	name, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.Bool(obj.(*runtime.ObjectValue).GetOwnProperty(name) != nil), nil
}

// objectIsPrototypeOf implements ES5.1 §15.2.4.6, walking the argument's
// prototype chain and comparing each link against the receiver directly
// (see DESIGN.md's open-question decision #2: the comparison target is
// `this`, not a fixed Object.prototype singleton).
func objectIsPrototypeOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	v := arg(args, 0)
	if anyUnknown(this, v) {
		return runtime.Unknown, nil
	}
	vObj, ok := v.(*runtime.ObjectValue)
	if !ok {
		return runtime.Bool(false), nil
	}
	thisObj, exc := runtime.ToObject(this, ctx.Realm().Protos, ctx)
	if exc != nil {
		return nil, exc
	}
	receiver := thisObj.(*runtime.ObjectValue)
	for cur := vObj.Prototype; cur != nil; cur = cur.Prototype {
		if cur == receiver {
			return runtime.Bool(true), nil
		}
	}
	return runtime.Bool(false), nil
}

func objectPropertyIsEnumerable(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if anyUnknown(this, arg(args, 0)) {
		return runtime.Unknown, nil
	}
	obj, exc := runtime.ToObject(this, ctx.Realm().Protos, ctx)
	if exc != nil {
		return nil, exc
	}
	name, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	desc := obj.(*runtime.ObjectValue).GetOwnProperty(name)
	return runtime.Bool(desc != nil && desc.Enumerable), nil
}

func requireObjectArg(ctx *runtime.ExecutionContext, args []runtime.Value, i int, method string) (*runtime.ObjectValue, *runtime.ExceptionValue) {
	v := arg(args, i)
	obj, ok := v.(*runtime.ObjectValue)
	if !ok {
		return nil, runtime.NewTypeError(method+": argument is not an object", ctx)
	}
	return obj, nil
}

func objectGetPrototypeOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if runtime.IsUnknown(arg(args, 0)) {
		return runtime.Unknown, nil
	}
	obj, exc := requireObjectArg(ctx, args, 0, "Object.getPrototypeOf")
	if exc != nil {
		return nil, exc
	}
	if obj.Prototype == nil {
		return runtime.Null, nil
	}
	return obj.Prototype, nil
}

func descriptorToObject(ctx *runtime.ExecutionContext, desc *runtime.PropertyDescriptor) runtime.Value {
	if desc == nil {
		return runtime.Undefined
	}
	out := runtime.NewObject(ctx.Realm().Protos.Object, "Object", ctx)
	if runtime.IsDataDescriptor(desc) {
		out.DefineOwnProperty("value", runtime.DataDescriptor(desc.Value, true, true, true), true, nil)
		out.DefineOwnProperty("writable", runtime.DataDescriptor(runtime.Bool(desc.Writable), true, true, true), true, nil)
	} else {
		out.DefineOwnProperty("get", runtime.DataDescriptor(desc.Get, true, true, true), true, nil)
		out.DefineOwnProperty("set", runtime.DataDescriptor(desc.Set, true, true, true), true, nil)
	}
	out.DefineOwnProperty("enumerable", runtime.DataDescriptor(runtime.Bool(desc.Enumerable), true, true, true), true, nil)
	out.DefineOwnProperty("configurable", runtime.DataDescriptor(runtime.Bool(desc.Configurable), true, true, true), true, nil)
	return out
}

func objectGetOwnPropertyDescriptor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.getOwnPropertyDescriptor")
	if exc != nil {
		return nil, exc
	}
	name, ok := strArg(ctx, args, 1)
	if !ok {
		return runtime.Unknown, nil
	}
	return descriptorToObject(ctx, obj.GetOwnProperty(name)), nil
}

func objectGetOwnPropertyNames(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.getOwnPropertyNames")
	if exc != nil {
		return nil, exc
	}
	return stringArray(ctx, obj.OwnKeys()), nil
}

func objectCreate(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	protoVal := arg(args, 0)
	if runtime.IsUnknown(protoVal) {
		return runtime.Unknown, nil
	}
	var proto *runtime.ObjectValue
	switch p := protoVal.(type) {
	case runtime.NullValue:
		proto = nil
	case *runtime.ObjectValue:
		proto = p
	default:
		return nil, runtime.NewTypeError("Object.create: proto must be an object or null", ctx)
	}
	obj := runtime.NewObject(proto, "Object", ctx)
	if len(args) > 1 {
		if _, exc := applyProperties(ctx, obj, arg(args, 1)); exc != nil {
			return nil, exc
		}
	}
	return obj, nil
}

// descriptorFromObject implements ES5.1 §8.10.5, ToPropertyDescriptor.
func descriptorFromObject(ctx *runtime.ExecutionContext, v runtime.Value) (*runtime.PropertyDescriptor, *runtime.ExceptionValue) {
	obj, ok := v.(*runtime.ObjectValue)
	if !ok {
		return nil, runtime.NewTypeError("property description must be an object", ctx)
	}
	desc := &runtime.PropertyDescriptor{}
	if obj.HasProperty("enumerable") {
		desc.Enumerable = bool(runtime.ToBoolean(obj.Get("enumerable", callFn(ctx))))
		desc.HasEnumerable = true
	}
	if obj.HasProperty("configurable") {
		desc.Configurable = bool(runtime.ToBoolean(obj.Get("configurable", callFn(ctx))))
		desc.HasConfigurable = true
	}
	if obj.HasProperty("value") {
		desc.Value = obj.Get("value", callFn(ctx))
		desc.HasValue = true
	}
	if obj.HasProperty("writable") {
		desc.Writable = bool(runtime.ToBoolean(obj.Get("writable", callFn(ctx))))
		desc.HasWritable = true
	}
	if obj.HasProperty("get") {
		get := obj.Get("get", callFn(ctx))
		if _, ok := isCallableObject(get); !ok {
			if _, isUndef := get.(runtime.UndefinedValue); !isUndef {
				return nil, runtime.NewTypeError("getter must be a function", ctx)
			}
		}
		desc.Get, desc.HasGet = get, true
	}
	if obj.HasProperty("set") {
		set := obj.Get("set", callFn(ctx))
		if _, ok := isCallableObject(set); !ok {
			if _, isUndef := set.(runtime.UndefinedValue); !isUndef {
				return nil, runtime.NewTypeError("setter must be a function", ctx)
			}
		}
		desc.Set, desc.HasSet = set, true
	}
	if (desc.HasGet || desc.HasSet) && (desc.HasValue || desc.HasWritable) {
		return nil, runtime.NewTypeError("property descriptor cannot be both data and accessor", ctx)
	}
	return desc, nil
}

func applyProperties(ctx *runtime.ExecutionContext, obj *runtime.ObjectValue, propsVal runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	props, exc := runtime.ToObject(propsVal, ctx.Realm().Protos, ctx)
	if exc != nil {
		return nil, exc
	}
	propsObj := props.(*runtime.ObjectValue)
	hook := objectTypeErrorHook(ctx)
	for _, name := range propsObj.OwnKeys() {
		pd := propsObj.GetOwnProperty(name)
		if pd == nil || !pd.Enumerable {
			continue
		}
		desc, exc := descriptorFromObject(ctx, propsObj.Get(name, callFn(ctx)))
		if exc != nil {
			return nil, exc
		}
		obj.DefineOwnProperty(name, desc, true, hook)
	}
	return obj, nil
}

func objectDefineProperty(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.defineProperty")
	if exc != nil {
		return nil, exc
	}
	name, ok := strArg(ctx, args, 1)
	if !ok {
		return runtime.Unknown, nil
	}
	desc, exc := descriptorFromObject(ctx, arg(args, 2))
	if exc != nil {
		return nil, exc
	}
	obj.DefineOwnProperty(name, desc, true, objectTypeErrorHook(ctx))
	return obj, nil
}

func objectDefineProperties(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.defineProperties")
	if exc != nil {
		return nil, exc
	}
	return applyProperties(ctx, obj, arg(args, 1))
}

func objectSeal(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.seal")
	if exc != nil {
		return nil, exc
	}
	hook := objectTypeErrorHook(ctx)
	for _, name := range obj.OwnKeys() {
		obj.DefineOwnProperty(name, &runtime.PropertyDescriptor{Configurable: false, HasConfigurable: true}, true, hook)
	}
	obj.Extensible = false
	return obj, nil
}

func objectIsSealed(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.isSealed")
	if exc != nil {
		return nil, exc
	}
	if obj.Extensible {
		return runtime.Bool(false), nil
	}
	for _, name := range obj.OwnKeys() {
		if desc := obj.GetOwnProperty(name); desc != nil && desc.Configurable {
			return runtime.Bool(false), nil
		}
	}
	return runtime.Bool(true), nil
}

func objectFreeze(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.freeze")
	if exc != nil {
		return nil, exc
	}
	hook := objectTypeErrorHook(ctx)
	for _, name := range obj.OwnKeys() {
		desc := obj.GetOwnProperty(name)
		upd := &runtime.PropertyDescriptor{Configurable: false, HasConfigurable: true}
		if runtime.IsDataDescriptor(desc) {
			upd.Writable, upd.HasWritable = false, true
		}
		obj.DefineOwnProperty(name, upd, true, hook)
	}
	obj.Extensible = false
	return obj, nil
}

func objectIsFrozen(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.isFrozen")
	if exc != nil {
		return nil, exc
	}
	if obj.Extensible {
		return runtime.Bool(false), nil
	}
	for _, name := range obj.OwnKeys() {
		desc := obj.GetOwnProperty(name)
		if desc == nil {
			continue
		}
		if desc.Configurable {
			return runtime.Bool(false), nil
		}
		if runtime.IsDataDescriptor(desc) && desc.Writable {
			return runtime.Bool(false), nil
		}
	}
	return runtime.Bool(true), nil
}

func objectPreventExtensions(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.preventExtensions")
	if exc != nil {
		return nil, exc
	}
	obj.Extensible = false
	return obj, nil
}

func objectIsExtensible(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.isExtensible")
	if exc != nil {
		return nil, exc
	}
	return runtime.Bool(obj.Extensible), nil
}

func objectKeys(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := requireObjectArg(ctx, args, 0, "Object.keys")
	if exc != nil {
		return nil, exc
	}
	var out []string
	for _, name := range obj.OwnKeys() {
		if desc := obj.GetOwnProperty(name); desc != nil && desc.Enumerable {
			out = append(out, name)
		}
	}
	return stringArray(ctx, out), nil
}

// objectTypeErrorHook reports a recoverable TypeError through the realm's
// event emitter the same way the evaluator's own typeErrorHook does,
// without importing the evaluator package.
func objectTypeErrorHook(ctx *runtime.ExecutionContext) func(string) {
	return func(msg string) {
		realmTypeErrorHook(ctx.Realm())(msg)
	}
}

// stringArray builds a fresh Array instance populated with StringValue
// elements, used by every builtin that returns a list of names.
func stringArray(ctx *runtime.ExecutionContext, names []string) *runtime.ObjectValue {
	arr := runtime.NewObject(ctx.Realm().Protos.Array, "Array", ctx)
	hook := objectTypeErrorHook(ctx)
	for i, n := range names {
		arr.DefineOwnProperty(indexName(i), runtime.DataDescriptor(runtime.StringValue(n), true, true, true), true, hook)
	}
	arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(len(names))), true, false, false), true, hook)
	return arr
}

// valueArray builds a fresh Array instance populated with vs, preserving
// order.
func valueArray(ctx *runtime.ExecutionContext, vs []runtime.Value) *runtime.ObjectValue {
	arr := runtime.NewObject(ctx.Realm().Protos.Array, "Array", ctx)
	hook := objectTypeErrorHook(ctx)
	for i, v := range vs {
		arr.DefineOwnProperty(indexName(i), runtime.DataDescriptor(v, true, true, true), true, hook)
	}
	arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(len(vs))), true, false, false), true, hook)
	return arr
}
