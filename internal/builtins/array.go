package builtins

import (
	"strings"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installArray wires the Array constructor (ES5.1 §15.4.2) and
// Array.prototype's generic methods (§15.4.4), every one of which operates
// through Get/Put/length rather than a native Go slice so that array-like
// host objects (arguments, String wrappers) work the same way real code
// relies on.
func (b *builder) installArray(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Array

	b.method(proto, "toString", 0, "Array.prototype.toString", CategoryArray, "joins elements with a comma", arrayToString)
	b.method(proto, "toLocaleString", 0, "Array.prototype.toLocaleString", CategoryArray, "joins elements with a comma, using each element's toLocaleString", arrayToLocaleString)
	b.method(proto, "concat", 1, "Array.prototype.concat", CategoryArray, "returns a new array with arguments appended", arrayConcat)
	b.method(proto, "join", 1, "Array.prototype.join", CategoryArray, "joins elements with the given separator", arrayJoin)
	b.method(proto, "pop", 0, "Array.prototype.pop", CategoryArray, "removes and returns the last element", arrayPop)
	b.method(proto, "push", 1, "Array.prototype.push", CategoryArray, "appends arguments and returns the new length", arrayPush)
	b.method(proto, "reverse", 0, "Array.prototype.reverse", CategoryArray, "reverses the array in place", arrayReverse)
	b.method(proto, "shift", 0, "Array.prototype.shift", CategoryArray, "removes and returns the first element", arrayShift)
	b.method(proto, "slice", 2, "Array.prototype.slice", CategoryArray, "returns a shallow copy of a range of elements", arraySlice)
	b.method(proto, "sort", 1, "Array.prototype.sort", CategoryArray, "sorts the array in place", arraySort)
	b.method(proto, "splice", 2, "Array.prototype.splice", CategoryArray, "removes and inserts elements in place", arraySplice)
	b.method(proto, "unshift", 1, "Array.prototype.unshift", CategoryArray, "prepends arguments and returns the new length", arrayUnshift)
	b.method(proto, "indexOf", 1, "Array.prototype.indexOf", CategoryArray, "returns the first index of a strictly-equal element", arrayIndexOf)
	b.method(proto, "lastIndexOf", 1, "Array.prototype.lastIndexOf", CategoryArray, "returns the last index of a strictly-equal element", arrayLastIndexOf)
	b.method(proto, "every", 1, "Array.prototype.every", CategoryArray, "reports whether every element satisfies the callback", arrayEvery)
	b.method(proto, "some", 1, "Array.prototype.some", CategoryArray, "reports whether any element satisfies the callback", arraySome)
	b.method(proto, "forEach", 1, "Array.prototype.forEach", CategoryArray, "calls the callback once per element", arrayForEach)
	b.method(proto, "map", 1, "Array.prototype.map", CategoryArray, "returns a new array of callback results", arrayMap)
	b.method(proto, "filter", 1, "Array.prototype.filter", CategoryArray, "returns a new array of elements the callback accepts", arrayFilter)
	b.method(proto, "reduce", 1, "Array.prototype.reduce", CategoryArray, "folds the array left-to-right through the callback", arrayReduce)
	b.method(proto, "reduceRight", 1, "Array.prototype.reduceRight", CategoryArray, "folds the array right-to-left through the callback", arrayReduceRight)

	ctor := b.ctorBuilder("Array", 1, proto, arrayConstructor)
	b.method(ctor, "isArray", 1, "Array.isArray", CategoryArray, "reports whether the argument is an Array object", arrayIsArray)
	b.installGlobal(global, "Array", ctor)
}

// arrayConstructor implements ES5.1 §15.4.2: Array(n) preallocates length n
// for a single numeric argument, otherwise the arguments become elements.
func arrayConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	arr := runtime.NewObject(ctx.Realm().Protos.Array, "Array", ctx)
	hook := objectTypeErrorHook(ctx)
	if len(args) == 1 {
		if n, ok := args[0].(runtime.NumberValue); ok {
			f := float64(n)
			if f < 0 || f != float64(uint32(f)) {
				return nil, runtime.NewRangeError("invalid array length", ctx)
			}
			arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(f), true, false, false), true, hook)
			return arr, nil
		}
		if runtime.IsUnknown(args[0]) {
			arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.Unknown, true, false, false), true, hook)
			return arr, nil
		}
	}
	for i, v := range args {
		arr.DefineOwnProperty(indexName(i), runtime.DataDescriptor(v, true, true, true), true, hook)
	}
	arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(len(args))), true, false, false), true, hook)
	return arr, nil
}

func arrayIsArray(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, ok := arg(args, 0).(*runtime.ObjectValue)
	return runtime.Bool(ok && obj.ClassName == "Array"), nil
}

// elementToString renders v per the join/toString "undefined and null
// become the empty string" rule (ES5.1 §15.4.4.2/.5).
func elementToString(ctx *runtime.ExecutionContext, v runtime.Value) (string, bool) {
	switch v.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return "", true
	}
	s := runtime.ToString(v, callFn(ctx))
	if runtime.IsUnknown(s) {
		return "", false
	}
	return string(s.(runtime.StringValue)), true
}

func arrayJoin(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.join")
	if exc != nil {
		return nil, exc
	}
	sep := ","
	if len(args) > 0 {
		if _, isUndef := args[0].(runtime.UndefinedValue); !isUndef {
			s, ok := strArg(ctx, args, 0)
			if !ok {
				return runtime.Unknown, nil
			}
			sep = s
		}
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		v := obj.Get(indexName(i), callFn(ctx))
		s, ok := elementToString(ctx, v)
		if !ok {
			return runtime.Unknown, nil
		}
		parts[i] = s
	}
	return runtime.StringValue(joinStrings(parts, sep)), nil
}

func arrayToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.toString")
	if exc != nil {
		return nil, exc
	}
	joinFn := obj.Get("join", callFn(ctx))
	fn, ok := isCallableObject(joinFn)
	if !ok {
		return objectToString(ctx, this, nil)
	}
	return runtime.Call(ctx, fn, obj, nil, ctx.Realm().Invoke)
}

func arrayToLocaleString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.toLocaleString")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		v := obj.Get(indexName(i), callFn(ctx))
		switch v.(type) {
		case runtime.UndefinedValue, runtime.NullValue:
			parts[i] = ""
			continue
		}
		elemObj, exc := runtime.ToObject(v, ctx.Realm().Protos, ctx)
		if exc != nil {
			return nil, exc
		}
		toLocale := elemObj.(*runtime.ObjectValue).Get("toLocaleString", callFn(ctx))
		fn, ok := isCallableObject(toLocale)
		if !ok {
			return nil, runtime.NewTypeError("toLocaleString is not a function", ctx)
		}
		res, exc := runtime.Call(ctx, fn, elemObj, nil, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		s, ok := elementToString(ctx, res)
		if !ok {
			return runtime.Unknown, nil
		}
		parts[i] = s
	}
	return runtime.StringValue(joinStrings(parts, ",")), nil
}

func arrayConcat(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.concat")
	if exc != nil {
		return nil, exc
	}
	var out []runtime.Value
	appendItem := func(v runtime.Value) (bool, *runtime.ExceptionValue) {
		if o, ok := v.(*runtime.ObjectValue); ok && o.ClassName == "Array" {
			n, ok := length(ctx, o)
			if !ok {
				return false, nil
			}
			for i := 0; i < n; i++ {
				out = append(out, o.Get(indexName(i), callFn(ctx)))
			}
			return true, nil
		}
		out = append(out, v)
		return true, nil
	}
	if ok, exc := appendItem(obj); exc != nil || !ok {
		return runtime.Unknown, exc
	}
	for _, a := range args {
		if ok, exc := appendItem(a); exc != nil || !ok {
			return runtime.Unknown, exc
		}
	}
	return valueArray(ctx, out), nil
}

func arrayPop(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.pop")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	hook := objectTypeErrorHook(ctx)
	if n == 0 {
		obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(0), true, false, false), true, hook)
		return runtime.Undefined, nil
	}
	last := n - 1
	v := obj.Get(indexName(last), callFn(ctx))
	obj.Delete(indexName(last), true, hook)
	obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(last)), true, false, false), true, hook)
	return v, nil
}

func arrayPush(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.push")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	hook := objectTypeErrorHook(ctx)
	for _, v := range args {
		obj.DefineOwnProperty(indexName(n), runtime.DataDescriptor(v, true, true, true), true, hook)
		n++
	}
	obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(n)), true, false, false), true, hook)
	return runtime.NumberValue(float64(n)), nil
}

func arrayShift(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.shift")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	hook := objectTypeErrorHook(ctx)
	if n == 0 {
		obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(0), true, false, false), true, hook)
		return runtime.Undefined, nil
	}
	first := obj.Get(indexName(0), callFn(ctx))
	for i := 1; i < n; i++ {
		v := obj.Get(indexName(i), callFn(ctx))
		obj.DefineOwnProperty(indexName(i-1), runtime.DataDescriptor(v, true, true, true), true, hook)
	}
	obj.Delete(indexName(n-1), true, hook)
	obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(n-1)), true, false, false), true, hook)
	return first, nil
}

func arrayUnshift(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.unshift")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	hook := objectTypeErrorHook(ctx)
	k := len(args)
	for i := n - 1; i >= 0; i-- {
		v := obj.Get(indexName(i), callFn(ctx))
		obj.DefineOwnProperty(indexName(i+k), runtime.DataDescriptor(v, true, true, true), true, hook)
	}
	for i, v := range args {
		obj.DefineOwnProperty(indexName(i), runtime.DataDescriptor(v, true, true, true), true, hook)
	}
	obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(n+k)), true, false, false), true, hook)
	return runtime.NumberValue(float64(n + k)), nil
}

// arrayReverse implements ES5.1 §15.4.4.8. When only one side of a pair
// exists, the slot its element moves away from is deleted (DESIGN.md's
// open-question decision #4); when neither side exists, both slots are
// deleted anyway, which is a no-op.
func arrayReverse(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.reverse")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	hook := objectTypeErrorHook(ctx)
	for lower := 0; lower < n/2; lower++ {
		upper := n - lower - 1
		lowerName, upperName := indexName(lower), indexName(upper)
		hasLower := obj.HasProperty(lowerName)
		hasUpper := obj.HasProperty(upperName)
		lowerVal := obj.Get(lowerName, callFn(ctx))
		upperVal := obj.Get(upperName, callFn(ctx))
		switch {
		case hasLower && hasUpper:
			obj.DefineOwnProperty(lowerName, runtime.DataDescriptor(upperVal, true, true, true), true, hook)
			obj.DefineOwnProperty(upperName, runtime.DataDescriptor(lowerVal, true, true, true), true, hook)
		case hasUpper && !hasLower:
			obj.DefineOwnProperty(lowerName, runtime.DataDescriptor(upperVal, true, true, true), true, hook)
			obj.Delete(upperName, true, hook)
		case hasLower && !hasUpper:
			obj.DefineOwnProperty(upperName, runtime.DataDescriptor(lowerVal, true, true, true), true, hook)
			obj.Delete(lowerName, true, hook)
		default:
			obj.Delete(lowerName, true, hook)
			obj.Delete(upperName, true, hook)
		}
	}
	return obj, nil
}

func arraySlice(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.slice")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	start := 0
	if len(args) > 0 {
		if v, ok := intArg(ctx, args, 0); ok {
			start = clampIndex(v, n)
		} else {
			return runtime.Unknown, nil
		}
	}
	end := n
	if len(args) > 1 {
		if _, isUndef := args[1].(runtime.UndefinedValue); !isUndef {
			v, ok := intArg(ctx, args, 1)
			if !ok {
				return runtime.Unknown, nil
			}
			end = clampIndex(v, n)
		}
	}
	var out []runtime.Value
	for i := start; i < end; i++ {
		out = append(out, obj.Get(indexName(i), callFn(ctx)))
	}
	return valueArray(ctx, out), nil
}

func arraySplice(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.splice")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	start := 0
	if len(args) > 0 {
		v, ok := intArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		start = clampIndex(v, n)
	}
	deleteCount := n - start
	if len(args) > 1 {
		v, ok := intArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		if v < 0 {
			v = 0
		}
		if v > n-start {
			v = n - start
		}
		deleteCount = v
	}
	var items []runtime.Value
	if len(args) > 2 {
		items = args[2:]
	}

	removed := make([]runtime.Value, deleteCount)
	for i := 0; i < deleteCount; i++ {
		removed[i] = obj.Get(indexName(start+i), callFn(ctx))
	}

	hook := objectTypeErrorHook(ctx)
	shift := len(items) - deleteCount
	if shift < 0 {
		for i := start; i < n-deleteCount; i++ {
			v := obj.Get(indexName(i+deleteCount), callFn(ctx))
			obj.DefineOwnProperty(indexName(i+len(items)), runtime.DataDescriptor(v, true, true, true), true, hook)
		}
		for i := n + shift; i < n; i++ {
			obj.Delete(indexName(i), true, hook)
		}
	} else if shift > 0 {
		for i := n - deleteCount - 1; i >= start; i-- {
			v := obj.Get(indexName(i+deleteCount), callFn(ctx))
			obj.DefineOwnProperty(indexName(i+len(items)), runtime.DataDescriptor(v, true, true, true), true, hook)
		}
	}
	for i, v := range items {
		obj.DefineOwnProperty(indexName(start+i), runtime.DataDescriptor(v, true, true, true), true, hook)
	}
	obj.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(n+shift)), true, false, false), true, hook)
	return valueArray(ctx, removed), nil
}

func arrayIndexOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.indexOf")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	if n == 0 {
		return runtime.NumberValue(-1), nil
	}
	target := arg(args, 0)
	if runtime.IsUnknown(target) {
		return runtime.Unknown, nil
	}
	start := 0
	if len(args) > 1 {
		v, ok := intArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		start = v
		if start < 0 {
			start += n
		}
		if start < 0 {
			start = 0
		}
	}
	for i := start; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		if runtime.IsUnknown(v) {
			return runtime.Unknown, nil
		}
		if bool(runtime.StrictEquals(v, target)) {
			return runtime.NumberValue(float64(i)), nil
		}
	}
	return runtime.NumberValue(-1), nil
}

func arrayLastIndexOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.lastIndexOf")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	if n == 0 {
		return runtime.NumberValue(-1), nil
	}
	target := arg(args, 0)
	if runtime.IsUnknown(target) {
		return runtime.Unknown, nil
	}
	start := n - 1
	if len(args) > 1 {
		v, ok := intArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		if v >= 0 {
			start = v
			if start > n-1 {
				start = n - 1
			}
		} else {
			start = n + v
		}
	}
	for i := start; i >= 0; i-- {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		if runtime.IsUnknown(v) {
			return runtime.Unknown, nil
		}
		if bool(runtime.StrictEquals(v, target)) {
			return runtime.NumberValue(float64(i)), nil
		}
	}
	return runtime.NumberValue(-1), nil
}

// arrayIterationCallback resolves the callback/thisArg pair every
// every/some/forEach/map/filter/reduce* method shares (ES5.1 §15.4.4.16-22).
func arrayIterationCallback(ctx *runtime.ExecutionContext, args []runtime.Value, method string) (*runtime.ObjectValue, runtime.Value, *runtime.ExceptionValue) {
	fn, ok := isCallableObject(arg(args, 0))
	if !ok {
		return nil, nil, runtime.NewTypeError(method+": callback is not a function", ctx)
	}
	return fn, arg(args, 1), nil
}

func arrayEvery(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.every")
	if exc != nil {
		return nil, exc
	}
	fn, thisArg, exc := arrayIterationCallback(ctx, args, "Array.prototype.every")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	for i := 0; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		res, exc := runtime.Call(ctx, fn, thisArg, []runtime.Value{v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		if runtime.IsUnknown(res) {
			return runtime.Unknown, nil
		}
		if !bool(runtime.ToBoolean(res)) {
			return runtime.Bool(false), nil
		}
	}
	return runtime.Bool(true), nil
}

func arraySome(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.some")
	if exc != nil {
		return nil, exc
	}
	fn, thisArg, exc := arrayIterationCallback(ctx, args, "Array.prototype.some")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	for i := 0; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		res, exc := runtime.Call(ctx, fn, thisArg, []runtime.Value{v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		if runtime.IsUnknown(res) {
			return runtime.Unknown, nil
		}
		if bool(runtime.ToBoolean(res)) {
			return runtime.Bool(true), nil
		}
	}
	return runtime.Bool(false), nil
}

func arrayForEach(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.forEach")
	if exc != nil {
		return nil, exc
	}
	fn, thisArg, exc := arrayIterationCallback(ctx, args, "Array.prototype.forEach")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	for i := 0; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		if _, exc := runtime.Call(ctx, fn, thisArg, []runtime.Value{v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke); exc != nil {
			return nil, exc
		}
	}
	return runtime.Undefined, nil
}

func arrayMap(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.map")
	if exc != nil {
		return nil, exc
	}
	fn, thisArg, exc := arrayIterationCallback(ctx, args, "Array.prototype.map")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	out := make([]runtime.Value, n)
	for i := 0; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			out[i] = runtime.Undefined
			continue
		}
		v := obj.Get(name, callFn(ctx))
		res, exc := runtime.Call(ctx, fn, thisArg, []runtime.Value{v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		out[i] = res
	}
	return valueArray(ctx, out), nil
}

func arrayFilter(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.filter")
	if exc != nil {
		return nil, exc
	}
	fn, thisArg, exc := arrayIterationCallback(ctx, args, "Array.prototype.filter")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	var out []runtime.Value
	for i := 0; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		res, exc := runtime.Call(ctx, fn, thisArg, []runtime.Value{v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		if runtime.IsUnknown(res) {
			return runtime.Unknown, nil
		}
		if bool(runtime.ToBoolean(res)) {
			out = append(out, v)
		}
	}
	return valueArray(ctx, out), nil
}

func arrayReduce(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.reduce")
	if exc != nil {
		return nil, exc
	}
	fn, ok := isCallableObject(arg(args, 0))
	if !ok {
		return nil, runtime.NewTypeError("Array.prototype.reduce: callback is not a function", ctx)
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	i := 0
	var acc runtime.Value
	haveAcc := false
	if len(args) > 1 {
		acc, haveAcc = args[1], true
	}
	for !haveAcc {
		if i >= n {
			return nil, runtime.NewTypeError("Array.prototype.reduce: reduce of empty array with no initial value", ctx)
		}
		name := indexName(i)
		if obj.HasProperty(name) {
			acc = obj.Get(name, callFn(ctx))
			haveAcc = true
		}
		i++
	}
	for ; i < n; i++ {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		res, exc := runtime.Call(ctx, fn, runtime.Undefined, []runtime.Value{acc, v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		acc = res
	}
	return acc, nil
}

func arrayReduceRight(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.reduceRight")
	if exc != nil {
		return nil, exc
	}
	fn, ok := isCallableObject(arg(args, 0))
	if !ok {
		return nil, runtime.NewTypeError("Array.prototype.reduceRight: callback is not a function", ctx)
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	i := n - 1
	var acc runtime.Value
	haveAcc := false
	if len(args) > 1 {
		acc, haveAcc = args[1], true
	}
	for !haveAcc {
		if i < 0 {
			return nil, runtime.NewTypeError("Array.prototype.reduceRight: reduce of empty array with no initial value", ctx)
		}
		name := indexName(i)
		if obj.HasProperty(name) {
			acc = obj.Get(name, callFn(ctx))
			haveAcc = true
		}
		i--
	}
	for ; i >= 0; i-- {
		name := indexName(i)
		if !obj.HasProperty(name) {
			continue
		}
		v := obj.Get(name, callFn(ctx))
		res, exc := runtime.Call(ctx, fn, runtime.Undefined, []runtime.Value{acc, v, runtime.NumberValue(float64(i)), obj}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		acc = res
	}
	return acc, nil
}

// arraySort implements ES5.1 §15.4.4.11. Undefined elements sort to the
// end regardless of comparator; the comparator's return value is coerced
// with ToNumber, and any Unknown result leaves the order indeterminate: the
// array itself is kept and returned, but every present element is replaced
// with Unknown.
func arraySort(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, exc := thisObject(ctx, this, "Array.prototype.sort")
	if exc != nil {
		return nil, exc
	}
	n, ok := length(ctx, obj)
	if !ok {
		return runtime.Unknown, nil
	}
	var cmp *runtime.ObjectValue
	if len(args) > 0 {
		if _, isUndef := args[0].(runtime.UndefinedValue); !isUndef {
			fn, ok := isCallableObject(args[0])
			if !ok {
				return nil, runtime.NewTypeError("Array.prototype.sort: comparator is not a function", ctx)
			}
			cmp = fn
		}
	}

	values := make([]runtime.Value, n)
	present := make([]bool, n)
	for i := 0; i < n; i++ {
		name := indexName(i)
		present[i] = obj.HasProperty(name)
		if present[i] {
			values[i] = obj.Get(name, callFn(ctx))
		}
	}

	degraded := false
	less := func(i, j int) bool {
		if !present[i] {
			return false
		}
		if !present[j] {
			return true
		}
		if _, iUndef := values[i].(runtime.UndefinedValue); iUndef {
			return false
		}
		if _, jUndef := values[j].(runtime.UndefinedValue); jUndef {
			return true
		}
		if cmp != nil {
			res, exc := runtime.Call(ctx, cmp, runtime.Undefined, []runtime.Value{values[i], values[j]}, ctx.Realm().Invoke)
			if exc != nil {
				degraded = true
				return false
			}
			n := runtime.ToNumber(res, callFn(ctx))
			if runtime.IsUnknown(n) {
				degraded = true
				return false
			}
			return float64(n.(runtime.NumberValue)) < 0
		}
		si, siOK := elementToString(ctx, values[i])
		sj, sjOK := elementToString(ctx, values[j])
		if !siOK || !sjOK {
			degraded = true
			return false
		}
		return strings.Compare(si, sj) < 0
	}
	order := stableSortIndices(n, less)

	hook := objectTypeErrorHook(ctx)
	if degraded {
		// The comparison order can't be determined statically: conservatively
		// surface every present element as Unknown rather than guess an
		// order.
		for i := 0; i < n; i++ {
			name := indexName(i)
			if present[i] {
				obj.DefineOwnProperty(name, runtime.DataDescriptor(runtime.Unknown, true, true, true), true, hook)
			}
		}
		return obj, nil
	}

	for i, srcIdx := range order {
		name := indexName(i)
		if present[srcIdx] {
			obj.DefineOwnProperty(name, runtime.DataDescriptor(values[srcIdx], true, true, true), true, hook)
		} else {
			obj.Delete(name, true, hook)
		}
	}
	return obj, nil
}
