package evaluator

import (
	"fmt"

	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"
)

// eval evaluates n to a Value, resolving any Reference it produces via
// GetValue (ES5.1's "GetValue of evaluating Expression").
func (e *Evaluator) eval(ctx *runtime.ExecutionContext, n ast.Node) (runtime.Value, *runtime.ExceptionValue) {
	switch x := n.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		ref, exc := e.evalRef(ctx, n)
		if exc != nil {
			return nil, exc
		}
		return runtime.GetValue(ctx, ref, e.callFunc, false)
	case *ast.Literal:
		return e.evalLiteral(ctx, x)
	case *ast.ThisExpression:
		return ctx.ThisBinding, nil
	case *ast.ArrayExpression:
		return e.evalArrayLiteral(ctx, x)
	case *ast.ObjectExpression:
		return e.evalObjectLiteral(ctx, x)
	case *ast.FunctionExpression:
		return e.evalFunctionExpression(ctx, x), nil
	case *ast.SequenceExpression:
		var v runtime.Value = runtime.Undefined
		for _, item := range x.Expressions {
			val, exc := e.eval(ctx, item)
			if exc != nil {
				return nil, exc
			}
			v = val
		}
		return v, nil
	case *ast.UnaryExpression:
		return e.evalUnary(ctx, x)
	case *ast.UpdateExpression:
		return e.evalUpdate(ctx, x)
	case *ast.BinaryExpression:
		return e.evalBinary(ctx, x)
	case *ast.LogicalExpression:
		return e.evalLogical(ctx, x)
	case *ast.AssignmentExpression:
		return e.evalAssignment(ctx, x)
	case *ast.ConditionalExpression:
		return e.evalConditional(ctx, x)
	case *ast.NewExpression:
		return e.evalNew(ctx, x)
	case *ast.CallExpression:
		return e.evalCall(ctx, x)
	default:
		runtime.Fatal("internal error: unhandled expression kind %q", n.Kind())
		return nil, nil
	}
}

func (e *Evaluator) evalRef(ctx *runtime.ExecutionContext, n ast.Node) (*runtime.Reference, *runtime.ExceptionValue) {
	switch x := n.(type) {
	case *ast.Identifier:
		return runtime.ResolveIdentifier(ctx.LexicalEnvironment, x.Name, ctx.Strict), nil
	case *ast.MemberExpression:
		baseVal, exc := e.eval(ctx, x.Object)
		if exc != nil {
			return nil, exc
		}
		var name string
		if x.Computed {
			propVal, exc := e.eval(ctx, x.Property)
			if exc != nil {
				return nil, exc
			}
			sv := runtime.ToString(propVal, e.callFunc)
			if s, ok := sv.(runtime.StringValue); ok {
				name = string(s)
			}
		} else {
			id, ok := x.Property.(*ast.Identifier)
			if !ok {
				runtime.Fatal("internal error: non-computed member property is not an Identifier")
			}
			name = id.Name
		}
		return &runtime.Reference{Base: baseVal, ReferencedName: name, StrictReference: ctx.Strict}, nil
	default:
		runtime.Fatal("internal error: %q is not a reference expression", n.Kind())
		return nil, nil
	}
}

func (e *Evaluator) evalLiteral(ctx *runtime.ExecutionContext, n *ast.Literal) (runtime.Value, *runtime.ExceptionValue) {
	switch v := n.Value.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.Bool(v), nil
	case float64:
		return runtime.NumberValue(v), nil
	case string:
		return runtime.StringValue(v), nil
	case *ast.RegExpLiteral:
		return e.newRegExp(ctx, v.Pattern, v.Flags), nil
	default:
		return runtime.Undefined, nil
	}
}

func (e *Evaluator) evalArrayLiteral(ctx *runtime.ExecutionContext, n *ast.ArrayExpression) (runtime.Value, *runtime.ExceptionValue) {
	arr := e.newArray(ctx, 0)
	for i, el := range n.Elements {
		if el == nil {
			continue // elision: the index is simply absent, not Undefined
		}
		v, exc := e.eval(ctx, el)
		if exc != nil {
			return nil, exc
		}
		arr.DefineOwnProperty(fmt.Sprint(i), runtime.DataDescriptor(v, true, true, true), true, e.typeErrorHook(ctx))
	}
	length := len(n.Elements)
	arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(length)), true, false, false), true, e.typeErrorHook(ctx))
	return arr, nil
}

func (e *Evaluator) evalObjectLiteral(ctx *runtime.ExecutionContext, n *ast.ObjectExpression) (runtime.Value, *runtime.ExceptionValue) {
	obj := runtime.NewObject(e.realm.Protos.Object, "Object", ctx)
	for _, p := range n.Properties {
		name, exc := e.propertyKeyName(ctx, p.Key)
		if exc != nil {
			return nil, exc
		}
		switch p.PropKind {
		case "get", "set":
			fnVal := e.evalFunctionExpression(ctx, p.Value.(*ast.FunctionExpression))
			existing := obj.GetOwnProperty(name)
			desc := &runtime.PropertyDescriptor{HasEnumerable: true, Enumerable: true, HasConfigurable: true, Configurable: true}
			if existing != nil && runtime.IsAccessorDescriptor(existing) {
				desc.Get, desc.Set = existing.Get, existing.Set
				desc.HasGet, desc.HasSet = true, true
			}
			if p.PropKind == "get" {
				desc.Get, desc.HasGet = fnVal, true
			} else {
				desc.Set, desc.HasSet = fnVal, true
			}
			obj.DefineOwnProperty(name, desc, true, e.typeErrorHook(ctx))
		default:
			v, exc := e.eval(ctx, p.Value)
			if exc != nil {
				return nil, exc
			}
			obj.DefineOwnProperty(name, runtime.DataDescriptor(v, true, true, true), true, e.typeErrorHook(ctx))
		}
	}
	return obj, nil
}

func (e *Evaluator) propertyKeyName(ctx *runtime.ExecutionContext, key ast.Node) (string, *runtime.ExceptionValue) {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, nil
	case *ast.Literal:
		v, exc := e.evalLiteral(ctx, k)
		if exc != nil {
			return "", exc
		}
		sv := runtime.ToString(v, e.callFunc)
		s, _ := sv.(runtime.StringValue)
		return string(s), nil
	default:
		runtime.Fatal("internal error: unsupported object literal key kind %q", key.Kind())
		return "", nil
	}
}

func (e *Evaluator) evalFunctionExpression(ctx *runtime.ExecutionContext, n *ast.FunctionExpression) *runtime.ObjectValue {
	scope := ctx.LexicalEnvironment
	name := ""
	if n.ID != nil {
		// Named function expressions bind their own name in a dedicated
		// scope layer so the function can refer to itself recursively
		// (ES5.1 §13 NOTE after step 4).
		scope = runtime.NewDeclarativeEnvironment(scope)
		name = n.ID.Name
	}
	fn := e.makeFunctionObject(ctx, scope, name, n.Params, n.Body, n.Strict || ctx.Strict)
	if n.ID != nil {
		scope.Record.CreateImmutableBinding(name)
		scope.Record.InitializeImmutableBinding(name, fn)
	}
	return fn
}

func (e *Evaluator) evalConditional(ctx *runtime.ExecutionContext, n *ast.ConditionalExpression) (runtime.Value, *runtime.ExceptionValue) {
	test, exc := e.eval(ctx, n.Test)
	if exc != nil {
		return nil, exc
	}
	if runtime.IsUnknown(test) {
		return runtime.Unknown, nil
	}
	if bool(runtime.ToBoolean(test)) {
		return e.eval(ctx, n.Consequent)
	}
	return e.eval(ctx, n.Alternate)
}

func (e *Evaluator) evalNew(ctx *runtime.ExecutionContext, n *ast.NewExpression) (runtime.Value, *runtime.ExceptionValue) {
	calleeVal, exc := e.eval(ctx, n.Callee)
	if exc != nil {
		return nil, exc
	}
	if runtime.IsUnknown(calleeVal) {
		return runtime.Unknown, nil
	}
	fnObj, ok := calleeVal.(*runtime.ObjectValue)
	if !ok || !fnObj.IsCallable() {
		return e.report(ctx, runtime.NewTypeError(fmt.Sprintf(errors.MsgNotConstructor, calleeName(n.Callee)), ctx))
	}
	args, exc := e.evalArgs(ctx, n.Arguments)
	if exc != nil {
		return nil, exc
	}
	v, exc := runtime.Construct(ctx, fnObj, args, e.invoke, e.realm.Protos.Object)
	if exc != nil {
		return e.report(ctx, exc)
	}
	return v, nil
}

func (e *Evaluator) evalCall(ctx *runtime.ExecutionContext, n *ast.CallExpression) (runtime.Value, *runtime.ExceptionValue) {
	var thisVal runtime.Value = runtime.Undefined
	var fnVal runtime.Value
	var exc *runtime.ExceptionValue

	if me, ok := n.Callee.(*ast.MemberExpression); ok {
		ref, e1 := e.evalRef(ctx, me)
		if e1 != nil {
			return nil, e1
		}
		fnVal, exc = runtime.GetValue(ctx, ref, e.callFunc, false)
		if exc != nil {
			return nil, exc
		}
		if baseVal, ok := ref.Base.(runtime.Value); ok {
			thisVal = baseVal
		}
	} else {
		fnVal, exc = e.eval(ctx, n.Callee)
		if exc != nil {
			return nil, exc
		}
	}

	args, exc := e.evalArgs(ctx, n.Arguments)
	if exc != nil {
		return nil, exc
	}

	if runtime.IsUnknown(fnVal) || runtime.IsUnknown(thisVal) {
		return runtime.Unknown, nil
	}

	fnObj, ok := fnVal.(*runtime.ObjectValue)
	if !ok || !fnObj.IsCallable() {
		return e.report(ctx, runtime.NewTypeError(fmt.Sprintf(errors.MsgNotAFunction, calleeName(n.Callee)), ctx))
	}

	if override := e.realm.ResolveOverride(calleeName(n.Callee)); override != nil {
		v, exc := override.CallFunction(thisVal, args)
		if exc != nil {
			return e.report(ctx, exc)
		}
		return v, nil
	}

	if e.realm.Config != nil && !e.realm.Config.InvokeMethods {
		e.processDeclinedCall(ctx, fnObj)
		return runtime.Unknown, nil
	}

	v, exc := runtime.Call(ctx, fnObj, thisVal, args, e.invoke)
	if exc != nil {
		return e.report(ctx, exc)
	}
	return v, nil
}

func (e *Evaluator) evalArgs(ctx *runtime.ExecutionContext, nodes []ast.Node) ([]runtime.Value, *runtime.ExceptionValue) {
	out := make([]runtime.Value, len(nodes))
	for i, n := range nodes {
		v, exc := e.eval(ctx, n)
		if exc != nil {
			return nil, exc
		}
		out[i] = v
	}
	return out, nil
}

func calleeName(n ast.Node) string {
	switch x := n.(type) {
	case *ast.Identifier:
		return x.Name
	case *ast.MemberExpression:
		if !x.Computed {
			if id, ok := x.Property.(*ast.Identifier); ok {
				return calleeName(x.Object) + "." + id.Name
			}
		}
		return calleeName(x.Object) + "[...]"
	default:
		return "expression"
	}
}
