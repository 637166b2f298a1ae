package evaluator

import (
	"math"
	"strings"

	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"
)

func (e *Evaluator) evalUnary(ctx *runtime.ExecutionContext, n *ast.UnaryExpression) (runtime.Value, *runtime.ExceptionValue) {
	switch n.Operator {
	case "typeof":
		return e.evalTypeof(ctx, n.Argument)
	case "delete":
		return e.evalDelete(ctx, n.Argument)
	case "void":
		if _, exc := e.eval(ctx, n.Argument); exc != nil {
			return nil, exc
		}
		return runtime.Undefined, nil
	}

	v, exc := e.eval(ctx, n.Argument)
	if exc != nil {
		return nil, exc
	}
	if runtime.IsUnknown(v) {
		return runtime.Unknown, nil
	}
	switch n.Operator {
	case "+":
		return runtime.ToNumber(v, e.callFunc), nil
	case "-":
		num := runtime.ToNumber(v, e.callFunc)
		if runtime.IsUnknown(num) {
			return runtime.Unknown, nil
		}
		return runtime.NumberValue(-float64(num.(runtime.NumberValue))), nil
	case "~":
		i := runtime.ToInt32(v, e.callFunc)
		if runtime.IsUnknown(i) {
			return runtime.Unknown, nil
		}
		return runtime.NumberValue(float64(^int32(i.(runtime.NumberValue)))), nil
	case "!":
		return runtime.Bool(!bool(runtime.ToBoolean(v))), nil
	default:
		runtime.Fatal("internal error: unhandled unary operator %q", n.Operator)
		return nil, nil
	}
}

func (e *Evaluator) evalTypeof(ctx *runtime.ExecutionContext, arg ast.Node) (runtime.Value, *runtime.ExceptionValue) {
	if id, ok := arg.(*ast.Identifier); ok {
		ref := runtime.ResolveIdentifier(ctx.LexicalEnvironment, id.Name, ctx.Strict)
		if ref.IsUnresolvable() {
			return runtime.StringValue("undefined"), nil
		}
	}
	v, exc := e.eval(ctx, arg)
	if exc != nil {
		return nil, exc
	}
	if runtime.IsUnknown(v) {
		return runtime.StringValue("unknown"), nil
	}
	if obj, ok := v.(*runtime.ObjectValue); ok {
		if obj.IsCallable() {
			return runtime.StringValue("function"), nil
		}
		return runtime.StringValue("object"), nil
	}
	return runtime.StringValue(v.Type().String()), nil
}

func (e *Evaluator) evalDelete(ctx *runtime.ExecutionContext, arg ast.Node) (runtime.Value, *runtime.ExceptionValue) {
	switch x := arg.(type) {
	case *ast.MemberExpression:
		baseVal, exc := e.eval(ctx, x.Object)
		if exc != nil {
			return nil, exc
		}
		if runtime.IsUnknown(baseVal) {
			return runtime.Unknown, nil
		}
		var name string
		if x.Computed {
			propVal, exc := e.eval(ctx, x.Property)
			if exc != nil {
				return nil, exc
			}
			sv := runtime.ToString(propVal, e.callFunc)
			s, _ := sv.(runtime.StringValue)
			name = string(s)
		} else {
			name = x.Property.(*ast.Identifier).Name
		}
		obj, exc := runtime.ToObject(baseVal, e.realm.Protos, ctx)
		if exc != nil {
			return nil, exc
		}
		objVal, ok := obj.(*runtime.ObjectValue)
		if !ok {
			return runtime.Bool(true), nil
		}
		return runtime.Bool(objVal.Delete(name, ctx.Strict, e.typeErrorHook(ctx))), nil
	case *ast.Identifier:
		ref := runtime.ResolveIdentifier(ctx.LexicalEnvironment, x.Name, ctx.Strict)
		if ref.IsUnresolvable() {
			return runtime.Bool(true), nil
		}
		rec := ref.Base.(runtime.EnvironmentRecord)
		return runtime.Bool(rec.DeleteBinding(x.Name)), nil
	default:
		if _, exc := e.eval(ctx, arg); exc != nil {
			return nil, exc
		}
		return runtime.Bool(true), nil
	}
}

func (e *Evaluator) evalUpdate(ctx *runtime.ExecutionContext, n *ast.UpdateExpression) (runtime.Value, *runtime.ExceptionValue) {
	ref, exc := e.evalRef(ctx, n.Argument)
	if exc != nil {
		return nil, exc
	}
	oldVal, exc := runtime.GetValue(ctx, ref, e.callFunc, false)
	if exc != nil {
		return nil, exc
	}
	if runtime.IsUnknown(oldVal) {
		if exc := runtime.PutValue(ctx, ref, runtime.Unknown, e.callFunc, e.typeErrorHook(ctx)); exc != nil {
			return nil, exc
		}
		return runtime.Unknown, nil
	}
	oldNum := runtime.ToNumber(oldVal, e.callFunc)
	if runtime.IsUnknown(oldNum) {
		return runtime.Unknown, nil
	}
	delta := 1.0
	if n.Operator == "--" {
		delta = -1.0
	}
	newNum := runtime.NumberValue(float64(oldNum.(runtime.NumberValue)) + delta)
	if exc := runtime.PutValue(ctx, ref, newNum, e.callFunc, e.typeErrorHook(ctx)); exc != nil {
		return nil, exc
	}
	if n.Prefix {
		return newNum, nil
	}
	return oldNum, nil
}

func (e *Evaluator) evalLogical(ctx *runtime.ExecutionContext, n *ast.LogicalExpression) (runtime.Value, *runtime.ExceptionValue) {
	left, exc := e.eval(ctx, n.Left)
	if exc != nil {
		return nil, exc
	}
	if runtime.IsUnknown(left) {
		e.evalStatementSwallowingThrow(ctx, &ast.ExpressionStatement{Expression: n.Right})
		return runtime.Unknown, nil
	}
	cond := bool(runtime.ToBoolean(left))
	if (n.Operator == "&&" && !cond) || (n.Operator == "||" && cond) {
		return left, nil
	}
	return e.eval(ctx, n.Right)
}

func (e *Evaluator) evalBinary(ctx *runtime.ExecutionContext, n *ast.BinaryExpression) (runtime.Value, *runtime.ExceptionValue) {
	left, exc := e.eval(ctx, n.Left)
	if exc != nil {
		return nil, exc
	}
	right, exc := e.eval(ctx, n.Right)
	if exc != nil {
		return nil, exc
	}
	return e.applyBinary(ctx, n.Operator, left, right)
}

func (e *Evaluator) applyBinary(ctx *runtime.ExecutionContext, op string, left, right runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	switch op {
	case "==":
		return runtime.AbstractEquals(left, right, e.callFunc), nil
	case "!=":
		r := runtime.AbstractEquals(left, right, e.callFunc)
		if runtime.IsUnknown(r) {
			return runtime.Unknown, nil
		}
		return runtime.Bool(!bool(r.(runtime.BooleanValue))), nil
	case "===":
		return runtime.StrictEquals(left, right), nil
	case "!==":
		return runtime.Bool(!bool(runtime.StrictEquals(left, right))), nil
	case "instanceof":
		return e.evalInstanceof(ctx, left, right)
	case "in":
		return e.evalIn(ctx, left, right)
	}

	if runtime.IsUnknown(left) || runtime.IsUnknown(right) {
		return runtime.Unknown, nil
	}

	switch op {
	case "+":
		lp := runtime.ToPrimitive(left, "", e.callFunc)
		rp := runtime.ToPrimitive(right, "", e.callFunc)
		if runtime.IsUnknown(lp) || runtime.IsUnknown(rp) {
			return runtime.Unknown, nil
		}
		_, lIsStr := lp.(runtime.StringValue)
		_, rIsStr := rp.(runtime.StringValue)
		if lIsStr || rIsStr {
			ls := runtime.ToString(lp, e.callFunc).(runtime.StringValue)
			rs := runtime.ToString(rp, e.callFunc).(runtime.StringValue)
			return runtime.StringValue(string(ls) + string(rs)), nil
		}
		ln := runtime.ToNumber(lp, e.callFunc)
		rn := runtime.ToNumber(rp, e.callFunc)
		if runtime.IsUnknown(ln) || runtime.IsUnknown(rn) {
			return runtime.Unknown, nil
		}
		return runtime.NumberValue(float64(ln.(runtime.NumberValue)) + float64(rn.(runtime.NumberValue))), nil
	case "-", "*", "/", "%":
		ln := runtime.ToNumber(left, e.callFunc)
		rn := runtime.ToNumber(right, e.callFunc)
		if runtime.IsUnknown(ln) || runtime.IsUnknown(rn) {
			return runtime.Unknown, nil
		}
		a, b := float64(ln.(runtime.NumberValue)), float64(rn.(runtime.NumberValue))
		switch op {
		case "-":
			return runtime.NumberValue(a - b), nil
		case "*":
			return runtime.NumberValue(a * b), nil
		case "/":
			return runtime.NumberValue(a / b), nil
		case "%":
			return runtime.NumberValue(math.Mod(a, b)), nil
		}
	case "<", ">", "<=", ">=":
		return e.evalRelational(op, left, right)
	case "&", "|", "^", "<<", ">>", ">>>":
		return e.evalBitwise(op, left, right)
	}
	runtime.Fatal("internal error: unhandled binary operator %q", op)
	return nil, nil
}

// evalRelational implements ES5.1 §11.8's Abstract Relational Comparison,
// preferring a string comparison when both operands' ToPrimitive results
// are strings and a numeric one otherwise; NaN on either side yields
// Undefined per the spec algorithm, translated here to false.
func (e *Evaluator) evalRelational(op string, left, right runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	lp := runtime.ToPrimitive(left, "Number", e.callFunc)
	rp := runtime.ToPrimitive(right, "Number", e.callFunc)
	if runtime.IsUnknown(lp) || runtime.IsUnknown(rp) {
		return runtime.Unknown, nil
	}
	ls, lIsStr := lp.(runtime.StringValue)
	rs, rIsStr := rp.(runtime.StringValue)
	var less, greater bool
	if lIsStr && rIsStr {
		cmp := strings.Compare(string(ls), string(rs))
		less, greater = cmp < 0, cmp > 0
	} else {
		ln := runtime.ToNumber(lp, e.callFunc)
		rn := runtime.ToNumber(rp, e.callFunc)
		if runtime.IsUnknown(ln) || runtime.IsUnknown(rn) {
			return runtime.Unknown, nil
		}
		a, b := float64(ln.(runtime.NumberValue)), float64(rn.(runtime.NumberValue))
		if math.IsNaN(a) || math.IsNaN(b) {
			return runtime.Bool(false), nil
		}
		less, greater = a < b, a > b
	}
	switch op {
	case "<":
		return runtime.Bool(less), nil
	case ">":
		return runtime.Bool(greater), nil
	case "<=":
		return runtime.Bool(!greater), nil
	case ">=":
		return runtime.Bool(!less), nil
	}
	return runtime.Bool(false), nil
}

func (e *Evaluator) evalBitwise(op string, left, right runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if op == "<<" || op == ">>" || op == ">>>" {
		l := runtime.ToInt32(left, e.callFunc)
		if runtime.IsUnknown(l) {
			return runtime.Unknown, nil
		}
		shiftCount := runtime.ToUint32(right, e.callFunc)
		if runtime.IsUnknown(shiftCount) {
			return runtime.Unknown, nil
		}
		shift := uint32(shiftCount.(runtime.NumberValue)) & 0x1F
		li := int32(l.(runtime.NumberValue))
		switch op {
		case "<<":
			return runtime.NumberValue(float64(li << shift)), nil
		case ">>":
			return runtime.NumberValue(float64(li >> shift)), nil
		default: // >>>
			ru := runtime.ToUint32(left, e.callFunc)
			if runtime.IsUnknown(ru) {
				return runtime.Unknown, nil
			}
			return runtime.NumberValue(float64(uint32(ru.(runtime.NumberValue)) >> shift)), nil
		}
	}
	l := runtime.ToInt32(left, e.callFunc)
	r := runtime.ToInt32(right, e.callFunc)
	if runtime.IsUnknown(l) || runtime.IsUnknown(r) {
		return runtime.Unknown, nil
	}
	li, ri := int32(l.(runtime.NumberValue)), int32(r.(runtime.NumberValue))
	switch op {
	case "&":
		return runtime.NumberValue(float64(li & ri)), nil
	case "|":
		return runtime.NumberValue(float64(li | ri)), nil
	case "^":
		return runtime.NumberValue(float64(li ^ ri)), nil
	}
	return nil, nil
}

// evalInstanceof implements ES5.1 §11.8.6/§15.3.5.3.
func (e *Evaluator) evalInstanceof(ctx *runtime.ExecutionContext, left, right runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if runtime.IsUnknown(left) || runtime.IsUnknown(right) {
		return runtime.Unknown, nil
	}
	ctor, ok := right.(*runtime.ObjectValue)
	if !ok {
		return e.report(ctx, runtime.NewTypeError(errors.MsgInstanceofNonObject, ctx))
	}
	if !ctor.IsCallable() {
		return e.report(ctx, runtime.NewTypeError(errors.MsgInstanceofNonCallable, ctx))
	}
	obj, ok := left.(*runtime.ObjectValue)
	if !ok {
		return runtime.Bool(false), nil
	}
	protoVal := ctor.Get("prototype", e.callFunc)
	proto, ok := protoVal.(*runtime.ObjectValue)
	if !ok {
		return e.report(ctx, runtime.NewTypeError("prototype is not an object", ctx))
	}
	for cur := obj.Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return runtime.Bool(true), nil
		}
	}
	return runtime.Bool(false), nil
}

func (e *Evaluator) evalIn(ctx *runtime.ExecutionContext, left, right runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if runtime.IsUnknown(left) || runtime.IsUnknown(right) {
		return runtime.Unknown, nil
	}
	obj, ok := right.(*runtime.ObjectValue)
	if !ok {
		return e.report(ctx, runtime.NewTypeError("cannot use 'in' operator on a non-object", ctx))
	}
	name := runtime.ToString(left, e.callFunc)
	s, _ := name.(runtime.StringValue)
	return runtime.Bool(obj.HasProperty(string(s))), nil
}

func (e *Evaluator) evalAssignment(ctx *runtime.ExecutionContext, n *ast.AssignmentExpression) (runtime.Value, *runtime.ExceptionValue) {
	ref, exc := e.evalRef(ctx, n.Left)
	if exc != nil {
		return nil, exc
	}
	if n.Operator == "=" {
		v, exc := e.eval(ctx, n.Right)
		if exc != nil {
			return nil, exc
		}
		if exc := runtime.PutValue(ctx, ref, v, e.callFunc, e.typeErrorHook(ctx)); exc != nil {
			return nil, exc
		}
		return v, nil
	}

	oldVal, exc := runtime.GetValue(ctx, ref, e.callFunc, false)
	if exc != nil {
		return nil, exc
	}
	rightVal, exc := e.eval(ctx, n.Right)
	if exc != nil {
		return nil, exc
	}
	op := strings.TrimSuffix(n.Operator, "=")
	newVal, exc := e.applyBinary(ctx, op, oldVal, rightVal)
	if exc != nil {
		return nil, exc
	}
	if exc := runtime.PutValue(ctx, ref, newVal, e.callFunc, e.typeErrorHook(ctx)); exc != nil {
		return nil, exc
	}
	return newVal, nil
}
