package runtime

import "github.com/cwbudde/jsstatic/internal/events"

// Reference is the ES5.1 §8.7 specification type produced by resolving an
// identifier or evaluating a member expression. Base is either an
// EnvironmentRecord (identifier resolution), a Value (property access), or
// Undefined (unresolvable).
type Reference struct {
	Base            any // EnvironmentRecord | Value | nil (unresolvable)
	ReferencedName  string
	StrictReference bool
}

// IsUnresolvable reports whether base is the unresolvable sentinel
// (ES5.1 §8.7, "base value is undefined" for an identifier never bound in
// any environment on the chain).
func (r *Reference) IsUnresolvable() bool {
	if r.Base == nil {
		return true
	}
	_, isUndef := r.Base.(UndefinedValue)
	return isUndef
}

// IsPropertyReference reports whether base is an ordinary Value rather
// than an environment record (ES5.1 §8.7).
func (r *Reference) IsPropertyReference() bool {
	switch r.Base.(type) {
	case EnvironmentRecord:
		return false
	case UndefinedValue, nil:
		return false
	default:
		return true
	}
}

// GetValue implements ES5.1 §8.7.1, with alternate selecting the
// skipped-mode secondary view (used when re-processing a branch that was
// first skipped).
func GetValue(ctx *ExecutionContext, r *Reference, call CallFunc, alternate bool) (Value, *ExceptionValue) {
	if r.IsUnresolvable() {
		return nil, NewReferenceError(r.ReferencedName+" is not defined", ctx)
	}
	if !r.IsPropertyReference() {
		rec := r.Base.(EnvironmentRecord)
		return rec.GetBindingValue(ctx, r.ReferencedName, r.StrictReference, alternate)
	}
	base := r.Base.(Value)
	if exc := CheckObjectCoercible(base, ctx); exc != nil {
		return nil, exc
	}
	if obj, ok := base.(*ObjectValue); ok {
		return GetProperty(ctx, obj, r.ReferencedName, call), nil
	}
	if IsUnknown(base) {
		return Unknown, nil
	}
	boxed, exc := ToObject(base, defaultPrototypes(ctx), ctx)
	if exc != nil {
		return nil, exc
	}
	if obj, ok := boxed.(*ObjectValue); ok {
		return GetProperty(ctx, obj, r.ReferencedName, call), nil
	}
	return Unknown, nil
}

// PutValue implements ES5.1 §8.7.2: assigning through a reference. An
// unresolvable, non-strict reference creates an undeclared global (spec
// GLOSSARY "Undeclared global"), firing UndeclaredGlobalVariableCreated.
func PutValue(ctx *ExecutionContext, r *Reference, v Value, call CallFunc, onTypeError func(string)) *ExceptionValue {
	if r.IsUnresolvable() {
		if r.StrictReference {
			return NewReferenceError(r.ReferencedName+" is not defined", ctx)
		}
		return createUndeclaredGlobal(ctx, r.ReferencedName, v, call, onTypeError)
	}
	if !r.IsPropertyReference() {
		rec := r.Base.(EnvironmentRecord)
		return rec.SetMutableBinding(ctx, r.ReferencedName, v, r.StrictReference)
	}
	base := r.Base.(Value)
	if exc := CheckObjectCoercible(base, ctx); exc != nil {
		return exc
	}
	if obj, ok := base.(*ObjectValue); ok {
		SetProperty(ctx, obj, r.ReferencedName, v, r.StrictReference, call, onTypeError)
		return nil
	}
	// Primitive base: §8.7.2 step 2's PutValue-on-primitive branch is a
	// silent no-op (assignment to a property of a temporary boxed value).
	return nil
}

func createUndeclaredGlobal(ctx *ExecutionContext, name string, v Value, call CallFunc, onTypeError func(string)) *ExceptionValue {
	if ctx == nil || ctx.realm == nil || ctx.realm.Global == nil {
		return nil
	}
	if ctx.IsAmbiguous() && !IsUnknown(v) {
		v = Unknown
	}
	global := ctx.realm.Global
	global.Put(name, v, false, call, onTypeError)
	if emitter := ctx.Emitter(); emitter != nil {
		emitter.Emit(events.Event{
			Kind:  events.UndeclaredGlobalVariableCreated,
			Name:  name,
			RunID: ctx.realm.RunID.String(),
		})
	}
	return nil
}

func defaultPrototypes(ctx *ExecutionContext) *Prototypes {
	if ctx != nil && ctx.realm != nil {
		return ctx.realm.Protos
	}
	return &Prototypes{}
}
