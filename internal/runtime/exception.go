package runtime

import (
	"fmt"

	"github.com/cwbudde/jsstatic/internal/errors"
)

// ExceptionValue is a thrown value in flight. Value is
// whatever was thrown — usually an Error-family *ObjectValue, but `throw`
// accepts any value. StackTrace is captured at the raise site. The host
// throw/recover mechanism the evaluator uses to unwind Go call frames
// carries only a sentinel (see evaluator.ThrowSignal); the ExceptionValue
// itself always lives in Realm.exception, the engine's single active
// exception slot.
type ExceptionValue struct {
	Value      Value
	StackTrace errors.StackTrace
	Kind       string // "" for a `throw` of a non-Error value
}

func (e *ExceptionValue) Error() string {
	if e == nil {
		return "<nil exception>"
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Value.String())
}

// newNativeError builds an ExceptionValue wrapping a fresh Error-family
// object of the given kind, message, and stack trace. protos/ctor come
// from the Realm (populated by the builtins package during Init); if the
// Realm hasn't finished bootstrapping yet (bootstrapping itself needs to
// report errors) a bare object carrying className==kind is used instead.
func newNativeError(kind, message string, ctx *ExecutionContext) *ExceptionValue {
	var errObj *ObjectValue
	var stack errors.StackTrace
	var realm *Realm
	if ctx != nil {
		realm = ctx.Realm()
	}
	if realm != nil {
		stack = realm.CaptureStackTrace()
	}
	if realm != nil && realm.Protos != nil && realm.Protos.Error != nil {
		proto := realm.Protos.Error
		if ctorProto, ok := realm.ErrorCtor[kind]; ok && ctorProto != nil {
			if p := ctorProto.Get("prototype", nil); p != nil {
				if po, ok := p.(*ObjectValue); ok {
					proto = po
				}
			}
		}
		errObj = NewObject(proto, kind, ctx)
	} else {
		errObj = NewObject(nil, kind, ctx)
	}
	errObj.defineDataProperty("message", StringValue(message), true, false, true)
	errObj.defineDataProperty("name", StringValue(kind), true, false, true)
	return &ExceptionValue{Value: errObj, StackTrace: stack, Kind: kind}
}

// NewTypeError, NewRangeError, NewReferenceError, NewSyntaxError, and
// NewURIError build the corresponding Error-family exception.
func NewTypeError(message string, ctx *ExecutionContext) *ExceptionValue {
	return newNativeError(errors.KindTypeError, message, ctx)
}

func NewRangeError(message string, ctx *ExecutionContext) *ExceptionValue {
	return newNativeError(errors.KindRangeError, message, ctx)
}

func NewReferenceError(message string, ctx *ExecutionContext) *ExceptionValue {
	return newNativeError(errors.KindReferenceError, message, ctx)
}

func NewSyntaxError(message string, ctx *ExecutionContext) *ExceptionValue {
	return newNativeError(errors.KindSyntaxError, message, ctx)
}

func NewURIError(message string, ctx *ExecutionContext) *ExceptionValue {
	return newNativeError(errors.KindURIError, message, ctx)
}

func NewEvalError(message string, ctx *ExecutionContext) *ExceptionValue {
	return newNativeError(errors.KindEvalError, message, ctx)
}

// FatalError represents an internal engine-consistency violation: these always panic, since they indicate an engine bug rather than
// an analyzed-program error and there is no sensible recovery value.
type FatalError struct {
	Message string
}

func (f *FatalError) Error() string { return f.Message }

// Fatal panics with a FatalError whose message is format applied to args.
func Fatal(format string, args ...any) {
	panic(&FatalError{Message: fmt.Sprintf(format, args...)})
}
