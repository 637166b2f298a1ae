// Package evaluator walks the AST pkg/ast describes, producing completion
// records instead of a bare result value so that throw/return/break/continue
// can unwind through nested statements the way ES5.1 §8.9 defines, without
// relying on Go panics for ordinary control flow. It is the only package
// that constructs runtime.Callable.Body values and the only one that
// supplies runtime.Realm.Invoke and runtime.InstantiateFunc (the
// builtins package builds its own runtime.CallFunc adapters on top of
// Realm.Invoke) — breaking what would otherwise be an import cycle
// between the runtime and evaluator packages.
package evaluator

import (
	"fmt"

	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/events"
	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"
)

// Evaluator owns one Realm and drives it over one or more ASTs. Filename
// tracks the source currently being processed, for EnterFile/blacklist
// lookups and skipped-mode diagnostics. cycleCounts is the maxCycles
// bound's per-loop-node iteration tally (cycleBoundExceeded in
// statements.go), shared across every invocation of the loop for the
// lifetime of the Evaluator.
type Evaluator struct {
	realm    *runtime.Realm
	Filename string

	cycleCounts map[ast.Node]int
}

// New wires ev's Invoke field into realm (breaking the runtime/evaluator
// import cycle) and returns the evaluator ready to run programs against it.
func New(realm *runtime.Realm) *Evaluator {
	ev := &Evaluator{realm: realm, cycleCounts: map[ast.Node]int{}}
	realm.Invoke = ev.invoke
	return ev
}

// Realm returns the owning Realm.
func (e *Evaluator) Realm() *runtime.Realm { return e.realm }

// Run evaluates program's top-level statement list as global code (ES5.1
// §10.4.1/§10.5 with isFunctionCode=false), returning the uncaught
// exception, if any. filename is recorded via Realm.EnterFile and used for
// skipped-mode blacklist lookups.
func (e *Evaluator) Run(program *ast.Program, filename string) *runtime.ExceptionValue {
	e.Filename = filename
	e.realm.EnterFile(filename)

	ctx := runtime.NewGlobalContext(e.realm.GlobalEnv, e.realm.Global)
	ctx.Strict = program.Strict
	e.realm.PushContext(ctx)
	defer e.realm.PopContext(e.onFatal)

	runtime.DeclarationBindingInstantiation(
		ctx, e.realm.GlobalEnv, false, nil, nil, program.Body,
		e.instantiateDeclaration(ctx, e.realm.GlobalEnv), nil, nil, false,
	)

	comp := e.evalStatementList(ctx, program.Body)
	if comp.Kind == Throw {
		return comp.Exception
	}
	return nil
}

func (e *Evaluator) onFatal(msg string) { runtime.Fatal("%s", msg) }

// callFunc adapts Evaluator.invoke to the runtime.CallFunc shape the value
// layer needs for accessor getters/setters and callback-style builtins. It
// runs the call in the realm's current top-of-stack context, matching
// ES5.1's rule that the calling context, not a fresh one, is what the
// callee's own Invoke call pushes its frame on top of.
func (e *Evaluator) callFunc(fn *runtime.ObjectValue, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	ctx := e.realm.CurrentContext()
	return runtime.Call(ctx, fn, this, args, e.invoke)
}

// invoke is runtime.Invoker: it dispatches a Callable to its Go
// implementation (Native) or re-enters evaluation of its AST body,
// building and pushing the function's execution context per ES5.1 §13.2.1.
func (e *Evaluator) invoke(callable *runtime.Callable, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if e.realm.Config != nil && e.realm.StackDepth() >= e.realm.Config.MaxRecursionLimit {
		return nil, runtime.NewRangeError(fmt.Sprintf(errors.MsgMaxRecursionExceeded, e.realm.Config.MaxRecursionLimit), e.realm.CurrentContext())
	}

	callerCtx := e.realm.CurrentContext()

	fctx := &runtime.ExecutionContext{
		ThisBinding:       this,
		Strict:            callable.Strict,
		IsFunctionContext: true,
		FunctionName:      callable.Name,
	}

	if callable.Native != nil {
		fctx.LexicalEnvironment = callable.Scope
		fctx.VariableEnvironment = callable.Scope
		e.realm.PushContext(fctx)
		defer e.realm.PopContext(e.onFatal)
		if callerCtx != nil && callerCtx.IsAmbiguous() {
			fctx.EnterAmbiguous()
		}
		return callable.Native(fctx, this, args)
	}

	body, ok := callable.Body.(*ast.BlockStatement)
	if !ok || body == nil {
		return runtime.Undefined, nil
	}

	funcEnv := runtime.NewDeclarativeEnvironment(callable.Scope)
	fctx.LexicalEnvironment = funcEnv
	fctx.VariableEnvironment = funcEnv
	e.realm.PushContext(fctx)
	defer e.realm.PopContext(e.onFatal)
	if callerCtx != nil && callerCtx.IsAmbiguous() {
		fctx.EnterAmbiguous()
	}

	protoObj := e.realm.Protos.Object
	runtime.DeclarationBindingInstantiation(
		fctx, funcEnv, true, callable.Params, args, body.Body,
		e.instantiateDeclaration(fctx, funcEnv), protoObj, callable.Owner, callable.Strict,
	)

	comp := e.evalStatementList(fctx, body.Body)
	switch comp.Kind {
	case Return:
		return comp.Value, nil
	case Throw:
		return nil, comp.Exception
	default:
		return runtime.Undefined, nil
	}
}

// processDeclinedCall implements the "engine declines to invoke" half of
// ES5.1 §4.6: yield Unknown immediately, but still process the function
// body in skipped mode so downstream analyzers can observe syntactic API
// references inside it.
func (e *Evaluator) processDeclinedCall(ctx *runtime.ExecutionContext, fn *runtime.ObjectValue) {
	if fn == nil || fn.Call == nil || fn.Call.Body == nil {
		return
	}
	body, ok := fn.Call.Body.(*ast.BlockStatement)
	if !ok {
		return
	}
	e.processInSkippedMode(ctx, body.Body)
}

// processInSkippedMode evaluates stmts under a fresh skipped-section id:
// writes divert to alternate-value slots and any exception raised is
// swallowed (skipped-mode semantics: speculative evaluation for side
// effects only, never for a result).
func (e *Evaluator) processInSkippedMode(ctx *runtime.ExecutionContext, stmts []ast.Node) {
	if ctx == nil || len(stmts) == 0 {
		return
	}
	if _, ok := runtime.EnterSkipped(ctx, e.Filename); !ok {
		return
	}
	defer runtime.ExitSkipped(ctx)
	for _, s := range stmts {
		e.evalStatementSwallowingThrow(ctx, s)
	}
}

// evalStatementSwallowingThrow runs one statement for its side effects only
// (skipped- and ambiguous-mode speculative passes), discarding any
// completion including Throw — the engine doesn't know whether this code
// path really executes, so a thrown exception here must not propagate.
func (e *Evaluator) evalStatementSwallowingThrow(ctx *runtime.ExecutionContext, n ast.Node) {
	defer func() { _ = recover() }()
	e.evalStatement(ctx, n)
}

// report implements the recoverable-exception policy: in exact mode or
// inside a try/catch, every recoverable exception is promoted to a real
// throw; otherwise it is reported as a diagnostic event and Unknown
// substitutes for the failed expression's result.
func (e *Evaluator) report(ctx *runtime.ExecutionContext, exc *runtime.ExceptionValue) (runtime.Value, *runtime.ExceptionValue) {
	if exc == nil {
		return runtime.Unknown, nil
	}
	exact := e.realm.Config != nil && e.realm.Config.ExactMode
	recovery := e.realm.Config == nil || e.realm.Config.NativeExceptionRecovery
	if exact || e.realm.InTryCatch() || !recovery {
		return nil, exc
	}
	if emitter := ctx.Emitter(); emitter != nil {
		emitter.Emit(events.Event{
			Kind:       events.ErrorReported,
			ErrorKind:  exc.Kind,
			Message:    exc.Value.String(),
			StackTrace: exc.StackTrace,
			RunID:      e.realm.RunID.String(),
		})
	}
	return runtime.Unknown, nil
}

// instantiateDeclaration returns a runtime.InstantiateFunc closing over ctx
// and env so DeclarationBindingInstantiation can build Function objects for
// hoisted declarations without the runtime package knowing about ast.Node.
func (e *Evaluator) instantiateDeclaration(ctx *runtime.ExecutionContext, env *runtime.LexicalEnvironment) runtime.InstantiateFunc {
	return func(decl *ast.FunctionDeclaration) *runtime.ObjectValue {
		return e.makeFunctionObject(ctx, env, decl.ID.Name, decl.Params, decl.Body, decl.Strict || ctx.Strict)
	}
}

// makeFunctionObject builds the Function object for a function declaration
// or expression: formal parameter names, captured scope, and the AST body
// kept opaque in Callable.Body (ES5.1 §13.2).
func (e *Evaluator) makeFunctionObject(ctx *runtime.ExecutionContext, scope *runtime.LexicalEnvironment, name string, params []*ast.Identifier, body *ast.BlockStatement, strict bool) *runtime.ObjectValue {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	callable := &runtime.Callable{
		Name:          name,
		Params:        names,
		Length:        len(names),
		Strict:        strict,
		Scope:         scope,
		Body:          body,
		IsConstructor: true,
	}
	return runtime.NewFunctionObject(e.realm.Protos.Function, e.realm.Protos.Object, callable, ctx)
}

// newArray implements the object-creation half of ES5.1 §11.1.4 (Array
// Initialiser): a fresh Array instance with its length already set.
func (e *Evaluator) newArray(ctx *runtime.ExecutionContext, length int) *runtime.ObjectValue {
	arr := runtime.NewObject(e.realm.Protos.Array, "Array", ctx)
	arr.DefineOwnProperty("length", runtime.DataDescriptor(runtime.NumberValue(float64(length)), true, false, false), true, e.typeErrorHook(ctx))
	return arr
}

// newRegExp implements ES5.1 §7.8.5: a RegExp literal evaluates to a fresh
// object carrying the pattern/flags, distinct from every other evaluation of
// the same literal.
func (e *Evaluator) newRegExp(ctx *runtime.ExecutionContext, pattern, flags string) runtime.Value {
	re := runtime.NewObject(e.realm.Protos.RegExp, "RegExp", ctx)
	data := &runtime.RegExpData{Source: pattern, Flags: flags}
	for _, f := range flags {
		switch f {
		case 'g':
			data.Global = true
		case 'i':
			data.IgnoreCase = true
		case 'm':
			data.Multiline = true
		}
	}
	re.RegExp = data
	hook := e.typeErrorHook(ctx)
	re.DefineOwnProperty("source", runtime.DataDescriptor(runtime.StringValue(pattern), false, false, false), true, hook)
	re.DefineOwnProperty("global", runtime.DataDescriptor(runtime.Bool(data.Global), false, false, false), true, hook)
	re.DefineOwnProperty("ignoreCase", runtime.DataDescriptor(runtime.Bool(data.IgnoreCase), false, false, false), true, hook)
	re.DefineOwnProperty("multiline", runtime.DataDescriptor(runtime.Bool(data.Multiline), false, false, false), true, hook)
	re.DefineOwnProperty("lastIndex", runtime.DataDescriptor(runtime.NumberValue(0), true, false, false), true, hook)
	return re
}
