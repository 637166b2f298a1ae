package evaluator

import (
	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"
)

// evalStatementList runs stmts in order, stopping at the first abrupt
// completion and processing whatever remains in skipped mode (ES5.1 §4.6
// step 3: even statements the engine stops executing for real are still
// walked once, speculatively, so analyzer plugins see every syntactic API
// reference in the function).
func (e *Evaluator) evalStatementList(ctx *runtime.ExecutionContext, stmts []ast.Node) Completion {
	for i, s := range stmts {
		c := e.evalStatement(ctx, s)
		if c.IsAbrupt() {
			e.processInSkippedMode(ctx, stmts[i+1:])
			return c
		}
	}
	return normalCompletion()
}

func (e *Evaluator) evalStatement(ctx *runtime.ExecutionContext, n ast.Node) Completion {
	switch s := n.(type) {
	case nil:
		return normalCompletion()
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return normalCompletion()
	case *ast.FunctionDeclaration:
		// Already bound during Declaration Binding Instantiation.
		return normalCompletion()
	case *ast.BlockStatement:
		return e.evalStatementList(ctx, s.Body)
	case *ast.VariableDeclaration:
		return e.evalVariableDeclaration(ctx, s)
	case *ast.ExpressionStatement:
		_, exc := e.eval(ctx, s.Expression)
		if exc != nil {
			return throwCompletion(exc)
		}
		return normalCompletion()
	case *ast.ReturnStatement:
		if s.Argument == nil {
			return Completion{Kind: Return, Value: runtime.Undefined}
		}
		v, exc := e.eval(ctx, s.Argument)
		if exc != nil {
			return throwCompletion(exc)
		}
		return Completion{Kind: Return, Value: v}
	case *ast.IfStatement:
		return e.evalIf(ctx, s)
	case *ast.WhileStatement:
		return e.evalWhile(ctx, s)
	case *ast.DoWhileStatement:
		return e.evalDoWhile(ctx, s)
	case *ast.ForStatement:
		return e.evalFor(ctx, s)
	case *ast.ForInStatement:
		return e.evalForIn(ctx, s)
	case *ast.BreakStatement:
		label := ""
		if s.Label != nil {
			label = s.Label.Name
		}
		return Completion{Kind: Break, Label: label}
	case *ast.ContinueStatement:
		label := ""
		if s.Label != nil {
			label = s.Label.Name
		}
		return Completion{Kind: Continue, Label: label}
	case *ast.LabeledStatement:
		return e.evalLabeled(ctx, s)
	case *ast.SwitchStatement:
		return e.evalSwitch(ctx, s)
	case *ast.ThrowStatement:
		v, exc := e.eval(ctx, s.Argument)
		if exc != nil {
			return throwCompletion(exc)
		}
		return throwCompletion(&runtime.ExceptionValue{Value: v, StackTrace: e.realm.CaptureStackTrace()})
	case *ast.TryStatement:
		return e.evalTry(ctx, s)
	case *ast.WithStatement:
		return e.evalWith(ctx, s)
	default:
		runtime.Fatal("internal error: unhandled statement kind %q", n.Kind())
		return normalCompletion()
	}
}

func (e *Evaluator) evalVariableDeclaration(ctx *runtime.ExecutionContext, s *ast.VariableDeclaration) Completion {
	for _, d := range s.Declarations {
		if d.Init == nil {
			continue
		}
		v, exc := e.eval(ctx, d.Init)
		if exc != nil {
			return throwCompletion(exc)
		}
		ref := runtime.ResolveIdentifier(ctx.LexicalEnvironment, d.ID.Name, ctx.Strict)
		if exc := runtime.PutValue(ctx, ref, v, e.callFunc, e.typeErrorHook(ctx)); exc != nil {
			return throwCompletion(exc)
		}
	}
	return normalCompletion()
}

// evalIf implements ES5.1 §12.5, entering ambiguous mode and evaluating
// both arms when the test is Unknown instead of branching.
func (e *Evaluator) evalIf(ctx *runtime.ExecutionContext, s *ast.IfStatement) Completion {
	test, exc := e.eval(ctx, s.Test)
	if exc != nil {
		return throwCompletion(exc)
	}
	if runtime.IsUnknown(test) {
		ctx.EnterAmbiguous()
		e.evalStatementSwallowingThrow(ctx, s.Consequent)
		if s.Alternate != nil {
			e.evalStatementSwallowingThrow(ctx, s.Alternate)
		}
		ctx.ExitAmbiguous()
		return normalCompletion()
	}
	if bool(runtime.ToBoolean(test)) {
		return e.evalStatement(ctx, s.Consequent)
	}
	if s.Alternate != nil {
		return e.evalStatement(ctx, s.Alternate)
	}
	return normalCompletion()
}

func (e *Evaluator) evalLabeled(ctx *runtime.ExecutionContext, s *ast.LabeledStatement) Completion {
	label := ""
	if s.Label != nil {
		label = s.Label.Name
	}
	c := e.evalStatement(ctx, s.Body)
	if (c.Kind == Break || c.Kind == Continue) && c.Label == label {
		return normalCompletion()
	}
	return c
}

func (e *Evaluator) evalWith(ctx *runtime.ExecutionContext, s *ast.WithStatement) Completion {
	v, exc := e.eval(ctx, s.Object)
	if exc != nil {
		return throwCompletion(exc)
	}
	if runtime.IsUnknown(v) {
		return normalCompletion()
	}
	obj, exc := runtime.ToObject(v, e.realm.Protos, ctx)
	if exc != nil {
		return throwCompletion(exc)
	}
	objVal, ok := obj.(*runtime.ObjectValue)
	if !ok {
		return normalCompletion()
	}
	saved := ctx.LexicalEnvironment
	ctx.LexicalEnvironment = runtime.NewObjectEnvironment(objVal, saved, true, e.callFunc, e.typeErrorHook(ctx))
	defer func() { ctx.LexicalEnvironment = saved }()
	return e.evalStatement(ctx, s.Body)
}

func (e *Evaluator) evalSwitch(ctx *runtime.ExecutionContext, s *ast.SwitchStatement) Completion {
	disc, exc := e.eval(ctx, s.Discriminant)
	if exc != nil {
		return throwCompletion(exc)
	}

	matchedIndex := -1
	defaultIndex := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIndex = i
			continue
		}
		testVal, exc := e.eval(ctx, c.Test)
		if exc != nil {
			return throwCompletion(exc)
		}
		if runtime.IsUnknown(disc) || runtime.IsUnknown(testVal) {
			continue
		}
		if bool(runtime.StrictEquals(disc, testVal)) {
			matchedIndex = i
			break
		}
	}
	if matchedIndex == -1 {
		matchedIndex = defaultIndex
	}
	if matchedIndex == -1 {
		return normalCompletion()
	}
	for i := matchedIndex; i < len(s.Cases); i++ {
		c := e.evalStatementList(ctx, s.Cases[i].Consequent)
		if c.Kind == Break && c.Label == "" {
			return normalCompletion()
		}
		if c.IsAbrupt() {
			return c
		}
	}
	return normalCompletion()
}

func (e *Evaluator) evalTry(ctx *runtime.ExecutionContext, s *ast.TryStatement) Completion {
	ctx.Realm().EnterTryCatch()
	c := e.evalStatementList(ctx, s.Block.Body)
	ctx.Realm().ExitTryCatch()

	if c.Kind == Throw && s.Handler != nil {
		catchEnv := runtime.NewDeclarativeEnvironment(ctx.LexicalEnvironment)
		catchEnv.Record.CreateMutableBinding(s.Handler.Param.Name, false)
		catchEnv.Record.SetMutableBinding(ctx, s.Handler.Param.Name, c.Exception.Value, false)
		saved := ctx.LexicalEnvironment
		ctx.LexicalEnvironment = catchEnv
		c = e.evalStatementList(ctx, s.Handler.Body.Body)
		ctx.LexicalEnvironment = saved
	}

	if s.Finalizer != nil {
		fc := e.evalStatementList(ctx, s.Finalizer.Body)
		if fc.IsAbrupt() {
			return fc
		}
	}
	return c
}

// evalWhile implements ES5.1 §12.6.2, including the maxCycles bound and
// Unknown-test ambiguous handling.
func (e *Evaluator) evalWhile(ctx *runtime.ExecutionContext, s *ast.WhileStatement) Completion {
	for {
		test, exc := e.eval(ctx, s.Test)
		if exc != nil {
			return throwCompletion(exc)
		}
		if runtime.IsUnknown(test) || e.cycleBoundExceeded(s) {
			ctx.EnterAmbiguous()
			e.evalStatementSwallowingThrow(ctx, s.Body)
			ctx.ExitAmbiguous()
			return normalCompletion()
		}
		if !bool(runtime.ToBoolean(test)) {
			return normalCompletion()
		}
		if c, done := e.loopBody(ctx, s.Body, ""); done {
			return c
		}
	}
}

func (e *Evaluator) evalDoWhile(ctx *runtime.ExecutionContext, s *ast.DoWhileStatement) Completion {
	for {
		if c, done := e.loopBody(ctx, s.Body, ""); done {
			return c
		}
		test, exc := e.eval(ctx, s.Test)
		if exc != nil {
			return throwCompletion(exc)
		}
		if runtime.IsUnknown(test) || e.cycleBoundExceeded(s) {
			return normalCompletion()
		}
		if !bool(runtime.ToBoolean(test)) {
			return normalCompletion()
		}
	}
}

func (e *Evaluator) evalFor(ctx *runtime.ExecutionContext, s *ast.ForStatement) Completion {
	if s.Init != nil {
		if vd, ok := s.Init.(*ast.VariableDeclaration); ok {
			if c := e.evalVariableDeclaration(ctx, vd); c.IsAbrupt() {
				return c
			}
		} else if _, exc := e.eval(ctx, s.Init); exc != nil {
			return throwCompletion(exc)
		}
	}
	for {
		if s.Test != nil {
			test, exc := e.eval(ctx, s.Test)
			if exc != nil {
				return throwCompletion(exc)
			}
			if runtime.IsUnknown(test) || e.cycleBoundExceeded(s) {
				ctx.EnterAmbiguous()
				e.evalStatementSwallowingThrow(ctx, s.Body)
				ctx.ExitAmbiguous()
				return normalCompletion()
			}
			if !bool(runtime.ToBoolean(test)) {
				return normalCompletion()
			}
		}
		if c, done := e.loopBody(ctx, s.Body, ""); done {
			return c
		}
		if s.Update != nil {
			if _, exc := e.eval(ctx, s.Update); exc != nil {
				return throwCompletion(exc)
			}
		}
	}
}

// evalForIn implements ES5.1 §12.6.4, enumerating the target object's
// enumerable property names walking its prototype chain, each name visited
// once even if shadowed.
func (e *Evaluator) evalForIn(ctx *runtime.ExecutionContext, s *ast.ForInStatement) Completion {
	rightVal, exc := e.eval(ctx, s.Right)
	if exc != nil {
		return throwCompletion(exc)
	}
	if runtime.IsUnknown(rightVal) {
		return normalCompletion()
	}
	switch rightVal.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return normalCompletion()
	}
	obj, exc := runtime.ToObject(rightVal, e.realm.Protos, ctx)
	if exc != nil {
		return throwCompletion(exc)
	}
	objVal, ok := obj.(*runtime.ObjectValue)
	if !ok {
		return normalCompletion()
	}

	seen := map[string]bool{}
	var names []string
	for cur := objVal; cur != nil; cur = cur.Prototype {
		for _, k := range cur.OwnKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			if desc := cur.GetOwnProperty(k); desc != nil && desc.Enumerable {
				names = append(names, k)
			}
		}
	}

	for _, name := range names {
		var ref *runtime.Reference
		if vd, ok := s.Left.(*ast.VariableDeclaration); ok {
			id := vd.Declarations[0].ID
			if !ctx.LexicalEnvironment.Record.HasBinding(id.Name) {
				ctx.LexicalEnvironment.Record.CreateMutableBinding(id.Name, false)
			}
			ref = &runtime.Reference{Base: ctx.LexicalEnvironment.Record, ReferencedName: id.Name, StrictReference: ctx.Strict}
		} else {
			r, exc := e.evalRef(ctx, s.Left)
			if exc != nil {
				return throwCompletion(exc)
			}
			ref = r
		}
		if exc := runtime.PutValue(ctx, ref, runtime.StringValue(name), e.callFunc, e.typeErrorHook(ctx)); exc != nil {
			return throwCompletion(exc)
		}
		if c, done := e.loopBody(ctx, s.Body, ""); done {
			return c
		}
	}
	return normalCompletion()
}

// loopBody runs one loop-body iteration. A Normal completion, or a Continue
// that is unlabeled or targets label, yields (zero Completion, false) to
// keep looping; a Break that is unlabeled or targets label yields (normal
// completion, true) to end the loop; any other abrupt completion is
// propagated with done=true.
func (e *Evaluator) loopBody(ctx *runtime.ExecutionContext, body ast.Node, label string) (Completion, bool) {
	c := e.evalStatement(ctx, body)
	switch c.Kind {
	case Normal:
		return Completion{}, false
	case Continue:
		if c.Label == "" || c.Label == label {
			return Completion{}, false
		}
		return c, true
	case Break:
		if c.Label == "" || c.Label == label {
			return normalCompletion(), true
		}
		return c, true
	default:
		return c, true
	}
}

// cycleBoundExceeded implements the configured `maxCycles` bound: once a
// loop statement's cumulative iteration count exceeds it, its remainder is
// declared ambiguous rather than looped forever. The count is keyed by AST
// node and persists across re-entries of the same loop (e.g. a loop inside
// a function called many times accumulates toward one shared bound, rather
// than resetting every call), matching Evaluator.cycleCounts.
func (e *Evaluator) cycleBoundExceeded(node ast.Node) bool {
	e.cycleCounts[node]++
	limit := 1_000_000
	if e.realm.Config != nil && e.realm.Config.MaxCycles > 0 {
		limit = e.realm.Config.MaxCycles
	}
	return e.cycleCounts[node] > limit
}

func (e *Evaluator) typeErrorHook(ctx *runtime.ExecutionContext) func(string) {
	return func(msg string) {
		_, _ = e.report(ctx, runtime.NewTypeError(msg, ctx))
	}
}
