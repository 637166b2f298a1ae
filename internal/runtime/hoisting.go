package runtime

import "github.com/cwbudde/jsstatic/pkg/ast"

// CollectVarNames walks stmts per ES5.1 §12.1-§12.14's "VarDeclaredNames"
// definitions, recursing into every nested statement that can contain a
// var declaration (blocks, if/while/do-while/for/for-in, switch, try,
// labeled, with) but never into a nested function's body — a function's
// own var declarations belong to its own Declaration Binding
// Instantiation, not its enclosing scope's.
func CollectVarNames(stmts []ast.Node) []string {
	var names []string
	var visit func(ast.Node)
	visit = func(n ast.Node) {
		switch s := n.(type) {
		case nil:
			return
		case *ast.VariableDeclaration:
			for _, d := range s.Declarations {
				if d.ID != nil {
					names = append(names, d.ID.Name)
				}
			}
		case *ast.BlockStatement:
			for _, c := range s.Body {
				visit(c)
			}
		case *ast.IfStatement:
			visit(s.Consequent)
			visit(s.Alternate)
		case *ast.WhileStatement:
			visit(s.Body)
		case *ast.DoWhileStatement:
			visit(s.Body)
		case *ast.ForStatement:
			visit(s.Init)
			visit(s.Body)
		case *ast.ForInStatement:
			visit(s.Left)
			visit(s.Body)
		case *ast.WithStatement:
			visit(s.Body)
		case *ast.LabeledStatement:
			visit(s.Body)
		case *ast.SwitchStatement:
			for _, c := range s.Cases {
				for _, stmt := range c.Consequent {
					visit(stmt)
				}
			}
		case *ast.TryStatement:
			if s.Block != nil {
				visit(s.Block)
			}
			if s.Handler != nil && s.Handler.Body != nil {
				visit(s.Handler.Body)
			}
			if s.Finalizer != nil {
				visit(s.Finalizer)
			}
		}
	}
	for _, s := range stmts {
		visit(s)
	}
	return names
}

// CollectFunctionDeclarations returns the FunctionDeclaration nodes that
// are direct children of stmts (ES5.1 §10.5 step 5 only hoists functions
// declared at the top level of the code being instantiated, not ones
// nested inside a block/if/for — those execute as statements in source
// order instead).
func CollectFunctionDeclarations(stmts []ast.Node) []*ast.FunctionDeclaration {
	var out []*ast.FunctionDeclaration
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunctionDeclaration); ok {
			out = append(out, fd)
		}
	}
	return out
}

// InstantiateFunc builds the Function object for a hoisted
// FunctionDeclaration; supplied by the evaluator, which is the only
// package that can close over the declaration's body and the current
// scope.
type InstantiateFunc func(decl *ast.FunctionDeclaration) *ObjectValue

// DeclarationBindingInstantiation implements ES5.1 §10.5: binds formal
// parameters, hoists function declarations (overwriting any same-named
// binding, later declarations winning over earlier ones), creates the
// Arguments object for function code unless a binding named `arguments`
// already exists, then hoists remaining var names to `undefined` without
// overwriting an existing binding.
func DeclarationBindingInstantiation(
	ctx *ExecutionContext,
	env *LexicalEnvironment,
	isFunctionCode bool,
	paramNames []string,
	args []Value,
	body []ast.Node,
	instantiate InstantiateFunc,
	argsProto *ObjectValue,
	callee *ObjectValue,
	strict bool,
) {
	rec := env.Record

	if isFunctionCode {
		for i, name := range paramNames {
			var v Value = Undefined
			if i < len(args) {
				v = args[i]
			}
			if !rec.HasBinding(name) {
				rec.CreateMutableBinding(name, false)
			}
			rec.SetMutableBinding(ctx, name, v, false)
		}
	}

	for _, fd := range CollectFunctionDeclarations(body) {
		if fd.ID == nil {
			continue
		}
		fo := instantiate(fd)
		if !rec.HasBinding(fd.ID.Name) {
			rec.CreateMutableBinding(fd.ID.Name, !isFunctionCode && !strict)
		}
		rec.SetMutableBinding(ctx, fd.ID.Name, fo, strict)
	}

	if isFunctionCode && !rec.HasBinding("arguments") {
		argsObj := NewArgumentsObject(ctx, argsProto, paramNames, args, env, strict, callee)
		rec.CreateMutableBinding("arguments", false)
		rec.SetMutableBinding(ctx, "arguments", argsObj, false)
	}

	for _, name := range CollectVarNames(body) {
		if !rec.HasBinding(name) {
			rec.CreateMutableBinding(name, !isFunctionCode && !strict)
			rec.SetMutableBinding(ctx, name, Undefined, false)
		}
	}
}
