package engine

import (
	"testing"

	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func numLit(v float64) *ast.Literal { return &ast.Literal{Value: v} }

func varDecl(name string, init ast.Node) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{
		DeclKind:     "var",
		Declarations: []*ast.VariableDeclarator{{ID: ident(name), Init: init}},
	}
}

func program(body ...ast.Node) *ast.Program {
	return &ast.Program{Body: body, SourceType: "script"}
}

// Scenario 1: var x = 1 + 2; -> global x holds Number(3).
func TestScenarioSimpleArithmetic(t *testing.T) {
	prog := program(
		varDecl("x", &ast.BinaryExpression{Operator: "+", Left: numLit(1), Right: numLit(2)}),
	)
	eng := New(nil)
	if _, err := eng.Run(prog, "scenario1.js"); err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	v, ok := eng.GlobalBinding("x")
	if !ok {
		t.Fatal("x was not bound on the global object")
	}
	if v != runtime.NumberValue(3) {
		t.Errorf("x = %v, want 3", v)
	}
}

// Scenario 2: function f(a){ return a+1; } var y = f(4); -> y holds Number(5).
func TestScenarioFunctionCall(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		ID:     ident("f"),
		Params: []*ast.Identifier{ident("a")},
		Body: &ast.BlockStatement{Body: []ast.Node{
			&ast.ReturnStatement{Argument: &ast.BinaryExpression{Operator: "+", Left: ident("a"), Right: numLit(1)}},
		}},
	}
	call := &ast.CallExpression{Callee: ident("f"), Arguments: []ast.Node{numLit(4)}}
	prog := program(fn, varDecl("y", call))

	eng := New(nil)
	if _, err := eng.Run(prog, "scenario2.js"); err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	v, ok := eng.GlobalBinding("y")
	if !ok {
		t.Fatal("y was not bound on the global object")
	}
	if v != runtime.NumberValue(5) {
		t.Errorf("y = %v, want 5", v)
	}
}

// Scenario 3: if (someUnknown) { a = 1; } else { a = 2; } var b = a; with
// someUnknown seeded as Unknown -> b holds Unknown, no error reported.
func TestScenarioAmbiguousBranchDegradesImplicitGlobal(t *testing.T) {
	ifStmt := &ast.IfStatement{
		Test: ident("someUnknown"),
		Consequent: &ast.BlockStatement{Body: []ast.Node{
			&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{Operator: "=", Left: ident("a"), Right: numLit(1)}},
		}},
		Alternate: &ast.BlockStatement{Body: []ast.Node{
			&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{Operator: "=", Left: ident("a"), Right: numLit(2)}},
		}},
	}
	prog := program(ifStmt, varDecl("b", ident("a")))

	eng := New(nil)
	eng.SetGlobal("someUnknown", runtime.UnknownBecause("test seed"))

	report, err := eng.Run(prog, "scenario3.js")
	if err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors, got %v", report.Errors)
	}
	b, ok := eng.GlobalBinding("b")
	if !ok {
		t.Fatal("b was not bound on the global object")
	}
	if !runtime.IsUnknown(b) {
		t.Errorf("b = %v, want Unknown", b)
	}
}

// Scenario 4: var o = {}; Object.defineProperty(o, "p", {value:7,
// writable:false}); o.p = 8; -> in non-strict mode o.p remains 7, no error.
func TestScenarioNonWritablePropertyIgnoredNonStrict(t *testing.T) {
	objInit := &ast.ObjectExpression{}
	defineCall := &ast.CallExpression{
		Callee: &ast.MemberExpression{Object: ident("Object"), Property: ident("defineProperty")},
		Arguments: []ast.Node{
			ident("o"),
			&ast.Literal{Value: "p"},
			&ast.ObjectExpression{Properties: []*ast.Property{
				{Key: ident("value"), Value: numLit(7), PropKind: "init"},
				{Key: ident("writable"), Value: &ast.Literal{Value: false}, PropKind: "init"},
			}},
		},
	}
	assign := &ast.AssignmentExpression{
		Operator: "=",
		Left:     &ast.MemberExpression{Object: ident("o"), Property: ident("p")},
		Right:    numLit(8),
	}
	prog := program(
		varDecl("o", objInit),
		&ast.ExpressionStatement{Expression: defineCall},
		&ast.ExpressionStatement{Expression: assign},
	)

	eng := New(nil)
	report, err := eng.Run(prog, "scenario4.js")
	if err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	if len(report.Errors) != 0 {
		t.Errorf("expected no errors in non-strict mode, got %v", report.Errors)
	}

	o, ok := eng.GlobalBinding("o")
	if !ok {
		t.Fatal("o was not bound on the global object")
	}
	obj, ok := o.(*runtime.ObjectValue)
	if !ok {
		t.Fatalf("o is not an object: %T", o)
	}
	if got := obj.GetOwnProperty("p").Value; got != runtime.NumberValue(7) {
		t.Errorf("o.p = %v, want 7 (write to a non-writable property should be a no-op)", got)
	}
}

// Scenario 5: try { null.x; } catch(e) { var k = e.name; } -> k holds
// String("TypeError").
func TestScenarioCatchBindsErrorName(t *testing.T) {
	tryStmt := &ast.TryStatement{
		Block: &ast.BlockStatement{Body: []ast.Node{
			&ast.ExpressionStatement{Expression: &ast.MemberExpression{
				Object:   &ast.Literal{Value: nil},
				Property: ident("x"),
			}},
		}},
		Handler: &ast.CatchClause{
			Param: ident("e"),
			Body: &ast.BlockStatement{Body: []ast.Node{
				varDecl("k", &ast.MemberExpression{Object: ident("e"), Property: ident("name")}),
			}},
		},
	}
	prog := program(tryStmt)

	eng := New(nil)
	if _, err := eng.Run(prog, "scenario5.js"); err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	k, ok := eng.GlobalBinding("k")
	if !ok {
		t.Fatal("k was not bound on the global object")
	}
	if k != runtime.StringValue("TypeError") {
		t.Errorf("k = %v, want \"TypeError\"", k)
	}
}

// function f(c){ var a=5; if(c){a=7;}else{a=8;} return a; } var r = f(unknownVal);
// -> r holds Unknown. a is a local var reassigned from inside an ambiguous
// if/else whose test is Unknown; the reassignment must degrade even though
// the if/else body reuses f's own execution context (no new context is
// pushed for an ambiguous block).
func TestScenarioAmbiguousReassignmentOfLocalVarDegrades(t *testing.T) {
	fn := &ast.FunctionDeclaration{
		ID:     ident("f"),
		Params: []*ast.Identifier{ident("c")},
		Body: &ast.BlockStatement{Body: []ast.Node{
			varDecl("a", numLit(5)),
			&ast.IfStatement{
				Test: ident("c"),
				Consequent: &ast.BlockStatement{Body: []ast.Node{
					&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{Operator: "=", Left: ident("a"), Right: numLit(7)}},
				}},
				Alternate: &ast.BlockStatement{Body: []ast.Node{
					&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{Operator: "=", Left: ident("a"), Right: numLit(8)}},
				}},
			},
			&ast.ReturnStatement{Argument: ident("a")},
		}},
	}
	call := &ast.CallExpression{Callee: ident("f"), Arguments: []ast.Node{ident("unknownVal")}}
	prog := program(fn, varDecl("r", call))

	eng := New(nil)
	eng.SetGlobal("unknownVal", runtime.UnknownBecause("test seed"))
	if _, err := eng.Run(prog, "ambiguous-local-var.js"); err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	r, ok := eng.GlobalBinding("r")
	if !ok {
		t.Fatal("r was not bound on the global object")
	}
	if !runtime.IsUnknown(r) {
		t.Errorf("r = %v, want Unknown", r)
	}
}

// var o = {p:1}; if (unknownVal) { o.p = 2; } var q = o.p; -> q holds
// Unknown. o was created before the ambiguous if, so the property write
// from inside it must degrade even though the if body reuses the
// enclosing program's own execution context.
func TestScenarioAmbiguousPropertyWriteOnOuterObjectDegrades(t *testing.T) {
	ifStmt := &ast.IfStatement{
		Test: ident("unknownVal"),
		Consequent: &ast.BlockStatement{Body: []ast.Node{
			&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
				Operator: "=",
				Left:     &ast.MemberExpression{Object: ident("o"), Property: ident("p")},
				Right:    numLit(2),
			}},
		}},
	}
	prog := program(
		varDecl("o", &ast.ObjectExpression{Properties: []*ast.Property{
			{Key: ident("p"), Value: numLit(1), PropKind: "init"},
		}}),
		ifStmt,
		varDecl("q", &ast.MemberExpression{Object: ident("o"), Property: ident("p")}),
	)

	eng := New(nil)
	eng.SetGlobal("unknownVal", runtime.UnknownBecause("test seed"))
	if _, err := eng.Run(prog, "ambiguous-outer-object.js"); err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	q, ok := eng.GlobalBinding("q")
	if !ok {
		t.Fatal("q was not bound on the global object")
	}
	if !runtime.IsUnknown(q) {
		t.Errorf("q = %v, want Unknown", q)
	}
}

// SetGlobal seeds a binding the program can observe without a var
// declaration, the way a driver would expose a host global.
func TestSetGlobalVisibleToProgram(t *testing.T) {
	prog := program(varDecl("seen", ident("hostValue")))
	eng := New(nil)
	eng.SetGlobal("hostValue", runtime.StringValue("injected"))

	if _, err := eng.Run(prog, "setglobal.js"); err != nil {
		t.Fatalf("Run errored: %v", err)
	}
	v, _ := eng.GlobalBinding("seen")
	if v != runtime.StringValue("injected") {
		t.Errorf("seen = %v, want \"injected\"", v)
	}
}
