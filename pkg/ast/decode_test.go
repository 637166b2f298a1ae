package ast

import "testing"

func TestDecodeProgramStrictDirective(t *testing.T) {
	src := `{
		"type": "Program",
		"sourceType": "script",
		"body": [
			{"type": "ExpressionStatement", "expression": {"type": "Literal", "value": "use strict"}},
			{"type": "ExpressionStatement", "expression": {"type": "Literal", "value": 1}}
		]
	}`
	node, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	prog, ok := node.(*Program)
	if !ok {
		t.Fatalf("Decode returned %T, want *Program", node)
	}
	if !prog.Strict {
		t.Error("Program.Strict = false, want true for a leading \"use strict\" directive")
	}
}

func TestDecodeProgramNotStrictWithoutDirective(t *testing.T) {
	src := `{
		"type": "Program",
		"sourceType": "script",
		"body": [
			{"type": "ExpressionStatement", "expression": {"type": "Literal", "value": 1}},
			{"type": "ExpressionStatement", "expression": {"type": "Literal", "value": "use strict"}}
		]
	}`
	node, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	prog := node.(*Program)
	if prog.Strict {
		t.Error("Program.Strict = true, want false: \"use strict\" after the directive prologue has ended is just a string literal expression")
	}
}

func TestDecodeFunctionDeclarationStrictDirective(t *testing.T) {
	src := `{
		"type": "Program",
		"sourceType": "script",
		"body": [
			{
				"type": "FunctionDeclaration",
				"id": {"type": "Identifier", "name": "f"},
				"params": [],
				"body": {
					"type": "BlockStatement",
					"body": [
						{"type": "ExpressionStatement", "expression": {"type": "Literal", "value": "use strict"}}
					]
				}
			}
		]
	}`
	node, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	prog := node.(*Program)
	fn, ok := prog.Body[0].(*FunctionDeclaration)
	if !ok {
		t.Fatalf("Body[0] is %T, want *FunctionDeclaration", prog.Body[0])
	}
	if !fn.Strict {
		t.Error("FunctionDeclaration.Strict = false, want true for a leading \"use strict\" directive in its body")
	}
	if prog.Strict {
		t.Error("Program.Strict = true, want false: the directive belongs to the nested function, not the program")
	}
}
