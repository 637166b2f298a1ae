package ast

import (
	"encoding/json"
	"fmt"
)

// wire is the shape every node takes on the wire: a "type" discriminator
// plus whatever else. Decode walks it recursively, rebuilding the typed
// node tree by using json.RawMessage to defer most fields until the
// concrete type is known (the same style ESTree-consuming libraries use,
// since "type" must be read before the rest can be decoded).
type wire map[string]json.RawMessage

// Decode parses a single ESTree-shaped JSON node (and its descendants) into
// the typed AST this package defines. It is the on-disk / over-the-wire
// counterpart to the parser's in-memory AST: a driver that shells out to a
// real parser (acorn, esprima, ...) and captures its JSON output can feed
// the result straight into Decode.
func Decode(data []byte) (Node, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return decodeWire(w)
}

func decodeWire(w wire) (Node, error) {
	if w == nil {
		return nil, nil
	}
	var kind string
	if raw, ok := w["type"]; ok {
		if err := json.Unmarshal(raw, &kind); err != nil {
			return nil, fmt.Errorf("ast: decoding type tag: %w", err)
		}
	}

	loc, err := decodeLoc(w)
	if err != nil {
		return nil, err
	}
	base := BaseNode{Location: loc}

	switch kind {
	case "Program":
		body, err := decodeNodeList(w["body"])
		if err != nil {
			return nil, err
		}
		n := &Program{BaseNode: base, Body: body}
		_ = json.Unmarshal(w["sourceType"], &n.SourceType)
		n.Strict = hasUseStrictDirective(body)
		return n, nil
	case "Identifier":
		n := &Identifier{BaseNode: base}
		if err := json.Unmarshal(w["name"], &n.Name); err != nil {
			return nil, err
		}
		return n, nil
	case "Literal":
		n := &Literal{BaseNode: base}
		if raw, ok := w["value"]; ok && len(raw) > 0 {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			n.Value = v
		}
		_ = json.Unmarshal(w["raw"], &n.Raw)
		if regex, ok := w["regex"]; ok && len(regex) > 0 {
			var re struct{ Pattern, Flags string }
			if err := json.Unmarshal(regex, &re); err != nil {
				return nil, err
			}
			n.Value = &RegExpLiteral{Pattern: re.Pattern, Flags: re.Flags}
		}
		return n, nil
	case "ThisExpression":
		return &ThisExpression{BaseNode: base}, nil
	case "ArrayExpression":
		elems, err := decodeNodeList(w["elements"])
		if err != nil {
			return nil, err
		}
		return &ArrayExpression{BaseNode: base, Elements: elems}, nil
	case "ObjectExpression":
		var rawProps []wire
		if err := json.Unmarshal(w["properties"], &rawProps); err != nil {
			return nil, err
		}
		props := make([]*Property, 0, len(rawProps))
		for _, rp := range rawProps {
			p, err := decodeWire(rp)
			if err != nil {
				return nil, err
			}
			prop, ok := p.(*Property)
			if !ok {
				return nil, fmt.Errorf("ast: expected Property, got %T", p)
			}
			props = append(props, prop)
		}
		return &ObjectExpression{BaseNode: base, Properties: props}, nil
	case "Property":
		key, err := decodeNode(w["key"])
		if err != nil {
			return nil, err
		}
		value, err := decodeNode(w["value"])
		if err != nil {
			return nil, err
		}
		n := &Property{BaseNode: base, Key: key, Value: value, PropKind: "init"}
		_ = json.Unmarshal(w["kind"], &n.PropKind)
		_ = json.Unmarshal(w["computed"], &n.Computed)
		return n, nil
	case "FunctionExpression", "FunctionDeclaration":
		id, err := decodeIdentifier(w["id"])
		if err != nil {
			return nil, err
		}
		params, err := decodeIdentifierList(w["params"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w["body"])
		if err != nil {
			return nil, err
		}
		var strict bool
		if body != nil {
			strict = hasUseStrictDirective(body.Body)
		}
		if kind == "FunctionExpression" {
			return &FunctionExpression{BaseNode: base, ID: id, Params: params, Body: body, Strict: strict}, nil
		}
		return &FunctionDeclaration{BaseNode: base, ID: id, Params: params, Body: body, Strict: strict}, nil
	case "SequenceExpression":
		exprs, err := decodeNodeList(w["expressions"])
		if err != nil {
			return nil, err
		}
		return &SequenceExpression{BaseNode: base, Expressions: exprs}, nil
	case "UnaryExpression":
		arg, err := decodeNode(w["argument"])
		if err != nil {
			return nil, err
		}
		n := &UnaryExpression{BaseNode: base, Argument: arg}
		_ = json.Unmarshal(w["operator"], &n.Operator)
		_ = json.Unmarshal(w["prefix"], &n.Prefix)
		return n, nil
	case "UpdateExpression":
		arg, err := decodeNode(w["argument"])
		if err != nil {
			return nil, err
		}
		n := &UpdateExpression{BaseNode: base, Argument: arg}
		_ = json.Unmarshal(w["operator"], &n.Operator)
		_ = json.Unmarshal(w["prefix"], &n.Prefix)
		return n, nil
	case "BinaryExpression":
		left, right, err := decodePair(w)
		if err != nil {
			return nil, err
		}
		n := &BinaryExpression{BaseNode: base, Left: left, Right: right}
		_ = json.Unmarshal(w["operator"], &n.Operator)
		return n, nil
	case "LogicalExpression":
		left, right, err := decodePair(w)
		if err != nil {
			return nil, err
		}
		n := &LogicalExpression{BaseNode: base, Left: left, Right: right}
		_ = json.Unmarshal(w["operator"], &n.Operator)
		return n, nil
	case "AssignmentExpression":
		left, right, err := decodePair(w)
		if err != nil {
			return nil, err
		}
		n := &AssignmentExpression{BaseNode: base, Left: left, Right: right}
		_ = json.Unmarshal(w["operator"], &n.Operator)
		return n, nil
	case "ConditionalExpression":
		test, err := decodeNode(w["test"])
		if err != nil {
			return nil, err
		}
		cons, err := decodeNode(w["consequent"])
		if err != nil {
			return nil, err
		}
		alt, err := decodeNode(w["alternate"])
		if err != nil {
			return nil, err
		}
		return &ConditionalExpression{BaseNode: base, Test: test, Consequent: cons, Alternate: alt}, nil
	case "NewExpression", "CallExpression":
		callee, err := decodeNode(w["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeNodeList(w["arguments"])
		if err != nil {
			return nil, err
		}
		if kind == "NewExpression" {
			return &NewExpression{BaseNode: base, Callee: callee, Arguments: args}, nil
		}
		return &CallExpression{BaseNode: base, Callee: callee, Arguments: args}, nil
	case "MemberExpression":
		obj, err := decodeNode(w["object"])
		if err != nil {
			return nil, err
		}
		prop, err := decodeNode(w["property"])
		if err != nil {
			return nil, err
		}
		n := &MemberExpression{BaseNode: base, Object: obj, Property: prop}
		_ = json.Unmarshal(w["computed"], &n.Computed)
		return n, nil
	case "BlockStatement", "Program_Block":
		body, err := decodeNodeList(w["body"])
		if err != nil {
			return nil, err
		}
		return &BlockStatement{BaseNode: base, Body: body}, nil
	case "ExpressionStatement":
		expr, err := decodeNode(w["expression"])
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{BaseNode: base, Expression: expr}, nil
	case "EmptyStatement":
		return &EmptyStatement{BaseNode: base}, nil
	case "DebuggerStatement":
		return &DebuggerStatement{BaseNode: base}, nil
	case "VariableDeclaration":
		var rawDecls []wire
		if err := json.Unmarshal(w["declarations"], &rawDecls); err != nil {
			return nil, err
		}
		decls := make([]*VariableDeclarator, 0, len(rawDecls))
		for _, rd := range rawDecls {
			d, err := decodeWire(rd)
			if err != nil {
				return nil, err
			}
			decl, ok := d.(*VariableDeclarator)
			if !ok {
				return nil, fmt.Errorf("ast: expected VariableDeclarator, got %T", d)
			}
			decls = append(decls, decl)
		}
		n := &VariableDeclaration{BaseNode: base, Declarations: decls, DeclKind: "var"}
		_ = json.Unmarshal(w["kind"], &n.DeclKind)
		return n, nil
	case "VariableDeclarator":
		id, err := decodeIdentifier(w["id"])
		if err != nil {
			return nil, err
		}
		init, err := decodeNode(w["init"])
		if err != nil {
			return nil, err
		}
		return &VariableDeclarator{BaseNode: base, ID: id, Init: init}, nil
	case "ReturnStatement":
		arg, err := decodeNode(w["argument"])
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{BaseNode: base, Argument: arg}, nil
	case "IfStatement":
		test, err := decodeNode(w["test"])
		if err != nil {
			return nil, err
		}
		cons, err := decodeNode(w["consequent"])
		if err != nil {
			return nil, err
		}
		alt, err := decodeNode(w["alternate"])
		if err != nil {
			return nil, err
		}
		return &IfStatement{BaseNode: base, Test: test, Consequent: cons, Alternate: alt}, nil
	case "LabeledStatement":
		label, err := decodeIdentifier(w["label"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(w["body"])
		if err != nil {
			return nil, err
		}
		return &LabeledStatement{BaseNode: base, Label: label, Body: body}, nil
	case "BreakStatement":
		label, err := decodeIdentifier(w["label"])
		if err != nil {
			return nil, err
		}
		return &BreakStatement{BaseNode: base, Label: label}, nil
	case "ContinueStatement":
		label, err := decodeIdentifier(w["label"])
		if err != nil {
			return nil, err
		}
		return &ContinueStatement{BaseNode: base, Label: label}, nil
	case "WithStatement":
		obj, err := decodeNode(w["object"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(w["body"])
		if err != nil {
			return nil, err
		}
		return &WithStatement{BaseNode: base, Object: obj, Body: body}, nil
	case "SwitchStatement":
		disc, err := decodeNode(w["discriminant"])
		if err != nil {
			return nil, err
		}
		var rawCases []wire
		if err := json.Unmarshal(w["cases"], &rawCases); err != nil {
			return nil, err
		}
		cases := make([]*SwitchCase, 0, len(rawCases))
		for _, rc := range rawCases {
			c, err := decodeWire(rc)
			if err != nil {
				return nil, err
			}
			sc, ok := c.(*SwitchCase)
			if !ok {
				return nil, fmt.Errorf("ast: expected SwitchCase, got %T", c)
			}
			cases = append(cases, sc)
		}
		return &SwitchStatement{BaseNode: base, Discriminant: disc, Cases: cases}, nil
	case "SwitchCase":
		test, err := decodeNode(w["test"])
		if err != nil {
			return nil, err
		}
		consequent, err := decodeNodeList(w["consequent"])
		if err != nil {
			return nil, err
		}
		return &SwitchCase{BaseNode: base, Test: test, Consequent: consequent}, nil
	case "ThrowStatement":
		arg, err := decodeNode(w["argument"])
		if err != nil {
			return nil, err
		}
		return &ThrowStatement{BaseNode: base, Argument: arg}, nil
	case "TryStatement":
		block, err := decodeBlock(w["block"])
		if err != nil {
			return nil, err
		}
		var handler *CatchClause
		if raw, ok := w["handler"]; ok && string(raw) != "null" && len(raw) > 0 {
			h, err := decodeWire(wireOf(raw))
			if err != nil {
				return nil, err
			}
			if h != nil {
				cc, ok := h.(*CatchClause)
				if !ok {
					return nil, fmt.Errorf("ast: expected CatchClause, got %T", h)
				}
				handler = cc
			}
		}
		finalizer, err := decodeBlock(w["finalizer"])
		if err != nil {
			return nil, err
		}
		return &TryStatement{BaseNode: base, Block: block, Handler: handler, Finalizer: finalizer}, nil
	case "CatchClause":
		param, err := decodeIdentifier(w["param"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w["body"])
		if err != nil {
			return nil, err
		}
		return &CatchClause{BaseNode: base, Param: param, Body: body}, nil
	case "WhileStatement":
		test, err := decodeNode(w["test"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(w["body"])
		if err != nil {
			return nil, err
		}
		return &WhileStatement{BaseNode: base, Test: test, Body: body}, nil
	case "DoWhileStatement":
		test, err := decodeNode(w["test"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(w["body"])
		if err != nil {
			return nil, err
		}
		return &DoWhileStatement{BaseNode: base, Test: test, Body: body}, nil
	case "ForStatement":
		init, err := decodeNode(w["init"])
		if err != nil {
			return nil, err
		}
		test, err := decodeNode(w["test"])
		if err != nil {
			return nil, err
		}
		update, err := decodeNode(w["update"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(w["body"])
		if err != nil {
			return nil, err
		}
		return &ForStatement{BaseNode: base, Init: init, Test: test, Update: update, Body: body}, nil
	case "ForInStatement":
		left, err := decodeNode(w["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeNode(w["right"])
		if err != nil {
			return nil, err
		}
		body, err := decodeNode(w["body"])
		if err != nil {
			return nil, err
		}
		return &ForInStatement{BaseNode: base, Left: left, Right: right, Body: body}, nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("ast: unsupported node type %q", kind)
	}
}

func wireOf(raw json.RawMessage) wire {
	var w wire
	_ = json.Unmarshal(raw, &w)
	return w
}

func decodeLoc(w wire) (*SourceLocation, error) {
	raw, ok := w["loc"]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var loc SourceLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func decodeNode(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeWire(wireOf(raw))
}

func decodeNodeList(raw json.RawMessage) ([]Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, err
	}
	out := make([]Node, len(rawItems))
	for i, item := range rawItems {
		n, err := decodeNode(item)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func decodeIdentifier(raw json.RawMessage) (*Identifier, error) {
	n, err := decodeNode(raw)
	if err != nil || n == nil {
		return nil, err
	}
	id, ok := n.(*Identifier)
	if !ok {
		return nil, fmt.Errorf("ast: expected Identifier, got %T", n)
	}
	return id, nil
}

func decodeIdentifierList(raw json.RawMessage) ([]*Identifier, error) {
	nodes, err := decodeNodeList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]*Identifier, 0, len(nodes))
	for _, n := range nodes {
		id, ok := n.(*Identifier)
		if !ok {
			return nil, fmt.Errorf("ast: expected Identifier in list, got %T", n)
		}
		out = append(out, id)
	}
	return out, nil
}

// hasUseStrictDirective implements ES5.1 §14.1's Directive Prologue: a
// function or program body is strict when its leading run of bare string-
// literal expression statements includes "use strict", checked before any
// other statement kind breaks the prologue.
func hasUseStrictDirective(body []Node) bool {
	for _, stmt := range body {
		es, ok := stmt.(*ExpressionStatement)
		if !ok {
			break
		}
		lit, ok := es.Expression.(*Literal)
		if !ok {
			break
		}
		s, ok := lit.Value.(string)
		if !ok {
			break
		}
		if s == "use strict" {
			return true
		}
	}
	return false
}

func decodeBlock(raw json.RawMessage) (*BlockStatement, error) {
	n, err := decodeNode(raw)
	if err != nil || n == nil {
		return nil, err
	}
	b, ok := n.(*BlockStatement)
	if !ok {
		return nil, fmt.Errorf("ast: expected BlockStatement, got %T", n)
	}
	return b, nil
}

func decodePair(w wire) (Node, Node, error) {
	left, err := decodeNode(w["left"])
	if err != nil {
		return nil, nil, err
	}
	right, err := decodeNode(w["right"])
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
