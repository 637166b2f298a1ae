package engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"
)

// snapshotOutcome renders a deterministic summary of a run: the value of
// each global binding named in names, in the order given, plus the
// error/warning kinds and messages, omitting Report.RunID (a fresh uuid
// every invocation, so unsuitable for a snapshot).
func snapshotOutcome(eng *Engine, report *Report, names ...string) string {
	var b strings.Builder
	for _, name := range names {
		v, ok := eng.GlobalBinding(name)
		if !ok {
			fmt.Fprintf(&b, "%s: <unbound>\n", name)
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", name, describeValue(v))
	}
	fmt.Fprintf(&b, "errors: %d, warnings: %d\n", len(report.Errors), len(report.Warnings))
	for _, d := range report.Errors {
		fmt.Fprintf(&b, "  error[%s]: %s\n", d.Kind, d.Message)
	}
	for _, d := range report.Warnings {
		fmt.Fprintf(&b, "  warning[%s]: %s\n", d.Kind, d.Message)
	}
	return b.String()
}

// describeValue renders v for a snapshot, expanding Array objects element by
// element (ObjectValue.String only ever yields "[object Array]", which
// would hide exactly the per-index Unknown-tainting scenario 6 checks for).
func describeValue(v runtime.Value) string {
	obj, ok := v.(*runtime.ObjectValue)
	if !ok || obj.ClassName != "Array" {
		return v.String()
	}
	n := 0
	if lenDesc := obj.GetOwnProperty("length"); lenDesc != nil {
		if nv, ok := lenDesc.Value.(runtime.NumberValue); ok {
			n = int(nv)
		}
	}
	elems := make([]string, n)
	for i := range elems {
		desc := obj.GetOwnProperty(fmt.Sprint(i))
		if desc == nil {
			elems[i] = "<empty>"
			continue
		}
		elems[i] = desc.Value.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// [3,1,2].sort().join("-") and the Unknown-tainted variant
// [3,1,unknown].sort(), snapshotted together since both exercise
// Array.prototype.sort's comparator-under-ambiguity path.
func TestScenarioArraySortSnapshot(t *testing.T) {
	sortedJoin := &ast.CallExpression{
		Callee: &ast.MemberExpression{
			Object: &ast.CallExpression{
				Callee: &ast.MemberExpression{
					Object:   &ast.ArrayExpression{Elements: []ast.Node{numLit(3), numLit(1), numLit(2)}},
					Property: ident("sort"),
				},
			},
			Property: ident("join"),
		},
		Arguments: []ast.Node{&ast.Literal{Value: "-"}},
	}
	unknownSort := &ast.CallExpression{
		Callee: &ast.MemberExpression{
			Object:   &ast.ArrayExpression{Elements: []ast.Node{numLit(3), numLit(1), ident("unknownVal")}},
			Property: ident("sort"),
		},
	}
	prog := program(
		varDecl("plain", sortedJoin),
		varDecl("tainted", unknownSort),
	)

	eng := New(nil)
	eng.SetGlobal("unknownVal", runtime.UnknownBecause("test seed"))
	report, err := eng.Run(prog, "scenario6.js")
	if err != nil {
		t.Fatalf("Run errored: %v", err)
	}

	snaps.MatchSnapshot(t, snapshotOutcome(eng, report, "plain", "tainted"))
}

// A strict-mode assignment to a non-writable property (the strict-mode half
// of scenario 4) reports exactly one TypeError rather than silently
// succeeding or throwing past Run.
func TestScenarioStrictModeNonWritableWriteSnapshot(t *testing.T) {
	body := []ast.Node{
		&ast.ExpressionStatement{Expression: &ast.Literal{Value: "use strict"}},
		varDecl("o", &ast.ObjectExpression{}),
		&ast.ExpressionStatement{Expression: &ast.CallExpression{
			Callee: &ast.MemberExpression{Object: ident("Object"), Property: ident("defineProperty")},
			Arguments: []ast.Node{
				ident("o"),
				&ast.Literal{Value: "p"},
				&ast.ObjectExpression{Properties: []*ast.Property{
					{Key: ident("value"), Value: numLit(7), PropKind: "init"},
					{Key: ident("writable"), Value: &ast.Literal{Value: false}, PropKind: "init"},
				}},
			},
		}},
		&ast.ExpressionStatement{Expression: &ast.AssignmentExpression{
			Operator: "=",
			Left:     &ast.MemberExpression{Object: ident("o"), Property: ident("p")},
			Right:    numLit(8),
		}},
	}
	prog := &ast.Program{Body: body, SourceType: "script", Strict: true}

	eng := New(nil)
	report, err := eng.Run(prog, "strict-write.js")
	if err != nil {
		t.Fatalf("Run errored: %v", err)
	}

	snaps.MatchSnapshot(t, snapshotOutcome(eng, report, "o"))
}
