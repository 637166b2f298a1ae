package runtime

import "testing"

func TestDeclarativeEnvironmentRoundTrip(t *testing.T) {
	env := NewDeclarativeEnvironmentRecord()
	env.CreateMutableBinding("x", true)
	if err := env.SetMutableBinding(nil, "x", NumberValue(5), false); err != nil {
		t.Fatalf("SetMutableBinding errored: %v", err)
	}
	got, err := env.GetBindingValue(nil, "x", false, false)
	if err != nil {
		t.Fatalf("GetBindingValue errored: %v", err)
	}
	if got != NumberValue(5) {
		t.Errorf("GetBindingValue(x) = %v, want 5", got)
	}
}

func TestDeclarativeEnvironmentImmutableBindingRejectsStrictWrite(t *testing.T) {
	env := NewDeclarativeEnvironmentRecord()
	env.CreateImmutableBinding("x")
	env.InitializeImmutableBinding("x", NumberValue(1))
	if exc := env.SetMutableBinding(nil, "x", NumberValue(2), true); exc == nil {
		t.Error("assigning a constant binding in strict mode should throw")
	}
}

func TestDeclarativeEnvironmentDeleteRespectsDeletable(t *testing.T) {
	env := NewDeclarativeEnvironmentRecord()
	env.CreateMutableBinding("x", false)
	if env.DeleteBinding("x") {
		t.Error("DeleteBinding should fail for a non-deletable binding")
	}
	env.CreateMutableBinding("y", true)
	if !env.DeleteBinding("y") {
		t.Error("DeleteBinding should succeed for a deletable binding")
	}
}

// Scenario from the literal ambiguous-mode example: a variable declared
// outside an ambiguous block, then written from inside it, reads back as
// Unknown.
func TestDeclarativeEnvironmentAmbiguousWriteDegradesOuterBinding(t *testing.T) {
	realm := NewRealm(nil)
	outerCtx := NewGlobalContext(nil, nil)
	realm.PushContext(outerCtx)

	env := NewDeclarativeEnvironmentRecord()
	env.CreateMutableBinding("a", true)
	env.SetMutableBinding(outerCtx, "a", NumberValue(0), false) // establishes creationContext = outerCtx

	innerCtx := NewGlobalContext(nil, nil)
	innerCtx.realm = realm
	innerCtx.EnterAmbiguous()

	env.SetMutableBinding(innerCtx, "a", NumberValue(1), false)

	got, _ := env.GetBindingValue(innerCtx, "a", false, false)
	if !IsUnknown(got) {
		t.Errorf("write to an outer binding from inside an ambiguous block should degrade to Unknown, got %v", got)
	}
}

func TestDeclarativeEnvironmentAmbiguousWriteStaysKnownForLocalBinding(t *testing.T) {
	ctx := NewGlobalContext(nil, nil)
	ctx.EnterAmbiguous()

	env := NewDeclarativeEnvironmentRecord()
	env.CreateMutableBinding("a", true)
	env.SetMutableBinding(ctx, "a", NumberValue(0), false) // binding born inside this same ambiguous context

	env.SetMutableBinding(ctx, "a", NumberValue(1), false)
	got, _ := env.GetBindingValue(ctx, "a", false, false)
	if got != NumberValue(1) {
		t.Errorf("write to a binding created inside its own ambiguous block should stay known, got %v", got)
	}
}

// The production evaluator never pushes a distinct *ExecutionContext for
// an ambiguous if/while/for body — evalIf et al. call EnterAmbiguous on
// the same context used for the whole enclosing function. This reproduces
// that configuration directly: the binding and the ambiguous write share
// one *ExecutionContext, distinguished only by generation id.
func TestDeclarativeEnvironmentAmbiguousWriteDegradesOuterBindingSameContext(t *testing.T) {
	ctx := NewGlobalContext(nil, nil)

	env := NewDeclarativeEnvironmentRecord()
	env.CreateMutableBinding("a", true)
	env.SetMutableBinding(ctx, "a", NumberValue(5), false) // born before any ambiguous region

	ctx.EnterAmbiguous()
	env.SetMutableBinding(ctx, "a", NumberValue(7), false)
	ctx.ExitAmbiguous()

	got, _ := env.GetBindingValue(ctx, "a", false, false)
	if !IsUnknown(got) {
		t.Errorf("reassigning an outer-scope binding from an ambiguous block reusing the same context should degrade to Unknown, got %v", got)
	}
}

func TestDeclarativeEnvironmentSkippedModeUsesAlternateSlot(t *testing.T) {
	ctx := NewGlobalContext(nil, nil)
	env := NewDeclarativeEnvironmentRecord()
	env.CreateMutableBinding("a", true)
	env.SetMutableBinding(ctx, "a", NumberValue(0), false)

	ctx.pushSkipped("section-1")
	env.SetMutableBinding(ctx, "a", NumberValue(99), false)

	if got, _ := env.GetBindingValue(ctx, "a", false, true); got != NumberValue(99) {
		t.Errorf("alternate-value read inside the skipped section = %v, want 99", got)
	}
	if got, _ := env.GetBindingValue(ctx, "a", false, false); got != NumberValue(0) {
		t.Errorf("primary-value read should be untouched by a skipped-mode write, got %v", got)
	}
}

// ObjectEnvironmentRecord has no "born inside this ambiguous block" escape
// hatch: its binding object always predates any ambiguous block, so every
// write while ambiguous degrades (unlike the declarative case above).
func TestObjectEnvironmentAmbiguousWriteAlwaysDegrades(t *testing.T) {
	realm := NewRealm(nil)
	ctx := NewGlobalContext(nil, nil)
	realm.PushContext(ctx)

	global := NewObject(nil, "global", ctx)
	global.DefineOwnProperty("a", DataDescriptor(NumberValue(0), true, true, true), false, nil)
	rec := NewObjectEnvironmentRecord(global, false, noopCall, nil)

	ctx.EnterAmbiguous()
	rec.SetMutableBinding(ctx, "a", NumberValue(1), false)

	got, _ := rec.GetBindingValue(ctx, "a", false, false)
	if !IsUnknown(got) {
		t.Errorf("SetMutableBinding on an object environment record inside an ambiguous block should degrade to Unknown, got %v", got)
	}
}

func TestResolveIdentifierWalksScopeChain(t *testing.T) {
	outer := NewDeclarativeEnvironment(nil)
	outer.Record.CreateMutableBinding("a", true)
	inner := NewDeclarativeEnvironment(outer)
	inner.Record.CreateMutableBinding("b", true)

	ref := ResolveIdentifier(inner, "a", false)
	if ref.IsUnresolvable() {
		t.Error("a should resolve through the outer environment")
	}
	if ref.Base != outer.Record {
		t.Error("a should resolve to the outer record, not the inner one")
	}

	unresolved := ResolveIdentifier(inner, "nowhere", false)
	if !unresolved.IsUnresolvable() {
		t.Error("an unbound name should resolve as unresolvable")
	}
}
