package runtime

import "testing"

func TestNewObjectPlainDataProperty(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(1), true, true, true), false, nil)
	if got := o.Get("x", noopCall); got != NumberValue(1) {
		t.Errorf("Get(x) = %v, want 1", got)
	}
	if !o.HasProperty("x") {
		t.Error("HasProperty(x) should be true after define")
	}
}

func TestPutRespectsNonWritable(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(1), false, true, true), false, nil)
	o.Put("x", NumberValue(2), false, noopCall, nil)
	if got := o.Get("x", noopCall); got != NumberValue(1) {
		t.Errorf("Put on non-writable property mutated value: got %v, want 1", got)
	}
}

func TestPutThrowsOnNonWritableInStrictMode(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(1), false, true, true), false, nil)
	threw := false
	o.Put("x", NumberValue(2), true, noopCall, func(string) { threw = true })
	if !threw {
		t.Error("Put in strict mode on non-writable property should report a TypeError")
	}
}

func TestDeleteRespectsConfigurable(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(1), true, true, false), false, nil)
	if o.Delete("x", false, nil) {
		t.Error("Delete of a non-configurable property should fail")
	}
	if !o.HasProperty("x") {
		t.Error("non-configurable property should survive a failed delete")
	}
}

func TestDeleteRemovesConfigurableProperty(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(1), true, true, true), false, nil)
	if !o.Delete("x", false, nil) {
		t.Error("Delete of a configurable property should succeed")
	}
	if o.HasProperty("x") {
		t.Error("property should be gone after a successful delete")
	}
}

func TestPrototypeChainLookup(t *testing.T) {
	proto := NewObject(nil, "Object", nil)
	proto.DefineOwnProperty("inherited", DataDescriptor(StringValue("from proto"), true, true, true), false, nil)
	child := NewObject(proto, "Object", nil)
	if got := child.Get("inherited", noopCall); got != StringValue("from proto") {
		t.Errorf("Get should find inherited property, got %v", got)
	}
	if child.GetOwnProperty("inherited") != nil {
		t.Error("inherited property must not appear as an own property")
	}
}

func TestAccessorProperty(t *testing.T) {
	realm := NewRealm(nil)
	ctx := NewGlobalContext(nil, nil)
	realm.PushContext(ctx)

	o := NewObject(nil, "Object", ctx)
	backing := NumberValue(0)
	getter := NewObject(nil, "Function", ctx)
	getter.Call = &Callable{
		Native: func(innerCtx *ExecutionContext, this Value, args []Value) (Value, *ExceptionValue) {
			return backing, nil
		},
	}
	o.DefineOwnProperty("x", AccessorDescriptor(getter, Undefined, true, true), false, nil)

	call := func(fn *ObjectValue, this Value, args []Value) (Value, *ExceptionValue) {
		return fn.Call.Native(ctx, this, args)
	}
	if got := o.Get("x", call); got != NumberValue(0) {
		t.Errorf("Get through accessor = %v, want 0", got)
	}
}

func TestOwnKeysPreservesInsertionOrder(t *testing.T) {
	o := NewObject(nil, "Object", nil)
	o.DefineOwnProperty("b", DataDescriptor(NumberValue(1), true, true, true), false, nil)
	o.DefineOwnProperty("a", DataDescriptor(NumberValue(2), true, true, true), false, nil)
	o.DefineOwnProperty("c", DataDescriptor(NumberValue(3), true, true, true), false, nil)
	keys := o.OwnKeys()
	want := []string{"b", "a", "c"}
	if len(keys) != len(want) {
		t.Fatalf("OwnKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("OwnKeys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestSetPropertyDegradesToUnknownInAmbiguousMode(t *testing.T) {
	realm := NewRealm(nil)
	outerCtx := NewGlobalContext(nil, nil)
	realm.PushContext(outerCtx)

	o := NewObject(nil, "Object", outerCtx)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(0), true, true, true), false, nil)

	innerCtx := NewGlobalContext(nil, nil)
	innerCtx.realm = realm
	innerCtx.EnterAmbiguous()

	SetProperty(innerCtx, o, "x", NumberValue(1), false, noopCall, nil)

	got := o.Get("x", noopCall)
	if !IsUnknown(got) {
		t.Errorf("write to an outer-scope object from inside an ambiguous block should degrade to Unknown, got %v", got)
	}
}

func TestSetPropertyStaysKnownForLocalObject(t *testing.T) {
	realm := NewRealm(nil)
	ctx := NewGlobalContext(nil, nil)
	realm.PushContext(ctx)
	ctx.EnterAmbiguous()

	o := NewObject(nil, "Object", ctx) // created inside the same ambiguous context: local
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(0), true, true, true), false, nil)

	SetProperty(ctx, o, "x", NumberValue(1), false, noopCall, nil)

	if got := o.Get("x", noopCall); got != NumberValue(1) {
		t.Errorf("write to a locally-created object inside its own ambiguous block should stay known, got %v", got)
	}
}

// As with the declarative-binding case, the evaluator reuses one
// *ExecutionContext across an ambiguous block's entry/exit; this
// reproduces that directly instead of faking "outer" vs. "ambiguous" with
// two separate context objects.
func TestSetPropertyDegradesToUnknownInAmbiguousModeSameContext(t *testing.T) {
	ctx := NewGlobalContext(nil, nil)

	o := NewObject(nil, "Object", ctx) // born before any ambiguous region
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(0), true, true, true), false, nil)

	ctx.EnterAmbiguous()
	SetProperty(ctx, o, "x", NumberValue(1), false, noopCall, nil)
	ctx.ExitAmbiguous()

	got := o.Get("x", noopCall)
	if !IsUnknown(got) {
		t.Errorf("write to an outer-scope object from an ambiguous block reusing the same context should degrade to Unknown, got %v", got)
	}
}

func TestSetPropertySkippedModeUsesAlternateSlot(t *testing.T) {
	ctx := NewGlobalContext(nil, nil)
	o := NewObject(nil, "Object", ctx)
	o.DefineOwnProperty("x", DataDescriptor(NumberValue(0), true, true, true), false, nil)

	ctx.pushSkipped("section-1")
	SetProperty(ctx, o, "x", NumberValue(42), false, noopCall, nil)

	// the primary slot must be untouched
	if got := o.GetOwnProperty("x").Value; got != NumberValue(0) {
		t.Errorf("skipped-mode write leaked into primary slot: got %v, want 0", got)
	}
	if got := GetProperty(ctx, o, "x", noopCall); got != NumberValue(42) {
		t.Errorf("GetProperty in the same skipped section should see the alternate value, got %v", got)
	}

	ctx.popSkipped()
	if got := GetProperty(ctx, o, "x", noopCall); got != NumberValue(0) {
		t.Errorf("GetProperty outside the skipped section should see the primary value, got %v", got)
	}
}
