package runtime

import "testing"

func newTestGlobalRealm() (*Realm, *ExecutionContext, *ObjectValue) {
	realm := NewRealm(nil)
	global := NewObject(nil, "global", nil)
	globalEnv := NewObjectEnvironment(global, nil, true, noopCall, nil)
	ctx := NewGlobalContext(globalEnv, global)
	realm.PushContext(ctx)
	realm.Global = global
	return realm, ctx, global
}

func TestReferenceUnresolvableReadThrows(t *testing.T) {
	_, ctx, _ := newTestGlobalRealm()
	ref := ResolveIdentifier(ctx.LexicalEnvironment, "nowhere", false)
	if _, exc := GetValue(ctx, ref, noopCall, false); exc == nil {
		t.Error("reading an unresolvable reference should throw a ReferenceError")
	}
}

func TestPutValueOnUnresolvableNonStrictCreatesUndeclaredGlobal(t *testing.T) {
	_, ctx, global := newTestGlobalRealm()
	ref := ResolveIdentifier(ctx.LexicalEnvironment, "implicit", false)

	if exc := PutValue(ctx, ref, NumberValue(3), noopCall, nil); exc != nil {
		t.Fatalf("PutValue errored: %v", exc)
	}
	if !global.HasProperty("implicit") {
		t.Error("non-strict assignment to an unresolved name should create a global property")
	}
}

func TestPutValueOnUnresolvableStrictThrows(t *testing.T) {
	_, ctx, _ := newTestGlobalRealm()
	ref := ResolveIdentifier(ctx.LexicalEnvironment, "implicit", true)
	if exc := PutValue(ctx, ref, NumberValue(3), noopCall, nil); exc == nil {
		t.Error("strict assignment to an unresolved name should throw a ReferenceError")
	}
}

// Undeclared-global creation from inside an ambiguous block must degrade
// to Unknown: the implicit global is visible outside the block, and its
// value there cannot be known to be the assigned constant.
func TestCreateUndeclaredGlobalDegradesInAmbiguousMode(t *testing.T) {
	_, ctx, global := newTestGlobalRealm()
	ctx.EnterAmbiguous()

	ref := ResolveIdentifier(ctx.LexicalEnvironment, "implicit", false)
	if exc := PutValue(ctx, ref, NumberValue(3), noopCall, nil); exc != nil {
		t.Fatalf("PutValue errored: %v", exc)
	}

	got := global.Get("implicit", noopCall)
	if !IsUnknown(got) {
		t.Errorf("undeclared global created inside an ambiguous block should be Unknown, got %v", got)
	}
}

func TestPutValueOnPropertyReferenceWritesThroughObject(t *testing.T) {
	_, ctx, _ := newTestGlobalRealm()
	obj := NewObject(nil, "Object", ctx)
	obj.DefineOwnProperty("x", DataDescriptor(NumberValue(0), true, true, true), false, nil)

	ref := &Reference{Base: Value(obj), ReferencedName: "x", StrictReference: false}
	if exc := PutValue(ctx, ref, NumberValue(7), noopCall, nil); exc != nil {
		t.Fatalf("PutValue errored: %v", exc)
	}
	if got := obj.Get("x", noopCall); got != NumberValue(7) {
		t.Errorf("property write through PutValue = %v, want 7", got)
	}
}

func TestGetValueUnknownBasePropagates(t *testing.T) {
	_, ctx, _ := newTestGlobalRealm()
	ref := &Reference{Base: Value(Unknown), ReferencedName: "x", StrictReference: false}
	got, exc := GetValue(ctx, ref, noopCall, false)
	if exc != nil {
		t.Fatalf("GetValue errored: %v", exc)
	}
	if !IsUnknown(got) {
		t.Errorf("GetValue on an Unknown base should return Unknown, got %v", got)
	}
}
