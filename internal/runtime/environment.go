package runtime

// binding is one declarative-environment-record slot.
type binding struct {
	value          Value
	alternateValues map[string]Value // keyed by skipped-section id (GLOSSARY "Alternate values")
	isDeletable    bool
	isMutable      bool
	isInitialized  bool

	// creationContext is the execution context active when this binding's
	// value was first set — its creation closure,
	// used to decide whether an ambiguous-block write is local.
	creationContext *ExecutionContext

	// creationAmbiguousGen is creationContext's AmbiguousGeneration() at
	// that same moment. Ambiguous regions reuse creationContext's pointer
	// for their whole enclosing function, so pointer equality alone can't
	// distinguish "created before this ambiguous region" from "created
	// during it" — the generation can.
	creationAmbiguousGen int
}

// EnvironmentRecord is implemented by both record kinds.
type EnvironmentRecord interface {
	HasBinding(name string) bool
	CreateMutableBinding(name string, deletable bool)
	SetMutableBinding(ctx *ExecutionContext, name string, v Value, strict bool) *ExceptionValue
	GetBindingValue(ctx *ExecutionContext, name string, strict bool, alternate bool) (Value, *ExceptionValue)
	DeleteBinding(name string) bool
	ImplicitThisValue() Value
	CreateImmutableBinding(name string)
	InitializeImmutableBinding(name string, v Value)
}

// ---------------------------------------------------------------------
// Declarative environment record
// ---------------------------------------------------------------------

// DeclarativeEnvironmentRecord implements ES5.1 §10.2.1.1.
type DeclarativeEnvironmentRecord struct {
	bindings map[string]*binding
}

// NewDeclarativeEnvironmentRecord returns an empty declarative record.
func NewDeclarativeEnvironmentRecord() *DeclarativeEnvironmentRecord {
	return &DeclarativeEnvironmentRecord{bindings: map[string]*binding{}}
}

func (d *DeclarativeEnvironmentRecord) HasBinding(name string) bool {
	_, ok := d.bindings[name]
	return ok
}

func (d *DeclarativeEnvironmentRecord) CreateMutableBinding(name string, deletable bool) {
	if _, exists := d.bindings[name]; exists {
		Fatal("internal error: duplicate declarative binding %q", name)
	}
	d.bindings[name] = &binding{value: Undefined, isMutable: true, isInitialized: true, isDeletable: deletable}
}

func (d *DeclarativeEnvironmentRecord) CreateImmutableBinding(name string) {
	if _, exists := d.bindings[name]; exists {
		Fatal("internal error: duplicate declarative binding %q", name)
	}
	d.bindings[name] = &binding{isMutable: false, isInitialized: false}
}

func (d *DeclarativeEnvironmentRecord) InitializeImmutableBinding(name string, v Value) {
	b, ok := d.bindings[name]
	if !ok || b.isInitialized {
		Fatal("internal error: cannot initialize binding %q", name)
	}
	b.value = v
	b.isInitialized = true
}

// SetMutableBinding implements ES5.1 §10.2.1.1.4, extended so that:
// in skipped mode the write goes to the alternate-values slot for the
// current skipped-section id; otherwise Unknown is stored instead of v when
// v is Unknown, or when the context is ambiguous and the binding is not
// local to the currently active ambiguous region (resolveAmbiguousWrite).
func (d *DeclarativeEnvironmentRecord) SetMutableBinding(ctx *ExecutionContext, name string, v Value, strict bool) *ExceptionValue {
	b, ok := d.bindings[name]
	if !ok {
		Fatal("internal error: SetMutableBinding on unbound name %q", name)
	}
	if ctx != nil && ctx.InSkippedMode() {
		if b.alternateValues == nil {
			b.alternateValues = map[string]Value{}
		}
		b.alternateValues[ctx.CurrentSkippedSection()] = v
		return nil
	}
	if !b.isMutable {
		if strict {
			return NewTypeError("assignment to constant variable", ctx)
		}
		return nil
	}
	b.value = resolveAmbiguousWrite(ctx, b, v)
	if b.creationContext == nil {
		b.creationContext = ctx
		if ctx != nil {
			b.creationAmbiguousGen = ctx.AmbiguousGeneration()
		}
	}
	return nil
}

// resolveAmbiguousWrite implements the write-side half of ambiguous-mode
// handling: an outer-scope binding mutated from inside an ambiguous block
// degrades to Unknown, while a binding whose creation closure is itself
// inside the *currently active* ambiguous region may be mutated normally
// (it is "local"). Ambiguous regions share their enclosing context's
// pointer, so "currently active" is decided by generation id, not by
// comparing *ExecutionContext pointers: a binding born before this region
// was entered carries a stale creationAmbiguousGen that can never equal
// the context's generation once EnterAmbiguous has bumped it.
func resolveAmbiguousWrite(ctx *ExecutionContext, b *binding, v Value) Value {
	if ctx == nil {
		return v
	}
	if IsUnknown(v) {
		return Unknown
	}
	if !ctx.IsAmbiguous() {
		return v
	}
	if b.creationContext == ctx && b.creationAmbiguousGen == ctx.AmbiguousGeneration() {
		return v
	}
	return Unknown
}

// GetBindingValue implements ES5.1 §10.2.1.1.6. alternate requests the
// skipped-mode alternate-values view instead of the primary slot.
func (d *DeclarativeEnvironmentRecord) GetBindingValue(ctx *ExecutionContext, name string, strict bool, alternate bool) (Value, *ExceptionValue) {
	b, ok := d.bindings[name]
	if !ok {
		Fatal("internal error: GetBindingValue on unbound name %q", name)
	}
	if alternate && b.alternateValues != nil {
		if ctx != nil {
			if v, ok := b.alternateValues[ctx.CurrentSkippedSection()]; ok {
				return v, nil
			}
		}
	}
	if !b.isInitialized {
		if strict {
			return nil, NewReferenceError(name+" is not defined", ctx)
		}
		return Undefined, nil
	}
	return b.value, nil
}

func (d *DeclarativeEnvironmentRecord) DeleteBinding(name string) bool {
	b, ok := d.bindings[name]
	if !ok {
		return true
	}
	if !b.isDeletable {
		return false
	}
	delete(d.bindings, name)
	return true
}

func (d *DeclarativeEnvironmentRecord) ImplicitThisValue() Value { return Undefined }

// ---------------------------------------------------------------------
// Object environment record
// ---------------------------------------------------------------------

// ObjectEnvironmentRecord implements ES5.1 §10.2.1.2, delegating every
// operation to a binding object's property machinery.
type ObjectEnvironmentRecord struct {
	BindingObject *ObjectValue
	ProvideThis   bool
	call          CallFunc
	onTypeError   func(string)
}

// NewObjectEnvironmentRecord wraps obj, with provideThis selecting whether
// ImplicitThisValue returns obj (used for `with` statements).
func NewObjectEnvironmentRecord(obj *ObjectValue, provideThis bool, call CallFunc, onTypeError func(string)) *ObjectEnvironmentRecord {
	return &ObjectEnvironmentRecord{BindingObject: obj, ProvideThis: provideThis, call: call, onTypeError: onTypeError}
}

func (o *ObjectEnvironmentRecord) HasBinding(name string) bool {
	return o.BindingObject.HasProperty(name)
}

func (o *ObjectEnvironmentRecord) CreateMutableBinding(name string, deletable bool) {
	o.BindingObject.DefineOwnProperty(name, DataDescriptor(Undefined, true, true, deletable), true, o.onTypeError)
}

func (o *ObjectEnvironmentRecord) CreateImmutableBinding(name string) {
	Fatal("internal error: object environment records do not support immutable bindings")
}

func (o *ObjectEnvironmentRecord) InitializeImmutableBinding(name string, v Value) {
	Fatal("internal error: object environment records do not support immutable bindings")
}

func (o *ObjectEnvironmentRecord) SetMutableBinding(ctx *ExecutionContext, name string, v Value, strict bool) *ExceptionValue {
	// An object environment record's binding object (the global object, or
	// a `with` target) predates any block that might be ambiguous, so
	// unlike a declarative binding there is no "created inside this
	// ambiguous block, therefore local" exception — every write degrades,
	// mirroring resolveAmbiguousWrite's outer-scope case.
	if ctx != nil && ctx.IsAmbiguous() && !IsUnknown(v) {
		v = Unknown
	}
	o.BindingObject.Put(name, v, strict, o.call, o.onTypeError)
	return nil
}

func (o *ObjectEnvironmentRecord) GetBindingValue(ctx *ExecutionContext, name string, strict bool, alternate bool) (Value, *ExceptionValue) {
	if !o.BindingObject.HasProperty(name) {
		if strict {
			return nil, NewReferenceError(name+" is not defined", ctx)
		}
		return Undefined, nil
	}
	return o.BindingObject.Get(name, o.call), nil
}

func (o *ObjectEnvironmentRecord) DeleteBinding(name string) bool {
	return o.BindingObject.Delete(name, false, o.onTypeError)
}

func (o *ObjectEnvironmentRecord) ImplicitThisValue() Value {
	if o.ProvideThis {
		return o.BindingObject
	}
	return Undefined
}

// ---------------------------------------------------------------------
// Lexical environment
// ---------------------------------------------------------------------

// LexicalEnvironment pairs an environment record with an optional outer
// environment, forming the scope chain.
type LexicalEnvironment struct {
	Record EnvironmentRecord
	Outer  *LexicalEnvironment
}

// NewDeclarativeEnvironment implements ES5.1 §10.2.2.2.
func NewDeclarativeEnvironment(outer *LexicalEnvironment) *LexicalEnvironment {
	return &LexicalEnvironment{Record: NewDeclarativeEnvironmentRecord(), Outer: outer}
}

// NewObjectEnvironment implements ES5.1 §10.2.2.3.
func NewObjectEnvironment(obj *ObjectValue, outer *LexicalEnvironment, provideThis bool, call CallFunc, onTypeError func(string)) *LexicalEnvironment {
	return &LexicalEnvironment{Record: NewObjectEnvironmentRecord(obj, provideThis, call, onTypeError), Outer: outer}
}

// ResolveIdentifier implements ES5.1 §10.2.2.1: walk the scope chain from
// innermost outward, returning a Reference with the environment record
// that owns name as base, or an unresolvable Reference (Undefined base) on
// exhaustion.
func ResolveIdentifier(env *LexicalEnvironment, name string, strict bool) *Reference {
	for e := env; e != nil; e = e.Outer {
		if e.Record.HasBinding(name) {
			return &Reference{Base: e.Record, ReferencedName: name, StrictReference: strict}
		}
	}
	return &Reference{Base: Undefined, ReferencedName: name, StrictReference: strict}
}
