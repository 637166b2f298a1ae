package runtime

import (
	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/events"
	"github.com/google/uuid"
)

// Configuration is the engine-wide option set controlling exactness,
// method invocation policy, exception recovery, and resource bounds.
type Configuration struct {
	ExactMode               bool
	InvokeMethods           bool
	NativeExceptionRecovery bool
	MaxRecursionLimit       int
	MaxCycles               int
	SkippedModeBlacklist    map[string]bool
}

// DefaultConfiguration returns the engine's defaults: recovery mode,
// methods invoked, generous but finite bounds.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		InvokeMethods:           true,
		NativeExceptionRecovery: true,
		MaxRecursionLimit:       1024,
		MaxCycles:               1_000_000,
		SkippedModeBlacklist:    map[string]bool{},
	}
}

// Realm is the process-wide mutable state an engine instance owns: the context stack, the prototype table, the blacklisted-files set,
// the current-exception slot, the skipped-section id generator, and the
// try-catch nesting counter. Exactly one Realm exists per analysis run and
// it is discarded (not reused) between runs.
type Realm struct {
	Global    *ObjectValue
	GlobalEnv *LexicalEnvironment
	Protos    *Prototypes
	ErrorCtor map[string]*ObjectValue // kind name -> constructor Function, for `new TypeError(...)`

	Config *Configuration
	Events *events.Emitter
	RunID  uuid.UUID

	stack []*ExecutionContext

	// exception is the current active exception.
	exception *ExceptionValue

	tryCatchDepth int

	enteredFiles map[string]bool

	overrides []Override

	// Invoke is installed once by the evaluator during bootstrap and is
	// the single entry point the runtime and builtins packages use to
	// re-enter evaluation of a Callable's body — the adapter that lets
	// this package invoke user functions (accessor getters/setters,
	// Array.prototype.sort comparators, JSON replacers, ...) without
	// importing the evaluator package.
	Invoke Invoker
}

// Override is a plugin-registered {regex, callFunction} pair.
type Override struct {
	Pattern      string
	MatchesName  func(qualifiedName string) bool
	CallFunction func(this Value, args []Value) (Value, *ExceptionValue)
}

// NewRealm creates a Realm with a fresh run id and empty stacks/sets. The
// global object/environment are installed by the builtins package's
// Init, and are not yet present on a freshly-constructed Realm.
func NewRealm(cfg *Configuration) *Realm {
	if cfg == nil {
		cfg = DefaultConfiguration()
	}
	return &Realm{
		Config:       cfg,
		Events:       events.NewEmitter(),
		RunID:        uuid.New(),
		ErrorCtor:    map[string]*ObjectValue{},
		enteredFiles: map[string]bool{},
	}
}

// RegisterOverride adds a plugin override; first-match-wins in
// registration order.
func (r *Realm) RegisterOverride(o Override) { r.overrides = append(r.overrides, o) }

// ResolveOverride returns the first registered override whose pattern
// matches qualifiedName, or nil.
func (r *Realm) ResolveOverride(qualifiedName string) *Override {
	for i := range r.overrides {
		if r.overrides[i].MatchesName != nil && r.overrides[i].MatchesName(qualifiedName) {
			return &r.overrides[i]
		}
	}
	return nil
}

// EnterFile records filename as visited, firing enteredFile at most once
// per filename per run.
func (r *Realm) EnterFile(filename string) {
	if r.enteredFiles[filename] {
		return
	}
	r.enteredFiles[filename] = true
	r.Events.Emit(events.Event{Kind: events.EnteredFile, Filename: filename, RunID: r.RunID.String()})
}

// EnteredFiles returns every filename EnterFile has recorded, in no
// particular order.
func (r *Realm) EnteredFiles() []string {
	out := make([]string, 0, len(r.enteredFiles))
	for f := range r.enteredFiles {
		out = append(out, f)
	}
	return out
}

// IsBlacklisted reports whether filename is configured to skip
// skipped-mode processing.
func (r *Realm) IsBlacklisted(filename string) bool {
	return r.Config != nil && r.Config.SkippedModeBlacklist[filename]
}

// Exception returns the current active exception, or nil.
func (r *Realm) Exception() *ExceptionValue { return r.exception }

// SetException installs exc as the current active exception.
func (r *Realm) SetException(exc *ExceptionValue) { r.exception = exc }

// ClearException clears the current active exception slot.
func (r *Realm) ClearException() { r.exception = nil }

// InTryCatch reports whether evaluation is currently nested inside a
// try/catch, which disables native-exception recovery so the program can
// catch its own errors.
func (r *Realm) InTryCatch() bool { return r.tryCatchDepth > 0 }

// EnterTryCatch/ExitTryCatch bracket evaluation of a try statement's
// protected block.
func (r *Realm) EnterTryCatch() { r.tryCatchDepth++ }
func (r *Realm) ExitTryCatch()  { r.tryCatchDepth-- }

// PushContext pushes ctx onto the context stack.
func (r *Realm) PushContext(ctx *ExecutionContext) {
	ctx.realm = r
	r.stack = append(r.stack, ctx)
}

// PopContext pops the top of the context stack. Popping an empty stack is
// a fatal engine-consistency error
// reported through onFatal rather than panicking directly, so callers can
// decide how to surface it.
func (r *Realm) PopContext(onFatal func(string)) {
	if len(r.stack) == 0 {
		if onFatal != nil {
			onFatal(errors.FatalContextStackUnderflow)
		}
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// CurrentContext returns the top of the context stack, or nil if empty.
func (r *Realm) CurrentContext() *ExecutionContext {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// StackDepth reports how many contexts are on the stack (used against
// MaxRecursionLimit).
func (r *Realm) StackDepth() int { return len(r.stack) }

// CaptureStackTrace snapshots the current context stack, innermost first.
func (r *Realm) CaptureStackTrace() errors.StackTrace {
	trace := make(errors.StackTrace, 0, len(r.stack))
	for i := len(r.stack) - 1; i >= 0; i-- {
		ctx := r.stack[i]
		trace = append(trace, errors.StackFrame{FunctionName: ctx.FunctionName})
	}
	return trace
}

// ExecutionContext is one frame of the context stack: the active lexical/variable environments, `this`
// binding, strictness, and the ambiguous-block nesting counter.
type ExecutionContext struct {
	LexicalEnvironment  *LexicalEnvironment
	VariableEnvironment *LexicalEnvironment
	ThisBinding         Value
	Strict              bool
	IsFunctionContext   bool
	FunctionName        string

	ambiguousBlock int
	ambiguousGen   int
	skipStack      []string // skipped-section ids, innermost last

	realm *Realm
}

// NewGlobalContext builds the initial execution context for a program,
// with both environments pointing at the global lexical environment and
// `this` bound to the global object (ES5.1 §10.4.1).
func NewGlobalContext(globalEnv *LexicalEnvironment, global *ObjectValue) *ExecutionContext {
	return &ExecutionContext{
		LexicalEnvironment:  globalEnv,
		VariableEnvironment: globalEnv,
		ThisBinding:         global,
	}
}

// Realm returns the owning Realm, or nil if this context was constructed
// without one (e.g. in a unit test).
func (c *ExecutionContext) Realm() *Realm { return c.realm }

// Emitter returns the realm's event emitter, or nil.
func (c *ExecutionContext) Emitter() *events.Emitter {
	if c.realm == nil {
		return nil
	}
	return c.realm.Events
}

// AmbiguousDepth returns the ambiguous-block nesting counter.
func (c *ExecutionContext) AmbiguousDepth() int { return c.ambiguousBlock }

// IsAmbiguous reports whether this context is currently inside an
// ambiguous block.
func (c *ExecutionContext) IsAmbiguous() bool { return c.ambiguousBlock > 0 }

// EnterAmbiguous increments the ambiguous-block counter and bumps the
// generation id. Ambiguous regions (if/while/for bodies under an Unknown
// test) reuse the same *ExecutionContext as their enclosing function or
// program — no new context is pushed for them — so pointer identity alone
// cannot tell a binding created before this region from one created
// during it. The generation id gives each EnterAmbiguous call its own
// identity: a binding's or object's creation generation, captured once at
// birth, only matches the context's *current* generation when it was
// created during this exact ambiguous region.
func (c *ExecutionContext) EnterAmbiguous() {
	c.ambiguousBlock++
	c.ambiguousGen++
}

// ExitAmbiguous decrements the ambiguous-block counter.
func (c *ExecutionContext) ExitAmbiguous() {
	if c.ambiguousBlock > 0 {
		c.ambiguousBlock--
	}
}

// AmbiguousGeneration returns the id of the most recently entered
// ambiguous region on this context (0 if none has ever been entered).
func (c *ExecutionContext) AmbiguousGeneration() int { return c.ambiguousGen }

// CurrentSkippedSection returns the innermost active skipped-section id,
// or "" if not in skipped mode.
func (c *ExecutionContext) CurrentSkippedSection() string {
	if len(c.skipStack) == 0 {
		return ""
	}
	return c.skipStack[len(c.skipStack)-1]
}

// InSkippedMode reports whether this context is nested inside
// processInSkippedMode.
func (c *ExecutionContext) InSkippedMode() bool { return len(c.skipStack) > 0 }

func (c *ExecutionContext) pushSkipped(id string) { c.skipStack = append(c.skipStack, id) }
func (c *ExecutionContext) popSkipped() {
	if len(c.skipStack) > 0 {
		c.skipStack = c.skipStack[:len(c.skipStack)-1]
	}
}
