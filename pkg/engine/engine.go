// Package engine is the public surface of the static-analysis engine: the
// thing a source parser hands an AST to, and the thing analyzer plugins
// observe. Everything else in this repository (pkg/ast, internal/runtime,
// internal/builtins, internal/evaluator) is wired together here into one
// value a driver can construct once per analysis run and discard after.
package engine

import (
	"fmt"
	"regexp"

	"github.com/cwbudde/jsstatic/internal/errors"
	"github.com/cwbudde/jsstatic/internal/events"
	"github.com/cwbudde/jsstatic/internal/evaluator"
	"github.com/cwbudde/jsstatic/internal/runtime"
	"github.com/cwbudde/jsstatic/pkg/ast"

	// builtins is imported for its side-effect-free Init/Registry surface;
	// re-exported here as Registry/FunctionInfo so a driver never needs to
	// import the internal package directly.
	"github.com/cwbudde/jsstatic/internal/builtins"
)

// Configuration is the engine-wide option set. It is a thin alias over
// runtime.Configuration — the CLI collaborator (cmd/jsac) owns loading it
// from YAML; the engine only ever consumes the resulting struct.
type Configuration = runtime.Configuration

// DefaultConfiguration returns the engine's recovery-mode, methods-invoked
// defaults (runtime.DefaultConfiguration).
func DefaultConfiguration() *Configuration {
	return runtime.DefaultConfiguration()
}

// Registry and FunctionInfo re-export the builtins package's native
// function catalog, used by cmd/jsac's builtins subcommand.
type Registry = builtins.Registry
type FunctionInfo = builtins.FunctionInfo

// Engine owns one Realm (the single-threaded cooperative process-wide
// state of one analysis run) and the evaluator that drives it. Construct
// one per analysis run; Run may be called more than once against the same
// Engine to analyze several files into one shared global object, the way
// a driver resolving a require/include graph would.
type Engine struct {
	realm    *runtime.Realm
	registry *Registry
	eval     *evaluator.Evaluator
}

// New builds an Engine with a freshly initialized global object and
// standard library (internal/builtins.Init) and an evaluator wired to
// drive it. A nil cfg uses DefaultConfiguration.
func New(cfg *Configuration) *Engine {
	realm, reg := builtins.Init(cfg)
	ev := evaluator.New(realm)
	return &Engine{realm: realm, registry: reg, eval: ev}
}

// Registry exposes the installed native-function catalog.
func (e *Engine) Registry() *Registry { return e.registry }

// RunID returns the correlation id stamped on this Engine's Realm and
// attached to every event it emits.
func (e *Engine) RunID() string { return e.realm.RunID.String() }

// Subscribe registers h to receive every plugin-observation event (§6's
// event table) fired for the lifetime of the Engine. It returns a token
// Unsubscribe accepts.
func (e *Engine) Subscribe(h events.Handler) int { return e.realm.Events.Subscribe(h) }

// Unsubscribe removes a handler previously registered with Subscribe.
func (e *Engine) Unsubscribe(token int) { e.realm.Events.Unsubscribe(token) }

// RegisterOverride installs a plugin override: when the engine is about to
// invoke a function whose fully-qualified name (e.g. "Titanium.API.debug")
// matches pattern, it calls callFunction instead of evaluating the body.
// Overrides are tried in registration order; the first match wins.
func (e *Engine) RegisterOverride(pattern string, callFunction func(this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue)) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("engine: compiling override pattern %q: %w", pattern, err)
	}
	e.realm.RegisterOverride(runtime.Override{
		Pattern:      pattern,
		MatchesName:  re.MatchString,
		CallFunction: callFunction,
	})
	return nil
}

// Run dispatches program's top-level node to the rule processor (§2's
// data-flow description) and returns a structured Report of every
// diagnostic, entered file, and (in exact mode) the first uncaught
// exception as a Go error. filename is attributed to every diagnostic and
// passed to EnterFile/skipped-mode blacklist lookups.
func (e *Engine) Run(program *ast.Program, filename string) (*Report, error) {
	report := &Report{RunID: e.RunID()}
	token := e.Subscribe(func(ev events.Event) {
		report.observe(ev)
	})
	defer e.Unsubscribe(token)

	exc := e.eval.Run(program, filename)
	report.EnteredFiles = e.realm.EnteredFiles()
	if exc == nil {
		return report, nil
	}

	diag := errors.Diagnostic{Kind: exc.Kind, Message: exc.Value.String(), StackTrace: exc.StackTrace, File: filename}
	if diag.Kind == "" {
		diag.Kind = "Error"
	}
	report.Errors = append(report.Errors, diag)
	return report, fmt.Errorf("%s", exc.Error())
}

// GlobalBinding reads the current value of a top-level variable or
// function binding from the engine's global object, for a driver that
// wants to inspect analysis results directly.
func (e *Engine) GlobalBinding(name string) (runtime.Value, bool) {
	if e.realm.Global == nil || !e.realm.Global.HasProperty(name) {
		return nil, false
	}
	return e.realm.Global.Get(name, e.callFunc()), true
}

// callFunc builds a runtime.CallFunc resolving its execution context from
// the realm's current stack frame, the same lazy-resolution trick
// internal/builtins' realmCall uses for call sites that outlive any one
// context (here: a driver calling GlobalBinding after Run has already
// popped its context).
func (e *Engine) callFunc() runtime.CallFunc {
	return func(fn *runtime.ObjectValue, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
		return runtime.Call(e.realm.CurrentContext(), fn, this, args, e.realm.Invoke)
	}
}

// GlobalNames lists every own property name currently defined on the
// global object, for a driver enumerating what a program declared.
func (e *Engine) GlobalNames() []string {
	if e.realm.Global == nil {
		return nil
	}
	return e.realm.Global.OwnKeys()
}

// SetGlobal installs value as a mutable, enumerable global binding before
// Run, the way a driver would seed host globals (e.g. a platform's
// `Titanium` namespace object, or an Unknown placeholder for an input the
// analysis can't see) into the environment a program runs against.
func (e *Engine) SetGlobal(name string, value runtime.Value) {
	e.realm.Global.DefineOwnProperty(name, runtime.DataDescriptor(value, true, true, true), true, nil)
}
