// Package builtins installs the ES5.1 global object and standard library
// (Object, Function, Array, String, Number, Boolean, Date, RegExp, the Error
// hierarchy, Math, JSON, and the global functions) onto a fresh
// runtime.Realm. Every native function is a runtime.NativeFunc, registered
// as a Function object's Call.Native so the evaluator's Invoke dispatches to
// it exactly like a user-defined function.
package builtins

import (
	"sort"
	"sync"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// Category groups a built-in for the registry's bookkeeping and for
// cmd/jsac's builtins subcommand output; it has no effect on lookup, which is
// always through the prototype chain like any other JavaScript property.
type Category string

const (
	CategoryObject   Category = "object"
	CategoryFunction Category = "function"
	CategoryArray    Category = "array"
	CategoryString   Category = "string"
	CategoryNumber   Category = "number"
	CategoryBoolean  Category = "boolean"
	CategoryDate     Category = "date"
	CategoryRegExp   Category = "regexp"
	CategoryError    Category = "error"
	CategoryMath     Category = "math"
	CategoryJSON     Category = "json"
	CategoryGlobal   Category = "global"
)

// FunctionInfo records one installed native function for introspection.
type FunctionInfo struct {
	Name        string
	Category    Category
	Description string
}

// Registry tracks every native function installed during Init, independent
// of where in the prototype chain it actually lives. It is read-only once
// Init returns.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]*FunctionInfo
}

func newRegistry() *Registry {
	return &Registry{functions: map[string]*FunctionInfo{}}
}

// record adds a qualified name ("Array.prototype.push", "parseInt") to the
// registry; qualifiedName collisions overwrite, matching the last
// registration the way a real property redefinition would.
func (r *Registry) record(qualifiedName string, category Category, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[qualifiedName] = &FunctionInfo{Name: qualifiedName, Category: category, Description: description}
}

// Get retrieves a FunctionInfo by its qualified name.
func (r *Registry) Get(qualifiedName string) (*FunctionInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.functions[qualifiedName]
	return info, ok
}

// AllFunctions returns every registered FunctionInfo, sorted by name.
func (r *Registry) AllFunctions() []*FunctionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*FunctionInfo, 0, len(r.functions))
	for _, info := range r.functions {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ByCategory returns every registered FunctionInfo in category, sorted by
// name.
func (r *Registry) ByCategory(category Category) []*FunctionInfo {
	all := r.AllFunctions()
	out := all[:0]
	for _, info := range all {
		if info.Category == category {
			out = append(out, info)
		}
	}
	return out
}

// Count returns the number of registered functions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.functions)
}

// builder bundles the state Init's per-type install* helpers share: the
// realm being bootstrapped, its registry, and a reusable bootstrap
// execution context for NewObject/DefineOwnProperty calls made before any
// program context exists.
type builder struct {
	realm *runtime.Realm
	reg   *Registry
	ctx   *runtime.ExecutionContext
}

// method installs a native function as an own data property of owner
// (non-enumerable, writable, configurable — ES5.1's standard attributes for
// built-in methods), recording it under qualifiedName in the registry.
func (b *builder) method(owner *runtime.ObjectValue, name string, length int, qualifiedName string, category Category, description string, fn runtime.NativeFunc) {
	callable := &runtime.Callable{Name: name, Length: length, Native: fn}
	fnObj := runtime.NewFunctionObject(b.realm.Protos.Function, b.realm.Protos.Function, callable, b.ctx)
	owner.DefineOwnProperty(name, runtime.DataDescriptor(fnObj, true, false, true), true, nil)
	b.reg.record(qualifiedName, category, description)
}

// value installs a non-writable, non-enumerable, non-configurable data
// property — the attributes every built-in constant (Math.PI,
// Number.MAX_VALUE, ...) carries per ES5.1 §15.
func (b *builder) value(owner *runtime.ObjectValue, name string, v runtime.Value) {
	owner.DefineOwnProperty(name, runtime.DataDescriptor(v, false, false, false), true, nil)
}
