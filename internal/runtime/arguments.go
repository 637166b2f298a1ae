package runtime

// ParameterMap is a non-strict Arguments object's index-to-parameter-name
// table (ES5.1 §10.6 steps 11-13). Get and Set read and write the binding
// of the parameter mapped to an index, and Break removes an index. No
// ObjectValue property method calls Get or Set: reads and writes of
// arguments[i] use the Arguments object's own data properties, and a
// write to arguments[i] or to the named parameter is not reflected on the
// other side.
type ParameterMap struct {
	env    *LexicalEnvironment
	byIndex map[uint32]string // index -> parameter name, only while aliased
}

// NewParameterMap builds the alias table for a non-strict function
// invocation, mapping each formal parameter's index to its name in env.
// Per §10.6 step 12, a name repeated in the parameter list keeps only the
// last occurrence's mapping.
func NewParameterMap(env *LexicalEnvironment, params []string) *ParameterMap {
	pm := &ParameterMap{env: env, byIndex: map[uint32]string{}}
	mapped := map[string]bool{}
	for i := len(params) - 1; i >= 0; i-- {
		name := params[i]
		if mapped[name] {
			continue
		}
		mapped[name] = true
		pm.byIndex[uint32(i)] = name
	}
	return pm
}

// Get reads the current binding value of the parameter mapped to index;
// the bool is false when index is not mapped.
func (pm *ParameterMap) Get(ctx *ExecutionContext, index uint32, call CallFunc) (Value, bool) {
	name, ok := pm.byIndex[index]
	if !ok {
		return nil, false
	}
	v, exc := pm.env.Record.GetBindingValue(ctx, name, false, false)
	if exc != nil {
		return Undefined, true
	}
	return v, true
}

// Set writes v to the binding of the parameter mapped to index, reporting
// whether index was mapped.
func (pm *ParameterMap) Set(ctx *ExecutionContext, index uint32, v Value) bool {
	name, ok := pm.byIndex[index]
	if !ok {
		return false
	}
	pm.env.Record.SetMutableBinding(ctx, name, v, false)
	return true
}

// Break removes name's index from the table (ES5.1 §10.6 "[[DefineOwnProperty]]"
// map deletion rule). ObjectValue.afterDefine calls it for every define or
// write of a numeric property, so a plain assignment to arguments[i]
// removes the mapping as well as an Object.defineProperty call does.
func (pm *ParameterMap) Break(name string) {
	idx, ok := arrayIndex(name)
	if !ok {
		return
	}
	if pm.byIndex[idx] != "" {
		delete(pm.byIndex, idx)
	}
}

// NewArgumentsObject builds the Arguments object for a function invocation
// (ES5.1 §10.6). In strict mode, or when the function declares no formal
// parameters, ParamMap is left nil and numeric properties are plain data
// properties. A non-strict Arguments object gets a plain `callee` data
// property; a strict one gets the poisoned `callee`/`caller` accessors.
func NewArgumentsObject(ctx *ExecutionContext, proto *ObjectValue, params []string, args []Value, env *LexicalEnvironment, strict bool, callee *ObjectValue) *ObjectValue {
	obj := NewObject(proto, "Arguments", ctx)
	obj.defineDataProperty("length", NumberValue(float64(len(args))), true, false, true)
	for i, v := range args {
		obj.defineDataProperty(indexName(i), v, true, true, true)
	}
	if !strict {
		if len(params) > 0 {
			obj.ParamMap = NewParameterMap(env, params)
		}
		obj.defineDataProperty("callee", callee, true, false, true)
	} else {
		poisoned := poisonedThrowerProperty()
		obj.props["callee"] = poisoned
		obj.keys = append(obj.keys, "callee")
		obj.props["caller"] = poisoned
		obj.keys = append(obj.keys, "caller")
	}
	return obj
}

// ThrowTypeErrorAccessor is the shared [[ThrowTypeError]] function object
// (ES5.1 §13.2.3) installed by the builtins package during Realm
// bootstrap. It is a package-level var rather than a Realm field because
// NewArgumentsObject has no Realm in scope at the point it needs to wire a
// strict-mode Arguments object's poisoned callee/caller accessors — every
// Realm shares the same poisoning behavior, so one process-wide singleton
// (replaced per Init call) is correct.
var ThrowTypeErrorAccessor *ObjectValue

// poisonedThrowerProperty implements the strict-mode Arguments object's
// shared [[ThrowTypeError]] accessor: reading or writing `callee`/`caller`
// always throws TypeError. Before builtins.Init runs, ThrowTypeErrorAccessor
// is nil and the accessors fall back to Undefined (a harmless no-op used
// only by runtime-package unit tests that build Arguments objects without a
// full Realm).
func poisonedThrowerProperty() *PropertyDescriptor {
	var get, set Value = Undefined, Undefined
	if ThrowTypeErrorAccessor != nil {
		get, set = ThrowTypeErrorAccessor, ThrowTypeErrorAccessor
	}
	return &PropertyDescriptor{
		Get: get, Set: set,
		HasGet: true, HasSet: true,
		Enumerable: false, Configurable: false, HasEnumerable: true, HasConfigurable: true,
	}
}

func indexName(i int) string {
	return formatNumber(float64(i))
}
