package runtime

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/jsstatic/internal/events"
)

// ObjectValue is the runtime representation of every ES5.1 object: plain
// objects, arrays, functions, wrapped primitives, Date/RegExp/Arguments/
// Error instances, and the global object itself. Rather than modelling
// each as a distinct Go type linked by embedding (which a class-hierarchy
// design would via "StringType ← ObjectType" inheritance chains), behavior that
// differs by kind is dispatched on ClassName inside the handful of methods
// ES5.1 §8.12 specifies, matching the "Unknown as a peer variant, not a
// subtype" design direction for the rest of the value model.
type ObjectValue struct {
	ClassName  string
	Prototype  *ObjectValue
	Extensible bool

	props map[string]*PropertyDescriptor
	keys  []string // insertion order, for for-in and Object.keys determinism

	// Primitive holds the wrapped primitive for Boolean/Number/String
	// objects created via `new Boolean(...)` etc; nil otherwise.
	Primitive Value

	// Call is non-nil for Function objects. See function.go.
	Call *Callable

	// ParamMap holds the non-strict Arguments object's index-to-parameter
	// table (a distinct object subtype, modelled here as an optional field
	// rather than a Go subtype to keep Value a flat sum type). Non-nil
	// only for non-strict Arguments objects of functions with formal
	// parameters; see ParameterMap for what it does and does not alias.
	ParamMap *ParameterMap

	// Date is populated for Date objects (internal [[DateValue]]);
	// RegExp for RegExp objects.
	Date   *DateData
	RegExp *RegExpData

	// creationContext is the execution context active when this object
	// was created — its "creation closure", used to decide whether a later mutation from
	// inside an ambiguous block is local or must degrade to Unknown.
	creationContext *ExecutionContext

	// creationAmbiguousGen is creationContext.AmbiguousGeneration() at the
	// same moment, since ambiguous regions reuse their enclosing context's
	// pointer — see resolveAmbiguousWrite's comment in environment.go.
	creationAmbiguousGen int

	emitter *events.Emitter

	// alternates holds skipped-mode secondary property values; see
	// object_alternates.go.
	alternates altValues
}

// DateData is the internal state of a Date object.
type DateData struct {
	// TimeValue is milliseconds since the epoch, or NaN for an invalid
	// date. It is Unknown-tainted by leaving Known=false when any input
	// to the Date computation was Unknown.
	TimeValue float64
	Known     bool
}

// RegExpData is the internal state of a RegExp object.
type RegExpData struct {
	Source     string
	Flags      string
	Global     bool
	IgnoreCase bool
	Multiline  bool
	LastIndex  float64
}

// NewObject creates a bare object with the given prototype (nil for a
// null-prototype object) and className, extensible by default.
func NewObject(proto *ObjectValue, className string, ctx *ExecutionContext) *ObjectValue {
	o := &ObjectValue{
		ClassName:  className,
		Prototype:  proto,
		Extensible: true,
		props:      make(map[string]*PropertyDescriptor),
	}
	if ctx != nil {
		o.creationContext = ctx
		o.creationAmbiguousGen = ctx.AmbiguousGeneration()
		o.emitter = ctx.Emitter()
	}
	return o
}

func (o *ObjectValue) Type() ValueType { return TypeObject }

func (o *ObjectValue) String() string {
	return fmt.Sprintf("[object %s]", o.ClassName)
}

// IsCallable reports whether the object has a [[Call]] internal method.
func (o *ObjectValue) IsCallable() bool { return o.Call != nil }

// CreationContext returns the execution context this object was born in.
func (o *ObjectValue) CreationContext() *ExecutionContext { return o.creationContext }

func (o *ObjectValue) emit(ev events.Event) {
	if o.emitter != nil {
		o.emitter.Emit(ev)
	}
}

// ---------------------------------------------------------------------
// §8.12.1 [[GetOwnProperty]]
// ---------------------------------------------------------------------

// GetOwnProperty returns the descriptor stored directly on o, applying the
// String and Arguments index overrides. It does not walk the prototype
// chain and does not fire events.
func (o *ObjectValue) GetOwnProperty(name string) *PropertyDescriptor {
	if o.ClassName == "String" && o.Primitive != nil {
		if desc := stringIndexOwnProperty(o, name); desc != nil {
			return desc
		}
	}
	if desc, ok := o.props[name]; ok {
		return desc
	}
	return nil
}

// ---------------------------------------------------------------------
// §8.12.2 [[GetProperty]]
// ---------------------------------------------------------------------

// GetProperty walks the prototype chain starting at o, returning the first
// descriptor found. Traversal terminates on a self-referential prototype
// link.
func (o *ObjectValue) GetProperty(name string) *PropertyDescriptor {
	for cur := o; cur != nil; {
		if desc := cur.GetOwnProperty(name); desc != nil {
			return desc
		}
		next := cur.Prototype
		if next == cur {
			return nil
		}
		cur = next
	}
	return nil
}

// ---------------------------------------------------------------------
// §8.12.3 [[Get]]
// ---------------------------------------------------------------------

// Get implements [[Get]]: search own properties then the
// prototype chain; invoke an accessor's getter with o as `this`; fire
// propertyReferenced. call invokes a Function value as a DWScript-style
// callback (supplied by the evaluator to break the import cycle — see
// builtins' Context interface for the analogous pattern).
func (o *ObjectValue) Get(name string, call CallFunc) Value {
	desc := o.GetProperty(name)
	o.emit(events.Event{Kind: events.PropertyReferenced, Object: o, Name: name, Descriptor: desc})
	if desc == nil {
		return Undefined
	}
	if IsDataDescriptor(desc) {
		return desc.Value
	}
	// Accessor descriptor.
	if desc.Get == nil || desc.Get == Value(Undefined) {
		return Undefined
	}
	getter, ok := desc.Get.(*ObjectValue)
	if !ok || !getter.IsCallable() || call == nil {
		return Undefined
	}
	v, _ := call(getter, o, nil)
	return v
}

// CallFunc is supplied by the evaluator so the value layer can invoke
// accessor getters/setters and callbacks (Array.prototype.sort comparators,
// JSON reviver/replacer, ...) without importing the evaluator package.
// The returned *ExceptionValue is non-nil only for a throw; callers generally
// propagate it upward unchanged.
type CallFunc func(fn *ObjectValue, this Value, args []Value) (Value, *ExceptionValue)

// ---------------------------------------------------------------------
// §8.12.4 [[CanPut]]
// ---------------------------------------------------------------------

// CanPutResult is CanPut's result. CanPut itself returns only CanPutNo or
// CanPutYes: a Prototype link is an *ObjectValue or nil and is never
// Unknown. Put also has a CanPutUnknown case, which stores Unknown.
type CanPutResult uint8

const (
	CanPutNo CanPutResult = iota
	CanPutYes
	CanPutUnknown
)

// CanPut implements [[CanPut]] (ES5.1 §8.12.4).
func (o *ObjectValue) CanPut(name string) CanPutResult {
	desc := o.GetOwnProperty(name)
	if desc != nil {
		if IsAccessorDescriptor(desc) {
			if desc.Set == nil {
				return CanPutNo
			}
			if _, ok := desc.Set.(*ObjectValue); ok {
				return CanPutYes
			}
			return CanPutNo
		}
		if desc.HasWritable {
			if desc.Writable {
				return CanPutYes
			}
			return CanPutNo
		}
	}
	if o.Prototype == nil {
		return boolToCanPut(o.Extensible)
	}
	inherited := o.Prototype.GetProperty(name)
	if inherited == nil {
		return boolToCanPut(o.Extensible)
	}
	if IsAccessorDescriptor(inherited) {
		if inherited.Set == nil {
			return CanPutNo
		}
		if _, ok := inherited.Set.(*ObjectValue); ok {
			return CanPutYes
		}
		return CanPutNo
	}
	if !o.Extensible {
		return CanPutNo
	}
	if inherited.HasWritable && !inherited.Writable {
		return CanPutNo
	}
	return CanPutYes
}

func boolToCanPut(b bool) CanPutResult {
	if b {
		return CanPutYes
	}
	return CanPutNo
}

// ---------------------------------------------------------------------
// §8.12.5 [[Put]]
// ---------------------------------------------------------------------

// Put implements [[Put]]. throwFlag corresponds to the
// current code's strictness. onTypeError is invoked instead of a Go panic
// so callers decide recoverable-vs-fatal handling.
func (o *ObjectValue) Put(name string, value Value, throwFlag bool, call CallFunc, onTypeError func(string)) {
	switch o.CanPut(name) {
	case CanPutNo:
		if throwFlag && onTypeError != nil {
			onTypeError(fmt.Sprintf("cannot assign to read only property %q", name))
		}
		return
	case CanPutUnknown:
		o.defineDataProperty(name, Unknown, true, true, true)
		o.emit(events.Event{Kind: events.PropertySet, Object: o, Name: name, Value: Unknown})
		return
	}

	ownDesc := o.GetOwnProperty(name)
	if IsDataDescriptor(ownDesc) {
		o.DefineOwnProperty(name, &PropertyDescriptor{Value: value, HasValue: true}, throwFlag, onTypeError)
		o.emit(events.Event{Kind: events.PropertySet, Object: o, Name: name, Value: value})
		return
	}

	desc := o.GetProperty(name)
	if IsAccessorDescriptor(desc) {
		setter, ok := desc.Set.(*ObjectValue)
		if ok && setter.IsCallable() && call != nil {
			call(setter, o, []Value{value})
		}
		o.emit(events.Event{Kind: events.PropertySet, Object: o, Name: name, Value: value})
		return
	}

	o.defineDataProperty(name, value, true, true, true)
	o.emit(events.Event{Kind: events.PropertySet, Object: o, Name: name, Value: value})
}

func (o *ObjectValue) defineDataProperty(name string, value Value, writable, enumerable, configurable bool) {
	o.DefineOwnProperty(name, DataDescriptor(value, writable, enumerable, configurable), false, nil)
}

// ---------------------------------------------------------------------
// §8.12.6 [[HasProperty]]
// ---------------------------------------------------------------------

// HasProperty implements [[HasProperty]] (ES5.1 §8.12.6).
func (o *ObjectValue) HasProperty(name string) bool {
	return o.GetProperty(name) != nil
}

// ---------------------------------------------------------------------
// §8.12.7 [[Delete]]
// ---------------------------------------------------------------------

// Delete implements [[Delete]] (ES5.1 §8.12.7).
func (o *ObjectValue) Delete(name string, throwFlag bool, onTypeError func(string)) bool {
	desc := o.GetOwnProperty(name)
	if desc == nil {
		return true
	}
	if desc.Configurable {
		o.removeOwn(name)
		o.emit(events.Event{Kind: events.PropertyDeleted, Object: o, Name: name})
		return true
	}
	if throwFlag && onTypeError != nil {
		onTypeError(fmt.Sprintf("property %q is non-configurable and cannot be deleted", name))
	}
	return false
}

func (o *ObjectValue) removeOwn(name string) {
	if _, ok := o.props[name]; !ok {
		return
	}
	delete(o.props, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// ---------------------------------------------------------------------
// §8.12.8 [[DefaultValue]]
// ---------------------------------------------------------------------

// DefaultValue implements [[DefaultValue]] (ES5.1 §8.12.8). hint is "Number",
// "String", or "" (no hint: treated as "String" for Date objects and as
// "Number" for everything else).
func (o *ObjectValue) DefaultValue(hint string, call CallFunc) (Value, bool) {
	order := []string{"valueOf", "toString"}
	if hint == "String" || (hint == "" && o.ClassName == "Date") {
		order = []string{"toString", "valueOf"}
	}
	for _, methodName := range order {
		method := o.Get(methodName, call)
		fn, ok := method.(*ObjectValue)
		if !ok || !fn.IsCallable() {
			continue
		}
		if IsUnknown(Value(method)) {
			return Unknown, true
		}
		result, exc := call(fn, o, nil)
		if exc != nil {
			return nil, false
		}
		if _, isObj := result.(*ObjectValue); !isObj {
			return result, true
		}
	}
	return nil, false
}

// ---------------------------------------------------------------------
// §8.12.9 [[DefineOwnProperty]]
// ---------------------------------------------------------------------

// DefineOwnProperty implements ES5.1 §8.12.9 in full, including the Array
// length-update override. onTypeError receives the message
// for any TypeError the algorithm calls for; the return value mirrors the
// spec algorithm's boolean result (false on a would-be TypeError that the
// caller chose to swallow, i.e. throwFlag==false).
func (o *ObjectValue) DefineOwnProperty(name string, desc *PropertyDescriptor, throwFlag bool, onTypeError func(string)) bool {
	current := o.GetOwnProperty(name)
	reject := func(msg string) bool {
		if throwFlag && onTypeError != nil {
			onTypeError(msg)
		}
		return false
	}

	if current == nil {
		if !o.Extensible {
			return reject(fmt.Sprintf("object is not extensible, cannot define property %q", name))
		}
		o.putOwn(name, normalizeNewDescriptor(desc))
		o.emit(events.Event{Kind: events.PropertyDefined, Object: o, Name: name})
		o.afterDefine(name)
		return true
	}

	if descriptorsEquivalent(current, desc) {
		return true
	}

	if !current.Configurable {
		if desc.Configurable {
			return reject(fmt.Sprintf("property %q is non-configurable", name))
		}
		if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
			return reject(fmt.Sprintf("property %q is non-configurable", name))
		}
		if IsGenericDescriptor(desc) {
			// fallthrough: merge below, nothing further to validate
		} else if IsDataDescriptor(current) != IsDataDescriptor(desc) && (IsDataDescriptor(desc) || IsAccessorDescriptor(desc)) {
			return reject(fmt.Sprintf("cannot change property %q between data and accessor", name))
		} else if IsDataDescriptor(current) {
			if !current.Writable {
				if desc.HasWritable && desc.Writable {
					return reject(fmt.Sprintf("property %q is non-writable", name))
				}
				if desc.HasValue && !sameValueStrict(desc.Value, current.Value) {
					return reject(fmt.Sprintf("property %q is non-writable", name))
				}
			}
		} else if IsAccessorDescriptor(current) {
			if desc.HasSet && !sameAccessor(desc.Set, current.Set) {
				return reject(fmt.Sprintf("cannot change setter of non-configurable property %q", name))
			}
			if desc.HasGet && !sameAccessor(desc.Get, current.Get) {
				return reject(fmt.Sprintf("cannot change getter of non-configurable property %q", name))
			}
		}
	}

	merged := mergeDescriptor(current, desc)
	o.putOwn(name, merged)
	o.afterDefine(name)
	return true
}

// normalizeNewDescriptor fills in ES5.1's defaults (false/Undefined) for
// any field absent from a brand-new property's descriptor.
func normalizeNewDescriptor(desc *PropertyDescriptor) *PropertyDescriptor {
	out := &PropertyDescriptor{HasWritable: true, HasEnumerable: true, HasConfigurable: true, HasValue: true, HasGet: true, HasSet: true}
	if IsAccessorDescriptor(desc) {
		out.HasValue, out.HasWritable = false, false
		out.Get, out.Set = Undefined, Undefined
		if desc.HasGet {
			out.Get = desc.Get
		}
		if desc.HasSet {
			out.Set = desc.Set
		}
	} else {
		out.HasGet, out.HasSet = false, false
		out.Value = Undefined
		if desc.HasValue {
			out.Value = desc.Value
		}
		if desc.HasWritable {
			out.Writable = desc.Writable
		}
	}
	if desc.HasEnumerable {
		out.Enumerable = desc.Enumerable
	}
	if desc.HasConfigurable {
		out.Configurable = desc.Configurable
	}
	return out
}

func mergeDescriptor(current, desc *PropertyDescriptor) *PropertyDescriptor {
	merged := current.Clone()
	switching := IsDataDescriptor(current) != IsDataDescriptor(desc) && (IsDataDescriptor(desc) || IsAccessorDescriptor(desc))
	if switching {
		if IsDataDescriptor(desc) {
			merged = &PropertyDescriptor{HasValue: true, HasWritable: true, Value: Undefined}
		} else {
			merged = &PropertyDescriptor{HasGet: true, HasSet: true, Get: Undefined, Set: Undefined}
		}
		merged.Enumerable, merged.Configurable = current.Enumerable, current.Configurable
		merged.HasEnumerable, merged.HasConfigurable = true, true
	}
	if desc.HasValue {
		merged.Value, merged.HasValue = desc.Value, true
	}
	if desc.HasWritable {
		merged.Writable, merged.HasWritable = desc.Writable, true
	}
	if desc.HasGet {
		merged.Get, merged.HasGet = desc.Get, true
	}
	if desc.HasSet {
		merged.Set, merged.HasSet = desc.Set, true
	}
	if desc.HasEnumerable {
		merged.Enumerable, merged.HasEnumerable = desc.Enumerable, true
	}
	if desc.HasConfigurable {
		merged.Configurable, merged.HasConfigurable = desc.Configurable, true
	}
	return merged
}

// descriptorsEquivalent mirrors the spec's informal "every field of Desc
// also occurs in current and every field value agrees" check for a no-op
// redefinition, using SameValue semantics (ES5.1 §9.12) for Value/Get/Set.
func descriptorsEquivalent(current, desc *PropertyDescriptor) bool {
	if desc.HasValue && (!current.HasValue || !sameValueStrict(desc.Value, current.Value)) {
		return false
	}
	if desc.HasWritable && (!current.HasWritable || desc.Writable != current.Writable) {
		return false
	}
	if desc.HasGet && (!current.HasGet || !sameAccessor(desc.Get, current.Get)) {
		return false
	}
	if desc.HasSet && (!current.HasSet || !sameAccessor(desc.Set, current.Set)) {
		return false
	}
	if desc.HasEnumerable && (!current.HasEnumerable || desc.Enumerable != current.Enumerable) {
		return false
	}
	if desc.HasConfigurable && (!current.HasConfigurable || desc.Configurable != current.Configurable) {
		return false
	}
	return true
}

func sameAccessor(a, b Value) bool {
	if a == nil {
		a = Undefined
	}
	if b == nil {
		b = Undefined
	}
	ao, aIsObj := a.(*ObjectValue)
	bo, bIsObj := b.(*ObjectValue)
	if aIsObj && bIsObj {
		return ao == bo
	}
	return a == b
}

// putOwn stores desc under name, tracking insertion order for the first
// definition. The array-length and arguments-map overrides are applied
// separately, by afterDefine.
func (o *ObjectValue) putOwn(name string, desc *PropertyDescriptor) {
	if _, existed := o.props[name]; !existed {
		o.keys = append(o.keys, name)
	}
	o.props[name] = desc
}

// afterDefine runs the per-className side effects that ES5.1 §8.12.9's
// override hooks specify: updating Array.length, and removing an index
// from an Arguments object's parameter map whenever that index is defined
// or written.
func (o *ObjectValue) afterDefine(name string) {
	if o.ClassName == "Array" {
		if idx, ok := arrayIndex(name); ok {
			lengthDesc := o.props["length"]
			if lengthDesc != nil {
				if n, ok := lengthDesc.Value.(NumberValue); ok && idx >= uint32(toUint32Float(float64(n))) {
					newLen := idx + 1
					lengthDesc.Value = NumberValue(float64(newLen))
				}
			}
		}
	}
	if o.ParamMap != nil {
		o.ParamMap.Break(name)
	}
}

// arrayIndex parses name as an ES5.1 array index: an integer in
// [0, 2^32-2] with no leading zero (except "0" itself) and no sign.
func arrayIndex(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	if name == "0" {
		return 0, true
	}
	if name[0] == '0' {
		return 0, false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(name, 10, 64)
	if err != nil || n > 4294967294 {
		return 0, false
	}
	return uint32(n), true
}

// OwnKeys returns own property names in insertion order, matching the
// engine's for-in and Object.keys enumeration order.
func (o *ObjectValue) OwnKeys() []string {
	if o.ClassName == "String" && o.Primitive != nil {
		return stringOwnKeys(o)
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// OwnPropertyCount reports how many own properties o directly carries
// (excluding synthesized String index properties).
func (o *ObjectValue) OwnPropertyCount() int { return len(o.keys) }
