package runtime

// PropertyDescriptor is the full ES5.1 §8.10 attribute bundle. A property
// is a data descriptor when HasValue or HasWritable is set, an accessor
// descriptor when HasGet or HasSet is set, or generic when neither is set
//. The Has* flags exist because ES5.1's algorithms
// distinguish "field absent" from "field present but false/undefined" at
// several points in §8.12.9 — a plain bool-valued struct cannot express
// that distinction.
type PropertyDescriptor struct {
	Value Value // meaningful when HasValue
	Get   Value // meaningful when HasGet; Undefined or a callable Object
	Set   Value // meaningful when HasSet; Undefined or a callable Object

	Writable     bool
	Enumerable   bool
	Configurable bool

	HasValue        bool
	HasWritable     bool
	HasGet          bool
	HasSet          bool
	HasEnumerable   bool
	HasConfigurable bool
}

// IsDataDescriptor implements ES5.1 §8.10.2.
func IsDataDescriptor(desc *PropertyDescriptor) bool {
	if desc == nil {
		return false
	}
	return desc.HasValue || desc.HasWritable
}

// IsAccessorDescriptor implements ES5.1 §8.10.1.
func IsAccessorDescriptor(desc *PropertyDescriptor) bool {
	if desc == nil {
		return false
	}
	return desc.HasGet || desc.HasSet
}

// IsGenericDescriptor implements ES5.1 §8.10.3.
func IsGenericDescriptor(desc *PropertyDescriptor) bool {
	if desc == nil {
		return false
	}
	return !IsDataDescriptor(desc) && !IsAccessorDescriptor(desc)
}

// DataDescriptor is a convenience constructor for the common case of a
// fully-specified data property.
func DataDescriptor(value Value, writable, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Value: value, Writable: writable, Enumerable: enumerable, Configurable: configurable,
		HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// AccessorDescriptor is a convenience constructor for a fully-specified
// accessor property.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) *PropertyDescriptor {
	if get == nil {
		get = Undefined
	}
	if set == nil {
		set = Undefined
	}
	return &PropertyDescriptor{
		Get: get, Set: set, Enumerable: enumerable, Configurable: configurable,
		HasGet: true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// Clone returns a deep-enough copy of desc (Value fields are shared, since
// Value is treated as immutable from the descriptor's point of view).
func (desc *PropertyDescriptor) Clone() *PropertyDescriptor {
	if desc == nil {
		return nil
	}
	c := *desc
	return &c
}

// SameValue (§9.12) and its alias sameValueStrict are defined in
// equality.go; descriptor equivalence (descriptorsEquivalent) is in object.go.
