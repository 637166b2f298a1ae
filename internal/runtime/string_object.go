package runtime

import (
	"strconv"
	"unicode/utf16"
)

// This file implements the String object's [[GetOwnProperty]] override
// (ES5.1 §15.5.5.2): a boxed String exposes each UTF-16 code unit of its
// wrapped primitive as a non-writable, non-configurable, enumerable own
// property named by its index, in addition to its ordinary own properties.
//
// Indexing and length count UTF-16 code units (surrogate pairs count as
// two), matching internal/builtins' utf16Units and the rest of the
// String method surface (charAt, charCodeAt, slice, ...) rather than
// Unicode code points.

// stringUTF16Units converts s to its UTF-16 code unit sequence.
func stringUTF16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

// installStringLength defines the non-writable `length` own property a
// freshly-boxed String object carries (ES5.1 §15.5.5.1).
func installStringLength(o *ObjectValue) {
	s := string(o.Primitive.(StringValue))
	o.defineDataProperty("length", NumberValue(float64(len(stringUTF16Units(s)))), false, false, false)
}

// stringIndexOwnProperty returns the synthesized index-property descriptor
// for name if o wraps a String primitive and name is a valid index into
// it, or nil otherwise (falling through to the object's ordinary own
// properties, e.g. `length` or user-defined properties).
func stringIndexOwnProperty(o *ObjectValue, name string) *PropertyDescriptor {
	idx, ok := arrayIndex(name)
	if !ok {
		return nil
	}
	sv, ok := o.Primitive.(StringValue)
	if !ok {
		return nil
	}
	units := stringUTF16Units(string(sv))
	if int(idx) >= len(units) {
		return nil
	}
	return &PropertyDescriptor{
		Value: StringValue(string(utf16.Decode(units[idx : idx+1]))), HasValue: true,
		Writable: false, HasWritable: true,
		Enumerable: true, HasEnumerable: true,
		Configurable: false, HasConfigurable: true,
	}
}

// stringOwnKeys returns the synthesized index keys followed by the
// object's ordinary own keys (`length` and anything else), matching
// ES5.1 §15.5.5.1's "own property names ... starts with the array index
// properties" enumeration order informally implied by [[GetOwnProperty]].
func stringOwnKeys(o *ObjectValue) []string {
	units := stringUTF16Units(string(o.Primitive.(StringValue)))
	out := make([]string, 0, len(units)+len(o.keys))
	for i := range units {
		out = append(out, strconv.Itoa(i))
	}
	out = append(out, o.keys...)
	return out
}
