package builtins

import (
	"math"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// localeCollator and the locale casers are package singletons: ES5.1's
// locale-sensitive String methods don't carry an explicit locale argument
// in this engine (no Intl), so every call uses the same root-locale rules,
// matching how a host with a single configured locale would behave.
var (
	localeCollator   = collate.New(language.Und)
	localeUpperCaser = cases.Upper(language.Und)
	localeLowerCaser = cases.Lower(language.Und)
)

// installString wires the String constructor (ES5.1 §15.5.2) and
// String.prototype (§15.5.4). Indexed character access and `.length` are
// handled generically by runtime.ObjectValue's String-class override
// (object.go/string_object.go); this file covers the method surface.
func (b *builder) installString(global *runtime.ObjectValue) {
	proto := b.realm.Protos.String

	b.method(proto, "toString", 0, "String.prototype.toString", CategoryString, "returns the wrapped primitive string", stringToStringMethod)
	b.method(proto, "valueOf", 0, "String.prototype.valueOf", CategoryString, "returns the wrapped primitive string", stringToStringMethod)
	b.method(proto, "charAt", 1, "String.prototype.charAt", CategoryString, "returns the character at the given index", stringCharAt)
	b.method(proto, "charCodeAt", 1, "String.prototype.charCodeAt", CategoryString, "returns the UTF-16 code unit at the given index", stringCharCodeAt)
	b.method(proto, "concat", 1, "String.prototype.concat", CategoryString, "concatenates the arguments onto the string", stringConcat)
	b.method(proto, "indexOf", 1, "String.prototype.indexOf", CategoryString, "returns the first index of a substring", stringIndexOf)
	b.method(proto, "lastIndexOf", 1, "String.prototype.lastIndexOf", CategoryString, "returns the last index of a substring", stringLastIndexOf)
	b.method(proto, "localeCompare", 1, "String.prototype.localeCompare", CategoryString, "compares two strings for sort order", stringLocaleCompare)
	b.method(proto, "slice", 2, "String.prototype.slice", CategoryString, "returns a substring given relative start/end indices", stringSlice)
	b.method(proto, "substring", 2, "String.prototype.substring", CategoryString, "returns a substring given clamped start/end indices", stringSubstring)
	b.method(proto, "substr", 2, "String.prototype.substr", CategoryString, "returns a substring given a start index and length", stringSubstr)
	b.method(proto, "split", 2, "String.prototype.split", CategoryString, "splits the string on a separator into an array", stringSplit)
	b.method(proto, "toLowerCase", 0, "String.prototype.toLowerCase", CategoryString, "returns the string lowercased", stringToLowerCase)
	b.method(proto, "toLocaleLowerCase", 0, "String.prototype.toLocaleLowerCase", CategoryString, "returns the string lowercased per locale casing rules", stringToLocaleLowerCase)
	b.method(proto, "toUpperCase", 0, "String.prototype.toUpperCase", CategoryString, "returns the string uppercased", stringToUpperCase)
	b.method(proto, "toLocaleUpperCase", 0, "String.prototype.toLocaleUpperCase", CategoryString, "returns the string uppercased per locale casing rules", stringToLocaleUpperCase)
	b.method(proto, "trim", 0, "String.prototype.trim", CategoryString, "removes leading and trailing whitespace", stringTrim)
	b.method(proto, "match", 1, "String.prototype.match", CategoryString, "matches the string against a RegExp", stringMatch)
	b.method(proto, "replace", 2, "String.prototype.replace", CategoryString, "replaces a substring or pattern match", stringReplace)
	b.method(proto, "search", 1, "String.prototype.search", CategoryString, "returns the index of a RegExp match", stringSearch)

	ctor := b.ctorBuilder("String", 1, proto, stringConstructor)
	b.method(ctor, "fromCharCode", 1, "String.fromCharCode", CategoryString, "builds a string from UTF-16 code units", stringFromCharCode)
	b.installGlobal(global, "String", ctor)
}

// stringConstructor implements ES5.1 §15.5.1/§15.5.2: called as a function
// it converts to string; called with `new` it boxes the primitive.
func stringConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	var sv runtime.Value = runtime.StringValue("")
	if len(args) > 0 {
		sv = runtime.ToString(args[0], callFn(ctx))
	}
	if obj, ok := this.(*runtime.ObjectValue); ok && obj.ClassName == "Object" && obj.Prototype == ctx.Realm().Protos.String {
		obj.ClassName = "String"
		obj.Primitive = sv
		return obj, nil
	}
	return sv, nil
}

func stringToStringMethod(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if s, ok := this.(runtime.StringValue); ok {
		return s, nil
	}
	obj, ok := this.(*runtime.ObjectValue)
	if !ok || obj.ClassName != "String" || obj.Primitive == nil {
		return nil, runtime.NewTypeError("String.prototype method called on incompatible receiver", ctx)
	}
	return obj.Primitive, nil
}

func thisString(ctx *runtime.ExecutionContext, this runtime.Value, method string) (string, bool, *runtime.ExceptionValue) {
	if runtime.IsUnknown(this) {
		return "", false, nil
	}
	switch v := this.(type) {
	case runtime.StringValue:
		return string(v), true, nil
	case *runtime.ObjectValue:
		if v.ClassName == "String" && v.Primitive != nil {
			return string(v.Primitive.(runtime.StringValue)), true, nil
		}
	}
	s := runtime.ToString(this, callFn(ctx))
	if runtime.IsUnknown(s) {
		return "", false, nil
	}
	return string(s.(runtime.StringValue)), true, nil
}

// utf16Units converts s to its UTF-16 code unit sequence, matching ES5.1's
// indexing model (surrogate pairs count as two units).
func utf16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func stringCharAt(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.charAt")
	if exc != nil {
		return nil, exc
	}
	if !ok || anyUnknown(arg(args, 0)) {
		return runtime.Unknown, nil
	}
	i, ok := intArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	if i < 0 || i >= len(units) {
		return runtime.StringValue(""), nil
	}
	return runtime.StringValue(string(utf16.Decode(units[i : i+1]))), nil
}

func stringCharCodeAt(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.charCodeAt")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	i, ok := intArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	if i < 0 || i >= len(units) {
		return runtime.NumberValue(math.NaN()), nil
	}
	return runtime.NumberValue(float64(units[i])), nil
}

func stringConcat(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.concat")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	var b strings.Builder
	b.WriteString(s)
	for i := range args {
		part, ok := strArg(ctx, args, i)
		if !ok {
			return runtime.Unknown, nil
		}
		b.WriteString(part)
	}
	return runtime.StringValue(b.String()), nil
}

func stringIndexOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.indexOf")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	search, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	searchUnits := utf16Units(search)
	start := 0
	if len(args) > 1 {
		v, ok := intArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		start = v
	}
	if start < 0 {
		start = 0
	}
	if start > len(units) {
		start = len(units)
	}
	idx := indexOfUnits(units, searchUnits, start)
	return runtime.NumberValue(float64(idx)), nil
}

func stringLastIndexOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.lastIndexOf")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	search, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	searchUnits := utf16Units(search)
	best := -1
	for start := 0; start+len(searchUnits) <= len(units); start++ {
		if unitsEqual(units[start:start+len(searchUnits)], searchUnits) {
			best = start
		}
	}
	return runtime.NumberValue(float64(best)), nil
}

func indexOfUnits(units, search []uint16, from int) int {
	if len(search) == 0 {
		if from > len(units) {
			return len(units)
		}
		return from
	}
	for i := from; i+len(search) <= len(units); i++ {
		if unitsEqual(units[i:i+len(search)], search) {
			return i
		}
	}
	return -1
}

func unitsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringLocaleCompare(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.localeCompare")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	other, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(localeCollator.CompareString(s, other))), nil
}

func stringSlice(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.slice")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	n := len(units)
	start := 0
	if len(args) > 0 {
		v, ok := intArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		start = clampIndex(v, n)
	}
	end := n
	if len(args) > 1 {
		if _, isUndef := args[1].(runtime.UndefinedValue); !isUndef {
			v, ok := intArg(ctx, args, 1)
			if !ok {
				return runtime.Unknown, nil
			}
			end = clampIndex(v, n)
		}
	}
	if end < start {
		end = start
	}
	return runtime.StringValue(string(utf16.Decode(units[start:end]))), nil
}

func stringSubstring(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.substring")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	n := len(units)
	clamp := func(raw int) int {
		if raw < 0 {
			return 0
		}
		if raw > n {
			return n
		}
		return raw
	}
	start := 0
	if len(args) > 0 {
		v, ok := intArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		start = clamp(v)
	}
	end := n
	if len(args) > 1 {
		if _, isUndef := args[1].(runtime.UndefinedValue); !isUndef {
			v, ok := intArg(ctx, args, 1)
			if !ok {
				return runtime.Unknown, nil
			}
			end = clamp(v)
		}
	}
	if start > end {
		start, end = end, start
	}
	return runtime.StringValue(string(utf16.Decode(units[start:end]))), nil
}

func stringSubstr(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.substr")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	units := utf16Units(s)
	n := len(units)
	start := 0
	if len(args) > 0 {
		v, ok := intArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		start = v
		if start < 0 {
			start = n + start
			if start < 0 {
				start = 0
			}
		}
	}
	ln := n - start
	if len(args) > 1 {
		if _, isUndef := args[1].(runtime.UndefinedValue); !isUndef {
			v, ok := intArg(ctx, args, 1)
			if !ok {
				return runtime.Unknown, nil
			}
			ln = v
		}
	}
	if ln < 0 {
		ln = 0
	}
	if start > n {
		start = n
	}
	end := start + ln
	if end > n {
		end = n
	}
	return runtime.StringValue(string(utf16.Decode(units[start:end]))), nil
}

func stringToLowerCase(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.toLowerCase")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(strings.ToLower(s)), nil
}

func stringToUpperCase(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.toUpperCase")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(strings.ToUpper(s)), nil
}

func stringToLocaleLowerCase(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.toLocaleLowerCase")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(localeLowerCaser.String(s)), nil
}

func stringToLocaleUpperCase(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.toLocaleUpperCase")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(localeUpperCaser.String(s)), nil
}

func stringTrim(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.trim")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(strings.TrimSpace(s)), nil
}

func stringSplit(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.split")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	sepArg := arg(args, 0)
	if _, isUndef := sepArg.(runtime.UndefinedValue); isUndef {
		return valueArray(ctx, []runtime.Value{runtime.StringValue(s)}), nil
	}
	if re, ok := sepArg.(*runtime.ObjectValue); ok && re.RegExp != nil {
		return regexpSplit(ctx, s, re)
	}
	sep, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	var parts []string
	if sep == "" {
		for _, r := range s {
			parts = append(parts, string(r))
		}
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]runtime.Value, len(parts))
	for i, p := range parts {
		out[i] = runtime.StringValue(p)
	}
	return valueArray(ctx, out), nil
}

func stringMatch(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.match")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	re, exc := toRegExp(ctx, arg(args, 0))
	if exc != nil {
		return nil, exc
	}
	return regexpMatch(ctx, s, re)
}

func stringSearch(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.search")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	re, exc := toRegExp(ctx, arg(args, 0))
	if exc != nil {
		return nil, exc
	}
	return regexpSearch(ctx, s, re)
}

func stringReplace(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok, exc := thisString(ctx, this, "String.prototype.replace")
	if exc != nil {
		return nil, exc
	}
	if !ok {
		return runtime.Unknown, nil
	}
	pattern := arg(args, 0)
	replacement := arg(args, 1)
	if re, ok := pattern.(*runtime.ObjectValue); ok && re.RegExp != nil {
		return regexpReplace(ctx, s, re, replacement)
	}
	search, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	idx := strings.Index(s, search)
	if idx < 0 {
		return runtime.StringValue(s), nil
	}
	var repl string
	if fn, ok := isCallableObject(replacement); ok {
		res, exc := runtime.Call(ctx, fn, runtime.Undefined, []runtime.Value{runtime.StringValue(search), runtime.NumberValue(float64(idx)), runtime.StringValue(s)}, ctx.Realm().Invoke)
		if exc != nil {
			return nil, exc
		}
		r, ok := elementToString(ctx, res)
		if !ok {
			return runtime.Unknown, nil
		}
		repl = r
	} else {
		r, ok := strArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		repl = expandReplacementPattern(r, search, nil, s, idx)
	}
	return runtime.StringValue(s[:idx] + repl + s[idx+len(search):]), nil
}

func stringFromCharCode(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	units := make([]uint16, len(args))
	for i := range args {
		n, ok := numArg(ctx, args, i)
		if !ok {
			return runtime.Unknown, nil
		}
		units[i] = uint16(int64(n))
	}
	return runtime.StringValue(string(utf16.Decode(units))), nil
}
