package builtins

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installRegExp wires the RegExp constructor and RegExp.prototype (ES5.1
// §15.10). Pattern translation goes through Go's RE2 engine (regexp), the
// same approach the teacher's own pack uses for client-side pattern
// matching; RE2 does not support backreferences or lookaround, so those
// constructs degrade a match's result to Unknown rather than
// mis-evaluating (see compileJSPattern).
func (b *builder) installRegExp(global *runtime.ObjectValue) {
	proto := b.realm.Protos.RegExp

	b.method(proto, "test", 1, "RegExp.prototype.test", CategoryRegExp, "reports whether the pattern matches the string", regexpTest)
	b.method(proto, "exec", 1, "RegExp.prototype.exec", CategoryRegExp, "executes the pattern against the string, returning a match array or null", regexpExec)
	b.method(proto, "toString", 0, "RegExp.prototype.toString", CategoryRegExp, "returns the pattern as a /pattern/flags literal", regexpToString)

	ctor := b.ctorBuilder("RegExp", 2, proto, regexpConstructor)
	b.installGlobal(global, "RegExp", ctor)
}

// regexpConstructor implements ES5.1 §15.10.3.1's "pass-through" special
// case: new RegExp(regexpInstance) with no flags argument returns the same
// pattern/flags, and calling RegExp(regexpInstance) (no `new`) returns the
// argument unchanged rather than a copy.
func regexpConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	pattern := arg(args, 0)
	flagsArg := arg(args, 1)
	_, flagsUndef := flagsArg.(runtime.UndefinedValue)

	obj, isObj := this.(*runtime.ObjectValue)
	calledAsConstructor := isObj && obj.ClassName == "Object" && obj.Prototype == ctx.Realm().Protos.RegExp

	if re, ok := pattern.(*runtime.ObjectValue); ok && re.RegExp != nil {
		if flagsUndef {
			if !calledAsConstructor {
				return re, nil
			}
			return buildRegExp(ctx, obj, re.RegExp.Source, re.RegExp.Flags), nil
		}
		flags, ok := strArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		return buildRegExp(ctx, obj, re.RegExp.Source, flags), nil
	}

	source := ""
	if _, isUndef := pattern.(runtime.UndefinedValue); !isUndef {
		s, ok := strArg(ctx, args, 0)
		if !ok {
			return runtime.Unknown, nil
		}
		source = s
	}
	flags := ""
	if !flagsUndef {
		f, ok := strArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		flags = f
	}
	if !calledAsConstructor {
		obj = runtime.NewObject(ctx.Realm().Protos.RegExp, "RegExp", ctx)
	}
	return buildRegExp(ctx, obj, source, flags), nil
}

func buildRegExp(ctx *runtime.ExecutionContext, obj *runtime.ObjectValue, source, flags string) *runtime.ObjectValue {
	data := &runtime.RegExpData{Source: source, Flags: flags}
	for _, f := range flags {
		switch f {
		case 'g':
			data.Global = true
		case 'i':
			data.IgnoreCase = true
		case 'm':
			data.Multiline = true
		}
	}
	obj.ClassName = "RegExp"
	obj.RegExp = data
	hook := objectTypeErrorHook(ctx)
	obj.DefineOwnProperty("source", runtime.DataDescriptor(runtime.StringValue(source), false, false, false), true, hook)
	obj.DefineOwnProperty("global", runtime.DataDescriptor(runtime.Bool(data.Global), false, false, false), true, hook)
	obj.DefineOwnProperty("ignoreCase", runtime.DataDescriptor(runtime.Bool(data.IgnoreCase), false, false, false), true, hook)
	obj.DefineOwnProperty("multiline", runtime.DataDescriptor(runtime.Bool(data.Multiline), false, false, false), true, hook)
	obj.DefineOwnProperty("lastIndex", runtime.DataDescriptor(runtime.NumberValue(0), true, false, false), true, hook)
	return obj
}

// compileJSPattern best-effort translates an ECMAScript pattern to Go's
// RE2 syntax. ok is false when the pattern uses a construct RE2 cannot
// express (backreferences, lookaround); callers treat that as an
// analysis-time Unknown rather than a wrong answer.
func compileJSPattern(source string, ignoreCase, multiline bool) (*regexp.Regexp, bool) {
	if strings.Contains(source, "(?=") || strings.Contains(source, "(?!") ||
		strings.Contains(source, "(?<=") || strings.Contains(source, "(?<!") {
		return nil, false
	}
	for i := 0; i+1 < len(source); i++ {
		if source[i] == '\\' && source[i+1] >= '1' && source[i+1] <= '9' {
			return nil, false
		}
	}
	prefix := ""
	if ignoreCase {
		prefix += "i"
	}
	if multiline {
		prefix += "m"
	}
	pattern := source
	if prefix != "" {
		pattern = "(?" + prefix + ")" + source
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}

func toRegExp(ctx *runtime.ExecutionContext, v runtime.Value) (*runtime.ObjectValue, *runtime.ExceptionValue) {
	if re, ok := v.(*runtime.ObjectValue); ok && re.RegExp != nil {
		return re, nil
	}
	source := ""
	if _, isUndef := v.(runtime.UndefinedValue); !isUndef {
		s := runtime.ToString(v, callFn(ctx))
		if runtime.IsUnknown(s) {
			return nil, nil
		}
		source = string(s.(runtime.StringValue))
	}
	obj := runtime.NewObject(ctx.Realm().Protos.RegExp, "RegExp", ctx)
	return buildRegExp(ctx, obj, source, ""), nil
}

func regexpTest(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	re, ok := this.(*runtime.ObjectValue)
	if !ok || re.RegExp == nil {
		return nil, runtime.NewTypeError("RegExp.prototype.test called on incompatible receiver", ctx)
	}
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	compiled, ok := compileJSPattern(re.RegExp.Source, re.RegExp.IgnoreCase, re.RegExp.Multiline)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.Bool(compiled.MatchString(s)), nil
}

func regexpExec(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	re, ok := this.(*runtime.ObjectValue)
	if !ok || re.RegExp == nil {
		return nil, runtime.NewTypeError("RegExp.prototype.exec called on incompatible receiver", ctx)
	}
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	compiled, ok := compileJSPattern(re.RegExp.Source, re.RegExp.IgnoreCase, re.RegExp.Multiline)
	if !ok {
		return runtime.Unknown, nil
	}
	start := 0
	if re.RegExp.Global {
		start = int(re.RegExp.LastIndex)
	}
	if start < 0 || start > len(s) {
		re.RegExp.LastIndex = 0
		return runtime.Null, nil
	}
	loc := compiled.FindStringSubmatchIndex(s[start:])
	if loc == nil {
		if re.RegExp.Global {
			re.RegExp.LastIndex = 0
		}
		return runtime.Null, nil
	}
	result := submatchArray(ctx, compiled, s, start, loc)
	if re.RegExp.Global {
		re.RegExp.LastIndex = float64(start + loc[1])
	}
	return result, nil
}

func submatchArray(ctx *runtime.ExecutionContext, compiled *regexp.Regexp, s string, offset int, loc []int) *runtime.ObjectValue {
	groups := len(loc) / 2
	vals := make([]runtime.Value, groups)
	for i := 0; i < groups; i++ {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo < 0 {
			vals[i] = runtime.Undefined
			continue
		}
		vals[i] = runtime.StringValue(s[offset+lo : offset+hi])
	}
	arr := valueArray(ctx, vals)
	hook := objectTypeErrorHook(ctx)
	arr.DefineOwnProperty("index", runtime.DataDescriptor(runtime.NumberValue(float64(offset+loc[0])), true, true, true), true, hook)
	arr.DefineOwnProperty("input", runtime.DataDescriptor(runtime.StringValue(s), true, true, true), true, hook)
	return arr
}

func regexpToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	re, ok := this.(*runtime.ObjectValue)
	if !ok || re.RegExp == nil {
		return nil, runtime.NewTypeError("RegExp.prototype.toString called on incompatible receiver", ctx)
	}
	return runtime.StringValue("/" + re.RegExp.Source + "/" + re.RegExp.Flags), nil
}

func regexpMatch(ctx *runtime.ExecutionContext, s string, re *runtime.ObjectValue) (runtime.Value, *runtime.ExceptionValue) {
	compiled, ok := compileJSPattern(re.RegExp.Source, re.RegExp.IgnoreCase, re.RegExp.Multiline)
	if !ok {
		return runtime.Unknown, nil
	}
	if !re.RegExp.Global {
		loc := compiled.FindStringSubmatchIndex(s)
		if loc == nil {
			return runtime.Null, nil
		}
		return submatchArray(ctx, compiled, s, 0, loc), nil
	}
	matches := compiled.FindAllString(s, -1)
	if matches == nil {
		return runtime.Null, nil
	}
	out := make([]runtime.Value, len(matches))
	for i, m := range matches {
		out[i] = runtime.StringValue(m)
	}
	return valueArray(ctx, out), nil
}

func regexpSearch(ctx *runtime.ExecutionContext, s string, re *runtime.ObjectValue) (runtime.Value, *runtime.ExceptionValue) {
	compiled, ok := compileJSPattern(re.RegExp.Source, re.RegExp.IgnoreCase, re.RegExp.Multiline)
	if !ok {
		return runtime.Unknown, nil
	}
	loc := compiled.FindStringIndex(s)
	if loc == nil {
		return runtime.NumberValue(-1), nil
	}
	return runtime.NumberValue(float64(loc[0])), nil
}

func regexpSplit(ctx *runtime.ExecutionContext, s string, re *runtime.ObjectValue) (runtime.Value, *runtime.ExceptionValue) {
	compiled, ok := compileJSPattern(re.RegExp.Source, re.RegExp.IgnoreCase, re.RegExp.Multiline)
	if !ok {
		return runtime.Unknown, nil
	}
	parts := compiled.Split(s, -1)
	out := make([]runtime.Value, len(parts))
	for i, p := range parts {
		out[i] = runtime.StringValue(p)
	}
	return valueArray(ctx, out), nil
}

func regexpReplace(ctx *runtime.ExecutionContext, s string, re *runtime.ObjectValue, replacement runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	compiled, ok := compileJSPattern(re.RegExp.Source, re.RegExp.IgnoreCase, re.RegExp.Multiline)
	if !ok {
		return runtime.Unknown, nil
	}
	fn, isFn := isCallableObject(replacement)
	var replStr string
	if !isFn {
		r, ok := elementToString(ctx, replacement)
		if !ok {
			return runtime.Unknown, nil
		}
		replStr = r
	}

	replaceOne := func(loc []int) (string, *runtime.ExceptionValue) {
		match := s[loc[0]:loc[1]]
		if isFn {
			callArgs := []runtime.Value{runtime.StringValue(match)}
			groups := len(loc)/2 - 1
			for g := 1; g <= groups; g++ {
				lo, hi := loc[2*g], loc[2*g+1]
				if lo < 0 {
					callArgs = append(callArgs, runtime.Undefined)
				} else {
					callArgs = append(callArgs, runtime.StringValue(s[lo:hi]))
				}
			}
			callArgs = append(callArgs, runtime.NumberValue(float64(loc[0])), runtime.StringValue(s))
			res, exc := runtime.Call(ctx, fn, runtime.Undefined, callArgs, ctx.Realm().Invoke)
			if exc != nil {
				return "", exc
			}
			out, ok := elementToString(ctx, res)
			if !ok {
				return "", nil
			}
			return out, nil
		}
		return expandReplacementPattern(replStr, match, loc, s, loc[0]), nil
	}

	if !re.RegExp.Global {
		loc := compiled.FindStringSubmatchIndex(s)
		if loc == nil {
			return runtime.StringValue(s), nil
		}
		repl, exc := replaceOne(loc)
		if exc != nil {
			return nil, exc
		}
		return runtime.StringValue(s[:loc[0]] + repl + s[loc[1]:]), nil
	}

	var b strings.Builder
	last := 0
	for _, loc := range compiled.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		repl, exc := replaceOne(loc)
		if exc != nil {
			return nil, exc
		}
		b.WriteString(repl)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return runtime.StringValue(b.String()), nil
}

// expandReplacementPattern expands the $$, $&, $`, $' and $n substitution
// tokens (ES5.1 §15.5.4.11 Table 22). loc is nil for a plain (non-regexp)
// String.replace call, where $n is not expanded.
func expandReplacementPattern(pattern, match string, loc []int, s string, matchStart int) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '$' || i+1 >= len(pattern) {
			b.WriteByte(pattern[i])
			continue
		}
		next := pattern[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(match)
			i++
		case next == '`':
			b.WriteString(s[:matchStart])
			i++
		case next == '\'':
			b.WriteString(s[matchStart+len(match):])
			i++
		case next >= '0' && next <= '9' && loc != nil:
			j := i + 1
			for j < len(pattern) && pattern[j] >= '0' && pattern[j] <= '9' && j < i+3 {
				j++
			}
			n, err := strconv.Atoi(pattern[i+1 : j])
			if err == nil && n >= 1 && n*2+1 < len(loc) {
				lo, hi := loc[2*n], loc[2*n+1]
				if lo >= 0 {
					b.WriteString(s[lo:hi])
				}
				i = j - 1
			} else {
				b.WriteByte('$')
			}
		default:
			b.WriteByte('$')
		}
	}
	return b.String()
}
