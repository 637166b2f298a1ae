package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installJSON wires the JSON object (ES5.1 §15.12): a plain Object carrying
// parse and stringify. Both report Unknown on anything indeterminate rather
// than guessing, matching how Math.random and Date's "now" forms degrade.
func (b *builder) installJSON(global *runtime.ObjectValue) {
	j := runtime.NewObject(b.realm.Protos.Object, "JSON", b.ctx)
	b.method(j, "parse", 2, "JSON.parse", CategoryJSON, "parses a JSON string into a value", jsonParse)
	b.method(j, "stringify", 3, "JSON.stringify", CategoryJSON, "serializes a value as a JSON string", jsonStringify)
	global.DefineOwnProperty("JSON", runtime.DataDescriptor(j, true, false, true), true, nil)
}

// jsonParse implements ES5.1 §15.12.2's walk-and-revive algorithm over a
// small hand-rolled recursive-descent parser; unrecognized or malformed
// input reports a SyntaxError exactly like a real JSON.parse would, since
// that exception is as statically knowable as any other thrown error.
func jsonParse(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	text, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	p := &jsonParser{src: text}
	p.skipSpace()
	v, exc := p.parseValue(ctx)
	if exc != nil {
		return nil, exc
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, runtime.NewSyntaxError("JSON.parse: unexpected trailing characters", ctx)
	}

	reviver, hasReviver := isCallableObject(arg(args, 1))
	if !hasReviver {
		return v, nil
	}
	holder := runtime.NewObject(ctx.Realm().Protos.Object, "Object", ctx)
	holder.DefineOwnProperty("", runtime.DataDescriptor(v, true, true, true), true, objectTypeErrorHook(ctx))
	return jsonWalk(ctx, holder, "", reviver)
}

// jsonWalk implements the Walk abstract operation (§15.12.2), applying the
// reviver bottom-up through any nested object or array.
func jsonWalk(ctx *runtime.ExecutionContext, holder *runtime.ObjectValue, name string, reviver *runtime.ObjectValue) (runtime.Value, *runtime.ExceptionValue) {
	val := holder.Get(name, callFn(ctx))
	if obj, ok := val.(*runtime.ObjectValue); ok {
		if obj.ClassName == "Array" {
			n, ok := length(ctx, obj)
			if !ok {
				return runtime.Unknown, nil
			}
			hook := objectTypeErrorHook(ctx)
			for i := 0; i < n; i++ {
				elemName := indexName(i)
				newVal, exc := jsonWalk(ctx, obj, elemName, reviver)
				if exc != nil {
					return nil, exc
				}
				if _, isUndef := newVal.(runtime.UndefinedValue); isUndef {
					obj.Delete(elemName, false, hook)
				} else {
					obj.DefineOwnProperty(elemName, runtime.DataDescriptor(newVal, true, true, true), true, hook)
				}
			}
		} else {
			hook := objectTypeErrorHook(ctx)
			for _, key := range append([]string(nil), obj.OwnKeys()...) {
				desc := obj.GetOwnProperty(key)
				if desc == nil || !desc.Enumerable {
					continue
				}
				newVal, exc := jsonWalk(ctx, obj, key, reviver)
				if exc != nil {
					return nil, exc
				}
				if _, isUndef := newVal.(runtime.UndefinedValue); isUndef {
					obj.Delete(key, false, hook)
				} else {
					obj.DefineOwnProperty(key, runtime.DataDescriptor(newVal, true, true, true), true, hook)
				}
			}
		}
	}
	return runtime.Call(ctx, reviver, holder, []runtime.Value{runtime.StringValue(name), val}, ctx.Realm().Invoke)
}

type jsonParser struct {
	src string
	pos int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) parseValue(ctx *runtime.ExecutionContext) (runtime.Value, *runtime.ExceptionValue) {
	if p.pos >= len(p.src) {
		return nil, runtime.NewSyntaxError("JSON.parse: unexpected end of input", ctx)
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject(ctx)
	case c == '[':
		return p.parseArray(ctx)
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, runtime.NewSyntaxError("JSON.parse: "+err.Error(), ctx)
		}
		return runtime.StringValue(s), nil
	case c == 't':
		return p.parseLiteral("true", runtime.True, ctx)
	case c == 'f':
		return p.parseLiteral("false", runtime.False, ctx)
	case c == 'n':
		return p.parseLiteral("null", runtime.Null, ctx)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber(ctx)
	default:
		return nil, runtime.NewSyntaxError("JSON.parse: unexpected token", ctx)
	}
}

func (p *jsonParser) parseLiteral(lit string, v runtime.Value, ctx *runtime.ExecutionContext) (runtime.Value, *runtime.ExceptionValue) {
	if !strings.HasPrefix(p.src[p.pos:], lit) {
		return nil, runtime.NewSyntaxError("JSON.parse: invalid literal", ctx)
	}
	p.pos += len(lit)
	return v, nil
}

func (p *jsonParser) parseNumber(ctx *runtime.ExecutionContext) (runtime.Value, *runtime.ExceptionValue) {
	start := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, runtime.NewSyntaxError("JSON.parse: invalid number", ctx)
	}
	return runtime.NumberValue(f), nil
}

func (p *jsonParser) parseString() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return sb.String(), nil
		}
		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				break
			}
			switch p.src[p.pos] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", strconvErr("truncated unicode escape")
				}
				n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", err
				}
				sb.WriteRune(rune(n))
				p.pos += 4
			default:
				return "", strconvErr("invalid escape sequence")
			}
			p.pos++
			continue
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", strconvErr("unterminated string")
}

type jsonParseErr string

func (e jsonParseErr) Error() string { return string(e) }
func strconvErr(msg string) error    { return jsonParseErr(msg) }

func (p *jsonParser) parseArray(ctx *runtime.ExecutionContext) (runtime.Value, *runtime.ExceptionValue) {
	p.pos++ // '['
	var elems []runtime.Value
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return valueArray(ctx, elems), nil
	}
	for {
		p.skipSpace()
		v, exc := p.parseValue(ctx)
		if exc != nil {
			return nil, exc
		}
		elems = append(elems, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, runtime.NewSyntaxError("JSON.parse: unterminated array", ctx)
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == ']' {
			p.pos++
			return valueArray(ctx, elems), nil
		}
		return nil, runtime.NewSyntaxError("JSON.parse: expected ',' or ']'", ctx)
	}
}

func (p *jsonParser) parseObject(ctx *runtime.ExecutionContext) (runtime.Value, *runtime.ExceptionValue) {
	p.pos++ // '{'
	obj := runtime.NewObject(ctx.Realm().Protos.Object, "Object", ctx)
	hook := objectTypeErrorHook(ctx)
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return nil, runtime.NewSyntaxError("JSON.parse: expected string key", ctx)
		}
		key, err := p.parseString()
		if err != nil {
			return nil, runtime.NewSyntaxError("JSON.parse: "+err.Error(), ctx)
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return nil, runtime.NewSyntaxError("JSON.parse: expected ':'", ctx)
		}
		p.pos++
		p.skipSpace()
		v, exc := p.parseValue(ctx)
		if exc != nil {
			return nil, exc
		}
		obj.DefineOwnProperty(key, runtime.DataDescriptor(v, true, true, true), true, hook)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, runtime.NewSyntaxError("JSON.parse: unterminated object", ctx)
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.src[p.pos] == '}' {
			p.pos++
			return obj, nil
		}
		return nil, runtime.NewSyntaxError("JSON.parse: expected ',' or '}'", ctx)
	}
}

// jsonStringify implements ES5.1 §15.12.3. A value that resolves to Unknown
// anywhere in the tree makes the whole result Unknown: there is no way to
// statically know what a real run would have serialized at that position,
// and partially-concrete JSON text would be actively misleading.
func jsonStringify(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	value := arg(args, 0)
	replacer, _ := isCallableObject(arg(args, 1))
	var allowlist map[string]bool
	if replacerArr, ok := arg(args, 1).(*runtime.ObjectValue); ok && replacerArr.ClassName == "Array" {
		n, ok := length(ctx, replacerArr)
		if ok {
			allowlist = map[string]bool{}
			for i := 0; i < n; i++ {
				if s, ok := elementToString(ctx, replacerArr.Get(indexName(i), callFn(ctx))); ok {
					allowlist[s] = true
				}
			}
		}
	}
	gap, exc := stringifyGap(ctx, arg(args, 2))
	if exc != nil {
		return nil, exc
	}

	s := &jsonStringifier{ctx: ctx, replacer: replacer, allowlist: allowlist, gap: gap, stack: map[*runtime.ObjectValue]bool{}}
	holder := runtime.NewObject(ctx.Realm().Protos.Object, "Object", ctx)
	holder.DefineOwnProperty("", runtime.DataDescriptor(value, true, true, true), true, objectTypeErrorHook(ctx))
	out, unknown, exc := s.str(holder, "")
	if exc != nil {
		return nil, exc
	}
	if unknown {
		return runtime.Unknown, nil
	}
	if out == nil {
		return runtime.Undefined, nil
	}
	return runtime.StringValue(*out), nil
}

func stringifyGap(ctx *runtime.ExecutionContext, v runtime.Value) (string, *runtime.ExceptionValue) {
	switch g := v.(type) {
	case runtime.NumberValue:
		n := int(g)
		if n > 10 {
			n = 10
		}
		if n < 0 {
			n = 0
		}
		return strings.Repeat(" ", n), nil
	case runtime.StringValue:
		s := string(g)
		if len(s) > 10 {
			s = s[:10]
		}
		return s, nil
	case *runtime.ObjectValue:
		if g.ClassName == "Number" {
			return stringifyGap(ctx, runtime.ToNumber(g, callFn(ctx)))
		}
		if g.ClassName == "String" {
			return stringifyGap(ctx, runtime.ToString(g, callFn(ctx)))
		}
	}
	return "", nil
}

type jsonStringifier struct {
	ctx       *runtime.ExecutionContext
	replacer  *runtime.ObjectValue
	allowlist map[string]bool
	gap       string
	stack     map[*runtime.ObjectValue]bool
}

// str implements the Str(key, holder) abstract operation. It returns
// (nil, false, nil) for "no string produced" (undefined/function filtered
// out), and (nil, true, nil) when the value is Unknown, to signal the whole
// result collapses to Unknown.
func (s *jsonStringifier) str(holder *runtime.ObjectValue, key string) (*string, bool, *runtime.ExceptionValue) {
	value := holder.Get(key, callFn(s.ctx))
	if obj, ok := value.(*runtime.ObjectValue); ok {
		if toJSON := obj.Get("toJSON", callFn(s.ctx)); toJSON != nil {
			if fn, ok := isCallableObject(toJSON); ok {
				res, exc := runtime.Call(s.ctx, fn, obj, []runtime.Value{runtime.StringValue(key)}, s.ctx.Realm().Invoke)
				if exc != nil {
					return nil, false, exc
				}
				value = res
			}
		}
	}
	if s.replacer != nil {
		res, exc := runtime.Call(s.ctx, s.replacer, holder, []runtime.Value{runtime.StringValue(key), value}, s.ctx.Realm().Invoke)
		if exc != nil {
			return nil, false, exc
		}
		value = res
	}
	if runtime.IsUnknown(value) {
		return nil, true, nil
	}
	if obj, ok := value.(*runtime.ObjectValue); ok {
		switch obj.ClassName {
		case "Number":
			value = runtime.ToNumber(obj, callFn(s.ctx))
		case "String":
			value = runtime.ToString(obj, callFn(s.ctx))
		case "Boolean":
			value = obj.Primitive
		}
	}

	switch v := value.(type) {
	case runtime.NullValue:
		out := "null"
		return &out, false, nil
	case runtime.BooleanValue:
		out := v.String()
		return &out, false, nil
	case runtime.StringValue:
		out := quoteJSON(string(v))
		return &out, false, nil
	case runtime.NumberValue:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out := "null"
			return &out, false, nil
		}
		out := formatNumberValue(f)
		return &out, false, nil
	case *runtime.ObjectValue:
		if v.IsCallable() {
			return nil, false, nil
		}
		return s.object(v)
	default:
		return nil, false, nil
	}
}

func (s *jsonStringifier) object(obj *runtime.ObjectValue) (*string, bool, *runtime.ExceptionValue) {
	if s.stack[obj] {
		return nil, false, runtime.NewTypeError("JSON.stringify: circular reference", s.ctx)
	}
	s.stack[obj] = true
	defer delete(s.stack, obj)

	if obj.ClassName == "Array" {
		return s.array(obj)
	}

	var keys []string
	if s.allowlist != nil {
		for k := range s.allowlist {
			if obj.HasProperty(k) {
				keys = append(keys, k)
			}
		}
	} else {
		for _, k := range obj.OwnKeys() {
			if desc := obj.GetOwnProperty(k); desc != nil && desc.Enumerable {
				keys = append(keys, k)
			}
		}
	}

	var parts []string
	for _, k := range keys {
		member, unknown, exc := s.str(obj, k)
		if exc != nil {
			return nil, false, exc
		}
		if unknown {
			return nil, true, nil
		}
		if member == nil {
			continue
		}
		parts = append(parts, quoteJSON(k)+":"+sep(s.gap)+*member)
	}
	out := wrap(parts, "{", "}", s.gap)
	return &out, false, nil
}

func (s *jsonStringifier) array(obj *runtime.ObjectValue) (*string, bool, *runtime.ExceptionValue) {
	n, ok := length(s.ctx, obj)
	if !ok {
		return nil, true, nil
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		member, unknown, exc := s.str(obj, indexName(i))
		if exc != nil {
			return nil, false, exc
		}
		if unknown {
			return nil, true, nil
		}
		if member == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = *member
	}
	out := wrap(parts, "[", "]", s.gap)
	return &out, false, nil
}

func sep(gap string) string {
	if gap == "" {
		return ""
	}
	return " "
}

func wrap(parts []string, open, close, gap string) string {
	if len(parts) == 0 {
		return open + close
	}
	if gap == "" {
		return open + strings.Join(parts, ",") + close
	}
	indented := make([]string, len(parts))
	for i, p := range parts {
		indented[i] = gap + strings.ReplaceAll(p, "\n", "\n"+gap)
	}
	return open + "\n" + strings.Join(indented, ",\n") + "\n" + close
}

func quoteJSON(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(strconv.QuoteRune(r))
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
