package builtins

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installGlobalFunctions wires the global function properties ES5.1 §15.1.2
// defines directly on the global object, outside any constructor.
func (b *builder) installGlobalFunctions(global *runtime.ObjectValue) {
	reg := func(name string, length int, fn runtime.NativeFunc, description string) {
		b.method(global, name, length, name, CategoryGlobal, description, fn)
	}
	reg("eval", 1, globalEval, "evaluates a string as ECMAScript; not statically analyzable, always Unknown")
	reg("parseInt", 2, globalParseInt, "parses a string as an integer in the given radix")
	reg("parseFloat", 1, globalParseFloat, "parses a string as a floating-point number")
	reg("isNaN", 1, globalIsNaN, "reports whether the argument converts to NaN")
	reg("isFinite", 1, globalIsFinite, "reports whether the argument converts to a finite number")
	reg("decodeURI", 1, globalDecodeURI, "decodes a URI, leaving reserved characters escaped")
	reg("decodeURIComponent", 1, globalDecodeURIComponent, "decodes a URI component")
	reg("encodeURI", 1, globalEncodeURI, "encodes a URI, leaving reserved characters unescaped")
	reg("encodeURIComponent", 1, globalEncodeURIComponent, "encodes a URI component")
}

// globalEval always reports Unknown: interpreting a dynamically constructed
// program string is outside what a static analyzer can soundly evaluate.
func globalEval(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	return runtime.UnknownBecause("eval is not statically evaluated"), nil
}

// globalParseInt implements ES5.1 §15.1.2.2: optional sign, optional
// "0x"/"0X" prefix switching to hex when radix is 0/omitted, otherwise
// digits valid in the given radix; the longest valid prefix wins.
func globalParseInt(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	s = strings.TrimSpace(s)

	radix := 0
	if len(args) > 1 {
		r, ok := intArg(ctx, args, 1)
		if !ok {
			return runtime.Unknown, nil
		}
		radix = r
	}
	if radix != 0 && (radix < 2 || radix > 36) {
		return runtime.NumberValue(math.NaN()), nil
	}

	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	stripPrefix := radix == 0 || radix == 16
	if stripPrefix && len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		radix = 16
	}
	if radix == 0 {
		radix = 10
	}

	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return runtime.NumberValue(math.NaN()), nil
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		// Overflow past int64: fall back to a float accumulation, still
		// within ES5.1's ToNumber-of-digit-string precision expectations.
		var f float64
		for i := 0; i < end; i++ {
			f = f*float64(radix) + float64(digitValue(s[i]))
		}
		if neg {
			f = -f
		}
		return runtime.NumberValue(f), nil
	}
	if neg {
		n = -n
	}
	return runtime.NumberValue(float64(n)), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 99
	}
}

// globalParseFloat implements ES5.1 §15.1.2.3: the longest valid decimal
// literal prefix (including Infinity) wins.
func globalParseFloat(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	s = strings.TrimSpace(s)

	sign := 1.0
	rest := s
	if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -1
		}
		rest = rest[1:]
	}
	if strings.HasPrefix(rest, "Infinity") {
		return runtime.NumberValue(sign * math.Inf(1)), nil
	}

	end := 0
	sawDigit := false
	sawDot := false
	for end < len(rest) {
		c := rest[end]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot:
			sawDot = true
		default:
			goto exponent
		}
		end++
	}
exponent:
	if end < len(rest) && (rest[end] == 'e' || rest[end] == 'E') {
		save := end
		e := end + 1
		if e < len(rest) && (rest[e] == '+' || rest[e] == '-') {
			e++
		}
		digitsStart := e
		for e < len(rest) && rest[e] >= '0' && rest[e] <= '9' {
			e++
		}
		if e > digitsStart {
			end = e
		} else {
			end = save
		}
	}
	if !sawDigit {
		return runtime.NumberValue(math.NaN()), nil
	}
	f, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return runtime.NumberValue(math.NaN()), nil
	}
	return runtime.NumberValue(sign * f), nil
}

func globalIsNaN(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok := numArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.Bool(math.IsNaN(f)), nil
}

func globalIsFinite(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	f, ok := numArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.Bool(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
}

// uriReserved is the "reservedURISet" of ES5.1 §15.1.3 (the characters
// encodeURI/decodeURI leave alone but encodeURIComponent does not).
const uriReserved = ";/?:@&=+$,#"
const uriUnescaped = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"

func uriEncode(s string, extraAllowed string) (string, bool) {
	var sb strings.Builder
	for _, r := range s {
		if strings.ContainsRune(uriUnescaped, r) || strings.ContainsRune(extraAllowed, r) {
			sb.WriteRune(r)
			continue
		}
		encoded := url.QueryEscape(string(r))
		// url.QueryEscape turns space into "+"; ES5.1 percent-escapes it.
		encoded = strings.ReplaceAll(encoded, "+", "%20")
		sb.WriteString(strings.ToUpper(encoded))
	}
	return sb.String(), true
}

func globalEncodeURI(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	out, _ := uriEncode(s, uriReserved)
	return runtime.StringValue(out), nil
}

func globalEncodeURIComponent(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	out, _ := uriEncode(s, "")
	return runtime.StringValue(out), nil
}

func uriDecode(ctx *runtime.ExecutionContext, s string, preserveReserved bool) (string, *runtime.ExceptionValue) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", runtime.NewURIError("malformed URI sequence", ctx)
		}
		n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", runtime.NewURIError("malformed URI sequence", ctx)
		}
		if preserveReserved && strings.ContainsRune(uriReserved, rune(n)) {
			sb.WriteString(s[i : i+3])
		} else {
			sb.WriteByte(byte(n))
		}
		i += 2
	}
	return sb.String(), nil
}

func globalDecodeURI(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	out, exc := uriDecode(ctx, s, true)
	if exc != nil {
		return nil, exc
	}
	return runtime.StringValue(out), nil
}

func globalDecodeURIComponent(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	out, exc := uriDecode(ctx, s, false)
	if exc != nil {
		return nil, exc
	}
	return runtime.StringValue(out), nil
}
