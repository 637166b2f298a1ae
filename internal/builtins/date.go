package builtins

import (
	"math"
	"time"

	"github.com/araddon/dateparse"

	"github.com/cwbudde/jsstatic/internal/runtime"
)

// installDate wires the Date constructor and Date.prototype (ES5.1 §15.9).
// `new Date()` with no arguments reads the current wall clock, which is a
// non-deterministic input to static analysis: when Configuration.ExactMode
// is off (the normal analysis posture) it resolves to Unknown instead of
// baking in whatever time the analysis happened to run at; exact mode
// opts into the real current time for callers who want one deterministic
// reference run.
func (b *builder) installDate(global *runtime.ObjectValue) {
	proto := b.realm.Protos.Date

	b.method(proto, "toString", 0, "Date.prototype.toString", CategoryDate, "returns a human-readable date/time string", dateToString)
	b.method(proto, "toISOString", 0, "Date.prototype.toISOString", CategoryDate, "returns an ISO-8601 date/time string", dateToISOString)
	b.method(proto, "toDateString", 0, "Date.prototype.toDateString", CategoryDate, "returns the date portion as a string", dateToDateString)
	b.method(proto, "toTimeString", 0, "Date.prototype.toTimeString", CategoryDate, "returns the time portion as a string", dateToTimeString)
	b.method(proto, "valueOf", 0, "Date.prototype.valueOf", CategoryDate, "returns milliseconds since the epoch", dateValueOf)
	b.method(proto, "getTime", 0, "Date.prototype.getTime", CategoryDate, "returns milliseconds since the epoch", dateValueOf)
	b.method(proto, "getFullYear", 0, "Date.prototype.getFullYear", CategoryDate, "returns the year", dateGetFullYear)
	b.method(proto, "getMonth", 0, "Date.prototype.getMonth", CategoryDate, "returns the zero-based month", dateGetMonth)
	b.method(proto, "getDate", 0, "Date.prototype.getDate", CategoryDate, "returns the day of the month", dateGetDate)
	b.method(proto, "getDay", 0, "Date.prototype.getDay", CategoryDate, "returns the day of the week", dateGetDay)
	b.method(proto, "getHours", 0, "Date.prototype.getHours", CategoryDate, "returns the hour", dateGetHours)
	b.method(proto, "getMinutes", 0, "Date.prototype.getMinutes", CategoryDate, "returns the minute", dateGetMinutes)
	b.method(proto, "getSeconds", 0, "Date.prototype.getSeconds", CategoryDate, "returns the second", dateGetSeconds)
	b.method(proto, "getMilliseconds", 0, "Date.prototype.getMilliseconds", CategoryDate, "returns the millisecond", dateGetMilliseconds)
	b.method(proto, "setTime", 1, "Date.prototype.setTime", CategoryDate, "sets milliseconds since the epoch", dateSetTime)
	b.method(proto, "getTimezoneOffset", 0, "Date.prototype.getTimezoneOffset", CategoryDate, "returns the timezone offset in minutes; always 0 (UTC)", dateGetTimezoneOffset)

	ctor := b.ctorBuilder("Date", 7, proto, dateConstructor)
	b.method(ctor, "now", 0, "Date.now", CategoryDate, "returns the current time in milliseconds since the epoch", dateNow)
	b.method(ctor, "parse", 1, "Date.parse", CategoryDate, "parses a date string into milliseconds since the epoch", dateParse)
	b.method(ctor, "UTC", 7, "Date.UTC", CategoryDate, "returns milliseconds since the epoch for the given UTC components", dateUTC)
	b.installGlobal(global, "Date", ctor)
}

func dateNondeterministic(ctx *runtime.ExecutionContext) bool {
	return ctx.Realm().Config == nil || !ctx.Realm().Config.ExactMode
}

func newDateObject(ctx *runtime.ExecutionContext, ms float64, known bool) *runtime.ObjectValue {
	d := runtime.NewObject(ctx.Realm().Protos.Date, "Date", ctx)
	d.Date = &runtime.DateData{TimeValue: ms, Known: known}
	return d
}

func dateConstructor(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	obj, isObj := this.(*runtime.ObjectValue)
	boxed := isObj && obj.ClassName == "Object" && obj.Prototype == ctx.Realm().Protos.Date
	if !boxed {
		// Called as a function: ES5.1 §15.9.2 returns a string, but every
		// analysis call site only ever observes the result, so a timestamp
		// string built from the nondeterministic "now" degrades to Unknown
		// in the default, non-exact posture.
		if dateNondeterministic(ctx) {
			return runtime.Unknown, nil
		}
		return runtime.StringValue(time.Now().UTC().Format(time.RFC1123)), nil
	}

	switch len(args) {
	case 0:
		if dateNondeterministic(ctx) {
			obj.Date = &runtime.DateData{Known: false}
			return obj, nil
		}
		obj.Date = &runtime.DateData{TimeValue: float64(time.Now().UTC().UnixMilli()), Known: true}
		return obj, nil
	case 1:
		v := args[0]
		if runtime.IsUnknown(v) {
			obj.Date = &runtime.DateData{Known: false}
			return obj, nil
		}
		if s, ok := v.(runtime.StringValue); ok {
			ms, ok := parseDateString(string(s))
			obj.Date = &runtime.DateData{TimeValue: ms, Known: ok}
			return obj, nil
		}
		n := runtime.ToNumber(v, callFn(ctx))
		if runtime.IsUnknown(n) {
			obj.Date = &runtime.DateData{Known: false}
			return obj, nil
		}
		obj.Date = &runtime.DateData{TimeValue: float64(n.(runtime.NumberValue)), Known: true}
		return obj, nil
	default:
		nums := make([]float64, 7)
		known := true
		defaults := []float64{0, 0, 1, 0, 0, 0, 0}
		copy(nums, defaults)
		for i := 0; i < len(args) && i < 7; i++ {
			n, ok := numArg(ctx, args, i)
			if !ok {
				known = false
				continue
			}
			nums[i] = n
		}
		if nums[0] >= 0 && nums[0] <= 99 {
			nums[0] += 1900
		}
		ms := componentsToMillis(nums)
		obj.Date = &runtime.DateData{TimeValue: ms, Known: known}
		return obj, nil
	}
}

func componentsToMillis(c []float64) float64 {
	year, month, day := int(c[0]), int(c[1]), int(c[2])
	hour, min, sec, msec := int(c[3]), int(c[4]), int(c[5]), int(c[6])
	t := time.Date(year, time.Month(month+1), day, hour, min, sec, msec*1e6, time.UTC)
	return float64(t.UnixMilli())
}

// parseDateString accepts the handful of ISO-ish layouts ES5.1 §15.9.1.15
// requires directly, then falls back to dateparse's heuristic scanner for
// the many other formats real JS hosts happen to accept (RFC 822, US
// slash dates, "Jan 2 2006", …) rather than growing the ISO layout list by
// hand for every format a host might throw at `Date.parse`.
func parseDateString(s string) (float64, bool) {
	layouts := []string{time.RFC3339, time.RFC1123, time.RFC1123Z, "2006-01-02", "2006-01-02T15:04:05", time.ANSIC}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return float64(t.UnixMilli()), true
	}
	return math.NaN(), false
}

func dateNow(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if dateNondeterministic(ctx) {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(time.Now().UTC().UnixMilli())), nil
}

func dateParse(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	s, ok := strArg(ctx, args, 0)
	if !ok {
		return runtime.Unknown, nil
	}
	ms, ok := parseDateString(s)
	if !ok {
		return runtime.NumberValue(math.NaN()), nil
	}
	return runtime.NumberValue(ms), nil
}

func dateUTC(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	nums := make([]float64, 7)
	defaults := []float64{1970, 0, 1, 0, 0, 0, 0}
	copy(nums, defaults)
	for i := 0; i < len(args) && i < 7; i++ {
		n, ok := numArg(ctx, args, i)
		if !ok {
			return runtime.Unknown, nil
		}
		nums[i] = n
	}
	if nums[0] >= 0 && nums[0] <= 99 {
		nums[0] += 1900
	}
	return runtime.NumberValue(componentsToMillis(nums)), nil
}

func thisDate(ctx *runtime.ExecutionContext, this runtime.Value, method string) (*runtime.ObjectValue, *runtime.ExceptionValue) {
	obj, ok := this.(*runtime.ObjectValue)
	if !ok || obj.ClassName != "Date" || obj.Date == nil {
		return nil, runtime.NewTypeError(method+" called on incompatible receiver", ctx)
	}
	return obj, nil
}

func dateValueOf(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.valueOf")
	if exc != nil {
		return nil, exc
	}
	if !d.Date.Known {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(d.Date.TimeValue), nil
}

func dateSetTime(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.setTime")
	if exc != nil {
		return nil, exc
	}
	n, ok := numArg(ctx, args, 0)
	if !ok {
		d.Date.Known = false
		return runtime.Unknown, nil
	}
	d.Date.TimeValue, d.Date.Known = n, true
	return runtime.NumberValue(n), nil
}

func dateComponents(d *runtime.ObjectValue) (time.Time, bool) {
	if !d.Date.Known || math.IsNaN(d.Date.TimeValue) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(d.Date.TimeValue)).UTC(), true
}

func dateGetFullYear(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getFullYear")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(t.Year())), nil
}

func dateGetMonth(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getMonth")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(int(t.Month()) - 1)), nil
}

func dateGetDate(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getDate")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(t.Day())), nil
}

func dateGetDay(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getDay")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(int(t.Weekday()))), nil
}

func dateGetHours(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getHours")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(t.Hour())), nil
}

func dateGetMinutes(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getMinutes")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(t.Minute())), nil
}

func dateGetSeconds(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getSeconds")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(t.Second())), nil
}

func dateGetMilliseconds(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.getMilliseconds")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.NumberValue(float64(t.Nanosecond() / 1e6)), nil
}

func dateGetTimezoneOffset(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	if _, exc := thisDate(ctx, this, "Date.prototype.getTimezoneOffset"); exc != nil {
		return nil, exc
	}
	return runtime.NumberValue(0), nil
}

func dateToString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.toString")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(t.Format("Mon Jan 02 2006 15:04:05 GMT+0000 (UTC)")), nil
}

func dateToISOString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.toISOString")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return nil, runtime.NewRangeError("invalid date value", ctx)
	}
	return runtime.StringValue(t.Format("2006-01-02T15:04:05.000Z")), nil
}

func dateToDateString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.toDateString")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(t.Format("Mon Jan 02 2006")), nil
}

func dateToTimeString(ctx *runtime.ExecutionContext, this runtime.Value, args []runtime.Value) (runtime.Value, *runtime.ExceptionValue) {
	d, exc := thisDate(ctx, this, "Date.prototype.toTimeString")
	if exc != nil {
		return nil, exc
	}
	t, ok := dateComponents(d)
	if !ok {
		return runtime.Unknown, nil
	}
	return runtime.StringValue(t.Format("15:04:05 GMT+0000 (UTC)")), nil
}
