package runtime

import "testing"

// 𝄞 (U+1D11E, MUSICAL SYMBOL G CLEF) lies outside the BMP and encodes as a
// UTF-16 surrogate pair; a boxed String's .length and indexed own
// properties must count/slice by code unit, not by Unicode code point, to
// agree with charAt/charCodeAt's view of the same string (ES5.1 §15.5.5.1).
func TestInstallStringLengthCountsUTF16CodeUnits(t *testing.T) {
	o := NewObject(nil, "String", nil)
	o.Primitive = StringValue("a\U0001D11Eb")
	installStringLength(o)

	desc := o.GetOwnProperty("length")
	if desc == nil || desc.Value != NumberValue(4) {
		t.Fatalf("length = %v, want 4 (1 + 2 surrogate units + 1)", desc)
	}
}

func TestStringIndexOwnPropertySplitsSurrogatePair(t *testing.T) {
	o := NewObject(nil, "String", nil)
	o.Primitive = StringValue("a\U0001D11Eb")

	if got := o.GetOwnProperty("0"); got == nil || got.Value != StringValue("a") {
		t.Errorf("index 0 = %v, want %q", got, "a")
	}
	hi := o.GetOwnProperty("1")
	lo := o.GetOwnProperty("2")
	if hi == nil || lo == nil {
		t.Fatalf("indices 1 and 2 should each address one surrogate half, got hi=%v lo=%v", hi, lo)
	}
	if hi.Value == lo.Value {
		t.Errorf("the two surrogate halves should decode to distinct lone-surrogate strings, both got %v", hi.Value)
	}
	if got := o.GetOwnProperty("3"); got == nil || got.Value != StringValue("b") {
		t.Errorf("index 3 = %v, want %q", got, "b")
	}
	if got := o.GetOwnProperty("4"); got != nil {
		t.Errorf("index 4 should be out of range, got %v", got)
	}
}

func TestStringOwnKeysCountsUTF16CodeUnits(t *testing.T) {
	o := NewObject(nil, "String", nil)
	o.Primitive = StringValue("a\U0001D11Eb")
	o.defineDataProperty("extra", NumberValue(1), true, true, true)

	keys := stringOwnKeys(o)
	want := []string{"0", "1", "2", "3", "extra"}
	if len(keys) != len(want) {
		t.Fatalf("stringOwnKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("stringOwnKeys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
