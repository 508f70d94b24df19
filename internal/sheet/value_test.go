package sheet

import "testing"

func TestValueEqual(t *testing.T) {
	if !Text("a").Equal(Text("a")) {
		t.Error("Text(a) should equal Text(a)")
	}
	if Text("a").Equal(Text("b")) {
		t.Error("Text(a) should not equal Text(b)")
	}
	if Text("2").Equal(Number(2)) {
		t.Error("Text(2) should not equal Number(2): different kinds")
	}
}

func TestValueRaw(t *testing.T) {
	if Text("a").Raw() != "a" {
		t.Error("Text(a).Raw() should be the string a")
	}
	if Number(2.5).Raw() != 2.5 {
		t.Error("Number(2.5).Raw() should be the float64 2.5")
	}
}

func TestValuePanicsOnWrongAccessor(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("String() on a Number value should panic")
		}
	}()
	_ = Number(1).String()
}
