package jsonx

import "testing"

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}
	for _, c := range cases {
		if got := StripFences(c.in); got != c.want {
			t.Errorf("StripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseObjectStrict(t *testing.T) {
	obj, err := ParseObject(`{"outstanding_shares": 48000000}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["outstanding_shares"] != float64(48000000) {
		t.Errorf("outstanding_shares = %v", obj["outstanding_shares"])
	}
}

func TestParseObjectFenced(t *testing.T) {
	obj, err := ParseObject("```json\n{\"float_shares\": null}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := obj["float_shares"]; !ok || v != nil {
		t.Errorf("float_shares = %v (present=%v)", v, ok)
	}
}

func TestParseObjectRepairsTrailingComma(t *testing.T) {
	obj, err := ParseObject(`{"a": 1, "b": 2,}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["b"] != float64(2) {
		t.Errorf("b = %v", obj["b"])
	}
}

func TestParseObjectLenientUnquotedKeys(t *testing.T) {
	obj, err := ParseObject("{a: 1\nb: 2}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["a"] == nil || obj["b"] == nil {
		t.Errorf("parsed: %v", obj)
	}
}

func TestParseObjectProse(t *testing.T) {
	if _, err := ParseObject("I could not find any share information in this document."); err == nil {
		t.Error("prose must not parse as an object")
	}
}
