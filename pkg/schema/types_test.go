package schema

import (
	"encoding/json"
	"testing"
)

func TestIntType_AcceptsWholeFloats(t *testing.T) {
	if err := Int().Validate(float64(3)); err != nil {
		t.Errorf("Int().Validate(3.0) error = %v, want nil", err)
	}
	if err := Int().Validate(3.5); err == nil {
		t.Error("Int().Validate(3.5) should fail")
	}
	if err := Int().Validate(json.Number("12")); err != nil {
		t.Errorf("Int().Validate(json.Number) error = %v", err)
	}
}

func TestFloatType(t *testing.T) {
	for _, v := range []any{1, int64(2), 2.5, json.Number("4.2")} {
		if err := Float().Validate(v); err != nil {
			t.Errorf("Float().Validate(%v) error = %v", v, err)
		}
	}
	if err := Float().Validate("1"); err == nil {
		t.Error("Float().Validate(string) should fail")
	}
}

func TestEnumType(t *testing.T) {
	e := Enum("append", "replace")
	if err := e.Validate("append"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := e.Validate("merge"); err == nil {
		t.Error("expected error for value outside enum")
	}
	if err := e.Validate(1); err == nil {
		t.Error("expected error for non-string")
	}
}

func TestSliceType_ReportsElement(t *testing.T) {
	err := Slice(Enum("a", "b")).Validate([]any{"a", "c"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got[:9] != "element 1" {
		t.Errorf("error = %q, want element 1 prefix", got)
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]string{
		"string":   "string",
		"int":      "int",
		"number":   "number",
		"bool":     "bool",
		"[string]": "[string]",
	}
	for in, want := range cases {
		typ, err := ParseType(in)
		if err != nil {
			t.Fatalf("ParseType(%q) error = %v", in, err)
		}
		if typ.Name() != want {
			t.Errorf("ParseType(%q).Name() = %q, want %q", in, typ.Name(), want)
		}
	}
	if _, err := ParseType("date"); err == nil {
		t.Error("ParseType(date) should fail")
	}
}
