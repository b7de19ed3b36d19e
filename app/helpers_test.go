package app

import (
	"testing"
)

func TestParsePositiveInt(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"10", 10, false},
		{"0", 0, false},
		{"500", 500, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := parsePositiveInt(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parsePositiveInt(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parsePositiveInt(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parsePositiveInt(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestReadStringClaim(t *testing.T) {
	raw := map[string]any{
		"email":  "  user@example.com ",
		"name":   "Jane",
		"number": 42,
	}

	if got := readStringClaim(raw, "email"); got != "user@example.com" {
		t.Errorf("email claim = %q, want trimmed value", got)
	}
	if got := readStringClaim(raw, "name"); got != "Jane" {
		t.Errorf("name claim = %q", got)
	}
	if got := readStringClaim(raw, "number"); got != "" {
		t.Errorf("non-string claim = %q, want empty", got)
	}
	if got := readStringClaim(raw, "missing"); got != "" {
		t.Errorf("missing claim = %q, want empty", got)
	}
	if got := readStringClaim(nil, "email"); got != "" {
		t.Errorf("nil raw map = %q, want empty", got)
	}
}

func TestNullIfEmpty(t *testing.T) {
	if v := nullIfEmpty(""); v.Valid {
		t.Errorf("empty string must map to NULL")
	}
	v := nullIfEmpty("x")
	if !v.Valid || v.String != "x" {
		t.Errorf("nullIfEmpty(x) = %+v", v)
	}
}
