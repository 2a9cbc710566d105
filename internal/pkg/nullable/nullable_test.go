package nullable

import (
	"encoding/json"
	"testing"
)

type payload struct {
	Name  string        `json:"name"`
	Owner Field[string] `json:"owner"`
}

func TestFieldTriState(t *testing.T) {
	cases := []struct {
		raw   string
		set   bool
		value *string
	}{
		{`{"name":"a"}`, false, nil},
		{`{"name":"a","owner":null}`, true, nil},
		{`{"name":"a","owner":"bob"}`, true, strp("bob")},
	}
	for _, tc := range cases {
		var p payload
		if err := json.Unmarshal([]byte(tc.raw), &p); err != nil {
			t.Fatalf("%s: %v", tc.raw, err)
		}
		if p.Owner.Set != tc.set {
			t.Fatalf("%s: Set=%v want %v", tc.raw, p.Owner.Set, tc.set)
		}
		if (p.Owner.Value == nil) != (tc.value == nil) || (tc.value != nil && *p.Owner.Value != *tc.value) {
			t.Fatalf("%s: unexpected value %v", tc.raw, p.Owner.Value)
		}
	}
}

func TestFieldRejectsWrongType(t *testing.T) {
	var p payload
	if err := json.Unmarshal([]byte(`{"owner":5}`), &p); err == nil {
		t.Fatalf("expected type error")
	}
}

func strp(s string) *string { return &s }
