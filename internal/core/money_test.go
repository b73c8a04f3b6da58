package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-1", "-1", true},
		{"0.1", "0.1", true},
		{"", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%q expected validation error, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyIsExact(t *testing.T) {
	total := Money{}
	for i := 0; i < 10; i++ {
		total = total.Add(NewMoney(0.1))
	}
	if !total.Equal(NewMoney(1)) {
		t.Fatalf("expected exactly 1, got %s", total)
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money    `json:"a"`
		B Money    `json:"b"`
		Q Quantity `json:"q"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.34, "b": "5,5", "q": 0.00012345}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.String() != "12.34" || v.B.String() != "5.5" || v.Q.String() != "0.00012345" {
		t.Fatalf("unexpected values %s %s %s", v.A, v.B, v.Q)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":12.34,"b":5.5,"q":0.00012345}` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := json.Unmarshal([]byte(`{"a": "ten"}`), &v); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestDivQuantity(t *testing.T) {
	if got := NewMoney(100).DivQuantity(Quantity{}); !got.IsZero() {
		t.Fatalf("division by zero quantity should be 0, got %s", got)
	}
	if got := NewMoney(30).DivQuantity(NewQuantity(4)); got.String() != "7.5" {
		t.Fatalf("expected 7.5, got %s", got)
	}
}
