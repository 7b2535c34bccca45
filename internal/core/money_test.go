package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMulQuantityExact(t *testing.T) {
	// 9.99 * 3 must be exactly 29.97, not 29.970000000000002.
	price := Money{Cents: 999}
	total := price.MulQuantity(3)
	if total.Cents != 2997 {
		t.Fatalf("expected 2997 cents, got %d", total.Cents)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1500}
	b := Money{Cents: 700}
	if got := a.Add(b).Cents; got != 2200 {
		t.Fatalf("add: expected 2200, got %d", got)
	}
	if got := b.Sub(a).Cents; got != -800 {
		t.Fatalf("sub: expected -800, got %d", got)
	}
}
