package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12", 1200, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"0.01", 1, true},
		{"", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q: got %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q: expected error", tc.in)
		}
	}
}

func TestCentsFromUnits(t *testing.T) {
	if got := CentsFromUnits(45.50); got != 4550 {
		t.Fatalf("got %d", got)
	}
	if got := CentsFromUnits(0.005); got != 1 {
		t.Fatalf("got %d", got)
	}
	if got := CentsFromUnits(-1.25); got != -125 {
		t.Fatalf("got %d", got)
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 4550}).String(); s != "45.50" {
		t.Fatalf("got %s", s)
	}
	if s := (Money{Cents: -101}).String(); s != "-1.01" {
		t.Fatalf("got %s", s)
	}
}
