package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"0.01", 1, true},
		{"-1.50", -150, true},
		{" 2.50 ", 250, true},
		{"500.00", 50000, true},
		{"-0.00", 0, true},
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount("EUR", tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.cents {
				t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents, err)
			}
			if got.Currency != "EUR" {
				t.Fatalf("%q expected EUR, got %s", tc.in, got.Currency)
			}
		} else {
			if !errors.Is(err, ErrNoAmount) {
				t.Fatalf("%q expected ErrNoAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{FromCents("EUR", 1234), "€12.34"},
		{FromCents("EUR", -505), "€-5.05"},
		{FromCents("USD", 5), "$0.05"},
		{FromCents("GBP", 100), "£1.00"},
		{FromCents("SEK", 2500), "SEK 25.00"},
		{FromCents("EUR", 0), "€0.00"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Fatalf("%+v expected %q, got %q", tc.m, tc.want, got)
		}
	}
}

func TestParseAmountRoundTrip(t *testing.T) {
	for _, in := range []string{"12.34", "0.05", "-7.50", "100.00"} {
		m, err := ParseAmount("EUR", in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		back, err := ParseAmount("EUR", m.String())
		if err != nil {
			t.Fatalf("round trip %q: %v", m.String(), err)
		}
		if back.Cents != m.Cents {
			t.Fatalf("%q round-tripped to %d cents, want %d", in, back.Cents, m.Cents)
		}
	}
}

func TestMoneyNegateAbs(t *testing.T) {
	m := FromCents("EUR", -750)
	if got := m.Negate().Negate(); got != m {
		t.Fatalf("double negate changed value: %+v", got)
	}
	if got := m.Abs().Cents; got != 750 {
		t.Fatalf("Abs expected 750, got %d", got)
	}
	if m.Abs().Currency != "EUR" {
		t.Fatalf("Abs dropped currency")
	}
}

func TestMoneyCmp(t *testing.T) {
	a := FromCents("EUR", 100)
	b := FromCents("EUR", 200)
	if c, err := a.Cmp(b); err != nil || c != -1 {
		t.Fatalf("expected -1, got %d (err=%v)", c, err)
	}
	if _, err := a.Cmp(FromCents("USD", 100)); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
	if a.Sign() != 1 || FromCents("EUR", -1).Sign() != -1 || FromCents("EUR", 0).Sign() != 0 {
		t.Fatalf("Sign misbehaved")
	}
}

func TestSum(t *testing.T) {
	total, err := Sum([]Money{FromCents("EUR", 100), FromCents("EUR", -40)}, "EUR")
	if err != nil || total.Cents != 60 {
		t.Fatalf("expected 60, got %d (err=%v)", total.Cents, err)
	}
	empty, err := Sum(nil, "EUR")
	if err != nil || empty.Cents != 0 || empty.Currency != "EUR" {
		t.Fatalf("empty sum expected €0.00, got %+v (err=%v)", empty, err)
	}
	if _, err := Sum([]Money{FromCents("EUR", 1), FromCents("USD", 1)}, "EUR"); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("mixed sum expected ErrCurrencyMismatch, got %v", err)
	}
}
