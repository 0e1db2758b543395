package money

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want Cents
	}{
		{0, 0},
		{12.34, 1234},
		{12.125, 1213}, // exactly representable half cent rounds away from zero
		{0.1, 10},
		{0.29, 29}, // 0.29 is not exactly representable; rounding must absorb it
		{-5.50, -550},
		{1000000, 100000000},
	}
	for _, tt := range tests {
		if got := FromFloat(tt.in); got != tt.want {
			t.Errorf("FromFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParsePositive(t *testing.T) {
	if _, err := ParsePositive(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ParsePositive(0) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := ParsePositive(-1.5); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("ParsePositive(-1.5) error = %v, want ErrInvalidAmount", err)
	}
	got, err := ParsePositive(9.99)
	if err != nil {
		t.Fatalf("ParsePositive(9.99) failed: %v", err)
	}
	if got != 999 {
		t.Errorf("ParsePositive(9.99) = %d, want 999", got)
	}
}

func TestJSONRoundtrip(t *testing.T) {
	tests := []struct {
		cents Cents
		json  string
	}{
		{0, "0.00"},
		{1234, "12.34"},
		{-550, "-5.50"},
		{5, "0.05"},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.cents)
		if err != nil {
			t.Fatalf("Marshal(%d) failed: %v", tt.cents, err)
		}
		if string(data) != tt.json {
			t.Errorf("Marshal(%d) = %s, want %s", tt.cents, data, tt.json)
		}

		var back Cents
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", data, err)
		}
		if back != tt.cents {
			t.Errorf("Unmarshal(%s) = %d, want %d", data, back, tt.cents)
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var c Cents
	for _, in := range []string{`"12.34"`, `{}`, `null`} {
		if err := json.Unmarshal([]byte(in), &c); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		cents Cents
		want  string
	}{
		{0, "0.00"},
		{1234, "12.34"},
		{-550, "-5.50"},
		{5, "0.05"},
		{-5, "-0.05"},
	}
	for _, tt := range tests {
		if got := tt.cents.String(); got != tt.want {
			t.Errorf("Cents(%d).String() = %s, want %s", tt.cents, got, tt.want)
		}
	}
}
