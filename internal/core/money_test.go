package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "12", 1200, false},
		{"two decimals", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"one decimal", "12.3", 1230, false},
		{"no integer part", ".5", 50, false},
		{"zero", "0", 0, false},
		{"negative", "-0.05", -5, false},
		{"explicit plus", "+3.10", 310, false},
		{"third decimal rounds up", "1.005", 101, false},
		{"third decimal rounds down", "1.004", 100, false},
		{"surrounding whitespace", "  7.50  ", 750, false},
		{"empty", "", 0, true},
		{"letters", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"digit then letter", "12x", 0, true},
		{"lone minus", "-", 0, true},
		{"overflow", "99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimal(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimal(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimal(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{1230, "12.30"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-5, "-0.05"},
		{-1234, "-12.34"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	t.Run("marshals as bare number", func(t *testing.T) {
		b, err := json.Marshal(Money{Cents: 1234})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != "12.34" {
			t.Errorf("marshal = %s, want 12.34", b)
		}
	})

	t.Run("unmarshals number", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte("12.34"), &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m.Cents != 1234 {
			t.Errorf("cents = %d, want 1234", m.Cents)
		}
	})

	t.Run("unmarshals quoted string", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte(`"8,99"`), &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m.Cents != 899 {
			t.Errorf("cents = %d, want 899", m.Cents)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte(`"not money"`), &m); err == nil {
			t.Error("expected error for non-numeric string")
		}
	})
}
