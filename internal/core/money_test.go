package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "12", 1200, false},
		{"dot separator", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"one decimal digit", "12.3", 1230, false},
		{"rounds down on third digit", "12.344", 1234, false},
		{"rounds up on third digit", "12.346", 1235, false},
		{"half rounds up", "12.345", 1235, false},
		{"leading dot", ".50", 50, false},
		{"whitespace trimmed", "  7.00  ", 700, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero with decimals", "0.00", 0, true},
		{"negative", "-1.00", 0, true},
		{"explicit plus", "+1.00", 0, true},
		{"letters", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"mixed digits and letters", "12a.50", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseDecimalToCents(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDecimalToCentsOverflow(t *testing.T) {
	if _, err := ParseDecimalToCents("99999999999999999999"); err == nil {
		t.Error("expected error for value that overflows int64 cents")
	}
}

func TestMoneyUnits(t *testing.T) {
	m := Money{Cents: 1234}
	if got := m.Units(); got != 12.34 {
		t.Errorf("Units() = %v, want 12.34", got)
	}
}
