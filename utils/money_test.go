package utils

import "testing"

func TestFormatSEK(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "0,00 kr"},
		{"small amount", 99.5, "99,50 kr"},
		{"exact hundred", 100, "100,00 kr"},
		{"thousands separator", 12500, "12 500,00 kr"},
		{"millions", 1234567.89, "1 234 567,89 kr"},
		{"boundary at thousand", 1000, "1 000,00 kr"},
		{"just below thousand", 999.99, "999,99 kr"},
		{"negative amount", -12500.5, "-12 500,50 kr"},
		{"rounds to two decimals", 156.255, "156,26 kr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSEK(tt.amount); got != tt.want {
				t.Errorf("FormatSEK(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}
