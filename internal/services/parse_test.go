package services

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		ok       bool
	}{
		{"$1,234.56", 123456, true},
		{"$0.99", 99, true},
		{"12", 1200, true},
		{"12.99", 1299, true},
		{" $5.00 ", 500, true},
		{"$39.99", 3999, true},
		{"1,000", 100000, true},
		{"0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"$", 0, false},
		{"N/A", 0, false},
		{"$12.99 each", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cents, ok := ParsePrice(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q) ok = %t, want %t", tt.input, ok, tt.ok)
			}
			if ok && cents != tt.expected {
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, cents, tt.expected)
			}
		})
	}
}
