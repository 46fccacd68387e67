package lex

import "testing"

func TestParseFixed(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"1", 1},
		{"-3.5", -3.5},
		{"12.25", 12.25},
		{"100", 100},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, ok := ParseFixed(tt.in)
			if !ok {
				t.Fatalf("ParseFixed(%q) failed", tt.in)
			}
			if got := f.Float(); got < tt.want-0.001 || got > tt.want+0.001 {
				t.Errorf("ParseFixed(%q).Float() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFixed_Invalid(t *testing.T) {
	if _, ok := ParseFixed("not-a-number"); ok {
		t.Errorf("expected ParseFixed to fail on non-numeric input")
	}
}

func TestFixed_IntTruncatesTowardZero(t *testing.T) {
	f, _ := ParseFixed("3.9")
	if got := f.Int(); got != 3 {
		t.Errorf("Int() = %d, want 3", got)
	}
	f, _ = ParseFixed("-3.9")
	if got := f.Int(); got != -3 {
		t.Errorf("Int() = %d, want -3", got)
	}
}

func TestFixedFromFloat_Overflow(t *testing.T) {
	if _, ok := FixedFromFloat(1e30); ok {
		t.Errorf("expected overflow to be rejected")
	}
}
