package props

import (
	"testing"

	"cssbc/css/bytecode"
	"cssbc/css/strpool"
)

func TestParseColor_HSLPrimaries(t *testing.T) {
	pool := strpool.New()
	cases := []struct {
		src  string
		want bytecode.Color
	}{
		{"hsl(0, 100%, 50%)", bytecode.RGBA(0xff, 0xff, 0x00, 0x00)},
		{"hsl(120, 100%, 50%)", bytecode.RGBA(0xff, 0x00, 0xff, 0x00)},
		{"hsl(240, 100%, 50%)", bytecode.RGBA(0xff, 0x00, 0x00, 0xff)},
		{"hsl(0, 0%, 100%)", bytecode.RGBA(0xff, 0xff, 0xff, 0xff)},
		{"hsl(0, 0%, 0%)", bytecode.RGBA(0xff, 0x00, 0x00, 0x00)},
	}
	for _, c := range cases {
		got, ok := ParseColor(tokenize(t, pool, c.src), pool)
		if !ok {
			t.Fatalf("%q: expected ok", c.src)
		}
		if got != c.want {
			t.Errorf("%q = %#x, want %#x", c.src, uint32(got), uint32(c.want))
		}
	}
}

func TestParseColor_HSLAWithAlpha(t *testing.T) {
	pool := strpool.New()
	got, ok := ParseColor(tokenize(t, pool, "hsla(0, 100%, 50%, 50%)"), pool)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.A() != 0x7f && got.A() != 0x80 {
		t.Errorf("alpha channel = %#x, want ~0x7f/0x80", got.A())
	}
}

func TestParseColor_CurrentColorKeyword(t *testing.T) {
	pool := strpool.New()
	if _, ok := ParseColor(tokenize(t, pool, "currentColor"), pool); !ok {
		t.Fatalf("expected currentColor to be recognized")
	}
}

func TestParseColor_UnsupportedHSLUnitRejected(t *testing.T) {
	pool := strpool.New()
	if _, ok := ParseColor(tokenize(t, pool, "hsl(0x, 100%, 50%)"), pool); ok {
		t.Fatalf("expected a malformed hsl() argument to be rejected")
	}
}
