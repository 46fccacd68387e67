package props

import (
	"testing"

	"cssbc/css/bytecode"
	"cssbc/css/lex"
	"cssbc/css/strpool"
)

func tokenize(t *testing.T, pool *strpool.Pool, src string) []lex.Token {
	t.Helper()
	bs := lex.NewByteSource()
	bs.Append([]byte(src))
	bs.Done()
	tk := lex.NewTokenizer(bs, pool, nil)
	var out []lex.Token
	for {
		tok, err := tk.Next()
		if err != nil {
			t.Fatalf("tokenizing %q: %v", src, err)
		}
		if tok.Kind == lex.KindEOF {
			return out
		}
		out = append(out, tok)
	}
}

func TestDispatch_SimpleColor(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "color", tokenize(t, pool, "red"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if buf.Len() != 2 {
		t.Fatalf("got %d words, want 2 (OPV + colour)", buf.Len())
	}
	words := buf.Words()
	if words[0].Opcode() != PropColor || words[0].Value() != TagColor {
		t.Errorf("unexpected OPV header: %+v", words[0])
	}
}

func TestDispatch_MarginFourValueExpansion(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "margin", tokenize(t, pool, "1px 2px 3px 4px"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// Each side writes a 3-word OPV+value+unit sequence.
	if buf.Len() != 12 {
		t.Fatalf("got %d words, want 12", buf.Len())
	}
	ops := []bytecode.Opcode{PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft}
	words := buf.Words()
	for i, op := range ops {
		if words[i*3].Opcode() != op {
			t.Errorf("side %d opcode = %d, want %d", i, words[i*3].Opcode(), op)
		}
	}
}

func TestDispatch_MarginTwoValueExpansion(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "margin", tokenize(t, pool, "1px 2px"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	words := buf.Words()
	// top=bottom=1px, right=left=2px
	if words[0*3].Opcode() != PropMarginTop || words[2*3].Opcode() != PropMarginBottom {
		t.Fatalf("unexpected opcode layout")
	}
	if words[0*3+1] != words[2*3+1] {
		t.Errorf("top and bottom should share the same value word")
	}
}

func TestDispatch_BorderRadiusSingleGroup(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "border-radius", tokenize(t, pool, "4px"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	// 4 corners * 5 words each (OPV, h-value, h-unit, v-value, v-unit).
	if buf.Len() != 20 {
		t.Fatalf("got %d words, want 20", buf.Len())
	}
}

func TestDispatch_BorderRadiusTwoGroups(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "border-radius", tokenize(t, pool, "4px 8px / 2px 6px"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if buf.Len() != 20 {
		t.Fatalf("got %d words, want 20", buf.Len())
	}
}

func TestDispatch_BackgroundSizeCoverKeyword(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "background-size", tokenize(t, pool, "cover"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	words := buf.Words()
	if words[0].Value() != TagKeyword {
		t.Errorf("expected a keyword tag for 'cover'")
	}
}

func TestDispatch_BackgroundSizeAutoAndPercentage(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "background-size", tokenize(t, pool, "auto 50%"), pool, false, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	words := buf.Words()
	if words[0].Value() != TagItemList {
		t.Fatalf("expected an item-list tag")
	}
	// OPV, ItemAuto, ItemValue, value, unit, ItemEnd
	if len(words) != 6 {
		t.Fatalf("got %d words, want 6: %v", len(words), words)
	}
	if words[1] != ItemAuto {
		t.Errorf("word 1 = %v, want ItemAuto", words[1])
	}
	if words[2] != ItemValue {
		t.Errorf("word 2 = %v, want ItemValue", words[2])
	}
	if words[5] != ItemEnd {
		t.Errorf("word 5 = %v, want ItemEnd", words[5])
	}
}

func TestDispatch_UnknownProperty(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "not-a-real-property", tokenize(t, pool, "1"), pool, false, Context{}); err == nil {
		t.Fatalf("expected an error for an unknown property")
	}
}

func TestDispatch_InvalidValueLeavesNothingUsableButReportsError(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	before := buf.Len()
	err := Dispatch(buf, "color", tokenize(t, pool, "not-a-colour-keyword"), pool, false, Context{})
	if err == nil {
		t.Fatalf("expected an error for a malformed colour value")
	}
	// Dispatch itself does not rewind (that is the caller's job per the
	// transactional-declaration contract), but it must not have
	// written a confusingly-valid-looking prefix either.
	if buf.Len() != before {
		t.Fatalf("Dispatch wrote %d word(s) for a rejected value", buf.Len()-before)
	}
}

func TestDispatch_Important(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	if err := Dispatch(buf, "color", tokenize(t, pool, "blue"), pool, true, Context{}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !buf.Words()[0].Important() {
		t.Errorf("expected the important flag to be set")
	}
}

func TestDispatch_ColorResolverFallback(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	res := Context{Color: func(name string) (uint32, bool) {
		if name == "brand" {
			return 0x336699, true
		}
		return 0, false
	}}
	if err := Dispatch(buf, "color", tokenize(t, pool, "brand"), pool, false, res); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	words := buf.Words()
	if words[0].Value() != TagColor {
		t.Fatalf("expected a colour tag")
	}
	if got := bytecode.Color(words[1]); got != bytecode.RGBA(0xff, 0x33, 0x66, 0x99) {
		t.Errorf("resolved colour = %#x, want %#x", uint32(got), uint32(bytecode.RGBA(0xff, 0x33, 0x66, 0x99)))
	}
}

func TestDispatch_ColorResolverDoesNotShadowNamedColors(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	called := false
	res := Context{Color: func(string) (uint32, bool) {
		called = true
		return 0, false
	}}
	if err := Dispatch(buf, "color", tokenize(t, pool, "red"), pool, false, res); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if called {
		t.Errorf("resolver should not be consulted once a named colour already matched")
	}
}

func TestDispatch_FontFamilyResolver(t *testing.T) {
	pool := strpool.New()
	buf := bytecode.NewBuffer()
	res := Context{Font: func(name string) (string, bool) {
		if name == "sans" {
			return "Helvetica Neue", true
		}
		return "", false
	}}
	if err := Dispatch(buf, "font-family", tokenize(t, pool, "sans"), pool, false, res); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	words := buf.Words()
	if words[0].Value() != TagString {
		t.Fatalf("expected a string tag")
	}
	if got := pool.Data(strpool.Handle(words[1])); got != "Helvetica Neue" {
		t.Errorf("resolved font-family = %q, want %q", got, "Helvetica Neue")
	}
}
