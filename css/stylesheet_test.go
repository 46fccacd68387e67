package css

import (
	"testing"

	"cssbc/css/props"
	"cssbc/css/strpool"
)

func parseAll(t *testing.T, src string) *Stylesheet {
	t.Helper()
	pool := strpool.New()
	sheet, err := NewStylesheet(pool, StylesheetParams{Level: Level3}, nil)
	if err != nil {
		t.Fatalf("NewStylesheet failed: %v", err)
	}
	if err := sheet.AppendData([]byte(src)); err != nil {
		t.Fatalf("AppendData failed: %v", err)
	}
	if err := sheet.DataDone(); err != nil {
		t.Logf("stylesheet had recoverable errors: %v", err)
	}
	return sheet
}

func TestStylesheet_SimpleRule(t *testing.T) {
	sheet := parseAll(t, "h1 { color: red; }")
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if len(rules[0].Selectors) != 1 || rules[0].Selectors[0].Raw != "h1" {
		t.Fatalf("unexpected selector: %+v", rules[0].Selectors)
	}
	if rules[0].Style.Len() != 2 {
		t.Fatalf("got %d words, want 2", rules[0].Style.Len())
	}
	if rules[0].Style.Words()[0].Opcode() != props.PropColor {
		t.Errorf("expected PropColor opcode")
	}
}

func TestStylesheet_MultipleSelectorsAndCombinators(t *testing.T) {
	sheet := parseAll(t, ".a, #b > c + d { }")
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if len(rules[0].Selectors) != 2 {
		t.Fatalf("got %d selectors, want 2", len(rules[0].Selectors))
	}
}

func TestStylesheet_BadDeclarationDoesNotPoisonSiblings(t *testing.T) {
	sheet := parseAll(t, "p { color: red; width: ; height: 10px; }")
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	words := rules[0].Style.Words()
	// color (2 words) + height (3 words) should both survive; the
	// empty width: declaration is dropped without corrupting them.
	if len(words) != 5 {
		t.Fatalf("got %d words, want 5 (bad declaration should be isolated): %v", len(words), words)
	}
	if words[0].Opcode() != props.PropColor {
		t.Errorf("first surviving opcode = %d, want PropColor", words[0].Opcode())
	}
	if words[2].Opcode() != props.PropHeight {
		t.Errorf("second surviving opcode = %d, want PropHeight", words[2].Opcode())
	}
	if sheet.Errors() == nil {
		t.Errorf("expected the malformed declaration to be recorded in Errors()")
	}
}

func TestStylesheet_ChunkingIsIdempotent(t *testing.T) {
	src := "div.card#hero { margin: 1px 2px 3px 4px; background-size: auto 50%; }"

	whole := parseAll(t, src)

	pool := strpool.New()
	chunked, err := NewStylesheet(pool, StylesheetParams{Level: Level3}, nil)
	if err != nil {
		t.Fatalf("NewStylesheet failed: %v", err)
	}
	for i := 0; i < len(src); i++ {
		if err := chunked.AppendData([]byte{src[i]}); err != nil {
			t.Fatalf("AppendData failed at byte %d: %v", i, err)
		}
	}
	if err := chunked.DataDone(); err != nil {
		t.Logf("chunked stylesheet had recoverable errors: %v", err)
	}

	if whole.Size() != chunked.Size() {
		t.Fatalf("whole-buffer Size()=%d, byte-at-a-time Size()=%d", whole.Size(), chunked.Size())
	}
	if len(whole.Rules()) != len(chunked.Rules()) {
		t.Fatalf("rule count differs: whole=%d chunked=%d", len(whole.Rules()), len(chunked.Rules()))
	}
}

func TestStylesheet_NamespaceDeclarationResolvesPrefixedSelectors(t *testing.T) {
	sheet := parseAll(t, `@namespace svg url(http://www.w3.org/2000/svg); svg|rect { width: 10px; }`)
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
}

func TestStylesheet_InlineStyleCompilesBareDeclarationList(t *testing.T) {
	pool := strpool.New()
	sheet, err := NewStylesheet(pool, StylesheetParams{Level: Level3, InlineStyle: true}, nil)
	if err != nil {
		t.Fatalf("NewStylesheet failed: %v", err)
	}
	if err := sheet.AppendData([]byte("color: red; width: 10px")); err != nil {
		t.Fatalf("AppendData failed: %v", err)
	}
	if err := sheet.DataDone(); err != nil {
		t.Fatalf("unexpected recoverable errors: %v", err)
	}
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if len(rules[0].Selectors) != 0 {
		t.Errorf("inline style should have no selectors, got %+v", rules[0].Selectors)
	}
	if rules[0].Style.Len() != 5 {
		t.Fatalf("got %d words, want 5 (color:2 + width:3)", rules[0].Style.Len())
	}
}

func TestStylesheet_CharsetMismatchIsRecorded(t *testing.T) {
	sheet, err := NewStylesheet(strpool.New(), StylesheetParams{Level: Level3, Charset: "utf-8"}, nil)
	if err != nil {
		t.Fatalf("NewStylesheet failed: %v", err)
	}
	if err := sheet.AppendData([]byte(`@charset "iso-8859-1"; p { color: red; }`)); err != nil {
		t.Fatalf("AppendData failed: %v", err)
	}
	if err := sheet.DataDone(); err == nil {
		t.Fatalf("expected a mismatched @charset to be recorded as an error")
	}
	if len(sheet.Rules()) != 1 {
		t.Fatalf("the ruleset following the bad @charset should still compile")
	}
}

func TestStylesheet_QuirksModeAcceptsUnitlessLength(t *testing.T) {
	sheet := parseAllWithParams(t, "td { width: 10; }", StylesheetParams{Level: Level3, AllowQuirks: true})
	rules := sheet.Rules()
	if len(rules) != 1 || rules[0].Style.Len() != 3 {
		t.Fatalf("expected a 3-word length declaration in quirks mode, got %+v", rules)
	}
}

func TestStylesheet_NonQuirksRejectsUnitlessLength(t *testing.T) {
	sheet := parseAll(t, "td { width: 10; }")
	if len(sheet.Rules()[0].Style.Words()) != 0 {
		t.Fatalf("expected the unitless length to be rejected outside quirks mode")
	}
	if sheet.Errors() == nil {
		t.Errorf("expected an error to be recorded for the rejected declaration")
	}
}

func parseAllWithParams(t *testing.T, src string, params StylesheetParams) *Stylesheet {
	t.Helper()
	sheet, err := NewStylesheet(strpool.New(), params, nil)
	if err != nil {
		t.Fatalf("NewStylesheet failed: %v", err)
	}
	if err := sheet.AppendData([]byte(src)); err != nil {
		t.Fatalf("AppendData failed: %v", err)
	}
	if err := sheet.DataDone(); err != nil {
		t.Logf("stylesheet had recoverable errors: %v", err)
	}
	return sheet
}

func TestStylesheet_NthChildRejectedBelowCSS3(t *testing.T) {
	sheet := parseAllWithParams(t, "li:nth-child(even) { color: red; }", StylesheetParams{Level: Level2})
	if len(sheet.Rules()) != 0 {
		t.Fatalf("expected the rule to be dropped below CSS3, got %+v", sheet.Rules())
	}
	if sheet.Errors() == nil {
		t.Errorf("expected an error to be recorded for the rejected selector")
	}
}

func TestStylesheet_NthChildAcceptedAtCSS3(t *testing.T) {
	sheet := parseAll(t, "li:nth-child(even) { color: red; }")
	if len(sheet.Rules()) != 1 {
		t.Fatalf("got %d rules, want 1", len(sheet.Rules()))
	}
}

func TestStylesheet_BorderRadiusShorthand(t *testing.T) {
	sheet := parseAll(t, "div { border-radius: 4px 8px 4px 8px / 2px; }")
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(rules))
	}
	if rules[0].Style.Len() != 20 {
		t.Fatalf("got %d words, want 20", rules[0].Style.Len())
	}
}
