package lex

import (
	"cssbc/css/strpool"
	"testing"
)

func allTokens(t *testing.T, tk *Tokenizer) []Token {
	t.Helper()
	var out []Token
	for {
		tok, err := tk.Next()
		if err == nil && tok.Kind == KindEOF {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected tokenizer error: %v", err)
		}
		out = append(out, tok)
	}
}

func TestTokenizer_BasicRuleset(t *testing.T) {
	pool := strpool.New()
	src := NewByteSource()
	src.Append([]byte("h1 { color: red; }"))
	src.Done()
	tk := NewTokenizer(src, pool, nil)

	toks := allTokens(t, tk)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []Kind{
		KindIdent, KindWhitespace, KindLBrace, KindWhitespace,
		KindIdent, KindColon, KindWhitespace, KindIdent, KindSemicolon,
		KindWhitespace, KindRBrace,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestTokenizer_NeedsDataAcrossChunkBoundary(t *testing.T) {
	pool := strpool.New()
	src := NewByteSource()
	tk := NewTokenizer(src, pool, nil)

	// "background" split mid-identifier: must not emit a token until
	// more data (or Done) arrives.
	src.Append([]byte("back"))
	tok, err := tk.Next()
	if err == nil {
		t.Fatalf("expected ErrNeedData for a split identifier, got token %v", tok)
	}

	src.Append([]byte("ground"))
	src.Done()
	tok, err = tk.Next()
	if err != nil {
		t.Fatalf("unexpected error after remaining data arrived: %v", err)
	}
	if tok.Kind != KindIdent || pool.Data(tok.Lexeme) != "background" {
		t.Fatalf("got %s %q, want IDENT \"background\"", tok.Kind, pool.Data(tok.Lexeme))
	}
}

func TestTokenizer_ChunkingIsIdempotent(t *testing.T) {
	pool1 := strpool.New()
	src1 := NewByteSource()
	src1.Append([]byte(".a, #b > c + d { margin: 1px 2px; }"))
	src1.Done()
	whole := allTokens(t, NewTokenizer(src1, pool1, nil))

	pool2 := strpool.New()
	src2 := NewByteSource()
	tk2 := NewTokenizer(src2, pool2, nil)
	input := ".a, #b > c + d { margin: 1px 2px; }"
	var chunked []Token
	for i := 0; i < len(input); i++ {
		src2.Append([]byte{input[i]})
		if i == len(input)-1 {
			src2.Done()
		}
		for {
			tok, err := tk2.Next()
			if err != nil {
				break
			}
			if tok.Kind == KindEOF {
				break
			}
			chunked = append(chunked, tok)
		}
	}

	if len(whole) != len(chunked) {
		t.Fatalf("byte-at-a-time tokenization produced %d tokens, whole-buffer produced %d", len(chunked), len(whole))
	}
	for i := range whole {
		if whole[i].Kind != chunked[i].Kind {
			t.Errorf("token %d kind mismatch: whole=%s chunked=%s", i, whole[i].Kind, chunked[i].Kind)
		}
	}
}

func TestTokenizer_UnterminatedStringAtEOF(t *testing.T) {
	pool := strpool.New()
	src := NewByteSource()
	src.Append([]byte(`"abc`))
	src.Done()
	tk := NewTokenizer(src, pool, nil)

	tok, err := tk.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != KindString {
		t.Errorf("got %s, want STRING finalized at EOF", tok.Kind)
	}
	if pool.Data(tok.Lexeme) != "abc" {
		t.Errorf("got lexeme %q, want \"abc\"", pool.Data(tok.Lexeme))
	}
}

func TestTokenizer_HashDistinguishesIDFromUnrestricted(t *testing.T) {
	pool := strpool.New()
	src := NewByteSource()
	src.Append([]byte("#a1 #1a"))
	src.Done()
	tk := NewTokenizer(src, pool, nil)

	toks := allTokens(t, tk)
	var hashes []Token
	for _, tok := range toks {
		if tok.Kind == KindHash {
			hashes = append(hashes, tok)
		}
	}
	if len(hashes) != 2 {
		t.Fatalf("expected 2 HASH tokens, got %d", len(hashes))
	}
	if hashes[0].Hash != HashID {
		t.Errorf("#a1 should be HashID")
	}
	if hashes[1].Hash != HashUnrestricted {
		t.Errorf("#1a should be HashUnrestricted")
	}
}
