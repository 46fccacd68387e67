// Package lex implements the streaming byte source and CSS tokenizer
// described in design notes §4.2–§4.3: a state machine that turns a
// growable byte window into a lazy sequence of tokens, returning
// ErrNeedData instead of failing when a token is truncated at the
// end of the currently buffered window and the source has not been
// marked Done.
package lex

import (
	"unicode/utf8"

	"go.uber.org/zap"

	"cssbc/css/cssbcerr"
	"cssbc/css/strpool"
)

// Tokenizer scans CSS 2.1/3 tokens out of a ByteSource. It holds no
// state that isn't trivially resumable: on ErrNeedData the caller
// Appends more bytes to the source and calls Next again; pos is
// restored to the start of the unfinished token, which is rescanned
// from there.
type Tokenizer struct {
	src  *ByteSource
	pool *strpool.Pool
	pos  int
	log  *zap.Logger
}

// NewTokenizer creates a tokenizer reading from src, interning
// lexemes into pool.
func NewTokenizer(src *ByteSource, pool *strpool.Pool, log *zap.Logger) *Tokenizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tokenizer{src: src, pool: pool, log: log}
}

// Pos reports the tokenizer's current offset within the source
// window, for callers that checkpoint/rewind (the parser's Token
// Vector machinery).
func (t *Tokenizer) Pos() int { return t.pos }

// Compact drops already-tokenized bytes from the front of the
// underlying source once the caller (the Language Parser, between
// statements) is certain nothing will rewind past them.
func (t *Tokenizer) Compact() {
	t.src.Compact(t.pos)
	t.pos = 0
}

func (t *Tokenizer) window() []byte { return t.src.Window() }

// byteAt returns the byte at pos+i and whether it is currently
// available. When unavailable and the source is not Done, the caller
// must return ErrNeedData.
func (t *Tokenizer) byteAt(i int) (byte, bool) {
	w := t.window()
	idx := t.pos + i
	if idx >= len(w) {
		return 0, false
	}
	return w[idx], true
}

func (t *Tokenizer) done() bool { return t.src.IsDone() }

// Next scans and returns the next token. At end of input (after Done)
// it returns a KindEOF token with a nil error, on this and every
// later call.
func (t *Tokenizer) Next() (tok Token, err error) {
	saved := t.pos
	defer func() {
		if err == cssbcerr.ErrNeedData {
			t.pos = saved
		}
	}()

	b, ok := t.byteAt(0)
	if !ok {
		if t.done() {
			return Token{Kind: KindEOF, Offset: t.absPos()}, nil
		}
		return Token{}, cssbcerr.ErrNeedData
	}

	start := t.absPos()

	switch {
	case isWhitespace(b):
		return t.scanWhitespace(start)
	case b == '/' :
		nb, ok := t.byteAt(1)
		if ok && nb == '*' {
			return t.scanComment(start)
		}
		if !ok && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: '/', Offset: start}, nil
	case b == '"' || b == '\'':
		return t.scanString(b, start)
	case b == '#':
		return t.scanHash(start)
	case b == '(':
		t.pos++
		return Token{Kind: KindLParen, Offset: start}, nil
	case b == ')':
		t.pos++
		return Token{Kind: KindRParen, Offset: start}, nil
	case b == '[':
		t.pos++
		return Token{Kind: KindLBracket, Offset: start}, nil
	case b == ']':
		t.pos++
		return Token{Kind: KindRBracket, Offset: start}, nil
	case b == '{':
		t.pos++
		return Token{Kind: KindLBrace, Offset: start}, nil
	case b == '}':
		t.pos++
		return Token{Kind: KindRBrace, Offset: start}, nil
	case b == ':':
		t.pos++
		return Token{Kind: KindColon, Offset: start}, nil
	case b == ';':
		t.pos++
		return Token{Kind: KindSemicolon, Offset: start}, nil
	case b == ',':
		t.pos++
		return Token{Kind: KindComma, Offset: start}, nil
	case b == '+' || b == '.':
		if t.startsNumber(0) {
			return t.scanNumeric(start)
		}
		if !t.haveNumberLookahead(0) && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: rune(b), Offset: start}, nil
	case b == '-':
		return t.scanMinus(start)
	case b == '<':
		if t.matches(0, "<!--") {
			t.pos += 4
			return Token{Kind: KindCDO, Offset: start}, nil
		}
		if len(t.window())-t.pos < 4 && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: '<', Offset: start}, nil
	case b == '@':
		return t.scanAtKeyword(start)
	case b == '\\':
		if t.validEscapeAt(0) {
			return t.scanIdentLike(start)
		}
		if !t.haveEscapeLookahead(0) && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindInvalid, Ch: '\\', Offset: start}, nil
	case isDigit(b):
		return t.scanNumeric(start)
	case isNameStart(b):
		return t.scanIdentLike(start)
	case b == '0':
		return t.scanNumeric(start)
	default:
		if b >= 0x80 {
			return t.scanIdentLike(start)
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: rune(b), Offset: start}, nil
	}
}

func (t *Tokenizer) absPos() int { return t.src.Base() + t.pos }

func (t *Tokenizer) matches(off int, s string) bool {
	for i := 0; i < len(s); i++ {
		b, ok := t.byteAt(off + i)
		if !ok {
			return false
		}
		if b != s[i] {
			return false
		}
	}
	return true
}

// --- whitespace & comments ---

func (t *Tokenizer) scanWhitespace(start int) (Token, error) {
	i := 0
	for {
		b, ok := t.byteAt(i)
		if !ok {
			if !t.done() {
				// more whitespace might follow; safe to stop here too,
				// but prefer to coalesce runs when possible.
				break
			}
			break
		}
		if !isWhitespace(b) {
			break
		}
		i++
	}
	t.pos += i
	return Token{Kind: KindWhitespace, Offset: start}, nil
}

func (t *Tokenizer) scanComment(start int) (Token, error) {
	i := 2 // past "/*"
	for {
		b, ok := t.byteAt(i)
		if !ok {
			if t.done() {
				// Unterminated comment: consume to EOF.
				t.pos = len(t.window())
				return Token{Kind: KindComment, Offset: start}, nil
			}
			return Token{}, cssbcerr.ErrNeedData
		}
		if b == '*' {
			if nb, ok := t.byteAt(i + 1); ok && nb == '/' {
				i += 2
				t.pos += i
				return Token{Kind: KindComment, Offset: start}, nil
			}
			if !ok && !t.done() {
				return Token{}, cssbcerr.ErrNeedData
			}
		}
		i++
	}
}

// --- strings ---

func (t *Tokenizer) scanString(quote byte, start int) (Token, error) {
	i := 1
	var raw []byte
	for {
		b, ok := t.byteAt(i)
		if !ok {
			if t.done() {
				// EOF before closing quote: per spec, treat what we have
				// as the string (recovery), not a hard failure.
				t.pos += i
				return Token{Kind: KindString, Lexeme: t.pool.InternBytes(raw), Offset: start}, nil
			}
			return Token{}, cssbcerr.ErrNeedData
		}
		switch {
		case b == quote:
			i++
			t.pos += i
			return Token{Kind: KindString, Lexeme: t.pool.InternBytes(raw), Offset: start}, nil
		case b == '\n':
			// Bad string: unescaped newline inside the string. Recovery:
			// treat token as INVALID and stop before the newline so the
			// parser can resynchronize on it.
			t.pos += i
			return Token{Kind: KindInvalid, Offset: start}, nil
		case b == '\\':
			nb, ok := t.byteAt(i + 1)
			if !ok {
				if t.done() {
					i++
					t.pos += i
					return Token{Kind: KindString, Lexeme: t.pool.InternBytes(raw), Offset: start}, nil
				}
				return Token{}, cssbcerr.ErrNeedData
			}
			if nb == '\n' {
				// Escaped newline: line continuation, contributes nothing.
				i += 2
				continue
			}
			r, consumed, needData := t.decodeEscapeAt(i)
			if needData {
				return Token{}, cssbcerr.ErrNeedData
			}
			raw = utf8.AppendRune(raw, r)
			i += consumed
		default:
			raw = append(raw, b)
			i++
		}
	}
}

// --- hash ---

func (t *Tokenizer) scanHash(start int) (Token, error) {
	// '#' followed by a name char or valid escape starts a hash token.
	nb, ok := t.byteAt(1)
	if !ok {
		if !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: '#', Offset: start}, nil
	}
	if !isNameChar(nb) && nb != '\\' {
		t.pos++
		return Token{Kind: KindDelim, Ch: '#', Offset: start}, nil
	}
	if nb == '\\' && !t.validEscapeAt(1) {
		if !t.haveEscapeLookahead(1) && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: '#', Offset: start}, nil
	}

	if !t.identLookaheadReady(1) && !t.done() {
		return Token{}, cssbcerr.ErrNeedData
	}
	ht := HashUnrestricted
	if t.identStartsAt(1) {
		ht = HashID
	}

	t.pos++ // consume '#'
	name, _, err := t.scanName()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: KindHash, Lexeme: t.pool.InternBytes(name), Hash: ht, Offset: start}, nil
}

// --- at-keyword ---

func (t *Tokenizer) scanAtKeyword(start int) (Token, error) {
	// '@' followed by an identifier starts an at-keyword.
	if !t.identStartsAt(1) {
		if !t.identLookaheadReady(1) && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
		t.pos++
		return Token{Kind: KindDelim, Ch: '@', Offset: start}, nil
	}
	t.pos++ // consume '@'
	name, _, err := t.scanName()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: KindAtKeyword, Lexeme: t.pool.InternBytes(lower(name)), Offset: start}, nil
}

// --- minus: could start an identifier (-foo, --custom-prop), a
// number (-5px), or CDC ("-->"), or a bare DELIM.

func (t *Tokenizer) scanMinus(start int) (Token, error) {
	if t.matches(0, "-->") {
		t.pos += 3
		return Token{Kind: KindCDC, Offset: start}, nil
	}
	if t.startsNumber(0) {
		return t.scanNumeric(start)
	}
	if t.identStartsAt(0) {
		return t.scanIdentLike(start)
	}
	if !t.numberOrIdentLookaheadReady(0) && !t.done() {
		return Token{}, cssbcerr.ErrNeedData
	}
	t.pos++
	return Token{Kind: KindDelim, Ch: '-', Offset: start}, nil
}

// --- numbers ---

// startsNumber reports whether the bytes starting at offset off (from
// pos) begin a <number-token> per the CSS syntax's number-start
// check: optional sign, then either a digit, or '.' followed by a
// digit.
func (t *Tokenizer) startsNumber(off int) bool {
	i := off
	if b, ok := t.byteAt(i); ok && (b == '+' || b == '-') {
		i++
	}
	b, ok := t.byteAt(i)
	if !ok {
		return false
	}
	if isDigit(b) {
		return true
	}
	if b == '.' {
		nb, ok := t.byteAt(i + 1)
		return ok && isDigit(nb)
	}
	return false
}

func (t *Tokenizer) haveNumberLookahead(off int) bool {
	// True once we can conclusively decide startsNumber's answer.
	i := off
	if b, ok := t.byteAt(i); ok && (b == '+' || b == '-') {
		i++
	}
	b, ok := t.byteAt(i)
	if !ok {
		return false
	}
	if b != '.' {
		return true
	}
	_, ok = t.byteAt(i + 1)
	return ok
}

func (t *Tokenizer) scanNumeric(start int) (Token, error) {
	i := 0
	if b, ok := t.byteAt(i); ok && (b == '+' || b == '-') {
		i++
	}
	hasInt := true
	for {
		b, ok := t.byteAt(i)
		if !ok {
			if !t.done() {
				return Token{}, cssbcerr.ErrNeedData
			}
			break
		}
		if !isDigit(b) {
			break
		}
		i++
	}
	if b, ok := t.byteAt(i); ok && b == '.' {
		if nb, ok := t.byteAt(i + 1); ok && isDigit(nb) {
			hasInt = false
			i += 2
			for {
				b, ok := t.byteAt(i)
				if !ok {
					if !t.done() {
						return Token{}, cssbcerr.ErrNeedData
					}
					break
				}
				if !isDigit(b) {
					break
				}
				i++
			}
		} else if !ok && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
	}
	// Optional exponent.
	if b, ok := t.byteAt(i); ok && (b == 'e' || b == 'E') {
		j := i + 1
		if sb, ok := t.byteAt(j); ok && (sb == '+' || sb == '-') {
			j++
		}
		if db, ok := t.byteAt(j); ok && isDigit(db) {
			hasInt = false
			j++
			for {
				b, ok := t.byteAt(j)
				if !ok {
					if !t.done() {
						return Token{}, cssbcerr.ErrNeedData
					}
					break
				}
				if !isDigit(b) {
					break
				}
				j++
			}
			i = j
		} else if !ok && !t.done() {
			return Token{}, cssbcerr.ErrNeedData
		}
	}

	raw := string(t.window()[t.pos : t.pos+i])
	val, ok := ParseFixed(raw)
	if !ok {
		// Overflow: emit INVALID rather than a bogus number; the
		// property parser that consumes it will fail the declaration.
		t.pos += i
		return Token{Kind: KindInvalid, Offset: start}, nil
	}

	// Percentage?
	if b, ok := t.byteAt(i); ok && b == '%' {
		t.pos += i + 1
		return Token{Kind: KindPercentage, Num: val, Offset: start}, nil
	}
	if !ok && !t.done() {
		return Token{}, cssbcerr.ErrNeedData
	}

	// Dimension? (ident follows immediately)
	if t.identStartsAt(i) {
		t.pos += i
		unit, _, err := t.scanName()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindDimension, Num: val, Unit: t.pool.InternBytes(lower(unit)), HasInt: hasInt, Offset: start}, nil
	}
	if !t.identLookaheadReady(i) && !t.done() {
		return Token{}, cssbcerr.ErrNeedData
	}

	t.pos += i
	return Token{Kind: KindNumber, Num: val, HasInt: hasInt, Offset: start}, nil
}

// --- identifiers, functions, url() ---

// identStartsAt reports whether an identifier begins at pos+off:
// a name-start code point, or '-' followed by a name-start/'-'/escape,
// or a valid escape.
func (t *Tokenizer) identStartsAt(off int) bool {
	b, ok := t.byteAt(off)
	if !ok {
		return false
	}
	switch {
	case isNameStart(b):
		return true
	case b == '-':
		nb, ok := t.byteAt(off + 1)
		if !ok {
			return false
		}
		if isNameStart(nb) || nb == '-' {
			return true
		}
		if nb == '\\' {
			return t.validEscapeAt(off + 1)
		}
		return false
	case b == '\\':
		return t.validEscapeAt(off)
	default:
		return b >= 0x80
	}
}

func (t *Tokenizer) identLookaheadReady(off int) bool {
	b, ok := t.byteAt(off)
	if !ok {
		return false
	}
	if b != '-' && b != '\\' {
		return true
	}
	if b == '-' {
		nb, ok := t.byteAt(off + 1)
		if !ok {
			return false
		}
		if nb != '\\' {
			return true
		}
		return t.haveEscapeLookahead(off + 1)
	}
	return t.haveEscapeLookahead(off)
}

func (t *Tokenizer) numberOrIdentLookaheadReady(off int) bool {
	return t.haveNumberLookahead(off) && t.identLookaheadReady(off)
}

// validEscapeAt reports whether a valid escape sequence (backslash
// not followed by a newline) begins at pos+off. Requires the next
// byte to be buffered.
func (t *Tokenizer) validEscapeAt(off int) bool {
	b, ok := t.byteAt(off)
	if !ok || b != '\\' {
		return false
	}
	nb, ok := t.byteAt(off + 1)
	if !ok {
		return false
	}
	return nb != '\n'
}

func (t *Tokenizer) haveEscapeLookahead(off int) bool {
	_, ok := t.byteAt(off + 1)
	return ok
}

// scanName consumes a <name> (sequence of name chars and escapes)
// starting at pos, returning the decoded bytes (with escapes
// resolved) and whether every character was a plain name char (no
// escape was used).
func (t *Tokenizer) scanName() ([]byte, bool, error) {
	var out []byte
	plain := true
	i := 0
	for {
		b, ok := t.byteAt(i)
		if !ok {
			if t.done() {
				break
			}
			return nil, false, cssbcerr.ErrNeedData
		}
		if isNameChar(b) {
			out = append(out, b)
			i++
			continue
		}
		if b >= 0x80 {
			_, size := utf8.DecodeRune(t.window()[t.pos+i:])
			out = append(out, t.window()[t.pos+i:t.pos+i+size]...)
			i += size
			continue
		}
		if b == '\\' {
			if !t.validEscapeAt(i) {
				if !t.haveEscapeLookahead(i) && !t.done() {
					return nil, false, cssbcerr.ErrNeedData
				}
				break
			}
			r, consumed, needData := t.decodeEscapeAt(i)
			if needData {
				return nil, false, cssbcerr.ErrNeedData
			}
			out = utf8.AppendRune(out, r)
			i += consumed
			plain = false
			continue
		}
		break
	}
	t.pos += i
	return out, plain, nil
}

// decodeEscapeAt decodes the escape sequence starting at pos+i
// (pointing at the backslash) and returns the resulting rune, the
// number of source bytes it consumed, and whether more data is
// needed before the escape's extent can be determined.
func (t *Tokenizer) decodeEscapeAt(i int) (rune, int, bool) {
	// i points at '\\'.
	first, ok := t.byteAt(i + 1)
	if !ok {
		return 0, 0, !t.done()
	}
	if !isHexDigit(first) {
		if first == 0 {
			return 0xFFFD, 2, false
		}
		r, size := utf8.DecodeRune(t.window()[t.pos+i+1:])
		if r == utf8.RuneError && size <= 1 {
			return 0xFFFD, 2, false
		}
		return r, 1 + size, false
	}
	// Up to 6 hex digits.
	j := i + 1
	for n := 0; n < 6; n++ {
		b, ok := t.byteAt(j)
		if !ok {
			if !t.done() {
				return 0, 0, true
			}
			break
		}
		if !isHexDigit(b) {
			break
		}
		j++
	}
	hexLen := j - (i + 1)
	hexStr := string(t.window()[t.pos+i+1 : t.pos+i+1+hexLen])
	cp := parseHex(hexStr)
	// One optional trailing whitespace char is consumed as part of the escape.
	if wb, ok := t.byteAt(j); ok && isWhitespace(wb) {
		j++
	} else if !ok && !t.done() {
		return 0, 0, true
	}
	if cp == 0 || cp > 0x10FFFF || (cp >= 0xD800 && cp <= 0xDFFF) {
		cp = 0xFFFD
	}
	return rune(cp), j - i, false
}

// scanIdentLike scans an identifier, function token, url(...) token,
// or unicode-range token, all of which begin with a name-start
// character, '-', or an escape.
func (t *Tokenizer) scanIdentLike(start int) (Token, error) {
	// Special-case unicode-range: u+XXXXXX / U+??????.
	if (t.matchesCI(0, "u") ) {
		if tok, matched, err := t.tryScanUnicodeRange(start); matched {
			return tok, err
		} else if err != nil {
			return Token{}, err
		}
	}

	name, _, err := t.scanName()
	if err != nil {
		return Token{}, err
	}

	b, ok := t.byteAt(0)
	if ok && b == '(' {
		if string(lower(name)) == "url" {
			return t.scanURL(start, name)
		}
		t.pos++ // consume '('
		return Token{Kind: KindFunction, Lexeme: t.pool.InternBytes(lower2(name)), Offset: start}, nil
	}
	if !ok && !t.done() {
		return Token{}, cssbcerr.ErrNeedData
	}
	return Token{Kind: KindIdent, Lexeme: t.pool.InternBytes(name), Offset: start}, nil
}

func (t *Tokenizer) matchesCI(off int, s string) bool {
	for i := 0; i < len(s); i++ {
		b, ok := t.byteAt(off + i)
		if !ok {
			return false
		}
		if lowerByte(b) != s[i] {
			return false
		}
	}
	return true
}

// tryScanUnicodeRange attempts to scan "u+<hex/?>..." at pos. matched
// is false if the input doesn't fit that shape (caller falls back to
// a normal identifier scan); err carries ErrNeedData.
func (t *Tokenizer) tryScanUnicodeRange(start int) (tok Token, matched bool, err error) {
	nb, ok := t.byteAt(1)
	if !ok {
		if t.done() {
			return Token{}, false, nil
		}
		return Token{}, false, cssbcerr.ErrNeedData
	}
	if nb != '+' {
		return Token{}, false, nil
	}
	i := 2
	digits := 0
	questionSeen := false
	for digits+boolToInt(questionSeen) < 6 {
		b, ok := t.byteAt(i)
		if !ok {
			if !t.done() {
				return Token{}, true, cssbcerr.ErrNeedData
			}
			break
		}
		if isHexDigit(b) && !questionSeen {
			i++
			digits++
			continue
		}
		if b == '?' {
			questionSeen = true
			i++
			digits++
			continue
		}
		break
	}
	if digits == 0 {
		return Token{}, false, nil
	}
	loStr := string(t.window()[t.pos+2 : t.pos+i])
	if questionSeen {
		lo := parseHex(stringsReplaceQ(loStr, '0'))
		hi := parseHex(stringsReplaceQ(loStr, 'F'))
		t.pos += i
		return Token{Kind: KindUnicodeRange, RangeLo: lo, RangeHi: hi, Offset: start}, true, nil
	}
	lo := parseHex(loStr)
	hi := lo
	// Optional explicit range "-<hex>".
	if b, ok := t.byteAt(i); ok && b == '-' {
		j := i + 1
		hexStart := j
		for j-hexStart < 6 {
			hb, ok := t.byteAt(j)
			if !ok {
				if !t.done() {
					return Token{}, true, cssbcerr.ErrNeedData
				}
				break
			}
			if !isHexDigit(hb) {
				break
			}
			j++
		}
		if j > hexStart {
			hi = parseHex(string(t.window()[t.pos+hexStart : t.pos+j]))
			i = j
		}
	} else if !ok && !t.done() {
		return Token{}, true, cssbcerr.ErrNeedData
	}
	t.pos += i
	return Token{Kind: KindUnicodeRange, RangeLo: lo, RangeHi: hi, Offset: start}, true, nil
}

// scanURL scans the remainder of a url(...) token after the ident
// text "url" has been consumed and the current byte is '('. Quoted
// URLs (url("...") / url('...')) are handled by re-using the string
// scanner; unquoted URLs are scanned per the CSS <url-token> grammar.
func (t *Tokenizer) scanURL(start int, _ []byte) (Token, error) {
	t.pos++ // consume '('
	// Skip leading whitespace.
	for {
		b, ok := t.byteAt(0)
		if !ok {
			if !t.done() {
				return Token{}, cssbcerr.ErrNeedData
			}
			break
		}
		if !isWhitespace(b) {
			break
		}
		t.pos++
	}
	if b, ok := t.byteAt(0); ok && (b == '"' || b == '\'') {
		inner, err := t.scanString(b, start)
		if err != nil {
			return Token{}, err
		}
		// Skip trailing whitespace then the closing paren.
		for {
			b, ok := t.byteAt(0)
			if !ok {
				if !t.done() {
					return Token{}, cssbcerr.ErrNeedData
				}
				break
			}
			if !isWhitespace(b) {
				break
			}
			t.pos++
		}
		if b, ok := t.byteAt(0); ok && b == ')' {
			t.pos++
		}
		return Token{Kind: KindURI, Lexeme: inner.Lexeme, Offset: start}, nil
	}

	var raw []byte
	for {
		b, ok := t.byteAt(0)
		if !ok {
			if t.done() {
				break
			}
			return Token{}, cssbcerr.ErrNeedData
		}
		if b == ')' {
			t.pos++
			break
		}
		if isWhitespace(b) {
			t.pos++
			for {
				wb, ok := t.byteAt(0)
				if !ok {
					if !t.done() {
						return Token{}, cssbcerr.ErrNeedData
					}
					break
				}
				if !isWhitespace(wb) {
					break
				}
				t.pos++
			}
			if cb, ok := t.byteAt(0); ok && cb == ')' {
				t.pos++
			}
			break
		}
		if b == '\\' {
			if !t.validEscapeAt(0) {
				if !t.haveEscapeLookahead(0) && !t.done() {
					return Token{}, cssbcerr.ErrNeedData
				}
				t.pos++
				continue
			}
			r, consumed, needData := t.decodeEscapeAt(0)
			if needData {
				return Token{}, cssbcerr.ErrNeedData
			}
			raw = utf8.AppendRune(raw, r)
			t.pos += consumed
			continue
		}
		raw = append(raw, b)
		t.pos++
	}
	return Token{Kind: KindURI, Lexeme: t.pool.InternBytes(raw), Offset: start}, nil
}

// --- helpers ---

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' || b >= 0x80
}

func isNameChar(b byte) bool {
	return isNameStart(b) || isDigit(b) || b == '-'
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func lower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = lowerByte(c)
	}
	return out
}

// lower2 exists only so the call site that interns a freshly-scanned
// function name for case-insensitive lookup reads distinctly from
// those preserving case (string values).
func lower2(b []byte) []byte { return lower(b) }

func parseHex(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		}
		v = v*16 + d
	}
	return v
}

func stringsReplaceQ(s string, with byte) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '?' {
			out[i] = with
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
