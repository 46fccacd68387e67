// Package css implements the Language Parser and lifecycle API of
// design notes §4.4 and §4.8: a stylesheet is fed chunks of raw bytes
// as they arrive and, as each rule's tokens become available,
// compiles it into a Rule carrying its selectors and bytecode.
package css

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssbc/css/bytecode"
	"cssbc/css/cssbcerr"
	"cssbc/css/lex"
	"cssbc/css/props"
	"cssbc/css/selector"
	"cssbc/css/strpool"
)

// Level selects the dialect subset recognized during parsing, per
// design notes §3's "level gates feature surface, not tokenizer
// behavior" decision: the tokenizer and declaration grammar are
// unaffected by Level, but CSS3-only selector syntax (:not(),
// :nth-child() and its siblings) is rejected below Level3, dropping
// the offending rule the same way an unrecognized pseudo-class would.
type Level int

const (
	Level1 Level = iota
	Level2
	Level21
	Level3
)

// StylesheetParams configures a Stylesheet at construction. Resolve,
// Import, Color and Font are supplied by the embedding application —
// this package never performs network or filesystem I/O itself.
type StylesheetParams struct {
	Level       Level `validate:"gte=0,lte=3"`
	Charset     string
	URL         string `validate:"omitempty,uri"`
	Title       string
	AllowQuirks bool
	InlineStyle bool

	Resolve func(base, relative string) (string, error)
	Import  func(url string) ([]byte, error)
	Color   func(name string) (uint32, bool)
	Font    func(name string) (string, bool)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rule is one compiled ruleset: its selector list and the bytecode
// produced from its declaration block.
type Rule struct {
	Selectors []selector.Selector
	Style     *bytecode.Buffer
}

// Stylesheet accumulates bytes across AppendData calls and compiles
// completed rules incrementally, per the streaming "needs-data"
// contract of §5: no call blocks waiting for more input, and the same
// byte stream split at any chunk boundary produces identical Rules.
type Stylesheet struct {
	id     uuid.UUID
	pool   *strpool.Pool
	params StylesheetParams
	log    *zap.Logger

	src *lex.ByteSource
	tok *lex.Tokenizer
	vec *lex.Vector

	namespaces map[string]string
	rules      []Rule
	closed     bool
	statements int

	errs error // accumulated via multierr; does not stop parsing
}

// NewStylesheet validates params and creates an empty Stylesheet
// ready to receive AppendData calls.
func NewStylesheet(pool *strpool.Pool, params StylesheetParams, log *zap.Logger) (*Stylesheet, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if pool == nil {
		return nil, fmt.Errorf("css: %w: pool must not be nil", cssbcerr.ErrBadParam)
	}
	if err := validate.Struct(params); err != nil {
		return nil, fmt.Errorf("css: invalid stylesheet params: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	src := lex.NewByteSource()
	return &Stylesheet{
		id:         id,
		pool:       pool,
		params:     params,
		log:        log,
		src:        src,
		tok:        lex.NewTokenizer(src, pool, log),
		vec:        lex.NewVector(),
		namespaces: make(map[string]string),
	}, nil
}

// AppendData feeds the next chunk of the stylesheet's source bytes.
// Every rule that becomes fully bracket-balanced as a result is
// compiled immediately. A malformed rule is recorded (via multierr)
// and skipped without aborting the rest of the stream, per the
// Language Parser's per-rule error recovery.
func (s *Stylesheet) AppendData(b []byte) error {
	if s.closed {
		return fmt.Errorf("css: %w: stylesheet already closed", cssbcerr.ErrClosed)
	}
	s.src.Append(b)
	return s.drain()
}

// DataDone signals end of input and tokenizes whatever bytes remain
// buffered (a stylesheet need not end with a trailing newline or
// whitespace to be valid). A statement still unterminated at end of
// input (no closing '}' or ';') is not compiled. In InlineStyle mode the whole
// token stream is a single bare declaration list (no selectors, no
// '{'/'}'), so it is compiled here as one Rule once every byte has
// arrived.
func (s *Stylesheet) DataDone() error {
	if s.closed {
		return fmt.Errorf("css: %w: stylesheet already closed", cssbcerr.ErrClosed)
	}
	s.src.Done()
	if err := s.drain(); err != nil {
		return err
	}
	if s.params.InlineStyle {
		s.compileInlineStyle()
	}
	s.closed = true
	return s.errs
}

// compileInlineStyle treats the accumulated token stream as one
// element style attribute's declaration list, grounded on the same
// transactional compileDeclaration used for a normal ruleset's body.
func (s *Stylesheet) compileInlineStyle() {
	toks := trimWS(s.vec.All())
	s.vec.Reset()
	if len(toks) == 0 {
		return
	}
	buf := bytecode.NewBuffer()
	for _, declToks := range splitDeclarations(toks) {
		s.compileDeclaration(buf, declToks)
	}
	s.rules = append(s.rules, Rule{Style: buf})
}

// Size reports the number of compiled bytecode words across every
// rule, for capacity planning by callers (§4.8).
func (s *Stylesheet) Size() int {
	n := 0
	for _, r := range s.rules {
		n += r.Style.Len()
	}
	return n
}

// Rules exposes the compiled rules in source order.
func (s *Stylesheet) Rules() []Rule { return s.rules }

// ID identifies this stylesheet instance for log correlation across
// AppendData calls and any @import children it spawns.
func (s *Stylesheet) ID() uuid.UUID { return s.id }

// Title returns the stylesheet's title as supplied in
// StylesheetParams, e.g. from an HTML <link title="..."> attribute
// selecting among alternate stylesheets. This package never
// interprets it.
func (s *Stylesheet) Title() string { return s.params.Title }

// Destroy drops the compiled rules and closes the stylesheet. It does
// not Unref the pool handles interned while parsing, so their
// refcounts are unchanged. The pool itself is owned by the caller and
// is not destroyed here.
func (s *Stylesheet) Destroy() error {
	s.rules = nil
	s.closed = true
	return nil
}

// drain tokenizes as far as the buffered bytes allow, feeding each
// token into the running statement Vector, and compiles a rule every
// time brace depth returns to zero. In InlineStyle mode there is no
// selector/ruleset structure to split on, so every token is simply
// buffered for compileInlineStyle to split into declarations once
// DataDone is called.
func (s *Stylesheet) drain() error {
	// The statement in progress may span earlier AppendData calls, so
	// its brace depth is recounted from the tokens already buffered.
	depth := 0
	for _, t := range s.vec.All() {
		switch t.Kind {
		case lex.KindLBrace:
			depth++
		case lex.KindRBrace:
			if depth > 0 {
				depth--
			}
		}
	}
	for {
		tk, err := s.tok.Next()
		if err == cssbcerr.ErrNeedData {
			return nil
		}
		if err != nil {
			return fmt.Errorf("css: tokenizing: %w", err)
		}
		if tk.Kind == lex.KindEOF {
			return nil
		}
		if s.params.InlineStyle {
			s.vec.Append(tk)
			continue
		}

		switch tk.Kind {
		case lex.KindLBrace:
			depth++
		case lex.KindRBrace:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				s.vec.Append(tk)
				s.finishStatement()
				continue
			}
		case lex.KindSemicolon:
			if depth == 0 {
				s.vec.Append(tk)
				s.finishStatement()
				continue
			}
		}
		s.vec.Append(tk)
	}
}

// finishStatement compiles the buffered Vector as one top-level
// statement (an @-rule terminated by ';', or a ruleset terminated by
// its closing '}') and resets the Vector for the next one.
func (s *Stylesheet) finishStatement() {
	s.tok.Compact()
	toks := s.vec.All()
	defer s.vec.Reset()

	toks = trimWS(toks)
	if len(toks) == 0 {
		return
	}
	s.statements++

	if toks[0].Kind == lex.KindAtKeyword {
		s.handleAtRule(toks)
		return
	}

	s.handleRuleset(toks)
}

func (s *Stylesheet) handleAtRule(toks []lex.Token) {
	name := strings.ToLower(s.pool.Data(toks[0].Lexeme))
	body := trimWS(toks[1 : len(toks)-1])

	switch name {
	case "charset":
		s.handleCharset(body)
	case "namespace":
		s.handleNamespace(body)
	case "import":
		s.handleImport(body)
	case "media", "font-face", "page":
		// Nested block at-rules: the inner ruleset list is not
		// re-entered by drain's flat brace counter, so their bodies
		// are compiled as plain rulesets here, one level down. The
		// @font-face and @page bodies are declaration lists with no
		// inner rulesets, so they produce no rules.
		s.handleNestedBlock(body)
	default:
		s.recordErr(fmt.Errorf("css: unknown at-rule @%s", name))
	}
}

// handleCharset validates an in-stream @charset rule: it must be the
// very first statement in the stylesheet (CSS Syntax §4.3.9's rule
// that a @charset appearing anywhere else is not a charset rule at
// all), and, if the caller declared an expected encoding via
// StylesheetParams.Charset, the declared name must match it — this
// package performs no decoding itself, so a mismatch here signals
// that the caller read the bytes with the wrong encoding upstream.
func (s *Stylesheet) handleCharset(body []lex.Token) {
	if s.statements != 1 {
		s.recordErr(fmt.Errorf("css: @charset must be the first statement in the stylesheet"))
		return
	}
	if len(body) != 1 || body[0].Kind != lex.KindString {
		s.recordErr(fmt.Errorf("css: malformed @charset"))
		return
	}
	name := s.pool.Data(body[0].Lexeme)
	if s.params.Charset != "" && !strings.EqualFold(name, s.params.Charset) {
		s.recordErr(fmt.Errorf("css: @charset %q does not match declared encoding %q", name, s.params.Charset))
	}
}

func (s *Stylesheet) handleNamespace(body []lex.Token) {
	body = trimWS(body)
	if len(body) == 0 {
		s.recordErr(fmt.Errorf("css: empty @namespace"))
		return
	}
	prefix := ""
	if body[0].Kind == lex.KindIdent {
		prefix = s.pool.Data(body[0].Lexeme)
		body = trimWS(body[1:])
	}
	if len(body) != 1 || (body[0].Kind != lex.KindString && body[0].Kind != lex.KindURI) {
		s.recordErr(fmt.Errorf("css: malformed @namespace"))
		return
	}
	s.namespaces[prefix] = s.pool.Data(body[0].Lexeme)
}

func (s *Stylesheet) handleImport(body []lex.Token) {
	body = trimWS(body)
	if len(body) == 0 {
		s.recordErr(fmt.Errorf("css: empty @import"))
		return
	}
	var url string
	switch body[0].Kind {
	case lex.KindString, lex.KindURI:
		url = s.pool.Data(body[0].Lexeme)
	default:
		s.recordErr(fmt.Errorf("css: malformed @import"))
		return
	}
	if s.params.Import == nil {
		return
	}
	if s.params.Resolve != nil {
		resolved, err := s.params.Resolve(s.params.URL, url)
		if err != nil {
			s.recordErr(fmt.Errorf("css: resolving @import url: %w", err))
			return
		}
		url = resolved
	}
	data, err := s.params.Import(url)
	if err != nil {
		s.recordErr(fmt.Errorf("css: importing %q: %w", url, err))
		return
	}
	child, err := NewStylesheet(s.pool, StylesheetParams{
		Level: s.params.Level, URL: url, AllowQuirks: s.params.AllowQuirks,
		Resolve: s.params.Resolve, Import: s.params.Import,
		Color: s.params.Color, Font: s.params.Font,
	}, s.log)
	if err != nil {
		s.recordErr(err)
		return
	}
	if err := child.AppendData(data); err != nil {
		s.recordErr(err)
		return
	}
	if err := child.DataDone(); err != nil && err != child.errs {
		s.recordErr(err)
	}
	s.rules = append(s.rules, child.rules...)
}

// handleNestedBlock re-tokenizes a block at-rule's body as a sequence
// of rulesets by re-running the brace-balanced statement splitter
// over just that slice, starting after the block's own '{'.
func (s *Stylesheet) handleNestedBlock(body []lex.Token) {
	for i, t := range body {
		if t.Kind == lex.KindLBrace {
			body = body[i+1:]
			break
		}
	}
	depth := 0
	start := 0
	for i, t := range body {
		switch t.Kind {
		case lex.KindLBrace:
			depth++
		case lex.KindRBrace:
			depth--
			if depth == 0 {
				s.handleRuleset(trimWS(body[start : i+1]))
				start = i + 1
			}
		}
	}
}

func (s *Stylesheet) handleRuleset(toks []lex.Token) {
	braceAt := -1
	for i, t := range toks {
		if t.Kind == lex.KindLBrace {
			braceAt = i
			break
		}
	}
	if braceAt == -1 {
		s.recordErr(fmt.Errorf("css: ruleset missing '{'"))
		return
	}
	selTokens := trimWS(toks[:braceAt])
	declTokens := trimWS(toks[braceAt+1 : len(toks)-1])

	sels, err := selector.Compile(selTokens, s.pool, s.resolveNamespace, s.params.Level >= Level3)
	if err != nil {
		s.recordErr(fmt.Errorf("css: dropping rule: %w", err))
		return
	}

	buf := bytecode.NewBuffer()
	for _, declToks := range splitDeclarations(declTokens) {
		s.compileDeclaration(buf, declToks)
	}

	s.rules = append(s.rules, Rule{Selectors: sels, Style: buf})
}

func (s *Stylesheet) resolveNamespace(prefix string) (string, bool) {
	uri, ok := s.namespaces[prefix]
	return uri, ok
}

// compileDeclaration parses one "prop: value [!important]" run,
// rewinding the buffer to its pre-declaration length on any failure
// (invariant 7: one bad declaration never corrupts its siblings).
func (s *Stylesheet) compileDeclaration(buf *bytecode.Buffer, toks []lex.Token) {
	toks = trimWS(toks)
	if len(toks) == 0 {
		return
	}
	before := buf.Len()

	colonAt := -1
	for i, t := range toks {
		if t.Kind == lex.KindColon {
			colonAt = i
			break
		}
	}
	if colonAt == -1 || toks[0].Kind != lex.KindIdent {
		s.recordErr(fmt.Errorf("css: malformed declaration"))
		return
	}
	propName := s.pool.Data(toks[0].Lexeme)
	valueToks := trimWS(toks[colonAt+1:])

	important := false
	if n := len(valueToks); n >= 2 &&
		valueToks[n-1].Kind == lex.KindIdent &&
		strings.EqualFold(s.pool.Data(valueToks[n-1].Lexeme), "important") {
		j := n - 2
		for j >= 0 && (valueToks[j].Kind == lex.KindWhitespace || valueToks[j].Kind == lex.KindComment) {
			j--
		}
		if j >= 0 && valueToks[j].Kind == lex.KindDelim && valueToks[j].Ch == '!' {
			important = true
			valueToks = trimWS(valueToks[:j])
		}
	}

	res := props.Context{Color: s.params.Color, Font: s.params.Font, Quirks: s.params.AllowQuirks}
	if err := props.Dispatch(buf, propName, valueToks, s.pool, important, res); err != nil {
		buf.RewindTo(before)
		s.recordErr(fmt.Errorf("css: dropping declaration %q: %w", propName, err))
	}
}

// splitDeclarations splits a declaration block's tokens on top-level
// ';' (not inside a function/paren/bracket).
func splitDeclarations(toks []lex.Token) [][]lex.Token {
	var out [][]lex.Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Kind {
		case lex.KindFunction, lex.KindLParen, lex.KindLBracket:
			depth++
		case lex.KindRParen, lex.KindRBracket:
			if depth > 0 {
				depth--
			}
		case lex.KindSemicolon:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, toks[start:])
	return out
}

func trimWS(toks []lex.Token) []lex.Token {
	i, j := 0, len(toks)
	for i < j && (toks[i].Kind == lex.KindWhitespace || toks[i].Kind == lex.KindComment) {
		i++
	}
	for j > i && (toks[j-1].Kind == lex.KindWhitespace || toks[j-1].Kind == lex.KindComment) {
		j--
	}
	return toks[i:j]
}

func (s *Stylesheet) recordErr(err error) {
	s.log.Debug("css: recoverable parse error", zap.Stringer("stylesheet", s.id), zap.Error(err))
	s.errs = multierr.Append(s.errs, err)
}

// Errors returns every recoverable error observed so far, aggregated
// with go.uber.org/multierr (nil if none).
func (s *Stylesheet) Errors() error { return s.errs }
