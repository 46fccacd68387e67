package selector

import (
	"fmt"
	"strconv"
	"strings"

	"cssbc/css/lex"
	"cssbc/css/strpool"
)

// NamespaceResolver looks up the URI bound to a namespace prefix by a
// preceding @namespace rule; compile-time resolution per §4.5.
type NamespaceResolver func(prefix string) (uri string, ok bool)

// Compile parses a token slice covering one selector list (the
// contents between a ruleset's opening brace and whatever precedes
// it) into its comma-separated Selectors. An error means the whole
// rule is dropped, per the Language Parser's "error in a selector
// list drops the entire rule" recovery rule. css3 gates the
// structural pseudo-classes (:not(), :nth-child() and its siblings)
// that CSS2.1 and earlier levels don't recognize; a CSS1/CSS2 sheet
// using one drops the whole rule the same way an unknown pseudo-class
// would.
func Compile(tokens []lex.Token, pool *strpool.Pool, resolveNS NamespaceResolver, css3 bool) ([]Selector, error) {
	groups := splitTopLevelCommas(tokens)
	out := make([]Selector, 0, len(groups))
	for _, g := range groups {
		sel, err := compileOne(g, pool, resolveNS, css3)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

func splitTopLevelCommas(tokens []lex.Token) [][]lex.Token {
	var groups [][]lex.Token
	depth := 0
	start := 0
	for i, t := range tokens {
		switch t.Kind {
		case lex.KindFunction, lex.KindLParen, lex.KindLBracket:
			depth++
		case lex.KindRParen, lex.KindRBracket:
			if depth > 0 {
				depth--
			}
		case lex.KindComma:
			if depth == 0 {
				groups = append(groups, tokens[start:i])
				start = i + 1
			}
		}
	}
	groups = append(groups, tokens[start:])
	return groups
}

func compileOne(tokens []lex.Token, pool *strpool.Pool, resolveNS NamespaceResolver, css3 bool) (Selector, error) {
	tokens = trimWhitespace(tokens)
	raw := rawText(tokens, pool)
	if len(tokens) == 0 {
		return Selector{}, fmt.Errorf("selector: empty selector")
	}

	var compounds []Compound
	i := 0
	comb := CombinatorNone
	for i < len(tokens) {
		sawSpace := false
		for i < len(tokens) {
			t := tokens[i]
			if t.Kind == lex.KindWhitespace || t.Kind == lex.KindComment {
				sawSpace = true
				i++
				continue
			}
			if t.Kind == lex.KindDelim && (t.Ch == '>' || t.Ch == '+' || t.Ch == '~') {
				switch t.Ch {
				case '>':
					comb = CombinatorChild
				case '+':
					comb = CombinatorAdjacentSibling
				case '~':
					comb = CombinatorGeneralSibling
				}
				i++
				sawSpace = false
				continue
			}
			break
		}
		if i >= len(tokens) {
			break
		}
		if len(compounds) > 0 && comb == CombinatorNone && sawSpace {
			comb = CombinatorDescendant
		}

		simples, consumed, err := compileCompound(tokens[i:], pool, resolveNS, css3)
		if err != nil {
			return Selector{}, err
		}
		if consumed == 0 {
			return Selector{}, fmt.Errorf("selector: unrecognized token in %q", raw)
		}
		compounds = append(compounds, Compound{Combinator: comb, Simples: simples})
		i += consumed
		comb = CombinatorNone
	}

	if len(compounds) == 0 {
		return Selector{}, fmt.Errorf("selector: no compounds in %q", raw)
	}

	return Selector{
		Raw:         raw,
		Compounds:   compounds,
		Specificity: computeSpecificity(compounds),
	}, nil
}

// compileCompound parses one run of simple selectors with no
// combinator between them, returning how many tokens it consumed.
func compileCompound(tokens []lex.Token, pool *strpool.Pool, resolveNS NamespaceResolver, css3 bool) ([]Simple, int, error) {
	var simples []Simple
	i := 0

loop:
	for i < len(tokens) {
		t := tokens[i]
		switch {
		case t.Kind == lex.KindWhitespace || t.Kind == lex.KindComment:
			break loop
		case t.Kind == lex.KindDelim && (t.Ch == '>' || t.Ch == '+' || t.Ch == '~'):
			break loop

		case t.Kind == lex.KindIdent || (t.Kind == lex.KindDelim && t.Ch == '*'):
			local, ns, universal, adv, err := parseNamedPrefix(tokens[i:], pool, resolveNS)
			if err != nil {
				return nil, 0, err
			}
			if universal {
				simples = append(simples, Simple{Kind: KindUniversal, NS: ns})
			} else {
				simples = append(simples, Simple{Kind: KindType, Local: local, NS: ns})
			}
			i += adv

		case t.Kind == lex.KindHash:
			simples = append(simples, Simple{Kind: KindID, Local: t.Lexeme})
			i++

		case t.Kind == lex.KindDelim && t.Ch == '.':
			nt, ok := at(tokens, i+1)
			if !ok || nt.Kind != lex.KindIdent {
				return nil, 0, fmt.Errorf("selector: expected class name after '.'")
			}
			simples = append(simples, Simple{Kind: KindClass, Local: nt.Lexeme})
			i += 2

		case t.Kind == lex.KindLBracket:
			s, adv, err := compileAttr(tokens[i:], pool, resolveNS)
			if err != nil {
				return nil, 0, err
			}
			simples = append(simples, s)
			i += adv

		case t.Kind == lex.KindColon:
			s, adv, err := compilePseudo(tokens[i:], pool, resolveNS, css3)
			if err != nil {
				return nil, 0, err
			}
			simples = append(simples, s)
			i += adv

		default:
			break loop
		}
	}
	return simples, i, nil
}

// parseNamedPrefix consumes an element name or universal selector,
// optionally preceded by a `prefix|` or `*|` namespace qualifier. It
// reports the resolved local-name handle (ignored when universal is
// true), the resolved namespace handle, whether the name itself was
// '*', and how many tokens were consumed.
func parseNamedPrefix(tokens []lex.Token, pool *strpool.Pool, resolveNS NamespaceResolver) (local, ns strpool.Handle, universal bool, adv int, err error) {
	first := tokens[0]
	pipe, ok := at(tokens, 1)
	if !ok || pipe.Kind != lex.KindDelim || pipe.Ch != '|' {
		if first.Kind == lex.KindDelim {
			return 0, 0, true, 1, nil
		}
		return first.Lexeme, 0, false, 1, nil
	}
	nameTok, ok := at(tokens, 2)
	if !ok || (nameTok.Kind != lex.KindIdent && !(nameTok.Kind == lex.KindDelim && nameTok.Ch == '*')) {
		// Not actually a namespace qualifier (stray '|' delim); treat
		// tokens[0] alone as the name.
		if first.Kind == lex.KindDelim {
			return 0, 0, true, 1, nil
		}
		return first.Lexeme, 0, false, 1, nil
	}

	if first.Kind == lex.KindDelim && first.Ch == '*' {
		ns = AnyNamespace
	} else {
		prefix := pool.Data(first.Lexeme)
		uri, ok := resolveNS(prefix)
		if !ok {
			return 0, 0, false, 0, fmt.Errorf("selector: unresolved namespace prefix %q", prefix)
		}
		ns = pool.Intern(uri)
	}
	if nameTok.Kind == lex.KindDelim {
		return 0, ns, true, 3, nil
	}
	return nameTok.Lexeme, ns, false, 3, nil
}

func at(tokens []lex.Token, i int) (lex.Token, bool) {
	if i < 0 || i >= len(tokens) {
		return lex.Token{}, false
	}
	return tokens[i], true
}

func compileAttr(tokens []lex.Token, pool *strpool.Pool, resolveNS NamespaceResolver) (Simple, int, error) {
	// tokens[0] is '['.
	i := 1
	i = skipWS(tokens, i)
	nt, ok := at(tokens, i)
	if !ok || nt.Kind != lex.KindIdent {
		return Simple{}, 0, fmt.Errorf("selector: expected attribute name")
	}
	var ns strpool.Handle
	name := nt.Lexeme
	i++
	if pt, ok := at(tokens, i); ok && pt.Kind == lex.KindDelim && pt.Ch == '|' {
		if nxt, ok := at(tokens, i+1); ok && nxt.Kind == lex.KindIdent {
			prefix := pool.Data(name)
			uri, ok := resolveNS(prefix)
			if !ok {
				return Simple{}, 0, fmt.Errorf("selector: unresolved namespace prefix %q", prefix)
			}
			ns = pool.Intern(uri)
			name = nxt.Lexeme
			i += 2
		}
	}
	i = skipWS(tokens, i)

	s := Simple{Kind: KindAttr, NS: ns, Local: name, AttrOp: AttrExists}

	if op, adv, isOp := attrOp(tokens, i); isOp {
		i += adv
		i = skipWS(tokens, i)
		vt, ok := at(tokens, i)
		if !ok || (vt.Kind != lex.KindString && vt.Kind != lex.KindIdent) {
			return Simple{}, 0, fmt.Errorf("selector: expected attribute value")
		}
		s.AttrOp = op
		s.AttrValue = vt.Lexeme
		i++
		i = skipWS(tokens, i)
	}

	rt, ok := at(tokens, i)
	if !ok || rt.Kind != lex.KindRBracket {
		return Simple{}, 0, fmt.Errorf("selector: expected closing ']'")
	}
	i++
	return s, i, nil
}

func attrOp(tokens []lex.Token, i int) (AttrOp, int, bool) {
	t, ok := at(tokens, i)
	if !ok || t.Kind != lex.KindDelim {
		return 0, 0, false
	}
	two := func(op AttrOp) (AttrOp, int, bool) {
		nt, ok := at(tokens, i+1)
		if ok && nt.Kind == lex.KindDelim && nt.Ch == '=' {
			return op, 2, true
		}
		return 0, 0, false
	}
	switch t.Ch {
	case '=':
		return AttrEquals, 1, true
	case '~':
		return two(AttrIncludes)
	case '|':
		return two(AttrDashMatch)
	case '^':
		return two(AttrPrefix)
	case '$':
		return two(AttrSuffix)
	case '*':
		return two(AttrSubstring)
	}
	return 0, 0, false
}

func skipWS(tokens []lex.Token, i int) int {
	for i < len(tokens) && (tokens[i].Kind == lex.KindWhitespace || tokens[i].Kind == lex.KindComment) {
		i++
	}
	return i
}

var pseudoElements = map[string]bool{
	"before": true, "after": true, "first-line": true, "first-letter": true,
	"selection": true, "placeholder": true, "marker": true,
}

func compilePseudo(tokens []lex.Token, pool *strpool.Pool, resolveNS NamespaceResolver, css3 bool) (Simple, int, error) {
	// tokens[0] is ':'; tokens[1] may be another ':' (pseudo-element) or
	// an IDENT/FUNCTION.
	i := 1
	isElement := false
	if nt, ok := at(tokens, i); ok && nt.Kind == lex.KindColon {
		isElement = true
		i++
	}
	nt, ok := at(tokens, i)
	if !ok {
		return Simple{}, 0, fmt.Errorf("selector: expected pseudo name")
	}

	switch nt.Kind {
	case lex.KindIdent:
		name := pool.Data(nt.Lexeme)
		if isElement || pseudoElements[strings.ToLower(name)] {
			return Simple{Kind: KindPseudoElement, Local: nt.Lexeme}, i + 1, nil
		}
		return Simple{Kind: KindPseudoClass, Local: nt.Lexeme}, i + 1, nil

	case lex.KindFunction:
		name := strings.ToLower(pool.Data(nt.Lexeme))
		argStart := i + 1
		depth := 1
		j := argStart
		for j < len(tokens) && depth > 0 {
			switch tokens[j].Kind {
			case lex.KindFunction, lex.KindLParen:
				depth++
			case lex.KindRParen:
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		args := tokens[argStart:j]
		simple := Simple{Kind: KindPseudoClass, Local: nt.Lexeme}

		switch name {
		case "not":
			if !css3 {
				return Simple{}, 0, fmt.Errorf("selector: :not() requires CSS3")
			}
			inner, _, err := compileCompound(trimWhitespace(args), pool, resolveNS, css3)
			if err != nil {
				return Simple{}, 0, err
			}
			simple.Not = inner
		case "lang":
			args = trimWhitespace(args)
			if len(args) != 1 {
				return Simple{}, 0, fmt.Errorf("selector: :lang() takes one argument")
			}
			simple.PseudoArg = args[0].Lexeme
		case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
			if !css3 {
				return Simple{}, 0, fmt.Errorf("selector: :%s() requires CSS3", name)
			}
			a, b, err := parseNth(args, pool)
			if err != nil {
				return Simple{}, 0, err
			}
			simple.NthA, simple.NthB = a, b
		}
		return simple, j + 1, nil
	}
	return Simple{}, 0, fmt.Errorf("selector: malformed pseudo-class")
}

// parseNth parses the An+B micro-syntax accepted by :nth-child() and
// its siblings: "odd", "even", "<integer>", "<n-dimension>[+-]<int>".
// The tokenizer splits this inconsistently depending on spacing
// ("2n-1" is one DIMENSION, "2n+1" is a DIMENSION "2n" followed by
// the NUMBER "+1", "2n + 1" is five tokens), so it is
// normalized to a single string before the numeric grammar is parsed.
func parseNth(tokens []lex.Token, pool *strpool.Pool) (a, b int, err error) {
	tokens = trimWhitespace(tokens)
	if len(tokens) == 1 && tokens[0].Kind == lex.KindIdent {
		switch strings.ToLower(pool.Data(tokens[0].Lexeme)) {
		case "odd":
			return 2, 1, nil
		case "even":
			return 2, 0, nil
		}
	}

	var sb strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case lex.KindDimension:
			sb.WriteString(strconv.Itoa(t.Num.Int()))
			sb.WriteString(strings.ToLower(pool.Data(t.Unit)))
		case lex.KindNumber:
			sb.WriteString(strconv.Itoa(t.Num.Int()))
		case lex.KindIdent:
			sb.WriteString(strings.ToLower(pool.Data(t.Lexeme)))
		case lex.KindDelim:
			sb.WriteRune(t.Ch)
		case lex.KindWhitespace, lex.KindComment:
			// dropped: "2n + 1" normalizes the same as "2n+1"
		default:
			return 0, 0, fmt.Errorf("selector: unexpected token in nth-child argument")
		}
	}
	return parseAnB(sb.String())
}

// parseAnB parses a normalized An+B string like "2n+1", "-n+6", "3",
// "n", "-n".
func parseAnB(s string) (a, b int, err error) {
	if s == "" {
		return 0, 0, fmt.Errorf("selector: empty nth-child argument")
	}
	nIdx := strings.IndexByte(s, 'n')
	if nIdx == -1 {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, fmt.Errorf("selector: invalid nth-child argument %q", s)
		}
		return 0, v, nil
	}
	aPart := s[:nIdx]
	switch aPart {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(aPart)
		if err != nil {
			return 0, 0, fmt.Errorf("selector: invalid nth-child coefficient %q", aPart)
		}
		a = v
	}
	rest := s[nIdx+1:]
	if rest == "" {
		return a, 0, nil
	}
	v, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, fmt.Errorf("selector: invalid nth-child offset %q", rest)
	}
	return a, v, nil
}

func trimWhitespace(tokens []lex.Token) []lex.Token {
	i, j := 0, len(tokens)
	for i < j && (tokens[i].Kind == lex.KindWhitespace || tokens[i].Kind == lex.KindComment) {
		i++
	}
	for j > i && (tokens[j-1].Kind == lex.KindWhitespace || tokens[j-1].Kind == lex.KindComment) {
		j--
	}
	return tokens[i:j]
}

func rawText(tokens []lex.Token, pool *strpool.Pool) string {
	var sb strings.Builder
	for _, t := range tokens {
		switch t.Kind {
		case lex.KindIdent, lex.KindAtKeyword, lex.KindHash, lex.KindString:
			sb.WriteString(pool.Data(t.Lexeme))
		case lex.KindFunction:
			sb.WriteString(pool.Data(t.Lexeme))
			sb.WriteByte('(')
		case lex.KindWhitespace:
			sb.WriteByte(' ')
		case lex.KindDelim:
			sb.WriteRune(t.Ch)
		case lex.KindColon:
			sb.WriteByte(':')
		case lex.KindLBracket:
			sb.WriteByte('[')
		case lex.KindRBracket:
			sb.WriteByte(']')
		case lex.KindLParen:
			sb.WriteByte('(')
		case lex.KindRParen:
			sb.WriteByte(')')
		case lex.KindComma:
			sb.WriteByte(',')
		}
	}
	return sb.String()
}
