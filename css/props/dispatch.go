package props

import (
	"fmt"
	"strings"

	"cssbc/css/bytecode"
	"cssbc/css/lex"
	"cssbc/css/strpool"
)

// fourSides maps the 1/2/3/4-value shorthand expansion rule (CSS2.1
// §8.3) to an index into a 4-element [top, right, bottom, left] slice.
var fourSides = [4][]int{
	{0, 0, 0, 0},
	{0, 1, 0, 1},
	{0, 1, 2, 1},
	{0, 1, 2, 3},
}

// expandFourSides splits tokens (1 to 4 comma-free space-separated
// values) into the four side values per the CSS 1/2/3/4-value rule.
// Grounded on the corner/side count table in border_radius_side.c,
// generalized here to the margin/padding/border family that shares
// the identical counting rule.
func expandFourSides(tokens []lex.Token) ([][]lex.Token, error) {
	groups := splitBySpace(tokens)
	n := len(groups)
	if n < 1 || n > 4 {
		return nil, fmt.Errorf("props: expected 1 to 4 values, got %d", n)
	}
	idx := fourSides[n-1]
	out := make([][]lex.Token, 4)
	for side, g := range idx {
		out[side] = groups[g]
	}
	return out, nil
}

func splitBySpace(tokens []lex.Token) [][]lex.Token {
	var groups [][]lex.Token
	var cur []lex.Token
	depth := 0
	for _, t := range tokens {
		switch t.Kind {
		case lex.KindFunction, lex.KindLParen:
			depth++
		case lex.KindRParen:
			if depth > 0 {
				depth--
			}
		}
		if t.Kind == lex.KindWhitespace && depth == 0 {
			if len(cur) > 0 {
				groups = append(groups, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// Context carries the embedding application's custom colour and
// font-family lookups, so a stylesheet can recognize names outside
// the built-in keyword tables (e.g. a theme's named palette, or a
// platform's installed font list) without this package knowing
// anything about where those names come from. Quirks relaxes length
// parsing to accept unitless numbers as pixels.
type Context struct {
	Color  func(name string) (uint32, bool)
	Font   func(name string) (string, bool)
	Quirks bool
}

// Dispatch parses one declaration's value tokens for the property
// named by propName and writes its bytecode into buf. An error here means this
// declaration alone is invalid; per the transactional-declaration
// invariant the caller must RewindTo the length observed before
// calling Dispatch.
func Dispatch(buf *bytecode.Buffer, propName string, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	propName = strings.ToLower(propName)
	tokens = trimEnds(tokens)

	if isInherit(tokens, pool) {
		if op, ok := LookupProperty(propName); ok {
			buf.Inherit(op, important)
			return nil
		}
		return dispatchShorthandInherit(buf, propName, important)
	}

	switch propName {
	case "margin":
		return dispatchFourSides(buf, tokens, pool, important, res,
			PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft, writeLengthOrAuto)
	case "padding":
		return dispatchFourSides(buf, tokens, pool, important, res,
			PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft, writeLengthOnly)
	case "border-width":
		return dispatchFourSides(buf, tokens, pool, important, res,
			PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth, writeLengthOnly)
	case "border-style":
		return dispatchFourSides(buf, tokens, pool, important, res,
			PropBorderTopStyle, PropBorderRightStyle, PropBorderBottomStyle, PropBorderLeftStyle,
			keywordWriter(BorderStyleKeywords))
	case "border-color":
		return dispatchFourSides(buf, tokens, pool, important, res,
			PropBorderTopColor, PropBorderRightColor, PropBorderBottomColor, PropBorderLeftColor, writeColorOnly)
	case "border-radius":
		return dispatchBorderRadius(buf, tokens, pool, important, res)
	case "border-top-left-radius", "border-top-right-radius",
		"border-bottom-right-radius", "border-bottom-left-radius":
		// One length, written as both the horizontal and the vertical
		// radius so the payload matches the border-radius shorthand's.
		v, u, ok := ParseLength(tokens, pool, res.Quirks)
		if !ok {
			return fmt.Errorf("props: expected a length")
		}
		op, _ := LookupProperty(propName)
		writeLength(buf, op, v, u, important)
		buf.Append(bytecode.Word(uint32(v)))
		buf.Append(bytecode.Word(u))
		return nil
	case "background-size":
		return dispatchBackgroundSize(buf, tokens, pool, important, res)
	}

	op, ok := LookupProperty(propName)
	if !ok {
		return fmt.Errorf("props: unknown property %q", propName)
	}
	return dispatchLonghand(buf, op, tokens, pool, important, res)
}

func trimEnds(tokens []lex.Token) []lex.Token {
	i, j := 0, len(tokens)
	for i < j && (tokens[i].Kind == lex.KindWhitespace || tokens[i].Kind == lex.KindComment) {
		i++
	}
	for j > i && (tokens[j-1].Kind == lex.KindWhitespace || tokens[j-1].Kind == lex.KindComment) {
		j--
	}
	return tokens[i:j]
}

func isInherit(tokens []lex.Token, pool *strpool.Pool) bool {
	return len(tokens) == 1 && tokens[0].Kind == lex.KindIdent &&
		strings.EqualFold(pool.Data(tokens[0].Lexeme), "inherit")
}

func dispatchShorthandInherit(buf *bytecode.Buffer, propName string, important bool) error {
	ops, ok := shorthandLonghands(propName)
	if !ok {
		return fmt.Errorf("props: unknown property %q", propName)
	}
	for _, op := range ops {
		buf.Inherit(op, important)
	}
	return nil
}

func shorthandLonghands(propName string) ([]bytecode.Opcode, bool) {
	switch propName {
	case "margin":
		return []bytecode.Opcode{PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft}, true
	case "padding":
		return []bytecode.Opcode{PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft}, true
	case "border-width":
		return []bytecode.Opcode{PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth}, true
	case "border-style":
		return []bytecode.Opcode{PropBorderTopStyle, PropBorderRightStyle, PropBorderBottomStyle, PropBorderLeftStyle}, true
	case "border-color":
		return []bytecode.Opcode{PropBorderTopColor, PropBorderRightColor, PropBorderBottomColor, PropBorderLeftColor}, true
	case "border-radius":
		return []bytecode.Opcode{PropBorderTopLeftRadius, PropBorderTopRightRadius, PropBorderBottomRightRadius, PropBorderBottomLeftRadius}, true
	}
	return nil, false
}

// sideWriter writes one expanded side's value for a shorthand family
// into buf under op, returning an error if tokens don't match what
// that family accepts.
type sideWriter func(buf *bytecode.Buffer, op bytecode.Opcode, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error

func dispatchFourSides(buf *bytecode.Buffer, tokens []lex.Token, pool *strpool.Pool, important bool, res Context,
	top, right, bottom, left bytecode.Opcode, write sideWriter) error {
	sides, err := expandFourSides(tokens)
	if err != nil {
		return err
	}
	ops := [4]bytecode.Opcode{top, right, bottom, left}
	for i, side := range sides {
		if err := write(buf, ops[i], side, pool, important, res); err != nil {
			return err
		}
	}
	return nil
}

func writeLengthOnly(buf *bytecode.Buffer, op bytecode.Opcode, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	v, u, ok := ParseLength(tokens, pool, res.Quirks)
	if !ok {
		return fmt.Errorf("props: expected a length")
	}
	writeLength(buf, op, v, u, important)
	return nil
}

func writeLengthOrAuto(buf *bytecode.Buffer, op bytecode.Opcode, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	if len(tokens) == 1 && tokens[0].Kind == lex.KindIdent && strings.EqualFold(pool.Data(tokens[0].Lexeme), "auto") {
		buf.AppendOPV(op, flagsOf(important), TagAuto)
		return nil
	}
	return writeLengthOnly(buf, op, tokens, pool, important, res)
}

func writeColorOnly(buf *bytecode.Buffer, op bytecode.Opcode, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	c, ok := resolveColor(tokens, pool, res)
	if !ok {
		return fmt.Errorf("props: expected a colour")
	}
	buf.AppendOPV(op, flagsOf(important), TagColor)
	buf.Append(bytecode.Word(c))
	return nil
}

// resolveColor tries the built-in <color> grammar first and falls
// back to the caller-supplied Context.Color lookup for a single
// bare identifier that isn't one of the named colours, so an
// embedding application's theme palette can extend the keyword table
// without this package knowing its names in advance.
func resolveColor(tokens []lex.Token, pool *strpool.Pool, res Context) (bytecode.Color, bool) {
	if c, ok := ParseColor(tokens, pool); ok {
		return c, true
	}
	if res.Color == nil || len(tokens) != 1 || tokens[0].Kind != lex.KindIdent {
		return 0, false
	}
	rgb, ok := res.Color(strings.ToLower(pool.Data(tokens[0].Lexeme)))
	if !ok {
		return 0, false
	}
	return bytecode.Color(0xff000000 | rgb&0x00ffffff), true
}

func keywordWriter(ks KeywordSet) sideWriter {
	return func(buf *bytecode.Buffer, op bytecode.Opcode, tokens []lex.Token, pool *strpool.Pool, important bool, _ Context) error {
		idx, ok := ParseKeyword(tokens, pool, ks)
		if !ok {
			return fmt.Errorf("props: unrecognized keyword")
		}
		buf.AppendOPV(op, flagsOf(important), TagKeyword)
		buf.Append(bytecode.Word(idx))
		return nil
	}
}

func writeLength(buf *bytecode.Buffer, op bytecode.Opcode, v lex.Fixed, u bytecode.Unit, important bool) {
	buf.AppendOPV(op, flagsOf(important), TagLength)
	buf.Append(bytecode.Word(uint32(v)))
	buf.Append(bytecode.Word(u))
}

func flagsOf(important bool) bytecode.Flags {
	if important {
		return bytecode.FlagImportant
	}
	return 0
}

// dispatchBorderRadius handles the "/" two-group horizontal/vertical
// radii syntax: each group independently expands via the 1/2/3/4-value
// rule, then the two groups are zipped per-corner. With no "/" the
// single group's values are used for both horizontal and vertical.
func dispatchBorderRadius(buf *bytecode.Buffer, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	var h, v []lex.Token
	slashAt := -1
	for i, t := range tokens {
		if t.Kind == lex.KindDelim && t.Ch == '/' {
			slashAt = i
			break
		}
	}
	if slashAt == -1 {
		h = tokens
		v = tokens
	} else {
		h = trimEnds(tokens[:slashAt])
		v = trimEnds(tokens[slashAt+1:])
	}

	hSides, err := expandFourSides(h)
	if err != nil {
		return err
	}
	vSides, err := expandFourSides(v)
	if err != nil {
		return err
	}

	corners := [4]bytecode.Opcode{
		PropBorderTopLeftRadius, PropBorderTopRightRadius,
		PropBorderBottomRightRadius, PropBorderBottomLeftRadius,
	}
	for i, op := range corners {
		hv, hu, ok := ParseLength(hSides[i], pool, res.Quirks)
		if !ok {
			return fmt.Errorf("props: expected a length in border-radius")
		}
		vv, vu, ok := ParseLength(vSides[i], pool, res.Quirks)
		if !ok {
			return fmt.Errorf("props: expected a length in border-radius")
		}
		buf.AppendOPV(op, flagsOf(important), TagLength)
		buf.Append(bytecode.Word(uint32(hv)))
		buf.Append(bytecode.Word(hu))
		buf.Append(bytecode.Word(uint32(vv)))
		buf.Append(bytecode.Word(vu))
	}
	return nil
}

// dispatchBackgroundSize handles "cover"/"contain" as a plain keyword
// and the one-or-two value <length-percentage>|auto list as a tagged
// item sequence terminated by ItemEnd, matching the encoding of
// background_size.c's items[] array (design notes §4.7 example:
// "auto 50%" -> ItemAuto, ItemValue(50%), ItemEnd).
func dispatchBackgroundSize(buf *bytecode.Buffer, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	if len(tokens) == 1 && tokens[0].Kind == lex.KindIdent {
		kw := strings.ToLower(pool.Data(tokens[0].Lexeme))
		if kw == "cover" || kw == "contain" {
			ks := KeywordSet{"cover", "contain"}
			buf.AppendOPV(PropBackgroundSize, flagsOf(important), TagKeyword)
			buf.Append(bytecode.Word(ks.Index(kw)))
			return nil
		}
	}

	groups := splitBySpace(tokens)
	if len(groups) < 1 || len(groups) > 2 {
		return fmt.Errorf("props: background-size takes 1 or 2 values")
	}
	buf.AppendOPV(PropBackgroundSize, flagsOf(important), TagItemList)
	for _, g := range groups {
		if len(g) == 1 && g[0].Kind == lex.KindIdent && strings.EqualFold(pool.Data(g[0].Lexeme), "auto") {
			buf.Append(ItemAuto)
			continue
		}
		v, u, ok := ParseLength(g, pool, res.Quirks)
		if !ok {
			return fmt.Errorf("props: expected a length, percentage, or auto in background-size")
		}
		buf.Append(ItemValue)
		buf.Append(bytecode.Word(uint32(v)))
		buf.Append(bytecode.Word(u))
	}
	buf.Append(ItemEnd)
	return nil
}

// dispatchLonghand handles every property with exactly one opcode and
// no special shorthand shape: it tries, in order, the common value
// recognizers that apply to that property's category.
func dispatchLonghand(buf *bytecode.Buffer, op bytecode.Opcode, tokens []lex.Token, pool *strpool.Pool, important bool, res Context) error {
	if ks, ok := keywordSetFor(op); ok {
		if idx, ok := ParseKeyword(tokens, pool, ks); ok {
			buf.AppendOPV(op, flagsOf(important), TagKeyword)
			buf.Append(bytecode.Word(idx))
			return nil
		}
	}

	if isColorProperty(op) {
		if c, ok := resolveColor(tokens, pool, res); ok {
			buf.AppendOPV(op, flagsOf(important), TagColor)
			buf.Append(bytecode.Word(c))
			return nil
		}
	}

	if len(tokens) == 1 && tokens[0].Kind == lex.KindIdent && strings.EqualFold(pool.Data(tokens[0].Lexeme), "auto") {
		buf.AppendOPV(op, flagsOf(important), TagAuto)
		return nil
	}
	if len(tokens) == 1 && tokens[0].Kind == lex.KindIdent && strings.EqualFold(pool.Data(tokens[0].Lexeme), "none") {
		buf.AppendOPV(op, flagsOf(important), TagNone)
		return nil
	}

	if v, u, ok := ParseLength(tokens, pool, res.Quirks); ok {
		writeLength(buf, op, v, u, important)
		return nil
	}

	if op == PropFontFamily && res.Font != nil && len(tokens) == 1 &&
		(tokens[0].Kind == lex.KindString || tokens[0].Kind == lex.KindIdent) {
		if canonical, ok := res.Font(strings.ToLower(pool.Data(tokens[0].Lexeme))); ok {
			buf.AppendOPV(op, flagsOf(important), TagString)
			buf.Append(bytecode.Word(pool.Intern(canonical)))
			return nil
		}
	}

	if op == PropFontFamily || op == PropListStyleImage || op == PropBackgroundImage {
		if len(tokens) >= 1 && (tokens[0].Kind == lex.KindString || tokens[0].Kind == lex.KindIdent || tokens[0].Kind == lex.KindURI) {
			buf.AppendOPV(op, flagsOf(important), TagString)
			buf.Append(bytecode.Word(tokens[0].Lexeme))
			return nil
		}
	}

	return fmt.Errorf("props: value does not match any recognizer for this property")
}

func isColorProperty(op bytecode.Opcode) bool {
	switch op {
	case PropColor, PropBackgroundColor:
		return true
	}
	return false
}

func keywordSetFor(op bytecode.Opcode) (KeywordSet, bool) {
	switch op {
	case PropDisplay:
		return DisplayKeywords, true
	case PropPosition:
		return PositionKeywords, true
	case PropFloat:
		return FloatKeywords, true
	case PropClear:
		return ClearKeywords, true
	case PropOverflow:
		return OverflowKeywords, true
	case PropVisibility:
		return VisibilityKeywords, true
	case PropBoxSizing:
		return BoxSizingKeywords, true
	case PropFontStyle:
		return FontStyleKeywords, true
	case PropFontWeight:
		return FontWeightKeywords, true
	case PropFontVariant:
		return FontVariantKeywords, true
	case PropTextAlign:
		return TextAlignKeywords, true
	case PropTextDecoration:
		return TextDecorKeywords, true
	case PropTextTransform:
		return TextTransformKeywords, true
	case PropWhiteSpace:
		return WhiteSpaceKeywords, true
	case PropListStyleType:
		return ListStyleTypeKeywords, true
	case PropListStylePosition:
		return ListStylePositionKeywords, true
	case PropVerticalAlign:
		return VerticalAlignKeywords, true
	case PropBackgroundRepeat:
		return BackgroundRepeatKeywords, true
	case PropBackgroundAttachment:
		return BackgroundAttachmentKeywords, true
	}
	return nil, false
}
