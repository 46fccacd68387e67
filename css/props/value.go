package props

import (
	"math"
	"strings"

	"cssbc/css/bytecode"
	"cssbc/css/lex"
	"cssbc/css/strpool"
)

// ValueTag is the 14-bit OPV value field for the common value shapes
// shared across most properties. Property-specific keyword sets layer
// their own small enumeration on top of TagKeyword's payload word
// rather than inventing a fresh tag per property, so the dispatcher
// stays generic (design notes §4.6).
const (
	TagInherit    uint16 = 0
	TagKeyword    uint16 = 1 // payload: one word, the keyword's index into that property's enum
	TagLength     uint16 = 2 // payload: Fixed value word, Unit word (two such pairs, horizontal then vertical, for the four border-*-radius corners)
	TagColor      uint16 = 3 // payload: one Color word
	TagString     uint16 = 4 // payload: one strpool.Handle word (font-family, url(), content)
	TagAuto       uint16 = 5 // no payload
	TagNone       uint16 = 6 // no payload
	TagItemList   uint16 = 7 // payload: a tagged item sequence, see background-size below
)

// Item tags used inside a TagItemList payload (background-size and
// similarly shaped list-valued properties), terminated by ItemEnd.
const (
	ItemAuto bytecode.Word = iota
	ItemValue
	ItemEnd
)

var namedColors = map[string]bytecode.Color{
	"black":   bytecode.RGBA(0xff, 0x00, 0x00, 0x00),
	"white":   bytecode.RGBA(0xff, 0xff, 0xff, 0xff),
	"red":     bytecode.RGBA(0xff, 0xff, 0x00, 0x00),
	"green":   bytecode.RGBA(0xff, 0x00, 0x80, 0x00),
	"blue":    bytecode.RGBA(0xff, 0x00, 0x00, 0xff),
	"yellow":  bytecode.RGBA(0xff, 0xff, 0xff, 0x00),
	"cyan":    bytecode.RGBA(0xff, 0x00, 0xff, 0xff),
	"magenta": bytecode.RGBA(0xff, 0xff, 0x00, 0xff),
	"gray":    bytecode.RGBA(0xff, 0x80, 0x80, 0x80),
	"grey":    bytecode.RGBA(0xff, 0x80, 0x80, 0x80),
	"silver":  bytecode.RGBA(0xff, 0xc0, 0xc0, 0xc0),
	"maroon":  bytecode.RGBA(0xff, 0x80, 0x00, 0x00),
	"olive":   bytecode.RGBA(0xff, 0x80, 0x80, 0x00),
	"lime":    bytecode.RGBA(0xff, 0x00, 0xff, 0x00),
	"navy":    bytecode.RGBA(0xff, 0x00, 0x00, 0x80),
	"purple":  bytecode.RGBA(0xff, 0x80, 0x00, 0x80),
	"teal":    bytecode.RGBA(0xff, 0x00, 0x80, 0x80),
	"orange":  bytecode.RGBA(0xff, 0xff, 0xa5, 0x00),
	"pink":    bytecode.RGBA(0xff, 0xff, 0xc0, 0xcb),
	"brown":   bytecode.RGBA(0xff, 0xa5, 0x2a, 0x2a),
	"transparent": bytecode.RGBA(0x00, 0x00, 0x00, 0x00),
	// currentcolor's actual value depends on the cascaded "color"
	// property of the element it applies to, which is outside this
	// package's scope (no computed style, no cascade); it resolves
	// here to the same UA-default black that an uncascaded "color"
	// would have, the way "transparent" above resolves to a fixed
	// RGBA rather than a context-dependent value.
	"currentcolor": bytecode.RGBA(0xff, 0x00, 0x00, 0x00),
}

// ParseColor recognizes a <color> value: a named colour keyword
// (including currentColor), a 3/6/8-digit #hash, rgb()/rgba() with
// integer or percentage channels, or hsl()/hsla(). It returns
// ok=false (not an error) when tokens don't look like a colour at
// all, leaving the caller free to try another value type in the same
// declaration per §4.6's "first matching recognizer wins" dispatch.
func ParseColor(tokens []lex.Token, pool *strpool.Pool) (bytecode.Color, bool) {
	if len(tokens) == 0 {
		return 0, false
	}
	t := tokens[0]
	switch t.Kind {
	case lex.KindIdent:
		if len(tokens) != 1 {
			return 0, false
		}
		c, ok := namedColors[strings.ToLower(pool.Data(t.Lexeme))]
		return c, ok
	case lex.KindHash:
		if len(tokens) != 1 {
			return 0, false
		}
		return parseHashColor(pool.Data(t.Lexeme))
	case lex.KindFunction:
		name := strings.ToLower(pool.Data(t.Lexeme))
		switch name {
		case "rgb", "rgba":
			return parseRGBFunction(tokens[1:], name == "rgba")
		case "hsl", "hsla":
			return parseHSLFunction(tokens[1:], pool, name == "hsla")
		}
		return 0, false
	}
	return 0, false
}

func parseHashColor(hex string) (bytecode.Color, bool) {
	expand := func(c byte) (byte, byte) {
		v := hexVal(c)
		return v<<4 | v, v<<4 | v
	}
	switch len(hex) {
	case 3:
		r, _ := expand(hex[0])
		g, _ := expand(hex[1])
		b, _ := expand(hex[2])
		return bytecode.RGBA(0xff, r, g, b), true
	case 6:
		r := hexVal(hex[0])<<4 | hexVal(hex[1])
		g := hexVal(hex[2])<<4 | hexVal(hex[3])
		b := hexVal(hex[4])<<4 | hexVal(hex[5])
		return bytecode.RGBA(0xff, r, g, b), true
	case 8:
		r := hexVal(hex[0])<<4 | hexVal(hex[1])
		g := hexVal(hex[2])<<4 | hexVal(hex[3])
		b := hexVal(hex[4])<<4 | hexVal(hex[5])
		a := hexVal(hex[6])<<4 | hexVal(hex[7])
		return bytecode.RGBA(a, r, g, b), true
	}
	return 0, false
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func parseRGBFunction(tokens []lex.Token, hasAlpha bool) (bytecode.Color, bool) {
	var chans []lex.Token
	for _, t := range tokens {
		switch t.Kind {
		case lex.KindWhitespace, lex.KindComment, lex.KindComma, lex.KindRParen:
			continue
		case lex.KindNumber, lex.KindPercentage:
			chans = append(chans, t)
		default:
			return 0, false
		}
	}
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(chans) != want {
		return 0, false
	}
	chanByte := func(t lex.Token) byte {
		v := t.Num.Float()
		if t.Kind == lex.KindPercentage {
			v = v * 255 / 100
		}
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return byte(v)
	}
	r, g, b := chanByte(chans[0]), chanByte(chans[1]), chanByte(chans[2])
	a := byte(0xff)
	if hasAlpha {
		av := chans[3].Num.Float()
		if chans[3].Kind == lex.KindPercentage {
			av /= 100
		}
		if av < 0 {
			av = 0
		}
		if av > 1 {
			av = 1
		}
		a = byte(av * 255)
	}
	return bytecode.RGBA(a, r, g, b), true
}

// parseHSLFunction parses hsl()/hsla()'s hue/saturation/lightness[/alpha]
// argument list and converts it to packed RGBA, mirroring
// parseRGBFunction's channel-collection shape. Hue is a <number> or
// <angle>; saturation and lightness are <percentage>; alpha follows
// rgba()'s <number>-or-<percentage> convention.
func parseHSLFunction(tokens []lex.Token, pool *strpool.Pool, hasAlpha bool) (bytecode.Color, bool) {
	var chans []lex.Token
	for _, t := range tokens {
		switch t.Kind {
		case lex.KindWhitespace, lex.KindComment, lex.KindComma, lex.KindRParen:
			continue
		case lex.KindNumber, lex.KindPercentage, lex.KindDimension:
			chans = append(chans, t)
		default:
			return 0, false
		}
	}
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(chans) != want {
		return 0, false
	}
	if chans[1].Kind != lex.KindPercentage || chans[2].Kind != lex.KindPercentage {
		return 0, false
	}

	hue, ok := hueDegrees(chans[0], pool)
	if !ok {
		return 0, false
	}
	sat := clamp01(chans[1].Num.Float() / 100)
	light := clamp01(chans[2].Num.Float() / 100)
	r, g, b := hslToRGB(hue, sat, light)

	a := byte(0xff)
	if hasAlpha {
		av := chans[3].Num.Float()
		if chans[3].Kind == lex.KindPercentage {
			av /= 100
		}
		a = byte(clamp01(av) * 255)
	}
	return bytecode.RGBA(a, r, g, b), true
}

func hueDegrees(t lex.Token, pool *strpool.Pool) (float64, bool) {
	v := t.Num.Float()
	switch t.Kind {
	case lex.KindNumber:
		return v, true
	case lex.KindDimension:
		switch pool.Data(t.Unit) {
		case "deg":
			return v, true
		case "grad":
			return v * 0.9, true
		case "rad":
			return v * 180 / math.Pi, true
		case "turn":
			return v * 360, true
		}
	}
	return 0, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// hslToRGB implements the CSS Color §4.2 hslToRgb algorithm.
func hslToRGB(hue, sat, light float64) (r, g, b byte) {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	c := (1 - math.Abs(2*light-1)) * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := light - c/2

	var r1, g1, b1 float64
	switch {
	case hue < 60:
		r1, g1, b1 = c, x, 0
	case hue < 120:
		r1, g1, b1 = x, c, 0
	case hue < 180:
		r1, g1, b1 = 0, c, x
	case hue < 240:
		r1, g1, b1 = 0, x, c
	case hue < 300:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	return byte((r1 + m) * 255), byte((g1 + m) * 255), byte((b1 + m) * 255)
}

// ParseLength recognizes a single <length>, <percentage>, or the
// unitless literal 0 (accepted wherever a length is, per the CSS
// grammar's zero-length exception). ok is false if tokens isn't
// exactly one such token. In quirks mode any unitless number is
// treated as a pixel length, matching the old HTML/CSS1 behavior
// browsers still apply to attributes like "width" and "border".
func ParseLength(tokens []lex.Token, pool *strpool.Pool, quirks bool) (val lex.Fixed, unit bytecode.Unit, ok bool) {
	if len(tokens) != 1 {
		return 0, 0, false
	}
	t := tokens[0]
	switch t.Kind {
	case lex.KindPercentage:
		return t.Num, bytecode.UnitPercent, true
	case lex.KindNumber:
		if t.Num == 0 || quirks {
			return t.Num, bytecode.UnitPx, true
		}
		return 0, 0, false
	case lex.KindDimension:
		u, ok := bytecode.LookupUnit(strings.ToLower(pool.Data(t.Unit)))
		if !ok || u.Category() != bytecode.CatLength {
			return 0, 0, false
		}
		return t.Num, u, true
	}
	return 0, 0, false
}

// KeywordSet is a small fixed enumeration of property-specific
// keywords (e.g. display's none/block/inline/...), in declaration
// order; its index becomes the payload word under TagKeyword.
type KeywordSet []string

// Index returns the position of name (case-insensitively) in ks, or
// -1 if not present.
func (ks KeywordSet) Index(name string) int {
	name = strings.ToLower(name)
	for i, k := range ks {
		if k == name {
			return i
		}
	}
	return -1
}

// ParseKeyword matches a single IDENT token against ks.
func ParseKeyword(tokens []lex.Token, pool *strpool.Pool, ks KeywordSet) (idx int, ok bool) {
	if len(tokens) != 1 || tokens[0].Kind != lex.KindIdent {
		return 0, false
	}
	idx = ks.Index(pool.Data(tokens[0].Lexeme))
	return idx, idx >= 0
}

var (
	DisplayKeywords    = KeywordSet{"none", "block", "inline", "inline-block", "flex", "grid", "table", "list-item"}
	PositionKeywords   = KeywordSet{"static", "relative", "absolute", "fixed", "sticky"}
	FloatKeywords      = KeywordSet{"none", "left", "right"}
	ClearKeywords      = KeywordSet{"none", "left", "right", "both"}
	OverflowKeywords   = KeywordSet{"visible", "hidden", "scroll", "auto"}
	VisibilityKeywords = KeywordSet{"visible", "hidden", "collapse"}
	BoxSizingKeywords  = KeywordSet{"content-box", "border-box"}
	BorderStyleKeywords = KeywordSet{
		"none", "hidden", "dotted", "dashed", "solid", "double",
		"groove", "ridge", "inset", "outset",
	}
	FontStyleKeywords    = KeywordSet{"normal", "italic", "oblique"}
	FontWeightKeywords   = KeywordSet{"normal", "bold", "bolder", "lighter"}
	FontVariantKeywords  = KeywordSet{"normal", "small-caps"}
	TextAlignKeywords    = KeywordSet{"left", "right", "center", "justify"}
	TextDecorKeywords    = KeywordSet{"none", "underline", "overline", "line-through", "blink"}
	TextTransformKeywords = KeywordSet{"none", "capitalize", "uppercase", "lowercase"}
	WhiteSpaceKeywords   = KeywordSet{"normal", "pre", "nowrap", "pre-wrap", "pre-line"}
	ListStyleTypeKeywords = KeywordSet{
		"none", "disc", "circle", "square", "decimal",
		"decimal-leading-zero", "lower-roman", "upper-roman",
		"lower-alpha", "upper-alpha",
	}
	ListStylePositionKeywords = KeywordSet{"inside", "outside"}
	VerticalAlignKeywords     = KeywordSet{
		"baseline", "sub", "super", "top", "text-top",
		"middle", "bottom", "text-bottom",
	}
	BackgroundRepeatKeywords     = KeywordSet{"repeat", "repeat-x", "repeat-y", "no-repeat"}
	BackgroundAttachmentKeywords = KeywordSet{"scroll", "fixed", "local"}
)
