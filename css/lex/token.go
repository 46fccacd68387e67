package lex

import "cssbc/css/strpool"

// Kind identifies the lexical category of a Token. The set matches
// the tokenizer inventory of design notes §4.3; the legacy CSS2.1
// "CHAR" token and the CSS3 "DELIM" token are unified into KindDelim
// since both carry exactly one code point and nothing downstream
// distinguishes them. Structural single-character tokens that the
// parser dispatches on constantly (braces, parens, brackets, colon,
// semicolon, comma) get their own kinds instead of requiring every
// caller to compare runes, the way css_lexer.T does in the wider
// retrieval pack.
type Kind uint8

const (
	KindEOF Kind = iota
	KindIdent
	KindFunction
	KindAtKeyword
	KindHash
	KindString
	KindURI
	KindNumber
	KindPercentage
	KindDimension
	KindUnicodeRange
	KindCDO
	KindCDC
	KindWhitespace
	KindComment
	KindDelim
	KindColon
	KindSemicolon
	KindComma
	KindLBrace
	KindRBrace
	KindLParen
	KindRParen
	KindLBracket
	KindRBracket
	KindInvalid
)

var kindNames = [...]string{
	KindEOF:          "EOF",
	KindIdent:        "IDENT",
	KindFunction:     "FUNCTION",
	KindAtKeyword:    "ATKEYWORD",
	KindHash:         "HASH",
	KindString:       "STRING",
	KindURI:          "URI",
	KindNumber:       "NUMBER",
	KindPercentage:   "PERCENTAGE",
	KindDimension:    "DIMENSION",
	KindUnicodeRange: "UNICODE-RANGE",
	KindCDO:          "CDO",
	KindCDC:          "CDC",
	KindWhitespace:   "S",
	KindComment:      "COMMENT",
	KindDelim:        "DELIM",
	KindColon:        "COLON",
	KindSemicolon:    "SEMICOLON",
	KindComma:        "COMMA",
	KindLBrace:       "LBRACE",
	KindRBrace:       "RBRACE",
	KindLParen:       "LPAREN",
	KindRParen:       "RPAREN",
	KindLBracket:     "LBRACKET",
	KindRBracket:     "RBRACKET",
	KindInvalid:      "INVALID",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// HashType distinguishes an "id"-shaped hash token (name is a valid
// identifier, as required for a selector #id or a 3/6/8-digit colour)
// from an "unrestricted" hash (arbitrary name chars after '#').
type HashType uint8

const (
	HashUnrestricted HashType = iota
	HashID
)

// Token is one lexical unit. Only the fields relevant to Kind are
// populated; the rest are zero. Lexeme is an interned handle so the
// same identifier/string text seen repeatedly (property names,
// keywords) is stored once, per design notes §4.1 / invariant 3.
type Token struct {
	Kind    Kind
	Lexeme  strpool.Handle // IDENT/FUNCTION/ATKEYWORD/HASH/STRING/URI raw text
	Unit    strpool.Handle // DIMENSION unit text, lower-cased at intern time for lookup
	Num     Fixed          // NUMBER/PERCENTAGE/DIMENSION numeric payload
	HasInt  bool           // true if the source literal had no '.' or exponent (CSS <integer>)
	Hash    HashType        // for KindHash
	Ch      rune           // for KindDelim and KindUnicodeRange malformed fallback
	RangeLo uint32         // KindUnicodeRange
	RangeHi uint32         // KindUnicodeRange
	Offset  int            // absolute byte offset in the stream this token started at
}
