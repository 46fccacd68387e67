// Package props owns the fixed property-name table, the colour-name
// table, and the per-property value parsers that turn a declaration's
// token run into bytecode.Words, as called for by design notes §4.6.
// css/bytecode stays domain-agnostic; this package is where "opcode 7
// means color" gets decided.
package props

import "cssbc/css/bytecode"

const (
	PropColor bytecode.Opcode = iota
	PropBackgroundColor
	PropBackgroundImage
	PropBackgroundRepeat
	PropBackgroundAttachment
	PropBackgroundPositionX
	PropBackgroundPositionY
	PropBackgroundSize

	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight

	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft

	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft

	PropBorderTopWidth
	PropBorderRightWidth
	PropBorderBottomWidth
	PropBorderLeftWidth

	PropBorderTopStyle
	PropBorderRightStyle
	PropBorderBottomStyle
	PropBorderLeftStyle

	PropBorderTopColor
	PropBorderRightColor
	PropBorderBottomColor
	PropBorderLeftColor

	PropBorderTopLeftRadius
	PropBorderTopRightRadius
	PropBorderBottomRightRadius
	PropBorderBottomLeftRadius

	PropDisplay
	PropPosition
	PropFloat
	PropClear
	PropOverflow
	PropVisibility
	PropBoxSizing

	PropTop
	PropRight
	PropBottom
	PropLeft
	PropZIndex

	PropFontFamily
	PropFontSize
	PropFontStyle
	PropFontWeight
	PropFontVariant
	PropLineHeight

	PropTextAlign
	PropTextDecoration
	PropTextTransform
	PropTextIndent
	PropWhiteSpace
	PropLetterSpacing
	PropWordSpacing

	PropListStyleType
	PropListStylePosition
	PropListStyleImage

	PropVerticalAlign
	PropCursor
	PropOpacity

	PropCount // not a real property; count of assigned opcodes
)

var propertyNames = map[string]bytecode.Opcode{
	"color":                       PropColor,
	"background-color":            PropBackgroundColor,
	"background-image":            PropBackgroundImage,
	"background-repeat":           PropBackgroundRepeat,
	"background-attachment":       PropBackgroundAttachment,
	"background-position-x":       PropBackgroundPositionX,
	"background-position-y":       PropBackgroundPositionY,
	"background-size":             PropBackgroundSize,
	"width":                       PropWidth,
	"height":                      PropHeight,
	"min-width":                   PropMinWidth,
	"min-height":                  PropMinHeight,
	"max-width":                   PropMaxWidth,
	"max-height":                  PropMaxHeight,
	"margin-top":                  PropMarginTop,
	"margin-right":                PropMarginRight,
	"margin-bottom":               PropMarginBottom,
	"margin-left":                 PropMarginLeft,
	"padding-top":                 PropPaddingTop,
	"padding-right":               PropPaddingRight,
	"padding-bottom":              PropPaddingBottom,
	"padding-left":                PropPaddingLeft,
	"border-top-width":            PropBorderTopWidth,
	"border-right-width":          PropBorderRightWidth,
	"border-bottom-width":         PropBorderBottomWidth,
	"border-left-width":           PropBorderLeftWidth,
	"border-top-style":            PropBorderTopStyle,
	"border-right-style":          PropBorderRightStyle,
	"border-bottom-style":         PropBorderBottomStyle,
	"border-left-style":           PropBorderLeftStyle,
	"border-top-color":            PropBorderTopColor,
	"border-right-color":          PropBorderRightColor,
	"border-bottom-color":         PropBorderBottomColor,
	"border-left-color":           PropBorderLeftColor,
	"border-top-left-radius":      PropBorderTopLeftRadius,
	"border-top-right-radius":     PropBorderTopRightRadius,
	"border-bottom-right-radius":  PropBorderBottomRightRadius,
	"border-bottom-left-radius":   PropBorderBottomLeftRadius,
	"display":                     PropDisplay,
	"position":                    PropPosition,
	"float":                       PropFloat,
	"clear":                       PropClear,
	"overflow":                    PropOverflow,
	"visibility":                  PropVisibility,
	"box-sizing":                  PropBoxSizing,
	"top":                         PropTop,
	"right":                       PropRight,
	"bottom":                      PropBottom,
	"left":                        PropLeft,
	"z-index":                     PropZIndex,
	"font-family":                 PropFontFamily,
	"font-size":                   PropFontSize,
	"font-style":                  PropFontStyle,
	"font-weight":                 PropFontWeight,
	"font-variant":                PropFontVariant,
	"line-height":                 PropLineHeight,
	"text-align":                  PropTextAlign,
	"text-decoration":             PropTextDecoration,
	"text-transform":              PropTextTransform,
	"text-indent":                 PropTextIndent,
	"white-space":                 PropWhiteSpace,
	"letter-spacing":              PropLetterSpacing,
	"word-spacing":                PropWordSpacing,
	"list-style-type":             PropListStyleType,
	"list-style-position":         PropListStylePosition,
	"list-style-image":            PropListStyleImage,
	"vertical-align":              PropVerticalAlign,
	"cursor":                      PropCursor,
	"opacity":                     PropOpacity,
}

// LookupProperty resolves a lower-cased property name to its opcode.
// Shorthands (margin, padding, border-width, border-style,
// border-color, border-radius) are not in this table — they are
// recognized separately by the dispatcher and
// expanded to the longhands above before a single opcode is chosen.
func LookupProperty(name string) (bytecode.Opcode, bool) {
	op, ok := propertyNames[name]
	return op, ok
}
