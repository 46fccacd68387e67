// Package selector implements the Selector Compiler of design notes
// §4.5: it turns the token slice covering one selector list into a
// sequence of simple-selector structures grouped by combinator, each
// selector carrying a precomputed specificity.
package selector

import "cssbc/css/strpool"

// Kind classifies a single simple selector.
type Kind uint8

const (
	KindUniversal Kind = iota
	KindType
	KindID
	KindClass
	KindAttr
	KindPseudoClass
	KindPseudoElement
)

// AttrOp is the attribute-selector match operator.
type AttrOp uint8

const (
	AttrExists AttrOp = iota
	AttrEquals        // =
	AttrIncludes      // ~=
	AttrDashMatch     // |=
	AttrPrefix        // ^=
	AttrSuffix        // $=
	AttrSubstring     // *=
)

// Combinator joins one Compound to the next compound to its right.
// CombinatorNone only ever appears on a selector's first Compound.
type Combinator uint8

const (
	CombinatorNone Combinator = iota
	CombinatorDescendant
	CombinatorChild
	CombinatorAdjacentSibling
	CombinatorGeneralSibling
)

func (c Combinator) String() string {
	switch c {
	case CombinatorDescendant:
		return " "
	case CombinatorChild:
		return ">"
	case CombinatorAdjacentSibling:
		return "+"
	case CombinatorGeneralSibling:
		return "~"
	default:
		return ""
	}
}

// Simple is one simple selector: a type/universal/id/class/attribute/
// pseudo test. Only the fields relevant to Kind are populated.
type Simple struct {
	Kind Kind

	NS    strpool.Handle // resolved namespace handle; 0 = no namespace, AnyNamespace = "*"
	Local strpool.Handle // element/attribute/pseudo name, class name (without '.'), id (without '#')

	AttrOp    AttrOp
	AttrValue strpool.Handle

	// nth-child(an+b)-family argument, also used by :lang()'s single
	// string argument via PseudoArg.
	NthA, NthB int
	PseudoArg  strpool.Handle

	// Not holds the argument selector list of :not(...); its
	// specificity contribution is added to the owning selector's
	// total but it does not itself count as a pseudo-class (design
	// notes §4.5).
	Not []Simple
}

// AnyNamespace is the handle value Simple.NS is set to for a `*`
// namespace prefix ("match any namespace, including none").
const AnyNamespace strpool.Handle = ^strpool.Handle(0)

// Compound is a run of simple selectors with no combinator between
// them (e.g. "div.card#hero"), reached from the previous Compound via
// Combinator.
type Compound struct {
	Combinator Combinator
	Simples    []Simple
}

// Specificity is the CSS2.1 (ids, classes+attrs+pseudo-classes,
// types+pseudo-elements) triple.
type Specificity struct {
	IDs, Classes, Types int
}

// Less reports whether s has strictly lower cascade priority than o
// (compared lexicographically ids, then classes, then types).
func (s Specificity) Less(o Specificity) bool {
	if s.IDs != o.IDs {
		return s.IDs < o.IDs
	}
	if s.Classes != o.Classes {
		return s.Classes < o.Classes
	}
	return s.Types < o.Types
}

func (s Specificity) Add(o Specificity) Specificity {
	return Specificity{s.IDs + o.IDs, s.Classes + o.Classes, s.Types + o.Types}
}

// Selector is one compiled selector: an ordered combinator chain of
// compounds plus its precomputed specificity (invariant 2 of the
// design notes — specificity is never recomputed during matching).
type Selector struct {
	Raw         string
	Compounds   []Compound
	Specificity Specificity
}

func specificityOf(simples []Simple) Specificity {
	var sp Specificity
	for _, s := range simples {
		switch {
		case s.Kind == KindID:
			sp.IDs++
		case s.Kind == KindPseudoClass && len(s.Not) > 0:
			// :not() contributes its argument's specificity but does
			// not itself count as a pseudo-class.
			sp = sp.Add(specificityOf(s.Not))
		case s.Kind == KindClass || s.Kind == KindAttr || s.Kind == KindPseudoClass:
			sp.Classes++
		case s.Kind == KindType:
			sp.Types++
		case s.Kind == KindPseudoElement:
			sp.Types++
		case s.Kind == KindUniversal:
			// contributes nothing
		}
	}
	return sp
}

// computeSpecificity sums every compound's contribution for the whole
// selector.
func computeSpecificity(compounds []Compound) Specificity {
	var sp Specificity
	for _, c := range compounds {
		sp = sp.Add(specificityOf(c.Simples))
	}
	return sp
}
