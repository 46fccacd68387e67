package lex

import (
	"math"
	"strconv"
)

// FixedShift is the number of fractional bits shared by every
// fixed-point numeric value in the codebase (lengths, angles, times,
// frequencies, resolutions, plain numbers and percentages) — see
// design notes §4.3.
const FixedShift = 10

// FixedOne is 1.0 in fixed-point representation.
const FixedOne Fixed = 1 << FixedShift

// Fixed is a signed Q21.10 fixed-point number. Using a fixed base
// across the whole pipeline means bytecode payload words are directly
// comparable without re-parsing floating point, and keeps bytecode
// reproducible across platforms.
type Fixed int32

// ParseFixed converts a decimal literal (as scanned by the tokenizer,
// e.g. "12", "-3.5", "1e2") into fixed-point. ok is false on overflow
// or a value the tokenizer should never have produced.
func ParseFixed(s string) (Fixed, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return FixedFromFloat(f)
}

// FixedFromFloat converts a float64 to fixed-point, failing on overflow.
func FixedFromFloat(f float64) (Fixed, bool) {
	scaled := f * float64(int64(1)<<FixedShift)
	if math.IsNaN(scaled) || scaled > math.MaxInt32 || scaled < math.MinInt32 {
		return 0, false
	}
	return Fixed(math.Round(scaled)), true
}

// Float returns the floating point value of f.
func (f Fixed) Float() float64 {
	return float64(f) / float64(int64(1)<<FixedShift)
}

// Int truncates f towards zero.
func (f Fixed) Int() int {
	return int(f) / int(FixedOne)
}
