package sheet

import (
	"math"
	"strconv"
	"strings"
)

// CellType is the closed enumeration of column types.
type CellType int

const (
	// CellTypeText columns coerce any defined value to its string form.
	CellTypeText CellType = iota
	// CellTypeNumber columns coerce any defined value to a finite float64,
	// or fail.
	CellTypeNumber
)

// String renders the CellType the way the wire format wants it: "text" or
// "number".
func (t CellType) String() string {
	if t == CellTypeNumber {
		return "number"
	}
	return "text"
}

// ParseCellType parses the wire representation of a CellType.
func ParseCellType(s string) (CellType, bool) {
	switch s {
	case "text":
		return CellTypeText, true
	case "number":
		return CellTypeNumber, true
	default:
		return 0, false
	}
}

// Coerce converts v into t's canonical representation, or reports false if
// v cannot be represented as t.
//
// Text.Coerce always succeeds: a Number value is stringified the way
// JavaScript's JSON.stringify renders a number (shortest round-tripping
// digits, plain decimal from 1e-6 up to but excluding 1e21, exponent form
// such as "1e+21" or "1e-7" outside that range), recorded as an open
// question in DESIGN.md since there's no single canonical choice for how a
// numeric value should render as text.
func (t CellType) Coerce(v Value) (Value, bool) {
	switch t {
	case CellTypeText:
		if v.Kind() == KindText {
			return v, true
		}
		return Text(formatNumber(v.Float64())), true
	case CellTypeNumber:
		if v.Kind() == KindNumber {
			if !isFiniteNumber(v.Float64()) {
				return Value{}, false
			}
			return v, true
		}
		n, err := strconv.ParseFloat(v.String(), 64)
		if err != nil || !isFiniteNumber(n) {
			return Value{}, false
		}
		return Number(n), true
	default:
		return Value{}, false
	}
}

func formatNumber(n float64) string {
	abs := math.Abs(n)
	if abs == 0 {
		return "0"
	}
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	// JavaScript writes the exponent without leading zeros ("1e-7", not "1e-07").
	mant, exp, _ := strings.Cut(strconv.FormatFloat(n, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

func isFiniteNumber(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}
