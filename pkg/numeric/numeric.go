// Package numeric converts loosely typed JSON values into numbers.
//
// Snapshot documents carry numeric fields that may arrive as JSON numbers,
// numeric strings, or not at all. Conversion never fails: anything that cannot
// be read as a finite number becomes 0.
package numeric

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Float coerces v into a float64. Unparsable, absent and non-finite values
// yield 0.
func Float(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		f, _ := Parse(n.String())
		return f
	case string:
		f, _ := Parse(n)
		return f
	case decimal.Decimal:
		return finite(n.InexactFloat64())
	default:
		return 0
	}
}

// Parse reads s as a decimal number. Surrounding whitespace is ignored. The
// boolean is false when s is empty or not a number, in which case 0 is
// returned.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return finite(d.InexactFloat64()), true
}

// Present reports whether a value was supplied at all. JSON null and missing
// keys both decode to nil.
func Present(v any) bool {
	return v != nil
}

// IsNumber reports whether v is a number at runtime. Numeric strings are not
// numbers.
func IsNumber(v any) bool {
	switch n := v.(type) {
	case float64:
		return !math.IsNaN(n)
	case float32, int, int32, int64, uint, uint32, uint64, json.Number:
		return true
	default:
		return false
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	// normalise negative zero so formatting never shows "-0.00"
	if f == 0 {
		return 0
	}
	return f
}
