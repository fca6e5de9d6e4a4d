package input

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const maxCount = math.MaxInt32

// ParseNumber converts free text the way the browser form did: leading
// whitespace is skipped, the longest numeric prefix is used and anything that
// yields no number (or NaN, or zero) becomes 0. "12abc" is 12, ".5" is 0.5,
// "1e2x" is 100 and "Infinity" is +Inf.
func ParseNumber(s string) float64 {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})

	prefix := numericPrefix(s)
	if prefix == "" {
		return 0
	}

	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		// ErrRange still carries ±Inf or ±0, which is what we want
		if !errors.Is(err, strconv.ErrRange) {
			return 0
		}
	}
	if math.IsNaN(v) || v == 0 {
		return 0
	}
	return v
}

// numericPrefix returns the longest prefix of s that is a decimal literal
// (optional sign, digits, fraction, exponent) or a signed "Infinity".
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i] + "Inf"
	}

	start := i
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}

	// The exponent only counts when at least one digit follows it
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expStart := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > expStart {
			i = j
		}
	}

	if i == start {
		return ""
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// toCount truncates toward zero and clamps to the int32 range
func toCount(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= maxCount:
		return maxCount
	case v <= -maxCount:
		return -maxCount
	default:
		return int(math.Trunc(v))
	}
}
