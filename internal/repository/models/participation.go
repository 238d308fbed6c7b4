package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParticipationValue reads the leading decimal number of raw ("12.5%" is 12.5).
// Anything unparsable is 0. Every store and report averages with this rule.
func ParticipationValue(raw string) float64 {
	m := numericPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
