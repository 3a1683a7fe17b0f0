package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var timeSpecRe = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)(ms|s)$`)

// ParseTimeSpec converts a duration string of shape "<number>(ms|s)" into a
// duration. No other units are accepted.
func ParseTimeSpec(spec string) (time.Duration, error) {
	m := timeSpecRe.FindStringSubmatch(spec)
	if m == nil {
		return 0, fmt.Errorf("invalid time spec %q (expected <number>ms or <number>s)", spec)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time spec %q: %w", spec, err)
	}
	ms := n
	if m[2] == "s" {
		ms *= 1000
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}
