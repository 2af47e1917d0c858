package model

import (
	"strconv"
	"strings"
)

// ParseClock parses a "MM:SS" remaining-time clock into seconds. The
// second return is false for empty or malformed clocks; callers fall back
// to sequence ordering rather than erroring.
func ParseClock(clock string) (float64, bool) {
	mm, ss, found := strings.Cut(clock, ":")
	if !found {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(ss, 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, false
	}
	return float64(minutes)*60 + seconds, true
}
