package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrParse is returned when a duration string contains no usable tokens or
// adds up to zero.
var ErrParse = errors.New("invalid duration")

var durationToken = regexp.MustCompile(`(?i)(\d+)\s*([hms])`)

// FormatDuration formats seconds into zero-padded HHhMMmSSs format. Hours are
// not wrapped at 24. Negative totals keep a leading minus sign.
func FormatDuration(totalSeconds int64) string {
	sign := ""
	if totalSeconds < 0 {
		sign = "-"
		totalSeconds = -totalSeconds
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%s%02dh%02dm%02ds", sign, h, m, s)
}

// ParseDuration scans text for <integer><unit> tokens (unit h, m or s,
// case-insensitive), sums them and returns the total in seconds. Characters
// between tokens are ignored. A string with no tokens, or whose tokens add up
// to zero, fails with ErrParse.
func ParseDuration(text string) (int64, error) {
	matches := durationToken.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %q has no h/m/s tokens", ErrParse, text)
	}

	var total int64
	for _, match := range matches {
		n, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrParse, match[1])
		}
		switch strings.ToLower(match[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}

	if total == 0 {
		return 0, fmt.Errorf("%w: %q adds up to zero", ErrParse, text)
	}
	return total, nil
}
