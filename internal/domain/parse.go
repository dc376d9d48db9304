package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidDayOffset = errors.New("invalid day offset")
	ErrInvalidUTCOffset = errors.New("invalid utc offset")
	ErrInvalidSleepTag  = errors.New("invalid sleep tag")
)

const (
	MinUTCOffset = -12
	MaxUTCOffset = 14
)

// ParseDayOffset parses the optional day argument of /log and /stat.
// Empty input means today. Positive values are coerced to 0.
func ParseDayOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDayOffset, s)
	}
	if n > 0 {
		n = 0
	}
	return n, nil
}

// ParseUTCOffset parses a whole-hour UTC offset like "3", "+3" or "-5".
func ParseUTCOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidUTCOffset)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUTCOffset, s)
	}
	if n < MinUTCOffset || n > MaxUTCOffset {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidUTCOffset, n)
	}
	return n, nil
}

// ValidateSleepTag checks that tag is a single '#'-prefixed token.
func ValidateSleepTag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if len(tag) <= 1 || tag[0] != TagPrefix || strings.ContainsAny(tag, " \t\n") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSleepTag, tag)
	}
	return tag, nil
}
