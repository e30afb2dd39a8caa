package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	racedomain "github.com/Black-And-White-Club/racing-car/app/modules/race/domain"
)

const (
	// NameSeparator splits the raw car name list.
	NameSeparator = ","

	// MaxNameLength is the longest car name accepted, in characters.
	MaxNameLength = 5

	// MaxRounds is the largest round count accepted.
	MaxRounds = 10000
)

var roundCountPattern = regexp.MustCompile(`^\d+$`)

// ParseCarNames splits a comma separated list into trimmed, distinct names.
func ParseCarNames(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: enter at least one car name", racedomain.ErrEmptyField)
	}

	parts := strings.Split(raw, NameSeparator)
	names := make([]string, 0, len(parts))
	seen := make(map[string]int, len(parts))

	for i, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, fmt.Errorf("%w: car name %d is empty", racedomain.ErrInvalidName, i+1)
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return nil, fmt.Errorf("%w: %q is longer than %d characters", racedomain.ErrInvalidName, name, MaxNameLength)
		}
		if first, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %q appears at positions %d and %d", racedomain.ErrDuplicateName, name, first, i+1)
		}
		seen[name] = i + 1
		names = append(names, name)
	}

	return names, nil
}

// ParseRoundCount parses a decimal round count in [1, MaxRounds].
func ParseRoundCount(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: enter the number of rounds", racedomain.ErrEmptyField)
	}
	if !roundCountPattern.MatchString(trimmed) {
		return 0, fmt.Errorf("%w: got %q", racedomain.ErrInvalidRoundCount, trimmed)
	}

	rounds, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is out of range", racedomain.ErrInvalidRoundCount, trimmed)
	}
	if rounds <= 0 {
		return 0, fmt.Errorf("%w: got %d", racedomain.ErrInvalidRoundCount, rounds)
	}
	if rounds > MaxRounds {
		return 0, fmt.Errorf("%w: %d is more than %d", racedomain.ErrInvalidRoundCount, rounds, MaxRounds)
	}
	return rounds, nil
}
