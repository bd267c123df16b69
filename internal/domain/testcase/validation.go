package testcase

import (
	"fmt"
	"strings"
)

// ValidateNew checks a proposed test case against local rules before any
// network call is made. existing holds the known entities for the team.
func ValidateNew(e Entity, existing []Entity) error {
	number := strings.TrimSpace(e.Number)
	if number == "" {
		return ErrMissingNumber
	}
	if strings.ContainsAny(number, " \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidNumber, e.Number)
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrMissingTitle
	}
	if e.Priority != "" && !e.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, e.Priority)
	}
	for _, known := range existing {
		if strings.EqualFold(known.Number, number) {
			return fmt.Errorf("%w: %s", ErrDuplicateNumber, number)
		}
	}
	return nil
}

// DuplicatesWithin returns numbers that occur more than once in the
// proposed set, case-insensitively. Order follows first occurrence.
func DuplicatesWithin(numbers []string) []string {
	seen := make(map[string]int, len(numbers))
	var dups []string
	for _, n := range numbers {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, n)
		}
	}
	return dups
}

// DuplicatesAgainst returns proposed numbers that collide with the
// existing set, case-insensitively.
func DuplicatesAgainst(proposed []string, existing []Entity) []string {
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[strings.ToLower(e.Number)] = true
	}
	var dups []string
	for _, n := range proposed {
		if known[strings.ToLower(strings.TrimSpace(n))] {
			dups = append(dups, n)
		}
	}
	return dups
}
