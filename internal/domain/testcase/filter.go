package testcase

import "strings"

// FilterState holds the four independent list predicates. An all-empty
// state is the identity filter. Non-empty predicates compose with AND.
type FilterState struct {
	// Query matches the test case number or any TCG token (substring,
	// case-insensitive).
	Query string `json:"query,omitempty"`
	// Text matches the title or any of the free-text body fields.
	Text string `json:"text,omitempty"`
	// TCG matches TCG tokens exclusively.
	TCG string `json:"tcg,omitempty"`
	// Priority requires an exact priority match.
	Priority Priority `json:"priority,omitempty"`
}

// IsEmpty reports whether the state is the identity filter.
func (f FilterState) IsEmpty() bool {
	return f.Query == "" && f.Text == "" && f.TCG == "" && f.Priority == ""
}

// Matches reports whether e satisfies every non-empty predicate.
func (f FilterState) Matches(e Entity) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(e.Number), q) && !matchesAnyTCG(e, q) {
			return false
		}
	}
	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		if !strings.Contains(strings.ToLower(e.Title), text) &&
			!strings.Contains(strings.ToLower(e.Precondition), text) &&
			!strings.Contains(strings.ToLower(e.Steps), text) &&
			!strings.Contains(strings.ToLower(e.ExpectedResult), text) {
			return false
		}
	}
	if tcg := strings.ToLower(strings.TrimSpace(f.TCG)); tcg != "" {
		if !matchesAnyTCG(e, tcg) {
			return false
		}
	}
	if f.Priority != "" && e.Priority != f.Priority {
		return false
	}
	return true
}

func matchesAnyTCG(e Entity, needle string) bool {
	for _, ref := range e.TCGRefs {
		if strings.Contains(strings.ToLower(ref), needle) {
			return true
		}
	}
	return false
}

// Filter returns the entities satisfying the state, preserving input
// order. The result is always a fresh slice.
func Filter(entities []Entity, state FilterState) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if state.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
