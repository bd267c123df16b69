package testcase

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField selects the comparison key for list sorting.
type SortField string

const (
	SortByNumber   SortField = "number"
	SortByTitle    SortField = "title"
	SortByTCG      SortField = "tcg"
	SortByPriority SortField = "priority"
	SortByCreated  SortField = "created"
	SortByUpdated  SortField = "updated"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortState pairs a field with a direction. The zero value means "leave
// the list in its current order".
type SortState struct {
	Field SortField `json:"field,omitempty"`
	Order SortOrder `json:"order,omitempty"`
}

// Sort orders list in place. An empty field leaves the order untouched;
// an unknown field compares everything equal, which keeps the sort
// stable and therefore also a no-op.
func Sort(list []Entity, field SortField, order SortOrder) {
	if field == "" {
		return
	}
	cmp := comparator(field)
	sort.SliceStable(list, func(i, j int) bool {
		c := cmp(list[i], list[j])
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
}

func comparator(field SortField) func(a, b Entity) int {
	switch field {
	case SortByNumber:
		return func(a, b Entity) int { return CompareNatural(a.Number, b.Number) }
	case SortByTCG:
		return func(a, b Entity) int {
			return CompareNatural(strings.Join(a.TCGRefs, ","), strings.Join(b.TCGRefs, ","))
		}
	case SortByTitle:
		c := collate.New(language.Und, collate.IgnoreCase)
		return func(a, b Entity) int { return c.CompareString(a.Title, b.Title) }
	case SortByPriority:
		return func(a, b Entity) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortByCreated:
		return func(a, b Entity) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByUpdated:
		return func(a, b Entity) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return func(a, b Entity) int { return 0 }
	}
}

// CompareNatural compares strings segment by segment, treating runs of
// digits as numbers, so "TC-9" sorts before "TC-10". Non-digit segments
// compare case-insensitively.
func CompareNatural(a, b string) int {
	for a != "" || b != "" {
		aSeg, aNum, aRest := nextSegment(a)
		bSeg, bNum, bRest := nextSegment(b)

		switch {
		case aNum && bNum:
			if c := compareDigits(aSeg, bSeg); c != 0 {
				return c
			}
		default:
			if c := strings.Compare(strings.ToLower(aSeg), strings.ToLower(bSeg)); c != 0 {
				return c
			}
		}
		a, b = aRest, bRest
	}
	return 0
}

// nextSegment splits off the leading all-digit or all-non-digit run.
func nextSegment(s string) (seg string, numeric bool, rest string) {
	if s == "" {
		return "", false, ""
	}
	numeric = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == numeric {
		i++
	}
	return s[:i], numeric, s[i:]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// compareDigits compares two all-digit strings numerically without
// overflow, ignoring leading zeros.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
