package testcase_test

import (
	"testing"

	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/stretchr/testify/require"
)

func fixtures() []testcase.Entity {
	return []testcase.Entity{
		{RecordID: "r1", Number: "TC-1", Title: "Login succeeds", Priority: testcase.PriorityHigh, TCGRefs: []string{"TCG-100"}},
		{RecordID: "r2", Number: "TC-2", Title: "Login fails", Priority: testcase.PriorityLow, Steps: "enter wrong password"},
		{RecordID: "r3", Number: "TC-10", Title: "Export report", Priority: testcase.PriorityHigh, TCGRefs: []string{"TCG-200", "TCG-201"}},
	}
}

func numbers(list []testcase.Entity) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.Number
	}
	return out
}

func TestFilter_EmptyStateIsIdentity(t *testing.T) {
	entities := fixtures()
	got := testcase.Filter(entities, testcase.FilterState{})
	require.Equal(t, numbers(entities), numbers(got))

	// Result must be a fresh slice, not an alias.
	got[0].Title = "mutated"
	require.Equal(t, "Login succeeds", entities[0].Title)
}

func TestFilter_QueryMatchesNumberOrTCG(t *testing.T) {
	got := testcase.Filter(fixtures(), testcase.FilterState{Query: "tcg-2"})
	require.Equal(t, []string{"TC-10"}, numbers(got))

	got = testcase.Filter(fixtures(), testcase.FilterState{Query: "tc-1"})
	require.Equal(t, []string{"TC-1", "TC-10"}, numbers(got))
}

func TestFilter_TextMatchesTitleAndBody(t *testing.T) {
	got := testcase.Filter(fixtures(), testcase.FilterState{Text: "wrong password"})
	require.Equal(t, []string{"TC-2"}, numbers(got))
}

func TestFilter_TCGOnlyIgnoresNumber(t *testing.T) {
	// "TC-1" is a substring of no TCG token, so the TCG predicate must
	// not fall back to number matching.
	got := testcase.Filter(fixtures(), testcase.FilterState{TCG: "tc-1"})
	require.Empty(t, got)
}

func TestFilter_PriorityExact(t *testing.T) {
	got := testcase.Filter(fixtures(), testcase.FilterState{Priority: testcase.PriorityHigh})
	require.Equal(t, []string{"TC-1", "TC-10"}, numbers(got))
}

func TestFilter_ANDComposition(t *testing.T) {
	entities := fixtures()
	f1 := testcase.FilterState{Priority: testcase.PriorityHigh}
	f2 := testcase.FilterState{Query: "tcg"}
	merged := testcase.FilterState{Priority: f1.Priority, Query: f2.Query}

	mergedResult := testcase.Filter(entities, merged)
	only1 := numbers(testcase.Filter(entities, f1))
	only2 := numbers(testcase.Filter(entities, f2))

	for _, n := range numbers(mergedResult) {
		require.Contains(t, only1, n)
		require.Contains(t, only2, n)
	}
}
