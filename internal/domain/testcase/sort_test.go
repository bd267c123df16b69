package testcase_test

import (
	"testing"
	"time"

	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/stretchr/testify/require"
)

func TestCompareNatural(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"TC-2", "TC-10", -1},
		{"TC-10", "TC-2", 1},
		{"TC-10", "TC-10", 0},
		{"TC-007", "TC-7", 0},
		{"tc-5", "TC-5", 0},
		{"TC-1-2", "TC-1-10", -1},
		{"", "TC-1", -1},
	}
	for _, tc := range cases {
		got := testcase.CompareNatural(tc.a, tc.b)
		switch {
		case tc.want < 0:
			require.Negative(t, got, "%q vs %q", tc.a, tc.b)
		case tc.want > 0:
			require.Positive(t, got, "%q vs %q", tc.a, tc.b)
		default:
			require.Zero(t, got, "%q vs %q", tc.a, tc.b)
		}
	}
}

func TestSort_NaturalNumberOrder(t *testing.T) {
	list := []testcase.Entity{
		{Number: "TC-10"}, {Number: "TC-2"}, {Number: "TC-1"},
	}
	testcase.Sort(list, testcase.SortByNumber, testcase.Ascending)
	require.Equal(t, []string{"TC-1", "TC-2", "TC-10"}, numbers(list))

	testcase.Sort(list, testcase.SortByNumber, testcase.Descending)
	require.Equal(t, []string{"TC-10", "TC-2", "TC-1"}, numbers(list))
}

func TestSort_Idempotent(t *testing.T) {
	list := []testcase.Entity{
		{Number: "TC-3"}, {Number: "TC-1"}, {Number: "TC-20"}, {Number: "TC-2"},
	}
	testcase.Sort(list, testcase.SortByNumber, testcase.Ascending)
	sortedOnce := numbers(list)

	testcase.Sort(list, testcase.SortByNumber, testcase.Ascending)
	require.Equal(t, sortedOnce, numbers(list))
}

func TestSort_EmptyAndUnknownFieldPreserveOrder(t *testing.T) {
	original := []string{"TC-3", "TC-1", "TC-2"}
	list := []testcase.Entity{
		{Number: "TC-3"}, {Number: "TC-1"}, {Number: "TC-2"},
	}

	testcase.Sort(list, "", testcase.Ascending)
	require.Equal(t, original, numbers(list))

	testcase.Sort(list, "bogus", testcase.Ascending)
	require.Equal(t, original, numbers(list))
}

func TestSort_PriorityRank(t *testing.T) {
	list := []testcase.Entity{
		{Number: "TC-1", Priority: testcase.PriorityLow},
		{Number: "TC-2", Priority: testcase.PriorityHigh},
		{Number: "TC-3", Priority: testcase.PriorityMedium},
	}
	testcase.Sort(list, testcase.SortByPriority, testcase.Descending)
	require.Equal(t, []string{"TC-2", "TC-3", "TC-1"}, numbers(list))
}

func TestSort_Timestamps(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	list := []testcase.Entity{
		{Number: "TC-1", CreatedAt: base.Add(2 * time.Hour)},
		{Number: "TC-2", CreatedAt: base},
		{Number: "TC-3", CreatedAt: base.Add(time.Hour)},
	}
	testcase.Sort(list, testcase.SortByCreated, testcase.Ascending)
	require.Equal(t, []string{"TC-2", "TC-3", "TC-1"}, numbers(list))
}
