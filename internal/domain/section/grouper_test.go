package section_test

import (
	"testing"

	"github.com/rpggio/casedeck/internal/domain/section"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sampleTree() *section.Tree {
	return section.NewTree([]section.Node{
		{ID: "s1", Name: "Auth"},
		{ID: "s2", Name: "Unassigned"},
		{ID: "s3", Name: "Reports"},
		{ID: "s1a", Name: "Login", ParentID: strPtr("s1")},
		{ID: "s1b", Name: "Logout", ParentID: strPtr("s1")},
	})
}

func groupIDs(groups []*section.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.SectionID
	}
	return out
}

func TestGroup_TreeOrderWithUnassignedDemoted(t *testing.T) {
	grouper := section.NewGrouper(nil)
	groups := grouper.Group(nil, sampleTree(), testcase.SortState{}, nil)

	// "Unassigned"-named real section s2 sorts after its named siblings;
	// the synthetic bucket is always last overall.
	require.Equal(t,
		[]string{"s1", "s1a", "s1b", "s3", "s2", section.UnassignedID},
		groupIDs(groups))
}

func TestGroup_EmptySectionsStillRender(t *testing.T) {
	grouper := section.NewGrouper(nil)
	groups := grouper.Group(nil, sampleTree(), testcase.SortState{}, nil)
	for _, g := range groups {
		require.Empty(t, g.Entities)
	}
}

func TestGroup_AssignsEntitiesAndLevels(t *testing.T) {
	entities := []testcase.Entity{
		{Number: "TC-1", SectionID: strPtr("s1a")},
		{Number: "TC-2", SectionID: strPtr("s1a")},
		{Number: "TC-3"},
	}

	grouper := section.NewGrouper(nil)
	groups := grouper.Group(entities, sampleTree(), testcase.SortState{}, nil)

	byID := make(map[string]*section.Group)
	for _, g := range groups {
		byID[g.SectionID] = g
	}

	require.Len(t, byID["s1a"].Entities, 2)
	require.Equal(t, 2, byID["s1a"].Level)
	require.Equal(t, "Auth / Login", byID["s1a"].Path)
	require.Len(t, byID[section.UnassignedID].Entities, 1)
}

func TestGroup_UnknownSectionSynthesized(t *testing.T) {
	entities := []testcase.Entity{
		{Number: "TC-1", SectionID: strPtr("ghost")},
	}

	grouper := section.NewGrouper(nil)
	groups := grouper.Group(entities, sampleTree(), testcase.SortState{}, nil)

	var ghost *section.Group
	for _, g := range groups {
		if g.SectionID == "ghost" {
			ghost = g
		}
	}
	require.NotNil(t, ghost, "entity with unknown section must not be dropped")
	require.True(t, ghost.Synthesized)
	require.Len(t, ghost.Entities, 1)

	// Synthesized groups come before the unassigned bucket.
	ids := groupIDs(groups)
	require.Equal(t, section.UnassignedID, ids[len(ids)-1])
	require.Equal(t, "ghost", ids[len(ids)-2])
}

func TestGroup_PerSectionSortOverride(t *testing.T) {
	entities := []testcase.Entity{
		{Number: "TC-2", Title: "b", SectionID: strPtr("s1a")},
		{Number: "TC-10", Title: "a", SectionID: strPtr("s1a")},
		{Number: "TC-2", Title: "b", SectionID: strPtr("s1b")},
		{Number: "TC-10", Title: "a", SectionID: strPtr("s1b")},
	}

	grouper := section.NewGrouper(nil)
	groups := grouper.Group(entities, sampleTree(),
		testcase.SortState{Field: testcase.SortByNumber, Order: testcase.Ascending},
		map[string]testcase.SortState{
			"s1b": {Field: testcase.SortByTitle, Order: testcase.Ascending},
		})

	byID := make(map[string]*section.Group)
	for _, g := range groups {
		byID[g.SectionID] = g
	}

	require.Equal(t, "TC-2", byID["s1a"].Entities[0].Number)
	require.Equal(t, "a", byID["s1b"].Entities[0].Title)
}
