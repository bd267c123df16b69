package section

import (
	"log/slog"

	"github.com/rpggio/casedeck/internal/domain/testcase"
)

// Group is one renderable section bucket with its ordered entities.
type Group struct {
	SectionID string
	Name      string
	Path      string
	Level     int
	// Synthesized marks groups created for section ids the tree does
	// not know about.
	Synthesized bool
	Entities    []testcase.Entity
}

// Grouper builds display groups from a flat entity list and a section
// tree.
type Grouper struct {
	logger *slog.Logger
}

// NewGrouper creates a grouper. A nil logger falls back to the default.
func NewGrouper(logger *slog.Logger) *Grouper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Grouper{logger: logger}
}

// Group assigns every entity to a section bucket and returns the buckets
// in display order: tree order first, then synthesized groups for
// section ids present only in the data, then the unassigned bucket.
// Every group's entities are sorted with its override if present, else
// the global sort. Empty tree sections still produce (empty) groups and
// no entity is ever dropped.
func (g *Grouper) Group(
	entities []testcase.Entity,
	tree *Tree,
	global testcase.SortState,
	overrides map[string]testcase.SortState,
) []*Group {
	var ordered []*Group
	byID := make(map[string]*Group)

	tree.Walk(func(n *Node) {
		grp := &Group{
			SectionID: n.ID,
			Name:      n.Name,
			Path:      tree.Path(n.ID),
			Level:     n.Level,
		}
		ordered = append(ordered, grp)
		byID[n.ID] = grp
	})

	unassigned := &Group{
		SectionID: UnassignedID,
		Name:      UnassignedName,
		Path:      UnassignedName,
		Level:     1,
	}

	for _, e := range entities {
		switch {
		case e.SectionID == nil:
			unassigned.Entities = append(unassigned.Entities, e)
		default:
			grp, ok := byID[*e.SectionID]
			if !ok {
				// The entity references a section the tree no longer
				// has. Synthesize a group so it still renders.
				g.logger.Warn("entity references unknown section",
					"test_case_number", e.Number,
					"section_id", *e.SectionID)
				grp = &Group{
					SectionID:   *e.SectionID,
					Name:        *e.SectionID,
					Path:        *e.SectionID,
					Level:       1,
					Synthesized: true,
				}
				ordered = append(ordered, grp)
				byID[*e.SectionID] = grp
			}
			grp.Entities = append(grp.Entities, e)
		}
	}

	ordered = append(ordered, unassigned)

	for _, grp := range ordered {
		state := global
		if override, ok := overrides[grp.SectionID]; ok {
			state = override
		}
		testcase.Sort(grp.Entities, state.Field, state.Order)
	}

	return ordered
}
