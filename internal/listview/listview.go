// Package listview turns a view's working state into an ordered list of
// render rows: filter, group by section, then apply collapse
// visibility. It is pure computation over in-memory data.
package listview

import (
	"log/slog"

	"github.com/rpggio/casedeck/internal/domain/section"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/session"
)

// RowKind distinguishes section header rows from entity rows.
type RowKind string

const (
	RowGroup  RowKind = "group"
	RowEntity RowKind = "entity"
)

// Row is one renderable line. A group row carries Group; an entity row
// carries both Group (its bucket) and Entity. Hidden rows are kept in
// the output with Visible false so toggling collapse does not require a
// rebuild.
type Row struct {
	Kind    RowKind
	Group   *section.Group
	Entity  *testcase.Entity
	Visible bool
	Level   int
}

type Builder struct {
	grouper *section.Grouper
}

func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{grouper: section.NewGrouper(logger)}
}

// Build produces the full row list for the view: entities filtered by
// the state's filter, grouped in section display order, sorted per
// group, and flagged with collapse visibility. A collapsed section's
// header stays visible so it can be expanded; its entity rows and all
// descendant rows are hidden.
func (b *Builder) Build(state *session.State, entities []testcase.Entity, tree *section.Tree) []Row {
	filtered := testcase.Filter(entities, state.Filters)
	groups := b.grouper.Group(filtered, tree, state.Sort, state.SortOverrides)

	var rows []Row
	for _, grp := range groups {
		headerVisible := ancestorsVisible(state.Collapse, grp.SectionID, tree)
		rows = append(rows, Row{
			Kind:    RowGroup,
			Group:   grp,
			Visible: headerVisible,
			Level:   grp.Level,
		})

		entityVisible := headerVisible && !state.Collapse.IsCollapsed(grp.SectionID)
		for i := range grp.Entities {
			rows = append(rows, Row{
				Kind:    RowEntity,
				Group:   grp,
				Entity:  &grp.Entities[i],
				Visible: entityVisible,
				Level:   grp.Level + 1,
			})
		}
	}
	return rows
}

// ancestorsVisible checks only the ancestor chain, not the node itself.
func ancestorsVisible(collapse *section.CollapseState, id string, tree *section.Tree) bool {
	if collapse == nil || tree == nil || id == section.UnassignedID {
		return true
	}
	if _, ok := tree.Get(id); !ok {
		return true
	}
	for _, ancestor := range tree.Ancestors(id) {
		if collapse.IsCollapsed(ancestor) {
			return false
		}
	}
	return true
}
