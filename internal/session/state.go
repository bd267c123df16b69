// Package session holds the per-view working state: the in-memory
// entity list, filter and sort settings, the selection, and collapse
// state. One State is constructed per page/view instance and passed by
// reference to the components that act on it; it is never shared as a
// process-wide singleton and is not safe for concurrent use.
package session

import (
	"sort"

	"github.com/rpggio/casedeck/internal/domain/section"
	"github.com/rpggio/casedeck/internal/domain/testcase"
)

// State is the working set for one open view of a team's catalog.
type State struct {
	TeamID      string
	ContainerID string

	// Entities is the authoritative in-memory list for this view,
	// regardless of whether persistence succeeded.
	Entities []testcase.Entity
	Tree     *section.Tree

	Filters       testcase.FilterState
	Sort          testcase.SortState
	SortOverrides map[string]testcase.SortState
	Collapse      *section.CollapseState

	selection map[string]bool
	// containerLocked marks the parent container as terminal; batch
	// actions are forbidden and the selection is dropped.
	containerLocked bool
}

// New creates an empty view state for a team.
func New(teamID string) *State {
	return &State{
		TeamID:        teamID,
		SortOverrides: make(map[string]testcase.SortState),
		Collapse:      section.NewCollapseState(),
		selection:     make(map[string]bool),
	}
}

// Select adds record ids to the selection. Ignored while the container
// is locked.
func (s *State) Select(recordIDs ...string) {
	if s.containerLocked {
		return
	}
	for _, id := range recordIDs {
		if id != "" {
			s.selection[id] = true
		}
	}
}

// Deselect removes record ids from the selection.
func (s *State) Deselect(recordIDs ...string) {
	for _, id := range recordIDs {
		delete(s.selection, id)
	}
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.selection = make(map[string]bool)
}

// Selection returns the selected record ids in stable order.
func (s *State) Selection() []string {
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasSelection reports whether anything is selected.
func (s *State) HasSelection() bool {
	return len(s.selection) > 0
}

// SetContainerLocked marks the container terminal/unlocked. Locking
// clears the selection, since batch actions are no longer allowed.
func (s *State) SetContainerLocked(locked bool) {
	s.containerLocked = locked
	if locked {
		s.ClearSelection()
	}
}

// ContainerLocked reports whether batch actions are forbidden.
func (s *State) ContainerLocked() bool {
	return s.containerLocked
}

// Entity returns the in-memory entity with the given record id.
func (s *State) Entity(recordID string) (*testcase.Entity, bool) {
	for i := range s.Entities {
		if s.Entities[i].RecordID == recordID {
			return &s.Entities[i], true
		}
	}
	return nil, false
}

// PatchEntity replaces the in-memory entity matching by number first,
// record id second. Unknown entities are appended; the view is
// authoritative for itself.
func (s *State) PatchEntity(e testcase.Entity) {
	for i := range s.Entities {
		if s.Entities[i].Number == e.Number || s.Entities[i].RecordID == e.RecordID {
			e.RecordID = s.Entities[i].RecordID
			s.Entities[i] = e
			return
		}
	}
	s.Entities = append(s.Entities, e)
}

// RemoveEntity drops the entity with the given record id from the
// in-memory list and the selection.
func (s *State) RemoveEntity(recordID string) {
	for i := range s.Entities {
		if s.Entities[i].RecordID == recordID {
			s.Entities = append(s.Entities[:i], s.Entities[i+1:]...)
			break
		}
	}
	delete(s.selection, recordID)
}

// ClearFilters resets the filter state to all-empty.
func (s *State) ClearFilters() {
	s.Filters = testcase.FilterState{}
}
