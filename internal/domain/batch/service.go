// Package batch implements the reconciliation workflow for multi-record
// edits: gate on selection, preview and confirm structural moves,
// submit each field group independently, patch the local state
// optimistically, and schedule a background re-sync with the source of
// truth.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rpggio/casedeck/internal/cache"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/repository"
	"github.com/rpggio/casedeck/internal/session"
)

// Mutation describes the field changes of one batch action. Nil fields
// are untouched. A SectionID of empty string moves the records to the
// virtual unassigned bucket.
type Mutation struct {
	TCGRefs           *[]string
	Priority          *testcase.Priority
	SectionID         *string
	TargetContainerID *string
	Delete            bool
}

func (m Mutation) empty() bool {
	return m.TCGRefs == nil && m.Priority == nil && m.SectionID == nil &&
		m.TargetContainerID == nil && !m.Delete
}

// Service runs batch actions against the remote API and reconciles the
// local view and cache.
type Service struct {
	api       repository.EntityAPI
	cache     *cache.Manager
	confirmer repository.Confirmer
	logger    *slog.Logger

	previewTopN int
	resync      singleflight.Group
}

// NewService creates a batch service. previewTopN bounds how many
// impacted containers the confirmation summary names.
func NewService(
	api repository.EntityAPI,
	cacheManager *cache.Manager,
	confirmer repository.Confirmer,
	logger *slog.Logger,
	previewTopN int,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if previewTopN <= 0 {
		previewTopN = 5
	}
	return &Service{
		api:         api,
		cache:       cacheManager,
		confirmer:   confirmer,
		logger:      logger,
		previewTopN: previewTopN,
	}
}

// Apply runs one batch action over the current selection. It returns
// the per-group report together with any terminal error; a declined
// move returns ErrMoveDeclined with no state change anywhere.
func (s *Service) Apply(ctx context.Context, state *session.State, mut Mutation) (*Report, error) {
	if state.ContainerLocked() {
		return &Report{State: StateIdle}, ErrContainerLocked
	}
	selected := state.Selection()
	if len(selected) == 0 {
		return &Report{State: StateIdle}, ErrNoSelection
	}
	if mut.empty() {
		return &Report{State: StateSelectionNonEmpty}, ErrEmptyMutation
	}

	report := &Report{State: StateSelectionNonEmpty}

	if mut.TargetContainerID != nil {
		report.State = StateImpactPreviewPending
		preview, err := s.api.ImpactPreview(ctx, state.TeamID, selected, *mut.TargetContainerID)
		if err != nil {
			report.State = StateFailed
			return report, fmt.Errorf("impact preview: %w", err)
		}
		if preview.ImpactedItemCount > 0 {
			ok, err := s.confirmer.Confirm(ctx, ImpactSummary(preview, s.previewTopN))
			if err != nil {
				report.State = StateFailed
				return report, fmt.Errorf("confirming move: %w", err)
			}
			if !ok {
				report.State = StateIdle
				return report, ErrMoveDeclined
			}
		}
		report.State = StateConfirmed
	}

	report.State = StateSubmitting
	for _, req := range s.groupRequests(selected, mut) {
		resp, err := s.api.BatchUpdate(ctx, state.TeamID, req.request)
		result := GroupResult{Group: req.group, Err: err, Response: resp}
		report.Results = append(report.Results, result)

		if result.OK() {
			s.applyOptimistic(state, selected, req.group, mut)
		} else {
			s.logger.Warn("batch group failed", "group", string(req.group),
				"team", state.TeamID, "error", err)
		}
	}

	if report.Applied() {
		state.ClearSelection()
		report.State = StateApplied
		s.scheduleResync(state.TeamID, state.ContainerID)
	} else {
		report.State = StateFailed
	}
	return report, nil
}

type groupRequest struct {
	group   FieldGroup
	request repository.BatchRequest
}

// groupRequests splits the mutation into independently submitted
// per-field-group calls, in a fixed order.
func (s *Service) groupRequests(selected []string, mut Mutation) []groupRequest {
	var out []groupRequest
	if mut.Delete {
		// Delete supersedes field updates.
		return []groupRequest{{GroupDelete, repository.BatchRequest{
			Operation: "delete",
			RecordIDs: selected,
		}}}
	}
	if mut.TCGRefs != nil {
		out = append(out, groupRequest{GroupTCG, repository.BatchRequest{
			Operation:  "update_tcg",
			RecordIDs:  selected,
			UpdateData: map[string]any{"tcg": *mut.TCGRefs},
		}})
	}
	if mut.Priority != nil {
		out = append(out, groupRequest{GroupPriority, repository.BatchRequest{
			Operation:  "update_priority",
			RecordIDs:  selected,
			UpdateData: map[string]any{"priority": string(*mut.Priority)},
		}})
	}
	if mut.SectionID != nil {
		var value any
		if *mut.SectionID != "" {
			value = *mut.SectionID
		}
		out = append(out, groupRequest{GroupSection, repository.BatchRequest{
			Operation:  "update_section",
			RecordIDs:  selected,
			UpdateData: map[string]any{"section_id": value},
		}})
	}
	if mut.TargetContainerID != nil {
		out = append(out, groupRequest{GroupContainer, repository.BatchRequest{
			Operation:  "move_container",
			RecordIDs:  selected,
			UpdateData: map[string]any{"target_container_id": *mut.TargetContainerID},
		}})
	}
	return out
}

// applyOptimistic patches the in-memory list and the cache for one
// confirmed group without waiting for the re-sync.
func (s *Service) applyOptimistic(state *session.State, selected []string, group FieldGroup, mut Mutation) {
	for _, id := range selected {
		entity, ok := state.Entity(id)
		if !ok {
			s.logger.Debug("selected entity not in working set", "record_id", id)
			continue
		}

		if group == GroupDelete {
			removed := *entity
			state.RemoveEntity(id)
			s.cache.RemoveOne(state.TeamID, id, &removed)
			continue
		}

		patched := *entity
		switch group {
		case GroupTCG:
			refs := make([]string, len(*mut.TCGRefs))
			copy(refs, *mut.TCGRefs)
			patched.TCGRefs = refs
		case GroupPriority:
			patched.Priority = *mut.Priority
		case GroupSection:
			if *mut.SectionID == "" {
				patched.SectionID = nil
			} else {
				sectionID := *mut.SectionID
				patched.SectionID = &sectionID
			}
		case GroupContainer:
			// Container membership is not part of the entity shape;
			// the re-sync reloads the authoritative list.
			continue
		}
		patched.UpdatedAt = time.Now()

		state.PatchEntity(patched)
		s.cache.PatchOne(state.TeamID, patched)
		s.cache.Broadcast(state.TeamID, patched, nil)
	}
}

// scheduleResync kicks off a background full list reload so the cache
// converges on authoritative state (including section item counts).
// Concurrent requests for the same team collapse into one flight, and a
// team switch during the fetch discards the write.
func (s *Service) scheduleResync(teamID, containerID string) {
	generation := s.cache.Generation()
	go func() {
		_, _, _ = s.resync.Do(teamID, func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			entities, err := s.api.List(ctx, teamID, containerID)
			if err != nil {
				s.logger.Debug("background resync failed", "team", teamID, "error", err)
				return nil, err
			}
			s.cache.SetIfGeneration(teamID, entities, generation)
			return nil, nil
		})
	}()
}

// ScreenClone validates proposed numbers for a copy/clone before any
// submission: collisions within the proposal and against the existing
// set both block, reporting the offending numbers.
func (s *Service) ScreenClone(proposed []string, existing []testcase.Entity) error {
	if dups := testcase.DuplicatesWithin(proposed); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateProposed, strings.Join(dups, ", "))
	}
	if dups := testcase.DuplicatesAgainst(proposed, existing); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateExisting, strings.Join(dups, ", "))
	}
	return nil
}

// ImpactSummary renders the human-readable confirmation text for a
// structural move: the top N impacted containers plus a "+K more"
// truncation.
func ImpactSummary(report *repository.ImpactReport, topN int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This move will affect %d test case(s)", report.ImpactedItemCount)

	if len(report.ImpactedContainers) > 0 {
		names := make([]string, 0, topN)
		for i, c := range report.ImpactedContainers {
			if i >= topN {
				break
			}
			names = append(names, fmt.Sprintf("%s (%d removed)", c.Name, c.RemovedItemCount))
		}
		fmt.Fprintf(&b, " in: %s", strings.Join(names, ", "))
		if extra := len(report.ImpactedContainers) - topN; extra > 0 {
			fmt.Fprintf(&b, ", +%d more", extra)
		}
	}
	b.WriteString(". Continue?")
	return b.String()
}
