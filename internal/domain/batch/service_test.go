package batch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/casedeck/internal/cache"
	"github.com/rpggio/casedeck/internal/domain/batch"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/kvstore"
	"github.com/rpggio/casedeck/internal/repository"
	"github.com/rpggio/casedeck/internal/repository/mocks"
	"github.com/rpggio/casedeck/internal/session"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const team = "alpha"

func strPtr(s string) *string { return &s }

func testEntities() []testcase.Entity {
	s1 := "s1"
	return []testcase.Entity{
		{RecordID: "r1", Number: "TC-1", Title: "One", Priority: testcase.PriorityLow, SectionID: &s1},
		{RecordID: "r2", Number: "TC-2", Title: "Two", Priority: testcase.PriorityLow, SectionID: &s1},
		{RecordID: "r3", Number: "TC-3", Title: "Three", Priority: testcase.PriorityLow, SectionID: &s1},
	}
}

type env struct {
	api       *mocks.EntityAPI
	confirmer *mocks.Confirmer
	manager   *cache.Manager
	state     *session.State
	svc       *batch.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	api := &mocks.EntityAPI{}
	confirmer := &mocks.Confirmer{}
	manager := cache.NewManager(kvstore.NewMemoryStore(0), nil, cache.Options{TTL: time.Hour})

	state := session.New(team)
	state.Entities = testEntities()
	manager.Set(team, state.Entities)

	return &env{
		api:       api,
		confirmer: confirmer,
		manager:   manager,
		state:     state,
		svc:       batch.NewService(api, manager, confirmer, nil, 3),
	}
}

func (e *env) allowResync() {
	e.api.On("List", mock.Anything, team, "").Return(nil, errors.New("offline")).Maybe()
}

func TestApply_NoSelection(t *testing.T) {
	e := newEnv(t)

	high := testcase.PriorityHigh
	_, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{Priority: &high})
	require.ErrorIs(t, err, batch.ErrNoSelection)

	e.api.AssertNotCalled(t, "BatchUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_ContainerLocked(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")
	e.state.SetContainerLocked(true)

	require.False(t, e.state.HasSelection(), "locking drops the selection")

	high := testcase.PriorityHigh
	_, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{Priority: &high})
	require.ErrorIs(t, err, batch.ErrContainerLocked)
}

func TestApply_EmptyMutation(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")

	_, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{})
	require.ErrorIs(t, err, batch.ErrEmptyMutation)
}

func TestApply_OptimisticPriorityPatch(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1", "r2")
	e.allowResync()

	e.api.On("BatchUpdate", mock.Anything, team, mock.MatchedBy(func(req repository.BatchRequest) bool {
		return req.Operation == "update_priority" && len(req.RecordIDs) == 2
	})).Return(&repository.BatchResponse{Success: true, SuccessCount: 2, ProcessedCount: 2}, nil)

	high := testcase.PriorityHigh
	report, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{Priority: &high})
	require.NoError(t, err)
	require.Equal(t, batch.StateApplied, report.State)
	require.True(t, report.Applied())

	// In-memory list patched without waiting for a refetch.
	e1, _ := e.state.Entity("r1")
	require.Equal(t, testcase.PriorityHigh, e1.Priority)
	e3, _ := e.state.Entity("r3")
	require.Equal(t, testcase.PriorityLow, e3.Priority, "unselected entity untouched")

	// Cache patched too.
	cached := e.manager.Get(team)
	require.Equal(t, testcase.PriorityHigh, cached[0].Priority)
	require.Equal(t, testcase.PriorityLow, cached[2].Priority)

	require.False(t, e.state.HasSelection(), "selection cleared on success")
}

func TestApply_MoveDeclinedLeavesEverythingUnchanged(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1", "r2", "r3")

	e.api.On("ImpactPreview", mock.Anything, team, []string{"r1", "r2", "r3"}, "c2").
		Return(&repository.ImpactReport{
			ImpactedItemCount: 5,
			ImpactedContainers: []repository.ImpactedContainer{
				{Name: "Regression", RemovedItemCount: 5},
			},
		}, nil)
	e.confirmer.On("Confirm", mock.Anything, mock.Anything).Return(false, nil)

	report, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{
		TargetContainerID: strPtr("c2"),
	})
	require.ErrorIs(t, err, batch.ErrMoveDeclined)
	require.Equal(t, batch.StateIdle, report.State)

	e.api.AssertNotCalled(t, "BatchUpdate", mock.Anything, mock.Anything, mock.Anything)

	// Cached section assignments are exactly as before.
	for _, cached := range e.manager.Get(team) {
		require.NotNil(t, cached.SectionID)
		require.Equal(t, "s1", *cached.SectionID)
	}
	require.True(t, e.state.HasSelection(), "declining is not a successful batch action")
}

func TestApply_MoveConfirmedSubmits(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")
	e.allowResync()

	e.api.On("ImpactPreview", mock.Anything, team, []string{"r1"}, "c2").
		Return(&repository.ImpactReport{ImpactedItemCount: 2}, nil)
	e.confirmer.On("Confirm", mock.Anything, mock.Anything).Return(true, nil)
	e.api.On("BatchUpdate", mock.Anything, team, mock.MatchedBy(func(req repository.BatchRequest) bool {
		return req.Operation == "move_container"
	})).Return(&repository.BatchResponse{Success: true, SuccessCount: 1, ProcessedCount: 1}, nil)

	report, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{
		TargetContainerID: strPtr("c2"),
	})
	require.NoError(t, err)
	require.Equal(t, batch.StateApplied, report.State)
}

func TestApply_ZeroImpactSkipsConfirmation(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")
	e.allowResync()

	e.api.On("ImpactPreview", mock.Anything, team, []string{"r1"}, "c2").
		Return(&repository.ImpactReport{ImpactedItemCount: 0}, nil)
	e.api.On("BatchUpdate", mock.Anything, team, mock.Anything).
		Return(&repository.BatchResponse{Success: true, SuccessCount: 1, ProcessedCount: 1}, nil)

	_, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{
		TargetContainerID: strPtr("c2"),
	})
	require.NoError(t, err)
	e.confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestApply_PartialSuccessIsExplicit(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")
	e.allowResync()

	e.api.On("BatchUpdate", mock.Anything, team, mock.MatchedBy(func(req repository.BatchRequest) bool {
		return req.Operation == "update_tcg"
	})).Return(nil, errors.New("server error"))
	e.api.On("BatchUpdate", mock.Anything, team, mock.MatchedBy(func(req repository.BatchRequest) bool {
		return req.Operation == "update_priority"
	})).Return(&repository.BatchResponse{Success: true, SuccessCount: 1, ProcessedCount: 1}, nil)

	refs := []string{"TCG-9"}
	high := testcase.PriorityHigh
	report, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{
		TCGRefs:  &refs,
		Priority: &high,
	})
	require.NoError(t, err, "partial failure is reported, not raised")
	require.Equal(t, batch.StateApplied, report.State)
	require.Len(t, report.Results, 2)
	require.Len(t, report.Failed(), 1)
	require.Equal(t, batch.GroupTCG, report.Failed()[0].Group)

	// The failed group must not have been applied locally.
	e1, _ := e.state.Entity("r1")
	require.Empty(t, e1.TCGRefs)
	require.Equal(t, testcase.PriorityHigh, e1.Priority)
}

func TestApply_AllGroupsFailed(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")

	e.api.On("BatchUpdate", mock.Anything, team, mock.Anything).
		Return(nil, errors.New("server down"))

	high := testcase.PriorityHigh
	report, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{Priority: &high})
	require.NoError(t, err)
	require.Equal(t, batch.StateFailed, report.State)
	require.True(t, e.state.HasSelection(), "selection kept when nothing applied")

	e1, _ := e.state.Entity("r1")
	require.Equal(t, testcase.PriorityLow, e1.Priority, "no optimistic patch on failure")
}

func TestApply_DeleteRemovesFromViewAndCache(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r2")
	e.allowResync()

	e.api.On("BatchUpdate", mock.Anything, team, mock.MatchedBy(func(req repository.BatchRequest) bool {
		return req.Operation == "delete" && len(req.RecordIDs) == 1
	})).Return(&repository.BatchResponse{Success: true, SuccessCount: 1, ProcessedCount: 1}, nil)

	report, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{Delete: true})
	require.NoError(t, err)
	require.Equal(t, batch.StateApplied, report.State)

	_, found := e.state.Entity("r2")
	require.False(t, found)
	require.Len(t, e.manager.Get(team), 2)
}

func TestApply_SectionMoveToUnassigned(t *testing.T) {
	e := newEnv(t)
	e.state.Select("r1")
	e.allowResync()

	e.api.On("BatchUpdate", mock.Anything, team, mock.MatchedBy(func(req repository.BatchRequest) bool {
		return req.Operation == "update_section" && req.UpdateData["section_id"] == nil
	})).Return(&repository.BatchResponse{Success: true, SuccessCount: 1, ProcessedCount: 1}, nil)

	_, err := e.svc.Apply(context.Background(), e.state, batch.Mutation{SectionID: strPtr("")})
	require.NoError(t, err)

	e1, _ := e.state.Entity("r1")
	require.Nil(t, e1.SectionID)
}

func TestScreenClone(t *testing.T) {
	e := newEnv(t)

	err := e.svc.ScreenClone([]string{"TC-9", "tc-9"}, e.state.Entities)
	require.ErrorIs(t, err, batch.ErrDuplicateProposed)

	err = e.svc.ScreenClone([]string{"TC-1"}, e.state.Entities)
	require.ErrorIs(t, err, batch.ErrDuplicateExisting)
	require.Contains(t, err.Error(), "TC-1")

	require.NoError(t, e.svc.ScreenClone([]string{"TC-9", "TC-10"}, e.state.Entities))
}

func TestImpactSummary_Truncation(t *testing.T) {
	report := &repository.ImpactReport{
		ImpactedItemCount: 12,
		ImpactedContainers: []repository.ImpactedContainer{
			{Name: "A", RemovedItemCount: 4},
			{Name: "B", RemovedItemCount: 3},
			{Name: "C", RemovedItemCount: 3},
			{Name: "D", RemovedItemCount: 2},
		},
	}
	summary := batch.ImpactSummary(report, 2)
	require.Contains(t, summary, "12 test case(s)")
	require.Contains(t, summary, "A (4 removed)")
	require.Contains(t, summary, "B (3 removed)")
	require.NotContains(t, summary, "C (")
	require.Contains(t, summary, "+2 more")
}
