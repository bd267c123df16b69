// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/repository"
	"github.com/stretchr/testify/mock"
)

// EntityAPI is a mock for repository.EntityAPI.
type EntityAPI struct {
	mock.Mock
}

func (m *EntityAPI) List(ctx context.Context, teamID, containerID string) ([]testcase.Entity, error) {
	args := m.Called(ctx, teamID, containerID)
	if list, ok := args.Get(0).([]testcase.Entity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntityAPI) Get(ctx context.Context, teamID, recordID string) (*testcase.Entity, error) {
	args := m.Called(ctx, teamID, recordID)
	if e, ok := args.Get(0).(*testcase.Entity); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntityAPI) Create(ctx context.Context, teamID string, e *testcase.Entity) (*testcase.Entity, error) {
	args := m.Called(ctx, teamID, e)
	if created, ok := args.Get(0).(*testcase.Entity); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntityAPI) Update(ctx context.Context, teamID string, e *testcase.Entity) (*testcase.Entity, error) {
	args := m.Called(ctx, teamID, e)
	if updated, ok := args.Get(0).(*testcase.Entity); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntityAPI) Delete(ctx context.Context, teamID, recordID string) error {
	args := m.Called(ctx, teamID, recordID)
	return args.Error(0)
}

func (m *EntityAPI) BatchUpdate(ctx context.Context, teamID string, req repository.BatchRequest) (*repository.BatchResponse, error) {
	args := m.Called(ctx, teamID, req)
	if resp, ok := args.Get(0).(*repository.BatchResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntityAPI) ImpactPreview(ctx context.Context, teamID string, recordIDs []string, targetContainerID string) (*repository.ImpactReport, error) {
	args := m.Called(ctx, teamID, recordIDs, targetContainerID)
	if report, ok := args.Get(0).(*repository.ImpactReport); ok {
		return report, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntityAPI) DeleteContainer(ctx context.Context, teamID, containerID string) error {
	args := m.Called(ctx, teamID, containerID)
	return args.Error(0)
}

// Confirmer is a mock for repository.Confirmer.
type Confirmer struct {
	mock.Mock
}

func (m *Confirmer) Confirm(ctx context.Context, summary string) (bool, error) {
	args := m.Called(ctx, summary)
	return args.Bool(0), args.Error(1)
}

// Notifier is a mock for repository.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(message string) {
	m.Called(message)
}
