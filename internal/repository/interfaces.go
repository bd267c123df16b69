package repository

import (
	"context"

	"github.com/rpggio/casedeck/internal/domain/testcase"
)

// EntityAPI is the remote source of truth for test cases, scoped by team
// id on every call.
type EntityAPI interface {
	List(ctx context.Context, teamID, containerID string) ([]testcase.Entity, error)
	Get(ctx context.Context, teamID, recordID string) (*testcase.Entity, error)
	Create(ctx context.Context, teamID string, e *testcase.Entity) (*testcase.Entity, error)
	Update(ctx context.Context, teamID string, e *testcase.Entity) (*testcase.Entity, error)
	Delete(ctx context.Context, teamID, recordID string) error
	BatchUpdate(ctx context.Context, teamID string, req BatchRequest) (*BatchResponse, error)
	ImpactPreview(ctx context.Context, teamID string, recordIDs []string, targetContainerID string) (*ImpactReport, error)
	// DeleteContainer removes a top-level container, used to roll back a
	// provisional parent abandoned mid-wizard.
	DeleteContainer(ctx context.Context, teamID, containerID string) error
}

// BatchRequest is one field-group mutation applied to a set of records.
type BatchRequest struct {
	Operation  string         `json:"operation"`
	RecordIDs  []string       `json:"record_ids"`
	UpdateData map[string]any `json:"update_data,omitempty"`
}

// BatchResponse reports per-request success, including partial success.
type BatchResponse struct {
	Success        bool     `json:"success"`
	SuccessCount   int      `json:"success_count"`
	ProcessedCount int      `json:"processed_count"`
	ErrorMessages  []string `json:"error_messages,omitempty"`
}

// ImpactedContainer names a container a structural move would drain
// items from.
type ImpactedContainer struct {
	Name             string `json:"name"`
	RemovedItemCount int    `json:"removed_item_count"`
}

// ImpactReport describes what a pending structural move would affect.
type ImpactReport struct {
	ImpactedItemCount  int                 `json:"impacted_item_count"`
	ImpactedContainers []ImpactedContainer `json:"impacted_containers,omitempty"`
}

// Confirmer asks the user to approve a destructive operation. Returning
// false aborts with no state change.
type Confirmer interface {
	Confirm(ctx context.Context, summary string) (bool, error)
}

// Notifier surfaces informational (non-error) notices to the user.
type Notifier interface {
	Notify(message string)
}
