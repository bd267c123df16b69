package batch

import "github.com/rpggio/casedeck/internal/repository"

// State is the workflow position of one batch action.
type State string

const (
	StateIdle                 State = "IDLE"
	StateSelectionNonEmpty    State = "SELECTION_NON_EMPTY"
	StateImpactPreviewPending State = "IMPACT_PREVIEW_PENDING"
	StateConfirmed            State = "CONFIRMED"
	StateSubmitting           State = "SUBMITTING"
	StateApplied              State = "APPLIED"
	StateFailed               State = "FAILED"
)

// FieldGroup names one independently submitted mutation group.
type FieldGroup string

const (
	GroupTCG       FieldGroup = "tcg"
	GroupPriority  FieldGroup = "priority"
	GroupSection   FieldGroup = "section"
	GroupContainer FieldGroup = "container"
	GroupDelete    FieldGroup = "delete"
)

// GroupResult is the outcome of one field group's submission.
type GroupResult struct {
	Group    FieldGroup
	Err      error
	Response *repository.BatchResponse
}

// OK reports whether the group was applied.
func (g GroupResult) OK() bool {
	return g.Err == nil && (g.Response == nil || g.Response.Success)
}

// Report is the explicit partial-success outcome of a batch action.
// Each group succeeds or fails on its own; a failed group never rolls
// back groups that already applied.
type Report struct {
	State   State
	Results []GroupResult
}

// Applied reports whether at least one group landed.
func (r *Report) Applied() bool {
	for _, res := range r.Results {
		if res.OK() {
			return true
		}
	}
	return false
}

// Failed returns the groups that did not apply.
func (r *Report) Failed() []GroupResult {
	var out []GroupResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}
