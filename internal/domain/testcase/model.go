package testcase

import "time"

// Priority classifies how important a test case is to run.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the comparable weight of a priority. Unknown priorities
// rank below Low so they group together at the bottom.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Attachment references an uploaded file on a test case.
type Attachment struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Type  string `json:"type"`
	URL   string `json:"url"`
}

// Entity is a single test-case record. Number is the business key and is
// unique within a team; RecordID is the storage identity.
type Entity struct {
	RecordID       string       `json:"record_id"`
	Number         string       `json:"test_case_number"`
	Title          string       `json:"title"`
	Priority       Priority     `json:"priority"`
	Precondition   string       `json:"precondition,omitempty"`
	Steps          string       `json:"steps,omitempty"`
	ExpectedResult string       `json:"expected_result,omitempty"`
	SectionID      *string      `json:"section_id,omitempty"`
	TCGRefs        []string     `json:"tcg,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Slim returns a copy stripped to the fields needed for list rendering.
// Used when a full cache payload no longer fits the storage quota.
func (e Entity) Slim() Entity {
	return Entity{
		RecordID:  e.RecordID,
		Number:    e.Number,
		Title:     e.Title,
		Priority:  e.Priority,
		SectionID: e.SectionID,
		TCGRefs:   e.TCGRefs,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
