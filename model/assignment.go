// model/assignment.go
package model

import "time"

type AssignmentType string

const (
	AssignmentDiagnostics AssignmentType = "DIAGNOSTICS"
	AssignmentExpertise   AssignmentType = "EXPERTISE"
	AssignmentInspection  AssignmentType = "INSPECTION"
)

func ValidAssignmentType(t AssignmentType) bool {
	switch t {
	case AssignmentDiagnostics, AssignmentExpertise, AssignmentInspection:
		return true
	}
	return false
}

type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "PENDING"
	StatusInProgress AssignmentStatus = "IN_PROGRESS"
	StatusCompleted  AssignmentStatus = "COMPLETED"
	StatusCancelled  AssignmentStatus = "CANCELLED"
)

func ValidAssignmentStatus(s AssignmentStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Assignment is one diagnostic, expertise or inspection task on a piece
// of equipment. Created PENDING; CompletedAt is set exactly when the
// status transitions to COMPLETED.
type Assignment struct {
	ID          string           `json:"id"`
	EquipmentID string           `json:"equipment_id"`
	Type        AssignmentType   `json:"assignment_type"`
	AssignedBy  string           `json:"assigned_by"`
	AssignedTo  string           `json:"assigned_to"`
	Status      AssignmentStatus `json:"status"`
	Priority    int              `json:"priority"`
	DueDate     *time.Time       `json:"due_date,omitempty"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

type AssignmentSearchCriteria struct {
	EquipmentID string           `json:"equipment_id,omitempty"`
	AssignedTo  string           `json:"assigned_to,omitempty"`
	Type        AssignmentType   `json:"assignment_type,omitempty"`
	Status      AssignmentStatus `json:"status,omitempty"`
	Limit       int              `json:"limit,omitempty"`
	Offset      int              `json:"offset,omitempty"`
}
