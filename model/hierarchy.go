// model/hierarchy.go
package model

import "time"

// The location chain Enterprise -> Branch -> Workshop -> Equipment is a
// strict tree; the EquipmentType relation is an independent
// classification axis, so the overall structure is a DAG with two paths
// converging on Equipment.

type Enterprise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Branch struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	EnterpriseID string    `json:"enterprise_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Workshop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BranchID  string    `json:"branch_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EquipmentType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Equipment struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number,omitempty"`
	WorkshopID   string    `json:"workshop_id,omitempty"`
	TypeID       string    `json:"type_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EquipmentLocation is the resolved ancestor chain of one equipment
// item. Any segment may be empty: absence of structure is normal, the
// resolver degrades to the next level rather than failing.
type EquipmentLocation struct {
	EquipmentID  string `json:"equipment_id"`
	WorkshopID   string `json:"workshop_id,omitempty"`
	BranchID     string `json:"branch_id,omitempty"`
	EnterpriseID string `json:"enterprise_id,omitempty"`
	TypeID       string `json:"type_id,omitempty"`
}

type EquipmentSearchCriteria struct {
	Name             string `json:"name,omitempty"`
	SerialNumber     string `json:"serial_number,omitempty"`
	WorkshopID       string `json:"workshop_id,omitempty"`
	TypeID           string `json:"type_id,omitempty"`
	LocationContains string `json:"location_contains,omitempty"`
	EnterpriseID     string `json:"enterprise_id,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	Offset           int    `json:"offset,omitempty"`
}
