// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	Timestamp     time.Time       `json:"timestamp"`
	ActorID       string          `json:"actor_id"`
	Action        string          `json:"action"`
	TargetUserID  string          `json:"target_user_id,omitempty"`
	ScopeLevel    string          `json:"scope_level,omitempty"`
	ScopeID       string          `json:"scope_id,omitempty"`
	AccessGranted bool            `json:"access_granted"`
	ChangeDetails json.RawMessage `json:"change_details,omitempty"`
}

// Audit actions recorded by the grant administration and resolution paths.
const (
	ActionGrantAccess      = "GRANT_ACCESS"
	ActionRevokeAccess     = "REVOKE_ACCESS"
	ActionBulkGrantAccess  = "BULK_GRANT_ACCESS"
	ActionAccessDenied     = "ACCESS_DENIED"
	ActionCreateEquipment  = "CREATE_EQUIPMENT"
	ActionCreateAssignment = "CREATE_ASSIGNMENT"
	ActionUpdateAssignment = "UPDATE_ASSIGNMENT"
)
