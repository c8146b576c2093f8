// model/grant.go
package model

import "time"

// ScopeLevel is the hierarchy tier an access grant applies to. The five
// legacy per-level grant shapes collapse into one tagged record.
type ScopeLevel string

const (
	ScopeEquipment     ScopeLevel = "equipment"
	ScopeWorkshop      ScopeLevel = "workshop"
	ScopeBranch        ScopeLevel = "branch"
	ScopeEnterprise    ScopeLevel = "enterprise"
	ScopeEquipmentType ScopeLevel = "equipment_type"
)

// ValidScopeLevel reports whether s names one of the five grant scopes.
func ValidScopeLevel(s ScopeLevel) bool {
	switch s {
	case ScopeEquipment, ScopeWorkshop, ScopeBranch, ScopeEnterprise, ScopeEquipmentType:
		return true
	}
	return false
}

type AccessType string

const (
	AccessReadOnly        AccessType = "read_only"
	AccessReadWrite       AccessType = "read_write"
	AccessCreateEquipment AccessType = "create_equipment"
)

func ValidAccessType(a AccessType) bool {
	switch a {
	case AccessReadOnly, AccessReadWrite, AccessCreateEquipment:
		return true
	}
	return false
}

// Permission is what a request needs, matched against a grant's
// AccessType during authorization.
type Permission string

const (
	PermissionRead   Permission = "read"
	PermissionWrite  Permission = "write"
	PermissionCreate Permission = "create"
)

func ValidPermission(p Permission) bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionCreate:
		return true
	}
	return false
}

// AccessGrant scopes one principal's access to exactly one hierarchy
// node (or a single equipment item directly). At most one effective
// grant exists per (principal, scope_level, scope_id); re-granting
// updates the existing record in place.
type AccessGrant struct {
	PrincipalID string     `json:"principal_id"`
	ScopeLevel  ScopeLevel `json:"scope_level"`
	ScopeID     string     `json:"scope_id"`
	AccessType  AccessType `json:"access_type"`
	GrantedBy   string     `json:"granted_by"`
	GrantedAt   time.Time  `json:"granted_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
}

// Effective reports whether the grant counts at the given instant:
// active and either unexpired or without an expiry.
func (g AccessGrant) Effective(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
		return false
	}
	return true
}

// GrantReport is the partial-success outcome of a batch grant call.
type GrantReport struct {
	GrantedCount   int `json:"granted_count"`
	TotalRequested int `json:"total_requested"`
}

// GrantFilter narrows a bulk grant to equipment matching a structural
// filter; empty fields are ignored.
type GrantFilter struct {
	LocationContains string `json:"location_contains,omitempty"`
	EnterpriseID     string `json:"enterprise_id,omitempty"`
}
