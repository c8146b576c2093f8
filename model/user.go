// model/user.go
package model

import "time"

// Role determines how access resolution treats a principal. Admin,
// chief operator and operator are globally privileged and bypass grant
// resolution entirely; only engineers are subject to it.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleChiefOperator Role = "chief_operator"
	RoleOperator      Role = "operator"
	RoleEngineer      Role = "engineer"
)

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	EngineerRef string    `json:"engineer_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Privileged reports whether the user's role short-circuits access
// resolution to full access.
func (u User) Privileged() bool {
	switch u.Role {
	case RoleAdmin, RoleChiefOperator, RoleOperator:
		return true
	}
	return false
}

// ValidRole reports whether r is one of the four known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleChiefOperator, RoleOperator, RoleEngineer:
		return true
	}
	return false
}

type UserSearchCriteria struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Username  string     `json:"username,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      Role       `json:"role,omitempty"`
	FromDate  *time.Time `json:"from_date,omitempty"`
	ToDate    *time.Time `json:"to_date,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`
	SortOrder string     `json:"sort_order,omitempty"`
}
