// util/validation_util.go

package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/skarin/equipwatch/model"
)

// ValidationUtil checks entities at the boundary, at construction time,
// so resolution logic never has to re-validate shapes.
type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

func (v *ValidationUtil) ValidateGrant(grant model.AccessGrant) error {
	if grant.PrincipalID == "" {
		return fmt.Errorf("grant principal ID cannot be empty")
	}
	if grant.ScopeID == "" {
		return fmt.Errorf("grant scope ID cannot be empty")
	}
	if !model.ValidScopeLevel(grant.ScopeLevel) {
		return fmt.Errorf("unknown scope level: %s", grant.ScopeLevel)
	}
	if !model.ValidAccessType(grant.AccessType) {
		return fmt.Errorf("unknown access type: %s", grant.AccessType)
	}
	if grant.GrantedBy == "" {
		return fmt.Errorf("grant must record who granted it")
	}
	return nil
}

func (v *ValidationUtil) ValidateAssignment(assignment model.Assignment) error {
	if assignment.EquipmentID == "" {
		return fmt.Errorf("assignment equipment ID cannot be empty")
	}
	if assignment.AssignedTo == "" {
		return fmt.Errorf("assignment must have an assignee")
	}
	if !model.ValidAssignmentType(assignment.Type) {
		return fmt.Errorf("unknown assignment type: %s", assignment.Type)
	}
	if assignment.Priority < 0 {
		return fmt.Errorf("assignment priority cannot be negative")
	}
	return nil
}

func (v *ValidationUtil) ValidateEquipment(equipment model.Equipment) error {
	if equipment.Name == "" {
		return fmt.Errorf("equipment name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.Name == "" {
		return fmt.Errorf("user name cannot be empty")
	}
	if user.Username == "" {
		return fmt.Errorf("user username cannot be empty")
	}
	if err := v.validate.Var(user.Email, "required,email"); err != nil {
		return fmt.Errorf("user email is invalid")
	}
	if !model.ValidRole(user.Role) {
		return fmt.Errorf("unknown role: %s", user.Role)
	}
	return nil
}
