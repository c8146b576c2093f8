package engine

import (
	"github.com/skarin/equipwatch/dao"
	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
)

// ExpandScope translates one grant scope into the concrete equipment
// IDs it covers. The location hierarchy has a fixed depth of three, so
// expansion is at most three bounded set-lookups, never a recursive
// walk. A missing intermediate level yields an empty result, not an
// error. The progress aggregator reuses this for its per-node tallies.
func ExpandScope(v dao.HierarchyView, level model.ScopeLevel, scopeID string) ([]string, error) {
	switch level {
	case model.ScopeEquipment:
		exists, err := v.EquipmentExists(scopeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, nil
		}
		return []string{scopeID}, nil

	case model.ScopeWorkshop:
		return v.EquipmentByWorkshops([]string{scopeID})

	case model.ScopeBranch:
		workshops, err := v.WorkshopsByBranches([]string{scopeID})
		if err != nil {
			return nil, err
		}
		if len(workshops) == 0 {
			return nil, nil
		}
		return v.EquipmentByWorkshops(workshops)

	case model.ScopeEnterprise:
		branches, err := v.BranchesByEnterprise(scopeID)
		if err != nil {
			return nil, err
		}
		if len(branches) == 0 {
			return nil, nil
		}
		workshops, err := v.WorkshopsByBranches(branches)
		if err != nil {
			return nil, err
		}
		if len(workshops) == 0 {
			return nil, nil
		}
		return v.EquipmentByWorkshops(workshops)

	case model.ScopeEquipmentType:
		return v.EquipmentByType(scopeID)

	default:
		return nil, ew_errors.ErrInvalidScope
	}
}
