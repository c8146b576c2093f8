package engine_test

import (
	"context"
	"errors"

	"github.com/skarin/equipwatch/dao"
	"github.com/skarin/equipwatch/model"
)

// fakeHierarchy is an in-memory hierarchy fixture implementing both the
// store and the view it hands out.
type fakeHierarchy struct {
	equipment        map[string]bool
	equipmentByShop  map[string][]string
	shopsByBranch    map[string][]string
	branchesByEnt    map[string][]string
	equipmentByType  map[string][]string
	locations        map[string]model.EquipmentLocation
	branchOfShop     map[string]string
	enterpriseOfShop map[string]string
	failViews        bool
}

func newFakeHierarchy() *fakeHierarchy {
	return &fakeHierarchy{
		equipment:        map[string]bool{},
		equipmentByShop:  map[string][]string{},
		shopsByBranch:    map[string][]string{},
		branchesByEnt:    map[string][]string{},
		equipmentByType:  map[string][]string{},
		locations:        map[string]model.EquipmentLocation{},
		branchOfShop:     map[string]string{},
		enterpriseOfShop: map[string]string{},
	}
}

// addEquipment wires one equipment item into every index at once.
func (f *fakeHierarchy) addEquipment(id, workshopID, branchID, enterpriseID, typeID string) {
	f.equipment[id] = true
	if workshopID != "" {
		f.equipmentByShop[workshopID] = append(f.equipmentByShop[workshopID], id)
	}
	if branchID != "" && workshopID != "" {
		f.branchOfShop[workshopID] = branchID
		if !contains(f.shopsByBranch[branchID], workshopID) {
			f.shopsByBranch[branchID] = append(f.shopsByBranch[branchID], workshopID)
		}
	}
	if enterpriseID != "" {
		if workshopID != "" {
			f.enterpriseOfShop[workshopID] = enterpriseID
		}
		if branchID != "" && !contains(f.branchesByEnt[enterpriseID], branchID) {
			f.branchesByEnt[enterpriseID] = append(f.branchesByEnt[enterpriseID], branchID)
		}
	}
	if typeID != "" {
		f.equipmentByType[typeID] = append(f.equipmentByType[typeID], id)
	}
	f.locations[id] = model.EquipmentLocation{
		EquipmentID:  id,
		WorkshopID:   workshopID,
		BranchID:     branchID,
		EnterpriseID: enterpriseID,
		TypeID:       typeID,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (f *fakeHierarchy) View(ctx context.Context, fn func(v dao.HierarchyView) error) error {
	if f.failViews {
		return errors.New("store unavailable")
	}
	return fn(f)
}

func (f *fakeHierarchy) EquipmentUniverse() ([]string, error) {
	var ids []string
	for id := range f.equipment {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeHierarchy) EquipmentExists(equipmentID string) (bool, error) {
	return f.equipment[equipmentID], nil
}

func (f *fakeHierarchy) EquipmentByWorkshops(workshopIDs []string) ([]string, error) {
	var ids []string
	for _, w := range workshopIDs {
		ids = append(ids, f.equipmentByShop[w]...)
	}
	return ids, nil
}

func (f *fakeHierarchy) WorkshopsByBranches(branchIDs []string) ([]string, error) {
	var ids []string
	for _, b := range branchIDs {
		ids = append(ids, f.shopsByBranch[b]...)
	}
	return ids, nil
}

func (f *fakeHierarchy) BranchesByEnterprise(enterpriseID string) ([]string, error) {
	return f.branchesByEnt[enterpriseID], nil
}

func (f *fakeHierarchy) EquipmentByType(typeID string) ([]string, error) {
	return f.equipmentByType[typeID], nil
}

func (f *fakeHierarchy) EquipmentLocation(equipmentID string) (*model.EquipmentLocation, error) {
	loc, ok := f.locations[equipmentID]
	if !ok {
		return nil, errors.New("equipment not found")
	}
	return &loc, nil
}

func (f *fakeHierarchy) WorkshopAncestors(workshopID string) (string, string, error) {
	if _, ok := f.equipmentByShop[workshopID]; !ok {
		if _, known := f.branchOfShop[workshopID]; !known {
			return "", "", errors.New("workshop not found")
		}
	}
	return f.branchOfShop[workshopID], f.enterpriseOfShop[workshopID], nil
}

// fakeGrants serves canned grants per principal.
type fakeGrants struct {
	grants map[string][]model.AccessGrant
	err    error
}

func newFakeGrants() *fakeGrants {
	return &fakeGrants{grants: map[string][]model.AccessGrant{}}
}

func (f *fakeGrants) EffectiveGrants(ctx context.Context, principalID string) ([]model.AccessGrant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.grants[principalID], nil
}

func (f *fakeGrants) add(principalID string, level model.ScopeLevel, scopeID string, accessType model.AccessType) {
	f.grants[principalID] = append(f.grants[principalID], model.AccessGrant{
		PrincipalID: principalID,
		ScopeLevel:  level,
		ScopeID:     scopeID,
		AccessType:  accessType,
		IsActive:    true,
	})
}
