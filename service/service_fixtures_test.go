package service_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/skarin/equipwatch/dao"
	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
)

// grantKey identifies a grant record in the in-memory store.
type grantKey struct {
	principalID string
	level       model.ScopeLevel
	scopeID     string
}

// memGrants is an in-memory grant store honoring the same uniqueness
// and revocation semantics as the Neo4j DAO.
type memGrants struct {
	records map[grantKey]model.AccessGrant
	history []model.AccessGrant
}

func newMemGrants() *memGrants {
	return &memGrants{records: map[grantKey]model.AccessGrant{}}
}

func (m *memGrants) UpsertGrant(ctx context.Context, grant model.AccessGrant) error {
	key := grantKey{grant.PrincipalID, grant.ScopeLevel, grant.ScopeID}
	grant.IsActive = true
	m.records[key] = grant
	m.history = append(m.history, grant)
	return nil
}

func (m *memGrants) RevokeGrant(ctx context.Context, principalID string, level model.ScopeLevel, scopeID string) error {
	key := grantKey{principalID, level, scopeID}
	grant, ok := m.records[key]
	if !ok || !grant.IsActive {
		return ew_errors.ErrGrantNotFound
	}
	grant.IsActive = false
	m.records[key] = grant
	return nil
}

func (m *memGrants) GrantHistory(ctx context.Context, principalID string) ([]model.AccessGrant, error) {
	var out []model.AccessGrant
	for _, g := range m.history {
		if g.PrincipalID == principalID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGrants) EffectiveGrants(ctx context.Context, principalID string) ([]model.AccessGrant, error) {
	now := time.Now()
	var out []model.AccessGrant
	for _, g := range m.records {
		if g.PrincipalID == principalID && g.Effective(now) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScopeID < out[j].ScopeID })
	return out, nil
}

func (m *memGrants) EffectiveGrantsOnNode(ctx context.Context, level model.ScopeLevel, scopeID string) ([]model.AccessGrant, error) {
	now := time.Now()
	var out []model.AccessGrant
	for _, g := range m.records {
		if g.ScopeLevel == level && g.ScopeID == scopeID && g.Effective(now) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PrincipalID < out[j].PrincipalID })
	return out, nil
}

// memUsers is an in-memory user directory.
type memUsers struct {
	users map[string]model.User
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{users: map[string]model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) GetUser(ctx context.Context, userID string) (*model.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, ew_errors.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := map[string]string{}
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

func (m *memUsers) CreateUser(ctx context.Context, user model.User) (string, error) {
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *memUsers) SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error) {
	var out []*model.User
	for id := range m.users {
		u := m.users[id]
		if criteria.Role != "" && u.Role != criteria.Role {
			continue
		}
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memEquipment is an in-memory equipment store.
type memEquipment struct {
	items map[string]model.Equipment
}

func newMemEquipment(items ...model.Equipment) *memEquipment {
	m := &memEquipment{items: map[string]model.Equipment{}}
	for _, e := range items {
		m.items[e.ID] = e
	}
	return m
}

func (m *memEquipment) GetEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error) {
	e, ok := m.items[equipmentID]
	if !ok {
		return nil, ew_errors.ErrEquipmentNotFound
	}
	return &e, nil
}

func (m *memEquipment) SearchEquipment(ctx context.Context, criteria model.EquipmentSearchCriteria) ([]*model.Equipment, error) {
	var out []*model.Equipment
	for id := range m.items {
		e := m.items[id]
		if criteria.WorkshopID != "" && e.WorkshopID != criteria.WorkshopID {
			continue
		}
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEquipment) CreateEquipment(ctx context.Context, equipment model.Equipment) (string, error) {
	if _, exists := m.items[equipment.ID]; exists {
		return "", ew_errors.ErrEquipmentConflict
	}
	m.items[equipment.ID] = equipment
	return equipment.ID, nil
}

// memAssignments is an in-memory assignment store.
type memAssignments struct {
	items map[string]model.Assignment
}

func newMemAssignments(items ...model.Assignment) *memAssignments {
	m := &memAssignments{items: map[string]model.Assignment{}}
	for _, a := range items {
		m.items[a.ID] = a
	}
	return m
}

func (m *memAssignments) CreateAssignment(ctx context.Context, assignment model.Assignment) (string, error) {
	m.items[assignment.ID] = assignment
	return assignment.ID, nil
}

func (m *memAssignments) GetAssignment(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	a, ok := m.items[assignmentID]
	if !ok {
		return nil, ew_errors.ErrAssignmentNotFound
	}
	return &a, nil
}

func (m *memAssignments) UpdateStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) (*model.Assignment, error) {
	a, ok := m.items[assignmentID]
	if !ok {
		return nil, ew_errors.ErrAssignmentNotFound
	}
	a.Status = status
	if status == model.StatusCompleted {
		now := time.Now()
		a.CompletedAt = &now
	}
	m.items[assignmentID] = a
	return &a, nil
}

func (m *memAssignments) AssignmentsByEngineer(ctx context.Context, engineerID string) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range m.items {
		if a.AssignedTo == engineerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAssignments) AssignmentsByEquipment(ctx context.Context, equipmentID string) ([]model.Assignment, error) {
	var out []model.Assignment
	for _, a := range m.items {
		if a.EquipmentID == equipmentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memHierarchy backs the resolver with a static plant layout.
type memHierarchy struct {
	byWorkshop map[string][]string
	byBranch   map[string][]string
	byEnt      map[string][]string
	byType     map[string][]string
	locations  map[string]model.EquipmentLocation
	names      map[string]string
}

func newMemHierarchy() *memHierarchy {
	return &memHierarchy{
		byWorkshop: map[string][]string{},
		byBranch:   map[string][]string{},
		byEnt:      map[string][]string{},
		byType:     map[string][]string{},
		locations:  map[string]model.EquipmentLocation{},
		names:      map[string]string{},
	}
}

func (m *memHierarchy) addEquipment(id, workshopID, branchID, enterpriseID, typeID string) {
	if workshopID != "" {
		m.byWorkshop[workshopID] = append(m.byWorkshop[workshopID], id)
		if branchID != "" && !containsStr(m.byBranch[branchID], workshopID) {
			m.byBranch[branchID] = append(m.byBranch[branchID], workshopID)
		}
	}
	if enterpriseID != "" && branchID != "" && !containsStr(m.byEnt[enterpriseID], branchID) {
		m.byEnt[enterpriseID] = append(m.byEnt[enterpriseID], branchID)
	}
	if typeID != "" {
		m.byType[typeID] = append(m.byType[typeID], id)
	}
	m.locations[id] = model.EquipmentLocation{
		EquipmentID:  id,
		WorkshopID:   workshopID,
		BranchID:     branchID,
		EnterpriseID: enterpriseID,
		TypeID:       typeID,
	}
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *memHierarchy) View(ctx context.Context, fn func(v dao.HierarchyView) error) error {
	return fn(m)
}

func (m *memHierarchy) EquipmentUniverse() ([]string, error) {
	var ids []string
	for id := range m.locations {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memHierarchy) EquipmentExists(equipmentID string) (bool, error) {
	_, ok := m.locations[equipmentID]
	return ok, nil
}

func (m *memHierarchy) EquipmentByWorkshops(workshopIDs []string) ([]string, error) {
	var ids []string
	for _, w := range workshopIDs {
		ids = append(ids, m.byWorkshop[w]...)
	}
	return ids, nil
}

func (m *memHierarchy) WorkshopsByBranches(branchIDs []string) ([]string, error) {
	var ids []string
	for _, b := range branchIDs {
		ids = append(ids, m.byBranch[b]...)
	}
	return ids, nil
}

func (m *memHierarchy) BranchesByEnterprise(enterpriseID string) ([]string, error) {
	return m.byEnt[enterpriseID], nil
}

func (m *memHierarchy) EquipmentByType(typeID string) ([]string, error) {
	return m.byType[typeID], nil
}

func (m *memHierarchy) EquipmentLocation(equipmentID string) (*model.EquipmentLocation, error) {
	loc, ok := m.locations[equipmentID]
	if !ok {
		return nil, errors.New("equipment not found")
	}
	return &loc, nil
}

func (m *memHierarchy) WorkshopAncestors(workshopID string) (string, string, error) {
	for _, loc := range m.locations {
		if loc.WorkshopID == workshopID {
			return loc.BranchID, loc.EnterpriseID, nil
		}
	}
	return "", "", errors.New("workshop not found")
}

func (m *memHierarchy) NodeExists(ctx context.Context, level model.ScopeLevel, nodeID string) (bool, error) {
	switch level {
	case model.ScopeEnterprise:
		_, ok := m.byEnt[nodeID]
		return ok, nil
	case model.ScopeBranch:
		_, ok := m.byBranch[nodeID]
		return ok, nil
	case model.ScopeWorkshop:
		_, ok := m.byWorkshop[nodeID]
		return ok, nil
	case model.ScopeEquipmentType:
		_, ok := m.byType[nodeID]
		return ok, nil
	case model.ScopeEquipment:
		_, ok := m.locations[nodeID]
		return ok, nil
	}
	return false, ew_errors.ErrInvalidScope
}

func (m *memHierarchy) NodeName(ctx context.Context, level model.ScopeLevel, nodeID string) (string, error) {
	if name, ok := m.names[nodeID]; ok {
		return name, nil
	}
	return "", errors.New("node not found")
}

// nullCache satisfies the cache interfaces without caching anything.
type nullCache struct{}

func (nullCache) GetAccessibleSet(ctx context.Context, principalID string) ([]string, error) {
	return nil, nil
}
func (nullCache) SetAccessibleSet(ctx context.Context, principalID string, equipmentIDs []string) error {
	return nil
}
func (nullCache) DeleteAccessibleSet(ctx context.Context, principalID string) error { return nil }
func (nullCache) GetUser(ctx context.Context, userID string) (*model.User, error)  { return nil, nil }
func (nullCache) SetUser(ctx context.Context, user model.User) error               { return nil }
func (nullCache) DeleteUser(ctx context.Context, userID string) error              { return nil }
func (nullCache) GetEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error) {
	return nil, nil
}
func (nullCache) SetEquipment(ctx context.Context, equipment model.Equipment) error { return nil }
func (nullCache) DeleteEquipment(ctx context.Context, equipmentID string) error     { return nil }

// nullNotifier swallows notifications.
type nullNotifier struct{}

func (nullNotifier) NotifyAccessChange(ctx context.Context, changeType string, grant model.AccessGrant) error {
	return nil
}
func (nullNotifier) NotifyAssignmentChange(ctx context.Context, changeType string, assignment model.Assignment) error {
	return nil
}
