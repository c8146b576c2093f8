package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/service"
)

type progressFixture struct {
	svc         *service.ProgressService
	grants      *memGrants
	hierarchy   *memHierarchy
	assignments *memAssignments
}

func newProgressFixture() *progressFixture {
	hierarchy := newMemHierarchy()
	hierarchy.addEquipment("eq-1", "ws-1", "br-1", "ent-1", "")
	hierarchy.addEquipment("eq-2", "ws-1", "br-1", "ent-1", "")
	hierarchy.addEquipment("eq-3", "ws-2", "br-1", "ent-1", "")
	hierarchy.names["ws-1"] = "Assembly Hall"
	hierarchy.names["ws-2"] = "Paint Shop"
	hierarchy.names["br-1"] = "North Branch"

	grants := newMemGrants()
	assignments := newMemAssignments()
	users := newMemUsers(
		model.User{ID: "eng-1", Name: "Boris", Role: model.RoleEngineer},
		model.User{ID: "eng-2", Name: "Anna", Role: model.RoleEngineer},
	)

	svc := service.NewProgressService(grants, hierarchy, assignments, users, hierarchy)
	return &progressFixture{svc: svc, grants: grants, hierarchy: hierarchy, assignments: assignments}
}

func grantOn(grants *memGrants, principalID string, level model.ScopeLevel, scopeID string) {
	_ = grants.UpsertGrant(context.Background(), model.AccessGrant{
		PrincipalID: principalID,
		ScopeLevel:  level,
		ScopeID:     scopeID,
		AccessType:  model.AccessReadWrite,
		GrantedBy:   "adm-1",
		GrantedAt:   time.Now(),
		IsActive:    true,
	})
}

func addAssignment(assignments *memAssignments, id, equipmentID, engineerID string, status model.AssignmentStatus) {
	assignments.items[id] = model.Assignment{
		ID:          id,
		EquipmentID: equipmentID,
		Type:        model.AssignmentDiagnostics,
		AssignedTo:  engineerID,
		Status:      status,
	}
}

func TestObjectProgress_Arithmetic(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()
	operator := model.User{ID: "op-1", Role: model.RoleOperator}

	grantOn(f.grants, "eng-1", model.ScopeWorkshop, "ws-1")
	// Four countable assignments inside ws-1, three completed, plus a
	// cancelled one and one outside the node's equipment set.
	addAssignment(f.assignments, "a-1", "eq-1", "eng-1", model.StatusCompleted)
	addAssignment(f.assignments, "a-2", "eq-1", "eng-1", model.StatusCompleted)
	addAssignment(f.assignments, "a-3", "eq-2", "eng-1", model.StatusCompleted)
	addAssignment(f.assignments, "a-4", "eq-2", "eng-1", model.StatusInProgress)
	addAssignment(f.assignments, "a-5", "eq-1", "eng-1", model.StatusCancelled)
	addAssignment(f.assignments, "a-6", "eq-3", "eng-1", model.StatusPending)

	report, err := f.svc.ObjectProgress(ctx, operator, model.ScopeWorkshop, "ws-1")
	assert.NoError(t, err)
	assert.Len(t, report, 1)

	row := report[0]
	assert.Equal(t, "Assembly Hall", row.ObjectName)
	assert.Equal(t, 4, row.Total)
	assert.Equal(t, 3, row.Completed)
	assert.Equal(t, 1, row.Remaining)
	assert.Equal(t, 75, row.ProgressPct)
}

func TestObjectProgress_ZeroTotalMeansZeroPct(t *testing.T) {
	f := newProgressFixture()
	operator := model.User{ID: "op-1", Role: model.RoleOperator}

	grantOn(f.grants, "eng-1", model.ScopeWorkshop, "ws-1")

	report, err := f.svc.ObjectProgress(context.Background(), operator, model.ScopeWorkshop, "ws-1")
	assert.NoError(t, err)
	assert.Len(t, report, 1)
	assert.Equal(t, 0, report[0].Total)
	assert.Equal(t, 0, report[0].ProgressPct)
	assert.Equal(t, 0, report[0].Remaining)
}

func TestObjectProgress_NoGrantsEmptyReport(t *testing.T) {
	f := newProgressFixture()
	operator := model.User{ID: "op-1", Role: model.RoleOperator}

	report, err := f.svc.ObjectProgress(context.Background(), operator, model.ScopeWorkshop, "ws-1")
	assert.NoError(t, err)
	assert.Empty(t, report)
}

func TestObjectProgress_OrderedByEngineerName(t *testing.T) {
	f := newProgressFixture()
	operator := model.User{ID: "op-1", Role: model.RoleOperator}

	// Boris sorts after Anna regardless of grant insertion order.
	grantOn(f.grants, "eng-1", model.ScopeWorkshop, "ws-1")
	grantOn(f.grants, "eng-2", model.ScopeWorkshop, "ws-1")

	report, err := f.svc.ObjectProgress(context.Background(), operator, model.ScopeWorkshop, "ws-1")
	assert.NoError(t, err)
	assert.Len(t, report, 2)
	assert.Equal(t, "Anna", report[0].EngineerName)
	assert.Equal(t, "Boris", report[1].EngineerName)
}

func TestObjectProgress_OnlyExactNodeGrantsCount(t *testing.T) {
	f := newProgressFixture()
	operator := model.User{ID: "op-1", Role: model.RoleOperator}

	// A branch-level grant does not show up in the workshop's report.
	grantOn(f.grants, "eng-1", model.ScopeBranch, "br-1")

	report, err := f.svc.ObjectProgress(context.Background(), operator, model.ScopeWorkshop, "ws-1")
	assert.NoError(t, err)
	assert.Empty(t, report)

	report, err = f.svc.ObjectProgress(context.Background(), operator, model.ScopeBranch, "br-1")
	assert.NoError(t, err)
	assert.Len(t, report, 1)
}

func TestObjectProgress_AccessRules(t *testing.T) {
	f := newProgressFixture()
	ctx := context.Background()

	t.Run("engineer forbidden", func(t *testing.T) {
		_, err := f.svc.ObjectProgress(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer}, model.ScopeWorkshop, "ws-1")
		assert.ErrorIs(t, err, ew_errors.ErrForbidden)
	})

	t.Run("invalid object type", func(t *testing.T) {
		_, err := f.svc.ObjectProgress(ctx, model.User{ID: "op-1", Role: model.RoleOperator}, model.ScopeLevel("region"), "r-1")
		assert.ErrorIs(t, err, ew_errors.ErrInvalidScope)
	})
}

func TestHierarchyProgress_OrderedByNodeName(t *testing.T) {
	f := newProgressFixture()
	operator := model.User{ID: "op-1", Role: model.RoleOperator}

	grantOn(f.grants, "eng-1", model.ScopeWorkshop, "ws-1")
	grantOn(f.grants, "eng-2", model.ScopeWorkshop, "ws-2")

	aggregate, err := f.svc.HierarchyProgress(context.Background(), operator, model.ScopeWorkshop, []string{"ws-2", "ws-1"})
	assert.NoError(t, err)
	assert.Len(t, aggregate, 2)
	assert.Equal(t, "Assembly Hall", aggregate[0].ObjectName)
	assert.Equal(t, "Paint Shop", aggregate[1].ObjectName)
	assert.Len(t, aggregate[0].Engineers, 1)
}
