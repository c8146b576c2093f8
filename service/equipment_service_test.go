package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/resolver/engine"
	"github.com/skarin/equipwatch/service"
	ew_mock "github.com/skarin/equipwatch/test/mock"
	"github.com/skarin/equipwatch/util"
)

type equipmentFixture struct {
	svc       *service.EquipmentService
	equipment *memEquipment
	grants    *memGrants
}

func newEquipmentFixture() *equipmentFixture {
	hierarchy := newMemHierarchy()
	hierarchy.addEquipment("eq-1", "ws-1", "br-1", "ent-1", "")
	hierarchy.addEquipment("eq-2", "ws-2", "br-1", "ent-1", "")

	grants := newMemGrants()
	equipment := newMemEquipment(
		model.Equipment{ID: "eq-1", Name: "Press", WorkshopID: "ws-1"},
		model.Equipment{ID: "eq-2", Name: "Mill", WorkshopID: "ws-2"},
	)
	resolver := engine.NewResolver(hierarchy, grants, 64, time.Minute)

	auditMock := new(ew_mock.MockAuditService)
	auditMock.On("LogAccess", testify_mock.Anything, testify_mock.Anything).Return(nil)

	svc := service.NewEquipmentService(
		equipment,
		resolver,
		util.NewValidationUtil(),
		nullCache{},
		auditMock,
		util.NewEventBus(),
	)
	return &equipmentFixture{svc: svc, equipment: equipment, grants: grants}
}

func TestCreateEquipment(t *testing.T) {
	ctx := context.Background()

	t.Run("privileged creates anywhere", func(t *testing.T) {
		f := newEquipmentFixture()

		created, err := f.svc.CreateEquipment(ctx, model.User{ID: "op-1", Role: model.RoleOperator}, model.Equipment{
			Name:       "Grinder",
			WorkshopID: "ws-1",
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	})

	t.Run("engineer needs create_equipment on the workshop", func(t *testing.T) {
		f := newEquipmentFixture()
		engineerUser := model.User{ID: "eng-1", Role: model.RoleEngineer}

		_, err := f.svc.CreateEquipment(ctx, engineerUser, model.Equipment{Name: "Grinder", WorkshopID: "ws-1"})
		assert.ErrorIs(t, err, ew_errors.ErrForbidden)

		_ = f.grants.UpsertGrant(ctx, model.AccessGrant{
			PrincipalID: "eng-1",
			ScopeLevel:  model.ScopeWorkshop,
			ScopeID:     "ws-1",
			AccessType:  model.AccessCreateEquipment,
			GrantedBy:   "op-1",
			IsActive:    true,
		})

		created, err := f.svc.CreateEquipment(ctx, engineerUser, model.Equipment{Name: "Grinder", WorkshopID: "ws-1"})
		assert.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	})

	t.Run("engineer without workshop placement rejected", func(t *testing.T) {
		f := newEquipmentFixture()

		_, err := f.svc.CreateEquipment(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer}, model.Equipment{Name: "Grinder"})
		assert.ErrorIs(t, err, ew_errors.ErrForbidden)
	})

	t.Run("nameless equipment rejected", func(t *testing.T) {
		f := newEquipmentFixture()

		_, err := f.svc.CreateEquipment(ctx, model.User{ID: "op-1", Role: model.RoleOperator}, model.Equipment{WorkshopID: "ws-1"})
		assert.Error(t, err)
	})
}

func TestGetEquipment_DenialReadsAsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newEquipmentFixture()

	_ = f.grants.UpsertGrant(ctx, model.AccessGrant{
		PrincipalID: "eng-1",
		ScopeLevel:  model.ScopeEquipment,
		ScopeID:     "eq-1",
		AccessType:  model.AccessReadOnly,
		GrantedBy:   "op-1",
		IsActive:    true,
	})

	_, err := f.svc.GetEquipment(ctx, model.User{ID: "eng-9", Role: model.RoleEngineer}, "eq-1")
	assert.ErrorIs(t, err, ew_errors.ErrEquipmentNotFound)

	got, err := f.svc.GetEquipment(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer}, "eq-1")
	assert.NoError(t, err)
	assert.Equal(t, "Press", got.Name)
}

func TestListEquipment_FilteredByAccessibleSet(t *testing.T) {
	ctx := context.Background()
	f := newEquipmentFixture()

	_ = f.grants.UpsertGrant(ctx, model.AccessGrant{
		PrincipalID: "eng-1",
		ScopeLevel:  model.ScopeWorkshop,
		ScopeID:     "ws-1",
		AccessType:  model.AccessReadOnly,
		GrantedBy:   "op-1",
		IsActive:    true,
	})

	visible, err := f.svc.ListEquipment(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer}, model.EquipmentSearchCriteria{})
	assert.NoError(t, err)
	assert.Len(t, visible, 1)
	assert.Equal(t, "eq-1", visible[0].ID)

	all, err := f.svc.ListEquipment(ctx, model.User{ID: "op-1", Role: model.RoleOperator}, model.EquipmentSearchCriteria{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
