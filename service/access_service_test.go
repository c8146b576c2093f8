package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"

	"github.com/skarin/equipwatch/audit"
	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/resolver/engine"
	"github.com/skarin/equipwatch/service"
	ew_mock "github.com/skarin/equipwatch/test/mock"
	"github.com/skarin/equipwatch/util"
)

type accessFixture struct {
	svc       *service.AccessService
	grants    *memGrants
	users     *memUsers
	equipment *memEquipment
	hierarchy *memHierarchy
	resolver  *engine.Resolver
	auditMock *ew_mock.MockAuditService
}

func newAccessFixture(t *testing.T) *accessFixture {
	hierarchy := newMemHierarchy()
	hierarchy.addEquipment("eq-1", "ws-1", "br-1", "ent-1", "type-pump")
	hierarchy.addEquipment("eq-2", "ws-1", "br-1", "ent-1", "")
	hierarchy.addEquipment("eq-3", "ws-2", "br-1", "ent-1", "")

	grants := newMemGrants()
	users := newMemUsers(
		model.User{ID: "adm-1", Name: "Alice Admin", Role: model.RoleAdmin},
		model.User{ID: "op-1", Name: "Oscar Operator", Role: model.RoleOperator},
		model.User{ID: "eng-1", Name: "Erik Engineer", Role: model.RoleEngineer},
		model.User{ID: "eng-2", Name: "Eva Engineer", Role: model.RoleEngineer},
	)
	equipment := newMemEquipment(
		model.Equipment{ID: "eq-1", Name: "Press", WorkshopID: "ws-1"},
		model.Equipment{ID: "eq-2", Name: "Lathe", WorkshopID: "ws-1"},
		model.Equipment{ID: "eq-3", Name: "Mill", WorkshopID: "ws-2"},
	)

	resolver := engine.NewResolver(hierarchy, grants, 64, time.Minute)

	auditMock := new(ew_mock.MockAuditService)
	auditMock.On("LogAccess", testify_mock.Anything, testify_mock.Anything).Return(nil)

	svc := service.NewAccessService(
		grants,
		users,
		equipment,
		hierarchy,
		resolver,
		util.NewValidationUtil(),
		nullCache{},
		nullNotifier{},
		auditMock,
		util.NewEventBus(),
	)
	return &accessFixture{
		svc:       svc,
		grants:    grants,
		users:     users,
		equipment: equipment,
		hierarchy: hierarchy,
		resolver:  resolver,
		auditMock: auditMock,
	}
}

func TestGrantEquipmentAccess(t *testing.T) {
	ctx := context.Background()
	admin := model.User{ID: "adm-1", Role: model.RoleAdmin}

	t.Run("grants and reports counts", func(t *testing.T) {
		f := newAccessFixture(t)

		report, err := f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1", "eq-2"}, model.AccessReadWrite, nil)
		assert.NoError(t, err)
		assert.Equal(t, 2, report.GrantedCount)
		assert.Equal(t, 2, report.TotalRequested)

		effective, _ := f.grants.EffectiveGrants(ctx, "eng-1")
		assert.Len(t, effective, 2)
	})

	t.Run("unknown equipment skipped, not fatal", func(t *testing.T) {
		f := newAccessFixture(t)

		report, err := f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1", "no-such"}, model.AccessReadOnly, nil)
		assert.NoError(t, err)
		assert.Equal(t, 1, report.GrantedCount)
		assert.Equal(t, 2, report.TotalRequested)
	})

	t.Run("re-grant is idempotent", func(t *testing.T) {
		f := newAccessFixture(t)

		_, err := f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessReadOnly, nil)
		assert.NoError(t, err)
		_, err = f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessReadWrite, nil)
		assert.NoError(t, err)

		effective, _ := f.grants.EffectiveGrants(ctx, "eng-1")
		assert.Len(t, effective, 1)
		assert.Equal(t, model.AccessReadWrite, effective[0].AccessType)
	})

	t.Run("engineer actor forbidden", func(t *testing.T) {
		f := newAccessFixture(t)

		_, err := f.svc.GrantEquipmentAccess(ctx, model.User{ID: "eng-2", Role: model.RoleEngineer}, "eng-1", []string{"eq-1"}, model.AccessReadOnly, nil)
		assert.ErrorIs(t, err, ew_errors.ErrForbidden)
	})

	t.Run("non-engineer target rejected", func(t *testing.T) {
		f := newAccessFixture(t)

		_, err := f.svc.GrantEquipmentAccess(ctx, admin, "op-1", []string{"eq-1"}, model.AccessReadOnly, nil)
		assert.ErrorIs(t, err, ew_errors.ErrTargetNotEngineer)
	})

	t.Run("unknown target rejected", func(t *testing.T) {
		f := newAccessFixture(t)

		_, err := f.svc.GrantEquipmentAccess(ctx, admin, "ghost", []string{"eq-1"}, model.AccessReadOnly, nil)
		assert.ErrorIs(t, err, ew_errors.ErrUserNotFound)
	})

	t.Run("invalid access type rejected", func(t *testing.T) {
		f := newAccessFixture(t)

		_, err := f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessType("root"), nil)
		assert.ErrorIs(t, err, ew_errors.ErrInvalidGrantData)
	})
}

func TestRevokeEquipmentAccess(t *testing.T) {
	ctx := context.Background()
	admin := model.User{ID: "adm-1", Role: model.RoleAdmin}

	t.Run("revocation takes effect on next resolution", func(t *testing.T) {
		f := newAccessFixture(t)
		engineerUser := model.User{ID: "eng-1", Role: model.RoleEngineer}

		_, err := f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessReadWrite, nil)
		assert.NoError(t, err)
		assert.True(t, f.resolver.Authorize(ctx, engineerUser, "eq-1", model.PermissionRead))

		err = f.svc.RevokeEquipmentAccess(ctx, admin, "eng-1", "eq-1")
		assert.NoError(t, err)
		assert.False(t, f.resolver.Authorize(ctx, engineerUser, "eq-1", model.PermissionRead))
	})

	t.Run("revoked grant stays in history", func(t *testing.T) {
		f := newAccessFixture(t)

		_, _ = f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessReadWrite, nil)
		_ = f.svc.RevokeEquipmentAccess(ctx, admin, "eng-1", "eq-1")

		history, err := f.svc.GrantHistory(ctx, admin, "eng-1")
		assert.NoError(t, err)
		assert.NotEmpty(t, history)
	})

	t.Run("missing grant reported", func(t *testing.T) {
		f := newAccessFixture(t)

		err := f.svc.RevokeEquipmentAccess(ctx, admin, "eng-1", "eq-3")
		assert.ErrorIs(t, err, ew_errors.ErrGrantNotFound)
	})

	t.Run("revocation is audited", func(t *testing.T) {
		f := newAccessFixture(t)

		_, _ = f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessReadWrite, nil)
		err := f.svc.RevokeEquipmentAccess(ctx, admin, "eng-1", "eq-1")
		assert.NoError(t, err)

		f.auditMock.AssertCalled(t, "LogAccess", testify_mock.Anything, testify_mock.MatchedBy(func(log audit.AuditLog) bool {
			return log.Action == audit.ActionRevokeAccess && log.TargetUserID == "eng-1" && log.ScopeID == "eq-1"
		}))
	})
}

func TestGrantHierarchyAccess(t *testing.T) {
	ctx := context.Background()
	admin := model.User{ID: "adm-1", Role: model.RoleAdmin}

	t.Run("workshop grant expands to its equipment", func(t *testing.T) {
		f := newAccessFixture(t)

		err := f.svc.GrantHierarchyAccess(ctx, admin, model.ScopeWorkshop, "ws-1", []string{"eng-1"}, nil)
		assert.NoError(t, err)

		accessible, err := f.svc.AccessibleEquipment(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer})
		assert.NoError(t, err)
		assert.Equal(t, []string{"eq-1", "eq-2"}, accessible)
	})

	t.Run("equipment level rejected here", func(t *testing.T) {
		f := newAccessFixture(t)

		err := f.svc.GrantHierarchyAccess(ctx, admin, model.ScopeEquipment, "eq-1", []string{"eng-1"}, nil)
		assert.ErrorIs(t, err, ew_errors.ErrInvalidScope)
	})

	t.Run("unknown node rejected", func(t *testing.T) {
		f := newAccessFixture(t)

		err := f.svc.GrantHierarchyAccess(ctx, admin, model.ScopeWorkshop, "ws-99", []string{"eng-1"}, nil)
		assert.ErrorIs(t, err, ew_errors.ErrWorkshopNotFound)
	})

	t.Run("one bad target fails the batch before writes", func(t *testing.T) {
		f := newAccessFixture(t)

		err := f.svc.GrantHierarchyAccess(ctx, admin, model.ScopeWorkshop, "ws-1", []string{"eng-1", "op-1"}, nil)
		assert.ErrorIs(t, err, ew_errors.ErrTargetNotEngineer)

		effective, _ := f.grants.EffectiveGrants(ctx, "eng-1")
		assert.Empty(t, effective)
	})
}

func TestBulkGrantByFilter(t *testing.T) {
	ctx := context.Background()
	admin := model.User{ID: "adm-1", Role: model.RoleAdmin}

	f := newAccessFixture(t)
	report, err := f.svc.BulkGrantByFilter(ctx, admin, "eng-1", model.GrantFilter{EnterpriseID: "ent-1"}, model.AccessReadOnly, nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, report.TotalRequested)
	assert.Equal(t, 3, report.GrantedCount)
}

func TestCheckAccess_DenialAudited(t *testing.T) {
	ctx := context.Background()
	f := newAccessFixture(t)
	engineerUser := model.User{ID: "eng-1", Role: model.RoleEngineer}

	allowed := f.svc.CheckAccess(ctx, engineerUser, "eq-1", model.PermissionRead)
	assert.False(t, allowed)

	f.auditMock.AssertCalled(t, "LogAccess", testify_mock.Anything, testify_mock.MatchedBy(func(log audit.AuditLog) bool {
		return log.Action == audit.ActionAccessDenied && log.ActorID == "eng-1" && !log.AccessGranted
	}))
}

func TestAccessibleEquipment_ExpiryHonored(t *testing.T) {
	ctx := context.Background()
	admin := model.User{ID: "adm-1", Role: model.RoleAdmin}
	f := newAccessFixture(t)

	soon := time.Now().Add(50 * time.Millisecond)
	_, err := f.svc.GrantEquipmentAccess(ctx, admin, "eng-1", []string{"eq-1"}, model.AccessReadOnly, &soon)
	assert.NoError(t, err)

	accessible, err := f.svc.AccessibleEquipment(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer})
	assert.NoError(t, err)
	assert.Equal(t, []string{"eq-1"}, accessible)

	time.Sleep(60 * time.Millisecond)

	accessible, err = f.svc.AccessibleEquipment(ctx, model.User{ID: "eng-1", Role: model.RoleEngineer})
	assert.NoError(t, err)
	assert.Empty(t, accessible)
}
