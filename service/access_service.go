// service/access_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/skarin/equipwatch/audit"
	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/resolver/engine"
	resolver_model "github.com/skarin/equipwatch/resolver/model"
	"github.com/skarin/equipwatch/util"
)

// GrantWriter is the mutation surface of the grant store.
type GrantWriter interface {
	UpsertGrant(ctx context.Context, grant model.AccessGrant) error
	RevokeGrant(ctx context.Context, principalID string, level model.ScopeLevel, scopeID string) error
	GrantHistory(ctx context.Context, principalID string) ([]model.AccessGrant, error)
}

// UserReader resolves principals.
type UserReader interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
}

// EquipmentReader serves equipment lookups and structural filters.
type EquipmentReader interface {
	GetEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error)
	SearchEquipment(ctx context.Context, criteria model.EquipmentSearchCriteria) ([]*model.Equipment, error)
}

// NodeChecker validates hierarchy grant targets.
type NodeChecker interface {
	NodeExists(ctx context.Context, level model.ScopeLevel, nodeID string) (bool, error)
}

// AccessCache caches resolved accessible-equipment sets.
type AccessCache interface {
	GetAccessibleSet(ctx context.Context, principalID string) ([]string, error)
	SetAccessibleSet(ctx context.Context, principalID string, equipmentIDs []string) error
	DeleteAccessibleSet(ctx context.Context, principalID string) error
}

// AccessNotifier tells engineers their grant set changed.
type AccessNotifier interface {
	NotifyAccessChange(ctx context.Context, changeType string, grant model.AccessGrant) error
}

// IAccessService defines the interface for grant administration and
// access checks.
type IAccessService interface {
	GrantEquipmentAccess(ctx context.Context, actor model.User, targetID string, equipmentIDs []string, accessType model.AccessType, expiresAt *time.Time) (model.GrantReport, error)
	RevokeEquipmentAccess(ctx context.Context, actor model.User, targetID, equipmentID string) error
	GrantHierarchyAccess(ctx context.Context, actor model.User, level model.ScopeLevel, scopeID string, principalIDs []string, expiresAt *time.Time) error
	BulkGrantByFilter(ctx context.Context, actor model.User, targetID string, filter model.GrantFilter, accessType model.AccessType, expiresAt *time.Time) (model.GrantReport, error)
	CheckAccess(ctx context.Context, principal model.User, equipmentID string, permission model.Permission) bool
	AccessibleEquipment(ctx context.Context, principal model.User) ([]string, error)
	GrantHistory(ctx context.Context, actor model.User, principalID string) ([]model.AccessGrant, error)
}

// AccessService handles business logic for grant administration
type AccessService struct {
	grants          GrantWriter
	users           UserReader
	equipment       EquipmentReader
	nodes           NodeChecker
	resolver        *engine.Resolver
	validationUtil  *util.ValidationUtil
	cacheService    AccessCache
	notificationSvc AccessNotifier
	auditService    audit.Service
	eventBus        *util.EventBus
}

var _ IAccessService = &AccessService{}

// NewAccessService creates a new instance of AccessService
func NewAccessService(
	grants GrantWriter,
	users UserReader,
	equipment EquipmentReader,
	nodes NodeChecker,
	resolver *engine.Resolver,
	validationUtil *util.ValidationUtil,
	cacheService AccessCache,
	notificationSvc AccessNotifier,
	auditService audit.Service,
	eventBus *util.EventBus,
) *AccessService {
	service := &AccessService{
		grants:          grants,
		users:           users,
		equipment:       equipment,
		nodes:           nodes,
		resolver:        resolver,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		auditService:    auditService,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventAccessGranted, service.handleAccessGranted)
	eventBus.Subscribe(util.EventAccessRevoked, service.handleAccessRevoked)

	return service
}

func (s *AccessService) handleAccessGranted(ctx context.Context, event util.Event) error {
	grant, ok := event.Payload.(model.AccessGrant)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Access granted event received",
		zap.String("principalID", grant.PrincipalID),
		zap.String("scopeID", grant.ScopeID))

	if err := s.notificationSvc.NotifyAccessChange(ctx, "granted", grant); err != nil {
		logger.Warn("Failed to send grant notification",
			zap.Error(err),
			zap.String("principalID", grant.PrincipalID))
	}
	return nil
}

func (s *AccessService) handleAccessRevoked(ctx context.Context, event util.Event) error {
	grant, ok := event.Payload.(model.AccessGrant)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	logger.Info("Access revoked event received",
		zap.String("principalID", grant.PrincipalID),
		zap.String("scopeID", grant.ScopeID))

	if err := s.notificationSvc.NotifyAccessChange(ctx, "revoked", grant); err != nil {
		logger.Warn("Failed to send revoke notification",
			zap.Error(err),
			zap.String("principalID", grant.PrincipalID))
	}
	return nil
}

// checkGrantActors enforces who may administer grants: only the
// privileged roles, and every grant target must be an engineer
// (administrative roles bypass resolution and need no grants).
func (s *AccessService) checkGrantActors(ctx context.Context, actor model.User, targetID string) (*model.User, error) {
	if !actor.Privileged() {
		return nil, ew_errors.ErrForbidden
	}

	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role != model.RoleEngineer {
		return nil, ew_errors.ErrTargetNotEngineer
	}
	return target, nil
}

// GrantEquipmentAccess grants direct equipment-level access for each
// listed equipment ID. Granting is idempotent per (principal,
// equipment): a repeat call refreshes the existing record. Unknown
// equipment IDs are skipped and reported through the count difference.
func (s *AccessService) GrantEquipmentAccess(ctx context.Context, actor model.User, targetID string, equipmentIDs []string, accessType model.AccessType, expiresAt *time.Time) (model.GrantReport, error) {
	report := model.GrantReport{TotalRequested: len(equipmentIDs)}

	target, err := s.checkGrantActors(ctx, actor, targetID)
	if err != nil {
		return report, err
	}
	if !model.ValidAccessType(accessType) {
		return report, ew_errors.ErrInvalidGrantData
	}

	for _, equipmentID := range equipmentIDs {
		if _, err := s.equipment.GetEquipment(ctx, equipmentID); err != nil {
			logger.Warn("Skipping grant on unknown equipment",
				zap.String("equipmentID", equipmentID),
				zap.Error(err))
			continue
		}

		grant := model.AccessGrant{
			PrincipalID: target.ID,
			ScopeLevel:  model.ScopeEquipment,
			ScopeID:     equipmentID,
			AccessType:  accessType,
			GrantedBy:   actor.ID,
			GrantedAt:   time.Now(),
			ExpiresAt:   expiresAt,
			IsActive:    true,
		}
		if err := s.validationUtil.ValidateGrant(grant); err != nil {
			logger.Warn("Skipping invalid grant", zap.Error(err))
			continue
		}

		if err := s.grants.UpsertGrant(ctx, grant); err != nil {
			logger.Error("Failed to upsert grant",
				zap.Error(err),
				zap.String("equipmentID", equipmentID))
			continue
		}
		report.GrantedCount++

		s.eventBus.Publish(ctx, util.EventAccessGranted, grant)
	}

	s.invalidatePrincipal(ctx, target.ID)
	s.logGrantAudit(ctx, audit.ActionGrantAccess, actor.ID, target.ID, model.ScopeEquipment, "", report)

	return report, nil
}

// RevokeEquipmentAccess deactivates the direct grant. The record stays
// behind with is_active=false for audit.
func (s *AccessService) RevokeEquipmentAccess(ctx context.Context, actor model.User, targetID, equipmentID string) error {
	target, err := s.checkGrantActors(ctx, actor, targetID)
	if err != nil {
		return err
	}

	if err := s.grants.RevokeGrant(ctx, target.ID, model.ScopeEquipment, equipmentID); err != nil {
		return err
	}

	s.invalidatePrincipal(ctx, target.ID)

	revoked := model.AccessGrant{
		PrincipalID: target.ID,
		ScopeLevel:  model.ScopeEquipment,
		ScopeID:     equipmentID,
	}
	s.eventBus.Publish(ctx, util.EventAccessRevoked, revoked)
	s.logGrantAudit(ctx, audit.ActionRevokeAccess, actor.ID, target.ID, model.ScopeEquipment, equipmentID, model.GrantReport{})

	return nil
}

// GrantHierarchyAccess grants node-scoped access to each principal.
// Hierarchy grants default to read_write; enterprise and branch grants
// do not consult the access type during authorization anyway.
func (s *AccessService) GrantHierarchyAccess(ctx context.Context, actor model.User, level model.ScopeLevel, scopeID string, principalIDs []string, expiresAt *time.Time) error {
	if !model.ValidScopeLevel(level) || level == model.ScopeEquipment {
		return ew_errors.ErrInvalidScope
	}

	exists, err := s.nodes.NodeExists(ctx, level, scopeID)
	if err != nil {
		return err
	}
	if !exists {
		return scopeNotFoundErr(level)
	}

	// Validate every target before writing anything.
	targets := make([]*model.User, 0, len(principalIDs))
	for _, principalID := range principalIDs {
		target, err := s.checkGrantActors(ctx, actor, principalID)
		if err != nil {
			return err
		}
		targets = append(targets, target)
	}

	for _, target := range targets {
		grant := model.AccessGrant{
			PrincipalID: target.ID,
			ScopeLevel:  level,
			ScopeID:     scopeID,
			AccessType:  model.AccessReadWrite,
			GrantedBy:   actor.ID,
			GrantedAt:   time.Now(),
			ExpiresAt:   expiresAt,
			IsActive:    true,
		}
		if err := s.grants.UpsertGrant(ctx, grant); err != nil {
			return err
		}

		s.invalidatePrincipal(ctx, target.ID)
		s.eventBus.Publish(ctx, util.EventAccessGranted, grant)
	}

	s.logGrantAudit(ctx, audit.ActionGrantAccess, actor.ID, "", level, scopeID,
		model.GrantReport{GrantedCount: len(targets), TotalRequested: len(principalIDs)})

	return nil
}

// BulkGrantByFilter resolves a structural filter to concrete equipment
// and grants each match through the single-equipment path. Partial
// success is reported, never a whole-batch failure.
func (s *AccessService) BulkGrantByFilter(ctx context.Context, actor model.User, targetID string, filter model.GrantFilter, accessType model.AccessType, expiresAt *time.Time) (model.GrantReport, error) {
	if _, err := s.checkGrantActors(ctx, actor, targetID); err != nil {
		return model.GrantReport{}, err
	}

	matches, err := s.equipment.SearchEquipment(ctx, model.EquipmentSearchCriteria{
		LocationContains: filter.LocationContains,
		EnterpriseID:     filter.EnterpriseID,
	})
	if err != nil {
		return model.GrantReport{}, err
	}

	equipmentIDs := make([]string, 0, len(matches))
	for _, equipment := range matches {
		equipmentIDs = append(equipmentIDs, equipment.ID)
	}

	report, err := s.GrantEquipmentAccess(ctx, actor, targetID, equipmentIDs, accessType, expiresAt)
	if err != nil {
		return report, err
	}

	s.logGrantAudit(ctx, audit.ActionBulkGrantAccess, actor.ID, targetID, model.ScopeEquipment, "", report)
	return report, nil
}

// CheckAccess wraps the resolver decision and audits denials.
func (s *AccessService) CheckAccess(ctx context.Context, principal model.User, equipmentID string, permission model.Permission) bool {
	if principal.Privileged() {
		return true
	}

	decision := s.resolver.Decide(ctx, principal, equipmentID, permission)
	if !decision.Allowed {
		check := resolver_model.AccessCheck{
			Principal:   principal,
			EquipmentID: equipmentID,
			Permission:  permission,
			Timestamp:   time.Now(),
		}
		details, _ := json.Marshal(check)
		auditLog := audit.AuditLog{
			Timestamp:     check.Timestamp,
			ActorID:       principal.ID,
			Action:        audit.ActionAccessDenied,
			ScopeLevel:    string(model.ScopeEquipment),
			ScopeID:       equipmentID,
			AccessGranted: false,
			ChangeDetails: details,
		}
		if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
			logger.Error("Failed to write denial audit record", zap.Error(err))
		}
	}
	return decision.Allowed
}

// AccessibleEquipment resolves and caches the principal's equipment-ID
// set, sorted for deterministic output.
func (s *AccessService) AccessibleEquipment(ctx context.Context, principal model.User) ([]string, error) {
	if principal.Role == model.RoleEngineer {
		cached, err := s.cacheService.GetAccessibleSet(ctx, principal.ID)
		if err != nil {
			logger.Warn("Accessible-set cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	accessible, err := s.resolver.ResolveAccessibleEquipment(ctx, principal)
	if err != nil {
		return nil, err
	}

	equipmentIDs := make([]string, 0, len(accessible))
	for id := range accessible {
		equipmentIDs = append(equipmentIDs, id)
	}
	sort.Strings(equipmentIDs)

	if principal.Role == model.RoleEngineer {
		if err := s.cacheService.SetAccessibleSet(ctx, principal.ID, equipmentIDs); err != nil {
			logger.Warn("Accessible-set cache write failed", zap.Error(err))
		}
	}

	return equipmentIDs, nil
}

// GrantHistory lists every grant record for a principal, revoked ones
// included. Engineers may read their own history.
func (s *AccessService) GrantHistory(ctx context.Context, actor model.User, principalID string) ([]model.AccessGrant, error) {
	if !actor.Privileged() && actor.ID != principalID {
		return nil, ew_errors.ErrForbidden
	}
	return s.grants.GrantHistory(ctx, principalID)
}

func (s *AccessService) invalidatePrincipal(ctx context.Context, principalID string) {
	s.resolver.InvalidatePrincipal(principalID)
	if err := s.cacheService.DeleteAccessibleSet(ctx, principalID); err != nil {
		logger.Warn("Failed to invalidate accessible-set cache",
			zap.Error(err),
			zap.String("principalID", principalID))
	}
}

func (s *AccessService) logGrantAudit(ctx context.Context, action, actorID, targetID string, level model.ScopeLevel, scopeID string, report model.GrantReport) {
	details, _ := json.Marshal(report)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		ActorID:       actorID,
		Action:        action,
		TargetUserID:  targetID,
		ScopeLevel:    string(level),
		ScopeID:       scopeID,
		AccessGranted: true,
		ChangeDetails: details,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to write grant audit record", zap.Error(err))
	}
}

func scopeNotFoundErr(level model.ScopeLevel) error {
	switch level {
	case model.ScopeEnterprise:
		return ew_errors.ErrEnterpriseNotFound
	case model.ScopeBranch:
		return ew_errors.ErrBranchNotFound
	case model.ScopeWorkshop:
		return ew_errors.ErrWorkshopNotFound
	case model.ScopeEquipmentType:
		return ew_errors.ErrEquipmentTypeNotFound
	default:
		return ew_errors.ErrEquipmentNotFound
	}
}
