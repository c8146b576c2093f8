// service/equipment_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skarin/equipwatch/audit"
	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/resolver/engine"
	"github.com/skarin/equipwatch/util"
)

// EquipmentWriter is the mutation surface of the equipment store.
type EquipmentWriter interface {
	EquipmentReader
	CreateEquipment(ctx context.Context, equipment model.Equipment) (string, error)
}

// EquipmentCache caches equipment records keyed by ID.
type EquipmentCache interface {
	GetEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error)
	SetEquipment(ctx context.Context, equipment model.Equipment) error
	DeleteEquipment(ctx context.Context, equipmentID string) error
}

// IEquipmentService defines the interface for equipment operations.
type IEquipmentService interface {
	CreateEquipment(ctx context.Context, actor model.User, equipment model.Equipment) (*model.Equipment, error)
	GetEquipment(ctx context.Context, principal model.User, equipmentID string) (*model.Equipment, error)
	ListEquipment(ctx context.Context, principal model.User, criteria model.EquipmentSearchCriteria) ([]*model.Equipment, error)
}

// EquipmentService handles business logic for equipment, gated by the
// access resolver.
type EquipmentService struct {
	equipment      EquipmentWriter
	resolver       *engine.Resolver
	validationUtil *util.ValidationUtil
	cacheService   EquipmentCache
	auditService   audit.Service
	eventBus       *util.EventBus
}

var _ IEquipmentService = &EquipmentService{}

func NewEquipmentService(
	equipment EquipmentWriter,
	resolver *engine.Resolver,
	validationUtil *util.ValidationUtil,
	cacheService EquipmentCache,
	auditService audit.Service,
	eventBus *util.EventBus,
) *EquipmentService {
	return &EquipmentService{
		equipment:      equipment,
		resolver:       resolver,
		validationUtil: validationUtil,
		cacheService:   cacheService,
		auditService:   auditService,
		eventBus:       eventBus,
	}
}

// CreateEquipment registers a piece of equipment. Privileged roles may
// place equipment anywhere; an engineer needs a grant covering the
// target workshop with the create_equipment access type.
func (s *EquipmentService) CreateEquipment(ctx context.Context, actor model.User, equipment model.Equipment) (*model.Equipment, error) {
	if err := s.validationUtil.ValidateEquipment(equipment); err != nil {
		return nil, err
	}

	if !actor.Privileged() {
		if equipment.WorkshopID == "" {
			return nil, ew_errors.ErrForbidden
		}
		if !s.resolver.AuthorizeCreateIn(ctx, actor, equipment.WorkshopID) {
			return nil, ew_errors.ErrForbidden
		}
	}

	if equipment.ID == "" {
		equipment.ID = uuid.New().String()
	}
	now := time.Now()
	equipment.CreatedAt = now
	equipment.UpdatedAt = now

	equipmentID, err := s.equipment.CreateEquipment(ctx, equipment)
	if err != nil {
		logger.Error("Failed to create equipment",
			zap.Error(err),
			zap.String("equipmentID", equipment.ID))
		return nil, err
	}
	equipment.ID = equipmentID

	if err := s.cacheService.SetEquipment(ctx, equipment); err != nil {
		logger.Warn("Failed to cache created equipment", zap.Error(err))
	}
	s.eventBus.Publish(ctx, util.EventEquipmentCreated, equipment)

	details, _ := json.Marshal(equipment)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		ActorID:       actor.ID,
		Action:        audit.ActionCreateEquipment,
		ScopeLevel:    string(model.ScopeEquipment),
		ScopeID:       equipment.ID,
		AccessGranted: true,
		ChangeDetails: details,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to write equipment audit record", zap.Error(err))
	}

	return &equipment, nil
}

// GetEquipment fetches one equipment record if the principal may read
// it. A denial reads as not found so the ID space is not probeable.
func (s *EquipmentService) GetEquipment(ctx context.Context, principal model.User, equipmentID string) (*model.Equipment, error) {
	if !s.resolver.Authorize(ctx, principal, equipmentID, model.PermissionRead) {
		return nil, ew_errors.ErrEquipmentNotFound
	}

	if cached, err := s.cacheService.GetEquipment(ctx, equipmentID); err == nil && cached != nil {
		return cached, nil
	}

	equipment, err := s.equipment.GetEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetEquipment(ctx, *equipment); err != nil {
		logger.Warn("Failed to cache equipment", zap.Error(err))
	}
	return equipment, nil
}

// ListEquipment searches equipment and filters the result down to what
// the principal may see.
func (s *EquipmentService) ListEquipment(ctx context.Context, principal model.User, criteria model.EquipmentSearchCriteria) ([]*model.Equipment, error) {
	matches, err := s.equipment.SearchEquipment(ctx, criteria)
	if err != nil {
		return nil, err
	}

	if principal.Privileged() {
		return matches, nil
	}

	accessible, err := s.resolver.ResolveAccessibleEquipment(ctx, principal)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Equipment, 0, len(matches))
	for _, equipment := range matches {
		if _, ok := accessible[equipment.ID]; ok {
			visible = append(visible, equipment)
		}
	}
	return visible, nil
}
