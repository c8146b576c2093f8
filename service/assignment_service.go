// service/assignment_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
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

// AssignmentStore is the persistence surface for assignments.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, assignment model.Assignment) (string, error)
	GetAssignment(ctx context.Context, assignmentID string) (*model.Assignment, error)
	UpdateStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) (*model.Assignment, error)
	AssignmentsByEngineer(ctx context.Context, engineerID string) ([]model.Assignment, error)
	AssignmentsByEquipment(ctx context.Context, equipmentID string) ([]model.Assignment, error)
}

// AssignmentNotifier tells engineers about new or changed assignments.
type AssignmentNotifier interface {
	NotifyAssignmentChange(ctx context.Context, changeType string, assignment model.Assignment) error
}

// IAssignmentService defines the interface for assignment lifecycle
// operations.
type IAssignmentService interface {
	CreateAssignment(ctx context.Context, actor model.User, assignment model.Assignment) (*model.Assignment, error)
	GetAssignment(ctx context.Context, actor model.User, assignmentID string) (*model.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, actor model.User, assignmentID string, status model.AssignmentStatus) (*model.Assignment, error)
	ListAssignmentsForEngineer(ctx context.Context, actor model.User, engineerID string) ([]model.Assignment, error)
	ListAssignmentsForEquipment(ctx context.Context, actor model.User, equipmentID string) ([]model.Assignment, error)
}

// AssignmentService handles business logic for assignments.
type AssignmentService struct {
	assignments     AssignmentStore
	users           UserReader
	resolver        *engine.Resolver
	validationUtil  *util.ValidationUtil
	notificationSvc AssignmentNotifier
	auditService    audit.Service
	eventBus        *util.EventBus
}

var _ IAssignmentService = &AssignmentService{}

func NewAssignmentService(
	assignments AssignmentStore,
	users UserReader,
	resolver *engine.Resolver,
	validationUtil *util.ValidationUtil,
	notificationSvc AssignmentNotifier,
	auditService audit.Service,
	eventBus *util.EventBus,
) *AssignmentService {
	service := &AssignmentService{
		assignments:     assignments,
		users:           users,
		resolver:        resolver,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		auditService:    auditService,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(util.EventAssignmentCreated, service.handleAssignmentChanged("created"))
	eventBus.Subscribe(util.EventAssignmentUpdated, service.handleAssignmentChanged("updated"))

	return service
}

func (s *AssignmentService) handleAssignmentChanged(changeType string) util.EventHandler {
	return func(ctx context.Context, event util.Event) error {
		assignment, ok := event.Payload.(model.Assignment)
		if !ok {
			return fmt.Errorf("invalid event payload type: %T", event.Payload)
		}
		if err := s.notificationSvc.NotifyAssignmentChange(ctx, changeType, assignment); err != nil {
			logger.Warn("Failed to send assignment notification",
				zap.Error(err),
				zap.String("assignmentID", assignment.ID))
		}
		return nil
	}
}

// CreateAssignment creates a PENDING assignment of a piece of equipment
// to an engineer. Only the privileged roles assign work.
func (s *AssignmentService) CreateAssignment(ctx context.Context, actor model.User, assignment model.Assignment) (*model.Assignment, error) {
	if !actor.Privileged() {
		return nil, ew_errors.ErrForbidden
	}

	assignee, err := s.users.GetUser(ctx, assignment.AssignedTo)
	if err != nil {
		return nil, err
	}
	if assignee.Role != model.RoleEngineer {
		return nil, ew_errors.ErrTargetNotEngineer
	}

	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	assignment.AssignedBy = actor.ID
	assignment.Status = model.StatusPending
	now := time.Now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	assignment.CompletedAt = nil

	if err := s.validationUtil.ValidateAssignment(assignment); err != nil {
		return nil, err
	}

	assignmentID, err := s.assignments.CreateAssignment(ctx, assignment)
	if err != nil {
		logger.Error("Failed to create assignment",
			zap.Error(err),
			zap.String("equipmentID", assignment.EquipmentID),
			zap.String("assignedTo", assignment.AssignedTo))
		return nil, err
	}
	assignment.ID = assignmentID

	s.eventBus.Publish(ctx, util.EventAssignmentCreated, assignment)
	s.logAssignmentAudit(ctx, audit.ActionCreateAssignment, actor.ID, assignment)

	return &assignment, nil
}

// GetAssignment fetches one assignment. The assignee always sees their
// own work; anyone else needs read access to the target equipment.
func (s *AssignmentService) GetAssignment(ctx context.Context, actor model.User, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if actor.ID != assignment.AssignedTo {
		if !s.resolver.Authorize(ctx, actor, assignment.EquipmentID, model.PermissionRead) {
			return nil, ew_errors.ErrAssignmentNotFound
		}
	}
	return assignment, nil
}

// UpdateAssignmentStatus moves an assignment through its lifecycle.
// The assignee may progress their own work; otherwise a privileged role
// is required. COMPLETED and CANCELLED are terminal.
func (s *AssignmentService) UpdateAssignmentStatus(ctx context.Context, actor model.User, assignmentID string, status model.AssignmentStatus) (*model.Assignment, error) {
	if !model.ValidAssignmentStatus(status) {
		return nil, ew_errors.ErrInvalidAssignmentData
	}

	assignment, err := s.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if !actor.Privileged() && actor.ID != assignment.AssignedTo {
		return nil, ew_errors.ErrForbidden
	}
	if !validStatusTransition(assignment.Status, status) {
		return nil, ew_errors.ErrInvalidStatusTransition
	}

	updated, err := s.assignments.UpdateStatus(ctx, assignmentID, status)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, util.EventAssignmentUpdated, *updated)
	s.logAssignmentAudit(ctx, audit.ActionUpdateAssignment, actor.ID, *updated)

	return updated, nil
}

// ListAssignmentsForEngineer lists an engineer's assignments. Engineers
// may list only their own.
func (s *AssignmentService) ListAssignmentsForEngineer(ctx context.Context, actor model.User, engineerID string) ([]model.Assignment, error) {
	if !actor.Privileged() && actor.ID != engineerID {
		return nil, ew_errors.ErrForbidden
	}
	return s.assignments.AssignmentsByEngineer(ctx, engineerID)
}

// ListAssignmentsForEquipment lists the assignments targeting one piece
// of equipment, gated by read access to it.
func (s *AssignmentService) ListAssignmentsForEquipment(ctx context.Context, actor model.User, equipmentID string) ([]model.Assignment, error) {
	if !s.resolver.Authorize(ctx, actor, equipmentID, model.PermissionRead) {
		return nil, ew_errors.ErrEquipmentNotFound
	}
	return s.assignments.AssignmentsByEquipment(ctx, equipmentID)
}

// validStatusTransition encodes the assignment lifecycle. PENDING may
// skip straight to COMPLETED or CANCELLED; terminal states never move.
func validStatusTransition(from, to model.AssignmentStatus) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusInProgress || to == model.StatusCompleted || to == model.StatusCancelled
	case model.StatusInProgress:
		return to == model.StatusCompleted || to == model.StatusCancelled
	default:
		return false
	}
}

func (s *AssignmentService) logAssignmentAudit(ctx context.Context, action, actorID string, assignment model.Assignment) {
	details, _ := json.Marshal(assignment)
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		ActorID:       actorID,
		Action:        action,
		TargetUserID:  assignment.AssignedTo,
		ScopeLevel:    string(model.ScopeEquipment),
		ScopeID:       assignment.EquipmentID,
		AccessGranted: true,
		ChangeDetails: details,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to write assignment audit record", zap.Error(err))
	}
}
