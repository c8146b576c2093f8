// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
)

type NotificationService struct {
	// A message queue client would live here.
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyAccessChange tells an engineer their grant set changed.
func (n *NotificationService) NotifyAccessChange(ctx context.Context, changeType string, grant model.AccessGrant) error {
	switch changeType {
	case "granted":
		logger.Info("NOTIFICATION: Access granted",
			zap.String("principalID", grant.PrincipalID),
			zap.String("scopeLevel", string(grant.ScopeLevel)),
			zap.String("scopeID", grant.ScopeID))
	case "revoked":
		logger.Info("NOTIFICATION: Access revoked",
			zap.String("principalID", grant.PrincipalID),
			zap.String("scopeLevel", string(grant.ScopeLevel)),
			zap.String("scopeID", grant.ScopeID))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

// NotifyAssignmentChange tells an engineer about a new or updated task.
func (n *NotificationService) NotifyAssignmentChange(ctx context.Context, changeType string, assignment model.Assignment) error {
	switch changeType {
	case "created":
		logger.Info("NOTIFICATION: New assignment",
			zap.String("assignmentID", assignment.ID),
			zap.String("assignedTo", assignment.AssignedTo),
			zap.String("type", string(assignment.Type)))
	case "updated":
		logger.Info("NOTIFICATION: Assignment updated",
			zap.String("assignmentID", assignment.ID),
			zap.String("status", string(assignment.Status)))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

func (n *NotificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	// Mock email sending
	logger.Info("Sending email",
		zap.String("recipient", recipient),
		zap.String("subject", subject))

	return nil
}
