// service/progress_service.go
package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/resolver/engine"

	"github.com/skarin/equipwatch/dao"
)

// GrantNodeReader lists the effective grants attached to one hierarchy
// node. Ancestor or descendant grants are deliberately not included:
// progress reports on the engineers granted at that exact node.
type GrantNodeReader interface {
	EffectiveGrantsOnNode(ctx context.Context, level model.ScopeLevel, scopeID string) ([]model.AccessGrant, error)
}

// EngineerAssignmentReader lists one engineer's assignments.
type EngineerAssignmentReader interface {
	AssignmentsByEngineer(ctx context.Context, engineerID string) ([]model.Assignment, error)
}

// NameReader resolves display names for users and hierarchy nodes.
type NameReader interface {
	DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// NodeNameReader resolves a hierarchy node's display name.
type NodeNameReader interface {
	NodeName(ctx context.Context, level model.ScopeLevel, nodeID string) (string, error)
}

// IProgressService defines the interface for assignment-progress
// aggregation.
type IProgressService interface {
	ObjectProgress(ctx context.Context, actor model.User, objectType model.ScopeLevel, objectID string) ([]model.EngineerProgress, error)
	HierarchyProgress(ctx context.Context, actor model.User, objectType model.ScopeLevel, objectIDs []string) ([]model.ObjectProgress, error)
}

// ProgressService computes per-engineer completion tallies over the
// equipment sets of hierarchy nodes.
type ProgressService struct {
	grants      GrantNodeReader
	hierarchy   engine.HierarchyStore
	assignments EngineerAssignmentReader
	users       NameReader
	nodes       NodeNameReader
}

var _ IProgressService = &ProgressService{}

func NewProgressService(
	grants GrantNodeReader,
	hierarchy engine.HierarchyStore,
	assignments EngineerAssignmentReader,
	users NameReader,
	nodes NodeNameReader,
) *ProgressService {
	return &ProgressService{
		grants:      grants,
		hierarchy:   hierarchy,
		assignments: assignments,
		users:       users,
		nodes:       nodes,
	}
}

// ObjectProgress reports, for one hierarchy node, how far each engineer
// granted on that exact node has come with the assignments falling
// inside the node's equipment set. Cancelled assignments are excluded
// from the total; a node with no grants yields an empty report.
func (s *ProgressService) ObjectProgress(ctx context.Context, actor model.User, objectType model.ScopeLevel, objectID string) ([]model.EngineerProgress, error) {
	if !actor.Privileged() {
		return nil, ew_errors.ErrForbidden
	}
	if !model.ValidScopeLevel(objectType) {
		return nil, ew_errors.ErrInvalidScope
	}

	grants, err := s.grants.EffectiveGrantsOnNode(ctx, objectType, objectID)
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return []model.EngineerProgress{}, nil
	}

	objectName, err := s.nodes.NodeName(ctx, objectType, objectID)
	if err != nil {
		return nil, scopeNotFoundErr(objectType)
	}

	var equipmentSet map[string]struct{}
	err = s.hierarchy.View(ctx, func(v dao.HierarchyView) error {
		ids, err := engine.ExpandScope(v, objectType, objectID)
		if err != nil {
			return err
		}
		equipmentSet = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			equipmentSet[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Grants are unique per (principal, node), so each row is one
	// engineer.
	engineerIDs := make([]string, 0, len(grants))
	for _, grant := range grants {
		engineerIDs = append(engineerIDs, grant.PrincipalID)
	}
	names, err := s.users.DisplayNames(ctx, engineerIDs)
	if err != nil {
		logger.Warn("Failed to resolve engineer names", zap.Error(err))
		names = map[string]string{}
	}

	report := make([]model.EngineerProgress, 0, len(engineerIDs))
	for _, engineerID := range engineerIDs {
		assignments, err := s.assignments.AssignmentsByEngineer(ctx, engineerID)
		if err != nil {
			return nil, err
		}

		var total, completed int
		for _, assignment := range assignments {
			if _, ok := equipmentSet[assignment.EquipmentID]; !ok {
				continue
			}
			if assignment.Status == model.StatusCancelled {
				continue
			}
			total++
			if assignment.Status == model.StatusCompleted {
				completed++
			}
		}

		remaining := total - completed
		if remaining < 0 {
			remaining = 0
		}
		pct := 0
		if total > 0 {
			pct = 100 * completed / total
		}

		report = append(report, model.EngineerProgress{
			ObjectType:   objectType,
			ObjectID:     objectID,
			ObjectName:   objectName,
			EngineerID:   engineerID,
			EngineerName: names[engineerID],
			Total:        total,
			Completed:    completed,
			Remaining:    remaining,
			ProgressPct:  pct,
		})
	}

	sort.Slice(report, func(i, j int) bool {
		if report[i].EngineerName != report[j].EngineerName {
			return report[i].EngineerName < report[j].EngineerName
		}
		return report[i].EngineerID < report[j].EngineerID
	})

	return report, nil
}

// HierarchyProgress computes the per-node reports for a list of nodes
// of one type, ordered by node name for stable dashboard output.
func (s *ProgressService) HierarchyProgress(ctx context.Context, actor model.User, objectType model.ScopeLevel, objectIDs []string) ([]model.ObjectProgress, error) {
	aggregate := make([]model.ObjectProgress, 0, len(objectIDs))
	for _, objectID := range objectIDs {
		engineers, err := s.ObjectProgress(ctx, actor, objectType, objectID)
		if err != nil {
			return nil, err
		}

		objectName := ""
		if len(engineers) > 0 {
			objectName = engineers[0].ObjectName
		} else if name, err := s.nodes.NodeName(ctx, objectType, objectID); err == nil {
			objectName = name
		}

		aggregate = append(aggregate, model.ObjectProgress{
			ObjectType: objectType,
			ObjectID:   objectID,
			ObjectName: objectName,
			Engineers:  engineers,
		})
	}

	sort.Slice(aggregate, func(i, j int) bool {
		if aggregate[i].ObjectName != aggregate[j].ObjectName {
			return aggregate[i].ObjectName < aggregate[j].ObjectName
		}
		return aggregate[i].ObjectID < aggregate[j].ObjectID
	})

	return aggregate, nil
}
