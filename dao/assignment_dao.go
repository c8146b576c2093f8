// dao/assignment_dao.go
package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	ew_graph "github.com/skarin/equipwatch/model/graph"
	helper_util "github.com/skarin/equipwatch/util/helper"
)

type AssignmentDAO struct {
	Driver neo4j.Driver
}

func NewAssignmentDAO(driver neo4j.Driver) *AssignmentDAO {
	dao := &AssignmentDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Assignment", zap.Error(err))
	}
	return dao
}

func (dao *AssignmentDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_assignment_id IF NOT EXISTS
        FOR (a:` + ew_graph.LabelAssignment + `) REQUIRE a.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	return err
}

// CreateAssignment persists a new PENDING assignment and links it to the
// equipment and the assignee.
func (dao *AssignmentDAO) CreateAssignment(ctx context.Context, assignment model.Assignment) (string, error) {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (e:` + ew_graph.LabelEquipment + ` {id: $equipmentID})
        MATCH (u:` + ew_graph.LabelUser + ` {id: $assignedTo})
        MERGE (a:` + ew_graph.LabelAssignment + ` {id: $id})
        ON CREATE SET a += $props
        MERGE (a)-[:` + ew_graph.RelTargets + `]->(e)
        MERGE (a)-[:` + ew_graph.RelAssignedTo + `]->(u)
        RETURN a.id as id
        `

		var dueDate interface{}
		if assignment.DueDate != nil {
			dueDate = assignment.DueDate.Format(time.RFC3339)
		}

		params := map[string]interface{}{
			"id":          assignment.ID,
			"equipmentID": assignment.EquipmentID,
			"assignedTo":  assignment.AssignedTo,
			"props": map[string]interface{}{
				"equipment_id":    assignment.EquipmentID,
				"assignment_type": string(assignment.Type),
				"assigned_by":     assignment.AssignedBy,
				"assigned_to":     assignment.AssignedTo,
				"status":          string(model.StatusPending),
				"priority":        assignment.Priority,
				"due_date":        dueDate,
				"description":     assignment.Description,
				"createdAt":       time.Now().Format(time.RFC3339),
				"updatedAt":       time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, ew_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		// No row back means the equipment or assignee match failed.
		return nil, ew_errors.ErrEquipmentNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create assignment",
			zap.Error(err),
			zap.String("equipmentID", assignment.EquipmentID),
			zap.Duration("duration", duration))
		return "", err
	}

	assignmentID := result.(string)
	logger.Info("Assignment created successfully",
		zap.String("assignmentID", assignmentID),
		zap.String("assignedTo", assignment.AssignedTo),
		zap.Duration("duration", duration))

	return assignmentID, nil
}

func (dao *AssignmentDAO) GetAssignment(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + ew_graph.LabelAssignment + ` {id: $id})
        RETURN a
        `
		res, err := tx.Run(query, map[string]interface{}{"id": assignmentID})
		if err != nil {
			return nil, err
		}

		if !res.Next() {
			return nil, ew_errors.ErrAssignmentNotFound
		}

		node, ok := res.Record().Values[0].(neo4j.Node)
		if !ok {
			return nil, ew_errors.ErrInternalServer
		}
		return mapNodeToAssignment(node.Props), nil
	})

	if err != nil {
		if err == ew_errors.ErrAssignmentNotFound {
			return nil, err
		}
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.(*model.Assignment), nil
}

// UpdateStatus transitions the assignment and stamps completed_at
// exactly when the status becomes COMPLETED.
func (dao *AssignmentDAO) UpdateStatus(ctx context.Context, assignmentID string, status model.AssignmentStatus) (*model.Assignment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + ew_graph.LabelAssignment + ` {id: $id})
        SET a.status = $status,
            a.updatedAt = $now
        `
		if status == model.StatusCompleted {
			query += `
        SET a.completed_at = $now
        `
		}
		query += `
        RETURN a
        `

		params := map[string]interface{}{
			"id":     assignmentID,
			"status": string(status),
			"now":    time.Now().Format(time.RFC3339),
		}

		res, err := transaction.Run(query, params)
		if err != nil {
			return nil, ew_errors.ErrDatabaseOperation
		}

		if !res.Next() {
			return nil, ew_errors.ErrAssignmentNotFound
		}

		node, ok := res.Record().Values[0].(neo4j.Node)
		if !ok {
			return nil, ew_errors.ErrInternalServer
		}
		return mapNodeToAssignment(node.Props), nil
	})

	if err != nil {
		logger.Error("Failed to update assignment status",
			zap.Error(err),
			zap.String("assignmentID", assignmentID),
			zap.String("status", string(status)))
		return nil, err
	}

	logger.Info("Assignment status updated",
		zap.String("assignmentID", assignmentID),
		zap.String("status", string(status)))

	return result.(*model.Assignment), nil
}

// AssignmentsByEngineer returns every assignment for one engineer,
// ordered by creation time for deterministic aggregation.
func (dao *AssignmentDAO) AssignmentsByEngineer(ctx context.Context, engineerID string) ([]model.Assignment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + ew_graph.LabelAssignment + ` {assigned_to: $engineerID})
        RETURN a
        ORDER BY a.createdAt, a.id
        `
		res, err := tx.Run(query, map[string]interface{}{"engineerID": engineerID})
		if err != nil {
			return nil, err
		}

		var assignments []model.Assignment
		for res.Next() {
			node, ok := res.Record().Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			assignments = append(assignments, *mapNodeToAssignment(node.Props))
		}
		return assignments, nil
	})

	if err != nil {
		logger.Error("Failed to list assignments by engineer",
			zap.Error(err),
			zap.String("engineerID", engineerID))
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.([]model.Assignment), nil
}

// AssignmentsByEquipment lists the assignments targeting one equipment item.
func (dao *AssignmentDAO) AssignmentsByEquipment(ctx context.Context, equipmentID string) ([]model.Assignment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (a:` + ew_graph.LabelAssignment + ` {equipment_id: $equipmentID})
        RETURN a
        ORDER BY a.createdAt, a.id
        `
		res, err := tx.Run(query, map[string]interface{}{"equipmentID": equipmentID})
		if err != nil {
			return nil, err
		}

		var assignments []model.Assignment
		for res.Next() {
			node, ok := res.Record().Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			assignments = append(assignments, *mapNodeToAssignment(node.Props))
		}
		return assignments, nil
	})

	if err != nil {
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.([]model.Assignment), nil
}

func mapNodeToAssignment(props map[string]interface{}) *model.Assignment {
	assignment := &model.Assignment{}

	if id, ok := props["id"].(string); ok {
		assignment.ID = id
	}
	if equipmentID, ok := props["equipment_id"].(string); ok {
		assignment.EquipmentID = equipmentID
	}
	if assignmentType, ok := props["assignment_type"].(string); ok {
		assignment.Type = model.AssignmentType(assignmentType)
	}
	if assignedBy, ok := props["assigned_by"].(string); ok {
		assignment.AssignedBy = assignedBy
	}
	if assignedTo, ok := props["assigned_to"].(string); ok {
		assignment.AssignedTo = assignedTo
	}
	if status, ok := props["status"].(string); ok {
		assignment.Status = model.AssignmentStatus(status)
	}
	if priority, ok := props["priority"].(int64); ok {
		assignment.Priority = int(priority)
	}
	if description, ok := props["description"].(string); ok {
		assignment.Description = description
	}
	if createdAt, ok := props["createdAt"].(string); ok {
		if t, err := helper_util.ParseTime(createdAt); err == nil {
			assignment.CreatedAt = t
		}
	}
	if updatedAt, ok := props["updatedAt"].(string); ok {
		if t, err := helper_util.ParseTime(updatedAt); err == nil {
			assignment.UpdatedAt = t
		}
	}
	if dueDate, err := helper_util.ParseNullableTime(props["due_date"]); err == nil {
		assignment.DueDate = dueDate
	}
	if completedAt, err := helper_util.ParseNullableTime(props["completed_at"]); err == nil {
		assignment.CompletedAt = completedAt
	}

	return assignment
}
