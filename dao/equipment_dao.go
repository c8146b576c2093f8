// dao/equipment_dao.go
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
)

type EquipmentDAO struct {
	Driver neo4j.Driver
}

func NewEquipmentDAO(driver neo4j.Driver) *EquipmentDAO {
	dao := &EquipmentDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Equipment", zap.Error(err))
	}
	return dao
}

func (dao *EquipmentDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_equipment_id IF NOT EXISTS
        FOR (e:` + ew_graph.LabelEquipment + `) REQUIRE e.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Equipment ID", zap.Error(err))
		return err
	}

	return nil
}

// CreateEquipment creates the equipment node and, when parents are
// known, its workshop and type edges.
func (dao *EquipmentDAO) CreateEquipment(ctx context.Context, equipment model.Equipment) (string, error) {
	start := time.Now()
	logger.Info("Creating new equipment", zap.String("equipmentName", equipment.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if equipment.ID == "" {
		equipment.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (e:` + ew_graph.LabelEquipment + ` {id: $id})
        ON CREATE SET e += $props
        `
		if equipment.WorkshopID != "" {
			query += `
        WITH e
        MATCH (w:` + ew_graph.LabelWorkshop + ` {id: $workshopID})
        MERGE (e)-[:` + ew_graph.RelLocatedIn + `]->(w)
        `
		}
		if equipment.TypeID != "" {
			query += `
        WITH e
        MATCH (t:` + ew_graph.LabelEquipmentType + ` {id: $typeID})
        MERGE (e)-[:` + ew_graph.RelOfType + `]->(t)
        `
		}
		query += `
        RETURN e.id as id
        `

		params := map[string]interface{}{
			"id":         equipment.ID,
			"workshopID": equipment.WorkshopID,
			"typeID":     equipment.TypeID,
			"props": map[string]interface{}{
				"name":          equipment.Name,
				"serial_number": equipment.SerialNumber,
				"createdAt":     time.Now().Format(time.RFC3339),
				"updatedAt":     time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, ew_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, ew_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create equipment",
			zap.Error(err),
			zap.String("equipmentName", equipment.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	equipmentID := result.(string)
	logger.Info("Equipment created successfully",
		zap.String("equipmentID", equipmentID),
		zap.Duration("duration", duration))

	return equipmentID, nil
}

func (dao *EquipmentDAO) GetEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (e:` + ew_graph.LabelEquipment + ` {id: $id})
        OPTIONAL MATCH (e)-[:` + ew_graph.RelLocatedIn + `]->(w:` + ew_graph.LabelWorkshop + `)
        OPTIONAL MATCH (e)-[:` + ew_graph.RelOfType + `]->(t:` + ew_graph.LabelEquipmentType + `)
        RETURN e, w.id, t.id
        `
		res, err := tx.Run(query, map[string]interface{}{"id": equipmentID})
		if err != nil {
			return nil, err
		}

		if !res.Next() {
			return nil, ew_errors.ErrEquipmentNotFound
		}

		record := res.Record()
		node, ok := record.Values[0].(neo4j.Node)
		if !ok {
			return nil, ew_errors.ErrInternalServer
		}

		equipment := mapNodeToEquipment(node.Props)
		if workshopID, ok := record.Values[1].(string); ok {
			equipment.WorkshopID = workshopID
		}
		if typeID, ok := record.Values[2].(string); ok {
			equipment.TypeID = typeID
		}
		return equipment, nil
	})

	if err != nil {
		if err == ew_errors.ErrEquipmentNotFound {
			return nil, err
		}
		logger.Error("Failed to get equipment", zap.Error(err), zap.String("equipmentID", equipmentID))
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.(*model.Equipment), nil
}

// SearchEquipment resolves a structural filter to concrete equipment.
// The location filter matches branch and enterprise location text, the
// enterprise filter pins the ancestor enterprise. Feeds bulk granting.
func (dao *EquipmentDAO) SearchEquipment(ctx context.Context, criteria model.EquipmentSearchCriteria) ([]*model.Equipment, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (e:` + ew_graph.LabelEquipment + `)
        OPTIONAL MATCH (e)-[:` + ew_graph.RelLocatedIn + `]->(w:` + ew_graph.LabelWorkshop + `)
        OPTIONAL MATCH (w)-[:` + ew_graph.RelPartOf + `]->(b:` + ew_graph.LabelBranch + `)
        OPTIONAL MATCH (b)-[:` + ew_graph.RelPartOf + `]->(ent:` + ew_graph.LabelEnterprise + `)
        WITH e, w, b, ent
        WHERE ($name = '' OR toLower(e.name) CONTAINS toLower($name))
          AND ($workshopID = '' OR w.id = $workshopID)
          AND ($enterpriseID = '' OR ent.id = $enterpriseID)
          AND ($location = '' OR toLower(coalesce(b.location, '')) CONTAINS toLower($location)
               OR toLower(coalesce(ent.location, '')) CONTAINS toLower($location))
        RETURN e
        ORDER BY e.name
        SKIP $offset
        `
		params := map[string]interface{}{
			"name":         criteria.Name,
			"workshopID":   criteria.WorkshopID,
			"enterpriseID": criteria.EnterpriseID,
			"location":     criteria.LocationContains,
			"offset":       criteria.Offset,
		}
		if criteria.Limit > 0 {
			query += ` LIMIT $limit`
			params["limit"] = criteria.Limit
		}

		res, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var items []*model.Equipment
		for res.Next() {
			node, ok := res.Record().Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			items = append(items, mapNodeToEquipment(node.Props))
		}
		return items, nil
	})

	if err != nil {
		logger.Error("Failed to search equipment", zap.Error(err))
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.([]*model.Equipment), nil
}

func mapNodeToEquipment(props map[string]interface{}) *model.Equipment {
	equipment := &model.Equipment{}
	if id, ok := props["id"].(string); ok {
		equipment.ID = id
	}
	if name, ok := props["name"].(string); ok {
		equipment.Name = name
	}
	if serial, ok := props["serial_number"].(string); ok {
		equipment.SerialNumber = serial
	}
	return equipment
}
