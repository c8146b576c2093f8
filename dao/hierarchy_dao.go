// dao/hierarchy_dao.go
package dao

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	ew_graph "github.com/skarin/equipwatch/model/graph"
)

// HierarchyDAO serves point lookups by ID and set lookups by parent
// foreign key over the location DAG. The hierarchy depth is fixed at
// three location levels plus one classification level, so every caller
// issues a bounded number of these lookups.
type HierarchyDAO struct {
	Driver neo4j.Driver
}

func NewHierarchyDAO(driver neo4j.Driver) *HierarchyDAO {
	return &HierarchyDAO{Driver: driver}
}

// LabelForScope maps a grant scope level to its graph label.
func LabelForScope(level model.ScopeLevel) (string, error) {
	switch level {
	case model.ScopeEnterprise:
		return ew_graph.LabelEnterprise, nil
	case model.ScopeBranch:
		return ew_graph.LabelBranch, nil
	case model.ScopeWorkshop:
		return ew_graph.LabelWorkshop, nil
	case model.ScopeEquipmentType:
		return ew_graph.LabelEquipmentType, nil
	case model.ScopeEquipment:
		return ew_graph.LabelEquipment, nil
	default:
		return "", ew_errors.ErrInvalidScope
	}
}

// hierarchyView runs set lookups against one open read transaction, so
// a multi-step expansion observes a single consistent snapshot.
type hierarchyView struct {
	tx neo4j.Transaction
}

func (v *hierarchyView) EquipmentUniverse() ([]string, error) {
	query := `MATCH (e:` + ew_graph.LabelEquipment + `) RETURN e.id`
	return v.collectIDs(query, nil)
}

func (v *hierarchyView) EquipmentExists(equipmentID string) (bool, error) {
	query := `MATCH (e:` + ew_graph.LabelEquipment + ` {id: $id}) RETURN e.id LIMIT 1`
	ids, err := v.collectIDs(query, map[string]interface{}{"id": equipmentID})
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (v *hierarchyView) EquipmentByWorkshops(workshopIDs []string) ([]string, error) {
	query := `
    MATCH (e:` + ew_graph.LabelEquipment + `)-[:` + ew_graph.RelLocatedIn + `]->(w:` + ew_graph.LabelWorkshop + `)
    WHERE w.id IN $ids
    RETURN e.id`
	return v.collectIDs(query, map[string]interface{}{"ids": workshopIDs})
}

func (v *hierarchyView) WorkshopsByBranches(branchIDs []string) ([]string, error) {
	query := `
    MATCH (w:` + ew_graph.LabelWorkshop + `)-[:` + ew_graph.RelPartOf + `]->(b:` + ew_graph.LabelBranch + `)
    WHERE b.id IN $ids
    RETURN w.id`
	return v.collectIDs(query, map[string]interface{}{"ids": branchIDs})
}

func (v *hierarchyView) BranchesByEnterprise(enterpriseID string) ([]string, error) {
	query := `
    MATCH (b:` + ew_graph.LabelBranch + `)-[:` + ew_graph.RelPartOf + `]->(ent:` + ew_graph.LabelEnterprise + ` {id: $id})
    RETURN b.id`
	return v.collectIDs(query, map[string]interface{}{"id": enterpriseID})
}

func (v *hierarchyView) EquipmentByType(typeID string) ([]string, error) {
	query := `
    MATCH (e:` + ew_graph.LabelEquipment + `)-[:` + ew_graph.RelOfType + `]->(t:` + ew_graph.LabelEquipmentType + ` {id: $id})
    RETURN e.id`
	return v.collectIDs(query, map[string]interface{}{"id": typeID})
}

// EquipmentLocation walks the ancestor chain of one equipment item in a
// single query. Missing segments come back empty rather than failing:
// equipment without a workshop is normal, not exceptional.
func (v *hierarchyView) EquipmentLocation(equipmentID string) (*model.EquipmentLocation, error) {
	query := `
    MATCH (e:` + ew_graph.LabelEquipment + ` {id: $id})
    OPTIONAL MATCH (e)-[:` + ew_graph.RelLocatedIn + `]->(w:` + ew_graph.LabelWorkshop + `)
    OPTIONAL MATCH (w)-[:` + ew_graph.RelPartOf + `]->(b:` + ew_graph.LabelBranch + `)
    OPTIONAL MATCH (b)-[:` + ew_graph.RelPartOf + `]->(ent:` + ew_graph.LabelEnterprise + `)
    OPTIONAL MATCH (e)-[:` + ew_graph.RelOfType + `]->(t:` + ew_graph.LabelEquipmentType + `)
    RETURN e.id, w.id, b.id, ent.id, t.id`

	result, err := v.tx.Run(query, map[string]interface{}{"id": equipmentID})
	if err != nil {
		return nil, ew_errors.ErrDatabaseOperation
	}

	if !result.Next() {
		return nil, ew_errors.ErrEquipmentNotFound
	}

	record := result.Record()
	loc := &model.EquipmentLocation{EquipmentID: equipmentID}
	if id, ok := record.Values[1].(string); ok {
		loc.WorkshopID = id
	}
	if id, ok := record.Values[2].(string); ok {
		loc.BranchID = id
	}
	if id, ok := record.Values[3].(string); ok {
		loc.EnterpriseID = id
	}
	if id, ok := record.Values[4].(string); ok {
		loc.TypeID = id
	}
	return loc, nil
}

// WorkshopAncestors resolves the branch and enterprise a workshop sits
// under. Detached workshops come back with empty segments.
func (v *hierarchyView) WorkshopAncestors(workshopID string) (string, string, error) {
	query := `
    MATCH (w:` + ew_graph.LabelWorkshop + ` {id: $id})
    OPTIONAL MATCH (w)-[:` + ew_graph.RelPartOf + `]->(b:` + ew_graph.LabelBranch + `)
    OPTIONAL MATCH (b)-[:` + ew_graph.RelPartOf + `]->(ent:` + ew_graph.LabelEnterprise + `)
    RETURN b.id, ent.id`

	result, err := v.tx.Run(query, map[string]interface{}{"id": workshopID})
	if err != nil {
		return "", "", ew_errors.ErrDatabaseOperation
	}
	if !result.Next() {
		return "", "", ew_errors.ErrWorkshopNotFound
	}

	record := result.Record()
	var branchID, enterpriseID string
	if id, ok := record.Values[0].(string); ok {
		branchID = id
	}
	if id, ok := record.Values[1].(string); ok {
		enterpriseID = id
	}
	return branchID, enterpriseID, nil
}

func (v *hierarchyView) collectIDs(query string, params map[string]interface{}) ([]string, error) {
	result, err := v.tx.Run(query, params)
	if err != nil {
		logger.Error("Hierarchy lookup failed", zap.Error(err))
		return nil, ew_errors.ErrDatabaseOperation
	}

	var ids []string
	for result.Next() {
		if id, ok := result.Record().Values[0].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// View runs fn against a single read transaction. All expansion steps
// inside fn see the same snapshot of the hierarchy.
func (dao *HierarchyDAO) View(ctx context.Context, fn func(v HierarchyView) error) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	_, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		return nil, fn(&hierarchyView{tx: tx})
	})
	return err
}

// HierarchyView is the transaction-scoped lookup surface consumed by the
// access resolver's expansion logic.
type HierarchyView interface {
	EquipmentUniverse() ([]string, error)
	EquipmentExists(equipmentID string) (bool, error)
	EquipmentByWorkshops(workshopIDs []string) ([]string, error)
	WorkshopsByBranches(branchIDs []string) ([]string, error)
	BranchesByEnterprise(enterpriseID string) ([]string, error)
	EquipmentByType(typeID string) ([]string, error)
	EquipmentLocation(equipmentID string) (*model.EquipmentLocation, error)
	WorkshopAncestors(workshopID string) (branchID, enterpriseID string, err error)
}

// NodeExists checks whether a hierarchy node of the given scope level
// exists, used to validate grant targets.
func (dao *HierarchyDAO) NodeExists(ctx context.Context, level model.ScopeLevel, nodeID string) (bool, error) {
	label, err := LabelForScope(level)
	if err != nil {
		return false, err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `MATCH (n:` + label + ` {id: $id}) RETURN n.id LIMIT 1`
		res, err := tx.Run(query, map[string]interface{}{"id": nodeID})
		if err != nil {
			return false, err
		}
		return res.Next(), nil
	})
	if err != nil {
		return false, ew_errors.ErrDatabaseOperation
	}

	return result.(bool), nil
}

// NodeName returns the display name of a hierarchy node.
func (dao *HierarchyDAO) NodeName(ctx context.Context, level model.ScopeLevel, nodeID string) (string, error) {
	label, err := LabelForScope(level)
	if err != nil {
		return "", err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `MATCH (n:` + label + ` {id: $id}) RETURN n.name`
		res, err := tx.Run(query, map[string]interface{}{"id": nodeID})
		if err != nil {
			return nil, err
		}
		if !res.Next() {
			return nil, fmt.Errorf("node %s/%s not found", level, nodeID)
		}
		name, _ := res.Record().Values[0].(string)
		return name, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}
