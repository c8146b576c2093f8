package dao

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	equip_dao "github.com/skarin/equipwatch/dao"
	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	ew_graph "github.com/skarin/equipwatch/model/graph"
)

// GrantRetrievalDAO is the read-side companion of the grant store: one
// query fetches everything the resolver needs for a principal.
type GrantRetrievalDAO struct {
	Driver neo4j.Driver
}

func NewGrantRetrievalDAO(driver neo4j.Driver) *GrantRetrievalDAO {
	return &GrantRetrievalDAO{Driver: driver}
}

// EffectiveGrants returns the principal's grants that are active and
// unexpired at call time, across all five scope levels.
func (dao *GrantRetrievalDAO) EffectiveGrants(ctx context.Context, principalID string) ([]model.AccessGrant, error) {
	start := time.Now()

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + ew_graph.LabelUser + ` {id: $principalID})-[:` + ew_graph.RelHasGrant + `]->(g:` + ew_graph.LabelAccessGrant + `)
        WHERE g.is_active = true
          AND (g.expires_at IS NULL OR g.expires_at > $now)
        RETURN g
        ORDER BY g.scope_level, g.scope_id
        `

		params := map[string]interface{}{
			"principalID": principalID,
			"now":         time.Now().Format(time.RFC3339),
		}

		res, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var grants []model.AccessGrant
		for res.Next() {
			node, ok := res.Record().Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			grant, err := equip_dao.MapNodeToGrant(node.Props)
			if err != nil {
				return nil, err
			}
			grants = append(grants, grant)
		}
		return grants, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to retrieve effective grants",
			zap.Error(err),
			zap.String("principalID", principalID),
			zap.Duration("duration", duration))
		return nil, ew_errors.ErrDatabaseOperation
	}

	grants := result.([]model.AccessGrant)
	logger.Debug("Retrieved effective grants",
		zap.String("principalID", principalID),
		zap.Int("grantCount", len(grants)),
		zap.Duration("duration", duration))

	return grants, nil
}
