// dao/grant_dao.go
package dao

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	ew_graph "github.com/skarin/equipwatch/model/graph"
	helper_util "github.com/skarin/equipwatch/util/helper"
)

// GrantDAO owns grant mutations. Grants are never deleted: revocation
// flips is_active, and a re-grant updates the existing record in place,
// so the (principal, scope_level, scope_id) key stays unique.
type GrantDAO struct {
	Driver neo4j.Driver
}

func NewGrantDAO(driver neo4j.Driver) *GrantDAO {
	dao := &GrantDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for AccessGrant", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint backs the idempotent upsert: concurrent grant
// writers for the same (principal, scope) serialize on this node key.
func (dao *GrantDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on AccessGrant scope key")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_grant_scope IF NOT EXISTS
        FOR (g:` + ew_graph.LabelAccessGrant + `)
        REQUIRE (g.principal_id, g.scope_level, g.scope_id) IS NODE KEY
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on AccessGrant", zap.Error(err))
		return err
	}

	return nil
}

// UpsertGrant creates or refreshes the single grant row for the given
// (principal, scope_level, scope_id). A second grant call updates
// access_type, granted_by, granted_at and expires_at on the existing
// record and reactivates it.
func (dao *GrantDAO) UpsertGrant(ctx context.Context, grant model.AccessGrant) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	label, err := LabelForScope(grant.ScopeLevel)
	if err != nil {
		return err
	}

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + ew_graph.LabelUser + ` {id: $principalID})
        MATCH (n:` + label + ` {id: $scopeID})
        MERGE (u)-[:` + ew_graph.RelHasGrant + `]->(g:` + ew_graph.LabelAccessGrant + ` {
            principal_id: $principalID,
            scope_level: $scopeLevel,
            scope_id: $scopeID
        })
        ON CREATE SET
            g.access_type = $accessType,
            g.granted_by = $grantedBy,
            g.granted_at = $grantedAt,
            g.expires_at = $expiresAt,
            g.is_active = true
        ON MATCH SET
            g.access_type = $accessType,
            g.granted_by = $grantedBy,
            g.granted_at = $grantedAt,
            g.expires_at = $expiresAt,
            g.is_active = true
        MERGE (g)-[:` + ew_graph.RelScopedTo + `]->(n)
        RETURN g.principal_id
        `

		var expiresAt interface{}
		if grant.ExpiresAt != nil {
			expiresAt = grant.ExpiresAt.Format(time.RFC3339)
		}

		params := map[string]interface{}{
			"principalID": grant.PrincipalID,
			"scopeLevel":  string(grant.ScopeLevel),
			"scopeID":     grant.ScopeID,
			"accessType":  string(grant.AccessType),
			"grantedBy":   grant.GrantedBy,
			"grantedAt":   grant.GrantedAt.Format(time.RFC3339),
			"expiresAt":   expiresAt,
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, ew_errors.ErrDatabaseOperation
		}

		if !result.Next() {
			// Either the principal or the scope node does not exist.
			return nil, ew_errors.ErrGrantNotFound
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to upsert access grant",
			zap.Error(err),
			zap.String("principalID", grant.PrincipalID),
			zap.String("scopeLevel", string(grant.ScopeLevel)),
			zap.String("scopeID", grant.ScopeID),
			zap.Duration("duration", duration))
		return err
	}

	logger.Info("Access grant upserted",
		zap.String("principalID", grant.PrincipalID),
		zap.String("scopeLevel", string(grant.ScopeLevel)),
		zap.String("scopeID", grant.ScopeID),
		zap.String("accessType", string(grant.AccessType)),
		zap.Duration("duration", duration))
	return nil
}

// RevokeGrant deactivates the active grant for (principal, scope). The
// record is kept for audit; only is_active changes.
func (dao *GrantDAO) RevokeGrant(ctx context.Context, principalID string, level model.ScopeLevel, scopeID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:` + ew_graph.LabelAccessGrant + ` {
            principal_id: $principalID,
            scope_level: $scopeLevel,
            scope_id: $scopeID
        })
        WHERE g.is_active = true
        SET g.is_active = false
        RETURN g.principal_id
        `

		params := map[string]interface{}{
			"principalID": principalID,
			"scopeLevel":  string(level),
			"scopeID":     scopeID,
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, ew_errors.ErrDatabaseOperation
		}

		if !result.Next() {
			return nil, ew_errors.ErrGrantNotFound
		}
		return nil, nil
	})

	if err != nil {
		logger.Error("Failed to revoke access grant",
			zap.Error(err),
			zap.String("principalID", principalID),
			zap.String("scopeID", scopeID))
		return err
	}

	logger.Info("Access grant revoked",
		zap.String("principalID", principalID),
		zap.String("scopeLevel", string(level)),
		zap.String("scopeID", scopeID))
	return nil
}

// EffectiveGrantsOnNode returns the effective grants scoped to exactly
// one hierarchy node, one per engineer. Grants on ancestor or
// descendant nodes are not expanded here.
func (dao *GrantDAO) EffectiveGrantsOnNode(ctx context.Context, level model.ScopeLevel, scopeID string) ([]model.AccessGrant, error) {
	if !model.ValidScopeLevel(level) {
		return nil, ew_errors.ErrInvalidScope
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := dao.runGrantQuery(session, `
        MATCH (g:`+ew_graph.LabelAccessGrant+` {scope_level: $scopeLevel, scope_id: $scopeID})
        WHERE g.is_active = true
          AND (g.expires_at IS NULL OR g.expires_at > $now)
        RETURN g
        ORDER BY g.principal_id
        `, map[string]interface{}{
		"scopeLevel": string(level),
		"scopeID":    scopeID,
		"now":        time.Now().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("Failed to list grants on node",
			zap.Error(err),
			zap.String("scopeLevel", string(level)),
			zap.String("scopeID", scopeID))
		return nil, err
	}

	return result, nil
}

// GrantHistory returns every grant record for a principal, active or
// not, newest first.
func (dao *GrantDAO) GrantHistory(ctx context.Context, principalID string) ([]model.AccessGrant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	return dao.runGrantQuery(session, `
        MATCH (g:`+ew_graph.LabelAccessGrant+` {principal_id: $principalID})
        RETURN g
        ORDER BY g.granted_at DESC
        `, map[string]interface{}{
		"principalID": principalID,
	})
}

func (dao *GrantDAO) runGrantQuery(session neo4j.Session, query string, params map[string]interface{}) ([]model.AccessGrant, error) {
	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
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
			grant, err := MapNodeToGrant(node.Props)
			if err != nil {
				return nil, err
			}
			grants = append(grants, grant)
		}
		return grants, nil
	})
	if err != nil {
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.([]model.AccessGrant), nil
}

// MapNodeToGrant converts AccessGrant node properties to the model struct.
func MapNodeToGrant(props map[string]interface{}) (model.AccessGrant, error) {
	grant := model.AccessGrant{}

	if id, ok := props["principal_id"].(string); ok {
		grant.PrincipalID = id
	} else {
		return grant, ew_errors.ErrInvalidGrantData
	}
	if level, ok := props["scope_level"].(string); ok {
		grant.ScopeLevel = model.ScopeLevel(level)
	}
	if scopeID, ok := props["scope_id"].(string); ok {
		grant.ScopeID = scopeID
	}
	if accessType, ok := props["access_type"].(string); ok {
		grant.AccessType = model.AccessType(accessType)
	}
	if grantedBy, ok := props["granted_by"].(string); ok {
		grant.GrantedBy = grantedBy
	}
	if grantedAt, ok := props["granted_at"].(string); ok {
		t, err := helper_util.ParseTime(grantedAt)
		if err == nil {
			grant.GrantedAt = t
		}
	}
	expiresAt, err := helper_util.ParseNullableTime(props["expires_at"])
	if err == nil {
		grant.ExpiresAt = expiresAt
	}
	if isActive, ok := props["is_active"].(bool); ok {
		grant.IsActive = isActive
	}

	return grant, nil
}
