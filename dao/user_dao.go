// dao/user_dao.go
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

type UserDAO struct {
	Driver neo4j.Driver
}

func NewUserDAO(driver neo4j.Driver) *UserDAO {
	dao := &UserDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_user_id IF NOT EXISTS
        FOR (u:` + ew_graph.LabelUser + `) REQUIRE u.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	return err
}

func (dao *UserDAO) CreateUser(ctx context.Context, user model.User) (string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (u:` + ew_graph.LabelUser + ` {id: $id})
        ON CREATE SET u += $props
        RETURN u.id as id
        `

		params := map[string]interface{}{
			"id": user.ID,
			"props": map[string]interface{}{
				"name":         user.Name,
				"username":     user.Username,
				"email":        user.Email,
				"role":         string(user.Role),
				"engineer_ref": user.EngineerRef,
				"createdAt":    time.Now().Format(time.RFC3339),
				"updatedAt":    time.Now().Format(time.RFC3339),
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

	if err != nil {
		logger.Error("Failed to create user", zap.Error(err), zap.String("username", user.Username))
		return "", err
	}

	userID := result.(string)
	logger.Info("User created successfully", zap.String("userID", userID))
	return userID, nil
}

func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + ew_graph.LabelUser + ` {id: $id})
        RETURN u
        `
		res, err := tx.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, err
		}

		if !res.Next() {
			return nil, ew_errors.ErrUserNotFound
		}

		node, ok := res.Record().Values[0].(neo4j.Node)
		if !ok {
			return nil, ew_errors.ErrInternalServer
		}
		return mapNodeToUser(node.Props), nil
	})

	if err != nil {
		if err == ew_errors.ErrUserNotFound {
			return nil, err
		}
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.(*model.User), nil
}

// DisplayNames resolves user IDs to display names in one query. Unknown
// IDs are simply absent from the result map.
func (dao *UserDAO) DisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + ew_graph.LabelUser + `)
        WHERE u.id IN $ids
        RETURN u.id, u.name
        `
		res, err := tx.Run(query, map[string]interface{}{"ids": userIDs})
		if err != nil {
			return nil, err
		}

		names := make(map[string]string)
		for res.Next() {
			record := res.Record()
			id, okID := record.Values[0].(string)
			name, okName := record.Values[1].(string)
			if okID && okName {
				names[id] = name
			}
		}
		return names, nil
	})

	if err != nil {
		logger.Error("Failed to resolve display names", zap.Error(err))
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.(map[string]string), nil
}

// SearchUsers filters the user directory. Used mostly with a role
// filter to list engineers eligible for grants and assignments.
func (dao *UserDAO) SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `MATCH (u:` + ew_graph.LabelUser + `) WHERE 1=1`
		params := map[string]interface{}{}

		if criteria.Role != "" {
			query += ` AND u.role = $role`
			params["role"] = string(criteria.Role)
		}
		if criteria.Name != "" {
			query += ` AND toLower(u.name) CONTAINS toLower($name)`
			params["name"] = criteria.Name
		}
		if criteria.Username != "" {
			query += ` AND u.username = $username`
			params["username"] = criteria.Username
		}

		query += ` RETURN u ORDER BY u.name, u.id`
		if criteria.Offset > 0 {
			query += ` SKIP $offset`
			params["offset"] = criteria.Offset
		}
		if criteria.Limit > 0 {
			query += ` LIMIT $limit`
			params["limit"] = criteria.Limit
		}

		res, err := tx.Run(query, params)
		if err != nil {
			return nil, err
		}

		var users []*model.User
		for res.Next() {
			node, ok := res.Record().Values[0].(neo4j.Node)
			if !ok {
				continue
			}
			users = append(users, mapNodeToUser(node.Props))
		}
		return users, nil
	})

	if err != nil {
		logger.Error("Failed to search users", zap.Error(err))
		return nil, ew_errors.ErrDatabaseOperation
	}

	return result.([]*model.User), nil
}

func mapNodeToUser(props map[string]interface{}) *model.User {
	user := &model.User{}

	if id, ok := props["id"].(string); ok {
		user.ID = id
	}
	if name, ok := props["name"].(string); ok {
		user.Name = name
	}
	if username, ok := props["username"].(string); ok {
		user.Username = username
	}
	if email, ok := props["email"].(string); ok {
		user.Email = email
	}
	if role, ok := props["role"].(string); ok {
		user.Role = model.Role(role)
	}
	if engineerRef, ok := props["engineer_ref"].(string); ok {
		user.EngineerRef = engineerRef
	}

	return user
}
