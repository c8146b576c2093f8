// util/cache_service.go

package util

import (
	"context"

	"github.com/skarin/equipwatch/db"
	"github.com/skarin/equipwatch/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetAccessibleSet(ctx context.Context, principalID string) ([]string, error) {
	return db.GetCachedAccessibleSet(ctx, principalID)
}

func (c *CacheService) SetAccessibleSet(ctx context.Context, principalID string, equipmentIDs []string) error {
	return db.CacheAccessibleSet(ctx, principalID, equipmentIDs)
}

func (c *CacheService) DeleteAccessibleSet(ctx context.Context, principalID string) error {
	return db.DeleteCachedAccessibleSet(ctx, principalID)
}

func (c *CacheService) SetUser(ctx context.Context, user model.User) error {
	return db.CacheUser(ctx, &user)
}

func (c *CacheService) DeleteUser(ctx context.Context, userID string) error {
	return db.DeleteCachedUser(ctx, userID)
}

func (c *CacheService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return db.GetCachedUser(ctx, userID)
}

func (c *CacheService) SetEquipment(ctx context.Context, equipment model.Equipment) error {
	return db.CacheEquipment(ctx, &equipment)
}

func (c *CacheService) DeleteEquipment(ctx context.Context, equipmentID string) error {
	return db.DeleteCachedEquipment(ctx, equipmentID)
}

func (c *CacheService) GetEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error) {
	return db.GetCachedEquipment(ctx, equipmentID)
}
