// db/redis.go
package db

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
)

var (
	RedisClient   *redis.Client
	encryptionKey []byte
)

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	encryptionKey = []byte(viper.GetString("redis.encryptionKey"))
	if len(encryptionKey) != 32 {
		return fmt.Errorf("invalid encryption key length: must be 32 bytes")
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

func encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// CacheAccessibleSet stores an engineer's resolved equipment-ID set.
// Grant material is encrypted at rest in Redis.
func CacheAccessibleSet(ctx context.Context, principalID string, equipmentIDs []string) error {
	setJSON, err := json.Marshal(equipmentIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal accessible set: %w", err)
	}

	encryptedSet, err := encrypt(setJSON)
	if err != nil {
		return fmt.Errorf("failed to encrypt accessible set: %w", err)
	}

	key := fmt.Sprintf("accessible:%s", principalID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, base64.StdEncoding.EncodeToString(encryptedSet), defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache accessible set: %w", err)
	}

	logger.Debug("Accessible set cached successfully", zap.String("principalID", principalID))
	return nil
}

// GetCachedAccessibleSet returns the cached set for a principal, or
// (nil, nil) on a cache miss.
func GetCachedAccessibleSet(ctx context.Context, principalID string) ([]string, error) {
	key := fmt.Sprintf("accessible:%s", principalID)
	encryptedSetStr, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Accessible set not found in cache", zap.String("principalID", principalID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get accessible set from cache: %w", err)
	}

	encryptedSet, err := base64.StdEncoding.DecodeString(encryptedSetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode accessible set: %w", err)
	}

	setJSON, err := decrypt(encryptedSet)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt accessible set: %w", err)
	}

	var equipmentIDs []string
	err = json.Unmarshal(setJSON, &equipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal accessible set: %w", err)
	}

	return equipmentIDs, nil
}

func DeleteCachedAccessibleSet(ctx context.Context, principalID string) error {
	key := fmt.Sprintf("accessible:%s", principalID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete accessible set from cache: %w", err)
	}
	logger.Debug("Accessible set deleted from cache", zap.String("principalID", principalID))
	return nil
}

func CacheUser(ctx context.Context, user *model.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	key := fmt.Sprintf("user:%s", user.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, userJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	logger.Debug("User cached successfully", zap.String("userID", user.ID))
	return nil
}

func DeleteCachedUser(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:%s", userID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}
	logger.Debug("User deleted from cache", zap.String("userID", userID))
	return nil
}

func GetCachedUser(ctx context.Context, userID string) (*model.User, error) {
	key := fmt.Sprintf("user:%s", userID)
	userJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("User not found in cache", zap.String("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var user model.User
	err = json.Unmarshal([]byte(userJSON), &user)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

func CacheEquipment(ctx context.Context, equipment *model.Equipment) error {
	equipmentJSON, err := json.Marshal(equipment)
	if err != nil {
		return fmt.Errorf("failed to marshal equipment: %w", err)
	}

	key := fmt.Sprintf("equipment:%s", equipment.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, equipmentJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache equipment: %w", err)
	}

	logger.Debug("Equipment cached successfully", zap.String("equipmentID", equipment.ID))
	return nil
}

func DeleteCachedEquipment(ctx context.Context, equipmentID string) error {
	key := fmt.Sprintf("equipment:%s", equipmentID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete equipment from cache: %w", err)
	}
	logger.Debug("Equipment deleted from cache", zap.String("equipmentID", equipmentID))
	return nil
}

func GetCachedEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error) {
	key := fmt.Sprintf("equipment:%s", equipmentID)
	equipmentJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Equipment not found in cache", zap.String("equipmentID", equipmentID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get equipment from cache: %w", err)
	}

	var equipment model.Equipment
	err = json.Unmarshal([]byte(equipmentJSON), &equipment)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal equipment: %w", err)
	}

	return &equipment, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}

func LockResource(ctx context.Context, resourceName string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", resourceName)
	locked, err := RedisClient.SetNX(ctx, key, "locked", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	logger.Debug("Lock acquisition attempt",
		zap.String("resource", resourceName),
		zap.Bool("locked", locked))
	return locked, nil
}

func UnlockResource(ctx context.Context, resourceName string) error {
	key := fmt.Sprintf("lock:%s", resourceName)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	logger.Debug("Lock released", zap.String("resource", resourceName))
	return nil
}
