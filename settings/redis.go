package settings

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/redis/go-redis/v9"
)

// RedisHash is the part of the Redis client the store uses
type RedisHash interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisStore keeps settings in a single Redis hash
type RedisStore struct {
	client RedisHash
	key    string
}

func NewRedisStore(client RedisHash) *RedisStore {
	return &RedisStore{client: client, key: "pagegen:settings"}
}

func (r *RedisStore) Load(ctx context.Context) (models.Settings, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings from redis: %w", err)
	}
	return models.Settings{
		ShopURL:  values[models.KeyShopURL],
		APIToken: values[models.KeyAPIToken],
	}, nil
}

func (r *RedisStore) Save(ctx context.Context, s models.Settings) error {
	err := r.client.HSet(ctx, r.key,
		models.KeyShopURL, s.ShopURL,
		models.KeyAPIToken, s.APIToken,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to write settings to redis: %w", err)
	}
	return nil
}
