package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/go-redis/redis/v8"
)

const (
	productListKey  = "products:all"
	defaultCacheTTL = 5 * time.Minute
)

// RedisRepository is a read cache in front of the catalog. Every product
// mutation, including checkout decrements, invalidates it; a stale entry
// only ever survives until its TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		ttl: ttl,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetProductList(ctx context.Context, products []models.Product) error {
	return r.SetJSON(ctx, productListKey, products, r.ttl)
}

func (r *RedisRepository) GetProductList(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.GetJSON(ctx, productListKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisRepository) InvalidateProductList(ctx context.Context) error {
	return r.Del(ctx, productListKey)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
