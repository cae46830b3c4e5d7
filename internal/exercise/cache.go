package exercise

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 10 * time.Minute
	detailKeyPrefix = "exercise:detail:"
	flushBatchSize  = 100
)

// Cache keeps exercise details in Redis so repeated detail and validation
// lookups skip Postgres.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ DetailCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func detailKey(code string) string {
	return detailKeyPrefix + code
}

func (c *Cache) Get(ctx context.Context, code string) (*Exercise, error) {
	data, err := c.client.Get(ctx, detailKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var ex Exercise
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

func (c *Cache) Set(ctx context.Context, ex Exercise) error {
	data, err := json.Marshal(ex)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, detailKey(ex.Code), data, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = detailKey(code)
	}
	return c.client.Del(ctx, keys...).Err()
}

// Flush removes every cached detail entry.
func (c *Cache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, detailKeyPrefix+"*", flushBatchSize).Iterator()
	batch := make([]string, 0, flushBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.client.Del(ctx, batch...).Err()
	}
	return nil
}
