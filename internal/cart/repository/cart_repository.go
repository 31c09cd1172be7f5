package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 30 * 24 * time.Hour

// RedisCartRepository keeps one hash per user: field product id, value quantity.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func cartKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}

func (r *RedisCartRepository) Items(ctx context.Context, userID int64) (map[int64]int, error) {
	raw, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	items := make(map[int64]int, len(raw))
	for field, value := range raw {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty <= 0 {
			continue
		}
		items[productID] = qty
	}
	return items, nil
}

func (r *RedisCartRepository) Set(ctx context.Context, userID, productID int64, quantity int) error {
	key := cartKey(userID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(productID, 10), quantity)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Remove(ctx context.Context, userID int64, productIDs ...int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		fields = append(fields, strconv.FormatInt(id, 10))
	}
	if err := r.client.HDel(ctx, cartKey(userID), fields...).Err(); err != nil {
		return fmt.Errorf("removing cart items: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
