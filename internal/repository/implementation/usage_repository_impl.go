package implementation

import (
	"context"
	"errors"
	"fmt"

	"ai-chatbot/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const usageKeyPrefix = "chatbot:usage:"

type usageRepository struct {
	rdb *redis.Client
}

// NewUsageRepository shares counters across relay instances through Redis.
func NewUsageRepository(rdb *redis.Client) contract.UsageRepository {
	return &usageRepository{rdb: rdb}
}

func (r *usageRepository) Increment(ctx context.Context, counter string, delta int64) error {
	if err := r.rdb.IncrBy(ctx, usageKeyPrefix+counter, delta).Err(); err != nil {
		return fmt.Errorf("redis incrby %s: %w", counter, err)
	}
	return nil
}

func (r *usageRepository) Get(ctx context.Context, counter string) (int64, error) {
	value, err := r.rdb.Get(ctx, usageKeyPrefix+counter).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", counter, err)
	}
	return value, nil
}
