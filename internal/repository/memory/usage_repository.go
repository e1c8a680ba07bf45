package memory

import (
	"context"
	"fmt"

	"ai-chatbot/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type UsageRepository struct {
	cache *cache.Cache
}

var _ contract.UsageRepository = &UsageRepository{}

// NewUsageRepository keeps counters for the life of the process; nothing expires.
func NewUsageRepository() *UsageRepository {
	return &UsageRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *UsageRepository) Increment(_ context.Context, counter string, delta int64) error {
	// Add is a no-op once the counter exists.
	_ = r.cache.Add(counter, int64(0), cache.NoExpiration)
	if _, err := r.cache.IncrementInt64(counter, delta); err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}
	return nil
}

func (r *UsageRepository) Get(_ context.Context, counter string) (int64, error) {
	if x, found := r.cache.Get(counter); found {
		return x.(int64), nil
	}
	return 0, nil
}
