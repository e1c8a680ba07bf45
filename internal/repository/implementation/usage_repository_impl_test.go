package implementation

import (
	"context"
	"os"
	"testing"

	"ai-chatbot/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server: REDIS_TEST_URL=redis://localhost:6379/15 go test ./...
func TestUsageRepositoryRedis(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx := context.Background()
	counter := contract.CounterRelayed + "-" + uuid.NewString()
	defer rdb.Del(ctx, usageKeyPrefix+counter)

	repo := NewUsageRepository(rdb)

	got, err := repo.Get(ctx, counter)
	require.NoError(t, err)
	assert.Zero(t, got)

	require.NoError(t, repo.Increment(ctx, counter, 2))
	require.NoError(t, repo.Increment(ctx, counter, 1))

	got, err = repo.Get(ctx, counter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}
