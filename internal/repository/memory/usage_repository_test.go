package memory

import (
	"context"
	"sync"
	"testing"

	"ai-chatbot/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageRepositoryCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewUsageRepository()

	got, err := repo.Get(ctx, contract.CounterRelayed)
	require.NoError(t, err)
	assert.Zero(t, got)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Increment(ctx, contract.CounterRelayed, 1))
		}()
	}
	wg.Wait()

	require.NoError(t, repo.Increment(ctx, contract.CounterFailed, 3))

	relayed, err := repo.Get(ctx, contract.CounterRelayed)
	require.NoError(t, err)
	assert.Equal(t, int64(50), relayed)

	failed, err := repo.Get(ctx, contract.CounterFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), failed)
}
