package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedLRU_BasicOperations(t *testing.T) {
	c := NewShardedLRUBlockCache(1<<20, nil)
	ctx := t.Context()

	c.Set(ctx, key("a.png", 0), []byte("test data"))
	got, ok := c.Get(ctx, key("a.png", 0))
	require.True(t, ok)
	assert.Equal(t, "test data", string(got))

	_, ok = c.Get(ctx, key("missing", 0))
	assert.False(t, ok)
}

func TestShardedLRU_Distribution(t *testing.T) {
	c := NewShardedLRUBlockCache(64<<20, nil)
	ctx := t.Context()
	data := make([]byte, 1024)

	for i := range 1000 {
		c.Set(ctx, key(fmt.Sprintf("asset-%d", i%100), uint64(i)), data)
	}

	nonEmpty := 0
	for _, shard := range c.shards {
		if shard.Size() > 0 {
			nonEmpty++
		}
	}
	assert.Greater(t, nonEmpty, 30)
	assert.Equal(t, int64(1000*1024), c.Size())
}

func TestShardedLRU_Concurrent(t *testing.T) {
	c := NewShardedLRUBlockCache(64<<20, nil)
	ctx := t.Context()
	data := make([]byte, 64)

	var wg sync.WaitGroup
	for g := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := fmt.Sprintf("g%d", g)
			for i := range uint64(200) {
				c.Set(ctx, key(path, i), data)
				_, _ = c.Get(ctx, key(path, i))
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, int64(32*200), hits+misses)
}

func TestShardedLRU_Invalidate(t *testing.T) {
	c := NewShardedLRUBlockCache(1<<20, nil)
	ctx := t.Context()

	for i := range uint64(100) {
		c.Set(ctx, key("a", i), []byte("x"))
	}
	c.Set(ctx, key("b", 0), []byte("y"))

	c.Invalidate(ForPath(KindSource, "a"))
	assert.Equal(t, int64(1), c.Size())
	require.NoError(t, c.Close())
}
