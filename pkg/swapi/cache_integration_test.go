//go:build integration

package swapi

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

func TestRedisCache_LaterRunRefetches(t *testing.T) {
	client := testhelpers.GetTestRedis(t)
	ctx := context.Background()
	const url = "http://x/planets/1/"

	stale := newMapSource(map[string]string{url: `{"name":"Tatooine (stale)"}`})
	first := NewCachedSource(stale, NewRedisCache(client, time.Hour, uuid.NewString()), zap.NewNop())
	key, err := FetchNaturalKey(ctx, first, url)
	require.NoError(t, err)
	assert.Equal(t, "Tatooine (stale)", key)

	fresh := newMapSource(map[string]string{url: `{"name":"Tatooine"}`})
	second := NewCachedSource(fresh, NewRedisCache(client, time.Hour, uuid.NewString()), zap.NewNop())
	for i := 0; i < 2; i++ {
		key, err = FetchNaturalKey(ctx, second, url)
		require.NoError(t, err)
		assert.Equal(t, "Tatooine", key)
	}

	assert.Equal(t, 1, fresh.calls[url])
	hits, misses := second.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestRedisCache_ClearRemovesOnlyTheRun(t *testing.T) {
	client := testhelpers.GetTestRedis(t)
	ctx := context.Background()

	mine := NewRedisCache(client, time.Hour, uuid.NewString())
	other := NewRedisCache(client, time.Hour, uuid.NewString())
	require.NoError(t, mine.Set(ctx, "http://x/films/1/", []byte(`{}`)))
	require.NoError(t, mine.Set(ctx, "http://x/films/2/", []byte(`{}`)))
	require.NoError(t, other.Set(ctx, "http://x/films/1/", []byte(`{}`)))

	removed, err := mine.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err := mine.Get(ctx, "http://x/films/1/")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = other.Get(ctx, "http://x/films/1/")
	require.NoError(t, err)
	assert.True(t, ok)
}
