package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/etpassistant/internal/kv"
)

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	c := NewCounter(store, nil)

	assert.Equal(t, Stats{}, c.Load(ctx))

	_, err := c.Increment(ctx, ETPsCreated)
	require.NoError(t, err)
	_, err = c.Increment(ctx, RAGQueries)
	require.NoError(t, err)
	s, err := c.Increment(ctx, RAGQueries)
	require.NoError(t, err)
	assert.Equal(t, Stats{ETPsCreated: 1, RAGQueries: 2}, s)

	raw, err := store.Get(ctx, Key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"etpsCreated":1,"ragQueries":2,"assistantUsage":0}`, string(raw))

	_, err = c.Increment(ctx, "downloads")
	assert.Error(t, err)
}

func TestLoadCorruptIsZero(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, Key, []byte("not json")))

	c := NewCounter(store, nil)
	assert.Equal(t, Stats{}, c.Load(ctx))

	c.Track(ctx, AssistantUsage)
	assert.Equal(t, Stats{AssistantUsage: 1}, c.Load(ctx))
}
