package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"taskapp/internal/core/domain"
)

func TestCache_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewCache()

	assert.NoError(t, cache.Set(ctx, "avatar:abc", []byte("bytes"), time.Minute))

	value, err := cache.Get(ctx, "avatar:abc")

	assert.NoError(t, err)
	assert.Equal(t, []byte("bytes"), value)
}

func TestCache_GetMissing(t *testing.T) {
	cache := NewCache()

	_, err := cache.Get(context.Background(), "missing")

	assert.True(t, domain.IsNotFound(err))
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewCache()

	cache.Set(ctx, "avatar:abc", []byte("bytes"), time.Minute)

	assert.NoError(t, cache.Delete(ctx, "avatar:abc"))

	_, err := cache.Get(ctx, "avatar:abc")
	assert.Error(t, err)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	cache := NewCache()

	cache.Set(ctx, "avatar:a", []byte("a"), time.Minute)
	cache.Set(ctx, "avatar:b", []byte("b"), time.Minute)
	cache.Set(ctx, "other:c", []byte("c"), time.Minute)

	assert.NoError(t, cache.DeleteByPrefix(ctx, "avatar:"))

	_, err := cache.Get(ctx, "avatar:a")
	assert.Error(t, err)

	_, err = cache.Get(ctx, "avatar:b")
	assert.Error(t, err)

	value, err := cache.Get(ctx, "other:c")
	assert.NoError(t, err)
	assert.Equal(t, []byte("c"), value)
}

func TestCache_TTLExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewCache()

	cache.Set(ctx, "avatar:abc", []byte("bytes"), 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	_, err := cache.Get(ctx, "avatar:abc")
	assert.True(t, domain.IsNotFound(err))
}
