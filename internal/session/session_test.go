package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string, ttl time.Duration) *Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &Session{
		ID:        id,
		Email:     "ed@example.com",
		Name:      "Ed",
		Role:      rbac.RoleEditor,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// exerciseStore runs the behaviour every Store must share
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, newSession("s1", time.Hour)))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ed@example.com", got.Email)
	assert.Equal(t, rbac.RoleEditor, got.Role)

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got, "deleted session must not resolve")

	// 删除不存在的会话不报错
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), newSession("s1", time.Minute)))
	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	got, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 下一次写入时清理过期会话
	require.NoError(t, store.Save(context.Background(), newSession("s2", time.Hour)))
	assert.Equal(t, 1, store.Len())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), "test:session:")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), newSession("s2", time.Minute)))
	assert.True(t, mr.Exists("test:session:s2"))

	mr.FastForward(2 * time.Minute)
	got, err := store.Get(context.Background(), "s2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), "p:")
	require.NoError(t, err)
	defer store.Close()

	mr.Close()
	_, err = store.Get(context.Background(), "s1")
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewStore(context.Background(), Config{Store: "redis"})
	assert.Error(t, err)

	_, err = NewStore(context.Background(), Config{Store: "etcd"})
	assert.Error(t, err)
}
