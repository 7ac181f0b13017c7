package docstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisKV(t *testing.T) *RedisKV {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisKVWithClient(client)
}

func TestRedisKVGetSetDelete(t *testing.T) {
	ctx := context.Background()
	kv := newTestRedisKV(t)

	require.NoError(t, kv.Set(ctx, "doc-1", `{"id":"1"}`))

	v, err := kv.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, v)

	require.NoError(t, kv.Delete(ctx, "doc-1"))
	_, err = kv.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKVMissingKeyIsNotFound(t *testing.T) {
	kv := newTestRedisKV(t)

	_, err := kv.Get(context.Background(), "doc-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKVKeysFiltersByPrefix(t *testing.T) {
	ctx := context.Background()
	kv := newTestRedisKV(t)

	require.NoError(t, kv.Set(ctx, "doc-a", "1"))
	require.NoError(t, kv.Set(ctx, "doc-b", "2"))
	require.NoError(t, kv.Set(ctx, "other-c", "3"))

	keys, err := kv.Keys(ctx, "doc-")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"doc-a", "doc-b"}, keys)
}

func TestSnapshotServiceOnRedis(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestRedisKV(t))

	want := testSnapshot("42-xyz", "contract.pdf", 500)
	require.NoError(t, svc.Save(ctx, want))

	got, err := svc.Load(ctx, "42-xyz")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	infos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "contract.pdf", infos[0].Name)
}
