package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestProductKeys(t *testing.T) {
	assert.Equal(t, "lock:catalog:product:7", ProductKey(7))
	assert.Equal(t, []string{"lock:catalog:product:1", "lock:catalog:product:2"}, ProductKeys(1, 2))
	assert.Equal(t, []string{"lock:catalog:product:3", "lock:catalog:product:5"}, ProductKeys(3, 5, 3))
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, sortedUnique([]string{"c", "a", "b", "a", "c"}))
	assert.Empty(t, sortedUnique(nil))
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background(), "a", "b")
	require.NoError(t, err)
	release(context.Background())
}

// memRedis implements the two commands RedisLocker issues
type memRedis struct {
	redis.UniversalClient
	mu   sync.Mutex
	keys map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{keys: map[string]string{}}
}

func (m *memRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	if _, held := m.keys[key]; held {
		cmd.SetVal(false)
		return cmd
	}
	m.keys[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (m *memRedis) EvalSha(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewCmd(ctx)
	if m.keys[keys[0]] == args[0] {
		delete(m.keys, keys[0])
		cmd.SetVal(int64(1))
		return cmd
	}
	cmd.SetVal(int64(0))
	return cmd
}

func (m *memRedis) held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

func TestRedisLockerRepeatedKeys(t *testing.T) {
	ctx := context.Background()
	client := newMemRedis()
	locker := NewRedisLocker(client, time.Second)
	locker.wait = time.Millisecond

	release, err := locker.Acquire(ctx, ProductKey(3), ProductKey(5), ProductKey(3))
	require.NoError(t, err)
	assert.Equal(t, 2, client.held())

	release(ctx)
	assert.Zero(t, client.held())
}

func TestRedisLockerReleasesOnContention(t *testing.T) {
	ctx := context.Background()
	client := newMemRedis()
	locker := NewRedisLocker(client, time.Second)
	locker.wait = time.Millisecond

	releaseB, err := locker.Acquire(ctx, "b")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "a", "b")
	require.ErrorIs(t, err, ErrNotAcquired)
	assert.Equal(t, 1, client.held())

	releaseB(ctx)
	assert.Zero(t, client.held())
}

// startRedis runs a throwaway Redis and returns a client connected to it
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocker(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	newLocker := func() *RedisLocker {
		locker := NewRedisLocker(client, 5*time.Second)
		locker.wait = 10 * time.Millisecond
		return locker
	}

	t.Run("exclusive", func(t *testing.T) {
		locker := newLocker()
		key := "test:" + uuid.NewString()
		release, err := locker.Acquire(ctx, key)
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, key)
		assert.ErrorIs(t, err, ErrNotAcquired)

		release(ctx)

		release2, err := locker.Acquire(ctx, key)
		require.NoError(t, err)
		release2(ctx)
	})

	t.Run("all or nothing", func(t *testing.T) {
		locker := newLocker()
		a, b := "test:a:"+uuid.NewString(), "test:b:"+uuid.NewString()
		releaseB, err := locker.Acquire(ctx, b)
		require.NoError(t, err)
		defer releaseB(ctx)

		_, err = locker.Acquire(ctx, a, b)
		require.ErrorIs(t, err, ErrNotAcquired)

		// a must have been released when b could not be taken
		exists, err := client.Exists(ctx, a).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("repeated key", func(t *testing.T) {
		locker := newLocker()
		key := "test:" + uuid.NewString()
		release, err := locker.Acquire(ctx, key, key)
		require.NoError(t, err)
		release(ctx)

		exists, err := client.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)
	})

	t.Run("expired lock is not released by its old holder", func(t *testing.T) {
		locker := NewRedisLocker(client, 50*time.Millisecond)
		key := "test:" + uuid.NewString()
		release, err := locker.Acquire(ctx, key)
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)
		require.NoError(t, client.Set(ctx, key, "someone-else", time.Minute).Err())

		release(ctx)
		val, err := client.Get(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, "someone-else", val)
	})
}
