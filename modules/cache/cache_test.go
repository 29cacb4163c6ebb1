package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

func checkRedisAvailable(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testRedisAddr, 2*time.Second)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	conn.Close()
}

// setupTestCache returns a cache on DB 15 and flushes it on cleanup.
func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()
	checkRedisAvailable(t)

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr, DB: 15})
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return New(client, prefix, time.Minute)
}

func TestCache_SetAndGet(t *testing.T) {
	c := setupTestCache(t, "test:factor:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "1330", []int64{2, 5, 7, 19}))

	var got []int64
	found, err := c.Get(ctx, "1330", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int64{2, 5, 7, 19}, got)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, float64(100), stats.HitRate)
}

func TestCache_Miss(t *testing.T) {
	c := setupTestCache(t, "test:miss:")

	var got []int64
	found, err := c.Get(context.Background(), "97", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
	assert.Equal(t, uint64(1), c.Stats().Misses)
}

func TestCache_PrefixIsolation(t *testing.T) {
	a := setupTestCache(t, "test:a:")
	b := New(a.client, "test:b:", time.Minute)
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "6", []int64{2, 3}))

	var got []int64
	found, err := b.Get(ctx, "6", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_StatsEmpty(t *testing.T) {
	c := New(nil, "p:", time.Minute)
	stats := c.Stats()
	assert.Zero(t, stats.TotalGets)
	assert.Zero(t, stats.HitRate)
	assert.Equal(t, time.Minute, c.TTL())
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	for _, opt := range []Option{
		WithRedisAddr("redis:6380"),
		WithRedisPassword("secret"),
		WithRedisDB(3),
		WithPrefix("calc:"),
		WithTTL(10 * time.Minute),
		WithTTL(-time.Second),
	} {
		opt(&cfg)
	}

	assert.Equal(t, Config{
		RedisAddr:     "redis:6380",
		RedisPassword: "secret",
		RedisDB:       3,
		Prefix:        "calc:",
		TTL:           10 * time.Minute,
	}, cfg)
}

func TestParseRedisAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
	}{
		{"localhost:6379", "localhost", 6379},
		{"redis.internal:6380", "redis.internal", 6380},
		{":7000", "127.0.0.1", 7000},
		{"localhost:abc", "localhost", 6379},
		{"no-port", "127.0.0.1", 6379},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port := parseRedisAddr(tt.addr)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestNewLimiterStorage_Unreachable(t *testing.T) {
	_, err := NewLimiterStorage(Config{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewLimiterStorage(t *testing.T) {
	checkRedisAvailable(t)

	storage, err := NewLimiterStorage(Config{RedisAddr: testRedisAddr, RedisDB: 15})
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Set("limiter:test", []byte("1"), time.Minute))
	got, err := storage.Get("limiter:test")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
	require.NoError(t, storage.Delete("limiter:test"))
}

func TestModule_NameAndCache(t *testing.T) {
	m := NewModule(&mockLogger{}, WithRedisAddr(testRedisAddr), WithPrefix("test:module:"))
	defer m.client.Close()

	assert.Equal(t, "cache", m.Name())
	require.NotNil(t, m.Cache())
	assert.Equal(t, time.Hour, m.Cache().TTL())
}

func TestModule_StartFailsWithoutRedis(t *testing.T) {
	m := NewModule(&mockLogger{}, WithRedisAddr("127.0.0.1:1"))
	defer m.client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
	assert.False(t, m.Health(ctx).Healthy)
}
