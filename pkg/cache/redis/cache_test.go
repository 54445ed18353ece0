package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T, prefix string) (*RedisCache, *miniredis.Miniredis) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Error starting miniredis server: %v", err)
	}
	t.Cleanup(srv.Close)

	cache, err := NewCache(&Config{
		Host:      srv.Host(),
		Port:      srv.Port(),
		KeyPrefix: prefix,
	})
	assert.Nil(t, err)
	assert.NotNil(t, cache)
	return cache, srv
}

func TestNewRedisInstanceWithInvalidConfig(t *testing.T) {
	redis, err := NewCache(&Config{
		Host: "fakelocalhost",
		Port: "6379",
	})

	// since redis server is not running it will return error
	assert.NotNil(t, err)
	assert.Nil(t, redis)
}

func TestNewRedisInstance_SetGet(t *testing.T) {
	cache, _ := newTestCache(t, "")

	err := cache.Set(context.Background(), "test-key", "test-set-val", time.Minute)
	assert.Nil(t, err)

	val, err := cache.Get(context.Background(), "test-key")
	assert.Nil(t, err)
	assert.Equal(t, "test-set-val", val)

	err = cache.Delete(context.Background(), "test-key")
	assert.Nil(t, err)

	val, err = cache.Get(context.Background(), "test-key")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, "", val)

	assert.Nil(t, cache.Disconnect())
}

func TestRedisCache_NoExpiration(t *testing.T) {
	cache, srv := newTestCache(t, "")

	err := cache.Set(context.Background(), "forever", "v", -1*time.Second)
	assert.Nil(t, err)
	assert.Equal(t, time.Duration(0), srv.TTL("forever"))

	err = cache.Set(context.Background(), "ttl", "v", time.Minute)
	assert.Nil(t, err)
	assert.Equal(t, time.Minute, srv.TTL("ttl"))
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	cache, srv := newTestCache(t, "sankalan:")

	err := cache.Set(context.Background(), "query:kpis", "v", time.Minute)
	assert.Nil(t, err)
	assert.True(t, srv.Exists("sankalan:query:kpis"))

	values, err := cache.GetByPattern(context.Background(), "query:*")
	assert.Nil(t, err)
	assert.Equal(t, map[string]interface{}{"query:kpis": "v"}, values)
}

func TestRedisCacheGetByPattern(t *testing.T) {
	cache, _ := newTestCache(t, "")

	err := cache.Set(context.Background(), "user:1", "value1", time.Minute)
	assert.Nil(t, err)
	err = cache.Set(context.Background(), "user:2", "value2", time.Minute)
	assert.Nil(t, err)
	err = cache.Set(context.Background(), "user:3", "value3", time.Minute)
	assert.Nil(t, err)
	err = cache.Set(context.Background(), "other:1", "othervalue", time.Minute)
	assert.Nil(t, err)

	values, err := cache.GetByPattern(context.Background(), "user:*")
	assert.Nil(t, err)
	assert.Equal(t, 3, len(values))

	stringValues := make([]string, 0, len(values))
	for _, v := range values {
		stringValues = append(stringValues, v.(string))
	}

	assert.Contains(t, stringValues, "value1")
	assert.Contains(t, stringValues, "value2")
	assert.Contains(t, stringValues, "value3")
	assert.NotContains(t, stringValues, "othervalue")

	values, err = cache.GetByPattern(context.Background(), "nonexistent:*")
	assert.Nil(t, err)
	assert.Equal(t, 0, len(values))
}
