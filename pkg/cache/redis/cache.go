package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	otredis "github.com/opentracing-contrib/goredis"
)

// ErrKeyNotFound is returned by Get when the key does not exist
var ErrKeyNotFound = errors.New("key not found")

// Config holds all required info for initializing redis driver
type Config struct {
	Host     string
	Port     string
	Database int32
	Password string
	// KeyPrefix namespaces every key, so several deployments can share a server
	KeyPrefix string
}

// RedisCache holds the handler for the redisclient and auxiliary info
type RedisCache struct {
	client otredis.Client
	prefix string
}

// NewCache inits a RedisCache instance and pings the server
func NewCache(config *Config) (*RedisCache, error) {
	if config == nil {
		config = getDefaultConfig()
	}

	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	options := &redis.UniversalOptions{
		Addrs:    []string{addr},
		Password: config.Password,
		DB:       int(config.Database),
	}

	redisClient := otredis.Wrap(redis.NewUniversalClient(options))
	rc := RedisCache{
		client: redisClient,
		prefix: config.KeyPrefix,
	}

	_, err := rc.client.Ping().Result()
	if err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &rc, nil
}

func getDefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     "6379",
		Database: 0,
		Password: "",
	}
}

// Set - sets a key value pair in redis
func (rc *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return rc.client.WithContext(ctx).Set(rc.prefix+key, value, ttl).Err()
}

// Get - gets a value from redis
func (rc *RedisCache) Get(ctx context.Context, key string) (interface{}, error) {
	val, err := rc.client.WithContext(ctx).Get(rc.prefix + key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// GetByPattern - returns all values whose keys match the glob pattern
func (rc *RedisCache) GetByPattern(ctx context.Context, keyPattern string) (map[string]interface{}, error) {
	var keys []string
	iter := rc.client.WithContext(ctx).Scan(0, rc.prefix+keyPattern, 0).Iterator()
	for iter.Next() {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return make(map[string]interface{}), nil
	}

	// one round trip for all values
	vals, err := rc.client.WithContext(ctx).MGet(keys...).Result()
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(keys))
	for i, key := range keys {
		// nil means the key expired between SCAN and MGET
		if vals[i] != nil {
			values[key[len(rc.prefix):]] = vals[i]
		}
	}

	return values, nil
}

// Delete - deletes a key from redis
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	return rc.client.WithContext(ctx).Del(rc.prefix + key).Err()
}

// Disconnect ... disconnects from the redis server
func (rc *RedisCache) Disconnect() error {
	return rc.client.Close()
}
