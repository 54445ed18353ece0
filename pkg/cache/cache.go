package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redhat-data-and-ai/sankalan/pkg/cache/inmemory"
	"github.com/redhat-data-and-ai/sankalan/pkg/cache/redis"
)

var (
	// ErrInvalidCacheDriver is returned when an invalid cache driver is provided
	ErrInvalidCacheDriver = errors.New("invalid cache driver")
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"

	NoExpiration = -1 * time.Second
)

// Cache implements a generic interface for cache clients
type Cache interface {
	// Get returns the value for the given key
	// returns the value if the key was found
	// returns an error if the key was not found
	Get(ctx context.Context, key string) (interface{}, error)

	// GetByPattern returns the values whose keys match the glob pattern
	GetByPattern(ctx context.Context, keyPattern string) (map[string]interface{}, error)

	// Set sets the value for the given key
	// returns nil if the key was set successfully
	// returns an error if the key was not set successfully
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete deletes the value for the given key
	Delete(ctx context.Context, key string) error
}

// Config is the configuration for the cache client
type Config struct {
	// Driver is the type of cache client
	Driver string

	// TTL is how long, in seconds, a cached query result stays valid.
	// Zero or negative keeps entries for the lifetime of the cache.
	TTL int32

	// InMemory is the configuration for the inmemory cache client
	InMemory *inmemory.Config

	// Redis is the configuration for the redis client
	Redis *redis.Config
}

// Expiration converts the configured TTL into the duration passed to Set
func (c *Config) Expiration() time.Duration {
	if c == nil || c.TTL <= 0 {
		return NoExpiration
	}
	return time.Duration(c.TTL) * time.Second
}

// IsNotFound reports whether err means the key is absent from the cache
func IsNotFound(err error) bool {
	return errors.Is(err, inmemory.ErrKeyNotFound) || errors.Is(err, redis.ErrKeyNotFound)
}

// New returns a new cache client
func New(config *Config) (Cache, error) {

	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	switch config.Driver {
	case DriverMemory:
		c, err := inmemory.NewCache(config.InMemory)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverRedis:
		c, err := redis.NewCache(config.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, ErrInvalidCacheDriver
	}
}
