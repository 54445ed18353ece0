package inmemory

import (
	"context"
	"errors"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrKeyNotFound is returned by Get when the key is absent or expired
var ErrKeyNotFound = errors.New("key not found")

// InMemoryCache holds the handler for the in-memory cache using go-cache
type InMemoryCache struct {
	client *gocache.Cache
}

// Config is the configuration for the in-memory cache, in seconds
type Config struct {
	DefaultExpiration int32
	CleanupInterval   int32
}

// NewCache returns an in-memory cache. A nil config keeps entries forever.
func NewCache(config *Config) (*InMemoryCache, error) {
	if config == nil {
		config = getDefaultConfig()
	}

	defaultExpiration := time.Duration(config.DefaultExpiration) * time.Second
	cleanupExpiration := time.Duration(config.CleanupInterval) * time.Second

	client := gocache.New(defaultExpiration, cleanupExpiration)

	inMem := &InMemoryCache{
		client: client,
	}

	return inMem, nil
}

// Set implements Cache.
func (imc *InMemoryCache) Set(
	ctx context.Context,
	key string,
	value string,
	ttl time.Duration,
) error {
	imc.client.Set(key, value, ttl)
	return nil
}

// Get implements Cache.
func (imc *InMemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	val, found := imc.client.Get(key)
	if !found {
		return "", ErrKeyNotFound
	}
	return val, nil
}

// GetByPattern implements Cache. The pattern uses glob syntax, as redis SCAN MATCH does.
func (imc *InMemoryCache) GetByPattern(ctx context.Context, keyPattern string) (map[string]interface{}, error) {
	values := make(map[string]interface{})
	for key, item := range imc.client.Items() {
		matched, err := path.Match(keyPattern, key)
		if err != nil {
			return nil, err
		}
		if matched {
			values[key] = item.Object
		}
	}
	return values, nil
}

// Delete implements Cache.
func (imc *InMemoryCache) Delete(ctx context.Context, key string) error {
	imc.client.Delete(key)
	return nil
}

// Flush removes every key from the cache.
func (imc *InMemoryCache) Flush(ctx context.Context) {
	imc.client.Flush()
}

// getDefaultConfig returns the default configuration for the in-memory cache
func getDefaultConfig() *Config {
	return &Config{
		DefaultExpiration: -1,
		CleanupInterval:   -1,
	}
}
