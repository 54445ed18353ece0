package envvar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when the environment variable is not set
var ErrNotFound = errors.New("secret not found in environment")

// Config is the configuration for the environment provider
type Config struct {
	// Prefix is prepended to the upper-cased key to form the variable name
	Prefix string
}

// Provider reads secrets from environment variables, the way container
// platforms inject mounted secrets
type Provider struct {
	prefix string
}

// NewProvider returns an environment provider
func NewProvider(config *Config) *Provider {
	p := &Provider{}
	if config != nil {
		p.prefix = config.Prefix
	}
	return p
}

func (p *Provider) Name() string {
	return "env"
}

// Get returns the value of PREFIX+KEY
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	name := p.prefix + strings.ToUpper(key)
	val, ok := os.LookupEnv(name)
	if !ok || val == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return []byte(val), nil
}
