// Package secretsfile reads secrets from a hosted-app secrets file
// (for example .streamlit/secrets.toml) where each secret is a table.
package secretsfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrNotFound is returned when the file or the key does not exist
var ErrNotFound = errors.New("secret not found in secrets file")

const DefaultPath = ".streamlit/secrets.toml"

// Config is the configuration for the secrets file provider
type Config struct {
	// Path of the secrets file; the format is taken from the extension
	Path string
}

// Provider reads secrets from a toml, yaml or json file
type Provider struct {
	path string
}

// NewProvider returns a secrets file provider
func NewProvider(config *Config) *Provider {
	path := DefaultPath
	if config != nil && config.Path != "" {
		path = config.Path
	}
	return &Provider{path: path}
}

func (p *Provider) Name() string {
	return "secretsfile"
}

// Get returns the secret under key. Tables are returned as JSON objects,
// plain values as their string form. The file is re-read on every call so
// rotated secrets are picked up.
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	if _, err := os.Stat(p.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p.path)
		}
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(p.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read secrets file %s: %w", p.path, err)
	}

	if !v.IsSet(key) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	switch val := v.Get(key).(type) {
	case string:
		return []byte(val), nil
	case map[string]interface{}:
		return json.Marshal(val)
	default:
		return nil, fmt.Errorf("secret %s has unsupported type %T", key, val)
	}
}
