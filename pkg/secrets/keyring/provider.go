package keyring

import (
	"context"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

// ErrNotFound is returned when the keyring holds no secret for the key
var ErrNotFound = errors.New("secret not found in keyring")

const DefaultService = "sankalan"

// Config is the configuration for the OS keyring provider
type Config struct {
	// Service is the keyring service the secrets are stored under
	Service string
}

// Provider reads secrets from the OS keyring (macOS Keychain,
// Secret Service on Linux, Windows Credential Manager)
type Provider struct {
	service string
}

// NewProvider returns a keyring provider
func NewProvider(config *Config) *Provider {
	service := DefaultService
	if config != nil && config.Service != "" {
		service = config.Service
	}
	return &Provider{service: service}
}

func (p *Provider) Name() string {
	return "keyring"
}

// Get returns the secret stored for key under the configured service
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	secret, err := gokeyring.Get(p.service, key)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, p.service, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from keyring: %w", err)
	}
	return []byte(secret), nil
}

// Store saves a secret for key, used by store-credentials to seed the keyring
func (p *Provider) Store(key string, secret []byte) error {
	if err := gokeyring.Set(p.service, key, string(secret)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}
