/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package secrets provides the remote secret stores credential material can be read from.
package secrets

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks github.com/redhat-data-and-ai/sankalan/pkg/secrets Provider

import (
	"context"
	"errors"

	"github.com/redhat-data-and-ai/sankalan/pkg/secrets/envvar"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets/keyring"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets/secretsfile"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets/vault"
)

var (
	// ErrInvalidSecretProvider is returned when an unknown provider name is configured
	ErrInvalidSecretProvider = errors.New("invalid secret provider")
)

const (
	ProviderSecretsFile = "secretsfile"
	ProviderKeyring     = "keyring"
	ProviderVault       = "vault"
	ProviderEnv         = "env"
)

// Provider reads named secrets from a secret store
type Provider interface {
	// Name returns the provider name used in logs and diagnostics
	Name() string

	// Get returns the secret stored under key.
	// A missing key is reported with an error for which IsNotFound is true.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Config holds the settings of every secret provider
type Config struct {
	SecretsFile *secretsfile.Config
	Keyring     *keyring.Config
	Vault       *vault.Config
	Env         *envvar.Config
}

// IsNotFound reports whether err means the secret does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, secretsfile.ErrNotFound) ||
		errors.Is(err, keyring.ErrNotFound) ||
		errors.Is(err, vault.ErrNotFound) ||
		errors.Is(err, envvar.ErrNotFound)
}

// New returns the provider registered under name
func New(name string, config *Config) (Provider, error) {
	if config == nil {
		config = &Config{}
	}

	switch name {
	case ProviderSecretsFile:
		return secretsfile.NewProvider(config.SecretsFile), nil
	case ProviderKeyring:
		return keyring.NewProvider(config.Keyring), nil
	case ProviderVault:
		p, err := vault.NewProvider(config.Vault)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderEnv:
		return envvar.NewProvider(config.Env), nil
	default:
		return nil, ErrInvalidSecretProvider
	}
}
