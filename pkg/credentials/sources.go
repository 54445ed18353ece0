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

package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets"
)

const (
	SourceTypeFile   = "file"
	SourceTypeSecret = "secret"
)

// SourceConfig describes one entry of the ordered source list
type SourceConfig struct {
	Type     string `yaml:"type"`
	Path     string `yaml:"path"`
	Provider string `yaml:"provider"`
	Key      string `yaml:"key"`
}

// Config holds the ordered credential sources
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LocalFile reads material from a JSON file on disk
type LocalFile struct {
	Path string
}

func (f LocalFile) Name() string {
	return SourceTypeFile + ":" + f.Path
}

func (f LocalFile) Load(_ context.Context) (*structs.ServiceAccount, error) {
	if _, err := os.Stat(f.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrSourceNotFound, f.Path)
		}
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	material, err := structs.ParseServiceAccount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceParseFailed, err)
	}
	return material, nil
}

// RemoteSecret reads material stored under Key in a secret provider
type RemoteSecret struct {
	Provider secrets.Provider
	Key      string
}

func (s RemoteSecret) Name() string {
	return SourceTypeSecret + ":" + s.Provider.Name() + "/" + s.Key
}

func (s RemoteSecret) Load(ctx context.Context) (*structs.ServiceAccount, error) {
	data, err := s.Provider.Get(ctx, s.Key)
	if err != nil {
		if secrets.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
		}
		return nil, fmt.Errorf("secret provider %s: %w", s.Provider.Name(), err)
	}

	material, err := structs.ParseServiceAccount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceParseFailed, err)
	}
	return material, nil
}

// NewSources builds the configured sources in order. Secret sources share
// one provider instance per provider name.
func NewSources(config *Config, secretsConfig *secrets.Config) ([]Source, error) {
	if config == nil || len(config.Sources) == 0 {
		return nil, ErrNoSources
	}

	providers := make(map[string]secrets.Provider)
	sources := make([]Source, 0, len(config.Sources))

	for i, sc := range config.Sources {
		switch strings.ToLower(sc.Type) {
		case SourceTypeFile:
			if sc.Path == "" {
				return nil, fmt.Errorf("credential source %d: file source needs a path", i)
			}
			sources = append(sources, LocalFile{Path: sc.Path})
		case SourceTypeSecret:
			if sc.Key == "" {
				return nil, fmt.Errorf("credential source %d: secret source needs a key", i)
			}
			provider, ok := providers[sc.Provider]
			if !ok {
				var err error
				provider, err = secrets.New(sc.Provider, secretsConfig)
				if err != nil {
					return nil, fmt.Errorf("credential source %d: %w", i, err)
				}
				providers[sc.Provider] = provider
			}
			sources = append(sources, RemoteSecret{Provider: provider, Key: sc.Key})
		default:
			return nil, fmt.Errorf("credential source %d: unknown type %q", i, sc.Type)
		}
	}

	return sources, nil
}
