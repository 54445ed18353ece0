package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-data-and-ai/sankalan/pkg/secrets"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets/envvar"
)

func TestNewSources(t *testing.T) {
	config := &Config{Sources: []SourceConfig{
		{Type: "file", Path: "/etc/sankalan/service_account.json"},
		{Type: "secret", Provider: "env", Key: "gcp_service_account"},
		{Type: "Secret", Provider: "env", Key: "snowflake"},
	}}

	sources, err := NewSources(config, &secrets.Config{Env: &envvar.Config{Prefix: "SANKALAN_"}})
	require.NoError(t, err)
	require.Len(t, sources, 3)

	assert.Equal(t, "file:/etc/sankalan/service_account.json", sources[0].Name())
	assert.Equal(t, "secret:env/gcp_service_account", sources[1].Name())
	assert.Same(t, sources[1].(RemoteSecret).Provider, sources[2].(RemoteSecret).Provider)
}

func TestNewSourcesErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config", config: nil, wantErr: ErrNoSources},
		{name: "empty", config: &Config{}, wantErr: ErrNoSources},
		{name: "file without path", config: &Config{Sources: []SourceConfig{{Type: "file"}}}},
		{name: "secret without key", config: &Config{Sources: []SourceConfig{{Type: "secret", Provider: "env"}}}},
		{name: "unknown provider", config: &Config{Sources: []SourceConfig{{Type: "secret", Provider: "s3", Key: "k"}}},
			wantErr: secrets.ErrInvalidSecretProvider},
		{name: "unknown type", config: &Config{Sources: []SourceConfig{{Type: "ldap"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSources(tt.config, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
