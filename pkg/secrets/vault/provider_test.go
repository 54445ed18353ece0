package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVaultServer(t *testing.T, secrets map[string]string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "root-token" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		body, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_GetFields(t *testing.T) {
	srv := newVaultServer(t, map[string]string{
		"/v1/kv/data/dashboards/gcp": `{"data":{"data":{"project_id":"p2","type":"service_account"},"metadata":{"version":3}}}`,
	})

	p, err := NewProvider(&Config{Address: srv.URL + "/", Token: "root-token", Mount: "kv"})
	require.NoError(t, err)

	data, err := p.Get(context.Background(), "dashboards/gcp")
	require.NoError(t, err)

	var material map[string]string
	require.NoError(t, json.Unmarshal(data, &material))
	assert.Equal(t, "p2", material["project_id"])
}

func TestProvider_GetJSONField(t *testing.T) {
	srv := newVaultServer(t, map[string]string{
		"/v1/secret/data/gcp": `{"data":{"data":{"json":"{\"project_id\":\"p3\"}"},"metadata":{"version":1}}}`,
	})

	p, err := NewProvider(&Config{Address: srv.URL, Token: "root-token"})
	require.NoError(t, err)

	data, err := p.Get(context.Background(), "gcp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"project_id":"p3"}`, string(data))
}

func TestProvider_NotFound(t *testing.T) {
	srv := newVaultServer(t, map[string]string{
		"/v1/secret/data/deleted": `{"data":{"data":null,"metadata":{"version":2}}}`,
	})

	p, err := NewProvider(&Config{Address: srv.URL, Token: "root-token"})
	require.NoError(t, err)

	_, err = p.Get(context.Background(), "gcp")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Get(context.Background(), "deleted")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProvider_PermissionDenied(t *testing.T) {
	srv := newVaultServer(t, nil)

	p, err := NewProvider(&Config{Address: srv.URL, Token: "wrong"})
	require.NoError(t, err)

	_, err = p.Get(context.Background(), "gcp")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "Forbidden")
}

func TestNewProvider_MissingConfig(t *testing.T) {
	_, err := NewProvider(nil)
	assert.Error(t, err)

	_, err = NewProvider(&Config{Address: "http://vault:8200"})
	assert.Error(t, err)
}
