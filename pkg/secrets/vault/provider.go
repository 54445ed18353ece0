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

package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
	"github.com/redhat-data-and-ai/sankalan/pkg/request"
	"github.com/redhat-data-and-ai/sankalan/pkg/request/httpclient"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when the secret path does not exist
var ErrNotFound = errors.New("secret not found in vault")

const (
	DefaultMount = "secret"

	// jsonField lets a secret carry the whole credential document as one string
	jsonField = "json"
)

// Config is the configuration for the Vault KV v2 provider
type Config struct {
	Address   string
	Token     string
	Mount     string
	Namespace string

	ConnectionPool httpclient.ConnectionPoolConfig
	Hystrix        httpclient.HystrixResiliencyConfig
}

// Provider reads secrets from a Vault KV version 2 engine
type Provider struct {
	address   string
	token     string
	mount     string
	namespace string
	client    heimdall.Doer
}

type kvResponse struct {
	Data struct {
		Data     map[string]interface{} `json:"data"`
		Metadata struct {
			Version int `json:"version"`
		} `json:"metadata"`
	} `json:"data"`
}

// NewProvider returns a Vault provider
func NewProvider(config *Config) (*Provider, error) {
	if config == nil || config.Address == "" || config.Token == "" {
		return nil, errors.New("missing required parameters for vault secret provider: address and token are required")
	}

	client, err := httpclient.InitializeClient(
		"vault",
		config.ConnectionPool,
		config.Hystrix,
		heimdall.NewRetrier(heimdall.NewConstantBackoff(100*time.Millisecond, 50*time.Millisecond)), 2,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http client: %w", err)
	}

	mount := config.Mount
	if mount == "" {
		mount = DefaultMount
	}

	return &Provider{
		address:   strings.TrimRight(config.Address, "/"),
		token:     config.Token,
		mount:     strings.Trim(mount, "/"),
		namespace: config.Namespace,
		client:    client,
	}, nil
}

func (p *Provider) Name() string {
	return "vault"
}

// Get reads <mount>/data/<key>. A secret with a single "json" field is returned
// as that string, any other secret as the JSON object of its fields.
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.Logger(ctx).WithFields(logrus.Fields{
		"service": "vault",
		"mount":   p.mount,
		"key":     key,
	})

	url := fmt.Sprintf("%s/v1/%s/data/%s", p.address, p.mount, strings.TrimLeft(key, "/"))
	req, err := request.NewJSONRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"X-Vault-Token": p.token}
	if p.namespace != "" {
		headers["X-Vault-Namespace"] = p.namespace
	}
	req.SetHeaders(headers)

	resp, status, err := req.MakeRequest(p.client, http.MethodGet, "vault")
	if err != nil {
		log.WithError(err).Error("error reading secret")
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, p.mount, key)
	default:
		return nil, fmt.Errorf("failed to read secret, status: %s, body: %s", http.StatusText(status), string(resp))
	}

	var kv kvResponse
	if err := json.Unmarshal(resp, &kv); err != nil {
		return nil, fmt.Errorf("failed to parse vault response: %w", err)
	}
	if kv.Data.Data == nil {
		// a deleted version still answers 200 with null data
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, p.mount, key)
	}

	log.WithField("version", kv.Data.Metadata.Version).Debug("read secret")

	if raw, ok := kv.Data.Data[jsonField].(string); ok && len(kv.Data.Data) == 1 {
		return []byte(raw), nil
	}
	return json.Marshal(kv.Data.Data)
}
