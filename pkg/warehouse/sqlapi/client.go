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

package sqlapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gojek/heimdall/v7"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/request"
	"github.com/redhat-data-and-ai/sankalan/pkg/request/httpclient"
)

const (
	DriverName = "snowflake_sqlapi"

	statementsEndpoint  = "/api/v2/statements"
	defaultPollInterval = 500 * time.Millisecond
)

// ErrMissingToken is returned when the credential material carries no access token
var ErrMissingToken = errors.New("snowflake sql api requires a token")

// NewClient creates a SQL API client for the account named by material.ProjectID.
// The base URL defaults to the account's snowflakecomputing.com host.
func NewClient(material *structs.ServiceAccount, opts Options) (*Client, error) {
	if material == nil {
		return nil, errors.New("credential material cannot be nil")
	}
	if material.ProjectID == "" {
		return nil, structs.ErrMissingProjectID
	}
	if material.Token == "" {
		return nil, ErrMissingToken
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = material.BaseURL
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.snowflakecomputing.com", material.ProjectID)
	}

	if opts.Database == "" {
		opts.Database = material.Database
	}
	if opts.Schema == "" {
		opts.Schema = material.Schema
	}
	if opts.Warehouse == "" {
		opts.Warehouse = material.Warehouse
	}
	if opts.Role == "" {
		opts.Role = material.Role
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}

	client, err := httpclient.InitializeClient(
		DriverName,
		httpclient.DefaultConnectionPoolConfig(),
		httpclient.DefaultHystrixResiliencyConfig(),
		heimdall.NewRetrier(heimdall.NewConstantBackoff(100*time.Millisecond, 50*time.Millisecond)), 3,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http client: %w", err)
	}

	return &Client{
		config: &Config{
			Token:   material.Token,
			BaseURL: strings.TrimRight(baseURL, "/"),
			Account: material.ProjectID,
		},
		opts:   opts,
		client: client,
	}, nil
}

// prepareRequest creates a request carrying the SQL API auth headers
func (c *Client) prepareRequest(ctx context.Context, endpoint, method string,
	body interface{}) (request.IRequester, error) {
	req, err := request.NewJSONRequest(ctx, method, c.config.BaseURL+endpoint, body)
	if err != nil {
		return nil, err
	}

	req.SetHeaders(map[string]string{
		"Authorization":                        "Bearer " + c.config.Token,
		"X-Snowflake-Authorization-Token-Type": "PROGRAMMATIC_ACCESS_TOKEN",
		"User-Agent":                           "sankalan/1.0",
	})

	return req, nil
}

func (c *Client) makeRequest(ctx context.Context, endpoint,
	method string, body interface{}) ([]byte, int, error) {
	req, err := c.prepareRequest(ctx, endpoint, method, body)
	if err != nil {
		return nil, 0, err
	}

	return req.MakeRequest(c.client, method, DriverName)
}

func (c *Client) Driver() string {
	return DriverName
}

func (c *Client) Project() string {
	return c.config.Account
}

// Close is a no-op, the SQL API is stateless between statements
func (c *Client) Close() error {
	return nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() *Config {
	return c.config
}
