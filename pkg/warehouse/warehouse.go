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

package warehouse

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/redhat-data-and-ai/sankalan/pkg/warehouse Client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/utils"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse/bigquery"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse/snowflake"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse/sqlapi"
)

var (
	// ErrInvalidDriver is returned when an unknown warehouse driver is configured
	ErrInvalidDriver = errors.New("invalid warehouse driver")
)

const (
	DriverBigQuery  = "bigquery"
	DriverSnowflake = "snowflake"
	DriverSQLAPI    = "snowflake_sqlapi"
)

// Client is a live handle on the warehouse. A Client is created once,
// shared by every query and safe for concurrent use.
type Client interface {
	// Driver returns the name of the driver backing the client
	Driver() string
	// Project returns the project or account the client is bound to
	Project() string
	// Query executes the statement and materializes the full result
	Query(ctx context.Context, query string) (*structs.ResultTable, error)
	// Close releases the connection
	Close() error
}

// Config selects the warehouse driver. Options are driver specific and
// decoded into the driver's Options struct by their json names.
type Config struct {
	Driver  string                 `yaml:"driver"`
	Options map[string]interface{} `yaml:"options"`
}

// Connector builds a Client from credential material
type Connector func(ctx context.Context, material *structs.ServiceAccount) (Client, error)

// NewConnector returns the Connector for the configured driver
func NewConnector(config *Config) (Connector, error) {
	if config == nil {
		return nil, errors.New("warehouse config cannot be nil")
	}

	switch strings.ToLower(config.Driver) {
	case DriverBigQuery:
		var opts bigquery.Options
		if err := utils.MapToStruct(config.Options, &opts); err != nil {
			return nil, fmt.Errorf("invalid bigquery options: %w", err)
		}
		return func(ctx context.Context, material *structs.ServiceAccount) (Client, error) {
			c, err := bigquery.NewClient(ctx, material, opts)
			if err != nil {
				return nil, err
			}
			return c, nil
		}, nil
	case DriverSnowflake:
		var opts snowflake.Options
		if err := utils.MapToStruct(config.Options, &opts); err != nil {
			return nil, fmt.Errorf("invalid snowflake options: %w", err)
		}
		return func(ctx context.Context, material *structs.ServiceAccount) (Client, error) {
			c, err := snowflake.NewClient(ctx, material, opts)
			if err != nil {
				return nil, err
			}
			return c, nil
		}, nil
	case DriverSQLAPI:
		var opts sqlapi.Options
		if err := utils.MapToStruct(config.Options, &opts); err != nil {
			return nil, fmt.Errorf("invalid snowflake sql api options: %w", err)
		}
		return func(ctx context.Context, material *structs.ServiceAccount) (Client, error) {
			c, err := sqlapi.NewClient(material, opts)
			if err != nil {
				return nil, err
			}
			return c, nil
		}, nil
	default:
		return nil, ErrInvalidDriver
	}
}

// New builds a Client for the configured driver from credential material
func New(ctx context.Context, config *Config, material *structs.ServiceAccount) (Client, error) {
	connect, err := NewConnector(config)
	if err != nil {
		return nil, err
	}
	return connect(ctx, material)
}
