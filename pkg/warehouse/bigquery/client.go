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

package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

const DriverName = "bigquery"

// Options map onto the bigquery.Query settings applied to every statement
type Options struct {
	Location          string            `json:"location"`
	MaxBytesBilled    int64             `json:"max_bytes_billed"`
	DisableQueryCache bool              `json:"disable_query_cache"`
	Labels            map[string]string `json:"labels"`
	Timeout           time.Duration     `json:"timeout"`
	// Endpoint points the client at an emulator, authentication is skipped
	Endpoint string `json:"endpoint"`
}

// Client runs GoogleSQL statements against one BigQuery project
type Client struct {
	c       *bigquery.Client
	project string
	opts    Options
}

// NewClient builds a BigQuery client authenticated with the service account
// JSON carried by material. The billing project is material.ProjectID.
func NewClient(ctx context.Context, material *structs.ServiceAccount, opts Options) (*Client, error) {
	if material == nil {
		return nil, errors.New("credential material cannot be nil")
	}
	if material.ProjectID == "" {
		return nil, structs.ErrMissingProjectID
	}

	options := []option.ClientOption{option.WithTelemetryDisabled()}
	if opts.Endpoint != "" {
		options = append(options,
			option.WithEndpoint(opts.Endpoint),
			option.WithoutAuthentication(),
		)
	} else {
		options = append(options, option.WithCredentialsJSON(material.Raw))
	}

	bqc, err := bigquery.NewClient(ctx, material.ProjectID, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	return &Client{
		c:       bqc,
		project: material.ProjectID,
		opts:    opts,
	}, nil
}

func (c *Client) Driver() string {
	return DriverName
}

func (c *Client) Project() string {
	return c.project
}

// Query runs the statement and reads every row into a ResultTable
func (c *Client) Query(ctx context.Context, sql string) (*structs.ResultTable, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	query := c.c.Query(sql)
	query.Location = c.opts.Location
	query.MaxBytesBilled = c.opts.MaxBytesBilled
	query.DisableQueryCache = c.opts.DisableQueryCache
	query.Labels = c.opts.Labels

	log := logger.Logger(ctx).WithField("driver", DriverName)
	start := time.Now()

	iter, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}

	var rows [][]bigquery.Value
	for {
		var row []bigquery.Value
		err := iter.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	// schema isn't available until the first call to iter.Next()
	table := structs.NewResultTable(columnsFromSchema(iter.Schema))
	for _, values := range rows {
		row := make(structs.Row, len(iter.Schema))
		for i, field := range iter.Schema {
			if i < len(values) {
				row[field.Name] = normalizeValue(values[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}

	log.WithField("rows", table.Len()).
		WithField("durationMs", time.Since(start).Milliseconds()).
		Debug("bigquery query completed")

	return table, nil
}

func (c *Client) Close() error {
	return c.c.Close()
}
