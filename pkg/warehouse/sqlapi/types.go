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
	"time"

	"github.com/gojek/heimdall/v7"
)

// Config holds the connection settings of the SQL API client
type Config struct {
	Token   string
	BaseURL string
	Account string
}

// Options tune statement submission and result polling
type Options struct {
	BaseURL      string        `json:"base_url"`
	Database     string        `json:"database"`
	Schema       string        `json:"schema"`
	Warehouse    string        `json:"warehouse"`
	Role         string        `json:"role"`
	Timeout      time.Duration `json:"timeout"`
	PollInterval time.Duration `json:"poll_interval"`
}

// Client runs statements through the Snowflake SQL API v2
type Client struct {
	config *Config
	opts   Options
	client heimdall.Doer
}

// statementRequest is the body of POST /api/v2/statements
type statementRequest struct {
	Statement string `json:"statement"`
	Timeout   int64  `json:"timeout,omitempty"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Role      string `json:"role,omitempty"`
}

type rowType struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Scale     int    `json:"scale"`
	Precision int    `json:"precision"`
	Nullable  bool   `json:"nullable"`
}

type partitionInfo struct {
	RowCount         int `json:"rowCount"`
	UncompressedSize int `json:"uncompressedSize"`
}

type resultSetMetaData struct {
	NumRows       int             `json:"numRows"`
	Format        string          `json:"format"`
	RowType       []rowType       `json:"rowType"`
	PartitionInfo []partitionInfo `json:"partitionInfo"`
}

// statementResponse covers the success, in-progress and error shapes
type statementResponse struct {
	Code               string             `json:"code"`
	SQLState           string             `json:"sqlState"`
	Message            string             `json:"message"`
	StatementHandle    string             `json:"statementHandle"`
	StatementStatusURL string             `json:"statementStatusUrl"`
	ResultSetMetaData  *resultSetMetaData `json:"resultSetMetaData"`
	Data               [][]*string        `json:"data"`
}
