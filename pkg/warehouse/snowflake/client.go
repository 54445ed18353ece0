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

package snowflake

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
	"github.com/redhat-data-and-ai/sankalan/pkg/warehouse/sqlrows"
)

const DriverName = "snowflake"

var (
	// ErrMissingAuth is returned when the material has neither a private key nor a password
	ErrMissingAuth = errors.New("snowflake credentials need a private_key or a password")
	// ErrMissingUser is returned when no login name can be derived from the material
	ErrMissingUser = errors.New("snowflake credentials need a user or client_email")
)

// Options override the connection settings carried by the credential material
type Options struct {
	Database     string        `json:"database"`
	Schema       string        `json:"schema"`
	Warehouse    string        `json:"warehouse"`
	Role         string        `json:"role"`
	Host         string        `json:"host"`
	LoginTimeout time.Duration `json:"login_timeout"`
	Timeout      time.Duration `json:"timeout"`
	MaxOpenConns int           `json:"max_open_conns"`
}

// Client runs statements through gosnowflake over database/sql
type Client struct {
	db      *sql.DB
	account string
	timeout time.Duration
}

// NewClient opens a pooled connection for the account named by
// material.ProjectID and pings it once.
func NewClient(ctx context.Context, material *structs.ServiceAccount, opts Options) (*Client, error) {
	cfg, err := buildConfig(material, opts)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(gosnowflake.NewConnector(gosnowflake.SnowflakeDriver{}, *cfg))

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, loginTimeout(opts))
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping snowflake: %w", err)
	}

	return newClient(db, cfg.Account, opts.Timeout), nil
}

func newClient(db *sql.DB, account string, timeout time.Duration) *Client {
	return &Client{
		db:      db,
		account: account,
		timeout: timeout,
	}
}

func loginTimeout(opts Options) time.Duration {
	if opts.LoginTimeout > 0 {
		return opts.LoginTimeout
	}
	return 30 * time.Second
}

func buildConfig(material *structs.ServiceAccount, opts Options) (*gosnowflake.Config, error) {
	if material == nil {
		return nil, errors.New("credential material cannot be nil")
	}
	if material.ProjectID == "" {
		return nil, structs.ErrMissingProjectID
	}

	user := material.Principal()
	if user == "" {
		return nil, ErrMissingUser
	}

	cfg := &gosnowflake.Config{
		Account:      material.ProjectID,
		User:         user,
		Database:     firstNonEmpty(opts.Database, material.Database),
		Schema:       firstNonEmpty(opts.Schema, material.Schema),
		Warehouse:    firstNonEmpty(opts.Warehouse, material.Warehouse),
		Role:         firstNonEmpty(opts.Role, material.Role),
		Host:         opts.Host,
		LoginTimeout: loginTimeout(opts),
		Application:  "sankalan",
	}

	switch {
	case material.PrivateKey != "":
		key, err := parsePrivateKey(material.PrivateKey)
		if err != nil {
			return nil, err
		}
		cfg.Authenticator = gosnowflake.AuthTypeJwt
		cfg.PrivateKey = key
	case material.Password != "":
		cfg.Password = material.Password
	default:
		return nil, ErrMissingAuth
	}

	return cfg, nil
}

// parsePrivateKey accepts PKCS8 and PKCS1 PEM encoded RSA keys
func parsePrivateKey(data string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(data))
	if block == nil {
		return nil, errors.New("private_key is not PEM encoded")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("private_key is not an RSA key")
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private_key: %w", err)
	}
	return key, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) Driver() string {
	return DriverName
}

func (c *Client) Project() string {
	return c.account
}

func (c *Client) Query(ctx context.Context, sql string) (*structs.ResultTable, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	table, err := sqlrows.Query(ctx, c.db, sql)
	if err != nil {
		return nil, err
	}

	logger.Logger(ctx).WithField("driver", DriverName).
		WithField("rows", table.Len()).
		WithField("durationMs", time.Since(start).Milliseconds()).
		Debug("snowflake query completed")

	return table, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
