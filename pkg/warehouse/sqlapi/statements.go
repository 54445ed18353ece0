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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

// Query submits the statement, polls until it completes and fetches every
// result partition. The SQL API returns all values as strings, they are
// converted using the column metadata.
func (c *Client) Query(ctx context.Context, sql string) (*structs.ResultTable, error) {
	log := logger.Logger(ctx).WithField("service", DriverName)

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	body := statementRequest{
		Statement: sql,
		Timeout:   int64(c.opts.Timeout / time.Second),
		Database:  c.opts.Database,
		Schema:    c.opts.Schema,
		Warehouse: c.opts.Warehouse,
		Role:      c.opts.Role,
	}

	resp, status, err := c.makeRequest(ctx, statementsEndpoint, http.MethodPost, body)
	if err != nil {
		return nil, err
	}

	result, err := c.waitForResult(ctx, resp, status)
	if err != nil {
		log.WithError(err).Error("statement failed")
		return nil, err
	}

	meta := result.ResultSetMetaData
	if meta == nil {
		return nil, fmt.Errorf("statement %s returned no result set metadata", result.StatementHandle)
	}

	data := result.Data
	for partition := 1; partition < len(meta.PartitionInfo); partition++ {
		rows, err := c.fetchPartition(ctx, result.StatementHandle, partition)
		if err != nil {
			return nil, err
		}
		data = append(data, rows...)
	}

	table, err := toResultTable(meta.RowType, data)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"statement_handle": result.StatementHandle,
		"rows":             table.Len(),
		"partitions":       len(meta.PartitionInfo),
	}).Debug("statement completed")

	return table, nil
}

// waitForResult polls the statement status endpoint while the API answers 202
func (c *Client) waitForResult(ctx context.Context, resp []byte, status int) (*statementResponse, error) {
	for {
		var result statementResponse
		if len(resp) > 0 {
			if err := json.Unmarshal(resp, &result); err != nil {
				return nil, fmt.Errorf("failed to decode statement response (status %d): %w", status, err)
			}
		}

		switch status {
		case http.StatusOK:
			return &result, nil
		case http.StatusAccepted:
			if result.StatementHandle == "" {
				return nil, fmt.Errorf("statement accepted without a handle")
			}
		default:
			return nil, fmt.Errorf("statement failed, status: %s, code: %s, message: %s",
				http.StatusText(status), result.Code, result.Message)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}

		var err error
		resp, status, err = c.makeRequest(ctx, statementsEndpoint+"/"+url.PathEscape(result.StatementHandle),
			http.MethodGet, nil)
		if err != nil {
			return nil, err
		}
	}
}

func (c *Client) fetchPartition(ctx context.Context, handle string, partition int) ([][]*string, error) {
	endpoint := fmt.Sprintf("%s/%s?partition=%d", statementsEndpoint, url.PathEscape(handle), partition)
	resp, status, err := c.makeRequest(ctx, endpoint, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch partition %d, status: %s, body: %s",
			partition, http.StatusText(status), string(resp))
	}

	var result statementResponse
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("failed to decode partition %d: %w", partition, err)
	}
	return result.Data, nil
}

func toResultTable(rowTypes []rowType, data [][]*string) (*structs.ResultTable, error) {
	columns := make([]structs.Column, len(rowTypes))
	for i, rt := range rowTypes {
		columns[i] = structs.Column{Name: rt.Name, Type: columnType(rt)}
	}

	table := structs.NewResultTable(columns)
	for _, values := range data {
		row := make(structs.Row, len(columns))
		for i, rt := range rowTypes {
			if i >= len(values) || values[i] == nil {
				row[rt.Name] = nil
				continue
			}
			v, err := convertValue(rt, *values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", rt.Name, err)
			}
			row[rt.Name] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func columnType(rt rowType) structs.ColumnType {
	switch strings.ToLower(rt.Type) {
	case "fixed":
		if rt.Scale == 0 {
			return structs.TypeInteger
		}
		return structs.TypeFloat
	case "real":
		return structs.TypeFloat
	case "boolean":
		return structs.TypeBoolean
	case "date", "timestamp_ntz", "timestamp_ltz", "timestamp_tz":
		return structs.TypeTimestamp
	default:
		return structs.TypeString
	}
}

func convertValue(rt rowType, s string) (interface{}, error) {
	switch strings.ToLower(rt.Type) {
	case "fixed":
		if rt.Scale == 0 {
			n, err := strconv.ParseInt(s, 10, 64)
			if errors.Is(err, strconv.ErrRange) {
				// NUMBER(38,0) can exceed int64
				return strconv.ParseFloat(s, 64)
			}
			return n, err
		}
		return strconv.ParseFloat(s, 64)
	case "real":
		return strconv.ParseFloat(s, 64)
	case "boolean":
		return strconv.ParseBool(s)
	case "date":
		days, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return time.Unix(days*86400, 0).UTC(), nil
	case "timestamp_ntz", "timestamp_ltz":
		return parseEpoch(s)
	case "timestamp_tz":
		// "<epoch> <offset minutes + 1440>", the offset is dropped for UTC
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty timestamp")
		}
		return parseEpoch(fields[0])
	default:
		return s, nil
	}
}

// parseEpoch parses "seconds.fraction" into a UTC time
func parseEpoch(s string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch timestamp %q: %w", s, err)
	}

	var nanos int64
	if fracPart != "" {
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		}
		fracPart += strings.Repeat("0", 9-len(fracPart))
		if nanos, err = strconv.ParseInt(fracPart, 10, 64); err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch timestamp %q: %w", s, err)
		}
		// the fraction carries the sign of the whole value, "-1.5" is 1.5s before the epoch
		if strings.HasPrefix(secPart, "-") {
			nanos = -nanos
		}
	}
	return time.Unix(sec, nanos).UTC(), nil
}
