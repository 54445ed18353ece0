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

// Package sqlrows materializes database/sql result sets into ResultTables.
package sqlrows

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Query runs the statement on q and materializes every row
func Query(ctx context.Context, q Querier, query string) (*structs.ResultTable, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	return Materialize(rows)
}

// Materialize reads rows to completion. Column types come from the driver's
// type names; when a driver reports none, the first non-null value decides.
func Materialize(rows *sql.Rows) (*structs.ResultTable, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	columns := make([]structs.Column, len(columnTypes))
	for i, ct := range columnTypes {
		columns[i] = structs.Column{
			Name: ct.Name(),
			Type: ColumnType(ct),
		}
	}

	table := structs.NewResultTable(columns)

	values := make([]interface{}, len(columns))
	pointers := make([]interface{}, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(structs.Row, len(columns))
		for i := range columns {
			v, err := Coerce(columns[i].Type, values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", columns[i].Name, err)
			}
			if columns[i].Type == "" && v != nil {
				columns[i].Type = inferType(v)
			}
			row[columns[i].Name] = v
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range columns {
		if columns[i].Type == "" {
			columns[i].Type = structs.TypeString
		}
	}
	table.Columns = columns

	return table, nil
}

// ColumnType maps a driver type name onto a column type, "" when unknown
func ColumnType(ct *sql.ColumnType) structs.ColumnType {
	name := strings.ToUpper(ct.DatabaseTypeName())
	switch {
	case name == "":
		return ""
	case name == "FIXED" || name == "NUMBER" || name == "NUMERIC" || name == "DECIMAL":
		if _, scale, ok := ct.DecimalSize(); ok && scale == 0 {
			return structs.TypeInteger
		}
		return structs.TypeFloat
	case strings.Contains(name, "INT"):
		return structs.TypeInteger
	case name == "REAL" || strings.HasPrefix(name, "FLOAT") || strings.HasPrefix(name, "DOUBLE"):
		return structs.TypeFloat
	case strings.HasPrefix(name, "BOOL"):
		return structs.TypeBoolean
	case name == "DATE" || name == "DATETIME" || strings.HasPrefix(name, "TIMESTAMP"):
		return structs.TypeTimestamp
	default:
		return structs.TypeString
	}
}

// Coerce converts a scanned value to the Go type of its column type.
// An empty column type keeps the value's own kind.
func Coerce(t structs.ColumnType, v interface{}) (interface{}, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}

	switch t {
	case structs.TypeInteger:
		return toInt(v)
	case structs.TypeFloat:
		return toFloat(v)
	case structs.TypeBoolean:
		return toBool(v)
	case structs.TypeTimestamp:
		return toTime(v)
	case structs.TypeString:
		if ts, ok := v.(time.Time); ok {
			return ts.UTC().Format(time.RFC3339Nano), nil
		}
		return fmt.Sprint(v), nil
	default:
		return normalize(v), nil
	}
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64, bool, string:
		return x
	case time.Time:
		return x.UTC()
	default:
		return fmt.Sprint(x)
	}
}

func inferType(v interface{}) structs.ColumnType {
	switch v.(type) {
	case int64:
		return structs.TypeInteger
	case float64:
		return structs.TypeFloat
	case bool:
		return structs.TypeBoolean
	case time.Time:
		return structs.TypeTimestamp
	default:
		return structs.TypeString
	}
}

func toInt(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != float64(int64(x)) {
			return nil, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func toFloat(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float", v)
	}
}

func toBool(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to boolean", v)
	}
}

func toTime(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, x); err == nil {
				return ts.UTC(), nil
			}
		}
		return nil, fmt.Errorf("cannot parse %q as timestamp", x)
	default:
		return nil, fmt.Errorf("cannot convert %T to timestamp", v)
	}
}
