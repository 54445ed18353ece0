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

package structs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ColumnType is the scalar type carried by every value of a result column
type ColumnType string

const (
	TypeString    ColumnType = "STRING"
	TypeInteger   ColumnType = "INTEGER"
	TypeFloat     ColumnType = "FLOAT"
	TypeTimestamp ColumnType = "TIMESTAMP"
	TypeBoolean   ColumnType = "BOOLEAN"
)

// Column describes one column of a ResultTable
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Row maps column names to scalar values: string, int64, float64,
// time.Time, bool or nil. INTEGER values too large for int64 are float64.
type Row map[string]interface{}

// ResultTable is the materialized result of a warehouse query.
// Rows keep the order in which the warehouse returned them.
type ResultTable struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewResultTable returns an empty table with the given columns
func NewResultTable(columns []Column) *ResultTable {
	return &ResultTable{
		Columns: columns,
		Rows:    make([]Row, 0),
	}
}

// ColumnNames returns the column names in order
func (t *ResultTable) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// HasColumn reports whether the table has a column with the given name
func (t *ResultTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows
func (t *ResultTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone returns a copy whose rows can be modified without affecting t.
// Values are scalars, so copying each row map is enough.
func (t *ResultTable) Clone() *ResultTable {
	if t == nil {
		return nil
	}
	clone := &ResultTable{
		Columns: append([]Column(nil), t.Columns...),
		Rows:    make([]Row, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		copied := make(Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		clone.Rows = append(clone.Rows, copied)
	}
	return clone
}

// UnmarshalJSON decodes a table and restores each value to the Go type of its column,
// so a table read back from the cache is indistinguishable from a freshly queried one.
func (t *ResultTable) UnmarshalJSON(data []byte) error {
	var raw struct {
		Columns []Column                     `json:"columns"`
		Rows    []map[string]json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	types := make(map[string]ColumnType, len(raw.Columns))
	for _, c := range raw.Columns {
		types[c.Name] = c.Type
	}

	rows := make([]Row, 0, len(raw.Rows))
	for i, rawRow := range raw.Rows {
		row := make(Row, len(rawRow))
		for name, rawValue := range rawRow {
			value, err := decodeScalar(types[name], rawValue)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, name, err)
			}
			row[name] = value
		}
		rows = append(rows, row)
	}

	t.Columns = raw.Columns
	t.Rows = rows
	return nil
}

func decodeScalar(colType ColumnType, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch colType {
	case TypeInteger:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return i, nil
		}
		// integers beyond int64 are carried as float64
		return n.Float64()
	case TypeFloat:
		var f float64
		err := json.Unmarshal(raw, &f)
		return f, err
	case TypeBoolean:
		var b bool
		err := json.Unmarshal(raw, &b)
		return b, err
	case TypeTimestamp:
		var ts time.Time
		err := json.Unmarshal(raw, &ts)
		return ts.UTC(), err
	case TypeString:
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	default:
		var v interface{}
		err := json.Unmarshal(raw, &v)
		return v, err
	}
}
