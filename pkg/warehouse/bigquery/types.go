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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
)

func columnsFromSchema(schema bigquery.Schema) []structs.Column {
	columns := make([]structs.Column, 0, len(schema))
	for _, field := range schema {
		columns = append(columns, structs.Column{
			Name: field.Name,
			Type: columnType(field),
		})
	}
	return columns
}

// columnType maps a BigQuery field onto a result column type. Repeated and
// nested fields are carried as JSON text.
func columnType(field *bigquery.FieldSchema) structs.ColumnType {
	if field.Repeated {
		return structs.TypeString
	}

	switch field.Type {
	case bigquery.IntegerFieldType:
		return structs.TypeInteger
	case bigquery.FloatFieldType, bigquery.NumericFieldType, bigquery.BigNumericFieldType:
		return structs.TypeFloat
	case bigquery.BooleanFieldType:
		return structs.TypeBoolean
	case bigquery.TimestampFieldType, bigquery.DateFieldType, bigquery.DateTimeFieldType:
		return structs.TypeTimestamp
	default:
		return structs.TypeString
	}
}

func normalizeValue(v bigquery.Value) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case int64, float64, bool, string:
		return x
	case time.Time:
		return x.UTC()
	case civil.Date:
		return x.In(time.UTC)
	case civil.DateTime:
		return x.In(time.UTC)
	case civil.Time:
		return x.String()
	case *big.Rat:
		if x == nil {
			return nil
		}
		f, _ := x.Float64()
		return f
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case []bigquery.Value:
		items := make([]interface{}, len(x))
		for i := range x {
			items[i] = jsonable(normalizeValue(x[i]))
		}
		return marshalText(items)
	default:
		return marshalText(x)
	}
}

func jsonable(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339Nano)
	}
	return v
}

func marshalText(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
