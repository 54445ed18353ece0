package sqlapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(&structs.ServiceAccount{
		ProjectID: "acme-xy12345",
		Token:     "pat-token",
		BaseURL:   server.URL,
		Warehouse: "REPORTING_WH",
	}, Options{PollInterval: 5 * time.Millisecond, Database: "WEB"})
	require.NoError(t, err)
	return client
}

func str(s string) *string {
	return &s
}

func TestQueryPollsAndFetchesPartitions(t *testing.T) {
	var polls int32
	var submitted statementRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pat-token", r.Header.Get("Authorization"))
		assert.Equal(t, "PROGRAMMATIC_ACCESS_TOKEN", r.Header.Get("X-Snowflake-Authorization-Token-Type"))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/statements":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(statementResponse{Code: "333334", StatementHandle: "h-1"})
		case r.URL.Path == "/api/v2/statements/h-1" && r.URL.Query().Get("partition") == "1":
			_ = json.NewEncoder(w).Encode(statementResponse{
				Data: [][]*string{{str("19784"), str("7"), str("0.5"), str("false"), nil}},
			})
		case r.URL.Path == "/api/v2/statements/h-1":
			if atomic.AddInt32(&polls, 1) == 1 {
				w.WriteHeader(http.StatusAccepted)
				_ = json.NewEncoder(w).Encode(statementResponse{StatementHandle: "h-1"})
				return
			}
			_ = json.NewEncoder(w).Encode(statementResponse{
				StatementHandle: "h-1",
				ResultSetMetaData: &resultSetMetaData{
					NumRows: 2,
					RowType: []rowType{
						{Name: "EVENT_DATE", Type: "date"},
						{Name: "PAGE_VIEWS", Type: "fixed", Scale: 0},
						{Name: "BOUNCE_RATE", Type: "fixed", Scale: 2},
						{Name: "IS_BOUNCE", Type: "boolean"},
						{Name: "PAGE_URL", Type: "text"},
					},
					PartitionInfo: []partitionInfo{{RowCount: 1}, {RowCount: 1}},
				},
				Data: [][]*string{{str("19783"), str("12"), str("0.25"), str("true"), str("/home")}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)
	table, err := client.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1", submitted.Statement)
	assert.Equal(t, "WEB", submitted.Database)
	assert.Equal(t, "REPORTING_WH", submitted.Warehouse)
	assert.EqualValues(t, 2, atomic.LoadInt32(&polls))

	assert.Equal(t, []structs.Column{
		{Name: "EVENT_DATE", Type: structs.TypeTimestamp},
		{Name: "PAGE_VIEWS", Type: structs.TypeInteger},
		{Name: "BOUNCE_RATE", Type: structs.TypeFloat},
		{Name: "IS_BOUNCE", Type: structs.TypeBoolean},
		{Name: "PAGE_URL", Type: structs.TypeString},
	}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), table.Rows[0]["EVENT_DATE"])
	assert.Equal(t, int64(12), table.Rows[0]["PAGE_VIEWS"])
	assert.Equal(t, 0.25, table.Rows[0]["BOUNCE_RATE"])
	assert.Equal(t, true, table.Rows[0]["IS_BOUNCE"])
	assert.Equal(t, int64(7), table.Rows[1]["PAGE_VIEWS"])
	assert.Nil(t, table.Rows[1]["PAGE_URL"])
}

func TestQueryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(statementResponse{
			Code:    "002003",
			Message: "SQL compilation error: Object 'EVENTS' does not exist",
		})
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Query(context.Background(), "SELECT * FROM events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "002003")
	assert.Contains(t, err.Error(), "does not exist")
}

func TestQueryHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(statementResponse{StatementHandle: "slow"})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server).Query(ctx, "SELECT 1")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(&structs.ServiceAccount{ProjectID: "acme", Token: "t"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://acme.snowflakecomputing.com", client.GetConfig().BaseURL)
	assert.Equal(t, "acme", client.Project())
	assert.Equal(t, DriverName, client.Driver())
	assert.NoError(t, client.Close())

	_, err = NewClient(&structs.ServiceAccount{ProjectID: "acme"}, Options{})
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = NewClient(&structs.ServiceAccount{Token: "t"}, Options{})
	assert.ErrorIs(t, err, structs.ErrMissingProjectID)
}

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name     string
		rt       rowType
		in       string
		expected interface{}
		wantErr  bool
	}{
		{name: "real", rt: rowType{Type: "real"}, in: "1.5", expected: 1.5},
		{name: "ntz timestamp", rt: rowType{Type: "timestamp_ntz"}, in: "1709289000.123000000",
			expected: time.Unix(1709289000, 123000000).UTC()},
		{name: "short fraction", rt: rowType{Type: "timestamp_ltz"}, in: "1709289000.5",
			expected: time.Unix(1709289000, 500000000).UTC()},
		{name: "tz timestamp", rt: rowType{Type: "timestamp_tz"}, in: "1709289000.000000000 1500",
			expected: time.Unix(1709289000, 0).UTC()},
		{name: "pre epoch fraction", rt: rowType{Type: "timestamp_ntz"}, in: "-1.5",
			expected: time.Unix(-2, 500000000).UTC()},
		{name: "fraction just before epoch", rt: rowType{Type: "timestamp_ltz"}, in: "-0.25",
			expected: time.Unix(-1, 750000000).UTC()},
		{name: "integer", rt: rowType{Type: "fixed"}, in: "-42", expected: int64(-42)},
		{name: "integer above int64", rt: rowType{Type: "fixed"}, in: "123456789012345678901234567890",
			expected: 1.2345678901234568e+29},
		{name: "variant stays text", rt: rowType{Type: "variant"}, in: `{"a":1}`, expected: `{"a":1}`},
		{name: "bad integer", rt: rowType{Type: "fixed"}, in: "x", wantErr: true},
		{name: "bad boolean", rt: rowType{Type: "boolean"}, in: "maybe", wantErr: true},
		{name: "empty tz", rt: rowType{Type: "timestamp_tz"}, in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertValue(tt.rt, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
