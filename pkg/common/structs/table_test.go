package structs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTable_JSONRestoresColumnTypes(t *testing.T) {
	ts := time.Date(2025, 1, 31, 10, 30, 0, 0, time.UTC)
	table := NewResultTable([]Column{
		{Name: "page_url", Type: TypeString},
		{Name: "page_views", Type: TypeInteger},
		{Name: "bounce_rate", Type: TypeFloat},
		{Name: "first_seen", Type: TypeTimestamp},
		{Name: "is_bounce", Type: TypeBoolean},
	})
	table.Rows = append(table.Rows,
		Row{"page_url": "/home", "page_views": int64(9007199254740993), "bounce_rate": 0.25,
			"first_seen": ts, "is_bounce": true},
		Row{"page_url": nil, "page_views": nil, "bounce_rate": nil, "first_seen": nil, "is_bounce": nil},
	)

	data, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded ResultTable
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, table.Columns, decoded.Columns)
	require.Equal(t, 2, decoded.Len())
	assert.Equal(t, "/home", decoded.Rows[0]["page_url"])
	// large integers must not go through float64
	assert.Equal(t, int64(9007199254740993), decoded.Rows[0]["page_views"])
	assert.Equal(t, 0.25, decoded.Rows[0]["bounce_rate"])
	assert.Equal(t, ts, decoded.Rows[0]["first_seen"])
	assert.Equal(t, true, decoded.Rows[0]["is_bounce"])

	for _, v := range decoded.Rows[1] {
		assert.Nil(t, v)
	}
}

func TestResultTable_UnmarshalRejectsMistypedValue(t *testing.T) {
	var decoded ResultTable
	err := json.Unmarshal([]byte(`{"columns":[{"name":"n","type":"INTEGER"}],"rows":[{"n":"abc"}]}`), &decoded)
	assert.Error(t, err)
}

func TestResultTable_OversizedIntegerSurvivesRoundTrip(t *testing.T) {
	table := NewResultTable([]Column{{Name: "user_count", Type: TypeInteger}})
	table.Rows = append(table.Rows, Row{"user_count": 1.2345678901234568e+29})

	data, err := json.Marshal(table)
	require.NoError(t, err)

	var decoded ResultTable
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1.2345678901234568e+29, decoded.Rows[0]["user_count"])
}

func TestResultTable_ColumnHelpers(t *testing.T) {
	table := NewResultTable([]Column{{Name: "a", Type: TypeString}, {Name: "b", Type: TypeInteger}})

	assert.Equal(t, []string{"a", "b"}, table.ColumnNames())
	assert.True(t, table.HasColumn("b"))
	assert.False(t, table.HasColumn("c"))
	assert.Equal(t, 0, table.Len())
}

func TestResultTable_CloneIsIndependent(t *testing.T) {
	table := NewResultTable([]Column{{Name: "page_url", Type: TypeString}})
	table.Rows = append(table.Rows, Row{"page_url": "/home"})

	clone := table.Clone()
	require.Equal(t, table, clone)

	clone.Rows[0]["page_url"] = "/pricing"
	clone.Rows = append(clone.Rows, Row{"page_url": "/docs"})
	clone.Columns[0].Name = "url"

	assert.Equal(t, "/home", table.Rows[0]["page_url"])
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "page_url", table.Columns[0].Name)

	var missing *ResultTable
	assert.Nil(t, missing.Clone())
}

func TestParseServiceAccount(t *testing.T) {
	t.Run("valid material", func(t *testing.T) {
		raw := []byte(`{"type":"service_account","project_id":"p1","client_email":"svc@p1.iam.gserviceaccount.com"}`)
		sa, err := ParseServiceAccount(raw)
		require.NoError(t, err)
		assert.Equal(t, "p1", sa.ProjectID)
		assert.Equal(t, "svc@p1.iam.gserviceaccount.com", sa.Principal())
		assert.Equal(t, raw, sa.Raw)
	})

	t.Run("missing project id", func(t *testing.T) {
		_, err := ParseServiceAccount([]byte(`{"type":"service_account"}`))
		assert.ErrorIs(t, err, ErrMissingProjectID)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseServiceAccount([]byte(`project_id = "p1"`))
		assert.Error(t, err)
	})

	t.Run("user takes precedence as principal", func(t *testing.T) {
		sa, err := ParseServiceAccount([]byte(`{"project_id":"acct","user":"REPORTER","client_email":"x@y"}`))
		require.NoError(t, err)
		assert.Equal(t, "REPORTER", sa.Principal())
	})
}
