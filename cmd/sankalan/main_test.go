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

package main

import (
	"bytes"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/query"
	"github.com/redhat-data-and-ai/sankalan/pkg/report"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2024, time.March, 10, 18, 30, 0, 0, time.UTC)
	today := civil.Date{Year: 2024, Month: time.March, Day: 10}

	tests := []struct {
		name      string
		start     string
		end       string
		wantStart civil.Date
		wantEnd   civil.Date
		wantErr   bool
	}{
		{name: "defaults", wantStart: today.AddDays(-6), wantEnd: today},
		{name: "end only", end: "2024-01-31", wantStart: civil.Date{Year: 2024, Month: 1, Day: 25},
			wantEnd: civil.Date{Year: 2024, Month: 1, Day: 31}},
		{name: "both", start: "2024-01-01", end: "2024-01-31", wantStart: civil.Date{Year: 2024, Month: 1, Day: 1},
			wantEnd: civil.Date{Year: 2024, Month: 1, Day: 31}},
		{name: "bad start", start: "01/01/2024", wantErr: true},
		{name: "bad end", end: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := dateRange(tt.start, tt.end, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, query.ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "42", formatCell(int64(42)))
	assert.Equal(t, "0.25", formatCell(0.25))
	assert.Equal(t, "true", formatCell(true))
	assert.Equal(t, "2024-03-10", formatCell(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-10T08:15:00Z", formatCell(time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC)))
}

func TestRenderReport(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	renderReport(&buf, &report.Report{
		Title:     "Devices",
		StartDate: civil.Date{Year: 2024, Month: 3, Day: 4},
		EndDate:   civil.Date{Year: 2024, Month: 3, Day: 10},
		Table: &structs.ResultTable{
			Columns: []structs.Column{
				{Name: "device_category", Type: structs.TypeString},
				{Name: "sessions", Type: structs.TypeInteger},
			},
			Rows: []structs.Row{{"device_category": "desktop", "sessions": int64(70)}},
		},
		Narrative: "Most users are on desktop (100.0%).",
		Metrics:   []report.Metric{{Label: "Sessions", Value: "70"}},
	})

	out := buf.String()
	assert.Contains(t, out, "Devices (2024-03-04 to 2024-03-10)")
	assert.Contains(t, out, "device_category")
	assert.Contains(t, out, "desktop")
	assert.Contains(t, out, "Most users are on desktop")
	assert.Contains(t, out, "Sessions: 70")
}

func TestRenderEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, structs.NewResultTable(nil))
	assert.Equal(t, "(no rows)\n", buf.String())
}

func TestReportCommandListsTopics(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"report"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	for _, topic := range report.Topics() {
		assert.Contains(t, buf.String(), topic.ID)
	}
}
