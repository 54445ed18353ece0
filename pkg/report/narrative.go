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

package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
)

const highBounceRatePct = 70

// Metric is a headline number shown next to a report
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func narrateKPIs(table *structs.ResultTable) (string, []Metric) {
	row := table.Rows[0]

	bounceRate := round2(number(row["avg_bounce_rate"]) * 100)
	metrics := []Metric{
		{Label: "Total Sessions", Value: strconv.FormatInt(int64(number(row["total_sessions"])), 10)},
		{Label: "Page Views", Value: strconv.FormatInt(int64(number(row["total_page_views"])), 10)},
		{Label: "Avg Session Duration", Value: formatDuration(number(row["avg_session_duration"]))},
		{Label: "Avg Engagement Rate (%)", Value: formatFloat(round2(number(row["avg_engagement_rate"]) * 100))},
		{Label: "Avg Bounce Rate (%)", Value: formatFloat(bounceRate)},
	}

	if bounceRate > highBounceRatePct {
		return "Many visitors are leaving quickly (high bounce rate). " +
			"Maybe check page speed or content relevance.", metrics
	}
	return "Bounce rate looks fine. Visitors are engaging with your site.", metrics
}

func narrateTrends(table *structs.ResultTable) (string, []Metric) {
	last := table.Rows[table.Len()-1]
	views := int64(number(last["daily_page_views"]))
	return fmt.Sprintf("On the last recorded day, your site had %d page views.", views), nil
}

func narrateTopPages(table *structs.ResultTable) (string, []Metric) {
	i := argMax(table, "page_views")
	row := table.Rows[i]
	return fmt.Sprintf("Your most visited page is %s with %d views.",
		text(row["page_url"]), int64(number(row["page_views"]))), nil
}

func narrateDevices(table *structs.ResultTable) (string, []Metric) {
	i, pct := leader(table, "sessions")
	return fmt.Sprintf("Most users are on %s (%.1f%%). Make sure your site looks great there.",
		text(table.Rows[i]["device_category"]), pct), nil
}

func narrateBrowsers(table *structs.ResultTable) (string, []Metric) {
	i, pct := leader(table, "sessions")
	return fmt.Sprintf("Most visitors use %s (%.1f%% of sessions).",
		text(table.Rows[i]["browser"]), pct), nil
}

func narrateTrafficSources(table *structs.ResultTable) (string, []Metric) {
	column := "sessions"
	if !table.HasColumn(column) {
		column = "session_count"
	}
	i, pct := leader(table, column)
	row := table.Rows[i]
	return fmt.Sprintf("Most traffic comes from %s with %d sessions (%.1f%%).",
		text(row["source"]), int64(number(row[column])), pct), nil
}

func narrateUserSegments(table *structs.ResultTable) (string, []Metric) {
	row := table.Rows[argMax(table, "users")]
	return fmt.Sprintf("Largest segment: %s with %d users (%s%%).",
		text(row["cluster_name"]), int64(number(row["users"])), formatFloat(number(row["pct_users"]))), nil
}

func narrateBouncePrediction(table *structs.ResultTable) (string, []Metric) {
	column := "predicted_is_bounce"
	if !table.HasColumn(column) {
		column = "bounce_prediction"
	}

	count := 0
	for _, row := range table.Rows {
		if isOne(row[column]) {
			count++
		}
	}
	return fmt.Sprintf("About %d sessions are predicted to bounce soon. "+
		"You may want to improve landing page experience.", count), nil
}

// argMax returns the first row holding the largest value of column
func argMax(table *structs.ResultTable, column string) int {
	best := 0
	for i, row := range table.Rows {
		if number(row[column]) > number(table.Rows[best][column]) {
			best = i
		}
	}
	return best
}

// leader returns the largest row of column and its share of the column total
func leader(table *structs.ResultTable, column string) (int, float64) {
	var total float64
	for _, row := range table.Rows {
		total += number(row[column])
	}

	i := argMax(table, column)
	if total == 0 {
		return i, 0
	}
	return i, number(table.Rows[i][column]) / total * 100
}

// number reads a numeric cell, nulls and unparseable text count as zero
func number(v interface{}) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case float64:
		if math.IsNaN(x) {
			return 0
		}
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func isOne(v interface{}) bool {
	if v == nil {
		return false
	}
	return number(v) == 1
}

func text(v interface{}) string {
	if v == nil {
		return "(not set)"
	}
	return fmt.Sprint(v)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDuration renders seconds as H:MM:SS
func formatDuration(seconds float64) string {
	d := time.Duration(int64(seconds)) * time.Second
	h := int64(d / time.Hour)
	m := int64(d%time.Hour) / int64(time.Minute)
	s := int64(d%time.Minute) / int64(time.Second)
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
