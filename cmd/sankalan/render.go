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
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/report"
)

func renderTable(w io.Writer, t *structs.ResultTable) {
	if t.Len() == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(t.ColumnNames())
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, row := range t.Rows {
		cells := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cells = append(cells, formatCell(row[c.Name]))
		}
		table.Append(cells)
	}
	table.Render()
}

func renderTopics(w io.Writer, topics []report.Topic) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Topic", "Title", "Template"})
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, t := range topics {
		table.Append([]string{t.ID, t.Title, t.TemplateID})
	}
	table.Render()
}

func renderReport(w io.Writer, r *report.Report) {
	color.New(color.Bold).Fprintf(w, "%s (%s to %s)\n", r.Title, r.StartDate, r.EndDate)
	renderTable(w, r.Table)
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Narrative)
	for _, m := range r.Metrics {
		fmt.Fprintf(w, "  %s: %s\n", m.Label, m.Value)
	}
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
