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
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/sankalan/pkg/query"
)

// defaultRangeDays matches the API's default window
const defaultRangeDays = 7

var (
	startDate string
	endDate   string
	refresh   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [template]",
	Short: "Run a query template and print its result table",
	Long:  "Run a query template over a date range. Without a template, list the available templates.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(appEnv)
		if err != nil {
			return err
		}
		defer app.Close()

		if len(args) == 0 {
			ids, err := app.templates.List()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		}

		start, end, err := dateRange(startDate, endDate, time.Now())
		if err != nil {
			return err
		}

		if refresh {
			if err := app.queries.Invalidate(cmd.Context(), args[0], start, end); err != nil {
				return err
			}
		}

		table, err := app.queries.Fetch(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}
		renderTable(cmd.OutOrStdout(), table)
		return nil
	},
}

// dateRange parses the --start and --end flags. A missing end is today,
// a missing start is defaultRangeDays days ending at end.
func dateRange(startFlag, endFlag string, now time.Time) (civil.Date, civil.Date, error) {
	end := civil.DateOf(now)
	if endFlag != "" {
		d, err := query.ParseDate(endFlag)
		if err != nil {
			return civil.Date{}, civil.Date{}, err
		}
		end = d
	}

	start := end.AddDays(-(defaultRangeDays - 1))
	if startFlag != "" {
		d, err := query.ParseDate(startFlag)
		if err != nil {
			return civil.Date{}, civil.Date{}, err
		}
		start = d
	}
	return start, end, nil
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startDate, "start", "", "first day of the range, YYYY-MM-DD")
	cmd.Flags().StringVar(&endDate, "end", "", "last day of the range, YYYY-MM-DD, defaults to today")
}

func init() {
	addRangeFlags(queryCmd)
	queryCmd.Flags().BoolVar(&refresh, "refresh", false, "drop the cached result before running")
	rootCmd.AddCommand(queryCmd)
}
