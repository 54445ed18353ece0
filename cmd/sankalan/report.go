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
	"time"

	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/sankalan/pkg/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [topic]",
	Short: "Print a report table with its narrative",
	Long:  "Build the report for a topic over a date range. Without a topic, list the topics.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			renderTopics(cmd.OutOrStdout(), report.Topics())
			return nil
		}

		start, end, err := dateRange(startDate, endDate, time.Now())
		if err != nil {
			return err
		}

		app, err := newApplication(appEnv)
		if err != nil {
			return err
		}
		defer app.Close()

		r, err := app.reports.Build(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}
		renderReport(cmd.OutOrStdout(), r)
		return nil
	},
}

func init() {
	addRangeFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}
