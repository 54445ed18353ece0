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
	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/sankalan/pkg/logger"
)

var (
	appEnv string

	rootCmd = &cobra.Command{
		Use:   "sankalan",
		Short: "Analytics reports over a cloud data warehouse",
		Long: "Sankalan runs parameterized SQL templates against BigQuery or Snowflake, " +
			"caches the results and turns them into short narrative reports.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&appEnv, "env", "e", "",
		"configuration environment, defaults to $APP_ENV or default")
}
