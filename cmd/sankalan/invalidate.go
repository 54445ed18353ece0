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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate <template>...",
	Short: "Drop every cached result of the given templates",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(appEnv)
		if err != nil {
			return err
		}
		defer app.Close()

		var errs []error
		for _, id := range args {
			removed, err := app.queries.InvalidateTemplate(cmd.Context(), id)
			if err != nil {
				errs = append(errs, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cached results removed\n", id, removed)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}
