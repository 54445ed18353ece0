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

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve warehouse credentials and print the connected project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(appEnv)
		if err != nil {
			return err
		}
		defer app.Close()

		client, err := app.resolver.Handle(cmd.Context())
		if err != nil {
			color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), "no usable credentials")
			return err
		}

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprintln(out, "credentials resolved")
		fmt.Fprintf(out, "driver:  %s\nproject: %s\n", client.Driver(), client.Project())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
