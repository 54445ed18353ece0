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
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/sankalan/pkg/common/structs"
	"github.com/redhat-data-and-ai/sankalan/pkg/secrets/keyring"
)

var storeCredentialsCmd = &cobra.Command{
	Use:   "store-credentials <key> <file>",
	Short: "Validate a credential file and save it in the OS keyring",
	Long: "Save credential material in the OS keyring under key, so a credentials source " +
		"of type secret with provider keyring can read it.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(appEnv)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		material, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		sa, err := structs.ParseServiceAccount(material)
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}

		if err := keyring.NewProvider(cfg.Secrets.Keyring).Store(args[0], material); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "stored credentials for project %s under %q\n",
			sa.ProjectID, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCredentialsCmd)
}
